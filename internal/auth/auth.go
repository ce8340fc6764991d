// Package auth signs actors in against the users table and keeps their
// sessions in memory.
package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/okian/jobdb/internal/adapters/repository"
	"github.com/okian/jobdb/internal/domain/model"
	"github.com/okian/jobdb/pkg/logger"
	"github.com/okian/jobdb/pkg/metrics"
)

// DefaultEmailDomain is appended to short ids when none is configured.
const DefaultEmailDomain = "example.com"

// Session is an authenticated actor bound to an opaque token.
type Session struct {
	Token     string      `json:"token"`
	Actor     model.Actor `json:"-"`
	CreatedAt time.Time   `json:"created_at"`
}

// Service authenticates actors.
type Service struct {
	store    repository.Store
	domain   string
	cost     int
	newToken func() string
	now      func() time.Time
	logger   logger.Logger

	mu       sync.RWMutex
	sessions map[string]Session
}

// New creates an auth service over the users table of store.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		domain:   DefaultEmailDomain,
		cost:     bcrypt.DefaultCost,
		newToken: uuid.NewString,
		now:      time.Now,
		logger:   logger.Get().Named("auth"),
		sessions: make(map[string]Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Identifier maps a short id to the full sign-in identifier. Values that
// already carry a domain are returned unchanged.
func (s *Service) Identifier(shortID string) string {
	shortID = strings.TrimSpace(shortID)
	if strings.Contains(shortID, model.ShortIDSeparator) {
		return shortID
	}
	return shortID + model.ShortIDSeparator + s.domain
}

// SignIn checks the password and opens a session.
func (s *Service) SignIn(ctx context.Context, shortID, password string) (Session, error) {
	if strings.TrimSpace(shortID) == "" || password == "" {
		metrics.RecordAuthFailure("missing_credentials")
		return Session{}, ErrLoginFailed
	}
	user, err := s.lookup(ctx, s.Identifier(shortID))
	if err != nil {
		metrics.RecordAuthFailure("unknown_user")
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.RecordAuthFailure("bad_password")
		return Session{}, ErrLoginFailed
	}

	sess := Session{
		Token:     s.newToken(),
		Actor:     model.Actor{ID: user.ID, Identifier: user.Email, Admin: user.Admin},
		CreatedAt: s.now().UTC(),
	}
	s.mu.Lock()
	s.sessions[sess.Token] = sess
	s.mu.Unlock()

	s.logger.Info(ctx, "signed in",
		logger.String("student", sess.Actor.ShortID()),
		logger.Bool("admin", user.Admin),
	)
	return sess, nil
}

func (s *Service) lookup(ctx context.Context, email string) (model.User, error) {
	rows, err := s.store.Query(ctx, repository.Users, repository.Query{
		Where: map[string]any{"email": email},
		Limit: 1,
	})
	if err != nil {
		s.logger.Error(ctx, "user lookup failed", logger.Error(err))
		return model.User{}, ErrLoginFailed
	}
	if len(rows) == 0 {
		return model.User{}, ErrLoginFailed
	}
	return repository.DecodeUser(rows[0]), nil
}

// Resolve returns the session for token.
func (s *Service) Resolve(token string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	if !ok || token == "" {
		return Session{}, ErrUnauthenticated
	}
	return sess, nil
}

// SignOut clears the session. Unknown tokens are ignored.
func (s *Service) SignOut(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// RequireAdmin resolves token and checks admin rights. A non-admin session
// is signed out before ErrForbidden is returned.
func (s *Service) RequireAdmin(ctx context.Context, token string) (Session, error) {
	sess, err := s.Resolve(token)
	if err != nil {
		return Session{}, err
	}
	if !sess.Actor.Admin {
		s.SignOut(token)
		metrics.RecordAuthFailure("forbidden")
		s.logger.Warn(ctx, "non-admin reached admin view; signed out",
			logger.String("student", sess.Actor.ShortID()),
		)
		return Session{}, ErrForbidden
	}
	return sess, nil
}

// Count returns the number of open sessions.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// CreateUser stores a user with a bcrypt hash of password.
func (s *Service) CreateUser(ctx context.Context, shortID, password string, admin bool) (model.User, error) {
	email := s.Identifier(shortID)
	rows, err := s.store.Query(ctx, repository.Users, repository.Query{
		Where: map[string]any{"email": email},
		Limit: 1,
	})
	if err != nil {
		return model.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if len(rows) > 0 {
		return model.User{}, fmt.Errorf("%w: %s", ErrUserExists, email)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	rec, err := s.store.Insert(ctx, repository.Users, repository.EncodeUser(model.User{
		Email:        email,
		PasswordHash: string(hash),
		Admin:        admin,
	}))
	if err != nil {
		return model.User{}, fmt.Errorf("insert user: %w", err)
	}
	return repository.DecodeUser(rec), nil
}
