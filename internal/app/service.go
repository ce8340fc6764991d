// Package service wires the employer catalog, view sessions, interaction
// logging, and usage reporting behind the API the HTTP layer needs.
package service

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/okian/jobdb/internal/adapters/mq/worker"
	"github.com/okian/jobdb/internal/adapters/realtime"
	"github.com/okian/jobdb/internal/adapters/repository"
	"github.com/okian/jobdb/internal/auth"
	"github.com/okian/jobdb/internal/domain/dedupe"
	"github.com/okian/jobdb/internal/domain/filter"
	"github.com/okian/jobdb/internal/domain/merge"
	"github.com/okian/jobdb/internal/domain/model"
	"github.com/okian/jobdb/internal/domain/report"
	"github.com/okian/jobdb/internal/domain/sorting"
	"github.com/okian/jobdb/internal/tracking"
	"github.com/okian/jobdb/pkg/logger"
	"github.com/okian/jobdb/pkg/metrics"
)

const stopTimeout = 10 * time.Second

// Service implements the API dependencies of the job database.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	auth      *auth.Service
	deduper   dedupe.Deduper
	merger    *merge.Merger
	filters   *filter.Registry
	sorter    *sorting.Sorter
	reporter  *report.Builder
	pool      *worker.Pool
	tracker   *tracking.Tracker
	refresher *realtime.Refresher

	// Configuration
	workerCount    int
	queueSize      int
	dedupeSize     int
	debounce       time.Duration
	locale         language.Tag
	location       *time.Location
	emailDomain    string
	page           string
	defaultColumns []string
	defaultSort    string
	now            func() time.Time

	// State
	started    bool
	stopWatch  context.CancelFunc
	catalog    catalogState
	report     reportState
	viewsMu    sync.Mutex
	views      map[string]*viewSession
	bookmarkMu sync.Mutex

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:    runtime.NumCPU(),
		queueSize:      10_000,
		dedupeSize:     50_000,
		debounce:       realtime.DefaultDebounce,
		locale:         language.Japanese,
		location:       time.UTC,
		emailDomain:    auth.DefaultEmailDomain,
		page:           tracking.DefaultPage,
		defaultColumns: defaultColumns(),
		defaultSort:    model.ColSalary,
		now:            time.Now,
		views:          make(map[string]*viewSession),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.auth = auth.New(s.store, auth.WithEmailDomain(s.emailDomain), auth.WithClock(s.now))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.merger = merge.New(merge.WithLocale(s.locale))
	s.filters = filter.NewRegistry()
	s.sorter = sorting.New(sorting.WithLocale(s.locale))
	s.reporter = report.New(report.WithLocation(s.location))
	return s
}

// Start migrates the backend, starts the interaction writers and the
// realtime refresher, and loads the catalog and report once.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting job database service...")

	if err := s.store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.stopWatch = cancel

	s.pool = worker.NewPool(s.workerCount, s.queueSize, tracking.NewWriter(s.store))
	s.pool.Start(runCtx)
	s.tracker = tracking.New(s.pool, tracking.WithPage(s.page), tracking.WithClock(s.now))

	s.refresher = realtime.New(s.store, realtime.WithDebounce(s.debounce))
	s.refresher.Watch("catalog", repository.EntityTables, s.RefreshCatalog)
	s.refresher.Watch("report", slices.Concat(repository.EventTables, []repository.Table{repository.Users}), s.RefreshReport)
	s.refresher.Start(runCtx)

	if err := s.RefreshCatalog(ctx); err != nil {
		s.logger.Warn(ctx, "initial catalog load failed", logger.Error(err))
	}
	if err := s.RefreshReport(ctx); err != nil {
		s.logger.Warn(ctx, "initial report build failed", logger.Error(err))
	}

	s.started = true
	s.logger.Info(ctx, "job database service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop ends open views, drains pending interaction writes, and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	s.logger.Info(ctx, "stopping job database service...")

	s.closeAllViews(ctx)
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Error(ctx, "interaction writers did not drain", logger.Error(err))
	}
	s.stopWatch()
	s.refresher.Wait()
	if err := s.store.Close(); err != nil {
		s.logger.Error(ctx, "store close failed", logger.Error(err))
	}
	s.logger.Info(ctx, "job database service stopped")
}

func (s *Service) running() (*tracking.Tracker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.tracker, nil
}

// SignIn authenticates a student by short id and password.
func (s *Service) SignIn(ctx context.Context, shortID, password string) (auth.Session, error) {
	return s.auth.SignIn(ctx, shortID, password)
}

// SignOut ends every view of the session and clears it.
func (s *Service) SignOut(ctx context.Context, token string) {
	s.closeViewsOf(ctx, token)
	s.auth.SignOut(token)
}

// Authenticate resolves a session token.
func (s *Service) Authenticate(token string) (auth.Session, error) {
	return s.auth.Resolve(token)
}

// RequireAdmin resolves a session token and checks admin rights. Non-admin
// sessions are ended.
func (s *Service) RequireAdmin(ctx context.Context, token string) (auth.Session, error) {
	if sess, err := s.auth.Resolve(token); err == nil && !sess.Actor.Admin {
		s.closeViewsOf(ctx, token)
	}
	return s.auth.RequireAdmin(ctx, token)
}

// CreateUser registers a user; used by seeding.
func (s *Service) CreateUser(ctx context.Context, shortID, password string, admin bool) (model.User, error) {
	return s.auth.CreateUser(ctx, shortID, password, admin)
}

// Claim reserves an idempotency key.
func (s *Service) Claim(ctx context.Context, key string) (dedupe.Response, bool) {
	resp, seen := s.deduper.Claim(ctx, key)
	if seen {
		metrics.RecordIdempotentReplay()
	}
	return resp, seen
}

// Complete stores the response of a claimed idempotency key.
func (s *Service) Complete(ctx context.Context, key string, resp dedupe.Response) {
	s.deduper.Complete(ctx, key, resp)
}

// Release forgets an idempotency key so the request can be retried.
func (s *Service) Release(ctx context.Context, key string) {
	s.deduper.Release(ctx, key)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"dedupeKeys":  s.deduper.Size(),
		"sessions":    s.auth.Count(),
	}
	if s.started {
		pending := s.pool.Len(ctx)
		stats["pendingEvents"] = pending
		stats["activeViews"] = s.activeViews()
		stats["catalogRows"] = s.catalogRows()

		metrics.UpdateQueueSize(pending)
		metrics.UpdateWorkerCount(s.workerCount)
	}
	return stats
}
