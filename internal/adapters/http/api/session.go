package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/jobdb/internal/auth"
)

// SessionDependencies defines the sign-in operations.
type SessionDependencies interface {
	SignIn(ctx context.Context, shortID, password string) (auth.Session, error)
	SignOut(ctx context.Context, token string)
}

// SessionHandler handles login and logout.
type SessionHandler struct {
	deps SessionDependencies
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps SessionDependencies) *SessionHandler {
	return &SessionHandler{deps: deps}
}

type loginRequest struct {
	StudentID string `json:"student_id"`
	Password  string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	StudentID string `json:"student_id"`
	Admin     bool   `json:"admin"`
}

// HandleLogin handles POST /login.
func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.StudentID) == "" || req.Password == "" {
		writeError(w, r, ErrBadRequest)
		return
	}
	sess, err := h.deps.SignIn(r.Context(), req.StudentID, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, loginResponse{
		Token:     sess.Token,
		StudentID: sess.Actor.ShortID(),
		Admin:     sess.Actor.Admin,
	})
}

// HandleLogout handles POST /logout. It always succeeds.
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		h.deps.SignOut(r.Context(), token)
	}
	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
