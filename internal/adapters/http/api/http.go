// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/jobdb/internal/app"
	"github.com/okian/jobdb/internal/auth"
	"github.com/okian/jobdb/internal/domain/dedupe"
	"github.com/okian/jobdb/internal/domain/model"
	"github.com/okian/jobdb/internal/domain/report"
	"github.com/okian/jobdb/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Session management.
	SignIn(ctx context.Context, shortID, password string) (auth.Session, error)
	SignOut(ctx context.Context, token string)
	Authenticate(token string) (auth.Session, error)
	RequireAdmin(ctx context.Context, token string) (auth.Session, error)

	// Idempotency-Key bookkeeping.
	Claim(ctx context.Context, key string) (dedupe.Response, bool)
	Complete(ctx context.Context, key string, resp dedupe.Response)
	Release(ctx context.Context, key string)

	// Table view sessions.
	OpenView(ctx context.Context, sess auth.Session) (Table, error)
	GetView(ctx context.Context, sess auth.Session, id string) (Table, error)
	ToggleColumn(ctx context.Context, sess auth.Session, id, column string) (Table, error)
	RequestSort(ctx context.Context, sess auth.Session, id, column string) (Table, error)
	ToggleFilter(ctx context.Context, sess auth.Session, id, name string) (Table, error)
	RecordScroll(sess auth.Session, id string, scrollY, viewportHeight, documentHeight float64) (int, error)
	CloseView(ctx context.Context, sess auth.Session, id string) error

	// Bookmarks.
	ListBookmarks(ctx context.Context, actor model.Actor) ([]model.Bookmark, error)
	ToggleBookmark(ctx context.Context, actor model.Actor, companyID string) (bool, error)

	// Usage analytics.
	Report(ctx context.Context) (*report.Report, error)
}

// Table mirrors the rendered view returned by the service.
type Table = service.Table

// Server wires HTTP routes for the business API.
type Server struct {
	deps           Dependencies
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	sessionHandler *SessionHandler
	viewHandler    *ViewHandler
	bookmarks      *BookmarkHandler
	reportHandler  *ReportHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		deps:           deps,
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		sessionHandler: NewSessionHandler(deps),
		viewHandler:    NewViewHandler(deps),
		bookmarks:      NewBookmarkHandler(deps),
		reportHandler:  NewReportHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /login", MetricsMiddleware(s.sessionHandler.HandleLogin, "login"))
	mux.HandleFunc("POST /logout", MetricsMiddleware(s.sessionHandler.HandleLogout, "logout"))

	mux.HandleFunc("POST /views", s.protected("views", s.viewHandler.HandleOpen))
	mux.HandleFunc("GET /views/{id}", s.protected("views", s.viewHandler.HandleGet))
	mux.HandleFunc("POST /views/{id}/columns", s.protected("views_columns", s.viewHandler.HandleColumns))
	mux.HandleFunc("POST /views/{id}/sort", s.protected("views_sort", s.viewHandler.HandleSort))
	mux.HandleFunc("POST /views/{id}/filters", s.protected("views_filters", s.viewHandler.HandleFilters))
	mux.HandleFunc("POST /views/{id}/scroll", s.protected("views_scroll", s.viewHandler.HandleScroll))
	mux.HandleFunc("DELETE /views/{id}", s.protected("views", s.viewHandler.HandleClose))

	mux.HandleFunc("GET /bookmarks", s.protected("bookmarks", s.bookmarks.HandleList))
	mux.HandleFunc("POST /bookmarks/{companyID}", s.protected("bookmarks", s.bookmarks.HandleToggle))

	mux.HandleFunc("GET /admin/report", MetricsMiddleware(AdminMiddleware(s.deps, s.reportHandler.HandleReport), "admin_report"))
}

// protected stacks metrics, authentication and idempotency around next.
func (s *Server) protected(endpoint string, next sessionHandlerFunc) http.HandlerFunc {
	return MetricsMiddleware(AuthMiddleware(s.deps, IdempotencyMiddleware(s.deps, next)), endpoint)
}

type errorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the fixed public form of err. Server-side failures are
// logged with their cause.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := classify(err)
	if e.status >= http.StatusInternalServerError {
		logger.Get().Named("api").Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.Int("status", e.status),
			logger.Error(err),
		)
	}
	writeJSON(w, e.status, errorResponse{Code: e.code, Message: e.message, Redirect: e.redirect})
}
