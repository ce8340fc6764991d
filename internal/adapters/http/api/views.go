package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/jobdb/internal/auth"
)

// ViewDependencies defines the table view operations.
type ViewDependencies interface {
	OpenView(ctx context.Context, sess auth.Session) (Table, error)
	GetView(ctx context.Context, sess auth.Session, id string) (Table, error)
	ToggleColumn(ctx context.Context, sess auth.Session, id, column string) (Table, error)
	RequestSort(ctx context.Context, sess auth.Session, id, column string) (Table, error)
	ToggleFilter(ctx context.Context, sess auth.Session, id, name string) (Table, error)
	RecordScroll(sess auth.Session, id string, scrollY, viewportHeight, documentHeight float64) (int, error)
	CloseView(ctx context.Context, sess auth.Session, id string) error
}

// ViewHandler serves table view sessions.
type ViewHandler struct {
	deps ViewDependencies
}

// NewViewHandler creates a new view handler.
func NewViewHandler(deps ViewDependencies) *ViewHandler {
	return &ViewHandler{deps: deps}
}

type columnRequest struct {
	Column string `json:"column"`
}

type filterRequest struct {
	Filter string `json:"filter"`
}

type scrollRequest struct {
	ScrollY        float64 `json:"scroll_y"`
	ViewportHeight float64 `json:"viewport_height"`
	DocumentHeight float64 `json:"document_height"`
}

type scrollResponse struct {
	MaxScrollDepth int `json:"max_scroll_depth"`
}

// HandleOpen handles POST /views.
func (h *ViewHandler) HandleOpen(w http.ResponseWriter, r *http.Request, sess auth.Session) {
	t, err := h.deps.OpenView(r.Context(), sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// HandleGet handles GET /views/{id}.
func (h *ViewHandler) HandleGet(w http.ResponseWriter, r *http.Request, sess auth.Session) {
	h.respond(w, r)(h.deps.GetView(r.Context(), sess, r.PathValue("id")))
}

// HandleColumns handles POST /views/{id}/columns.
func (h *ViewHandler) HandleColumns(w http.ResponseWriter, r *http.Request, sess auth.Session) {
	var req columnRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Column) == "" {
		writeError(w, r, ErrBadRequest)
		return
	}
	h.respond(w, r)(h.deps.ToggleColumn(r.Context(), sess, r.PathValue("id"), req.Column))
}

// HandleSort handles POST /views/{id}/sort.
func (h *ViewHandler) HandleSort(w http.ResponseWriter, r *http.Request, sess auth.Session) {
	var req columnRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Column) == "" {
		writeError(w, r, ErrBadRequest)
		return
	}
	h.respond(w, r)(h.deps.RequestSort(r.Context(), sess, r.PathValue("id"), req.Column))
}

// HandleFilters handles POST /views/{id}/filters.
func (h *ViewHandler) HandleFilters(w http.ResponseWriter, r *http.Request, sess auth.Session) {
	var req filterRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Filter) == "" {
		writeError(w, r, ErrBadRequest)
		return
	}
	h.respond(w, r)(h.deps.ToggleFilter(r.Context(), sess, r.PathValue("id"), req.Filter))
}

// HandleScroll handles POST /views/{id}/scroll.
func (h *ViewHandler) HandleScroll(w http.ResponseWriter, r *http.Request, sess auth.Session) {
	var req scrollRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	depth, err := h.deps.RecordScroll(sess, r.PathValue("id"), req.ScrollY, req.ViewportHeight, req.DocumentHeight)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scrollResponse{MaxScrollDepth: depth})
}

// HandleClose handles DELETE /views/{id}.
func (h *ViewHandler) HandleClose(w http.ResponseWriter, r *http.Request, sess auth.Session) {
	if err := h.deps.CloseView(r.Context(), sess, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ViewHandler) respond(w http.ResponseWriter, r *http.Request) func(Table, error) {
	return func(t Table, err error) {
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}
