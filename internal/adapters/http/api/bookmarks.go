package api

import (
	"context"
	"net/http"
	"time"

	"github.com/okian/jobdb/internal/auth"
	"github.com/okian/jobdb/internal/domain/model"
)

// BookmarkDependencies defines the bookmark operations.
type BookmarkDependencies interface {
	ListBookmarks(ctx context.Context, actor model.Actor) ([]model.Bookmark, error)
	ToggleBookmark(ctx context.Context, actor model.Actor, companyID string) (bool, error)
}

// BookmarkHandler serves the actor's bookmarks.
type BookmarkHandler struct {
	deps BookmarkDependencies
}

// NewBookmarkHandler creates a new bookmark handler.
func NewBookmarkHandler(deps BookmarkDependencies) *BookmarkHandler {
	return &BookmarkHandler{deps: deps}
}

type bookmarkItem struct {
	CompanyID string `json:"company_id"`
	CreatedAt string `json:"created_at"`
}

type bookmarkState struct {
	CompanyID  string `json:"company_id"`
	Bookmarked bool   `json:"bookmarked"`
}

// HandleList handles GET /bookmarks.
func (h *BookmarkHandler) HandleList(w http.ResponseWriter, r *http.Request, sess auth.Session) {
	marks, err := h.deps.ListBookmarks(r.Context(), sess.Actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]bookmarkItem, 0, len(marks))
	for _, m := range marks {
		out = append(out, bookmarkItem{CompanyID: m.CompanyID, CreatedAt: m.CreatedAt.Format(time.RFC3339)})
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleToggle handles POST /bookmarks/{companyID}.
func (h *BookmarkHandler) HandleToggle(w http.ResponseWriter, r *http.Request, sess auth.Session) {
	id := r.PathValue("companyID")
	on, err := h.deps.ToggleBookmark(r.Context(), sess.Actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookmarkState{CompanyID: id, Bookmarked: on})
}
