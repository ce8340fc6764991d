package service

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/okian/jobdb/internal/auth"
	"github.com/okian/jobdb/internal/domain/model"
	"github.com/okian/jobdb/internal/domain/sorting"
	"github.com/okian/jobdb/internal/domain/value"
	"github.com/okian/jobdb/internal/domain/view"
	"github.com/okian/jobdb/internal/tracking"
	"github.com/okian/jobdb/pkg/logger"
	"github.com/okian/jobdb/pkg/metrics"
)

const (
	// EmptyMessage is shown when no employer row passes the filters.
	EmptyMessage = "該当する企業データがありません"
	// UnavailableMessage is shown when the catalog or bookmarks could not be fetched.
	UnavailableMessage = "データを取得できませんでした"
)

type viewSession struct {
	id     string
	token  string
	actor  model.Actor
	view   *view.View
	handle tracking.ViewHandle

	mu       sync.Mutex
	maxDepth int
}

// TableRow is one rendered employer row. Cells follow Table.Columns.
type TableRow struct {
	ID         string        `json:"id"`
	Name       value.Value   `json:"name"`
	Bookmarked bool          `json:"bookmarked"`
	Cells      []value.Value `json:"cells"`
}

// Table is the rendered state of a view session.
type Table struct {
	ViewID  string          `json:"view_id"`
	Columns []string        `json:"columns"`
	Sort    sorting.Config  `json:"sort"`
	Filters map[string]bool `json:"filters"`
	Rows    []TableRow      `json:"rows"`
	Empty   bool            `json:"empty"`
	// Unavailable marks a fetch failure; Rows is then empty.
	Unavailable bool   `json:"unavailable"`
	Message     string `json:"message,omitempty"`
}

// OpenView mounts a table view for the session's actor and logs a view start.
func (s *Service) OpenView(ctx context.Context, sess auth.Session) (Table, error) {
	tracker, err := s.running()
	if err != nil {
		return Table{}, err
	}
	vs := &viewSession{
		id:    uuid.NewString(),
		token: sess.Token,
		actor: sess.Actor,
		view: view.New(s.filters, s.sorter, tracker.Recorder(ctx, sess.Actor),
			view.WithColumns(s.defaultColumns...),
			view.WithSort(sorting.Config{Key: s.defaultSort, Direction: model.Ascending}),
		),
	}
	vs.handle = tracker.LogViewStart(ctx, sess.Actor)

	s.viewsMu.Lock()
	s.views[vs.id] = vs
	n := len(s.views)
	s.viewsMu.Unlock()
	metrics.UpdateActiveViewSessions(n)

	return s.render(ctx, vs), nil
}

func (s *Service) session(sess auth.Session, id string) (*viewSession, error) {
	s.viewsMu.Lock()
	defer s.viewsMu.Unlock()
	vs, ok := s.views[id]
	if !ok || vs.actor.ID != sess.Actor.ID {
		return nil, fmt.Errorf("%w: %s", ErrViewNotFound, id)
	}
	return vs, nil
}

// GetView renders an open view.
func (s *Service) GetView(ctx context.Context, sess auth.Session, id string) (Table, error) {
	vs, err := s.session(sess, id)
	if err != nil {
		return Table{}, err
	}
	return s.render(ctx, vs), nil
}

// ToggleColumn adds or removes a catalog column from the view.
func (s *Service) ToggleColumn(ctx context.Context, sess auth.Session, id, column string) (Table, error) {
	if !slices.Contains(model.Columns, column) {
		return Table{}, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	vs, err := s.session(sess, id)
	if err != nil {
		return Table{}, err
	}
	vs.view.ToggleColumn(column)
	return s.render(ctx, vs), nil
}

// RequestSort sorts the view by column, flipping direction on a repeated key.
func (s *Service) RequestSort(ctx context.Context, sess auth.Session, id, column string) (Table, error) {
	if !slices.Contains(model.Columns, column) {
		return Table{}, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	vs, err := s.session(sess, id)
	if err != nil {
		return Table{}, err
	}
	vs.view.RequestSort(column)
	return s.render(ctx, vs), nil
}

// ToggleFilter flips a named filter of the view.
func (s *Service) ToggleFilter(ctx context.Context, sess auth.Session, id, name string) (Table, error) {
	vs, err := s.session(sess, id)
	if err != nil {
		return Table{}, err
	}
	if _, err := vs.view.ToggleFilter(name); err != nil {
		return Table{}, err
	}
	return s.render(ctx, vs), nil
}

// RecordScroll folds one scroll sample into the view's maximum depth and
// returns the maximum so far.
func (s *Service) RecordScroll(sess auth.Session, id string, scrollY, viewportHeight, documentHeight float64) (int, error) {
	vs, err := s.session(sess, id)
	if err != nil {
		return 0, err
	}
	vs.mu.Lock()
	defer vs.mu.Unlock()
	if depth, ok := tracking.ScrollDepth(scrollY, viewportHeight, documentHeight); ok {
		vs.maxDepth = max(vs.maxDepth, depth)
	}
	return vs.maxDepth, nil
}

// CloseView unmounts a view and logs its duration and scroll depth.
func (s *Service) CloseView(ctx context.Context, sess auth.Session, id string) error {
	vs, err := s.session(sess, id)
	if err != nil {
		return err
	}
	s.end(ctx, vs)
	return nil
}

func (s *Service) end(ctx context.Context, vs *viewSession) {
	s.viewsMu.Lock()
	_, ok := s.views[vs.id]
	delete(s.views, vs.id)
	n := len(s.views)
	s.viewsMu.Unlock()
	if !ok {
		return
	}
	metrics.UpdateActiveViewSessions(n)

	vs.mu.Lock()
	depth := vs.maxDepth
	vs.mu.Unlock()
	s.tracker.LogViewEnd(ctx, vs.actor, vs.handle.StartedAt, depth)
}

func (s *Service) closeViewsOf(ctx context.Context, token string) {
	for _, vs := range s.collect(func(vs *viewSession) bool { return vs.token == token }) {
		s.end(ctx, vs)
	}
}

func (s *Service) closeAllViews(ctx context.Context) {
	for _, vs := range s.collect(func(*viewSession) bool { return true }) {
		s.end(ctx, vs)
	}
}

func (s *Service) collect(keep func(*viewSession) bool) []*viewSession {
	s.viewsMu.Lock()
	defer s.viewsMu.Unlock()
	var out []*viewSession
	for _, vs := range s.views {
		if keep(vs) {
			out = append(out, vs)
		}
	}
	return out
}

func (s *Service) activeViews() int {
	s.viewsMu.Lock()
	defer s.viewsMu.Unlock()
	return len(s.views)
}

// render applies the view's filters and sort to the catalog. Fetch
// failures render the unavailable state; details go to the log only.
func (s *Service) render(ctx context.Context, vs *viewSession) Table {
	st := vs.view.State()
	t := Table{
		ViewID:  vs.id,
		Columns: st.Columns,
		Sort:    st.Sort,
		Filters: st.Filters,
		Rows:    []TableRow{},
	}

	rows, err := s.Catalog()
	if err != nil {
		s.logger.Warn(ctx, "rendering without catalog", logger.Error(err))
		return unavailable(t)
	}
	marks, err := s.Bookmarks(ctx, vs.actor)
	if err != nil {
		return unavailable(t)
	}

	visible, st := vs.view.Apply(rows, marks)
	t.Columns, t.Sort, t.Filters = st.Columns, st.Sort, st.Filters
	t.Rows = make([]TableRow, 0, len(visible))
	for _, r := range visible {
		tr := TableRow{ID: r.ID, Name: r.Cell(model.ColName), Cells: make([]value.Value, len(st.Columns))}
		_, tr.Bookmarked = marks[r.ID]
		for i, col := range st.Columns {
			tr.Cells[i] = r.Cell(col)
		}
		t.Rows = append(t.Rows, tr)
	}
	if len(t.Rows) == 0 {
		t.Empty = true
		t.Message = EmptyMessage
	}
	return t
}

func unavailable(t Table) Table {
	t.Empty = true
	t.Unavailable = true
	t.Message = UnavailableMessage
	return t
}
