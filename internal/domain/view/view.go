// Package view holds the per-session presentation state of the employer
// table and reports every user mutation to a Recorder.
package view

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/okian/jobdb/internal/domain/filter"
	"github.com/okian/jobdb/internal/domain/model"
	"github.com/okian/jobdb/internal/domain/sorting"
)

// Recorder receives one call per successful mutation, carrying the state
// after the mutation. Calls are made with the view locked, in mutation
// order, so implementations must not block or call back into the view.
type Recorder interface {
	ColumnsChanged(columns []string)
	SortRequested(cfg sorting.Config)
	FilterToggled(name string, enabled bool)
}

// State is a snapshot of the view configuration.
type State struct {
	Columns []string        `json:"columns"`
	Sort    sorting.Config  `json:"sort"`
	Filters map[string]bool `json:"filters"`
}

func (s State) clone() State {
	return State{
		Columns: slices.Clone(s.Columns),
		Sort:    s.Sort,
		Filters: maps.Clone(s.Filters),
	}
}

// View is the mutable state of one table session.
type View struct {
	mu       sync.Mutex
	state    State
	filters  *filter.Registry
	sorter   *sorting.Sorter
	recorder Recorder
}

// New creates a view with every registered filter off. Without options the
// selection is [年間休日, 給与] sorted by 給与 ascending. The initial state is
// not recorded.
func New(filters *filter.Registry, sorter *sorting.Sorter, recorder Recorder, opts ...Option) *View {
	v := &View{
		state: State{
			Columns: []string{model.ColHolidays, model.ColSalary},
			Sort:    sorting.Config{Key: model.ColSalary, Direction: model.Ascending},
			Filters: make(map[string]bool),
		},
		filters:  filters,
		sorter:   sorter,
		recorder: recorder,
	}
	for _, name := range filters.Names() {
		v.state.Filters[name] = false
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// State returns a copy of the current configuration.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.clone()
}

// ToggleColumn adds name when absent and removes it when present.
func (v *View) ToggleColumn(name string) State {
	v.mu.Lock()
	if i := slices.Index(v.state.Columns, name); i >= 0 {
		v.state.Columns = slices.Delete(v.state.Columns, i, i+1)
	} else {
		v.state.Columns = append(v.state.Columns, name)
	}
	s := v.state.clone()
	v.recorder.ColumnsChanged(slices.Clone(s.Columns))
	v.mu.Unlock()
	return s
}

// RequestSort applies sorting.Config.Request for key.
func (v *View) RequestSort(key string) State {
	v.mu.Lock()
	v.state.Sort = v.state.Sort.Request(key)
	s := v.state.clone()
	v.recorder.SortRequested(s.Sort)
	v.mu.Unlock()
	return s
}

// ToggleFilter flips a registered filter. Unregistered names leave the
// state untouched, record nothing, and return filter.ErrUnknownFilter.
func (v *View) ToggleFilter(name string) (State, error) {
	if !v.filters.Has(name) {
		return v.State(), fmt.Errorf("%w: %q", filter.ErrUnknownFilter, name)
	}
	v.mu.Lock()
	enabled := !v.state.Filters[name]
	v.state.Filters[name] = enabled
	s := v.state.clone()
	v.recorder.FilterToggled(name, enabled)
	v.mu.Unlock()
	return s, nil
}

// Apply filters then sorts rows with the current configuration.
// bookmarks holds the company ids bookmarked by the viewer.
func (v *View) Apply(rows []model.Row, bookmarks map[string]struct{}) ([]model.Row, State) {
	s := v.State()
	visible := v.filters.Apply(rows, s.Filters, bookmarks)
	return v.sorter.Sort(visible, s.Sort), s
}
