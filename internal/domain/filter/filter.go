// Package filter implements the row filters of the employer table.
//
// Every enabled filter is a predicate; a row is visible only when all of
// them accept it. Filters never reorder rows.
package filter

import (
	"slices"

	"github.com/okian/jobdb/internal/domain/model"
	"github.com/okian/jobdb/internal/domain/value"
)

// Registered filter names.
const (
	HideUnknownHolidays      = "hideUnknownHolidays"
	HideUnknownOvertime      = "hideUnknownOvertime"
	HideUnknownWeeklyHoliday = "hideUnknownWeeklyHoliday"
	HideUnknownSalary        = "hideUnknownSalary"
	ShowOnlyBookmarks        = "showOnlyBookmarks"
)

// Filter describes one toggleable predicate.
type Filter struct {
	Name string
	// Column is the attribute inspected by exclusion filters.
	Column string
	// Excludes lists the value kinds removed when the filter is on.
	Excludes []value.Kind
	// Bookmarks marks the filter keeping only the actor's bookmarked rows.
	Bookmarks bool
}

func (f Filter) accepts(row model.Row, bookmarks map[string]struct{}) bool {
	if f.Bookmarks {
		_, ok := bookmarks[row.ID]
		return ok
	}
	return !slices.Contains(f.Excludes, row.Cell(f.Column).Kind())
}

// Registry holds the known filters in display order.
type Registry struct {
	filters map[string]Filter
	order   []string
}

// NewRegistry returns the standard filters. Exclusion filters drop both
// Unknown and NoRecord values unless reconfigured with WithExcluded.
func NewRegistry(opts ...Option) *Registry {
	sentinels := []value.Kind{value.KindUnknown, value.KindNoRecord}
	r := &Registry{filters: make(map[string]Filter)}
	for _, f := range []Filter{
		{Name: HideUnknownHolidays, Column: model.ColHolidays, Excludes: sentinels},
		{Name: HideUnknownOvertime, Column: model.ColOvertime, Excludes: sentinels},
		{Name: HideUnknownWeeklyHoliday, Column: model.ColWeeklyHoliday, Excludes: sentinels},
		{Name: HideUnknownSalary, Column: model.ColSalary, Excludes: sentinels},
		{Name: ShowOnlyBookmarks, Bookmarks: true},
	} {
		r.filters[f.Name] = f
		r.order = append(r.order, f.Name)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Names returns the registered names in display order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// Lookup returns the filter registered under name.
func (r *Registry) Lookup(name string) (Filter, bool) {
	f, ok := r.filters[name]
	return f, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.filters[name]
	return ok
}

// Apply returns the rows accepted by every enabled filter, preserving order.
// Enabled entries for unregistered names are ignored. bookmarks holds the
// company ids bookmarked by the viewing actor. The result never aliases rows.
func (r *Registry) Apply(rows []model.Row, enabled map[string]bool, bookmarks map[string]struct{}) []model.Row {
	active := make([]Filter, 0, len(enabled))
	for _, name := range r.order {
		if enabled[name] {
			active = append(active, r.filters[name])
		}
	}

	out := make([]model.Row, 0, len(rows))
	for _, row := range rows {
		keep := true
		for _, f := range active {
			if !f.accepts(row, bookmarks) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return out
}
