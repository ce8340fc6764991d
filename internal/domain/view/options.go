package view

import (
	"slices"

	"github.com/okian/jobdb/internal/domain/sorting"
)

// Option configures a View.
type Option func(*View)

// WithColumns sets the initial column selection. Duplicates are dropped.
func WithColumns(columns ...string) Option {
	return func(v *View) {
		v.state.Columns = v.state.Columns[:0]
		for _, c := range columns {
			if !slices.Contains(v.state.Columns, c) {
				v.state.Columns = append(v.state.Columns, c)
			}
		}
	}
}

// WithSort sets the initial sort configuration.
func WithSort(cfg sorting.Config) Option {
	return func(v *View) {
		v.state.Sort = cfg
	}
}
