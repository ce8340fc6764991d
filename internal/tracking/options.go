package tracking

import (
	"time"

	"github.com/okian/jobdb/pkg/logger"
)

// Option configures a Tracker.
type Option func(*Tracker)

// WithPage sets the page name recorded on view logs.
func WithPage(page string) Option {
	return func(t *Tracker) {
		if page != "" {
			t.page = page
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithIDFunc sets the generator for event ids.
func WithIDFunc(fn func() string) Option {
	return func(t *Tracker) {
		if fn != nil {
			t.newID = fn
		}
	}
}

// WithLogger sets the operational logger.
func WithLogger(l logger.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}
