package realtime

import (
	"time"

	"github.com/okian/jobdb/pkg/logger"
)

// Option configures a Refresher.
type Option func(*Refresher)

// WithDebounce sets the quiet period that coalesces bursts of changes.
func WithDebounce(d time.Duration) Option {
	return func(r *Refresher) {
		if d > 0 {
			r.debounce = d
		}
	}
}

// WithLogger sets the refresher's logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Refresher) {
		if l != nil {
			r.logger = l
		}
	}
}
