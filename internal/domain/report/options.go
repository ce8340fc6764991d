package report

import "time"

// Option configures a Builder.
type Option func(*Builder)

// WithLocation sets the time zone used for time-of-day buckets.
func WithLocation(loc *time.Location) Option {
	return func(b *Builder) {
		if loc != nil {
			b.loc = loc
		}
	}
}

// WithTopN sets how many students the activity ranking keeps.
func WithTopN(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.topN = n
		}
	}
}
