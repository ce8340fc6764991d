package service

import (
	"time"

	"golang.org/x/text/language"

	"github.com/okian/jobdb/internal/adapters/repository"
	"github.com/okian/jobdb/internal/domain/model"
	"github.com/okian/jobdb/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the backend. The service closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithWorkerCount sets the number of interaction writers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of each writer queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the idempotency cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithRefreshDebounce sets the realtime coalescing window.
func WithRefreshDebounce(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithLocale sets the collation and number formatting locale.
func WithLocale(tag language.Tag) Option {
	return func(s *Service) {
		s.locale = tag
	}
}

// WithReportLocation sets the zone for time-of-day buckets.
func WithReportLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithEmailDomain sets the domain that completes short ids at sign-in.
func WithEmailDomain(domain string) Option {
	return func(s *Service) {
		if domain != "" {
			s.emailDomain = domain
		}
	}
}

// WithPage sets the page name of view logs.
func WithPage(page string) Option {
	return func(s *Service) {
		if page != "" {
			s.page = page
		}
	}
}

// WithDefaultColumns sets the initial column selection of new views.
func WithDefaultColumns(columns ...string) Option {
	return func(s *Service) {
		if len(columns) > 0 {
			s.defaultColumns = columns
		}
	}
}

// WithDefaultSortKey sets the initial ascending sort key of new views.
func WithDefaultSortKey(key string) Option {
	return func(s *Service) {
		if key != "" {
			s.defaultSort = key
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func defaultColumns() []string {
	return []string{model.ColHolidays, model.ColSalary}
}
