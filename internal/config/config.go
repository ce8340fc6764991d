// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional .env file, an optional YAML file, and env vars.
// - Errors are wrapped with this package's sentinels.
package config

import (
	"runtime"

	"github.com/okian/jobdb/internal/domain/model"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFile adds a rotating file sink when set.
	LogFile string `koanf:"log_file"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Backend selects the table store: memory, sqlite or postgres.
	Backend string `koanf:"backend"`

	SQLitePath  string `koanf:"sqlite_path"`
	PostgresDSN string `koanf:"postgres_dsn"`

	// WorkerCount sets the number of interaction writers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds each writer's queue.
	QueueSize int `koanf:"queue_size"`

	// DedupeSize bounds the idempotency key cache.
	DedupeSize int `koanf:"dedupe_size"`

	// RefreshDebounceMS coalesces change notifications arriving within the window.
	RefreshDebounceMS int `koanf:"refresh_debounce_ms"`

	// CollationLocale is the BCP 47 tag used for string sorting and number formatting.
	CollationLocale string `koanf:"collation_locale"`

	// EmailDomain completes short student ids at sign-in.
	EmailDomain string `koanf:"email_domain"`

	// ReportTimezone is the zone for time-of-day buckets.
	ReportTimezone string `koanf:"report_timezone"`

	// PageName tags view logs of the employer table.
	PageName string `koanf:"page_name"`

	DefaultColumns []string `koanf:"default_columns"`
	DefaultSortKey string   `koanf:"default_sort_key"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		Backend:           BackendMemory,
		SQLitePath:        "jobdb.sqlite",
		WorkerCount:       runtime.NumCPU(),
		QueueSize:         10_000,
		DedupeSize:        50_000,
		RefreshDebounceMS: 250,
		CollationLocale:   "ja",
		EmailDomain:       "example.com",
		ReportTimezone:    "Asia/Tokyo",
		PageName:          "jobs",
		DefaultColumns:    []string{model.ColHolidays, model.ColSalary},
		DefaultSortKey:    model.ColSalary,
	}
}
