package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"golang.org/x/text/language"
)

const (
	envPrefix  = "JOBDB_"
	envConfig  = "JOBDB_CONFIG"
	dotEnvFile = ".env"
)

// Load builds a Config by layering, low to high precedence:
//  1. defaults (New())
//  2. variables from ./.env, if present (never overriding the real environment)
//  3. YAML file if JOBDB_CONFIG is set
//  4. env (prefix JOBDB_)
func Load(_ context.Context) (*Config, error) {
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, dotEnvFile, err)
	}

	k := koanf.New(".")

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// JOBDB_QUEUE_SIZE -> queue_size; underscores match the koanf tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	base := New()
	cfg := *base
	// Decoding a list over a longer default slice keeps the default's tail.
	cfg.DefaultColumns = nil
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if len(cfg.DefaultColumns) == 0 {
		cfg.DefaultColumns = base.DefaultColumns
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.RefreshDebounceMS < 0:
		return fmt.Errorf("%w: refresh_debounce_ms must not be negative", ErrInvalidConfig)
	case c.EmailDomain == "":
		return fmt.Errorf("%w: email_domain must not be empty", ErrInvalidConfig)
	case c.PageName == "":
		return fmt.Errorf("%w: page_name must not be empty", ErrInvalidConfig)
	}

	switch c.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite_path is required for the sqlite backend", ErrInvalidConfig)
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%w: postgres_dsn is required for the postgres backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: %w %q", ErrInvalidConfig, ErrUnknownBackend, c.Backend)
	}

	if _, err := language.Parse(c.CollationLocale); err != nil {
		return fmt.Errorf("%w: collation_locale %q: %w", ErrInvalidConfig, c.CollationLocale, err)
	}
	return nil
}

// Locale returns the parsed collation locale, defaulting to Japanese.
func (c *Config) Locale() language.Tag {
	tag, err := language.Parse(c.CollationLocale)
	if err != nil {
		return language.Japanese
	}
	return tag
}
