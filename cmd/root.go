package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/jobdb/internal/adapters/repository"
	"github.com/okian/jobdb/internal/adapters/repository/postgres"
	"github.com/okian/jobdb/internal/adapters/repository/sqlite"
	app "github.com/okian/jobdb/internal/app"
	"github.com/okian/jobdb/internal/config"
	"github.com/okian/jobdb/internal/domain/report"
	"github.com/okian/jobdb/internal/simulate"
	"github.com/okian/jobdb/pkg/logger"
)

const configEnv = "JOBDB_CONFIG"

type rootOptions struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "jobdb",
		Short:         "Employer database for students with usage analytics",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd.Context())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = logger.Sync()
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (overrides "+configEnv+")")

	root.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newSeedCmd(opts),
		newReportCmd(opts),
		newSimulateCmd(opts),
	)
	return root
}

// setup loads configuration and initializes logging.
func (o *rootOptions) setup(ctx context.Context) error {
	if o.configPath != "" {
		if err := os.Setenv(configEnv, o.configPath); err != nil {
			return fmt.Errorf("set %s: %w", configEnv, err)
		}
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	o.cfg = cfg

	var lopts []logger.Option
	if cfg.LogFile != "" {
		lopts = append(lopts, logger.WithFile(cfg.LogFile))
	}
	if err := logger.Init(lopts...); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return nil
}

// openStore connects the configured backend.
func openStore(cfg *config.Config) (repository.Store, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		return sqlite.Open(cfg.SQLitePath)
	case config.BackendPostgres:
		return postgres.Open(cfg.PostgresDSN)
	default:
		return repository.NewMemoryStore(), nil
	}
}

// serviceOptions maps configuration onto service options.
func serviceOptions(cfg *config.Config, store repository.Store) []app.Option {
	return []app.Option{
		app.WithStore(store),
		app.WithLogger(logger.Get().Named("service")),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithRefreshDebounce(time.Duration(cfg.RefreshDebounceMS) * time.Millisecond),
		app.WithLocale(cfg.Locale()),
		app.WithReportLocation(report.LoadLocation(cfg.ReportTimezone)),
		app.WithEmailDomain(cfg.EmailDomain),
		app.WithPage(cfg.PageName),
		app.WithDefaultColumns(cfg.DefaultColumns...),
		app.WithDefaultSortKey(cfg.DefaultSortKey),
	}
}

func newMigrateCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing backend tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(o.cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Get().Info(cmd.Context(), "schema up to date", logger.String("backend", o.cfg.Backend))
			return nil
		},
	}
}

func newSeedCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert demo employers and accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(o.cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			data := app.DemoData()
			if err := app.New(serviceOptions(o.cfg, store)...).Seed(cmd.Context(), data); err != nil {
				return err
			}
			logger.Get().Info(cmd.Context(), "demo data inserted",
				logger.Int("companies", len(data.Companies)),
				logger.Int("users", len(data.Users)),
			)
			return nil
		},
	}
}

func newReportCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Compute the usage report once and print it as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(o.cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			rep, err := app.New(serviceOptions(o.cfg, store)...).BuildReport(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		},
	}
}

func newSimulateCmd(_ *rootOptions) *cobra.Command {
	cfg := simulate.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Drive demo student sessions against a running server and verify the report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := simulate.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			logger.Get().Info(cmd.Context(), "simulation verified", logger.Any("observed", res.Observed))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "base URL of the service")
	f.IntVar(&cfg.ActionsPerStudent, "actions", cfg.ActionsPerStudent, "table interactions per session")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent sessions")
	f.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP request timeout")
	f.DurationVar(&cfg.Settle, "settle", cfg.Settle, "wait before reading the report")
	f.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "action plan seed")
	return cmd
}
