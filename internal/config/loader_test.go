package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/jobdb/internal/config"
	"github.com/okian/jobdb/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.Backend, convey.ShouldEqual, config.BackendMemory)
				convey.So(cfg.DefaultColumns, convey.ShouldResemble, []string{model.ColHolidays, model.ColSalary})
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("JOBDB_ADDR", ":8080")
			_ = os.Setenv("JOBDB_QUEUE_SIZE", "500")
			_ = os.Setenv("JOBDB_WORKER_COUNT", "3")
			_ = os.Setenv("JOBDB_REPORT_TIMEZONE", "UTC")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 500)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.ReportTimezone, convey.ShouldEqual, "UTC")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
backend: sqlite
sqlite_path: /tmp/jobs.sqlite
worker_count: 2
default_columns:
  - 企業名
default_sort_key: 年間休日
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("JOBDB_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.Backend, convey.ShouldEqual, config.BackendSQLite)
				convey.So(cfg.SQLitePath, convey.ShouldEqual, "/tmp/jobs.sqlite")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 2)
				convey.So(cfg.DefaultColumns, convey.ShouldResemble, []string{model.ColName})
				convey.So(cfg.DefaultSortKey, convey.ShouldEqual, model.ColHolidays)
				convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(t, "addr: \":9090\"\nworker_count: 2\n")
			_ = os.Setenv("JOBDB_CONFIG", tmpFile)
			_ = os.Setenv("JOBDB_WORKER_COUNT", "7")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 7)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("JOBDB_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("JOBDB_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("JOBDB_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the postgres backend has no DSN", func() {
			_ = os.Setenv("JOBDB_BACKEND", "postgres")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func clearConfigEnvVars() {
	for _, envVar := range []string{
		"JOBDB_CONFIG",
		"JOBDB_ADDR",
		"JOBDB_BACKEND",
		"JOBDB_QUEUE_SIZE",
		"JOBDB_WORKER_COUNT",
		"JOBDB_REPORT_TIMEZONE",
	} {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "jobdb-config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatal(err)
	}
	_ = tmpFile.Close()
	return tmpFile.Name()
}
