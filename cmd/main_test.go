package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/jobdb/internal/adapters/repository"
	app "github.com/okian/jobdb/internal/app"
	"github.com/okian/jobdb/internal/config"
)

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for k, v := range kv {
		t.Setenv(k, v)
	}
}

func TestConfigFromEnvironment(t *testing.T) {
	setEnv(t, map[string]string{
		"JOBDB_ADDR":         ":8080",
		"JOBDB_QUEUE_SIZE":   "1000",
		"JOBDB_WORKER_COUNT": "4",
	})

	convey.Convey("Given JOBDB_ variables in the environment", t, func() {
		cfg, err := config.Load(context.Background())

		convey.Convey("Then they override the defaults", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
		})

		convey.Convey("And the memory backend opens without I/O", func() {
			store, err := openStore(cfg)
			convey.So(err, convey.ShouldBeNil)
			_, ok := store.(*repository.MemoryStore)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(store.Close(), convey.ShouldBeNil)
		})
	})
}

func TestCommandTree(t *testing.T) {
	convey.Convey("Given the root command", t, func() {
		root := newRootCmd()

		convey.Convey("Then every subcommand is registered", func() {
			for _, name := range []string{"serve", "migrate", "seed", "report", "simulate"} {
				cmd, _, err := root.Find([]string{name})
				convey.So(err, convey.ShouldBeNil)
				convey.So(cmd.Name(), convey.ShouldEqual, name)
			}
		})

		convey.Convey("And --config is a persistent flag", func() {
			convey.So(root.PersistentFlags().Lookup("config"), convey.ShouldNotBeNil)
		})

		convey.Convey("And simulate exposes its knobs", func() {
			cmd, _, _ := root.Find([]string{"simulate"})
			for _, flag := range []string{"url", "actions", "workers", "timeout", "settle", "seed"} {
				convey.So(cmd.Flags().Lookup(flag), convey.ShouldNotBeNil)
			}
		})
	})
}

func TestSeedAndReportCommands(t *testing.T) {
	dir := t.TempDir()
	setEnv(t, map[string]string{
		"JOBDB_BACKEND":     config.BackendSQLite,
		"JOBDB_SQLITE_PATH": filepath.Join(dir, "jobdb.sqlite"),
		"JOBDB_LOG_LEVEL":   "error",
	})

	convey.Convey("Given a fresh sqlite file", t, func() {
		run := func(args ...string) (string, error) {
			var out bytes.Buffer
			root := newRootCmd()
			root.SetOut(&out)
			root.SetArgs(args)
			err := root.ExecuteContext(context.Background())
			return out.String(), err
		}

		convey.Convey("When migrate, seed and report run in turn", func() {
			_, err := run("migrate")
			convey.So(err, convey.ShouldBeNil)
			_, err = run("seed")
			convey.So(err, convey.ShouldBeNil)
			out, err := run("report")
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the report is printed as JSON", func() {
				var rep map[string]any
				convey.So(json.Unmarshal([]byte(out), &rep), convey.ShouldBeNil)
				convey.So(rep, convey.ShouldContainKey, "total_events")
				convey.So(rep, convey.ShouldContainKey, "by_kind")
			})
		})
	})
}

func TestInvalidConfigFailsSetup(t *testing.T) {
	setEnv(t, map[string]string{"JOBDB_BACKEND": "mongo"})

	convey.Convey("Given an unknown backend", t, func() {
		root := newRootCmd()
		root.SetArgs([]string{"migrate"})

		convey.Convey("Then the command fails before touching storage", func() {
			convey.So(root.ExecuteContext(context.Background()), convey.ShouldNotBeNil)
		})
	})
}

func TestConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobdb.yaml")
	if err := os.WriteFile(path, []byte("page_name: careers\nworker_count: 2\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(configEnv, "")

	convey.Convey("Given --config naming a YAML file", t, func() {
		opts := &rootOptions{configPath: path}
		err := opts.setup(context.Background())

		convey.Convey("Then the file is layered over the defaults", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(opts.cfg.PageName, convey.ShouldEqual, "careers")
			convey.So(opts.cfg.WorkerCount, convey.ShouldEqual, 2)
		})
	})
}

func TestServeMux(t *testing.T) {
	convey.Convey("Given a started service behind the mux", t, func() {
		ctx := context.Background()
		svc := app.New()
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		srv := httptest.NewServer(newMux(ctx, svc))
		defer srv.Close()

		convey.Convey("Then health, stats and docs are served", func() {
			for _, path := range []string{"/healthz", "/stats", "/openapi.yaml"} {
				resp, err := http.Get(srv.URL + path)
				convey.So(err, convey.ShouldBeNil)
				_ = resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("And the stats updater reads service gauges", func() {
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})
	})
}

func TestSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("Then a single update does not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})
	})
}
