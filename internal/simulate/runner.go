// Package simulate drives scripted student sessions against a running
// server and checks that the usage report accounts for them.
package simulate

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/jobdb/internal/domain/model"
	"github.com/okian/jobdb/pkg/logger"
)

// Stats holds run statistics.
type Stats struct {
	Sessions  int64
	Actions   int64
	Failed    int64
	StartTime time.Time
	Duration  time.Duration
}

// Result is the outcome of a run.
type Result struct {
	Stats    Stats
	Expected map[model.EventKind]int
	Observed map[model.EventKind]int
}

type reportView struct {
	ByKind []struct {
		Label string `json:"label"`
		Count int    `json:"count"`
	} `json:"by_kind"`
}

// Run executes every plan, waits for the writes to settle, and verifies
// the report counts.
func Run(ctx context.Context, cfg *Config) (*Result, error) {
	log := logger.Get().Named("simulate")
	res := &Result{Stats: Stats{StartTime: time.Now()}}

	health := newHTTPClient(cfg.BaseURL, cfg.Timeout)
	if err := expect(http.StatusOK)(health.do(ctx, http.MethodGet, "/healthz", nil, nil)); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	before, err := readReport(ctx, cfg)
	if err != nil {
		return nil, err
	}

	plans := GeneratePlans(cfg)
	res.Expected = Expected(plans)
	log.Info(ctx, "starting simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("students", len(plans)),
		logger.Int("actionsPerStudent", cfg.ActionsPerStudent),
	)

	var actions, failed, sessions atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for _, p := range plans {
		g.Go(func() error {
			n, f, err := runPlan(gctx, cfg, p)
			actions.Add(int64(n))
			failed.Add(int64(f))
			if err != nil {
				return fmt.Errorf("session %s: %w", p.Student.StudentID, err)
			}
			sessions.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	time.Sleep(cfg.Settle)
	after, err := readReport(ctx, cfg)
	if err != nil {
		return nil, err
	}
	res.Observed = make(map[model.EventKind]int, len(after))
	for k, n := range after {
		res.Observed[k] = n - before[k]
	}

	res.Stats.Sessions = sessions.Load()
	res.Stats.Actions = actions.Load()
	res.Stats.Failed = failed.Load()
	res.Stats.Duration = time.Since(res.Stats.StartTime)

	if err := Verify(res.Expected, res.Observed); err != nil {
		return res, err
	}
	log.Info(ctx, "simulation completed",
		logger.Int64("sessions", res.Stats.Sessions),
		logger.Int64("actions", res.Stats.Actions),
		logger.Int64("failed", res.Stats.Failed),
		logger.String("duration", res.Stats.Duration.String()),
	)
	return res, nil
}

// runPlan plays one session. Rejected actions count as failures; transport
// errors abort the session.
func runPlan(ctx context.Context, cfg *Config, p Plan) (done, failed int, err error) {
	c := newHTTPClient(cfg.BaseURL, cfg.Timeout)
	if err := c.login(ctx, p.Student); err != nil {
		return 0, 0, err
	}
	defer func() { _, _ = c.do(context.WithoutCancel(ctx), http.MethodPost, "/logout", nil, nil) }()

	var view struct {
		ID string `json:"view_id"`
	}
	if err := expect(http.StatusCreated)(c.do(ctx, http.MethodPost, "/views", nil, &view)); err != nil {
		return 0, 0, fmt.Errorf("open view: %w", err)
	}
	base := "/views/" + view.ID

	for _, a := range p.Actions {
		var status int
		switch a.Kind {
		case ActionColumn:
			status, err = c.do(ctx, http.MethodPost, base+"/columns", map[string]string{"column": a.Arg}, nil)
		case ActionSort:
			status, err = c.do(ctx, http.MethodPost, base+"/sort", map[string]string{"column": a.Arg}, nil)
		case ActionFilter:
			status, err = c.do(ctx, http.MethodPost, base+"/filters", map[string]string{"filter": a.Arg}, nil)
		case ActionScroll:
			status, err = c.do(ctx, http.MethodPost, base+"/scroll", map[string]float64{
				"scroll_y": a.Scroll[0], "viewport_height": a.Scroll[1], "document_height": a.Scroll[2],
			}, nil)
		}
		if err != nil {
			return done, failed, err
		}
		if status != http.StatusOK {
			failed++
			continue
		}
		done++
	}

	if err := expect(http.StatusNoContent)(c.do(ctx, http.MethodDelete, base, nil, nil)); err != nil {
		return done, failed, fmt.Errorf("close view: %w", err)
	}
	return done, failed, nil
}

func readReport(ctx context.Context, cfg *Config) (map[model.EventKind]int, error) {
	c := newHTTPClient(cfg.BaseURL, cfg.Timeout)
	if err := c.login(ctx, cfg.Admin); err != nil {
		return nil, fmt.Errorf("admin login: %w", err)
	}
	defer func() { _, _ = c.do(context.WithoutCancel(ctx), http.MethodPost, "/logout", nil, nil) }()

	var rep reportView
	if err := expect(http.StatusOK)(c.do(ctx, http.MethodGet, "/admin/report", nil, &rep)); err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	out := make(map[model.EventKind]int, len(rep.ByKind))
	for _, c := range rep.ByKind {
		out[model.EventKind(c.Label)] = c.Count
	}
	return out, nil
}
