package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/jobdb/internal/adapters/repository"
	"github.com/okian/jobdb/internal/domain/model"
	"github.com/okian/jobdb/internal/domain/report"
	"github.com/okian/jobdb/pkg/logger"
	"github.com/okian/jobdb/pkg/metrics"
)

type reportState struct {
	mu     sync.RWMutex
	latest *report.Report
}

// RefreshReport recomputes the usage report from every event table and the
// users table. Malformed rows are logged and counted with what could be decoded.
func (s *Service) RefreshReport(ctx context.Context) error {
	start := time.Now()
	rep, err := s.BuildReport(ctx)
	elapsed := float64(time.Since(start).Milliseconds())
	if err != nil {
		metrics.RecordReportRecompute("error", elapsed)
		return err
	}
	metrics.RecordReportRecompute("ok", elapsed)

	s.report.mu.Lock()
	s.report.latest = rep
	s.report.mu.Unlock()
	return nil
}

// BuildReport computes a fresh report without caching it.
func (s *Service) BuildReport(ctx context.Context) (*report.Report, error) {
	// One slot per event table keeps the merged order independent of
	// which fetch finishes first.
	var (
		parts = make([][]model.Interaction, len(repository.EventTables))
		users []model.User
	)
	g, gctx := errgroup.WithContext(ctx)
	for i, table := range repository.EventTables {
		g.Go(func() error {
			rows, err := s.store.Query(gctx, table, repository.Query{OrderBy: repository.ColTimestamp})
			if err != nil {
				return fmt.Errorf("query %s: %w", table, err)
			}
			parts[i] = s.decodeEvents(ctx, table, rows)
			return nil
		})
	}
	g.Go(func() error {
		rows, err := s.store.Query(gctx, repository.Users, repository.Query{})
		if err != nil {
			return fmt.Errorf("query %s: %w", repository.Users, err)
		}
		users = decodeAll(rows, repository.DecodeUser)
		return nil
	})
	if err := g.Wait(); err != nil {
		metrics.RecordErrorByComponent("report", "fetch")
		s.logger.Error(ctx, "report fetch failed", logger.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}
	events := slices.Concat(parts...)
	slices.SortStableFunc(events, func(a, b model.Interaction) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return s.reporter.Build(events, users, s.now()), nil
}

func (s *Service) decodeEvents(ctx context.Context, table repository.Table, rows []repository.Record) []model.Interaction {
	out := make([]model.Interaction, 0, len(rows))
	for _, r := range rows {
		e, err := repository.DecodeInteraction(table, r)
		if err != nil {
			metrics.RecordErrorByComponent("report", "decode")
			s.logger.Warn(ctx, "malformed event row",
				logger.String("table", string(table)),
				logger.String("id", r.ID()),
				logger.Error(err),
			)
			if !errors.Is(err, repository.ErrMalformedValue) {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

// Report returns the latest report, building one when none is cached.
func (s *Service) Report(ctx context.Context) (*report.Report, error) {
	s.report.mu.RLock()
	rep := s.report.latest
	s.report.mu.RUnlock()
	if rep != nil {
		return rep, nil
	}
	if err := s.RefreshReport(ctx); err != nil {
		return nil, err
	}
	s.report.mu.RLock()
	defer s.report.mu.RUnlock()
	return s.report.latest, nil
}
