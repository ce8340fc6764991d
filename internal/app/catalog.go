package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/jobdb/internal/adapters/repository"
	"github.com/okian/jobdb/internal/domain/model"
	"github.com/okian/jobdb/pkg/logger"
	"github.com/okian/jobdb/pkg/metrics"
)

type catalogState struct {
	mu       sync.RWMutex
	rows     []model.Row
	loaded   bool
	loadedAt time.Time
}

// RefreshCatalog re-fetches the three source tables and replaces the merged
// catalog. On failure the previous catalog stays in place.
func (s *Service) RefreshCatalog(ctx context.Context) error {
	var (
		companies  []repository.Record
		stats      []repository.Record
		employment []repository.Record
	)
	g, gctx := errgroup.WithContext(ctx)
	fetch := func(table repository.Table, dst *[]repository.Record) {
		g.Go(func() error {
			rows, err := s.store.Query(gctx, table, repository.Query{})
			if err != nil {
				return fmt.Errorf("query %s: %w", table, err)
			}
			*dst = rows
			return nil
		})
	}
	fetch(repository.Companies, &companies)
	fetch(repository.CompanyStats, &stats)
	fetch(repository.EmploymentStatistics, &employment)

	if err := g.Wait(); err != nil {
		metrics.RecordCatalogRefresh("error")
		metrics.RecordErrorByComponent("catalog", "fetch")
		s.logger.Error(ctx, "catalog fetch failed", logger.Error(err))
		return fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}

	merged := s.merger.Merge(
		decodeAll(companies, repository.DecodeCompany),
		decodeAll(stats, repository.DecodeCompanyStats),
		decodeAll(employment, repository.DecodeEmploymentStats),
	)

	s.catalog.mu.Lock()
	s.catalog.rows = merged
	s.catalog.loaded = true
	s.catalog.loadedAt = s.now()
	s.catalog.mu.Unlock()

	metrics.RecordCatalogRefresh("ok")
	metrics.UpdateCatalogRows(len(merged))
	s.logger.Debug(ctx, "catalog refreshed", logger.Int("rows", len(merged)))
	return nil
}

func decodeAll[T any](rows []repository.Record, decode func(repository.Record) T) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		out = append(out, decode(r))
	}
	return out
}

// Catalog returns the merged employer rows. Rows are shared and must not be modified.
func (s *Service) Catalog() ([]model.Row, error) {
	s.catalog.mu.RLock()
	defer s.catalog.mu.RUnlock()
	if !s.catalog.loaded {
		return nil, ErrDataUnavailable
	}
	return s.catalog.rows, nil
}

func (s *Service) catalogRows() int {
	s.catalog.mu.RLock()
	defer s.catalog.mu.RUnlock()
	return len(s.catalog.rows)
}

// Bookmarks returns the company ids bookmarked by actor.
func (s *Service) Bookmarks(ctx context.Context, actor model.Actor) (map[string]struct{}, error) {
	rows, err := s.store.Query(ctx, repository.Bookmarks, repository.Query{
		Where: map[string]any{repository.ColUserID: actor.ID},
	})
	if err != nil {
		s.logger.Error(ctx, "bookmark fetch failed", logger.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}
	out := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		out[repository.DecodeBookmark(r).CompanyID] = struct{}{}
	}
	return out, nil
}

// ListBookmarks returns actor's bookmarks oldest first.
func (s *Service) ListBookmarks(ctx context.Context, actor model.Actor) ([]model.Bookmark, error) {
	rows, err := s.store.Query(ctx, repository.Bookmarks, repository.Query{
		Where:   map[string]any{repository.ColUserID: actor.ID},
		OrderBy: "created_at",
	})
	if err != nil {
		s.logger.Error(ctx, "bookmark fetch failed", logger.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}
	return decodeAll(rows, repository.DecodeBookmark), nil
}

// ToggleBookmark adds or removes companyID from actor's bookmarks and
// reports whether it is bookmarked afterwards.
func (s *Service) ToggleBookmark(ctx context.Context, actor model.Actor, companyID string) (bool, error) {
	if companyID == "" {
		return false, fmt.Errorf("%w: empty company id", ErrInvalidArgument)
	}
	where := map[string]any{repository.ColUserID: actor.ID, repository.ColCompanyID: companyID}

	s.bookmarkMu.Lock()
	defer s.bookmarkMu.Unlock()

	n, err := s.store.Delete(ctx, repository.Bookmarks, where)
	if err != nil {
		s.logger.Error(ctx, "bookmark delete failed", logger.Error(err))
		return false, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}
	if n > 0 {
		return false, nil
	}
	_, err = s.store.Insert(ctx, repository.Bookmarks, repository.Record{
		repository.ColUserID:    actor.ID,
		repository.ColCompanyID: companyID,
		"created_at":            s.now().UTC(),
	})
	if err != nil {
		s.logger.Error(ctx, "bookmark insert failed", logger.Error(err))
		return false, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}
	return true, nil
}
