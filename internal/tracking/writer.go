package tracking

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/jobdb/internal/adapters/repository"
	"github.com/okian/jobdb/internal/domain/model"
	"github.com/okian/jobdb/pkg/logger"
	"github.com/okian/jobdb/pkg/metrics"
)

// Writer persists interaction events to the store. It implements the
// dispatcher's handler contract.
type Writer struct {
	store  repository.Store
	logger logger.Logger
}

// NewWriter creates a Writer.
func NewWriter(store repository.Store) *Writer {
	return &Writer{store: store, logger: logger.Get().Named("tracking-writer")}
}

// Handle appends e, or for a view end updates the matching view start.
func (w *Writer) Handle(ctx context.Context, e model.Interaction) error {
	if e.Kind == model.EventViewEnd {
		return w.closeView(ctx, e)
	}
	table, rec, err := repository.EncodeInteraction(e)
	if err != nil {
		return err
	}
	if _, err := w.store.Insert(ctx, table, rec); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// closeView finds the actor's most recent view of the page and writes the
// final duration and depth. A missing view is skipped, not an error.
func (w *Writer) closeView(ctx context.Context, e model.Interaction) error {
	rows, err := w.store.Query(ctx, repository.ViewLogs, repository.Query{
		Where:      map[string]any{repository.ColUserID: e.ActorID, repository.ColPage: e.Page},
		OrderBy:    repository.ColTimestamp,
		Descending: true,
		Limit:      1,
	})
	if err != nil {
		return fmt.Errorf("find view start: %w", err)
	}
	if len(rows) == 0 {
		w.skip(ctx, e, "no view start")
		return nil
	}

	err = w.store.Update(ctx, repository.ViewLogs, rows[0].ID(), repository.Record{
		"view_time":    int64(e.ViewSeconds),
		"scroll_depth": int64(e.ScrollDepth),
	})
	if errors.Is(err, repository.ErrNotFound) {
		w.skip(ctx, e, "view start vanished")
		return nil
	}
	if err != nil {
		return fmt.Errorf("update view: %w", err)
	}
	return nil
}

func (w *Writer) skip(ctx context.Context, e model.Interaction, reason string) {
	metrics.RecordViewEndSkipped()
	w.logger.Debug(ctx, "view end skipped",
		logger.String("actor", e.ActorID),
		logger.String("page", e.Page),
		logger.String("reason", reason),
	)
}
