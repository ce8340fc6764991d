// Package tracking turns user actions into interaction events.
//
// The Tracker builds events and hands them to an asynchronous dispatcher;
// it never blocks and never reports failures to its caller. The Writer is
// the dispatcher's handler that persists events, including the pairing of
// a view end with its view start.
package tracking

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/okian/jobdb/internal/domain/model"
	"github.com/okian/jobdb/internal/domain/sorting"
	"github.com/okian/jobdb/internal/domain/view"
	"github.com/okian/jobdb/pkg/logger"
)

// DefaultPage is the page name of the employer table.
const DefaultPage = "jobs"

// Submitter accepts events for asynchronous delivery without blocking.
type Submitter interface {
	Submit(ctx context.Context, e model.Interaction) bool
}

// Tracker is the interaction logger.
type Tracker struct {
	sub    Submitter
	page   string
	now    func() time.Time
	newID  func() string
	logger logger.Logger
}

// New creates a Tracker that delivers through sub.
func New(sub Submitter, opts ...Option) *Tracker {
	t := &Tracker{
		sub:    sub,
		page:   DefaultPage,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: logger.Get().Named("tracking"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ViewHandle identifies a started page view.
type ViewHandle struct {
	ID        string
	Actor     model.Actor
	Page      string
	StartedAt time.Time
}

func (t *Tracker) base(actor model.Actor, kind model.EventKind) model.Interaction {
	return model.Interaction{
		ID:        t.newID(),
		Kind:      kind,
		ActorID:   actor.ID,
		ShortID:   actor.ShortID(),
		Timestamp: t.now().UTC(),
	}
}

func (t *Tracker) submit(ctx context.Context, e model.Interaction) {
	if !t.sub.Submit(context.WithoutCancel(ctx), e) {
		t.logger.Warn(ctx, "interaction dropped",
			logger.String("kind", string(e.Kind)),
			logger.String("actor", e.ActorID),
		)
	}
}

// LogViewStart records a view with zero duration and depth.
func (t *Tracker) LogViewStart(ctx context.Context, actor model.Actor) ViewHandle {
	e := t.base(actor, model.EventViewStart)
	e.Page = t.page
	e.StartedAt = e.Timestamp
	t.submit(ctx, e)
	return ViewHandle{ID: e.ID, Actor: actor, Page: e.Page, StartedAt: e.StartedAt}
}

// LogViewEnd backfills the actor's latest view on this page with the
// elapsed whole seconds since startedAt and the scroll depth clamped to [0,100].
func (t *Tracker) LogViewEnd(ctx context.Context, actor model.Actor, startedAt time.Time, maxScrollDepth int) {
	e := t.base(actor, model.EventViewEnd)
	e.Page = t.page
	e.StartedAt = startedAt
	e.ViewSeconds = int(max(e.Timestamp.Sub(startedAt), 0) / time.Second)
	e.ScrollDepth = ClampDepth(maxScrollDepth)
	t.submit(ctx, e)
}

// LogColumnSelection records the full new column selection.
func (t *Tracker) LogColumnSelection(ctx context.Context, actor model.Actor, columns []string) {
	e := t.base(actor, model.EventColumnSelection)
	e.Columns = slices.Clone(columns)
	if e.Columns == nil {
		e.Columns = []string{}
	}
	t.submit(ctx, e)
}

// LogSortRequest records a sort key with its resulting direction.
func (t *Tracker) LogSortRequest(ctx context.Context, actor model.Actor, key string, dir model.Direction) {
	e := t.base(actor, model.EventSortRequest)
	e.SortColumn = key
	e.SortDirection = dir
	t.submit(ctx, e)
}

// LogFilterToggle records a filter's new state.
func (t *Tracker) LogFilterToggle(ctx context.Context, actor model.Actor, name string, enabled bool) {
	e := t.base(actor, model.EventFilterToggle)
	e.FilterType = name
	e.FilterValue = enabled
	t.submit(ctx, e)
}

// Recorder binds the tracker to an actor for view state mutations.
func (t *Tracker) Recorder(ctx context.Context, actor model.Actor) view.Recorder {
	return recorder{ctx: context.WithoutCancel(ctx), t: t, actor: actor}
}

type recorder struct {
	ctx   context.Context
	t     *Tracker
	actor model.Actor
}

func (r recorder) ColumnsChanged(columns []string) {
	r.t.LogColumnSelection(r.ctx, r.actor, columns)
}

func (r recorder) SortRequested(cfg sorting.Config) {
	r.t.LogSortRequest(r.ctx, r.actor, cfg.Key, cfg.Direction)
}

func (r recorder) FilterToggled(name string, enabled bool) {
	r.t.LogFilterToggle(r.ctx, r.actor, name, enabled)
}

// ClampDepth limits a scroll percentage to [0,100].
func ClampDepth(depth int) int {
	return min(max(depth, 0), 100)
}

// ScrollDepth converts one scroll sample to a percentage of the document
// seen. ok is false for samples with a non-positive document height.
func ScrollDepth(scrollY, viewportHeight, documentHeight float64) (int, bool) {
	if documentHeight <= 0 {
		return 0, false
	}
	pct := (scrollY + viewportHeight) / documentHeight * 100
	return ClampDepth(int(pct + 0.5)), true
}
