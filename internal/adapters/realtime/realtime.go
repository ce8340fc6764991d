// Package realtime turns store change notifications into debounced refreshes.
package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/okian/jobdb/internal/adapters/repository"
	"github.com/okian/jobdb/pkg/logger"
)

// DefaultDebounce is the default quiet period.
const DefaultDebounce = 250 * time.Millisecond

// Subscriber is the part of the store the refresher listens to.
type Subscriber interface {
	Subscribe(table repository.Table, fn func(repository.Change)) (cancel func())
}

// RefreshFunc reloads derived state. Errors are logged; the next change retries.
type RefreshFunc func(ctx context.Context) error

type group struct {
	name    string
	tables  []repository.Table
	fn      RefreshFunc
	trigger chan struct{}
}

// Refresher runs one refresh per group after changes to any of its tables
// settle. Changes arriving during a refresh schedule exactly one more.
type Refresher struct {
	src      Subscriber
	debounce time.Duration
	logger   logger.Logger

	mu      sync.Mutex
	groups  []*group
	started bool
	wg      sync.WaitGroup
}

// New creates a Refresher over src.
func New(src Subscriber, opts ...Option) *Refresher {
	r := &Refresher{
		src:      src,
		debounce: DefaultDebounce,
		logger:   logger.Get().Named("realtime"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Watch registers fn for changes to tables. Calls after Start are ignored.
func (r *Refresher) Watch(name string, tables []repository.Table, fn RefreshFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.groups = append(r.groups, &group{
		name:    name,
		tables:  tables,
		fn:      fn,
		trigger: make(chan struct{}, 1),
	})
}

// Start subscribes every group and returns. Subscriptions end when ctx is done.
func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true

	var cancels []func()
	for _, g := range r.groups {
		for _, t := range g.tables {
			cancels = append(cancels, r.src.Subscribe(t, func(repository.Change) { g.notify() }))
		}
		r.wg.Add(1)
		go r.loop(ctx, g)
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		<-ctx.Done()
		for _, c := range cancels {
			c()
		}
	}()
}

// Wait blocks until every loop started by Start has exited.
func (r *Refresher) Wait() { r.wg.Wait() }

// Trigger schedules a refresh of every group as if its tables changed.
func (r *Refresher) Trigger() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.groups {
		g.notify()
	}
}

func (g *group) notify() {
	select {
	case g.trigger <- struct{}{}:
	default:
	}
}

func (r *Refresher) loop(ctx context.Context, g *group) {
	defer r.wg.Done()
	timer := time.NewTimer(r.debounce)
	timer.Stop()
	defer timer.Stop()

	pending := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-g.trigger:
			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(r.debounce)
			pending = true
		case <-timer.C:
			pending = false
			if err := g.fn(ctx); err != nil {
				r.logger.Warn(ctx, "refresh failed",
					logger.String("group", g.name),
					logger.Error(err),
				)
			}
		}
	}
}
