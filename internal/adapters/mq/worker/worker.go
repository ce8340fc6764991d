// Package worker runs the asynchronous writers that persist interaction
// events. Events of one actor always land on the same worker, so they are
// written in submission order.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/spaolacci/murmur3"

	"github.com/okian/jobdb/internal/adapters/mq/queue"
	"github.com/okian/jobdb/internal/domain/model"
	"github.com/okian/jobdb/pkg/logger"
	"github.com/okian/jobdb/pkg/metrics"
)

// Default worker configuration constants.
const (
	metricsUpdateInterval = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Event abstracts what workers read off the queue.
type Event = model.Interaction

// Handler persists one event. Errors are logged and the event is dropped.
type Handler interface {
	Handle(ctx context.Context, e Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, e Event) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, e Event) error { return f(ctx, e) }

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Worker processes events from one queue.
type Worker interface {
	// Run consumes events until the queue is closed and drained or ctx is canceled.
	Run(ctx context.Context)
	// Done is closed when Run returns.
	Done() <-chan struct{}
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue   Queue
	handler Handler
	name    string
	done    chan struct{}
	logger  logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, handler Handler, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:   queue,
		handler: handler,
		name:    "worker",
		done:    make(chan struct{}),
		logger:  logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			w.process(ctx, e)
		}
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) process(ctx context.Context, e Event) { //nolint:gocritic // hugeParam: Event must be passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordDispatchLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := w.handler.Handle(ctx, e); err != nil {
		metrics.RecordInteractionFailed(string(e.Kind), "write")
		metrics.RecordErrorByComponent("worker", "write_error")
		w.logger.Error(ctx, "interaction write failed",
			logger.String("kind", string(e.Kind)),
			logger.String("actor", e.ActorID),
			logger.Error(err),
		)
		return
	}
	metrics.RecordInteractionWritten(string(e.Kind))
}

// Pool shards events over one queue and worker per shard.
type Pool struct {
	queues  []*queue.InMemoryQueue
	workers []*InMemoryWorker

	stopOnce sync.Once
	shutdown chan struct{}
	logger   logger.Logger
}

// NewPool creates workerCount shards, each with a queue of queueSize.
func NewPool(workerCount, queueSize int, handler Handler) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		queues:   make([]*queue.InMemoryQueue, workerCount),
		workers:  make([]*InMemoryWorker, workerCount),
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		p.queues[i] = queue.NewInMemoryQueue(queue.WithCapacity(queueSize))
		p.workers[i] = NewInMemoryWorker(p.queues[i], handler, WithName("worker-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateQueueCapacity(p.capacity())
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)
	return p
}

// Shard returns the worker index for an actor.
func (p *Pool) Shard(actorID string) int {
	return int(murmur3.Sum32([]byte(actorID)) % uint32(len(p.queues)))
}

// Submit enqueues e on its actor's shard without blocking.
// Returns false when that shard is full or the pool is shut down.
func (p *Pool) Submit(ctx context.Context, e Event) bool { //nolint:gocritic // hugeParam: Event must be passed by value for channel semantics
	ok := p.queues[p.Shard(e.ActorID)].Enqueue(ctx, e)
	if ok {
		metrics.RecordInteractionEnqueued(string(e.Kind))
	} else {
		metrics.RecordInteractionFailed(string(e.Kind), "enqueue")
	}
	return ok
}

// Len returns the number of queued events across shards.
func (p *Pool) Len(ctx context.Context) int {
	n := 0
	for _, q := range p.queues {
		n += q.Len(ctx)
	}
	return n
}

func (p *Pool) capacity() int {
	n := 0
	for _, q := range p.queues {
		n += q.Cap()
	}
	return n
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	go p.startMetricsUpdater(ctx)
}

func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			p.updateMetrics(ctx)
		}
	}
}

func (p *Pool) updateMetrics(ctx context.Context) {
	size := p.Len(ctx)
	metrics.UpdateQueueSize(size)
	if c := p.capacity(); c > 0 {
		metrics.UpdateQueueUtilization(float64(size) / float64(c))
	}
}

// Shutdown closes every queue and waits for workers to drain them.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.stopOnce.Do(func() {
		close(p.shutdown)
		for _, q := range p.queues {
			if err := q.Close(); err != nil {
				p.logger.Error(ctx, "error closing queue", logger.Error(err))
			}
		}
	})

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.Done():
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("shutdown timed out: %w", shutdownCtx.Err())
		}
	}
	p.updateMetrics(ctx)
	return nil
}
