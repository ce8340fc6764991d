// Package dedupe tracks idempotency keys of mutating requests so that a
// retried request replays the first response instead of repeating the
// side effect.
package dedupe

import (
	"container/list"
	"context"
	"slices"
	"sync"
	"sync/atomic"
)

// Response is the recorded outcome of a request. A zero Status marks a
// request that is still in flight.
type Response struct {
	Status int
	Body   []byte
}

// Pending reports whether the original request has not completed yet.
func (r Response) Pending() bool { return r.Status == 0 }

// Deduper records idempotency keys for at-most-once request handling.
type Deduper interface {
	// Claim atomically reserves key. It returns false when key was new;
	// otherwise it returns true and the recorded response, which is
	// Pending while the first request is still running.
	Claim(ctx context.Context, key string) (Response, bool)

	// Complete stores the response for a claimed key.
	Complete(ctx context.Context, key string, resp Response)

	// Release forgets a claimed key so the request can be retried.
	Release(ctx context.Context, key string)

	Size() int64
}

type entry struct {
	key  string
	resp Response
}

// inMemoryDeduper keeps keys in insertion order and evicts the oldest
// once maxSize is reached. maxSize <= 0 disables eviction.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 50000,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

func (d *inMemoryDeduper) Claim(_ context.Context, key string) (Response, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		e := el.Value.(*entry)
		return Response{Status: e.resp.Status, Body: slices.Clone(e.resp.Body)}, true
	}
	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.evictOldest()
	}
	d.seen[key] = d.order.PushBack(&entry{key: key})
	d.size.Add(1)
	return Response{}, false
}

func (d *inMemoryDeduper) Complete(_ context.Context, key string, resp Response) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		el.Value.(*entry).resp = Response{Status: resp.Status, Body: slices.Clone(resp.Body)}
	}
}

func (d *inMemoryDeduper) Release(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		d.order.Remove(el)
		delete(d.seen, key)
		d.size.Add(-1)
	}
}

// evictOldest must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	el := d.order.Front()
	if el == nil {
		return
	}
	d.order.Remove(el)
	delete(d.seen, el.Value.(*entry).key)
	d.size.Add(-1)
}

// Size returns the current number of entries in the deduper.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
