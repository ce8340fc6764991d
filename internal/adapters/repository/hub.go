package repository

import "sync"

// Hub fans change notifications out to per-table subscribers.
// The zero value is ready to use.
type Hub struct {
	mu   sync.RWMutex
	next uint64
	subs map[Table]map[uint64]func(Change)
}

// Subscribe registers fn for table and returns its cancel func.
func (h *Hub) Subscribe(table Table, fn func(Change)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs == nil {
		h.subs = make(map[Table]map[uint64]func(Change))
	}
	if h.subs[table] == nil {
		h.subs[table] = make(map[uint64]func(Change))
	}
	h.next++
	id := h.next
	h.subs[table][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[table], id)
		})
	}
}

// Publish invokes every subscriber of c.Table outside the lock.
func (h *Hub) Publish(c Change) {
	h.mu.RLock()
	fns := make([]func(Change), 0, len(h.subs[c.Table]))
	for _, fn := range h.subs[c.Table] {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(c)
	}
}
