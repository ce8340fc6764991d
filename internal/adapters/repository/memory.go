package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// MemoryStore keeps every table in process memory. Rows keep insertion
// order. It backs tests and local development.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[Table][]Record
	hub    Hub
	newID  func() string
	closed bool
}

// NewMemoryStore creates an empty store with every table present.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		tables: make(map[Table][]Record, len(Schema)),
		newID:  NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	for t := range Schema {
		s.tables[t] = nil
	}
	return s
}

func (s *MemoryStore) Query(_ context.Context, table Table, q Query) ([]Record, error) {
	where, err := NormalizeRecord(table, q.Where)
	if err != nil {
		return nil, err
	}
	if q.OrderBy != "" {
		if _, err := ColumnOf(table, q.OrderBy); err != nil {
			return nil, err
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	var out []Record
	for _, rec := range s.tables[table] {
		if matches(rec, where) {
			out = append(out, rec.Clone())
		}
	}
	if q.OrderBy != "" {
		slices.SortStableFunc(out, func(a, b Record) int {
			c := CompareValues(a[q.OrderBy], b[q.OrderBy])
			if q.Descending {
				return -c
			}
			return c
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *MemoryStore) Insert(_ context.Context, table Table, rec Record) (Record, error) {
	row, err := NormalizeRecord(table, rec)
	if err != nil {
		return nil, err
	}
	if row.ID() == "" {
		row[ColID] = s.newID()
	}
	for _, col := range Schema[table] {
		if _, ok := row[col.Name]; !ok {
			row[col.Name] = nil
		}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	s.tables[table] = append(s.tables[table], row)
	s.mu.Unlock()

	s.hub.Publish(Change{Table: table, Op: OpInsert, ID: row.ID()})
	return row.Clone(), nil
}

func (s *MemoryStore) Update(_ context.Context, table Table, id string, patch Record) error {
	p, err := NormalizeRecord(table, patch)
	if err != nil {
		return err
	}
	delete(p, ColID)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	found := false
	for _, rec := range s.tables[table] {
		if rec.ID() == id {
			for k, v := range p {
				rec[k] = v
			}
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, table, id)
	}
	s.hub.Publish(Change{Table: table, Op: OpUpdate, ID: id})
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, table Table, where map[string]any) (int, error) {
	w, err := NormalizeRecord(table, where)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, ErrClosed
	}
	var removed []string
	s.tables[table] = slices.DeleteFunc(s.tables[table], func(rec Record) bool {
		if matches(rec, w) {
			removed = append(removed, rec.ID())
			return true
		}
		return false
	})
	s.mu.Unlock()

	for _, id := range removed {
		s.hub.Publish(Change{Table: table, Op: OpDelete, ID: id})
	}
	return len(removed), nil
}

func (s *MemoryStore) Subscribe(table Table, fn func(Change)) func() {
	return s.hub.Subscribe(table, fn)
}

// Migrate is a no-op; every table exists from construction.
func (s *MemoryStore) Migrate(context.Context) error { return nil }

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func matches(rec Record, where Record) bool {
	for k, v := range where {
		if !EqualValues(rec[k], v) {
			return false
		}
	}
	return true
}
