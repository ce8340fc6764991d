package repository

import "github.com/google/uuid"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithIDFunc sets the generator for ids of inserted records.
func WithIDFunc(fn func() string) Option {
	return func(s *MemoryStore) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewID returns a random record id.
func NewID() string { return uuid.NewString() }
