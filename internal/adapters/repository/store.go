// Package repository defines the table store collaborator and its in-memory
// implementation. SQL backends live in subpackages and share the schema,
// value conversions, and change hub declared here.
package repository

import "context"

// Record is one row keyed by column name. Values are string, int64,
// float64, bool, time.Time, []string, or nil.
type Record map[string]any

// Clone returns a shallow copy with list values copied.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		if l, ok := v.([]string); ok {
			v = append([]string(nil), l...)
		}
		out[k] = v
	}
	return out
}

// ID returns the record's id column.
func (r Record) ID() string {
	s, _ := r[ColID].(string)
	return s
}

// Query selects rows. Where is a conjunction of column equalities.
type Query struct {
	Where      map[string]any
	OrderBy    string
	Descending bool
	Limit      int
}

// ChangeOp names a write kind.
type ChangeOp string

const (
	OpInsert ChangeOp = "insert"
	OpUpdate ChangeOp = "update"
	OpDelete ChangeOp = "delete"
)

// Change notifies subscribers that a table was written.
type Change struct {
	Table Table
	Op    ChangeOp
	ID    string
}

// Store is the backend collaborator holding every table.
type Store interface {
	// Query returns matching rows; unordered queries keep insertion order
	// where the backend can.
	Query(ctx context.Context, table Table, q Query) ([]Record, error)

	// Insert stores rec, generating an id when absent, and returns the stored row.
	Insert(ctx context.Context, table Table, rec Record) (Record, error)

	// Update patches the row with id. Returns ErrNotFound when absent.
	Update(ctx context.Context, table Table, id string, patch Record) error

	// Delete removes matching rows and returns how many were removed.
	Delete(ctx context.Context, table Table, where map[string]any) (int, error)

	// Subscribe registers fn for changes to table. fn runs on the writer's
	// goroutine and must not block. The returned func cancels.
	Subscribe(table Table, fn func(Change)) (cancel func())

	// Migrate creates missing tables.
	Migrate(ctx context.Context) error

	Close() error
}
