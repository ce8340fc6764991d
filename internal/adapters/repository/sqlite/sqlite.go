// Package sqlite implements repository.Store on a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/okian/jobdb/internal/adapters/repository"
)

// Store is a repository.Store backed by SQLite. All access goes through a
// single connection; SQLite serializes writers anyway.
type Store struct {
	db    *sql.DB
	hub   repository.Hub
	newID func() string
}

// Open opens (creating if needed) the database at path.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=off")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, newID: repository.NewID}
	for _, opt := range opts {
		opt(s)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping %s: %w", path, err)
	}
	return s, nil
}

// timeLayout is fixed-width so text order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func sqlType(t repository.ColumnType) string {
	switch t {
	case repository.TypeInt, repository.TypeBool:
		return "INTEGER"
	case repository.TypeReal:
		return "REAL"
	default:
		return "TEXT"
	}
}

func quote(ident string) string {
	return `"` + ident + `"`
}

// Migrate creates every table and the lookup indexes.
func (s *Store) Migrate(ctx context.Context) error {
	for _, table := range repository.Tables() {
		cols := repository.Schema[table]
		defs := make([]string, 0, len(cols))
		for _, c := range cols {
			def := quote(c.Name) + " " + sqlType(c.Type)
			if c.Name == repository.ColID {
				def += " PRIMARY KEY"
			}
			defs = append(defs, def)
		}
		stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quote(string(table)), strings.Join(defs, ", "))
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: create %s: %w", table, err)
		}
	}
	for _, stmt := range []string{
		`CREATE INDEX IF NOT EXISTS idx_view_logs_user_page ON "view_logs" ("user_id", "page", "timestamp")`,
		`CREATE INDEX IF NOT EXISTS idx_bookmarks_user ON "bookmarks" ("user_id")`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON "users" ("email")`,
	} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: create index: %w", err)
		}
	}
	return nil
}

// encode converts a canonical value to a driver argument.
func encode(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.UTC().Format(timeLayout)
	case []string:
		return repository.EncodeList(x)
	case bool:
		if x {
			return int64(1)
		}
		return int64(0)
	default:
		return v
	}
}

// where renders a conjunction of equalities with keys in sorted order.
func where(rec repository.Record) (string, []any) {
	if len(rec) == 0 {
		return "", nil
	}
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, k := range keys {
		if rec[k] == nil {
			parts = append(parts, quote(k)+" IS NULL")
			continue
		}
		parts = append(parts, quote(k)+" = ?")
		args = append(args, encode(rec[k]))
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

func columnList(table repository.Table) []string {
	cols := repository.Schema[table]
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

func (s *Store) Query(ctx context.Context, table repository.Table, q repository.Query) ([]repository.Record, error) {
	w, err := repository.NormalizeRecord(table, q.Where)
	if err != nil {
		return nil, err
	}
	names := columnList(table)
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quote(n)
	}

	clause, args := where(w)
	stmt := fmt.Sprintf("SELECT %s FROM %s%s", strings.Join(quoted, ", "), quote(string(table)), clause)
	if q.OrderBy != "" {
		if _, err := repository.ColumnOf(table, q.OrderBy); err != nil {
			return nil, err
		}
		dir := "ASC"
		if q.Descending {
			dir = "DESC"
		}
		stmt += fmt.Sprintf(" ORDER BY %s %s, rowid %s", quote(q.OrderBy), dir, dir)
	} else {
		stmt += " ORDER BY rowid"
	}
	if q.Limit > 0 {
		stmt += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query %s: %w", table, err)
	}
	defer rows.Close()

	var out []repository.Record
	for rows.Next() {
		vals := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("sqlite: scan %s: %w", table, err)
		}
		raw := make(map[string]any, len(names))
		for i, n := range names {
			raw[n] = vals[i]
		}
		rec, err := repository.NormalizeRow(table, raw)
		if err != nil {
			return nil, fmt.Errorf("sqlite: decode %s: %w", table, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: query %s: %w", table, err)
	}
	return out, nil
}

func (s *Store) Insert(ctx context.Context, table repository.Table, rec repository.Record) (repository.Record, error) {
	row, err := repository.NormalizeRecord(table, rec)
	if err != nil {
		return nil, err
	}
	if row.ID() == "" {
		row[repository.ColID] = s.newID()
	}

	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	cols := make([]string, len(keys))
	marks := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		cols[i] = quote(k)
		marks[i] = "?"
		args[i] = encode(row[k])
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quote(string(table)), strings.Join(cols, ", "), strings.Join(marks, ", "))
	if _, err := s.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, fmt.Errorf("sqlite: insert %s: %w", table, err)
	}

	for _, c := range repository.Schema[table] {
		if _, ok := row[c.Name]; !ok {
			row[c.Name] = nil
		}
	}
	s.hub.Publish(repository.Change{Table: table, Op: repository.OpInsert, ID: row.ID()})
	return row, nil
}

func (s *Store) Update(ctx context.Context, table repository.Table, id string, patch repository.Record) error {
	p, err := repository.NormalizeRecord(table, patch)
	if err != nil {
		return err
	}
	delete(p, repository.ColID)

	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	sets := make([]string, 0, len(keys)+1)
	args := make([]any, 0, len(keys)+1)
	for _, k := range keys {
		sets = append(sets, quote(k)+" = ?")
		args = append(args, encode(p[k]))
	}
	if len(sets) == 0 {
		sets = append(sets, quote(repository.ColID)+" = "+quote(repository.ColID))
	}
	args = append(args, id)

	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", quote(string(table)), strings.Join(sets, ", "), quote(repository.ColID))
	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("sqlite: update %s: %w", table, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s/%s", repository.ErrNotFound, table, id)
	}
	s.hub.Publish(repository.Change{Table: table, Op: repository.OpUpdate, ID: id})
	return nil
}

func (s *Store) Delete(ctx context.Context, table repository.Table, cond map[string]any) (int, error) {
	w, err := repository.NormalizeRecord(table, cond)
	if err != nil {
		return 0, err
	}
	clause, args := where(w)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, fmt.Sprintf("SELECT %s FROM %s%s",
		quote(repository.ColID), quote(string(table)), clause), args...)
	if err != nil {
		return 0, fmt.Errorf("sqlite: delete %s: %w", table, err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("sqlite: delete %s: %w", table, err)
		}
		ids = append(ids, id)
	}
	_ = rows.Close()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s%s", quote(string(table)), clause), args...); err != nil {
		return 0, fmt.Errorf("sqlite: delete %s: %w", table, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}

	for _, id := range ids {
		s.hub.Publish(repository.Change{Table: table, Op: repository.OpDelete, ID: id})
	}
	return len(ids), nil
}

func (s *Store) Subscribe(table repository.Table, fn func(repository.Change)) func() {
	return s.hub.Subscribe(table, fn)
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("sqlite: close: %w", err)
	}
	return nil
}

var _ repository.Store = (*Store)(nil)
