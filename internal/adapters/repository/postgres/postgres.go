// Package postgres implements repository.Store with gorm on PostgreSQL.
package postgres

import (
	"context"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/okian/jobdb/internal/adapters/repository"
)

// Store is a repository.Store on a gorm connection.
type Store struct {
	db    *gorm.DB
	hub   repository.Hub
	newID func() string
}

// Open connects to PostgreSQL with dsn.
func Open(dsn string, opts ...Option) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	return New(db, opts...), nil
}

// New wraps an open gorm connection.
func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{db: db, newID: repository.NewID}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Migrate creates or updates every table.
func (s *Store) Migrate(ctx context.Context) error {
	models := make([]any, 0, len(repository.Schema))
	for _, t := range repository.Tables() {
		models = append(models, modelFor(t))
	}
	if err := s.db.WithContext(ctx).AutoMigrate(models...); err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}

// encode converts canonical values to gorm arguments.
func encode(rec repository.Record) map[string]any {
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		if l, ok := v.([]string); ok {
			v = datatypes.JSON(repository.EncodeList(l))
		}
		out[k] = v
	}
	return out
}

func (s *Store) model(ctx context.Context, table repository.Table) (*gorm.DB, error) {
	m := modelFor(table)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", repository.ErrUnknownTable, table)
	}
	return s.db.WithContext(ctx).Model(m), nil
}

func (s *Store) Query(ctx context.Context, table repository.Table, q repository.Query) ([]repository.Record, error) {
	w, err := repository.NormalizeRecord(table, q.Where)
	if err != nil {
		return nil, err
	}
	tx, err := s.model(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(w) > 0 {
		tx = tx.Where(encode(w))
	}
	order, err := orderBy(table, q)
	if err != nil {
		return nil, err
	}
	tx = tx.Select(columnNames(table))
	for _, o := range order {
		tx = tx.Order(o)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var raw []map[string]any
	if err := tx.Find(&raw).Error; err != nil {
		return nil, fmt.Errorf("postgres: query %s: %w", table, err)
	}
	out := make([]repository.Record, 0, len(raw))
	for _, r := range raw {
		rec, err := repository.NormalizeRow(table, r)
		if err != nil {
			return nil, fmt.Errorf("postgres: decode %s: %w", table, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// orderBy sorts by the requested column, then by insertion sequence in
// the same direction, matching the sqlite store's rowid tie-break.
func orderBy(table repository.Table, q repository.Query) ([]clause.OrderByColumn, error) {
	seq := clause.OrderByColumn{Column: clause.Column{Name: seqColumn}}
	if q.OrderBy == "" {
		return []clause.OrderByColumn{seq}, nil
	}
	if _, err := repository.ColumnOf(table, q.OrderBy); err != nil {
		return nil, err
	}
	seq.Desc = q.Descending
	return []clause.OrderByColumn{
		{Column: clause.Column{Name: q.OrderBy}, Desc: q.Descending},
		seq,
	}, nil
}

func columnNames(table repository.Table) []string {
	cols := repository.Schema[table]
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

func (s *Store) Insert(ctx context.Context, table repository.Table, rec repository.Record) (repository.Record, error) {
	row, err := repository.NormalizeRecord(table, rec)
	if err != nil {
		return nil, err
	}
	if row.ID() == "" {
		row[repository.ColID] = s.newID()
	}
	tx, err := s.model(ctx, table)
	if err != nil {
		return nil, err
	}
	if err := tx.Create(encode(row)).Error; err != nil {
		return nil, fmt.Errorf("postgres: insert %s: %w", table, err)
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
	tx, err := s.model(ctx, table)
	if err != nil {
		return err
	}
	tx = tx.Where(repository.ColID+" = ?", id)

	var affected int64
	if len(p) == 0 {
		if err := tx.Count(&affected).Error; err != nil {
			return fmt.Errorf("postgres: update %s: %w", table, err)
		}
	} else {
		res := tx.Updates(encode(p))
		if res.Error != nil {
			return fmt.Errorf("postgres: update %s: %w", table, res.Error)
		}
		affected = res.RowsAffected
	}
	if affected == 0 {
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
	m := modelFor(table)
	if m == nil {
		return 0, fmt.Errorf("%w: %s", repository.ErrUnknownTable, table)
	}

	var ids []string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(m)
		if len(w) > 0 {
			q = q.Where(encode(w))
		}
		if err := q.Pluck(repository.ColID, &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Where(repository.ColID+" IN ?", ids).Delete(modelFor(table)).Error
	})
	if err != nil {
		return 0, fmt.Errorf("postgres: delete %s: %w", table, err)
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
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("postgres: close: %w", err)
	}
	return sqlDB.Close()
}

var _ repository.Store = (*Store)(nil)
