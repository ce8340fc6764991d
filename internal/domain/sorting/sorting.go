// Package sorting orders employer rows by a single column.
package sorting

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/okian/jobdb/internal/domain/model"
	"github.com/okian/jobdb/internal/domain/value"
)

// Config is the active sort. An empty Key means no sorting.
type Config struct {
	Key       string          `json:"key"`
	Direction model.Direction `json:"direction"`
}

// Request applies a sort request to c: the same key while ascending flips
// to descending, anything else selects key ascending.
func (c Config) Request(key string) Config {
	if key == c.Key && c.Direction == model.Ascending {
		return Config{Key: key, Direction: model.Descending}
	}
	return Config{Key: key, Direction: model.Ascending}
}

// Sorter compares rows. Collators are not safe for concurrent use, so one is
// created per Sort call.
type Sorter struct {
	locale  language.Tag
	numeric map[string]struct{}
}

// New creates a Sorter with Japanese collation and the standard numeric columns.
func New(opts ...Option) *Sorter {
	s := &Sorter{locale: language.Japanese, numeric: model.NumericColumns}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sort returns a stably sorted copy of rows. Sentinel values order below
// every known value, so ascending puts them first.
func (s *Sorter) Sort(rows []model.Row, cfg Config) []model.Row {
	out := slices.Clone(rows)
	if cfg.Key == "" {
		return out
	}
	col := collate.New(s.locale, collate.Numeric, collate.IgnoreCase, collate.IgnoreDiacritics, collate.IgnoreWidth)
	_, numeric := s.numeric[cfg.Key]
	sign := 1
	if cfg.Direction == model.Descending {
		sign = -1
	}
	slices.SortStableFunc(out, func(a, b model.Row) int {
		return sign * compare(col, numeric, a.Cell(cfg.Key), b.Cell(cfg.Key))
	})
	return out
}

func compare(col *collate.Collator, numeric bool, a, b value.Value) int {
	switch {
	case a.IsSentinel() && b.IsSentinel():
		return 0
	case a.IsSentinel():
		return -1
	case b.IsSentinel():
		return 1
	}
	if numeric {
		x, okA := number(a)
		y, okB := number(b)
		if okA && okB {
			return cmp.Compare(x, y)
		}
	}
	return col.CompareString(a.Text(), b.Text())
}

func number(v value.Value) (float64, bool) {
	if n, ok := v.Number(); ok {
		return n, true
	}
	return value.ParseNumeric(v.Text())
}
