package repository

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Normalize converts v to the canonical Go type of col. Backends hand
// back driver-specific types (sqlite integers for booleans, text for
// timestamps, JSON bytes for lists); callers always see canonical ones.
func Normalize(col Column, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch col.Type {
	case TypeText:
		switch x := v.(type) {
		case string:
			return x, nil
		case []byte:
			return string(x), nil
		}
	case TypeInt:
		switch x := v.(type) {
		case int:
			return int64(x), nil
		case int32:
			return int64(x), nil
		case int64:
			return x, nil
		case uint32:
			return int64(x), nil
		case float64:
			if x == math.Trunc(x) {
				return int64(x), nil
			}
		}
	case TypeReal:
		switch x := v.(type) {
		case float64:
			return x, nil
		case float32:
			return float64(x), nil
		case int:
			return float64(x), nil
		case int64:
			return float64(x), nil
		}
	case TypeBool:
		switch x := v.(type) {
		case bool:
			return x, nil
		case int64:
			return x != 0, nil
		case int:
			return x != 0, nil
		}
	case TypeTime:
		switch x := v.(type) {
		case time.Time:
			return x.UTC(), nil
		case string:
			t, err := time.Parse(time.RFC3339Nano, x)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrMalformedValue, col.Name, err)
			}
			return t.UTC(), nil
		}
	case TypeList:
		switch x := v.(type) {
		case []string:
			return append([]string(nil), x...), nil
		case []any:
			out := make([]string, 0, len(x))
			for _, e := range x {
				s, ok := e.(string)
				if !ok {
					return nil, fmt.Errorf("%w: %s: non-string element", ErrMalformedValue, col.Name)
				}
				out = append(out, s)
			}
			return out, nil
		case string:
			return DecodeList(col.Name, []byte(x))
		case []byte:
			return DecodeList(col.Name, x)
		case json.RawMessage:
			return DecodeList(col.Name, x)
		}
	}
	return nil, fmt.Errorf("%w: %s: unexpected %T", ErrInvalidValue, col.Name, v)
}

// NormalizeRecord normalizes every value of rec against table's schema.
func NormalizeRecord(table Table, rec map[string]any) (Record, error) {
	out := make(Record, len(rec))
	for name, v := range rec {
		col, err := ColumnOf(table, name)
		if err != nil {
			return nil, err
		}
		nv, err := Normalize(col, v)
		if err != nil {
			return nil, err
		}
		out[name] = nv
	}
	return out, nil
}

// DecodeList parses a JSON array of strings. Empty input is an empty list.
func DecodeList(column string, raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedValue, column, err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// EncodeList renders a list column as JSON text.
func EncodeList(list []string) string {
	if list == nil {
		list = []string{}
	}
	b, _ := json.Marshal(list)
	return string(b)
}

// CompareValues orders canonical values of one column. nil sorts first.
func CompareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return cmp.Compare(x, y)
		}
	case int64:
		if y, ok := b.(int64); ok {
			return cmp.Compare(x, y)
		}
	case float64:
		if y, ok := b.(float64); ok {
			return cmp.Compare(x, y)
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			default:
				return 1
			}
		}
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// EqualValues reports whether two canonical values are equal.
func EqualValues(a, b any) bool {
	if la, ok := a.([]string); ok {
		lb, ok := b.([]string)
		if !ok || len(la) != len(lb) {
			return false
		}
		for i := range la {
			if la[i] != lb[i] {
				return false
			}
		}
		return true
	}
	return CompareValues(a, b) == 0
}

// NormalizeRow converts a row read from a backend. A list column holding
// malformed JSON keeps its raw text so decoding can report it per row
// instead of failing the whole query.
func NormalizeRow(table Table, raw map[string]any) (Record, error) {
	out := make(Record, len(raw))
	for name, v := range raw {
		col, err := ColumnOf(table, name)
		if err != nil {
			return nil, err
		}
		nv, err := Normalize(col, v)
		if err != nil {
			if col.Type != TypeList {
				return nil, err
			}
			switch x := v.(type) {
			case []byte:
				nv = string(x)
			default:
				nv = fmt.Sprint(x)
			}
		}
		out[name] = nv
	}
	return out, nil
}
