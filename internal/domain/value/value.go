// Package value models attribute values that may be unknown.
//
// A Value is one of three things: a known value (display text plus an
// optional number), Unknown (the attribute exists but has no usable value),
// or NoRecord (the related record the attribute comes from does not exist).
// Filter and sort logic switches on the Kind instead of comparing display
// strings, so real data that happens to read "不明" is never treated as a
// sentinel.
package value

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Display strings for the two sentinel kinds.
const (
	UnknownText  = "不明"
	NoRecordText = "データなし"
)

// Kind tags a Value.
type Kind uint8

const (
	// KindKnown carries a concrete value.
	KindKnown Kind = iota
	// KindUnknown means the field is not provided or not applicable.
	KindUnknown
	// KindNoRecord means no related record exists at all.
	KindNoRecord
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindKnown:
		return "known"
	case KindUnknown:
		return "unknown"
	case KindNoRecord:
		return "no_record"
	default:
		return "invalid"
	}
}

// Value is an immutable tagged attribute value.
type Value struct {
	kind      Kind
	text      string
	num       float64
	hasNumber bool
}

// Known returns a known textual value.
func Known(text string) Value {
	return Value{kind: KindKnown, text: text}
}

// KnownNumber returns a known value with a numeric magnitude and its display text.
func KnownNumber(num float64, text string) Value {
	return Value{kind: KindKnown, text: text, num: num, hasNumber: true}
}

// Unknown returns the "field not provided" sentinel.
func Unknown() Value { return Value{kind: KindUnknown} }

// NoRecord returns the "no related record" sentinel.
func NoRecord() Value { return Value{kind: KindNoRecord} }

// Kind reports the tag.
func (v Value) Kind() Kind { return v.kind }

// IsKnown reports whether v carries a concrete value.
func (v Value) IsKnown() bool { return v.kind == KindKnown }

// IsSentinel reports whether v is Unknown or NoRecord.
func (v Value) IsSentinel() bool { return v.kind != KindKnown }

// Number returns the numeric magnitude when one was recorded.
func (v Value) Number() (float64, bool) {
	if v.kind != KindKnown {
		return 0, false
	}
	return v.num, v.hasNumber
}

// Text returns the raw text of a known value and "" for sentinels.
func (v Value) Text() string {
	if v.kind != KindKnown {
		return ""
	}
	return v.text
}

// String returns the display form, including sentinel markers.
func (v Value) String() string {
	switch v.kind {
	case KindUnknown:
		return UnknownText
	case KindNoRecord:
		return NoRecordText
	default:
		return v.text
	}
}

// MarshalJSON renders the display form.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// ParseNumeric strips everything except digits, '.', and '-' from s and
// parses the remainder, so "250,000円" yields 250000 and "120 日" yields 120.
func ParseNumeric(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
