// Package models defines data structures for spreadsheet ingestion.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ValueKind identifies which variant a Value holds.
type ValueKind uint8

const (
	// KindNull is an absent or blank cell.
	KindNull ValueKind = iota
	// KindString is a text cell.
	KindString
	// KindNumber is a numeric cell (integers are stored as float64).
	KindNumber
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	default:
		return "null"
	}
}

// Value is a single cell value: null, string or number.
// The zero Value is null.
type Value struct {
	kind ValueKind
	str  string
	num  float64
}

// NullValue returns the null Value.
func NullValue() Value { return Value{} }

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// NumberValue returns a numeric Value.
func NumberValue(f float64) Value { return Value{kind: KindNumber, num: f} }

// Kind returns the variant held by v.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsEmpty reports whether v is null, an empty string, or the literal "null".
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		s := strings.TrimSpace(v.str)
		return s == "" || strings.EqualFold(s, "null")
	default:
		return false
	}
}

// Number returns the numeric payload and whether v is numeric.
func (v Value) Number() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// String renders v as display text. Null renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

// Equal reports whether two values hold the same variant and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	default:
		return true
	}
}

// MarshalJSON encodes v as null, a JSON string or a JSON number.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes null, strings and numbers. Booleans are kept as text.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = NullValue()
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
	case 't', 'f':
		*v = StringValue(string(data))
	case '{', '[':
		return fmt.Errorf("unsupported cell value %s", data)
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("invalid numeric cell value %s: %w", data, err)
		}
		*v = NumberValue(f)
	}
	return nil
}
