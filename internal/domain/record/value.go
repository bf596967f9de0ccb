package record

import (
	"math"
	"strconv"
	"strings"
)

// Kind is the scalar type held by a Value.
type Kind uint8

// Value kinds.
const (
	Null Kind = iota
	String
	Number
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Number:
		return "number"
	default:
		return "null"
	}
}

// Value is a scalar record field: string, number or null.
// The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
}

// NullValue returns the null Value.
func NullValue() Value { return Value{} }

// StringValue creates a string Value.
func StringValue(s string) Value { return Value{kind: String, str: s} }

// NumberValue creates a numeric Value.
func NumberValue(n float64) Value { return Value{kind: Number, num: n} }

// Kind returns the value kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == Null }

// Text returns the string form used for matching and lexicographic ordering.
// Numbers use the shortest decimal representation; null yields "" and false.
func (v Value) Text() (string, bool) {
	switch v.kind {
	case String:
		return v.str, true
	case Number:
		return strconv.FormatFloat(v.num, 'f', -1, 64), true
	default:
		return "", false
	}
}

// Float returns the numeric form of the value.
// Strings holding a finite number (e.g. "42") convert; "NaN", "Inf" and
// anything else report false.
func (v Value) Float() (float64, bool) {
	var f float64
	switch v.kind {
	case Number:
		f = v.num
	case String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Any returns the value as a JSON-compatible Go value (string, float64 or nil).
func (v Value) Any() any {
	switch v.kind {
	case String:
		return v.str
	case Number:
		return v.num
	default:
		return nil
	}
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case String:
		return v.str == o.str
	case Number:
		return v.num == o.num
	default:
		return true
	}
}
