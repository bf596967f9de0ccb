package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/kailas-cloud/pollsearch/internal/domain"
)

// Record is one searchable, sortable item of a result set.
// Missing fields read as null.
type Record struct {
	fields map[string]Value
}

// New creates a Record from already-typed values.
func New(fields map[string]Value) Record {
	cp := make(map[string]Value, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return Record{fields: cp}
}

// FromMap converts decoded JSON/YAML data into a Record.
// Accepted field types: string, any Go integer or finite float, json.Number,
// bool (as 1 or 0) and nil.
func FromMap(m map[string]any) (Record, error) {
	fields := make(map[string]Value, len(m))
	for k, raw := range m {
		v, err := toValue(raw)
		if err != nil {
			return Record{}, fmt.Errorf("%w: field %q: %w", domain.ErrInvalidRecord, k, err)
		}
		fields[k] = v
	}
	return Record{fields: fields}, nil
}

func toValue(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return NullValue(), nil
	case bool:
		if x {
			return NumberValue(1), nil
		}
		return NumberValue(0), nil
	case string:
		return StringValue(x), nil
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case int:
		return NumberValue(float64(x)), nil
	case int32:
		return NumberValue(float64(x)), nil
	case int64:
		return NumberValue(float64(x)), nil
	case uint64:
		return NumberValue(float64(x)), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("bad number %q", x.String())
		}
		return finite(f)
	default:
		return Value{}, fmt.Errorf("unsupported type %T", raw)
	}
}

func finite(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, fmt.Errorf("non-finite number %v", f)
	}
	return NumberValue(f), nil
}

// Get returns the value of a field, or null if absent.
func (r Record) Get(field string) Value {
	return r.fields[field]
}

// Has reports whether the field is present (even if null).
func (r Record) Has(field string) bool {
	_, ok := r.fields[field]
	return ok
}

// Len returns the number of fields.
func (r Record) Len() int { return len(r.fields) }

// Fields returns the field names in sorted order.
func (r Record) Fields() []string {
	names := make([]string, 0, len(r.fields))
	for k := range r.fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ToMap returns a JSON-compatible copy of the record.
func (r Record) ToMap() map[string]any {
	m := make(map[string]any, len(r.fields))
	for k, v := range r.fields {
		m[k] = v.Any()
	}
	return m
}

// Equal reports whether two records hold the same fields and values.
func (r Record) Equal(o Record) bool {
	if len(r.fields) != len(o.fields) {
		return false
	}
	for k, v := range r.fields {
		ov, ok := o.fields[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the record as a flat JSON object.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}

// UnmarshalJSON decodes a flat JSON object, rejecting non-scalar fields.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidRecord, err)
	}
	rec, err := FromMap(m)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}
