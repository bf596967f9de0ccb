package pollsearch

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/kailas-cloud/pollsearch/internal/domain/record"
)

const tagKey = "pollsearch"

// schemaMeta maps struct fields to record fields.
type schemaMeta struct {
	typ    reflect.Type
	fields []fieldMapping
}

type fieldMapping struct {
	structIdx int
	name      string
	nullable  bool // pointer field: nil <-> null
}

var schemaCache sync.Map // reflect.Type -> *schemaMeta

// parseSchema reflects on T and extracts pollsearch struct tag metadata.
// Untagged exported fields map by their Go name; "-" skips a field.
func parseSchema[T any]() (*schemaMeta, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return nil, fmt.Errorf("pollsearch: cannot decode into interface type")
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("pollsearch: type %s is not a struct", t)
	}
	if cached, ok := schemaCache.Load(t); ok {
		return cached.(*schemaMeta), nil
	}

	meta := &schemaMeta{typ: t}
	seen := make(map[string]string)
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag := f.Tag.Get(tagKey); tag != "" {
			if tag == "-" {
				continue
			}
			name = strings.TrimSpace(tag)
		}

		ft := f.Type
		nullable := ft.Kind() == reflect.Pointer
		if nullable {
			ft = ft.Elem()
		}
		if !supportedKind(ft.Kind()) {
			return nil, fmt.Errorf("pollsearch: field %s has unsupported type %s", f.Name, f.Type)
		}
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("pollsearch: fields %s and %s both map to %q", prev, f.Name, name)
		}
		seen[name] = f.Name
		meta.fields = append(meta.fields, fieldMapping{structIdx: i, name: name, nullable: nullable})
	}

	schemaCache.Store(t, meta)
	return meta, nil
}

func supportedKind(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// fromRecord fills a new T from r. Absent and null fields keep the zero value.
func (m *schemaMeta) fromRecord(r record.Record) (reflect.Value, error) {
	v := reflect.New(m.typ).Elem()
	for _, fm := range m.fields {
		val := r.Get(fm.name)
		if val.IsNull() {
			continue
		}
		dst := v.Field(fm.structIdx)
		if fm.nullable {
			ptr := reflect.New(dst.Type().Elem())
			dst.Set(ptr)
			dst = ptr.Elem()
		}
		if err := setValue(dst, val); err != nil {
			return reflect.Value{}, fmt.Errorf("%w: field %q: %w", ErrInvalidRecord, fm.name, err)
		}
	}
	return v, nil
}

// toRecord converts a struct value into a Record.
func (m *schemaMeta) toRecord(v reflect.Value) Record {
	fields := make(map[string]record.Value, len(m.fields))
	for _, fm := range m.fields {
		src := v.Field(fm.structIdx)
		if fm.nullable {
			if src.IsNil() {
				fields[fm.name] = record.NullValue()
				continue
			}
			src = src.Elem()
		}
		fields[fm.name] = toValue(src)
	}
	return record.New(fields)
}

func setValue(dst reflect.Value, val record.Value) error {
	switch dst.Kind() {
	case reflect.String:
		s, _ := val.Text()
		dst.SetString(s)
		return nil
	case reflect.Bool:
		f, ok := val.Float()
		if !ok {
			return fmt.Errorf("%s is not a number", val.Kind())
		}
		dst.SetBool(f != 0)
		return nil
	}

	f, ok := val.Float()
	if !ok {
		return fmt.Errorf("cannot convert %s to %s", val.Kind(), dst.Kind())
	}
	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if f != math.Trunc(f) {
			return fmt.Errorf("%v is not an integer", f)
		}
		// Bounds in float space: [-2^(bits-1), 2^(bits-1)).
		limit := math.Ldexp(1, dst.Type().Bits()-1)
		if f < -limit || f >= limit {
			return fmt.Errorf("%v overflows %s", f, dst.Type())
		}
		dst.SetInt(int64(f))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if f != math.Trunc(f) {
			return fmt.Errorf("%v is not an integer", f)
		}
		if f < 0 || f >= math.Ldexp(1, dst.Type().Bits()) {
			return fmt.Errorf("%v overflows %s", f, dst.Type())
		}
		dst.SetUint(uint64(f))
	default:
		if dst.OverflowFloat(f) {
			return fmt.Errorf("%v overflows %s", f, dst.Type())
		}
		dst.SetFloat(f)
	}
	return nil
}

func toValue(v reflect.Value) record.Value {
	switch v.Kind() {
	case reflect.String:
		return record.StringValue(v.String())
	case reflect.Bool:
		if v.Bool() {
			return record.NumberValue(1)
		}
		return record.NumberValue(0)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return record.NumberValue(float64(v.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return record.NumberValue(float64(v.Uint()))
	default:
		return record.NumberValue(v.Float())
	}
}

// Decode converts a record into T using `pollsearch:"Field"` struct tags.
// Pointer fields stay nil for null or absent values.
func Decode[T any](r Record) (T, error) {
	var zero T
	meta, err := parseSchema[T]()
	if err != nil {
		return zero, err
	}
	v, err := meta.fromRecord(r)
	if err != nil {
		return zero, err
	}
	return v.Interface().(T), nil
}

// DecodeAll converts records into T, preserving order.
func DecodeAll[T any](records []Record) ([]T, error) {
	meta, err := parseSchema[T]()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(records))
	for i, r := range records {
		v, err := meta.fromRecord(r)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, v.Interface().(T))
	}
	return out, nil
}

// DecodeView converts the records of the view's current page into T.
func DecodeView[T any](v View) ([]T, error) {
	return DecodeAll[T](v.Records)
}

// Encode converts items into records, the inverse of DecodeAll.
func Encode[T any](items []T) ([]Record, error) {
	meta, err := parseSchema[T]()
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(items))
	for i := range items {
		out = append(out, meta.toRecord(reflect.ValueOf(items[i])))
	}
	return out, nil
}
