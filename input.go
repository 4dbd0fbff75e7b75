package goshape

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// Input is the capability set the engine reads foreign values through. The
// core never depends on a concrete host object model; adapters expose
// scalars, item lookup, iteration, and an identity token for the recursion
// guard. All accessors are cheap and side-effect free.
type Input interface {
	// IsNull reports whether the value is the host null.
	IsNull() bool
	// Bool/Int/Float/String/Bytes return the exact-typed scalar reading.
	// ok is false when the underlying value is not of that type; lax
	// coercions are the validator's business, not the adapter's.
	Bool() (bool, bool)
	Int() (int64, bool)
	Float() (float64, bool)
	String() (string, bool)
	Bytes() ([]byte, bool)
	// Seq returns sequence elements in order.
	Seq() ([]Input, bool)
	// Entries returns mapping entries in deterministic order.
	Entries() ([]Entry, bool)
	// Lookup returns the value for a field name or item key.
	Lookup(key string) (Input, bool)
	// Identity returns an opaque comparable token for cycle detection, or 0
	// when the value cannot participate in a cycle.
	Identity() uintptr
	// Raw returns the underlying host value (used for excerpts and literal
	// comparison).
	Raw() any
}

// Entry is one mapping entry produced by Input.Entries.
type Entry struct {
	Key   Input
	Value Input
}

// ValueOf wraps a native Go value (as produced by JSON/YAML decoding, or a
// plain struct) in an Input adapter. Values already implementing Input are
// returned as-is.
func ValueOf(v any) Input {
	if in, ok := v.(Input); ok {
		return in
	}
	return valueInput{v: v}
}

// valueInput adapts map[string]any / []any / scalar trees and, through
// reflect, arbitrary structs, typed maps, and typed slices.
type valueInput struct{ v any }

func (in valueInput) Raw() any { return in.v }

func (in valueInput) IsNull() bool {
	if in.v == nil {
		return true
	}
	rv := reflect.ValueOf(in.v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

func (in valueInput) Bool() (bool, bool) {
	b, ok := in.v.(bool)
	return b, ok
}

func (in valueInput) Int() (int64, bool) {
	switch t := in.v.(type) {
	case int:
		return int64(t), true
	case int8:
		return int64(t), true
	case int16:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case uint:
		return int64(t), true
	case uint8:
		return int64(t), true
	case uint16:
		return int64(t), true
	case uint32:
		return int64(t), true
	case uint64:
		if t > 1<<63-1 {
			return 0, false
		}
		return int64(t), true
	case json.Number:
		i, err := strconv.ParseInt(t.String(), 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

func (in valueInput) Float() (float64, bool) {
	switch t := in.v.(type) {
	case float32:
		return float64(t), true
	case float64:
		return t, true
	case json.Number:
		// JSON carries one number type; a json.Number reads as float too.
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func (in valueInput) String() (string, bool) {
	s, ok := in.v.(string)
	return s, ok
}

func (in valueInput) Bytes() ([]byte, bool) {
	b, ok := in.v.([]byte)
	return b, ok
}

func (in valueInput) Seq() ([]Input, bool) {
	switch t := in.v.(type) {
	case []any:
		out := make([]Input, len(t))
		for i, e := range t {
			out[i] = ValueOf(e)
		}
		return out, true
	case []byte, string, nil:
		return nil, false
	}
	rv := reflect.ValueOf(in.v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]Input, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = ValueOf(rv.Index(i).Interface())
		}
		return out, true
	}
	return nil, false
}

func (in valueInput) Entries() ([]Entry, bool) {
	switch t := in.v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		// key-sorted order for deterministic traversal
		sort.Strings(keys)
		out := make([]Entry, 0, len(t))
		for _, k := range keys {
			out = append(out, Entry{Key: ValueOf(k), Value: ValueOf(t[k])})
		}
		return out, true
	case map[any]any:
		out := make([]Entry, 0, len(t))
		for k, v := range t {
			out = append(out, Entry{Key: ValueOf(k), Value: ValueOf(v)})
		}
		sortEntries(out)
		return out, true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(in.v)
	switch rv.Kind() {
	case reflect.Map:
		out := make([]Entry, 0, rv.Len())
		it := rv.MapRange()
		for it.Next() {
			out = append(out, Entry{Key: ValueOf(it.Key().Interface()), Value: ValueOf(it.Value().Interface())})
		}
		sortEntries(out)
		return out, true
	case reflect.Struct:
		return structEntries(rv), true
	case reflect.Ptr:
		if !rv.IsNil() && rv.Elem().Kind() == reflect.Struct {
			return structEntries(rv.Elem()), true
		}
	}
	return nil, false
}

func (in valueInput) Lookup(key string) (Input, bool) {
	switch t := in.v.(type) {
	case map[string]any:
		v, ok := t[key]
		if !ok {
			return nil, false
		}
		return ValueOf(v), true
	case map[any]any:
		v, ok := t[key]
		if !ok {
			return nil, false
		}
		return ValueOf(v), true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(in.v)
	switch rv.Kind() {
	case reflect.Map:
		kt := rv.Type().Key()
		if kt.Kind() != reflect.String {
			return nil, false
		}
		mv := rv.MapIndex(reflect.ValueOf(key).Convert(kt))
		if !mv.IsValid() {
			return nil, false
		}
		return ValueOf(mv.Interface()), true
	case reflect.Ptr:
		if rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			return nil, false
		}
		rv = rv.Elem()
		fallthrough
	case reflect.Struct:
		if fv, ok := structField(rv, key); ok {
			return ValueOf(fv.Interface()), true
		}
	}
	return nil, false
}

func (in valueInput) Identity() uintptr {
	if in.v == nil {
		return 0
	}
	rv := reflect.ValueOf(in.v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Ptr, reflect.UnsafePointer, reflect.Chan, reflect.Func:
		if rv.IsNil() {
			return 0
		}
		return rv.Pointer()
	}
	return 0
}

// ---- reflect helpers ----

// structEntries lists exported fields in declaration order, honoring json
// tags the way encoding/json does for names and "-".
func structEntries(rv reflect.Value) []Entry {
	rt := rv.Type()
	out := make([]Entry, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if f.PkgPath != "" {
			continue
		}
		name := fieldName(f)
		if name == "" {
			continue
		}
		out = append(out, Entry{Key: ValueOf(name), Value: ValueOf(rv.Field(i).Interface())})
	}
	return out
}

func structField(rv reflect.Value, key string) (reflect.Value, bool) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if f.PkgPath != "" {
			continue
		}
		if fieldName(f) == key || f.Name == key {
			return rv.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func fieldName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" {
		return f.Name
	}
	name := tag
	for i := 0; i < len(tag); i++ {
		if tag[i] == ',' {
			name = tag[:i]
			break
		}
	}
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

func sortEntries(es []Entry) {
	sort.Slice(es, func(i, j int) bool {
		return entryKeyString(es[i]) < entryKeyString(es[j])
	})
}

func entryKeyString(e Entry) string {
	if s, ok := e.Key.String(); ok {
		return s
	}
	return fmt.Sprint(e.Key.Raw())
}
