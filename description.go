package goshape

import (
	"encoding/json"
	"strconv"
)

// A schema description is a normalized map tree: every node is either a
// map with a "kind" tag plus kind-specific options, or a bare string used
// as shorthand for {kind: s}. Descriptions are treated as immutable once
// handed to Compile.

// descNode gives path-aware typed access to one description map. All
// readers record the first malformation as a *SchemaError.
type descNode struct {
	m    map[string]any
	path string
	err  *SchemaError
}

func asDescNode(v any, path string) (*descNode, *SchemaError) {
	switch t := v.(type) {
	case string:
		return &descNode{m: map[string]any{"kind": t}, path: path}, nil
	case map[string]any:
		return &descNode{m: t, path: path}, nil
	default:
		return nil, schemaErrf(path, "expected schema description object, got %T", v)
	}
}

func (d *descNode) fail(key, format string, a ...any) {
	if d.err == nil {
		d.err = schemaErrf(d.child(key), format, a...)
	}
}

func (d *descNode) child(key string) string {
	if d.path == "/" || d.path == "" {
		return "/" + key
	}
	return d.path + "/" + key
}

func (d *descNode) childIndex(key string, i int) string {
	return d.child(key) + "/" + strconv.Itoa(i)
}

func (d *descNode) kind() string {
	k, ok := d.m["kind"].(string)
	if !ok {
		d.fail("kind", "missing or non-string kind tag")
		return ""
	}
	return k
}

func (d *descNode) has(key string) bool {
	_, ok := d.m[key]
	return ok
}

func (d *descNode) str(key string) (string, bool) {
	v, ok := d.m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		d.fail(key, "expected string, got %T", v)
		return "", false
	}
	return s, true
}

func (d *descNode) boolOpt(key string) (bool, bool) {
	v, ok := d.m[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	if !ok {
		d.fail(key, "expected bool, got %T", v)
		return false, false
	}
	return b, true
}

// boolPtr reads an optional tri-state flag (nil = inherit from call options).
func (d *descNode) boolPtr(key string) *bool {
	b, ok := d.boolOpt(key)
	if !ok {
		return nil
	}
	return &b
}

func (d *descNode) intOpt(key string) (int64, bool) {
	v, ok := d.m[key]
	if !ok {
		return 0, false
	}
	i, ok := toInt64(v)
	if !ok {
		d.fail(key, "expected integer, got %v", v)
		return 0, false
	}
	return i, true
}

func (d *descNode) intPtr(key string) *int64 {
	i, ok := d.intOpt(key)
	if !ok {
		return nil
	}
	return &i
}

func (d *descNode) floatPtr(key string) *float64 {
	v, ok := d.m[key]
	if !ok {
		return nil
	}
	f, ok := toFloat64(v)
	if !ok {
		d.fail(key, "expected number, got %v", v)
		return nil
	}
	return &f
}

func (d *descNode) lenPtr(key string) *int {
	i, ok := d.intOpt(key)
	if !ok {
		return nil
	}
	if i < 0 {
		d.fail(key, "length bound must be non-negative, got %d", i)
		return nil
	}
	n := int(i)
	return &n
}

func (d *descNode) slice(key string) ([]any, bool) {
	v, ok := d.m[key]
	if !ok {
		return nil, false
	}
	s, ok := v.([]any)
	if !ok {
		d.fail(key, "expected array, got %T", v)
		return nil, false
	}
	return s, true
}

func (d *descNode) object(key string) (map[string]any, bool) {
	v, ok := d.m[key]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	if !ok {
		d.fail(key, "expected object, got %T", v)
		return nil, false
	}
	return m, true
}

// ---- loose numeric readers (descriptions come from JSON/YAML decoders) ----

func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int64:
		return t, true
	case float64:
		if t == float64(int64(t)) {
			return int64(t), true
		}
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, true
		}
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f, true
		}
	}
	return 0, false
}
