package goshape_test

import (
	"testing"
	"time"

	goshape "github.com/goshape/goshape"
)

func mustCompile(t *testing.T, desc any, opts ...goshape.CompileOpt) *goshape.CompiledSchema {
	t.Helper()
	cs, err := goshape.Compile(desc, opts...)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return cs
}

func issuesOf(t *testing.T, err error) goshape.Issues {
	t.Helper()
	if err == nil {
		t.Fatalf("expected issues, got nil error")
	}
	iss, ok := goshape.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %T: %v", err, err)
	}
	if len(iss) == 0 {
		t.Fatalf("expected non-empty issues")
	}
	return iss
}

func wantIssue(t *testing.T, iss goshape.Issues, i int, path, code string) {
	t.Helper()
	if i >= len(iss) {
		t.Fatalf("want issue %d (%s at %s), have %d: %v", i, code, path, len(iss), iss)
	}
	if iss[i].Path != path || iss[i].Code != code {
		t.Fatalf("issue %d: want %s at %s, got %s at %s", i, code, path, iss[i].Code, iss[i].Path)
	}
}

func TestIntStrictRejectsString(t *testing.T) {
	cs := mustCompile(t, "int")
	_, err := cs.Validate("5", goshape.ValidateOpt{Strict: true})
	iss := issuesOf(t, err)
	wantIssue(t, iss, 0, "/", "int_type")
}

func TestIntLaxCoercesString(t *testing.T) {
	cs := mustCompile(t, "int")
	v, err := cs.Validate("5", goshape.ValidateOpt{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != int64(5) {
		t.Fatalf("want int64(5), got %#v", v)
	}
}

func TestIntLaxRejectsFractionalFloat(t *testing.T) {
	cs := mustCompile(t, "int")
	_, err := cs.Validate(5.5, goshape.ValidateOpt{})
	wantIssue(t, issuesOf(t, err), 0, "/", "int_parsing")
}

func TestIntBounds(t *testing.T) {
	cs := mustCompile(t, map[string]any{"kind": "int", "ge": 1, "lt": 10})
	if _, err := cs.Validate(1, goshape.ValidateOpt{}); err != nil {
		t.Fatalf("1 should pass: %v", err)
	}
	_, err := cs.Validate(0, goshape.ValidateOpt{})
	wantIssue(t, issuesOf(t, err), 0, "/", "too_small")
	_, err = cs.Validate(10, goshape.ValidateOpt{})
	wantIssue(t, issuesOf(t, err), 0, "/", "too_big")
}

func TestBoolLaxTable(t *testing.T) {
	cs := mustCompile(t, "bool")
	for in, want := range map[string]bool{"yes": true, "off": false, "TRUE": true, "0": false} {
		v, err := cs.Validate(in, goshape.ValidateOpt{})
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if v != want {
			t.Fatalf("%q: want %v, got %v", in, want, v)
		}
	}
	_, err := cs.Validate("maybe", goshape.ValidateOpt{})
	wantIssue(t, issuesOf(t, err), 0, "/", "bool_parsing")
}

func TestStringPatternAndLength(t *testing.T) {
	cs := mustCompile(t, map[string]any{"kind": "string", "min_length": 2, "pattern": "^a+$"})
	if _, err := cs.Validate("aaa", goshape.ValidateOpt{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := cs.Validate("a", goshape.ValidateOpt{})
	wantIssue(t, issuesOf(t, err), 0, "/", "too_short")
	_, err = cs.Validate("bb", goshape.ValidateOpt{})
	wantIssue(t, issuesOf(t, err), 0, "/", "pattern_mismatch")
}

func TestRecordDefaultsAndMissing(t *testing.T) {
	cs := mustCompile(t, map[string]any{
		"kind": "record",
		"fields": map[string]any{
			"a": "int",
			"b": map[string]any{"schema": "int", "default": 7},
		},
	})
	v, err := cs.Validate(map[string]any{"a": 1}, goshape.ValidateOpt{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := v.(map[string]any)
	if m["a"] != int64(1) || m["b"] != 7 {
		t.Fatalf("unexpected output: %#v", m)
	}

	_, err = cs.Validate(map[string]any{}, goshape.ValidateOpt{})
	wantIssue(t, issuesOf(t, err), 0, "/a", "missing")
}

func TestRecordAliasLookup(t *testing.T) {
	cs := mustCompile(t, map[string]any{
		"kind": "record",
		"fields": map[string]any{
			"a": map[string]any{"schema": "int", "alias": "A"},
		},
	})
	v, err := cs.Validate(map[string]any{"A": 3}, goshape.ValidateOpt{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(map[string]any)["a"] != int64(3) {
		t.Fatalf("unexpected output: %#v", v)
	}
	// canonical name stays accepted unless compiled with strict aliases
	if _, err := cs.Validate(map[string]any{"a": 3}, goshape.ValidateOpt{}); err != nil {
		t.Fatalf("canonical fallback: %v", err)
	}

	strict := mustCompile(t, map[string]any{
		"kind":   "record",
		"fields": map[string]any{"a": map[string]any{"schema": "int", "alias": "A"}},
	}, goshape.CompileOpt{StrictAliases: true})
	_, err = strict.Validate(map[string]any{"a": 3}, goshape.ValidateOpt{})
	wantIssue(t, issuesOf(t, err), 0, "/a", "missing")
}

func TestRecordExtraForbid(t *testing.T) {
	cs := mustCompile(t, map[string]any{
		"kind":   "record",
		"fields": map[string]any{"a": "int"},
		"extra":  "forbid",
	})
	_, err := cs.Validate(map[string]any{"a": 1, "x": 2}, goshape.ValidateOpt{})
	wantIssue(t, issuesOf(t, err), 0, "/x", "unknown_key")
}

func TestRecordExtraAllowPassesThrough(t *testing.T) {
	cs := mustCompile(t, map[string]any{
		"kind":   "record",
		"fields": map[string]any{"a": "int"},
		"extra":  "allow",
	})
	v, err := cs.Validate(map[string]any{"a": 1, "x": "keep"}, goshape.ValidateOpt{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(map[string]any)["x"] != "keep" {
		t.Fatalf("extra key dropped: %#v", v)
	}
}

func TestListLaxCoercionAndStrictPaths(t *testing.T) {
	cs := mustCompile(t, map[string]any{"kind": "list", "items": "int"})
	v, err := cs.Validate([]any{"1", 2}, goshape.ValidateOpt{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := v.([]any)
	if got[0] != int64(1) || got[1] != int64(2) {
		t.Fatalf("unexpected output: %#v", got)
	}

	_, err = cs.Validate([]any{"1", 2}, goshape.ValidateOpt{Strict: true})
	wantIssue(t, issuesOf(t, err), 0, "/0", "int_type")
}

func TestSetRejectsDuplicates(t *testing.T) {
	cs := mustCompile(t, map[string]any{"kind": "set", "items": "int"})
	_, err := cs.Validate([]any{1, 2, 1}, goshape.ValidateOpt{})
	wantIssue(t, issuesOf(t, err), 0, "/2", "unique_items")
}

func TestTupleArity(t *testing.T) {
	cs := mustCompile(t, map[string]any{"kind": "tuple", "items": []any{"int", "string"}})
	v, err := cs.Validate([]any{1, "x"}, goshape.ValidateOpt{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := v.([]any); got[0] != int64(1) || got[1] != "x" {
		t.Fatalf("unexpected output: %#v", got)
	}
	_, err = cs.Validate([]any{1}, goshape.ValidateOpt{})
	wantIssue(t, issuesOf(t, err), 0, "/", "tuple_length")
}

func TestMapKeyAndValuePaths(t *testing.T) {
	cs := mustCompile(t, map[string]any{
		"kind":   "map",
		"keys":   map[string]any{"kind": "string", "pattern": "^[a-z]+$"},
		"values": "int",
	})
	v, err := cs.Validate(map[string]any{"a": 1}, goshape.ValidateOpt{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(map[string]any)["a"] != int64(1) {
		t.Fatalf("unexpected output: %#v", v)
	}

	_, err = cs.Validate(map[string]any{"BAD": 1}, goshape.ValidateOpt{Strict: true})
	wantIssue(t, issuesOf(t, err), 0, "/BAD/[key]", "pattern_mismatch")

	_, err = cs.Validate(map[string]any{"a": "x"}, goshape.ValidateOpt{Strict: true})
	wantIssue(t, issuesOf(t, err), 0, "/a", "int_type")
}

func TestIssueOrderIsDeterministic(t *testing.T) {
	cs := mustCompile(t, map[string]any{
		"kind":   "record",
		"fields": map[string]any{"b": "int", "a": "int", "c": "int"},
	})
	for i := 0; i < 10; i++ {
		_, err := cs.Validate(map[string]any{}, goshape.ValidateOpt{})
		iss := issuesOf(t, err)
		wantIssue(t, iss, 0, "/a", "missing")
		wantIssue(t, iss, 1, "/b", "missing")
		wantIssue(t, iss, 2, "/c", "missing")
	}
}

func TestFailFastStopsAtFirstIssue(t *testing.T) {
	cs := mustCompile(t, map[string]any{"kind": "list", "items": "int"})
	_, err := cs.Validate([]any{"x", "y", "z"}, goshape.ValidateOpt{FailFast: true})
	iss := issuesOf(t, err)
	if len(iss) != 1 {
		t.Fatalf("want exactly one issue, got %d: %v", len(iss), iss)
	}
	wantIssue(t, iss, 0, "/0", "int_parsing")
}

func TestMaxErrorsCeiling(t *testing.T) {
	cs := mustCompile(t, map[string]any{"kind": "list", "items": "int"})
	bad := make([]any, 10)
	for i := range bad {
		bad[i] = "x"
	}
	_, err := cs.Validate(bad, goshape.ValidateOpt{MaxErrors: 3})
	iss := issuesOf(t, err)
	if len(iss) != 4 {
		t.Fatalf("want 3 issues plus the marker, got %d: %v", len(iss), iss)
	}
	if iss[3].Code != "too_many_errors" {
		t.Fatalf("want too_many_errors marker, got %s", iss[3].Code)
	}
}

func TestRecursiveSchemaCyclicInput(t *testing.T) {
	cs := mustCompile(t, map[string]any{
		"kind": "def", "name": "tree",
		"schema": map[string]any{"kind": "list", "items": map[string]any{"kind": "ref", "name": "tree"}},
	})
	// acyclic nesting validates
	if _, err := cs.Validate([]any{[]any{}, []any{[]any{}}}, goshape.ValidateOpt{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// a self-referential slice is a loop, not an overflow
	cyclic := make([]any, 1)
	cyclic[0] = cyclic
	_, err := cs.Validate(cyclic, goshape.ValidateOpt{})
	wantIssue(t, issuesOf(t, err), 0, "/0", "recursion_loop")
}

func TestMaxDepthExceeded(t *testing.T) {
	cs := mustCompile(t, map[string]any{
		"kind": "def", "name": "tree",
		"schema": map[string]any{"kind": "list", "items": map[string]any{"kind": "ref", "name": "tree"}},
	})
	v := []any{}
	for i := 0; i < 10; i++ {
		v = []any{v}
	}
	_, err := cs.Validate(v, goshape.ValidateOpt{MaxDepth: 3})
	iss := issuesOf(t, err)
	if iss[0].Code != "max_depth_exceeded" {
		t.Fatalf("want max_depth_exceeded, got %v", iss)
	}
}

func TestWrapperOnlyRecursiveSchemaHitsDepthCeiling(t *testing.T) {
	// the definition reaches itself without ever entering a container, so
	// the location path never grows; the descent counter must terminate it
	cs := mustCompile(t, map[string]any{
		"kind": "def", "name": "a",
		"schema": map[string]any{"kind": "nullable", "schema": map[string]any{"kind": "ref", "name": "a"}},
	})
	_, err := cs.Validate(5, goshape.ValidateOpt{MaxDepth: 8})
	wantIssue(t, issuesOf(t, err), 0, "/", "max_depth_exceeded")

	// null terminates at the first nullable layer
	if v, err := cs.Validate(nil, goshape.ValidateOpt{MaxDepth: 8}); err != nil || v != nil {
		t.Fatalf("null should satisfy the schema: %v %v", v, err)
	}

	// same shape through a union wrapper
	cs = mustCompile(t, map[string]any{
		"kind": "def", "name": "b",
		"schema": map[string]any{"kind": "union", "members": []any{map[string]any{"kind": "ref", "name": "b"}}},
	})
	_, err = cs.Validate("x", goshape.ValidateOpt{MaxDepth: 8})
	iss := issuesOf(t, err)
	wantIssue(t, iss, 0, "/", "union_invalid")
	if len(iss[0].Sub) == 0 || iss[0].Sub[0].Code != "max_depth_exceeded" {
		t.Fatalf("want max_depth_exceeded member failure, got %v", iss[0].Sub)
	}
}

func TestDatetimeLaxEpoch(t *testing.T) {
	cs := mustCompile(t, "datetime")
	v, err := cs.Validate(1700000000, goshape.ValidateOpt{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := v.(time.Time)
	if got.Unix() != 1700000000 {
		t.Fatalf("want epoch 1700000000, got %v", got)
	}
	_, err = cs.Validate(1700000000, goshape.ValidateOpt{Strict: true})
	wantIssue(t, issuesOf(t, err), 0, "/", "datetime_parsing")
}

func TestEmbeddedJSONString(t *testing.T) {
	cs := mustCompile(t, map[string]any{"kind": "json", "schema": "int"})
	v, err := cs.Validate("5", goshape.ValidateOpt{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != int64(5) {
		t.Fatalf("want int64(5), got %#v", v)
	}
	_, err = cs.Validate("{broken", goshape.ValidateOpt{})
	wantIssue(t, issuesOf(t, err), 0, "/", "json_parsing")
}

func TestValidateWithMetaPresence(t *testing.T) {
	cs := mustCompile(t, map[string]any{
		"kind": "record",
		"fields": map[string]any{
			"a": "int",
			"b": map[string]any{"schema": "int", "default": 7},
		},
	})
	dec, err := cs.ValidateWithMeta(map[string]any{"a": 1}, goshape.ValidateOpt{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.Presence["/a"]&goshape.PresenceSeen == 0 {
		t.Fatalf("want /a seen, got %v", dec.Presence)
	}
	if dec.Presence["/b"]&goshape.PresenceDefaultApplied == 0 {
		t.Fatalf("want /b default-applied, got %v", dec.Presence)
	}
	if !dec.Presence.Unset("/b") || dec.Presence.Unset("/a") {
		t.Fatalf("unset flags wrong: %v", dec.Presence)
	}
}

func TestValidateThroughStructInput(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}
	cs := mustCompile(t, map[string]any{
		"kind":   "record",
		"fields": map[string]any{"name": "string", "age": "int"},
	})
	v, err := cs.Validate(payload{Name: "ada", Age: 36}, goshape.ValidateOpt{Strict: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := v.(map[string]any)
	if m["name"] != "ada" || m["age"] != int64(36) {
		t.Fatalf("unexpected output: %#v", m)
	}
}
