package goshape_test

import (
	"errors"
	"fmt"
	"testing"

	goshape "github.com/goshape/goshape"
)

func TestLiteral(t *testing.T) {
	cs := mustCompile(t, map[string]any{"kind": "literal", "value": "on"})
	if _, err := cs.Validate("on", goshape.ValidateOpt{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := cs.Validate("off", goshape.ValidateOpt{})
	wantIssue(t, issuesOf(t, err), 0, "/", "invalid_literal")
}

func TestLiteralNumericNormalization(t *testing.T) {
	cs := mustCompile(t, map[string]any{"kind": "literal", "value": 5})
	// a json.Number or differently sized int still matches the int literal
	if _, err := cs.Validate(int32(5), goshape.ValidateOpt{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := cs.Validate(6, goshape.ValidateOpt{})
	wantIssue(t, issuesOf(t, err), 0, "/", "invalid_literal")
}

func TestEnum(t *testing.T) {
	cs := mustCompile(t, map[string]any{"kind": "enum", "members": []any{"red", "green", "blue"}})
	v, err := cs.Validate("green", goshape.ValidateOpt{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "green" {
		t.Fatalf("want green, got %#v", v)
	}
	_, err = cs.Validate("yellow", goshape.ValidateOpt{})
	wantIssue(t, issuesOf(t, err), 0, "/", "invalid_enum")
}

func TestEnumIntMembers(t *testing.T) {
	cs := mustCompile(t, map[string]any{"kind": "enum", "members": []any{1, 2, 3}})
	v, err := cs.Validate(2, goshape.ValidateOpt{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != int64(2) {
		t.Fatalf("want int64(2), got %#v", v)
	}
}

func TestNullable(t *testing.T) {
	cs := mustCompile(t, map[string]any{"kind": "nullable", "schema": "int"})
	v, err := cs.Validate(nil, goshape.ValidateOpt{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != nil {
		t.Fatalf("want nil, got %#v", v)
	}
	if _, err := cs.Validate(3, goshape.ValidateOpt{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDefaultForNull(t *testing.T) {
	cs := mustCompile(t, map[string]any{"kind": "default", "schema": "int", "default": 9})
	v, err := cs.Validate(nil, goshape.ValidateOpt{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 9 {
		t.Fatalf("want 9, got %#v", v)
	}
}

func TestChainPipesStages(t *testing.T) {
	cs := mustCompile(t, map[string]any{
		"kind":  "chain",
		"steps": []any{"string", map[string]any{"kind": "json", "schema": "int"}},
	})
	v, err := cs.Validate("5", goshape.ValidateOpt{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != int64(5) {
		t.Fatalf("want int64(5), got %#v", v)
	}
	// a broken stage stops the chain at its own location
	_, err = cs.Validate("{oops", goshape.ValidateOpt{})
	wantIssue(t, issuesOf(t, err), 0, "/", "json_parsing")
}

func TestRegisteredHook(t *testing.T) {
	double := func(v any, extra any) (any, error) {
		i, ok := v.(int64)
		if !ok {
			return nil, fmt.Errorf("not an int: %T", v)
		}
		return i * 2, nil
	}
	cs := mustCompile(t,
		map[string]any{"kind": "hook", "name": "double", "schema": "int"},
		goshape.CompileOpt{Hooks: map[string]goshape.HookFunc{"double": double}},
	)
	v, err := cs.Validate(3, goshape.ValidateOpt{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != int64(6) {
		t.Fatalf("want int64(6), got %#v", v)
	}
}

func TestHookErrorBecomesIssue(t *testing.T) {
	boom := func(v any, extra any) (any, error) { return nil, errors.New("boom") }
	cs := mustCompile(t,
		map[string]any{"kind": "hook", "name": "boom", "schema": "int"},
		goshape.CompileOpt{Hooks: map[string]goshape.HookFunc{"boom": boom}},
	)
	_, err := cs.Validate(3, goshape.ValidateOpt{})
	iss := issuesOf(t, err)
	wantIssue(t, iss, 0, "/", "hook_error")
	if iss[0].Cause == nil {
		t.Fatalf("want cause retained, got %v", iss[0])
	}
}

func TestUnregisteredHookIsSchemaError(t *testing.T) {
	_, err := goshape.Compile(map[string]any{"kind": "hook", "name": "nope", "schema": "int"})
	if _, ok := goshape.AsSchemaError(err); !ok {
		t.Fatalf("want SchemaError, got %v", err)
	}
}

func TestCheckExpression(t *testing.T) {
	cs := mustCompile(t, map[string]any{"kind": "hook", "check": "value > 0", "schema": "int"})
	if _, err := cs.Validate(3, goshape.ValidateOpt{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := cs.Validate(-1, goshape.ValidateOpt{})
	wantIssue(t, issuesOf(t, err), 0, "/", "hook_error")
}

func TestTransformExpression(t *testing.T) {
	cs := mustCompile(t, map[string]any{"kind": "hook", "transform": "value * 2", "schema": "int"})
	v, err := cs.Validate(3, goshape.ValidateOpt{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fmt.Sprint(v) != "6" {
		t.Fatalf("want 6, got %#v", v)
	}
}

func TestHookExtraIsVisible(t *testing.T) {
	cs := mustCompile(t, map[string]any{"kind": "hook", "check": `value == extra["expected"]`, "schema": "int"})
	opt := goshape.ValidateOpt{Extra: map[string]any{"expected": int64(3)}}
	if _, err := cs.Validate(3, opt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	opt.Extra = map[string]any{"expected": int64(4)}
	_, err := cs.Validate(3, opt)
	wantIssue(t, issuesOf(t, err), 0, "/", "hook_error")
}
