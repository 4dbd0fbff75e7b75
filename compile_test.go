package goshape_test

import (
	"strings"
	"testing"

	goshape "github.com/goshape/goshape"
)

func wantSchemaError(t *testing.T, desc any, fragment string) {
	t.Helper()
	_, err := goshape.Compile(desc)
	se, ok := goshape.AsSchemaError(err)
	if !ok {
		t.Fatalf("want SchemaError, got %v", err)
	}
	if !strings.Contains(se.Msg, fragment) {
		t.Fatalf("want message containing %q, got %q", fragment, se.Msg)
	}
}

func TestCompileUnknownKind(t *testing.T) {
	wantSchemaError(t, map[string]any{"kind": "frobnicate"}, "unknown kind")
}

func TestCompileRefNotFound(t *testing.T) {
	wantSchemaError(t, map[string]any{"kind": "ref", "name": "ghost"}, `ref "ghost" not found`)
}

func TestCompileDuplicateDefinition(t *testing.T) {
	wantSchemaError(t, map[string]any{
		"kind": "record",
		"fields": map[string]any{
			"a": map[string]any{"kind": "def", "name": "n", "schema": "int"},
			"b": map[string]any{"kind": "def", "name": "n", "schema": "string"},
		},
	}, "duplicate definition")
}

func TestCompileRefOnlyCycle(t *testing.T) {
	wantSchemaError(t, map[string]any{
		"kind": "record",
		"fields": map[string]any{
			"a": map[string]any{"kind": "def", "name": "x", "schema": map[string]any{"kind": "ref", "name": "y"}},
			"b": map[string]any{"kind": "def", "name": "y", "schema": map[string]any{"kind": "ref", "name": "x"}},
		},
	}, "reference cycle")
}

func TestCompileIncoherentBounds(t *testing.T) {
	wantSchemaError(t, map[string]any{"kind": "int", "ge": 10, "le": 1}, "incoherent")
	wantSchemaError(t, map[string]any{"kind": "string", "min_length": 5, "max_length": 2}, "incoherent")
	wantSchemaError(t, map[string]any{"kind": "list", "items": "int", "min_items": 3, "max_items": 1}, "incoherent")
}

func TestCompileInvalidPattern(t *testing.T) {
	wantSchemaError(t, map[string]any{"kind": "string", "pattern": "("}, "invalid pattern")
}

func TestCompileEmptyEnum(t *testing.T) {
	wantSchemaError(t, map[string]any{"kind": "enum", "members": []any{}}, "non-empty")
}

func TestCompileLiteralWithoutValue(t *testing.T) {
	wantSchemaError(t, map[string]any{"kind": "literal"}, "requires a value")
}

func TestCompileBadExtraPolicy(t *testing.T) {
	wantSchemaError(t, map[string]any{
		"kind":   "record",
		"fields": map[string]any{"a": "int"},
		"extra":  "maybe",
	}, "extra must be")
}

func TestCompileBadUnionMode(t *testing.T) {
	wantSchemaError(t, map[string]any{
		"kind":    "union",
		"mode":    "sideways",
		"members": []any{"int"},
	}, "mode must be")
}

func TestCompileBadExpression(t *testing.T) {
	wantSchemaError(t, map[string]any{"kind": "hook", "check": "value >"}, "invalid check expression")
}

func TestCompileErrorCarriesPath(t *testing.T) {
	_, err := goshape.Compile(map[string]any{
		"kind":   "record",
		"fields": map[string]any{"a": map[string]any{"kind": "list"}},
	})
	se, ok := goshape.AsSchemaError(err)
	if !ok {
		t.Fatalf("want SchemaError, got %v", err)
	}
	if !strings.Contains(se.Path, "/fields/a") {
		t.Fatalf("want path pointing into the description, got %q", se.Path)
	}
}

func TestDefinitionsAreSorted(t *testing.T) {
	cs := mustCompile(t, map[string]any{
		"kind": "record",
		"fields": map[string]any{
			"a": map[string]any{"kind": "def", "name": "zeta", "schema": "int"},
			"b": map[string]any{"kind": "def", "name": "alpha", "schema": "int"},
		},
	})
	defs := cs.Definitions()
	if len(defs) != 2 || defs[0] != "alpha" || defs[1] != "zeta" {
		t.Fatalf("want sorted definitions, got %v", defs)
	}
}

func TestOrderedFieldLayoutPreservesDeclarationOrder(t *testing.T) {
	cs := mustCompile(t, map[string]any{
		"kind": "record",
		"fields": []any{
			map[string]any{"name": "z", "schema": "int"},
			map[string]any{"name": "a", "schema": "int"},
		},
	})
	_, err := cs.Validate(map[string]any{}, goshape.ValidateOpt{})
	iss := issuesOf(t, err)
	wantIssue(t, iss, 0, "/z", "missing")
	wantIssue(t, iss, 1, "/a", "missing")
}

func TestCompileStringShorthand(t *testing.T) {
	cs := mustCompile(t, "string")
	if _, err := cs.Validate("ok", goshape.ValidateOpt{Strict: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
