package goshape_test

import (
	"testing"

	goshape "github.com/goshape/goshape"
)

func TestSmartUnionPrefersStrictMatch(t *testing.T) {
	cs := mustCompile(t, map[string]any{
		"kind":    "union",
		"members": []any{"int", "string"},
	})
	// "5" would lax-coerce to int, but it matches string without coercion
	v, err := cs.Validate("5", goshape.ValidateOpt{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "5" {
		t.Fatalf("want \"5\", got %#v", v)
	}

	v, err = cs.Validate(5, goshape.ValidateOpt{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != int64(5) {
		t.Fatalf("want int64(5), got %#v", v)
	}
}

func TestSmartUnionLaxSecondPass(t *testing.T) {
	cs := mustCompile(t, map[string]any{
		"kind":    "union",
		"members": []any{"bool", "int"},
	})
	// no member matches strictly; the lax pass coerces to int
	v, err := cs.Validate("5", goshape.ValidateOpt{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != int64(5) {
		t.Fatalf("want int64(5), got %#v", v)
	}
}

func TestOrderedUnionTakesFirstLaxMatch(t *testing.T) {
	cs := mustCompile(t, map[string]any{
		"kind":    "union",
		"mode":    "ordered",
		"members": []any{"int", "string"},
	})
	v, err := cs.Validate("5", goshape.ValidateOpt{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != int64(5) {
		t.Fatalf("want int64(5), got %#v", v)
	}
}

func TestUnionFailureIsOneAggregateIssue(t *testing.T) {
	cs := mustCompile(t, map[string]any{
		"kind":    "union",
		"members": []any{"int", "bool"},
	})
	_, err := cs.Validate([]any{1}, goshape.ValidateOpt{})
	iss := issuesOf(t, err)
	if len(iss) != 1 {
		t.Fatalf("want one aggregate issue, got %d: %v", len(iss), iss)
	}
	wantIssue(t, iss, 0, "/", "union_invalid")
	// both members failed in both passes; every failure is retained as a sub-issue
	if len(iss[0].Sub) < 2 {
		t.Fatalf("want member failures in Sub, got %v", iss[0].Sub)
	}
}

func TestUnionNestedPathInAggregate(t *testing.T) {
	cs := mustCompile(t, map[string]any{
		"kind":   "record",
		"fields": map[string]any{"v": map[string]any{"kind": "union", "members": []any{"int", "bool"}}},
	})
	_, err := cs.Validate(map[string]any{"v": []any{}}, goshape.ValidateOpt{})
	iss := issuesOf(t, err)
	wantIssue(t, iss, 0, "/v", "union_invalid")
}

func TestTaggedUnionDispatch(t *testing.T) {
	cs := mustCompile(t, map[string]any{
		"kind":          "tagged_union",
		"discriminator": "type",
		"mapping": map[string]any{
			"circle": map[string]any{
				"kind":   "record",
				"fields": map[string]any{"type": map[string]any{"kind": "literal", "value": "circle"}, "radius": "float"},
			},
			"square": map[string]any{
				"kind":   "record",
				"fields": map[string]any{"type": map[string]any{"kind": "literal", "value": "square"}, "side": "float"},
			},
		},
	})

	v, err := cs.Validate(map[string]any{"type": "circle", "radius": 2}, goshape.ValidateOpt{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(map[string]any)["radius"] != float64(2) {
		t.Fatalf("unexpected output: %#v", v)
	}

	_, err = cs.Validate(map[string]any{"radius": 2}, goshape.ValidateOpt{})
	wantIssue(t, issuesOf(t, err), 0, "/type", "discriminator_missing")

	_, err = cs.Validate(map[string]any{"type": "hexagon"}, goshape.ValidateOpt{})
	wantIssue(t, issuesOf(t, err), 0, "/type", "discriminator_unknown")

	// mismatched member error is located inside the dispatched member
	_, err = cs.Validate(map[string]any{"type": "square"}, goshape.ValidateOpt{})
	wantIssue(t, issuesOf(t, err), 0, "/side", "missing")
}
