package goshape

import (
	"encoding/json"
	"math"
	"reflect"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// literalNode accepts exactly one value. No coercion in either mode; the
// literal itself is the contract.
type literalNode struct {
	value any
}

func (*literalNode) kind() string { return "literal" }

func (n *literalNode) validate(in Input, ctx *vctx) (any, bool) {
	got := in.Raw()
	if literalEqual(got, n.value) {
		return n.value, true
	}
	ctx.report(CodeInvalidLiteral, in, map[string]any{"expected": n.value})
	return nil, false
}

// enumNode accepts any of a fixed member set. Hashable members resolve via a
// precomputed table; the rare unhashable member falls back to a deep compare.
type enumNode struct {
	members []any
	lookup  map[any]bool
}

func (*enumNode) kind() string { return "enum" }

func (n *enumNode) validate(in Input, ctx *vctx) (any, bool) {
	got := in.Raw()
	if k, hashable := enumKey(got); hashable {
		if n.lookup[k] {
			return k, true
		}
	} else {
		for _, m := range n.members {
			if reflect.DeepEqual(got, m) {
				return m, true
			}
		}
	}
	ctx.report(CodeInvalidEnum, in, map[string]any{"members": len(n.members)})
	return nil, false
}

// enumKey normalizes a scalar to its canonical comparable form (int64,
// float64, string, bool, nil). The second result is false for values that
// cannot be a map key in that form.
func enumKey(v any) (any, bool) {
	switch t := v.(type) {
	case nil, bool, string:
		return t, true
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
		if t > math.MaxInt64 {
			return float64(t), true
		}
		return int64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, true
		}
		if f, err := t.Float64(); err == nil {
			return f, true
		}
		return t.String(), true
	}
	return nil, false
}

// literalEqual compares without coercion but across numeric representations
// of the same value, so a json.Number input still matches an int literal.
func literalEqual(got, want any) bool {
	gk, gok := enumKey(got)
	wk, wok := enumKey(want)
	if gok && wok {
		return gk == wk
	}
	return reflect.DeepEqual(got, want)
}

// refNode resolves through the definitions table at validate time. It never
// touches the identity guard itself: a runtime cycle must pass through a
// container node, and the containers own the guard. Guarding here too would
// trip on the definition body seeing the same input it just entered. The ref
// does tick the descent counter: a definition reaching itself through
// wrapper nodes only never extends the path, and the counter is what bounds
// that descent.
type refNode struct {
	idx  int
	defs *defsTable
}

func (*refNode) kind() string { return "ref" }

func (n *refNode) validate(in Input, ctx *vctx) (any, bool) {
	if !ctx.enterRef() {
		return nil, false
	}
	defer ctx.exitRef()
	return n.defs.defs[n.idx].v.validate(in, ctx)
}

// nullableNode lets null through as nil and defers everything else.
type nullableNode struct {
	inner validator
}

func (*nullableNode) kind() string { return "nullable" }

func (n *nullableNode) validate(in Input, ctx *vctx) (any, bool) {
	if in == nil || in.IsNull() {
		return nil, true
	}
	return n.inner.validate(in, ctx)
}

// defaultNode substitutes the declared default for null or absent input.
// Record fields short-circuit absence before this node runs; the null case
// is handled here.
type defaultNode struct {
	inner validator
	def   any
}

func (*defaultNode) kind() string { return "default" }

func (n *defaultNode) validate(in Input, ctx *vctx) (any, bool) {
	if in == nil || in.IsNull() {
		return n.def, true
	}
	return n.inner.validate(in, ctx)
}

// chainNode runs stages in order, feeding each stage's output to the next.
// A failed stage stops the chain; later stages never see a broken value.
type chainNode struct {
	steps []validator
}

func (*chainNode) kind() string { return "chain" }

func (n *chainNode) validate(in Input, ctx *vctx) (any, bool) {
	cur := in
	var out any
	for i, step := range n.steps {
		v, ok := step.validate(cur, ctx)
		if !ok {
			return nil, false
		}
		out = v
		if i < len(n.steps)-1 {
			cur = ValueOf(v)
		}
	}
	return out, true
}

// hookNode attaches user logic after the inner validation: a registered Go
// function, a boolean check expression, or a transform expression. Hook
// failures surface as hook_error at the hook's location.
type hookNode struct {
	inner     validator
	fn        HookFunc
	check     *vm.Program
	transform *vm.Program
	label     string
}

func (*hookNode) kind() string { return "hook" }

func (n *hookNode) validate(in Input, ctx *vctx) (any, bool) {
	v, ok := n.inner.validate(in, ctx)
	if !ok {
		return nil, false
	}
	switch {
	case n.fn != nil:
		out, err := n.fn(v, ctx.opt.Extra)
		if err != nil {
			ctx.reportHook(in, n.label, err)
			return nil, false
		}
		return out, true
	case n.check != nil:
		res, err := expr.Run(n.check, hookEnv(v, ctx.opt.Extra))
		if err != nil {
			ctx.reportHook(in, n.label, err)
			return nil, false
		}
		if pass, isBool := res.(bool); !isBool || !pass {
			ctx.reportHook(in, n.label, nil)
			return nil, false
		}
		return v, true
	case n.transform != nil:
		out, err := expr.Run(n.transform, hookEnv(v, ctx.opt.Extra))
		if err != nil {
			ctx.reportHook(in, n.label, err)
			return nil, false
		}
		return out, true
	}
	return v, true
}

func hookEnv(v, extra any) map[string]any {
	return map[string]any{"value": v, "extra": extra}
}

// reportHook records a hook_error carrying the offending expression or hook
// name as the hint and the underlying error as the cause.
func (c *vctx) reportHook(in Input, label string, err error) {
	it := Issue{
		Path:          c.at(),
		Code:          CodeHookError,
		Message:       "hook rejected the value",
		Hint:          label,
		Cause:         err,
		InputFragment: fragmentOf(in),
	}
	if err != nil {
		it.Message = "hook failed: " + err.Error()
	}
	c.reportIssue(it)
}
