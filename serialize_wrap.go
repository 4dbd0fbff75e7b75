package goshape

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// unionSer probes members in declared order with a throwaway context so a
// failed probe leaves no trace, and commits the first member that accepts
// the value.
type unionSer struct {
	members []serializer
}

func (*unionSer) kind() string { return "union" }

func (n *unionSer) serialize(v any, ctx *sctx) (any, bool) {
	for _, m := range n.members {
		probe := newSctx(ctx.opt)
		probe.opt.FailFast = true
		probe.path = ctx.path
		probe.depth = ctx.depth
		if out, ok := m.serialize(v, probe); ok && !probe.failed {
			return out, true
		}
	}
	ctx.report(CodeNotSerializable, "no union member can represent the value", v)
	return nil, false
}

// taggedUnionSer dispatches on the discriminator field of the value itself.
type taggedUnionSer struct {
	discriminator string
	mapping       map[string]serializer
	tags          []string
}

func (*taggedUnionSer) kind() string { return "tagged_union" }

func (n *taggedUnionSer) serialize(v any, ctx *sctx) (any, bool) {
	dv, ok := ValueOf(v).Lookup(n.discriminator)
	if !ok {
		ctx.report(CodeNotSerializable, "missing discriminator "+n.discriminator, v)
		return nil, false
	}
	tag, isStr := dv.String()
	if !isStr {
		ctx.report(CodeNotSerializable, "discriminator is not a string", v)
		return nil, false
	}
	m, known := n.mapping[tag]
	if !known {
		ctx.report(CodeNotSerializable, "unknown discriminator tag "+tag, v)
		return nil, false
	}
	return m.serialize(v, ctx)
}

// refSer resolves through the definitions table. Cyclic in-memory values are
// caught by the container serializers' guards, same as on the validate side;
// the descent counter bounds wrapper-only schema cycles over scalar values.
type refSer struct {
	idx  int
	defs *defsTable
}

func (*refSer) kind() string { return "ref" }

func (n *refSer) serialize(v any, ctx *sctx) (any, bool) {
	if !ctx.enterRef(v) {
		return nil, false
	}
	defer ctx.exitRef()
	return n.defs.defs[n.idx].s.serialize(v, ctx)
}

type nullableSer struct {
	inner serializer
}

func (*nullableSer) kind() string { return "nullable" }

func (n *nullableSer) serialize(v any, ctx *sctx) (any, bool) {
	if ValueOf(v).IsNull() {
		return nil, true
	}
	return n.inner.serialize(v, ctx)
}

type defaultSer struct {
	inner serializer
}

func (*defaultSer) kind() string { return "default" }

func (n *defaultSer) serialize(v any, ctx *sctx) (any, bool) {
	if v == nil {
		return nil, true
	}
	return n.inner.serialize(v, ctx)
}

// chainSer emits through the final stage only; the chain's output has that
// stage's shape.
type chainSer struct {
	final serializer
}

func (*chainSer) kind() string { return "chain" }

func (n *chainSer) serialize(v any, ctx *sctx) (any, bool) {
	return n.final.serialize(v, ctx)
}

// hookSer re-applies the hook's conversion on the way out, so a transform
// that shapes values on input also shapes the in-memory value before the
// inner serializer sees it. Check hooks have no output-side effect.
type hookSer struct {
	inner     serializer
	fn        HookFunc
	transform *vm.Program
}

func (*hookSer) kind() string { return "hook" }

func (n *hookSer) serialize(v any, ctx *sctx) (any, bool) {
	cur := v
	switch {
	case n.fn != nil:
		out, err := n.fn(cur, ctx.opt.Extra)
		if err != nil {
			ctx.report(CodeNotSerializable, "hook failed: "+err.Error(), v)
			return nil, false
		}
		cur = out
	case n.transform != nil:
		out, err := expr.Run(n.transform, hookEnv(cur, ctx.opt.Extra))
		if err != nil {
			ctx.report(CodeNotSerializable, "hook failed: "+err.Error(), v)
			return nil, false
		}
		cur = out
	}
	return n.inner.serialize(cur, ctx)
}
