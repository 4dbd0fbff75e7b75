package goshape

import "github.com/goshape/goshape/i18n"

// unionNode tries its members under one of two strategies. Ordered mode
// walks members in declared order under the ambient strictness and takes the
// first success. Smart mode runs a full strict pass across all members
// first, then a lax pass, so a member that matches without coercion always
// wins over one that needs it.
type unionNode struct {
	members []validator
	smart   bool
}

func (*unionNode) kind() string { return "union" }

func (n *unionNode) validate(in Input, ctx *vctx) (any, bool) {
	if n.smart && !ctx.strict {
		if v, ok := n.pass(in, ctx, true, nil); ok {
			return v, true
		}
		var members []Issues
		if v, ok := n.pass(in, ctx, false, &members); ok {
			return v, true
		}
		n.aggregate(in, ctx, members)
		return nil, false
	}
	var members []Issues
	if v, ok := n.pass(in, ctx, ctx.strict, &members); ok {
		return v, true
	}
	n.aggregate(in, ctx, members)
	return nil, false
}

// pass attempts every member under the given strictness, rolling back the
// context state after each failed trial.
func (n *unionNode) pass(in Input, ctx *vctx, strict bool, collect *[]Issues) (any, bool) {
	for _, m := range n.members {
		saved := ctx.beginTrial(strict)
		v, ok := m.validate(in, ctx)
		iss := ctx.endTrial(saved, ok)
		if ok && len(iss) == 0 {
			return v, true
		}
		if collect != nil {
			*collect = append(*collect, iss)
		}
	}
	return nil, false
}

// aggregate emits one issue at the union's own location carrying every
// member's failure; member issues never surface as top-level entries.
func (n *unionNode) aggregate(in Input, ctx *vctx, members []Issues) {
	var sub Issues
	for _, iss := range members {
		sub = AppendIssues(sub, iss...)
	}
	ctx.reportIssue(Issue{
		Path:          ctx.at(),
		Code:          CodeUnionInvalid,
		Message:       i18n.T(CodeUnionInvalid, nil),
		InputFragment: fragmentOf(in),
		Params:        map[string]any{"members": len(n.members)},
		Sub:           sub,
	})
}

// taggedUnionNode dispatches on a discriminator field instead of trying
// members, which keeps both the cost and the error surface flat.
type taggedUnionNode struct {
	discriminator string
	mapping       map[string]validator
	tags          []string // sorted, for deterministic introspection
}

func (*taggedUnionNode) kind() string { return "tagged_union" }

func (n *taggedUnionNode) validate(in Input, ctx *vctx) (any, bool) {
	if _, ok := in.Entries(); !ok {
		ctx.report(CodeRecordType, in, nil)
		return nil, false
	}
	dv, ok := in.Lookup(n.discriminator)
	if !ok || dv.IsNull() {
		if ctx.pushKey(n.discriminator) {
			ctx.report(CodeDiscriminatorMissing, nil, nil)
			ctx.pop()
		}
		return nil, false
	}
	tag, isStr := dv.String()
	if !isStr {
		if ctx.pushKey(n.discriminator) {
			ctx.report(CodeDiscriminatorUnknown, dv, map[string]any{"expected": n.tags})
			ctx.pop()
		}
		return nil, false
	}
	m, known := n.mapping[tag]
	if !known {
		if ctx.pushKey(n.discriminator) {
			ctx.report(CodeDiscriminatorUnknown, dv, map[string]any{"tag": tag, "expected": n.tags})
			ctx.pop()
		}
		return nil, false
	}
	return m.validate(in, ctx)
}
