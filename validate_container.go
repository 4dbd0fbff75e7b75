package goshape

import (
	"fmt"

	gojson "github.com/goccy/go-json"
)

// ---- list / set ----

type listNode struct {
	item               validator
	minItems, maxItems *int
	unique             bool
}

func (n *listNode) kind() string {
	if n.unique {
		return "set"
	}
	return "list"
}

func (n *listNode) validate(in Input, ctx *vctx) (any, bool) {
	seq, ok := in.Seq()
	if !ok {
		if n.unique {
			ctx.report(CodeSetType, in, nil)
		} else {
			ctx.report(CodeListType, in, nil)
		}
		return nil, false
	}
	if n.minItems != nil && len(seq) < *n.minItems {
		ctx.report(CodeTooShort, in, map[string]any{"min_items": *n.minItems})
		return nil, false
	}
	if n.maxItems != nil && len(seq) > *n.maxItems {
		ctx.report(CodeTooLong, in, map[string]any{"max_items": *n.maxItems})
		return nil, false
	}
	// sequences of []any can be made cyclic by the host; guard the descent
	id := in.Identity()
	if !ctx.guard.enter(id) {
		ctx.report(CodeRecursionLoop, in, nil)
		return nil, false
	}
	before := len(ctx.issues)
	out := make([]any, 0, len(seq))
	var dedup map[string]int
	if n.unique {
		dedup = make(map[string]int, len(seq))
	}
	for i, el := range seq {
		if ctx.stop() {
			break
		}
		if !ctx.pushIndex(i) {
			break
		}
		v, ok := n.item.validate(el, ctx)
		if ok && n.unique {
			key := canonicalKey(v)
			if _, dup := dedup[key]; dup {
				ctx.report(CodeUniqueItems, el, nil)
				ok = false
			} else {
				dedup[key] = i
			}
		}
		ctx.pop()
		if ok {
			out = append(out, v)
		}
	}
	ctx.guard.exit(id)
	if len(ctx.issues) > before {
		return nil, false
	}
	return out, true
}

// canonicalKey renders a coerced item for set dedup. JSON text is the
// canonical form; values outside the JSON model fall back to a verbose
// fmt rendering.
func canonicalKey(v any) string {
	if b, err := gojson.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%#v", v)
}

// ---- tuple (fixed-length, per-position schemas) ----

type tupleNode struct{ items []validator }

func (*tupleNode) kind() string { return "tuple" }

func (n *tupleNode) validate(in Input, ctx *vctx) (any, bool) {
	seq, ok := in.Seq()
	if !ok {
		ctx.report(CodeTupleType, in, nil)
		return nil, false
	}
	if len(seq) != len(n.items) {
		ctx.report(CodeTupleLength, in, map[string]any{"expected": len(n.items), "got": len(seq)})
		return nil, false
	}
	id := in.Identity()
	if !ctx.guard.enter(id) {
		ctx.report(CodeRecursionLoop, in, nil)
		return nil, false
	}
	before := len(ctx.issues)
	out := make([]any, 0, len(seq))
	for i, el := range seq {
		if ctx.stop() {
			break
		}
		if !ctx.pushIndex(i) {
			break
		}
		v, ok := n.items[i].validate(el, ctx)
		ctx.pop()
		if ok {
			out = append(out, v)
		}
	}
	ctx.guard.exit(id)
	if len(ctx.issues) > before {
		return nil, false
	}
	return out, true
}

// ---- map (homogeneous mapping with key and value schemas) ----

type mapNode struct {
	key, value         validator
	minItems, maxItems *int
}

func (*mapNode) kind() string { return "map" }

func (n *mapNode) validate(in Input, ctx *vctx) (any, bool) {
	entries, ok := in.Entries()
	if !ok {
		ctx.report(CodeMapType, in, nil)
		return nil, false
	}
	if n.minItems != nil && len(entries) < *n.minItems {
		ctx.report(CodeTooShort, in, map[string]any{"min_items": *n.minItems})
		return nil, false
	}
	if n.maxItems != nil && len(entries) > *n.maxItems {
		ctx.report(CodeTooLong, in, map[string]any{"max_items": *n.maxItems})
		return nil, false
	}
	id := in.Identity()
	if !ctx.guard.enter(id) {
		ctx.report(CodeRecursionLoop, in, nil)
		return nil, false
	}
	before := len(ctx.issues)
	out := make(map[string]any, len(entries))
	for _, e := range entries {
		if ctx.stop() {
			break
		}
		keyLabel := entryKeyString(e)
		// key failures are located under <key>/[key], value failures under
		// <key>, so both sides of one entry stay distinguishable
		var outKey any
		keyOK := true
		if !ctx.pushKey(keyLabel) {
			break
		}
		if !ctx.pushKey("[key]") {
			ctx.pop()
			break
		}
		outKey, keyOK = n.key.validate(e.Key, ctx)
		ctx.pop()
		v, valOK := n.value.validate(e.Value, ctx)
		ctx.pop()
		if keyOK && valOK {
			out[keyString(outKey)] = v
		}
	}
	ctx.guard.exit(id)
	if len(ctx.issues) > before {
		return nil, false
	}
	return out, true
}

// keyString renders a validated map key for the native output mapping.
func keyString(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(k)
}
