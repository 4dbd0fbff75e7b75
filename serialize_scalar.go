package goshape

import "reflect"

// The serializer tree mirrors the validator tree. Nodes type-check the
// in-memory value and emit its interchange representation; a mismatch is a
// not_serializable issue at the value's location. Under best-effort mode the
// caller skips the offending part, under fail-fast mode the whole call
// aborts.

type anySer struct{}

func (anySer) kind() string { return "any" }

func (anySer) serialize(v any, ctx *sctx) (any, bool) { return v, true }

type noneSer struct{}

func (noneSer) kind() string { return "none" }

func (noneSer) serialize(v any, ctx *sctx) (any, bool) {
	if ValueOf(v).IsNull() {
		return nil, true
	}
	ctx.report(CodeNotSerializable, "expected null", v)
	return nil, false
}

type boolSer struct{}

func (boolSer) kind() string { return "bool" }

func (boolSer) serialize(v any, ctx *sctx) (any, bool) {
	if b, ok := ValueOf(v).Bool(); ok {
		return b, true
	}
	ctx.report(CodeNotSerializable, "expected a bool", v)
	return nil, false
}

type intSer struct{}

func (intSer) kind() string { return "int" }

func (intSer) serialize(v any, ctx *sctx) (any, bool) {
	if i, ok := ValueOf(v).Int(); ok {
		return i, true
	}
	ctx.report(CodeNotSerializable, "expected an int", v)
	return nil, false
}

type floatSer struct{}

func (floatSer) kind() string { return "float" }

func (floatSer) serialize(v any, ctx *sctx) (any, bool) {
	in := ValueOf(v)
	if f, ok := in.Float(); ok {
		return f, true
	}
	// ints widen losslessly on output
	if i, ok := in.Int(); ok {
		return float64(i), true
	}
	ctx.report(CodeNotSerializable, "expected a float", v)
	return nil, false
}

type stringSer struct{}

func (stringSer) kind() string { return "string" }

func (stringSer) serialize(v any, ctx *sctx) (any, bool) {
	if s, ok := ValueOf(v).String(); ok {
		return s, true
	}
	ctx.report(CodeNotSerializable, "expected a string", v)
	return nil, false
}

// bytesSer emits raw bytes for byte-oriented hosts; JSON encoding of the
// result base64s it, which matches base64Ser's textual form.
type bytesSer struct{}

func (bytesSer) kind() string { return "bytes" }

func (bytesSer) serialize(v any, ctx *sctx) (any, bool) {
	if b, ok := ValueOf(v).Bytes(); ok {
		return b, true
	}
	if s, ok := ValueOf(v).String(); ok {
		return []byte(s), true
	}
	ctx.report(CodeNotSerializable, "expected bytes", v)
	return nil, false
}

type literalSer struct {
	value any
}

func (*literalSer) kind() string { return "literal" }

func (n *literalSer) serialize(v any, ctx *sctx) (any, bool) {
	if literalEqual(v, n.value) {
		return n.value, true
	}
	ctx.report(CodeNotSerializable, "value does not match the literal", v)
	return nil, false
}

type enumSer struct {
	members []any
	lookup  map[any]bool
}

func (*enumSer) kind() string { return "enum" }

func (n *enumSer) serialize(v any, ctx *sctx) (any, bool) {
	if k, hashable := enumKey(v); hashable {
		if n.lookup[k] {
			return k, true
		}
	} else {
		for _, m := range n.members {
			if reflect.DeepEqual(v, m) {
				return m, true
			}
		}
	}
	ctx.report(CodeNotSerializable, "value is not an enum member", v)
	return nil, false
}
