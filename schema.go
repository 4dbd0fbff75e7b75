package goshape

import (
	"sort"

	gojson "github.com/goccy/go-json"
	"github.com/goshape/goshape/i18n"
)

// validator is one node of the compiled validation tree. The kind set is
// closed: every implementation lives in this package and is constructed by
// the compiler's exhaustive dispatch.
//
// validate returns the coerced output value and whether this node succeeded.
// Failures are recorded on the context; a node never returns a partial value
// together with ok=true.
type validator interface {
	kind() string
	validate(in Input, ctx *vctx) (any, bool)
}

// serializer is one node of the mirrored serialization tree.
type serializer interface {
	kind() string
	serialize(v any, ctx *sctx) (any, bool)
}

// CompiledSchema owns the root validator node, the root serializer node, and
// the resolved definitions table. It is immutable after compilation and
// safely shared by reference across concurrent calls; each call owns its own
// context, recursion guard, and error list.
type CompiledSchema struct {
	root    validator
	rootSer serializer
	defs    *defsTable
}

// Definitions returns the registered definition names in sorted order.
func (cs *CompiledSchema) Definitions() []string {
	out := make([]string, 0, len(cs.defs.defs))
	for _, d := range cs.defs.defs {
		out = append(out, d.name)
	}
	sort.Strings(out)
	return out
}

// Validate checks input against the schema and returns the fully coerced
// output value, or the complete ordered issue list — never a mix. The input
// may be a native Go value or anything implementing Input.
func (cs *CompiledSchema) Validate(input any, opt ValidateOpt) (any, error) {
	ctx := newVctx(opt, false)
	return cs.run(input, ctx)
}

// ValidateWithMeta validates and additionally records presence metadata
// (seen / was-null / default-applied per field pointer), which feeds the
// serializer's exclude-unset mode.
func (cs *CompiledSchema) ValidateWithMeta(input any, opt ValidateOpt) (Decoded, error) {
	ctx := newVctx(opt, true)
	v, err := cs.run(input, ctx)
	if err != nil {
		return Decoded{}, err
	}
	return Decoded{Value: v, Presence: ctx.presence}, nil
}

func (cs *CompiledSchema) run(input any, ctx *vctx) (any, error) {
	v, ok := cs.root.validate(ValueOf(input), ctx)
	if len(ctx.issues) > 0 {
		return nil, ctx.issues
	}
	if !ok {
		// a failing node always reports; this is a safety net
		return nil, Issues{{Path: "/", Code: CodeUnionInvalid, Message: i18n.T(CodeUnionInvalid, nil)}}
	}
	return v, nil
}

// Serialize converts a shaped value back into an interchange representation
// under the field-selection and alias rules in opt. Under best-effort mode
// (the default) offending fields are skipped and returned as warning-class
// issues alongside the output; under fail-fast mode the first failure aborts
// with a non-nil error.
func (cs *CompiledSchema) Serialize(v any, opt SerializeOpt) (any, Issues, error) {
	ctx := newSctx(opt)
	out, ok := cs.rootSer.serialize(v, ctx)
	if ctx.failed || (!ok && opt.FailFast) {
		return nil, nil, ctx.fatal
	}
	if !ok {
		return nil, ctx.warn, ctx.warn
	}
	return out, ctx.warn, nil
}

// SerializeJSON serializes and encodes the result as canonical JSON text.
func (cs *CompiledSchema) SerializeJSON(v any, opt SerializeOpt) ([]byte, Issues, error) {
	out, warn, err := cs.Serialize(v, opt)
	if err != nil {
		return nil, warn, err
	}
	b, jerr := gojson.Marshal(out)
	if jerr != nil {
		iss := Issues{{Path: "/", Code: CodeNotSerializable, Message: jerr.Error(), Cause: jerr}}
		return nil, warn, iss
	}
	return b, warn, nil
}
