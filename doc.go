// Package goshape is a compile-once, validate-many schema engine.
//
// A normalized schema description (a map tree with "kind" tags) is compiled
// into an immutable CompiledSchema holding a validator tree, a mirrored
// serializer tree, and a definitions table for self-referential schemas.
// The compiled schema is safe to share across goroutines; every Validate or
// Serialize call owns its own context, error list, and recursion guard.
//
// It provides:
//
//   - Compile(description) with two-pass reference resolution and per-kind
//     constraint checking (failures are *SchemaError with the offending path)
//   - A stable error model via Issues (JSON Pointer, code, message)
//   - Strict/lax scalar coercion, deterministic error ordering, and bounded
//     recursion over cyclic or deeply nested input
//   - Presence metadata (seen/null/default-applied) collected at validation
//     time and consumed by the serializer's field-selection modes
//
// Leaf parsers live under codec/, input and description loading under
// source/, messages under i18n/, and the CLI under cmd/goshape.
//
// Typical usage:
//
//	cs, err := goshape.Compile(desc)
//	v, err := cs.Validate(input, goshape.ValidateOpt{})
//	dm, err := cs.ValidateWithMeta(input, goshape.ValidateOpt{})
//	b, warn, err := cs.SerializeJSON(dm.Value, goshape.SerializeOpt{
//		Presence: dm.Presence, ExcludeUnset: true,
//	})
package goshape
