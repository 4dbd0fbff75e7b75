package goshape

// Default ceilings applied when an option is left zero. They bound cost on
// adversarial input; both are overridable per call.
const (
	DefaultMaxDepth  = 256
	DefaultMaxErrors = 128
)

// ValidateOpt carries per-call validation configuration. The zero value is
// lax, collect-all, with the default depth/error ceilings.
type ValidateOpt struct {
	// Strict requires exact type matches from the input adapter; lax mode
	// applies the fixed coercion tables. Individual nodes may pin strictness
	// in the description, which then wins over the call-level flag.
	Strict bool
	// FailFast stops at the first issue instead of collecting all of them.
	FailFast bool
	// MaxDepth bounds descent depth independent of cycles (0 = default).
	MaxDepth int
	// MaxErrors bounds the collected issue count; hitting the ceiling stops
	// collection and appends a distinct too_many_errors marker (0 = default).
	MaxErrors int
	// Extra is opaque caller data made available to hook functions.
	Extra any
}

func (o ValidateOpt) maxDepth() int {
	if o.MaxDepth > 0 {
		return o.MaxDepth
	}
	return DefaultMaxDepth
}

func (o ValidateOpt) maxErrors() int {
	if o.FailFast {
		return 1
	}
	if o.MaxErrors > 0 {
		return o.MaxErrors
	}
	return DefaultMaxErrors
}

// SerializeOpt carries per-call serialization configuration. The zero value
// is best-effort, canonical names, no field selection.
type SerializeOpt struct {
	// FailFast aborts the whole serialization with the first error instead
	// of skipping the offending field with a warning-class issue.
	FailFast bool
	// MaxDepth bounds descent depth independent of cycles (0 = default).
	MaxDepth int
	// ByAlias emits record fields under their serialization alias when one
	// is declared.
	ByAlias bool
	// Include, when non-empty, restricts record output to the named
	// top-level fields. Exclude removes named fields; it wins over Include.
	Include []string
	Exclude []string
	// ExcludeUnset skips fields that were not explicitly supplied at
	// validation time (requires Presence from ValidateWithMeta).
	ExcludeUnset bool
	// ExcludeDefaults skips fields whose value equals the declared default.
	ExcludeDefaults bool
	// Presence is the metadata recorded by ValidateWithMeta; it drives
	// ExcludeUnset.
	Presence PresenceMap
	// Extra is opaque caller data made available to hook functions.
	Extra any
}

func (o SerializeOpt) maxDepth() int {
	if o.MaxDepth > 0 {
		return o.MaxDepth
	}
	return DefaultMaxDepth
}

// CompileOpt carries compile-time configuration.
type CompileOpt struct {
	// Hooks resolves named hook nodes ({kind:"hook", name:"..."}) to Go
	// functions. Expression hooks need no registration.
	Hooks map[string]HookFunc
	// StrictAliases makes aliased record fields reject their canonical name
	// on input.
	StrictAliases bool
}

// HookFunc is a user-supplied transform applied by hook nodes. The returned
// value feeds the enclosing node; an error becomes a hook_error issue at the
// hook's location.
type HookFunc func(v any, extra any) (any, error)
