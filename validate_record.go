package goshape

// extraPolicy controls how a record treats unknown keys.
type extraPolicy int

const (
	extraIgnore extraPolicy = iota // drop unknown keys
	extraForbid                    // unknown keys are an error
	extraAllow                     // pass unknown keys through unchanged
)

// recordField is one declared field, shared between the validator and
// serializer trees.
type recordField struct {
	name       string
	alias      string // accepted on input; also the serialization fallback
	serAlias   string // emitted when SerializeOpt.ByAlias is set
	v          validator
	s          serializer
	required   bool
	hasDefault bool
	def        any
}

// recordNode validates a structured record field-by-field: declared order,
// alias resolution, required/default enforcement, and the extra-key policy.
type recordNode struct {
	fields        []recordField
	extra         extraPolicy
	strictAliases bool
}

func (*recordNode) kind() string { return "record" }

func (n *recordNode) validate(in Input, ctx *vctx) (any, bool) {
	if _, ok := in.Entries(); !ok {
		ctx.report(CodeRecordType, in, nil)
		return nil, false
	}
	id := in.Identity()
	if !ctx.guard.enter(id) {
		ctx.report(CodeRecursionLoop, in, nil)
		return nil, false
	}
	before := len(ctx.issues)
	out := make(map[string]any, len(n.fields))
	for i := range n.fields {
		if ctx.stop() {
			break
		}
		f := &n.fields[i]
		val, present := n.lookupField(in, f)
		if present {
			p := PresenceSeen
			if val.IsNull() {
				p |= PresenceWasNull
			}
			ctx.mark(f.name, p)
			if !ctx.pushKey(f.name) {
				break
			}
			v, ok := f.v.validate(val, ctx)
			ctx.pop()
			if ok {
				out[f.name] = v
			}
			continue
		}
		if f.hasDefault {
			ctx.mark(f.name, PresenceDefaultApplied)
			out[f.name] = f.def
			continue
		}
		if f.required {
			if ctx.pushKey(f.name) {
				ctx.report(CodeMissing, nil, nil)
				ctx.pop()
			}
		}
	}
	n.collectUnknown(in, out, ctx)
	ctx.guard.exit(id)
	if len(ctx.issues) > before {
		return nil, false
	}
	return out, true
}

// lookupField resolves a field value, alias first. Unless compiled with
// strict aliases, the canonical name stays accepted as a fallback.
func (n *recordNode) lookupField(in Input, f *recordField) (Input, bool) {
	if f.alias != "" {
		if v, ok := in.Lookup(f.alias); ok {
			return v, true
		}
		if n.strictAliases {
			return nil, false
		}
	}
	return in.Lookup(f.name)
}

// collectUnknown applies the extra-key policy over keys that match no
// declared name or alias. Entries() order is deterministic, so unknown-key
// issues are too.
func (n *recordNode) collectUnknown(in Input, out map[string]any, ctx *vctx) {
	if n.extra == extraIgnore {
		return
	}
	known := make(map[string]bool, len(n.fields)*2)
	for i := range n.fields {
		known[n.fields[i].name] = true
		if n.fields[i].alias != "" {
			known[n.fields[i].alias] = true
		}
	}
	entries, _ := in.Entries()
	for _, e := range entries {
		if ctx.stop() {
			return
		}
		key := entryKeyString(e)
		if known[key] {
			continue
		}
		switch n.extra {
		case extraForbid:
			if ctx.pushKey(key) {
				ctx.report(CodeUnknownKey, e.Value, nil)
				ctx.pop()
			}
		case extraAllow:
			out[key] = e.Value.Raw()
		}
	}
}
