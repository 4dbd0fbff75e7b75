package goshape

// listSer serializes sequence elements in order. Under best-effort mode a
// failing element is skipped after its warning; indices in paths refer to
// the source positions.
type listSer struct {
	item serializer
}

func (*listSer) kind() string { return "list" }

func (n *listSer) serialize(v any, ctx *sctx) (any, bool) {
	in := ValueOf(v)
	items, ok := in.Seq()
	if !ok {
		ctx.report(CodeNotSerializable, "expected a sequence", v)
		return nil, false
	}
	id := in.Identity()
	if !ctx.guard.enter(id) {
		ctx.report(CodeNotSerializable, "cyclic value", v)
		return nil, false
	}
	defer ctx.guard.exit(id)
	out := make([]any, 0, len(items))
	for i, item := range items {
		ctx.pushIndex(i)
		e, ok := n.item.serialize(item.Raw(), ctx)
		ctx.pop()
		if ctx.failed {
			return nil, false
		}
		if ok {
			out = append(out, e)
		}
	}
	return out, true
}

// tupleSer requires the value to have exactly the declared arity.
type tupleSer struct {
	items []serializer
}

func (*tupleSer) kind() string { return "tuple" }

func (n *tupleSer) serialize(v any, ctx *sctx) (any, bool) {
	items, ok := ValueOf(v).Seq()
	if !ok {
		ctx.report(CodeNotSerializable, "expected a sequence", v)
		return nil, false
	}
	if len(items) != len(n.items) {
		ctx.report(CodeNotSerializable, "tuple arity mismatch", v)
		return nil, false
	}
	out := make([]any, len(items))
	for i, item := range items {
		ctx.pushIndex(i)
		e, ok := n.items[i].serialize(item.Raw(), ctx)
		ctx.pop()
		if ctx.failed {
			return nil, false
		}
		if !ok {
			return nil, false
		}
		out[i] = e
	}
	return out, true
}

// mapSer serializes mapping values under string keys, deterministic by the
// adapter's entry order (sorted for native maps).
type mapSer struct {
	value serializer
}

func (*mapSer) kind() string { return "map" }

func (n *mapSer) serialize(v any, ctx *sctx) (any, bool) {
	in := ValueOf(v)
	entries, ok := in.Entries()
	if !ok {
		ctx.report(CodeNotSerializable, "expected a mapping", v)
		return nil, false
	}
	id := in.Identity()
	if !ctx.guard.enter(id) {
		ctx.report(CodeNotSerializable, "cyclic value", v)
		return nil, false
	}
	defer ctx.guard.exit(id)
	out := make(map[string]any, len(entries))
	for _, e := range entries {
		k := entryKeyString(e)
		ctx.pushKey(k)
		ev, ok := n.value.serialize(e.Value.Raw(), ctx)
		ctx.pop()
		if ctx.failed {
			return nil, false
		}
		if ok {
			out[k] = ev
		}
	}
	return out, true
}

// recordSer emits declared fields under their canonical names (or their
// serialization alias under ByAlias). Include/Exclude apply to the top-level
// record only; exclude-unset and exclude-defaults apply at every depth.
type recordSer struct {
	fields []recordField
	extra  extraPolicy
}

func (*recordSer) kind() string { return "record" }

func (n *recordSer) serialize(v any, ctx *sctx) (any, bool) {
	in := ValueOf(v)
	if _, ok := in.Entries(); !ok {
		ctx.report(CodeNotSerializable, "expected a record", v)
		return nil, false
	}
	id := in.Identity()
	if !ctx.guard.enter(id) {
		ctx.report(CodeNotSerializable, "cyclic value", v)
		return nil, false
	}
	defer ctx.guard.exit(id)

	atRoot := len(ctx.path) == 0
	out := make(map[string]any, len(n.fields))
	for i := range n.fields {
		f := &n.fields[i]
		if atRoot && !selected(f.name, ctx.opt) {
			continue
		}
		fv, present := in.Lookup(f.name)
		if !present {
			continue
		}
		if ctx.opt.ExcludeUnset && ctx.opt.Presence.Unset(pointerAt(ctx.path, KeySeg(f.name))) {
			continue
		}
		if ctx.opt.ExcludeDefaults && f.hasDefault && literalEqual(fv.Raw(), f.def) {
			continue
		}
		ctx.pushKey(f.name)
		ev, ok := f.s.serialize(fv.Raw(), ctx)
		ctx.pop()
		if ctx.failed {
			return nil, false
		}
		if !ok {
			continue
		}
		name := f.name
		if ctx.opt.ByAlias && f.serAlias != "" {
			name = f.serAlias
		}
		out[name] = ev
	}
	if n.extra == extraAllow {
		declared := make(map[string]bool, len(n.fields))
		for i := range n.fields {
			declared[n.fields[i].name] = true
		}
		entries, _ := in.Entries()
		for _, e := range entries {
			k := entryKeyString(e)
			if !declared[k] {
				out[k] = e.Value.Raw()
			}
		}
	}
	return out, true
}

// selected applies the top-level Include/Exclude field selection; Exclude
// wins on overlap.
func selected(name string, opt SerializeOpt) bool {
	for _, x := range opt.Exclude {
		if x == name {
			return false
		}
	}
	if len(opt.Include) == 0 {
		return true
	}
	for _, x := range opt.Include {
		if x == name {
			return true
		}
	}
	return false
}
