package goshape

import (
	"regexp"
	"sort"

	"github.com/expr-lang/expr"
)

// definition is one named, referenceable node pair in the defs table.
type definition struct {
	name string
	v    validator
	s    serializer
}

// defsTable resolves reference handles. Reference nodes hold an index, not
// the node itself, which is what makes self-referential schemas
// representable without cyclic ownership.
type defsTable struct {
	byName map[string]int
	defs   []*definition
}

// compiled pairs the validator and serializer trees built from one
// description node.
type compiled struct {
	v validator
	s serializer
}

type compiler struct {
	opt  CompileOpt
	defs *defsTable
}

// Compile turns a normalized schema description into an immutable
// CompiledSchema. It resolves forward references in two passes, validates
// per-kind constraint coherence, and performs all precomputation (pattern
// compiling, enum lookup tables, hook expression programs) exactly once.
// Failure is a *SchemaError naming the offending description path; a failed
// compile never yields a partial schema.
func Compile(description any, opts ...CompileOpt) (*CompiledSchema, error) {
	var opt CompileOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	c := &compiler{
		opt:  opt,
		defs: &defsTable{byName: map[string]int{}},
	}
	// pass 1: register every named definition so forward references resolve
	if err := c.scanDefs(description, "/"); err != nil {
		return nil, err
	}
	// pass 2: build the trees, leaving recursive references as lazy handles
	root, err := c.compileNode(description, "/")
	if err != nil {
		return nil, err
	}
	if err := c.checkRefCycles(); err != nil {
		return nil, err
	}
	return &CompiledSchema{root: root.v, rootSer: root.s, defs: c.defs}, nil
}

/// scanDefs walks the description registering {kind:"def"} names. Forward
// references become legal because the index exists before pass 2 compiles
// the body.
func (c *compiler) scanDefs(v any, path string) *SchemaError {
	switch t := v.(type) {
	case map[string]any:
		if k, _ := t["kind"].(string); k == "def" {
			name, ok := t["name"].(string)
			if !ok || name == "" {
				return schemaErrf(path, "def requires a non-empty name")
			}
			if _, dup := c.defs.byName[name]; dup {
				return schemaErrf(path, "duplicate definition %q", name)
			}
			c.defs.byName[name] = len(c.defs.defs)
			c.defs.defs = append(c.defs.defs, &definition{name: name})
		}
		for k, sub := range t {
			if err := c.scanDefs(sub, joinPtr(path, k)); err != nil {
				return err
			}
		}
	case []any:
		for i, sub := range t {
			if err := c.scanDefs(sub, joinPtrIdx(path, i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func joinPtr(path, key string) string {
	if path == "/" || path == "" {
		return "/" + key
	}
	return path + "/" + key
}

func joinPtrIdx(path string, i int) string {
	return joinPtr(path, IndexSeg(i).String())
}

// checkRefCycles rejects reference chains that can never bottom out in a
// non-reference node. Legitimate structural cycles (a record field pointing
// back at its record) remain legal; at runtime the recursion guard bounds
// them.
func (c *compiler) checkRefCycles() *SchemaError {
	for i := range c.defs.defs {
		seen := map[int]bool{i: true}
		node := c.defs.defs[i].v
		for {
			r, ok := node.(*refNode)
			if !ok {
				break
			}
			if seen[r.idx] {
				return schemaErrf("/", "definition %q is a reference cycle with no content", c.defs.defs[i].name)
			}
			seen[r.idx] = true
			node = c.defs.defs[r.idx].v
		}
	}
	return nil
}

// compileNode dispatches over the closed kind set. The set is fixed; an
// unrecognized kind is a schema error, never a silent fallback.
func (c *compiler) compileNode(v any, path string) (compiled, error) {
	d, serr := asDescNode(v, path)
	if serr != nil {
		return compiled{}, serr
	}
	kind := d.kind()
	if d.err != nil {
		return compiled{}, d.err
	}
	var out compiled
	var err error
	switch kind {
	case "any":
		out = compiled{v: anyNode{}, s: anySer{}}
	case "none":
		out = compiled{v: noneNode{}, s: noneSer{}}
	case "bool":
		out = compiled{v: &boolNode{strict: d.boolPtr("strict")}, s: boolSer{}}
	case "int":
		out, err = c.buildInt(d)
	case "float":
		out, err = c.buildFloat(d)
	case "string", "str":
		out, err = c.buildString(d)
	case "bytes":
		out = compiled{
			v: &bytesNode{strict: d.boolPtr("strict"), minLen: d.lenPtr("min_length"), maxLen: d.lenPtr("max_length")},
			s: bytesSer{},
		}
	case "literal":
		out, err = c.buildLiteral(d)
	case "enum":
		out, err = c.buildEnum(d)
	case "datetime":
		out = compiled{v: &datetimeNode{strict: d.boolPtr("strict")}, s: datetimeSer{}}
	case "date":
		out = compiled{v: &dateNode{strict: d.boolPtr("strict")}, s: dateSer{}}
	case "time":
		out = compiled{v: &timeNode{strict: d.boolPtr("strict")}, s: timeSer{}}
	case "duration":
		out = compiled{v: &durationNode{strict: d.boolPtr("strict")}, s: durationSer{}}
	case "url":
		out = compiled{v: urlNode{}, s: urlSer{}}
	case "uuid":
		out = compiled{v: uuidNode{}, s: uuidSer{}}
	case "base64":
		out = compiled{v: base64Node{}, s: base64Ser{}}
	case "json":
		out, err = c.buildJSON(d)
	case "list":
		out, err = c.buildList(d, false)
	case "set":
		out, err = c.buildList(d, true)
	case "tuple":
		out, err = c.buildTuple(d)
	case "map":
		out, err = c.buildMap(d)
	case "record":
		out, err = c.buildRecord(d)
	case "union":
		out, err = c.buildUnion(d)
	case "tagged_union":
		out, err = c.buildTaggedUnion(d)
	case "ref":
		out, err = c.buildRef(d)
	case "def":
		out, err = c.buildDef(d)
	case "nullable":
		out, err = c.buildNullable(d)
	case "default":
		out, err = c.buildDefault(d)
	case "chain":
		out, err = c.buildChain(d)
	case "hook":
		out, err = c.buildHook(d)
	default:
		return compiled{}, schemaErrf(path, "unknown kind %q", kind)
	}
	if err != nil {
		return compiled{}, err
	}
	if d.err != nil {
		return compiled{}, d.err
	}
	return out, nil
}

func (c *compiler) buildInt(d *descNode) (compiled, error) {
	n := &intNode{
		strict: d.boolPtr("strict"),
		ge:     d.intPtr("ge"), gt: d.intPtr("gt"),
		le: d.intPtr("le"), lt: d.intPtr("lt"),
	}
	lo, hasLo := n.lowerBound()
	hi, hasHi := n.upperBound()
	if hasLo && hasHi && lo > hi {
		return compiled{}, schemaErrf(d.path, "int bounds are incoherent (min %d > max %d)", lo, hi)
	}
	return compiled{v: n, s: intSer{}}, nil
}

func (c *compiler) buildFloat(d *descNode) (compiled, error) {
	n := &floatNode{
		strict: d.boolPtr("strict"),
		ge:     d.floatPtr("ge"), gt: d.floatPtr("gt"),
		le: d.floatPtr("le"), lt: d.floatPtr("lt"),
	}
	lo, hasLo := n.lowerBound()
	hi, hasHi := n.upperBound()
	if hasLo && hasHi && lo > hi {
		return compiled{}, schemaErrf(d.path, "float bounds are incoherent (min %v > max %v)", lo, hi)
	}
	return compiled{v: n, s: floatSer{}}, nil
}

func (c *compiler) buildString(d *descNode) (compiled, error) {
	n := &stringNode{
		strict: d.boolPtr("strict"),
		minLen: d.lenPtr("min_length"),
		maxLen: d.lenPtr("max_length"),
	}
	if n.minLen != nil && n.maxLen != nil && *n.minLen > *n.maxLen {
		return compiled{}, schemaErrf(d.path, "string length bounds are incoherent (%d > %d)", *n.minLen, *n.maxLen)
	}
	if src, ok := d.str("pattern"); ok {
		re, err := regexp.Compile(src)
		if err != nil {
			return compiled{}, schemaErrf(d.child("pattern"), "invalid pattern: %v", err)
		}
		n.pattern = re
		n.patternSrc = src
	}
	return compiled{v: n, s: stringSer{}}, nil
}

func (c *compiler) buildLiteral(d *descNode) (compiled, error) {
	if !d.has("value") {
		return compiled{}, schemaErrf(d.path, "literal requires a value")
	}
	val := d.m["value"]
	n := &literalNode{value: val}
	return compiled{v: n, s: &literalSer{value: val}}, nil
}

func (c *compiler) buildEnum(d *descNode) (compiled, error) {
	members, ok := d.slice("members")
	if !ok || len(members) == 0 {
		if d.err != nil {
			return compiled{}, d.err
		}
		return compiled{}, schemaErrf(d.path, "enum requires a non-empty members list")
	}
	// precompute the lookup table once, never at validate-time
	lookup := make(map[any]bool, len(members))
	for _, m := range members {
		if k, hashable := enumKey(m); hashable {
			lookup[k] = true
		}
	}
	n := &enumNode{members: members, lookup: lookup}
	return compiled{v: n, s: &enumSer{members: members, lookup: lookup}}, nil
}

func (c *compiler) buildJSON(d *descNode) (compiled, error) {
	inner := compiled{v: anyNode{}, s: anySer{}}
	if d.has("schema") {
		var err error
		inner, err = c.compileNode(d.m["schema"], d.child("schema"))
		if err != nil {
			return compiled{}, err
		}
	}
	return compiled{v: &jsonNode{inner: inner.v}, s: &jsonSer{inner: inner.s}}, nil
}

func (c *compiler) buildList(d *descNode, unique bool) (compiled, error) {
	if !d.has("items") {
		return compiled{}, schemaErrf(d.path, "%s requires an items schema", d.kind())
	}
	item, err := c.compileNode(d.m["items"], d.child("items"))
	if err != nil {
		return compiled{}, err
	}
	minItems, maxItems := d.lenPtr("min_items"), d.lenPtr("max_items")
	if minItems != nil && maxItems != nil && *minItems > *maxItems {
		return compiled{}, schemaErrf(d.path, "item count bounds are incoherent (%d > %d)", *minItems, *maxItems)
	}
	n := &listNode{item: item.v, minItems: minItems, maxItems: maxItems, unique: unique}
	return compiled{v: n, s: &listSer{item: item.s}}, nil
}

func (c *compiler) buildTuple(d *descNode) (compiled, error) {
	items, ok := d.slice("items")
	if !ok || len(items) == 0 {
		if d.err != nil {
			return compiled{}, d.err
		}
		return compiled{}, schemaErrf(d.path, "tuple requires a non-empty items list")
	}
	vs := make([]validator, len(items))
	ss := make([]serializer, len(items))
	for i, it := range items {
		sub, err := c.compileNode(it, d.childIndex("items", i))
		if err != nil {
			return compiled{}, err
		}
		vs[i], ss[i] = sub.v, sub.s
	}
	return compiled{v: &tupleNode{items: vs}, s: &tupleSer{items: ss}}, nil
}

func (c *compiler) buildMap(d *descNode) (compiled, error) {
	if !d.has("values") {
		return compiled{}, schemaErrf(d.path, "map requires a values schema")
	}
	values, err := c.compileNode(d.m["values"], d.child("values"))
	if err != nil {
		return compiled{}, err
	}
	keys := compiled{v: &stringNode{}, s: stringSer{}}
	if d.has("keys") {
		keys, err = c.compileNode(d.m["keys"], d.child("keys"))
		if err != nil {
			return compiled{}, err
		}
	}
	minItems, maxItems := d.lenPtr("min_items"), d.lenPtr("max_items")
	if minItems != nil && maxItems != nil && *minItems > *maxItems {
		return compiled{}, schemaErrf(d.path, "item count bounds are incoherent (%d > %d)", *minItems, *maxItems)
	}
	n := &mapNode{key: keys.v, value: values.v, minItems: minItems, maxItems: maxItems}
	return compiled{v: n, s: &mapSer{value: values.s}}, nil
}

func (c *compiler) buildRecord(d *descNode) (compiled, error) {
	fields, err := c.compileFields(d)
	if err != nil {
		return compiled{}, err
	}
	policy := extraIgnore
	if e, ok := d.str("extra"); ok {
		switch e {
		case "ignore":
			policy = extraIgnore
		case "forbid":
			policy = extraForbid
		case "allow":
			policy = extraAllow
		default:
			return compiled{}, schemaErrf(d.child("extra"), "extra must be ignore|forbid|allow, got %q", e)
		}
	}
	n := &recordNode{fields: fields, extra: policy, strictAliases: c.opt.StrictAliases}
	return compiled{v: n, s: &recordSer{fields: fields, extra: policy}}, nil
}

// compileFields accepts the two normalized field layouts: an object keyed by
// field name (iterated in sorted-name order for determinism) or an array of
// field objects carrying an explicit "name" (declaration order preserved).
func (c *compiler) compileFields(d *descNode) ([]recordField, error) {
	raw, ok := d.m["fields"]
	if !ok {
		return nil, schemaErrf(d.path, "record requires fields")
	}
	type namedField struct {
		name string
		desc any
		path string
	}
	var ordered []namedField
	switch t := raw.(type) {
	case map[string]any:
		names := make([]string, 0, len(t))
		for name := range t {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			ordered = append(ordered, namedField{name: name, desc: t[name], path: joinPtr(d.child("fields"), name)})
		}
	case []any:
		for i, fv := range t {
			fm, ok := fv.(map[string]any)
			if !ok {
				return nil, schemaErrf(d.childIndex("fields", i), "expected field object, got %T", fv)
			}
			name, ok := fm["name"].(string)
			if !ok || name == "" {
				return nil, schemaErrf(d.childIndex("fields", i), "field requires a non-empty name")
			}
			ordered = append(ordered, namedField{name: name, desc: fm, path: d.childIndex("fields", i)})
		}
	default:
		return nil, schemaErrf(d.child("fields"), "expected object or array, got %T", raw)
	}
	if len(ordered) == 0 {
		return nil, schemaErrf(d.child("fields"), "record requires at least one field")
	}

	out := make([]recordField, 0, len(ordered))
	seen := map[string]bool{}
	for _, nf := range ordered {
		if seen[nf.name] {
			return nil, schemaErrf(nf.path, "duplicate field %q", nf.name)
		}
		seen[nf.name] = true
		f, err := c.compileField(nf.name, nf.desc, nf.path)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func (c *compiler) compileField(name string, desc any, path string) (recordField, error) {
	f := recordField{name: name, required: true}
	fm, isMap := desc.(map[string]any)
	// a bare schema (string shorthand or a map carrying its own kind) means
	// a required field with no options
	if !isMap || fm["kind"] != nil {
		sub, err := c.compileNode(desc, path)
		if err != nil {
			return recordField{}, err
		}
		f.v, f.s = sub.v, sub.s
		return f, nil
	}
	fd := &descNode{m: fm, path: path}
	schema, ok := fm["schema"]
	if !ok {
		return recordField{}, schemaErrf(path, "field requires a schema")
	}
	sub, err := c.compileNode(schema, fd.child("schema"))
	if err != nil {
		return recordField{}, err
	}
	f.v, f.s = sub.v, sub.s
	if dv, ok := fm["default"]; ok {
		f.hasDefault = true
		f.def = dv
		f.required = false
	}
	if r, ok := fd.boolOpt("required"); ok {
		f.required = r
	}
	f.alias, _ = fd.str("alias")
	f.serAlias, _ = fd.str("serialization_alias")
	if f.serAlias == "" {
		f.serAlias = f.alias
	}
	if fd.err != nil {
		return recordField{}, fd.err
	}
	return f, nil
}

func (c *compiler) buildUnion(d *descNode) (compiled, error) {
	members, ok := d.slice("members")
	if !ok || len(members) == 0 {
		if d.err != nil {
			return compiled{}, d.err
		}
		return compiled{}, schemaErrf(d.path, "union requires at least one member")
	}
	smart := true
	if m, ok := d.str("mode"); ok {
		switch m {
		case "smart":
			smart = true
		case "ordered":
			smart = false
		default:
			return compiled{}, schemaErrf(d.child("mode"), "mode must be smart|ordered, got %q", m)
		}
	}
	vs := make([]validator, len(members))
	ss := make([]serializer, len(members))
	for i, m := range members {
		sub, err := c.compileNode(m, d.childIndex("members", i))
		if err != nil {
			return compiled{}, err
		}
		vs[i], ss[i] = sub.v, sub.s
	}
	return compiled{v: &unionNode{members: vs, smart: smart}, s: &unionSer{members: ss}}, nil
}

func (c *compiler) buildTaggedUnion(d *descNode) (compiled, error) {
	disc, ok := d.str("discriminator")
	if !ok || disc == "" {
		if d.err != nil {
			return compiled{}, d.err
		}
		return compiled{}, schemaErrf(d.path, "tagged_union requires a discriminator")
	}
	mapping, ok := d.object("mapping")
	if !ok || len(mapping) == 0 {
		if d.err != nil {
			return compiled{}, d.err
		}
		return compiled{}, schemaErrf(d.path, "tagged_union requires a non-empty mapping")
	}
	tags := make([]string, 0, len(mapping))
	for tag := range mapping {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	vm := make(map[string]validator, len(mapping))
	sm := make(map[string]serializer, len(mapping))
	for _, tag := range tags {
		sub, err := c.compileNode(mapping[tag], joinPtr(d.child("mapping"), tag))
		if err != nil {
			return compiled{}, err
		}
		vm[tag], sm[tag] = sub.v, sub.s
	}
	n := &taggedUnionNode{discriminator: disc, mapping: vm, tags: tags}
	return compiled{v: n, s: &taggedUnionSer{discriminator: disc, mapping: sm, tags: tags}}, nil
}

func (c *compiler) buildRef(d *descNode) (compiled, error) {
	name, ok := d.str("name")
	if !ok || name == "" {
		if d.err != nil {
			return compiled{}, d.err
		}
		return compiled{}, schemaErrf(d.path, "ref requires a name")
	}
	idx, ok := c.defs.byName[name]
	if !ok {
		return compiled{}, schemaErrf(d.path, "ref %q not found", name)
	}
	return compiled{v: &refNode{idx: idx, defs: c.defs}, s: &refSer{idx: idx, defs: c.defs}}, nil
}

func (c *compiler) buildDef(d *descNode) (compiled, error) {
	name, _ := d.str("name") // validity checked in pass 1
	if !d.has("schema") {
		return compiled{}, schemaErrf(d.path, "def requires a schema")
	}
	sub, err := c.compileNode(d.m["schema"], d.child("schema"))
	if err != nil {
		return compiled{}, err
	}
	def := c.defs.defs[c.defs.byName[name]]
	def.v, def.s = sub.v, sub.s
	// a def is transparent at its declaration site
	return sub, nil
}

func (c *compiler) buildNullable(d *descNode) (compiled, error) {
	if !d.has("schema") {
		return compiled{}, schemaErrf(d.path, "nullable requires a schema")
	}
	sub, err := c.compileNode(d.m["schema"], d.child("schema"))
	if err != nil {
		return compiled{}, err
	}
	return compiled{v: &nullableNode{inner: sub.v}, s: &nullableSer{inner: sub.s}}, nil
}

func (c *compiler) buildDefault(d *descNode) (compiled, error) {
	if !d.has("schema") {
		return compiled{}, schemaErrf(d.path, "default requires a schema")
	}
	if !d.has("default") {
		return compiled{}, schemaErrf(d.path, "default requires a default value")
	}
	sub, err := c.compileNode(d.m["schema"], d.child("schema"))
	if err != nil {
		return compiled{}, err
	}
	return compiled{v: &defaultNode{inner: sub.v, def: d.m["default"]}, s: &defaultSer{inner: sub.s}}, nil
}

func (c *compiler) buildChain(d *descNode) (compiled, error) {
	steps, ok := d.slice("steps")
	if !ok || len(steps) == 0 {
		if d.err != nil {
			return compiled{}, d.err
		}
		return compiled{}, schemaErrf(d.path, "chain requires at least one step")
	}
	vs := make([]validator, len(steps))
	var last serializer
	for i, st := range steps {
		sub, err := c.compileNode(st, d.childIndex("steps", i))
		if err != nil {
			return compiled{}, err
		}
		vs[i] = sub.v
		last = sub.s
	}
	// the chain's output has the final stage's shape
	return compiled{v: &chainNode{steps: vs}, s: &chainSer{final: last}}, nil
}

func (c *compiler) buildHook(d *descNode) (compiled, error) {
	inner := compiled{v: anyNode{}, s: anySer{}}
	if d.has("schema") {
		var err error
		inner, err = c.compileNode(d.m["schema"], d.child("schema"))
		if err != nil {
			return compiled{}, err
		}
	}
	name, hasName := d.str("name")
	checkSrc, hasCheck := d.str("check")
	transformSrc, hasTransform := d.str("transform")
	if d.err != nil {
		return compiled{}, d.err
	}
	count := 0
	for _, b := range []bool{hasName, hasCheck, hasTransform} {
		if b {
			count++
		}
	}
	if count != 1 {
		return compiled{}, schemaErrf(d.path, "hook requires exactly one of name, check, transform")
	}
	n := &hookNode{inner: inner.v}
	s := &hookSer{inner: inner.s}
	switch {
	case hasName:
		fn, ok := c.opt.Hooks[name]
		if !ok {
			return compiled{}, schemaErrf(d.child("name"), "hook %q is not registered", name)
		}
		n.fn = fn
		s.fn = fn
		n.label = name
	case hasCheck:
		prog, err := expr.Compile(checkSrc, expr.AllowUndefinedVariables())
		if err != nil {
			return compiled{}, schemaErrf(d.child("check"), "invalid check expression: %v", err)
		}
		n.check = prog
		n.label = checkSrc
	case hasTransform:
		prog, err := expr.Compile(transformSrc, expr.AllowUndefinedVariables())
		if err != nil {
			return compiled{}, schemaErrf(d.child("transform"), "invalid transform expression: %v", err)
		}
		n.transform = prog
		s.transform = prog
		n.label = transformSrc
	}
	return compiled{v: n, s: s}, nil
}
