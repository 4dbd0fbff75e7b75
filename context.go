package goshape

import (
	"fmt"
	"unicode/utf8"

	"github.com/goshape/goshape/i18n"
)

// excerptLimit bounds the length of input fragments embedded in issues.
const excerptLimit = 60

// vctx is the per-call validation state. It is never shared across calls;
// the only mutation a validator performs is through this context (path
// push/pop, issue collection, presence marks).
type vctx struct {
	opt      ValidateOpt
	strict   bool
	path     []Seg
	depth    int // definition-ref descents not reflected in path
	issues   Issues
	guard    recursionGuard
	presence PresenceMap // nil unless the WithMeta path is active
	ceiling  bool        // error-count ceiling hit
}

func newVctx(opt ValidateOpt, withMeta bool) *vctx {
	ctx := &vctx{opt: opt, strict: opt.Strict}
	if withMeta {
		ctx.presence = PresenceMap{"/": PresenceSeen}
	}
	return ctx
}

// pushKey extends the location path by a field/key step. It reports false
// when the depth ceiling is exceeded, in which case a max_depth_exceeded
// issue has been recorded and the caller must not descend.
func (c *vctx) pushKey(k string) bool { return c.push(KeySeg(k)) }

// pushIndex extends the location path by an index step.
func (c *vctx) pushIndex(i int) bool { return c.push(IndexSeg(i)) }

func (c *vctx) push(s Seg) bool {
	if len(c.path)+c.depth >= c.opt.maxDepth() {
		c.report(CodeMaxDepthExceeded, nil, map[string]any{"max_depth": c.opt.maxDepth()})
		return false
	}
	c.path = append(c.path, s)
	return true
}

func (c *vctx) pop() { c.path = c.path[:len(c.path)-1] }

// enterRef ticks the descent counter for a definition-ref expansion. Ref
// expansion does not extend the location path, so a schema that references
// itself through non-container wrappers (nullable, union, chain, hook) would
// otherwise descend without bound on scalar input. The counter shares the
// ceiling with the path so total descent is what MaxDepth bounds.
func (c *vctx) enterRef() bool {
	if len(c.path)+c.depth >= c.opt.maxDepth() {
		c.report(CodeMaxDepthExceeded, nil, map[string]any{"max_depth": c.opt.maxDepth()})
		return false
	}
	c.depth++
	return true
}

func (c *vctx) exitRef() { c.depth-- }

// at renders the current location as a JSON Pointer snapshot.
func (c *vctx) at() string { return pointerAt(c.path) }

// report appends an issue at the current location. Paths and fragments are
// snapshotted here since the live path mutates as the stack unwinds.
func (c *vctx) report(code string, in Input, params map[string]any) {
	c.reportIssue(Issue{
		Path:          c.at(),
		Code:          code,
		Message:       i18n.T(code, nil),
		InputFragment: fragmentOf(in),
		Params:        params,
	})
}

func (c *vctx) reportIssue(it Issue) {
	if c.ceiling {
		return
	}
	if len(c.issues) >= c.opt.maxErrors() && !c.opt.FailFast {
		c.ceiling = true
		c.issues = AppendIssues(c.issues, Issue{
			Path:    it.Path,
			Code:    CodeTooManyErrors,
			Message: i18n.T(CodeTooManyErrors, nil),
			Params:  map[string]any{"max_errors": c.opt.maxErrors()},
		})
		return
	}
	c.issues = AppendIssues(c.issues, it)
}

// stop reports whether collection must halt (fail-fast hit or ceiling hit).
func (c *vctx) stop() bool {
	if c.ceiling {
		return true
	}
	return c.opt.FailFast && len(c.issues) > 0
}

// mark records presence flags for the current location plus key.
func (c *vctx) mark(key string, p Presence) {
	if c.presence == nil {
		return
	}
	ptr := pointerAt(c.path, KeySeg(key))
	c.presence[ptr] |= p
}

// trial snapshots the mutable collection state so union members can be
// attempted and rolled back. The guard is untouched: push/pop discipline in
// the nodes keeps it balanced across trials.
type trialState struct {
	issues   Issues
	presence PresenceMap
	strict   bool
	ceiling  bool
}

func (c *vctx) beginTrial(strict bool) trialState {
	saved := trialState{issues: c.issues, presence: c.presence, strict: c.strict, ceiling: c.ceiling}
	c.issues = nil
	c.ceiling = false
	c.strict = strict
	if c.presence != nil {
		c.presence = PresenceMap{}
	}
	return saved
}

// endTrial restores the saved state and returns the trial's issues. When
// keep is true the trial's presence marks are merged back.
func (c *vctx) endTrial(saved trialState, keep bool) Issues {
	got := c.issues
	tried := c.presence
	c.issues = saved.issues
	c.strict = saved.strict
	c.ceiling = saved.ceiling
	c.presence = saved.presence
	if keep && c.presence != nil {
		for k, v := range tried {
			c.presence[k] |= v
		}
	}
	return got
}

// sctx is the per-call serialization state.
type sctx struct {
	opt    SerializeOpt
	path   []Seg
	depth  int    // definition-ref descents not reflected in path
	warn   Issues // warning-class issues collected under best-effort
	fatal  Issues // first fatal issue under fail-fast
	guard  recursionGuard
	failed bool
}

func newSctx(opt SerializeOpt) *sctx { return &sctx{opt: opt} }

func (c *sctx) pushKey(k string) { c.path = append(c.path, KeySeg(k)) }
func (c *sctx) pushIndex(i int)  { c.path = append(c.path, IndexSeg(i)) }
func (c *sctx) pop()             { c.path = c.path[:len(c.path)-1] }
func (c *sctx) at() string       { return pointerAt(c.path) }

// report records a serialization issue. Under best-effort it is a warning
// and the caller skips the offending part; under fail-fast it aborts the
// whole serialization.
func (c *sctx) report(code, msg string, v any) {
	it := Issue{Path: c.at(), Code: code, Message: msg, InputFragment: fragmentOf(ValueOf(v))}
	if it.Message == "" {
		it.Message = i18n.T(code, nil)
	}
	if c.opt.FailFast {
		c.failed = true
		c.fatal = AppendIssues(c.fatal, it)
		return
	}
	c.warn = AppendIssues(c.warn, it)
}

// enterRef ticks the descent counter for a definition-ref expansion,
// mirroring the validate side's ceiling on wrapper-only schema cycles.
func (c *sctx) enterRef(v any) bool {
	if len(c.path)+c.depth >= c.opt.maxDepth() {
		c.report(CodeMaxDepthExceeded, "", v)
		return false
	}
	c.depth++
	return true
}

func (c *sctx) exitRef() { c.depth-- }

// fragmentOf renders a bounded representation of the offending input.
func fragmentOf(in Input) string {
	if in == nil {
		return ""
	}
	s := fmt.Sprintf("%v", in.Raw())
	if len(s) > excerptLimit {
		cut := excerptLimit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "..."
	}
	return s
}
