package goshape

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// strictMode resolves the effective strictness for a node: a flag pinned in
// the description wins over the call-level mode.
func strictMode(pinned *bool, ctx *vctx) bool {
	if pinned != nil {
		return *pinned
	}
	return ctx.strict
}

// ---- any ----

type anyNode struct{}

func (anyNode) kind() string { return "any" }

func (anyNode) validate(in Input, ctx *vctx) (any, bool) { return in.Raw(), true }

// ---- none ----

type noneNode struct{}

func (noneNode) kind() string { return "none" }

func (noneNode) validate(in Input, ctx *vctx) (any, bool) {
	if in.IsNull() {
		return nil, true
	}
	ctx.report(CodeNoneRequired, in, nil)
	return nil, false
}

// ---- bool ----

type boolNode struct{ strict *bool }

func (*boolNode) kind() string { return "bool" }

func (n *boolNode) validate(in Input, ctx *vctx) (any, bool) {
	if b, ok := in.Bool(); ok {
		return b, true
	}
	if strictMode(n.strict, ctx) || in.IsNull() {
		ctx.report(CodeBoolType, in, nil)
		return nil, false
	}
	// fixed lax table: bool-like strings, 0/1 numbers
	if s, ok := in.String(); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "t", "yes", "on", "1":
			return true, true
		case "false", "f", "no", "off", "0":
			return false, true
		}
		ctx.report(CodeBoolParsing, in, nil)
		return nil, false
	}
	if i, ok := in.Int(); ok && (i == 0 || i == 1) {
		return i == 1, true
	}
	if f, ok := in.Float(); ok && (f == 0 || f == 1) {
		return f == 1, true
	}
	ctx.report(CodeBoolType, in, nil)
	return nil, false
}

// ---- int ----

type intNode struct {
	strict         *bool
	ge, gt, le, lt *int64
}

func (*intNode) kind() string { return "int" }

func (n *intNode) lowerBound() (int64, bool) {
	switch {
	case n.ge != nil && n.gt != nil:
		return maxInt64(*n.ge, *n.gt+1), true
	case n.ge != nil:
		return *n.ge, true
	case n.gt != nil:
		return *n.gt + 1, true
	}
	return 0, false
}

func (n *intNode) upperBound() (int64, bool) {
	switch {
	case n.le != nil && n.lt != nil:
		return minInt64(*n.le, *n.lt-1), true
	case n.le != nil:
		return *n.le, true
	case n.lt != nil:
		return *n.lt - 1, true
	}
	return 0, false
}

func (n *intNode) validate(in Input, ctx *vctx) (any, bool) {
	i, ok := in.Int()
	if !ok {
		if strictMode(n.strict, ctx) {
			ctx.report(CodeIntType, in, nil)
			return nil, false
		}
		i, ok = laxInt(in, ctx)
		if !ok {
			return nil, false
		}
	}
	return n.checkBounds(i, in, ctx)
}

func (n *intNode) checkBounds(i int64, in Input, ctx *vctx) (any, bool) {
	if n.ge != nil && i < *n.ge {
		ctx.report(CodeTooSmall, in, map[string]any{"ge": *n.ge})
		return nil, false
	}
	if n.gt != nil && i <= *n.gt {
		ctx.report(CodeTooSmall, in, map[string]any{"gt": *n.gt})
		return nil, false
	}
	if n.le != nil && i > *n.le {
		ctx.report(CodeTooBig, in, map[string]any{"le": *n.le})
		return nil, false
	}
	if n.lt != nil && i >= *n.lt {
		ctx.report(CodeTooBig, in, map[string]any{"lt": *n.lt})
		return nil, false
	}
	return i, true
}

// laxInt applies the fixed int coercion table: exact floats, numeric
// strings, and bools. The table is total and deterministic.
func laxInt(in Input, ctx *vctx) (int64, bool) {
	if in.IsNull() {
		ctx.report(CodeIntType, in, nil)
		return 0, false
	}
	if f, ok := in.Float(); ok {
		if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
			ctx.report(CodeIntParsing, in, nil)
			return 0, false
		}
		return int64(f), true
	}
	if s, ok := in.String(); ok {
		s = strings.TrimSpace(s)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) {
			return int64(f), true
		}
		ctx.report(CodeIntParsing, in, nil)
		return 0, false
	}
	if b, ok := in.Bool(); ok {
		if b {
			return 1, true
		}
		return 0, true
	}
	ctx.report(CodeIntType, in, nil)
	return 0, false
}

// ---- float ----

type floatNode struct {
	strict         *bool
	ge, gt, le, lt *float64
}

func (*floatNode) kind() string { return "float" }

func (n *floatNode) lowerBound() (float64, bool) {
	switch {
	case n.ge != nil && n.gt != nil:
		return math.Max(*n.ge, *n.gt), true
	case n.ge != nil:
		return *n.ge, true
	case n.gt != nil:
		return *n.gt, true
	}
	return 0, false
}

func (n *floatNode) upperBound() (float64, bool) {
	switch {
	case n.le != nil && n.lt != nil:
		return math.Min(*n.le, *n.lt), true
	case n.le != nil:
		return *n.le, true
	case n.lt != nil:
		return *n.lt, true
	}
	return 0, false
}

func (n *floatNode) validate(in Input, ctx *vctx) (any, bool) {
	f, ok := in.Float()
	if !ok {
		if strictMode(n.strict, ctx) {
			ctx.report(CodeFloatType, in, nil)
			return nil, false
		}
		f, ok = laxFloat(in, ctx)
		if !ok {
			return nil, false
		}
	}
	if n.ge != nil && f < *n.ge {
		ctx.report(CodeTooSmall, in, map[string]any{"ge": *n.ge})
		return nil, false
	}
	if n.gt != nil && f <= *n.gt {
		ctx.report(CodeTooSmall, in, map[string]any{"gt": *n.gt})
		return nil, false
	}
	if n.le != nil && f > *n.le {
		ctx.report(CodeTooBig, in, map[string]any{"le": *n.le})
		return nil, false
	}
	if n.lt != nil && f >= *n.lt {
		ctx.report(CodeTooBig, in, map[string]any{"lt": *n.lt})
		return nil, false
	}
	return f, true
}

// laxFloat applies the fixed float coercion table: int widening, numeric
// strings, and bools.
func laxFloat(in Input, ctx *vctx) (float64, bool) {
	if in.IsNull() {
		ctx.report(CodeFloatType, in, nil)
		return 0, false
	}
	if i, ok := in.Int(); ok {
		return float64(i), true
	}
	if s, ok := in.String(); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, true
		}
		ctx.report(CodeFloatParsing, in, nil)
		return 0, false
	}
	if b, ok := in.Bool(); ok {
		if b {
			return 1, true
		}
		return 0, true
	}
	ctx.report(CodeFloatType, in, nil)
	return 0, false
}

// ---- string ----

type stringNode struct {
	strict         *bool
	minLen, maxLen *int
	pattern        *regexp.Regexp
	patternSrc     string
}

func (*stringNode) kind() string { return "string" }

func (n *stringNode) validate(in Input, ctx *vctx) (any, bool) {
	s, ok := in.String()
	if !ok {
		if strictMode(n.strict, ctx) {
			ctx.report(CodeStringType, in, nil)
			return nil, false
		}
		// lax: bytes decode as UTF-8 text; no numeric stringification
		b, isBytes := in.Bytes()
		if !isBytes || !utf8.Valid(b) {
			ctx.report(CodeStringType, in, nil)
			return nil, false
		}
		s = string(b)
	}
	length := utf8.RuneCountInString(s)
	if n.minLen != nil && length < *n.minLen {
		ctx.report(CodeTooShort, in, map[string]any{"min_length": *n.minLen})
		return nil, false
	}
	if n.maxLen != nil && length > *n.maxLen {
		ctx.report(CodeTooLong, in, map[string]any{"max_length": *n.maxLen})
		return nil, false
	}
	if n.pattern != nil && !n.pattern.MatchString(s) {
		ctx.report(CodePattern, in, map[string]any{"pattern": n.patternSrc})
		return nil, false
	}
	return s, true
}

// ---- bytes ----

type bytesNode struct {
	strict         *bool
	minLen, maxLen *int
}

func (*bytesNode) kind() string { return "bytes" }

func (n *bytesNode) validate(in Input, ctx *vctx) (any, bool) {
	b, ok := in.Bytes()
	if !ok {
		if strictMode(n.strict, ctx) {
			ctx.report(CodeBytesType, in, nil)
			return nil, false
		}
		s, isStr := in.String()
		if !isStr {
			ctx.report(CodeBytesType, in, nil)
			return nil, false
		}
		b = []byte(s)
	}
	if n.minLen != nil && len(b) < *n.minLen {
		ctx.report(CodeTooShort, in, map[string]any{"min_length": *n.minLen})
		return nil, false
	}
	if n.maxLen != nil && len(b) > *n.maxLen {
		ctx.report(CodeTooLong, in, map[string]any{"max_length": *n.maxLen})
		return nil, false
	}
	return b, true
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
