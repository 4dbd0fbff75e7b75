package goshape

import (
	"net/url"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/goshape/goshape/codec"
)

// Format validators glue the pure leaf parsers in codec/ into the node tree.
// Leaf parse errors are always converted into issues here, never surfaced
// raw.

// ---- datetime ----

type datetimeNode struct{ strict *bool }

func (*datetimeNode) kind() string { return "datetime" }

func (n *datetimeNode) validate(in Input, ctx *vctx) (any, bool) {
	if t, ok := in.Raw().(time.Time); ok {
		return t, true
	}
	if s, ok := in.String(); ok {
		t, err := codec.ParseDateTime(s)
		if err != nil {
			ctx.report(CodeDatetimeParsing, in, nil)
			return nil, false
		}
		return t, true
	}
	if !strictMode(n.strict, ctx) {
		// lax: epoch seconds
		if i, ok := in.Int(); ok {
			t, err := codec.DateTimeFromEpoch(float64(i))
			if err == nil {
				return t, true
			}
		}
		if f, ok := in.Float(); ok {
			t, err := codec.DateTimeFromEpoch(f)
			if err == nil {
				return t, true
			}
		}
	}
	ctx.report(CodeDatetimeParsing, in, nil)
	return nil, false
}

// ---- date ----

type dateNode struct{ strict *bool }

func (*dateNode) kind() string { return "date" }

func (n *dateNode) validate(in Input, ctx *vctx) (any, bool) {
	if t, ok := in.Raw().(time.Time); ok {
		if d, midnight := codec.MidnightOf(t); midnight {
			return d, true
		}
		ctx.report(CodeDateParsing, in, nil)
		return nil, false
	}
	s, ok := in.String()
	if !ok {
		ctx.report(CodeDateParsing, in, nil)
		return nil, false
	}
	if d, err := codec.ParseDate(s); err == nil {
		return d, true
	}
	if !strictMode(n.strict, ctx) {
		// lax: a datetime string is a date when its clock is exactly midnight
		if t, err := codec.ParseDateTime(s); err == nil {
			if d, midnight := codec.MidnightOf(t); midnight {
				return d, true
			}
		}
	}
	ctx.report(CodeDateParsing, in, nil)
	return nil, false
}

// ---- time (of day) ----

type timeNode struct{ strict *bool }

func (*timeNode) kind() string { return "time" }

func (n *timeNode) validate(in Input, ctx *vctx) (any, bool) {
	if t, ok := in.Raw().(time.Time); ok {
		return t, true
	}
	if s, ok := in.String(); ok {
		t, err := codec.ParseClockTime(s)
		if err == nil {
			return t, true
		}
	}
	ctx.report(CodeTimeParsing, in, nil)
	return nil, false
}

// ---- duration ----

type durationNode struct{ strict *bool }

func (*durationNode) kind() string { return "duration" }

func (n *durationNode) validate(in Input, ctx *vctx) (any, bool) {
	if d, ok := in.Raw().(time.Duration); ok {
		return d, true
	}
	if s, ok := in.String(); ok {
		d, err := codec.ParseDuration(s)
		if err != nil {
			ctx.report(CodeDurationParsing, in, nil)
			return nil, false
		}
		return d, true
	}
	if !strictMode(n.strict, ctx) {
		// lax: plain seconds
		if i, ok := in.Int(); ok {
			if d, err := codec.DurationFromSeconds(float64(i)); err == nil {
				return d, true
			}
		}
		if f, ok := in.Float(); ok {
			if d, err := codec.DurationFromSeconds(f); err == nil {
				return d, true
			}
		}
	}
	ctx.report(CodeDurationParsing, in, nil)
	return nil, false
}

// ---- url ----

type urlNode struct{}

func (urlNode) kind() string { return "url" }

func (urlNode) validate(in Input, ctx *vctx) (any, bool) {
	if u, ok := in.Raw().(*url.URL); ok {
		return u, true
	}
	s, ok := in.String()
	if !ok {
		ctx.report(CodeURLParsing, in, nil)
		return nil, false
	}
	u, err := codec.ParseURL(s)
	if err != nil {
		ctx.report(CodeURLParsing, in, nil)
		return nil, false
	}
	return u, true
}

// ---- uuid ----

type uuidNode struct{}

func (uuidNode) kind() string { return "uuid" }

func (uuidNode) validate(in Input, ctx *vctx) (any, bool) {
	if u, ok := in.Raw().(uuid.UUID); ok {
		return u, true
	}
	s, ok := in.String()
	if !ok {
		ctx.report(CodeUUIDParsing, in, nil)
		return nil, false
	}
	u, err := codec.ParseUUID(s)
	if err != nil {
		ctx.report(CodeUUIDParsing, in, nil)
		return nil, false
	}
	return u, true
}

// ---- base64 ----

type base64Node struct{}

func (base64Node) kind() string { return "base64" }

func (base64Node) validate(in Input, ctx *vctx) (any, bool) {
	if b, ok := in.Bytes(); ok {
		return b, true
	}
	s, ok := in.String()
	if !ok {
		ctx.report(CodeBase64Decode, in, nil)
		return nil, false
	}
	b, err := codec.DecodeBase64(s)
	if err != nil {
		ctx.report(CodeBase64Decode, in, nil)
		return nil, false
	}
	return b, true
}

// ---- json (an embedded JSON document in a string) ----

type jsonNode struct{ inner validator }

func (*jsonNode) kind() string { return "json" }

func (n *jsonNode) validate(in Input, ctx *vctx) (any, bool) {
	s, ok := in.String()
	if !ok {
		ctx.report(CodeJSONType, in, nil)
		return nil, false
	}
	var v any
	dec := gojson.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		ctx.report(CodeJSONParsing, in, nil)
		return nil, false
	}
	return n.inner.validate(ValueOf(v), ctx)
}
