package goshape

import (
	"net/url"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/goshape/goshape/codec"
)

// Format serializers emit the canonical textual form. A value that is
// already a string is trusted as-is so round-tripped interchange data does
// not need re-parsing.

type datetimeSer struct{}

func (datetimeSer) kind() string { return "datetime" }

func (datetimeSer) serialize(v any, ctx *sctx) (any, bool) {
	switch t := v.(type) {
	case time.Time:
		return codec.FormatDateTime(t), true
	case string:
		return t, true
	}
	ctx.report(CodeNotSerializable, "expected a time.Time", v)
	return nil, false
}

type dateSer struct{}

func (dateSer) kind() string { return "date" }

func (dateSer) serialize(v any, ctx *sctx) (any, bool) {
	switch t := v.(type) {
	case time.Time:
		return codec.FormatDate(t), true
	case string:
		return t, true
	}
	ctx.report(CodeNotSerializable, "expected a time.Time", v)
	return nil, false
}

type timeSer struct{}

func (timeSer) kind() string { return "time" }

func (timeSer) serialize(v any, ctx *sctx) (any, bool) {
	switch t := v.(type) {
	case time.Time:
		return codec.FormatClockTime(t), true
	case string:
		return t, true
	}
	ctx.report(CodeNotSerializable, "expected a time.Time", v)
	return nil, false
}

type durationSer struct{}

func (durationSer) kind() string { return "duration" }

func (durationSer) serialize(v any, ctx *sctx) (any, bool) {
	switch t := v.(type) {
	case time.Duration:
		return codec.FormatDuration(t), true
	case string:
		return t, true
	}
	ctx.report(CodeNotSerializable, "expected a time.Duration", v)
	return nil, false
}

type urlSer struct{}

func (urlSer) kind() string { return "url" }

func (urlSer) serialize(v any, ctx *sctx) (any, bool) {
	switch t := v.(type) {
	case *url.URL:
		return t.String(), true
	case url.URL:
		return t.String(), true
	case string:
		return t, true
	}
	ctx.report(CodeNotSerializable, "expected a *url.URL", v)
	return nil, false
}

type uuidSer struct{}

func (uuidSer) kind() string { return "uuid" }

func (uuidSer) serialize(v any, ctx *sctx) (any, bool) {
	switch t := v.(type) {
	case uuid.UUID:
		return t.String(), true
	case string:
		return t, true
	}
	ctx.report(CodeNotSerializable, "expected a uuid.UUID", v)
	return nil, false
}

type base64Ser struct{}

func (base64Ser) kind() string { return "base64" }

func (base64Ser) serialize(v any, ctx *sctx) (any, bool) {
	switch t := v.(type) {
	case []byte:
		return codec.EncodeBase64(t), true
	case string:
		return t, true
	}
	ctx.report(CodeNotSerializable, "expected bytes", v)
	return nil, false
}

// jsonSer serializes the inner shape and re-embeds it as a JSON string.
type jsonSer struct {
	inner serializer
}

func (*jsonSer) kind() string { return "json" }

func (n *jsonSer) serialize(v any, ctx *sctx) (any, bool) {
	out, ok := n.inner.serialize(v, ctx)
	if !ok {
		return nil, false
	}
	b, err := gojson.Marshal(out)
	if err != nil {
		ctx.report(CodeNotSerializable, err.Error(), v)
		return nil, false
	}
	return string(b), true
}
