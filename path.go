package goshape

import (
	"strconv"
	"strings"
)

// Seg is one step of a location path: either a field/key name or a sequence
// index.
type Seg struct {
	key   string
	index int
	isIdx bool
}

// KeySeg returns a field/key path segment.
func KeySeg(k string) Seg { return Seg{key: k} }

// IndexSeg returns a sequence-index path segment.
func IndexSeg(i int) Seg { return Seg{index: i, isIdx: true} }

// IsIndex reports whether the segment is a sequence index.
func (s Seg) IsIndex() bool { return s.isIdx }

// Key returns the field/key name ("" for index segments).
func (s Seg) Key() string { return s.key }

// Index returns the sequence index (0 for key segments).
func (s Seg) Index() int { return s.index }

func (s Seg) String() string {
	if s.isIdx {
		return strconv.Itoa(s.index)
	}
	return s.key
}

// Path is an ordered sequence of steps from the schema root to an error
// site. Issues carry the rendered JSON Pointer form; Path values handed out
// by the engine are always snapshots, never live references.
type Path []Seg

// Pointer renders the path as a JSON Pointer. The root path renders as "/".
func (p Path) Pointer() string {
	if len(p) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, s := range p {
		b.WriteByte('/')
		b.WriteString(escapePointerToken(s.String()))
	}
	return b.String()
}

func (p Path) String() string { return p.Pointer() }

// escapePointerToken applies RFC 6901 escaping: "~" -> "~0", "/" -> "~1".
func escapePointerToken(s string) string {
	if !strings.ContainsAny(s, "~/") {
		return s
	}
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}

// pointerAt renders segs plus one extra segment without copying the slice.
func pointerAt(segs []Seg, extra ...Seg) string {
	if len(segs) == 0 && len(extra) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, s := range segs {
		b.WriteByte('/')
		b.WriteString(escapePointerToken(s.String()))
	}
	for _, s := range extra {
		b.WriteByte('/')
		b.WriteString(escapePointerToken(s.String()))
	}
	return b.String()
}
