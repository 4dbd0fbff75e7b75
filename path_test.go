package goshape_test

import (
	"testing"

	goshape "github.com/goshape/goshape"
)

func TestPointerRendering(t *testing.T) {
	cases := []struct {
		path goshape.Path
		want string
	}{
		{goshape.Path{}, "/"},
		{goshape.Path{goshape.KeySeg("a"), goshape.IndexSeg(2)}, "/a/2"},
		{goshape.Path{goshape.KeySeg("a/b")}, "/a~1b"},
		{goshape.Path{goshape.KeySeg("~x")}, "/~0x"},
	}
	for _, c := range cases {
		if got := c.path.Pointer(); got != c.want {
			t.Fatalf("want %q, got %q", c.want, got)
		}
	}
}

func TestEscapedKeysInIssuePaths(t *testing.T) {
	cs := mustCompile(t, map[string]any{
		"kind":   "record",
		"fields": map[string]any{"a/b": "int"},
	})
	_, err := cs.Validate(map[string]any{}, goshape.ValidateOpt{})
	wantIssue(t, issuesOf(t, err), 0, "/a~1b", "missing")
}
