package source

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	goshape "github.com/goshape/goshape"
)

func TestValueFromJSONKeepsNumberFidelity(t *testing.T) {
	v, err := ValueFromJSON([]byte(`{"big": 9007199254740993, "f": 1.5}`))
	require.NoError(t, err)
	m := v.(map[string]any)
	require.Equal(t, json.Number("9007199254740993"), m["big"])
	require.Equal(t, json.Number("1.5"), m["f"])
}

func TestValueFromJSONRejectsTrailingContent(t *testing.T) {
	_, err := ValueFromJSON([]byte(`{"a":1} {"b":2}`))
	require.Error(t, err)
	_, err = ValueFromJSON([]byte(`{"a":`))
	require.Error(t, err)
}

func TestValueFromYAML(t *testing.T) {
	v, err := ValueFromYAML([]byte("a: 1\nb:\n  - x\n  - y\n"))
	require.NoError(t, err)
	m := v.(map[string]any)
	require.Equal(t, 1, m["a"])
	require.Equal(t, []any{"x", "y"}, m["b"])
}

func TestDescriptionFromYAMLCompiles(t *testing.T) {
	desc, err := DescriptionFromYAML([]byte(`
kind: record
fields:
  name: string
  age:
    schema: int
    default: 0
`))
	require.NoError(t, err)
	cs, err := goshape.Compile(desc)
	require.NoError(t, err)
	v, verr := cs.Validate(map[string]any{"name": "ada"}, goshape.ValidateOpt{})
	require.NoError(t, verr)
	require.Equal(t, 0, v.(map[string]any)["age"])
}

func TestBytesRejectsMalformedJSON(t *testing.T) {
	_, err := Bytes([]byte("{nope"))
	require.Error(t, err)
}

func TestBytesAdapterScalars(t *testing.T) {
	in, err := Bytes([]byte(`{"i": 5, "f": 5.0, "s": "x", "b": true, "n": null}`))
	require.NoError(t, err)

	iv, ok := in.Lookup("i")
	require.True(t, ok)
	i, ok := iv.Int()
	require.True(t, ok)
	require.Equal(t, int64(5), i)

	// 5.0 is a float literal, not an int
	fv, _ := in.Lookup("f")
	_, ok = fv.Int()
	require.False(t, ok)
	f, ok := fv.Float()
	require.True(t, ok)
	require.Equal(t, 5.0, f)

	sv, _ := in.Lookup("s")
	s, ok := sv.String()
	require.True(t, ok)
	require.Equal(t, "x", s)

	bv, _ := in.Lookup("b")
	b, ok := bv.Bool()
	require.True(t, ok)
	require.True(t, b)

	nv, _ := in.Lookup("n")
	require.True(t, nv.IsNull())

	_, ok = in.Lookup("missing")
	require.False(t, ok)
}

func TestBytesAdapterContainers(t *testing.T) {
	in, err := Bytes([]byte(`{"z": 1, "a": 2, "list": [1, 2]}`))
	require.NoError(t, err)

	entries, ok := in.Entries()
	require.True(t, ok)
	// document order, not sorted
	k0, _ := entries[0].Key.String()
	require.Equal(t, "z", k0)

	lv, _ := in.Lookup("list")
	seq, ok := lv.Seq()
	require.True(t, ok)
	require.Len(t, seq, 2)
	require.EqualValues(t, uintptr(0), in.Identity())
}

func TestBytesAdapterDrivesValidation(t *testing.T) {
	cs, err := goshape.Compile(map[string]any{
		"kind":   "record",
		"fields": map[string]any{"id": "int", "tags": map[string]any{"kind": "list", "items": "string"}},
	})
	require.NoError(t, err)

	in, err := Bytes([]byte(`{"id": 7, "tags": ["a"]}`))
	require.NoError(t, err)
	v, verr := cs.Validate(in, goshape.ValidateOpt{Strict: true})
	require.NoError(t, verr)
	require.Equal(t, int64(7), v.(map[string]any)["id"])

	in, err = Bytes([]byte(`{"id": "7", "tags": []}`))
	require.NoError(t, err)
	_, verr = cs.Validate(in, goshape.ValidateOpt{Strict: true})
	iss, ok := goshape.AsIssues(verr)
	require.True(t, ok)
	require.Equal(t, "/id", iss[0].Path)
	require.Equal(t, "int_type", iss[0].Code)
}
