// Package source loads schema descriptions and input documents from
// interchange text. JSON decoding preserves numeric fidelity by reading
// numbers as json.Number; YAML goes through gopkg.in/yaml.v3.
package source

import (
	"bytes"
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ValueFromJSON decodes a JSON document into the native value tree the
// validator consumes (map[string]any / []any / scalars, numbers as
// json.Number).
func ValueFromJSON(b []byte) (any, error) {
	return decodeJSON(bytes.NewReader(b))
}

// ValueFromJSONReader is ValueFromJSON over a stream.
func ValueFromJSONReader(r io.Reader) (any, error) {
	return decodeJSON(r)
}

func decodeJSON(r io.Reader) (any, error) {
	dec := gojson.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	// trailing content after the document is malformed input, not extra docs
	if err := dec.Decode(new(any)); err != io.EOF {
		return nil, fmt.Errorf("decode json: trailing content after document")
	}
	return v, nil
}

// DescriptionFromJSON decodes a schema description from JSON text.
func DescriptionFromJSON(b []byte) (any, error) {
	return ValueFromJSON(b)
}

// ValueFromYAML decodes a YAML document into the native value tree.
func ValueFromYAML(b []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return v, nil
}

// DescriptionFromYAML decodes a schema description from YAML text, which is
// the usual authoring format for hand-written schemas.
func DescriptionFromYAML(b []byte) (any, error) {
	return ValueFromYAML(b)
}
