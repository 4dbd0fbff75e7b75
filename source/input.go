package source

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/goshape/goshape"
)

// Bytes wraps raw JSON text in a lazy Input adapter backed by gjson. Nothing
// is materialized up front; containers parse on first access, which makes
// validating a few fields of a large document cheap.
func Bytes(b []byte) (goshape.Input, error) {
	if !gjson.ValidBytes(b) {
		return nil, fmt.Errorf("invalid json document")
	}
	return jsonInput{r: gjson.ParseBytes(b)}, nil
}

type jsonInput struct {
	r gjson.Result
}

func (in jsonInput) Raw() any { return in.r.Value() }

func (in jsonInput) IsNull() bool { return in.r.Type == gjson.Null || !in.r.Exists() }

func (in jsonInput) Bool() (bool, bool) {
	switch in.r.Type {
	case gjson.True:
		return true, true
	case gjson.False:
		return false, true
	}
	return false, false
}

// Int is true only for integer literals; 5.0 reads as float, not int.
func (in jsonInput) Int() (int64, bool) {
	if in.r.Type != gjson.Number {
		return 0, false
	}
	raw := in.r.Raw
	if strings.ContainsAny(raw, ".eE") {
		return 0, false
	}
	i, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return i, true
}

func (in jsonInput) Float() (float64, bool) {
	if in.r.Type != gjson.Number {
		return 0, false
	}
	return in.r.Num, true
}

func (in jsonInput) String() (string, bool) {
	if in.r.Type != gjson.String {
		return "", false
	}
	return in.r.Str, true
}

func (in jsonInput) Bytes() ([]byte, bool) { return nil, false }

func (in jsonInput) Seq() ([]goshape.Input, bool) {
	if !in.r.IsArray() {
		return nil, false
	}
	items := in.r.Array()
	out := make([]goshape.Input, len(items))
	for i, it := range items {
		out[i] = jsonInput{r: it}
	}
	return out, true
}

// Entries returns object members in document order.
func (in jsonInput) Entries() ([]goshape.Entry, bool) {
	if !in.r.IsObject() {
		return nil, false
	}
	var out []goshape.Entry
	in.r.ForEach(func(k, v gjson.Result) bool {
		out = append(out, goshape.Entry{Key: jsonInput{r: k}, Value: jsonInput{r: v}})
		return true
	})
	return out, true
}

// Lookup scans members instead of using gjson path syntax so keys containing
// dots or wildcards resolve literally.
func (in jsonInput) Lookup(key string) (goshape.Input, bool) {
	if !in.r.IsObject() {
		return nil, false
	}
	var found gjson.Result
	ok := false
	in.r.ForEach(func(k, v gjson.Result) bool {
		if k.Str == key {
			found, ok = v, true
			return false
		}
		return true
	})
	if !ok {
		return nil, false
	}
	return jsonInput{r: found}, true
}

// Identity is always zero: JSON text cannot contain reference cycles.
func (in jsonInput) Identity() uintptr { return 0 }
