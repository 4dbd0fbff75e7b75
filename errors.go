package goshape

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	// type mismatches (strict mode) and parse failures (lax coercion)
	CodeIntType         = "int_type"
	CodeIntParsing      = "int_parsing"
	CodeFloatType       = "float_type"
	CodeFloatParsing    = "float_parsing"
	CodeBoolType        = "bool_type"
	CodeBoolParsing     = "bool_parsing"
	CodeStringType      = "string_type"
	CodeBytesType       = "bytes_type"
	CodeNoneRequired    = "none_required"
	CodeListType        = "list_type"
	CodeSetType         = "set_type"
	CodeTupleType       = "tuple_type"
	CodeMapType         = "map_type"
	CodeRecordType      = "record_type"
	CodeJSONType        = "json_type"
	CodeJSONParsing     = "json_parsing"
	CodeDatetimeParsing = "datetime_parsing"
	CodeDateParsing     = "date_parsing"
	CodeTimeParsing     = "time_parsing"
	CodeDurationParsing = "duration_parsing"
	CodeURLParsing      = "url_parsing"
	CodeUUIDParsing     = "uuid_parsing"
	CodeBase64Decode    = "base64_decode"

	// constraint violations
	CodeTooSmall       = "too_small"
	CodeTooBig         = "too_big"
	CodeTooShort       = "too_short"
	CodeTooLong        = "too_long"
	CodePattern        = "pattern_mismatch"
	CodeInvalidEnum    = "invalid_enum"
	CodeInvalidLiteral = "invalid_literal"
	CodeUniqueItems    = "unique_items"
	CodeTupleLength    = "tuple_length"
	CodeMissing        = "missing"
	CodeUnknownKey     = "unknown_key"
	CodeHookError      = "hook_error"

	// unions
	CodeUnionInvalid         = "union_invalid"
	CodeDiscriminatorMissing = "discriminator_missing"
	CodeDiscriminatorUnknown = "discriminator_unknown"

	// recursion guard
	CodeRecursionLoop    = "recursion_loop"
	CodeMaxDepthExceeded = "max_depth_exceeded"
	CodeTooManyErrors    = "too_many_errors"

	// serialization (warning-class under best-effort)
	CodeNotSerializable = "not_serializable"
)

// Issue represents a single validation or serialization entry. Path is
// snapshotted at the point of failure; it never aliases live context state.
type Issue struct {
	Path    string // JSON Pointer (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, format names, etc.
	Cause   error  // Optional: underlying error.
	// InputFragment is a bounded snippet of the offending input. Because it
	// can be expensive to produce, it is best-effort.
	InputFragment string
	// Params carries structured parameters (e.g., {"min":1, "max":10})
	// for i18n and observability.
	Params map[string]any
	// Sub holds member failures for union aggregate issues; member issues
	// are never surfaced to the caller as top-level entries.
	Sub Issues
}

// Issues is a collection of validation errors that implements error. A
// returned Issues is never empty and is ordered by
// first-encountered-in-traversal order.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. int_type at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice
// when needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// SchemaError reports a malformed schema description at compile time. A
// failed Compile never yields a partially compiled schema.
type SchemaError struct {
	Path string // JSON Pointer into the description tree.
	Msg  string
}

func (e *SchemaError) Error() string {
	if e.Path == "" || e.Path == "/" {
		return "schema error: " + e.Msg
	}
	return "schema error at " + e.Path + ": " + e.Msg
}

// AsSchemaError extracts a *SchemaError from an error.
func AsSchemaError(err error) (*SchemaError, bool) {
	var se *SchemaError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

func schemaErrf(path, format string, a ...any) *SchemaError {
	return &SchemaError{Path: path, Msg: fmt.Sprintf(format, a...)}
}
