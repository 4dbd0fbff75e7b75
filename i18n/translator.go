package i18n

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var messagesEN = map[string]string{
	"int_type":              "value must be a valid integer",
	"int_parsing":           "value must be a valid integer, unable to parse input as an integer",
	"float_type":            "value must be a valid number",
	"float_parsing":         "value must be a valid number, unable to parse input as a number",
	"bool_type":             "value must be a valid boolean",
	"bool_parsing":          "value must be a valid boolean, unable to interpret input",
	"string_type":           "value must be a valid string",
	"bytes_type":            "value must be valid bytes",
	"none_required":         "value must be none/null",
	"list_type":             "value must be a valid list",
	"set_type":              "value must be a valid set",
	"tuple_type":            "value must be a valid tuple",
	"map_type":              "value must be a valid mapping",
	"record_type":           "value must be a valid record",
	"json_type":             "value must be a JSON string",
	"json_parsing":          "invalid JSON",
	"datetime_parsing":      "value must be a valid datetime",
	"date_parsing":          "value must be a valid date",
	"time_parsing":          "value must be a valid time",
	"duration_parsing":      "value must be a valid duration",
	"url_parsing":           "value must be a valid URL",
	"uuid_parsing":          "value must be a valid UUID",
	"base64_decode":         "value must be valid base64",
	"too_small":             "value is too small",
	"too_big":               "value is too big",
	"too_short":             "too short",
	"too_long":              "too long",
	"pattern_mismatch":      "value does not match the pattern",
	"invalid_enum":          "value is not a permitted enum member",
	"invalid_literal":       "value is not the permitted literal",
	"unique_items":          "items are not unique",
	"tuple_length":          "wrong tuple length",
	"missing":               "required property missing",
	"unknown_key":           "unknown key",
	"hook_error":            "hook failed",
	"union_invalid":         "value does not match any union member",
	"discriminator_missing": "discriminator missing",
	"discriminator_unknown": "unknown discriminator value",
	"recursion_loop":        "recursion error - cyclic reference detected",
	"max_depth_exceeded":    "maximum nesting depth exceeded",
	"too_many_errors":       "too many errors, collection stopped",
	"not_serializable":      "value cannot be serialized",
}

var messagesJA = map[string]string{
	"int_type":           "整数ではありません",
	"float_type":         "数値ではありません",
	"bool_type":          "真偽値ではありません",
	"string_type":        "文字列ではありません",
	"none_required":      "null である必要があります",
	"missing":            "必須プロパティが不足しています",
	"unknown_key":        "未知のキーです",
	"too_short":          "短すぎます",
	"too_long":           "長すぎます",
	"union_invalid":      "どのユニオンメンバーにも一致しません",
	"recursion_loop":     "循環参照が検出されました",
	"max_depth_exceeded": "ネストが深すぎます",
	"too_many_errors":    "エラーが多すぎるため収集を打ち切りました",
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	if t.lang == "ja" {
		if m, ok := messagesJA[code]; ok {
			return m
		}
	}
	if m, ok := messagesEN[code]; ok {
		return m
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
