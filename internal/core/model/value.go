package model

import (
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// prettyOptions expands every object and array (Width 0 disables single-line
// packing) and keeps keys in source order.
var prettyOptions = &pretty.Options{
	Width:    0,
	Prefix:   "",
	Indent:   "  ",
	SortKeys: false,
}

// Value is a missing-tolerant view over one JSON value. The zero Value is a
// missing value; no accessor ever fails.
type Value struct {
	r gjson.Result
}

// ValueOf wraps a gjson result.
func ValueOf(r gjson.Result) Value {
	return Value{r: r}
}

// ParseValue parses raw JSON text. Invalid input yields a missing Value.
func ParseValue(raw string) Value {
	if !gjson.Valid(raw) {
		return Value{}
	}
	return Value{r: gjson.Parse(raw)}
}

// Get returns the member at a gjson path. Paths used by this module are plain
// dotted identifiers.
func (v Value) Get(path string) Value {
	if !v.r.IsObject() {
		return Value{}
	}
	return Value{r: v.r.Get(path)}
}

// Exists reports whether the value is present in the source, null included.
func (v Value) Exists() bool {
	return v.r.Exists()
}

// IsNull reports a missing value or an explicit JSON null.
func (v Value) IsNull() bool {
	return !v.r.Exists() || v.r.Type == gjson.Null
}

func (v Value) IsObject() bool { return v.r.IsObject() }
func (v Value) IsArray() bool  { return v.r.IsArray() }
func (v Value) IsString() bool { return v.r.Type == gjson.String }

// Raw returns the JSON text exactly as it appears in the source.
func (v Value) Raw() string {
	return v.r.Raw
}

// Str returns the string content of a JSON string and "" for anything else.
func (v Value) Str() string {
	if v.r.Type != gjson.String {
		return ""
	}
	return v.r.Str
}

// Text stringifies the value for display: missing and null become "",
// strings are returned as is, objects and arrays are pretty-printed and other
// scalars keep their JSON literal.
func (v Value) Text() string {
	switch {
	case v.IsNull():
		return ""
	case v.r.Type == gjson.String:
		return v.r.Str
	case v.r.Type == gjson.JSON:
		return PrettyJSON(v.r.Raw)
	default:
		return v.r.Raw
	}
}

// TextOr is Text with a default used only when the value is absent.
func (v Value) TextOr(def string) string {
	if !v.Exists() {
		return def
	}
	return v.Text()
}

// JSON pretty-prints the value. A missing value renders as null.
func (v Value) JSON() string {
	if !v.Exists() {
		return "null"
	}
	return PrettyJSON(v.r.Raw)
}

// Truthy follows the usual dynamic-language rules: null, false, 0, "" and
// empty containers are false.
func (v Value) Truthy() bool {
	switch v.r.Type {
	case gjson.True:
		return true
	case gjson.Number:
		return v.r.Num != 0
	case gjson.String:
		return v.r.Str != ""
	case gjson.JSON:
		return v.Len() > 0
	default:
		return false
	}
}

// Len counts array elements, object members or string characters. Anything
// else has length zero.
func (v Value) Len() int {
	switch {
	case v.r.IsArray():
		return len(v.r.Array())
	case v.r.IsObject():
		n := 0
		v.r.ForEach(func(_, _ gjson.Result) bool {
			n++
			return true
		})
		return n
	case v.r.Type == gjson.String:
		return utf8.RuneCountInString(v.r.Str)
	default:
		return 0
	}
}

// Array returns the elements of an array value, nil otherwise.
func (v Value) Array() []Value {
	if !v.r.IsArray() {
		return nil
	}
	items := v.r.Array()
	out := make([]Value, len(items))
	for i, item := range items {
		out[i] = Value{r: item}
	}
	return out
}

// PrettyJSON formats raw JSON text with a two-space indent, preserving key
// order.
func PrettyJSON(raw string) string {
	if raw == "" {
		return "null"
	}
	out := pretty.PrettyOptions([]byte(raw), prettyOptions)
	return strings.TrimRight(string(out), "\n")
}
