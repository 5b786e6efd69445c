package model

import "github.com/tidwall/gjson"

// Synthetic record types produced by the line reader for lines that are not
// JSON objects.
const (
	TypeEmptyLine     = "empty_line"
	TypeParseError    = "parse_error"
	TypeNonObjectLine = "non_object_line"
	TypeUnknown       = "unknown"
)

// Record is one decoded JSON object from a session log line. Records are
// immutable; the original object text is kept for the raw dump.
type Record struct {
	raw  string
	root gjson.Result
}

// NewRecord wraps the JSON text of an object.
func NewRecord(raw string) Record {
	return Record{raw: raw, root: gjson.Parse(raw)}
}

// Raw returns the object's JSON text.
func (r Record) Raw() string {
	return r.raw
}

// Root returns the whole record as a Value.
func (r Record) Root() Value {
	return Value{r: r.root}
}

// Type returns the record tag, "unknown" when absent.
func (r Record) Type() string {
	return r.Root().Get("type").TextOr(TypeUnknown)
}

// Payload returns the payload member, possibly missing or not an object.
func (r Record) Payload() Value {
	return r.Root().Get("payload")
}

// Timestamp returns the top-level timestamp stringified, "" when absent.
func (r Record) Timestamp() string {
	return r.Root().Get("timestamp").Text()
}

// JSON pretty-prints the complete record.
func (r Record) JSON() string {
	return PrettyJSON(r.raw)
}

// Line pairs a record with its 1-based physical line number.
type Line struct {
	Number int
	Record Record
}
