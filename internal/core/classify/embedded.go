package classify

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/penwyp/go-codex-trace/internal/core/model"
)

// Embedded is the outcome of treating a field as possibly-embedded JSON:
// either a ParsedValue or RawText.
type Embedded interface {
	Block(label string) model.Block
}

// ParsedValue is a string field whose content parsed as a JSON object or
// array.
type ParsedValue struct {
	Value model.Value
}

func (p ParsedValue) Block(label string) model.Block {
	return model.JSONBlock(label, p.Value.JSON())
}

// RawText is a field rendered as plain text.
type RawText struct {
	Text string
}

func (r RawText) Block(label string) model.Block {
	return model.TextBlock(label, r.Text)
}

// ReparseEmbedded applies the embedded-JSON heuristic: only a string whose
// trimmed form starts with '{' or '[' and parses is treated as JSON. Text that
// merely starts with a brace but does not parse stays plain text.
func ReparseEmbedded(v model.Value) Embedded {
	if !v.IsString() {
		return RawText{Text: v.Text()}
	}
	trimmed := strings.TrimSpace(v.Str())
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return RawText{Text: v.Str()}
	}
	if !gjson.Valid(trimmed) {
		return RawText{Text: v.Str()}
	}
	return ParsedValue{Value: model.ParseValue(trimmed)}
}
