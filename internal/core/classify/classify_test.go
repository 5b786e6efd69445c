package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-codex-trace/internal/core/model"
	"github.com/penwyp/go-codex-trace/internal/data/parser"
)

func metaKeys(s Summary) []string {
	keys := make([]string, len(s.Meta))
	for i, m := range s.Meta {
		keys[i] = m.Key
	}
	return keys
}

func metaValue(s Summary, key string) string {
	for _, m := range s.Meta {
		if m.Key == key {
			return m.Value
		}
	}
	return ""
}

func labels(s Summary) []string {
	out := make([]string, len(s.Blocks))
	for i, b := range s.Blocks {
		out[i] = b.Label
	}
	return out
}

func TestClassifyTitlesAndMetaKeys(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		title  string
		keys   []string
		blocks []string
	}{
		{
			name:   "session_meta",
			line:   `{"timestamp":"2026-02-04T08:25:09.350Z","type":"session_meta","payload":{"id":"019c","cwd":"/work","originator":"codex_cli_rs","source":"cli","cli_version":"0.98.0","model_provider":"openai","base_instructions":{"text":"be nice"},"git":{"branch":"main"}}}`,
			title:  "session_meta",
			keys:   []string{"line_type", "session_id", "cwd", "originator", "source", "cli_version", "model_provider"},
			blocks: []string{"base_instructions.text", "git"},
		},
		{
			name:   "turn_context",
			line:   `{"type":"turn_context","payload":{"turn_id":"t1","cwd":"/w","model":"gpt-5","approval_policy":"never","effort":"high","summary":"auto","sandbox_policy":{"mode":"read-only"},"collaboration_mode":{"m":1},"user_instructions":"u","developer_instructions":"d"}}`,
			title:  "turn_context",
			keys:   []string{"line_type", "turn_id", "cwd", "model", "approval_policy", "effort", "summary"},
			blocks: []string{"sandbox_policy", "collaboration_mode", "user_instructions", "developer_instructions"},
		},
		{
			name:   "event_msg.user_message",
			line:   `{"type":"event_msg","payload":{"type":"user_message","message":"hi","images":[]}}`,
			title:  "event_msg.user_message",
			keys:   []string{"line_type", "event_type", "images_count", "local_images_count"},
			blocks: []string{"message"},
		},
		{
			name:   "event_msg.agent_message",
			line:   `{"type":"event_msg","payload":{"type":"agent_message","message":"done"}}`,
			title:  "event_msg.agent_message",
			keys:   []string{"line_type", "event_type"},
			blocks: []string{"message"},
		},
		{
			name:   "event_msg.agent_reasoning",
			line:   `{"type":"event_msg","payload":{"type":"agent_reasoning","text":"thinking"}}`,
			title:  "event_msg.agent_reasoning",
			keys:   []string{"line_type", "event_type"},
			blocks: []string{"text"},
		},
		{
			name:   "event_msg.token_count",
			line:   `{"type":"event_msg","payload":{"type":"token_count","info":{"total":1},"rate_limits":{"primary":{}}}}`,
			title:  "event_msg.token_count",
			keys:   []string{"line_type", "event_type"},
			blocks: []string{"info", "rate_limits"},
		},
		{
			name:   "event_msg.token_count null info",
			line:   `{"type":"event_msg","payload":{"type":"token_count","info":null}}`,
			title:  "event_msg.token_count",
			keys:   []string{"line_type", "event_type"},
			blocks: []string{},
		},
		{
			name:   "event_msg unknown subtype",
			line:   `{"type":"event_msg","payload":{"type":"task_started","model_context_window":1}}`,
			title:  "event_msg.task_started",
			keys:   []string{"line_type", "event_type"},
			blocks: []string{"payload"},
		},
		{
			name:   "event_msg missing subtype",
			line:   `{"type":"event_msg","payload":{}}`,
			title:  "event_msg.unknown",
			keys:   []string{"line_type", "event_type"},
			blocks: []string{"payload"},
		},
		{
			name:   "response_item.message",
			line:   `{"type":"response_item","payload":{"type":"message","role":"assistant","phase":"final","content":[{"type":"output_text","text":"a"},{"type":"input_image","image_url":"x"}]}}`,
			title:  "response_item.message.assistant",
			keys:   []string{"line_type", "item_type", "role", "phase"},
			blocks: []string{"content[1] (output_text)", "content[2] (input_image)"},
		},
		{
			name:   "response_item.message without role or phase",
			line:   `{"type":"response_item","payload":{"type":"message"}}`,
			title:  "response_item.message.unknown",
			keys:   []string{"line_type", "item_type", "role"},
			blocks: []string{},
		},
		{
			name:   "response_item.reasoning",
			line:   `{"type":"response_item","payload":{"type":"reasoning","summary":[{"type":"summary_text","text":"s"}],"content":null,"encrypted_content":"gAAA"}}`,
			title:  "response_item.reasoning",
			keys:   []string{"line_type", "item_type"},
			blocks: []string{"content[1] (summary_text)", "encrypted_content"},
		},
		{
			name:   "response_item.reasoning empty summary",
			line:   `{"type":"response_item","payload":{"type":"reasoning","summary":[],"content":"raw"}}`,
			title:  "response_item.reasoning",
			keys:   []string{"line_type", "item_type"},
			blocks: []string{"content"},
		},
		{
			name:   "response_item.function_call",
			line:   `{"type":"response_item","payload":{"type":"function_call","name":"shell","arguments":"{\"command\":[\"ls\"]}","call_id":"call_1","status":"completed"}}`,
			title:  "response_item.function_call.shell",
			keys:   []string{"line_type", "item_type", "name", "call_id", "status"},
			blocks: []string{"arguments"},
		},
		{
			name:   "response_item.custom_tool_call",
			line:   `{"type":"response_item","payload":{"type":"custom_tool_call","name":"apply_patch","input":"*** Begin Patch","call_id":"call_2"}}`,
			title:  "response_item.custom_tool_call.apply_patch",
			keys:   []string{"line_type", "item_type", "name", "call_id"},
			blocks: []string{"input"},
		},
		{
			name:   "response_item.function_call without name",
			line:   `{"type":"response_item","payload":{"type":"function_call"}}`,
			title:  "response_item.function_call.unknown_tool",
			keys:   []string{"line_type", "item_type", "name", "call_id"},
			blocks: []string{"arguments"},
		},
		{
			name:   "response_item.function_call_output",
			line:   `{"type":"response_item","payload":{"type":"function_call_output","call_id":"call_1","output":"{\"output\":\"ok\"}"}}`,
			title:  "response_item.function_call_output",
			keys:   []string{"line_type", "item_type", "call_id"},
			blocks: []string{"output"},
		},
		{
			name:   "response_item.custom_tool_call_output",
			line:   `{"type":"response_item","payload":{"type":"custom_tool_call_output","call_id":"call_2","output":"Success"}}`,
			title:  "response_item.custom_tool_call_output",
			keys:   []string{"line_type", "item_type", "call_id"},
			blocks: []string{"output"},
		},
		{
			name:   "response_item.web_search_call with action",
			line:   `{"type":"response_item","payload":{"type":"web_search_call","status":"completed","action":{"type":"search","query":"go iter"}}}`,
			title:  "response_item.web_search_call.search",
			keys:   []string{"line_type", "item_type", "status", "action_type"},
			blocks: []string{"action"},
		},
		{
			name:   "response_item.web_search_call without action",
			line:   `{"type":"response_item","payload":{"type":"web_search_call","status":"in_progress"}}`,
			title:  "response_item.web_search_call",
			keys:   []string{"line_type", "item_type", "status"},
			blocks: []string{"action"},
		},
		{
			name:   "response_item unknown subtype",
			line:   `{"type":"response_item","payload":{"type":"local_shell_call","x":1}}`,
			title:  "response_item.local_shell_call",
			keys:   []string{"line_type", "item_type"},
			blocks: []string{"payload"},
		},
		{
			name:   "unknown top-level type",
			line:   `{"type":"compacted","payload":{"message":"m"}}`,
			title:  "compacted",
			keys:   []string{"line_type"},
			blocks: []string{"record"},
		},
		{
			name:   "payload not an object",
			line:   `{"type":"session_meta","payload":"oops"}`,
			title:  "session_meta",
			keys:   []string{"line_type"},
			blocks: []string{"record"},
		},
		{
			name:   "no type and no payload",
			line:   `{"hello":"world"}`,
			title:  "unknown",
			keys:   []string{"line_type"},
			blocks: []string{"record"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := Classify(parser.DecodeLine(tt.line))
			assert.Equal(t, tt.title, summary.Title)
			assert.Equal(t, tt.keys, metaKeys(summary))
			assert.Equal(t, tt.blocks, labels(summary))
		})
	}
}

func TestClassifyUserMessageScenario(t *testing.T) {
	summary := Classify(parser.DecodeLine(`{"type":"event_msg","payload":{"type":"user_message","message":"hi","images":[]}}`))

	assert.Equal(t, "event_msg.user_message", summary.Title)
	assert.Equal(t, "0", metaValue(summary, "images_count"))
	assert.Equal(t, "0", metaValue(summary, "local_images_count"))
	require.Len(t, summary.Blocks, 1)
	assert.Equal(t, model.TextBlock("message", "hi"), summary.Blocks[0])
}

func TestClassifyUserMessageImageCounts(t *testing.T) {
	summary := Classify(parser.DecodeLine(`{"type":"event_msg","payload":{"type":"user_message","message":"see","images":["a","b"],"local_images":null}}`))
	assert.Equal(t, "2", metaValue(summary, "images_count"))
	assert.Equal(t, "0", metaValue(summary, "local_images_count"))
}

func TestClassifyParseErrorKeepsRawLine(t *testing.T) {
	raw := `{"type": "event_msg", broken`
	summary := Classify(parser.DecodeLine(raw))

	assert.Equal(t, model.TypeParseError, summary.Title)
	require.Len(t, summary.Blocks, 1)
	assert.Equal(t, "record", summary.Blocks[0].Label)
	assert.Equal(t, model.LangJSON, summary.Blocks[0].Language)
	assert.Contains(t, summary.Blocks[0].Text, `"raw_line": "{\"type\": \"event_msg\", broken"`)
}

func TestClassifySyntheticTypes(t *testing.T) {
	for line, title := range map[string]string{
		"   ":   model.TypeEmptyLine,
		"[1,2]": model.TypeNonObjectLine,
		"nope":  model.TypeParseError,
	} {
		summary := Classify(parser.DecodeLine(line))
		assert.Equal(t, title, summary.Title)
		assert.Equal(t, []string{"line_type"}, metaKeys(summary))
		assert.Equal(t, title, metaValue(summary, "line_type"))
	}
}

func TestClassifyFunctionCallArguments(t *testing.T) {
	tests := []struct {
		name     string
		args     string
		language string
		text     string
	}{
		{"object", `"{\"cmd\":\"ls\"}"`, model.LangJSON, "{\n  \"cmd\": \"ls\"\n}"},
		{"array with whitespace", `"  [1, 2]  "`, model.LangJSON, "[\n  1,\n  2\n]"},
		{"plain text", `"ls -la"`, model.LangText, "ls -la"},
		{"brace but invalid", `"{not json"`, model.LangText, "{not json"},
		{"empty", `""`, model.LangText, ""},
		{"missing", ``, model.LangText, ""},
		{"non-string object", `{"already":"parsed"}`, model.LangText, "{\n  \"already\": \"parsed\"\n}"},
		{"json scalar string", `"42"`, model.LangText, "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := `{"type":"response_item","payload":{"type":"function_call","name":"shell"`
			if tt.args != "" {
				line += `,"arguments":` + tt.args
			}
			line += `}}`
			summary := Classify(parser.DecodeLine(line))
			require.Len(t, summary.Blocks, 1)
			assert.Equal(t, "arguments", summary.Blocks[0].Label)
			assert.Equal(t, tt.language, summary.Blocks[0].Language)
			assert.Equal(t, tt.text, summary.Blocks[0].Text)
		})
	}
}

func TestClassifySessionMetaOptionalBlocks(t *testing.T) {
	summary := Classify(parser.DecodeLine(`{"type":"session_meta","payload":{"id":"x","base_instructions":{"text":""},"git":null}}`))
	assert.Empty(t, summary.Blocks)
	assert.Equal(t, "x", metaValue(summary, "session_id"))

	summary = Classify(parser.DecodeLine(`{"type":"session_meta","payload":{"base_instructions":"not an object"}}`))
	assert.Empty(t, summary.Blocks)
}

func TestClassifyTurnContextFalsyInstructions(t *testing.T) {
	summary := Classify(parser.DecodeLine(`{"type":"turn_context","payload":{"user_instructions":"","developer_instructions":null,"sandbox_policy":null}}`))
	assert.Empty(t, summary.Blocks)
}

func TestClassifyWebSearchActionNull(t *testing.T) {
	summary := Classify(parser.DecodeLine(`{"type":"response_item","payload":{"type":"web_search_call","status":"completed"}}`))
	require.Len(t, summary.Blocks, 1)
	assert.Equal(t, "null", summary.Blocks[0].Text)
	assert.Equal(t, "completed", metaValue(summary, "status"))
}

func TestDecodeVariants(t *testing.T) {
	v := Decode(parser.DecodeLine(`{"type":"response_item","payload":{"type":"custom_tool_call","name":"apply_patch","input":"[1]"}}`))
	item, ok := v.(Item)
	require.True(t, ok)
	call, ok := item.Body.(ToolCall)
	require.True(t, ok)
	assert.Equal(t, "input", call.ArgField)
	_, parsed := call.Args.(ParsedValue)
	assert.True(t, parsed)

	v = Decode(parser.DecodeLine(`{"type":"event_msg","payload":{"type":"mystery"}}`))
	event, ok := v.(Event)
	require.True(t, ok)
	unknown, ok := event.Body.(UnknownEvent)
	require.True(t, ok)
	assert.Equal(t, "mystery", unknown.Subtype)

	_, ok = Decode(parser.DecodeLine(`{"type":"x"}`)).(Generic)
	assert.True(t, ok)
}

func TestClassifyIsPure(t *testing.T) {
	rec := parser.DecodeLine(`{"type":"response_item","payload":{"type":"message","role":"user","content":[{"type":"input_text","text":"q"}]}}`)
	assert.Equal(t, Classify(rec), Classify(rec))
}
