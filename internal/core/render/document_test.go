package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-codex-trace/internal/core/model"
)

var fixedNow = time.Date(2026, 2, 3, 4, 5, 6, 789, time.UTC)

func line(n int, raw string) model.Line {
	return model.Line{Number: n, Record: model.NewRecord(raw)}
}

func TestAssembleConciseHeader(t *testing.T) {
	doc := Assemble(Source{Name: "rollout.jsonl", Path: "/tmp/rollout.jsonl"}, nil, DefaultPolicy(), fixedNow)

	want := strings.Join([]string{
		"# Codex Session Trace: `rollout.jsonl`",
		"",
		"- source_file: `/tmp/rollout.jsonl`",
		"- generated_at: `2026-02-03T04:05:06`",
		"- mode: `concise`",
		"- truncate_threshold: `2000`",
		"- truncate_keep: `800`",
		"- total_records: `0`",
		"",
	}, "\n")
	assert.Equal(t, want, doc)
}

func TestAssembleUserMessage(t *testing.T) {
	rec := line(3, `{"timestamp":"2026-02-03T00:00:00Z","type":"event_msg","payload":{"type":"user_message","message":"hi"}}`)
	doc := Assemble(Source{Name: "s.jsonl", Path: "/s.jsonl"}, []model.Line{rec}, DefaultPolicy(), fixedNow)

	section := strings.Join([]string{
		"## 0001. `event_msg.user_message`",
		"",
		"- jsonl_line: `3`",
		"- timestamp: `2026-02-03T00:00:00Z`",
		"- line_type: `event_msg`",
		"- event_type: `user_message`",
		"- images_count: `0`",
		"- local_images_count: `0`",
		"",
		"**message**",
		"",
		"```text",
		"hi",
		"```",
		"",
	}, "\n")
	assert.True(t, strings.HasSuffix(doc, section), doc)
	assert.Contains(t, doc, "- total_records: `1`")
	assert.NotContains(t, doc, "raw_record_json")
	assert.False(t, strings.HasSuffix(doc, "\n\n"))
}

func TestAssembleFullModeAddsRawRecord(t *testing.T) {
	rec := line(1, `{"type":"custom","z":1,"a":[1,2]}`)
	policy := Policy{Mode: ModeFull, Threshold: 10, Keep: 5}
	doc := Assemble(Source{Name: "s.jsonl", Path: "/s.jsonl"}, []model.Line{rec}, policy, fixedNow)

	assert.Contains(t, doc, "- mode: `full`")
	assert.NotContains(t, doc, "truncate_threshold")
	assert.Contains(t, doc, "**raw_record_json**\n\n```json\n{\n  \"type\": \"custom\",\n  \"z\": 1,\n  \"a\": [\n    1,\n    2\n  ]\n}\n```")
}

func TestAssembleTruncatesBlocksAndMeta(t *testing.T) {
	long := strings.Repeat("x", 30)
	rec := line(1, `{"type":"response_item","payload":{"type":"function_call","name":"shell","call_id":"`+long+`","arguments":"`+long+`"}}`)
	doc := Assemble(Source{Name: "s", Path: "/s"}, []model.Line{rec}, Policy{Mode: ModeConcise, Threshold: 10, Keep: 4}, fixedNow)

	truncated := "xxxx" + Marker(30, 4)
	assert.Contains(t, doc, "- call_id: `"+truncated+"`")
	assert.Contains(t, doc, "```text\n"+truncated+"\n```")
	assert.NotContains(t, doc, long)
}

func TestAssembleNumbersSectionsInOrder(t *testing.T) {
	records := []model.Line{
		line(1, `{"type":"a"}`),
		line(2, `{"type":"b","timestamp":""}`),
		line(4, `{"type":"c"}`),
	}
	doc := Assemble(Source{Name: "s", Path: "/s"}, records, DefaultPolicy(), fixedNow)

	first := strings.Index(doc, "## 0001. `a`")
	second := strings.Index(doc, "## 0002. `b`")
	third := strings.Index(doc, "## 0003. `c`")
	require.True(t, first >= 0 && second > first && third > second, doc)
	assert.Contains(t, doc, "- jsonl_line: `4`")
	assert.NotContains(t, doc, "- timestamp:")
}

func TestSectionFencesBacktickContent(t *testing.T) {
	rec := line(1, `{"type":"event_msg","payload":{"type":"agent_message","message":"see\n`+"```"+`go\ncode\n`+"```"+`"}}`)
	frag := Section(1, rec, DefaultPolicy())

	joined := strings.Join(frag.Lines, "\n")
	assert.Contains(t, joined, "~~~~text\nsee\n```go\ncode\n```\n~~~~")
}
