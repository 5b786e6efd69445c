package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/penwyp/go-codex-trace/internal/core/classify"
	"github.com/penwyp/go-codex-trace/internal/core/model"
)

// GeneratedAtLayout formats the header timestamp, to the second.
const GeneratedAtLayout = "2006-01-02T15:04:05"

// Source identifies the log a document was generated from.
type Source struct {
	Name string
	Path string
}

// Section renders one record: heading, metadata bullets, then one fenced
// block per content block. Full mode appends the raw record.
func Section(index int, line model.Line, policy Policy) model.Fragment {
	summary := classify.Classify(line.Record)

	lines := []string{
		fmt.Sprintf("## %04d. `%s`", index, summary.Title),
		"",
		fmt.Sprintf("- jsonl_line: `%d`", line.Number),
	}
	if ts := line.Record.Timestamp(); ts != "" {
		lines = append(lines, fmt.Sprintf("- timestamp: `%s`", ts))
	}
	for _, meta := range summary.Meta {
		if meta.Value == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: `%s`", meta.Key, policy.Apply(meta.Value)))
	}
	lines = append(lines, "")

	for _, block := range summary.Blocks {
		lines = append(lines, fmt.Sprintf("**%s**", block.Label), "")
		lines = append(lines, CodeBlock(policy.Apply(block.Text), block.Language)...)
		lines = append(lines, "")
	}

	if policy.Mode == ModeFull {
		lines = append(lines, "**raw_record_json**", "")
		lines = append(lines, CodeBlock(line.Record.JSON(), model.LangJSON)...)
		lines = append(lines, "")
	}
	return model.Fragment{Lines: lines}
}

// Header renders the fixed document header.
func Header(src Source, total int, policy Policy, generatedAt time.Time) []string {
	lines := []string{
		fmt.Sprintf("# Codex Session Trace: `%s`", src.Name),
		"",
		fmt.Sprintf("- source_file: `%s`", src.Path),
		fmt.Sprintf("- generated_at: `%s`", generatedAt.Format(GeneratedAtLayout)),
		fmt.Sprintf("- mode: `%s`", policy.Mode),
	}
	if policy.Mode == ModeConcise {
		lines = append(lines,
			fmt.Sprintf("- truncate_threshold: `%d`", policy.Threshold),
			fmt.Sprintf("- truncate_keep: `%d`", policy.Keep),
		)
	}
	lines = append(lines, fmt.Sprintf("- total_records: `%d`", total), "")
	return lines
}

// Assemble builds the complete document in memory: the header followed by one
// section per record, in input order.
func Assemble(src Source, records []model.Line, policy Policy, generatedAt time.Time) string {
	lines := Header(src, len(records), policy, generatedAt)
	for i, line := range records {
		lines = append(lines, Section(i+1, line, policy).Lines...)
	}
	return strings.Join(lines, "\n")
}
