package convert

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreerrors "github.com/penwyp/go-codex-trace/internal/core/errors"
	"github.com/penwyp/go-codex-trace/internal/core/render"
)

var fixedNow = func() time.Time { return time.Date(2026, 2, 5, 12, 0, 0, 0, time.UTC) }

func writeInput(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	resolved, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return resolved
}

func realDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

func newConverter(t *testing.T, cfg Config) *Converter {
	t.Helper()
	if cfg.Policy == (render.Policy{}) {
		cfg.Policy = render.DefaultPolicy()
	}
	cfg.Now = fixedNow
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func TestNewRejectsInvalidPolicy(t *testing.T) {
	_, err := New(Config{Policy: render.Policy{Mode: render.ModeConcise, Threshold: 5, Keep: 6}})
	require.Error(t, err)
	assert.True(t, coreerrors.IsUsage(err))
}

func TestRunWritesDocumentsInInputOrder(t *testing.T) {
	in := realDir(t)
	out := filepath.Join(realDir(t), "traces")
	a := writeInput(t, in, "a.jsonl", `{"type":"event_msg","payload":{"type":"user_message","message":"hi"}}`)
	b := writeInput(t, in, "b.jsonl", `not json`, ``, `{"type":"x"}`)

	c := newConverter(t, Config{OutputDir: out, Concurrency: 2})
	results, err := c.Run(context.Background(), []string{a, b})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, filepath.Join(out, "a.concise.md"), results[0].Output)
	assert.Equal(t, filepath.Join(out, "b.concise.md"), results[1].Output)
	assert.Equal(t, 1, results[0].Records)
	assert.Equal(t, 3, results[1].Records)

	doc, err := os.ReadFile(results[1].Output)
	require.NoError(t, err)
	text := string(doc)
	assert.True(t, strings.HasPrefix(text, "# Codex Session Trace: `b.jsonl`"))
	assert.Contains(t, text, "- generated_at: `2026-02-05T12:00:00`")
	assert.Contains(t, text, "## 0001. `parse_error`")
	assert.Contains(t, text, "## 0002. `empty_line`")
	assert.Contains(t, text, "- jsonl_line: `3`")

	assert.Equal(t, []string{results[0].Output, results[1].Output}, Outputs(results))
}

func TestRunSecondBatchDoesNotOverwrite(t *testing.T) {
	in := realDir(t)
	out := realDir(t)
	a := writeInput(t, in, "a.jsonl", `{"type":"x"}`)

	first, err := newConverter(t, Config{OutputDir: out}).Run(context.Background(), []string{a})
	require.NoError(t, err)
	second, err := newConverter(t, Config{OutputDir: out}).Run(context.Background(), []string{a})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(out, "a.concise.md"), first[0].Output)
	assert.Equal(t, filepath.Join(out, "a.concise.2.md"), second[0].Output)
}

func TestRunSameStemFromDifferentDirectories(t *testing.T) {
	in1, in2, out := realDir(t), realDir(t), realDir(t)
	a := writeInput(t, in1, "s.jsonl", `{"type":"x"}`)
	b := writeInput(t, in2, "s.jsonl", `{"type":"y"}`)

	results, err := newConverter(t, Config{OutputDir: out, Policy: render.Policy{Mode: render.ModeFull, Threshold: 1, Keep: 1}}).
		Run(context.Background(), []string{a, b})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "s.full.md"), results[0].Output)
	assert.Equal(t, filepath.Join(out, "s.full.2.md"), results[1].Output)
}

func TestRunOutputFile(t *testing.T) {
	in := realDir(t)
	target := filepath.Join(realDir(t), "nested", "trace.md")
	a := writeInput(t, in, "a.jsonl", `{"type":"x"}`)
	b := writeInput(t, in, "b.jsonl", `{"type":"x"}`)

	results, err := newConverter(t, Config{OutputFile: target}).Run(context.Background(), []string{a})
	require.NoError(t, err)
	assert.FileExists(t, results[0].Output)

	_, err = newConverter(t, Config{OutputFile: target}).Run(context.Background(), []string{a, b})
	require.Error(t, err)
	assert.True(t, coreerrors.IsUsage(err))
}

func TestRunReportsMissingInput(t *testing.T) {
	in := realDir(t)
	a := writeInput(t, in, "a.jsonl", `{"type":"x"}`)
	missing := filepath.Join(in, "gone.jsonl")

	results, err := newConverter(t, Config{OutputDir: realDir(t)}).Run(context.Background(), []string{a, missing})
	require.Error(t, err)
	assert.Equal(t, coreerrors.CategoryIO, coreerrors.CategoryOf(err))
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.Equal(t, []string{results[0].Output}, Outputs(results))
}

func TestRunCancelled(t *testing.T) {
	in := realDir(t)
	a := writeInput(t, in, "a.jsonl", `{"type":"x"}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := newConverter(t, Config{OutputDir: realDir(t), Concurrency: 1}).Run(ctx, []string{a})
	require.Error(t, err)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}
