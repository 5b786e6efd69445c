package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// Entry is one Codex rollout log line.
type Entry struct {
	Timestamp string                 `json:"timestamp,omitempty"`
	Type      string                 `json:"type"`
	Payload   map[string]interface{} `json:"payload"`
}

// SessionGenerator writes Codex-style rollout files into a
// root/YYYY/MM/DD tree.
type SessionGenerator struct {
	root string
}

// NewSessionGenerator creates a generator rooted at root.
func NewSessionGenerator(root string) *SessionGenerator {
	return &SessionGenerator{root: root}
}

// Root returns the sessions root.
func (g *SessionGenerator) Root() string {
	return g.root
}

// DayDir returns the directory holding sessions that started on day.
func (g *SessionGenerator) DayDir(day time.Time) string {
	return filepath.Join(g.root, day.Format("2006"), day.Format("01"), day.Format("02"))
}

// RolloutName builds the file name Codex uses for a session.
func RolloutName(start time.Time, id string) string {
	return fmt.Sprintf("rollout-%s-%s.jsonl", start.Format("2006-01-02T15-04-05"), id)
}

// SessionMeta builds a session_meta header entry.
func SessionMeta(id, cwd string, start time.Time) Entry {
	return Entry{
		Timestamp: start.UTC().Format("2006-01-02T15:04:05.000Z"),
		Type:      "session_meta",
		Payload: map[string]interface{}{
			"id":             id,
			"timestamp":      start.UTC().Format("2006-01-02T15:04:05.000Z"),
			"cwd":            cwd,
			"originator":     "codex_cli_rs",
			"cli_version":    "0.98.0",
			"source":         "cli",
			"model_provider": "openai",
			"base_instructions": map[string]interface{}{
				"text": "You are Codex, a coding agent.",
			},
		},
	}
}

// Conversation returns a short, representative exchange following a header.
func Conversation(cwd string, start time.Time) []Entry {
	at := func(offset time.Duration) string {
		return start.Add(offset).UTC().Format("2006-01-02T15:04:05.000Z")
	}
	return []Entry{
		{Timestamp: at(time.Second), Type: "turn_context", Payload: map[string]interface{}{
			"turn_id": "turn-1", "cwd": cwd, "model": "gpt-5-codex",
			"approval_policy": "on-request", "effort": "medium", "summary": "auto",
			"sandbox_policy": map[string]interface{}{"type": "workspace-write"},
		}},
		{Timestamp: at(2 * time.Second), Type: "event_msg", Payload: map[string]interface{}{
			"type": "user_message", "message": "list the files", "images": []interface{}{},
		}},
		{Timestamp: at(3 * time.Second), Type: "response_item", Payload: map[string]interface{}{
			"type": "function_call", "name": "shell", "call_id": "call_1",
			"arguments": `{"command":["ls","-la"]}`,
		}},
		{Timestamp: at(4 * time.Second), Type: "response_item", Payload: map[string]interface{}{
			"type": "function_call_output", "call_id": "call_1",
			"output": `{"output":"README.md\n","metadata":{"exit_code":0}}`,
		}},
		{Timestamp: at(5 * time.Second), Type: "response_item", Payload: map[string]interface{}{
			"type": "message", "role": "assistant",
			"content": []interface{}{map[string]interface{}{"type": "output_text", "text": "There is one file."}},
		}},
	}
}

// Encode renders entries as JSONL lines.
func Encode(entries ...Entry) ([]string, error) {
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		line, err := sonic.MarshalString(entry)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// WriteSession writes a full session for a workspace and returns its path.
func (g *SessionGenerator) WriteSession(id, cwd string, start time.Time) (string, error) {
	entries := append([]Entry{SessionMeta(id, cwd, start)}, Conversation(cwd, start)...)
	lines, err := Encode(entries...)
	if err != nil {
		return "", err
	}
	return g.WriteLines(start, RolloutName(start, id), lines...)
}

// WriteLines writes raw lines, newline-terminated, into day's directory.
func (g *SessionGenerator) WriteLines(day time.Time, name string, lines ...string) (string, error) {
	dir := g.DayDir(day)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	content := ""
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", err
	}
	return path, nil
}
