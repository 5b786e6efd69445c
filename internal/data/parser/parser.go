package parser

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/bytedance/sonic"

	coreerrors "github.com/penwyp/go-codex-trace/internal/core/errors"
	"github.com/penwyp/go-codex-trace/internal/core/model"
	"github.com/penwyp/go-codex-trace/internal/util"
)

// LineReader turns a line-oriented source into records. Malformed lines
// become placeholder records; only a failure of the source itself is an
// error, reported by Err after iteration.
type LineReader struct {
	r   *bufio.Reader
	err error
}

// NewLineReader creates a LineReader over r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReaderSize(r, 64*1024)}
}

// All yields (line number, record) pairs, 1-indexed, one per physical line.
// The sequence can be consumed once.
func (lr *LineReader) All() iter.Seq2[int, model.Record] {
	return func(yield func(int, model.Record) bool) {
		lineNumber := 0
		for {
			line, err := lr.r.ReadString('\n')
			if len(line) > 0 {
				lineNumber++
				if !yield(lineNumber, DecodeLine(trimEOL(line))) {
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					lr.err = err
				}
				return
			}
		}
	}
}

// Err returns the first non-EOF read error.
func (lr *LineReader) Err() error {
	return lr.err
}

func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

// DecodeLine converts one line (without terminator) into a record.
func DecodeLine(line string) model.Record {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return synthetic(model.TypeEmptyLine, rawLinePayload{RawLine: ""})
	}

	var decoded interface{}
	if err := sonic.UnmarshalString(trimmed, &decoded); err != nil {
		return synthetic(model.TypeParseError, parseErrorPayload{
			Error:   err.Error(),
			RawLine: line,
		})
	}
	if _, ok := decoded.(map[string]interface{}); !ok {
		return synthetic(model.TypeNonObjectLine, valuePayload{Value: json.RawMessage(trimmed)})
	}
	return model.NewRecord(trimmed)
}

type syntheticRecord struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type rawLinePayload struct {
	RawLine string `json:"raw_line"`
}

type parseErrorPayload struct {
	Error   string `json:"error"`
	RawLine string `json:"raw_line"`
}

type valuePayload struct {
	Value json.RawMessage `json:"value"`
}

func synthetic(recordType string, payload interface{}) model.Record {
	data, err := sonic.Marshal(syntheticRecord{Type: recordType, Payload: payload})
	if err != nil {
		util.LogDebug(fmt.Sprintf("Failed to encode %s placeholder: %v", recordType, err))
		return model.NewRecord(fmt.Sprintf(`{"type":%q,"payload":{}}`, recordType))
	}
	return model.NewRecord(string(data))
}

// ReadFile materializes every line of a session log.
func ReadFile(path string) ([]model.Line, error) {
	util.LogDebug(fmt.Sprintf("Start reading session file: %s", path))

	file, err := os.Open(path)
	if err != nil {
		return nil, coreerrors.IO(fmt.Errorf("open session file: %w", err), "open_failed")
	}
	defer file.Close()

	reader := NewLineReader(file)
	var lines []model.Line
	placeholders := 0
	for number, record := range reader.All() {
		switch record.Type() {
		case model.TypeEmptyLine, model.TypeParseError, model.TypeNonObjectLine:
			placeholders++
		}
		lines = append(lines, model.Line{Number: number, Record: record})
	}
	if err := reader.Err(); err != nil {
		util.LogDebug(fmt.Sprintf("Error reading file: %s - %v", path, err))
		return nil, coreerrors.IO(fmt.Errorf("read session file: %w", err), "read_failed")
	}

	util.LogDebug(fmt.Sprintf("Read %d lines from %s (%d placeholders)", len(lines), path, placeholders))
	return lines, nil
}

// FirstLine returns the first physical line of path without its terminator,
// and whether the line was newline-terminated.
func FirstLine(path string) (string, bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", false, err
	}
	defer file.Close()

	line, err := bufio.NewReader(file).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", false, err
	}
	complete := strings.HasSuffix(line, "\n")
	return trimEOL(line), complete, nil
}

// DecodeHeader decodes a session's first line. ok is false unless the line is
// a JSON object.
func DecodeHeader(line string) (model.Record, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return model.Record{}, false
	}
	var decoded interface{}
	if err := sonic.UnmarshalString(trimmed, &decoded); err != nil {
		return model.Record{}, false
	}
	if _, ok := decoded.(map[string]interface{}); !ok {
		return model.Record{}, false
	}
	return model.NewRecord(trimmed), true
}

// ReadFirst reads and decodes only the first record of path. Unreadable files
// and non-object first lines report ok=false.
func ReadFirst(path string) (model.Record, bool) {
	line, _, err := FirstLine(path)
	if err != nil {
		util.LogDebug(fmt.Sprintf("Skip unreadable file: %s - %v", path, err))
		return model.Record{}, false
	}
	return DecodeHeader(line)
}
