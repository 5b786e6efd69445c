package formatter

import (
	"io"

	"github.com/bytedance/sonic"
)

// JSONFormatter prints the session paths as an indented JSON array.
type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

func (f *JSONFormatter) Format(w io.Writer, rows []SessionRow) error {
	return WriteJSONList(w, PathsOf(rows))
}

// WriteJSONList prints values as a JSON array with a two-space indent.
// Non-ASCII text is written as-is.
func WriteJSONList(w io.Writer, values []string) error {
	if values == nil {
		values = []string{}
	}
	data, err := sonic.ConfigDefault.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	return writeLine(w, string(data))
}

// PathsFormatter prints one path per line.
type PathsFormatter struct{}

func NewPathsFormatter() *PathsFormatter {
	return &PathsFormatter{}
}

func (f *PathsFormatter) Format(w io.Writer, rows []SessionRow) error {
	for _, row := range rows {
		if err := writeLine(w, row.Path); err != nil {
			return err
		}
	}
	return nil
}
