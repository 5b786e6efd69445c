package formatter

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	coreerrors "github.com/penwyp/go-codex-trace/internal/core/errors"
	"github.com/penwyp/go-codex-trace/internal/data/locator"
)

// Output formats for located sessions.
const (
	FormatJSON  = "json"
	FormatPaths = "paths"
	FormatTable = "table"
	FormatCSV   = "csv"
)

// SessionRow is one located session as displayed.
type SessionRow struct {
	Date      string
	SessionID string
	Digest    string
	Path      string
}

// RowsFromEntries converts locator results, keeping their order.
func RowsFromEntries(entries []locator.Entry) []SessionRow {
	rows := make([]SessionRow, len(entries))
	for i, e := range entries {
		rows[i] = SessionRow{
			Date:      e.Date.Format(time.DateOnly),
			SessionID: e.SessionID,
			Digest:    e.Digest,
			Path:      e.Path,
		}
	}
	return rows
}

// Formatter writes rows to w.
type Formatter interface {
	Format(w io.Writer, rows []SessionRow) error
}

// Options tune terminal-oriented output.
type Options struct {
	// Width caps the table width in cells; 0 means unlimited.
	Width int
	// Styled enables a highlighted table header.
	Styled bool
}

// DetectOptions inspects f: terminals get a width limit and styling.
func DetectOptions(f *os.File) Options {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return Options{}
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		width = 0
	}
	return Options{Width: width, Styled: true}
}

// New returns the formatter for format.
func New(format string, opts Options) (Formatter, error) {
	switch format {
	case FormatJSON, "":
		return NewJSONFormatter(), nil
	case FormatPaths:
		return NewPathsFormatter(), nil
	case FormatTable:
		return NewTableFormatter(opts), nil
	case FormatCSV:
		return NewCSVFormatter(), nil
	default:
		return nil, coreerrors.Usagef("invalid_format",
			"invalid format %q (expected %s, %s, %s or %s)", format, FormatJSON, FormatPaths, FormatTable, FormatCSV)
	}
}

// PathsOf extracts the paths of rows.
func PathsOf(rows []SessionRow) []string {
	paths := make([]string, len(rows))
	for i, r := range rows {
		paths[i] = r.Path
	}
	return paths
}

func writeLine(w io.Writer, s string) error {
	_, err := fmt.Fprintln(w, s)
	return err
}
