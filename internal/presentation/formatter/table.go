package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/penwyp/go-codex-trace/internal/util"
)

const (
	digestWidth  = 12
	minPathWidth = 16
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))

type TableFormatter struct {
	headers []string
	opts    Options
}

func NewTableFormatter(opts Options) *TableFormatter {
	return &TableFormatter{
		headers: []string{"Date", "Session", "Digest", "Path"},
		opts:    opts,
	}
}

func (f *TableFormatter) Format(w io.Writer, rows []SessionRow) error {
	cells := make([][]string, len(rows))
	for i, row := range rows {
		digest := row.Digest
		if len(digest) > digestWidth {
			digest = digest[:digestWidth]
		}
		cells[i] = []string{row.Date, row.SessionID, digest, row.Path}
	}

	widths := f.calculateColumnWidths(cells)
	var b strings.Builder
	f.writeBorder(&b, widths, "top")
	f.writeRow(&b, f.headers, widths, true)
	f.writeBorder(&b, widths, "middle")
	for _, row := range cells {
		f.writeRow(&b, row, widths, false)
	}
	f.writeBorder(&b, widths, "bottom")
	fmt.Fprintf(&b, "%d session(s)\n", len(rows))

	_, err := io.WriteString(w, b.String())
	return err
}

// calculateColumnWidths sizes columns to their content. When a width limit
// is set, the path column shrinks to fit, down to a minimum.
func (f *TableFormatter) calculateColumnWidths(cells [][]string) []int {
	widths := make([]int, len(f.headers))
	for i, header := range f.headers {
		widths[i] = util.GetDisplayWidth(header)
	}
	for _, row := range cells {
		for i, value := range row {
			widths[i] = max(widths[i], util.GetDisplayWidth(value))
		}
	}

	if f.opts.Width > 0 {
		last := len(widths) - 1
		// Each column adds two padding cells and one border.
		fixed := 1
		for i, width := range widths {
			fixed += width + 3
			if i == last {
				fixed -= width
			}
		}
		if avail := f.opts.Width - fixed; avail < widths[last] {
			widths[last] = max(avail, minPathWidth)
		}
	}
	return widths
}

func (f *TableFormatter) writeBorder(b *strings.Builder, widths []int, borderType string) {
	var left, middle, right string
	switch borderType {
	case "top":
		left, middle, right = "┌", "┬", "┐"
	case "middle":
		left, middle, right = "├", "┼", "┤"
	default:
		left, middle, right = "└", "┴", "┘"
	}

	b.WriteString(left)
	for i, width := range widths {
		b.WriteString(strings.Repeat("─", width+2))
		if i < len(widths)-1 {
			b.WriteString(middle)
		}
	}
	b.WriteString(right)
	b.WriteString("\n")
}

func (f *TableFormatter) writeRow(b *strings.Builder, values []string, widths []int, header bool) {
	b.WriteString("│")
	for i, value := range values {
		cell := util.PadRight(util.TruncateMiddle(value, widths[i]), widths[i])
		if header && f.opts.Styled {
			cell = headerStyle.Render(cell)
		}
		b.WriteString(" " + cell + " │")
	}
	b.WriteString("\n")
}
