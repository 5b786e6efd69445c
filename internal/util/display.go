package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// GetDisplayWidth returns the terminal cell width of text, counting wide
// runes as two cells.
func GetDisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// PadRight pads text with spaces to width cells.
func PadRight(text string, width int) string {
	gap := width - GetDisplayWidth(text)
	if gap <= 0 {
		return text
	}
	return text + strings.Repeat(" ", gap)
}

// TruncateMiddle shortens text to at most width cells, keeping both ends and
// joining them with an ellipsis. Paths stay recognizable by their file name.
func TruncateMiddle(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if GetDisplayWidth(text) <= width {
		return text
	}
	if width <= 3 {
		return runewidth.Truncate(text, width, "")
	}

	budget := width - 1
	head := budget / 2
	tail := budget - head

	left := runewidth.Truncate(text, head, "")
	runes := []rune(text)
	var right []rune
	used := 0
	for i := len(runes) - 1; i >= 0; i-- {
		w := runewidth.RuneWidth(runes[i])
		if used+w > tail {
			break
		}
		used += w
		right = append([]rune{runes[i]}, right...)
	}
	return left + "…" + string(right)
}
