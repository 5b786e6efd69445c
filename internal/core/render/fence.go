package render

import "strings"

const backtickFence = "```"

// Fence picks a code-fence delimiter that cannot occur inside text: three
// backticks, or a tilde run longer than any tilde run in text (minimum four)
// when text contains three backticks itself.
func Fence(text string) string {
	if !strings.Contains(text, backtickFence) {
		return backtickFence
	}
	return strings.Repeat("~", max(4, longestRun(text, '~')+1))
}

func longestRun(s string, c byte) int {
	longest, current := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			current++
			longest = max(longest, current)
			continue
		}
		current = 0
	}
	return longest
}

// CodeBlock returns the lines of a fenced block.
func CodeBlock(text, language string) []string {
	fence := Fence(text)
	return []string{fence + language, text, fence}
}
