package render

import (
	"fmt"
	"regexp"
	"strconv"
	"unicode/utf8"

	coreerrors "github.com/penwyp/go-codex-trace/internal/core/errors"
)

type Mode string

const (
	ModeConcise Mode = "concise"
	ModeFull    Mode = "full"
)

const (
	DefaultThreshold = 2000
	DefaultKeep      = 800
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeConcise, ModeFull:
		return Mode(s), nil
	default:
		return "", coreerrors.Usagef("invalid_mode", "invalid mode %q (expected concise or full)", s)
	}
}

// Policy decides how much of each text is shown. Threshold and Keep only
// matter in concise mode.
type Policy struct {
	Mode      Mode
	Threshold int
	Keep      int
}

// DefaultPolicy returns the concise policy with the default limits.
func DefaultPolicy() Policy {
	return Policy{Mode: ModeConcise, Threshold: DefaultThreshold, Keep: DefaultKeep}
}

// Validate rejects unusable policies before any rendering starts.
func (p Policy) Validate() error {
	if _, err := ParseMode(string(p.Mode)); err != nil {
		return err
	}
	if p.Threshold < 1 {
		return coreerrors.Usagef("invalid_threshold", "truncate threshold must be >= 1")
	}
	if p.Keep < 1 {
		return coreerrors.Usagef("invalid_keep", "truncate keep must be >= 1")
	}
	if p.Keep > p.Threshold {
		return coreerrors.Usagef("invalid_keep", "truncate keep must be <= truncate threshold")
	}
	return nil
}

var markerPattern = regexp.MustCompile(`\n\n\[TRUNCATED: original_length=(\d+), shown=(\d+)\]\z`)

// Marker is appended to truncated text.
func Marker(original, shown int) string {
	return fmt.Sprintf("\n\n[TRUNCATED: original_length=%d, shown=%d]", original, shown)
}

// Apply renders text under the policy. Lengths count characters, not bytes.
// Applying a policy to its own output returns that output unchanged.
func (p Policy) Apply(text string) string {
	if p.Mode != ModeConcise {
		return text
	}
	length := utf8.RuneCountInString(text)
	if length <= p.Threshold {
		return text
	}
	keep := min(max(p.Keep, 0), length)
	if p.alreadyTruncated(text, keep) {
		return text
	}
	return prefixRunes(text, keep) + Marker(length, keep)
}

// alreadyTruncated recognizes output of this policy: a body of exactly keep
// characters followed by a marker reporting keep as shown.
func (p Policy) alreadyTruncated(text string, keep int) bool {
	loc := markerPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return false
	}
	original, err := strconv.Atoi(text[loc[2]:loc[3]])
	if err != nil || original <= p.Threshold {
		return false
	}
	shown, err := strconv.Atoi(text[loc[4]:loc[5]])
	if err != nil || shown != min(max(p.Keep, 0), original) {
		return false
	}
	return utf8.RuneCountInString(text[:loc[0]]) == shown && shown <= keep
}

func prefixRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
