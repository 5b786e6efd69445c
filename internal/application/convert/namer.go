package convert

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/penwyp/go-codex-trace/internal/core/render"
)

// NextOutputPath returns dir/<stem>.<mode>.md, or the first free
// dir/<stem>.<mode>.<i>.md for i = 2, 3, ... according to exists.
func NextOutputPath(dir, stem string, mode render.Mode, exists func(string) bool) string {
	candidate := filepath.Join(dir, fmt.Sprintf("%s.%s.md", stem, mode))
	for i := 2; exists(candidate); i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s.%s.%d.md", stem, mode, i))
	}
	return candidate
}

// Stem is the file name without its final extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Namer hands out output paths that collide neither with files on disk nor
// with paths it already reserved. It is safe for concurrent use.
type Namer struct {
	mu       sync.Mutex
	exists   func(string) bool
	reserved map[string]struct{}
}

// NewNamer creates a Namer checking the file system. A non-nil exists
// replaces the file-system lookup.
func NewNamer(exists func(string) bool) *Namer {
	if exists == nil {
		exists = fileExists
	}
	return &Namer{exists: exists, reserved: make(map[string]struct{})}
}

// Reserve picks and records the output path for input.
func (n *Namer) Reserve(dir, input string, mode render.Mode) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	path := NextOutputPath(dir, Stem(input), mode, func(p string) bool {
		if _, taken := n.reserved[p]; taken {
			return true
		}
		return n.exists(p)
	})
	n.reserved[path] = struct{}{}
	return path
}

func fileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}
