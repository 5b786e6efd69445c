package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	coreerrors "github.com/penwyp/go-codex-trace/internal/core/errors"
	"github.com/penwyp/go-codex-trace/internal/util"
)

const sessionExt = ".jsonl"

// FileScanner enumerates session logs. Directory scans are not recursive.
type FileScanner struct {
	pattern string
}

// NewFileScanner creates a scanner for *.jsonl files.
func NewFileScanner() *FileScanner {
	return &FileScanner{pattern: "*" + sessionExt}
}

// ScanDir returns the regular files in dir matching the scanner pattern,
// sorted by name. A missing directory yields no files and no error.
func (s *FileScanner) ScanDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		matched, _ := filepath.Match(s.pattern, entry.Name())
		if !matched {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if !isRegular(path) {
			continue
		}
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

// Inputs expands CLI inputs into an ordered, duplicate-free list of session
// logs. Files are kept when their extension is .jsonl in any case; directories
// contribute their immediate *.jsonl files. Paths are normalized before
// deduplication, and the first occurrence wins.
func (s *FileScanner) Inputs(inputs []string) ([]string, error) {
	start := time.Now()
	seen := make(map[string]struct{})
	var files []string

	add := func(path string) {
		resolved := util.NormalizePath(path)
		if _, dup := seen[resolved]; dup {
			return
		}
		seen[resolved] = struct{}{}
		files = append(files, resolved)
	}

	for _, input := range inputs {
		path := util.ExpandPath(input)
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, coreerrors.IO(fmt.Errorf("input path does not exist: %s", input), "input_not_found")
			}
			return nil, coreerrors.IO(fmt.Errorf("stat input: %w", err), "input_stat_failed")
		}

		if info.IsDir() {
			dirFiles, err := s.ScanDir(path)
			if err != nil {
				return nil, coreerrors.IO(fmt.Errorf("scan input directory: %w", err), "input_scan_failed")
			}
			for _, f := range dirFiles {
				add(f)
			}
			continue
		}

		if strings.EqualFold(filepath.Ext(path), sessionExt) {
			add(path)
		} else {
			util.LogDebugf("Skip input (not %s): %s", sessionExt, path)
		}
	}

	util.LogDebugf("Input scan completed: duration %v, %d inputs, found %d JSONL files",
		time.Since(start), len(inputs), len(files))

	if len(files) == 0 {
		return nil, coreerrors.Usagef("no_inputs", "No jsonl files found from inputs.")
	}
	return files, nil
}

// DayDir returns the Root/YYYY/MM/DD directory for day.
func DayDir(root string, day time.Time) string {
	return filepath.Join(root,
		fmt.Sprintf("%04d", day.Year()),
		fmt.Sprintf("%02d", int(day.Month())),
		fmt.Sprintf("%02d", day.Day()))
}

func isRegular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
