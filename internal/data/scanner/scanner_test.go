package scanner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreerrors "github.com/penwyp/go-codex-trace/internal/core/errors"
)

func realTempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

func touch(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0644))
	return path
}

func TestScanDirIsSortedAndNotRecursive(t *testing.T) {
	dir := realTempDir(t)
	b := touch(t, filepath.Join(dir, "b.jsonl"))
	a := touch(t, filepath.Join(dir, "a.jsonl"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "nested", "c.jsonl"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.jsonl"), 0755))

	files, err := NewFileScanner().ScanDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, files)
}

func TestScanDirMissingDirectory(t *testing.T) {
	files, err := NewFileScanner().ScanDir(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestInputsMixesFilesAndDirectories(t *testing.T) {
	dir := realTempDir(t)
	inDir := filepath.Join(dir, "sessions")
	one := touch(t, filepath.Join(inDir, "one.jsonl"))
	two := touch(t, filepath.Join(inDir, "two.jsonl"))
	upper := touch(t, filepath.Join(dir, "UPPER.JSONL"))
	txt := touch(t, filepath.Join(dir, "skip.txt"))

	files, err := NewFileScanner().Inputs([]string{upper, inDir, txt, two})
	require.NoError(t, err)
	assert.Equal(t, []string{upper, one, two}, files)
}

func TestInputsDeduplicatesResolvedPaths(t *testing.T) {
	dir := realTempDir(t)
	target := touch(t, filepath.Join(dir, "s.jsonl"))
	link := filepath.Join(dir, "link.jsonl")
	require.NoError(t, os.Symlink(target, link))

	files, err := NewFileScanner().Inputs([]string{link, target, filepath.Join(dir, ".", "s.jsonl")})
	require.NoError(t, err)
	assert.Equal(t, []string{target}, files)
}

func TestInputsErrors(t *testing.T) {
	dir := realTempDir(t)
	touch(t, filepath.Join(dir, "readme.md"))

	_, err := NewFileScanner().Inputs([]string{filepath.Join(dir, "missing.jsonl")})
	require.Error(t, err)
	assert.Equal(t, coreerrors.CategoryIO, coreerrors.CategoryOf(err))
	assert.Equal(t, "input_not_found", coreerrors.CodeOf(err))

	_, err = NewFileScanner().Inputs([]string{dir})
	require.Error(t, err)
	assert.True(t, coreerrors.IsUsage(err))
	assert.Contains(t, err.Error(), "No jsonl files found")
}

func TestDayDir(t *testing.T) {
	day := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, filepath.Join("/root", "2026", "02", "03"), DayDir("/root", day))
}
