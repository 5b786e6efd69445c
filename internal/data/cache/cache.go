package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-codex-trace/internal/util"
)

const (
	indexFile    = "headers.json"
	indexVersion = 1
)

type CacheMissReason int

const (
	MissReasonNone CacheMissReason = iota
	MissReasonError
	MissReasonInode
	MissReasonSize
	MissReasonNotFound
)

func (r CacheMissReason) String() string {
	switch r {
	case MissReasonNone:
		return "none"
	case MissReasonError:
		return "error"
	case MissReasonInode:
		return "inode"
	case MissReasonSize:
		return "size"
	case MissReasonNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// HeaderEntry is the cached first line of one session log together with the
// file revision it was read from.
type HeaderEntry struct {
	Path string `json:"path"`
	Line string `json:"line"`
	util.FileInfo
}

type CacheResult struct {
	Entry      *HeaderEntry
	Found      bool
	MissReason CacheMissReason
}

// Cache stores session headers keyed by log path.
type Cache interface {
	Get(path string) CacheResult
	Set(path, line string, info util.FileInfo)
	Clear() error
	Preload() error
	Flush() error
}

type index struct {
	Version int            `json:"version"`
	Entries []*HeaderEntry `json:"entries"`
}

// FileCache keeps headers in memory and persists them as a single JSON index
// under baseDir. Entries stay valid while the log keeps its inode and does not
// shrink; only newline-terminated first lines are ever stored, so appends
// cannot change them.
type FileCache struct {
	baseDir string
	mu      sync.Mutex
	entries map[string]*HeaderEntry
	dirty   bool
}

func NewFileCache(baseDir string) (*FileCache, error) {
	if err := util.EnsureDir(baseDir); err != nil {
		return nil, err
	}

	return &FileCache{
		baseDir: baseDir,
		entries: make(map[string]*HeaderEntry),
	}, nil
}

func (c *FileCache) indexPath() string {
	return filepath.Join(c.baseDir, indexFile)
}

func (c *FileCache) Get(path string) CacheResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[path]
	if !exists {
		return CacheResult{MissReason: MissReasonNotFound}
	}

	if reason := validate(entry); reason != MissReasonNone {
		delete(c.entries, path)
		c.dirty = true
		return CacheResult{MissReason: reason}
	}
	return CacheResult{Entry: entry, Found: true}
}

func validate(entry *HeaderEntry) CacheMissReason {
	current, err := util.GetFileInfo(entry.Path)
	if err != nil {
		util.LogDebugf("Cache validation failed for %s: unable to get file info: %v", entry.Path, err)
		return MissReasonError
	}
	if current.Inode != entry.Inode {
		util.LogDebugf("Cache invalidated for %s: inode changed (cached: %d, current: %d)",
			entry.Path, entry.Inode, current.Inode)
		return MissReasonInode
	}
	if !current.Extends(entry.FileInfo) {
		util.LogDebugf("Cache invalidated for %s: file shrank (cached: %d, current: %d)",
			entry.Path, entry.Size, current.Size)
		return MissReasonSize
	}
	return MissReasonNone
}

func (c *FileCache) Set(path, line string, info util.FileInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[path] = &HeaderEntry{Path: path, Line: line, FileInfo: info}
	c.dirty = true
}

// Clear drops every entry and removes the persisted index.
func (c *FileCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*HeaderEntry)
	c.dirty = false
	if err := os.Remove(c.indexPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove cache index: %w", err)
	}
	return nil
}

// Preload reads the persisted index into memory. A missing index is an empty
// cache; a corrupt one is discarded.
func (c *FileCache) Preload() error {
	data, err := os.ReadFile(c.indexPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			util.LogDebug("Header cache is empty, skipping preload")
			return nil
		}
		return fmt.Errorf("read cache index: %w", err)
	}

	var idx index
	if err := sonic.Unmarshal(data, &idx); err != nil || idx.Version != indexVersion {
		util.LogWarnf("Discarding unreadable header cache %s", c.indexPath())
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, entry := range idx.Entries {
		if entry == nil || entry.Path == "" {
			continue
		}
		c.entries[entry.Path] = entry
	}
	util.LogDebugf("Header cache preloaded: %d entries", len(idx.Entries))
	return nil
}

// Flush persists the index when it changed since the last load or flush.
func (c *FileCache) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return nil
	}

	idx := index{Version: indexVersion, Entries: make([]*HeaderEntry, 0, len(c.entries))}
	for _, entry := range c.entries {
		idx.Entries = append(idx.Entries, entry)
	}
	sort.Slice(idx.Entries, func(i, j int) bool {
		return idx.Entries[i].Path < idx.Entries[j].Path
	})

	data, err := sonic.Marshal(idx)
	if err != nil {
		return fmt.Errorf("encode cache index: %w", err)
	}
	if err := util.WriteFileAtomic(c.indexPath(), data, 0644); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

// Len reports the number of entries held in memory.
func (c *FileCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
