package locator

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	coreerrors "github.com/penwyp/go-codex-trace/internal/core/errors"
	"github.com/penwyp/go-codex-trace/internal/core/model"
	"github.com/penwyp/go-codex-trace/internal/data/cache"
	"github.com/penwyp/go-codex-trace/internal/data/parser"
	"github.com/penwyp/go-codex-trace/internal/data/scanner"
	"github.com/penwyp/go-codex-trace/internal/util"
)

// Query selects sessions started in Workspace between Start and End,
// inclusive. Only the calendar dates of Start and End matter.
type Query struct {
	Root      string
	Workspace string
	Start     time.Time
	End       time.Time
}

// Entry describes a matching session log.
type Entry struct {
	Path      string    `json:"path"`
	Date      time.Time `json:"date"`
	Workspace string    `json:"workspace"`
	SessionID string    `json:"session_id,omitempty"`
	// Digest is the sha256 of the canonical JSON of the header payload.
	Digest string `json:"digest,omitempty"`
}

// Locator finds session logs under a Root/YYYY/MM/DD tree. Headers are read
// through the cache when one is set.
type Locator struct {
	scanner *scanner.FileScanner
	cache   cache.Cache
}

// New creates a Locator. c may be nil.
func New(c cache.Cache) *Locator {
	return &Locator{scanner: scanner.NewFileScanner(), cache: c}
}

// Find runs q without a header cache.
func Find(q Query) ([]Entry, error) {
	return New(nil).Find(context.Background(), q)
}

// Find walks each day directory in the range and returns the sessions whose
// first record matches the workspace and whose start date falls in range.
// Results are ordered by day, then file name. Unreadable files and headers
// without a usable cwd or timestamp are skipped.
func (l *Locator) Find(ctx context.Context, q Query) ([]Entry, error) {
	start, end := DateOf(q.Start), DateOf(q.End)
	if end.Before(start) {
		return nil, coreerrors.Usagef("invalid_date_range",
			"end date %s must be greater than or equal to start date %s",
			end.Format(time.DateOnly), start.Format(time.DateOnly))
	}

	root := util.NormalizePath(q.Root)
	workspace := util.NormalizePath(q.Workspace)
	util.LogDebugf("Locating sessions for %s in %s from %s to %s",
		workspace, root, start.Format(time.DateOnly), end.Format(time.DateOnly))

	var results []Entry
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir := scanner.DayDir(root, day)
		files, err := l.scanner.ScanDir(dir)
		if err != nil {
			util.LogDebugf("Skip day directory %s: %v", dir, err)
			continue
		}
		for _, path := range files {
			header, ok := l.header(path)
			if !ok {
				continue
			}
			if entry, ok := match(path, header, workspace, start, end); ok {
				results = append(results, entry)
			}
		}
	}

	util.LogDebugf("Located %d sessions", len(results))
	return results, nil
}

func (l *Locator) header(path string) (model.Record, bool) {
	if l.cache != nil {
		if result := l.cache.Get(path); result.Found {
			return parser.DecodeHeader(result.Entry.Line)
		}
	}

	// Stat before reading so the cached size never exceeds what was read.
	info, statErr := util.GetFileInfo(path)
	line, complete, err := parser.FirstLine(path)
	if err != nil {
		util.LogDebugf("Skip unreadable file: %s - %v", path, err)
		return model.Record{}, false
	}
	if l.cache != nil && complete && statErr == nil {
		l.cache.Set(path, line, *info)
	}
	return parser.DecodeHeader(line)
}

func match(path string, header model.Record, workspace string, start, end time.Time) (Entry, bool) {
	payload := header.Payload()
	cwd := payload.Get("cwd")
	if !cwd.IsString() {
		return Entry{}, false
	}
	sessionWorkspace := util.NormalizePath(cwd.Str())
	if sessionWorkspace != workspace {
		return Entry{}, false
	}

	stamp := header.Root().Get("timestamp")
	if !stamp.IsString() {
		stamp = payload.Get("timestamp")
	}
	if !stamp.IsString() {
		return Entry{}, false
	}
	ts, err := ParseTimestamp(stamp.Str())
	if err != nil {
		util.LogDebugf("Skip %s: %v", path, err)
		return Entry{}, false
	}
	date := DateOf(ts)
	if date.Before(start) || date.After(end) {
		return Entry{}, false
	}

	entry := Entry{
		Path:      path,
		Date:      date,
		Workspace: sessionWorkspace,
		SessionID: sessionID(path, payload),
	}
	if payload.IsObject() {
		if digest, err := util.CanonicalDigest([]byte(payload.Raw())); err == nil {
			entry.Digest = digest
		}
	}
	return entry, true
}

// sessionID prefers payload.id and falls back to the UUID that ends a rollout
// file name.
func sessionID(path string, payload model.Value) string {
	if id := payload.Get("id"); id.IsString() && id.Str() != "" {
		return id.Str()
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	const uuidLen = 36
	if len(stem) < uuidLen {
		return ""
	}
	id, err := uuid.Parse(stem[len(stem)-uuidLen:])
	if err != nil {
		return ""
	}
	return id.String()
}
