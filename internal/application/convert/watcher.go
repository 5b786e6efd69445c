package convert

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/penwyp/go-codex-trace/internal/util"
)

// DefaultDebounce coalesces bursts of appends into one re-render.
const DefaultDebounce = 300 * time.Millisecond

// Watcher re-renders inputs to their planned outputs whenever they change.
type Watcher struct {
	watcher  *fsnotify.Watcher
	conv     *Converter
	targets  map[string]string
	debounce time.Duration
	// OnRender is called after every re-render attempt.
	OnRender func(Result)
}

// NewWatcher watches the parent directories of the inputs in results.
// Directories are watched rather than files so replaced files keep being
// tracked.
func (c *Converter) NewWatcher(results []Result, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		watcher:  fsw,
		conv:     c,
		targets:  make(map[string]string, len(results)),
		debounce: debounce,
	}
	dirs := make(map[string]struct{})
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		w.targets[filepath.Clean(r.Input)] = r.Output
		dirs[filepath.Dir(r.Input)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Run processes events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			name := filepath.Clean(event.Name)
			if _, tracked := w.targets[name]; !tracked {
				continue
			}
			pending[name] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			util.LogError("File monitoring error: " + err.Error())

		case <-timer.C:
			for input := range pending {
				w.render(input)
			}
			clear(pending)
		}
	}
}

func (w *Watcher) render(input string) {
	result := Result{Input: input, Output: w.targets[input]}
	result.Records, result.Err = w.conv.ConvertFile(result.Input, result.Output)
	if result.Err != nil {
		util.LogWarnf("Re-render failed for %s: %v", input, result.Err)
	} else {
		util.LogInfof("Re-rendered %s (%d records)", result.Output, result.Records)
	}
	if w.OnRender != nil {
		w.OnRender(result)
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
