// Package watch runs an action whenever a file changes on disk.
package watch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file must stay quiet before the action runs.
const DefaultDebounce = 200 * time.Millisecond

// Options configures [File].
type Options struct {
	// Debounce collapses bursts of events into one call. Zero means
	// DefaultDebounce.
	Debounce time.Duration
	// Logger receives watcher diagnostics. Nil discards them.
	Logger *log.Logger
	// Ready, if set, is called once the watch is in place.
	Ready func()
}

// File calls fn each time path is written, created or replaced, once per
// burst of events, until ctx is cancelled.
//
// The parent directory is watched rather than the file, so saves that write
// a temporary file and rename it over path are seen, as is a file that does
// not exist yet.
func File(ctx context.Context, path string, opts Options, fn func(ctx context.Context)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	logger.Debug("watcher: started", "path", abs)
	if opts.Ready != nil {
		opts.Ready()
	}

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Debug("watcher: stopped", "path", abs)
			return nil

		case <-fire:
			logger.Debug("watcher: changed", "path", abs)
			fn(ctx)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("watcher: event", "op", ev.Op.String(), "path", ev.Name)
			schedule()

		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", "err", werr)
		}
	}
}
