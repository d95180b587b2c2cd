// Package watcher observes the inbox directory for compiled symbol-table
// drops and hands settled files to the profile pipeline.
package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"

	"profilegen/internal/shared/observability"
)

type Watcher struct {
	fsWatcher *fsnotify.Watcher
	dir       string
	include   glob.Glob
	debounce  time.Duration
	onFiles   func([]string)

	callbackMu sync.Mutex
	pending    map[string]time.Time
	pendingMu  sync.Mutex
	timer      *time.Timer
}

// New creates a watcher over dir. pattern is a glob matched against file
// base names (e.g. "*.json"). onFiles receives batches of settled paths
// after the debounce window closes.
func New(dir, pattern string, debounce time.Duration, onFiles func([]string)) (*Watcher, error) {
	if onFiles == nil {
		return nil, os.ErrInvalid
	}
	include, err := glob.Compile(pattern)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fsWatcher: fsw,
		dir:       dir,
		include:   include,
		debounce:  debounce,
		onFiles:   onFiles,
		pending:   make(map[string]time.Time),
	}, nil
}

// Start watches the inbox. Files already present are scheduled immediately
// so a pre-filled drop directory is drained on startup.
func (w *Watcher) Start() error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	if err := w.fsWatcher.Add(w.dir); err != nil {
		return err
	}

	w.enqueueExistingFiles()
	go w.loop()

	slog.Info("inbox watcher started", "dir", w.dir)
	return nil
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			observability.InboxEventsTotal.Inc()

			if !w.matches(event.Name) {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create {
				w.scheduleFile(event.Name)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Error("inbox watcher error", "error", err)
		}
	}
}

func (w *Watcher) matches(path string) bool {
	return w.include.Match(filepath.Base(path))
}

func (w *Watcher) scheduleFile(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = time.Now()

	if w.timer != nil {
		w.timer.Stop()
	}

	w.timer = time.AfterFunc(w.debounce, func() {
		w.flush()
	})
}

func (w *Watcher) flush() {
	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]time.Time)
	w.pendingMu.Unlock()

	sort.Strings(paths)

	if len(paths) > 0 {
		w.callbackMu.Lock()
		defer w.callbackMu.Unlock()
		w.onFiles(paths)
	}
}

func (w *Watcher) enqueueExistingFiles() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		slog.Warn("failed to scan inbox", "dir", w.dir, "error", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if w.matches(path) {
			w.scheduleFile(path)
		}
	}
}

func (w *Watcher) Close() error {
	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()
	return w.fsWatcher.Close()
}
