package watcher

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/esmx/internal/core/domain"
	"go.trai.ch/esmx/internal/core/ports"
)

var _ ports.Watcher = (*Watcher)(nil)

// shouldSkipDirectories are directories that should not be watched.
var shouldSkipDirectories = map[string]bool{
	".git":                  true,
	".jj":                   true,
	domain.ContainerDirName: true,
}

// DefaultDebounceWindow is the default time window for debouncing file events.
const DefaultDebounceWindow = 50 * time.Millisecond

// Watcher invalidates resolved project configuration when the files it was
// derived from change on disk.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	resolver  ports.ConfigResolver
	logger    ports.Logger
	debouncer *Debouncer
}

// NewWatcher creates a new configuration watcher.
func NewWatcher(resolver ports.ConfigResolver, logger ports.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		resolver:  resolver,
		logger:    logger,
	}
	w.debouncer = NewDebouncer(DefaultDebounceWindow, w.invalidate)
	return w, nil
}

// Start begins watching the given root directory recursively.
func (w *Watcher) Start(ctx context.Context, root string) error {
	for dir := range w.watchRecursively(root) {
		if err := w.fsWatcher.Add(dir); err != nil {
			return err
		}
	}

	go w.processEvents(ctx)

	return nil
}

// Stop stops the watcher, flushes pending invalidations and releases all
// resources.
func (w *Watcher) Stop() error {
	err := w.fsWatcher.Close()
	w.debouncer.Flush()
	return err
}

// watchRecursively walks the directory tree and yields all directories.
func (w *Watcher) watchRecursively(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Continue walking even if there's an error accessing a directory.
				return nil //nolint:nilerr // This is intentional - we want to skip problematic directories
			}
			if d.IsDir() {
				if shouldSkipDirectories[d.Name()] {
					return fs.SkipDir
				}
				if !yield(path) {
					return filepath.SkipAll
				}
			}
			return nil
		})
	}
}

// processEvents filters raw fsnotify events down to configuration files and
// feeds their directories into the debouncer.
func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if isConfigFile(filepath.Base(event.Name)) {
				w.debouncer.Add(filepath.Dir(event.Name))
			}

			// New directories join the watch set so configs created later
			// are still seen.
			if event.Op&fsnotify.Create == fsnotify.Create {
				w.maybeWatchNewDir(event.Name)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watch error: " + err.Error())
		}
	}
}

func (w *Watcher) maybeWatchNewDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || shouldSkipDirectories[info.Name()] {
		return
	}
	for dir := range w.watchRecursively(path) {
		_ = w.fsWatcher.Add(dir)
	}
}

// invalidate is the debouncer callback. It drops memoized resolutions for
// every directory whose configuration changed.
func (w *Watcher) invalidate(dirs []string) {
	for _, dir := range dirs {
		w.resolver.Invalidate(dir)
		w.logger.Debug("configuration changed, invalidated: " + dir)
	}
}

// isConfigFile reports whether a file name is one the resolver reads.
func isConfigFile(name string) bool {
	if name == domain.ManifestFileName || name == domain.RCFileName {
		return true
	}
	return strings.HasPrefix(name, domain.RCFileName+".")
}
