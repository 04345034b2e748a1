package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/esmx/internal/core/domain"
	"go.trai.ch/esmx/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentWrites bounds the background persistence tasks in flight.
const maxConcurrentWrites = 4

// PersistOptions scope one deferred write.
type PersistOptions struct {
	// Scope is the directory the write must stay under, normally the
	// project root. Writes escaping it are rejected before any content
	// is produced.
	Scope string
}

// Writer persists newly produced artifacts asynchronously. Persistence is
// fire-and-forget: failures are logged and swallowed, never escalated,
// since the in-memory result already served the caller. Concurrency is
// bounded inside the spawned task so scheduling a write never blocks the
// caller, no matter how many writes are in flight.
type Writer struct {
	probe  ports.FileProbe
	logger ports.Logger
	g      errgroup.Group
	sem    chan struct{}
}

// NewWriter creates a new Writer.
func NewWriter(probe ports.FileProbe, logger ports.Logger) *Writer {
	return &Writer{
		probe:  probe,
		logger: logger,
		sem:    make(chan struct{}, maxConcurrentWrites),
	}
}

// Persist schedules a deferred, scoped write of one cache entry. Content is
// produced lazily, only once the write is known to proceed. On success
// done(true) fires and stale siblings sharing the entry's name prefix are
// expired; on failure done(false) fires and nothing else happens.
func (w *Writer) Persist(path string, produce func() ([]byte, error), opts PersistOptions, done func(bool)) {
	w.g.Go(func() error {
		completed := false
		defer func() {
			// Failures stop at the task boundary.
			if r := recover(); r != nil {
				w.logger.Warn(fmt.Sprintf("cache write panicked: %v", r))
				if done != nil && !completed {
					done(false)
				}
			}
		}()

		w.sem <- struct{}{}
		defer func() { <-w.sem }()

		ok := w.write(path, produce, opts)
		completed = true
		if done != nil {
			done(ok)
		}
		if ok {
			w.expireSiblings(path)
		}
		return nil
	})
}

func (w *Writer) write(path string, produce func() ([]byte, error), opts PersistOptions) bool {
	if !inScope(path, opts.Scope) {
		err := zerr.With(domain.ErrScopeViolation, "path", path)
		w.logger.Warn(zerr.With(err, "scope", opts.Scope).Error())
		return false
	}

	// A concurrent writer may have produced an identical entry already;
	// skip the (possibly compressed) production in that case.
	if w.probe.Exists(path) {
		return true
	}

	data, err := produce()
	if err != nil {
		w.logger.Debug("cache payload production failed: " + err.Error())
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		w.logger.Debug("cache directory creation failed: " + err.Error())
		return false
	}
	//nolint:gosec // Path was checked against the declared scope above
	if err := os.WriteFile(path, data, domain.FilePerm); err != nil {
		w.logger.Debug("cache write failed: " + err.Error())
		return false
	}
	return true
}

// expireSiblings removes every entry sharing the freshly written entry's
// prefix: prior compiled output for the same file under now-obsolete
// options or content. Concurrent sweeps may race; an already-absent target
// is a no-op.
func (w *Writer) expireSiblings(path string) {
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	prefix := domain.KeyPrefix(name)

	for _, f := range w.probe.ReadDir(dir) {
		if f == name || strings.HasPrefix(f, ".") {
			continue
		}
		if domain.KeyPrefix(f) == prefix {
			w.probe.Remove(filepath.Join(dir, f))
		}
	}
}

// Flush makes a cache's blob and metadata durable under the dirty-marker
// protocol: the marker is written first and removed only after both files
// landed, so a crash mid-flush invalidates the cache wholesale on the next
// load instead of serving torn state.
func (w *Writer) Flush(c *Cache) {
	blob, mf := c.snapshot()
	dir := c.Dir()

	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		w.logger.Debug("cache flush failed: " + err.Error())
		return
	}
	dirtyPath := filepath.Join(dir, domain.DirtyMarkerName)
	if err := os.WriteFile(dirtyPath, nil, domain.FilePerm); err != nil {
		w.logger.Debug("cache flush failed: " + err.Error())
		return
	}

	meta, err := json.Marshal(mf)
	if err == nil {
		err = os.WriteFile(filepath.Join(dir, domain.BlobFileName), blob, domain.FilePerm)
	}
	if err == nil {
		err = os.WriteFile(filepath.Join(dir, domain.MetaFileName), meta, domain.FilePerm)
	}
	if err != nil {
		// Leave the dirty marker in place.
		w.logger.Debug("cache flush failed: " + err.Error())
		return
	}

	nycPath := filepath.Join(dir, domain.CoverageMarkerName)
	if c.coverageActive() {
		_ = os.WriteFile(nycPath, nil, domain.FilePerm)
	} else {
		w.probe.Remove(nycPath)
	}
	w.probe.Remove(dirtyPath)
}

// Wait blocks until every scheduled write has finished.
func (w *Writer) Wait() {
	_ = w.g.Wait()
}

// inScope reports whether path stays under the declared scope directory.
func inScope(path, scope string) bool {
	if scope == "" {
		return false
	}
	rel, err := filepath.Rel(filepath.Clean(scope), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
