package cache

import (
	"path/filepath"
	"sync"

	"go.trai.ch/esmx/internal/core/ports"
)

// Registry collapses duplicate cache paths to a single Cache instance.
// It is the process-wide cache context: created once at wiring time, alive
// until process exit, no teardown.
type Registry struct {
	mu     sync.Mutex
	probe  ports.FileProbe
	logger ports.Logger
	scan   ScanOptions
	caches map[string]*Cache
}

// NewRegistry creates the process-wide cache registry.
func NewRegistry(probe ports.FileProbe, logger ports.Logger, scan ScanOptions) *Registry {
	return &Registry{
		probe:  probe,
		logger: logger,
		scan:   scan,
		caches: make(map[string]*Cache),
	}
}

// For returns the cache for a path, loading it on first use. Multiple
// project roots configured with the same cache path share one instance.
func (r *Registry) For(cachePath string) *Cache {
	key := filepath.Clean(cachePath)

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.caches[key]; ok {
		return c
	}
	c := Load(key, r.probe, r.logger, r.scan)
	r.caches[key] = c
	return c
}

// Each visits every loaded cache.
func (r *Registry) Each(fn func(*Cache)) {
	r.mu.Lock()
	caches := make([]*Cache, 0, len(r.caches))
	for _, c := range r.caches {
		caches = append(caches, c)
	}
	r.mu.Unlock()

	for _, c := range caches {
		fn(c)
	}
}
