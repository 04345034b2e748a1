// Package cache implements the on-disk artifact cache for translated output.
package cache

import (
	"encoding/json"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/esmx/internal/adapters/fs"
	"go.trai.ch/esmx/internal/core/domain"
	"go.trai.ch/esmx/internal/core/ports"
)

var _ domain.ArtifactCache = (*Cache)(nil)

// Span locates one entry's auxiliary payload inside the blob.
type Span struct {
	Offset int `json:"offset"`
	Length int `json:"length"`
}

// metaFile is the structure of .data.json: a format/version stamp plus the
// per-entry spans into .data.blob.
type metaFile struct {
	Version string          `json:"version"`
	Map     map[string]Span `json:"map"`
}

// ScanOptions parameterize cache validation on load.
type ScanOptions struct {
	// TranslatorVersion is the running translator's version stamp. A
	// mismatch with the persisted stamp invalidates the whole cache.
	TranslatorVersion string
	// CoverageActive reports whether coverage instrumentation is active
	// in-process. Instrumented and uninstrumented runs must not share
	// cache contents.
	CoverageActive bool
}

// Cache is the per-cache-path store of previously translated output.
// Entries are added, never individually removed; removal happens through
// expiry sweeps or wholesale invalidation.
type Cache struct {
	mu     sync.RWMutex
	dir    string
	probe  ports.FileProbe
	logger ports.Logger
	scan   ScanOptions

	blob []byte
	// index maps entry name to a materialized result, or nil for "exists
	// on disk, not yet materialized".
	index map[string]*domain.CompileResult
	meta  map[string]Span
}

// Load enumerates the cache directory once, validates it, and returns the
// cache. Integrity conditions are recovered internally by wholesale
// invalidation and never surfaced.
func Load(dir string, probe ports.FileProbe, logger ports.Logger, scan ScanOptions) *Cache {
	c := &Cache{
		dir:    filepath.Clean(dir),
		probe:  probe,
		logger: logger,
		scan:   scan,
		index:  make(map[string]*domain.CompileResult),
		meta:   make(map[string]Span),
	}
	c.load()
	return c
}

func (c *Cache) load() {
	names := c.probe.ReadDir(c.dir)
	if names == nil {
		// Nothing persisted yet.
		return
	}

	var dirty, marker, hasMeta bool
	for _, name := range names {
		switch name {
		case domain.BlobFileName:
		case domain.MetaFileName:
			hasMeta = true
		case domain.DirtyMarkerName:
			dirty = true
		case domain.CoverageMarkerName:
			marker = true
		default:
			if !strings.HasPrefix(name, ".") {
				c.index[name] = nil
			}
		}
	}

	var mf metaFile
	metaOK := false
	if hasMeta {
		if data := c.probe.ReadFile(filepath.Join(c.dir, domain.MetaFileName)); data != nil {
			metaOK = json.Unmarshal(data, &mf) == nil
		}
	}

	// Markers are transient signals, cleared once observed.
	if dirty {
		c.probe.Remove(filepath.Join(c.dir, domain.DirtyMarkerName))
	}
	if marker && !c.scan.CoverageActive {
		c.probe.Remove(filepath.Join(c.dir, domain.CoverageMarkerName))
	}

	// Payload entries are only trustworthy under a readable version stamp
	// that matches the running translator. A missing stamp with entries
	// present means a flush never completed.
	invalid := dirty ||
		marker != c.scan.CoverageActive ||
		(!metaOK && (hasMeta || len(c.index) > 0)) ||
		(metaOK && mf.Version != c.scan.TranslatorVersion)

	if invalid {
		c.logger.Debug("artifact cache invalid, discarding " + c.dir)
		c.purge()
		return
	}

	if data := c.probe.ReadFile(filepath.Join(c.dir, domain.BlobFileName)); data != nil {
		c.blob = data
	}
	if mf.Map != nil {
		c.meta = mf.Map
	}
}

// purge removes every known entry, the blob, and the metadata from disk and
// memory, then sweeps the co-located secondary transpiler's stale cache
// files in the sibling cache directory.
func (c *Cache) purge() {
	for name := range c.index {
		c.probe.Remove(filepath.Join(c.dir, name))
	}
	c.probe.Remove(filepath.Join(c.dir, domain.BlobFileName))
	c.probe.Remove(filepath.Join(c.dir, domain.MetaFileName))
	c.index = make(map[string]*domain.CompileResult)
	c.meta = make(map[string]Span)
	c.blob = nil

	babelDir := filepath.Join(filepath.Dir(c.dir), domain.BabelCacheDirName)
	for _, name := range c.probe.ReadDir(babelDir) {
		if strings.HasSuffix(name, ".json") {
			c.probe.Remove(filepath.Join(babelDir, name))
		}
	}
}

// Dir returns the cache directory on disk.
func (c *Cache) Dir() string {
	return c.dir
}

// Get returns the cached result for an entry name, materializing it from
// disk on first access. A missing or unreadable entry returns nil.
func (c *Cache) Get(name string) *domain.CompileResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	actual := name
	res, ok := c.index[actual]
	if !ok {
		// Large payloads are stored gzip-framed; the suffix is the
		// source of truth.
		actual = name + domain.GzipSuffix
		res, ok = c.index[actual]
	}
	if !ok {
		return nil
	}
	if res != nil {
		return res
	}

	data := c.probe.ReadFile(filepath.Join(c.dir, actual))
	if data == nil {
		delete(c.index, actual)
		return nil
	}
	if strings.HasSuffix(actual, domain.GzipSuffix) {
		plain, err := fs.Gunzip(data)
		if err != nil {
			c.logger.Debug("dropping undecodable cache entry " + actual)
			c.probe.Remove(filepath.Join(c.dir, actual))
			delete(c.index, actual)
			return nil
		}
		data = plain
	}

	res = &domain.CompileResult{Type: domain.TypeModule, Code: string(data)}
	// A corrupt span is ignored; the entry is still served without its
	// auxiliary payload.
	if span, ok := c.meta[actual]; ok && span.Offset >= 0 && span.Length >= 0 && span.Offset+span.Length <= len(c.blob) {
		res.Map = c.blob[span.Offset : span.Offset+span.Length]
	}
	c.index[actual] = res
	return res
}

// Set registers a freshly computed result in memory. Auxiliary payload
// bytes are appended to the blob (never modified in place) and become
// durable at the next metadata flush.
func (c *Cache) Set(name string, res *domain.CompileResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.index[name] = res
	if len(res.Map) > 0 {
		span := Span{Offset: len(c.blob), Length: len(res.Map)}
		c.blob = append(c.blob, res.Map...)
		c.meta[name] = span
	}
}

// Keys returns the known entry names in sorted order.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.index))
	for name := range c.index {
		keys = append(keys, name)
	}
	slices.Sort(keys)
	return keys
}

// Clear wipes the cache on disk and in memory.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purge()
	c.probe.Remove(filepath.Join(c.dir, domain.DirtyMarkerName))
	c.probe.Remove(filepath.Join(c.dir, domain.CoverageMarkerName))
}

// snapshot copies the blob and metadata for a flush.
func (c *Cache) snapshot() ([]byte, metaFile) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	blob := make([]byte, len(c.blob))
	copy(blob, c.blob)
	m := make(map[string]Span, len(c.meta))
	for k, v := range c.meta {
		m[k] = v
	}
	return blob, metaFile{Version: c.scan.TranslatorVersion, Map: m}
}

func (c *Cache) coverageActive() bool {
	return c.scan.CoverageActive
}
