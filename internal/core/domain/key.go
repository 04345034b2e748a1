package domain

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
)

// KeyPrefixLen is the length of the per-source prefix shared by every entry
// for the same logical source location. The prefix is what the expiry sweep
// matches stale siblings on.
const KeyPrefixLen = 8

// EntryName derives the deterministic cache-entry name for a source file:
// an 8-char prefix from the source location, then a hash of the content and
// the compile-affecting option set, so source edits and option changes
// invalidate independently.
func EntryName(sourcePath string, content []byte, opts Options) string {
	loc := xxhash.Sum64String(filepath.Clean(sourcePath))
	prefix := fmt.Sprintf("%016x", loc)[:KeyPrefixLen]

	d := xxhash.New()
	_, _ = d.Write(content)
	_, _ = d.Write([]byte{0})
	_, _ = d.Write(optionsFingerprint(opts))
	return prefix + fmt.Sprintf("%016x", d.Sum64()) + EntrySuffix
}

// KeyPrefix returns the source-location prefix of an entry name.
func KeyPrefix(name string) string {
	if len(name) < KeyPrefixLen {
		return name
	}
	return name[:KeyPrefixLen]
}

// optionsFingerprint canonicalizes the options that affect translator
// output. Cache, debug, and warnings settings change behavior around the
// translation, not the translation itself, and are excluded.
func optionsFingerprint(opts Options) []byte {
	fp, _ := json.Marshal(struct {
		Await      bool       `json:"await"`
		CJS        CJSOptions `json:"cjs"`
		MainFields []string   `json:"mainFields"`
		Mode       Mode       `json:"mode"`
		SourceMap  bool       `json:"sourceMap"`
	}{opts.Await, opts.CJS, opts.MainFields, opts.Mode, opts.SourceMap})
	return fp
}

// ResolveCachePath returns the cache directory for a root and option set:
// the options-level path override (relative paths rooted at the project
// root), or the default container location.
func ResolveCachePath(root string, opts Options) string {
	if opts.CachePath == "" {
		return DefaultCachePath(root)
	}
	if filepath.IsAbs(opts.CachePath) {
		return filepath.Clean(opts.CachePath)
	}
	return filepath.Clean(filepath.Join(root, opts.CachePath))
}
