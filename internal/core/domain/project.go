package domain

import (
	"sync"

	"github.com/Masterminds/semver/v3"
)

// RangeAll is the sentinel version range gating nothing: every installed
// revision activates.
const RangeAll = "*"

// ArtifactCache is the per-project store of previously translated output.
// The concrete implementation lives in internal/adapters/cache.
type ArtifactCache interface {
	// Get returns the cached result for an entry name, materializing it
	// from disk on first access. Nil means not cached.
	Get(name string) *CompileResult
	// Set registers a freshly computed result in memory and records its
	// auxiliary payload for the next metadata flush.
	Set(name string, res *CompileResult)
	// Keys returns the known entry names in sorted order.
	Keys() []string
	// Dir returns the cache directory on disk.
	Dir() string
	// Clear wipes the cache on disk and in memory.
	Clear()
}

// ProjectConfig is the resolved activation settings of one project root.
// At most one instance exists per resolved directory; instances live for
// the process lifetime.
type ProjectConfig struct {
	// RootPath is the absolute project root, the unit of cache isolation.
	RootPath string
	// VersionRange gates whether translation activates for files under
	// RootPath. RangeAll disables the gate.
	VersionRange string
	// Options is the immutable, fully-defaulted settings record.
	Options Options
	// Cache is the owning reference to the project's artifact cache.
	// Projects resolving to the same cache path share one instance.
	Cache ArtifactCache

	gateOnce sync.Once
	gate     *semver.Constraints
}

// Active reports whether the given installed version satisfies the
// project's version range. The constraint is parsed once and memoized.
// An unparsable range gates to inactive: a malformed declaration in a
// user manifest must not break loading of untranslated files.
func (p *ProjectConfig) Active(version string) bool {
	if p.VersionRange == RangeAll {
		return true
	}
	p.gateOnce.Do(func() {
		c, err := semver.NewConstraint(p.VersionRange)
		if err == nil {
			p.gate = c
		}
	})
	if p.gate == nil {
		return false
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return p.gate.Check(v)
}

// CachePath returns the on-disk cache directory for the project, honoring
// an options-level override relative to the project root.
func (p *ProjectConfig) CachePath() string {
	return ResolveCachePath(p.RootPath, p.Options)
}
