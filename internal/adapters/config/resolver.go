// Package config implements project configuration resolution for esmx.
package config

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"go.trai.ch/esmx/internal/adapters/cache"
	"go.trai.ch/esmx/internal/core/domain"
	"go.trai.ch/esmx/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ConfigResolver = (*Resolver)(nil)

// memoEntry is a resolution result. A present entry with a nil config is
// the explicit absent marker, distinct from "not yet resolved".
type memoEntry struct {
	cfg *domain.ProjectConfig
}

// Resolver discovers and merges per-project activation settings by walking
// a directory's ancestry. It owns the process-wide resolution memo.
type Resolver struct {
	probe     ports.FileProbe
	logger    ports.Logger
	caches    *cache.Registry
	evaluator ports.ScriptEvaluator

	mu   sync.RWMutex
	memo map[string]*memoEntry

	evalDepth atomic.Int32
}

// NewResolver creates a new Resolver.
func NewResolver(probe ports.FileProbe, logger ports.Logger, caches *cache.Registry) *Resolver {
	return &Resolver{
		probe:  probe,
		logger: logger,
		caches: caches,
		memo:   make(map[string]*memoEntry),
	}
}

// WithEvaluator configures the collaborator that evaluates executable
// activation files. Without one, script-form activation files fail
// resolution visibly.
func (r *Resolver) WithEvaluator(e ports.ScriptEvaluator) *Resolver {
	r.evaluator = e
	return r
}

// Resolve returns the project configuration governing dirPath, or nil when
// no project opts in. Results, including negative ones, are memoized per
// directory; force retries a memoized negative and always yields a
// best-effort configuration at the original path.
func (r *Resolver) Resolve(dirPath string, force bool) (*domain.ProjectConfig, error) {
	dir := filepath.Clean(dirPath)

	r.mu.RLock()
	entry, ok := r.memo[dir]
	r.mu.RUnlock()
	if ok && !(force && entry.cfg == nil) {
		return entry.cfg, nil
	}

	cfg, walked, err := r.resolve(dir, force)
	if err != nil {
		// Option validation failures are the caller's mistake; they
		// propagate and are never memoized.
		return nil, err
	}

	r.mu.Lock()
	for _, d := range walked {
		r.memo[d] = &memoEntry{cfg: cfg}
	}
	r.mu.Unlock()
	return cfg, nil
}

// resolve walks from dir toward the filesystem root until a directory
// yields configuration. It returns every directory it visited so all of
// them memoize to the same result.
func (r *Resolver) resolve(dir string, force bool) (*domain.ProjectConfig, []string, error) {
	visited := make(map[string]bool)
	var walked []string

	current := dir
	for {
		// Symlinked ancestry could cycle; treat a revisit like
		// reaching the root.
		if visited[current] {
			return nil, walked, nil
		}
		visited[current] = true
		walked = append(walked, current)

		// The dependency container itself is never a project.
		if filepath.Base(current) == domain.ContainerDirName {
			return nil, walked, nil
		}

		opts, optsFound, err := r.readActivation(current)
		if err != nil {
			return nil, nil, err
		}

		man := r.readManifest(current)
		if !optsFound && man != nil {
			if field, ok := man.optionsField(); ok {
				opts, optsFound = field, true
			}
		}

		forced := force && current == dir
		if man == nil && !optsFound && !forced {
			parent := filepath.Dir(current)
			if parent == current {
				return nil, walked, nil
			}
			current = parent
			continue
		}

		cfg, err := r.materialize(current, man, opts, optsFound, forced)
		return cfg, walked, err
	}
}

// materialize builds the ProjectConfig for a directory that yielded
// configuration, or returns nil when no version range gates it in.
func (r *Resolver) materialize(
	current string,
	man *Manifest,
	opts domain.RawOptions,
	optsFound, forced bool,
) (*domain.ProjectConfig, error) {
	// Promote the root to the manifest that governs this directory when
	// the configuration sat below it.
	root, rootMan := current, man
	if man == nil {
		root, rootMan = r.findManifestRoot(current)
	}

	rng := domain.RangeAll
	if !forced {
		rng = ""
		if rootMan != nil {
			rng = rootMan.versionRange(optsFound)
		}
		if rng == "" {
			// No version range can be established: not a project.
			return nil, nil
		}
	}

	options := domain.ImplicitOptions()
	if optsFound {
		var err error
		if options, err = domain.MergeOptions(opts); err != nil {
			return nil, err
		}
	}

	// Subdirectories may carry their own activation file and so resolve to
	// distinct option sets under the same root; only the artifact cache is
	// shared, keyed on the resolved cache path by the registry.
	return &domain.ProjectConfig{
		RootPath:     root,
		VersionRange: rng,
		Options:      options,
		Cache:        r.caches.For(domain.ResolveCachePath(root, options)),
	}, nil
}

// readActivation reads the directory's activation file in either form.
// Executable configs are evaluated through the host loader inside a scoped
// re-entrancy guard.
func (r *Resolver) readActivation(dir string) (domain.RawOptions, bool, error) {
	file, ok := findActivation(r.probe, dir)
	if !ok {
		return nil, false, nil
	}

	if file.kind == kindScript {
		if r.evaluator == nil {
			return nil, false, zerr.With(domain.ErrConfigEvalUnavailable, "path", file.path)
		}
		r.evalDepth.Add(1)
		defer r.evalDepth.Add(-1)

		raw, err := r.evaluator.Eval(file.path)
		if err != nil {
			err = zerr.Wrap(err, domain.ErrConfigEvalFailed.Error())
			return nil, false, zerr.With(err, "path", file.path)
		}
		return raw, true, nil
	}

	data := r.probe.ReadFile(file.path)
	if data == nil {
		return nil, false, zerr.With(domain.ErrConfigReadFailed, "path", file.path)
	}
	raw, err := parseActivation(file.kind, data)
	if err != nil {
		return nil, false, zerr.With(err, "path", file.path)
	}
	return raw, true, nil
}

// readManifest parses the directory's dependency manifest. A malformed
// manifest is treated as absent; the project simply does not opt in.
func (r *Resolver) readManifest(dir string) *Manifest {
	data := r.probe.ReadFile(filepath.Join(dir, domain.ManifestFileName))
	if data == nil {
		return nil
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		r.logger.Debug(domain.ErrManifestParseFailed.Error() + ": " + filepath.Join(dir, domain.ManifestFileName))
		return nil
	}
	return &m
}

// findManifestRoot returns the nearest ancestor holding a manifest, or the
// nearest ancestor whose parent is the dependency container, or dir itself.
func (r *Resolver) findManifestRoot(dir string) (string, *Manifest) {
	fallback := ""
	current := dir
	for {
		if m := r.readManifest(current); m != nil {
			return current, m
		}
		parent := filepath.Dir(current)
		if fallback == "" && filepath.Base(parent) == domain.ContainerDirName {
			fallback = current
		}
		if parent == current {
			break
		}
		current = parent
	}
	if fallback != "" {
		return fallback, nil
	}
	return dir, nil
}

// Invalidate drops memoized results at or under root.
func (r *Resolver) Invalidate(root string) {
	root = filepath.Clean(root)
	prefix := root + string(filepath.Separator)

	r.mu.Lock()
	defer r.mu.Unlock()
	for dir := range r.memo {
		if dir == root || strings.HasPrefix(dir, prefix) {
			delete(r.memo, dir)
		}
	}
}

// Evaluating reports whether an activation script is being evaluated right
// now. Cache writes are suppressed for the duration.
func (r *Resolver) Evaluating() bool {
	return r.evalDepth.Load() > 0
}
