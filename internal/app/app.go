// Package app implements the application layer for esmx.
package app

import (
	"context"
	"os"
	"path/filepath"

	"go.trai.ch/esmx/internal/adapters/cache"
	"go.trai.ch/esmx/internal/adapters/fs"
	"go.trai.ch/esmx/internal/build"
	"go.trai.ch/esmx/internal/core/domain"
	"go.trai.ch/esmx/internal/core/ports"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	resolver   ports.ConfigResolver
	probe      ports.FileProbe
	writer     *cache.Writer
	caches     *cache.Registry
	logger     ports.Logger
	tracer     ports.Tracer
	translator ports.Translator
	watcher    ports.Watcher
	version    string
}

// New creates a new App instance.
func New(
	resolver ports.ConfigResolver,
	probe ports.FileProbe,
	writer *cache.Writer,
	caches *cache.Registry,
	log ports.Logger,
	tracer ports.Tracer,
) *App {
	return &App{
		resolver: resolver,
		probe:    probe,
		writer:   writer,
		caches:   caches,
		logger:   log,
		tracer:   tracer,
		version:  build.Version,
	}
}

// WithTranslator injects the text-to-text compiler collaborator. Without
// one, cache misses fail with ErrTranslatorUnavailable.
func (a *App) WithTranslator(t ports.Translator) *App {
	a.translator = t
	return a
}

// WithVersion overrides the installed-tool version used by the activation
// gate. Primarily for tests.
func (a *App) WithVersion(v string) *App {
	a.version = v
	return a
}

// WithWatcher injects the configuration watcher used by Watch.
func (a *App) WithWatcher(w ports.Watcher) *App {
	a.watcher = w
	return a
}

// Translate resolves the project governing sourcePath and returns its
// translated form, from cache when possible. Files outside any opted-in
// project come back untouched.
func (a *App) Translate(ctx context.Context, sourcePath string) (domain.CompileResult, error) {
	_, span := a.tracer.Start(ctx, "translate")
	defer span.End()

	path, err := filepath.Abs(sourcePath)
	if err != nil {
		return domain.CompileResult{}, zerr.Wrap(err, "cannot absolutize source path")
	}
	span.SetAttribute("path", path)

	content := a.probe.ReadFile(path)
	if content == nil {
		err := zerr.With(domain.ErrSourceNotFound, "path", path)
		span.RecordError(err)
		return domain.CompileResult{}, err
	}

	cfg, err := a.resolver.Resolve(filepath.Dir(path), false)
	if err != nil {
		span.RecordError(err)
		return domain.CompileResult{}, err
	}
	if cfg == nil || !cfg.Active(a.version) {
		// No opted-in project governs this file; hand it back untouched.
		span.SetAttribute("active", false)
		return domain.CompileResult{Type: domain.TypeScript, Code: string(content)}, nil
	}

	name := domain.EntryName(path, content, cfg.Options)
	if cfg.Options.Cache {
		if res := cfg.Cache.Get(name); res != nil {
			span.SetAttribute("cache_hit", true)
			return *res, nil
		}
	}

	if a.translator == nil {
		err := zerr.With(domain.ErrTranslatorUnavailable, "path", path)
		span.RecordError(err)
		return domain.CompileResult{}, err
	}

	res, err := a.translator.Compile(string(content), domain.CompileOptions{
		CJS:          cfg.Options.CJS,
		Ext:          filepath.Ext(path),
		RuntimeAlias: domain.RuntimeAlias,
		Type:         domain.RequestType(cfg.Options.Mode),
		Var:          cfg.Options.CJS.Vars,
	})
	if err != nil {
		err = zerr.With(zerr.Wrap(err, domain.ErrTranslationFailed.Error()), "path", path)
		span.RecordError(err)
		return domain.CompileResult{}, err
	}

	cfg.Cache.Set(name, &res)
	a.persist(cfg, name, &res)

	return res, nil
}

// persist schedules the background write of one result. Only module-type
// results land on disk, and never while an activation script is being
// evaluated through the loader.
func (a *App) persist(cfg *domain.ProjectConfig, name string, res *domain.CompileResult) {
	if !cfg.Options.Cache || res.Type != domain.TypeModule {
		return
	}
	if a.resolver.Evaluating() {
		return
	}

	data := []byte(res.Code)
	target := filepath.Join(cfg.CachePath(), name)
	produce := func() ([]byte, error) { return data, nil }
	if len(data) > domain.GzipThreshold {
		target += domain.GzipSuffix
		produce = func() ([]byte, error) { return fs.Gzip(data) }
	}

	a.writer.Persist(target, produce, cache.PersistOptions{Scope: cfg.RootPath}, func(ok bool) {
		if ok {
			a.logger.Debug("persisted cache entry " + name)
		}
	})
}

// Resolve returns the project configuration governing dir, or nil when no
// project opts in.
func (a *App) Resolve(ctx context.Context, dir string, force bool) (*domain.ProjectConfig, error) {
	_, span := a.tracer.Start(ctx, "resolve")
	defer span.End()
	span.SetAttribute("dir", dir)
	span.SetAttribute("force", force)

	cfg, err := a.resolver.Resolve(dir, force)
	if err != nil {
		span.RecordError(err)
	}
	return cfg, err
}

// Clean wipes the artifact cache of the project governing dir. Resolution
// is forced so a project without a version-range declaration can still be
// cleaned from inside its tree.
func (a *App) Clean(ctx context.Context, dir string) error {
	_, span := a.tracer.Start(ctx, "clean")
	defer span.End()

	cfg, err := a.resolver.Resolve(dir, true)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if cfg == nil {
		return zerr.With(domain.ErrNoProject, "path", dir)
	}

	a.logger.Info("clearing artifact cache " + cfg.Cache.Dir())
	cfg.Cache.Clear()

	// Leftovers the cache never indexed (foreign files, empty dirs).
	if err := os.RemoveAll(cfg.Cache.Dir()); err != nil {
		return zerr.Wrap(err, "failed to remove cache directory")
	}
	return nil
}

// Keys lists the cache entry names of the project governing dir.
func (a *App) Keys(ctx context.Context, dir string) ([]string, error) {
	_, span := a.tracer.Start(ctx, "keys")
	defer span.End()

	cfg, err := a.resolver.Resolve(dir, false)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if cfg == nil {
		return nil, zerr.With(domain.ErrNoProject, "path", dir)
	}
	return cfg.Cache.Keys(), nil
}

// Watch resolves the project governing dir and watches its configuration
// files until ctx is cancelled, dropping memoized resolution results as they
// change. Resolution is forced so any tree can be watched, including one
// that only opts in later.
func (a *App) Watch(ctx context.Context, dir string) error {
	_, span := a.tracer.Start(ctx, "watch")
	defer span.End()

	if a.watcher == nil {
		return zerr.With(domain.ErrWatcherUnavailable, "path", dir)
	}

	cfg, err := a.resolver.Resolve(dir, true)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if cfg == nil {
		return zerr.With(domain.ErrNoProject, "path", dir)
	}
	span.SetAttribute("root", cfg.RootPath)

	a.logger.Info("watching configuration under " + cfg.RootPath)
	if err := a.watcher.Start(ctx, cfg.RootPath); err != nil {
		span.RecordError(err)
		return err
	}

	<-ctx.Done()
	return a.watcher.Stop()
}

// Flush drains pending background writes and makes every loaded cache's
// blob and metadata durable.
func (a *App) Flush(ctx context.Context) {
	_, span := a.tracer.Start(ctx, "flush")
	defer span.End()

	a.writer.Wait()
	a.caches.Each(func(c *cache.Cache) {
		a.writer.Flush(c)
	})
}
