package app_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/esmx/internal/adapters/cache"
	"go.trai.ch/esmx/internal/adapters/config"
	"go.trai.ch/esmx/internal/adapters/fs"
	"go.trai.ch/esmx/internal/adapters/telemetry"
	"go.trai.ch/esmx/internal/app"
	"go.trai.ch/esmx/internal/core/domain"
	"go.trai.ch/esmx/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const toolVersion = "3.2.0"

type quietLogger struct{}

func (quietLogger) Debug(string) {}
func (quietLogger) Info(string)  {}
func (quietLogger) Warn(string)  {}
func (quietLogger) Error(error)  {}

type fixture struct {
	app    *app.App
	writer *cache.Writer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	probe := fs.NewProbe()
	log := quietLogger{}
	caches := cache.NewRegistry(probe, log, cache.ScanOptions{TranslatorVersion: toolVersion})
	resolver := config.NewResolver(probe, log, caches)
	writer := cache.NewWriter(probe, log)

	a := app.New(resolver, probe, writer, caches, log, telemetry.NewNoOpTracer()).
		WithVersion(toolVersion)
	return &fixture{app: a, writer: writer}
}

// writeProject lays out a manifest opting into translation plus one source.
func writeProject(t *testing.T, root, source string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(
		filepath.Join(root, domain.ManifestFileName),
		[]byte(`{"name":"demo","dependencies":{"esmx":"^3.0.0"}}`),
		0o644,
	))
	path := filepath.Join(root, "index.js")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func TestApp_Translate_CompileOnceThenCacheHit(t *testing.T) {
	root := t.TempDir()
	f := newFixture(t)
	path := writeProject(t, root, `import x from "y"`)

	ctrl := gomock.NewController(t)
	translator := mocks.NewMockTranslator(ctrl)
	translator.EXPECT().
		Compile(`import x from "y"`, gomock.Any()).
		Return(domain.CompileResult{Type: domain.TypeModule, Code: `const x = require("y")`}, nil).
		Times(1)
	f.app.WithTranslator(translator)

	ctx := context.Background()
	first, err := f.app.Translate(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, domain.TypeModule, first.Type)
	assert.Equal(t, `const x = require("y")`, first.Code)

	// Second call must be served from cache; the mock allows one Compile.
	second, err := f.app.Translate(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, first.Code, second.Code)
}

func TestApp_Translate_ModuleResultPersisted(t *testing.T) {
	root := t.TempDir()
	f := newFixture(t)
	path := writeProject(t, root, `export default 1`)

	ctrl := gomock.NewController(t)
	translator := mocks.NewMockTranslator(ctrl)
	translator.EXPECT().
		Compile(gomock.Any(), gomock.Any()).
		Return(domain.CompileResult{Type: domain.TypeModule, Code: "module.exports = 1"}, nil)
	f.app.WithTranslator(translator)

	_, err := f.app.Translate(context.Background(), path)
	require.NoError(t, err)
	f.writer.Wait()

	entries, err := os.ReadDir(domain.DefaultCachePath(root))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Ext(entries[0].Name()), domain.EntrySuffix)
}

func TestApp_Translate_ScriptResultNotPersisted(t *testing.T) {
	root := t.TempDir()
	f := newFixture(t)
	path := writeProject(t, root, `module.exports = 1`)

	ctrl := gomock.NewController(t)
	translator := mocks.NewMockTranslator(ctrl)
	translator.EXPECT().
		Compile(gomock.Any(), gomock.Any()).
		Return(domain.CompileResult{Type: domain.TypeScript, Code: "module.exports = 1"}, nil)
	f.app.WithTranslator(translator)

	_, err := f.app.Translate(context.Background(), path)
	require.NoError(t, err)
	f.writer.Wait()

	_, err = os.ReadDir(domain.DefaultCachePath(root))
	assert.Error(t, err, "script results must not create a cache directory")
}

func TestApp_Translate_ErrorAnnotatedWithPath(t *testing.T) {
	root := t.TempDir()
	f := newFixture(t)
	path := writeProject(t, root, `import garbage`)

	ctrl := gomock.NewController(t)
	translator := mocks.NewMockTranslator(ctrl)
	translator.EXPECT().
		Compile(gomock.Any(), gomock.Any()).
		Return(domain.CompileResult{}, errors.New("unexpected token"))
	f.app.WithTranslator(translator)

	_, err := f.app.Translate(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected token")
}

func TestApp_Translate_InactiveProjectPassesThrough(t *testing.T) {
	root := t.TempDir()
	f := newFixture(t)

	// Version range the running tool does not satisfy.
	require.NoError(t, os.WriteFile(
		filepath.Join(root, domain.ManifestFileName),
		[]byte(`{"name":"demo","dependencies":{"esmx":"^99.0.0"}}`),
		0o644,
	))
	path := filepath.Join(root, "index.js")
	require.NoError(t, os.WriteFile(path, []byte(`import x from "y"`), 0o644))

	// No translator configured: pass-through must not need one.
	res, err := f.app.Translate(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, domain.TypeScript, res.Type)
	assert.Equal(t, `import x from "y"`, res.Code)
}

func TestApp_Translate_NoProjectPassesThrough(t *testing.T) {
	root := t.TempDir()
	f := newFixture(t)

	path := filepath.Join(root, "index.js")
	require.NoError(t, os.WriteFile(path, []byte(`plain source`), 0o644))

	res, err := f.app.Translate(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "plain source", res.Code)
}

func TestApp_Translate_MissingSource(t *testing.T) {
	f := newFixture(t)

	_, err := f.app.Translate(context.Background(), filepath.Join(t.TempDir(), "absent.js"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceNotFound)
}

func TestApp_Translate_NoTranslatorConfigured(t *testing.T) {
	root := t.TempDir()
	f := newFixture(t)
	path := writeProject(t, root, `import x from "y"`)

	_, err := f.app.Translate(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTranslatorUnavailable)
}

func TestApp_KeysAndClean(t *testing.T) {
	root := t.TempDir()
	f := newFixture(t)
	path := writeProject(t, root, `export default 1`)

	ctrl := gomock.NewController(t)
	translator := mocks.NewMockTranslator(ctrl)
	translator.EXPECT().
		Compile(gomock.Any(), gomock.Any()).
		Return(domain.CompileResult{Type: domain.TypeModule, Code: "module.exports = 1"}, nil)
	f.app.WithTranslator(translator)

	ctx := context.Background()
	_, err := f.app.Translate(ctx, path)
	require.NoError(t, err)
	f.writer.Wait()

	keys, err := f.app.Keys(ctx, root)
	require.NoError(t, err)
	require.Len(t, keys, 1)

	require.NoError(t, f.app.Clean(ctx, root))

	keys, err = f.app.Keys(ctx, root)
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.NoDirExists(t, domain.DefaultCachePath(root))
}

func TestApp_Keys_NoProject(t *testing.T) {
	f := newFixture(t)

	_, err := f.app.Keys(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, domain.ErrNoProject)
}

// stubWatcher records lifecycle calls for Watch tests.
type stubWatcher struct {
	startedRoot string
	stopped     bool
}

func (s *stubWatcher) Start(_ context.Context, root string) error {
	s.startedRoot = root
	return nil
}

func (s *stubWatcher) Stop() error {
	s.stopped = true
	return nil
}

func TestApp_Watch(t *testing.T) {
	root := t.TempDir()
	f := newFixture(t)
	writeProject(t, root, `export {}`)

	w := &stubWatcher{}
	f.app.WithWatcher(w)

	// Watch blocks until the context ends; cancel up front so it starts the
	// watcher, observes the done context, and stops.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, f.app.Watch(ctx, root))
	assert.Equal(t, root, w.startedRoot)
	assert.True(t, w.stopped)
}

func TestApp_Watch_NoWatcherConfigured(t *testing.T) {
	f := newFixture(t)

	err := f.app.Watch(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, domain.ErrWatcherUnavailable)
}

func TestApp_Flush_MakesMetadataDurable(t *testing.T) {
	root := t.TempDir()
	f := newFixture(t)
	path := writeProject(t, root, `export default 1`)

	ctrl := gomock.NewController(t)
	translator := mocks.NewMockTranslator(ctrl)
	translator.EXPECT().
		Compile(gomock.Any(), gomock.Any()).
		Return(domain.CompileResult{
			Type: domain.TypeModule,
			Code: "module.exports = 1",
			Map:  []byte(`{"0":[0]}`),
		}, nil)
	f.app.WithTranslator(translator)

	ctx := context.Background()
	_, err := f.app.Translate(ctx, path)
	require.NoError(t, err)

	f.app.Flush(ctx)

	dir := domain.DefaultCachePath(root)
	assert.FileExists(t, filepath.Join(dir, domain.BlobFileName))
	assert.FileExists(t, filepath.Join(dir, domain.MetaFileName))
	assert.NoFileExists(t, filepath.Join(dir, domain.DirtyMarkerName))
}

func TestApp_Resolve(t *testing.T) {
	root := t.TempDir()
	f := newFixture(t)
	writeProject(t, root, `export default 1`)

	cfg, err := f.app.Resolve(context.Background(), root, false)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, root, cfg.RootPath)
	assert.Equal(t, "^3.0.0", cfg.VersionRange)
}
