package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/esmx/internal/adapters/fs"
)

func TestProbe(t *testing.T) {
	probe := fs.NewProbe()

	t.Run("exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "present")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

		assert.True(t, probe.Exists(path))
		assert.False(t, probe.Exists(filepath.Join(dir, "absent")))
	})

	t.Run("read file maps absence to nil", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "data")
		require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

		assert.Equal(t, []byte("content"), probe.ReadFile(path))
		assert.Nil(t, probe.ReadFile(filepath.Join(dir, "absent")))
	})

	t.Run("read dir maps absence to nil", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "b"), nil, 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), nil, 0o644))

		assert.Equal(t, []string{"a", "b"}, probe.ReadDir(dir))
		assert.Nil(t, probe.ReadDir(filepath.Join(dir, "absent")))
	})

	t.Run("remove tolerates absent targets", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "victim")
		require.NoError(t, os.WriteFile(path, nil, 0o644))

		probe.Remove(path)
		assert.False(t, probe.Exists(path))

		// Racing sweeps hit already-removed targets; that must be silent.
		probe.Remove(path)
	})
}

func TestGzipRoundTrip(t *testing.T) {
	payload := []byte("const answer = 42;\nexport default answer;\n")

	framed, err := fs.Gzip(payload)
	require.NoError(t, err)
	assert.NotEqual(t, payload, framed)

	plain, err := fs.Gunzip(framed)
	require.NoError(t, err)
	assert.Equal(t, payload, plain)
}

func TestGunzip_RejectsUnframedData(t *testing.T) {
	_, err := fs.Gunzip([]byte("not a gzip frame"))
	assert.Error(t, err)
}
