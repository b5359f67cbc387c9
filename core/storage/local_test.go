package storage_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/core/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocal(t *testing.T) *storage.Local {
	t.Helper()
	root := t.TempDir()
	local, err := storage.NewLocal(storage.Config{
		RawDir:     filepath.Join(root, "RawData"),
		ExtractDir: filepath.Join(root, "Extracted"),
		TempDir:    filepath.Join(root, "Temp"),
	})
	require.NoError(t, err)
	return local
}

func TestNewLocalCreatesStores(t *testing.T) {
	local := newTestLocal(t)

	for _, dir := range []string{local.RawDir(), local.ExtractDir(), local.TempDir()} {
		info, err := os.Stat(dir)
		assert.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestCommitRaw(t *testing.T) {
	t.Run("WriteAndReadBack", func(t *testing.T) {
		local := newTestLocal(t)

		err := local.CommitRaw("Android/textures/bundle1", []byte("payload"))
		require.NoError(t, err)

		data, err := local.ReadRaw("Android/textures/bundle1")
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), data)
	})

	t.Run("OverwriteExisting", func(t *testing.T) {
		local := newTestLocal(t)

		require.NoError(t, local.CommitRaw("a/b", []byte("old")))
		require.NoError(t, local.CommitRaw("a/b", []byte("new")))

		data, err := local.ReadRaw("a/b")
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), data)
	})

	t.Run("NoStagedFileLeftBehind", func(t *testing.T) {
		local := newTestLocal(t)

		require.NoError(t, local.CommitRaw("a/b", []byte("data")))

		entries, err := os.ReadDir(filepath.Dir(local.RawPath("a/b")))
		require.NoError(t, err)
		for _, e := range entries {
			assert.False(t, strings.Contains(e.Name(), ".tmp-"),
				"staged file %q not cleaned up", e.Name())
		}
	})
}

func TestHasRaw(t *testing.T) {
	local := newTestLocal(t)

	assert.False(t, local.HasRaw("a/b", 4))

	require.NoError(t, local.CommitRaw("a/b", []byte("data")))
	assert.True(t, local.HasRaw("a/b", 4))
	assert.False(t, local.HasRaw("a/b", 5), "size mismatch must not count as present")
}

func TestRemoveRaw(t *testing.T) {
	local := newTestLocal(t)

	require.NoError(t, local.CommitRaw("a/b", []byte("data")))
	require.NoError(t, local.RemoveRaw("a/b"))
	assert.False(t, local.HasRaw("a/b", 4))

	// Removing an absent file is not an error.
	assert.NoError(t, local.RemoveRaw("a/b"))
}
