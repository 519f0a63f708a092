package fs_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wepublish/wepublish-api/pkg/publishing/archive"
	fsstorage "github.com/wepublish/wepublish-api/pkg/publishing/storage/fs"
)

func readAll(t *testing.T, store archive.BlobStore, key string) string {
	t.Helper()
	r, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}

func TestStore(t *testing.T) {
	root := t.TempDir()
	store, err := fsstorage.New(fsstorage.Config{BaseDir: root})
	require.NoError(t, err)

	ctx := context.Background()
	historyKey := "articles/abc/history/20240115T103000.000000000Z-created.json"
	latestKey := "articles/abc/latest.json"
	body := `{"event":"created"}`

	t.Run("Put creates directories", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, historyKey, strings.NewReader(body), "application/json"))
		_, err := os.Stat(filepath.Join(root, "articles", "abc", "history"))
		assert.NoError(t, err)
	})

	t.Run("Put replaces", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, latestKey, strings.NewReader("old"), "application/json"))
		require.NoError(t, store.Put(ctx, latestKey, strings.NewReader(body), "application/json"))
		assert.Equal(t, body, readAll(t, store, latestKey))
	})

	t.Run("Stat", func(t *testing.T) {
		meta, err := store.Stat(ctx, historyKey)
		require.NoError(t, err)
		assert.Equal(t, int64(len(body)), meta.Size)
		assert.Equal(t, "application/json", meta.ContentType)
		assert.False(t, meta.UpdatedAt.IsZero())
	})

	t.Run("List", func(t *testing.T) {
		keys, err := store.List(ctx, "articles/abc/")
		require.NoError(t, err)
		assert.Equal(t, []string{historyKey, latestKey}, keys)

		keys, err = store.List(ctx, "articles/abc/history/")
		require.NoError(t, err)
		assert.Equal(t, []string{historyKey}, keys)
	})

	t.Run("Delete removes empty directories", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, historyKey))
		assert.ErrorIs(t, store.Delete(ctx, historyKey), archive.ErrObjectNotFound)

		_, err := os.Stat(filepath.Join(root, "articles", "abc", "history"))
		assert.True(t, os.IsNotExist(err))
		_, err = os.Stat(filepath.Join(root, "articles", "abc"))
		assert.NoError(t, err)
	})

	t.Run("Missing object", func(t *testing.T) {
		_, err := store.Get(ctx, "missing.json")
		assert.ErrorIs(t, err, archive.ErrObjectNotFound)
		_, err = store.Stat(ctx, "missing.json")
		assert.ErrorIs(t, err, archive.ErrObjectNotFound)
	})

	t.Run("Keys stay below the root", func(t *testing.T) {
		assert.Error(t, store.Put(ctx, "../outside.json", strings.NewReader("x"), ""))
		_, err := store.Get(ctx, "../../etc/passwd")
		assert.Error(t, err)
	})
}

func TestNew_RequiresBaseDir(t *testing.T) {
	_, err := fsstorage.New(fsstorage.Config{})
	assert.Error(t, err)
}
