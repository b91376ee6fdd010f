package storage_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storageerr "agadeepaoli/internal/storage"
	storage "agadeepaoli/internal/storage/filestorage"
)

func setupFileStorage(t *testing.T) (*storage.LocalFileStorage, string) {
	t.Helper()

	tempDir := t.TempDir()

	fs, err := storage.NewLocalFileStorage(filepath.Join(tempDir, "uploads"), "/uploads/")
	require.NoError(t, err)

	return fs, tempDir
}

// tempFiles lists leftover ".upload-*" files.
func tempFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, ".upload-*"))
	require.NoError(t, err)
	return matches
}

func TestNewLocalFileStorage_CreatesDir(t *testing.T) {
	fs, _ := setupFileStorage(t)

	info, err := os.Stat(fs.GetBaseDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, "/uploads", fs.BaseURL())
}

func TestLocalFileStorage_Save(t *testing.T) {
	fs, _ := setupFileStorage(t)
	ctx := context.Background()

	t.Run("successful save", func(t *testing.T) {
		size, err := fs.Save(ctx, "a.txt", strings.NewReader("test content"), 0)
		require.NoError(t, err)
		assert.Equal(t, int64(12), size)

		data, err := os.ReadFile(fs.GetFullPath("a.txt"))
		require.NoError(t, err)
		assert.Equal(t, "test content", string(data))
		assert.FileExists(t, fs.GetFullPath("a.txt"))
		assert.Empty(t, tempFiles(t, fs.GetBaseDir()))
	})

	t.Run("exactly at limit", func(t *testing.T) {
		payload := bytes.Repeat([]byte("x"), 64)
		size, err := fs.Save(ctx, "limit.bin", bytes.NewReader(payload), 64)
		require.NoError(t, err)
		assert.Equal(t, int64(64), size)
	})

	t.Run("over limit", func(t *testing.T) {
		payload := bytes.Repeat([]byte("x"), 65)
		_, err := fs.Save(ctx, "big.bin", bytes.NewReader(payload), 64)
		assert.ErrorIs(t, err, storageerr.ErrFileTooLarge)
		assert.NoFileExists(t, fs.GetFullPath("big.bin"))
		assert.Empty(t, tempFiles(t, fs.GetBaseDir()))
	})

	t.Run("save with context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := fs.Save(ctx, "cancelled.txt", strings.NewReader("data"), 0)
		assert.ErrorIs(t, err, context.Canceled)
		assert.NoFileExists(t, fs.GetFullPath("cancelled.txt"))
	})

	t.Run("rejects path traversal", func(t *testing.T) {
		for _, name := range []string{"", "..", "../escape.txt", "sub/dir.txt"} {
			_, err := fs.Save(ctx, name, strings.NewReader("x"), 0)
			assert.Error(t, err, name)
		}
	})
}

func TestLocalFileStorage_Delete(t *testing.T) {
	fs, _ := setupFileStorage(t)
	ctx := context.Background()

	t.Run("successful delete", func(t *testing.T) {
		_, err := fs.Save(ctx, "to_delete.txt", strings.NewReader("content"), 0)
		require.NoError(t, err)

		require.NoError(t, fs.Delete(ctx, "to_delete.txt"))

		_, err = os.Stat(fs.GetFullPath("to_delete.txt"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("delete non-existent file", func(t *testing.T) {
		err := fs.Delete(ctx, "nonexistent.txt")
		assert.ErrorIs(t, err, storageerr.ErrFileNotFound)
	})

	t.Run("rejects path traversal", func(t *testing.T) {
		assert.Error(t, fs.Delete(ctx, "../outside.txt"))
	})
}

func TestLocalFileStorage_GetFullPath(t *testing.T) {
	fs, _ := setupFileStorage(t)

	assert.Equal(t, filepath.Join(fs.GetBaseDir(), "photo.jpg"), fs.GetFullPath("photo.jpg"))
}

func TestConcurrentSaves(t *testing.T) {
	fs, _ := setupFileStorage(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := fs.Save(ctx, fmt.Sprintf("concurrent-%d.txt", i), strings.NewReader("data"), 0)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	entries, err := os.ReadDir(fs.GetBaseDir())
	require.NoError(t, err)
	assert.Len(t, entries, 10)
}
