package storage

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLocalStorage(t *testing.T) *LocalStorage {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestLocalStorage_UploadDownload(t *testing.T) {
	store := setupLocalStorage(t)
	ctx := context.Background()

	payload := []byte("fake png bytes")
	require.NoError(t, store.Upload(ctx, "captures/2026/shot.png", bytes.NewReader(payload)))

	rc, err := store.Download(ctx, "captures/2026/shot.png")
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestLocalStorage_Exists(t *testing.T) {
	store := setupLocalStorage(t)
	ctx := context.Background()

	exists, err := store.Exists(ctx, "captures/missing.pdf")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Upload(ctx, "captures/doc.pdf", bytes.NewReader([]byte("pdf"))))

	exists, err = store.Exists(ctx, "captures/doc.pdf")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLocalStorage_Delete(t *testing.T) {
	store := setupLocalStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, "captures/doomed.png", bytes.NewReader([]byte("x"))))
	require.NoError(t, store.Delete(ctx, "captures/doomed.png"))

	_, err := store.Download(ctx, "captures/doomed.png")
	assert.ErrorIs(t, err, ErrArtifactNotFound)

	err = store.Delete(ctx, "captures/doomed.png")
	assert.ErrorIs(t, err, ErrArtifactNotFound)
}

func TestLocalStorage_PathValidation(t *testing.T) {
	store := setupLocalStorage(t)
	ctx := context.Background()

	t.Run("empty path", func(t *testing.T) {
		err := store.Upload(ctx, "", bytes.NewReader(nil))
		assert.ErrorIs(t, err, ErrInvalidPath)
	})

	t.Run("traversal is rejected", func(t *testing.T) {
		err := store.Upload(ctx, "../outside.png", bytes.NewReader(nil))
		assert.ErrorIs(t, err, ErrInvalidPath)
	})
}

func TestNewBlobStorage(t *testing.T) {
	t.Run("local", func(t *testing.T) {
		store, err := NewBlobStorage(Config{Type: "local", BaseDir: t.TempDir()})
		require.NoError(t, err)
		assert.IsType(t, &LocalStorage{}, store)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := NewBlobStorage(Config{Type: "carrier-pigeon"})
		assert.Error(t, err)
	})
}
