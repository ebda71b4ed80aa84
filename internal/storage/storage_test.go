package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhotoStorage_SaveAndDelete(t *testing.T) {
	root := t.TempDir()
	s, err := NewPhotoStorage(root, "http://localhost:8080/")
	require.NoError(t, err)

	url, err := s.Save(context.Background(), []byte("jpeg-bytes"), "image/jpeg", ".jpg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/media/"), url)
	assert.True(t, strings.HasSuffix(url, ".jpg"), url)

	relative, ok := s.relativePath(url)
	require.True(t, ok)
	data, err := os.ReadFile(filepath.Join(root, relative))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	require.NoError(t, s.Delete(context.Background(), url))
	_, err = os.Stat(filepath.Join(root, relative))
	assert.True(t, os.IsNotExist(err))

	// повторное удаление не ошибка
	assert.NoError(t, s.Delete(context.Background(), url))
}

func TestPhotoStorage_DeleteIgnoresForeignAndTraversal(t *testing.T) {
	root := t.TempDir()
	s, err := NewPhotoStorage(root, "http://localhost:8080")
	require.NoError(t, err)

	outside := filepath.Join(filepath.Dir(root), "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))
	t.Cleanup(func() { _ = os.Remove(outside) })

	assert.NoError(t, s.Delete(context.Background(), "https://cdn.example.com/media/a.jpg"))
	assert.NoError(t, s.Delete(context.Background(), "http://localhost:8080/media/../keep.txt"))

	_, err = os.Stat(outside)
	assert.NoError(t, err)
}

func TestPhotoStorage_CancelledContext(t *testing.T) {
	s, err := NewPhotoStorage(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Save(ctx, []byte("x"), "image/jpeg", ".jpg")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSanitizeExt(t *testing.T) {
	assert.Equal(t, ".jpg", sanitizeExt(".JPG"))
	assert.Equal(t, ".bin", sanitizeExt(""))
	assert.Equal(t, ".bin", sanitizeExt("."))
	assert.Equal(t, ".bin", sanitizeExt(".tar.gz"))
	assert.Equal(t, ".png", sanitizeExt("../../.png"))
}

func TestMinIOStorage_URLRoundTrip(t *testing.T) {
	s := &MinIOStorage{bucketName: "lostfound-images", publicEndpoint: "https://cdn.example.com"}

	url := s.ObjectURL("items/2026-03-01/abc.jpg")
	assert.Equal(t, "https://cdn.example.com/lostfound-images/items/2026-03-01/abc.jpg", url)
	assert.Equal(t, "items/2026-03-01/abc.jpg", s.KeyFromURL(url))
	assert.Empty(t, s.KeyFromURL("https://cdn.example.com/other-bucket/a.jpg"))
	assert.Empty(t, s.KeyFromURL("http://localhost:8080/media/2026-03-01/a.jpg"))
}
