package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStoreRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s, err := NewDiskStore(dir, "/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	ref, err := s.Put(ctx, "1-a.png", pngBytes)
	require.NoError(t, err)
	assert.Equal(t, "1-a.png", ref)

	data, err := os.ReadFile(filepath.Join(dir, ref))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)

	url, err := s.Resolve(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/1-a.png", url)

	require.NoError(t, s.Remove(ctx, ref))
	_, err = s.Resolve(ctx, ref)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Remove(ctx, ref), ErrNotFound)
}

func TestDiskStoreRejectsTraversal(t *testing.T) {
	s, err := NewDiskStore(t.TempDir(), "/uploads")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Put(ctx, "../escape.png", pngBytes)
	assert.ErrorIs(t, err, ErrInvalidRef)
	_, err = s.Resolve(ctx, "../../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidRef)
	assert.ErrorIs(t, s.Remove(ctx, "a/b"), ErrInvalidRef)
}

func TestDiskStorePassesExternalRefsThrough(t *testing.T) {
	s, err := NewDiskStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	url, err := s.Resolve(context.Background(), "https://cdn.example/me.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/me.jpg", url)
	assert.NoError(t, s.Remove(context.Background(), "https://cdn.example/me.jpg"))
}
