package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/genstudio/internal/domain"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}

func newStore(t *testing.T) (*LocalImageStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewLocalImageStore(dir)
	require.NoError(t, err)
	return store, dir
}

func TestLocalImageStoreSave(t *testing.T) {
	store, dir := newStore(t)
	img := &domain.Image{Data: pngHeader, MimeType: "image/png"}

	key, err := store.Save(context.Background(), "image", img)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "image_"))
	assert.Equal(t, ".png", filepath.Ext(key))

	path, err := store.Path(key)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestLocalImageStoreExtension(t *testing.T) {
	tests := []struct {
		name string
		img  domain.Image
		want string
	}{
		{name: "declared jpeg", img: domain.Image{Data: []byte("x"), MimeType: "image/jpeg"}, want: ".jpg"},
		{name: "declared webp", img: domain.Image{Data: []byte("x"), MimeType: "image/webp"}, want: ".webp"},
		{name: "sniffed png", img: domain.Image{Data: pngHeader}, want: ".png"},
		{name: "sniffed gif", img: domain.Image{Data: []byte("GIF89a")}, want: ".gif"},
		{name: "unknown bytes", img: domain.Image{Data: []byte("not an image")}, want: ".png"},
		{name: "unknown declared type", img: domain.Image{Data: []byte("x"), MimeType: "image/x-made-up"}, want: ".png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extension(&tt.img))
		})
	}
}

func TestLocalImageStoreSaveEmpty(t *testing.T) {
	store, _ := newStore(t)

	_, err := store.Save(context.Background(), "image", &domain.Image{})
	assert.Error(t, err)
	_, err = store.Save(context.Background(), "image", nil)
	assert.Error(t, err)
}

func TestLocalImageStoreSaveCancelled(t *testing.T) {
	store, dir := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Save(ctx, "image", &domain.Image{Data: pngHeader})
	assert.ErrorIs(t, err, context.Canceled)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalImageStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "generated")

	_, err := NewLocalImageStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLocalImageStorePathTraversal(t *testing.T) {
	store, _ := newStore(t)

	for _, key := range []string{"../outside.png", "../../etc/passwd", ".."} {
		_, err := store.Path(key)
		assert.ErrorIs(t, err, ErrPathTraversal, "key %q", key)
	}
}
