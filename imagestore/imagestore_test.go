package imagestore

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AVMG20/hostgoblin/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&models.Image{}))

	return New(gdb, t.TempDir(), zerolog.Nop()), gdb
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func diskFiles(img *models.Image, root string) []string {
	return []string{
		filepath.Join(root, "original", img.FileName),
		filepath.Join(root, "small", "small-"+img.FileName),
		filepath.Join(root, "medium", "medium-"+img.FileName),
		filepath.Join(root, "large", "large-"+img.FileName),
	}
}

func TestSaveCreatesDerivativesAndRow(t *testing.T) {
	store, gdb := newStore(t)

	data := pngBytes(t, 640, 480)
	img, err := store.Save(data, "server-rack.png", "image/png")
	require.NoError(t, err)

	assert.Equal(t, "server-rack.png", img.OriginalName)
	assert.Equal(t, "image/png", img.MimeType)
	assert.Equal(t, int64(len(data)), img.Size)
	assert.Equal(t, 640, img.Width)
	assert.Equal(t, 480, img.Height)
	assert.NotZero(t, img.ID)

	assert.Equal(t, "/storage/image/original/"+img.FileName, img.OriginalPath)
	assert.Equal(t, "/storage/image/small/small-"+img.FileName, img.SmallPath)
	assert.Equal(t, "/storage/image/medium/medium-"+img.FileName, img.MediumPath)
	assert.Equal(t, "/storage/image/large/large-"+img.FileName, img.LargePath)

	for _, path := range diskFiles(img, store.Root()) {
		info, err := os.Stat(path)
		require.NoError(t, err, "expected file %s", path)
		assert.Greater(t, info.Size(), int64(0))
	}

	var count int64
	require.NoError(t, gdb.Model(&models.Image{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSaveRejectsNonImageMediaType(t *testing.T) {
	store, gdb := newStore(t)

	_, err := store.Save([]byte("just some text"), "notes.txt", "text/plain")
	require.ErrorIs(t, err, ErrInvalidMediaType)

	// Rejected before any side effect: no files, no row.
	entries, err := os.ReadDir(store.Root())
	require.NoError(t, err)
	assert.Empty(t, entries)

	var count int64
	require.NoError(t, gdb.Model(&models.Image{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestSaveRejectsUndecodableImage(t *testing.T) {
	store, gdb := newStore(t)

	_, err := store.Save([]byte("not actually a png"), "fake.png", "image/png")
	require.ErrorIs(t, err, ErrInvalidMediaType)

	entries, err := os.ReadDir(store.Root())
	require.NoError(t, err)
	assert.Empty(t, entries)

	var count int64
	require.NoError(t, gdb.Model(&models.Image{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestSaveCleansUpOnDerivativeFailure(t *testing.T) {
	store, gdb := newStore(t)

	// Extension sized so the generated original filename fits the
	// filesystem's 255-byte name limit but the size-prefixed derivative
	// name does not, failing the first derivative create after the
	// original is already on disk.
	ext := "." + strings.Repeat("x", 203)
	_, err := store.Save(pngBytes(t, 200, 200), "logo"+ext, "image/png")
	require.Error(t, err)

	for _, dir := range []string{"original", "small", "medium", "large"} {
		entries, err := os.ReadDir(filepath.Join(store.Root(), dir))
		require.NoError(t, err)
		assert.Empty(t, entries, "expected %s/ to be empty", dir)
	}

	var count int64
	require.NoError(t, gdb.Model(&models.Image{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestGetUnknownID(t *testing.T) {
	store, _ := newStore(t)

	_, err := store.Get(42)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRemovesRowAndFiles(t *testing.T) {
	store, _ := newStore(t)

	img, err := store.Save(pngBytes(t, 200, 200), "logo.png", "image/png")
	require.NoError(t, err)

	require.NoError(t, store.Delete(img.ID))

	_, err = store.Get(img.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	for _, path := range diskFiles(img, store.Root()) {
		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err), "expected %s to be gone", path)
	}
}

func TestDeleteWithMissingFilesStillRemovesRow(t *testing.T) {
	store, _ := newStore(t)

	img, err := store.Save(pngBytes(t, 200, 200), "logo.png", "image/png")
	require.NoError(t, err)

	for _, path := range diskFiles(img, store.Root()) {
		require.NoError(t, os.Remove(path))
	}

	require.NoError(t, store.Delete(img.ID))

	_, err = store.Get(img.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteUnknownID(t *testing.T) {
	store, _ := newStore(t)

	err := store.Delete(99)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestURLFor(t *testing.T) {
	full := &models.Image{
		OriginalPath: "/storage/image/original/123-abc.png",
		SmallPath:    "/storage/image/small/small-123-abc.png",
		MediumPath:   "/storage/image/medium/medium-123-abc.png",
		LargePath:    "/storage/image/large/large-123-abc.png",
	}
	originalOnly := &models.Image{
		OriginalPath: "/storage/image/original/123-abc.png",
	}

	tests := []struct {
		name     string
		image    *models.Image
		size     Size
		expected string
	}{
		{"small", full, SizeSmall, "/api/images/small/small-123-abc.png"},
		{"medium", full, SizeMedium, "/api/images/medium/medium-123-abc.png"},
		{"large", full, SizeLarge, "/api/images/large/large-123-abc.png"},
		{"original", full, SizeOriginal, "/api/images/original/123-abc.png"},
		{"missing derivative falls back to original", originalOnly, SizeLarge, "/api/images/original/123-abc.png"},
		{"unknown size falls back to original", full, Size("huge"), "/api/images/original/123-abc.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, URLFor(tt.image, tt.size))
		})
	}
}
