package storage

import (
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeTestPNG(t *testing.T, dir string, w, h int) string {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// Half-transparent red to exercise alpha flattening
			img.Set(x, y, color.NRGBA{R: 200, A: 128})
		}
	}
	src := filepath.Join(dir, "src.png")
	f, err := os.Create(src)
	assert.NoError(t, err)
	assert.NoError(t, png.Encode(f, img))
	assert.NoError(t, f.Close())
	return src
}

func TestThumbnailBounds(t *testing.T) {
	dir := t.TempDir()
	src := writeTestPNG(t, dir, 800, 400)
	dst := filepath.Join(dir, "thumbs", "src.jpg")

	assert.NoError(t, Thumbnail(src, dst, 200, 82))

	f, err := os.Open(dst)
	assert.NoError(t, err)
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	assert.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	// Aspect ratio preserved within the bound
	assert.Equal(t, 200, cfg.Width)
	assert.Equal(t, 100, cfg.Height)
}

func TestThumbnailNeverUpscales(t *testing.T) {
	dir := t.TempDir()
	src := writeTestPNG(t, dir, 60, 40)
	dst := filepath.Join(dir, "small.jpg")

	assert.NoError(t, Thumbnail(src, dst, 500, 82))

	f, _ := os.Open(dst)
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	assert.NoError(t, err)
	assert.Equal(t, 60, cfg.Width)
	assert.Equal(t, 40, cfg.Height)
}

func TestThumbnailRejectsNonImage(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "fake.png")
	assert.NoError(t, os.WriteFile(src, []byte("not an image"), 0o600))

	err := Thumbnail(src, filepath.Join(dir, "out.jpg"), 200, 82)
	assert.Error(t, err)
	// No partial output is left behind
	_, statErr := os.Stat(filepath.Join(dir, "out.jpg"))
	assert.True(t, os.IsNotExist(statErr))
}
