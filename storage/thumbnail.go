package storage

import (
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register WEBP decoding for accepted uploads
)

// Thumbnail derives a JPEG preview of the image at src and writes it
// atomically to dst. The stored EXIF orientation is applied first so
// previews are never sideways, the image is scaled to fit within
// maxPx x maxPx preserving aspect ratio (never upscaled), and transparency
// is flattened onto white since JPEG carries no alpha.
func Thumbnail(src, dst string, maxPx, quality int) error {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return err
	}

	img = imaging.Fit(img, maxPx, maxPx, imaging.Lanczos)

	bounds := img.Bounds()
	flat := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	flat = imaging.OverlayCenter(flat, img, 1.0)

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".thumb-*")
	if err != nil {
		return err
	}
	if err := imaging.Encode(tmp, flat, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
