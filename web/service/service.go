// Package service implements the business logic of the portal. Services are
// stateless structs over the shared database handle and the upload store.
package service

import (
	"errors"
	"io"
	"mime/multipart"
	"os"

	"github.com/tandr/homehub/config"
	"github.com/tandr/homehub/storage"
	"github.com/tandr/homehub/util/common"
)

// Sentinel errors callers branch on.
var (
	ErrForbidden   = errors.New("forbidden")
	ErrEmptyBody   = errors.New("comment cannot be empty")
	ErrBodyTooLong = errors.New("comment too long (max 2000 chars)")
)

const maxCommentLen = 2000

// uploadStore resolves the content store under the configured upload root.
func uploadStore() *storage.Store {
	return storage.NewStore(config.GetUploadRoot())
}

// imageAsset is a stored original plus its derived preview.
type imageAsset struct {
	Rel      string
	ThumbRel string
	Size     int64
}

// saveImageAsset validates one uploaded file as a genuine image, stores the
// original under a fresh unique name for the owning entity and derives its
// preview. Any failure leaves nothing behind worth keeping and is reported
// to the caller, who counts the file as skipped.
func saveImageAsset(st *storage.Store, feature string, ownerId int, fh *multipart.FileHeader, maxPx int) (*imageAsset, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ext := extOf(fh.Filename)
	head, err := storage.Head(f)
	if err != nil {
		return nil, err
	}
	if !storage.LooksLikeImage(head, ext) {
		return nil, common.NewErrorf("%q does not look like an image", fh.Filename)
	}

	name := storage.UniqueName(ext)
	rel := st.Rel(feature, ownerId, name)
	size, err := st.Save(rel, f)
	if err != nil {
		return nil, err
	}

	thumbRel := st.Rel(feature, ownerId, storage.BucketThumbs, storage.ThumbName(name))
	src, err := st.Abs(rel)
	if err != nil {
		return nil, err
	}
	dst, err := st.Abs(thumbRel)
	if err != nil {
		return nil, err
	}
	if err := storage.Thumbnail(src, dst, maxPx, config.GetThumbQuality()); err != nil {
		_ = st.Remove(rel)
		return nil, err
	}
	return &imageAsset{Rel: rel, ThumbRel: thumbRel, Size: size}, nil
}

// saveSingletonPreview derives a preview straight to a fixed filename, the
// overwrite-on-reupload flavor used for covers and named wedding photos.
// The upload itself only lives in a scratch file during derivation.
func saveSingletonPreview(st *storage.Store, feature string, ownerId int, name string, maxPx int, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	head, err := storage.Head(f)
	if err != nil {
		return "", err
	}
	if !storage.LooksLikeImage(head, extOf(fh.Filename)) {
		return "", common.NewErrorf("%q does not look like an image", fh.Filename)
	}

	if err := st.EnsureDir(feature, ownerId); err != nil {
		return "", err
	}
	scratch, err := os.CreateTemp("", "homehub-upload-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(scratch.Name())
	if _, err := io.Copy(scratch, f); err != nil {
		scratch.Close()
		return "", err
	}
	if err := scratch.Close(); err != nil {
		return "", err
	}

	rel := st.Rel(feature, ownerId, name)
	dst, err := st.Abs(rel)
	if err != nil {
		return "", err
	}
	if err := storage.Thumbnail(scratch.Name(), dst, maxPx, config.GetThumbQuality()); err != nil {
		return "", err
	}
	return rel, nil
}
