package storage

import (
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Buckets under an owner directory. Originals live at the owner root.
const (
	BucketThumbs   = "thumbs"
	BucketChapters = "chapters"
	BucketSource   = "source"
)

// Fixed filenames for singleton assets. Re-uploading one of these replaces
// the previous file at the same path instead of accumulating.
const (
	CoverName       = "cover.jpg"
	SourceName      = "source.pdf"
	TablePhotoName  = "photo.jpg"
	TableLayoutName = "layout.jpg"
)

var ErrUnsafePath = errors.New("path escapes upload root")

// Store lays out stored assets deterministically under a single root:
// <feature>/<owner-id>/[bucket/]<name>. Relative paths are what gets
// persisted and served; the root stays a deployment concern.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) Root() string {
	return s.root
}

// Rel computes the relative path for an asset, always slash-separated.
func (s *Store) Rel(feature string, ownerID int, parts ...string) string {
	elems := append([]string{feature, itoa(ownerID)}, parts...)
	return path.Join(elems...)
}

// Abs resolves a relative asset path under the root, rejecting absolute
// paths and anything that would climb out of it after cleaning.
func (s *Store) Abs(rel string) (string, error) {
	clean := path.Clean(rel)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") || strings.HasPrefix(clean, "/") {
		return "", ErrUnsafePath
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// EnsureDir creates the owner directory chain, including any buckets.
func (s *Store) EnsureDir(feature string, ownerID int, buckets ...string) error {
	base := filepath.Join(s.root, feature, itoa(ownerID))
	if len(buckets) == 0 {
		return os.MkdirAll(base, 0o750)
	}
	for _, b := range buckets {
		if err := os.MkdirAll(filepath.Join(base, b), 0o750); err != nil {
			return err
		}
	}
	return nil
}

// Save streams r to the given relative path, creating parent directories.
// An existing file at the path is overwritten, which is exactly the
// last-write-wins semantic singleton assets rely on.
func (s *Store) Save(rel string, r io.Reader) (int64, error) {
	abs, err := s.Abs(rel)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o750); err != nil {
		return 0, err
	}
	f, err := os.Create(abs)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// Remove deletes one stored asset. Missing files are not an error.
func (s *Store) Remove(rel string) error {
	abs, err := s.Abs(rel)
	if err != nil {
		return err
	}
	err = os.Remove(abs)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// RemoveOwner deletes everything stored for one owning entity.
func (s *Store) RemoveOwner(feature string, ownerID int) error {
	return os.RemoveAll(filepath.Join(s.root, feature, itoa(ownerID)))
}

// List returns the relative paths of the files stored in one bucket of an
// owner, sorted by name. A missing bucket is just empty.
func (s *Store) List(feature string, ownerID int, buckets ...string) ([]string, error) {
	parts := append([]string{s.root, feature, itoa(ownerID)}, buckets...)
	dir := filepath.Join(parts...)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rels := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		rels = append(rels, path.Join(append(append([]string{feature, itoa(ownerID)}, buckets...), e.Name())...))
	}
	return rels, nil
}

// UniqueName generates a collision-free filename for batch uploads. The
// extension is kept only when it is an accepted image extension.
func UniqueName(ext string) string {
	ext = strings.ToLower(ext)
	if !allowedImageExts[ext] {
		ext = ".bin"
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "") + ext
}

// ThumbName maps an original filename to its JPEG preview name.
func ThumbName(name string) string {
	return strings.TrimSuffix(name, path.Ext(name)) + ".jpg"
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
