package imaging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// DefaultThumbnailSize is the edge length of generated thumbnails.
const DefaultThumbnailSize = 256

// ThumbnailStore keeps square PNG thumbnails in a directory, one per source
// path.
type ThumbnailStore struct {
	dir  string
	size int
}

// NewThumbnailStore creates dir if needed. A size of zero or less selects
// DefaultThumbnailSize.
func NewThumbnailStore(dir string, size int) (*ThumbnailStore, error) {
	if size <= 0 {
		size = DefaultThumbnailSize
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create thumbnail directory: %w", err)
	}
	return &ThumbnailStore{dir: dir, size: size}, nil
}

// PathFor returns where the thumbnail of src is stored.
func (s *ThumbnailStore) PathFor(src string) string {
	abs, err := filepath.Abs(src)
	if err != nil {
		abs = src
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:16])+".png")
}

// Update regenerates the thumbnail of src and returns its path.
func (s *ThumbnailStore) Update(src string) (string, error) {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to load image: %w", err)
	}
	thumb := imaging.Thumbnail(img, s.size, s.size, imaging.Lanczos)

	dst := s.PathFor(src)
	err = writeAtomic(dst, func(w io.Writer) error {
		return imaging.Encode(w, thumb, imaging.PNG)
	})
	if err != nil {
		return "", err
	}
	return dst, nil
}

// Remove deletes the thumbnail of src, if any.
func (s *ThumbnailStore) Remove(src string) error {
	err := os.Remove(s.PathFor(src))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
