package imaging

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
)

// JPEGQuality is used when a rotated JPEG is written back.
const JPEGQuality = 95

// RotateImage rotates img clockwise by deg degrees. Quarter turns are
// lossless; other angles expand the canvas and fill the corners with
// transparency.
func RotateImage(img image.Image, deg int) *image.NRGBA {
	switch ((deg % 360) + 360) % 360 {
	case 0:
		return imaging.Clone(img)
	case 90:
		return imaging.Rotate270(img)
	case 180:
		return imaging.Rotate180(img)
	case 270:
		return imaging.Rotate90(img)
	default:
		// imaging rotates counter-clockwise.
		return imaging.Rotate(img, float64(-deg), color.Transparent)
	}
}

// RotateFile rotates the image stored at path clockwise by deg degrees and
// writes it back in the same format. The file is replaced atomically.
func RotateFile(path string, deg int) error {
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return fmt.Errorf("unsupported image format: %w", err)
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}
	return writeAtomic(path, func(w io.Writer) error {
		return imaging.Encode(w, RotateImage(img, deg), format, imaging.JPEGQuality(JPEGQuality))
	})
}

// writeAtomic writes through a temporary file in the target directory and
// renames it over path.
func writeAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	if info, err := os.Stat(path); err == nil {
		os.Chmod(tmpPath, info.Mode().Perm())
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace image: %w", err)
	}
	return nil
}

// Persister writes viewer rotations back to the displayed file. After a
// rewrite it evicts the file from the cache and refreshes its thumbnail.
//
// Persister is safe for concurrent use.
type Persister struct {
	cache  *ImageCache
	thumbs *ThumbnailStore
	logger *slog.Logger

	mu   sync.Mutex
	path string
}

// NewPersister creates a Persister. thumbs may be nil.
func NewPersister(cache *ImageCache, thumbs *ThumbnailStore, logger *slog.Logger) *Persister {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Persister{cache: cache, thumbs: thumbs, logger: logger}
}

// SetPath sets the file subsequent rotations apply to. An empty path
// disables persistence.
func (p *Persister) SetPath(path string) {
	p.mu.Lock()
	p.path = path
	p.mu.Unlock()
}

// Path returns the current file.
func (p *Persister) Path() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.path
}

// Rotated rotates the current file by delta degrees clockwise.
func (p *Persister) Rotated(delta int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.path == "" || delta%360 == 0 {
		return nil
	}

	if err := RotateFile(p.path, delta); err != nil {
		p.logger.Warn("failed to persist rotation", "path", p.path, "delta", delta, "error", err)
		return err
	}
	if p.cache != nil {
		p.cache.Evict(p.path)
	}
	if p.thumbs != nil {
		if _, err := p.thumbs.Update(p.path); err != nil {
			p.logger.Warn("failed to refresh thumbnail", "path", p.path, "error", err)
		}
	}
	p.logger.Info("rotation persisted", "path", p.path, "delta", delta)
	return nil
}
