//go:build !cgo || !linux

package ocr

import (
	"context"

	"github.com/ironsheep/livetext-viewer/internal/livetext"
)

// Tesseract is unavailable in this build. See ErrNotEnabled.
type Tesseract struct{}

// New always fails with ErrNotEnabled.
func New(opts Options) (*Tesseract, error) {
	return nil, ErrNotEnabled
}

// Analyze always fails with ErrNotEnabled.
func (t *Tesseract) Analyze(ctx context.Context, f livetext.Frame, _ livetext.Hardware) (*livetext.Detection, error) {
	return nil, ErrNotEnabled
}

// GetInfo reports the backend as unavailable.
func GetInfo(opts Options) Info {
	opts = opts.withDefaults()
	return Info{
		Backend:  "none",
		Language: opts.Language,
		Error:    ErrNotEnabled.Error(),
	}
}
