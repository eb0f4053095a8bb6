//go:build cgo && linux

package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/livetext-viewer/internal/livetext"
)

// Tesseract is a live text backend that recognizes text with Tesseract.
//
// Each Analyze call uses its own client, so one Tesseract value may serve
// overlapping passes. Tesseract offers no GPU path; the hardware preference
// is ignored.
type Tesseract struct {
	opts Options
}

// New checks that Tesseract can be initialized with opts and returns a
// backend using them.
func New(opts Options) (*Tesseract, error) {
	opts = opts.withDefaults()
	client, err := newClient(opts)
	if err != nil {
		return nil, err
	}
	client.Close()
	return &Tesseract{opts: opts}, nil
}

func newClient(opts Options) (*gosseract.Client, error) {
	client := gosseract.NewClient()
	if opts.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(opts.TessdataPrefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage(opts.Language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	return client, nil
}

// Analyze implements livetext.Backend.
func (t *Tesseract) Analyze(ctx context.Context, f livetext.Frame, _ livetext.Hardware) (*livetext.Detection, error) {
	if f.Empty() {
		return &livetext.Detection{Blocks: []livetext.TextBlock{}}, nil
	}
	data, err := encodeFrame(f)
	if err != nil {
		return nil, err
	}

	client, err := newClient(t.opts)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	if err := client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	level := gosseract.RIL_TEXTLINE
	if t.opts.Level == LevelBlock {
		level = gosseract.RIL_BLOCK
	}
	regions, err := client.GetBoundingBoxes(level)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	symbols, err := client.GetBoundingBoxes(gosseract.RIL_SYMBOL)
	if err != nil {
		// Blocks are still usable without per-character boxes.
		symbols = nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &livetext.Detection{Blocks: buildBlocks(toBoxes(regions), toBoxes(symbols))}, nil
}

func toBoxes(in []gosseract.BoundingBox) []box {
	out := make([]box, 0, len(in))
	for _, b := range in {
		out = append(out, box{rect: b.Box, text: b.Word})
	}
	return out
}

// GetInfo reports whether Tesseract can be used with opts.
func GetInfo(opts Options) Info {
	opts = opts.withDefaults()
	info := Info{Backend: "gosseract", Language: opts.Language, TessdataPrefix: opts.TessdataPrefix}

	client, err := newClient(opts)
	if err != nil {
		info.Error = err.Error()
		return info
	}
	defer client.Close()

	info.Available = true
	info.Version = client.Version()
	return info
}
