package detection

import (
	"context"
	"image"
	"sync"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"

	"github.com/ironsheep/livetext-viewer/internal/livetext"
)

// Default tuning for the Heuristic backend.
const (
	DefaultThreshold = 128
	DefaultMinHeight = 4
	DefaultMinWidth  = 4
)

// Heuristic is a detection-only live text backend. It binarizes the frame,
// splits it into horizontal bands of ink and splits each band into blocks
// at column gaps wider than the band is tall. It recognizes no text.
//
// Character boxes are not computed during Analyze; Heuristic implements
// livetext.CharSegmenter so they are derived on demand.
type Heuristic struct {
	// Threshold separates ink from background on the 0-255 gray scale.
	Threshold uint8

	// MinHeight and MinWidth drop bands and blocks smaller than this many
	// pixels.
	MinHeight int
	MinWidth  int

	// The last mask built, keyed by the frame's pixel buffer and the
	// threshold it was built with. Frames are never mutated once handed to
	// a backend.
	mu        sync.Mutex
	cachedPix *byte
	cachedThr uint8
	cached    *mask
}

// NewHeuristic returns a Heuristic with default tuning.
func NewHeuristic() *Heuristic {
	return &Heuristic{
		Threshold: DefaultThreshold,
		MinHeight: DefaultMinHeight,
		MinWidth:  DefaultMinWidth,
	}
}

// Analyze implements livetext.Backend. Hardware preferences are ignored.
func (h *Heuristic) Analyze(ctx context.Context, f livetext.Frame, _ livetext.Hardware) (*livetext.Detection, error) {
	det := &livetext.Detection{Blocks: []livetext.TextBlock{}}
	if f.Empty() {
		return det, nil
	}

	ink := h.maskFor(f)
	for _, band := range h.bands(ink) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, b := range h.blocksInBand(ink, band) {
			det.Blocks = append(det.Blocks, livetext.TextBlock{Polygon: polygon(b)})
		}
	}
	return det, nil
}

// SegmentChars implements livetext.CharSegmenter. Each run of ink columns
// inside the block's bounds becomes one character box.
func (h *Heuristic) SegmentChars(f livetext.Frame, block livetext.TextBlock) []livetext.CharBox {
	if f.Empty() {
		return []livetext.CharBox{}
	}
	r := block.Bounds().Intersect(f.Bounds())
	if r.Empty() {
		return []livetext.CharBox{}
	}

	ink := h.maskFor(f)
	boxes := make([]livetext.CharBox, 0)
	for _, run := range columnRuns(ink, r) {
		boxes = append(boxes, livetext.CharBox{Points: [2]livetext.Point{
			{X: float64(run.Min.X), Y: float64(run.Min.Y)},
			{X: float64(run.Max.X), Y: float64(run.Max.Y)},
		}})
	}
	return boxes
}

// maskFor returns the ink mask of f, reusing the previous one while the
// frame and threshold are unchanged.
func (h *Heuristic) maskFor(f livetext.Frame) *mask {
	key, thr := &f.Pix[0], h.threshold()

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cached != nil && h.cachedPix == key && h.cachedThr == thr {
		return h.cached
	}
	m := h.inkMask(f)
	h.cachedPix, h.cachedThr, h.cached = key, thr, m
	return m
}

// inkMask binarizes f. Dark pixels are ink unless the frame is mostly dark,
// in which case the polarity flips so light text on a dark background is
// found too.
func (h *Heuristic) inkMask(f livetext.Frame) *mask {
	gray := effect.Grayscale(f.RGBA())
	bin := segment.Threshold(gray, h.threshold())

	m := newMask(f.Width, f.Height)
	dark := 0
	for y := 0; y < f.Height; y++ {
		row := bin.Pix[y*bin.Stride:]
		for x := 0; x < f.Width; x++ {
			if row[x] == 0 {
				m.set(x, y)
				dark++
			}
		}
	}
	if dark*2 > f.Width*f.Height {
		m.invert()
	}
	return m
}

func (h *Heuristic) threshold() uint8 {
	if h.Threshold == 0 {
		return DefaultThreshold
	}
	return h.Threshold
}

func (h *Heuristic) minHeight() int {
	if h.MinHeight <= 0 {
		return 1
	}
	return h.MinHeight
}

func (h *Heuristic) minWidth() int {
	if h.MinWidth <= 0 {
		return 1
	}
	return h.MinWidth
}

// bands returns the runs of rows containing ink, each spanning the full
// frame width.
func (h *Heuristic) bands(m *mask) []image.Rectangle {
	var out []image.Rectangle
	start := -1
	for y := 0; y <= m.h; y++ {
		has := y < m.h && m.rowHasInk(y)
		switch {
		case has && start < 0:
			start = y
		case !has && start >= 0:
			if y-start >= h.minHeight() {
				out = append(out, image.Rect(0, start, m.w, y))
			}
			start = -1
		}
	}
	return out
}

// blocksInBand splits band at column gaps wider than the band height and
// trims each piece to its ink.
func (h *Heuristic) blocksInBand(m *mask, band image.Rectangle) []image.Rectangle {
	runs := columnRuns(m, band)
	if len(runs) == 0 {
		return nil
	}
	maxGap := band.Dy()

	var out []image.Rectangle
	cur := runs[0]
	for _, run := range runs[1:] {
		if run.Min.X-cur.Max.X > maxGap {
			out = h.appendBlock(out, m, cur)
			cur = run
			continue
		}
		cur = cur.Union(run)
	}
	return h.appendBlock(out, m, cur)
}

func (h *Heuristic) appendBlock(out []image.Rectangle, m *mask, r image.Rectangle) []image.Rectangle {
	r = m.trimRows(r)
	if r.Dx() < h.minWidth() || r.Dy() < h.minHeight() {
		return out
	}
	return append(out, r)
}

// columnRuns returns one rectangle per run of ink columns within r. Each
// rectangle spans r vertically.
func columnRuns(m *mask, r image.Rectangle) []image.Rectangle {
	var out []image.Rectangle
	start := -1
	for x := r.Min.X; x <= r.Max.X; x++ {
		has := x < r.Max.X && m.colHasInk(x, r.Min.Y, r.Max.Y)
		switch {
		case has && start < 0:
			start = x
		case !has && start >= 0:
			out = append(out, image.Rect(start, r.Min.Y, x, r.Max.Y))
			start = -1
		}
	}
	return out
}

func polygon(r image.Rectangle) [4]livetext.Point {
	x0, y0 := float64(r.Min.X), float64(r.Min.Y)
	x1, y1 := float64(r.Max.X), float64(r.Max.Y)
	return [4]livetext.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}
