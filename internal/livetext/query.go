package livetext

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"

	vimaging "github.com/ironsheep/livetext-viewer/internal/imaging"
)

// ErrMalformedID is returned when a block identifier has no numeric suffix.
var ErrMalformedID = errors.New("livetext: malformed block identifier")

// IDSeparator splits a block identifier's prefix from its index.
const IDSeparator = "_"

// BlockID builds the identifier RequestImage resolves back to index.
func BlockID(prefix string, index int) string {
	return prefix + IDSeparator + strconv.Itoa(index)
}

// ParseBlockID extracts the block index from id. The index is the text after
// the last separator, or the whole id when there is none.
func ParseBlockID(id string) (int, error) {
	suffix := id
	if i := strings.LastIndex(id, IDSeparator); i >= 0 {
		suffix = id[i+len(IDSeparator):]
	}
	n, err := strconv.ParseUint(suffix, 10, 31)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedID, id)
	}
	return int(n), nil
}

// LiveBlocks returns one entry per block of the published result: the four
// polygon corners flattened as x,y pairs followed by the rotation angle.
func (a *Analyzer) LiveBlocks() [][]float64 {
	snap := a.snapshot()
	out := make([][]float64, 0, len(snap.result.Blocks))
	for _, b := range snap.result.Blocks {
		entry := make([]float64, 0, 9)
		for _, p := range b.Polygon {
			entry = append(entry, p.X, p.Y)
		}
		out = append(out, append(entry, b.Angle))
	}
	return out
}

// CharOffsets returns 0 followed by each character's trailing edge measured
// from the leading edge of the block's first character. An unknown block, or
// one without character boxes, yields an empty slice.
func (a *Analyzer) CharOffsets(block int) []float64 {
	snap := a.snapshot()
	boxes, ok := a.chars(snap, block)
	if !ok || len(boxes) == 0 {
		return []float64{}
	}
	offsets := make([]float64, 0, len(boxes)+1)
	offsets = append(offsets, 0)
	base := boxes[0].Points[0].X
	for _, c := range boxes {
		offsets = append(offsets, c.Points[1].X-base)
	}
	return offsets
}

// chars returns the character boxes of block, segmenting them on first use
// when the backend supports it.
func (a *Analyzer) chars(snap *snapshot, block int) ([]CharBox, bool) {
	if block < 0 || block >= len(snap.result.Blocks) {
		return nil, false
	}
	b := snap.result.Blocks[block]
	if b.Chars != nil || block >= len(snap.chars) {
		return b.Chars, true
	}
	slot := &snap.chars[block]
	slot.once.Do(func() {
		seg, ok := a.backend.(CharSegmenter)
		if !ok {
			return
		}
		slot.boxes = seg.SegmentChars(snap.frame, b)
	})
	return slot.boxes, true
}

// TextRun returns n runes of the block's text starting at rune start. The
// run is truncated at the end of the text. Invalid arguments yield "".
func (a *Analyzer) TextRun(block, start, n int) string {
	snap := a.snapshot()
	if block < 0 || block >= len(snap.result.Blocks) || start < 0 || n <= 0 {
		return ""
	}
	runes := []rune(snap.result.Blocks[block].Text)
	if start >= len(runes) {
		return ""
	}
	end := len(runes)
	if n < end-start {
		end = start + n
	}
	return string(runes[start:end])
}

// Text returns the full text of block, or "" when the index is unknown.
func (a *Analyzer) Text(block int) string {
	snap := a.snapshot()
	if block < 0 || block >= len(snap.result.Blocks) {
		return ""
	}
	return snap.result.Blocks[block].Text
}

// CroppedRegion returns the part of the analyzed bitmap bounded by the
// block's first and third polygon corners. When both components of size are
// positive the crop is scaled to exactly that size. An unknown block yields
// an empty image.
func (a *Analyzer) CroppedRegion(block int, size image.Point) *image.NRGBA {
	snap := a.snapshot()
	if block < 0 || block >= len(snap.result.Blocks) || snap.source == nil {
		return vimaging.EmptyImage()
	}
	return vimaging.CropRegion(snap.source, snap.result.Blocks[block].Bounds(), size)
}

// RequestImage resolves an identifier to a block crop. It also returns the
// crop's size before any rescaling.
func (a *Analyzer) RequestImage(id string, size image.Point) (*image.NRGBA, image.Point, error) {
	block, err := ParseBlockID(id)
	if err != nil {
		return vimaging.EmptyImage(), image.Point{}, err
	}
	orig := a.CroppedRegion(block, image.Point{})
	if size.X <= 0 || size.Y <= 0 || orig.Rect.Empty() {
		return orig, orig.Rect.Size(), nil
	}
	return vimaging.CropRegion(orig, orig.Rect, size), orig.Rect.Size(), nil
}

// BlockAt returns the index of the first block whose polygon contains p, or
// -1 when none does.
func (a *Analyzer) BlockAt(p Point) int {
	snap := a.snapshot()
	for i, b := range snap.result.Blocks {
		if containsPoint(b.Polygon[:], p) {
			return i
		}
	}
	return -1
}

// containsPoint is the even-odd ray casting test. Points on the boundary
// may land on either side.
func containsPoint(poly []Point, p Point) bool {
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}
