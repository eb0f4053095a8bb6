package livetext

import (
	"context"
	"errors"
	"image"
	"math"
)

// ErrNoBackend is reported when an Analyzer was built without a backend.
var ErrNoBackend = errors.New("livetext: no detection backend configured")

// Accelerator names a hardware preference passed through to backends.
type Accelerator string

const (
	AcceleratorNone      Accelerator = "none"
	AcceleratorGPUVulkan Accelerator = "gpu-vulkan"
)

// Hardware is the acceleration preference for a detection pass. Backends
// without acceleration support ignore it.
type Hardware struct {
	Accelerator Accelerator `json:"accelerator"`
	Device      int         `json:"device"`
}

// Point is a position in image space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CharBox is one character's sub-region within a TextBlock, stored as two
// points: the leading corner first, the trailing corner second.
type CharBox struct {
	Points [2]Point `json:"points"`
}

// TextBlock is one detected text region.
type TextBlock struct {
	// Polygon holds the four corners in image space, clockwise from the
	// top-left corner for unrotated text.
	Polygon [4]Point `json:"polygon"`

	// Angle is the text rotation in degrees.
	Angle float64 `json:"angle"`

	// Text is the recognized content. Detection-only backends leave it empty.
	Text string `json:"text"`

	// Chars holds per-character boxes. A nil slice means the backend
	// segments characters lazily through CharSegmenter.
	Chars []CharBox `json:"chars,omitempty"`
}

// Bounds returns the pixel rectangle spanned by the first and third polygon
// corners, each rounded to the nearest pixel. Crops and character
// segmentation both cut along it.
func (b TextBlock) Bounds() image.Rectangle {
	p0, p2 := b.Polygon[0], b.Polygon[2]
	return image.Rect(
		int(math.Round(p0.X)), int(math.Round(p0.Y)),
		int(math.Round(p2.X)), int(math.Round(p2.Y)),
	)
}

// Detection is the raw output of one backend pass.
type Detection struct {
	Blocks []TextBlock
}

// Backend runs text detection over a frame.
//
// Implementations must honour ctx cancellation at reasonable intervals and
// must not retain f after returning.
type Backend interface {
	Analyze(ctx context.Context, f Frame, hw Hardware) (*Detection, error)
}

// CharSegmenter is implemented by backends that compute character boxes on
// demand instead of during Analyze.
type CharSegmenter interface {
	SegmentChars(f Frame, block TextBlock) []CharBox
}
