package livetext

import (
	"image"

	"github.com/anthonynsimon/bild/clone"

	vimaging "github.com/ironsheep/livetext-viewer/internal/imaging"
)

// PixelLayout tags the byte order of a Frame.
type PixelLayout int

const (
	// LayoutRGB888 packs three bytes per pixel, red first, no alpha.
	LayoutRGB888 PixelLayout = iota + 1
)

func (l PixelLayout) String() string {
	if l == LayoutRGB888 {
		return "rgb888"
	}
	return "unknown"
}

// Frame is a raw pixel buffer handed to a detection backend. Rows are
// Stride bytes apart and padded to a four byte boundary.
type Frame struct {
	Width  int
	Height int
	Stride int
	Pix    []byte
	Layout PixelLayout
}

// Empty reports whether f holds no pixels.
func (f Frame) Empty() bool {
	return f.Width <= 0 || f.Height <= 0 || len(f.Pix) == 0
}

// Bounds returns the frame rectangle with its origin at (0,0).
func (f Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// RGBA expands f into a new *image.RGBA, for backends that work on images.
func (f Frame) RGBA() *image.RGBA {
	dst := image.NewRGBA(f.Bounds())
	for y := 0; y < f.Height; y++ {
		src := f.Pix[y*f.Stride:]
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < f.Width; x++ {
			row[x*4] = src[x*3]
			row[x*4+1] = src[x*3+1]
			row[x*4+2] = src[x*3+2]
			row[x*4+3] = 0xff
		}
	}
	return dst
}

// ownedCopy clones img into a fresh RGBA buffer with its origin moved to
// (0,0). The caller may keep mutating img afterwards.
func ownedCopy(img image.Image) *image.RGBA {
	rgba := clone.AsRGBA(img)
	rgba.Rect = rgba.Rect.Sub(rgba.Rect.Min)
	return rgba
}

// frameFromRGBA packs src into an RGB888 frame. Alpha is dropped.
func frameFromRGBA(src *image.RGBA) Frame {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	stride := (w*3 + 3) &^ 3
	pix := make([]byte, stride*h)
	for y := 0; y < h; y++ {
		in := src.Pix[y*src.Stride:]
		out := pix[y*stride:]
		for x := 0; x < w; x++ {
			out[x*3] = in[x*4]
			out[x*3+1] = in[x*4+1]
			out[x*3+2] = in[x*4+2]
		}
	}
	return Frame{Width: w, Height: h, Stride: stride, Pix: pix, Layout: LayoutRGB888}
}

// NewFrame converts img into an owned RGB888 frame.
func NewFrame(img image.Image) Frame {
	if vimaging.IsEmpty(img) {
		return Frame{}
	}
	return frameFromRGBA(ownedCopy(img))
}
