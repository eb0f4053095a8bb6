package render

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/ironsheep/livetext-viewer/internal/transform"
)

// Quality selects the resampling filter used by Compose.
type Quality int

const (
	// Smooth uses bilinear filtering. It is the settled-view quality.
	Smooth Quality = iota
	// Fast uses nearest-neighbour sampling, for frames drawn while the
	// user is still zooming.
	Fast
)

func (q Quality) String() string {
	if q == Fast {
		return "fast"
	}
	return "smooth"
}

// QualityFor returns Fast while the engine reports an ongoing zoom and
// Smooth otherwise.
func QualityFor(scaling bool) Quality {
	if scaling {
		return Fast
	}
	return Smooth
}

func (q Quality) interpolator() xdraw.Interpolator {
	if q == Fast {
		return xdraw.NearestNeighbor
	}
	return xdraw.BiLinear
}

// Compose fills dst with bg and draws src onto it through m, which maps
// src pixel coordinates to dst pixel coordinates. A nil src leaves only the
// background.
func Compose(dst draw.Image, src image.Image, m transform.Matrix, bg color.Color, q Quality) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	if src == nil || src.Bounds().Empty() {
		return
	}
	// Matrix is in image-origin coordinates; shift for sources whose
	// bounds do not start at (0,0).
	min := src.Bounds().Min
	s2d := m.Mul(transform.Translate(-float64(min.X), -float64(min.Y))).Aff3()
	q.interpolator().Transform(dst, s2d, src, src.Bounds(), draw.Over, nil)
}

// Frame renders src into a new viewport-sized RGBA image.
func Frame(viewport image.Rectangle, src image.Image, m transform.Matrix, bg color.Color, q Quality) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, viewport.Dx(), viewport.Dy()))
	if viewport.Min != (image.Point{}) {
		m = transform.Translate(-float64(viewport.Min.X), -float64(viewport.Min.Y)).Mul(m)
	}
	Compose(dst, src, m, bg, q)
	return dst
}
