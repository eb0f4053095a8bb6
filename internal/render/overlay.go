package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/vector"

	"github.com/ironsheep/livetext-viewer/internal/transform"
)

// Polygon is a quadrilateral in image space.
type Polygon [4]transform.Point

// PolygonsFromBlocks converts flattened block entries, eight coordinates
// followed by an angle, into polygons. Short entries are skipped.
func PolygonsFromBlocks(blocks [][]float64) []Polygon {
	out := make([]Polygon, 0, len(blocks))
	for _, b := range blocks {
		if len(b) < 8 {
			continue
		}
		var p Polygon
		for i := range p {
			p[i] = transform.Pt(b[2*i], b[2*i+1])
		}
		out = append(out, p)
	}
	return out
}

// Style controls how live text regions are highlighted.
type Style struct {
	Fill     colorful.Color
	Selected colorful.Color

	// Alpha is the fill opacity in [0,1].
	Alpha float64
}

// DefaultStyle returns the highlight colours used by the viewer.
func DefaultStyle() Style {
	fill, _ := colorful.Hex("#3d8ee6")
	white := colorful.Color{R: 1, G: 1, B: 1}
	return Style{
		Fill:     fill,
		Selected: fill.BlendLab(white, 0.35).Clamped(),
		Alpha:    0.35,
	}
}

// ParseStyle builds a style from hex colours. An empty selected colour is
// derived from fill.
func ParseStyle(fillHex, selectedHex string, alpha float64) (Style, error) {
	s := DefaultStyle()
	if fillHex != "" {
		c, err := colorful.Hex(fillHex)
		if err != nil {
			return Style{}, fmt.Errorf("invalid fill colour: %w", err)
		}
		s.Fill = c
		s.Selected = c.BlendLab(colorful.Color{R: 1, G: 1, B: 1}, 0.35).Clamped()
	}
	if selectedHex != "" {
		c, err := colorful.Hex(selectedHex)
		if err != nil {
			return Style{}, fmt.Errorf("invalid selection colour: %w", err)
		}
		s.Selected = c
	}
	if alpha > 0 && alpha <= 1 {
		s.Alpha = alpha
	}
	return s, nil
}

func (s Style) nrgba(c colorful.Color) color.NRGBA {
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(s.Alpha*255 + 0.5)}
}

// Overlay draws polys onto dst through m. The polygon at index selected,
// if any, uses the selection colour.
func Overlay(dst draw.Image, polys []Polygon, m transform.Matrix, s Style, selected int) {
	b := dst.Bounds()
	if b.Empty() {
		return
	}
	for i, p := range polys {
		c := s.Fill
		if i == selected {
			c = s.Selected
		}
		z := vector.NewRasterizer(b.Dx(), b.Dy())
		z.DrawOp = draw.Over
		for j, pt := range p {
			d := m.Apply(pt).Sub(transform.Pt(float64(b.Min.X), float64(b.Min.Y)))
			if j == 0 {
				z.MoveTo(float32(d.X), float32(d.Y))
			} else {
				z.LineTo(float32(d.X), float32(d.Y))
			}
		}
		z.ClosePath()
		z.Draw(dst, b, image.NewUniform(s.nrgba(c)), image.Point{})
	}
}
