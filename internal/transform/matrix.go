package transform

import (
	"image"
	"math"

	"golang.org/x/image/math/f64"
)

// snapEpsilon absorbs floating point noise when rounding mapped coordinates
// back onto the pixel grid.
const snapEpsilon = 1e-6

// Point is a position in either image or device space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Rect is an axis-aligned rectangle with floating point edges.
// Min is inclusive and Max exclusive, matching image.Rectangle.
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// RectFrom converts an integer rectangle.
func RectFrom(r image.Rectangle) Rect {
	return Rect{
		Min: Point{X: float64(r.Min.X), Y: float64(r.Min.Y)},
		Max: Point{X: float64(r.Max.X), Y: float64(r.Max.Y)},
	}
}

// Dx returns the width of r.
func (r Rect) Dx() float64 { return r.Max.X - r.Min.X }

// Dy returns the height of r.
func (r Rect) Dy() float64 { return r.Max.Y - r.Min.Y }

// Center returns the midpoint of r.
func (r Rect) Center() Point {
	return Point{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}

// Snap rounds r outward onto the integer grid. Edges within snapEpsilon of
// an integer are rounded to it.
func (r Rect) Snap() image.Rectangle {
	return image.Rect(snapFloor(r.Min.X), snapFloor(r.Min.Y), snapCeil(r.Max.X), snapCeil(r.Max.Y))
}

func snapFloor(v float64) int {
	if n := math.Round(v); math.Abs(v-n) < snapEpsilon {
		return int(n)
	}
	return int(math.Floor(v))
}

func snapCeil(v float64) int {
	if n := math.Round(v); math.Abs(v-n) < snapEpsilon {
		return int(n)
	}
	return int(math.Ceil(v))
}

// Matrix is a 2D affine transform in row-major form:
//
//	x' = m[0]*x + m[1]*y + m[2]
//	y' = m[3]*x + m[4]*y + m[5]
//
// It shares its layout with f64.Aff3 so it can be handed to
// golang.org/x/image/draw without conversion cost.
type Matrix f64.Aff3

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{1, 0, 0, 0, 1, 0}
}

// Translate returns a translation by (tx, ty).
func Translate(tx, ty float64) Matrix {
	return Matrix{1, 0, tx, 0, 1, ty}
}

// Scale returns a scaling transform.
func Scale(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, 0, sy, 0}
}

// Rotate returns a rotation by deg degrees. With Y pointing down a positive
// angle turns clockwise on screen. Quarter turns are exact.
func Rotate(deg float64) Matrix {
	sin, cos := sinCosDegrees(deg)
	return Matrix{cos, -sin, 0, sin, cos, 0}
}

func sinCosDegrees(deg float64) (float64, float64) {
	if q := deg / 90; q == math.Trunc(q) {
		switch ((int(q) % 4) + 4) % 4 {
		case 0:
			return 0, 1
		case 1:
			return 1, 0
		case 2:
			return 0, -1
		default:
			return -1, 0
		}
	}
	return math.Sincos(deg * math.Pi / 180)
}

// Mul returns m∘o: the transform that applies o first and then m.
func (m Matrix) Mul(o Matrix) Matrix {
	return Matrix{
		m[0]*o[0] + m[1]*o[3],
		m[0]*o[1] + m[1]*o[4],
		m[0]*o[2] + m[1]*o[5] + m[2],
		m[3]*o[0] + m[4]*o[3],
		m[3]*o[1] + m[4]*o[4],
		m[3]*o[2] + m[4]*o[5] + m[5],
	}
}

// Apply maps p through m.
func (m Matrix) Apply(p Point) Point {
	return Point{
		X: m[0]*p.X + m[1]*p.Y + m[2],
		Y: m[3]*p.X + m[4]*p.Y + m[5],
	}
}

// ApplyRect maps the corners of r and returns their bounding box.
func (m Matrix) ApplyRect(r Rect) Rect {
	corners := [4]Point{
		m.Apply(r.Min),
		m.Apply(Point{X: r.Max.X, Y: r.Min.Y}),
		m.Apply(r.Max),
		m.Apply(Point{X: r.Min.X, Y: r.Max.Y}),
	}
	out := Rect{Min: corners[0], Max: corners[0]}
	for _, c := range corners[1:] {
		out.Min.X = math.Min(out.Min.X, c.X)
		out.Min.Y = math.Min(out.Min.Y, c.Y)
		out.Max.X = math.Max(out.Max.X, c.X)
		out.Max.Y = math.Max(out.Max.Y, c.Y)
	}
	return out
}

// Invert returns the inverse of m. ok is false when m is singular.
func (m Matrix) Invert() (inv Matrix, ok bool) {
	det := m[0]*m[4] - m[1]*m[3]
	if math.Abs(det) < 1e-12 {
		return Matrix{}, false
	}
	return Matrix{
		m[4] / det,
		-m[1] / det,
		(m[1]*m[5] - m[4]*m[2]) / det,
		-m[3] / det,
		m[0] / det,
		(m[3]*m[2] - m[0]*m[5]) / det,
	}, true
}

// ApproxEqual reports whether every coefficient of m and o differs by at
// most eps.
func (m Matrix) ApproxEqual(o Matrix, eps float64) bool {
	for i := range m {
		if math.Abs(m[i]-o[i]) > eps {
			return false
		}
	}
	return true
}

// Aff3 returns m in the form expected by golang.org/x/image/draw.
func (m Matrix) Aff3() f64.Aff3 {
	return f64.Aff3(m)
}

// compose builds translate(originDevice - L·originImage) ∘ L where
// L = rotate(rotation) ∘ scale(sx, sy).
func compose(originImage, originDevice Point, rotation int, sx, sy float64) Matrix {
	linear := Rotate(float64(rotation)).Mul(Scale(sx, sy))
	o := linear.Apply(originImage)
	return Translate(originDevice.X-o.X, originDevice.Y-o.Y).Mul(linear)
}

// normalizeDegrees folds deg into [0, 360).
func normalizeDegrees(deg int) int {
	return ((deg % 360) + 360) % 360
}
