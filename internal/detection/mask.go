package detection

import "image"

// mask is a boolean bitmap of ink pixels.
type mask struct {
	w, h int
	bits []bool
}

func newMask(w, h int) *mask {
	return &mask{w: w, h: h, bits: make([]bool, w*h)}
}

func (m *mask) set(x, y int) {
	m.bits[y*m.w+x] = true
}

func (m *mask) at(x, y int) bool {
	if x < 0 || y < 0 || x >= m.w || y >= m.h {
		return false
	}
	return m.bits[y*m.w+x]
}

func (m *mask) invert() {
	for i := range m.bits {
		m.bits[i] = !m.bits[i]
	}
}

func (m *mask) rowHasInk(y int) bool {
	row := m.bits[y*m.w : (y+1)*m.w]
	for _, b := range row {
		if b {
			return true
		}
	}
	return false
}

func (m *mask) colHasInk(x, y0, y1 int) bool {
	for y := y0; y < y1; y++ {
		if m.at(x, y) {
			return true
		}
	}
	return false
}

// trimRows shrinks r vertically to the rows that contain ink within its
// columns.
func (m *mask) trimRows(r image.Rectangle) image.Rectangle {
	rowInk := func(y int) bool {
		for x := r.Min.X; x < r.Max.X; x++ {
			if m.at(x, y) {
				return true
			}
		}
		return false
	}
	for r.Min.Y < r.Max.Y && !rowInk(r.Min.Y) {
		r.Min.Y++
	}
	for r.Max.Y > r.Min.Y && !rowInk(r.Max.Y-1) {
		r.Max.Y--
	}
	return r
}
