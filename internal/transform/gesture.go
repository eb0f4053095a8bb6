package transform

import "math"

// Button identifies a pointer button.
type Button int

const (
	ButtonPrimary Button = iota + 1
	ButtonSecondary
	ButtonMiddle
)

type dragState struct {
	active bool
	anchor Point
}

// Press starts a drag session when the primary button goes down at pos.
func (e *Engine) Press(b Button, pos Point) {
	if b != ButtonPrimary {
		return
	}
	e.drag = dragState{active: true, anchor: pos}
}

// Move pans by the distance travelled since the previous event while a drag
// session is active.
func (e *Engine) Move(pos Point) {
	if !e.drag.active || e.inSlideShow {
		return
	}
	e.Pan(pos.Sub(e.drag.anchor))
	e.drag.anchor = pos
}

// Release ends the drag session.
func (e *Engine) Release() {
	e.drag = dragState{}
}

// Moving reports whether a drag session is active.
func (e *Engine) Moving() bool {
	return e.drag.active
}

// Wheel applies a scroll-wheel zoom at pos. angleDeltaY is in eighths of a
// degree as reported by most toolkits; pixelDeltaY, when non-zero, comes
// from high resolution touchpads and takes precedence.
func (e *Engine) Wheel(pos Point, angleDeltaY, pixelDeltaY float64) {
	if e.inSlideShow || !e.Loaded() {
		return
	}
	pivot := e.MapToImage(pos)
	ratio := e.ScaleValue()
	if pixelDeltaY == 0 {
		ratio += angleDeltaY / 8 * math.Pi / 180
	} else {
		ratio += pixelDeltaY / 100
	}
	e.Zoom(ratio, pivot, pos)
}

// Scaling reports whether zoom input arrived within the settle delay.
// Renderers use it to draw at reduced quality during continuous zoom.
func (e *Engine) Scaling() bool {
	if e.lastZoom.IsZero() {
		return false
	}
	return e.now().Sub(e.lastZoom) < e.settle
}

// SetInSlideShow disables drag panning and wheel zoom while a slideshow runs.
func (e *Engine) SetInSlideShow(on bool) {
	e.inSlideShow = on
	if on {
		e.drag = dragState{}
	}
}

// InSlideShow reports whether slideshow mode is on.
func (e *Engine) InSlideShow() bool {
	return e.inSlideShow
}
