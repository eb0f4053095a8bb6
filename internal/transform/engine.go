package transform

import (
	"image"
	"io"
	"log/slog"
	"math"
	"time"

	vimaging "github.com/ironsheep/livetext-viewer/internal/imaging"
)

// Default interaction limits.
const (
	DefaultMinZoom     = 0.5
	DefaultMaxZoom     = 10.0
	DefaultSettleDelay = 500 * time.Millisecond
)

// edgeTolerance keeps exact edge contact from being read as a gap.
const edgeTolerance = 1e-9

// Engine owns the affine mapping between image pixels and the viewport.
//
// Engine is not safe for concurrent use. All mutations are expected on one
// goroutine (the UI or protocol loop) and listeners run on that goroutine.
type Engine struct {
	viewport  image.Rectangle
	imageSize image.Point

	originImage  Point
	originDevice Point
	scale        float64
	rotation     int
	flipX        float64
	flipY        float64
	matrix       Matrix

	minZoom float64
	maxZoom float64

	settle   time.Duration
	now      func() time.Time
	lastZoom time.Time

	drag        dragState
	inSlideShow bool

	listeners []subscription
	nextID    int

	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithZoomLimits sets the zoom clamp relative to the fit-to-window scale.
// Invalid limits are ignored.
func WithZoomLimits(min, max float64) Option {
	return func(e *Engine) {
		if min > 0 && max >= min {
			e.minZoom, e.maxZoom = min, max
		}
	}
}

// WithSettleDelay sets how long Scaling stays true after the last zoom input.
func WithSettleDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.settle = d
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets the logger used for debug traces.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine for the given viewport with no image loaded.
func New(viewport image.Rectangle, opts ...Option) *Engine {
	e := &Engine{
		viewport: viewport.Canon(),
		flipX:    1,
		flipY:    1,
		minZoom:  DefaultMinZoom,
		maxZoom:  DefaultMaxZoom,
		settle:   DefaultSettleDelay,
		now:      time.Now,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.originDevice = RectFrom(e.viewport).Center()
	return e
}

// Load resets the transform to fit img inside the viewport. A nil, typed
// nil or empty image leaves the Engine untouched.
func (e *Engine) Load(img image.Image) {
	if vimaging.IsEmpty(img) {
		return
	}
	b := img.Bounds()
	e.LoadSize(b.Dx(), b.Dy())
}

// LoadSize is Load for callers that only know the image dimensions.
func (e *Engine) LoadSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.imageSize = image.Pt(width, height)
	e.logger.Debug("image loaded", "width", width, "height", height)
	e.reset()
}

// Unload forgets the current image. The matrix is kept so late readers see
// the last valid mapping.
func (e *Engine) Unload() {
	e.imageSize = image.Point{}
	e.drag = dragState{}
}

// Reset restores the fit-to-window transform for the current image.
func (e *Engine) Reset() {
	e.reset()
}

func (e *Engine) reset() {
	e.originDevice = RectFrom(e.viewport).Center()
	e.flipX, e.flipY = 1, 1
	e.rotation = 0
	if !e.Loaded() {
		return
	}
	e.originImage = e.imageCenter()
	e.scale = e.fitScale()
	e.updateTransform()
}

// SetViewport changes the device rectangle and refits the current image.
func (e *Engine) SetViewport(r image.Rectangle) {
	r = r.Canon()
	if r == e.viewport {
		return
	}
	e.viewport = r
	e.reset()
}

// Loaded reports whether an image is currently mapped.
func (e *Engine) Loaded() bool {
	return e.imageSize.X > 0 && e.imageSize.Y > 0
}

// Matrix returns the current image→device transform.
func (e *Engine) Matrix() Matrix { return e.matrix }

// Rotation returns the rotation in degrees, within [0, 360).
func (e *Engine) Rotation() int { return e.rotation }

// Flips reports whether the image is mirrored horizontally and vertically.
func (e *Engine) Flips() (x, y bool) { return e.flipX < 0, e.flipY < 0 }

// Scale returns device pixels per image pixel.
func (e *Engine) Scale() float64 { return e.scale }

// Viewport returns the device rectangle.
func (e *Engine) Viewport() image.Rectangle { return e.viewport }

// ImageBounds returns the image rectangle in image space.
func (e *Engine) ImageBounds() image.Rectangle {
	return image.Rectangle{Max: e.imageSize}
}

// Origins returns the current image/device reference pair.
func (e *Engine) Origins() (imageOrigin, deviceOrigin Point) {
	return e.originImage, e.originDevice
}

// ScaleValue returns the scale relative to fit-to-window, or 0 when no
// image is loaded.
func (e *Engine) ScaleValue() float64 {
	if !e.Loaded() {
		return 0
	}
	return e.scale / e.fitScale()
}

// fitScale is the scale at which the whole image fits the viewport with
// its aspect ratio preserved.
func (e *Engine) fitScale() float64 {
	if !e.Loaded() || e.viewport.Empty() {
		return 1
	}
	sx := float64(e.viewport.Dx()) / float64(e.imageSize.X)
	sy := float64(e.viewport.Dy()) / float64(e.imageSize.Y)
	return math.Min(sx, sy)
}

func (e *Engine) imageCenter() Point {
	return Point{X: float64(e.imageSize.X) / 2, Y: float64(e.imageSize.Y) / 2}
}

// Pan moves the image by delta device pixels.
//
// When the transformed image is smaller than the viewport on both axes the
// pan is rejected so small images stay put. Otherwise each axis is accepted
// only while the image still covers the viewport along it; a move that
// would open a gap at an edge is absorbed for that axis.
func (e *Engine) Pan(delta Point) {
	if !e.Loaded() {
		return
	}
	vp := RectFrom(e.viewport)
	box := e.deviceBounds(e.originDevice)
	if box.Dx() < vp.Dx() && box.Dy() < vp.Dy() {
		return
	}

	next := e.originDevice.Add(delta)
	cand := e.deviceBounds(next)
	if cand.Min.X > vp.Min.X+edgeTolerance || cand.Max.X < vp.Max.X-edgeTolerance {
		next.X = e.originDevice.X
	}
	if cand.Min.Y > vp.Min.Y+edgeTolerance || cand.Max.Y < vp.Max.Y-edgeTolerance {
		next.Y = e.originDevice.Y
	}
	e.setOrigins(e.originImage, next)
}

// deviceBounds returns the device-space bounding box of the image if the
// device origin were moved to originDevice.
func (e *Engine) deviceBounds(originDevice Point) Rect {
	m := compose(e.originImage, originDevice, e.rotation, e.scale*e.flipX, e.scale*e.flipY)
	return m.ApplyRect(RectFrom(e.ImageBounds()))
}

// Zoom scales the image around a pivot. imagePivot and devicePivot become
// the new origin pair so the pivot stays under the cursor. ratio is relative
// to the fit-to-window scale and is clamped to the zoom limits; at or below
// 1 the image is re-centred regardless of the pivot.
func (e *Engine) Zoom(ratio float64, imagePivot, devicePivot Point) {
	if !e.Loaded() {
		return
	}
	e.lastZoom = e.now()

	ratio = math.Max(e.minZoom, math.Min(e.maxZoom, ratio))
	e.originImage, e.originDevice = imagePivot, devicePivot
	if ratio <= 1 {
		e.originDevice = RectFrom(e.viewport).Center()
		e.originImage = e.imageCenter()
	}
	e.scale = e.fitScale() * ratio
	e.updateTransform()
	e.publish(ScaleChanged, 0)
}

// Rotate turns the image by delta degrees. Nothing happens when the
// normalized rotation does not change.
func (e *Engine) Rotate(delta int) {
	if !e.Loaded() {
		return
	}
	next := normalizeDegrees(e.rotation + delta)
	if next == e.rotation {
		return
	}
	e.rotation = next
	e.updateTransform()
	e.publish(Rotated, delta)
}

// FlipHorizontal mirrors the image left to right.
func (e *Engine) FlipHorizontal() {
	e.flipX = -e.flipX
	e.updateTransform()
	e.publish(Flipped, 0)
}

// FlipVertical mirrors the image top to bottom.
func (e *Engine) FlipVertical() {
	e.flipY = -e.flipY
	e.updateTransform()
	e.publish(Flipped, 0)
}

func (e *Engine) setOrigins(imageOrigin, deviceOrigin Point) {
	if e.originImage == imageOrigin && e.originDevice == deviceOrigin {
		return
	}
	e.originImage, e.originDevice = imageOrigin, deviceOrigin
	e.updateTransform()
}

// updateTransform recomputes the matrix and publishes TransformChanged only
// when it differs from the previous value.
func (e *Engine) updateTransform() {
	if !e.Loaded() {
		return
	}
	old := e.matrix
	e.matrix = compose(e.originImage, e.originDevice, e.rotation, e.scale*e.flipX, e.scale*e.flipY)
	if e.matrix != old {
		e.publish(TransformChanged, 0)
	}
}

// MapToImage maps a device point into image space.
func (e *Engine) MapToImage(p Point) Point {
	inv, ok := e.matrix.Invert()
	if !ok {
		return Point{}
	}
	return inv.Apply(p)
}

// MapRectToImage maps a device rectangle into image space and returns its
// bounding box.
func (e *Engine) MapRectToImage(r Rect) Rect {
	inv, ok := e.matrix.Invert()
	if !ok {
		return Rect{}
	}
	return inv.ApplyRect(r)
}

// MapToDevice maps an image point into device space.
func (e *Engine) MapToDevice(p Point) Point {
	return e.matrix.Apply(p)
}

// VisibleImageRegion returns the part of the image currently inside the
// viewport, in image pixels.
func (e *Engine) VisibleImageRegion() image.Rectangle {
	if !e.Loaded() {
		return image.Rectangle{}
	}
	return e.MapRectToImage(RectFrom(e.viewport)).Snap().Intersect(e.ImageBounds())
}

// WholeImageVisible reports whether the entire image is inside the viewport.
func (e *Engine) WholeImageVisible() bool {
	return e.Loaded() && e.VisibleImageRegion() == e.ImageBounds()
}
