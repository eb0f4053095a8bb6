// Package transform maps image pixels onto a viewport and handles the
// gestures that change that mapping.
//
// # Coordinate Spaces
//
// Image space is the intrinsic pixel grid of the loaded bitmap, (0,0) at the
// top-left corner. Device space is the pixel grid of the viewport. Both have
// Y pointing down, so a positive rotation turns the image clockwise.
//
// # Transform
//
// The Engine keeps an origin pair (a point in image space pinned to a point
// in device space), a scale, a rotation in degrees and a flip sign per axis.
// From these it derives
//
//	matrix = translate(originDevice - L·originImage) ∘ L
//	L      = rotate(rotation) ∘ scale(scale·flipX, scale·flipY)
//
// The matrix is recomputed on every change and listeners are told about it
// only when it actually differs from the previous value.
//
// # Gestures
//
// Press/Move/Release implement a primary-button drag session that pans the
// image. Wheel and Zoom scale around a pivot. Scaling reports whether zoom
// input is still arriving so a renderer can trade quality for speed.
//
// # Thread Safety
//
// Engine is confined to one goroutine. Listeners run synchronously inside
// the mutating call.
package transform
