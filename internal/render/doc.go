// Package render draws the viewer's output: the image through the current
// transform, plus translucent highlights over live text regions.
//
// Compose and Frame resample with golang.org/x/image/draw. Use Fast
// (nearest-neighbour) while transform.Engine.Scaling reports true and
// Smooth (bilinear) once the zoom has settled; QualityFor picks one.
//
// Overlay rasterizes image-space polygons with golang.org/x/image/vector
// after mapping them through the same matrix, so highlights stay glued to
// the text under any zoom, rotation or flip.
package render
