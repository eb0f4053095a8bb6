// Package imaging provides the image file layer of the viewer.
//
// It decodes, crops, rotates and thumbnails images on top of
// github.com/disintegration/imaging. All operations work with standard Go
// image.Image types and use a coordinate system where (0,0) is at the
// top-left corner, X increases rightward, and Y increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based. For regions, Min is
// inclusive and Max is exclusive, as with image.Rectangle.
//
// # Loading
//
// ImageCache decodes files once and hands out the same image.Image for
// repeated loads. EXIF orientation is applied during decoding.
//
// # Cropping
//
// CropRegion clips a rectangle to the image and optionally rescales it to
// an exact size. It never fails: a region outside the image yields an
// empty image. EncodePNG prepares a crop for transport as base64.
//
// # Rotation Persistence
//
// RotateFile rewrites an image file rotated by a number of degrees,
// clockwise, through a temporary file and a rename. Persister ties this to
// the viewer: it rotates the currently displayed file, evicts it from the
// cache and refreshes its thumbnail in a ThumbnailStore.
//
// # Thread Safety
//
// ImageCache and Persister are safe for concurrent use. The other
// operations are stateless.
package imaging
