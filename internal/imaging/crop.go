package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"reflect"

	"github.com/disintegration/imaging"
)

// CropResult contains a cropped image encoded for transport.
type CropResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EmptyImage returns a zero-sized image. Query functions hand it out instead
// of an error when there is nothing to show.
func EmptyImage() *image.NRGBA {
	return image.NewNRGBA(image.Rectangle{})
}

// IsEmpty reports whether img has no pixels to offer. A nil interface, a
// typed nil such as (*image.RGBA)(nil), and zero-area bounds all count.
func IsEmpty(img image.Image) bool {
	if img == nil {
		return true
	}
	if v := reflect.ValueOf(img); v.Kind() == reflect.Ptr && v.IsNil() {
		return true
	}
	return img.Bounds().Empty()
}

// CropRegion extracts the part of img inside r.
//
// The region is clipped to the image bounds; a region that does not overlap
// the image yields EmptyImage. When both components of size are positive the
// crop is resized to exactly that size, ignoring its aspect ratio.
//
// The returned image has its origin at (0,0).
func CropRegion(img image.Image, r image.Rectangle, size image.Point) *image.NRGBA {
	if img == nil {
		return EmptyImage()
	}
	r = r.Canon().Intersect(img.Bounds())
	if r.Empty() {
		return EmptyImage()
	}

	cropped := imaging.Crop(img, r)
	if size.X > 0 && size.Y > 0 {
		cropped = imaging.Resize(cropped, size.X, size.Y, imaging.Lanczos)
	}
	return cropped
}

// EncodePNG encodes img as a base64 PNG. An empty image has no PNG form and
// yields a zero-sized result with no data.
func EncodePNG(img image.Image) (*CropResult, error) {
	if img.Bounds().Empty() {
		return &CropResult{MimeType: "image/png"}, nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &CropResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
