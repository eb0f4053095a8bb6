package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// quadrantImage returns an image with red, green, blue and white quadrants.
func quadrantImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.RGBA
			switch {
			case x < width/2 && y < height/2:
				c = color.RGBA{255, 0, 0, 255}
			case y < height/2:
				c = color.RGBA{0, 255, 0, 255}
			case x < width/2:
				c = color.RGBA{0, 0, 255, 255}
			default:
				c = color.RGBA{255, 255, 255, 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestCropRegion(t *testing.T) {
	img := quadrantImage(100, 100)

	tests := []struct {
		name string
		r    image.Rectangle
		size image.Point
		want image.Point
	}{
		{"inside", image.Rect(10, 10, 50, 30), image.Point{}, image.Pt(40, 20)},
		{"reversed corners", image.Rect(50, 30, 10, 10), image.Point{}, image.Pt(40, 20)},
		{"clipped", image.Rect(80, 80, 150, 150), image.Point{}, image.Pt(20, 20)},
		{"rescaled ignoring aspect", image.Rect(0, 0, 40, 20), image.Pt(10, 30), image.Pt(10, 30)},
		{"one size component ignored", image.Rect(0, 0, 40, 20), image.Pt(10, 0), image.Pt(40, 20)},
		{"outside", image.Rect(200, 200, 300, 300), image.Point{}, image.Point{}},
		{"empty", image.Rect(10, 10, 10, 40), image.Point{}, image.Point{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CropRegion(img, tt.r, tt.size)
			if got.Rect.Size() != tt.want {
				t.Errorf("size: got %v, want %v", got.Rect.Size(), tt.want)
			}
			if got.Rect.Min != (image.Point{}) {
				t.Errorf("origin: got %v, want (0,0)", got.Rect.Min)
			}
		})
	}
}

func TestCropRegion_Pixels(t *testing.T) {
	img := quadrantImage(100, 100)

	// The crop straddles the red and green quadrants.
	got := CropRegion(img, image.Rect(40, 0, 60, 10), image.Point{})
	if r, g, _, _ := got.At(0, 0).RGBA(); r>>8 != 255 || g>>8 != 0 {
		t.Errorf("left pixel should be red, got r=%d g=%d", r>>8, g>>8)
	}
	if r, g, _, _ := got.At(19, 0).RGBA(); r>>8 != 0 || g>>8 != 255 {
		t.Errorf("right pixel should be green, got r=%d g=%d", r>>8, g>>8)
	}
}

func TestCropRegion_OffsetBounds(t *testing.T) {
	img := quadrantImage(100, 100).SubImage(image.Rect(50, 50, 100, 100))

	got := CropRegion(img, image.Rect(60, 60, 70, 80), image.Point{})
	if got.Rect.Size() != image.Pt(10, 20) {
		t.Errorf("size: got %v, want (10,20)", got.Rect.Size())
	}
}

func TestCropRegion_NilImage(t *testing.T) {
	if got := CropRegion(nil, image.Rect(0, 0, 10, 10), image.Point{}); !got.Rect.Empty() {
		t.Errorf("got %v, want empty", got.Rect)
	}
}

func TestEncodePNG(t *testing.T) {
	img := CropRegion(quadrantImage(100, 100), image.Rect(0, 0, 30, 20), image.Point{})

	result, err := EncodePNG(img)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	if result.Width != 30 || result.Height != 20 {
		t.Errorf("dimensions: got %dx%d, want 30x20", result.Width, result.Height)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}

	data, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	if decoded.Bounds().Dx() != 30 {
		t.Errorf("decoded width: got %d", decoded.Bounds().Dx())
	}
}

func TestEncodePNG_Empty(t *testing.T) {
	result, err := EncodePNG(EmptyImage())
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	if result.Width != 0 || result.Height != 0 || result.ImageBase64 != "" {
		t.Errorf("got %+v, want an empty result", result)
	}
}

func TestIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
		want bool
	}{
		{"nil interface", nil, true},
		{"typed nil", (*image.RGBA)(nil), true},
		{"zero area", image.NewRGBA(image.Rect(5, 5, 5, 9)), true},
		{"pixels", image.NewGray(image.Rect(0, 0, 1, 1)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEmpty(tt.img); got != tt.want {
				t.Errorf("IsEmpty: got %v, want %v", got, tt.want)
			}
		})
	}
}
