package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"reflect"
	"testing"

	"github.com/ironsheep/livetext-viewer/internal/livetext"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"", LevelLine, false},
		{"line", LevelLine, false},
		{" Block ", LevelBlock, false},
		{"word", LevelLine, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	if LevelLine.String() != "line" || LevelBlock.String() != "block" {
		t.Errorf("got %q and %q", LevelLine, LevelBlock)
	}
	if Level(7).String() != "Level(7)" {
		t.Errorf("unknown level: got %q", Level(7))
	}
}

func TestBuildBlocks(t *testing.T) {
	regions := []box{
		{rect: image.Rect(10, 10, 60, 30), text: "hi!\n"},
		{rect: image.Rect(10, 40, 60, 60), text: "  "},
		{rect: image.Rect(10, 70, 60, 90), text: "ok"},
	}
	// Symbols arrive in reading order from Tesseract but may interleave
	// across lines; the second symbol of line one is listed first here.
	symbols := []box{
		{rect: image.Rect(22, 12, 30, 28), text: "i"},
		{rect: image.Rect(10, 12, 20, 28), text: "h"},
		{rect: image.Rect(32, 12, 40, 28), text: "!"},
		{rect: image.Rect(10, 72, 20, 88), text: "o"},
		{rect: image.Rect(100, 100, 110, 110), text: "?"},
	}

	blocks := buildBlocks(regions, symbols)
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2 (blank region dropped)", len(blocks))
	}

	first := blocks[0]
	if first.Text != "hi!" {
		t.Errorf("text: got %q, want %q", first.Text, "hi!")
	}
	wantPoly := [4]livetext.Point{{X: 10, Y: 10}, {X: 60, Y: 10}, {X: 60, Y: 30}, {X: 10, Y: 30}}
	if first.Polygon != wantPoly {
		t.Errorf("polygon: got %v, want %v", first.Polygon, wantPoly)
	}
	var xs []float64
	for _, c := range first.Chars {
		xs = append(xs, c.Points[0].X)
	}
	if !reflect.DeepEqual(xs, []float64{10, 22, 32}) {
		t.Errorf("char order: got %v", xs)
	}

	if len(blocks[1].Chars) != 1 {
		t.Errorf("second block: got %d chars, want 1", len(blocks[1].Chars))
	}
}

func TestBuildBlocks_NoSymbols(t *testing.T) {
	blocks := buildBlocks([]box{{rect: image.Rect(0, 0, 5, 5), text: "a"}}, nil)
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks", len(blocks))
	}
	if blocks[0].Chars == nil || len(blocks[0].Chars) != 0 {
		t.Errorf("chars should be empty but non-nil, got %#v", blocks[0].Chars)
	}
}

func TestEncodeFrame(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 7, 3))
	img.Set(6, 2, color.RGBA{200, 100, 50, 255})

	data, err := encodeFrame(livetext.NewFrame(img))
	if err != nil {
		t.Fatalf("encodeFrame failed: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	if decoded.Bounds().Dx() != 7 || decoded.Bounds().Dy() != 3 {
		t.Errorf("dimensions: got %v", decoded.Bounds())
	}
	r, g, b, _ := decoded.At(6, 2).RGBA()
	if r>>8 != 200 || g>>8 != 100 || b>>8 != 50 {
		t.Errorf("pixel: got %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestOptionsDefaults(t *testing.T) {
	if got := (Options{}).withDefaults().Language; got != DefaultLanguage {
		t.Errorf("got %q, want %q", got, DefaultLanguage)
	}
	if got := (Options{Language: "deu"}).withDefaults().Language; got != "deu" {
		t.Errorf("explicit language overridden: %q", got)
	}
}
