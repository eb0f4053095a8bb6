package server

import (
	"context"
	"reflect"
	"testing"

	"github.com/ironsheep/livetext-viewer/internal/imaging"
	"github.com/ironsheep/livetext-viewer/internal/livetext"
	"github.com/ironsheep/livetext-viewer/internal/transform"
)

// openAndAnalyze loads the text-like image and waits for its first pass.
func openAndAnalyze(t *testing.T, env *testEnv) {
	t.Helper()
	path := createTestImageFile(t, textLikeImage())
	env.mustCall(t, "viewer/open", map[string]interface{}{"path": path, "analyze": true}, nil)
	if c := env.wait(t); c.Err != nil {
		t.Fatalf("analysis failed: %v", c.Err)
	}
}

func TestHandleBlocks(t *testing.T) {
	env := newTestServer(t)

	var empty struct {
		Blocks []BlockInfo `json:"blocks"`
	}
	env.mustCall(t, "livetext/blocks", nil, &empty)
	if len(empty.Blocks) != 0 {
		t.Fatalf("blocks before analysis: got %d", len(empty.Blocks))
	}

	openAndAnalyze(t, env)

	var result struct {
		Generation uint64      `json:"generation"`
		Blocks     []BlockInfo `json:"blocks"`
	}
	env.mustCall(t, "livetext/blocks", nil, &result)
	if result.Generation != env.analyzer.Generation() {
		t.Errorf("generation: got %d, want %d", result.Generation, env.analyzer.Generation())
	}
	if len(result.Blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(result.Blocks))
	}
	if result.Blocks[1].ID != "block_1" {
		t.Errorf("id: got %q", result.Blocks[1].ID)
	}
	want := []float64{100, 10, 130, 10, 130, 24, 100, 24, 0}
	if !reflect.DeepEqual(result.Blocks[1].Geom, want) {
		t.Errorf("geometry: got %v, want %v", result.Blocks[1].Geom, want)
	}
}

func TestHandleStatusAndBreak(t *testing.T) {
	env := newTestServer(t)
	openAndAnalyze(t, env)

	var status struct {
		Generation       uint64 `json:"generation"`
		ResultGeneration uint64 `json:"result_generation"`
		Busy             bool   `json:"busy"`
		Blocks           int    `json:"blocks"`
		Backend          string `json:"backend"`
	}
	env.mustCall(t, "livetext/status", nil, &status)
	if status.Busy || status.Blocks != 3 || status.Backend != "heuristic" {
		t.Errorf("status: got %+v", status)
	}
	if status.Generation != status.ResultGeneration {
		t.Errorf("result generation %d lags image generation %d", status.ResultGeneration, status.Generation)
	}

	// Breaking with nothing in flight is harmless.
	env.mustCall(t, "livetext/break", nil, nil)
	env.mustCall(t, "livetext/status", nil, &status)
	if status.Blocks != 3 {
		t.Errorf("break should keep the published result, got %d blocks", status.Blocks)
	}
}

func TestHandleCharOffsets(t *testing.T) {
	env := newTestServer(t)
	openAndAnalyze(t, env)

	tests := []struct {
		name   string
		params map[string]interface{}
		want   []float64
	}{
		{"by index", map[string]interface{}{"block": 0}, []float64{0, 10, 24, 38}},
		{"by id", map[string]interface{}{"id": "block_0"}, []float64{0, 10, 24, 38}},
		{"single char", map[string]interface{}{"block": 1}, []float64{0, 30}},
		{"unknown block", map[string]interface{}{"block": 9}, []float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result struct {
				Offsets []float64 `json:"offsets"`
			}
			env.mustCall(t, "livetext/char_offsets", tt.params, &result)
			if len(result.Offsets) != len(tt.want) {
				t.Fatalf("got %v, want %v", result.Offsets, tt.want)
			}
			for i := range tt.want {
				if !approx(result.Offsets[i], tt.want[i]) {
					t.Errorf("offset %d: got %v, want %v", i, result.Offsets[i], tt.want[i])
				}
			}
		})
	}
}

func TestHandleText_DetectionOnlyBackend(t *testing.T) {
	env := newTestServer(t)
	openAndAnalyze(t, env)

	var result struct {
		Block int    `json:"block"`
		Text  string `json:"text"`
	}
	env.mustCall(t, "livetext/text", map[string]interface{}{"id": "block_2"}, &result)
	if result.Block != 2 || result.Text != "" {
		t.Errorf("got %+v, want block 2 with no text", result)
	}
}

func TestHandleCrop(t *testing.T) {
	env := newTestServer(t)
	openAndAnalyze(t, env)

	tests := []struct {
		name       string
		params     map[string]interface{}
		wantW      int
		wantH      int
		wantOrigW  int
		wantOrigH  int
		wantDarkAt bool
	}{
		{"natural size", map[string]interface{}{"block": 1}, 30, 14, 30, 14, true},
		{"scaled", map[string]interface{}{"id": "block_1", "width": 60, "height": 28}, 60, 28, 30, 14, true},
		{"unknown block", map[string]interface{}{"block": 42}, 0, 0, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result struct {
				ID             string             `json:"id"`
				OriginalWidth  int                `json:"original_width"`
				OriginalHeight int                `json:"original_height"`
				Crop           imaging.CropResult `json:"crop"`
			}
			env.mustCall(t, "livetext/crop", tt.params, &result)
			if result.Crop.Width != tt.wantW || result.Crop.Height != tt.wantH {
				t.Errorf("crop size: got %dx%d, want %dx%d", result.Crop.Width, result.Crop.Height, tt.wantW, tt.wantH)
			}
			if result.OriginalWidth != tt.wantOrigW || result.OriginalHeight != tt.wantOrigH {
				t.Errorf("original size: got %dx%d", result.OriginalWidth, result.OriginalHeight)
			}
			if result.Crop.MimeType != "image/png" {
				t.Errorf("mime type: got %q", result.Crop.MimeType)
			}
			if tt.wantDarkAt {
				img := decodePNG(t, result.Crop.ImageBase64)
				if r, _, _, _ := img.At(img.Bounds().Dx()/2, img.Bounds().Dy()/2).RGBA(); r>>8 > 10 {
					t.Errorf("crop centre should be ink, got r=%d", r>>8)
				}
			}
		})
	}
}

func TestHandleHit(t *testing.T) {
	env := newTestServer(t)
	openAndAnalyze(t, env)
	// Resizing refits the image to twice its size; hits follow the mapping.
	env.mustCall(t, "viewer/resize", map[string]int{"width": 400, "height": 200}, nil)

	tests := []struct {
		x, y float64
		want int
	}{
		{60, 34, 0},
		{230, 34, 1},
		{100, 110, 2},
		{300, 160, -1},
	}
	for _, tt := range tests {
		var result struct {
			Block int    `json:"block"`
			ID    string `json:"id"`
		}
		env.mustCall(t, "livetext/hit", map[string]float64{"x": tt.x, "y": tt.y}, &result)
		if result.Block != tt.want {
			t.Errorf("hit (%v,%v): got %d, want %d", tt.x, tt.y, result.Block, tt.want)
		}
		if tt.want >= 0 && result.ID == "" {
			t.Errorf("hit (%v,%v): missing id", tt.x, tt.y)
		}
	}
	if env.s.selected != -1 {
		t.Errorf("a miss should clear the selection, got %d", env.s.selected)
	}
}

func TestHandleHit_FollowsRotation(t *testing.T) {
	env := newTestServer(t)

	var miss struct {
		Block int `json:"block"`
	}
	env.mustCall(t, "livetext/hit", map[string]float64{"x": 20, "y": 17}, &miss)
	if miss.Block != -1 {
		t.Errorf("hit without an image: got %d, want -1", miss.Block)
	}

	openAndAnalyze(t, env)
	env.mustCall(t, "viewer/rotate", map[string]int{"degrees": 180}, nil)

	tests := []struct {
		image transform.Point
		want  int
	}{
		{transform.Pt(20, 17), 0},
		{transform.Pt(115, 17), 1},
		{transform.Pt(50, 55), 2},
		{transform.Pt(180, 80), -1},
	}
	for _, tt := range tests {
		d := env.engine.MapToDevice(tt.image)
		var result struct {
			Block int `json:"block"`
		}
		env.mustCall(t, "livetext/hit", map[string]float64{"x": d.X, "y": d.Y}, &result)
		if result.Block != tt.want {
			t.Errorf("hit at image %v (device %v): got %d, want %d", tt.image, d, result.Block, tt.want)
		}
	}
}

// textBackend reports one recognized block covering the first word of
// textLikeImage.
type textBackend struct{}

func (textBackend) Analyze(ctx context.Context, f livetext.Frame, hw livetext.Hardware) (*livetext.Detection, error) {
	return &livetext.Detection{Blocks: []livetext.TextBlock{{
		Polygon: [4]livetext.Point{{X: 10, Y: 10}, {X: 48, Y: 10}, {X: 48, Y: 24}, {X: 10, Y: 24}},
		Text:    "cafe\u0301 ok",
	}}}, nil
}

func TestHandleCopy(t *testing.T) {
	env := newTestServerWith(t, textBackend{})
	openAndAnalyze(t, env)

	if resp := env.call(t, "livetext/copy", nil, nil); resp.Error == nil {
		t.Error("copy with no selection and no block should fail")
	}

	var hit struct {
		Block int `json:"block"`
	}
	env.mustCall(t, "livetext/hit", map[string]float64{"x": 30, "y": 17}, &hit)
	if hit.Block != 0 {
		t.Fatalf("hit: got %d, want 0", hit.Block)
	}

	var result struct {
		Text string `json:"text"`
	}
	env.mustCall(t, "livetext/copy", nil, &result)
	env.mustCall(t, "livetext/copy", map[string]interface{}{"id": "block_0", "start": 2, "count": 2}, &result)

	want := []string{"caf\u00e9 ok", "f\u00e9"}
	if !reflect.DeepEqual(env.copier.copied, want) {
		t.Errorf("copied: got %q, want %q", env.copier.copied, want)
	}

	env.s.deps.Copier = nil
	resp := env.call(t, "livetext/copy", map[string]interface{}{"block": 0}, nil)
	if resp.Error == nil || resp.Error.Code != CodeOperationFailed {
		t.Errorf("copy without a copier: got %+v", resp.Error)
	}
}
