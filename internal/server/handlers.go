package server

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/livetext-viewer/internal/imaging"
	"github.com/ironsheep/livetext-viewer/internal/render"
	"github.com/ironsheep/livetext-viewer/internal/transform"
)

func (s *Server) handlers() map[string]handlerFunc {
	return map[string]handlerFunc{
		"viewer/open":      s.handleOpen,
		"viewer/close":     s.handleClose,
		"viewer/resize":    s.handleResize,
		"viewer/reset":     s.handleReset,
		"viewer/pan":       s.handlePan,
		"viewer/zoom":      s.handleZoom,
		"viewer/wheel":     s.handleWheel,
		"viewer/rotate":    s.handleRotate,
		"viewer/flip":      s.handleFlip,
		"viewer/press":     s.handlePress,
		"viewer/move":      s.handleMove,
		"viewer/release":   s.handleRelease,
		"viewer/slideshow": s.handleSlideShow,
		"viewer/state":     s.handleState,
		"viewer/map":       s.handleMap,
		"viewer/render":    s.handleRender,

		"livetext/analyze":      s.handleAnalyze,
		"livetext/break":        s.handleBreak,
		"livetext/status":       s.handleStatus,
		"livetext/blocks":       s.handleBlocks,
		"livetext/char_offsets": s.handleCharOffsets,
		"livetext/text":         s.handleText,
		"livetext/crop":         s.handleCrop,
		"livetext/hit":          s.handleHit,
		"livetext/copy":         s.handleCopy,
	}
}

// point is a device or image coordinate in request parameters.
type point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p point) pt() transform.Point { return transform.Pt(p.X, p.Y) }

// ViewerState describes the engine after a command.
type ViewerState struct {
	Path          string           `json:"path,omitempty"`
	Loaded        bool             `json:"loaded"`
	ImageWidth    int              `json:"image_width"`
	ImageHeight   int              `json:"image_height"`
	Viewport      image.Rectangle  `json:"viewport"`
	Matrix        transform.Matrix `json:"matrix"`
	Rotation      int              `json:"rotation"`
	FlippedX      bool             `json:"flipped_x"`
	FlippedY      bool             `json:"flipped_y"`
	Scale         float64          `json:"scale"`
	ScaleValue    float64          `json:"scale_value"`
	Scaling       bool             `json:"scaling"`
	Moving        bool             `json:"moving"`
	SlideShow     bool             `json:"slideshow"`
	VisibleRegion image.Rectangle  `json:"visible_region"`
	WholeVisible  bool             `json:"whole_visible"`
}

func (s *Server) state() *ViewerState {
	e := s.deps.Engine
	fx, fy := e.Flips()
	b := e.ImageBounds()
	return &ViewerState{
		Path:          s.path,
		Loaded:        e.Loaded(),
		ImageWidth:    b.Dx(),
		ImageHeight:   b.Dy(),
		Viewport:      e.Viewport(),
		Matrix:        e.Matrix(),
		Rotation:      e.Rotation(),
		FlippedX:      fx,
		FlippedY:      fy,
		Scale:         e.Scale(),
		ScaleValue:    e.ScaleValue(),
		Scaling:       e.Scaling(),
		Moving:        e.Moving(),
		SlideShow:     e.InSlideShow(),
		VisibleRegion: e.VisibleImageRegion(),
		WholeVisible:  e.WholeImageVisible(),
	}
}

// handleOpen loads an image file into the engine and the analyzer.
func (s *Server) handleOpen(params json.RawMessage) (interface{}, error) {
	var args struct {
		Path    string `json:"path"`
		Analyze bool   `json:"analyze"`
	}
	if err := decodeParams(params, &args); err != nil {
		return nil, err
	}
	if args.Path == "" {
		return nil, invalidParams("path is required")
	}

	img, info, err := imaging.LoadImageInfo(s.deps.Cache, args.Path)
	if err != nil {
		return nil, err
	}

	s.path, s.img, s.selected = args.Path, img, -1
	if s.deps.Persister != nil {
		s.deps.Persister.SetPath(args.Path)
	}
	s.deps.Engine.Load(img)
	s.deps.Analyzer.SetImage(img)
	s.logger.Info("image opened", "path", args.Path, "width", info.Width, "height", info.Height)

	result := map[string]interface{}{
		"info":       info,
		"state":      s.state(),
		"generation": s.deps.Analyzer.Generation(),
	}
	if args.Analyze {
		if _, err := s.deps.Analyzer.Analyze(s.ctx); err != nil {
			return nil, err
		}
		result["analyzing"] = true
	}
	return result, nil
}

func (s *Server) handleClose(json.RawMessage) (interface{}, error) {
	if s.deps.Persister != nil {
		s.deps.Persister.SetPath("")
	}
	s.deps.Engine.Unload()
	s.deps.Analyzer.SetImage(nil)
	s.path, s.img, s.selected = "", nil, -1
	return s.state(), nil
}

func (s *Server) handleResize(params json.RawMessage) (interface{}, error) {
	var args struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	if err := decodeParams(params, &args); err != nil {
		return nil, err
	}
	if args.Width <= 0 || args.Height <= 0 {
		return nil, invalidParams("width and height must be positive, got %dx%d", args.Width, args.Height)
	}
	s.deps.Engine.SetViewport(image.Rect(0, 0, args.Width, args.Height))
	return s.state(), nil
}

func (s *Server) handleReset(json.RawMessage) (interface{}, error) {
	s.deps.Engine.Reset()
	return s.state(), nil
}

func (s *Server) handlePan(params json.RawMessage) (interface{}, error) {
	var args struct {
		DX float64 `json:"dx"`
		DY float64 `json:"dy"`
	}
	if err := decodeParams(params, &args); err != nil {
		return nil, err
	}
	s.deps.Engine.Pan(transform.Pt(args.DX, args.DY))
	return s.state(), nil
}

// handleZoom sets the scale relative to fit-to-window. The pivot is a
// device point and defaults to the viewport centre.
func (s *Server) handleZoom(params json.RawMessage) (interface{}, error) {
	var args struct {
		ScaleValue float64 `json:"scale_value"`
		Pivot      *point  `json:"pivot,omitempty"`
	}
	if err := decodeParams(params, &args); err != nil {
		return nil, err
	}
	if args.ScaleValue <= 0 {
		return nil, invalidParams("scale_value must be positive")
	}

	e := s.deps.Engine
	device := transform.RectFrom(e.Viewport()).Center()
	if args.Pivot != nil {
		device = args.Pivot.pt()
	}
	e.Zoom(args.ScaleValue, e.MapToImage(device), device)
	return s.state(), nil
}

func (s *Server) handleWheel(params json.RawMessage) (interface{}, error) {
	var args struct {
		X          float64 `json:"x"`
		Y          float64 `json:"y"`
		AngleDelta float64 `json:"angle_delta"`
		PixelDelta float64 `json:"pixel_delta"`
	}
	if err := decodeParams(params, &args); err != nil {
		return nil, err
	}
	s.deps.Engine.Wheel(transform.Pt(args.X, args.Y), args.AngleDelta, args.PixelDelta)
	return s.state(), nil
}

func (s *Server) handleRotate(params json.RawMessage) (interface{}, error) {
	var args struct {
		Degrees *int `json:"degrees"`
	}
	if err := decodeParams(params, &args); err != nil {
		return nil, err
	}
	deg := 90
	if args.Degrees != nil {
		deg = *args.Degrees
	}
	s.deps.Engine.Rotate(deg)
	return s.state(), nil
}

func (s *Server) handleFlip(params json.RawMessage) (interface{}, error) {
	var args struct {
		Axis string `json:"axis"`
	}
	if err := decodeParams(params, &args); err != nil {
		return nil, err
	}
	switch strings.ToLower(args.Axis) {
	case "", "horizontal", "h", "x":
		s.deps.Engine.FlipHorizontal()
	case "vertical", "v", "y":
		s.deps.Engine.FlipVertical()
	default:
		return nil, invalidParams("unknown axis %q (want horizontal or vertical)", args.Axis)
	}
	return s.state(), nil
}

func parseButton(name string) (transform.Button, error) {
	switch strings.ToLower(name) {
	case "", "primary", "left":
		return transform.ButtonPrimary, nil
	case "secondary", "right":
		return transform.ButtonSecondary, nil
	case "middle":
		return transform.ButtonMiddle, nil
	}
	return 0, invalidParams("unknown button %q", name)
}

func (s *Server) handlePress(params json.RawMessage) (interface{}, error) {
	var args struct {
		Button string `json:"button"`
		point
	}
	if err := decodeParams(params, &args); err != nil {
		return nil, err
	}
	b, err := parseButton(args.Button)
	if err != nil {
		return nil, err
	}
	s.deps.Engine.Press(b, args.pt())
	return s.state(), nil
}

func (s *Server) handleMove(params json.RawMessage) (interface{}, error) {
	var args point
	if err := decodeParams(params, &args); err != nil {
		return nil, err
	}
	s.deps.Engine.Move(args.pt())
	return s.state(), nil
}

func (s *Server) handleRelease(json.RawMessage) (interface{}, error) {
	s.deps.Engine.Release()
	return s.state(), nil
}

func (s *Server) handleSlideShow(params json.RawMessage) (interface{}, error) {
	var args struct {
		On bool `json:"on"`
	}
	if err := decodeParams(params, &args); err != nil {
		return nil, err
	}
	s.deps.Engine.SetInSlideShow(args.On)
	return s.state(), nil
}

func (s *Server) handleState(json.RawMessage) (interface{}, error) {
	return s.state(), nil
}

// handleMap converts a point between device and image space.
func (s *Server) handleMap(params json.RawMessage) (interface{}, error) {
	var args struct {
		point
		To string `json:"to"`
	}
	if err := decodeParams(params, &args); err != nil {
		return nil, err
	}

	var out transform.Point
	switch strings.ToLower(args.To) {
	case "", "image":
		out = s.deps.Engine.MapToImage(args.pt())
	case "device":
		out = s.deps.Engine.MapToDevice(args.pt())
	default:
		return nil, invalidParams("unknown target space %q (want image or device)", args.To)
	}
	return point{X: out.X, Y: out.Y}, nil
}

// handleRender draws the current view, with live text highlights unless
// overlay is false.
func (s *Server) handleRender(params json.RawMessage) (interface{}, error) {
	var args struct {
		Background string `json:"background"`
		Overlay    *bool  `json:"overlay"`
	}
	if err := decodeParams(params, &args); err != nil {
		return nil, err
	}

	var bg color.Color = color.Black
	if args.Background != "" {
		c, err := colorful.Hex(args.Background)
		if err != nil {
			return nil, invalidParams("invalid background colour: %v", err)
		}
		bg = c
	}

	e := s.deps.Engine
	if e.Viewport().Empty() {
		return nil, fmt.Errorf("viewport is empty")
	}
	q := render.QualityFor(e.Scaling())
	frame := render.Frame(e.Viewport(), s.img, e.Matrix(), bg, q)
	if args.Overlay == nil || *args.Overlay {
		polys := render.PolygonsFromBlocks(s.deps.Analyzer.LiveBlocks())
		m := transform.Translate(-float64(e.Viewport().Min.X), -float64(e.Viewport().Min.Y)).Mul(e.Matrix())
		render.Overlay(frame, polys, m, s.deps.Style, s.selected)
	}

	enc, err := imaging.EncodePNG(frame)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"width":        enc.Width,
		"height":       enc.Height,
		"quality":      q.String(),
		"image_base64": enc.ImageBase64,
		"mime_type":    enc.MimeType,
	}, nil
}
