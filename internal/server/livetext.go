package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/livetext-viewer/internal/imaging"
	"github.com/ironsheep/livetext-viewer/internal/livetext"
	"github.com/ironsheep/livetext-viewer/internal/transform"
)

// BlockPrefix names blocks in identifiers handed to clients.
const BlockPrefix = "block"

// blockRef selects a block either by index or by identifier. The
// identifier wins when both are given.
type blockRef struct {
	Block *int   `json:"block,omitempty"`
	ID    string `json:"id,omitempty"`
}

func (r blockRef) index() (int, error) {
	if r.ID != "" {
		i, err := livetext.ParseBlockID(r.ID)
		if err != nil {
			return 0, invalidParams("%v", err)
		}
		return i, nil
	}
	if r.Block == nil {
		return 0, invalidParams("block or id is required")
	}
	if *r.Block < 0 {
		return 0, invalidParams("block must not be negative")
	}
	return *r.Block, nil
}

func (s *Server) handleAnalyze(json.RawMessage) (interface{}, error) {
	gen, err := s.deps.Analyzer.Analyze(s.ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"generation": gen}, nil
}

func (s *Server) handleBreak(json.RawMessage) (interface{}, error) {
	s.deps.Analyzer.BreakAnalyze()
	return map[string]interface{}{"busy": s.deps.Analyzer.Busy()}, nil
}

func (s *Server) handleStatus(json.RawMessage) (interface{}, error) {
	a := s.deps.Analyzer
	return map[string]interface{}{
		"generation":        a.Generation(),
		"result_generation": a.Result().Generation,
		"busy":              a.Busy(),
		"blocks":            len(a.Result().Blocks),
		"backend":           s.deps.Backend,
	}, nil
}

// BlockInfo describes one live text block.
type BlockInfo struct {
	ID   string    `json:"id"`
	Geom []float64 `json:"geometry"`
	Text string    `json:"text"`
}

func (s *Server) handleBlocks(json.RawMessage) (interface{}, error) {
	a := s.deps.Analyzer
	res := a.Result()
	live := a.LiveBlocks()
	blocks := make([]BlockInfo, len(live))
	for i, g := range live {
		blocks[i] = BlockInfo{
			ID:   livetext.BlockID(BlockPrefix, i),
			Geom: g,
			Text: a.Text(i),
		}
	}
	return map[string]interface{}{
		"generation": res.Generation,
		"blocks":     blocks,
	}, nil
}

func (s *Server) handleCharOffsets(params json.RawMessage) (interface{}, error) {
	var args blockRef
	if err := decodeParams(params, &args); err != nil {
		return nil, err
	}
	i, err := args.index()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"block":   i,
		"offsets": s.deps.Analyzer.CharOffsets(i),
	}, nil
}

type textArgs struct {
	blockRef
	Start int `json:"start"`
	Count int `json:"count"`
}

// text returns the requested run, or the whole block text when count is
// not positive.
func (s *Server) text(args textArgs) (int, string, error) {
	i, err := args.index()
	if err != nil {
		return 0, "", err
	}
	if args.Count <= 0 {
		return i, s.deps.Analyzer.Text(i), nil
	}
	return i, s.deps.Analyzer.TextRun(i, args.Start, args.Count), nil
}

func (s *Server) handleText(params json.RawMessage) (interface{}, error) {
	var args textArgs
	if err := decodeParams(params, &args); err != nil {
		return nil, err
	}
	i, text, err := s.text(args)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"block": i, "text": text}, nil
}

// handleCrop returns the pixels under a block as a PNG, optionally scaled
// to width x height.
func (s *Server) handleCrop(params json.RawMessage) (interface{}, error) {
	var args struct {
		blockRef
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	if err := decodeParams(params, &args); err != nil {
		return nil, err
	}
	id := args.ID
	if id == "" {
		i, err := args.index()
		if err != nil {
			return nil, err
		}
		id = livetext.BlockID(BlockPrefix, i)
	}

	img, orig, err := s.deps.Analyzer.RequestImage(id, image.Pt(args.Width, args.Height))
	if err != nil {
		if errors.Is(err, livetext.ErrMalformedID) {
			return nil, invalidParams("%v", err)
		}
		return nil, err
	}
	enc, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"id":              id,
		"original_width":  orig.X,
		"original_height": orig.Y,
		"crop":            enc,
	}, nil
}

// handleHit finds the block under a device point and makes it the
// selection. A miss clears the selection.
func (s *Server) handleHit(params json.RawMessage) (interface{}, error) {
	var args point
	if err := decodeParams(params, &args); err != nil {
		return nil, err
	}
	i := -1
	if e := s.deps.Engine; e.Loaded() {
		i = s.deps.Analyzer.BlockAt(livetext.Point(e.MapToImage(args.pt())))
	}
	s.selected = i

	out := map[string]interface{}{"block": i}
	if i >= 0 {
		out["id"] = livetext.BlockID(BlockPrefix, i)
		out["text"] = s.deps.Analyzer.Text(i)
	}
	return out, nil
}

func (s *Server) handleCopy(params json.RawMessage) (interface{}, error) {
	if s.deps.Copier == nil {
		return nil, errors.New("copying is not available")
	}
	var args textArgs
	if err := decodeParams(params, &args); err != nil {
		return nil, err
	}
	if args.ID == "" && args.Block == nil && s.selected >= 0 {
		sel := s.selected
		args.Block = &sel
	}
	i, text, err := s.text(args)
	if err != nil {
		return nil, err
	}
	if err := s.deps.Copier.Copy(text); err != nil {
		return nil, fmt.Errorf("block %d: %w", i, err)
	}
	return map[string]interface{}{"block": i, "text": text}, nil
}

func (s *Server) onEngineEvent(ev transform.Event) {
	var method string
	switch ev.Kind {
	case transform.TransformChanged:
		method = "viewer/transformChanged"
	case transform.Flipped:
		method = "viewer/flipped"
	case transform.Rotated:
		method = "viewer/rotated"
		if s.deps.Persister != nil {
			// Failures are logged by the persister; the view stays rotated.
			_ = s.deps.Persister.Rotated(ev.RotationDelta)
		}
	case transform.ScaleChanged:
		method = "viewer/scaleChanged"
	default:
		return
	}
	s.notify(method, ev)
}

// onAnalyzeFinished runs on an analyzer worker goroutine.
func (s *Server) onAnalyzeFinished(c livetext.Completion) {
	params := map[string]interface{}{"generation": c.Generation}
	if c.Result != nil {
		params["blocks"] = len(c.Result.Blocks)
	}
	if c.Err != nil {
		params["error"] = c.Err.Error()
		s.logger.Debug("live text pass ended with error", "generation", c.Generation, "error", c.Err)
	}
	s.notify("livetext/analyzeFinished", params)
}
