package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"sort"
	"strings"

	"github.com/ironsheep/livetext-viewer/internal/livetext"
)

// ErrNotEnabled is returned when the binary was built without cgo or for a
// platform other than Linux.
var ErrNotEnabled = errors.New("ocr: tesseract support not compiled in (requires cgo on linux)")

// DefaultLanguage is used when Options.Language is empty.
const DefaultLanguage = "eng"

// Level selects how recognized text is grouped into live text blocks.
type Level int

const (
	// LevelLine makes one block per text line.
	LevelLine Level = iota
	// LevelBlock makes one block per Tesseract layout block.
	LevelBlock
)

func (l Level) String() string {
	switch l {
	case LevelLine:
		return "line"
	case LevelBlock:
		return "block"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// ParseLevel converts a config value to a Level. The empty string means
// LevelLine.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "line":
		return LevelLine, nil
	case "block":
		return LevelBlock, nil
	default:
		return LevelLine, fmt.Errorf("ocr: unknown level %q", s)
	}
}

// Options configures the Tesseract backend.
type Options struct {
	// Language is a Tesseract language code such as "eng" or "eng+deu".
	Language string

	// Level controls block granularity.
	Level Level

	// TessdataPrefix overrides the directory holding *.traineddata files.
	// Empty means Tesseract's compiled-in default or TESSDATA_PREFIX.
	TessdataPrefix string
}

func (o Options) withDefaults() Options {
	if o.Language == "" {
		o.Language = DefaultLanguage
	}
	return o
}

// Info describes the OCR subsystem for status reporting.
type Info struct {
	Available      bool   `json:"available"`
	Version        string `json:"version,omitempty"`
	Backend        string `json:"backend"`
	Language       string `json:"language,omitempty"`
	TessdataPrefix string `json:"tessdata_prefix,omitempty"`
	Error          string `json:"error,omitempty"`
}

// box is one recognized element before it is turned into a TextBlock.
type box struct {
	rect image.Rectangle
	text string
}

// buildBlocks turns region boxes into live text blocks and distributes
// symbol boxes among them. A symbol belongs to the first region containing
// its centre; within a block, characters are ordered left to right.
func buildBlocks(regions, symbols []box) []livetext.TextBlock {
	blocks := make([]livetext.TextBlock, 0, len(regions))
	chars := make([][]box, len(regions))

	for _, s := range symbols {
		c := image.Pt((s.rect.Min.X+s.rect.Max.X)/2, (s.rect.Min.Y+s.rect.Max.Y)/2)
		for i, r := range regions {
			if c.In(r.rect) {
				chars[i] = append(chars[i], s)
				break
			}
		}
	}

	for i, r := range regions {
		text := strings.TrimSpace(r.text)
		if text == "" || r.rect.Empty() {
			continue
		}
		sort.SliceStable(chars[i], func(a, b int) bool {
			return chars[i][a].rect.Min.X < chars[i][b].rect.Min.X
		})
		block := livetext.TextBlock{
			Polygon: rectPolygon(r.rect),
			Text:    text,
			Chars:   make([]livetext.CharBox, 0, len(chars[i])),
		}
		for _, s := range chars[i] {
			block.Chars = append(block.Chars, livetext.CharBox{Points: [2]livetext.Point{
				{X: float64(s.rect.Min.X), Y: float64(s.rect.Min.Y)},
				{X: float64(s.rect.Max.X), Y: float64(s.rect.Max.Y)},
			}})
		}
		blocks = append(blocks, block)
	}
	return blocks
}

func rectPolygon(r image.Rectangle) [4]livetext.Point {
	x0, y0 := float64(r.Min.X), float64(r.Min.Y)
	x1, y1 := float64(r.Max.X), float64(r.Max.Y)
	return [4]livetext.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

// encodeFrame PNG-encodes f for Tesseract, which reads images from memory
// through Leptonica.
func encodeFrame(f livetext.Frame) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, f.RGBA()); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return buf.Bytes(), nil
}
