//go:build !cgo || !linux

package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/ironsheep/livetext-viewer/internal/livetext"
)

func TestStub_NotEnabled(t *testing.T) {
	if _, err := New(Options{}); !errors.Is(err, ErrNotEnabled) {
		t.Errorf("New: got %v, want ErrNotEnabled", err)
	}

	var tess Tesseract
	if _, err := tess.Analyze(context.Background(), livetext.Frame{}, livetext.Hardware{}); !errors.Is(err, ErrNotEnabled) {
		t.Errorf("Analyze: got %v, want ErrNotEnabled", err)
	}

	info := GetInfo(Options{})
	if info.Available || info.Error == "" {
		t.Errorf("GetInfo: got %+v, want unavailable with an error", info)
	}
}
