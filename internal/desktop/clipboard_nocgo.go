//go:build !cgo

package desktop

import (
	"errors"
	"os"
	"sync"
)

var (
	initOnce       sync.Once
	initErr        error
	errCGODisabled = errors.New("clipboard operations require cgo support")
)

func ensureInit() error {
	initOnce.Do(func() {
		if needsDisplay() && os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
			initErr = errNoDisplay
			return
		}
		initErr = errCGODisabled
	})
	return initErr
}

// CopyText fails: this build has no clipboard access.
func CopyText(string) error {
	return ensureInit()
}
