// Package desktop connects the viewer to the user's desktop session: the
// system clipboard and Freedesktop notifications.
//
// Clipboard access needs cgo. On X11 and Wayland systems it also needs a
// DISPLAY or WAYLAND_DISPLAY; without one every call fails with the same
// initialization error instead of aborting the process.
package desktop

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"
)

// AppName is shown as the notification sender.
const AppName = "Live Text Viewer"

var errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")

// Copier copies selected text and optionally announces it.
type Copier struct {
	// Notify enables a desktop notification after each copy.
	Notify bool

	copy   func(string) error
	notify func(title, body string) error
	logger *slog.Logger
}

// NewCopier returns a Copier using the system clipboard.
func NewCopier(notify bool, logger *slog.Logger) *Copier {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Copier{Notify: notify, copy: CopyText, notify: Notify, logger: logger}
}

// Copy places text on the clipboard. A failed notification is logged, not
// returned.
func (c *Copier) Copy(text string) error {
	if text == "" {
		return errors.New("nothing to copy")
	}
	if err := c.copy(text); err != nil {
		return fmt.Errorf("failed to copy text: %w", err)
	}
	c.logger.Debug("text copied", "runes", utf8.RuneCountInString(text))

	if c.Notify {
		if err := c.notify("Text copied", preview(text, 60)); err != nil {
			c.logger.Warn("failed to send notification", "error", err)
		}
	}
	return nil
}

// preview shortens s to at most n runes, marking the cut with an ellipsis.
func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
