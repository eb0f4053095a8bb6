//go:build !linux

package desktop

import "errors"

// Notify is only implemented on Linux.
func Notify(title, body string) error {
	return errors.New("desktop notifications are not supported on this platform")
}
