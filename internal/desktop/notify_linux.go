//go:build linux

package desktop

import (
	"github.com/godbus/dbus/v5"
)

// Notify shows a desktop notification through the org.freedesktop.Notifications
// D-Bus service.
func Notify(title, body string) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return err
	}
	defer conn.Close()

	obj := conn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications")
	call := obj.Call("org.freedesktop.Notifications.Notify", 0,
		AppName, uint32(0), "", title, body, []string{}, map[string]dbus.Variant{}, int32(5000))
	return call.Err
}
