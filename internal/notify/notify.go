// Package notify surfaces saved captures as desktop notifications.
package notify

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"

	"github.com/keysnap/keysnap/internal/capture"
	"github.com/keysnap/keysnap/internal/logger"
)

// Freedesktop notification D-Bus constants
const (
	notifyService   = "org.freedesktop.Notifications"
	notifyPath      = "/org/freedesktop/Notifications"
	notifyInterface = "org.freedesktop.Notifications"
	notifyMethod    = notifyInterface + ".Notify"

	appName       = "keysnap"
	timeoutMillis = 5000
)

// Notifier posts desktop notifications over the session bus.
type Notifier struct {
	conn *dbus.Conn
	last uint32
	log  *zerolog.Logger
}

// New connects the notifier to the session bus.
func New() (*Notifier, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Notifier{
		conn: conn,
		log:  logger.WithComponent("notify"),
	}, nil
}

// CaptureSaved announces a saved capture. Each announcement replaces the
// previous one so rapid captures do not pile bubbles up.
func (n *Notifier) CaptureSaved(res capture.Result) {
	summary := "Screenshot saved"
	if res.Composite {
		summary = "Composite screenshot saved"
	}
	id, err := n.send(summary, res.Path)
	if err != nil {
		n.log.Warn().Err(err).Msg("Failed to post notification")
		return
	}
	n.last = id
}

func (n *Notifier) send(summary, body string) (uint32, error) {
	obj := n.conn.Object(notifyService, dbus.ObjectPath(notifyPath))
	call := obj.Call(notifyMethod, 0,
		appName,
		n.last,         // replaces_id
		"camera-photo", // app_icon
		summary,
		body,
		[]string{},                // actions
		map[string]dbus.Variant{}, // hints
		int32(timeoutMillis),
	)
	if call.Err != nil {
		return 0, call.Err
	}
	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// Close disconnects from the bus.
func (n *Notifier) Close() {
	n.conn.Close()
}
