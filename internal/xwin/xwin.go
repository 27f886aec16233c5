// Package xwin implements the capture window-system interface on X11.
package xwin

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/composite"
	mshm "github.com/BurntSushi/xgb/shm"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/rs/zerolog"

	"github.com/keysnap/keysnap/internal/capture"
	"github.com/keysnap/keysnap/internal/logger"
)

// Conn is a connection to the X server. It implements
// capture.WindowSystem and owns the event loop the hotkey layer runs on.
type Conn struct {
	xu   *xgbutil.XUtil
	root xproto.Window

	conn        *xgb.Conn
	screen      *xproto.ScreenInfo
	compositeOK bool
	shmOK       bool
	log         *zerolog.Logger
}

var _ capture.WindowSystem = (*Conn)(nil)

// Connect opens the X display and probes the extensions used for capturing:
// Composite for unoccluded window content and MIT-SHM for fast screen
// copies. Both are optional; capture degrades without them.
func Connect() (*Conn, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	// Required for global hotkey grabs.
	keybind.Initialize(xu)

	conn := xu.Conn()
	setup := xproto.Setup(conn)

	c := &Conn{
		xu:     xu,
		root:   xu.RootWin(),
		conn:   conn,
		screen: setup.DefaultScreen(conn),
		log:    logger.WithComponent("xwin"),
	}

	if err := composite.Init(conn); err != nil {
		c.log.Warn().Err(err).
			Msg("Composite extension unavailable, window content falls back to screen copies")
	} else {
		c.compositeOK = true
	}
	if err := mshm.Init(conn); err != nil {
		c.log.Debug().Err(err).Msg("MIT-SHM unavailable, using core protocol screen copies")
	} else {
		c.shmOK = true
	}

	return c, nil
}

// XUtil exposes the xgbutil connection for layers that install grabs.
func (c *Conn) XUtil() *xgbutil.XUtil {
	return c.xu
}

// RootWindow returns the root window of the default screen.
func (c *Conn) RootWindow() xproto.Window {
	return c.root
}

// EventLoop runs the X event loop until Quit is called (blocking).
func (c *Conn) EventLoop() {
	xevent.Main(c.xu)
}

// Quit stops the event loop.
func (c *Conn) Quit() {
	xevent.Quit(c.xu)
}

// Close disconnects from the X server.
func (c *Conn) Close() {
	c.conn.Close()
}
