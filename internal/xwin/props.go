package xwin

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"

	"github.com/keysnap/keysnap/internal/capture"
)

// Title returns the window's title, preferring the EWMH UTF-8 name over
// the legacy ICCCM one.
func (c *Conn) Title(w capture.Window) (string, error) {
	win := xproto.Window(w)
	if name, err := ewmh.WmNameGet(c.xu, win); err == nil && name != "" {
		return name, nil
	}
	name, err := icccm.WmNameGet(c.xu, win)
	if err != nil {
		return "", fmt.Errorf("failed to get name of %#x: %w", uint32(w), err)
	}
	return name, nil
}

// Class returns the class half of the window's WM_CLASS property.
func (c *Conn) Class(w capture.Window) (string, error) {
	cls, err := icccm.WmClassGet(c.xu, xproto.Window(w))
	if err != nil {
		return "", fmt.Errorf("failed to get class of %#x: %w", uint32(w), err)
	}
	return cls.Class, nil
}

// ListWindows enumerates the managed client windows from _NET_CLIENT_LIST,
// falling back to the root's direct children when the window manager does
// not publish it. Windows carrying neither a title nor a class are skipped.
func (c *Conn) ListWindows() ([]capture.WindowInfo, error) {
	clients, err := ewmh.ClientListGet(c.xu)
	if err != nil || len(clients) == 0 {
		c.log.Debug().Err(err).Msg("no client list from the window manager, walking the root")
		tree, terr := xproto.QueryTree(c.conn, c.root).Reply()
		if terr != nil {
			return nil, fmt.Errorf("failed to query root tree: %w", terr)
		}
		clients = tree.Children
	}

	infos := make([]capture.WindowInfo, 0, len(clients))
	for _, win := range clients {
		w := capture.Window(win)
		if !c.Viewable(w) {
			continue
		}
		title, _ := c.Title(w)
		class, _ := c.Class(w)
		if title == "" && class == "" {
			continue
		}
		bounds, err := c.Bounds(w)
		if err != nil {
			continue
		}
		infos = append(infos, capture.WindowInfo{
			ID:     w,
			Title:  title,
			Class:  class,
			Bounds: bounds,
		})
	}
	return infos, nil
}
