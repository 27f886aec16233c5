package xwin

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"

	"github.com/keysnap/keysnap/internal/capture"
)

// maxWalkDepth bounds ancestor and owner chain walks so that a cyclic or
// absurdly deep hierarchy cannot hang a capture.
const maxWalkDepth = 64

// Valid reports whether the window still exists on the server.
func (c *Conn) Valid(w capture.Window) bool {
	_, err := xproto.GetWindowAttributes(c.conn, xproto.Window(w)).Reply()
	return err == nil
}

// Viewable reports whether the window exists and is mapped on screen.
func (c *Conn) Viewable(w capture.Window) bool {
	attrs, err := xproto.GetWindowAttributes(c.conn, xproto.Window(w)).Reply()
	return err == nil && attrs.MapState == xproto.MapStateViewable
}

// managed reports whether win is a client window managed by the window
// manager. Managed clients carry the ICCCM WM_STATE property.
func (c *Conn) managed(win xproto.Window) bool {
	_, err := icccm.WmStateGet(c.xu, win)
	return err == nil
}

// TopLevel walks the parent chain from w up to the managed client window
// containing it. Owner relationships between top-levels are not followed.
// Without a window manager the walk stops at the direct child of the root.
func (c *Conn) TopLevel(w capture.Window) (capture.Window, error) {
	cur := xproto.Window(w)
	for depth := 0; depth < maxWalkDepth; depth++ {
		if c.managed(cur) {
			return capture.Window(cur), nil
		}
		tree, err := xproto.QueryTree(c.conn, cur).Reply()
		if err != nil {
			return capture.None, fmt.Errorf("failed to query tree for %#x: %w", uint32(cur), err)
		}
		if tree.Parent == 0 || tree.Parent == tree.Root {
			return capture.Window(cur), nil
		}
		cur = tree.Parent
	}
	return capture.None, fmt.Errorf("ancestor chain of %#x too deep", uint32(w))
}

// OwnerRoot resolves w to its top-level, then follows WM_TRANSIENT_FOR
// links to the window ultimately owning it. A window without an owner
// resolves to its own top-level.
func (c *Conn) OwnerRoot(w capture.Window) (capture.Window, error) {
	cur, err := c.TopLevel(w)
	if err != nil {
		return capture.None, err
	}
	for depth := 0; depth < maxWalkDepth; depth++ {
		owner, err := icccm.WmTransientForGet(c.xu, xproto.Window(cur))
		if err != nil || owner == 0 {
			return cur, nil
		}
		next, err := c.TopLevel(capture.Window(owner))
		if err != nil || next == cur {
			return cur, nil
		}
		cur = next
	}
	return cur, nil
}

// ActiveWindow returns the window the window manager reports as active.
// When _NET_ACTIVE_WINDOW is not published it falls back to the keyboard
// focus walked up to its top-level.
func (c *Conn) ActiveWindow() (capture.Window, error) {
	if active, err := ewmh.ActiveWindowGet(c.xu); err == nil && active != 0 {
		return capture.Window(active), nil
	}
	focus, err := c.InputFocus()
	if err != nil {
		return capture.None, err
	}
	if focus == capture.None {
		return capture.None, fmt.Errorf("no window is active")
	}
	return c.TopLevel(focus)
}

// InputFocus returns the window holding keyboard focus, or None when the
// focus is unset or reverts to the pointer root.
func (c *Conn) InputFocus() (capture.Window, error) {
	reply, err := xproto.GetInputFocus(c.conn).Reply()
	if err != nil {
		return capture.None, fmt.Errorf("failed to get input focus: %w", err)
	}
	// Focus values 0 and 1 are the None and PointerRoot pseudo-windows.
	if reply.Focus <= 1 {
		return capture.None, nil
	}
	return capture.Window(reply.Focus), nil
}

// WindowAt returns the window occupying the given screen point. The root's
// child at the point is usually a window manager frame, so its subtree is
// searched for the managed client; the frame itself is returned when no
// client is found.
func (c *Conn) WindowAt(x, y int) (capture.Window, error) {
	tr, err := xproto.TranslateCoordinates(c.conn, c.root, c.root, int16(x), int16(y)).Reply()
	if err != nil {
		return capture.None, fmt.Errorf("failed to translate point (%d,%d): %w", x, y, err)
	}
	if tr.Child == 0 {
		return capture.None, nil
	}
	if client := c.findClient(tr.Child, 0); client != 0 {
		return capture.Window(client), nil
	}
	return capture.Window(tr.Child), nil
}

// findClient searches win and its descendants depth-first for a managed
// client window.
func (c *Conn) findClient(win xproto.Window, depth int) xproto.Window {
	if depth > maxWalkDepth {
		return 0
	}
	if c.managed(win) {
		return win
	}
	tree, err := xproto.QueryTree(c.conn, win).Reply()
	if err != nil {
		return 0
	}
	for _, child := range tree.Children {
		if found := c.findClient(child, depth+1); found != 0 {
			return found
		}
	}
	return 0
}
