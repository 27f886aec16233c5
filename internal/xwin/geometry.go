package xwin

import (
	"fmt"
	"image"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/keysnap/keysnap/internal/capture"
)

// Bounds returns the window's rectangle in screen coordinates: the size
// from its geometry, the origin translated to the root so that reparenting
// window managers do not skew it.
func (c *Conn) Bounds(w capture.Window) (image.Rectangle, error) {
	win := xproto.Window(w)
	geom, err := xproto.GetGeometry(c.conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("failed to get geometry of %#x: %w", uint32(w), err)
	}
	tr, err := xproto.TranslateCoordinates(c.conn, win, c.root, 0, 0).Reply()
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("failed to translate origin of %#x: %w", uint32(w), err)
	}
	x, y := int(tr.DstX), int(tr.DstY)
	return image.Rect(x, y, x+int(geom.Width), y+int(geom.Height)), nil
}

// FrameBounds grows the window's bounds by the frame extents its window
// manager reports, covering titlebar and borders. It fails where
// _NET_FRAME_EXTENTS is not set; callers fall back to Bounds.
func (c *Conn) FrameBounds(w capture.Window) (image.Rectangle, error) {
	bounds, err := c.Bounds(w)
	if err != nil {
		return image.Rectangle{}, err
	}
	extents, err := ewmh.FrameExtentsGet(c.xu, xproto.Window(w))
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("no frame extents for %#x: %w", uint32(w), err)
	}
	return image.Rect(
		bounds.Min.X-int(extents.Left),
		bounds.Min.Y-int(extents.Top),
		bounds.Max.X+int(extents.Right),
		bounds.Max.Y+int(extents.Bottom),
	), nil
}

// ClientBounds returns the client-area rectangle. On X11 the managed
// window is the client area itself; decorations live on the window
// manager's frame around it, so this equals Bounds.
func (c *Conn) ClientBounds(w capture.Window) (image.Rectangle, error) {
	return c.Bounds(w)
}
