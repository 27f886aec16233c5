package xwin

import (
	"fmt"
	"image"
	"image/color"

	"github.com/BurntSushi/xgb/composite"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/keysnap/keysnap/internal/capture"
)

// RenderContent asks the window to yield its own client content. With the
// Composite extension the window is redirected to a named off-screen
// pixmap first, which reads cleanly even when other windows overlap it.
// Without it the window drawable itself is read, which only holds current
// pixels while the window is viewable and unobscured.
func (c *Conn) RenderContent(w capture.Window) (*image.RGBA, error) {
	win := xproto.Window(w)
	geom, err := xproto.GetGeometry(c.conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get geometry of %#x: %w", uint32(w), err)
	}
	if geom.Width == 0 || geom.Height == 0 {
		return nil, fmt.Errorf("window %#x has no content area", uint32(w))
	}

	drawable := xproto.Drawable(win)
	if c.compositeOK {
		if err := composite.RedirectWindowChecked(c.conn, win, composite.RedirectAutomatic).Check(); err != nil {
			c.log.Debug().Err(err).Uint32("window", uint32(w)).
				Msg("composite redirect refused, reading the window drawable")
		} else {
			defer composite.UnredirectWindow(c.conn, win, composite.RedirectAutomatic)
			pixmap, perr := xproto.NewPixmapId(c.conn)
			if perr == nil {
				if nerr := composite.NameWindowPixmapChecked(c.conn, win, pixmap).Check(); nerr == nil {
					defer xproto.FreePixmap(c.conn, pixmap)
					drawable = xproto.Drawable(pixmap)
				}
			}
		}
	}

	reply, err := xproto.GetImage(c.conn, xproto.ImageFormatZPixmap, drawable,
		0, 0, geom.Width, geom.Height, 0xffffffff).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to read content of %#x: %w", uint32(w), err)
	}

	img := image.NewRGBA(image.Rect(0, 0, int(geom.Width), int(geom.Height)))
	convertBGRA(img, reply.Data)
	return img, nil
}

// convertBGRA fills img from packed ZPixmap BGRA rows.
func convertBGRA(img *image.RGBA, data []byte) {
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			i := (y*b.Dx() + x) * 4
			if i+3 >= len(data) {
				return
			}
			img.SetRGBA(x, y, color.RGBA{
				R: data[i+2],
				G: data[i+1],
				B: data[i],
				A: 255,
			})
		}
	}
}
