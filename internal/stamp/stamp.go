// Package stamp draws a one-line caption onto a finished capture canvas.
package stamp

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	fontHeight = 13 // basicfont size
	padding    = 4
)

// Stamper writes the window name and capture time into the bottom-left
// corner of a canvas, on a dark backing strip.
type Stamper struct {
	textColor color.RGBA
	backColor color.RGBA
	now       func() time.Time
}

// New creates a stamper with the default colors.
func New() *Stamper {
	return &Stamper{
		textColor: color.RGBA{255, 255, 255, 255},
		backColor: color.RGBA{0, 0, 0, 200},
		now:       time.Now,
	}
}

// Annotate draws the caption. Canvases too small for the strip are left
// untouched.
func (s *Stamper) Annotate(img *image.RGBA, name string) {
	caption := fmt.Sprintf("%s  %s", name, s.now().Format("2006-01-02 15:04:05"))

	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(s.textColor),
		Face: face,
	}
	textWidth := int(d.MeasureString(caption) >> 6)

	stripWidth := textWidth + padding*2
	stripHeight := fontHeight + padding*2
	bounds := img.Bounds()
	if bounds.Dx() < stripWidth || bounds.Dy() < stripHeight {
		return
	}

	strip := image.Rect(bounds.Min.X, bounds.Max.Y-stripHeight, bounds.Min.X+stripWidth, bounds.Max.Y)
	draw.Draw(img, strip, image.NewUniform(s.backColor), image.Point{}, draw.Over)

	d.Dot = fixed.Point26_6{
		X: fixed.I(strip.Min.X + padding),
		Y: fixed.I(strip.Max.Y - padding - 2),
	}
	d.DrawString(caption)
}
