package capture

import (
	"image"
	"image/color"
	"image/draw"
)

// Compose merges a background and a foreground snapshot into one canvas
// sized to the union of their bounds, each blitted at its true screen
// offset. The foreground is drawn last and occludes the background wherever
// they overlap, regardless of actual on-screen stacking: the window the user
// focused is the subject. Areas covered by neither snapshot stay white.
func Compose(bg, fg *Snapshot) *Snapshot {
	union := bg.Bounds.Union(fg.Bounds)

	canvas := image.NewRGBA(image.Rect(0, 0, union.Dx(), union.Dy()))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	blit(canvas, bg, union)
	blit(canvas, fg, union)

	return &Snapshot{Image: canvas, Bounds: union}
}

func blit(canvas *image.RGBA, s *Snapshot, union image.Rectangle) {
	offset := s.Bounds.Min.Sub(union.Min)
	region := image.Rect(offset.X, offset.Y, offset.X+s.Bounds.Dx(), offset.Y+s.Bounds.Dy())
	draw.Draw(canvas, region, s.Image, s.Image.Bounds().Min, draw.Src)
}
