package capture

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/rs/zerolog"

	"github.com/keysnap/keysnap/internal/logger"
)

// Renderer produces a Snapshot of one window using a two-pass
// seed-and-overlay pipeline. The seed pass copies whatever is visibly on
// screen over the window's extended bounds, so there is always a usable
// image even for windows that refuse off-screen rendering; the overlay pass
// then replaces the client-area region with the window's own unoccluded
// content where the environment supports it.
type Renderer struct {
	sys WindowSystem
	log *zerolog.Logger
}

// NewRenderer creates a renderer over the given window system.
func NewRenderer(sys WindowSystem) *Renderer {
	return &Renderer{
		sys: sys,
		log: logger.WithComponent("renderer"),
	}
}

// Render captures the window into a Snapshot. It fails if the window is no
// longer valid or reports degenerate bounds; overlay-pass failures degrade
// to the seed-pass image instead of failing.
func (r *Renderer) Render(w Window) (*Snapshot, error) {
	if !r.sys.Valid(w) {
		return nil, fmt.Errorf("%w: window %#x is gone", ErrRenderFailed, uint32(w))
	}

	basic, err := r.sys.Bounds(w)
	if err != nil {
		return nil, fmt.Errorf("%w: bounds query: %v", ErrRenderFailed, err)
	}
	bounds := basic
	if extended, err := r.sys.FrameBounds(w); err == nil {
		bounds = extended
	} else {
		r.log.Debug().Err(err).Uint32("window", uint32(w)).
			Msg("no frame bounds, using basic rectangle")
	}
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("%w: window %#x reports %v", ErrDegenerateBounds, uint32(w), bounds)
	}

	seed, err := r.sys.CopyScreen(bounds)
	if err != nil {
		return nil, fmt.Errorf("%w: screen copy: %v", ErrRenderFailed, err)
	}

	client, err := r.sys.ClientBounds(w)
	if err != nil || client.Dx() <= 0 || client.Dy() <= 0 {
		// No client area to overlay; the screen copy stands alone.
		return &Snapshot{Image: seed, Bounds: bounds}, nil
	}

	content, err := r.sys.RenderContent(w)
	if err != nil {
		if !r.sys.Valid(w) {
			return nil, fmt.Errorf("%w: window %#x closed mid-capture", ErrRenderFailed, uint32(w))
		}
		r.log.Debug().Err(err).Uint32("window", uint32(w)).
			Msg("content render unsupported, keeping screen copy")
		return &Snapshot{Image: seed, Bounds: bounds}, nil
	}

	offset := client.Min.Sub(bounds.Min)
	region := image.Rect(offset.X, offset.Y, offset.X+client.Dx(), offset.Y+client.Dy())
	draw.Draw(seed, region, content, content.Bounds().Min, draw.Src)

	return &Snapshot{Image: seed, Bounds: bounds}, nil
}
