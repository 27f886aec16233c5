package capture

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/keysnap/keysnap/internal/logger"
)

// probeOffsets are the vertical distances, in pixels above the primary
// window's top edge, probed when looking for the window visually behind it.
// The values are empirical: they clear the primary's own edge while staying
// within a dialog's parent window for common layouts. Probing is an
// approximation of "the window behind", not a Z-order query, and can pick
// the wrong window for unusual arrangements.
var probeOffsets = [...]int{6, 14, 24}

// Resolver maps raw event targets onto capturable windows.
type Resolver struct {
	sys WindowSystem
	log *zerolog.Logger
}

// NewResolver creates a resolver over the given window system.
func NewResolver(sys WindowSystem) *Resolver {
	return &Resolver{
		sys: sys,
		log: logger.WithComponent("resolver"),
	}
}

// Primary resolves the event target to the top-level window to capture.
// The target is walked up to its topmost non-owned ancestor so that a key
// event delivered to a sub-control captures the containing window. A zero
// or unresolvable target falls back to the current foreground window.
func (r *Resolver) Primary(target Window) (Window, error) {
	if target != None {
		top, err := r.sys.TopLevel(target)
		if err == nil && top != None {
			return top, nil
		}
		if err != nil {
			r.log.Debug().Err(err).Uint32("target", uint32(target)).
				Msg("top-level walk failed, trying foreground")
		}
	}

	active, err := r.sys.ActiveWindow()
	if err != nil || active == None {
		return None, fmt.Errorf("%w: event has no target and no window is active", ErrNoWindow)
	}
	return active, nil
}

// Background finds the window visually behind the primary for a composite
// capture. It probes a short series of points above the primary's top-center
// edge and takes the first visible window whose top-level ancestor is not
// the primary. If no probe hits, it falls back to the primary's owner chain.
// None means composite mode degrades to a single-window capture.
func (r *Resolver) Background(primary Window) Window {
	edge, err := r.sys.FrameBounds(primary)
	if err != nil {
		edge, err = r.sys.Bounds(primary)
		if err != nil {
			r.log.Debug().Err(err).Msg("primary bounds unavailable, no background")
			return None
		}
	}

	centerX := (edge.Min.X + edge.Max.X) / 2
	for _, dy := range probeOffsets {
		hit, err := r.sys.WindowAt(centerX, edge.Min.Y-dy)
		if err != nil || hit == None {
			continue
		}
		if !r.sys.Viewable(hit) {
			continue
		}
		candidate, err := r.sys.TopLevel(hit)
		if err != nil || candidate == None {
			continue
		}
		if candidate != primary {
			r.log.Debug().
				Uint32("background", uint32(candidate)).
				Int("probe_dy", dy).
				Msg("background window found by probe")
			return candidate
		}
	}

	owner, err := r.sys.OwnerRoot(primary)
	if err != nil || owner == None || owner == primary {
		return None
	}
	r.log.Debug().Uint32("background", uint32(owner)).Msg("background window is primary's owner")
	return owner
}
