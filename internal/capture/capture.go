// Package capture implements the window capture and compositing engine:
// resolving a key event's target to a capturable top-level window, rendering
// single windows through a seed-and-overlay pipeline, compositing a
// foreground window with the window behind it, and persisting the result as
// a PNG under a collision-free name.
package capture

import "image"

// Window identifies a live on-screen window. The windowing system owns the
// window's lifetime; a Window may stop resolving at any time. The zero value
// means "no window".
type Window uint32

// None is the zero Window.
const None Window = 0

// WindowInfo describes a managed window for listing surfaces.
type WindowInfo struct {
	ID     Window          `json:"id"`
	Title  string          `json:"title"`
	Class  string          `json:"class"`
	Bounds image.Rectangle `json:"bounds"`
}

// WindowSystem is the capability surface the engine needs from the windowing
// environment. The X11 implementation lives in internal/xwin; tests use an
// in-memory fake.
type WindowSystem interface {
	// Valid reports whether the window still exists.
	Valid(w Window) bool

	// Viewable reports whether the window is mapped and visible.
	Viewable(w Window) bool

	// TopLevel walks the ancestor chain to the managed top-level window
	// containing w, ignoring owner relationships.
	TopLevel(w Window) (Window, error)

	// OwnerRoot walks to the topmost ancestor following owner (transient)
	// relationships as well.
	OwnerRoot(w Window) (Window, error)

	// ActiveWindow returns the current foreground window, or None.
	ActiveWindow() (Window, error)

	// InputFocus returns the window holding keyboard focus, or None. The
	// result may be a sub-control rather than a top-level window.
	InputFocus() (Window, error)

	// WindowAt returns the managed window occupying the screen point, or
	// None if the point hits the desktop.
	WindowAt(x, y int) (Window, error)

	// Bounds returns the window's bounding rectangle in screen coordinates.
	Bounds(w Window) (image.Rectangle, error)

	// FrameBounds returns the window's bounds enlarged by its frame
	// decoration. Returns an error where the environment does not report
	// frame extents; callers fall back to Bounds.
	FrameBounds(w Window) (image.Rectangle, error)

	// ClientBounds returns the window's client-area rectangle in screen
	// coordinates.
	ClientBounds(w Window) (image.Rectangle, error)

	// CopyScreen copies the currently visible screen pixels in region into
	// a buffer of exactly region's size.
	CopyScreen(region image.Rectangle) (*image.RGBA, error)

	// RenderContent asks the window to paint its client content into an
	// off-screen buffer sized to its client rectangle, unoccluded. Returns
	// an error where the window or environment does not support it.
	RenderContent(w Window) (*image.RGBA, error)

	// Title returns the window's title, which may be empty.
	Title(w Window) (string, error)

	// Class returns the window's class name, which may be empty.
	Class(w Window) (string, error)

	// ListWindows enumerates the managed windows on screen.
	ListWindows() ([]WindowInfo, error)
}

// Snapshot is one rendered window: an owned pixel buffer plus the screen
// rectangle it was captured from. The buffer dimensions always equal the
// rectangle's dimensions.
type Snapshot struct {
	Image  *image.RGBA
	Bounds image.Rectangle
}
