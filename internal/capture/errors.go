package capture

import "errors"

// Capture failures are non-fatal: the request is dropped, nothing is written,
// and the triggering event continues through the event chain. Callers check
// the category with errors.Is.
var (
	// ErrNoWindow means no capturable window could be resolved from the
	// event target or the foreground.
	ErrNoWindow = errors.New("no capturable window")

	// ErrDegenerateBounds means a window reported a rectangle with zero or
	// negative width or height.
	ErrDegenerateBounds = errors.New("degenerate window bounds")

	// ErrRenderFailed means a render stage failed: the screen copy could
	// not be taken or the window vanished mid-capture.
	ErrRenderFailed = errors.New("window render failed")

	// ErrEncodeFailed means the PNG encode or the final file write failed.
	ErrEncodeFailed = errors.New("image encode failed")
)
