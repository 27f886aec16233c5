package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/keysnap/keysnap/internal/logger"
)

// Result records one persisted capture.
type Result struct {
	Path      string          `json:"path"`
	Window    Window          `json:"window"`
	Name      string          `json:"name"`
	Composite bool            `json:"composite"`
	Bounds    image.Rectangle `json:"bounds"`
	SavedAt   time.Time       `json:"saved_at"`
}

// Annotator mutates the finished canvas before it is encoded. Annotation is
// cosmetic: it never fails a capture.
type Annotator interface {
	Annotate(img *image.RGBA, name string)
}

// Engine is a capture session: it binds a window system and an output
// directory and orchestrates resolve, render, composite and persist for each
// request. One Engine serves one output directory; requests are serialized,
// so a trigger arriving while a capture runs waits its turn.
type Engine struct {
	sys       WindowSystem
	resolver  *Resolver
	renderer  *Renderer
	outDir    string
	annotator Annotator
	onSaved   []func(Result)
	mu        sync.Mutex
	log       *zerolog.Logger
}

// NewEngine creates a capture session writing into outDir. The directory
// must already exist and be writable.
func NewEngine(sys WindowSystem, outDir string) *Engine {
	return &Engine{
		sys:      sys,
		resolver: NewResolver(sys),
		renderer: NewRenderer(sys),
		outDir:   outDir,
		log:      logger.WithComponent("engine"),
	}
}

// SetAnnotator installs an annotator applied to every canvas before encode.
func (e *Engine) SetAnnotator(a Annotator) {
	e.annotator = a
}

// OnSaved registers a hook invoked after each persisted capture. Hooks run
// on the capturing goroutine, after the file is on disk.
func (e *Engine) OnSaved(fn func(Result)) {
	e.onSaved = append(e.onSaved, fn)
}

// OutputDir returns the session's output directory.
func (e *Engine) OutputDir() string {
	return e.outDir
}

// Windows lists the managed windows of the session's window system.
func (e *Engine) Windows() ([]WindowInfo, error) {
	return e.sys.ListWindows()
}

// CaptureEvent runs a full capture for a raw key event: the target is
// resolved to a primary window and, when composite is requested, a
// background window is searched for behind it. Failed background resolution
// degrades to a single-window capture of the primary.
func (e *Engine) CaptureEvent(target Window, composite bool) (*Result, error) {
	primary, err := e.resolver.Primary(target)
	if err != nil {
		return nil, err
	}

	background := None
	if composite {
		background = e.resolver.Background(primary)
	}
	return e.Capture(primary, background)
}

// Capture renders the already-resolved primary window, composites it over
// background when background is not None, and persists the canvas as a PNG
// named after the primary. Either a file is written and its Result returned,
// or nothing is left on disk: a failure in any stage, including the
// background render, aborts the whole request.
func (e *Engine) Capture(primary, background Window) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if primary == None {
		return nil, fmt.Errorf("%w: no primary window", ErrNoWindow)
	}

	start := time.Now()
	front, err := e.renderer.Render(primary)
	if err != nil {
		return nil, err
	}

	canvas := front
	composite := background != None
	if composite {
		back, err := e.renderer.Render(background)
		if err != nil {
			return nil, fmt.Errorf("background window: %w", err)
		}
		canvas = Compose(back, front)
	}

	name := DisplayName(e.sys, primary)
	if e.annotator != nil {
		e.annotator.Annotate(canvas.Image, name)
	}

	path, err := e.persist(canvas, name)
	if err != nil {
		return nil, err
	}

	res := Result{
		Path:      path,
		Window:    primary,
		Name:      name,
		Composite: composite,
		Bounds:    canvas.Bounds,
		SavedAt:   time.Now(),
	}
	e.log.Info().
		Str("path", path).
		Uint32("window", uint32(primary)).
		Bool("composite", composite).
		Dur("took", time.Since(start)).
		Msg("capture saved")

	for _, fn := range e.onSaved {
		fn(res)
	}
	return &res, nil
}

// persist encodes the canvas fully in memory, then writes the bytes to a
// freshly allocated path in one operation, so a failed capture never leaves
// a partial file behind.
func (e *Engine) persist(canvas *Snapshot, name string) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas.Image); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}

	path := AllocatePath(e.outDir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	return path, nil
}
