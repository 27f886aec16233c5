package capture

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
)

// fakeWindow is one window known to the fake system. Zero rectangles mean
// "unsupported" for frame and client queries.
type fakeWindow struct {
	title      string
	class      string
	bounds     image.Rectangle
	frame      image.Rectangle
	client     image.Rectangle
	content    *image.RGBA
	contentErr error
	// vanishOnContent destroys the window when its content is requested,
	// simulating a window closed mid-capture.
	vanishOnContent bool
	topLevel        Window
	owner           Window
	gone            bool
	hidden          bool
}

// fakeSystem is an in-memory WindowSystem. The stack lists windows topmost
// first; WindowAt does not filter hidden windows so that callers' own
// visibility checks are exercised.
type fakeSystem struct {
	windows      map[Window]*fakeWindow
	stack        []Window
	screen       *image.RGBA
	active       Window
	focus        Window
	copyErr      error
	contentCalls int
}

func newFakeSystem() *fakeSystem {
	screen := image.NewRGBA(image.Rect(0, 0, 1920, 1080))
	draw.Draw(screen, screen.Bounds(), image.NewUniform(color.RGBA{0, 0, 255, 255}), image.Point{}, draw.Src)
	return &fakeSystem{
		windows: make(map[Window]*fakeWindow),
		screen:  screen,
	}
}

// add registers a window on top of the existing stack.
func (f *fakeSystem) add(id Window, w *fakeWindow) *fakeWindow {
	f.windows[id] = w
	f.stack = append(f.stack, id)
	return w
}

func (f *fakeSystem) get(w Window) (*fakeWindow, error) {
	fw, ok := f.windows[w]
	if !ok || fw.gone {
		return nil, errors.New("no such window")
	}
	return fw, nil
}

func (f *fakeSystem) Valid(w Window) bool {
	_, err := f.get(w)
	return err == nil
}

func (f *fakeSystem) Viewable(w Window) bool {
	fw, err := f.get(w)
	return err == nil && !fw.hidden
}

func (f *fakeSystem) TopLevel(w Window) (Window, error) {
	fw, err := f.get(w)
	if err != nil {
		return None, err
	}
	if fw.topLevel != None {
		return fw.topLevel, nil
	}
	return w, nil
}

func (f *fakeSystem) OwnerRoot(w Window) (Window, error) {
	fw, err := f.get(w)
	if err != nil {
		return None, err
	}
	if fw.owner != None {
		return fw.owner, nil
	}
	return w, nil
}

func (f *fakeSystem) ActiveWindow() (Window, error) {
	return f.active, nil
}

func (f *fakeSystem) InputFocus() (Window, error) {
	return f.focus, nil
}

func (f *fakeSystem) WindowAt(x, y int) (Window, error) {
	pt := image.Pt(x, y)
	for _, id := range f.stack {
		fw, err := f.get(id)
		if err != nil {
			continue
		}
		hit := fw.bounds
		if !fw.frame.Empty() {
			hit = fw.frame
		}
		if pt.In(hit) {
			return id, nil
		}
	}
	return None, nil
}

func (f *fakeSystem) Bounds(w Window) (image.Rectangle, error) {
	fw, err := f.get(w)
	if err != nil {
		return image.Rectangle{}, err
	}
	return fw.bounds, nil
}

func (f *fakeSystem) FrameBounds(w Window) (image.Rectangle, error) {
	fw, err := f.get(w)
	if err != nil {
		return image.Rectangle{}, err
	}
	if fw.frame == (image.Rectangle{}) {
		return image.Rectangle{}, errors.New("no frame extents")
	}
	return fw.frame, nil
}

func (f *fakeSystem) ClientBounds(w Window) (image.Rectangle, error) {
	fw, err := f.get(w)
	if err != nil {
		return image.Rectangle{}, err
	}
	if fw.client == (image.Rectangle{}) {
		return image.Rectangle{}, errors.New("no client area")
	}
	return fw.client, nil
}

func (f *fakeSystem) CopyScreen(region image.Rectangle) (*image.RGBA, error) {
	if f.copyErr != nil {
		return nil, f.copyErr
	}
	img := image.NewRGBA(image.Rect(0, 0, region.Dx(), region.Dy()))
	draw.Draw(img, img.Bounds(), f.screen, region.Min, draw.Src)
	return img, nil
}

func (f *fakeSystem) RenderContent(w Window) (*image.RGBA, error) {
	f.contentCalls++
	fw, err := f.get(w)
	if err != nil {
		return nil, err
	}
	if fw.vanishOnContent {
		fw.gone = true
		return nil, errors.New("window destroyed")
	}
	if fw.contentErr != nil {
		return nil, fw.contentErr
	}
	if fw.content == nil {
		return nil, errors.New("off-screen rendering unsupported")
	}
	return fw.content, nil
}

func (f *fakeSystem) Title(w Window) (string, error) {
	fw, err := f.get(w)
	if err != nil {
		return "", err
	}
	return fw.title, nil
}

func (f *fakeSystem) Class(w Window) (string, error) {
	fw, err := f.get(w)
	if err != nil {
		return "", err
	}
	return fw.class, nil
}

func (f *fakeSystem) ListWindows() ([]WindowInfo, error) {
	infos := make([]WindowInfo, 0, len(f.stack))
	for _, id := range f.stack {
		fw, err := f.get(id)
		if err != nil {
			continue
		}
		infos = append(infos, WindowInfo{ID: id, Title: fw.title, Class: fw.class, Bounds: fw.bounds})
	}
	return infos, nil
}

// solid returns a w×h image filled with c.
func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}
