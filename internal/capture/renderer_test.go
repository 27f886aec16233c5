package capture

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

var (
	screenBlue = color.RGBA{0, 0, 255, 255}
	contentRed = color.RGBA{255, 0, 0, 255}
)

func TestRenderUsesFrameBounds(t *testing.T) {
	sys := newFakeSystem()
	frame := image.Rect(5, 5, 115, 95)
	sys.add(1, &fakeWindow{
		bounds: image.Rect(10, 10, 110, 90),
		frame:  frame,
	})

	snap, err := NewRenderer(sys).Render(1)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if snap.Bounds != frame {
		t.Fatalf("snapshot bounds = %v, want frame bounds %v", snap.Bounds, frame)
	}
	if got := snap.Image.Bounds(); got.Dx() != frame.Dx() || got.Dy() != frame.Dy() {
		t.Fatalf("buffer is %dx%d, want %dx%d", got.Dx(), got.Dy(), frame.Dx(), frame.Dy())
	}
}

func TestRenderFallsBackToBasicBounds(t *testing.T) {
	sys := newFakeSystem()
	basic := image.Rect(10, 10, 110, 90)
	sys.add(1, &fakeWindow{bounds: basic})

	snap, err := NewRenderer(sys).Render(1)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if snap.Bounds != basic {
		t.Fatalf("snapshot bounds = %v, want basic bounds %v", snap.Bounds, basic)
	}
	if got := snap.Image.Bounds(); got.Dx() != basic.Dx() || got.Dy() != basic.Dy() {
		t.Fatalf("buffer is %dx%d, want %dx%d", got.Dx(), got.Dy(), basic.Dx(), basic.Dy())
	}
}

func TestRenderRejectsDegenerateBounds(t *testing.T) {
	tests := []struct {
		name   string
		bounds image.Rectangle
	}{
		{"inverted", image.Rectangle{Min: image.Pt(100, 10), Max: image.Pt(50, 90)}},
		{"zero width", image.Rectangle{Min: image.Pt(10, 10), Max: image.Pt(10, 90)}},
		{"zero height", image.Rectangle{Min: image.Pt(10, 10), Max: image.Pt(110, 10)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := newFakeSystem()
			sys.add(1, &fakeWindow{bounds: tt.bounds})

			_, err := NewRenderer(sys).Render(1)
			if !errors.Is(err, ErrDegenerateBounds) {
				t.Fatalf("Render with bounds %v = %v, want ErrDegenerateBounds", tt.bounds, err)
			}
		})
	}
}

func TestRenderOverlayReplacesClientRegion(t *testing.T) {
	sys := newFakeSystem()
	frame := image.Rect(10, 10, 110, 90)
	client := image.Rect(20, 20, 100, 80)
	sys.add(1, &fakeWindow{
		bounds:  image.Rect(15, 15, 105, 85),
		frame:   frame,
		client:  client,
		content: solid(client.Dx(), client.Dy(), contentRed),
	})

	snap, err := NewRenderer(sys).Render(1)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	inside := client.Min.Sub(frame.Min)
	if got := snap.Image.RGBAAt(inside.X, inside.Y); got != contentRed {
		t.Fatalf("pixel inside client region = %v, want overlay content %v", got, contentRed)
	}
	if got := snap.Image.RGBAAt(0, 0); got != screenBlue {
		t.Fatalf("pixel outside client region = %v, want screen copy %v", got, screenBlue)
	}
}

func TestRenderKeepsSeedWhenContentUnsupported(t *testing.T) {
	sys := newFakeSystem()
	sys.add(1, &fakeWindow{
		bounds:     image.Rect(10, 10, 110, 90),
		client:     image.Rect(10, 10, 110, 90),
		contentErr: errors.New("render refused"),
	})

	snap, err := NewRenderer(sys).Render(1)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if sys.contentCalls != 1 {
		t.Fatalf("content requested %d times, want 1", sys.contentCalls)
	}
	if got := snap.Image.RGBAAt(50, 50); got != screenBlue {
		t.Fatalf("pixel = %v, want untouched screen copy %v", got, screenBlue)
	}
}

func TestRenderSkipsOverlayForEmptyClient(t *testing.T) {
	sys := newFakeSystem()
	sys.add(1, &fakeWindow{bounds: image.Rect(10, 10, 110, 90)})

	if _, err := NewRenderer(sys).Render(1); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if sys.contentCalls != 0 {
		t.Fatalf("content requested %d times for a window without a client area, want 0", sys.contentCalls)
	}
}

func TestRenderFailsWhenWindowGone(t *testing.T) {
	sys := newFakeSystem()
	sys.add(1, &fakeWindow{bounds: image.Rect(10, 10, 110, 90), gone: true})

	_, err := NewRenderer(sys).Render(1)
	if !errors.Is(err, ErrRenderFailed) {
		t.Fatalf("Render of a gone window = %v, want ErrRenderFailed", err)
	}
}

func TestRenderFailsWhenWindowClosesMidCapture(t *testing.T) {
	sys := newFakeSystem()
	sys.add(1, &fakeWindow{
		bounds:          image.Rect(10, 10, 110, 90),
		client:          image.Rect(10, 10, 110, 90),
		vanishOnContent: true,
	})

	_, err := NewRenderer(sys).Render(1)
	if !errors.Is(err, ErrRenderFailed) {
		t.Fatalf("Render of a window closing mid-capture = %v, want ErrRenderFailed", err)
	}
}

func TestRenderFailsWhenScreenCopyFails(t *testing.T) {
	sys := newFakeSystem()
	sys.add(1, &fakeWindow{bounds: image.Rect(10, 10, 110, 90)})
	sys.copyErr = errors.New("out of memory")

	_, err := NewRenderer(sys).Render(1)
	if !errors.Is(err, ErrRenderFailed) {
		t.Fatalf("Render with failed screen copy = %v, want ErrRenderFailed", err)
	}
}
