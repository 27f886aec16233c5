package capture

import (
	"errors"
	"image"
	"testing"
)

func TestPrimaryWalksToTopLevel(t *testing.T) {
	sys := newFakeSystem()
	sys.add(1, &fakeWindow{title: "app", bounds: image.Rect(0, 0, 100, 100)})
	sys.add(2, &fakeWindow{title: "button", topLevel: 1})

	got, err := NewResolver(sys).Primary(2)
	if err != nil {
		t.Fatalf("Primary(2) failed: %v", err)
	}
	if got != 1 {
		t.Fatalf("Primary(2) = %d, want the containing top-level 1", got)
	}
}

func TestPrimaryFallsBackToForeground(t *testing.T) {
	sys := newFakeSystem()
	sys.add(5, &fakeWindow{title: "active", bounds: image.Rect(0, 0, 100, 100)})
	sys.active = 5

	t.Run("no event target", func(t *testing.T) {
		got, err := NewResolver(sys).Primary(None)
		if err != nil {
			t.Fatalf("Primary(None) failed: %v", err)
		}
		if got != 5 {
			t.Fatalf("Primary(None) = %d, want the active window 5", got)
		}
	})

	t.Run("target gone", func(t *testing.T) {
		sys.add(9, &fakeWindow{gone: true})
		got, err := NewResolver(sys).Primary(9)
		if err != nil {
			t.Fatalf("Primary(9) failed: %v", err)
		}
		if got != 5 {
			t.Fatalf("Primary(9) = %d, want the active window 5", got)
		}
	})
}

func TestPrimaryFailsWithNoWindow(t *testing.T) {
	sys := newFakeSystem()

	_, err := NewResolver(sys).Primary(None)
	if !errors.Is(err, ErrNoWindow) {
		t.Fatalf("Primary with nothing to resolve = %v, want ErrNoWindow", err)
	}
}

func TestBackgroundFoundByProbe(t *testing.T) {
	sys := newFakeSystem()
	// Dialog at the top of the stack, editor behind it covering the probe
	// points above the dialog's frame.
	sys.add(1, &fakeWindow{
		bounds: image.Rect(100, 100, 500, 400),
		frame:  image.Rect(95, 70, 505, 405),
	})
	sys.add(2, &fakeWindow{bounds: image.Rect(0, 0, 1200, 800)})

	got := NewResolver(sys).Background(1)
	if got != 2 {
		t.Fatalf("Background(1) = %d, want the window behind (2)", got)
	}
}

func TestBackgroundProbesAboveBasicBoundsWithoutFrame(t *testing.T) {
	sys := newFakeSystem()
	sys.add(1, &fakeWindow{bounds: image.Rect(100, 100, 500, 400)})
	// Behind window covers only the strip the probes land in.
	sys.add(2, &fakeWindow{bounds: image.Rect(0, 60, 1200, 100)})

	got := NewResolver(sys).Background(1)
	if got != 2 {
		t.Fatalf("Background(1) = %d, want the window behind (2)", got)
	}
}

func TestBackgroundRejectsPrimaryAndFallsBackToOwner(t *testing.T) {
	sys := newFakeSystem()
	// The toolbar above the dialog resolves back to the dialog itself, so
	// every probe is rejected and the owner chain decides.
	sys.add(3, &fakeWindow{
		bounds:   image.Rect(0, 0, 1200, 100),
		topLevel: 1,
	})
	sys.add(1, &fakeWindow{
		bounds: image.Rect(100, 100, 500, 400),
		owner:  4,
	})
	sys.add(4, &fakeWindow{bounds: image.Rect(0, 0, 1200, 800)})

	got := NewResolver(sys).Background(1)
	if got != 4 {
		t.Fatalf("Background(1) = %d, want the owner window 4", got)
	}
}

func TestBackgroundSkipsHiddenCandidate(t *testing.T) {
	sys := newFakeSystem()
	sys.add(1, &fakeWindow{bounds: image.Rect(100, 100, 500, 400)})
	sys.add(2, &fakeWindow{bounds: image.Rect(0, 0, 1200, 800), hidden: true})

	got := NewResolver(sys).Background(1)
	if got != None {
		t.Fatalf("Background(1) = %d, want None for a hidden candidate", got)
	}
}

func TestBackgroundDegradesToNone(t *testing.T) {
	sys := newFakeSystem()
	sys.add(1, &fakeWindow{bounds: image.Rect(100, 100, 500, 400)})

	if got := NewResolver(sys).Background(1); got != None {
		t.Fatalf("Background(1) = %d, want None with nothing behind", got)
	}
}
