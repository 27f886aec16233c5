// Package hotkey installs the global capture hotkeys on the X server.
package hotkey

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/rs/zerolog"

	"github.com/keysnap/keysnap/internal/capture"
	"github.com/keysnap/keysnap/internal/logger"
)

// Capturer consumes the capture requests the hotkeys produce.
type Capturer interface {
	CaptureEvent(target capture.Window, composite bool) (*capture.Result, error)
}

// Display is the X11 surface the grabs are installed on.
type Display interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
	InputFocus() (capture.Window, error)
}

// Binding ties one key sequence to a capture mode.
type Binding struct {
	// Sequence is an xgbutil key description such as "F11" or "shift-F11".
	Sequence string
	// Composite requests the window-pair capture instead of the single one.
	Composite bool
}

// Manager owns the hotkey grabs of one capture session. Installing a new
// set of bindings tears the previous set down first, so at most one
// session is live per display.
type Manager struct {
	display  Display
	capturer Capturer

	mu        sync.Mutex
	installed bool
	log       *zerolog.Logger
}

var ignoreModsOnce sync.Once

// New creates a manager for the display. Lock-style modifiers are removed
// from grab matching once per process so that Caps Lock or Num Lock being
// latched does not swallow the hotkeys.
func New(display Display, capturer Capturer) *Manager {
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(display.XUtil())
	})
	return &Manager{
		display:  display,
		capturer: capturer,
		log:      logger.WithComponent("hotkey"),
	}
}

// Install replaces any previously installed bindings with the given set.
// Callbacks fire on key release, on the event loop goroutine.
func (m *Manager) Install(bindings []Binding) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	xu := m.display.XUtil()
	root := m.display.RootWindow()
	if m.installed {
		keybind.Detach(xu, root)
		m.installed = false
	}

	for _, b := range bindings {
		err := keybind.KeyReleaseFun(func(xu *xgbutil.XUtil, ev xevent.KeyReleaseEvent) {
			m.fire(b)
		}).Connect(xu, root, b.Sequence, true)
		if err != nil {
			keybind.Detach(xu, root)
			return fmt.Errorf("failed to grab %q: %w", b.Sequence, err)
		}
		m.log.Info().
			Str("sequence", b.Sequence).
			Bool("composite", b.Composite).
			Msg("Hotkey installed")
	}
	m.installed = true
	return nil
}

// Uninstall removes the session's grabs.
func (m *Manager) Uninstall() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.installed {
		return
	}
	keybind.Detach(m.display.XUtil(), m.display.RootWindow())
	m.installed = false
}

// fire reads the window holding keyboard focus at the moment of the
// keystroke and hands it to the capturer. Capture errors are logged and
// otherwise dropped.
func (m *Manager) fire(b Binding) {
	target, err := m.display.InputFocus()
	if err != nil {
		m.log.Warn().Err(err).Msg("Could not read the input focus")
		target = capture.None
	}
	if _, err := m.capturer.CaptureEvent(target, b.Composite); err != nil {
		m.log.Warn().Err(err).Str("sequence", b.Sequence).Msg("Capture failed")
	}
}

// configureIgnoreMods widens grab matching so that latched lock modifiers
// do not change which events a grab sees. Every subset of the active lock
// masks ends up in xevent.IgnoreMods.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	locks := []uint16{uint16(xproto.ModMaskLock)}
	for _, keysym := range []string{"Num_Lock", "Scroll_Lock"} {
		mask := lockMask(xu, keysym)
		if mask == 0 {
			continue
		}
		known := false
		for _, have := range locks {
			if have == mask {
				known = true
				break
			}
		}
		if !known {
			locks = append(locks, mask)
		}
	}

	ignore := []uint16{0}
	for subset := 1; subset < 1<<len(locks); subset++ {
		var mask uint16
		for bit, lock := range locks {
			if subset&(1<<bit) != 0 {
				mask |= lock
			}
		}
		ignore = append(ignore, mask)
	}
	xevent.IgnoreMods = ignore
}

// lockMask resolves the modifier mask a lock keysym is bound to, or 0 when
// the keysym is not on any modifier.
func lockMask(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
