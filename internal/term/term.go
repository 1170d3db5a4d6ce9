// Package term is the boundary to the terminal-control library. It is
// a thin pass-through: rectangular windows, attribute and color
// setting, character and string output, refresh, and keyed input with
// an extended-keypad name table. Nothing here is algorithmic; the
// editing core only consumes it as an output sink and key source.
package term

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keyline/internal/edit/textunit"
)

// ErrScreenInit reports terminal initialization failure. This is the
// one fatal condition: it aborts the interactive session and is
// propagated to the caller.
var ErrScreenInit = errors.New("term: screen initialization failed")

// ErrUnknownWindow reports an operation on a destroyed or foreign
// window handle.
var ErrUnknownWindow = errors.New("term: unknown window")

// Event is one input event: either an in-band unit or an out-of-band
// special key identified by its symbolic name.
type Event struct {
	// Unit is the decoded unit for in-band keys.
	Unit textunit.Unit

	// Special is the symbolic name for out-of-band keys (arrows,
	// function keys). When set, Unit is meaningless.
	Special string

	// Resize marks a window-geometry change notification.
	Resize bool
}

// specialKeys is the static name table mapping terminal key codes to
// symbolic names delivered out-of-band when keypad mode is active.
var specialKeys = map[tcell.Key]string{
	tcell.KeyUp:      "up",
	tcell.KeyDown:    "down",
	tcell.KeyLeft:    "left",
	tcell.KeyRight:   "right",
	tcell.KeyHome:    "home",
	tcell.KeyEnd:     "end",
	tcell.KeyInsert:  "insert",
	tcell.KeyDelete:  "delete",
	tcell.KeyPgUp:    "pageup",
	tcell.KeyPgDn:    "pagedown",
	tcell.KeyBacktab: "backtab",
}

func init() {
	for i := 0; i < 24; i++ {
		specialKeys[tcell.KeyF1+tcell.Key(i)] = fmt.Sprintf("f%d", i+1)
	}
}

// SpecialKeyNames returns the sorted symbolic names in the keypad
// table.
func SpecialKeyNames() []string {
	names := make([]string, 0, len(specialKeys))
	for _, n := range specialKeys {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// attrs maps attribute names to tcell masks.
var attrs = map[string]tcell.AttrMask{
	"bold":      tcell.AttrBold,
	"blink":     tcell.AttrBlink,
	"reverse":   tcell.AttrReverse,
	"underline": tcell.AttrUnderline,
	"dim":       tcell.AttrDim,
	"italic":    tcell.AttrItalic,
}

// AttrNames returns the supported attribute names, sorted.
func AttrNames() []string {
	names := make([]string, 0, len(attrs))
	for n := range attrs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ColorNames returns the color names the boundary accepts, sorted.
func ColorNames() []string {
	names := make([]string, 0, len(tcell.ColorNames))
	for n := range tcell.ColorNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Manager owns the screen and the windows drawn on it.
type Manager struct {
	mu      sync.Mutex
	screen  tcell.Screen
	windows map[string]*Window
	events  chan Event
	stop    chan struct{}
	codec   *textunit.Codec
}

// NewManager initializes the real terminal screen. Failure here is
// fatal to the session and returned to the caller.
func NewManager(codec *textunit.Codec) (*Manager, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScreenInit, err)
	}
	return newManager(screen, codec)
}

// NewManagerWith wraps an existing screen, used by tests with a
// simulation screen.
func NewManagerWith(screen tcell.Screen, codec *textunit.Codec) (*Manager, error) {
	return newManager(screen, codec)
}

func newManager(screen tcell.Screen, codec *textunit.Codec) (*Manager, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScreenInit, err)
	}
	m := &Manager{
		screen:  screen,
		windows: make(map[string]*Window),
		events:  make(chan Event, 16),
		stop:    make(chan struct{}),
		codec:   codec,
	}
	go m.pump()
	return m, nil
}

// Close shuts the event pump down and restores the terminal.
func (m *Manager) Close() {
	close(m.stop)
	m.screen.Fini()
}

// Size returns the screen dimensions.
func (m *Manager) Size() (cols, lines int) {
	return m.screen.Size()
}

// Beep sounds the terminal bell.
func (m *Manager) Beep() {
	m.screen.Beep()
}

// pump translates terminal events into boundary events.
func (m *Manager) pump() {
	for {
		ev := m.screen.PollEvent()
		if ev == nil {
			return
		}
		var out Event
		switch tev := ev.(type) {
		case *tcell.EventKey:
			if name, ok := specialKeys[tev.Key()]; ok {
				out = Event{Special: name}
			} else if tev.Key() == tcell.KeyRune {
				out = Event{Unit: textunit.Unit(tev.Rune())}
			} else {
				// Control keys arrive as their unit value.
				out = Event{Unit: textunit.Unit(tev.Key())}
			}
		case *tcell.EventResize:
			out = Event{Resize: true}
		default:
			continue
		}
		select {
		case m.events <- out:
		case <-m.stop:
			return
		}
	}
}

// ReadKey returns the next input event. With keypad false, out-of-band
// keys are dropped rather than delivered. A zero timeout blocks; a
// positive timeout reports ok=false when it elapses first.
func (m *Manager) ReadKey(keypad bool, timeout time.Duration) (Event, bool) {
	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}
	for {
		select {
		case ev := <-m.events:
			if ev.Special != "" && !keypad {
				continue
			}
			return ev, true
		case <-timer:
			return Event{}, false
		case <-m.stop:
			return Event{}, false
		}
	}
}

// CreateWindow creates a rectangular window at the given origin.
func (m *Manager) CreateWindow(name string, lines, cols, y, x int) (*Window, error) {
	if lines <= 0 || cols <= 0 {
		return nil, fmt.Errorf("term: bad window geometry %dx%d", lines, cols)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.windows[name]; ok {
		return nil, fmt.Errorf("term: window %q already exists", name)
	}
	w := &Window{
		mgr:     m,
		name:    name,
		lines:   lines,
		cols:    cols,
		originY: y,
		originX: x,
		style:   tcell.StyleDefault,
	}
	m.windows[name] = w
	return w, nil
}

// DestroyWindow removes a window. Its cells are cleared on the next
// refresh of whatever covers them.
func (m *Manager) DestroyWindow(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.windows[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownWindow, name)
	}
	delete(m.windows, name)
	return nil
}

// WindowNames returns the names of the live windows, sorted.
func (m *Manager) WindowNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.windows))
	for n := range m.windows {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
