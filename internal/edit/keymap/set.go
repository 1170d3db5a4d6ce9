package keymap

import (
	"fmt"
	"sort"
	"time"
)

// Mode names that exist by convention.
const (
	// InsertMode is the default typing mode.
	InsertMode = "insert"

	// CommandMode is the modal command mode, checked by
	// Set.InCommandMode.
	CommandMode = "vicmd"
)

// Policy configures sequence resolution behavior.
type Policy struct {
	// ResolveTimeout bounds the wait for one more unit when a complete
	// binding is also a prefix of a longer one. When it elapses the
	// shorter match is taken. Zero means take the shorter match
	// without waiting. The exact value is environment-dependent, so it
	// is configuration rather than a constant.
	ResolveTimeout time.Duration
}

// DefaultPolicy returns the default resolution policy.
func DefaultPolicy() Policy {
	return Policy{ResolveTimeout: time.Second}
}

// Set holds all named keymaps and tracks the active mode. Switching
// modes changes only which table subsequent resolutions consult; it
// never clears pending modifier state.
type Set struct {
	maps   map[string]*Keymap
	active string
	policy Policy
}

// NewSet creates a keymap set containing empty insert and vicmd maps,
// with insert active.
func NewSet(policy Policy) *Set {
	s := &Set{
		maps:   make(map[string]*Keymap),
		active: InsertMode,
		policy: policy,
	}
	s.maps[InsertMode] = New(InsertMode)
	s.maps[CommandMode] = New(CommandMode)
	return s
}

// Policy returns the resolution policy.
func (s *Set) Policy() Policy { return s.policy }

// Active returns the active mode name.
func (s *Set) Active() string { return s.active }

// ActiveMap returns the active keymap.
func (s *Set) ActiveMap() *Keymap { return s.maps[s.active] }

// InCommandMode reports whether the command mode is active.
func (s *Set) InCommandMode() bool { return s.active == CommandMode }

// Select switches the active mode. The only side effect is changing
// which table resolutions consult.
func (s *Set) Select(mode string) error {
	if _, ok := s.maps[mode]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	s.active = mode
	return nil
}

// Get returns the named keymap, or nil.
func (s *Set) Get(mode string) *Keymap { return s.maps[mode] }

// Add registers a new mode with an empty keymap. Adding an existing
// mode returns the existing map unchanged.
func (s *Set) Add(mode string) *Keymap {
	if m, ok := s.maps[mode]; ok {
		return m
	}
	m := New(mode)
	s.maps[mode] = m
	return m
}

// Modes returns all mode names in sorted order.
func (s *Set) Modes() []string {
	names := make([]string, 0, len(s.maps))
	for n := range s.maps {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
