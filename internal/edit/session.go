package edit

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/keyline/internal/edit/hook"
	"github.com/dshills/keyline/internal/edit/keymap"
	"github.com/dshills/keyline/internal/edit/killring"
	"github.com/dshills/keyline/internal/edit/linebuffer"
	"github.com/dshills/keyline/internal/edit/modifier"
	"github.com/dshills/keyline/internal/edit/textunit"
	"github.com/dshills/keyline/internal/edit/undo"
	"github.com/dshills/keyline/internal/edit/userfn"
	"github.com/dshills/keyline/internal/edit/widget"
)

// BellFunc receives non-fatal failure notifications: unbound keys,
// rejected rebinds, invalid input. The default is a no-op.
type BellFunc func(reason string)

// Config configures a session.
type Config struct {
	// Mode selects the character model.
	Mode textunit.Mode

	// Policy is the keymap resolution policy.
	Policy keymap.Policy

	// RingSlots is the kill-ring capacity; zero means the default.
	RingSlots int

	// Bell receives non-fatal failure notifications.
	Bell BellFunc

	// Redraw is called when a deferred refresh should run, for
	// example after a resize was observed. Optional.
	Redraw func()
}

// Session is the explicit editor context: every piece of dispatch state
// hangs off it, so sessions can be created and torn down freely. All
// dispatch happens on one goroutine; only the signal flags may be
// touched from outside it.
type Session struct {
	id     string
	config Config
	codec  *textunit.Codec

	buf     *linebuffer.Buffer
	widgets *widget.Table
	keymaps *keymap.Set
	mod     *modifier.State
	undoLog *undo.Log
	ring    *killring.Ring
	hooks   *hook.Dispatcher
	fns     *userfn.Engine

	resolver *keymap.Resolver

	// hist identifies the history line being edited.
	hist int

	// lastName and lastFlags track the previous dispatched widget for
	// kill-run and yank-state decisions. Widgets flagged NotCommand
	// leave them untouched.
	lastName  string
	lastFlags widget.Flags

	// Committed modifier state for the dispatch in flight.
	mult       int
	slot       int
	appendKill bool

	// keepModifier is set by digit-entry widgets to retain modifier
	// state across the dispatch boundary.
	keepModifier bool

	// lastUnit is the unit that triggered the dispatch in flight,
	// consulted by self-insert and digit-argument.
	lastUnit textunit.Unit

	// yank tracking for yank-pop.
	yankStart, yankEnd int

	// accepted holds the finished line once accept-line ran.
	accepted bool

	// Signal flags. Set from signal context, acted on only at the top
	// of the dispatch cycle.
	resizePending    atomic.Bool
	interruptPending atomic.Bool

	decodeBuf []byte
}

// NewSession creates a session with the builtin widget catalogue
// registered and the default keymaps installed.
func NewSession(cfg Config) *Session {
	if cfg.Bell == nil {
		cfg.Bell = func(string) {}
	}
	s := &Session{
		id:      uuid.NewString(),
		config:  cfg,
		codec:   textunit.NewCodec(cfg.Mode),
		buf:     linebuffer.New(),
		widgets: widget.NewTable(),
		keymaps: keymap.NewSet(cfg.Policy),
		mod:     modifier.New(),
		undoLog: undo.NewLog(),
		ring:    killring.New(cfg.RingSlots),
		hooks:   hook.NewDispatcher(),
		fns:     userfn.NewEngine(),
		slot:    modifier.DefaultSlot,
		mult:    1,
	}
	s.registerBuiltins()
	s.installDefaultBindings()
	s.resolver = s.keymaps.ActiveMap().NewResolver()
	return s
}

// Close tears the session down.
func (s *Session) Close() {
	s.fns.Close()
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Codec returns the session's character codec.
func (s *Session) Codec() *textunit.Codec { return s.codec }

// Buffer returns the line buffer.
func (s *Session) Buffer() *linebuffer.Buffer { return s.buf }

// Widgets returns the binding table.
func (s *Session) Widgets() *widget.Table { return s.widgets }

// Keymaps returns the keymap set.
func (s *Session) Keymaps() *keymap.Set { return s.keymaps }

// Modifier returns the modifier state.
func (s *Session) Modifier() *modifier.State { return s.mod }

// UndoLog returns the change log.
func (s *Session) UndoLog() *undo.Log { return s.undoLog }

// KillRing returns the kill ring.
func (s *Session) KillRing() *killring.Ring { return s.ring }

// Hooks returns the completion hook dispatcher.
func (s *Session) Hooks() *hook.Dispatcher { return s.hooks }

// UserFuncs returns the user-function engine.
func (s *Session) UserFuncs() *userfn.Engine { return s.fns }

// Hist returns the history line identifier being edited.
func (s *Session) Hist() int { return s.hist }

// SetHist switches to a different history line, clipping the undo log
// entries of the abandoned line.
func (s *Session) SetHist(hist int, units []textunit.Unit) {
	if hist != s.hist {
		s.undoLog.Clip(s.hist)
	}
	s.hist = hist
	s.buf.SetLine(units, true)
}

// Accepted reports whether accept-line has run; the finished line is
// then available from the buffer.
func (s *Session) Accepted() bool { return s.accepted }

// ResetAccepted clears the accepted flag for the next line.
func (s *Session) ResetAccepted() { s.accepted = false }

// Bell reports a recoverable failure to the user.
func (s *Session) Bell(reason string) { s.config.Bell(reason) }

// NotifyResize records a pending window-geometry refresh. Safe to call
// from a signal handler goroutine; acted on at the top of the dispatch
// cycle.
func (s *Session) NotifyResize() { s.resizePending.Store(true) }

// NotifyInterrupt records a pending interrupt. Safe to call from a
// signal handler goroutine. The interrupt aborts any in-progress
// multi-key sequence and accumulated modifier state; the undo log is
// untouched.
func (s *Session) NotifyInterrupt() { s.interruptPending.Store(true) }

// DefineWidget registers a user-defined widget whose behavior is the
// named user function, resolved at call time. Replaces any existing
// non-immortal binding of the same name.
func (s *Session) DefineWidget(name, funcName string) error {
	if th := s.widgets.Lookup(name); th != nil && th.Immortal() {
		return widget.ErrImmortal
	}
	_, err := s.widgets.Register(name, widget.NewUser(funcName, 0), true)
	return err
}

// WidgetNames enumerates the currently defined widget names.
func (s *Session) WidgetNames() []string { return s.widgets.Names() }

// KeepModifier asks the dispatcher to retain modifier state past the
// current dispatch. Digit-entry widgets call this.
func (s *Session) KeepModifier() { s.keepModifier = true }

// Mult returns the effective repeat multiplier of the dispatch in
// flight.
func (s *Session) Mult() int { return s.mult }

// LastUnit returns the unit that triggered the dispatch in flight.
func (s *Session) LastUnit() textunit.Unit { return s.lastUnit }

// pollSignals acts on pending signal flags. Called at the top of the
// dispatch cycle, never from signal context.
func (s *Session) pollSignals() {
	if s.interruptPending.Swap(false) {
		s.resolver.Reset()
		s.mod.Reset()
	}
	if s.resizePending.Swap(false) && s.config.Redraw != nil {
		s.config.Redraw()
	}
}
