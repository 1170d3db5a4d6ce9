package edit

import (
	"errors"
	"fmt"

	"github.com/dshills/keyline/internal/edit/hook"
	"github.com/dshills/keyline/internal/edit/keymap"
	"github.com/dshills/keyline/internal/edit/killring"
	"github.com/dshills/keyline/internal/edit/textunit"
	"github.com/dshills/keyline/internal/edit/widget"
)

// ErrNoWidget reports a resolved thingy with no usable widget.
var ErrNoWidget = errors.New("edit: thingy has no widget")

// HandleRaw feeds raw input bytes through the character model and the
// dispatcher. Malformed input rings the bell and is discarded without
// touching the buffer.
func (s *Session) HandleRaw(b []byte) {
	s.decodeBuf = append(s.decodeBuf, b...)
	for len(s.decodeBuf) > 0 {
		if s.codec.NeedMore(s.decodeBuf) {
			// Truncated multibyte prefix; wait for the rest.
			return
		}
		u, n, err := s.codec.Decode(s.decodeBuf)
		if err != nil {
			s.decodeBuf = s.decodeBuf[n:]
			s.Bell("invalid input unit")
			continue
		}
		s.decodeBuf = s.decodeBuf[n:]
		s.HandleKey(keymap.UnitKey(u))
	}
}

// HandleKey feeds one decoded key through resolution and dispatch.
func (s *Session) HandleKey(k keymap.Key) {
	s.pollSignals()
	s.feed(k)
}

// AwaitingMore reports whether resolution is mid-sequence with a
// shorter complete match pending, meaning the read loop should apply
// the resolve timeout before the next key.
func (s *Session) AwaitingMore() bool { return s.resolver.HasComplete() }

// Pending reports whether any key prefix has been consumed.
func (s *Session) Pending() bool { return s.resolver.Pending() }

// FlushPending takes the shorter complete match after the resolve
// timeout elapsed without further input.
func (s *Session) FlushPending() {
	res, ok := s.resolver.TakePending()
	if !ok {
		return
	}
	s.dispatch(res.Name)
	s.replay(res.Replay)
}

func (s *Session) feed(k keymap.Key) {
	res := s.resolver.Feed(k)
	switch res.Status {
	case keymap.StatusMatch:
		if k.Special == "" {
			s.lastUnit = k.Unit
		}
		s.dispatch(res.Name)
		s.replay(res.Replay)

	case keymap.StatusUnbound:
		s.Bell("unbound: " + keymap.Seq(res.Replay))

	case keymap.StatusPrefix:
		// Wait for more input; the read loop owns the timeout.
	}
}

// replay re-feeds keys consumed past a taken shorter match.
func (s *Session) replay(keys []keymap.Key) {
	for _, k := range keys {
		s.feed(k)
	}
}

// dispatch resolves a thingy name and executes its widget, then runs
// the post-dispatch bookkeeping shared by every widget.
func (s *Session) dispatch(name string) {
	th := s.widgets.Lookup(name)
	if th == nil || th.Disabled() {
		s.Bell("unbound: " + name)
		return
	}
	w := th.Widget()
	if w == nil || w.Released() {
		s.Bell(ErrNoWidget.Error())
		return
	}

	s.mult, s.slot, s.appendKill = s.mod.Commit()
	s.undoLog.StartGroup()
	s.keepModifier = false

	err := s.execute(w)
	if err != nil {
		s.Bell(fmt.Sprintf("%s: %v", name, err))
	}

	// Any widget without the menu-completion flag invalidates the
	// completion list.
	if !w.Flags.Has(widget.FlagMenuCmp) {
		s.hooks.Invoke(hook.InvalidateList, nil)
	}

	// A failed widget breaks any kill or yank run without starting a
	// new one: a yank that found the ring empty must not let a
	// following yank-pop through.
	if !w.Flags.Has(widget.FlagNotCommand) {
		if err != nil {
			s.lastName = ""
			s.lastFlags = 0
		} else {
			s.lastName = name
			s.lastFlags = w.Flags
		}
	}

	if !s.keepModifier {
		s.mod.Reset()
	}
}

// execute runs one widget according to its kind.
func (s *Session) execute(w *widget.Widget) error {
	switch w.Kind {
	case widget.KindBuiltin:
		if w.Fn == nil {
			return ErrNoWidget
		}
		return w.Fn(nil)

	case widget.KindUser:
		return s.fns.Call(w.FuncName)

	case widget.KindCompletion:
		if s.fns.Has(w.FuncName) {
			return s.completeVia(w)
		}
		if w.Fn == nil {
			return ErrNoWidget
		}
		return w.Fn(nil)

	default:
		return fmt.Errorf("edit: unknown widget kind %v", w.Kind)
	}
}

// completeVia drives the new-style completion cycle for a
// completion-forwarding widget: before-complete, the complete hook with
// the external function's result, then after-complete with the brace
// runs for the engine to reposition.
func (s *Session) completeVia(w *widget.Widget) error {
	word := s.wordAtCursor()
	data := &hook.CompleteData{Word: word, Kind: hook.KindComplete}

	s.hooks.Invoke(hook.BeforeComplete, data)

	replacement, err := s.fns.CallString(w.FuncName, w.WidgetName, word)
	if err != nil {
		return err
	}
	if replacement != "" && replacement != word {
		units := s.codec.DecodeString(replacement)
		start := s.buf.Cursor() - len(s.codec.DecodeString(word))
		s.Replace(start, len(s.codec.DecodeString(word)), units)
	}

	res := s.hooks.Invoke(hook.Complete, data)
	if res.Handled {
		s.hooks.MarkListValid()
	}
	s.hooks.Invoke(hook.AfterComplete, data)
	return nil
}

// Insert inserts units at the cursor, recording the change.
func (s *Session) Insert(units []textunit.Unit) {
	s.InsertAt(s.buf.Cursor(), units)
}

// InsertAt inserts units at off, recording the change for undo.
func (s *Session) InsertAt(off int, units []textunit.Unit) {
	if len(units) == 0 {
		return
	}
	before := s.buf.Cursor()
	s.buf.InsertAt(off, units)
	s.buf.SetCursor(off + len(units))
	s.undoLog.Record(s.hist, off, nil, units, before, s.buf.Cursor())
}

// Delete removes n units at off, recording the change for undo, and
// returns the removed span.
func (s *Session) Delete(off, n int) []textunit.Unit {
	if n <= 0 {
		return nil
	}
	before := s.buf.Cursor()
	removed := s.buf.DeleteAt(off, n)
	if len(removed) == 0 {
		return nil
	}
	s.buf.SetCursor(off)
	s.undoLog.Record(s.hist, off, removed, nil, before, s.buf.Cursor())
	return removed
}

// Replace substitutes n units at off with the given units as a single
// chained change.
func (s *Session) Replace(off, n int, units []textunit.Unit) {
	s.Delete(off, n)
	s.InsertAt(off, units)
}

// Kill removes a span and pushes it onto the kill ring. Consecutive
// kill-style dispatches append to the same slot, preserving the
// whole-line tag of the run's first kill, as does an explicit
// append-selection from the modifier. An explicitly selected slot
// receives the text directly, replaced or appended to in place.
func (s *Session) Kill(off, n int, line bool) {
	removed := s.Delete(off, n)
	if len(removed) == 0 {
		return
	}
	app := s.appendKill || s.lastFlags.Has(widget.FlagKill)
	if !s.ring.PushSlot(s.slot, removed, line, app) {
		s.Bell("kill slot out of range")
	}
}

// Yank inserts the selected kill-ring slot at the cursor and remembers
// the span for yank-pop.
func (s *Session) Yank() error {
	var cut killring.Cut
	var ok bool
	if s.slot >= 0 {
		cut, ok = s.ring.GetSlot(s.slot)
	} else {
		cut, ok = s.ring.Get()
	}
	if !ok {
		return errors.New("kill ring is empty")
	}

	start := s.buf.Cursor()
	if cut.Line {
		// Whole-line content pastes at line start.
		start = 0
	}
	s.InsertAt(start, cut.Units)
	s.yankStart = start
	s.yankEnd = start + len(cut.Units)
	return nil
}

// YankPop replaces the last yank with the next older ring slot. Valid
// only immediately after a yank-style widget.
func (s *Session) YankPop() error {
	if !s.lastFlags.Has(widget.FlagYank) {
		return errors.New("yank-pop outside a yank run")
	}
	s.ring.Rotate()
	cut, ok := s.ring.Get()
	if !ok {
		return errors.New("kill ring is empty")
	}
	s.Replace(s.yankStart, s.yankEnd-s.yankStart, cut.Units)
	s.yankEnd = s.yankStart + len(cut.Units)
	return nil
}

// wordAtCursor returns the word immediately before the cursor, for
// completion payloads.
func (s *Session) wordAtCursor() string {
	end := s.buf.Cursor()
	start := end
	for start > 0 {
		u := s.buf.At(start - 1)
		if c := s.codec.Classify(u); c != textunit.ClassLetter && c != textunit.ClassDigit && u != '-' && u != '_' && u != '/' && u != '.' {
			break
		}
		start--
	}
	return s.codec.EncodeString(s.buf.Slice(start, end))
}
