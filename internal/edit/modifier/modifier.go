// Package modifier tracks the transient per-dispatch command prefixes:
// an in-progress numeric repeat count, a selected kill-ring slot, and a
// pending negation. The dispatcher resets the state after every widget
// unless the widget asks for it to persist, which the digit-entry
// widgets do.
package modifier

import "math"

// DefaultSlot selects the most recent kill-ring slot.
const DefaultSlot = -1

// State is the modifier state. The zero value is the reset state.
type State struct {
	// multSelected records that a repeat count was explicitly
	// committed, so an explicit zero is distinct from "no count".
	multSelected bool

	// typing records that a count is being entered digit by digit.
	typing bool

	// slotSelected records that a kill-ring slot was chosen.
	slotSelected bool

	// appendNext marks the next kill as an append to the chosen slot.
	appendNext bool

	// negated records that negation has been applied. It is applied
	// once; repeating the negate command while a count is pending does
	// not flip the sign again and again as separate command steps.
	negated bool

	mult  int
	tmult int
	slot  int
}

// New creates a reset modifier state.
func New() *State {
	s := &State{}
	s.Reset()
	return s
}

// Reset restores all defaults: multiplier 1, no slot, no flags.
func (s *State) Reset() {
	s.multSelected = false
	s.typing = false
	s.slotSelected = false
	s.appendNext = false
	s.negated = false
	s.mult = 1
	s.tmult = 1
	s.slot = DefaultSlot
}

// BeginNumeric starts digit-by-digit count entry.
func (s *State) BeginNumeric() {
	s.typing = true
	s.tmult = 0
}

// Typing reports whether a count is currently being entered.
func (s *State) Typing() bool { return s.typing }

// FeedDigit appends a decimal digit to the count in progress, starting
// one implicitly if needed. Accumulation is capped rather than allowed
// to overflow.
func (s *State) FeedDigit(d int) {
	if d < 0 || d > 9 {
		return
	}
	if !s.typing {
		s.BeginNumeric()
	}
	if s.tmult > (math.MaxInt-d)/10 {
		s.tmult = math.MaxInt / 10
		return
	}
	s.tmult = s.tmult*10 + d
}

// SetMult commits an explicit multiplier, as universal-argument does.
// Zero is a valid explicit multiplier.
func (s *State) SetMult(n int) {
	s.mult = n
	s.multSelected = true
	s.typing = false
}

// Scale multiplies the pending count by n, committing any digits in
// progress first. With no pending count the result is n itself, which
// is how universal-argument seeds its factor of four.
func (s *State) Scale(n int) {
	if s.typing {
		s.SetMult(s.tmult)
	}
	if !s.multSelected {
		s.SetMult(n)
		return
	}
	s.SetMult(s.mult * n)
}

// Negate toggles the sign of whatever multiplier is eventually
// committed. Applied once, at commit: repeated commits never re-apply
// it, and a bare negation commits as -1.
func (s *State) Negate() {
	s.negated = !s.negated
}

// Negated reports whether a negation is pending.
func (s *State) Negated() bool { return s.negated }

// SelectSlot chooses a kill-ring slot for the next kill or yank. With
// app true the next kill appends to the slot instead of replacing it.
func (s *State) SelectSlot(n int, app bool) {
	s.slot = n
	s.slotSelected = true
	s.appendNext = app
}

// HasMult reports whether a multiplier was explicitly supplied, either
// committed or still being typed.
func (s *State) HasMult() bool { return s.multSelected || s.typing }

// HasSlot reports whether a kill-ring slot was explicitly selected.
func (s *State) HasSlot() bool { return s.slotSelected }

// Commit returns the effective multiplier (default 1, explicit zero
// preserved), the selected slot (DefaultSlot if none), and whether the
// next kill appends. Commit is a pure read: digit accumulation in
// progress continues across it, which is what lets digit-entry widgets
// run as ordinary dispatches between the digits.
func (s *State) Commit() (mult, slot int, appendKill bool) {
	mult = 1
	switch {
	case s.typing:
		mult = s.tmult
	case s.multSelected:
		mult = s.mult
	}
	if s.negated {
		mult = -mult
	}
	return mult, s.slot, s.appendNext
}
