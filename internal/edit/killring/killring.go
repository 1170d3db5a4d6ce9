// Package killring stores previously cut text in a fixed-capacity
// rotating ring of slots. Slots hold binary-safe unit sequences tagged
// whole-line or character-span; the tag decides where a later paste
// positions the cursor.
package killring

import (
	"github.com/dshills/keyline/internal/edit/textunit"
)

// DefaultSlots is the conventional ring capacity.
const DefaultSlots = 8

// Cut is one kill-ring slot.
type Cut struct {
	// Units is the cut text. Binary safe: length is explicit.
	Units []textunit.Unit

	// Line marks whole-line content as opposed to a character span.
	Line bool
}

// Clone returns a deep copy of the cut.
func (c Cut) Clone() Cut {
	units := make([]textunit.Unit, len(c.Units))
	copy(units, c.Units)
	return Cut{Units: units, Line: c.Line}
}

// Ring is the kill ring. Slot 0 is always the most recent kill; pushes
// rotate the ring and silently evict the oldest slot at capacity.
type Ring struct {
	slots []Cut
	cap   int
}

// New creates a ring with the given capacity; zero or negative means
// DefaultSlots.
func New(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultSlots
	}
	return &Ring{cap: capacity}
}

// Cap returns the ring capacity.
func (r *Ring) Cap() int { return r.cap }

// Len returns the number of occupied slots.
func (r *Ring) Len() int { return len(r.slots) }

// Push stores cut text. Without app the ring rotates: the text becomes
// slot 0 and the oldest slot falls off at capacity. With app the text
// is concatenated onto slot 0 instead, keeping the Line tag of the
// first push in the run; consecutive kill-style widgets use this so a
// run of kills yanks back as one block.
func (r *Ring) Push(units []textunit.Unit, line, app bool) {
	cloned := make([]textunit.Unit, len(units))
	copy(cloned, units)

	if app && len(r.slots) > 0 {
		r.slots[0].Units = append(r.slots[0].Units, cloned...)
		return
	}

	r.slots = append([]Cut{{Units: cloned, Line: line}}, r.slots...)
	if len(r.slots) > r.cap {
		r.slots = r.slots[:r.cap]
	}
}

// PushSlot stores cut text in an explicitly selected slot instead of
// rotating. Without app the slot's content is replaced; with app the
// text is concatenated onto it, keeping the slot's existing Line tag.
// Selecting an empty slot within capacity creates it; an index at or
// beyond capacity reports false and stores nothing. A negative index
// falls back to the default Push behavior.
func (r *Ring) PushSlot(i int, units []textunit.Unit, line, app bool) bool {
	if i < 0 {
		r.Push(units, line, app)
		return true
	}
	if i >= r.cap {
		return false
	}
	for len(r.slots) <= i {
		r.slots = append(r.slots, Cut{})
	}

	cloned := make([]textunit.Unit, len(units))
	copy(cloned, units)

	if app && len(r.slots[i].Units) > 0 {
		r.slots[i].Units = append(r.slots[i].Units, cloned...)
		return true
	}
	r.slots[i] = Cut{Units: cloned, Line: line}
	return true
}

// Get returns the most recent cut, or ok=false if the ring is empty.
func (r *Ring) Get() (Cut, bool) {
	return r.GetSlot(0)
}

// GetSlot returns the cut at the given slot index, 0 being the most
// recent. Out-of-range indexes report ok=false.
func (r *Ring) GetSlot(i int) (Cut, bool) {
	if i < 0 || i >= len(r.slots) {
		return Cut{}, false
	}
	return r.slots[i].Clone(), true
}

// Rotate moves slot 0 to the back, exposing the next older cut as the
// most recent. Used by yank-pop to walk the ring. Empty or single-slot
// rings are unchanged.
func (r *Ring) Rotate() {
	if len(r.slots) < 2 {
		return
	}
	head := r.slots[0]
	copy(r.slots, r.slots[1:])
	r.slots[len(r.slots)-1] = head
}
