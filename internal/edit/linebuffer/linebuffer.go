// Package linebuffer holds the line being edited.
//
// The buffer is an ordered sequence of units with an explicit length and
// a cursor position. It is binary safe: a zero unit is data, not a
// terminator. All widget mutations go through InsertAt/DeleteAt so the
// undo log can capture exact deltas.
package linebuffer

import (
	"github.com/dshills/keyline/internal/edit/textunit"
)

// Buffer is a single editable line of units plus a cursor.
type Buffer struct {
	units  []textunit.Unit
	cursor int
}

// New creates an empty buffer.
func New() *Buffer {
	return &Buffer{units: make([]textunit.Unit, 0, 64)}
}

// NewFromUnits creates a buffer holding a copy of units, cursor at end.
func NewFromUnits(units []textunit.Unit) *Buffer {
	b := &Buffer{units: make([]textunit.Unit, len(units))}
	copy(b.units, units)
	b.cursor = len(units)
	return b
}

// Len returns the number of units in the buffer.
func (b *Buffer) Len() int { return len(b.units) }

// Cursor returns the current cursor offset, 0..Len().
func (b *Buffer) Cursor() int { return b.cursor }

// SetCursor moves the cursor, clamping to the valid range.
func (b *Buffer) SetCursor(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(b.units) {
		pos = len(b.units)
	}
	b.cursor = pos
}

// Units returns a copy of the buffer contents.
func (b *Buffer) Units() []textunit.Unit {
	out := make([]textunit.Unit, len(b.units))
	copy(out, b.units)
	return out
}

// Slice returns a copy of the units in [start, end), clamped.
func (b *Buffer) Slice(start, end int) []textunit.Unit {
	if start < 0 {
		start = 0
	}
	if end > len(b.units) {
		end = len(b.units)
	}
	if start >= end {
		return nil
	}
	out := make([]textunit.Unit, end-start)
	copy(out, b.units[start:end])
	return out
}

// At returns the unit at offset i, or textunit.Invalid if out of range.
func (b *Buffer) At(i int) textunit.Unit {
	if i < 0 || i >= len(b.units) {
		return textunit.Invalid
	}
	return b.units[i]
}

// InsertAt inserts units at offset off, clamped to the valid range.
// The cursor moves past the insertion if it was at or after off.
func (b *Buffer) InsertAt(off int, units []textunit.Unit) {
	if len(units) == 0 {
		return
	}
	if off < 0 {
		off = 0
	}
	if off > len(b.units) {
		off = len(b.units)
	}

	b.units = append(b.units, make([]textunit.Unit, len(units))...)
	copy(b.units[off+len(units):], b.units[off:])
	copy(b.units[off:], units)

	if b.cursor >= off {
		b.cursor += len(units)
	}
}

// DeleteAt removes n units at offset off and returns the removed span.
// The range is clamped to the buffer; the cursor is adjusted to stay on
// the same logical position.
func (b *Buffer) DeleteAt(off, n int) []textunit.Unit {
	if off < 0 {
		n += off
		off = 0
	}
	if off >= len(b.units) || n <= 0 {
		return nil
	}
	if off+n > len(b.units) {
		n = len(b.units) - off
	}

	removed := make([]textunit.Unit, n)
	copy(removed, b.units[off:off+n])
	b.units = append(b.units[:off], b.units[off+n:]...)

	switch {
	case b.cursor >= off+n:
		b.cursor -= n
	case b.cursor > off:
		b.cursor = off
	}
	return removed
}

// SetLine replaces the whole buffer content. If toEnd is true the cursor
// moves to the end of the new line, otherwise it is clamped in place.
func (b *Buffer) SetLine(units []textunit.Unit, toEnd bool) {
	b.units = make([]textunit.Unit, len(units))
	copy(b.units, units)
	if toEnd || b.cursor > len(b.units) {
		b.cursor = len(b.units)
	}
}

// String renders the buffer through the given codec.
func (b *Buffer) String(codec *textunit.Codec) string {
	return codec.EncodeString(b.units)
}
