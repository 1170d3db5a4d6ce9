// Package undo records buffer deltas and replays their exact inverses.
//
// The log is an append-only vector of Change records. Entries recorded
// within one widget dispatch share a group id and undo or redo as one
// atomic unit. Undo must be bit-exact: applying "delete ins at off, then
// insert del at off" to the post-edit buffer restores the pre-edit
// buffer and the prior cursor position, never an approximation.
package undo

import (
	"github.com/dshills/keyline/internal/edit/linebuffer"
	"github.com/dshills/keyline/internal/edit/textunit"
)

// Change is one undo-log entry: an exact buffer delta plus the cursor
// transition around it.
type Change struct {
	// Hist identifies the history line the edit applies to.
	Hist int

	// Off is the unit offset of the edit.
	Off int

	// Del holds the exact units the edit removed.
	Del []textunit.Unit

	// Ins holds the exact units the edit inserted.
	Ins []textunit.Unit

	// CursorBefore and CursorAfter are the cursor positions on either
	// side of the edit.
	CursorBefore int
	CursorAfter  int

	// Group ties consecutive entries into one atomic undo unit.
	Group int
}

// Log is the ordered change log for a session. The current position
// separates undoable entries (before it) from redoable ones (after).
type Log struct {
	changes []Change
	pos     int

	group     int
	groupOpen bool
}

// NewLog creates an empty change log.
func NewLog() *Log {
	return &Log{}
}

// Len returns the number of recorded changes.
func (l *Log) Len() int { return len(l.changes) }

// CanUndo reports whether any change precedes the current position.
func (l *Log) CanUndo() bool { return l.pos > 0 }

// CanRedo reports whether any undone change can be re-applied.
func (l *Log) CanRedo() bool { return l.pos < len(l.changes) }

// StartGroup opens a new undo group. Every Record until the next
// StartGroup joins it. The dispatcher calls this once per widget
// dispatch so multi-step widgets undo atomically.
func (l *Log) StartGroup() {
	l.group++
	l.groupOpen = true
}

// Record appends a change to the log, truncating any redoable tail.
// The change joins the current group.
func (l *Log) Record(hist, off int, del, ins []textunit.Unit, cursorBefore, cursorAfter int) {
	if !l.groupOpen {
		l.StartGroup()
	}
	l.changes = l.changes[:l.pos]
	l.changes = append(l.changes, Change{
		Hist:         hist,
		Off:          off,
		Del:          cloneUnits(del),
		Ins:          cloneUnits(ins),
		CursorBefore: cursorBefore,
		CursorAfter:  cursorAfter,
		Group:        l.group,
	})
	l.pos = len(l.changes)
}

// Undo reverses the most recent group: each entry's exact inverse is
// applied in reverse order and the cursor is restored to the first
// entry's CursorBefore. An empty log is a no-op reporting false.
func (l *Log) Undo(buf *linebuffer.Buffer) bool {
	if l.pos == 0 {
		return false
	}

	group := l.changes[l.pos-1].Group
	first := l.pos - 1
	for first > 0 && l.changes[first-1].Group == group {
		first--
	}

	for i := l.pos - 1; i >= first; i-- {
		ch := &l.changes[i]
		buf.DeleteAt(ch.Off, len(ch.Ins))
		buf.InsertAt(ch.Off, ch.Del)
	}
	buf.SetCursor(l.changes[first].CursorBefore)
	l.pos = first
	return true
}

// Redo re-applies the next undone group in forward order, restoring the
// last entry's CursorAfter. A fully-applied log is a no-op reporting
// false.
func (l *Log) Redo(buf *linebuffer.Buffer) bool {
	if l.pos >= len(l.changes) {
		return false
	}

	group := l.changes[l.pos].Group
	last := l.pos
	for last+1 < len(l.changes) && l.changes[last+1].Group == group {
		last++
	}

	for i := l.pos; i <= last; i++ {
		ch := &l.changes[i]
		buf.DeleteAt(ch.Off, len(ch.Del))
		buf.InsertAt(ch.Off, ch.Ins)
	}
	buf.SetCursor(l.changes[last].CursorAfter)
	l.pos = last + 1
	return true
}

// Clip discards every change belonging to the given history line, used
// when a history line is abandoned. Changes for other lines keep their
// order and grouping.
func (l *Log) Clip(hist int) {
	kept := l.changes[:0]
	pos := 0
	for i, ch := range l.changes {
		if ch.Hist == hist {
			continue
		}
		if i < l.pos {
			pos++
		}
		kept = append(kept, ch)
	}
	l.changes = kept
	l.pos = pos
}

// Changes returns a copy of the log from the beginning up to the
// current position, oldest first. Replaying it forward from the initial
// buffer state reproduces the current content exactly.
func (l *Log) Changes() []Change {
	out := make([]Change, l.pos)
	copy(out, l.changes[:l.pos])
	return out
}

func cloneUnits(units []textunit.Unit) []textunit.Unit {
	if len(units) == 0 {
		return nil
	}
	out := make([]textunit.Unit, len(units))
	copy(out, units)
	return out
}
