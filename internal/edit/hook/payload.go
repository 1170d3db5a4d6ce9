package hook

// CompKind is the type of completion being performed.
type CompKind int

const (
	// KindComplete is plain completion.
	KindComplete CompKind = iota

	// KindListComplete lists matches without inserting.
	KindListComplete

	// KindSpell is spelling correction.
	KindSpell

	// KindExpand is expansion only.
	KindExpand

	// KindExpandComplete expands, falling back to completion.
	KindExpandComplete

	// KindListExpand lists possible expansions.
	KindListExpand
)

// IsExpand reports whether the kind performs expansion.
func (k CompKind) IsExpand() bool { return k >= KindExpand }

// BraceRun records one brace-expansion insertion point: the literal
// text to re-insert, its original positions unquoted and quoted, and
// its position for the active match. The completion engine updates
// CurPos as it substitutes text; the dispatcher only carries the slice.
type BraceRun struct {
	// Str is the literal text to insert.
	Str string

	// Pos is the original position.
	Pos int

	// QPos is the original position with quoting applied.
	QPos int

	// CurPos is the position for the current match.
	CurPos int
}

// CompleteData is the payload for the Complete and AfterComplete hooks.
type CompleteData struct {
	// Word is the word being completed.
	Word string

	// Kind is the completion type.
	Kind CompKind

	// InCmd reports whether the cursor is in command position.
	InCmd bool

	// Braces carries the brace runs for the engine to reposition,
	// ordered as they appear in the line.
	Braces []BraceRun
}
