package edit

import (
	"errors"

	"github.com/dshills/keyline/internal/edit/hook"
	"github.com/dshills/keyline/internal/edit/keymap"
	"github.com/dshills/keyline/internal/edit/textunit"
	"github.com/dshills/keyline/internal/edit/widget"
)

// SelectMode switches the active keymap. Pending modifier state is
// preserved across the switch; only the resolution table changes.
func (s *Session) SelectMode(mode string) error {
	if err := s.keymaps.Select(mode); err != nil {
		return err
	}
	s.resolver = s.keymaps.ActiveMap().NewResolver()
	return nil
}

// builtinDef describes one catalogue entry.
type builtinDef struct {
	name  string
	flags widget.Flags
	fn    widget.BuiltinFunc
}

// registerBuiltins installs the builtin catalogue as immortal thingies.
func (s *Session) registerBuiltins() {
	defs := []builtinDef{
		{"self-insert", 0, s.selfInsert},
		{"beep", widget.FlagNotCommand, func([]string) error { s.Bell("beep"); return nil }},

		{"digit-argument", widget.FlagNotCommand, s.digitArgument},
		{"neg-argument", widget.FlagNotCommand, s.negArgument},
		{"universal-argument", widget.FlagNotCommand, s.universalArgument},
		{"vi-set-buffer", widget.FlagNotCommand, s.viSetBuffer},
		{"vi-digit-or-beginning-of-line", widget.FlagNotCommand, s.viDigitOrBOL},

		{"forward-char", widget.FlagLastCol, s.moveBy(+1)},
		{"backward-char", widget.FlagLastCol, s.moveBy(-1)},
		{"beginning-of-line", widget.FlagLastCol, s.moveTo(0)},
		{"end-of-line", widget.FlagLastCol, s.moveEnd},
		{"up-line", widget.FlagLineMove, s.lineMove(-1)},
		{"down-line", widget.FlagLineMove, s.lineMove(+1)},

		{"backward-delete-char", 0, s.backwardDeleteChar},
		{"delete-char", 0, s.deleteChar},

		{"backward-kill-word", widget.FlagKill, s.backwardKillWord},
		{"kill-word", widget.FlagKill, s.killWord},
		{"kill-line", widget.FlagKill | widget.FlagLastCol, s.killLine},
		{"kill-whole-line", widget.FlagKill, s.killWholeLine},

		{"yank", widget.FlagYank, func([]string) error { return s.Yank() }},
		{"yank-pop", widget.FlagYank | widget.FlagMenuCmp, func([]string) error { return s.YankPop() }},

		{"undo", 0, func([]string) error { s.undoLog.Undo(s.buf); return nil }},
		{"redo", 0, func([]string) error { s.undoLog.Redo(s.buf); return nil }},

		{"accept-line", 0, func([]string) error { s.accepted = true; return nil }},
		{"vi-cmd-mode", 0, func([]string) error { return s.SelectMode(keymap.CommandMode) }},
		{"vi-insert", 0, func([]string) error { return s.SelectMode(keymap.InsertMode) }},

		{"list-choices", widget.FlagMenuCmp, func([]string) error {
			s.hooks.Invoke(hook.ListMatches, nil)
			return nil
		}},
		{"reverse-menu-complete", widget.FlagMenuCmp, func([]string) error {
			s.hooks.Invoke(hook.ReverseMenu, nil)
			return nil
		}},
		{"accept-completion", widget.FlagKeepSuffix, func([]string) error {
			s.hooks.Invoke(hook.AcceptComp, nil)
			return nil
		}},
	}

	for _, d := range defs {
		if _, err := s.widgets.RegisterImmortal(d.name, widget.NewBuiltin(d.fn, d.flags)); err != nil {
			panic("edit: builtin registration: " + err.Error())
		}
	}

	// complete-word forwards to the external completer when one is
	// loaded and falls back to the plain complete hook otherwise.
	compl := widget.NewCompletion(s.completeFallback, "complete-word", "completer",
		widget.FlagMenuCmp|widget.FlagCompWidget)
	if _, err := s.widgets.RegisterImmortal("complete-word", compl); err != nil {
		panic("edit: builtin registration: " + err.Error())
	}
}

// installDefaultBindings sets up the conventional insert and vicmd
// tables.
func (s *Session) installDefaultBindings() {
	insert := s.keymaps.Get(keymap.InsertMode)
	insert.SetDefault("self-insert")
	for seq, name := range map[string]string{
		"^A":      "beginning-of-line",
		"^B":      "backward-char",
		"^D":      "delete-char",
		"^E":      "end-of-line",
		"^F":      "forward-char",
		"^H":      "backward-delete-char",
		"^?":      "backward-delete-char",
		"^I":      "complete-word",
		"^J":      "accept-line",
		"^M":      "accept-line",
		"^K":      "kill-line",
		"^U":      "kill-whole-line",
		"^W":      "backward-kill-word",
		"^Y":      "yank",
		"^_":      "undo",
		"^Xr":     "redo",
		"^Xu":     "undo",
		"\\e":     "vi-cmd-mode",
		"\\ey":    "yank-pop",
		"\\e-":    "neg-argument",
		"\\ed":    "kill-word",
		"^Xl":     "list-choices",
		"<up>":    "up-line",
		"<down>":  "down-line",
		"<left>":  "backward-char",
		"<right>": "forward-char",
		"<home>":  "beginning-of-line",
		"<end>":   "end-of-line",
	} {
		s.mustBind(insert, seq, name)
	}
	for d := '0'; d <= '9'; d++ {
		s.mustBind(insert, "\\e"+string(d), "digit-argument")
	}

	vicmd := s.keymaps.Get(keymap.CommandMode)
	for seq, name := range map[string]string{
		"h":  "backward-char",
		"l":  "forward-char",
		"0":  "vi-digit-or-beginning-of-line",
		"$":  "end-of-line",
		"j":  "down-line",
		"k":  "up-line",
		"x":  "delete-char",
		"X":  "backward-delete-char",
		"dd": "kill-whole-line",
		"dw": "kill-word",
		"db": "backward-kill-word",
		"D":  "kill-line",
		"p":  "yank",
		"u":  "undo",
		"^R": "redo",
		"i":  "vi-insert",
		"\"": "vi-set-buffer",
		"-":  "neg-argument",
		"^M": "accept-line",
	} {
		s.mustBind(vicmd, seq, name)
	}
	for d := '1'; d <= '9'; d++ {
		s.mustBind(vicmd, string(d), "digit-argument")
	}
}

func (s *Session) mustBind(m *keymap.Keymap, seq, name string) {
	if err := m.Bind(keymap.MustParseKeys(seq, s.codec), name); err != nil {
		panic("edit: default binding " + seq + ": " + err.Error())
	}
}

func (s *Session) selfInsert([]string) error {
	if s.lastUnit == textunit.Invalid {
		return textunit.ErrInvalidUnit
	}
	// An explicit zero count inserts nothing; the default count is 1.
	n := s.mult
	if n <= 0 {
		return nil
	}
	units := make([]textunit.Unit, n)
	for i := range units {
		units[i] = s.lastUnit
	}
	s.Insert(units)
	return nil
}

func (s *Session) digitArgument([]string) error {
	if s.codec.Classify(s.lastUnit) != textunit.ClassDigit {
		return errors.New("digit-argument on non-digit")
	}
	s.mod.FeedDigit(int(s.lastUnit - '0'))
	s.KeepModifier()
	return nil
}

func (s *Session) negArgument([]string) error {
	s.mod.Negate()
	s.KeepModifier()
	return nil
}

func (s *Session) universalArgument([]string) error {
	s.mod.Scale(4)
	s.KeepModifier()
	return nil
}

// viSetBuffer selects the kill-ring slot named by the pending numeric
// argument; a negative argument selects append mode on the same slot.
func (s *Session) viSetBuffer([]string) error {
	slot := s.mult
	app := false
	if slot < 0 {
		slot = -slot
		app = true
	}
	s.mod.SelectSlot(slot, app)
	s.KeepModifier()
	return nil
}

// viDigitOrBOL continues a count in progress with a zero digit, or
// moves to the beginning of the line when no count is pending.
func (s *Session) viDigitOrBOL([]string) error {
	if s.mod.Typing() {
		s.mod.FeedDigit(0)
		s.KeepModifier()
		return nil
	}
	s.buf.SetCursor(0)
	return nil
}

func (s *Session) moveBy(dir int) widget.BuiltinFunc {
	return func([]string) error {
		s.buf.SetCursor(s.buf.Cursor() + dir*s.mult)
		return nil
	}
}

func (s *Session) moveTo(pos int) widget.BuiltinFunc {
	return func([]string) error {
		s.buf.SetCursor(pos)
		return nil
	}
}

func (s *Session) moveEnd([]string) error {
	s.buf.SetCursor(s.buf.Len())
	return nil
}

// lineMove is a line-oriented movement. The core edits a single line;
// crossing its edge is delegated to the history collaborator, so within
// the buffer it clamps to the corresponding end.
func (s *Session) lineMove(dir int) widget.BuiltinFunc {
	return func([]string) error {
		if dir < 0 {
			s.buf.SetCursor(0)
		} else {
			s.buf.SetCursor(s.buf.Len())
		}
		return nil
	}
}

// A negative count reverses the delete direction; an explicit zero
// count deletes nothing.
func (s *Session) backwardDeleteChar([]string) error {
	n := s.mult
	if n == 0 {
		return nil
	}
	if n < 0 {
		s.deleteForward(-n)
	} else {
		s.deleteBackward(n)
	}
	return nil
}

func (s *Session) deleteChar([]string) error {
	n := s.mult
	if n == 0 {
		return nil
	}
	if n < 0 {
		s.deleteBackward(-n)
	} else {
		s.deleteForward(n)
	}
	return nil
}

func (s *Session) deleteBackward(n int) {
	off := s.buf.Cursor() - n
	if off < 0 {
		n += off
		off = 0
	}
	s.Delete(off, n)
}

func (s *Session) deleteForward(n int) {
	s.Delete(s.buf.Cursor(), n)
}

func (s *Session) backwardKillWord([]string) error {
	n := s.mult
	if n == 0 {
		return nil
	}
	if n < 0 {
		n = 1
	}
	end := s.buf.Cursor()
	start := end
	for i := 0; i < n; i++ {
		start = s.wordStartBefore(start)
		if start == 0 {
			break
		}
	}
	s.Kill(start, end-start, false)
	return nil
}

func (s *Session) killWord([]string) error {
	n := s.mult
	if n == 0 {
		return nil
	}
	if n < 0 {
		n = 1
	}
	start := s.buf.Cursor()
	end := start
	for i := 0; i < n; i++ {
		end = s.wordEndAfter(end)
		if end == s.buf.Len() {
			break
		}
	}
	s.Kill(start, end-start, false)
	return nil
}

func (s *Session) killLine([]string) error {
	s.Kill(s.buf.Cursor(), s.buf.Len()-s.buf.Cursor(), false)
	return nil
}

func (s *Session) killWholeLine([]string) error {
	s.buf.SetCursor(0)
	s.Kill(0, s.buf.Len(), true)
	return nil
}

// completeFallback is the native path of complete-word when no external
// completer function is loaded.
func (s *Session) completeFallback([]string) error {
	data := &hook.CompleteData{Word: s.wordAtCursor(), Kind: hook.KindComplete}
	s.hooks.Invoke(hook.BeforeComplete, data)
	res := s.hooks.Invoke(hook.Complete, data)
	if res.Handled {
		s.hooks.MarkListValid()
	}
	s.hooks.Invoke(hook.AfterComplete, data)
	return nil
}

// isWordUnit reports whether u belongs to a word for kill purposes.
func (s *Session) isWordUnit(u textunit.Unit) bool {
	c := s.codec.Classify(u)
	return c == textunit.ClassLetter || c == textunit.ClassDigit || u == '_'
}

// wordStartBefore finds the start of the word ending at or before pos.
func (s *Session) wordStartBefore(pos int) int {
	for pos > 0 && !s.isWordUnit(s.buf.At(pos-1)) {
		pos--
	}
	for pos > 0 && s.isWordUnit(s.buf.At(pos-1)) {
		pos--
	}
	return pos
}

// wordEndAfter finds the end of the word starting at or after pos.
func (s *Session) wordEndAfter(pos int) int {
	for pos < s.buf.Len() && !s.isWordUnit(s.buf.At(pos)) {
		pos++
	}
	for pos < s.buf.Len() && s.isWordUnit(s.buf.At(pos)) {
		pos++
	}
	return pos
}
