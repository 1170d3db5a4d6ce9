package edit

import (
	"errors"
	"testing"

	"github.com/dshills/keyline/internal/edit/hook"
	"github.com/dshills/keyline/internal/edit/keymap"
	"github.com/dshills/keyline/internal/edit/widget"
)

func newTestSession(t *testing.T) (*Session, *int) {
	t.Helper()
	bells := 0
	s := NewSession(Config{Bell: func(string) { bells++ }})
	t.Cleanup(s.Close)
	return s, &bells
}

func typeKeys(t *testing.T, s *Session, seq string) {
	t.Helper()
	for _, k := range keymap.MustParseKeys(seq, s.Codec()) {
		s.HandleKey(k)
	}
}

func line(s *Session) string {
	return s.Buffer().String(s.Codec())
}

func TestSelfInsertAndAcceptLine(t *testing.T) {
	s, _ := newTestSession(t)

	typeKeys(t, s, "hi there")
	typeKeys(t, s, "^M")
	if !s.Accepted() {
		t.Fatal("Accepted() = false after accept-line")
	}
	if got := line(s); got != "hi there" {
		t.Errorf("line = %q, want %q", got, "hi there")
	}
	s.ResetAccepted()
	if s.Accepted() {
		t.Error("Accepted() = true after ResetAccepted")
	}
}

func TestBackwardKillWord(t *testing.T) {
	s, _ := newTestSession(t)

	typeKeys(t, s, "hello world")
	typeKeys(t, s, "^W")

	if got := line(s); got != "hello " {
		t.Errorf("line = %q, want %q", got, "hello ")
	}
	if got := s.Buffer().Cursor(); got != 6 {
		t.Errorf("cursor = %d, want 6", got)
	}
	cut, ok := s.KillRing().Get()
	if !ok {
		t.Fatal("kill ring empty after kill")
	}
	if got := s.Codec().EncodeString(cut.Units); got != "world" {
		t.Errorf("killed text = %q, want %q", got, "world")
	}
	if cut.Line {
		t.Error("killed text tagged whole-line, want character span")
	}
}

func TestDigitArgumentAccumulation(t *testing.T) {
	s, _ := newTestSession(t)

	typeKeys(t, s, "\\e3\\e7x")
	if got := s.Buffer().Len(); got != 37 {
		t.Errorf("buffer length = %d, want 37", got)
	}

	// The argument does not persist past the dispatch it applied to.
	typeKeys(t, s, "y")
	if got := s.Buffer().Len(); got != 38 {
		t.Errorf("buffer length = %d, want 38", got)
	}
}

func TestRepeatedInsertUndoneAsOneGroup(t *testing.T) {
	s, _ := newTestSession(t)

	typeKeys(t, s, "\\e3z")
	if got := line(s); got != "zzz" {
		t.Fatalf("line = %q, want %q", got, "zzz")
	}
	typeKeys(t, s, "^_")
	if got := line(s); got != "" {
		t.Errorf("line after undo = %q, want empty", got)
	}
}

func TestUndoRedoThroughDispatch(t *testing.T) {
	s, _ := newTestSession(t)

	typeKeys(t, s, "abc")
	typeKeys(t, s, "^_")
	if got := line(s); got != "ab" {
		t.Errorf("line after undo = %q, want %q", got, "ab")
	}
	typeKeys(t, s, "^Xr")
	if got := line(s); got != "abc" {
		t.Errorf("line after redo = %q, want %q", got, "abc")
	}
	if got := s.Buffer().Cursor(); got != 3 {
		t.Errorf("cursor after redo = %d, want 3", got)
	}
}

func TestInvalidInputRingsBellWithoutEdit(t *testing.T) {
	s, bells := newTestSession(t)

	typeKeys(t, s, "ok")
	s.HandleRaw([]byte{0xff})
	if *bells != 1 {
		t.Errorf("bells = %d, want 1", *bells)
	}
	if got := line(s); got != "ok" {
		t.Errorf("line = %q, want %q", got, "ok")
	}
}

func TestRawInputSplitAcrossCalls(t *testing.T) {
	s, bells := newTestSession(t)

	s.HandleRaw([]byte{0xe4})
	s.HandleRaw([]byte{0xb8, 0x96})
	if *bells != 0 {
		t.Errorf("bells = %d, want 0", *bells)
	}
	if got := line(s); got != "世" {
		t.Errorf("line = %q, want %q", got, "世")
	}
}

func TestKillRunAppendsToOneSlot(t *testing.T) {
	s, _ := newTestSession(t)

	typeKeys(t, s, "one two")
	typeKeys(t, s, "^A")
	typeKeys(t, s, "\\ed\\ed")

	if got := line(s); got != "" {
		t.Errorf("line = %q, want empty", got)
	}
	if got := s.KillRing().Len(); got != 1 {
		t.Fatalf("ring length = %d, want 1", got)
	}
	cut, _ := s.KillRing().Get()
	if got := s.Codec().EncodeString(cut.Units); got != "one two" {
		t.Errorf("slot 0 = %q, want %q", got, "one two")
	}
}

func TestKillRunSurvivesDigitArgument(t *testing.T) {
	s, _ := newTestSession(t)

	typeKeys(t, s, "one two three")
	typeKeys(t, s, "^A")
	typeKeys(t, s, "\\ed\\e2\\ed")

	if got := s.KillRing().Len(); got != 1 {
		t.Fatalf("ring length = %d, want 1", got)
	}
	cut, _ := s.KillRing().Get()
	if got := s.Codec().EncodeString(cut.Units); got != "one two three" {
		t.Errorf("slot 0 = %q, want %q", got, "one two three")
	}
}

func TestYankAndYankPop(t *testing.T) {
	s, _ := newTestSession(t)

	typeKeys(t, s, "alpha beta")
	typeKeys(t, s, "^A")
	typeKeys(t, s, "\\ed") // kills "alpha"
	typeKeys(t, s, "^E")
	typeKeys(t, s, "^W") // kills "beta", separate slot
	if got := line(s); got != " " {
		t.Fatalf("line = %q, want %q", got, " ")
	}

	typeKeys(t, s, "^Y")
	if got := line(s); got != " beta" {
		t.Errorf("line after yank = %q, want %q", got, " beta")
	}
	typeKeys(t, s, "\\ey")
	if got := line(s); got != " alpha" {
		t.Errorf("line after yank-pop = %q, want %q", got, " alpha")
	}
}

func TestYankPopOutsideYankRun(t *testing.T) {
	s, bells := newTestSession(t)

	typeKeys(t, s, "word")
	typeKeys(t, s, "^W^Y")
	typeKeys(t, s, "x") // breaks the yank run
	typeKeys(t, s, "\\ey")
	if *bells == 0 {
		t.Error("yank-pop after non-yank widget, want bell")
	}
}

func TestKillWholeLineYanksAtLineStart(t *testing.T) {
	s, _ := newTestSession(t)

	typeKeys(t, s, "hello")
	typeKeys(t, s, "^U")
	if got := line(s); got != "" {
		t.Fatalf("line after kill-whole-line = %q, want empty", got)
	}
	cut, _ := s.KillRing().Get()
	if !cut.Line {
		t.Error("kill-whole-line cut not tagged whole-line")
	}

	typeKeys(t, s, "xy^A") // content before cursor position 0
	typeKeys(t, s, "^Y")
	if got := line(s); got != "helloxy" {
		t.Errorf("line after yank = %q, want %q", got, "helloxy")
	}
}

func TestUnboundKeyRingsBell(t *testing.T) {
	s, bells := newTestSession(t)

	if err := s.SelectMode(keymap.CommandMode); err != nil {
		t.Fatalf("SelectMode() error = %v", err)
	}
	typeKeys(t, s, "q")
	if *bells != 1 {
		t.Errorf("bells = %d, want 1", *bells)
	}
	if got := s.Buffer().Len(); got != 0 {
		t.Errorf("buffer length = %d, want 0", got)
	}
}

func TestEscapeFlushEntersCommandMode(t *testing.T) {
	s, _ := newTestSession(t)

	typeKeys(t, s, "\\e")
	if !s.Pending() {
		t.Fatal("Pending() = false after escape prefix")
	}
	if !s.AwaitingMore() {
		t.Fatal("AwaitingMore() = false, want shorter match pending")
	}
	s.FlushPending()
	if got := s.Keymaps().Active(); got != keymap.CommandMode {
		t.Errorf("active mode = %q, want %q", got, keymap.CommandMode)
	}
}

func TestEscapeShortMatchReplaysFollowingKey(t *testing.T) {
	s, _ := newTestSession(t)

	typeKeys(t, s, "abc^A")
	// \e does not extend with x, so vi-cmd-mode fires and x replays
	// into the command table as delete-char.
	typeKeys(t, s, "\\ex")
	if got := s.Keymaps().Active(); got != keymap.CommandMode {
		t.Errorf("active mode = %q, want %q", got, keymap.CommandMode)
	}
	if got := line(s); got != "bc" {
		t.Errorf("line = %q, want %q", got, "bc")
	}
}

func TestInterruptResetsSequenceAndModifier(t *testing.T) {
	s, _ := newTestSession(t)

	typeKeys(t, s, "abc")
	typeKeys(t, s, "\\e3") // pending numeric argument
	typeKeys(t, s, "\\e")  // pending sequence prefix
	s.NotifyInterrupt()

	typeKeys(t, s, "x")
	if got := line(s); got != "abcx" {
		t.Errorf("line = %q, want %q", got, "abcx")
	}
	if s.Pending() {
		t.Error("Pending() = true after interrupt")
	}
	if !s.UndoLog().CanUndo() {
		t.Error("CanUndo() = false, interrupt should not touch the change log")
	}
}

func TestSpecialKeyDispatch(t *testing.T) {
	s, _ := newTestSession(t)

	typeKeys(t, s, "ab")
	s.HandleKey(keymap.Key{Special: "left"})
	typeKeys(t, s, "x")
	if got := line(s); got != "axb" {
		t.Errorf("line = %q, want %q", got, "axb")
	}
	s.HandleKey(keymap.Key{Special: "end"})
	typeKeys(t, s, "!")
	if got := line(s); got != "axb!" {
		t.Errorf("line = %q, want %q", got, "axb!")
	}
}

func TestDefineWidgetRunsUserFunction(t *testing.T) {
	s, _ := newTestSession(t)

	s.UserFuncs().SetGoFunc("insert_text", func(args []string) (string, error) {
		if len(args) == 0 {
			return "", errors.New("insert_text: missing argument")
		}
		s.Insert(s.Codec().DecodeString(args[0]))
		return "", nil
	})
	if err := s.UserFuncs().Load(`function greet() insert_text("hi!") end`); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := s.DefineWidget("greet", "greet"); err != nil {
		t.Fatalf("DefineWidget() error = %v", err)
	}
	km := s.Keymaps().Get(keymap.InsertMode)
	if err := km.Bind(keymap.MustParseKeys("^Xg", s.Codec()), "greet"); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}

	typeKeys(t, s, "^Xg")
	if got := line(s); got != "hi!" {
		t.Errorf("line = %q, want %q", got, "hi!")
	}
}

func TestDefineWidgetRejectsImmortalName(t *testing.T) {
	s, _ := newTestSession(t)

	err := s.DefineWidget("self-insert", "anything")
	if !errors.Is(err, widget.ErrImmortal) {
		t.Errorf("DefineWidget(self-insert) error = %v, want ErrImmortal", err)
	}
}

func TestUndefinedUserFunctionBells(t *testing.T) {
	s, bells := newTestSession(t)

	if err := s.DefineWidget("ghost", "no-such-fn"); err != nil {
		t.Fatalf("DefineWidget() error = %v", err)
	}
	km := s.Keymaps().Get(keymap.InsertMode)
	if err := km.Bind(keymap.MustParseKeys("^Xh", s.Codec()), "ghost"); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	typeKeys(t, s, "^Xh")
	if *bells != 1 {
		t.Errorf("bells = %d, want 1", *bells)
	}
}

func TestCompleteFallbackHooks(t *testing.T) {
	s, _ := newTestSession(t)

	var gotWord string
	s.Hooks().Set(hook.Complete, func(p any) hook.Result {
		data := p.(*hook.CompleteData)
		gotWord = data.Word
		return hook.Result{Handled: true}
	})

	typeKeys(t, s, "ab")
	typeKeys(t, s, "^I")
	if gotWord != "ab" {
		t.Errorf("completion word = %q, want %q", gotWord, "ab")
	}
	if !s.Hooks().ListValid() {
		t.Error("ListValid() = false after handled completion")
	}

	// Any non-menu widget invalidates the match list.
	typeKeys(t, s, "c")
	if s.Hooks().ListValid() {
		t.Error("ListValid() = true after ordinary edit")
	}
}

func TestCompleteViaUserFunction(t *testing.T) {
	s, _ := newTestSession(t)

	err := s.UserFuncs().Load(`function completer(widget, word) return word .. "rld" end`)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	typeKeys(t, s, "wo")
	typeKeys(t, s, "^I")
	if got := line(s); got != "world" {
		t.Errorf("line = %q, want %q", got, "world")
	}
	if got := s.Buffer().Cursor(); got != 5 {
		t.Errorf("cursor = %d, want 5", got)
	}
}

func TestViSetBufferSelectsRingSlot(t *testing.T) {
	s, _ := newTestSession(t)

	// Build three distinct ring slots, newest first: " bb", "cc", "aa".
	typeKeys(t, s, "aa bb cc")
	typeKeys(t, s, "^A\\ed")
	typeKeys(t, s, "^E^W")
	typeKeys(t, s, "^A\\ed")
	if got := s.KillRing().Len(); got != 3 {
		t.Fatalf("ring length = %d, want 3", got)
	}

	if err := s.SelectMode(keymap.CommandMode); err != nil {
		t.Fatalf("SelectMode() error = %v", err)
	}
	typeKeys(t, s, `2"p`)
	if got := line(s); got != "aa " {
		t.Errorf("line = %q, want %q", got, "aa ")
	}
}

func TestViCountAppliesInCommandMode(t *testing.T) {
	s, _ := newTestSession(t)

	typeKeys(t, s, "abcdef")
	if err := s.SelectMode(keymap.CommandMode); err != nil {
		t.Fatalf("SelectMode() error = %v", err)
	}
	typeKeys(t, s, "3X")
	if got := line(s); got != "abc" {
		t.Errorf("line = %q, want %q", got, "abc")
	}
}

func TestViDigitOrBeginningOfLine(t *testing.T) {
	s, _ := newTestSession(t)

	typeKeys(t, s, "aaaaaaaaaaaa") // 12 units
	if err := s.SelectMode(keymap.CommandMode); err != nil {
		t.Fatalf("SelectMode() error = %v", err)
	}

	// Bare 0 moves to line start.
	typeKeys(t, s, "0")
	if got := s.Buffer().Cursor(); got != 0 {
		t.Errorf("cursor = %d, want 0", got)
	}

	// After a count digit, 0 extends the count: 10x deletes ten.
	typeKeys(t, s, "10x")
	if got := s.Buffer().Len(); got != 2 {
		t.Errorf("buffer length = %d, want 2", got)
	}
}

func TestModeRoundTrip(t *testing.T) {
	s, _ := newTestSession(t)

	typeKeys(t, s, "ab")
	typeKeys(t, s, "\\e") // prefix
	s.FlushPending()      // vi-cmd-mode
	typeKeys(t, s, "i")   // vi-insert
	typeKeys(t, s, "c")
	if got := line(s); got != "abc" {
		t.Errorf("line = %q, want %q", got, "abc")
	}
	if got := s.Keymaps().Active(); got != keymap.InsertMode {
		t.Errorf("active mode = %q, want %q", got, keymap.InsertMode)
	}
}

func TestSetHistClipsUndoLog(t *testing.T) {
	s, _ := newTestSession(t)

	typeKeys(t, s, "old line")
	if !s.UndoLog().CanUndo() {
		t.Fatal("CanUndo() = false after edits")
	}
	s.SetHist(7, s.Codec().DecodeString("next line"))
	if s.UndoLog().CanUndo() {
		t.Error("CanUndo() = true after switching history lines")
	}
	if got := line(s); got != "next line" {
		t.Errorf("line = %q, want %q", got, "next line")
	}
	if got := s.Hist(); got != 7 {
		t.Errorf("Hist() = %d, want 7", got)
	}
}

func TestNegativeArgumentBackwardDelete(t *testing.T) {
	s, bells := newTestSession(t)

	typeKeys(t, s, "abc")
	typeKeys(t, s, "\\e-\\e2") // argument -2
	typeKeys(t, s, "^?")       // backward-delete-char with n <= 0 deletes nothing
	_ = bells
	if got := line(s); got != "abc" {
		t.Errorf("line = %q, want %q", got, "abc")
	}
}

func TestSessionIDsUnique(t *testing.T) {
	a, _ := newTestSession(t)
	b, _ := newTestSession(t)
	if a.ID() == "" || a.ID() == b.ID() {
		t.Errorf("session IDs not unique: %q vs %q", a.ID(), b.ID())
	}
}

func TestKillAppendsToSelectedSlot(t *testing.T) {
	s, _ := newTestSession(t)

	// Two distinct slots, newest first: "cc", "bb".
	typeKeys(t, s, "aa bb")
	typeKeys(t, s, "^W")
	typeKeys(t, s, "cc")
	typeKeys(t, s, "^W")
	if got := s.KillRing().Len(); got != 2 {
		t.Fatalf("ring length = %d, want 2", got)
	}

	typeKeys(t, s, "x")
	s.Modifier().SelectSlot(1, true)
	typeKeys(t, s, "^W") // kills "x", appending to slot 1

	cut, _ := s.KillRing().GetSlot(1)
	if got := s.Codec().EncodeString(cut.Units); got != "bbx" {
		t.Errorf("slot 1 = %q, want %q", got, "bbx")
	}
	cut, _ = s.KillRing().GetSlot(0)
	if got := s.Codec().EncodeString(cut.Units); got != "cc" {
		t.Errorf("slot 0 = %q, want %q (kill went to the wrong slot)", got, "cc")
	}
}

func TestViSetBufferNegativeAppendsKill(t *testing.T) {
	s, _ := newTestSession(t)

	typeKeys(t, s, "aa bb")
	typeKeys(t, s, "^W")
	typeKeys(t, s, "cc")
	typeKeys(t, s, "^W") // slots: "cc", "bb"; buffer "aa "

	if err := s.SelectMode(keymap.CommandMode); err != nil {
		t.Fatalf("SelectMode() error = %v", err)
	}
	typeKeys(t, s, `-1"db`) // argument -1 selects slot 1 with append

	cut, _ := s.KillRing().GetSlot(1)
	if got := s.Codec().EncodeString(cut.Units); got != "bbaa " {
		t.Errorf("slot 1 = %q, want %q", got, "bbaa ")
	}
	cut, _ = s.KillRing().GetSlot(0)
	if got := s.Codec().EncodeString(cut.Units); got != "cc" {
		t.Errorf("slot 0 = %q, want %q", got, "cc")
	}
	if got := line(s); got != "" {
		t.Errorf("line = %q, want empty", got)
	}
}

func TestExplicitZeroCountInsertsNothing(t *testing.T) {
	s, _ := newTestSession(t)

	typeKeys(t, s, "\\e0x")
	if got := s.Buffer().Len(); got != 0 {
		t.Errorf("buffer length = %d, want 0", got)
	}

	// The default count of 1 is back on the next dispatch.
	typeKeys(t, s, "y")
	if got := line(s); got != "y" {
		t.Errorf("line = %q, want %q", got, "y")
	}
}

func TestExplicitZeroCountDeletesNothing(t *testing.T) {
	s, _ := newTestSession(t)

	typeKeys(t, s, "abc")
	typeKeys(t, s, "\\e0^?")
	if got := line(s); got != "abc" {
		t.Errorf("line = %q, want %q", got, "abc")
	}

	typeKeys(t, s, "^A\\e0\\ed")
	if got := line(s); got != "abc" {
		t.Errorf("line after zero-count kill-word = %q, want %q", got, "abc")
	}
	if got := s.KillRing().Len(); got != 0 {
		t.Errorf("ring length = %d, want 0", got)
	}
}

func TestFailedYankDoesNotStartYankRun(t *testing.T) {
	s, bells := newTestSession(t)

	typeKeys(t, s, "^Y") // empty ring
	if *bells != 1 {
		t.Fatalf("bells = %d, want 1 after failed yank", *bells)
	}
	typeKeys(t, s, "\\ey")
	if *bells != 2 {
		t.Errorf("bells = %d, want 2: yank-pop accepted after a failed yank", *bells)
	}
	if got := s.Buffer().Len(); got != 0 {
		t.Errorf("buffer length = %d, want 0", got)
	}
}
