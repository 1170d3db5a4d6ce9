package widget

import (
	"errors"
	"testing"
)

func noop(args []string) error { return nil }

func TestRegisterAndLookup(t *testing.T) {
	tbl := NewTable()
	w := NewBuiltin(noop, FlagKill)

	th, err := tbl.Register("kill-word", w, false)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if th.Name() != "kill-word" {
		t.Errorf("Name() = %q, want %q", th.Name(), "kill-word")
	}

	got := tbl.Lookup("kill-word")
	if got == nil || got.Widget() != w {
		t.Error("Lookup() did not return the registered widget")
	}
	if !got.Widget().Flags.Has(FlagKill | FlagInternal) {
		t.Error("builtin widget missing expected flags")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	tbl := NewTable()
	if _, err := tbl.Register("a", NewBuiltin(noop, 0), false); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, err := tbl.Register("a", NewBuiltin(noop, 0), false)
	if !errors.Is(err, ErrAlreadyDefined) {
		t.Errorf("duplicate Register() error = %v, want ErrAlreadyDefined", err)
	}

	// Explicit replace releases the old widget.
	old := tbl.Lookup("a").Widget()
	if _, err := tbl.Register("a", NewBuiltin(noop, 0), true); err != nil {
		t.Fatalf("replace Register() error = %v", err)
	}
	if !old.Released() {
		t.Error("replaced widget was not released")
	}
}

func TestBindImmortal(t *testing.T) {
	tbl := NewTable()
	w := NewBuiltin(noop, 0)
	if _, err := tbl.RegisterImmortal("self-insert", w); err != nil {
		t.Fatalf("RegisterImmortal() error = %v", err)
	}

	err := tbl.Bind("self-insert", NewBuiltin(noop, 0))
	if !errors.Is(err, ErrImmortal) {
		t.Errorf("Bind() error = %v, want ErrImmortal", err)
	}
	if tbl.Lookup("self-insert").Widget() != w {
		t.Error("immortal binding changed after rejected Bind")
	}
}

func TestBindLeavesAliasesAlone(t *testing.T) {
	tbl := NewTable()
	orig := NewBuiltin(noop, 0)
	if _, err := tbl.Register("A", orig, false); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := tbl.Alias("B", "A"); err != nil {
		t.Fatalf("Alias() error = %v", err)
	}

	repl := NewBuiltin(noop, 0)
	if err := tbl.Bind("A", repl); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}

	if tbl.Lookup("A").Widget() != repl {
		t.Error("A not repointed")
	}
	if tbl.Lookup("B").Widget() != orig {
		t.Error("B should still resolve to the original widget")
	}
	if orig.Released() {
		t.Error("original widget freed while B still references it")
	}
}

func TestReferenceCounting(t *testing.T) {
	tbl := NewTable()
	w := NewBuiltin(noop, 0)

	names := []string{"a", "b", "c"}
	if _, err := tbl.Register(names[0], w, false); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	for _, n := range names[1:] {
		if _, err := tbl.Alias(n, names[0]); err != nil {
			t.Fatalf("Alias(%q) error = %v", n, err)
		}
	}
	if w.Refs() != len(names) {
		t.Fatalf("Refs() = %d, want %d", w.Refs(), len(names))
	}

	freedCount := 0
	for _, n := range names {
		freed, err := tbl.Release(n)
		if err != nil {
			t.Fatalf("Release(%q) error = %v", n, err)
		}
		if freed {
			freedCount++
		}
	}
	if freedCount != 1 {
		t.Errorf("widget freed %d times, want exactly once", freedCount)
	}
	if !w.Released() {
		t.Error("widget not released after all aliases gone")
	}
}

func TestReleasePartial(t *testing.T) {
	tbl := NewTable()
	w := NewBuiltin(noop, 0)
	if _, err := tbl.Register("x", w, false); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := tbl.Alias("y", "x"); err != nil {
		t.Fatalf("Alias() error = %v", err)
	}

	freed, err := tbl.Release("x")
	if err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if freed || w.Released() {
		t.Error("widget freed while an alias still references it")
	}
	if tbl.Lookup("y") == nil {
		t.Error("remaining alias lost after partial release")
	}
}

func TestAliasGroup(t *testing.T) {
	tbl := NewTable()
	if _, err := tbl.Register("fwd", NewBuiltin(noop, 0), false); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := tbl.Alias("forward", "fwd"); err != nil {
		t.Fatalf("Alias() error = %v", err)
	}
	if _, err := tbl.Alias("f", "forward"); err != nil {
		t.Fatalf("Alias() error = %v", err)
	}

	want := []string{"f", "forward", "fwd"}
	for _, member := range want {
		got := tbl.AliasGroup(member)
		if len(got) != len(want) {
			t.Fatalf("AliasGroup(%q) = %v, want %v", member, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("AliasGroup(%q)[%d] = %q, want %q", member, i, got[i], want[i])
			}
		}
	}

	// Rebinding one member shrinks the group seen from the others.
	if err := tbl.Bind("f", NewBuiltin(noop, 0)); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if got := tbl.AliasGroup("fwd"); len(got) != 2 {
		t.Errorf("AliasGroup after rebind = %v, want 2 members", got)
	}
}

func TestSetDisabled(t *testing.T) {
	tbl := NewTable()
	if _, err := tbl.Register("w", NewBuiltin(noop, 0), false); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := tbl.SetDisabled("w", true); err != nil {
		t.Fatalf("SetDisabled() error = %v", err)
	}
	if !tbl.Lookup("w").Disabled() {
		t.Error("thingy not disabled")
	}
	if err := tbl.SetDisabled("missing", true); !errors.Is(err, ErrUnknownThingy) {
		t.Errorf("SetDisabled(missing) error = %v, want ErrUnknownThingy", err)
	}
}

func TestUnknownThingy(t *testing.T) {
	tbl := NewTable()
	if err := tbl.Bind("ghost", NewBuiltin(noop, 0)); !errors.Is(err, ErrUnknownThingy) {
		t.Errorf("Bind(ghost) error = %v, want ErrUnknownThingy", err)
	}
	if _, err := tbl.Alias("a", "ghost"); !errors.Is(err, ErrUnknownThingy) {
		t.Errorf("Alias from ghost error = %v, want ErrUnknownThingy", err)
	}
	if _, err := tbl.Release("ghost"); !errors.Is(err, ErrUnknownThingy) {
		t.Errorf("Release(ghost) error = %v, want ErrUnknownThingy", err)
	}
}
