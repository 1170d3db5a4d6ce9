package linebuffer

import (
	"testing"

	"github.com/dshills/keyline/internal/edit/textunit"
)

var codec = textunit.NewCodec(textunit.ModeWide)

func fromString(s string) *Buffer {
	return NewFromUnits(codec.DecodeString(s))
}

func TestInsertAt(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		off     int
		insert  string
		want    string
	}{
		{"middle", "hello", 2, "XY", "heXYllo"},
		{"start", "hello", 0, "ab", "abhello"},
		{"end", "hello", 5, "!", "hello!"},
		{"past end clamps", "hi", 99, "!", "hi!"},
		{"negative clamps", "hi", -3, "!", "!hi"},
		{"empty insert", "hi", 1, "", "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := fromString(tt.initial)
			b.InsertAt(tt.off, codec.DecodeString(tt.insert))
			if got := b.String(codec); got != tt.want {
				t.Errorf("buffer = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeleteAt(t *testing.T) {
	b := fromString("hello world")
	removed := b.DeleteAt(5, 6)
	if got := codec.EncodeString(removed); got != " world" {
		t.Errorf("removed = %q, want %q", got, " world")
	}
	if got := b.String(codec); got != "hello" {
		t.Errorf("buffer = %q, want %q", got, "hello")
	}
	if b.Cursor() != 5 {
		t.Errorf("cursor = %d, want 5", b.Cursor())
	}
}

func TestDeleteAtClamps(t *testing.T) {
	b := fromString("abc")
	if removed := b.DeleteAt(5, 2); removed != nil {
		t.Errorf("delete past end = %v, want nil", removed)
	}
	removed := b.DeleteAt(1, 99)
	if got := codec.EncodeString(removed); got != "bc" {
		t.Errorf("removed = %q, want %q", got, "bc")
	}
}

func TestCursorTracksEdits(t *testing.T) {
	b := fromString("hello")
	b.SetCursor(3)

	// Insert before cursor shifts it right.
	b.InsertAt(0, codec.DecodeString("xx"))
	if b.Cursor() != 5 {
		t.Errorf("cursor after insert = %d, want 5", b.Cursor())
	}

	// Delete spanning cursor pins it to the deletion point.
	b.DeleteAt(3, 4)
	if b.Cursor() != 3 {
		t.Errorf("cursor after delete = %d, want 3", b.Cursor())
	}
}

func TestSetLine(t *testing.T) {
	b := fromString("old line")
	b.SetCursor(2)

	b.SetLine(codec.DecodeString("new"), false)
	if b.Cursor() != 2 {
		t.Errorf("cursor = %d, want 2", b.Cursor())
	}

	b.SetLine(codec.DecodeString("other"), true)
	if b.Cursor() != 5 {
		t.Errorf("cursor = %d, want end (5)", b.Cursor())
	}
}

func TestBinarySafe(t *testing.T) {
	units := []textunit.Unit{0, 'a', 0, 'b'}
	b := NewFromUnits(units)
	if b.Len() != 4 {
		t.Errorf("Len() = %d, want 4", b.Len())
	}
	got := b.Units()
	for i, u := range units {
		if got[i] != u {
			t.Errorf("unit %d = %v, want %v", i, got[i], u)
		}
	}
}
