package textunit

import (
	"errors"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/encoding/charmap"
)

// Unit is a single editing unit: a byte value in the narrow model or a
// code point in the wide model. Buffers are ordered sequences of Unit
// with explicit lengths; a Unit of 0 is ordinary data, not a terminator.
type Unit rune

// Invalid is the distinguished unit returned for malformed input.
const Invalid Unit = -1

// Common units.
const (
	Newline Unit = '\n'
	Tab     Unit = '\t'
)

// ErrInvalidUnit reports a byte sequence that does not decode to a valid
// unit under the active model.
var ErrInvalidUnit = errors.New("textunit: invalid unit")

// Mode selects the process-wide character model.
type Mode int

const (
	// ModeWide decodes UTF-8 code points.
	ModeWide Mode = iota

	// ModeNarrow decodes single bytes through a charmap codec.
	ModeNarrow
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeNarrow {
		return "narrow"
	}
	return "wide"
}

// Class categorizes a unit for dispatch decisions.
type Class int

const (
	// ClassControl is a control unit (C0/C1 or DEL).
	ClassControl Class = iota

	// ClassDigit is a decimal digit.
	ClassDigit

	// ClassLetter is an alphabetic unit.
	ClassLetter

	// ClassOther is anything else (punctuation, space, symbols).
	ClassOther
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case ClassControl:
		return "control"
	case ClassDigit:
		return "digit"
	case ClassLetter:
		return "letter"
	default:
		return "other"
	}
}

// Codec decodes and encodes units under one character model.
// A Codec is immutable and safe to share.
type Codec struct {
	mode Mode
	cm   *charmap.Charmap
}

// NewCodec creates a codec for the given mode. The narrow model uses
// Latin-1 unless SetCharmap replaces it.
func NewCodec(mode Mode) *Codec {
	return &Codec{mode: mode, cm: charmap.ISO8859_1}
}

// WithCharmap returns a narrow-model codec using the given charmap.
func (c *Codec) WithCharmap(cm *charmap.Charmap) *Codec {
	return &Codec{mode: ModeNarrow, cm: cm}
}

// Mode returns the codec's character model.
func (c *Codec) Mode() Mode { return c.mode }

// Decode decodes one unit from the front of b. It returns the unit, the
// number of bytes consumed, and ErrInvalidUnit for malformed input. A
// malformed prefix consumes one byte so the caller can discard and
// continue.
func (c *Codec) Decode(b []byte) (Unit, int, error) {
	if len(b) == 0 {
		return Invalid, 0, ErrInvalidUnit
	}

	if c.mode == ModeNarrow {
		r := c.cm.DecodeByte(b[0])
		if r == utf8.RuneError {
			return Invalid, 1, ErrInvalidUnit
		}
		return Unit(r), 1, nil
	}

	r, size := utf8.DecodeRune(b)
	if r == utf8.RuneError && size <= 1 {
		return Invalid, 1, ErrInvalidUnit
	}
	return Unit(r), size, nil
}

// NeedMore reports whether b is a truncated prefix of a valid unit, so
// a streaming caller should wait for more bytes instead of treating it
// as malformed. Always false in narrow mode.
func (c *Codec) NeedMore(b []byte) bool {
	if c.mode == ModeNarrow || len(b) == 0 {
		return false
	}
	return !utf8.FullRune(b)
}

// Encode converts a unit back to its raw byte form. The round trip
// Encode(Decode(x)) == x holds for any valid single unit. Encoding
// Invalid or a unit unrepresentable in the narrow charmap returns nil.
func (c *Codec) Encode(u Unit) []byte {
	if u == Invalid {
		return nil
	}

	if c.mode == ModeNarrow {
		b, ok := c.cm.EncodeRune(rune(u))
		if !ok {
			return nil
		}
		return []byte{b}
	}

	if !utf8.ValidRune(rune(u)) {
		return nil
	}
	buf := make([]byte, utf8.UTFMax)
	n := utf8.EncodeRune(buf, rune(u))
	return buf[:n]
}

// Width returns the number of display columns the unit occupies.
// Control units and Invalid report zero columns.
func (c *Codec) Width(u Unit) int {
	if u == Invalid || c.Classify(u) == ClassControl {
		return 0
	}
	return runewidth.RuneWidth(rune(u))
}

// Classify reports the dispatch class of a unit.
func (c *Codec) Classify(u Unit) Class {
	r := rune(u)
	switch {
	case u == Invalid:
		return ClassOther
	case r < 0x20 || r == 0x7f || (r >= 0x80 && r <= 0x9f):
		return ClassControl
	case unicode.IsDigit(r):
		return ClassDigit
	case unicode.IsLetter(r):
		return ClassLetter
	default:
		return ClassOther
	}
}

// DecodeString decodes an entire string into units, substituting Invalid
// for malformed input rather than failing.
func (c *Codec) DecodeString(s string) []Unit {
	units := make([]Unit, 0, len(s))
	b := []byte(s)
	for len(b) > 0 {
		u, n, err := c.Decode(b)
		if err != nil {
			b = b[n:]
			units = append(units, Invalid)
			continue
		}
		units = append(units, u)
		b = b[n:]
	}
	return units
}

// EncodeString converts a unit slice back to a string, skipping units
// the model cannot represent.
func (c *Codec) EncodeString(units []Unit) string {
	b := make([]byte, 0, len(units))
	for _, u := range units {
		b = append(b, c.Encode(u)...)
	}
	return string(b)
}
