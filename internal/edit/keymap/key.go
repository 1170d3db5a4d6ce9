package keymap

import (
	"fmt"
	"strings"

	"github.com/dshills/keyline/internal/edit/textunit"
)

// Key is one element of a binding sequence: either a literal unit, or
// an out-of-band special key (function keys, arrows) identified by its
// symbolic name as delivered by the terminal boundary.
type Key struct {
	// Unit is the literal unit for in-band keys.
	Unit textunit.Unit

	// Special is the symbolic name for out-of-band keys. When set,
	// Unit is ignored.
	Special string
}

// UnitKey creates a literal key.
func UnitKey(u textunit.Unit) Key { return Key{Unit: u} }

// SpecialKey creates an out-of-band key from its symbolic name.
func SpecialKey(name string) Key { return Key{Special: strings.ToLower(name)} }

// String renders the key in caret notation for display.
func (k Key) String() string {
	if k.Special != "" {
		return "<" + k.Special + ">"
	}
	switch {
	case k.Unit == 0x7f:
		return "^?"
	case k.Unit < 0x20:
		return "^" + string(rune(k.Unit)+'@')
	default:
		return string(rune(k.Unit))
	}
}

// Seq renders a key sequence for display.
func Seq(keys []Key) string {
	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k.String())
	}
	return sb.String()
}

// specialNames lists the accepted out-of-band key names. The terminal
// boundary delivers these verbatim.
var specialNames = map[string]bool{
	"up": true, "down": true, "left": true, "right": true,
	"home": true, "end": true, "insert": true, "delete": true,
	"pageup": true, "pagedown": true, "backtab": true,
}

func init() {
	for i := 1; i <= 24; i++ {
		specialNames[fmt.Sprintf("f%d", i)] = true
	}
}

// ParseKeys parses a binding string into a key sequence. Accepted
// notation, in the order it is tried:
//
//	^X       control unit (^? is DEL)
//	\e \n \r \t \\ \^ \<   escapes
//	<up> <f5> ...          out-of-band special keys
//	<C-x>                  control chord, same as ^X
//	anything else          literal units decoded by the codec
func ParseKeys(s string, codec *textunit.Codec) ([]Key, error) {
	var keys []Key
	for len(s) > 0 {
		switch {
		case s[0] == '^' && len(s) > 1:
			k, err := caretKey(s[1])
			if err != nil {
				return nil, err
			}
			keys = append(keys, k)
			s = s[2:]

		case s[0] == '\\' && len(s) > 1:
			u, ok := escapeUnit(s[1])
			if !ok {
				return nil, fmt.Errorf("keymap: bad escape %q", s[:2])
			}
			keys = append(keys, UnitKey(u))
			s = s[2:]

		case s[0] == '<':
			end := strings.IndexByte(s, '>')
			if end < 0 {
				return nil, fmt.Errorf("keymap: unterminated < in %q", s)
			}
			k, err := angleKey(s[1:end])
			if err != nil {
				return nil, err
			}
			keys = append(keys, k)
			s = s[end+1:]

		default:
			u, n, err := codec.Decode([]byte(s))
			if err != nil {
				return nil, fmt.Errorf("keymap: %w in %q", err, s)
			}
			keys = append(keys, UnitKey(u))
			s = s[n:]
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("keymap: empty key sequence")
	}
	return keys, nil
}

// MustParseKeys parses a known-valid binding string, panicking on error.
// Use only in initialization code.
func MustParseKeys(s string, codec *textunit.Codec) []Key {
	keys, err := ParseKeys(s, codec)
	if err != nil {
		panic("keymap: invalid key sequence " + s + ": " + err.Error())
	}
	return keys
}

func caretKey(c byte) (Key, error) {
	switch {
	case c == '?':
		return UnitKey(0x7f), nil
	case c >= '@' && c <= '_':
		return UnitKey(textunit.Unit(c - '@')), nil
	case c >= 'a' && c <= 'z':
		return UnitKey(textunit.Unit(c - 'a' + 1)), nil
	default:
		return Key{}, fmt.Errorf("keymap: bad control key ^%c", c)
	}
}

func escapeUnit(c byte) (textunit.Unit, bool) {
	switch c {
	case 'e':
		return 0x1b, true
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 't':
		return '\t', true
	case '\\', '^', '<':
		return textunit.Unit(c), true
	default:
		return 0, false
	}
}

func angleKey(name string) (Key, error) {
	lower := strings.ToLower(name)
	if specialNames[lower] {
		return SpecialKey(lower), nil
	}
	if len(name) == 3 && (name[:2] == "C-" || name[:2] == "c-") {
		// caretKey accepts either letter case, and <C-?> means DEL
		// exactly like ^?.
		return caretKey(name[2])
	}
	return Key{}, fmt.Errorf("keymap: unknown key name <%s>", name)
}
