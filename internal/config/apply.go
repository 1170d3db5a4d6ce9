package config

import (
	"fmt"

	"github.com/dshills/keyline/internal/edit"
	"github.com/dshills/keyline/internal/edit/keymap"
	"github.com/dshills/keyline/internal/edit/textunit"
)

// SessionConfig translates the file settings into a session
// configuration. Unset fields fall back to the session defaults.
func SessionConfig(f File) (edit.Config, error) {
	cfg := edit.Config{
		Policy:    keymap.DefaultPolicy(),
		RingSlots: f.Editor.RingSlots,
	}
	switch f.Editor.Mode {
	case "", "wide":
		cfg.Mode = textunit.ModeWide
	case "narrow":
		cfg.Mode = textunit.ModeNarrow
	default:
		return cfg, fmt.Errorf("%w: %q", ErrBadMode, f.Editor.Mode)
	}
	if t := f.Editor.ResolveTimeout(); t > 0 {
		cfg.Policy.ResolveTimeout = t
	}
	return cfg, nil
}

// Apply installs the file's key bindings into a live session. Tables
// named in the file are created if needed; sequences that fail to
// parse or bind abort with an error naming the offending entry.
// Widget names are not checked here: a binding to a widget defined
// later is legal and resolves at dispatch time.
func Apply(f File, s *edit.Session) error {
	for mode, binds := range f.Bindings {
		km := s.Keymaps().Get(mode)
		if km == nil {
			km = s.Keymaps().Add(mode)
		}
		for seq, name := range binds {
			keys, err := keymap.ParseKeys(seq, s.Codec())
			if err != nil {
				return fmt.Errorf("binding %s %q: %w", mode, seq, err)
			}
			if err := km.Bind(keys, name); err != nil {
				return fmt.Errorf("binding %s %q: %w", mode, seq, err)
			}
		}
	}
	return nil
}
