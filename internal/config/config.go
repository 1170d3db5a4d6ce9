// Package config loads editor configuration from TOML or YAML files,
// selected by extension, and applies it to a session: character mode,
// kill-ring size, resolve timeout, and per-mode key bindings. A watcher
// rebinds live when the file changes on disk.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Errors returned by configuration operations.
var (
	// ErrUnknownFormat indicates a file extension with no loader.
	ErrUnknownFormat = errors.New("config: unknown file format")

	// ErrBadMode indicates an unrecognized character-mode name.
	ErrBadMode = errors.New("config: unknown character mode")
)

// ParseError reports a file that failed to parse.
type ParseError struct {
	// Path is the file path that failed to parse.
	Path string
	// Message describes the parse error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// File is the on-disk configuration schema. Zero values mean "use the
// default".
type File struct {
	Editor   Editor                       `toml:"editor" yaml:"editor"`
	Bindings map[string]map[string]string `toml:"bindings" yaml:"bindings"`
}

// Editor holds the session-level settings.
type Editor struct {
	// Mode selects the character model: "wide" (the default) or
	// "narrow".
	Mode string `toml:"mode" yaml:"mode"`

	// RingSlots is the kill-ring capacity.
	RingSlots int `toml:"ring_slots" yaml:"ring_slots"`

	// ResolveTimeoutMS is the ambiguous-sequence timeout in
	// milliseconds.
	ResolveTimeoutMS int `toml:"resolve_timeout_ms" yaml:"resolve_timeout_ms"`
}

// ResolveTimeout returns the configured timeout, or zero when unset.
func (e Editor) ResolveTimeout() time.Duration {
	return time.Duration(e.ResolveTimeoutMS) * time.Millisecond
}

// Load reads and parses the file at path. The format is chosen by
// extension: .toml, .yaml or .yml. A missing file returns a zero File
// and no error, so a fresh setup runs on defaults.
func Load(path string) (File, error) {
	var f File
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return f, fmt.Errorf("reading config file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &f)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	default:
		return f, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return File{}, &ParseError{Path: path, Message: err.Error(), Err: err}
	}
	return f, nil
}
