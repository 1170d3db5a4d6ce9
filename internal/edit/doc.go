// Package edit ties the editing core together: one Session owns the
// line buffer, binding table, keymaps, modifier state, undo log, kill
// ring, hook dispatcher and user-function engine, and runs the
// single-threaded key dispatch cycle.
//
// A key arrives, the character model decodes it, the active keymap
// resolves it (consulting modifier state for prefix arguments) to a
// thingy name, the binding table resolves the name to a widget, and the
// widget mutates the buffer through helpers that feed the undo log and
// kill ring. Recoverable failures ring the bell; nothing short of
// terminal initialization failure aborts the session.
package edit
