// Package keymap maps key sequences to thingy names, one table per
// editing mode.
//
// Resolution is a longest-progressive-match walk: each incoming unit
// narrows the candidate bindings sharing the consumed prefix. An empty
// candidate set is Unbound; a complete binding with no longer extension
// is a Match; a complete binding that is a proper prefix of a longer one
// is reported as an ambiguous Prefix, which the dispatcher settles by
// waiting for the next unit up to a configurable timeout before taking
// the shorter match.
package keymap
