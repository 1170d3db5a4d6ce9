// Package textunit defines the unit of editing.
//
// The editor works on one of two character models, selected process-wide
// at session start: a narrow model where every unit is a single byte
// decoded through a charmap codec, and a wide model where a unit is a
// Unicode code point decoded from UTF-8. All buffer, kill-ring and undo
// machinery above this package is written against Unit and never touches
// raw bytes directly.
package textunit
