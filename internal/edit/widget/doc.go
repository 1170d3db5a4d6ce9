// Package widget implements the editor's binding table.
//
// A Widget is an executable editing operation; a Thingy is a named,
// reference-counted binding pointing at exactly one Widget. Several
// thingies may name the same widget; they form an alias group that is
// discoverable from any member. A widget is released exactly once, when
// the last thingy referencing it is released.
//
// Immortal thingies protect built-in identity bindings: they can never
// be repointed at a different widget.
package widget
