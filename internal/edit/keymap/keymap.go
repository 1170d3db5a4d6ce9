package keymap

import (
	"errors"
	"fmt"
	"sort"
)

// Common keymap errors.
var (
	ErrUnbound     = errors.New("keymap: sequence not bound")
	ErrUnknownMode = errors.New("keymap: no such mode")
)

// Keymap is one mode's table of key-sequence bindings, organized as a
// prefix tree so resolution can narrow candidates one unit at a time.
type Keymap struct {
	name string
	root *node

	// defaultThingy, when set, resolves any single unit key that no
	// binding starts with. The insert mode points it at self-insert.
	defaultThingy string
}

// SetDefault sets the fallback thingy for unbound single unit keys.
func (m *Keymap) SetDefault(thingy string) { m.defaultThingy = thingy }

// Default returns the fallback thingy name, or "".
func (m *Keymap) Default() string { return m.defaultThingy }

type node struct {
	// thingy is the bound name, empty for interior-only nodes.
	thingy   string
	children map[Key]*node
}

func newNode() *node {
	return &node{children: make(map[Key]*node)}
}

// New creates an empty keymap with the given mode name.
func New(name string) *Keymap {
	return &Keymap{name: name, root: newNode()}
}

// Name returns the keymap's mode name.
func (m *Keymap) Name() string { return m.name }

// Bind binds a key sequence to a thingy name, replacing any previous
// binding of the exact sequence. Bindings that are prefixes of other
// bindings are allowed; they resolve ambiguously (see Resolver).
func (m *Keymap) Bind(keys []Key, thingy string) error {
	if len(keys) == 0 {
		return fmt.Errorf("keymap %q: empty sequence", m.name)
	}
	if thingy == "" {
		return fmt.Errorf("keymap %q: empty thingy name for %s", m.name, Seq(keys))
	}

	cur := m.root
	for _, k := range keys {
		next, ok := cur.children[k]
		if !ok {
			next = newNode()
			cur.children[k] = next
		}
		cur = next
	}
	cur.thingy = thingy
	return nil
}

// Unbind removes the binding for the exact sequence, pruning empty
// interior nodes. Unbinding a missing sequence returns ErrUnbound.
func (m *Keymap) Unbind(keys []Key) error {
	path := make([]*node, 0, len(keys)+1)
	cur := m.root
	path = append(path, cur)
	for _, k := range keys {
		next, ok := cur.children[k]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnbound, Seq(keys))
		}
		cur = next
		path = append(path, cur)
	}
	if cur.thingy == "" {
		return fmt.Errorf("%w: %s", ErrUnbound, Seq(keys))
	}
	cur.thingy = ""

	for i := len(keys) - 1; i >= 0; i-- {
		child := path[i+1]
		if child.thingy != "" || len(child.children) > 0 {
			break
		}
		delete(path[i].children, keys[i])
	}
	return nil
}

// Lookup returns the thingy bound to the exact sequence, or "".
func (m *Keymap) Lookup(keys []Key) string {
	cur := m.root
	for _, k := range keys {
		next, ok := cur.children[k]
		if !ok {
			return ""
		}
		cur = next
	}
	return cur.thingy
}

// Binding is one (sequence, thingy) pair for enumeration.
type Binding struct {
	Keys   []Key
	Thingy string
}

// Bindings enumerates all bindings in deterministic (display-string)
// order.
func (m *Keymap) Bindings() []Binding {
	var out []Binding
	var walk func(n *node, prefix []Key)
	walk = func(n *node, prefix []Key) {
		if n.thingy != "" {
			keys := make([]Key, len(prefix))
			copy(keys, prefix)
			out = append(out, Binding{Keys: keys, Thingy: n.thingy})
		}
		for k, child := range n.children {
			walk(child, append(prefix, k))
		}
	}
	walk(m.root, nil)
	sort.Slice(out, func(i, j int) bool {
		return Seq(out[i].Keys) < Seq(out[j].Keys)
	})
	return out
}
