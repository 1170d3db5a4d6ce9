package widget

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Common binding-table errors. All are recoverable at the dispatch loop
// boundary and surface to the user as a bell.
var (
	ErrAlreadyDefined = errors.New("widget: name already defined")
	ErrImmortal       = errors.New("widget: thingy is immortal")
	ErrUnknownThingy  = errors.New("widget: no such thingy")
)

// Thingy is a named binding pointing at exactly one widget.
type Thingy struct {
	name     string
	immortal bool
	disabled bool
	widget   *Widget
}

// Name returns the thingy's name.
func (t *Thingy) Name() string { return t.name }

// Immortal reports whether the thingy can be repointed.
func (t *Thingy) Immortal() bool { return t.immortal }

// Disabled reports whether dispatch should treat the thingy as unbound.
func (t *Thingy) Disabled() bool { return t.disabled }

// Widget returns the widget this thingy names.
func (t *Thingy) Widget() *Widget { return t.widget }

// Table is the registry of thingies. It guarantees the reference-count
// invariant: a widget is released exactly once, when its last thingy is
// released.
type Table struct {
	mu       sync.RWMutex
	thingies map[string]*Thingy

	// groups tracks the alias group of every live widget, keyed by
	// widget identity.
	groups map[*Widget]map[string]*Thingy
}

// NewTable creates an empty binding table.
func NewTable() *Table {
	return &Table{
		thingies: make(map[string]*Thingy),
		groups:   make(map[*Widget]map[string]*Thingy),
	}
}

// Register creates a thingy naming w. It fails with ErrAlreadyDefined if
// the name is in use and replace is false; replacing releases the old
// binding first.
func (t *Table) Register(name string, w *Widget, replace bool) (*Thingy, error) {
	return t.register(name, w, replace, false)
}

// RegisterImmortal creates an immortal thingy naming w. Immortal
// thingies can never be repointed by Bind.
func (t *Table) RegisterImmortal(name string, w *Widget) (*Thingy, error) {
	return t.register(name, w, false, true)
}

func (t *Table) register(name string, w *Widget, replace, immortal bool) (*Thingy, error) {
	if w == nil {
		return nil, fmt.Errorf("widget: register %q: nil widget", name)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.thingies[name]; ok {
		if !replace {
			return nil, fmt.Errorf("%w: %q", ErrAlreadyDefined, name)
		}
		t.unlinkLocked(old)
	}

	th := &Thingy{name: name, immortal: immortal, widget: w}
	t.thingies[name] = th
	t.linkLocked(th, w)
	return th, nil
}

// Lookup returns the thingy bound to name, or nil.
func (t *Table) Lookup(name string) *Thingy {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.thingies[name]
}

// Bind repoints an existing, non-immortal thingy at a new widget. The
// other members of the old alias group keep their binding.
func (t *Table) Bind(name string, w *Widget) error {
	if w == nil {
		return fmt.Errorf("widget: bind %q: nil widget", name)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	th, ok := t.thingies[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownThingy, name)
	}
	if th.immortal {
		return fmt.Errorf("%w: %q", ErrImmortal, name)
	}
	if th.widget == w {
		return nil
	}

	t.unlinkLocked(th)
	th.widget = w
	t.linkLocked(th, w)
	return nil
}

// Alias creates a new thingy naming the same widget as existing. The new
// thingy joins the existing thingy's alias group and bumps the widget's
// reference count.
func (t *Table) Alias(name, existing string) (*Thingy, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	src, ok := t.thingies[existing]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownThingy, existing)
	}
	if _, ok := t.thingies[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrAlreadyDefined, name)
	}

	th := &Thingy{name: name, widget: src.widget}
	t.thingies[name] = th
	t.linkLocked(th, src.widget)
	return th, nil
}

// Release removes the named thingy, decrementing its widget's reference
// count. It reports whether this release freed the widget.
func (t *Table) Release(name string) (freed bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	th, ok := t.thingies[name]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownThingy, name)
	}

	delete(t.thingies, name)
	return t.unlinkLocked(th), nil
}

// SetDisabled toggles the generic disabled flag on a thingy.
func (t *Table) SetDisabled(name string, disabled bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	th, ok := t.thingies[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownThingy, name)
	}
	th.disabled = disabled
	return nil
}

// Names returns all bound names in sorted order.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.thingies))
	for n := range t.thingies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// AliasGroup returns the sorted names of every thingy naming the same
// widget as name, including name itself. A rename or rebind of one
// member is discoverable from any other member through this group.
func (t *Table) AliasGroup(name string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	th, ok := t.thingies[name]
	if !ok {
		return nil
	}
	group := t.groups[th.widget]
	names := make([]string, 0, len(group))
	for n := range group {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of bound names.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.thingies)
}

// linkLocked adds th to w's alias group and bumps the refcount.
func (t *Table) linkLocked(th *Thingy, w *Widget) {
	group, ok := t.groups[w]
	if !ok {
		group = make(map[string]*Thingy)
		t.groups[w] = group
	}
	group[th.name] = th
	w.refs++
}

// unlinkLocked removes th from its widget's alias group, dropping the
// refcount and releasing the widget when it reaches zero. Reports
// whether the widget was freed by this unlink.
func (t *Table) unlinkLocked(th *Thingy) bool {
	w := th.widget
	if w == nil {
		return false
	}
	th.widget = nil

	if group, ok := t.groups[w]; ok {
		delete(group, th.name)
	}
	w.refs--
	if w.refs > 0 {
		return false
	}

	delete(t.groups, w)
	if w.released {
		return false
	}
	w.released = true
	return true
}
