package keymap

// Status reports the outcome of feeding one key to a Resolver.
type Status int

const (
	// StatusUnbound means no binding shares the consumed prefix. The
	// resolver has reset itself; Replay holds any keys to re-feed.
	StatusUnbound Status = iota

	// StatusPrefix means at least one binding extends the consumed
	// prefix and none has completed unambiguously. HasComplete
	// distinguishes the ambiguous case where a shorter binding has
	// already completed.
	StatusPrefix

	// StatusMatch means a binding resolved. Name holds the thingy.
	StatusMatch
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusUnbound:
		return "unbound"
	case StatusPrefix:
		return "prefix"
	default:
		return "match"
	}
}

// Resolution is the result of feeding one key.
type Resolution struct {
	Status Status

	// Name is the resolved thingy name for StatusMatch.
	Name string

	// Replay holds keys consumed past a taken shorter match (or past
	// an unbound prefix) that the dispatcher must feed again.
	Replay []Key
}

// Resolver performs the stateful longest-progressive-match walk over one
// keymap. It is deterministic: the same table and input always produce
// the same resolutions. A Resolver holds no reference back into the
// dispatcher; cancelling is a plain Reset.
type Resolver struct {
	km  *Keymap
	cur *node

	// pending is the most recent completed-but-extendable match.
	pending string

	// tail holds the keys consumed since the pending match completed.
	tail []Key

	// consumed holds every key consumed since the last reset, for
	// unbound replay reporting.
	consumed []Key
}

// NewResolver creates a resolver positioned at the keymap root.
func (m *Keymap) NewResolver() *Resolver {
	return &Resolver{km: m, cur: m.root}
}

// Pending reports whether any prefix has been consumed.
func (r *Resolver) Pending() bool { return r.cur != r.km.root }

// HasComplete reports whether a shorter binding has already completed
// while longer candidates remain. The dispatcher uses this to decide
// whether a timeout should take the short match.
func (r *Resolver) HasComplete() bool { return r.pending != "" }

// PendingKeys returns the keys consumed since the last reset.
func (r *Resolver) PendingKeys() []Key {
	out := make([]Key, len(r.consumed))
	copy(out, r.consumed)
	return out
}

// Reset abandons any partial match, returning the resolver to the
// no-pending-prefix state.
func (r *Resolver) Reset() {
	r.cur = r.km.root
	r.pending = ""
	r.tail = nil
	r.consumed = nil
}

// Feed consumes one key and reports the resolution. On StatusMatch and
// StatusUnbound the resolver resets itself; the caller must re-feed any
// Replay keys before reading further input.
func (r *Resolver) Feed(k Key) Resolution {
	next, ok := r.cur.children[k]
	if !ok {
		// The walk cannot extend. Fall back to the shorter complete
		// match if one exists, replaying what followed it.
		if r.pending != "" {
			name := r.pending
			replay := append(r.tail, k)
			r.Reset()
			return Resolution{Status: StatusMatch, Name: name, Replay: replay}
		}
		if r.cur == r.km.root && k.Special == "" && r.km.defaultThingy != "" {
			return Resolution{Status: StatusMatch, Name: r.km.defaultThingy}
		}
		replay := r.consumed
		r.Reset()
		if len(replay) > 0 {
			// Mid-sequence failure: the whole prefix is unbound as a
			// unit; report it with the offending key attached.
			return Resolution{Status: StatusUnbound, Replay: append(replay, k)}
		}
		return Resolution{Status: StatusUnbound, Replay: []Key{k}}
	}

	r.cur = next
	r.consumed = append(r.consumed, k)

	if next.thingy != "" {
		if len(next.children) == 0 {
			// Unambiguous: no longer binding can extend this one.
			name := next.thingy
			r.Reset()
			return Resolution{Status: StatusMatch, Name: name}
		}
		// Ambiguous: remember the complete match and keep walking.
		r.pending = next.thingy
		r.tail = nil
		return Resolution{Status: StatusPrefix}
	}

	if r.pending != "" {
		r.tail = append(r.tail, k)
	}
	return Resolution{Status: StatusPrefix}
}

// TakePending resolves the remembered shorter match after a timeout.
// Replay holds the keys consumed past that match. Returns ok=false if
// nothing is pending.
func (r *Resolver) TakePending() (res Resolution, ok bool) {
	if r.pending == "" {
		return Resolution{}, false
	}
	name := r.pending
	replay := r.tail
	r.Reset()
	return Resolution{Status: StatusMatch, Name: name, Replay: replay}, true
}
