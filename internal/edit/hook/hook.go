// Package hook dispatches the fixed set of completion extension points.
//
// Each hook is independently nullable: invoking an unregistered hook is
// a neutral no-op, never an error. The dispatcher carries completion
// payloads opaquely, including brace-run records that let the external
// completion engine keep brace delimiters positioned as it substitutes
// matched text; it never interprets brace syntax itself.
package hook

// Name identifies one of the fixed extension points.
type Name int

const (
	// ListMatches lists the current completion matches.
	ListMatches Name = iota

	// Complete runs completion at the cursor.
	Complete

	// BeforeComplete runs just before completion.
	BeforeComplete

	// AfterComplete runs just after completion.
	AfterComplete

	// AcceptComp accepts the selected completion.
	AcceptComp

	// ReverseMenu reverses menu-completion order.
	ReverseMenu

	// InvalidateList invalidates the completion list. It must be
	// invocable re-entrantly from within widget execution.
	InvalidateList

	numHooks
)

// String returns the hook name.
func (n Name) String() string {
	switch n {
	case ListMatches:
		return "list-matches"
	case Complete:
		return "complete"
	case BeforeComplete:
		return "before-complete"
	case AfterComplete:
		return "after-complete"
	case AcceptComp:
		return "accept-completion"
	case ReverseMenu:
		return "reverse-menu-order"
	case InvalidateList:
		return "invalidate-list"
	default:
		return "unknown"
	}
}

// Result is what a handler reports back to the dispatcher.
type Result struct {
	// Handled is false for the neutral no-op result of an
	// unregistered hook.
	Handled bool

	// Redraw asks the dispatcher to redraw after this hook.
	Redraw bool
}

// Func is a hook handler. The payload is opaque to the dispatcher.
type Func func(payload any) Result

// Dispatcher holds the handlers for the fixed hooks. It is used from a
// single dispatch goroutine; re-entrant invocation of InvalidateList is
// tracked so nested calls stay advisory and never re-enter buffer
// mutation.
type Dispatcher struct {
	handlers [numHooks]Func

	// invalidating guards re-entrant InvalidateList invocations.
	invalidating bool

	// listValid is the advisory completion-list state.
	listValid bool
}

// NewDispatcher creates a dispatcher with no handlers registered.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Set registers (or with nil, clears) the handler for a hook.
func (d *Dispatcher) Set(n Name, fn Func) {
	if n < 0 || n >= numHooks {
		return
	}
	d.handlers[n] = fn
}

// Has reports whether a handler is registered for n.
func (d *Dispatcher) Has(n Name) bool {
	return n >= 0 && n < numHooks && d.handlers[n] != nil
}

// Invoke calls the hook with the payload. An unregistered hook returns
// the neutral Result. InvalidateList is safe to invoke from within
// another hook or a running widget: the nested call only clears the
// advisory list flag and returns without re-entering its handler.
func (d *Dispatcher) Invoke(n Name, payload any) Result {
	if n < 0 || n >= numHooks {
		return Result{}
	}

	if n == InvalidateList {
		d.listValid = false
		if d.invalidating {
			return Result{Handled: true}
		}
		d.invalidating = true
		defer func() { d.invalidating = false }()
	}

	fn := d.handlers[n]
	if fn == nil {
		return Result{}
	}
	return fn(payload)
}

// ListValid reports the advisory completion-list state.
func (d *Dispatcher) ListValid() bool { return d.listValid }

// MarkListValid sets the advisory completion-list state, called after a
// successful completion produced a list.
func (d *Dispatcher) MarkListValid() { d.listValid = true }
