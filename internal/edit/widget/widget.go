package widget

// Kind identifies how a widget executes.
type Kind int

const (
	// KindBuiltin is a natively implemented widget.
	KindBuiltin Kind = iota

	// KindUser is a user-defined widget identified by an external
	// function name resolved at call time.
	KindUser

	// KindCompletion carries a native fallback plus the names of a
	// widget and external function to call for new-style completion.
	KindCompletion
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBuiltin:
		return "builtin"
	case KindUser:
		return "user"
	case KindCompletion:
		return "completion"
	default:
		return "unknown"
	}
}

// Flags is the set of independent widget capability flags consulted by
// the dispatcher and completion logic.
type Flags uint16

const (
	// FlagInternal marks a natively implemented widget.
	FlagInternal Flags = 1 << iota

	// FlagNewComp marks a new-style completion widget.
	FlagNewComp

	// FlagMenuCmp keeps the completion list valid after this widget.
	FlagMenuCmp

	// FlagYank marks a yank-style widget.
	FlagYank

	// FlagLineMove marks a line-oriented movement.
	FlagLineMove

	// FlagLastCol marks a widget that maintains the last column.
	FlagLastCol

	// FlagKill marks a kill-style widget.
	FlagKill

	// FlagKeepSuffix keeps a completion-added suffix in place.
	FlagKeepSuffix

	// FlagNotCommand excludes the widget from last-command tracking.
	FlagNotCommand

	// FlagCompWidget marks a widget usable for new-style completion.
	FlagCompWidget
)

// Has reports whether all bits in f are set.
func (fl Flags) Has(f Flags) bool { return fl&f == f }

// BuiltinFunc is the native widget entry point. It receives the
// remaining arguments of the invocation.
type BuiltinFunc func(args []string) error

// Widget is one executable editing operation. The Kind field selects
// which of the remaining fields are meaningful.
type Widget struct {
	// Kind selects the variant.
	Kind Kind

	// Flags are the capability flags.
	Flags Flags

	// Fn is the native entry point (KindBuiltin) or native fallback
	// (KindCompletion).
	Fn BuiltinFunc

	// FuncName is the external function to resolve at call time
	// (KindUser and KindCompletion).
	FuncName string

	// WidgetName is the completion widget to report to the external
	// function (KindCompletion only).
	WidgetName string

	// refs counts the thingies naming this widget. Managed by Table.
	refs int

	// released is set once when the last reference goes away.
	released bool
}

// NewBuiltin creates a natively implemented widget.
func NewBuiltin(fn BuiltinFunc, flags Flags) *Widget {
	return &Widget{Kind: KindBuiltin, Flags: flags | FlagInternal, Fn: fn}
}

// NewUser creates a user-defined widget calling funcName.
func NewUser(funcName string, flags Flags) *Widget {
	return &Widget{Kind: KindUser, Flags: flags &^ FlagInternal, FuncName: funcName}
}

// NewCompletion creates a completion-forwarding widget: fn is the native
// fallback, widgetName and funcName identify the new-style completion
// entry points.
func NewCompletion(fn BuiltinFunc, widgetName, funcName string, flags Flags) *Widget {
	return &Widget{
		Kind:       KindCompletion,
		Flags:      flags | FlagInternal | FlagNewComp,
		Fn:         fn,
		WidgetName: widgetName,
		FuncName:   funcName,
	}
}

// Refs returns the number of thingies currently naming this widget.
func (w *Widget) Refs() int { return w.refs }

// Released reports whether the widget has been released. A released
// widget is never executed again.
func (w *Widget) Released() bool { return w.released }
