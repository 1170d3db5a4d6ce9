// Package userfn hosts user-defined editing functions in an embedded
// Lua state. User-defined widgets name a function here; the name is
// resolved at call time, so a widget may be bound before its function
// is loaded. The completion collaborator's entry points live here too.
package userfn

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// ErrUnknownFunction reports a call to a function name with no loaded
// definition. Recoverable: the dispatcher beeps and continues.
var ErrUnknownFunction = errors.New("userfn: unknown function")

// Engine owns the Lua state. It is confined to the dispatch goroutine;
// a single state serves the whole session.
type Engine struct {
	state *lua.LState
}

// NewEngine creates an engine with a fresh Lua state.
func NewEngine() *Engine {
	L := lua.NewState()
	return &Engine{state: L}
}

// Close releases the Lua state.
func (e *Engine) Close() {
	e.state.Close()
}

// Load executes a chunk of Lua source, typically defining functions for
// later Call use.
func (e *Engine) Load(source string) error {
	if err := e.state.DoString(source); err != nil {
		return fmt.Errorf("userfn: load: %w", err)
	}
	return nil
}

// Has reports whether a global function of the given name is defined.
func (e *Engine) Has(name string) bool {
	_, ok := e.state.GetGlobal(name).(*lua.LFunction)
	return ok
}

// Call invokes the named global function with string arguments,
// resolving the name at call time. A missing function returns
// ErrUnknownFunction.
func (e *Engine) Call(name string, args ...string) error {
	fn, ok := e.state.GetGlobal(name).(*lua.LFunction)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}

	lvArgs := make([]lua.LValue, len(args))
	for i, a := range args {
		lvArgs[i] = lua.LString(a)
	}
	if err := e.state.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, lvArgs...); err != nil {
		return fmt.Errorf("userfn: call %q: %w", name, err)
	}
	return nil
}

// CallString invokes the named function expecting a single string
// result, used by completion entry points that return replacement text.
func (e *Engine) CallString(name string, args ...string) (string, error) {
	fn, ok := e.state.GetGlobal(name).(*lua.LFunction)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}

	lvArgs := make([]lua.LValue, len(args))
	for i, a := range args {
		lvArgs[i] = lua.LString(a)
	}
	if err := e.state.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, lvArgs...); err != nil {
		return "", fmt.Errorf("userfn: call %q: %w", name, err)
	}
	ret := e.state.Get(-1)
	e.state.Pop(1)

	if s, ok := ret.(lua.LString); ok {
		return string(s), nil
	}
	return "", nil
}

// SetGoFunc exposes a Go function to Lua under the given global name,
// letting user functions call back into the editor.
func (e *Engine) SetGoFunc(name string, fn func(args []string) (string, error)) {
	e.state.SetGlobal(name, e.state.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		args := make([]string, 0, n)
		for i := 1; i <= n; i++ {
			args = append(args, L.CheckString(i))
		}
		out, err := fn(args)
		if err != nil {
			L.Push(lua.LNil)
			L.Push(lua.LString(err.Error()))
			return 2
		}
		L.Push(lua.LString(out))
		return 1
	}))
}
