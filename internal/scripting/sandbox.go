// Package scripting provides a sandboxed GopherLua execution environment for
// AI doctrine scripts. It has no dependency on game domain packages; callers
// inject the functions scripts may call as Modules.
package scripting

import (
	"context"
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the opcode budget for one chunk load or hook call
// when no override is configured.
const DefaultInstructionLimit = 100_000

// ErrBudgetExhausted marks a chunk or hook stopped by its opcode budget.
var ErrBudgetExhausted = errors.New("scripting: instruction budget exhausted")

// removedGlobals are base library functions doctrine scripts must not reach:
// file access, dynamic code loading, GC control and console output.
var removedGlobals = []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage", "require", "print"}

// opcodeBudget cancels itself after Done has been called limit times. The Lua
// main loop calls Done once per opcode. A budget is used by one VM goroutine
// at a time.
type opcodeBudget struct {
	context.Context
	cancel    context.CancelFunc
	remaining int
}

func (b *opcodeBudget) Done() <-chan struct{} {
	b.remaining--
	if b.remaining <= 0 {
		b.cancel()
	}
	return b.Context.Done()
}

func newBudget(limit int) *opcodeBudget {
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &opcodeBudget{Context: ctx, cancel: cancel, remaining: limit}
}

// NewSandboxedState creates an LState with only the base, table, string and
// math libraries, minus removedGlobals. Top-level chunks run directly on the
// returned state share one budget of instLimit opcodes.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: the caller owns the state and must Close it.
func NewSandboxedState(instLimit int) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range removedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	L.SetContext(newBudget(instLimit))
	return L
}

// RunWithBudget runs fn against L with a fresh budget of instLimit opcodes.
//
// Postcondition: returns an error wrapping ErrBudgetExhausted when the budget
// ran out, fn's error otherwise; L has no context afterwards.
func RunWithBudget(L *lua.LState, instLimit int, fn func() error) error {
	budget := newBudget(instLimit)
	defer budget.cancel()
	L.SetContext(budget)
	defer L.RemoveContext()

	err := fn()
	if err != nil && budget.Err() != nil {
		return fmt.Errorf("%w: %v", ErrBudgetExhausted, err)
	}
	return err
}
