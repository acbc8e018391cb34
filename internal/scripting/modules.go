package scripting

import lua "github.com/yuin/gopher-lua"

// Module is a named table of Go functions exposed to scripts as a global,
// e.g. Module{Name: "board"} is reachable as board.fn(...).
type Module struct {
	Name  string
	Funcs map[string]lua.LGFunction
}

// install defines the module table as a global in L.
//
// Precondition: L must be from NewSandboxedState; mod.Name must be non-empty.
func install(L *lua.LState, mod Module) {
	tbl := L.NewTable()
	for name, fn := range mod.Funcs {
		L.SetField(tbl, name, L.NewFunction(fn))
	}
	L.SetGlobal(mod.Name, tbl)
}
