package scripting

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

type vm struct {
	L     *lua.LState
	limit int
}

// Manager owns one sandboxed LState per script set and exposes hook dispatch.
//
// Manager is safe for concurrent use; calls into the same VM are serialized.
type Manager struct {
	mu      sync.Mutex
	vms     map[string]*vm
	modules []Module
	logger  *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no VMs.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{vms: make(map[string]*vm), logger: logger}
}

// Register makes mod available to every VM loaded afterwards and to the ones
// already loaded.
//
// Precondition: mod.Name must be non-empty.
func (m *Manager) Register(mod Module) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modules = append(m.modules, mod)
	for _, v := range m.vms {
		install(v.L, mod)
	}
}

// LoadDir creates a sandboxed VM under key and executes every *.lua file in
// dir in lexicographic order.
//
// Precondition: key must be non-empty; dir must be a readable directory.
// Postcondition: the VM replaces any previous VM for key; returns error on
// Lua load failure, leaving the previous VM in place.
func (m *Manager) LoadDir(key, dir string, instLimit int) error {
	return m.LoadFS(key, os.DirFS(dir), instLimit)
}

// LoadFS is LoadDir over an fs.FS, typically an embedded script set. Only
// files at the root of fsys are loaded.
func (m *Manager) LoadFS(key string, fsys fs.FS, instLimit int) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("scripting: reading scripts for %q: %w", key, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == ".lua" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	sources := make([]source, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("scripting: reading %q for %q: %w", name, key, err)
		}
		sources = append(sources, source{name: name, code: string(data)})
	}
	return m.load(key, sources, instLimit)
}

// LoadSource creates a VM under key from a single in-memory chunk.
func (m *Manager) LoadSource(key, name, code string, instLimit int) error {
	return m.load(key, []source{{name: name, code: code}}, instLimit)
}

type source struct {
	name string
	code string
}

func (m *Manager) load(key string, sources []source, instLimit int) error {
	L := NewSandboxedState(instLimit)

	m.mu.Lock()
	mods := append([]Module(nil), m.modules...)
	m.mu.Unlock()
	for _, mod := range mods {
		install(L, mod)
	}

	for _, src := range sources {
		err := RunWithBudget(L, instLimit, func() error {
			fn, err := L.Load(strings.NewReader(src.code), src.name)
			if err != nil {
				return err
			}
			L.Push(fn)
			return L.PCall(0, lua.MultRet, nil)
		})
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", src.name, key, err)
		}
	}

	m.mu.Lock()
	if old, ok := m.vms[key]; ok {
		old.L.Close()
	}
	m.vms[key] = &vm{L: L, limit: instLimit}
	m.mu.Unlock()

	m.logger.Debug("scripting: VM loaded",
		zap.String("key", key),
		zap.Int("chunks", len(sources)),
	)
	return nil
}

// CallHook calls the named Lua global function in key's VM. Returns
// (LNil, nil) if the hook is not defined or no VM exists. Lua runtime errors,
// including an exhausted instruction budget, are logged at Warn level and
// never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(key, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.vms[key]
	if !ok {
		m.logger.Info("scripting: no VM for key",
			zap.String("key", key),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	L := v.L
	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	err := RunWithBudget(L, v.limit, func() error {
		return L.CallByParam(lua.P{
			Fn:      fn,
			NRet:    1,
			Protect: true,
		}, args...)
	})
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("key", key),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// Has reports whether a VM is loaded under key.
func (m *Manager) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.vms[key]
	return ok
}

// Close shuts down every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, v := range m.vms {
		v.L.Close()
		delete(m.vms, key)
	}
}
