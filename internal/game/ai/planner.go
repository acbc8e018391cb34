package ai

import (
	lua "github.com/yuin/gopher-lua"
)

// ScriptCaller evaluates precondition hooks. An undefined hook must yield
// (LNil, nil).
type ScriptCaller interface {
	CallHook(key, hook string, args ...lua.LValue) (lua.LValue, error)
}

// PlannedAction is one primitive decision produced by the planner.
type PlannedAction struct {
	Action string
	Target string
}

// Plan is the outcome of one decomposition.
type Plan struct {
	// Actions are the primitive operators reached, in order.
	Actions []PlannedAction
	// Methods are the IDs of the methods chosen, in the order they fired.
	Methods []string
	// Truncated is set when decomposition hit the step limit with tasks
	// still pending, which means the domain recurses.
	Truncated bool
}

// maxPlanSteps bounds how many tasks one decomposition may visit.
const maxPlanSteps = 32

// Planner decomposes the domain's root task.
//
// Invariant: domain and caller must not be nil.
type Planner struct {
	domain    *Domain
	caller    ScriptCaller
	scriptKey string
}

// NewPlanner constructs a Planner whose preconditions are looked up in the
// caller's VM registered under scriptKey.
//
// Precondition: domain and caller must not be nil.
func NewPlanner(domain *Domain, caller ScriptCaller, scriptKey string) *Planner {
	if domain == nil {
		panic("ai.NewPlanner: domain must not be nil")
	}
	if caller == nil {
		panic("ai.NewPlanner: caller must not be nil")
	}
	return &Planner{domain: domain, caller: caller, scriptKey: scriptKey}
}

// Plan decomposes the root task depth first. A method applies when its
// precondition hook returns exactly true; tasks with no applicable method are
// dropped.
//
// Postcondition: Actions and Methods are non-nil.
func (p *Planner) Plan() Plan {
	out := Plan{Actions: []PlannedAction{}, Methods: []string{}}
	pending := []string{p.domain.Root}

	for steps := 0; len(pending) > 0; steps++ {
		if steps == maxPlanSteps {
			out.Truncated = true
			break
		}
		task := pending[0]
		pending = pending[1:]

		if op, ok := p.domain.OperatorByID(task); ok {
			out.Actions = append(out.Actions, PlannedAction{Action: op.Action, Target: op.Target})
			continue
		}
		m := p.applicable(task)
		if m == nil {
			continue
		}
		out.Methods = append(out.Methods, m.ID)
		pending = append(append([]string(nil), m.Subtasks...), pending...)
	}
	return out
}

func (p *Planner) applicable(task string) *Method {
	for _, m := range p.domain.MethodsForTask(task) {
		if m.Precondition == "" {
			return m
		}
		if v, _ := p.caller.CallHook(p.scriptKey, m.Precondition); v == lua.LTrue {
			return m
		}
	}
	return nil
}
