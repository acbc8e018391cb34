// Package ai implements the computer opponent: a per-turn pipeline of
// perception, goal selection, economy and unit control that issues commands
// through the rules engine exactly as a human player would.
//
// Goal selection is an HTN domain whose method preconditions are Lua hooks;
// production scoring is a table of expr-lang rules.
package ai

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Task is an abstract goal that can be decomposed by methods.
//
// Precondition: ID must be non-empty.
type Task struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
}

// Method decomposes a task into an ordered list of subtasks or operator IDs.
//
// Precondition: TaskID, ID, and Subtasks must be non-empty.
// Precondition: Precondition is a Lua function name; empty means always applicable.
type Method struct {
	TaskID       string   `yaml:"task"`
	ID           string   `yaml:"id"`
	Precondition string   `yaml:"precondition"` // Lua function name; empty = always applicable
	Subtasks     []string `yaml:"subtasks"`
}

// Operator is a primitive decision emitted into the plan.
//
// Precondition: ID and Action must be non-empty.
type Operator struct {
	ID     string `yaml:"id"`
	Action string `yaml:"action"` // "goal"
	Target string `yaml:"target"` // goal name for "goal" operators
}

// Domain holds the full HTN domain loaded from a YAML file.
//
// Invariant: all Task, Method, and Operator IDs are unique within their slice.
type Domain struct {
	ID          string      `yaml:"id"`
	Description string      `yaml:"description"`
	Root        string      `yaml:"root"` // task the planner starts from
	Tasks       []*Task     `yaml:"tasks"`
	Methods     []*Method   `yaml:"methods"`
	Operators   []*Operator `yaml:"operators"`
}

// Validate reports every structural problem in the domain at once.
//
// Postcondition: nil means IDs are present and unique per kind, Root names a
// task, every method decomposes a known task and every subtask names a task
// or an operator.
func (d *Domain) Validate() error {
	if d.ID == "" {
		return errors.New("ai.Domain: ID must not be empty")
	}
	if len(d.Tasks) == 0 {
		return fmt.Errorf("ai.Domain %q: must have at least one task", d.ID)
	}

	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("ai.Domain %q: "+format, append([]any{d.ID}, args...)...))
	}

	tasks := map[string]bool{}
	for _, t := range d.Tasks {
		switch {
		case t.ID == "":
			fail("task has empty ID")
		case tasks[t.ID]:
			fail("duplicate task ID %q", t.ID)
		}
		tasks[t.ID] = true
	}
	ops := map[string]bool{}
	for _, op := range d.Operators {
		switch {
		case op.ID == "" || op.Action == "":
			fail("operator missing ID or Action")
		case ops[op.ID]:
			fail("duplicate operator ID %q", op.ID)
		case tasks[op.ID]:
			fail("operator %q shadows a task", op.ID)
		}
		ops[op.ID] = true
	}

	if d.Root == "" {
		fail("root must not be empty")
	} else if !tasks[d.Root] {
		fail("root %q references unknown task", d.Root)
	}

	methods := map[string]bool{}
	for _, m := range d.Methods {
		if m.TaskID == "" || m.ID == "" {
			fail("method missing TaskID or ID")
			continue
		}
		if methods[m.ID] {
			fail("duplicate method ID %q", m.ID)
		}
		methods[m.ID] = true
		if !tasks[m.TaskID] {
			fail("method %q: TaskID %q references unknown task", m.ID, m.TaskID)
		}
		if len(m.Subtasks) == 0 {
			fail("method %q: subtasks must not be empty", m.ID)
		}
		for _, sub := range m.Subtasks {
			if !tasks[sub] && !ops[sub] {
				fail("method %q: subtask %q is neither a task nor an operator", m.ID, sub)
			}
		}
	}
	return errors.Join(errs...)
}

// OperatorByID returns the operator with the given ID, or false if not found.
func (d *Domain) OperatorByID(id string) (*Operator, bool) {
	for _, op := range d.Operators {
		if op.ID == id {
			return op, true
		}
	}
	return nil, false
}

// MethodsForTask returns all methods that decompose taskID, in declaration order.
func (d *Domain) MethodsForTask(taskID string) []*Method {
	var out []*Method
	for _, m := range d.Methods {
		if m.TaskID == taskID {
			out = append(out, m)
		}
	}
	return out
}

// yamlDomainFile wraps the YAML top-level key.
type yamlDomainFile struct {
	Domain *Domain `yaml:"domain"`
}

// ParseDomain decodes and validates a domain document.
//
// Postcondition: returns a validated Domain or a non-nil error.
func ParseDomain(data []byte) (*Domain, error) {
	var f yamlDomainFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("ai.ParseDomain: %w", err)
	}
	if f.Domain == nil {
		return nil, errors.New("ai.ParseDomain: missing top-level 'domain' key")
	}
	if err := f.Domain.Validate(); err != nil {
		return nil, err
	}
	return f.Domain, nil
}
