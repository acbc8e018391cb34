package ai

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/bastion/internal/game/state"
)

// ProductionEnv is the environment production rule conditions are evaluated
// against. Field names are the identifiers available to rule authors.
type ProductionEnv struct {
	Goal           string
	Unit           string
	Gold           int
	Cost           int
	MyUnits        int
	EnemyUnits     int
	MyMelee        int
	MyRanged       int
	MyEngineers    int
	MyCatapults    int
	Fortposts      int
	GoldTiles      int
	EnemyCastle    bool
	CatapultThreat bool
}

// ProductionRule adds Bonus to the score of every listed unit type while its
// When condition holds. An empty When always holds.
type ProductionRule struct {
	Name  string   `yaml:"name"`
	Units []string `yaml:"units"`
	When  string   `yaml:"when"`
	Bonus float64  `yaml:"bonus"`

	types   []state.UnitType
	program *vm.Program
}

// Applies reports whether the rule scores unit type t.
func (r *ProductionRule) Applies(t state.UnitType) bool {
	for _, ut := range r.types {
		if ut == t {
			return true
		}
	}
	return false
}

// Holds evaluates the rule's condition. A nil program means unconditional.
func (r *ProductionRule) Holds(env ProductionEnv) (bool, error) {
	if r.program == nil {
		return true, nil
	}
	out, err := vm.Run(r.program, env)
	if err != nil {
		return false, fmt.Errorf("production rule %q: %w", r.Name, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

// compile resolves unit names and compiles the condition.
func (r *ProductionRule) compile() error {
	if r.Name == "" {
		return errors.New("production rule: name must not be empty")
	}
	if len(r.Units) == 0 {
		return fmt.Errorf("production rule %q: units must not be empty", r.Name)
	}
	r.types = r.types[:0]
	for _, name := range r.Units {
		t, ok := state.ParseUnitType(name)
		if !ok {
			return fmt.Errorf("production rule %q: unknown unit type %q", r.Name, name)
		}
		r.types = append(r.types, t)
	}
	if r.When == "" {
		r.program = nil
		return nil
	}
	prog, err := expr.Compile(r.When, expr.Env(ProductionEnv{}), expr.AsBool())
	if err != nil {
		return fmt.Errorf("compile production rule %q: %w", r.Name, err)
	}
	r.program = prog
	return nil
}

// CompileProductionRules compiles every rule in place.
//
// Postcondition: on success every rule is ready for Holds; on error no
// guarantee is made about the slice contents.
func CompileProductionRules(rules []*ProductionRule) error {
	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		if _, dup := seen[r.Name]; dup {
			return fmt.Errorf("production rule %q: duplicate name", r.Name)
		}
		seen[r.Name] = struct{}{}
		if err := r.compile(); err != nil {
			return err
		}
	}
	return nil
}

type yamlProductionFile struct {
	Production []*ProductionRule `yaml:"production"`
}

// ParseProductionRules decodes and compiles a production rule document.
func ParseProductionRules(data []byte) ([]*ProductionRule, error) {
	var f yamlProductionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("ai.ParseProductionRules: %w", err)
	}
	if len(f.Production) == 0 {
		return nil, errors.New("ai.ParseProductionRules: no rules under 'production'")
	}
	if err := CompileProductionRules(f.Production); err != nil {
		return nil, err
	}
	return f.Production, nil
}
