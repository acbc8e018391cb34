package ai

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
)

//go:embed doctrine/goals.yaml doctrine/goals.lua doctrine/production.yaml
var embeddedDoctrine embed.FS

const (
	goalsFile      = "goals.yaml"
	productionFile = "production.yaml"
)

// Doctrine bundles the data that shapes the opponent's play: the goal HTN
// domain, the Lua preconditions it references and the production rules.
type Doctrine struct {
	Goals      *Domain
	Scripts    fs.FS
	Production []*ProductionRule
}

// DefaultDoctrine returns the built-in doctrine.
func DefaultDoctrine() (*Doctrine, error) {
	sub, err := fs.Sub(embeddedDoctrine, "doctrine")
	if err != nil {
		return nil, fmt.Errorf("ai.DefaultDoctrine: %w", err)
	}
	return LoadDoctrineFS(sub)
}

// LoadDoctrine reads a doctrine from dir. Any of goals.yaml, production.yaml
// or the Lua scripts missing from dir falls back to the built-in file.
//
// Precondition: dir must be a readable directory.
func LoadDoctrine(dir string) (*Doctrine, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("ai.LoadDoctrine: %w", err)
	}
	sub, err := fs.Sub(embeddedDoctrine, "doctrine")
	if err != nil {
		return nil, fmt.Errorf("ai.LoadDoctrine: %w", err)
	}
	return LoadDoctrineFS(overlayFS{top: os.DirFS(dir), base: sub})
}

// LoadDoctrineFS reads goals.yaml, production.yaml and every root-level
// *.lua file from fsys.
//
// Postcondition: returns a fully validated Doctrine or a non-nil error.
func LoadDoctrineFS(fsys fs.FS) (*Doctrine, error) {
	data, err := fs.ReadFile(fsys, goalsFile)
	if err != nil {
		return nil, fmt.Errorf("ai.LoadDoctrine: reading %s: %w", goalsFile, err)
	}
	goals, err := ParseDomain(data)
	if err != nil {
		return nil, fmt.Errorf("ai.LoadDoctrine: %s: %w", goalsFile, err)
	}
	if err := validateGoalOperators(goals); err != nil {
		return nil, fmt.Errorf("ai.LoadDoctrine: %s: %w", goalsFile, err)
	}

	data, err = fs.ReadFile(fsys, productionFile)
	if err != nil {
		return nil, fmt.Errorf("ai.LoadDoctrine: reading %s: %w", productionFile, err)
	}
	rules, err := ParseProductionRules(data)
	if err != nil {
		return nil, fmt.Errorf("ai.LoadDoctrine: %s: %w", productionFile, err)
	}
	return &Doctrine{Goals: goals, Scripts: fsys, Production: rules}, nil
}

func validateGoalOperators(d *Domain) error {
	for _, op := range d.Operators {
		if op.Action != goalAction {
			continue
		}
		if _, err := ParseGoal(op.Target); err != nil {
			return fmt.Errorf("operator %q: %w", op.ID, err)
		}
	}
	return nil
}

// overlayFS serves files from top, falling back to base for files top lacks.
// Directory listings are the union of both.
type overlayFS struct {
	top  fs.FS
	base fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	f, err := o.top.Open(name)
	if err == nil {
		return f, nil
	}
	return o.base.Open(name)
}

func (o overlayFS) ReadDir(name string) ([]fs.DirEntry, error) {
	seen := map[string]bool{}
	var out []fs.DirEntry
	for _, fsys := range []fs.FS{o.top, o.base} {
		entries, err := fs.ReadDir(fsys, name)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !seen[e.Name()] {
				seen[e.Name()] = true
				out = append(out, e)
			}
		}
	}
	return out, nil
}
