package world

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/bastion/internal/game/state"
)

// yamlScenarioFile is the top-level YAML structure for scenario files.
type yamlScenarioFile struct {
	Scenario Scenario `yaml:"scenario"`
}

// Scenario is a hand-authored starting position. Castles are always placed at
// their fixed positions; the scenario supplies gold tiles, pre-placed units and
// optional treasury overrides.
type Scenario struct {
	Name        string              `yaml:"name"`
	Description string              `yaml:"description"`
	GoldTiles   []state.Point       `yaml:"gold_tiles"`
	Units       []Placement         `yaml:"units"`
	Gold        map[string]int      `yaml:"gold"`
	Fortposts   []FortpostPlacement `yaml:"fortposts"`
}

// Placement positions one unit.
type Placement struct {
	Owner string `yaml:"owner"`
	Type  string `yaml:"type"`
	X     int    `yaml:"x"`
	Y     int    `yaml:"y"`
}

// FortpostPlacement positions one pre-built fortpost.
type FortpostPlacement struct {
	Owner string `yaml:"owner"`
	X     int    `yaml:"x"`
	Y     int    `yaml:"y"`
}

// LoadScenario parses a scenario YAML file.
//
// Precondition: path must be readable.
// Postcondition: Returns a Scenario or a non-nil error.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML from memory.
func ParseScenario(data []byte) (*Scenario, error) {
	var f yamlScenarioFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}
	if f.Scenario.Name == "" {
		return nil, fmt.Errorf("scenario name must not be empty")
	}
	return &f.Scenario, nil
}

// Build creates the starting state described by the scenario.
//
// Precondition: cfg must pass Validate.
// Postcondition: Returns a state that passes Validate, or an error naming the
// first illegal placement.
func (s *Scenario) Build(cfg state.Config) (*state.GameState, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	gs := state.New(cfg)
	placeCastles(gs)
	traits := state.NewTraits(cfg)

	for _, p := range s.GoldTiles {
		t := gs.Tile(p.X, p.Y)
		if t == nil || t.HasBuilding() {
			return nil, fmt.Errorf("scenario %q: gold tile (%d,%d) is off-map or under a building", s.Name, p.X, p.Y)
		}
		t.Terrain = state.Gold
	}
	for _, f := range s.Fortposts {
		owner, err := parseOwner(f.Owner)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
		}
		t := gs.Tile(f.X, f.Y)
		if t == nil || t.HasBuilding() {
			return nil, fmt.Errorf("scenario %q: fortpost (%d,%d) is off-map or occupied", s.Name, f.X, f.Y)
		}
		gs.AddBuilding(owner, state.Fortpost, f.X, f.Y)
	}
	for _, u := range s.Units {
		owner, err := parseOwner(u.Owner)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
		}
		ut, ok := state.ParseUnitType(u.Type)
		if !ok {
			return nil, fmt.Errorf("scenario %q: unknown unit type %q", s.Name, u.Type)
		}
		t := gs.Tile(u.X, u.Y)
		if t == nil || t.HasUnit() {
			return nil, fmt.Errorf("scenario %q: unit (%d,%d) is off-map or occupied", s.Name, u.X, u.Y)
		}
		gs.AddUnit(owner, traits.Of(ut), u.X, u.Y)
	}
	for name, gold := range s.Gold {
		owner, err := parseOwner(name)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
		}
		if gold < 0 {
			return nil, fmt.Errorf("scenario %q: gold for %s must be >= 0", s.Name, name)
		}
		gs.Player(owner).Gold = gold
	}
	return gs, nil
}

func parseOwner(name string) (state.PlayerID, error) {
	switch name {
	case "human":
		return state.Human, nil
	case "ai":
		return state.AI, nil
	}
	return state.NoPlayer, fmt.Errorf("unknown owner %q (want human or ai)", name)
}
