package state

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Config holds every balance knob of a match. It is read-only once a match
// has started.
type Config struct {
	MapSize       int `mapstructure:"map_size" yaml:"map_size"`
	GoldTileCount int `mapstructure:"gold_tile_count" yaml:"gold_tile_count"`
	StartingGold  int `mapstructure:"starting_gold" yaml:"starting_gold"`

	CastleIncomePerTurn   int `mapstructure:"castle_income_per_turn" yaml:"castle_income_per_turn"`
	FortpostIncomePerTurn int `mapstructure:"fortpost_income_per_turn" yaml:"fortpost_income_per_turn"`

	CostFortpost int `mapstructure:"cost_fortpost" yaml:"cost_fortpost"`
	CostWarrior  int `mapstructure:"cost_warrior" yaml:"cost_warrior"`
	CostArcher   int `mapstructure:"cost_archer" yaml:"cost_archer"`
	CostChivalry int `mapstructure:"cost_chivalry" yaml:"cost_chivalry"`
	CostEngineer int `mapstructure:"cost_engineer" yaml:"cost_engineer"`
	CostCatapult int `mapstructure:"cost_catapult" yaml:"cost_catapult"`

	CastleHP   int `mapstructure:"castle_hp" yaml:"castle_hp"`
	FortpostHP int `mapstructure:"fortpost_hp" yaml:"fortpost_hp"`

	WarriorHP        int `mapstructure:"warrior_hp" yaml:"warrior_hp"`
	WarriorDamage    int `mapstructure:"warrior_damage" yaml:"warrior_damage"`
	WarriorMoveRange int `mapstructure:"warrior_move_range" yaml:"warrior_move_range"`

	ArcherHP        int `mapstructure:"archer_hp" yaml:"archer_hp"`
	ArcherDamage    int `mapstructure:"archer_damage" yaml:"archer_damage"`
	ArcherMoveRange int `mapstructure:"archer_move_range" yaml:"archer_move_range"`
	ArcherRange     int `mapstructure:"archer_range" yaml:"archer_range"`

	ChivalryHP        int `mapstructure:"chivalry_hp" yaml:"chivalry_hp"`
	ChivalryDamage    int `mapstructure:"chivalry_damage" yaml:"chivalry_damage"`
	ChivalryMoveRange int `mapstructure:"chivalry_move_range" yaml:"chivalry_move_range"`

	EngineerHP        int `mapstructure:"engineer_hp" yaml:"engineer_hp"`
	EngineerDamage    int `mapstructure:"engineer_damage" yaml:"engineer_damage"`
	EngineerMoveRange int `mapstructure:"engineer_move_range" yaml:"engineer_move_range"`

	CatapultHP                int `mapstructure:"catapult_hp" yaml:"catapult_hp"`
	CatapultDamage            int `mapstructure:"catapult_damage" yaml:"catapult_damage"`
	CatapultDamageVsUnits     int `mapstructure:"catapult_damage_vs_units" yaml:"catapult_damage_vs_units"`
	CatapultRange             int `mapstructure:"catapult_range" yaml:"catapult_range"`
	CatapultMoveRange         int `mapstructure:"catapult_move_range" yaml:"catapult_move_range"`
	CatapultMoveCooldownTurns int `mapstructure:"catapult_move_cooldown_turns" yaml:"catapult_move_cooldown_turns"`

	// Multipliers applied to the base damage when a building is struck.
	NonCatapultCastleMultiplier   float64 `mapstructure:"damage_multiplier_on_castle_from_non_catapult" yaml:"damage_multiplier_on_castle_from_non_catapult"`
	NonCatapultFortpostMultiplier float64 `mapstructure:"damage_multiplier_on_fortpost_from_non_catapult" yaml:"damage_multiplier_on_fortpost_from_non_catapult"`
	CatapultCastleMultiplier      float64 `mapstructure:"catapult_castle_multiplier" yaml:"catapult_castle_multiplier"`
	CatapultFortpostMultiplier    float64 `mapstructure:"catapult_fort_multiplier" yaml:"catapult_fort_multiplier"`
}

// DefaultConfig returns the stock balance.
func DefaultConfig() Config {
	return Config{
		MapSize:       8,
		GoldTileCount: 6,
		StartingGold:  40,

		CastleIncomePerTurn:   10,
		FortpostIncomePerTurn: 7,

		CostFortpost: 70,
		CostWarrior:  10,
		CostArcher:   16,
		CostChivalry: 28,
		CostEngineer: 15,
		CostCatapult: 38,

		CastleHP:   80,
		FortpostHP: 40,

		WarriorHP:        24,
		WarriorDamage:    8,
		WarriorMoveRange: 1,

		ArcherHP:        14,
		ArcherDamage:    6,
		ArcherMoveRange: 1,
		ArcherRange:     3,

		ChivalryHP:        32,
		ChivalryDamage:    8,
		ChivalryMoveRange: 1,

		EngineerHP:        14,
		EngineerDamage:    2,
		EngineerMoveRange: 1,

		CatapultHP:                26,
		CatapultDamage:            14,
		CatapultDamageVsUnits:     6,
		CatapultRange:             4,
		CatapultMoveRange:         1,
		CatapultMoveCooldownTurns: 1,

		NonCatapultCastleMultiplier:   0.5,
		NonCatapultFortpostMultiplier: 0.65,
		CatapultCastleMultiplier:      1.6,
		CatapultFortpostMultiplier:    1.3,
	}
}

// UnitCost returns the gold cost of a unit type.
func (c Config) UnitCost(t UnitType) int {
	switch t {
	case Warrior:
		return c.CostWarrior
	case Archer:
		return c.CostArcher
	case Chivalry:
		return c.CostChivalry
	case Engineer:
		return c.CostEngineer
	case Catapult:
		return c.CostCatapult
	}
	return 0
}

// BuildingHP returns the starting hit points of a building type.
func (c Config) BuildingHP(t BuildingType) int {
	if t == Fortpost {
		return c.FortpostHP
	}
	return c.CastleHP
}

// BuildingIncome returns the per-turn income of a living building.
func (c Config) BuildingIncome(t BuildingType) int {
	if t == Fortpost {
		return c.FortpostIncomePerTurn
	}
	return c.CastleIncomePerTurn
}

// Validate checks every balance invariant.
//
// Postcondition: Returns nil if the configuration is playable, or an error
// describing all violations.
func (c Config) Validate() error {
	var errs []string

	if c.MapSize < 4 {
		errs = append(errs, fmt.Sprintf("map_size must be >= 4, got %d", c.MapSize))
	}
	if c.GoldTileCount < 0 {
		errs = append(errs, fmt.Sprintf("gold_tile_count must be >= 0, got %d", c.GoldTileCount))
	} else if c.MapSize >= 4 && c.GoldTileCount > c.MapSize*c.MapSize-2 {
		errs = append(errs, fmt.Sprintf("gold_tile_count must leave room for both castles, got %d", c.GoldTileCount))
	}
	if c.StartingGold < 0 {
		errs = append(errs, fmt.Sprintf("starting_gold must be >= 0, got %d", c.StartingGold))
	}

	nonNegative := map[string]int{
		"castle_income_per_turn":       c.CastleIncomePerTurn,
		"fortpost_income_per_turn":     c.FortpostIncomePerTurn,
		"cost_fortpost":                c.CostFortpost,
		"cost_warrior":                 c.CostWarrior,
		"cost_archer":                  c.CostArcher,
		"cost_chivalry":                c.CostChivalry,
		"cost_engineer":                c.CostEngineer,
		"cost_catapult":                c.CostCatapult,
		"warrior_damage":               c.WarriorDamage,
		"archer_damage":                c.ArcherDamage,
		"chivalry_damage":              c.ChivalryDamage,
		"engineer_damage":              c.EngineerDamage,
		"catapult_damage":              c.CatapultDamage,
		"catapult_damage_vs_units":     c.CatapultDamageVsUnits,
		"catapult_move_cooldown_turns": c.CatapultMoveCooldownTurns,
	}
	positive := map[string]int{
		"castle_hp":           c.CastleHP,
		"fortpost_hp":         c.FortpostHP,
		"warrior_hp":          c.WarriorHP,
		"archer_hp":           c.ArcherHP,
		"chivalry_hp":         c.ChivalryHP,
		"engineer_hp":         c.EngineerHP,
		"catapult_hp":         c.CatapultHP,
		"warrior_move_range":  c.WarriorMoveRange,
		"archer_move_range":   c.ArcherMoveRange,
		"chivalry_move_range": c.ChivalryMoveRange,
		"engineer_move_range": c.EngineerMoveRange,
		"catapult_move_range": c.CatapultMoveRange,
		"archer_range":        c.ArcherRange,
		"catapult_range":      c.CatapultRange,
	}
	for _, key := range slices.Sorted(maps.Keys(nonNegative)) {
		if nonNegative[key] < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0, got %d", key, nonNegative[key]))
		}
	}
	for _, key := range slices.Sorted(maps.Keys(positive)) {
		if positive[key] < 1 {
			errs = append(errs, fmt.Sprintf("%s must be >= 1, got %d", key, positive[key]))
		}
	}

	multipliers := []struct {
		key string
		v   float64
	}{
		{"damage_multiplier_on_castle_from_non_catapult", c.NonCatapultCastleMultiplier},
		{"damage_multiplier_on_fortpost_from_non_catapult", c.NonCatapultFortpostMultiplier},
		{"catapult_castle_multiplier", c.CatapultCastleMultiplier},
		{"catapult_fort_multiplier", c.CatapultFortpostMultiplier},
	}
	for _, m := range multipliers {
		if m.v < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0, got %g", m.key, m.v))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("balance validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
