// Package combat resolves the damage of a single strike. It computes and
// applies hit-point changes; legality and turn bookkeeping belong to the
// rules engine.
package combat

import (
	"math"

	"github.com/cory-johannsen/bastion/internal/game/state"
)

// TargetKind distinguishes strikes on units from strikes on buildings.
type TargetKind int

const (
	TargetUnit TargetKind = iota
	TargetBuilding
)

// String returns a human-readable target label.
func (k TargetKind) String() string {
	if k == TargetBuilding {
		return "building"
	}
	return "unit"
}

// UnitDamage returns the damage an attacker of type t deals to a unit.
func UnitDamage(traits *state.Traits, t state.UnitType) int {
	return traits.Of(t).Damage
}

// BuildingMultiplier returns the structural multiplier for an attacker of
// type t striking a building of type bt.
func BuildingMultiplier(cfg state.Config, t state.UnitType, bt state.BuildingType) float64 {
	if t == state.Catapult {
		if bt == state.Castle {
			return cfg.CatapultCastleMultiplier
		}
		return cfg.CatapultFortpostMultiplier
	}
	if bt == state.Castle {
		return cfg.NonCatapultCastleMultiplier
	}
	return cfg.NonCatapultFortpostMultiplier
}

// BuildingBaseDamage returns the damage before the structural multiplier.
// Catapults use their anti-building damage; everything else its unit damage.
func BuildingBaseDamage(cfg state.Config, traits *state.Traits, t state.UnitType) int {
	if t == state.Catapult {
		return cfg.CatapultDamage
	}
	return traits.Of(t).Damage
}

// BuildingDamage returns the rounded damage an attacker of type t deals to a
// building of type bt. Halves round to even.
//
// Postcondition: Returns >= 0 for a valid configuration.
func BuildingDamage(cfg state.Config, traits *state.Traits, t state.UnitType, bt state.BuildingType) int {
	base := float64(BuildingBaseDamage(cfg, traits, t))
	return int(math.RoundToEven(base * BuildingMultiplier(cfg, t, bt)))
}
