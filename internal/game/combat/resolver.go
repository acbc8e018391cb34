package combat

import "github.com/cory-johannsen/bastion/internal/game/state"

// AttackResult holds the outcome of a single strike.
type AttackResult struct {
	// AttackerID is the striking unit's ID.
	AttackerID int
	// Target is the kind of entity that was hit.
	Target TargetKind
	// TargetID is the struck unit or building ID.
	TargetID int
	// Damage is the hit-point loss after multipliers and rounding.
	Damage int
	// RemainingHP is the target's hit points after the strike, floored at 0.
	RemainingHP int
	// Lethal is true when the strike killed the unit or razed the building.
	Lethal bool
}

// StrikeUnit applies the attacker's unit damage to target.
//
// Precondition: attacker and target must be non-nil and alive.
// Postcondition: target.HP is in [0, MaxHP]; target.Dead iff target.HP == 0.
func StrikeUnit(traits *state.Traits, attacker, target *state.Unit) AttackResult {
	dmg := UnitDamage(traits, attacker.Type)
	target.HP = floorZero(target.HP - dmg)
	if target.HP == 0 {
		target.Dead = true
	}
	return AttackResult{
		AttackerID:  attacker.ID,
		Target:      TargetUnit,
		TargetID:    target.ID,
		Damage:      dmg,
		RemainingHP: target.HP,
		Lethal:      target.Dead,
	}
}

// StrikeBuilding applies the attacker's structural damage to target.
//
// Precondition: attacker and target must be non-nil; target must be standing.
// Postcondition: target.HP is in [0, MaxHP].
func StrikeBuilding(cfg state.Config, traits *state.Traits, attacker *state.Unit, target *state.Building) AttackResult {
	dmg := BuildingDamage(cfg, traits, attacker.Type, target.Type)
	target.HP = floorZero(target.HP - dmg)
	return AttackResult{
		AttackerID:  attacker.ID,
		Target:      TargetBuilding,
		TargetID:    target.ID,
		Damage:      dmg,
		RemainingHP: target.HP,
		Lethal:      target.Destroyed(),
	}
}

func floorZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
