package state

// AttackRule selects how the attack range of a unit type is checked.
type AttackRule int

const (
	// MeleeAttack requires the target to be exactly one tile away.
	MeleeAttack AttackRule = iota
	// RangedAttack accepts any distance from 1 to the trait's AttackRange.
	RangedAttack
)

// Trait describes everything the rules engine and the AI need to know about
// a unit type. Callers look traits up instead of switching on UnitType.
type Trait struct {
	Type           UnitType
	Cost           int
	HP             int
	Damage         int // damage against units
	MoveRange      int
	ActionsPerTurn int
	MoveCooldown   int // turns a move locks further moves; siege only

	Attack      AttackRule
	AttackRange int

	// ThreatRange and ThreatValue feed the AI danger field.
	ThreatRange int
	ThreatValue int

	// Melee marks warrior-category units (warrior, chivalry) for AI counts.
	Melee bool
	// DangerWeight scales the danger penalty when scoring a destination.
	DangerWeight float64
	// SiegeExposure is the penalty for ending inside an enemy catapult's range.
	SiegeExposure float64
	// Priority orders units in the AI controller; lower acts first.
	Priority int
}

// Traits is the per-type trait table of a match.
type Traits [unitTypeCount]Trait

// NewTraits derives the trait table from cfg.
//
// Postcondition: every UnitType has a populated entry.
func NewTraits(cfg Config) Traits {
	var t Traits
	t[Warrior] = Trait{
		Type: Warrior, Cost: cfg.CostWarrior, HP: cfg.WarriorHP, Damage: cfg.WarriorDamage,
		MoveRange: cfg.WarriorMoveRange, ActionsPerTurn: 1,
		Attack: MeleeAttack, AttackRange: 1,
		ThreatRange: cfg.WarriorMoveRange + 1, ThreatValue: cfg.WarriorDamage,
		Melee: true, DangerWeight: 1.0, SiegeExposure: 15, Priority: 2,
	}
	t[Archer] = Trait{
		Type: Archer, Cost: cfg.CostArcher, HP: cfg.ArcherHP, Damage: cfg.ArcherDamage,
		MoveRange: cfg.ArcherMoveRange, ActionsPerTurn: 1,
		Attack: RangedAttack, AttackRange: cfg.ArcherRange,
		ThreatRange: cfg.ArcherMoveRange + cfg.ArcherRange, ThreatValue: cfg.ArcherDamage,
		DangerWeight: 2.0, SiegeExposure: 30, Priority: 1,
	}
	t[Chivalry] = Trait{
		Type: Chivalry, Cost: cfg.CostChivalry, HP: cfg.ChivalryHP, Damage: cfg.ChivalryDamage,
		MoveRange: cfg.ChivalryMoveRange, ActionsPerTurn: 2,
		Attack: MeleeAttack, AttackRange: 1,
		ThreatRange: cfg.ChivalryMoveRange + 1, ThreatValue: cfg.ChivalryDamage,
		Melee: true, DangerWeight: 1.0, SiegeExposure: 15, Priority: 2,
	}
	t[Engineer] = Trait{
		Type: Engineer, Cost: cfg.CostEngineer, HP: cfg.EngineerHP, Damage: cfg.EngineerDamage,
		MoveRange: cfg.EngineerMoveRange, ActionsPerTurn: 1,
		Attack: MeleeAttack, AttackRange: 1,
		ThreatRange: cfg.EngineerMoveRange + 1, ThreatValue: cfg.EngineerDamage,
		DangerWeight: 2.0, SiegeExposure: 40, Priority: 3,
	}
	t[Catapult] = Trait{
		Type: Catapult, Cost: cfg.CostCatapult, HP: cfg.CatapultHP, Damage: cfg.CatapultDamageVsUnits,
		MoveRange: cfg.CatapultMoveRange, ActionsPerTurn: 1, MoveCooldown: cfg.CatapultMoveCooldownTurns,
		Attack: RangedAttack, AttackRange: cfg.CatapultRange,
		ThreatRange: cfg.CatapultMoveRange + cfg.CatapultRange, ThreatValue: cfg.CatapultDamage * 2,
		DangerWeight: 2.0, SiegeExposure: 20, Priority: 0,
	}
	return t
}

// Of returns the trait of u. Unknown types yield the zero Trait.
func (t *Traits) Of(u UnitType) Trait {
	if u < 0 || u >= unitTypeCount {
		return Trait{}
	}
	return t[u]
}

// InAttackRange reports whether dist satisfies the attack rule of the trait.
func (tr Trait) InAttackRange(dist int) bool {
	if tr.Attack == MeleeAttack {
		return dist == 1
	}
	return dist >= 1 && dist <= tr.AttackRange
}
