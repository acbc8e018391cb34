package rules

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/bastion/internal/game/combat"
	"github.com/cory-johannsen/bastion/internal/game/state"
)

// CanCreateUnit reports whether player may spawn a unit of type t at the
// building.
func (e *Engine) CanCreateUnit(player state.PlayerID, buildingID int, t state.UnitType) bool {
	if e.gs.GameOver || player != e.gs.CurrentPlayer {
		return false
	}
	b, ok := e.gs.Building(buildingID)
	if !ok || b.Owner != player || b.Destroyed() || !b.Type.IsProducer() {
		return false
	}
	tr := e.traits.Of(t)
	if tr.HP == 0 {
		return false
	}
	if e.gs.Tile(b.X, b.Y).HasUnit() {
		return false
	}
	return e.gs.Player(player).Gold >= tr.Cost
}

// CreateUnit spawns a unit on the building's tile.
//
// Postcondition: on success the cost is debited, the unit is placed with its
// full action budget and the production statistics are updated; otherwise
// nothing changes and ok is false.
func (e *Engine) CreateUnit(player state.PlayerID, buildingID int, t state.UnitType) (*state.Unit, bool) {
	if !e.CanCreateUnit(player, buildingID, t) {
		return nil, false
	}
	b, _ := e.gs.Building(buildingID)
	tr := e.traits.Of(t)

	e.gs.Player(player).Gold -= tr.Cost
	e.gs.Stats.UnitsCreated++
	e.gs.Stats.GoldSpent += tr.Cost
	u := e.gs.AddUnit(player, tr, b.X, b.Y)

	e.logger.Debug("unit created",
		zap.Stringer("player", player),
		zap.Stringer("type", t),
		zap.Int("unit_id", u.ID),
		zap.Int("building_id", b.ID),
		zap.Int("cost", tr.Cost),
	)
	e.emit(Event{Kind: UnitCreated, Player: player, UnitID: u.ID, BuildingID: b.ID, X: u.X, Y: u.Y, HP: u.HP, Amount: tr.Cost})
	return u, true
}

// CanMoveUnit reports whether the unit may move to (x, y) this turn.
func (e *Engine) CanMoveUnit(unitID, x, y int) bool {
	u, ok := e.activeUnit(unitID)
	if !ok {
		return false
	}
	t := e.gs.Tile(x, y)
	if t == nil || t.HasUnit() {
		return false
	}
	if state.Manhattan(u.X, u.Y, x, y) > u.MoveRange {
		return false
	}
	return u.MoveCooldownRemaining == 0
}

// MoveUnit relocates the unit.
//
// Postcondition: on success occupancy moves with the unit, one action is
// spent and a siege unit's move cooldown is armed.
func (e *Engine) MoveUnit(unitID, x, y int) bool {
	if !e.CanMoveUnit(unitID, x, y) {
		return false
	}
	u, _ := e.gs.Unit(unitID)
	e.gs.Tile(u.X, u.Y).UnitID = state.NoID
	u.X, u.Y = x, y
	e.gs.Tile(x, y).UnitID = u.ID

	spendAction(u)
	if cd := e.traits.Of(u.Type).MoveCooldown; cd > 0 {
		u.MoveCooldownRemaining = cd
	}

	e.logger.Debug("unit moved",
		zap.Int("unit_id", u.ID),
		zap.Int("x", x),
		zap.Int("y", y),
		zap.Int("actions_left", u.ActionsLeft),
	)
	e.emit(Event{Kind: UnitMoved, Player: u.Owner, UnitID: u.ID, BuildingID: state.NoID, X: x, Y: y, HP: u.HP})
	return true
}

// CanAttack reports whether the unit may strike the tile (x, y). The struck
// entity is the unit on the tile if any, otherwise the building; it must
// belong to the opponent. A tile holding one of the attacker's own buildings
// is never a target, even when an enemy unit stands on it.
func (e *Engine) CanAttack(attackerID, x, y int) bool {
	u, ok := e.activeUnit(attackerID)
	if !ok {
		return false
	}
	t := e.gs.Tile(x, y)
	if t == nil {
		return false
	}
	if t.HasBuilding() {
		if b, _ := e.gs.Building(t.BuildingID); b.Owner == u.Owner {
			return false
		}
	}
	switch {
	case t.HasUnit():
		target, _ := e.gs.Unit(t.UnitID)
		if target.Owner == u.Owner {
			return false
		}
	case t.HasBuilding():
		target, _ := e.gs.Building(t.BuildingID)
		if target.Owner == u.Owner {
			return false
		}
	default:
		return false
	}
	return e.traits.Of(u.Type).InAttackRange(state.Manhattan(u.X, u.Y, x, y))
}

// Attack strikes the tile (x, y).
//
// Postcondition: on success the target loses hit points; a unit reaching 0 is
// removed from the grid and counted as killed; a building reaching 0 is
// removed and, if it was a castle, the match ends with the castle owner's
// opponent as winner. One action is spent.
func (e *Engine) Attack(attackerID, x, y int) bool {
	if !e.CanAttack(attackerID, x, y) {
		return false
	}
	u, _ := e.gs.Unit(attackerID)
	t := e.gs.Tile(x, y)

	if t.HasUnit() {
		target, _ := e.gs.Unit(t.UnitID)
		res := combat.StrikeUnit(&e.traits, u, target)
		e.emit(Event{Kind: UnitDamaged, Player: target.Owner, UnitID: target.ID, BuildingID: state.NoID, X: x, Y: y, HP: target.HP, Amount: res.Damage})
		if res.Lethal {
			t.UnitID = state.NoID
			e.gs.Stats.UnitsKilled++
			e.logger.Debug("unit killed",
				zap.Int("unit_id", target.ID),
				zap.Int("attacker_id", u.ID),
			)
			e.emit(Event{Kind: UnitKilled, Player: target.Owner, UnitID: target.ID, BuildingID: state.NoID, X: x, Y: y})
		}
	} else {
		target, _ := e.gs.Building(t.BuildingID)
		res := combat.StrikeBuilding(e.gs.Config, &e.traits, u, target)
		e.emit(Event{Kind: BuildingDamaged, Player: target.Owner, UnitID: state.NoID, BuildingID: target.ID, X: x, Y: y, HP: target.HP, Amount: res.Damage})
		if res.Lethal {
			t.BuildingID = state.NoID
			e.emit(Event{Kind: BuildingDestroyed, Player: target.Owner, UnitID: state.NoID, BuildingID: target.ID, X: x, Y: y})
			if target.Type == state.Castle {
				e.endMatch(state.Opponent(target.Owner))
			}
		}
	}

	spendAction(u)
	e.logger.Debug("unit attacked",
		zap.Int("unit_id", u.ID),
		zap.Int("x", x),
		zap.Int("y", y),
		zap.Int("actions_left", u.ActionsLeft),
	)
	return true
}

func (e *Engine) endMatch(winner state.PlayerID) {
	if e.gs.GameOver {
		return
	}
	e.gs.GameOver = true
	e.gs.Winner = winner
	e.logger.Info("castle destroyed, match over",
		zap.Stringer("winner", winner),
		zap.Int("turns_played", e.gs.Stats.TurnsPlayed),
	)
	e.emit(Event{Kind: GameOver, Player: winner, UnitID: state.NoID, BuildingID: state.NoID})
}

// CanPlaceFortpost reports whether the engineer may build on its tile.
func (e *Engine) CanPlaceFortpost(engineerID int) bool {
	u, ok := e.activeUnit(engineerID)
	if !ok || u.Type != state.Engineer {
		return false
	}
	t := e.gs.Tile(u.X, u.Y)
	if t.Terrain != state.Gold || t.HasBuilding() {
		return false
	}
	return e.gs.Player(u.Owner).Gold >= e.gs.Config.CostFortpost
}

// PlaceFortpost builds a fortpost under the engineer.
//
// Postcondition: on success the cost is debited, a full-health fortpost owned
// by the engineer's faction stands on the tile and the engineer has used its
// turn. ActionsLeft is left untouched.
func (e *Engine) PlaceFortpost(engineerID int) bool {
	if !e.CanPlaceFortpost(engineerID) {
		return false
	}
	u, _ := e.gs.Unit(engineerID)
	cost := e.gs.Config.CostFortpost
	e.gs.Player(u.Owner).Gold -= cost
	e.gs.Stats.GoldSpent += cost
	b := e.gs.AddBuilding(u.Owner, state.Fortpost, u.X, u.Y)
	u.HasActedThisTurn = true

	e.logger.Debug("fortpost placed",
		zap.Int("engineer_id", u.ID),
		zap.Int("building_id", b.ID),
		zap.Int("x", b.X),
		zap.Int("y", b.Y),
	)
	e.emit(Event{Kind: FortpostPlaced, Player: u.Owner, UnitID: u.ID, BuildingID: b.ID, X: b.X, Y: b.Y, HP: b.HP, Amount: cost})
	return true
}
