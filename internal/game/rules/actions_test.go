package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/bastion/internal/game/state"
)

func TestCreateUnit_MountedGetsTwoActions(t *testing.T) {
	e := newTestEngine(t)
	e.gs.Player(state.Human).Gold = 50

	var events []Event
	e.Subscribe(func(ev Event) { events = append(events, ev) })

	u, ok := e.CreateUnit(state.Human, 0, state.Chivalry)
	require.True(t, ok)
	assert.Equal(t, 22, e.Gold(state.Human))
	assert.Equal(t, state.Point{X: 1, Y: 1}, u.Pos())
	assert.Equal(t, 2, u.ActionsLeft)
	assert.Equal(t, 32, u.HP)
	assert.Equal(t, u.ID, e.gs.Tile(1, 1).UnitID)
	assert.Equal(t, 1, e.gs.Stats.UnitsCreated)
	assert.Equal(t, 28, e.gs.Stats.GoldSpent)

	require.Len(t, events, 1)
	assert.Equal(t, UnitCreated, events[0].Kind)
	assert.Equal(t, 28, events[0].Amount)
}

func TestCreateUnit_Refusals(t *testing.T) {
	cases := map[string]func(e *Engine) (state.PlayerID, int, state.UnitType){
		"enemy building":   func(e *Engine) (state.PlayerID, int, state.UnitType) { return state.Human, 1, state.Warrior },
		"unknown building": func(e *Engine) (state.PlayerID, int, state.UnitType) { return state.Human, 9, state.Warrior },
		"negative id":      func(e *Engine) (state.PlayerID, int, state.UnitType) { return state.Human, -1, state.Warrior },
		"too expensive":    func(e *Engine) (state.PlayerID, int, state.UnitType) { return state.Human, 0, state.Catapult },
		"not your turn":    func(e *Engine) (state.PlayerID, int, state.UnitType) { return state.AI, 1, state.Warrior },
		"unknown type":     func(e *Engine) (state.PlayerID, int, state.UnitType) { return state.Human, 0, state.UnitType(17) },
		"producer occupied": func(e *Engine) (state.PlayerID, int, state.UnitType) {
			place(e, state.Human, state.Warrior, 1, 1)
			return state.Human, 0, state.Warrior
		},
		"destroyed producer": func(e *Engine) (state.PlayerID, int, state.UnitType) {
			e.gs.Buildings[0].HP = 0
			e.gs.Tile(1, 1).BuildingID = state.NoID
			return state.Human, 0, state.Warrior
		},
		"game over": func(e *Engine) (state.PlayerID, int, state.UnitType) {
			e.gs.GameOver, e.gs.Winner = true, state.AI
			return state.Human, 0, state.Warrior
		},
	}
	for name, setup := range cases {
		t.Run(name, func(t *testing.T) {
			e := newTestEngine(t)
			p, b, ut := setup(e)
			before := e.Snapshot()
			assert.False(t, e.CanCreateUnit(p, b, ut))
			u, ok := e.CreateUnit(p, b, ut)
			assert.False(t, ok)
			assert.Nil(t, u)
			assert.Equal(t, before, e.gs, "refused action must not mutate state")
		})
	}
}

func TestCreateUnit_FromFortpost(t *testing.T) {
	e := newTestEngine(t)
	e.gs.AddBuilding(state.Human, state.Fortpost, 4, 2)
	u, ok := e.CreateUnit(state.Human, 2, state.Archer)
	require.True(t, ok)
	assert.Equal(t, state.Point{X: 4, Y: 2}, u.Pos())
	assert.Equal(t, 24, e.Gold(state.Human))
}

func TestMoveUnit_ChivalryTwoMovesThenExhausted(t *testing.T) {
	e := newTestEngine(t)
	c := place(e, state.Human, state.Chivalry, 3, 3)

	require.True(t, e.MoveUnit(c.ID, 3, 4))
	assert.Equal(t, 1, c.ActionsLeft)
	assert.False(t, c.HasActedThisTurn)
	assert.Equal(t, state.NoID, e.gs.Tile(3, 3).UnitID)
	assert.Equal(t, c.ID, e.gs.Tile(3, 4).UnitID)

	require.True(t, e.MoveUnit(c.ID, 4, 4))
	assert.Equal(t, 0, c.ActionsLeft)
	assert.True(t, c.HasActedThisTurn)
	assert.False(t, e.CanMoveUnit(c.ID, 5, 4))
	assert.False(t, e.MoveUnit(c.ID, 5, 4))
}

func TestMoveUnit_Refusals(t *testing.T) {
	e := newTestEngine(t)
	w := place(e, state.Human, state.Warrior, 3, 3)
	place(e, state.Human, state.Archer, 3, 4)
	enemy := place(e, state.AI, state.Warrior, 5, 5)

	assert.False(t, e.CanMoveUnit(w.ID, 3, 4), "occupied")
	assert.False(t, e.CanMoveUnit(w.ID, 4, 4), "diagonal is distance 2")
	assert.False(t, e.CanMoveUnit(w.ID, 3, 3), "own tile is occupied by itself")
	assert.False(t, e.CanMoveUnit(w.ID, -1, 3), "out of bounds")
	assert.False(t, e.CanMoveUnit(enemy.ID, 5, 4), "not the mover's turn")
	assert.False(t, e.CanMoveUnit(42, 0, 0), "unknown unit")
	assert.True(t, e.CanMoveUnit(w.ID, 2, 3))
}

func TestMoveUnit_OntoOwnBuilding(t *testing.T) {
	e := newTestEngine(t)
	w := place(e, state.Human, state.Warrior, 1, 2)
	require.True(t, e.MoveUnit(w.ID, 1, 1))
	assert.Equal(t, 0, e.gs.Tile(1, 1).BuildingID)
	assert.Equal(t, w.ID, e.gs.Tile(1, 1).UnitID)
}

func TestAttack_MeleeKillsUnit(t *testing.T) {
	e := newTestEngine(t)
	w := place(e, state.Human, state.Warrior, 3, 3)
	target := place(e, state.AI, state.Engineer, 3, 4)
	target.HP = 8

	var kinds []EventKind
	e.Subscribe(func(ev Event) { kinds = append(kinds, ev.Kind) })

	require.True(t, e.Attack(w.ID, 3, 4))
	assert.Equal(t, 0, target.HP)
	assert.True(t, target.Dead)
	assert.Equal(t, state.NoID, e.gs.Tile(3, 4).UnitID)
	assert.Equal(t, 1, e.gs.Stats.UnitsKilled)
	assert.True(t, w.HasActedThisTurn)
	assert.Equal(t, []EventKind{UnitDamaged, UnitKilled}, kinds)
	assert.NoError(t, e.gs.Validate())
}

func TestAttack_RangeRules(t *testing.T) {
	e := newTestEngine(t)
	w := place(e, state.Human, state.Warrior, 2, 4)
	a := place(e, state.Human, state.Archer, 3, 2)
	cat := place(e, state.Human, state.Catapult, 0, 4)
	place(e, state.AI, state.Warrior, 4, 4)

	assert.False(t, e.CanAttack(w.ID, 4, 4), "melee needs adjacency")
	assert.True(t, e.CanAttack(a.ID, 4, 4), "archer at distance 3")
	assert.True(t, e.CanAttack(cat.ID, 4, 4), "catapult at distance 4")

	require.True(t, e.MoveUnit(w.ID, 3, 4))
	w.ActionsLeft, w.HasActedThisTurn = 1, false
	assert.True(t, e.CanAttack(w.ID, 4, 4))
}

func TestAttack_Refusals(t *testing.T) {
	e := newTestEngine(t)
	w := place(e, state.Human, state.Warrior, 2, 1)
	place(e, state.Human, state.Archer, 3, 1)

	assert.False(t, e.CanAttack(w.ID, 1, 1), "own castle")
	assert.False(t, e.CanAttack(w.ID, 3, 1), "own unit")
	assert.False(t, e.CanAttack(w.ID, 2, 2), "empty tile")
	assert.False(t, e.CanAttack(w.ID, 9, 9), "out of bounds")
	assert.False(t, e.Attack(w.ID, 3, 1))
	assert.Equal(t, 1, w.ActionsLeft)
}

func TestAttack_RefusesTileWithOwnBuilding(t *testing.T) {
	e := newTestEngine(t)
	w := place(e, state.Human, state.Warrior, 1, 2)
	intruder := place(e, state.AI, state.Warrior, 1, 1)
	actions := w.ActionsLeft

	assert.False(t, e.CanAttack(w.ID, 1, 1))
	assert.False(t, e.Attack(w.ID, 1, 1))
	assert.Equal(t, 24, intruder.HP)
	assert.Equal(t, 80, e.gs.Buildings[0].HP)
	assert.Equal(t, actions, w.ActionsLeft)
}

func TestAttack_BuildingMultipliers(t *testing.T) {
	e := newTestEngine(t)
	w := place(e, state.Human, state.Warrior, 6, 5)
	cat := place(e, state.Human, state.Catapult, 6, 2)

	require.True(t, e.Attack(w.ID, 6, 6))
	assert.Equal(t, 76, e.gs.Buildings[1].HP)
	require.True(t, e.Attack(cat.ID, 6, 6))
	assert.Equal(t, 54, e.gs.Buildings[1].HP)
}

func TestAttack_CastleDestructionEndsMatch(t *testing.T) {
	e := newTestEngine(t)
	cat := place(e, state.Human, state.Catapult, 6, 3)
	w := place(e, state.Human, state.Warrior, 5, 6)
	e.gs.Buildings[1].HP = 20

	var kinds []EventKind
	e.Subscribe(func(ev Event) { kinds = append(kinds, ev.Kind) })

	require.True(t, e.Attack(cat.ID, 6, 6))
	assert.True(t, e.GameOver())
	winner, ok := e.Winner()
	require.True(t, ok)
	assert.Equal(t, state.Human, winner)
	assert.Equal(t, 0, e.gs.Buildings[1].HP)
	assert.Equal(t, state.NoID, e.gs.Tile(6, 6).BuildingID)
	assert.Equal(t, []EventKind{BuildingDamaged, BuildingDestroyed, GameOver}, kinds)

	// Every mutator is refused afterwards.
	assert.False(t, e.CanAttack(w.ID, 6, 6))
	assert.False(t, e.MoveUnit(w.ID, 5, 5))
	assert.False(t, e.EndTurn())
	_, created := e.CreateUnit(state.Human, 0, state.Warrior)
	assert.False(t, created)
	assert.NoError(t, e.gs.Validate())
}

func TestAttack_FortpostDestructionDoesNotEndMatch(t *testing.T) {
	e := newTestEngine(t)
	e.gs.AddBuilding(state.AI, state.Fortpost, 4, 4)
	e.gs.Buildings[2].HP = 5
	w := place(e, state.Human, state.Warrior, 4, 3)

	require.True(t, e.Attack(w.ID, 4, 4))
	assert.True(t, e.gs.Buildings[2].Destroyed())
	assert.False(t, e.GameOver())
	assert.Equal(t, 10, e.ExpectedIncome(state.AI))
}

func TestPlaceFortpost_ConsumesTurn(t *testing.T) {
	e := newTestEngine(t)
	e.gs.Tile(4, 4).Terrain = state.Gold
	eng := place(e, state.Human, state.Engineer, 4, 4)
	place(e, state.AI, state.Warrior, 4, 5)
	e.gs.Player(state.Human).Gold = 80

	require.True(t, e.CanPlaceFortpost(eng.ID))
	require.True(t, e.PlaceFortpost(eng.ID))

	assert.Equal(t, 10, e.Gold(state.Human))
	b, ok := e.gs.BuildingAt(4, 4)
	require.True(t, ok)
	assert.Equal(t, state.Fortpost, b.Type)
	assert.Equal(t, state.Human, b.Owner)
	assert.Equal(t, 40, b.HP)
	assert.True(t, eng.HasActedThisTurn)
	assert.Equal(t, 1, eng.ActionsLeft, "actions are untouched")

	assert.False(t, e.CanMoveUnit(eng.ID, 3, 4))
	assert.False(t, e.CanAttack(eng.ID, 4, 5))
	assert.False(t, e.CanPlaceFortpost(eng.ID))
	assert.Equal(t, 17, e.ExpectedIncome(state.Human))
}

func TestPlaceFortpost_Refusals(t *testing.T) {
	e := newTestEngine(t)
	e.gs.Player(state.Human).Gold = 200
	e.gs.Tile(4, 4).Terrain = state.Gold
	e.gs.Tile(2, 2).Terrain = state.Gold

	plainEng := place(e, state.Human, state.Engineer, 3, 3)
	warrior := place(e, state.Human, state.Warrior, 4, 4)
	assert.False(t, e.CanPlaceFortpost(plainEng.ID), "not gold")
	assert.False(t, e.CanPlaceFortpost(warrior.ID), "not an engineer")

	eng := place(e, state.Human, state.Engineer, 2, 2)
	e.gs.Player(state.Human).Gold = 69
	assert.False(t, e.CanPlaceFortpost(eng.ID), "cannot afford")

	e.gs.Player(state.Human).Gold = 70
	e.gs.AddBuilding(state.AI, state.Fortpost, 2, 2)
	assert.False(t, e.CanPlaceFortpost(eng.ID), "tile already built")
}

func TestRefusedActions_DoNotMutate(t *testing.T) {
	e := newTestEngine(t)
	w := place(e, state.Human, state.Warrior, 3, 3)
	before := e.Snapshot()

	assert.False(t, e.MoveUnit(w.ID, 5, 5))
	assert.False(t, e.Attack(w.ID, 4, 3))
	assert.False(t, e.PlaceFortpost(w.ID))
	assert.Equal(t, before, e.gs)
}
