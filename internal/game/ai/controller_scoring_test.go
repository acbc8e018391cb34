package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/bastion/internal/game/rules"
	"github.com/cory-johannsen/bastion/internal/game/state"
)

// scoringRig is an empty 8x8 map with the AI to move and a hand-built
// blackboard, so each movement term can be exercised on its own.
type scoringRig struct {
	eng *rules.Engine
	ctl *UnitController
	bb  *Blackboard
}

func newScoringRig(t *testing.T) *scoringRig {
	t.Helper()
	gs := state.New(state.DefaultConfig())
	gs.CurrentPlayer = state.AI
	eng := rules.NewEngine(gs, zaptest.NewLogger(t))
	return &scoringRig{
		eng: eng,
		ctl: NewUnitController(eng, zaptest.NewLogger(t)),
		bb:  &Blackboard{Me: state.AI, Enemy: state.Human, Danger: newDangerField(gs.Size)},
	}
}

func (r *scoringRig) unit(owner state.PlayerID, ut state.UnitType, x, y int) *state.Unit {
	return r.eng.State().AddUnit(owner, r.eng.Traits().Of(ut), x, y)
}

// threaten marks c as the catapult endangering our buildings.
func (r *scoringRig) threaten(c *state.Unit) {
	r.bb.Threat = Threat{Active: true, Catapult: state.Some(c)}
}

// moveFrom places an AI unit of type ut at from, lets the controller pick a
// step toward dest and returns where the unit ended up.
func (r *scoringRig) moveFrom(ut state.UnitType, from, dest state.Point) state.Point {
	u := r.unit(state.AI, ut, from.X, from.Y)
	r.ctl.moveToward(r.bb, u, dest)
	return u.Pos()
}

func TestMoveScore_DangerWeightByType(t *testing.T) {
	from := state.Point{X: 4, Y: 4}
	cases := map[state.UnitType]state.Point{
		state.Warrior:  {X: 5, Y: 4},
		state.Chivalry: {X: 5, Y: 4},
		state.Archer:   from,
		state.Engineer: from,
		state.Catapult: from,
	}
	for ut, want := range cases {
		t.Run(ut.String(), func(t *testing.T) {
			r := newScoringRig(t)
			r.bb.Danger.add(5, 4, 3)

			got := r.moveFrom(ut, from, state.Point{X: 7, Y: 4})

			assert.Equal(t, want, got)
		})
	}
}

func TestMoveScore_ClosesOnThreateningCatapult(t *testing.T) {
	r := newScoringRig(t)
	r.threaten(r.unit(state.Human, state.Catapult, 4, 1))

	// the destination lies east, the threat north
	got := r.moveFrom(state.Warrior, state.Point{X: 4, Y: 4}, state.Point{X: 7, Y: 4})

	assert.Equal(t, state.Point{X: 4, Y: 3}, got)
}

func TestMoveScore_EngineerBacksAwayFromThreat(t *testing.T) {
	gold := state.Point{X: 4, Y: 3}

	r := newScoringRig(t)
	r.threaten(r.unit(state.Human, state.Catapult, 4, 1))
	assert.Equal(t, state.Point{X: 3, Y: 4}, r.moveFrom(state.Engineer, state.Point{X: 4, Y: 4}, gold))

	r = newScoringRig(t)
	r.threaten(r.unit(state.Human, state.Catapult, 4, 1))
	assert.Equal(t, gold, r.moveFrom(state.Warrior, state.Point{X: 4, Y: 4}, gold))
}

func TestMoveScore_MeleeReachesThreatThroughDanger(t *testing.T) {
	for _, tc := range []struct {
		ut   state.UnitType
		want state.Point
	}{
		{state.Warrior, state.Point{X: 4, Y: 3}},
		{state.Chivalry, state.Point{X: 4, Y: 3}},
		// engineers never get the finishing bonus and back off instead
		{state.Engineer, state.Point{X: 5, Y: 4}},
	} {
		t.Run(tc.ut.String(), func(t *testing.T) {
			r := newScoringRig(t)
			r.threaten(r.unit(state.Human, state.Catapult, 3, 3))
			r.bb.Danger.add(4, 3, 100)
			r.bb.Danger.add(3, 4, 100)

			got := r.moveFrom(tc.ut, state.Point{X: 4, Y: 4}, state.Point{X: 7, Y: 4})

			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMoveScore_ArcherBringsThreatIntoRange(t *testing.T) {
	r := newScoringRig(t)
	r.threaten(r.unit(state.Human, state.Catapult, 4, 0))
	r.bb.Danger.add(4, 3, 50)

	got := r.moveFrom(state.Archer, state.Point{X: 4, Y: 4}, state.Point{X: 4, Y: 4})

	assert.Equal(t, state.Point{X: 4, Y: 3}, got)
}

func TestMoveScore_PointBlankDampensPenalties(t *testing.T) {
	from := state.Point{X: 4, Y: 4}
	cases := map[state.UnitType]state.Point{
		state.Warrior:  {X: 5, Y: 4},
		state.Engineer: {X: 5, Y: 4},
		state.Archer:   from,
	}
	for ut, want := range cases {
		t.Run(ut.String(), func(t *testing.T) {
			r := newScoringRig(t)
			r.bb.EnemyCatapults = []*state.Unit{r.unit(state.Human, state.Catapult, 4, 3)}
			r.bb.Danger.add(5, 4, 10)

			got := r.moveFrom(ut, from, state.Point{X: 7, Y: 4})

			assert.Equal(t, want, got)
		})
	}
}

func TestMoveScore_AdjacencyJudgedFromCurrentTile(t *testing.T) {
	r := newScoringRig(t)
	r.bb.EnemyCatapults = []*state.Unit{r.unit(state.Human, state.Catapult, 4, 3)}
	r.bb.Danger.add(4, 4, 10)
	w := r.unit(state.AI, state.Warrior, 4, 5)

	// stepping to (4,4) would make it adjacent, but it is not adjacent yet
	assert.False(t, r.ctl.moveToward(r.bb, w, state.Point{X: 4, Y: 0}))
	assert.Equal(t, state.Point{X: 4, Y: 5}, w.Pos())
}

func TestMoveScore_ArcherKeepsOffAdjacentEnemies(t *testing.T) {
	dest := state.Point{X: 4, Y: 0}

	r := newScoringRig(t)
	r.bb.EnemyUnits = []*state.Unit{r.unit(state.Human, state.Warrior, 4, 2)}
	assert.Equal(t, state.Point{X: 4, Y: 4}, r.moveFrom(state.Archer, state.Point{X: 4, Y: 4}, dest))

	r = newScoringRig(t)
	r.bb.EnemyUnits = []*state.Unit{r.unit(state.Human, state.Warrior, 4, 2)}
	assert.Equal(t, state.Point{X: 4, Y: 3}, r.moveFrom(state.Warrior, state.Point{X: 4, Y: 4}, dest))
}

func TestMoveScore_CatapultSeeksCastleRange(t *testing.T) {
	for _, tc := range []struct {
		ut   state.UnitType
		want state.Point
	}{
		{state.Catapult, state.Point{X: 5, Y: 1}},
		{state.Warrior, state.Point{X: 6, Y: 1}},
	} {
		t.Run(tc.ut.String(), func(t *testing.T) {
			r := newScoringRig(t)
			castle := r.eng.State().AddBuilding(state.Human, state.Castle, 1, 1)
			r.bb.EnemyCastle = state.Some(castle)
			r.bb.Danger.add(5, 1, 20)

			got := r.moveFrom(tc.ut, state.Point{X: 6, Y: 1}, castle.Pos())

			assert.Equal(t, tc.want, got)
		})
	}
}
