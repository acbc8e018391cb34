package ai

import (
	"github.com/cory-johannsen/bastion/internal/game/state"
	"github.com/cory-johannsen/bastion/internal/game/world"
)

// Perceive builds the blackboard for player me from the public game state.
//
// Precondition: gs and traits must be non-nil; me must be a valid faction.
// Postcondition: only living units and standing buildings are listed; Goal is
// left at its zero value for the goal selector to fill in.
func Perceive(gs *state.GameState, traits *state.Traits, me state.PlayerID) *Blackboard {
	bb := &Blackboard{
		Me:        me,
		Enemy:     state.Opponent(me),
		Gold:      gs.Player(me).Gold,
		GoldTiles: world.GoldTiles(gs),
		Danger:    newDangerField(gs.Size),
	}

	for _, u := range gs.Units {
		if u.Dead {
			continue
		}
		if u.Owner != me {
			bb.EnemyUnits = append(bb.EnemyUnits, u)
			if u.Type == state.Catapult {
				bb.EnemyCatapults = append(bb.EnemyCatapults, u)
			}
			continue
		}
		bb.track(u, traits)
	}

	for _, b := range gs.Buildings {
		if b.Destroyed() {
			continue
		}
		if b.Owner == me {
			bb.MyBuildings = append(bb.MyBuildings, b)
			if b.Type == state.Castle && !bb.MyCastle.IsSome() {
				bb.MyCastle = state.Some(b)
			}
		} else {
			bb.EnemyBuildings = append(bb.EnemyBuildings, b)
			if b.Type == state.Castle && !bb.EnemyCastle.IsSome() {
				bb.EnemyCastle = state.Some(b)
			}
		}
	}

	computeDanger(bb, gs.Size, traits)
	bb.Threat = detectCatapultThreat(bb, gs.Config.CatapultRange)
	return bb
}

// computeDanger adds each enemy's threat value to every tile within its
// reach-and-strike radius.
func computeDanger(bb *Blackboard, size int, traits *state.Traits) {
	for _, e := range bb.EnemyUnits {
		tr := traits.Of(e.Type)
		r := tr.ThreatRange
		for y := max(0, e.Y-r); y <= min(size-1, e.Y+r); y++ {
			for x := max(0, e.X-r); x <= min(size-1, e.X+r); x++ {
				if state.Manhattan(e.X, e.Y, x, y) <= r {
					bb.Danger.add(x, y, tr.ThreatValue)
				}
			}
		}
	}
}

// detectCatapultThreat returns the first enemy catapult, in id order, whose
// distance to any of our buildings is within its range or exactly one step
// beyond it.
func detectCatapultThreat(bb *Blackboard, catapultRange int) Threat {
	for _, c := range bb.EnemyCatapults {
		for _, b := range bb.MyBuildings {
			d := state.Manhattan(c.X, c.Y, b.X, b.Y)
			if (d >= 1 && d <= catapultRange) || d == catapultRange+1 {
				return Threat{Active: true, Catapult: state.Some(c)}
			}
		}
	}
	return Threat{}
}
