package ai

import (
	"fmt"

	"github.com/cory-johannsen/bastion/internal/game/state"
)

// Goal is the strategic intent chosen once per AI turn.
type Goal int

const (
	KillCatapult Goal = iota
	DefendCastle
	DestroyCastle
	ExpandEconomy
	BuildArmy
	Advance
)

var goalNames = []string{"KillCatapult", "DefendCastle", "DestroyCastle", "ExpandEconomy", "BuildArmy", "Advance"}

func (g Goal) String() string {
	if g < 0 || int(g) >= len(goalNames) {
		return "Unknown"
	}
	return goalNames[g]
}

// ParseGoal resolves a goal by its exact name.
func ParseGoal(name string) (Goal, error) {
	for i, n := range goalNames {
		if n == name {
			return Goal(i), nil
		}
	}
	return Advance, fmt.Errorf("unknown goal %q", name)
}

// DangerField holds, per tile, the summed threat of every enemy that could
// reach and strike the tile next turn.
type DangerField struct {
	size   int
	values []int
}

func newDangerField(size int) DangerField {
	return DangerField{size: size, values: make([]int, size*size)}
}

// At returns the danger at (x, y); out-of-bounds tiles read as 0.
func (d DangerField) At(x, y int) int {
	if x < 0 || y < 0 || x >= d.size || y >= d.size {
		return 0
	}
	return d.values[y*d.size+x]
}

func (d DangerField) add(x, y, v int) {
	d.values[y*d.size+x] += v
}

// Threat records an enemy siege unit that endangers one of our buildings.
type Threat struct {
	Active   bool
	Catapult state.Option[*state.Unit]
}

// Blackboard is the per-turn context shared by every AI stage. It is rebuilt
// from the game state at the start of each AI turn and never persisted.
type Blackboard struct {
	Me    state.PlayerID
	Enemy state.PlayerID
	Gold  int

	MyUnits        []*state.Unit
	EnemyUnits     []*state.Unit
	MyEngineers    []*state.Unit
	MyArchers      []*state.Unit
	MyCatapults    []*state.Unit
	MyMelee        []*state.Unit
	EnemyCatapults []*state.Unit

	MyBuildings    []*state.Building
	EnemyBuildings []*state.Building
	MyCastle       state.Option[*state.Building]
	EnemyCastle    state.Option[*state.Building]

	GoldTiles []state.Point
	Danger    DangerField
	Threat    Threat
	Goal      Goal
}

// MyFortposts counts our standing fortposts.
func (bb *Blackboard) MyFortposts() int {
	n := 0
	for _, b := range bb.MyBuildings {
		if b.Type == state.Fortpost {
			n++
		}
	}
	return n
}

// MyRanged counts archers and catapults.
func (bb *Blackboard) MyRanged() int {
	return len(bb.MyArchers) + len(bb.MyCatapults)
}

// CastleDanger returns the danger on our castle tile, or 0 without a castle.
func (bb *Blackboard) CastleDanger() int {
	castle, ok := bb.MyCastle.Get()
	if !ok {
		return 0
	}
	return bb.Danger.At(castle.X, castle.Y)
}

// EnemiesWithin counts living enemy units within r of p.
func (bb *Blackboard) EnemiesWithin(p state.Point, r int) int {
	n := 0
	for _, u := range bb.EnemyUnits {
		if u.Pos().Dist(p) <= r {
			n++
		}
	}
	return n
}

// MeleeWithin counts our warrior-category units within r of p.
func (bb *Blackboard) MeleeWithin(p state.Point, r int) int {
	n := 0
	for _, u := range bb.MyMelee {
		if u.Pos().Dist(p) <= r {
			n++
		}
	}
	return n
}

// track files a freshly produced unit under the right categories so later
// production cycles of the same turn see it.
func (bb *Blackboard) track(u *state.Unit, traits *state.Traits) {
	bb.MyUnits = append(bb.MyUnits, u)
	switch {
	case u.Type == state.Engineer:
		bb.MyEngineers = append(bb.MyEngineers, u)
	case u.Type == state.Archer:
		bb.MyArchers = append(bb.MyArchers, u)
	case u.Type == state.Catapult:
		bb.MyCatapults = append(bb.MyCatapults, u)
	case traits.Of(u.Type).Melee:
		bb.MyMelee = append(bb.MyMelee, u)
	}
}
