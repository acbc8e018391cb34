package ai

import (
	"cmp"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/bastion/internal/game/rules"
	"github.com/cory-johannsen/bastion/internal/game/state"
)

// Scoring weights of the unit controller.
const (
	progressWeight       = 4.0
	threatDistWeight     = 30.0
	finishCatapultBonus  = 120.0
	catapultInRangeBonus = 80.0
	siegeCoverBonus      = 35.0
	archerTargetBonus    = 10.0
	archerExposure       = 10.0
	siegeCastleBonus     = 40.0
	pointBlankBonus      = 40.0
	pointBlankDampening  = 0.2

	catapultTargetBonus = 50.0
	threatTargetBonus   = 200.0
	killBonus           = 30.0
	catapultKillBonus   = 80.0
	buildingValueFactor = 0.2
	castleTargetBonus   = 40.0

)

// ControlReport counts the actions taken by one controller pass.
type ControlReport struct {
	Attacks   int
	Moves     int
	Fortposts int
}

// UnitController spends the action budget of every living own unit.
type UnitController struct {
	eng    *rules.Engine
	logger *zap.Logger
}

// NewUnitController constructs a UnitController.
//
// Precondition: eng and logger must be non-nil.
func NewUnitController(eng *rules.Engine, logger *zap.Logger) *UnitController {
	if eng == nil {
		panic("ai.NewUnitController: engine must not be nil")
	}
	if logger == nil {
		panic("ai.NewUnitController: logger must not be nil")
	}
	return &UnitController{eng: eng, logger: logger}
}

// Run acts with every living unit of bb.Me in trait priority order. Each unit
// keeps acting while it has budget and one of its options succeeds.
func (c *UnitController) Run(bb *Blackboard) ControlReport {
	var report ControlReport
	gs := c.eng.State()
	traits := c.eng.Traits()

	var units []*state.Unit
	for _, u := range gs.Units {
		if !u.Dead && u.Owner == bb.Me {
			units = append(units, u)
		}
	}
	slices.SortStableFunc(units, func(a, b *state.Unit) int {
		return cmp.Compare(traits.Of(a.Type).Priority, traits.Of(b.Type).Priority)
	})

	for _, u := range units {
		for !c.eng.GameOver() && u.CanAct() {
			if !c.step(bb, u, &report) {
				break
			}
		}
		if c.eng.GameOver() {
			break
		}
	}
	return report
}

// step performs at most one action for u and reports whether one happened.
func (c *UnitController) step(bb *Blackboard, u *state.Unit, report *ControlReport) bool {
	if u.Type == state.Engineer {
		if c.eng.PlaceFortpost(u.ID) {
			report.Fortposts++
			return true
		}
		dest, ok := c.engineerDestination(bb, u)
		if !ok {
			return false
		}
		if c.moveToward(bb, u, dest) {
			report.Moves++
			return true
		}
		return false
	}

	if c.attackBest(bb, u) {
		report.Attacks++
		return true
	}
	dest, ok := combatDestination(bb, u)
	if !ok {
		return false
	}
	if c.moveToward(bb, u, dest) {
		report.Moves++
		return true
	}
	return false
}

// attackBest strikes the highest scoring legal target, keeping the first tile
// in row-major order on ties.
func (c *UnitController) attackBest(bb *Blackboard, u *state.Unit) bool {
	gs := c.eng.State()
	var (
		target    state.Point
		bestScore float64
		found     bool
	)
	for y := 0; y < gs.Size; y++ {
		for x := 0; x < gs.Size; x++ {
			if !c.eng.CanAttack(u.ID, x, y) {
				continue
			}
			s := c.attackScore(bb, u, x, y)
			if !found || s > bestScore {
				target, bestScore, found = state.Point{X: x, Y: y}, s, true
			}
		}
	}
	if !found {
		return false
	}
	c.logger.Debug("ai: attack",
		zap.Int("unit", u.ID),
		zap.Int("x", target.X),
		zap.Int("y", target.Y),
		zap.Float64("score", bestScore),
	)
	return c.eng.Attack(u.ID, target.X, target.Y)
}

func (c *UnitController) attackScore(bb *Blackboard, u *state.Unit, x, y int) float64 {
	gs := c.eng.State()
	traits := c.eng.Traits()

	if t, ok := gs.UnitAt(x, y); ok {
		s := float64(traits.Of(t.Type).Cost)
		if t.Type == state.Catapult {
			s += catapultTargetBonus
		}
		if cat, ok := bb.Threat.Catapult.Get(); bb.Threat.Active && ok && cat.ID == t.ID {
			s += threatTargetBonus
		}
		if t.HP <= traits.Of(u.Type).Damage {
			s += killBonus
			if t.Type == state.Catapult {
				s += catapultKillBonus
			}
		}
		return s
	}

	b, ok := gs.BuildingAt(x, y)
	if !ok {
		return 0
	}
	s := float64(gs.Config.BuildingHP(b.Type)) * buildingValueFactor
	if b.Type == state.Castle {
		s += castleTargetBonus
		if u.Type == state.Catapult {
			s += castleTargetBonus
		}
	}
	return s
}

// moveToward relocates u to the best scoring legal tile if it strictly beats
// staying put.
func (c *UnitController) moveToward(bb *Blackboard, u *state.Unit, dest state.Point) bool {
	gs := c.eng.State()
	from := u.Pos()
	best := from
	bestScore := c.moveScore(bb, u, from, from, dest)

	for y := 0; y < gs.Size; y++ {
		for x := 0; x < gs.Size; x++ {
			if !c.eng.CanMoveUnit(u.ID, x, y) {
				continue
			}
			if b, ok := gs.BuildingAt(x, y); ok && b.Owner != u.Owner {
				continue
			}
			to := state.Point{X: x, Y: y}
			if s := c.moveScore(bb, u, from, to, dest); s > bestScore {
				best, bestScore = to, s
			}
		}
	}
	if best == from {
		return false
	}
	return c.eng.MoveUnit(u.ID, best.X, best.Y)
}

// moveScore rates ending the move of u on tile to.
func (c *UnitController) moveScore(bb *Blackboard, u *state.Unit, from, to, dest state.Point) float64 {
	traits := c.eng.Traits()
	tr := traits.Of(u.Type)
	catapultRange := c.eng.Config().CatapultRange

	s := float64(from.Dist(dest)-to.Dist(dest)) * progressWeight

	if cat, ok := bb.Threat.Catapult.Get(); bb.Threat.Active && ok && !cat.Dead {
		dNow, dNew := from.Dist(cat.Pos()), to.Dist(cat.Pos())
		if u.Type == state.Engineer {
			s += float64(dNew-dNow) * threatDistWeight
		} else {
			s += float64(dNow-dNew) * threatDistWeight
		}
		if tr.Melee && dNew == 1 {
			s += finishCatapultBonus
		}
		if u.Type == state.Archer && tr.InAttackRange(dNew) {
			s += catapultInRangeBonus
		}
	}

	adjacent := false
	exposure := 0.0
	for _, ec := range bb.EnemyCatapults {
		if ec.Dead {
			continue
		}
		if from.Dist(ec.Pos()) == 1 {
			adjacent = true
		}
		d := to.Dist(ec.Pos())
		if d <= catapultRange {
			exposure += tr.SiegeExposure
		}
		if u.Type == state.Archer && tr.InAttackRange(d) {
			s += siegeCoverBonus
		}
	}

	switch u.Type {
	case state.Archer:
		for _, e := range bb.EnemyUnits {
			if e.Dead {
				continue
			}
			d := to.Dist(e.Pos())
			if tr.InAttackRange(d) {
				s += archerTargetBonus
			}
			if d <= 1 {
				s -= archerExposure
			}
		}
	case state.Catapult:
		if castle, ok := bb.EnemyCastle.Get(); ok && tr.InAttackRange(to.Dist(castle.Pos())) {
			s += siegeCastleBonus
		}
	}

	danger := float64(bb.Danger.At(to.X, to.Y))
	if adjacent && (tr.Melee || u.Type == state.Engineer) {
		s += pointBlankBonus
		s -= danger * pointBlankDampening
		s -= exposure * pointBlankDampening
	} else {
		s -= danger * tr.DangerWeight
		s -= exposure
	}
	return s
}

// combatDestination is the enemy castle, else the nearest standing enemy
// building, else the nearest living enemy unit.
func combatDestination(bb *Blackboard, u *state.Unit) (state.Point, bool) {
	if castle, ok := bb.EnemyCastle.Get(); ok && !castle.Destroyed() {
		return castle.Pos(), true
	}
	var (
		best  state.Point
		bestD int
		found bool
	)
	for _, b := range bb.EnemyBuildings {
		if b.Destroyed() {
			continue
		}
		if d := u.Pos().Dist(b.Pos()); !found || d < bestD {
			best, bestD, found = b.Pos(), d, true
		}
	}
	if found {
		return best, true
	}
	for _, e := range bb.EnemyUnits {
		if e.Dead {
			continue
		}
		if d := u.Pos().Dist(e.Pos()); !found || d < bestD {
			best, bestD, found = e.Pos(), d, true
		}
	}
	return best, found
}

// engineerDestination is the nearest gold tile without a building.
func (c *UnitController) engineerDestination(bb *Blackboard, u *state.Unit) (state.Point, bool) {
	gs := c.eng.State()
	var (
		best  state.Point
		bestD int
		found bool
	)
	for _, p := range bb.GoldTiles {
		if gs.Tile(p.X, p.Y).HasBuilding() {
			continue
		}
		if d := u.Pos().Dist(p); !found || d < bestD {
			best, bestD, found = p, d, true
		}
	}
	return best, found
}
