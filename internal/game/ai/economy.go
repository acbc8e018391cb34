package ai

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/bastion/internal/game/rules"
	"github.com/cory-johannsen/bastion/internal/game/state"
)

// EconomyReport summarizes one economy pass.
type EconomyReport struct {
	Fortposts int
	Created   []*state.Unit
}

// Economy places fortposts and produces units for one side.
type Economy struct {
	eng      *rules.Engine
	rules    []*ProductionRule
	maxUnits int
	logger   *zap.Logger
}

// NewEconomy constructs an Economy.
//
// Precondition: eng and logger must be non-nil; maxUnits >= 0.
func NewEconomy(eng *rules.Engine, productionRules []*ProductionRule, maxUnits int, logger *zap.Logger) *Economy {
	if eng == nil {
		panic("ai.NewEconomy: engine must not be nil")
	}
	if logger == nil {
		panic("ai.NewEconomy: logger must not be nil")
	}
	return &Economy{eng: eng, rules: productionRules, maxUnits: maxUnits, logger: logger}
}

// Run places a fortpost under every engineer that can fortify, then runs up
// to maxUnits production cycles. Produced units are added to bb.
//
// Postcondition: bb.Gold reflects the side's treasury after spending.
func (ec *Economy) Run(bb *Blackboard) EconomyReport {
	var report EconomyReport
	for _, u := range bb.MyEngineers {
		if ec.eng.PlaceFortpost(u.ID) {
			report.Fortposts++
		}
	}
	bb.Gold = ec.eng.Gold(bb.Me)

	for i := 0; i < ec.maxUnits; i++ {
		t, ok := ec.Choose(bb)
		if !ok {
			break
		}
		u, ok := ec.produce(bb, t)
		if !ok {
			ec.logger.Debug("ai: no producer available", zap.Stringer("type", t))
			break
		}
		bb.track(u, ec.eng.Traits())
		bb.Gold = ec.eng.Gold(bb.Me)
		report.Created = append(report.Created, u)
	}
	return report
}

// produce tries every standing own producer in id order.
func (ec *Economy) produce(bb *Blackboard, t state.UnitType) (*state.Unit, bool) {
	for _, b := range bb.MyBuildings {
		if !b.Type.IsProducer() || b.Destroyed() {
			continue
		}
		if u, ok := ec.eng.CreateUnit(bb.Me, b.ID, t); ok {
			return u, true
		}
	}
	return nil, false
}

// Choose returns the best affordable unit type for bb, or false when nothing
// is affordable. Ties keep the earlier type in state.UnitTypes order.
func (ec *Economy) Choose(bb *Blackboard) (state.UnitType, bool) {
	cfg := ec.eng.Config()
	var (
		best      state.UnitType
		bestScore float64
		found     bool
	)
	for _, t := range state.UnitTypes {
		if cfg.UnitCost(t) > bb.Gold {
			continue
		}
		s := ec.Score(bb, t)
		if !found || s > bestScore {
			best, bestScore, found = t, s, true
		}
	}
	return best, found
}

// Score sums the production rules matching t and applies the affordability
// penalty when gold is below twice the cost.
func (ec *Economy) Score(bb *Blackboard, t state.UnitType) float64 {
	cost := ec.eng.Config().UnitCost(t)
	env := ProductionEnv{
		Goal:           bb.Goal.String(),
		Unit:           t.String(),
		Gold:           bb.Gold,
		Cost:           cost,
		MyUnits:        len(bb.MyUnits),
		EnemyUnits:     len(bb.EnemyUnits),
		MyMelee:        len(bb.MyMelee),
		MyRanged:       bb.MyRanged(),
		MyEngineers:    len(bb.MyEngineers),
		MyCatapults:    len(bb.MyCatapults),
		Fortposts:      bb.MyFortposts(),
		GoldTiles:      len(bb.GoldTiles),
		EnemyCastle:    bb.EnemyCastle.IsSome(),
		CatapultThreat: bb.Threat.Active,
	}

	score := 0.0
	for _, r := range ec.rules {
		if !r.Applies(t) {
			continue
		}
		ok, err := r.Holds(env)
		if err != nil {
			ec.logger.Warn("ai: production rule failed", zap.Error(err))
			continue
		}
		if ok {
			score += r.Bonus
		}
	}
	if bb.Gold < cost*2 {
		score -= 0.2 * float64(cost)
	}
	return score
}
