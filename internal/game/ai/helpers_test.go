package ai_test

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/bastion/internal/game/rules"
	"github.com/cory-johannsen/bastion/internal/game/state"
)

// newMatch returns an engine over the stock 8x8 map with both castles, no
// gold tiles and the AI to move.
func newMatch(t *testing.T) *rules.Engine {
	t.Helper()
	gs := state.New(state.DefaultConfig())
	gs.AddBuilding(state.Human, state.Castle, 1, 1)
	gs.AddBuilding(state.AI, state.Castle, 6, 6)
	gs.CurrentPlayer = state.AI
	return rules.NewEngine(gs, zaptest.NewLogger(t))
}

func addUnit(e *rules.Engine, owner state.PlayerID, ut state.UnitType, x, y int) *state.Unit {
	return e.State().AddUnit(owner, e.Traits().Of(ut), x, y)
}

func setGold(e *rules.Engine, p state.PlayerID, gold int) {
	e.State().Player(p).Gold = gold
}
