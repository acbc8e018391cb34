// Package rules is the authoritative rules engine. It is the only component
// that mutates a match during play; every action has a side-effect-free CanX
// predicate and an X mutator that applies it only when CanX holds.
package rules

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/bastion/internal/game/state"
)

// Engine applies the rules of play to a single GameState.
//
// Engine is not safe for concurrent use; a match is driven from one goroutine.
type Engine struct {
	gs        *state.GameState
	traits    state.Traits
	logger    *zap.Logger
	listeners []Listener
}

// NewEngine wraps gs.
//
// Precondition: gs and logger must be non-nil.
// Postcondition: the trait table is derived once from gs.Config.
func NewEngine(gs *state.GameState, logger *zap.Logger) *Engine {
	if gs == nil {
		panic("rules.NewEngine: gs must not be nil")
	}
	if logger == nil {
		panic("rules.NewEngine: logger must not be nil")
	}
	return &Engine{gs: gs, traits: state.NewTraits(gs.Config), logger: logger}
}

// State returns the live state. Callers outside the engine must treat it as
// read-only; use Snapshot for a copy that can be held across mutations.
func (e *Engine) State() *state.GameState { return e.gs }

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() *state.GameState { return e.gs.Clone() }

// Traits returns the per-type trait table.
func (e *Engine) Traits() *state.Traits { return &e.traits }

// Config returns the match balance.
func (e *Engine) Config() state.Config { return e.gs.Config }

// Subscribe registers l to receive every subsequent event.
//
// Precondition: l must be non-nil.
func (e *Engine) Subscribe(l Listener) {
	e.listeners = append(e.listeners, l)
}

func (e *Engine) emit(ev Event) {
	for _, l := range e.listeners {
		l(ev)
	}
}

// CurrentPlayer returns the faction to move.
func (e *Engine) CurrentPlayer() state.PlayerID { return e.gs.CurrentPlayer }

// GameOver reports whether a castle has fallen.
func (e *Engine) GameOver() bool { return e.gs.GameOver }

// Winner returns the victor once the match is over.
func (e *Engine) Winner() (state.PlayerID, bool) {
	if !e.gs.GameOver {
		return state.NoPlayer, false
	}
	return e.gs.Winner, true
}

// Gold returns the treasury of p.
func (e *Engine) Gold(p state.PlayerID) int {
	if pl := e.gs.Player(p); pl != nil {
		return pl.Gold
	}
	return 0
}

// ExpectedIncome returns what p would collect at the start of its next turn.
// Destroyed buildings yield nothing.
func (e *Engine) ExpectedIncome(p state.PlayerID) int {
	total := 0
	for _, b := range e.gs.Buildings {
		if b.Owner == p && !b.Destroyed() {
			total += e.gs.Config.BuildingIncome(b.Type)
		}
	}
	return total
}

// StartTurn refreshes the current player's units and pays income.
//
// Postcondition: every living unit of the current player has its full action
// budget and HasActedThisTurn == false; siege cooldowns drop by one; the
// treasury grows by ExpectedIncome. No-op once the match is over.
func (e *Engine) StartTurn() {
	if e.gs.GameOver {
		return
	}
	p := e.gs.CurrentPlayer
	for _, u := range e.gs.Units {
		if u.Owner != p || u.Dead {
			continue
		}
		u.HasActedThisTurn = false
		u.ActionsLeft = e.traits.Of(u.Type).ActionsPerTurn
		if u.MoveCooldownRemaining > 0 {
			u.MoveCooldownRemaining--
		}
	}

	income := e.ExpectedIncome(p)
	e.gs.Player(p).Gold += income
	e.gs.Stats.GoldEarned += income

	e.logger.Debug("turn started",
		zap.Stringer("player", p),
		zap.Int("income", income),
		zap.Int("gold", e.gs.Player(p).Gold),
	)
	e.emit(Event{Kind: TurnStarted, Player: p, UnitID: state.NoID, BuildingID: state.NoID, Amount: income})
}

// EndTurn passes control to the opponent and starts its turn.
//
// Postcondition: returns false and changes nothing when the match is over;
// otherwise CurrentPlayer flips, TurnsPlayed increments and StartTurn runs.
func (e *Engine) EndTurn() bool {
	if e.gs.GameOver {
		return false
	}
	e.gs.CurrentPlayer = state.Opponent(e.gs.CurrentPlayer)
	e.gs.Stats.TurnsPlayed++
	e.StartTurn()
	return true
}

// spendAction consumes one action and marks the turn used when none remain.
func spendAction(u *state.Unit) {
	u.ActionsLeft--
	if u.ActionsLeft <= 0 {
		u.ActionsLeft = 0
		u.HasActedThisTurn = true
	}
}

// activeUnit returns the unit when it is alive, owned by the player to move
// and still able to act this turn.
func (e *Engine) activeUnit(id int) (*state.Unit, bool) {
	if e.gs.GameOver {
		return nil, false
	}
	u, ok := e.gs.Unit(id)
	if !ok || u.Owner != e.gs.CurrentPlayer || !u.CanAct() {
		return nil, false
	}
	return u, true
}
