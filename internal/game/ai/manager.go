package ai

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/bastion/internal/game/rules"
	"github.com/cory-johannsen/bastion/internal/game/state"
)

// Options tunes a Manager.
type Options struct {
	// MaxUnitsPerTurn caps production cycles per turn.
	MaxUnitsPerTurn int
	// InstructionLimit bounds each Lua precondition call; 0 selects the
	// scripting default.
	InstructionLimit int
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{MaxUnitsPerTurn: 2}
}

// TurnReport summarizes one AI turn.
type TurnReport struct {
	Player       state.PlayerID
	Goal         Goal
	UnitsCreated int
	Fortposts    int
	Attacks      int
	Moves        int
}

// Manager plays one side of a match: perception, goal selection, economy,
// unit control and end of turn.
type Manager struct {
	me      state.PlayerID
	eng     *rules.Engine
	goals   *GoalSelector
	economy *Economy
	units   *UnitController
	logger  *zap.Logger
}

// NewManager wires the pipeline for player me.
//
// Precondition: eng, doctrine and logger must be non-nil; me must be valid.
// Postcondition: returns a Manager owning a Lua VM; call Close when done.
func NewManager(eng *rules.Engine, me state.PlayerID, doctrine *Doctrine, opts Options, logger *zap.Logger) (*Manager, error) {
	if eng == nil {
		panic("ai.NewManager: engine must not be nil")
	}
	if doctrine == nil {
		panic("ai.NewManager: doctrine must not be nil")
	}
	if logger == nil {
		panic("ai.NewManager: logger must not be nil")
	}
	if !me.Valid() {
		panic("ai.NewManager: player must be valid")
	}
	logger = logger.With(zap.Stringer("player", me))
	goals, err := NewGoalSelector(doctrine, opts.InstructionLimit, logger)
	if err != nil {
		return nil, err
	}
	return &Manager{
		me:      me,
		eng:     eng,
		goals:   goals,
		economy: NewEconomy(eng, doctrine.Production, opts.MaxUnitsPerTurn, logger),
		units:   NewUnitController(eng, logger),
		logger:  logger,
	}, nil
}

// Player returns the side this manager plays.
func (m *Manager) Player() state.PlayerID { return m.me }

// TakeTurn plays a full turn and ends it.
//
// Postcondition: returns false without acting when the match is over or it
// is not this side's turn.
func (m *Manager) TakeTurn() (TurnReport, bool) {
	report := TurnReport{Player: m.me}
	if m.eng.GameOver() || m.eng.CurrentPlayer() != m.me {
		return report, false
	}

	bb := Perceive(m.eng.State(), m.eng.Traits(), m.me)
	bb.Goal = m.goals.Select(bb)
	report.Goal = bb.Goal

	eco := m.economy.Run(bb)
	report.UnitsCreated = len(eco.Created)
	report.Fortposts = eco.Fortposts

	ctl := m.units.Run(bb)
	report.Attacks = ctl.Attacks
	report.Moves = ctl.Moves
	report.Fortposts += ctl.Fortposts

	m.logger.Info("ai turn",
		zap.Stringer("goal", report.Goal),
		zap.Int("units_created", report.UnitsCreated),
		zap.Int("fortposts", report.Fortposts),
		zap.Int("attacks", report.Attacks),
		zap.Int("moves", report.Moves),
		zap.Int("gold", m.eng.Gold(m.me)),
	)

	m.eng.EndTurn()
	return report, true
}

// Close releases the goal selector's VM.
func (m *Manager) Close() {
	m.goals.Close()
}
