// Package match runs one play session: a rules engine, the AI opponent (or
// two of them in autoplay), save slots and the optional postgres archive.
package match

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/bastion/internal/game/ai"
	"github.com/cory-johannsen/bastion/internal/game/dice"
	"github.com/cory-johannsen/bastion/internal/game/rules"
	"github.com/cory-johannsen/bastion/internal/game/state"
	"github.com/cory-johannsen/bastion/internal/game/world"
	"github.com/cory-johannsen/bastion/internal/storage/savefile"
)

// AutosaveSlot is the slot rewritten after every human turn.
const AutosaveSlot = 0

var (
	// ErrGameOver is returned for any intent after the match has ended.
	ErrGameOver = errors.New("the match is over")
	// ErrNotYourTurn is returned for a human intent during the AI turn.
	ErrNotYourTurn = errors.New("it is not your turn")
	// ErrIllegal is returned when the rules engine refuses an intent.
	ErrIllegal = errors.New("illegal action")
	// ErrNoSaves is returned by save operations on a session without a store.
	ErrNoSaves = errors.New("saving is not configured")
)

// Archive stores match snapshots keyed by match id.
type Archive interface {
	Save(ctx context.Context, id uuid.UUID, seed int64, gs *state.GameState) error
}

// StatsRecorder accumulates statistics of finished matches.
type StatsRecorder interface {
	Record(ctx context.Context, stats state.MatchStatistics, winner state.PlayerID) error
}

// Options configures a Session. Scenario, Saves, Archive and Stats are
// optional.
type Options struct {
	Balance  state.Config
	Seed     int64
	Scenario *world.Scenario
	Doctrine *ai.Doctrine
	AI       ai.Options
	Saves    *savefile.Store
	Autosave bool
	Archive  Archive
	Stats    StatsRecorder
}

// Session owns the match being played.
//
// Session is not safe for concurrent use.
type Session struct {
	id        uuid.UUID
	seed      int64
	opts      Options
	eng       *rules.Engine
	opponents map[state.PlayerID]*ai.Manager
	listeners []rules.Listener
	recorded  bool
	base      *zap.Logger
	logger    *zap.Logger
}

// New starts a fresh match from opts.Scenario, or else from a generated
// world. A zero opts.Seed draws one from a crypto source.
//
// Precondition: opts.Doctrine and logger must be non-nil.
// Postcondition: Human is to move with first-turn income already paid.
func New(opts Options, logger *zap.Logger) (*Session, error) {
	checkDeps(opts, logger, "match.New")
	var (
		gs   *state.GameState
		seed int64
		err  error
	)
	if opts.Scenario != nil {
		gs, err = opts.Scenario.Build(opts.Balance)
	} else {
		seed = opts.Seed
		if seed == 0 {
			seed = dice.NewSeed(dice.NewCryptoSource())
		}
		src := dice.NewLoggedSource(dice.NewSeededSource(seed), logger.Named("dice"), "gold_tiles")
		gs, err = world.NewGame(opts.Balance, src)
	}
	if err != nil {
		return nil, fmt.Errorf("creating match: %w", err)
	}
	s := &Session{id: uuid.New(), seed: seed, opts: opts, base: logger, logger: logger}
	if err := s.attach(gs); err != nil {
		return nil, err
	}
	s.eng.StartTurn()
	s.logger.Info("match started", zap.Int64("seed", seed))
	return s, nil
}

// Resume continues the match stored in slot.
//
// Precondition: opts.Saves, opts.Doctrine and logger must be non-nil.
func Resume(opts Options, slot int, logger *zap.Logger) (*Session, error) {
	checkDeps(opts, logger, "match.Resume")
	if opts.Saves == nil {
		return nil, ErrNoSaves
	}
	s := &Session{opts: opts, base: logger, logger: logger}
	if err := s.Load(slot); err != nil {
		return nil, err
	}
	return s, nil
}

func checkDeps(opts Options, logger *zap.Logger, fn string) {
	if opts.Doctrine == nil {
		panic(fn + ": doctrine must not be nil")
	}
	if logger == nil {
		panic(fn + ": logger must not be nil")
	}
}

// attach replaces the running match with gs and rebuilds the opponent.
func (s *Session) attach(gs *state.GameState) error {
	logger := s.base.With(zap.Stringer("match_id", s.id))
	eng := rules.NewEngine(gs, logger.Named("rules"))
	for _, l := range s.listeners {
		eng.Subscribe(l)
	}
	opponent, err := ai.NewManager(eng, state.AI, s.opts.Doctrine, s.opts.AI, logger.Named("ai"))
	if err != nil {
		return fmt.Errorf("creating ai opponent: %w", err)
	}
	s.closeOpponents()
	s.eng = eng
	s.opponents = map[state.PlayerID]*ai.Manager{state.AI: opponent}
	s.logger = logger
	return nil
}

func (s *Session) closeOpponents() {
	for _, m := range s.opponents {
		m.Close()
	}
	s.opponents = nil
}

// ID returns the match id used by the archive.
func (s *Session) ID() uuid.UUID { return s.id }

// Seed returns the world seed.
func (s *Session) Seed() int64 { return s.seed }

// Engine exposes the rules engine for read-only queries.
func (s *Session) Engine() *rules.Engine { return s.eng }

// Snapshot returns a copy of the current state for rendering.
func (s *Session) Snapshot() *state.GameState { return s.eng.Snapshot() }

// Subscribe forwards every rules event to l, including after a load.
func (s *Session) Subscribe(l rules.Listener) {
	s.listeners = append(s.listeners, l)
	s.eng.Subscribe(l)
}

// Close releases the AI scripting VMs.
func (s *Session) Close() {
	s.closeOpponents()
}

func (s *Session) humanToAct() error {
	if s.eng.GameOver() {
		return ErrGameOver
	}
	if s.eng.CurrentPlayer() != state.Human {
		return ErrNotYourTurn
	}
	return nil
}

// Move moves a human unit to (x, y).
func (s *Session) Move(unitID, x, y int) error {
	if err := s.humanToAct(); err != nil {
		return err
	}
	if !s.ownUnit(unitID) || !s.eng.CanMoveUnit(unitID, x, y) {
		return fmt.Errorf("%w: unit %d cannot move to (%d,%d)", ErrIllegal, unitID, x, y)
	}
	s.eng.MoveUnit(unitID, x, y)
	return nil
}

// Attack strikes (x, y) with a human unit.
func (s *Session) Attack(unitID, x, y int) error {
	if err := s.humanToAct(); err != nil {
		return err
	}
	if !s.ownUnit(unitID) || !s.eng.CanAttack(unitID, x, y) {
		return fmt.Errorf("%w: unit %d cannot attack (%d,%d)", ErrIllegal, unitID, x, y)
	}
	s.eng.Attack(unitID, x, y)
	return s.finishIfOver(context.Background())
}

// Build produces a unit of type t at a human building.
func (s *Session) Build(buildingID int, t state.UnitType) (*state.Unit, error) {
	if err := s.humanToAct(); err != nil {
		return nil, err
	}
	if !s.eng.CanCreateUnit(state.Human, buildingID, t) {
		return nil, fmt.Errorf("%w: building %d cannot produce a %s", ErrIllegal, buildingID, t)
	}
	u, _ := s.eng.CreateUnit(state.Human, buildingID, t)
	return u, nil
}

// Fortify turns a human engineer into a fortpost.
func (s *Session) Fortify(engineerID int) error {
	if err := s.humanToAct(); err != nil {
		return err
	}
	if !s.ownUnit(engineerID) || !s.eng.CanPlaceFortpost(engineerID) {
		return fmt.Errorf("%w: unit %d cannot fortify here", ErrIllegal, engineerID)
	}
	s.eng.PlaceFortpost(engineerID)
	return nil
}

func (s *Session) ownUnit(id int) bool {
	u, ok := s.eng.State().Unit(id)
	return ok && u.Owner == state.Human
}

// EndTurn ends the human turn and plays the AI turn that follows.
//
// Postcondition: unless the match ended, Human is to move again. The
// autosave slot is rewritten when enabled.
func (s *Session) EndTurn(ctx context.Context) (ai.TurnReport, error) {
	if err := s.humanToAct(); err != nil {
		return ai.TurnReport{}, err
	}
	s.eng.EndTurn()
	report, _ := s.opponents[state.AI].TakeTurn()

	if err := s.finishIfOver(ctx); err != nil {
		return report, err
	}
	if s.opts.Autosave && s.opts.Saves != nil && !s.eng.GameOver() {
		if err := s.Save(AutosaveSlot); err != nil {
			s.logger.Warn("autosave failed", zap.Error(err))
		}
	}
	return report, nil
}

// Autoplay lets the computer play both sides until the match ends, maxTurns
// turns have been played (0 is unlimited) or ctx is cancelled.
//
// Postcondition: returns the number of turns played by this call.
func (s *Session) Autoplay(ctx context.Context, maxTurns int) (int, error) {
	if s.eng.GameOver() {
		return 0, ErrGameOver
	}
	if _, ok := s.opponents[state.Human]; !ok {
		m, err := ai.NewManager(s.eng, state.Human, s.opts.Doctrine, s.opts.AI, s.logger.Named("ai"))
		if err != nil {
			return 0, fmt.Errorf("creating ai for %s: %w", state.Human, err)
		}
		s.opponents[state.Human] = m
	}

	played := 0
	for !s.eng.GameOver() && (maxTurns <= 0 || played < maxTurns) {
		if err := ctx.Err(); err != nil {
			return played, err
		}
		if _, ok := s.opponents[s.eng.CurrentPlayer()].TakeTurn(); !ok {
			break
		}
		played++
	}
	s.logger.Info("autoplay stopped",
		zap.Int("turns", played),
		zap.Bool("game_over", s.eng.GameOver()),
	)
	return played, s.finishIfOver(ctx)
}

// finishIfOver archives a finished match and records its statistics once.
func (s *Session) finishIfOver(ctx context.Context) error {
	winner, over := s.eng.Winner()
	if !over || s.recorded {
		return nil
	}
	s.recorded = true
	gs := s.eng.State()
	s.logger.Info("match finished",
		zap.Stringer("winner", winner),
		zap.Int("turns", gs.Stats.TurnsPlayed),
		zap.Int("units_created", gs.Stats.UnitsCreated),
		zap.Int("units_killed", gs.Stats.UnitsKilled),
	)

	var errs []error
	if s.opts.Archive != nil {
		if err := s.opts.Archive.Save(ctx, s.id, s.seed, gs); err != nil {
			errs = append(errs, fmt.Errorf("archiving match: %w", err))
		}
	}
	if s.opts.Stats != nil {
		if err := s.opts.Stats.Record(ctx, gs.Stats, winner); err != nil {
			errs = append(errs, fmt.Errorf("recording statistics: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Save writes the match to slot and, when configured, to the archive.
func (s *Session) Save(slot int) error {
	if s.opts.Saves == nil {
		return ErrNoSaves
	}
	if err := s.opts.Saves.Save(slot, savefile.Meta{MatchID: s.id.String(), Seed: s.seed}, s.eng.State()); err != nil {
		return err
	}
	if s.opts.Archive != nil {
		if err := s.opts.Archive.Save(context.Background(), s.id, s.seed, s.eng.State()); err != nil {
			s.logger.Warn("archiving save failed", zap.Error(err))
		}
	}
	return nil
}

// Load replaces the running match with the one stored in slot.
//
// Postcondition: on error the running match is unchanged.
func (s *Session) Load(slot int) error {
	if s.opts.Saves == nil {
		return ErrNoSaves
	}
	snap, err := s.opts.Saves.Load(slot)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(snap.MatchID)
	if err != nil {
		id = uuid.New()
	}
	prevID, prevSeed := s.id, s.seed
	s.id, s.seed = id, snap.Seed
	if err := s.attach(snap.State); err != nil {
		s.id, s.seed = prevID, prevSeed
		return err
	}
	s.recorded = snap.State.GameOver
	s.logger.Info("match resumed", zap.Int("slot", slot), zap.Int("turns", snap.State.Stats.TurnsPlayed))
	return nil
}

// Slots lists the occupied save slots.
func (s *Session) Slots() ([]int, error) {
	if s.opts.Saves == nil {
		return nil, ErrNoSaves
	}
	return s.opts.Saves.Slots()
}

// DeleteSlot removes a save slot.
func (s *Session) DeleteSlot(slot int) error {
	if s.opts.Saves == nil {
		return ErrNoSaves
	}
	return s.opts.Saves.Delete(slot)
}
