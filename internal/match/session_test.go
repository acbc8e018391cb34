package match

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/bastion/internal/game/ai"
	"github.com/cory-johannsen/bastion/internal/game/rules"
	"github.com/cory-johannsen/bastion/internal/game/state"
	"github.com/cory-johannsen/bastion/internal/game/world"
	"github.com/cory-johannsen/bastion/internal/storage/savefile"
)

type fakeArchive struct {
	saves int
	last  *state.GameState
	err   error
}

func (f *fakeArchive) Save(_ context.Context, _ uuid.UUID, _ int64, gs *state.GameState) error {
	f.saves++
	f.last = gs.Clone()
	return f.err
}

type fakeStats struct {
	calls  int
	winner state.PlayerID
	stats  state.MatchStatistics
}

func (f *fakeStats) Record(_ context.Context, stats state.MatchStatistics, winner state.PlayerID) error {
	f.calls++
	f.stats = stats
	f.winner = winner
	return nil
}

func newOptions(t *testing.T) Options {
	t.Helper()
	doctrine, err := ai.DefaultDoctrine()
	require.NoError(t, err)
	return Options{
		Balance:  state.DefaultConfig(),
		Seed:     7,
		Doctrine: doctrine,
		AI:       ai.DefaultOptions(),
		Saves:    savefile.NewStore(t.TempDir(), zaptest.NewLogger(t)),
	}
}

func newSession(t *testing.T, opts Options) *Session {
	t.Helper()
	s, err := New(opts, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

// freeNeighbor returns a tile next to u that u may move to.
func freeNeighbor(t *testing.T, s *Session, u *state.Unit) state.Point {
	t.Helper()
	for _, d := range []state.Point{{X: 1}, {Y: 1}, {X: -1}, {Y: -1}} {
		if s.eng.CanMoveUnit(u.ID, u.X+d.X, u.Y+d.Y) {
			return state.Point{X: u.X + d.X, Y: u.Y + d.Y}
		}
	}
	t.Fatalf("unit %d has no free neighbor", u.ID)
	return state.Point{}
}

func TestNew_StartsHumanTurn(t *testing.T) {
	s := newSession(t, newOptions(t))
	assert.Equal(t, state.Human, s.Engine().CurrentPlayer())
	assert.Equal(t, 50, s.Engine().Gold(state.Human))
	assert.Equal(t, 40, s.Engine().Gold(state.AI))
	assert.Equal(t, int64(7), s.Seed())
	assert.NotEqual(t, uuid.Nil, s.ID())
}

func TestNew_SameSeedSameWorld(t *testing.T) {
	a := newSession(t, newOptions(t))
	b := newSession(t, newOptions(t))
	assert.Equal(t, a.Snapshot().Tiles, b.Snapshot().Tiles)
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestNew_DrawsSeedWhenZero(t *testing.T) {
	opts := newOptions(t)
	opts.Seed = 0
	s := newSession(t, opts)
	assert.NotZero(t, s.Seed())
}

func TestNew_FromScenario(t *testing.T) {
	sc, err := world.ParseScenario([]byte(`
scenario:
  name: skirmish
  gold_tiles: [{x: 3, y: 3}]
  units:
    - {owner: human, type: archer, x: 2, y: 2}
    - {owner: ai, type: warrior, x: 5, y: 5}
  gold: {human: 5}
`))
	require.NoError(t, err)
	opts := newOptions(t)
	opts.Scenario = sc
	s := newSession(t, opts)

	gs := s.Snapshot()
	assert.Zero(t, s.Seed())
	assert.Equal(t, state.Gold, gs.Tile(3, 3).Terrain)
	assert.Len(t, gs.Units, 2)
	assert.Equal(t, 15, gs.Player(state.Human).Gold, "scenario gold plus first income")
}

func TestNew_RejectsBadBalance(t *testing.T) {
	opts := newOptions(t)
	opts.Balance.MapSize = 0
	_, err := New(opts, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestNew_PanicsOnMissingDeps(t *testing.T) {
	opts := newOptions(t)
	assert.Panics(t, func() { _, _ = New(opts, nil) })
	opts.Doctrine = nil
	assert.Panics(t, func() { _, _ = New(opts, zaptest.NewLogger(t)) })
}

func TestSession_BuildAndMove(t *testing.T) {
	s := newSession(t, newOptions(t))

	u, err := s.Build(0, state.Warrior)
	require.NoError(t, err)
	assert.Equal(t, state.Human, u.Owner)
	assert.Equal(t, 40, s.Engine().Gold(state.Human))

	to := freeNeighbor(t, s, u)
	require.NoError(t, s.Move(u.ID, to.X, to.Y))
	assert.Equal(t, to, u.Pos())

	err = s.Move(u.ID, to.X, to.Y)
	assert.ErrorIs(t, err, ErrIllegal, "warrior has spent its action")
}

func TestSession_RefusesIllegalIntents(t *testing.T) {
	s := newSession(t, newOptions(t))

	_, err := s.Build(1, state.Warrior)
	assert.ErrorIs(t, err, ErrIllegal, "enemy castle")
	s.eng.State().Player(state.Human).Gold = 5
	_, err = s.Build(0, state.Warrior)
	assert.ErrorIs(t, err, ErrIllegal, "not enough gold")
	assert.ErrorIs(t, s.Move(99, 2, 2), ErrIllegal)
	assert.ErrorIs(t, s.Attack(99, 2, 2), ErrIllegal)
	assert.ErrorIs(t, s.Fortify(99), ErrIllegal)

	enemy := s.eng.State().AddUnit(state.AI, s.eng.Traits().Of(state.Warrior), 4, 4)
	assert.ErrorIs(t, s.Move(enemy.ID, 4, 5), ErrIllegal, "cannot move enemy units")
}

func TestSession_RefusesDuringAITurn(t *testing.T) {
	s := newSession(t, newOptions(t))
	s.eng.State().CurrentPlayer = state.AI

	assert.ErrorIs(t, s.Move(0, 1, 2), ErrNotYourTurn)
	_, err := s.EndTurn(context.Background())
	assert.ErrorIs(t, err, ErrNotYourTurn)
}

func TestSession_EndTurnPlaysAI(t *testing.T) {
	opts := newOptions(t)
	opts.Autosave = true
	s := newSession(t, opts)

	report, err := s.EndTurn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, state.AI, report.Player)
	assert.Equal(t, state.Human, s.Engine().CurrentPlayer())
	assert.Equal(t, 2, s.Snapshot().Stats.TurnsPlayed)
	assert.True(t, opts.Saves.Has(AutosaveSlot))
}

func TestSession_FinishRecordsOnce(t *testing.T) {
	opts := newOptions(t)
	archive := &fakeArchive{}
	stats := &fakeStats{}
	opts.Archive = archive
	opts.Stats = stats
	s := newSession(t, opts)

	gs := s.eng.State()
	castle := gs.Buildings[state.AI]
	castle.HP = 1
	w := gs.AddUnit(state.Human, s.eng.Traits().Of(state.Warrior), castle.X, castle.Y-1)

	require.NoError(t, s.Attack(w.ID, castle.X, castle.Y))
	winner, over := s.Engine().Winner()
	require.True(t, over)
	assert.Equal(t, state.Human, winner)
	assert.Equal(t, 1, archive.saves)
	assert.True(t, archive.last.GameOver)
	assert.Equal(t, 1, stats.calls)
	assert.Equal(t, state.Human, stats.winner)

	assert.ErrorIs(t, s.Move(w.ID, w.X, w.Y-1), ErrGameOver)
	_, err := s.EndTurn(context.Background())
	assert.ErrorIs(t, err, ErrGameOver)
	_, err = s.Autoplay(context.Background(), 5)
	assert.ErrorIs(t, err, ErrGameOver)
	assert.Equal(t, 1, stats.calls)
}

func TestSession_ArchiveErrorSurfaces(t *testing.T) {
	opts := newOptions(t)
	opts.Archive = &fakeArchive{err: errors.New("db down")}
	s := newSession(t, opts)

	gs := s.eng.State()
	castle := gs.Buildings[state.AI]
	castle.HP = 1
	w := gs.AddUnit(state.Human, s.eng.Traits().Of(state.Warrior), castle.X-1, castle.Y)

	err := s.Attack(w.ID, castle.X, castle.Y)
	assert.ErrorContains(t, err, "db down")
	assert.True(t, s.Engine().GameOver())
}

func TestSession_SaveAndLoad(t *testing.T) {
	s := newSession(t, newOptions(t))
	id := s.ID()

	var events []rules.Event
	s.Subscribe(func(ev rules.Event) { events = append(events, ev) })

	require.NoError(t, s.Save(1))
	saved := s.Snapshot()

	_, err := s.Build(0, state.Archer)
	require.NoError(t, err)
	require.NotEqual(t, saved.Units, s.Snapshot().Units)

	require.NoError(t, s.Load(1))
	assert.Equal(t, saved, s.Snapshot())
	assert.Equal(t, id, s.ID())
	assert.Equal(t, int64(7), s.Seed())

	events = nil
	_, err = s.Build(0, state.Warrior)
	require.NoError(t, err)
	assert.NotEmpty(t, events, "listeners follow the loaded match")
}

func TestSession_LoadMissingKeepsMatch(t *testing.T) {
	s := newSession(t, newOptions(t))
	before := s.Snapshot()
	err := s.Load(3)
	assert.ErrorIs(t, err, savefile.ErrSlotNotFound)
	assert.Equal(t, before, s.Snapshot())
}

func TestSession_SlotsAndDelete(t *testing.T) {
	s := newSession(t, newOptions(t))
	slots, err := s.Slots()
	require.NoError(t, err)
	assert.Empty(t, slots)

	require.NoError(t, s.Save(2))
	require.NoError(t, s.Save(1))
	slots, err = s.Slots()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, slots)

	require.NoError(t, s.DeleteSlot(2))
	assert.ErrorIs(t, s.DeleteSlot(2), savefile.ErrSlotNotFound)
}

func TestSession_SaveWithoutStore(t *testing.T) {
	opts := newOptions(t)
	opts.Saves = nil
	s := newSession(t, opts)
	assert.ErrorIs(t, s.Save(1), ErrNoSaves)
	assert.ErrorIs(t, s.Load(1), ErrNoSaves)
	_, err := s.Slots()
	assert.ErrorIs(t, err, ErrNoSaves)
	assert.ErrorIs(t, s.DeleteSlot(1), ErrNoSaves)
	_, err = Resume(opts, 1, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, ErrNoSaves)
}

func TestResume(t *testing.T) {
	opts := newOptions(t)
	s := newSession(t, opts)
	_, err := s.EndTurn(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Save(2))

	r, err := Resume(opts, 2, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, s.ID(), r.ID())
	assert.Equal(t, s.Snapshot(), r.Snapshot())

	_, err = r.EndTurn(context.Background())
	assert.NoError(t, err)
}

func TestSession_Autoplay(t *testing.T) {
	opts := newOptions(t)
	stats := &fakeStats{}
	opts.Stats = stats
	s := newSession(t, opts)

	played, err := s.Autoplay(context.Background(), 30)
	require.NoError(t, err)
	assert.LessOrEqual(t, played, 30)
	assert.Positive(t, played)
	require.NoError(t, s.Snapshot().Validate())
	if s.Engine().GameOver() {
		assert.Equal(t, 1, stats.calls)
	} else {
		assert.Equal(t, 30, played)
		assert.Zero(t, stats.calls)
	}
}

func TestSession_AutoplayHonoursContext(t *testing.T) {
	s := newSession(t, newOptions(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	played, err := s.Autoplay(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, played)
}
