package ai_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/bastion/internal/game/ai"
	"github.com/cory-johannsen/bastion/internal/game/rules"
	"github.com/cory-johannsen/bastion/internal/game/state"
)

func newSelector(t *testing.T) *ai.GoalSelector {
	t.Helper()
	doctrine, err := ai.DefaultDoctrine()
	require.NoError(t, err)
	s, err := ai.NewGoalSelector(doctrine, 0, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestGoalSelector_Ladder(t *testing.T) {
	cases := []struct {
		name  string
		setup func(e *rules.Engine)
		want  ai.Goal
	}{
		{
			name: "catapult in range of a fortpost",
			setup: func(e *rules.Engine) {
				e.State().AddBuilding(state.AI, state.Fortpost, 3, 4)
				addUnit(e, state.Human, state.Catapult, 3, 0)
				// also satisfies lower rungs
				addUnit(e, state.Human, state.Warrior, 6, 3)
			},
			want: ai.KillCatapult,
		},
		{
			name: "enemy near castle",
			setup: func(e *rules.Engine) {
				addUnit(e, state.Human, state.Warrior, 6, 3)
				addUnit(e, state.AI, state.Catapult, 7, 0)
			},
			want: ai.DefendCastle,
		},
		{
			name: "own siege with enemy castle standing",
			setup: func(e *rules.Engine) {
				addUnit(e, state.AI, state.Catapult, 7, 0)
			},
			want: ai.DestroyCastle,
		},
		{
			name: "melee close to enemy castle",
			setup: func(e *rules.Engine) {
				addUnit(e, state.AI, state.Warrior, 3, 3)
			},
			want: ai.DestroyCastle,
		},
		{
			name: "engineer with free gold",
			setup: func(e *rules.Engine) {
				e.State().Tile(4, 0).Terrain = state.Gold
				addUnit(e, state.AI, state.Engineer, 5, 0)
			},
			want: ai.ExpandEconomy,
		},
		{
			name: "outnumbered",
			setup: func(e *rules.Engine) {
				addUnit(e, state.Human, state.Warrior, 0, 5)
				addUnit(e, state.Human, state.Warrior, 0, 6)
			},
			want: ai.BuildArmy,
		},
		{
			name:  "nothing to react to",
			setup: func(e *rules.Engine) {},
			want:  ai.Advance,
		},
	}

	s := newSelector(t)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newMatch(t)
			tc.setup(e)
			bb := ai.Perceive(e.State(), e.Traits(), state.AI)
			assert.Equal(t, tc.want, s.Select(bb))
		})
	}
}

func TestGoalSelector_ExpandNeedsFewerThanTwoFortposts(t *testing.T) {
	e := newMatch(t)
	e.State().Tile(4, 0).Terrain = state.Gold
	e.State().AddBuilding(state.AI, state.Fortpost, 7, 3)
	e.State().AddBuilding(state.AI, state.Fortpost, 7, 4)
	addUnit(e, state.AI, state.Engineer, 5, 0)

	bb := ai.Perceive(e.State(), e.Traits(), state.AI)

	assert.Equal(t, ai.Advance, newSelector(t).Select(bb))
}

func TestGoalSelector_ScriptErrorsCountAsFalse(t *testing.T) {
	dir := t.TempDir()
	script := `
function catapult_threat()
  error("broken")
end

function castle_in_danger()
  return true
end
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "goals.lua"), []byte(script), 0600))
	doctrine, err := ai.LoadDoctrine(dir)
	require.NoError(t, err)
	s, err := ai.NewGoalSelector(doctrine, 0, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer s.Close()

	e := newMatch(t)
	bb := ai.Perceive(e.State(), e.Traits(), state.AI)

	assert.Equal(t, ai.DefendCastle, s.Select(bb))
}

func TestGoalSelector_RunawayScriptIsCut(t *testing.T) {
	dir := t.TempDir()
	script := `
function catapult_threat()
  while true do end
end
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "goals.lua"), []byte(script), 0600))
	doctrine, err := ai.LoadDoctrine(dir)
	require.NoError(t, err)
	s, err := ai.NewGoalSelector(doctrine, 1000, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer s.Close()

	e := newMatch(t)
	bb := ai.Perceive(e.State(), e.Traits(), state.AI)

	assert.Equal(t, ai.Advance, s.Select(bb))
}

func TestNewGoalSelector_RejectsBadScript(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "goals.lua"), []byte("function ("), 0600))
	doctrine, err := ai.LoadDoctrine(dir)
	require.NoError(t, err)
	_, err = ai.NewGoalSelector(doctrine, 0, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestParseGoal(t *testing.T) {
	g, err := ai.ParseGoal("DestroyCastle")
	require.NoError(t, err)
	assert.Equal(t, ai.DestroyCastle, g)
	assert.Equal(t, "DestroyCastle", g.String())

	_, err = ai.ParseGoal("destroycastle")
	assert.Error(t, err)
	assert.Equal(t, "Unknown", ai.Goal(42).String())
}
