package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/bastion/internal/game/ai"
	"github.com/cory-johannsen/bastion/internal/game/state"
	"github.com/cory-johannsen/bastion/internal/match"
	"github.com/cory-johannsen/bastion/internal/storage/savefile"
)

func newTestSession(t *testing.T) *match.Session {
	t.Helper()
	doctrine, err := ai.DefaultDoctrine()
	require.NoError(t, err)
	sess, err := match.New(match.Options{
		Balance:  state.DefaultConfig(),
		Seed:     99,
		Doctrine: doctrine,
		AI:       ai.DefaultOptions(),
		Saves:    savefile.NewStore(t.TempDir(), zaptest.NewLogger(t)),
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(sess.Close)
	return sess
}

func newTestConsole(t *testing.T, input string) (*Console, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	c := New(newTestSession(t), strings.NewReader(input), &out, false, zaptest.NewLogger(t))
	return c, &out
}

func TestConsole_UnknownCommand(t *testing.T) {
	c, out := newTestConsole(t, "")
	assert.True(t, c.Execute("dance"))
	assert.Contains(t, out.String(), `Unknown command "dance"`)
	assert.True(t, c.Execute("   "))
}

func TestConsole_AmbiguousPrefix(t *testing.T) {
	c, out := newTestConsole(t, "")
	assert.True(t, c.Execute("s"))
	assert.Contains(t, out.String(), `Ambiguous command "s": save, slots, status.`)

	out.Reset()
	c.Execute("bui 0 warrior")
	assert.Contains(t, out.String(), "human warrior #0 produced")
}

func TestConsole_BuildEchoesEvent(t *testing.T) {
	c, out := newTestConsole(t, "")
	c.Execute("build 0 warrior")
	assert.Contains(t, out.String(), "human warrior #0 produced at (1,1) for 10 gold")
	assert.NotContains(t, out.String(), "\033[", "color disabled")
}

func TestConsole_ReportsUsageAndRefusals(t *testing.T) {
	c, out := newTestConsole(t, "")
	c.Execute("move 1 2")
	assert.Contains(t, out.String(), "usage: move <unit> <x> <y>")

	out.Reset()
	c.Execute("attack 5 1 1")
	assert.Contains(t, out.String(), "illegal action")

	out.Reset()
	c.Execute("build 0 dragon")
	assert.Contains(t, out.String(), `unknown unit type "dragon"`)
}

func TestConsole_EndTurn(t *testing.T) {
	c, out := newTestConsole(t, "")
	c.Execute("end")
	text := out.String()
	assert.Contains(t, text, "-- ai turn")
	assert.Contains(t, text, "ai plays ")
	assert.Contains(t, text, "Turn 3, human to move")
}

func TestConsole_InfoCommands(t *testing.T) {
	c, out := newTestConsole(t, "")
	c.Execute("board")
	assert.Contains(t, out.String(), "W warrior")
	c.Execute("units")
	assert.Contains(t, out.String(), "building 0")
	c.Execute("income")
	assert.Contains(t, out.String(), "human income 10 per turn")
	c.Execute("help")
	assert.Contains(t, out.String(), "fortify <engineer>")
}

func TestConsole_SaveLoadSlots(t *testing.T) {
	c, out := newTestConsole(t, "")
	c.Execute("save 1")
	assert.Contains(t, out.String(), "Saved to slot 1.")

	out.Reset()
	c.Execute("slots")
	assert.Contains(t, out.String(), "slot 1: saved")
	assert.Contains(t, out.String(), "slot 2: empty")

	out.Reset()
	c.Execute("load 1")
	assert.Contains(t, out.String(), "Loaded slot 1.")

	out.Reset()
	c.Execute("load 2")
	assert.Contains(t, out.String(), "save slot not found")

	out.Reset()
	c.Execute("delete 1")
	assert.Contains(t, out.String(), "Deleted slot 1.")

	out.Reset()
	c.Execute("save 9")
	assert.Contains(t, out.String(), "slot must be between 1 and 3")
}

func TestConsole_Quit(t *testing.T) {
	c, out := newTestConsole(t, "")
	assert.False(t, c.Execute("quit"))
	assert.Contains(t, out.String(), "Goodbye.")
}

func TestConsole_StartRunsUntilQuit(t *testing.T) {
	c, out := newTestConsole(t, "help\nquit\nboard\n")
	require.NoError(t, c.Start())
	text := out.String()
	assert.Contains(t, text, "Bastion")
	assert.Contains(t, text, "Goodbye.")
	assert.Equal(t, 1, strings.Count(text, "W warrior"), "board printed only at start")
}

func TestConsole_StartEndsAtEOF(t *testing.T) {
	c, _ := newTestConsole(t, "status\n")
	assert.NoError(t, c.Start())
}

func TestConsole_StopIsIdempotent(t *testing.T) {
	c, _ := newTestConsole(t, "")
	c.Stop()
	c.Stop()
	assert.True(t, c.stopped())
}

func TestNew_Panics(t *testing.T) {
	sess := newTestSession(t)
	var out bytes.Buffer
	assert.Panics(t, func() { New(nil, strings.NewReader(""), &out, false, zaptest.NewLogger(t)) })
	assert.Panics(t, func() { New(sess, nil, &out, false, zaptest.NewLogger(t)) })
	assert.Panics(t, func() { New(sess, strings.NewReader(""), &out, false, nil) })
}

func TestAutoplay(t *testing.T) {
	var out bytes.Buffer
	a := NewAutoplay(newTestSession(t), &out, 4, false, zaptest.NewLogger(t))
	require.NoError(t, a.Start())
	assert.Contains(t, out.String(), "4 turns played")
	assert.Contains(t, out.String(), "Turn 5")
}

func TestAutoplay_StoppedBeforeStart(t *testing.T) {
	var out bytes.Buffer
	a := NewAutoplay(newTestSession(t), &out, 0, false, zaptest.NewLogger(t))
	a.Stop()
	require.NoError(t, a.Start())
	assert.Contains(t, out.String(), "0 turns played")
}
