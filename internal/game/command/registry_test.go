package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r)
	assert.Len(t, r.Commands(), len(BuiltinCommands()))
}

func TestResolve_CanonicalName(t *testing.T) {
	r := DefaultRegistry()

	cmd, ok := r.Resolve("move")
	assert.True(t, ok)
	assert.Equal(t, "move", cmd.Name)
	assert.Equal(t, HandlerMove, cmd.Handler)
}

func TestResolve_Alias(t *testing.T) {
	r := DefaultRegistry()

	cmd, ok := r.Resolve("mv")
	assert.True(t, ok)
	assert.Equal(t, "move", cmd.Name)
}

func TestResolve_NotFound(t *testing.T) {
	r := DefaultRegistry()

	_, ok := r.Resolve("teleport")
	assert.False(t, ok)
}

func TestResolve_AllCommands(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		input   string
		handler string
	}{
		{"move", HandlerMove},
		{"m", HandlerMove},
		{"attack", HandlerAttack},
		{"a", HandlerAttack},
		{"build", HandlerBuild},
		{"train", HandlerBuild},
		{"fortify", HandlerFortify},
		{"end", HandlerEnd},
		{"done", HandlerEnd},
		{"board", HandlerBoard},
		{"l", HandlerBoard},
		{"status", HandlerStatus},
		{"units", HandlerUnits},
		{"income", HandlerIncome},
		{"save", HandlerSave},
		{"load", HandlerLoad},
		{"slots", HandlerSlots},
		{"delete", HandlerDelete},
		{"help", HandlerHelp},
		{"?", HandlerHelp},
		{"quit", HandlerQuit},
		{"exit", HandlerQuit},
	}

	for _, tt := range tests {
		cmd, ok := r.Resolve(tt.input)
		require.True(t, ok, "input %q not found", tt.input)
		assert.Equal(t, tt.handler, cmd.Handler, "input %q wrong handler", tt.input)
	}
}

func TestResolve_UniquePrefix(t *testing.T) {
	r := DefaultRegistry()

	cmd, ok := r.Resolve("fo")
	require.True(t, ok)
	assert.Equal(t, HandlerFortify, cmd.Handler)

	cmd, ok = r.Resolve("inco")
	require.True(t, ok)
	assert.Equal(t, HandlerIncome, cmd.Handler)
}

func TestResolve_AmbiguousPrefix(t *testing.T) {
	r := DefaultRegistry()

	_, ok := r.Resolve("s")
	assert.False(t, ok, "s prefixes save, slots and status")

	names := []string{}
	for _, c := range r.Candidates("s") {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"save", "slots", "status"}, names)
}

func TestResolve_AliasBeatsPrefix(t *testing.T) {
	r := DefaultRegistry()

	cmd, ok := r.Resolve("st")
	require.True(t, ok)
	assert.Equal(t, HandlerStatus, cmd.Handler)
}

func TestCandidates_EmptyPrefix(t *testing.T) {
	assert.Empty(t, DefaultRegistry().Candidates(""))
}

func TestNewRegistry_DuplicateName(t *testing.T) {
	cmds := []Command{
		{Name: "test", Handler: "a"},
		{Name: "test", Handler: "b"},
	}
	_, err := NewRegistry(cmds)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate command name")
}

func TestNewRegistry_DuplicateAlias(t *testing.T) {
	cmds := []Command{
		{Name: "test1", Aliases: []string{"t"}, Handler: "a"},
		{Name: "test2", Aliases: []string{"t"}, Handler: "b"},
	}
	_, err := NewRegistry(cmds)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate alias")
}

func TestNewRegistry_AliasShadowsName(t *testing.T) {
	cmds := []Command{
		{Name: "end", Handler: "a"},
		{Name: "finish", Aliases: []string{"end"}, Handler: "b"},
	}
	_, err := NewRegistry(cmds)
	assert.Error(t, err)
}

func TestCommands_SortedByName(t *testing.T) {
	cmds := DefaultRegistry().Commands()
	for i := 1; i < len(cmds); i++ {
		assert.Less(t, cmds[i-1].Name, cmds[i].Name)
	}
}

func TestCommandsByCategory(t *testing.T) {
	r := DefaultRegistry()
	cats := r.CommandsByCategory()

	assert.Len(t, cats, 3)
	assert.Len(t, cats[CategoryOrders], 5)
	assert.Len(t, cats[CategoryInfo], 4)
	assert.Len(t, cats[CategoryGame], 6)
}

func TestPropertyAllAliasesResolveToCanonical(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := DefaultRegistry()
		cmds := r.Commands()
		idx := rapid.IntRange(0, len(cmds)-1).Draw(t, "cmd_idx")
		cmd := cmds[idx]

		resolved, ok := r.Resolve(cmd.Name)
		if !ok {
			t.Fatalf("canonical name %q did not resolve", cmd.Name)
		}
		if resolved.Name != cmd.Name {
			t.Fatalf("canonical name %q resolved to %q", cmd.Name, resolved.Name)
		}

		for _, alias := range cmd.Aliases {
			aliasResolved, ok := r.Resolve(alias)
			if !ok {
				t.Fatalf("alias %q did not resolve", alias)
			}
			if aliasResolved.Name != cmd.Name {
				t.Fatalf("alias %q resolved to %q, expected %q", alias, aliasResolved.Name, cmd.Name)
			}
		}
	})
}

func TestIsOrder(t *testing.T) {
	assert.True(t, IsOrder(HandlerMove))
	assert.True(t, IsOrder(HandlerEnd))
	assert.False(t, IsOrder(HandlerBoard))
	assert.False(t, IsOrder(HandlerSave))
}
