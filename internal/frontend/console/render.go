package console

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/bastion/internal/game/ai"
	"github.com/cory-johannsen/bastion/internal/game/command"
	"github.com/cory-johannsen/bastion/internal/game/rules"
	"github.com/cory-johannsen/bastion/internal/game/state"
)

var unitGlyphs = map[state.UnitType]string{
	state.Warrior:  "W",
	state.Archer:   "A",
	state.Chivalry: "K",
	state.Engineer: "E",
	state.Catapult: "S",
}

var buildingGlyphs = map[state.BuildingType]string{
	state.Castle:   "C",
	state.Fortpost: "F",
}

// RenderBoard draws the grid with x coordinates across and y down. A unit
// standing on a building is drawn in brackets.
func RenderBoard(gs *state.GameState) string {
	var b strings.Builder
	b.WriteString("   ")
	for x := 0; x < gs.Size; x++ {
		fmt.Fprintf(&b, "%3d", x)
	}
	b.WriteString("\n")
	for y := 0; y < gs.Size; y++ {
		fmt.Fprintf(&b, "%3d", y)
		for x := 0; x < gs.Size; x++ {
			b.WriteString(renderTile(gs, gs.Tile(x, y)))
		}
		b.WriteString("\n")
	}
	b.WriteString(Colorize(Dim, "W warrior  A archer  K chivalry  E engineer  S catapult  C castle  F fortpost  $ gold"))
	b.WriteString("\n")
	return b.String()
}

func renderTile(gs *state.GameState, t *state.Tile) string {
	u, hasUnit := gs.UnitAt(t.X, t.Y)
	bld, hasBuilding := gs.BuildingAt(t.X, t.Y)
	switch {
	case hasUnit && hasBuilding:
		return Colorize(SideColor(u.Owner), "["+unitGlyphs[u.Type]+"]")
	case hasUnit:
		return Colorize(SideColor(u.Owner), " "+unitGlyphs[u.Type]+" ")
	case hasBuilding:
		return Colorize(Bold+SideColor(bld.Owner), " "+buildingGlyphs[bld.Type]+" ")
	case t.Terrain == state.Gold:
		return Colorize(Yellow, " $ ")
	default:
		return Colorize(BrightBlack, " . ")
	}
}

// RenderStatus summarizes the turn, both treasuries and the match counters.
func RenderStatus(gs *state.GameState, humanIncome, aiIncome int) string {
	var b strings.Builder
	if gs.GameOver {
		fmt.Fprintf(&b, "%s\n", Colorf(Bold+BrightYellow, "Game over: %s wins", gs.Winner))
	} else {
		fmt.Fprintf(&b, "Turn %d, %s to move\n", gs.Stats.TurnsPlayed+1, Colorize(SideColor(gs.CurrentPlayer), gs.CurrentPlayer.String()))
	}
	for _, p := range []state.PlayerID{state.Human, state.AI} {
		income := humanIncome
		if p == state.AI {
			income = aiIncome
		}
		fmt.Fprintf(&b, "  %s gold %d (+%d per turn)\n",
			Colorf(SideColor(p), "%-5s", p), gs.Player(p).Gold, income)
	}
	s := gs.Stats
	fmt.Fprintf(&b, "  units created %d, killed %d, gold earned %d, spent %d\n",
		s.UnitsCreated, s.UnitsKilled, s.GoldEarned, s.GoldSpent)
	return b.String()
}

// RenderUnits lists standing buildings and living units of both sides.
func RenderUnits(gs *state.GameState) string {
	var b strings.Builder
	for _, p := range []state.PlayerID{state.Human, state.AI} {
		b.WriteString(Colorize(Bold+SideColor(p), p.String()))
		b.WriteString("\n")
		for _, bld := range gs.Buildings {
			if bld.Owner != p || bld.Destroyed() {
				continue
			}
			fmt.Fprintf(&b, "  building %-3d %-9s (%d,%d) hp %d/%d\n",
				bld.ID, bld.Type, bld.X, bld.Y, bld.HP, bld.MaxHP)
		}
		for _, u := range gs.Units {
			if u.Owner != p || u.Dead {
				continue
			}
			fmt.Fprintf(&b, "  unit     %-3d %-9s (%d,%d) hp %d/%d actions %d",
				u.ID, u.Type, u.X, u.Y, u.HP, u.MaxHP, u.ActionsLeft)
			if u.MoveCooldownRemaining > 0 {
				fmt.Fprintf(&b, " cooldown %d", u.MoveCooldownRemaining)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderIncome breaks down p's per-turn income by building.
func RenderIncome(gs *state.GameState, p state.PlayerID, total int) string {
	counts := map[state.BuildingType]int{}
	for _, bld := range gs.Buildings {
		if bld.Owner == p && !bld.Destroyed() {
			counts[bld.Type]++
		}
	}
	var parts []string
	for _, bt := range []state.BuildingType{state.Castle, state.Fortpost} {
		if n := counts[bt]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s x %d", n, bt, gs.Config.BuildingIncome(bt)))
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "no buildings")
	}
	return fmt.Sprintf("%s income %d per turn: %s\n", p, total, strings.Join(parts, ", "))
}

// RenderEvent describes one rules event, reading entity details from gs.
func RenderEvent(gs *state.GameState, ev rules.Event) string {
	unit := func() string {
		if u, ok := gs.Unit(ev.UnitID); ok {
			return fmt.Sprintf("%s %s #%d", u.Owner, u.Type, u.ID)
		}
		return fmt.Sprintf("unit #%d", ev.UnitID)
	}
	building := func() string {
		if bld, ok := gs.Building(ev.BuildingID); ok {
			return fmt.Sprintf("%s %s #%d", bld.Owner, bld.Type, bld.ID)
		}
		return fmt.Sprintf("building #%d", ev.BuildingID)
	}
	color := SideColor(ev.Player)

	switch ev.Kind {
	case rules.TurnStarted:
		return Colorf(color, "-- %s turn, +%d gold --", ev.Player, ev.Amount)
	case rules.UnitCreated:
		return Colorf(color, "%s produced at (%d,%d) for %d gold", unit(), ev.X, ev.Y, ev.Amount)
	case rules.UnitMoved:
		return Colorf(color, "%s moved to (%d,%d)", unit(), ev.X, ev.Y)
	case rules.UnitDamaged:
		return Colorf(color, "%s hit for %d, %d hp left", unit(), ev.Amount, ev.HP)
	case rules.UnitKilled:
		return Colorf(Bold+color, "%s killed at (%d,%d)", unit(), ev.X, ev.Y)
	case rules.BuildingDamaged:
		return Colorf(color, "%s hit for %d, %d hp left", building(), ev.Amount, ev.HP)
	case rules.BuildingDestroyed:
		return Colorf(Bold+color, "%s destroyed at (%d,%d)", building(), ev.X, ev.Y)
	case rules.FortpostPlaced:
		return Colorf(color, "%s fortpost raised at (%d,%d)", ev.Player, ev.X, ev.Y)
	case rules.GameOver:
		return Colorf(Bold+BrightYellow, "%s wins the match", ev.Player)
	default:
		return fmt.Sprintf("%s event", ev.Kind)
	}
}

// RenderReport summarizes an AI turn.
func RenderReport(r ai.TurnReport) string {
	return Colorf(SideColor(r.Player), "%s plays %s: %d produced, %d fortposts, %d attacks, %d moves",
		r.Player, r.Goal, r.UnitsCreated, r.Fortposts, r.Attacks, r.Moves)
}

// RenderHelp lists commands grouped by category.
func RenderHelp(reg *command.Registry) string {
	var b strings.Builder
	cats := reg.CommandsByCategory()
	for _, cat := range []string{command.CategoryOrders, command.CategoryInfo, command.CategoryGame} {
		b.WriteString(Colorize(Bold+White, cat))
		b.WriteString("\n")
		for _, cmd := range cats[cat] {
			fmt.Fprintf(&b, "  %-26s %s", cmd.Usage, cmd.Help)
			if len(cmd.Aliases) > 0 {
				b.WriteString(Colorf(Dim, " (%s)", strings.Join(cmd.Aliases, ", ")))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
