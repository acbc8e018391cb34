// Package command provides the command registry, parser, and built-in command
// definitions of the text console.
package command

// Categories for organizing commands.
const (
	CategoryOrders = "orders"
	CategoryInfo   = "info"
	CategoryGame   = "game"
)

// Handler identifiers mapping commands to session operations.
const (
	HandlerMove    = "move"
	HandlerAttack  = "attack"
	HandlerBuild   = "build"
	HandlerFortify = "fortify"
	HandlerEnd     = "end"
	HandlerBoard   = "board"
	HandlerStatus  = "status"
	HandlerUnits   = "units"
	HandlerIncome  = "income"
	HandlerSave    = "save"
	HandlerLoad    = "load"
	HandlerSlots   = "slots"
	HandlerDelete  = "delete"
	HandlerHelp    = "help"
	HandlerQuit    = "quit"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the argument syntax, e.g. "move <unit> <x> <y>".
	Usage string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command (orders, info, game).
	Category string
	// Handler maps to the session operation that serves the command.
	Handler string
}

// BuiltinCommands returns all built-in commands for the game.
func BuiltinCommands() []Command {
	return []Command{
		// Orders
		{Name: "move", Aliases: []string{"m", "mv"}, Usage: "move <unit> <x> <y>", Help: "Move a unit up to its move range", Category: CategoryOrders, Handler: HandlerMove},
		{Name: "attack", Aliases: []string{"a", "att"}, Usage: "attack <unit> <x> <y>", Help: "Attack the unit or building at a tile", Category: CategoryOrders, Handler: HandlerAttack},
		{Name: "build", Aliases: []string{"b", "train"}, Usage: "build <building> <type>", Help: "Produce a unit at a castle or fortpost", Category: CategoryOrders, Handler: HandlerBuild},
		{Name: "fortify", Aliases: []string{"f", "fort"}, Usage: "fortify <engineer>", Help: "Turn an engineer on a gold tile into a fortpost", Category: CategoryOrders, Handler: HandlerFortify},
		{Name: "end", Aliases: []string{"e", "done"}, Usage: "end", Help: "End your turn and let the opponent move", Category: CategoryOrders, Handler: HandlerEnd},

		// Info
		{Name: "board", Aliases: []string{"map", "look", "l"}, Usage: "board", Help: "Show the battlefield", Category: CategoryInfo, Handler: HandlerBoard},
		{Name: "status", Aliases: []string{"st"}, Usage: "status", Help: "Show gold, turn and match statistics", Category: CategoryInfo, Handler: HandlerStatus},
		{Name: "units", Aliases: []string{"u", "army"}, Usage: "units", Help: "List units and buildings", Category: CategoryInfo, Handler: HandlerUnits},
		{Name: "income", Aliases: []string{"inc"}, Usage: "income", Help: "Show gold earned per turn", Category: CategoryInfo, Handler: HandlerIncome},

		// Game
		{Name: "save", Aliases: nil, Usage: "save <slot>", Help: "Save the match to a slot", Category: CategoryGame, Handler: HandlerSave},
		{Name: "load", Aliases: nil, Usage: "load <slot>", Help: "Load the match stored in a slot", Category: CategoryGame, Handler: HandlerLoad},
		{Name: "slots", Aliases: []string{"saves"}, Usage: "slots", Help: "List occupied save slots", Category: CategoryGame, Handler: HandlerSlots},
		{Name: "delete", Aliases: []string{"del"}, Usage: "delete <slot>", Help: "Delete a save slot", Category: CategoryGame, Handler: HandlerDelete},
		{Name: "help", Aliases: []string{"?", "h"}, Usage: "help", Help: "Show available commands", Category: CategoryGame, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "q"}, Usage: "quit", Help: "Leave the match", Category: CategoryGame, Handler: HandlerQuit},
	}
}

// IsOrder reports whether the command changes the match.
func IsOrder(handler string) bool {
	switch handler {
	case HandlerMove, HandlerAttack, HandlerBuild, HandlerFortify, HandlerEnd:
		return true
	default:
		return false
	}
}
