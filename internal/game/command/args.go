package command

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/cory-johannsen/bastion/internal/game/state"
)

// MaxSaveSlots is the number of player save slots; slots are numbered from 1.
const MaxSaveSlots = 3

// ErrUsage is wrapped by every argument error.
var ErrUsage = errors.New("usage")

// Target addresses a tile with one of the player's units.
type Target struct {
	UnitID int
	X, Y   int
}

// BuildOrder names a producer and the unit type to produce there.
type BuildOrder struct {
	BuildingID int
	Type       state.UnitType
}

func usage(cmd string) error {
	return fmt.Errorf("%w: %s", ErrUsage, cmd)
}

func ints(args []string, n int) ([]int, bool) {
	if len(args) != n {
		return nil, false
	}
	out := make([]int, n)
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// ParseTarget reads "<unit> <x> <y>" for move and attack.
func ParseTarget(cmd *Command, args []string) (Target, error) {
	v, ok := ints(args, 3)
	if !ok {
		return Target{}, usage(cmd.Usage)
	}
	return Target{UnitID: v[0], X: v[1], Y: v[2]}, nil
}

// ParseUnit reads a single unit id.
func ParseUnit(cmd *Command, args []string) (int, error) {
	v, ok := ints(args, 1)
	if !ok {
		return 0, usage(cmd.Usage)
	}
	return v[0], nil
}

// ParseBuild reads "<building> <type>". The type is a unit type name.
func ParseBuild(cmd *Command, args []string) (BuildOrder, error) {
	if len(args) != 2 {
		return BuildOrder{}, usage(cmd.Usage)
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return BuildOrder{}, usage(cmd.Usage)
	}
	t, ok := state.ParseUnitType(args[1])
	if !ok {
		return BuildOrder{}, fmt.Errorf("%w: unknown unit type %q", ErrUsage, args[1])
	}
	return BuildOrder{BuildingID: id, Type: t}, nil
}

// ParseSlot reads a save slot in [1, MaxSaveSlots].
func ParseSlot(cmd *Command, args []string) (int, error) {
	v, ok := ints(args, 1)
	if !ok {
		return 0, usage(cmd.Usage)
	}
	if v[0] < 1 || v[0] > MaxSaveSlots {
		return 0, fmt.Errorf("%w: slot must be between 1 and %d", ErrUsage, MaxSaveSlots)
	}
	return v[0], nil
}
