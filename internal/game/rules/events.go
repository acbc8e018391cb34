package rules

import "github.com/cory-johannsen/bastion/internal/game/state"

// EventKind names a state change the view layer can mirror.
type EventKind int

const (
	TurnStarted EventKind = iota
	UnitCreated
	UnitMoved
	UnitDamaged
	UnitKilled
	BuildingDamaged
	BuildingDestroyed
	FortpostPlaced
	GameOver
)

var eventNames = map[EventKind]string{
	TurnStarted:       "turn_started",
	UnitCreated:       "unit_created",
	UnitMoved:         "unit_moved",
	UnitDamaged:       "unit_damaged",
	UnitKilled:        "unit_killed",
	BuildingDamaged:   "building_damaged",
	BuildingDestroyed: "building_destroyed",
	FortpostPlaced:    "fortpost_placed",
	GameOver:          "game_over",
}

func (k EventKind) String() string {
	if n, ok := eventNames[k]; ok {
		return n
	}
	return "unknown"
}

// Event describes one applied mutation. Fields not relevant to Kind hold
// state.NoID or zero.
type Event struct {
	Kind       EventKind
	Player     state.PlayerID
	UnitID     int
	BuildingID int
	X, Y       int
	HP         int
	// Amount is the damage dealt, gold granted or gold spent, depending on Kind.
	Amount int
}

// Listener receives events synchronously, in the order they are applied.
type Listener func(Event)
