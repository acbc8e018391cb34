// Package state holds the plain match data shared by the rules engine, the AI
// and the persistence layers: the tile grid, units, buildings, players and the
// balance configuration.
//
// The package contains no game logic beyond bookkeeping helpers. Only the
// rules engine mutates a GameState during play.
package state

import "strings"

// NoID marks an empty occupant slot on a tile.
const NoID = -1

// PlayerID identifies one of the two fixed factions.
type PlayerID int

const (
	// NoPlayer is used for the winner of an unfinished match.
	NoPlayer PlayerID = -1
	Human    PlayerID = 0
	AI       PlayerID = 1
)

// Opponent returns the other faction.
func Opponent(p PlayerID) PlayerID {
	if p == Human {
		return AI
	}
	return Human
}

func (p PlayerID) String() string {
	switch p {
	case Human:
		return "human"
	case AI:
		return "ai"
	default:
		return "none"
	}
}

// Valid reports whether p names one of the two factions.
func (p PlayerID) Valid() bool { return p == Human || p == AI }

// Terrain is the static ground type of a tile.
type Terrain int

const (
	Plain Terrain = iota
	Gold
)

func (t Terrain) String() string {
	if t == Gold {
		return "gold"
	}
	return "plain"
}

// UnitType enumerates the five unit kinds.
type UnitType int

const (
	Warrior UnitType = iota
	Archer
	Chivalry
	Engineer
	Catapult

	unitTypeCount
)

// UnitTypes lists every unit type in declaration order. Production scoring
// iterates in this order, so earlier types win ties.
var UnitTypes = []UnitType{Warrior, Archer, Chivalry, Engineer, Catapult}

var unitTypeNames = [unitTypeCount]string{"warrior", "archer", "chivalry", "engineer", "catapult"}

func (u UnitType) String() string {
	if u < 0 || u >= unitTypeCount {
		return "unknown"
	}
	return unitTypeNames[u]
}

// ParseUnitType resolves a unit type by name, case-insensitively.
//
// Postcondition: ok is false when name matches no unit type.
func ParseUnitType(name string) (UnitType, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range unitTypeNames {
		if n == name {
			return UnitType(i), true
		}
	}
	switch name {
	case "cavalry", "knight":
		return Chivalry, true
	case "siege":
		return Catapult, true
	}
	return 0, false
}

// BuildingType enumerates the two structure kinds.
type BuildingType int

const (
	Castle BuildingType = iota
	Fortpost
)

func (b BuildingType) String() string {
	if b == Fortpost {
		return "fortpost"
	}
	return "castle"
}

// IsProducer reports whether the building can spawn units.
func (b BuildingType) IsProducer() bool {
	return b == Castle || b == Fortpost
}

// Point is a grid coordinate.
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Manhattan returns |ax-bx| + |ay-by|.
func Manhattan(ax, ay, bx, by int) int {
	return abs(ax-bx) + abs(ay-by)
}

// Dist returns the Manhattan distance between two points.
func (p Point) Dist(o Point) int {
	return Manhattan(p.X, p.Y, o.X, o.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
