package state

import (
	"errors"
	"fmt"
)

// ErrInvalidState is wrapped by every Validate failure.
var ErrInvalidState = errors.New("invalid game state")

// Tile is one cell of the grid. It references its occupants by id only.
type Tile struct {
	X          int     `yaml:"x"`
	Y          int     `yaml:"y"`
	Terrain    Terrain `yaml:"terrain"`
	UnitID     int     `yaml:"unit_id"`
	BuildingID int     `yaml:"building_id"`
}

// HasUnit reports whether a unit stands on the tile.
func (t *Tile) HasUnit() bool { return t.UnitID != NoID }

// HasBuilding reports whether a building stands on the tile.
func (t *Tile) HasBuilding() bool { return t.BuildingID != NoID }

// Unit is a mobile piece.
//
// Invariant: 0 <= HP <= MaxHP; HP == 0 iff Dead; a dead unit occupies no tile.
type Unit struct {
	ID                    int      `yaml:"id"`
	Owner                 PlayerID `yaml:"owner"`
	Type                  UnitType `yaml:"type"`
	X                     int      `yaml:"x"`
	Y                     int      `yaml:"y"`
	HP                    int      `yaml:"hp"`
	MaxHP                 int      `yaml:"max_hp"`
	MoveRange             int      `yaml:"move_range"`
	ActionsLeft           int      `yaml:"actions_left"`
	HasActedThisTurn      bool     `yaml:"has_acted_this_turn"`
	MoveCooldownRemaining int      `yaml:"move_cooldown_remaining"`
	Dead                  bool     `yaml:"dead"`
}

// Pos returns the unit's coordinate.
func (u *Unit) Pos() Point { return Point{X: u.X, Y: u.Y} }

// CanAct reports whether the unit still has something to spend this turn.
func (u *Unit) CanAct() bool {
	return !u.Dead && u.ActionsLeft > 0 && !u.HasActedThisTurn
}

// Building is a static structure.
//
// Invariant: 0 <= HP <= MaxHP; a destroyed building (HP == 0) occupies no tile.
type Building struct {
	ID    int          `yaml:"id"`
	Owner PlayerID     `yaml:"owner"`
	Type  BuildingType `yaml:"type"`
	X     int          `yaml:"x"`
	Y     int          `yaml:"y"`
	HP    int          `yaml:"hp"`
	MaxHP int          `yaml:"max_hp"`
}

// Pos returns the building's coordinate.
func (b *Building) Pos() Point { return Point{X: b.X, Y: b.Y} }

// Destroyed reports whether the building has been razed.
func (b *Building) Destroyed() bool { return b.HP <= 0 }

// Player is a faction's treasury.
type Player struct {
	ID   PlayerID `yaml:"id"`
	Gold int      `yaml:"gold"`
}

// MatchStatistics are the per-match counters.
type MatchStatistics struct {
	UnitsCreated int `yaml:"units_created"`
	UnitsKilled  int `yaml:"units_killed"`
	GoldEarned   int `yaml:"gold_earned"`
	GoldSpent    int `yaml:"gold_spent"`
	TurnsPlayed  int `yaml:"turns_played"`
}

// GameState is the complete, serialisable state of one match.
//
// Invariant: Units[i].ID == i and Buildings[i].ID == i; entities are never removed.
// Invariant: Players[p].ID == p for both factions.
type GameState struct {
	Config        Config          `yaml:"config"`
	Size          int             `yaml:"size"`
	Tiles         []Tile          `yaml:"tiles"`
	Units         []*Unit         `yaml:"units"`
	Buildings     []*Building     `yaml:"buildings"`
	Players       []*Player       `yaml:"players"`
	CurrentPlayer PlayerID        `yaml:"current_player"`
	GameOver      bool            `yaml:"game_over"`
	Winner        PlayerID        `yaml:"winner"`
	Stats         MatchStatistics `yaml:"stats"`
}

// New returns an empty plain grid with both treasuries funded and Human to move.
//
// Precondition: cfg.MapSize > 0.
// Postcondition: every tile is Plain with no occupants.
func New(cfg Config) *GameState {
	n := cfg.MapSize
	gs := &GameState{
		Config:        cfg,
		Size:          n,
		Tiles:         make([]Tile, n*n),
		CurrentPlayer: Human,
		Winner:        NoPlayer,
	}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			gs.Tiles[y*n+x] = Tile{X: x, Y: y, Terrain: Plain, UnitID: NoID, BuildingID: NoID}
		}
	}
	gs.Players = []*Player{
		{ID: Human, Gold: cfg.StartingGold},
		{ID: AI, Gold: cfg.StartingGold},
	}
	return gs
}

// InBounds reports whether (x, y) lies on the grid.
func (gs *GameState) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < gs.Size && y < gs.Size
}

// Tile returns the tile at (x, y), or nil when out of bounds.
func (gs *GameState) Tile(x, y int) *Tile {
	if !gs.InBounds(x, y) {
		return nil
	}
	return &gs.Tiles[y*gs.Size+x]
}

// Unit returns the unit with the given id.
func (gs *GameState) Unit(id int) (*Unit, bool) {
	if id < 0 || id >= len(gs.Units) {
		return nil, false
	}
	return gs.Units[id], true
}

// Building returns the building with the given id.
func (gs *GameState) Building(id int) (*Building, bool) {
	if id < 0 || id >= len(gs.Buildings) {
		return nil, false
	}
	return gs.Buildings[id], true
}

// Player returns the treasury of p, or nil for an unknown id.
func (gs *GameState) Player(p PlayerID) *Player {
	if !p.Valid() || int(p) >= len(gs.Players) {
		return nil
	}
	return gs.Players[p]
}

// UnitAt returns the living unit standing on (x, y).
func (gs *GameState) UnitAt(x, y int) (*Unit, bool) {
	t := gs.Tile(x, y)
	if t == nil || !t.HasUnit() {
		return nil, false
	}
	return gs.Unit(t.UnitID)
}

// BuildingAt returns the standing building on (x, y).
func (gs *GameState) BuildingAt(x, y int) (*Building, bool) {
	t := gs.Tile(x, y)
	if t == nil || !t.HasBuilding() {
		return nil, false
	}
	return gs.Building(t.BuildingID)
}

// AddBuilding appends a building at full health and places it on its tile.
//
// Precondition: (x, y) is in bounds and has no building.
// Postcondition: the returned building's ID equals its index in Buildings.
func (gs *GameState) AddBuilding(owner PlayerID, bt BuildingType, x, y int) *Building {
	hp := gs.Config.BuildingHP(bt)
	b := &Building{ID: len(gs.Buildings), Owner: owner, Type: bt, X: x, Y: y, HP: hp, MaxHP: hp}
	gs.Buildings = append(gs.Buildings, b)
	gs.Tile(x, y).BuildingID = b.ID
	return b
}

// AddUnit appends a fresh unit described by tr and places it on its tile.
//
// Precondition: (x, y) is in bounds and has no unit.
// Postcondition: the returned unit's ID equals its index in Units.
func (gs *GameState) AddUnit(owner PlayerID, tr Trait, x, y int) *Unit {
	u := &Unit{
		ID:          len(gs.Units),
		Owner:       owner,
		Type:        tr.Type,
		X:           x,
		Y:           y,
		HP:          tr.HP,
		MaxHP:       tr.HP,
		MoveRange:   tr.MoveRange,
		ActionsLeft: tr.ActionsPerTurn,
	}
	gs.Units = append(gs.Units, u)
	gs.Tile(x, y).UnitID = u.ID
	return u
}

// Clone returns a deep copy that shares no memory with gs.
func (gs *GameState) Clone() *GameState {
	c := *gs
	if gs.Tiles != nil {
		c.Tiles = append([]Tile(nil), gs.Tiles...)
	}
	c.Units = cloneAll(gs.Units)
	c.Buildings = cloneAll(gs.Buildings)
	c.Players = cloneAll(gs.Players)
	return &c
}

// cloneAll deep-copies a slice of pointers; nil stays nil.
func cloneAll[T any](src []*T) []*T {
	if src == nil {
		return nil
	}
	out := make([]*T, len(src))
	for i, p := range src {
		v := *p
		out[i] = &v
	}
	return out
}

// Validate checks every structural invariant of the state. It is run on any
// state restored from storage.
//
// Postcondition: Returns nil or an error wrapping ErrInvalidState.
func (gs *GameState) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
	}

	if gs.Size <= 0 || len(gs.Tiles) != gs.Size*gs.Size {
		return fail("grid has %d tiles for size %d", len(gs.Tiles), gs.Size)
	}
	if len(gs.Players) != 2 {
		return fail("expected 2 players, got %d", len(gs.Players))
	}
	for i, p := range gs.Players {
		if p == nil || int(p.ID) != i {
			return fail("player slot %d holds wrong id", i)
		}
		if p.Gold < 0 {
			return fail("player %s has negative gold %d", p.ID, p.Gold)
		}
	}
	if !gs.CurrentPlayer.Valid() {
		return fail("current player %d is not a faction", gs.CurrentPlayer)
	}
	if gs.GameOver && !gs.Winner.Valid() {
		return fail("finished match has no winner")
	}

	for i := range gs.Tiles {
		t := &gs.Tiles[i]
		if t.X != i%gs.Size || t.Y != i/gs.Size {
			return fail("tile %d has coordinate (%d,%d)", i, t.X, t.Y)
		}
		if t.HasUnit() {
			u, ok := gs.Unit(t.UnitID)
			if !ok || u.Dead || u.X != t.X || u.Y != t.Y {
				return fail("tile (%d,%d) references unit %d that is not there", t.X, t.Y, t.UnitID)
			}
		}
		if t.HasBuilding() {
			b, ok := gs.Building(t.BuildingID)
			if !ok || b.Destroyed() || b.X != t.X || b.Y != t.Y {
				return fail("tile (%d,%d) references building %d that is not there", t.X, t.Y, t.BuildingID)
			}
		}
	}

	for i, u := range gs.Units {
		if u == nil || u.ID != i {
			return fail("unit slot %d holds wrong id", i)
		}
		if u.HP < 0 || u.HP > u.MaxHP {
			return fail("unit %d hp %d outside [0,%d]", u.ID, u.HP, u.MaxHP)
		}
		if (u.HP == 0) != u.Dead {
			return fail("unit %d dead flag disagrees with hp %d", u.ID, u.HP)
		}
		if u.ActionsLeft < 0 {
			return fail("unit %d has negative actions", u.ID)
		}
		if !u.Dead {
			t := gs.Tile(u.X, u.Y)
			if t == nil || t.UnitID != u.ID {
				return fail("living unit %d is not on its tile", u.ID)
			}
		}
	}

	for i, b := range gs.Buildings {
		if b == nil || b.ID != i {
			return fail("building slot %d holds wrong id", i)
		}
		if b.HP < 0 || b.HP > b.MaxHP {
			return fail("building %d hp %d outside [0,%d]", b.ID, b.HP, b.MaxHP)
		}
		if !b.Destroyed() {
			t := gs.Tile(b.X, b.Y)
			if t == nil || t.BuildingID != b.ID {
				return fail("standing building %d is not on its tile", b.ID)
			}
		}
	}
	return nil
}
