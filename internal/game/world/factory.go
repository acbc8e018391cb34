// Package world builds the initial state of a match: the grid, both castles
// and the scatter of gold tiles.
package world

import (
	"fmt"

	"github.com/cory-johannsen/bastion/internal/game/dice"
	"github.com/cory-johannsen/bastion/internal/game/state"
)

// CastlePosition returns the fixed castle coordinate of p on a size×size map.
func CastlePosition(p state.PlayerID, size int) state.Point {
	if p == state.Human {
		return state.Point{X: 1, Y: 1}
	}
	return state.Point{X: size - 2, Y: size - 2}
}

// NewGame creates a fresh match from cfg, drawing gold positions from src.
//
// Precondition: cfg must pass Validate; src must be non-nil.
// Postcondition: Human's castle is building 0 at (1,1), the AI castle is
// building 1 at (n-2,n-2), Human is to move and no turn has started yet.
func NewGame(cfg state.Config, src dice.Source) (*state.GameState, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("creating game: %w", err)
	}
	gs := state.New(cfg)
	placeCastles(gs)
	scatterGold(gs, cfg.GoldTileCount, src)
	return gs, nil
}

func placeCastles(gs *state.GameState) {
	for _, p := range []state.PlayerID{state.Human, state.AI} {
		pos := CastlePosition(p, gs.Size)
		gs.AddBuilding(p, state.Castle, pos.X, pos.Y)
	}
}

// scatterGold marks up to count tiles as gold. Tiles with buildings or already
// gold are skipped; after size*size*10 draws it gives up, so fewer tiles may be
// placed on a crowded map.
func scatterGold(gs *state.GameState, count int, src dice.Source) int {
	placed := 0
	maxAttempts := gs.Size * gs.Size * 10
	for attempts := 0; placed < count && attempts < maxAttempts; attempts++ {
		x := src.Intn(gs.Size)
		y := src.Intn(gs.Size)
		t := gs.Tile(x, y)
		if t.HasBuilding() || t.Terrain == state.Gold {
			continue
		}
		t.Terrain = state.Gold
		placed++
	}
	return placed
}

// GoldTiles lists the gold tiles of gs in row-major order.
func GoldTiles(gs *state.GameState) []state.Point {
	var pts []state.Point
	for i := range gs.Tiles {
		if gs.Tiles[i].Terrain == state.Gold {
			pts = append(pts, state.Point{X: gs.Tiles[i].X, Y: gs.Tiles[i].Y})
		}
	}
	return pts
}
