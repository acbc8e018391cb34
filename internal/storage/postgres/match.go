package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/bastion/internal/game/state"
)

// ErrMatchNotFound is returned when a match lookup yields no results.
var ErrMatchNotFound = errors.New("match not found")

// MatchRecord is one archived match snapshot.
type MatchRecord struct {
	ID        uuid.UUID
	Seed      int64
	Turns     int
	GameOver  bool
	Winner    string
	State     *state.GameState
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MatchSummary is a MatchRecord without its state payload.
type MatchSummary struct {
	ID        uuid.UUID
	Seed      int64
	Turns     int
	GameOver  bool
	Winner    string
	UpdatedAt time.Time
}

// MatchRepository stores match snapshots as jsonb keyed by match id.
type MatchRepository struct {
	db *pgxpool.Pool
}

// NewMatchRepository creates a MatchRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewMatchRepository(db *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{db: db}
}

// Save inserts or replaces the snapshot of match id.
//
// Precondition: gs must be non-nil.
// Postcondition: Get(id) returns gs; created_at is kept from the first save.
func (r *MatchRepository) Save(ctx context.Context, id uuid.UUID, seed int64, gs *state.GameState) error {
	winner := ""
	if gs.GameOver {
		winner = gs.Winner.String()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO matches (id, seed, turns, game_over, winner, state)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
		 ON CONFLICT (id) DO UPDATE SET
		     turns      = EXCLUDED.turns,
		     game_over  = EXCLUDED.game_over,
		     winner     = EXCLUDED.winner,
		     state      = EXCLUDED.state,
		     updated_at = NOW()`,
		id, seed, gs.Stats.TurnsPlayed, gs.GameOver, winner, gs,
	)
	if err != nil {
		return fmt.Errorf("saving match %s: %w", id, err)
	}
	return nil
}

// Get loads the latest snapshot of match id.
//
// Postcondition: Returns ErrMatchNotFound if no such match was archived.
func (r *MatchRepository) Get(ctx context.Context, id uuid.UUID) (MatchRecord, error) {
	var (
		rec    MatchRecord
		winner *string
		gs     state.GameState
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, seed, turns, game_over, winner, state, created_at, updated_at
		 FROM matches WHERE id = $1`, id,
	).Scan(&rec.ID, &rec.Seed, &rec.Turns, &rec.GameOver, &winner, &gs, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MatchRecord{}, ErrMatchNotFound
		}
		return MatchRecord{}, fmt.Errorf("getting match %s: %w", id, err)
	}
	if winner != nil {
		rec.Winner = *winner
	}
	if err := gs.Validate(); err != nil {
		return MatchRecord{}, fmt.Errorf("match %s: %w", id, err)
	}
	rec.State = &gs
	return rec, nil
}

// List returns the most recently updated matches first, at most limit rows.
//
// Precondition: limit > 0.
func (r *MatchRepository) List(ctx context.Context, limit int) ([]MatchSummary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, seed, turns, game_over, winner, updated_at
		 FROM matches ORDER BY updated_at DESC, id LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing matches: %w", err)
	}
	defer rows.Close()

	var out []MatchSummary
	for rows.Next() {
		var (
			s      MatchSummary
			winner *string
		)
		if err := rows.Scan(&s.ID, &s.Seed, &s.Turns, &s.GameOver, &winner, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		if winner != nil {
			s.Winner = *winner
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating matches: %w", err)
	}
	return out, nil
}

// Delete removes match id.
//
// Postcondition: Returns ErrMatchNotFound if no such match was archived.
func (r *MatchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting match %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMatchNotFound
	}
	return nil
}
