package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/bastion/internal/game/state"
)

// GlobalStatistics are the running totals over every finished match.
type GlobalStatistics struct {
	MatchesPlayed int64
	HumanWins     int64
	AIWins        int64
	UnitsCreated  int64
	UnitsKilled   int64
	GoldEarned    int64
	GoldSpent     int64
	TurnsPlayed   int64
	UpdatedAt     time.Time
}

// StatisticsRepository accumulates global statistics in a single row.
type StatisticsRepository struct {
	db *pgxpool.Pool
}

// NewStatisticsRepository creates a StatisticsRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewStatisticsRepository(db *pgxpool.Pool) *StatisticsRepository {
	return &StatisticsRepository{db: db}
}

// Record adds one finished match to the totals.
//
// Precondition: winner must be a valid faction.
// Postcondition: every counter grows by the match's value; MatchesPlayed by one.
func (r *StatisticsRepository) Record(ctx context.Context, stats state.MatchStatistics, winner state.PlayerID) error {
	var humanWin, aiWin int
	switch winner {
	case state.Human:
		humanWin = 1
	case state.AI:
		aiWin = 1
	default:
		return fmt.Errorf("recording statistics: invalid winner %d", winner)
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO global_statistics AS g
		     (id, matches_played, human_wins, ai_wins, units_created, units_killed, gold_earned, gold_spent, turns_played)
		 VALUES (1, 1, $1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
		     matches_played = g.matches_played + 1,
		     human_wins     = g.human_wins + EXCLUDED.human_wins,
		     ai_wins        = g.ai_wins + EXCLUDED.ai_wins,
		     units_created  = g.units_created + EXCLUDED.units_created,
		     units_killed   = g.units_killed + EXCLUDED.units_killed,
		     gold_earned    = g.gold_earned + EXCLUDED.gold_earned,
		     gold_spent     = g.gold_spent + EXCLUDED.gold_spent,
		     turns_played   = g.turns_played + EXCLUDED.turns_played,
		     updated_at     = NOW()`,
		humanWin, aiWin, stats.UnitsCreated, stats.UnitsKilled, stats.GoldEarned, stats.GoldSpent, stats.TurnsPlayed,
	)
	if err != nil {
		return fmt.Errorf("recording statistics: %w", err)
	}
	return nil
}

// Get returns the totals; all zero before the first recorded match.
func (r *StatisticsRepository) Get(ctx context.Context) (GlobalStatistics, error) {
	var g GlobalStatistics
	rows, err := r.db.Query(ctx,
		`SELECT matches_played, human_wins, ai_wins, units_created, units_killed,
		        gold_earned, gold_spent, turns_played, updated_at
		 FROM global_statistics WHERE id = 1`,
	)
	if err != nil {
		return g, fmt.Errorf("getting statistics: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&g.MatchesPlayed, &g.HumanWins, &g.AIWins, &g.UnitsCreated, &g.UnitsKilled,
			&g.GoldEarned, &g.GoldSpent, &g.TurnsPlayed, &g.UpdatedAt); err != nil {
			return g, fmt.Errorf("scanning statistics: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return g, fmt.Errorf("getting statistics: %w", err)
	}
	return g, nil
}

// Reset clears every total.
func (r *StatisticsRepository) Reset(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM global_statistics`); err != nil {
		return fmt.Errorf("resetting statistics: %w", err)
	}
	return nil
}
