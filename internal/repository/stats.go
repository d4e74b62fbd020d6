package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nfl_dashboard/aggregator/internal/models"
	"nfl_dashboard/aggregator/internal/store"

	"github.com/jackc/pgx/v5"
)

// StatsRepository handles team season stats database operations
type StatsRepository struct {
	db *Database
}

// Upsert inserts or updates the stats of a (team, season)
func (r *StatsRepository) Upsert(ctx context.Context, stats models.TeamStats) (err error) {
	defer observe("upsert", "team_stats", time.Now(), &err)

	stats.Normalize()
	query := `
		INSERT INTO team_stats (team_id, season, wins, losses, points_for, points_against, synthetic, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (team_id, season) DO UPDATE SET
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			points_for = EXCLUDED.points_for,
			points_against = EXCLUDED.points_against,
			synthetic = EXCLUDED.synthetic,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.Pool.Exec(ctx, query,
		stats.TeamID, stats.Season, stats.Wins, stats.Losses,
		stats.PointsFor, stats.PointsAgainst, stats.Synthetic, stats.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert team stats %s/%d: %w", stats.TeamID, stats.Season, mapError(err, store.ErrUnknownTeam))
	}
	return nil
}

// Get retrieves the stats of a (team, season)
func (r *StatsRepository) Get(ctx context.Context, teamID string, season int) (_ *models.TeamStats, err error) {
	defer observe("select", "team_stats", time.Now(), &err)

	query := `
		SELECT team_id, season, wins, losses, points_for, points_against, synthetic, updated_at
		FROM team_stats
		WHERE team_id = $1 AND season = $2
	`

	var s models.TeamStats
	err = r.db.Pool.QueryRow(ctx, query, teamID, season).Scan(
		&s.TeamID, &s.Season, &s.Wins, &s.Losses,
		&s.PointsFor, &s.PointsAgainst, &s.Synthetic, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("team stats %s/%d: %w", teamID, season, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team stats: %w", err)
	}
	s.UpdatedAt = s.UpdatedAt.UTC()
	return &s, nil
}

// Count returns the number of stored (team, season) rows
func (r *StatsRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM team_stats`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count team stats: %w", err)
	}
	return n, nil
}
