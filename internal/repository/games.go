package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nfl_dashboard/aggregator/internal/models"
	"nfl_dashboard/aggregator/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// GameRepository handles game database operations
type GameRepository struct {
	db *Database
}

const gameColumns = `id, week, season, home_team_id, away_team_id, kickoff,
	home_score, away_score, status, is_completed, is_prime_time, is_divisional,
	has_playoff_implications, synthetic, updated_at`

// Upsert inserts or updates a game
func (r *GameRepository) Upsert(ctx context.Context, game models.Game) (err error) {
	defer observe("upsert", "games", time.Now(), &err)

	if err := store.ValidateGame(game); err != nil {
		return err
	}

	query := `
		INSERT INTO games (` + gameColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			week = EXCLUDED.week,
			season = EXCLUDED.season,
			home_team_id = EXCLUDED.home_team_id,
			away_team_id = EXCLUDED.away_team_id,
			kickoff = EXCLUDED.kickoff,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			status = EXCLUDED.status,
			is_completed = EXCLUDED.is_completed,
			is_prime_time = EXCLUDED.is_prime_time,
			is_divisional = EXCLUDED.is_divisional,
			has_playoff_implications = EXCLUDED.has_playoff_implications,
			synthetic = EXCLUDED.synthetic,
			updated_at = EXCLUDED.updated_at
	`

	updatedAt := game.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err = r.db.Pool.Exec(ctx, query,
		game.ID, game.Week, game.Season, game.HomeTeamID, game.AwayTeamID, game.Kickoff,
		game.HomeScore, game.AwayScore, string(game.Status), game.IsCompleted, game.IsPrimeTime,
		game.IsDivisional, game.HasPlayoffImplications, game.Synthetic, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert game %s: %w", game.ID, mapError(err, store.ErrUnknownTeam))
	}

	log.Debug().
		Str("game_id", game.ID).
		Str("home", game.HomeTeamID).
		Str("away", game.AwayTeamID).
		Msg("Game upserted")

	return nil
}

// GetByID retrieves a game by id
func (r *GameRepository) GetByID(ctx context.Context, id string) (_ *models.Game, err error) {
	defer observe("select", "games", time.Now(), &err)

	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`

	game, err := scanGame(r.db.Pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("game %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return game, nil
}

// ListByWeek retrieves the games of a (week, season) ordered by kickoff then id
func (r *GameRepository) ListByWeek(ctx context.Context, week, season int) (_ []models.Game, err error) {
	defer observe("select", "games", time.Now(), &err)

	query := `SELECT ` + gameColumns + ` FROM games WHERE week = $1 AND season = $2 ORDER BY kickoff, id`
	return r.list(ctx, query, week, season)
}

// ListBySeason retrieves every game of a season ordered by kickoff then id
func (r *GameRepository) ListBySeason(ctx context.Context, season int) (_ []models.Game, err error) {
	defer observe("select", "games", time.Now(), &err)

	query := `SELECT ` + gameColumns + ` FROM games WHERE season = $1 ORDER BY kickoff, id`
	return r.list(ctx, query, season)
}

func (r *GameRepository) list(ctx context.Context, query string, args ...any) ([]models.Game, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var games []models.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, *game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating game rows: %w", err)
	}
	return games, nil
}

// Delete removes a game; odds, prediction and advice cascade
func (r *GameRepository) Delete(ctx context.Context, id string) (err error) {
	defer observe("delete", "games", time.Now(), &err)

	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("game %s: %w", id, store.ErrNotFound)
	}
	return nil
}

// Count returns the number of stored games
func (r *GameRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM games`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}
	return n, nil
}

func scanGame(row pgx.Row) (*models.Game, error) {
	var (
		g      models.Game
		status string
	)
	err := row.Scan(
		&g.ID, &g.Week, &g.Season, &g.HomeTeamID, &g.AwayTeamID, &g.Kickoff,
		&g.HomeScore, &g.AwayScore, &status, &g.IsCompleted, &g.IsPrimeTime, &g.IsDivisional,
		&g.HasPlayoffImplications, &g.Synthetic, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	g.Status = models.ParseGameStatus(status)
	g.Kickoff = g.Kickoff.UTC()
	g.UpdatedAt = g.UpdatedAt.UTC()
	return &g, nil
}
