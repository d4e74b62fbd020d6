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

// OddsRepository handles betting line database operations
type OddsRepository struct {
	db *Database
}

// Upsert inserts or replaces the lines of a game
func (r *OddsRepository) Upsert(ctx context.Context, odds models.Odds) (err error) {
	defer observe("upsert", "odds", time.Now(), &err)

	query := `
		INSERT INTO odds (
			game_id, home_spread, away_spread, spread_price, total_points, total_price,
			home_moneyline, away_moneyline, bookmaker, synthetic, fetched_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (game_id) DO UPDATE SET
			home_spread = EXCLUDED.home_spread,
			away_spread = EXCLUDED.away_spread,
			spread_price = EXCLUDED.spread_price,
			total_points = EXCLUDED.total_points,
			total_price = EXCLUDED.total_price,
			home_moneyline = EXCLUDED.home_moneyline,
			away_moneyline = EXCLUDED.away_moneyline,
			bookmaker = EXCLUDED.bookmaker,
			synthetic = EXCLUDED.synthetic,
			fetched_at = EXCLUDED.fetched_at
	`

	_, err = r.db.Pool.Exec(ctx, query,
		odds.GameID, odds.HomeSpread, odds.AwaySpread, odds.SpreadPrice, odds.TotalPoints, odds.TotalPrice,
		odds.HomeMoneyline, odds.AwayMoneyline, odds.Bookmaker, odds.Synthetic, odds.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert odds for %s: %w", odds.GameID, mapError(err, store.ErrUnknownGame))
	}

	log.Debug().
		Str("game_id", odds.GameID).
		Str("bookmaker", odds.Bookmaker).
		Bool("synthetic", odds.Synthetic).
		Msg("Odds upserted")

	return nil
}

// GetByGameID retrieves the lines of a game
func (r *OddsRepository) GetByGameID(ctx context.Context, gameID string) (_ *models.Odds, err error) {
	defer observe("select", "odds", time.Now(), &err)

	query := `
		SELECT game_id, home_spread, away_spread, spread_price, total_points, total_price,
		       home_moneyline, away_moneyline, bookmaker, synthetic, fetched_at
		FROM odds
		WHERE game_id = $1
	`

	var o models.Odds
	err = r.db.Pool.QueryRow(ctx, query, gameID).Scan(
		&o.GameID, &o.HomeSpread, &o.AwaySpread, &o.SpreadPrice, &o.TotalPoints, &o.TotalPrice,
		&o.HomeMoneyline, &o.AwayMoneyline, &o.Bookmaker, &o.Synthetic, &o.FetchedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("odds %s: %w", gameID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get odds: %w", err)
	}
	o.FetchedAt = o.FetchedAt.UTC()
	return &o, nil
}

// Count returns the number of games with stored lines
func (r *OddsRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM odds`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count odds: %w", err)
	}
	return n, nil
}
