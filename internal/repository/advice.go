package repository

import (
	"context"
	"fmt"
	"time"

	"nfl_dashboard/aggregator/internal/models"
	"nfl_dashboard/aggregator/internal/store"

	"github.com/jackc/pgx/v5"
)

// AdviceRepository handles commentary database operations
type AdviceRepository struct {
	db *Database
}

// Replace swaps the advice set of a game in one transaction
func (r *AdviceRepository) Replace(ctx context.Context, gameID string, advice []models.Advice) (err error) {
	defer observe("replace", "advice", time.Now(), &err)

	for _, a := range advice {
		if a.GameID != gameID {
			return fmt.Errorf("%w: advice %s belongs to %s", store.ErrInvalid, a.ID, a.GameID)
		}
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM games WHERE id = $1)`, gameID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check game: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: advice for %s", store.ErrUnknownGame, gameID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM advice WHERE game_id = $1`, gameID); err != nil {
		return fmt.Errorf("failed to clear advice: %w", err)
	}

	batch := &pgx.Batch{}
	for _, a := range advice {
		batch.Queue(`
			INSERT INTO advice (id, game_id, source, content, recommendation, captured_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, a.ID, a.GameID, a.Source, models.TruncateRunes(a.Content, models.MaxAdviceContentRunes), a.Recommendation, a.CapturedAt)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert advice: %w", mapError(err, store.ErrUnknownGame))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit advice: %w", err)
	}
	return nil
}

// ListByGameID retrieves a game's advice ordered by capture time
func (r *AdviceRepository) ListByGameID(ctx context.Context, gameID string) (_ []models.Advice, err error) {
	defer observe("select", "advice", time.Now(), &err)

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, game_id, source, content, recommendation, captured_at
		FROM advice
		WHERE game_id = $1
		ORDER BY captured_at, id
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list advice: %w", err)
	}
	defer rows.Close()

	var list []models.Advice
	for rows.Next() {
		var a models.Advice
		if err := rows.Scan(&a.ID, &a.GameID, &a.Source, &a.Content, &a.Recommendation, &a.CapturedAt); err != nil {
			return nil, fmt.Errorf("failed to scan advice: %w", err)
		}
		a.CapturedAt = a.CapturedAt.UTC()
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating advice rows: %w", err)
	}
	return list, nil
}

// Count returns the number of stored advice records
func (r *AdviceRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM advice`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count advice: %w", err)
	}
	return n, nil
}
