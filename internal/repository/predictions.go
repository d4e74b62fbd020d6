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

// PredictionRepository handles prediction-related database operations
type PredictionRepository struct {
	db *Database
}

const predictionColumns = `game_id, predicted_winner, confidence, win_probability, analysis,
	recommended_bet, key_factors, predicted_spread, predicted_home_score, predicted_away_score,
	sentiment_score, method, risk_factors, sentiment_impact, weather_impact,
	coaching_edge, value_play, confidence_factors, created_at`

// Upsert inserts or replaces the prediction of a game. Confidence is
// clamped into [50,100] before writing.
func (r *PredictionRepository) Upsert(ctx context.Context, pred models.Prediction) (err error) {
	defer observe("upsert", "predictions", time.Now(), &err)

	pred.Clamp()
	keyFactors := pred.KeyFactors
	if keyFactors == nil {
		keyFactors = []string{}
	}
	riskFactors := pred.RiskFactors
	if riskFactors == nil {
		riskFactors = []string{}
	}

	query := `
		INSERT INTO predictions (` + predictionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (game_id) DO UPDATE SET
			predicted_winner = EXCLUDED.predicted_winner,
			confidence = EXCLUDED.confidence,
			win_probability = EXCLUDED.win_probability,
			analysis = EXCLUDED.analysis,
			recommended_bet = EXCLUDED.recommended_bet,
			key_factors = EXCLUDED.key_factors,
			predicted_spread = EXCLUDED.predicted_spread,
			predicted_home_score = EXCLUDED.predicted_home_score,
			predicted_away_score = EXCLUDED.predicted_away_score,
			sentiment_score = EXCLUDED.sentiment_score,
			method = EXCLUDED.method,
			risk_factors = EXCLUDED.risk_factors,
			sentiment_impact = EXCLUDED.sentiment_impact,
			weather_impact = EXCLUDED.weather_impact,
			coaching_edge = EXCLUDED.coaching_edge,
			value_play = EXCLUDED.value_play,
			confidence_factors = EXCLUDED.confidence_factors,
			created_at = EXCLUDED.created_at
	`

	_, err = r.db.Pool.Exec(ctx, query,
		pred.GameID, pred.PredictedWinner, pred.Confidence, pred.WinProbability, pred.Analysis,
		pred.RecommendedBet, keyFactors, pred.PredictedSpread, pred.PredictedHomeScore, pred.PredictedAwayScore,
		pred.SentimentScore, string(pred.Method), riskFactors, pred.SentimentImpact,
		pred.WeatherImpact, pred.CoachingEdge, pred.ValuePlay, pred.ConfidenceFactors, pred.CreatedAt,
	)
	if err != nil {
		log.Error().Err(err).Str("game_id", pred.GameID).Msg("Failed to upsert prediction")
		return fmt.Errorf("failed to upsert prediction: %w", mapError(err, store.ErrUnknownGame))
	}

	return nil
}

// GetByGameID retrieves the prediction of a game
func (r *PredictionRepository) GetByGameID(ctx context.Context, gameID string) (_ *models.Prediction, err error) {
	defer observe("select", "predictions", time.Now(), &err)

	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE game_id = $1`

	var (
		p      models.Prediction
		method string
	)
	err = r.db.Pool.QueryRow(ctx, query, gameID).Scan(
		&p.GameID, &p.PredictedWinner, &p.Confidence, &p.WinProbability, &p.Analysis,
		&p.RecommendedBet, &p.KeyFactors, &p.PredictedSpread, &p.PredictedHomeScore, &p.PredictedAwayScore,
		&p.SentimentScore, &method, &p.RiskFactors, &p.SentimentImpact,
		&p.WeatherImpact, &p.CoachingEdge, &p.ValuePlay, &p.ConfidenceFactors, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("prediction %s: %w", gameID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}

	p.Method = models.PredictionMethod(method)
	p.CreatedAt = p.CreatedAt.UTC()
	if len(p.RiskFactors) == 0 {
		p.RiskFactors = nil
	}
	return &p, nil
}

// Count returns the number of stored predictions
func (r *PredictionRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM predictions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count predictions: %w", err)
	}
	return n, nil
}
