package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"

	"nfl_dashboard/aggregator/internal/models"
	"nfl_dashboard/aggregator/internal/store"

	"github.com/rs/zerolog/log"
)

// GetGamesWithDetails returns the composed view of a week, ordered by
// kickoff then id. Filters are conjunctive and games whose teams do not
// resolve are left out.
func (p *Pipeline) GetGamesWithDetails(ctx context.Context, week, season int, f models.Filters) ([]models.GameWithDetails, error) {
	if cached, ok := p.cache.GetGames(ctx, week, season, f); ok {
		return cached, nil
	}

	games, err := p.store.ListGames(ctx, week, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	out := make([]models.GameWithDetails, 0, len(games))
	for _, g := range games {
		details, err := p.details(ctx, g)
		if err != nil {
			log.Debug().Err(err).Str("game_id", g.ID).Msg("Skipping unresolved game")
			continue
		}
		if f.Match(details) {
			out = append(out, details)
		}
	}

	p.cache.SetGames(ctx, week, season, f, out)
	return out, nil
}

// details joins teams, stats, lines, prediction and advice onto g
func (p *Pipeline) details(ctx context.Context, g models.Game) (models.GameWithDetails, error) {
	home, err := p.store.GetTeam(ctx, g.HomeTeamID)
	if err != nil {
		return models.GameWithDetails{}, fmt.Errorf("home team: %w", err)
	}
	away, err := p.store.GetTeam(ctx, g.AwayTeamID)
	if err != nil {
		return models.GameWithDetails{}, fmt.Errorf("away team: %w", err)
	}

	d := models.GameWithDetails{Game: g, HomeTeam: *home, AwayTeam: *away}

	if d.HomeStats, err = optional(p.store.GetTeamStats(ctx, g.HomeTeamID, g.Season)); err != nil {
		return d, err
	}
	if d.AwayStats, err = optional(p.store.GetTeamStats(ctx, g.AwayTeamID, g.Season)); err != nil {
		return d, err
	}
	if d.Odds, err = optional(p.store.GetOdds(ctx, g.ID)); err != nil {
		return d, err
	}
	if d.Prediction, err = optional(p.store.GetPrediction(ctx, g.ID)); err != nil {
		return d, err
	}

	d.Advice, err = p.store.ListAdvice(ctx, g.ID)
	if err != nil {
		return d, fmt.Errorf("advice: %w", err)
	}
	if d.Advice == nil {
		d.Advice = []models.Advice{}
	}
	return d, nil
}

// optional treats a missing record as absent rather than as an error
func optional[T any](v *T, err error) (*T, error) {
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return v, err
}

// GetWeekSummary aggregates the predictions of a week
func (p *Pipeline) GetWeekSummary(ctx context.Context, week, season int) (models.WeekSummary, error) {
	if cached, ok := p.cache.GetSummary(ctx, week, season); ok {
		return *cached, nil
	}

	games, err := p.store.ListGames(ctx, week, season)
	if err != nil {
		return models.WeekSummary{}, fmt.Errorf("failed to list games: %w", err)
	}

	summary := models.WeekSummary{Week: week, Season: season, TotalGames: len(games)}
	total := 0
	for _, g := range games {
		pred, err := optional(p.store.GetPrediction(ctx, g.ID))
		if err != nil {
			return models.WeekSummary{}, fmt.Errorf("failed to get prediction: %w", err)
		}
		if pred == nil {
			continue
		}
		summary.AnalyzedGames++
		total += pred.Confidence
		if pred.Confidence >= models.HighConfidenceThreshold {
			summary.HighConfidence++
		}
		if pred.Confidence < models.UpsetAlertThreshold {
			summary.UpsetAlerts++
		}
	}
	if summary.AnalyzedGames > 0 {
		summary.AvgConfidence = round2(float64(total) / float64(summary.AnalyzedGames))
	}

	p.cache.SetSummary(ctx, summary)
	return summary, nil
}

// GetAllTeams lists every known team
func (p *Pipeline) GetAllTeams(ctx context.Context) ([]models.Team, error) {
	list, err := p.store.ListTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return list, nil
}

// GetAccuracy scores stored predictions against completed games of a
// season. Ties and unpredicted games are not counted.
func (p *Pipeline) GetAccuracy(ctx context.Context, season int) (models.Accuracy, error) {
	games, err := p.store.ListSeasonGames(ctx, season)
	if err != nil {
		return models.Accuracy{}, fmt.Errorf("failed to list season games: %w", err)
	}

	acc := models.Accuracy{Season: season}
	for _, g := range games {
		winner := g.Winner()
		if winner == "" {
			continue
		}
		pred, err := optional(p.store.GetPrediction(ctx, g.ID))
		if err != nil {
			return models.Accuracy{}, fmt.Errorf("failed to get prediction: %w", err)
		}
		if pred == nil {
			continue
		}
		acc.CompletedGames++
		if pred.PredictedWinner == winner {
			acc.Correct++
		}
	}
	if acc.CompletedGames > 0 {
		acc.Accuracy = round2(float64(acc.Correct) / float64(acc.CompletedGames))
	}
	return acc, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
