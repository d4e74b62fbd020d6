package repository

import (
	"context"
	"fmt"

	"nfl_dashboard/aggregator/internal/models"
	"nfl_dashboard/aggregator/internal/store"
)

var _ store.Store = (*Database)(nil)

// UpsertTeam implements store.Store
func (db *Database) UpsertTeam(ctx context.Context, team models.Team) error {
	return db.Teams.Upsert(ctx, team)
}

// GetTeam implements store.Store
func (db *Database) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	return db.Teams.GetByID(ctx, id)
}

// ListTeams implements store.Store
func (db *Database) ListTeams(ctx context.Context) ([]models.Team, error) {
	return db.Teams.List(ctx)
}

// UpsertGame implements store.Store
func (db *Database) UpsertGame(ctx context.Context, game models.Game) error {
	return db.Games.Upsert(ctx, game)
}

// GetGame implements store.Store
func (db *Database) GetGame(ctx context.Context, id string) (*models.Game, error) {
	return db.Games.GetByID(ctx, id)
}

// ListGames implements store.Store
func (db *Database) ListGames(ctx context.Context, week, season int) ([]models.Game, error) {
	return db.Games.ListByWeek(ctx, week, season)
}

// ListSeasonGames implements store.Store
func (db *Database) ListSeasonGames(ctx context.Context, season int) ([]models.Game, error) {
	return db.Games.ListBySeason(ctx, season)
}

// DeleteGame implements store.Store
func (db *Database) DeleteGame(ctx context.Context, id string) error {
	return db.Games.Delete(ctx, id)
}

// UpsertTeamStats implements store.Store
func (db *Database) UpsertTeamStats(ctx context.Context, stats models.TeamStats) error {
	return db.Stats.Upsert(ctx, stats)
}

// GetTeamStats implements store.Store
func (db *Database) GetTeamStats(ctx context.Context, teamID string, season int) (*models.TeamStats, error) {
	return db.Stats.Get(ctx, teamID, season)
}

// UpsertOdds implements store.Store
func (db *Database) UpsertOdds(ctx context.Context, odds models.Odds) error {
	return db.Odds.Upsert(ctx, odds)
}

// GetOdds implements store.Store
func (db *Database) GetOdds(ctx context.Context, gameID string) (*models.Odds, error) {
	return db.Odds.GetByGameID(ctx, gameID)
}

// UpsertPrediction implements store.Store
func (db *Database) UpsertPrediction(ctx context.Context, prediction models.Prediction) error {
	return db.Predictions.Upsert(ctx, prediction)
}

// GetPrediction implements store.Store
func (db *Database) GetPrediction(ctx context.Context, gameID string) (*models.Prediction, error) {
	return db.Predictions.GetByGameID(ctx, gameID)
}

// ReplaceAdvice implements store.Store
func (db *Database) ReplaceAdvice(ctx context.Context, gameID string, advice []models.Advice) error {
	return db.Advice.Replace(ctx, gameID, advice)
}

// ListAdvice implements store.Store
func (db *Database) ListAdvice(ctx context.Context, gameID string) ([]models.Advice, error) {
	return db.Advice.ListByGameID(ctx, gameID)
}

// Counts implements store.Store
func (db *Database) Counts(ctx context.Context) (store.Counts, error) {
	var (
		c   store.Counts
		err error
	)
	counters := []struct {
		dst   *int
		count func(context.Context) (int, error)
	}{
		{&c.Teams, db.Teams.Count},
		{&c.Games, db.Games.Count},
		{&c.TeamStats, db.Stats.Count},
		{&c.Odds, db.Odds.Count},
		{&c.Predictions, db.Predictions.Count},
		{&c.Advice, db.Advice.Count},
	}
	for _, counter := range counters {
		if *counter.dst, err = counter.count(ctx); err != nil {
			return store.Counts{}, fmt.Errorf("failed to count collections: %w", err)
		}
	}
	return c, nil
}
