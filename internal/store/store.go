// Package store defines the composed-view store and its in-memory implementation.
package store

import (
	"context"
	"errors"
	"fmt"

	"nfl_dashboard/aggregator/internal/models"
)

var (
	// ErrNotFound is returned when a keyed entity does not exist
	ErrNotFound = errors.New("store: not found")

	// ErrUnknownTeam is returned when a game references a team that is not stored
	ErrUnknownTeam = errors.New("store: game references unknown team")

	// ErrUnknownGame is returned when odds, a prediction or advice reference a missing game
	ErrUnknownGame = errors.New("store: unknown game")

	// ErrInvalid is returned for entities that violate a model invariant
	ErrInvalid = errors.New("store: invalid entity")
)

// Store persists the Team/Game/TeamStats/Odds/Prediction/Advice collections.
// Every write is an upsert keyed by a stable identifier; concurrent writers to
// the same key are last-write-wins.
type Store interface {
	UpsertTeam(ctx context.Context, team models.Team) error
	GetTeam(ctx context.Context, id string) (*models.Team, error)
	ListTeams(ctx context.Context) ([]models.Team, error)

	UpsertGame(ctx context.Context, game models.Game) error
	GetGame(ctx context.Context, id string) (*models.Game, error)
	ListGames(ctx context.Context, week, season int) ([]models.Game, error)
	ListSeasonGames(ctx context.Context, season int) ([]models.Game, error)
	DeleteGame(ctx context.Context, id string) error

	UpsertTeamStats(ctx context.Context, stats models.TeamStats) error
	GetTeamStats(ctx context.Context, teamID string, season int) (*models.TeamStats, error)

	UpsertOdds(ctx context.Context, odds models.Odds) error
	GetOdds(ctx context.Context, gameID string) (*models.Odds, error)

	UpsertPrediction(ctx context.Context, prediction models.Prediction) error
	GetPrediction(ctx context.Context, gameID string) (*models.Prediction, error)

	// ReplaceAdvice swaps the advice set of a game
	ReplaceAdvice(ctx context.Context, gameID string, advice []models.Advice) error
	// ListAdvice returns a game's advice ordered by capture time
	ListAdvice(ctx context.Context, gameID string) ([]models.Advice, error)

	Counts(ctx context.Context) (Counts, error)
}

// Counts reports collection sizes
type Counts struct {
	Teams       int `json:"teams"`
	Games       int `json:"games"`
	TeamStats   int `json:"teamStats"`
	Odds        int `json:"odds"`
	Predictions int `json:"predictions"`
	Advice      int `json:"advice"`
}

// ValidateGame checks the game-level invariants that do not need storage
func ValidateGame(g models.Game) error {
	if g.ID == "" {
		return fmt.Errorf("%w: game id is empty", ErrInvalid)
	}
	if g.HomeTeamID == "" || g.AwayTeamID == "" || g.HomeTeamID == g.AwayTeamID {
		return fmt.Errorf("%w: game %s must reference two distinct teams", ErrInvalid, g.ID)
	}
	if g.Week < 1 || g.Week > 18 {
		return fmt.Errorf("%w: game %s week %d out of range", ErrInvalid, g.ID, g.Week)
	}
	return nil
}
