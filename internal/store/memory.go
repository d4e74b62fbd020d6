package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"nfl_dashboard/aggregator/internal/models"
)

type statsKey struct {
	teamID string
	season int
}

// Memory is a map-backed Store guarded by a single RWMutex
type Memory struct {
	mu          sync.RWMutex
	teams       map[string]models.Team
	games       map[string]models.Game
	stats       map[statsKey]models.TeamStats
	odds        map[string]models.Odds
	predictions map[string]models.Prediction
	advice      map[string][]models.Advice
}

// NewMemory returns an empty store, optionally seeded with teams
func NewMemory(seed ...models.Team) *Memory {
	m := &Memory{
		teams:       make(map[string]models.Team),
		games:       make(map[string]models.Game),
		stats:       make(map[statsKey]models.TeamStats),
		odds:        make(map[string]models.Odds),
		predictions: make(map[string]models.Prediction),
		advice:      make(map[string][]models.Advice),
	}
	for _, t := range seed {
		m.teams[t.ID] = t
	}
	return m
}

// UpsertTeam stores a team keyed by id
func (m *Memory) UpsertTeam(_ context.Context, team models.Team) error {
	if team.ID == "" {
		return fmt.Errorf("%w: team id is empty", ErrInvalid)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.teams[team.ID] = team
	return nil
}

// GetTeam returns a team by id
func (m *Memory) GetTeam(_ context.Context, id string) (*models.Team, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.teams[id]
	if !ok {
		return nil, fmt.Errorf("team %s: %w", id, ErrNotFound)
	}
	return &t, nil
}

// ListTeams returns all teams ordered by id
func (m *Memory) ListTeams(_ context.Context) ([]models.Team, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Team, 0, len(m.teams))
	for _, t := range m.teams {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpsertGame stores a game keyed by id; both teams must already exist
func (m *Memory) UpsertGame(_ context.Context, game models.Game) error {
	if err := ValidateGame(game); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.teams[game.HomeTeamID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTeam, game.HomeTeamID)
	}
	if _, ok := m.teams[game.AwayTeamID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTeam, game.AwayTeamID)
	}

	m.games[game.ID] = game
	return nil
}

// GetGame returns a game by id
func (m *Memory) GetGame(_ context.Context, id string) (*models.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.games[id]
	if !ok {
		return nil, fmt.Errorf("game %s: %w", id, ErrNotFound)
	}
	return &g, nil
}

// ListGames returns the games of a (week, season) ordered by kickoff then id
func (m *Memory) ListGames(_ context.Context, week, season int) ([]models.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Game
	for _, g := range m.games {
		if g.Week == week && g.Season == season {
			out = append(out, g)
		}
	}
	SortGames(out)
	return out, nil
}

// ListSeasonGames returns every game of a season ordered by kickoff then id
func (m *Memory) ListSeasonGames(_ context.Context, season int) ([]models.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Game
	for _, g := range m.games {
		if g.Season == season {
			out = append(out, g)
		}
	}
	SortGames(out)
	return out, nil
}

// DeleteGame removes a game with its odds, prediction and advice
func (m *Memory) DeleteGame(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.games[id]; !ok {
		return fmt.Errorf("game %s: %w", id, ErrNotFound)
	}
	delete(m.games, id)
	delete(m.odds, id)
	delete(m.predictions, id)
	delete(m.advice, id)
	return nil
}

// UpsertTeamStats stores stats keyed by (team, season)
func (m *Memory) UpsertTeamStats(_ context.Context, stats models.TeamStats) error {
	if stats.TeamID == "" {
		return fmt.Errorf("%w: stats team id is empty", ErrInvalid)
	}
	stats.Normalize()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats[statsKey{stats.TeamID, stats.Season}] = stats
	return nil
}

// GetTeamStats returns the stats of a team for a season
func (m *Memory) GetTeamStats(_ context.Context, teamID string, season int) (*models.TeamStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.stats[statsKey{teamID, season}]
	if !ok {
		return nil, fmt.Errorf("stats %s/%d: %w", teamID, season, ErrNotFound)
	}
	return &s, nil
}

// UpsertOdds stores odds keyed by game id
func (m *Memory) UpsertOdds(_ context.Context, odds models.Odds) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.games[odds.GameID]; !ok {
		return fmt.Errorf("%w: odds for %s", ErrUnknownGame, odds.GameID)
	}
	m.odds[odds.GameID] = odds.Clone()
	return nil
}

// GetOdds returns the odds of a game
func (m *Memory) GetOdds(_ context.Context, gameID string) (*models.Odds, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.odds[gameID]
	if !ok {
		return nil, fmt.Errorf("odds %s: %w", gameID, ErrNotFound)
	}
	o = o.Clone()
	return &o, nil
}

// UpsertPrediction stores a prediction keyed by game id
func (m *Memory) UpsertPrediction(_ context.Context, prediction models.Prediction) error {
	prediction.Clamp()
	prediction = prediction.Clone()

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.games[prediction.GameID]; !ok {
		return fmt.Errorf("%w: prediction for %s", ErrUnknownGame, prediction.GameID)
	}
	m.predictions[prediction.GameID] = prediction
	return nil
}

// GetPrediction returns the prediction of a game
func (m *Memory) GetPrediction(_ context.Context, gameID string) (*models.Prediction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.predictions[gameID]
	if !ok {
		return nil, fmt.Errorf("prediction %s: %w", gameID, ErrNotFound)
	}
	p = p.Clone()
	return &p, nil
}

// ReplaceAdvice swaps the advice set of a game
func (m *Memory) ReplaceAdvice(_ context.Context, gameID string, advice []models.Advice) error {
	list := make([]models.Advice, 0, len(advice))
	for _, a := range advice {
		if a.GameID != gameID {
			return fmt.Errorf("%w: advice %s belongs to %s", ErrInvalid, a.ID, a.GameID)
		}
		a.Content = models.TruncateRunes(a.Content, models.MaxAdviceContentRunes)
		list = append(list, a)
	}
	sortAdvice(list)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.games[gameID]; !ok {
		return fmt.Errorf("%w: advice for %s", ErrUnknownGame, gameID)
	}
	m.advice[gameID] = list
	return nil
}

// ListAdvice returns a game's advice ordered by capture time
func (m *Memory) ListAdvice(_ context.Context, gameID string) ([]models.Advice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]models.Advice(nil), m.advice[gameID]...), nil
}

// Counts reports collection sizes
func (m *Memory) Counts(_ context.Context) (Counts, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c := Counts{
		Teams:       len(m.teams),
		Games:       len(m.games),
		TeamStats:   len(m.stats),
		Odds:        len(m.odds),
		Predictions: len(m.predictions),
	}
	for _, list := range m.advice {
		c.Advice += len(list)
	}
	return c, nil
}

// SortGames orders games by kickoff, then id
func SortGames(games []models.Game) {
	sort.Slice(games, func(i, j int) bool {
		if !games[i].Kickoff.Equal(games[j].Kickoff) {
			return games[i].Kickoff.Before(games[j].Kickoff)
		}
		return strings.Compare(games[i].ID, games[j].ID) < 0
	})
}

func sortAdvice(list []models.Advice) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CapturedAt.Before(list[j].CapturedAt)
	})
}
