package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"nfl_dashboard/aggregator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStore() *Memory {
	return NewMemory(
		models.Team{ID: "KC", Abbreviation: "KC", Name: "Kansas City Chiefs"},
		models.Team{ID: "BAL", Abbreviation: "BAL", Name: "Baltimore Ravens"},
		models.Team{ID: "DAL", Abbreviation: "DAL", Name: "Dallas Cowboys"},
	)
}

func TestMemory_UpsertGame_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := seededStore()

	game := models.Game{ID: "401", Week: 1, Season: 2024, HomeTeamID: "KC", AwayTeamID: "BAL", HomeScore: models.Int(20), AwayScore: models.Int(17)}
	require.NoError(t, s.UpsertGame(ctx, game))

	game.HomeScore = models.Int(27)
	game.AwayScore = models.Int(20)
	require.NoError(t, s.UpsertGame(ctx, game))

	games, err := s.ListGames(ctx, 1, 2024)
	require.NoError(t, err)
	require.Len(t, games, 1, "Same id must not create a second game")
	assert.Equal(t, 27, *games[0].HomeScore)
	assert.Equal(t, 20, *games[0].AwayScore)
}

func TestMemory_UpsertGame_Invariants(t *testing.T) {
	ctx := context.Background()
	s := seededStore()

	err := s.UpsertGame(ctx, models.Game{ID: "g", Week: 1, Season: 2024, HomeTeamID: "KC", AwayTeamID: "KC"})
	assert.ErrorIs(t, err, ErrInvalid)

	err = s.UpsertGame(ctx, models.Game{ID: "g", Week: 1, Season: 2024, HomeTeamID: "KC", AwayTeamID: "XYZ"})
	assert.ErrorIs(t, err, ErrUnknownTeam)

	err = s.UpsertGame(ctx, models.Game{ID: "g", Week: 19, Season: 2024, HomeTeamID: "KC", AwayTeamID: "BAL"})
	assert.ErrorIs(t, err, ErrInvalid)

	err = s.UpsertOdds(ctx, models.Odds{GameID: "missing"})
	assert.ErrorIs(t, err, ErrUnknownGame)

	err = s.UpsertPrediction(ctx, models.Prediction{GameID: "missing", Confidence: 60})
	assert.ErrorIs(t, err, ErrUnknownGame)
}

func TestMemory_ListGames_OrderedByKickoffThenID(t *testing.T) {
	ctx := context.Background()
	s := seededStore()
	kick := time.Date(2024, 9, 8, 17, 0, 0, 0, time.UTC)

	require.NoError(t, s.UpsertGame(ctx, models.Game{ID: "b", Week: 1, Season: 2024, HomeTeamID: "KC", AwayTeamID: "BAL", Kickoff: kick}))
	require.NoError(t, s.UpsertGame(ctx, models.Game{ID: "a", Week: 1, Season: 2024, HomeTeamID: "DAL", AwayTeamID: "BAL", Kickoff: kick}))
	require.NoError(t, s.UpsertGame(ctx, models.Game{ID: "c", Week: 1, Season: 2024, HomeTeamID: "KC", AwayTeamID: "DAL", Kickoff: kick.Add(-time.Hour)}))
	require.NoError(t, s.UpsertGame(ctx, models.Game{ID: "d", Week: 2, Season: 2024, HomeTeamID: "KC", AwayTeamID: "DAL", Kickoff: kick}))

	games, err := s.ListGames(ctx, 1, 2024)
	require.NoError(t, err)
	require.Len(t, games, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{games[0].ID, games[1].ID, games[2].ID})

	season, err := s.ListSeasonGames(ctx, 2024)
	require.NoError(t, err)
	assert.Len(t, season, 4)
}

func TestMemory_TeamStats_OnePerTeamSeason(t *testing.T) {
	ctx := context.Background()
	s := seededStore()

	require.NoError(t, s.UpsertTeamStats(ctx, models.TeamStats{TeamID: "KC", Season: 2024, Wins: 3, Losses: 1}))
	require.NoError(t, s.UpsertTeamStats(ctx, models.TeamStats{TeamID: "KC", Season: 2024, Wins: 4, Losses: 1, PointsFor: -5}))
	require.NoError(t, s.UpsertTeamStats(ctx, models.TeamStats{TeamID: "KC", Season: 2023, Wins: 11, Losses: 6}))

	stats, err := s.GetTeamStats(ctx, "KC", 2024)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Wins)
	assert.Equal(t, 0, stats.PointsFor, "Negative counters are clamped")

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts.TeamStats)

	_, err = s.GetTeamStats(ctx, "BAL", 2024)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_PredictionClampedOnWrite(t *testing.T) {
	ctx := context.Background()
	s := seededStore()
	require.NoError(t, s.UpsertGame(ctx, models.Game{ID: "g", Week: 3, Season: 2024, HomeTeamID: "KC", AwayTeamID: "BAL"}))

	require.NoError(t, s.UpsertPrediction(ctx, models.Prediction{GameID: "g", PredictedWinner: "KC", Confidence: 120}))

	p, err := s.GetPrediction(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, 100, p.Confidence)
}

func TestMemory_AdviceReplacedAndOrdered(t *testing.T) {
	ctx := context.Background()
	s := seededStore()
	require.NoError(t, s.UpsertGame(ctx, models.Game{ID: "g", Week: 3, Season: 2024, HomeTeamID: "KC", AwayTeamID: "BAL"}))

	now := time.Now()
	first := []models.Advice{
		models.NewAdvice("g", "B", "later", nil, now.Add(time.Minute)),
		models.NewAdvice("g", "A", "earlier", nil, now),
	}
	require.NoError(t, s.ReplaceAdvice(ctx, "g", first))

	list, err := s.ListAdvice(ctx, "g")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "earlier", list[0].Content)

	require.NoError(t, s.ReplaceAdvice(ctx, "g", first[:1]))
	list, err = s.ListAdvice(ctx, "g")
	require.NoError(t, err)
	assert.Len(t, list, 1, "Replace must not accumulate advice")

	err = s.ReplaceAdvice(ctx, "g", []models.Advice{models.NewAdvice("other", "A", "x", nil, now)})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestMemory_DeleteGameCascades(t *testing.T) {
	ctx := context.Background()
	s := seededStore()
	require.NoError(t, s.UpsertGame(ctx, models.Game{ID: "g", Week: 3, Season: 2024, HomeTeamID: "KC", AwayTeamID: "BAL"}))
	require.NoError(t, s.UpsertOdds(ctx, models.Odds{GameID: "g", HomeSpread: models.Float(-3)}))
	require.NoError(t, s.UpsertPrediction(ctx, models.Prediction{GameID: "g", Confidence: 60}))

	require.NoError(t, s.DeleteGame(ctx, "g"))

	_, err := s.GetOdds(ctx, "g")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetPrediction(ctx, "g")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteGame(ctx, "g"), ErrNotFound)
}

func TestMemory_ConcurrentWritersSameKey(t *testing.T) {
	ctx := context.Background()
	s := seededStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			_ = s.UpsertGame(ctx, models.Game{ID: "g", Week: 1, Season: 2024, HomeTeamID: "KC", AwayTeamID: "BAL", HomeScore: models.Int(score)})
		}(i)
	}
	wg.Wait()

	games, err := s.ListGames(ctx, 1, 2024)
	require.NoError(t, err)
	assert.Len(t, games, 1)
}

func TestMemory_ReadsDoNotAliasStoredValues(t *testing.T) {
	ctx := context.Background()
	s := seededStore()
	require.NoError(t, s.UpsertGame(ctx, models.Game{ID: "g", Week: 3, Season: 2024, HomeTeamID: "KC", AwayTeamID: "BAL"}))

	spread := models.Float(-3.5)
	require.NoError(t, s.UpsertOdds(ctx, models.Odds{GameID: "g", HomeSpread: spread, HomeMoneyline: models.Int(-160)}))
	*spread = 10

	o, err := s.GetOdds(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, -3.5, *o.HomeSpread, "Caller's pointer does not reach the store")
	*o.HomeSpread = 7
	*o.HomeMoneyline = 400

	again, err := s.GetOdds(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, -3.5, *again.HomeSpread)
	assert.Equal(t, -160, *again.HomeMoneyline)

	require.NoError(t, s.UpsertPrediction(ctx, models.Prediction{
		GameID: "g", PredictedWinner: "KC", Confidence: 70,
		PredictedSpread: models.Float(-4), SentimentScore: models.Float(0.4),
	}))
	p, err := s.GetPrediction(ctx, "g")
	require.NoError(t, err)
	*p.PredictedSpread = 9
	*p.SentimentScore = -1

	p, err = s.GetPrediction(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, -4.0, *p.PredictedSpread)
	assert.Equal(t, 0.4, *p.SentimentScore)
}
