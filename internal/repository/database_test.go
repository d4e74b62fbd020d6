//go:build integration

package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"nfl_dashboard/aggregator/internal/models"
	"nfl_dashboard/aggregator/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests for database operations
// Run with: go test -v -tags=integration ./internal/repository/...

func setupTestDB(t *testing.T) (*Database, context.Context) {
	ctx := context.Background()

	cfg := Config{
		Host:     "localhost",
		Port:     5432,
		Database: "nfl_dashboard_test",
		User:     "nfl_user",
		Password: "nfl_password",
		SSLMode:  "disable",
	}
	if host := os.Getenv("TEST_DATABASE_HOST"); host != "" {
		cfg.Host = host
	}

	db, err := NewDatabase(ctx, cfg)
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, db.Migrate(ctx), "Failed to apply schema")

	_, err = db.Pool.Exec(ctx, `TRUNCATE advice, predictions, odds, team_stats, games, teams CASCADE`)
	require.NoError(t, err, "Failed to reset tables")

	return db, ctx
}

func teardownTestDB(t *testing.T, db *Database) {
	db.Close()
}

func seedTeams(t *testing.T, ctx context.Context, db *Database) {
	for _, team := range []models.Team{
		{ID: "KC", Abbreviation: "KC", Name: "Kansas City Chiefs", City: "Kansas City", Conference: "AFC", Division: "West"},
		{ID: "BUF", Abbreviation: "BUF", Name: "Buffalo Bills", City: "Buffalo", Conference: "AFC", Division: "East"},
	} {
		require.NoError(t, db.UpsertTeam(ctx, team))
	}
}

func testGame() models.Game {
	return models.Game{
		ID:         "401671001",
		Week:       5,
		Season:     2024,
		HomeTeamID: "KC",
		AwayTeamID: "BUF",
		Kickoff:    time.Date(2024, 10, 6, 20, 20, 0, 0, time.UTC),
		Status:     models.StatusScheduled,
		UpdatedAt:  time.Now().UTC(),
	}
}

func TestDatabaseConnection(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	// Test health check
	err := db.Health(ctx)
	assert.NoError(t, err, "Database health check should pass")

	// Test stats
	stats := db.PoolStats()
	assert.NotNil(t, stats, "Should return connection pool stats")
	assert.GreaterOrEqual(t, stats["max_conns"].(int32), int32(1), "Should have at least 1 max connection")
}

func TestDatabase_TeamsAndGames(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	seedTeams(t, ctx, db)

	team, err := db.GetTeam(ctx, "KC")
	require.NoError(t, err)
	assert.Equal(t, "Kansas City Chiefs", team.Name)

	_, err = db.GetTeam(ctx, "ZZZ")
	assert.ErrorIs(t, err, store.ErrNotFound)

	game := testGame()
	require.NoError(t, db.UpsertGame(ctx, game))

	game.Status = models.StatusCompleted
	game.IsCompleted = true
	game.HomeScore = models.Int(24)
	game.AwayScore = models.Int(20)
	require.NoError(t, db.UpsertGame(ctx, game), "Upsert should replace the existing row")

	games, err := db.ListGames(ctx, 5, 2024)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "KC", games[0].Winner())
	assert.Equal(t, models.StatusCompleted, games[0].Status)

	orphan := testGame()
	orphan.ID = "orphan"
	orphan.HomeTeamID = "ZZZ"
	assert.ErrorIs(t, db.UpsertGame(ctx, orphan), store.ErrUnknownTeam)
}

func TestDatabase_LinesPredictionsAdvice(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	seedTeams(t, ctx, db)
	game := testGame()
	require.NoError(t, db.UpsertGame(ctx, game))

	odds := models.Odds{
		GameID:     game.ID,
		HomeSpread: models.Float(-2.5),
		AwaySpread: models.Float(2.5),
		Bookmaker:  "draftkings",
		FetchedAt:  time.Now().UTC(),
	}
	require.NoError(t, db.UpsertOdds(ctx, odds))
	assert.ErrorIs(t, db.UpsertOdds(ctx, models.Odds{GameID: "missing", Bookmaker: "x", FetchedAt: time.Now()}), store.ErrUnknownGame)

	stored, err := db.GetOdds(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, -2.5, *stored.HomeSpread)
	assert.Nil(t, stored.TotalPoints)

	pred := models.Prediction{
		GameID:          game.ID,
		PredictedWinner: "KC",
		Confidence:      140,
		Analysis:        "Chiefs at home.",
		RecommendedBet:  "Kansas City Chiefs -2.5",
		KeyFactors:      []string{"Home field", "Record"},
		PredictedSpread: models.Float(-3.5),
		SentimentScore:  models.Float(0.25),
		Method:          models.MethodFallback,
		ConfidenceFactors: &models.ConfidenceFactors{
			DataQuality: 0.5, ModelConsensus: 0.5, MarketAlignment: 0.67, HistoricalAccuracy: 0.5,
		},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.UpsertPrediction(ctx, pred))

	got, err := db.GetPrediction(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Confidence, "Confidence should be clamped on write")
	assert.Equal(t, []string{"Home field", "Record"}, got.KeyFactors)
	require.NotNil(t, got.PredictedSpread)
	assert.Equal(t, -3.5, *got.PredictedSpread)
	require.NotNil(t, got.SentimentScore)
	assert.Equal(t, 0.25, *got.SentimentScore)
	assert.Nil(t, got.PredictedHomeScore)
	require.NotNil(t, got.ConfidenceFactors)
	assert.Equal(t, 0.67, got.ConfidenceFactors.MarketAlignment)

	now := time.Now().UTC()
	first := []models.Advice{
		models.NewAdvice(game.ID, "CBS Sports", "Take the Chiefs.", nil, now.Add(-time.Hour)),
		models.NewAdvice(game.ID, "Vegas Insider", "Sharp money on Buffalo.", nil, now),
	}
	require.NoError(t, db.ReplaceAdvice(ctx, game.ID, first))
	second := []models.Advice{models.NewAdvice(game.ID, "The Athletic", "Coin flip.", nil, now)}
	require.NoError(t, db.ReplaceAdvice(ctx, game.ID, second))

	advice, err := db.ListAdvice(ctx, game.ID)
	require.NoError(t, err)
	require.Len(t, advice, 1, "Replace should drop the previous set")
	assert.Equal(t, "The Athletic", advice[0].Source)

	assert.ErrorIs(t, db.ReplaceAdvice(ctx, "missing", nil), store.ErrUnknownGame)

	counts, err := db.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.Counts{Teams: 2, Games: 1, Odds: 1, Predictions: 1, Advice: 1}, counts)

	require.NoError(t, db.DeleteGame(ctx, game.ID))
	_, err = db.GetOdds(ctx, game.ID)
	assert.ErrorIs(t, err, store.ErrNotFound, "Lines should cascade with the game")
	assert.ErrorIs(t, db.DeleteGame(ctx, game.ID), store.ErrNotFound)
}
