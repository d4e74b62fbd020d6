package cache

import (
	"context"
	"testing"
	"time"

	"nfl_dashboard/aggregator/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T) (*ViewCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewViewCache(client, time.Minute), mr
}

func TestViewCache_GamesRoundTripPerFilter(t *testing.T) {
	ctx := context.Background()
	c, _ := setupCache(t)

	games := []models.GameWithDetails{{Game: models.Game{ID: "g1", Week: 6, Season: 2024, HomeTeamID: "KC", AwayTeamID: "BUF"}}}
	c.SetGames(ctx, 6, 2024, models.Filters{}, games)

	got, ok := c.GetGames(ctx, 6, 2024, models.Filters{})
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "g1", got[0].ID)

	_, ok = c.GetGames(ctx, 6, 2024, models.Filters{PrimeTime: true})
	assert.False(t, ok)
	_, ok = c.GetGames(ctx, 7, 2024, models.Filters{})
	assert.False(t, ok)
}

func TestViewCache_InvalidateWeek(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	c.SetGames(ctx, 6, 2024, models.Filters{}, []models.GameWithDetails{})
	c.SetGames(ctx, 6, 2024, models.Filters{Divisional: true}, []models.GameWithDetails{})
	c.SetSummary(ctx, models.WeekSummary{Week: 6, Season: 2024, TotalGames: 3})
	c.SetSummary(ctx, models.WeekSummary{Week: 7, Season: 2024, TotalGames: 1})

	require.NoError(t, c.InvalidateWeek(ctx, 6, 2024))

	_, ok := c.GetGames(ctx, 6, 2024, models.Filters{})
	assert.False(t, ok)
	_, ok = c.GetSummary(ctx, 6, 2024)
	assert.False(t, ok)
	assert.False(t, mr.Exists(keysKey(6, 2024)))

	s, ok := c.GetSummary(ctx, 7, 2024)
	require.True(t, ok)
	assert.Equal(t, 1, s.TotalGames)
}

func TestViewCache_Expires(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	c.SetSummary(ctx, models.WeekSummary{Week: 6, Season: 2024})
	mr.FastForward(2 * time.Minute)

	_, ok := c.GetSummary(ctx, 6, 2024)
	assert.False(t, ok)
}

func TestViewCache_CorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	require.NoError(t, mr.Set(summaryKey(6, 2024), "{not json"))
	_, ok := c.GetSummary(ctx, 6, 2024)
	assert.False(t, ok)
}

func TestViewCache_NilIsNoop(t *testing.T) {
	var c *ViewCache
	ctx := context.Background()

	c.SetSummary(ctx, models.WeekSummary{Week: 1, Season: 2024})
	_, ok := c.GetSummary(ctx, 1, 2024)
	assert.False(t, ok)
	assert.NoError(t, c.InvalidateWeek(ctx, 1, 2024))
}

func TestViewCache_UnreachableRedisIsMiss(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	c := NewViewCache(client, time.Minute)
	mr.Close()

	c.SetSummary(ctx, models.WeekSummary{Week: 1, Season: 2024})
	_, ok := c.GetSummary(ctx, 1, 2024)
	assert.False(t, ok)
}
