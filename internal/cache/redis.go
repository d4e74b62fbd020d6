// Package cache keeps composed week views in Redis
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nfl_dashboard/aggregator/internal/metrics"
	"nfl_dashboard/aggregator/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DefaultTTL applies when no TTL is configured
const DefaultTTL = 5 * time.Minute

// ViewCache stores composed views per (season, week). A nil *ViewCache is a
// valid cache that never hits.
type ViewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewViewCache creates a view cache over client
func NewViewCache(client *redis.Client, ttl time.Duration) *ViewCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ViewCache{client: client, ttl: ttl}
}

// Connect opens a Redis client and pings it
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func weekPrefix(week, season int) string {
	return fmt.Sprintf("nfl:view:%d:%d", season, week)
}

func keysKey(week, season int) string {
	return weekPrefix(week, season) + ":keys"
}

func gamesKey(week, season int, f models.Filters) string {
	return fmt.Sprintf("%s:games:%s", weekPrefix(week, season), filterKey(f))
}

func summaryKey(week, season int) string {
	return weekPrefix(week, season) + ":summary"
}

func filterKey(f models.Filters) string {
	flag := func(b bool) byte {
		if b {
			return '1'
		}
		return '0'
	}
	return string([]byte{flag(f.HighProbability), flag(f.Divisional), flag(f.PrimeTime), flag(f.PlayoffImplications)})
}

// GetGames returns a cached games view
func (c *ViewCache) GetGames(ctx context.Context, week, season int, f models.Filters) ([]models.GameWithDetails, bool) {
	var games []models.GameWithDetails
	if !c.get(ctx, gamesKey(week, season, f), &games) {
		return nil, false
	}
	return games, true
}

// SetGames caches a games view
func (c *ViewCache) SetGames(ctx context.Context, week, season int, f models.Filters, games []models.GameWithDetails) {
	c.set(ctx, week, season, gamesKey(week, season, f), games)
}

// GetSummary returns a cached week summary
func (c *ViewCache) GetSummary(ctx context.Context, week, season int) (*models.WeekSummary, bool) {
	var summary models.WeekSummary
	if !c.get(ctx, summaryKey(week, season), &summary) {
		return nil, false
	}
	return &summary, true
}

// SetSummary caches a week summary
func (c *ViewCache) SetSummary(ctx context.Context, summary models.WeekSummary) {
	c.set(ctx, summary.Week, summary.Season, summaryKey(summary.Week, summary.Season), summary)
}

// InvalidateWeek drops every cached view of a week
func (c *ViewCache) InvalidateWeek(ctx context.Context, week, season int) error {
	if c == nil {
		return nil
	}
	start := time.Now()
	defer func() { metrics.RecordCacheOperation("invalidate", time.Since(start).Seconds()) }()

	idx := keysKey(week, season)
	keys, err := c.client.SMembers(ctx, idx).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to list cached views: %w", err)
	}

	keys = append(keys, idx)
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to drop cached views: %w", err)
	}

	log.Debug().Int("week", week).Int("season", season).Int("keys", len(keys)-1).Msg("Invalidated cached views")
	return nil
}

func (c *ViewCache) get(ctx context.Context, key string, out any) bool {
	if c == nil {
		return false
	}
	start := time.Now()
	defer func() { metrics.RecordCacheOperation("get", time.Since(start).Seconds()) }()

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		metrics.RecordCacheMiss()
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Dropping undecodable cache entry")
		metrics.RecordCacheMiss()
		return false
	}

	metrics.RecordCacheHit()
	return true
}

func (c *ViewCache) set(ctx context.Context, week, season int, key string, v any) {
	if c == nil {
		return
	}
	start := time.Now()
	defer func() { metrics.RecordCacheOperation("set", time.Since(start).Seconds()) }()

	data, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to encode cache entry")
		return
	}

	idx := keysKey(week, season)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, c.ttl)
		pipe.SAdd(ctx, idx, key)
		pipe.Expire(ctx, idx, c.ttl)
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}
