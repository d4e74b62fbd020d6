// Package app wires configuration into a ready pipeline
package app

import (
	"context"
	"fmt"

	"nfl_dashboard/aggregator/internal/advice"
	"nfl_dashboard/aggregator/internal/cache"
	"nfl_dashboard/aggregator/internal/client"
	"nfl_dashboard/aggregator/internal/config"
	"nfl_dashboard/aggregator/internal/pipeline"
	"nfl_dashboard/aggregator/internal/prediction"
	"nfl_dashboard/aggregator/internal/random"
	"nfl_dashboard/aggregator/internal/repository"
	"nfl_dashboard/aggregator/internal/sources"
	"nfl_dashboard/aggregator/internal/store"
	"nfl_dashboard/aggregator/internal/teams"

	"github.com/benbjohnson/clock"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// App is a wired pipeline with the resources it holds
type App struct {
	Pipeline *pipeline.Pipeline
	Store    store.Store

	// Health checks the store backend
	Health func(ctx context.Context) error

	closers []func()
}

// Close releases the database pool and the cache connection
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// Build constructs every collaborator from cfg. Only a configured Postgres
// backend that cannot be reached is an error; Redis is optional and every
// upstream degrades to synthetic data on its own.
func Build(ctx context.Context, cfg *config.Config, clk clock.Clock) (*App, error) {
	if clk == nil {
		clk = clock.New()
	}
	a := &App{Health: func(context.Context) error { return nil }}

	st, err := a.buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Store = st

	viewCache := a.buildCache(ctx, cfg)

	upstream := client.Options{
		MaxRetries:         cfg.UpstreamMaxRetries,
		Concurrency:        cfg.UpstreamConcurrency,
		InsecureSkipVerify: cfg.UpstreamInsecureSkipVerify,
	}
	espnOpts := upstream
	espnOpts.Timeout = cfg.ESPNTimeout
	oddsOpts := upstream
	oddsOpts.Timeout = cfg.OddsAPITimeout
	reasoningOpts := upstream
	reasoningOpts.Timeout = cfg.ReasoningTimeout
	reasoningOpts.MaxRetries = 0

	espn := client.NewESPNClient(cfg.ESPNBaseURL, cfg.ESPNStandingsURL, espnOpts)
	odds := client.NewOddsAPIClient(cfg.OddsAPIBaseURL, cfg.OddsAPIKey, oddsOpts)
	reasoning := client.NewReasoningClient(cfg.ReasoningBaseURL, cfg.ReasoningAPIKey, cfg.ReasoningModel, reasoningOpts)
	reddit := client.NewRedditClient(cfg.RedditBaseURL, espnOpts)

	registry := teams.NewRegistry()
	rnd := random.NewSource(random.NewTimeSeeded(), cfg.SeedSyntheticPerWeek)

	var enricher *prediction.Enricher
	if cfg.EnrichedPredictions {
		enricher = prediction.NewEnricher(0, prediction.DefaultProviders(st, reddit, cfg.RedditSubreddits, clk)...)
	}
	engine := prediction.NewEngine(reasoning, enricher, prediction.Options{
		Timeout:     cfg.ReasoningTimeout,
		Concurrency: cfg.UpstreamConcurrency,
		Enriched:    cfg.EnrichedPredictions,
	}, clk)

	a.Pipeline = pipeline.New(pipeline.Deps{
		Store:    st,
		Registry: registry,
		Schedule: sources.NewScheduleSource(espn, registry, rnd, clk),
		Stats:    sources.NewStatsSource(espn, registry, rnd, clk),
		Odds:     sources.NewOddsSource(odds, registry, rnd, clk),
		Engine:   engine,
		Advice:   advice.NewAggregator(rnd, cfg.AdviceBatchSize, clk),
		Cache:    viewCache,
		Clock:    clk,
	}, pipeline.Options{
		OddsStageTimeout:       cfg.OddsStageTimeout,
		PredictionStageTimeout: cfg.PredictionStageTimeout,
	})

	if err := a.Pipeline.SeedTeams(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to seed teams: %w", err)
	}

	log.Info().
		Str("store", cfg.StoreBackend).
		Bool("cache", viewCache != nil).
		Bool("odds_api", odds.Configured()).
		Bool("reasoning", reasoning.Configured()).
		Bool("enriched", cfg.EnrichedPredictions).
		Msg("Pipeline initialized")

	return a, nil
}

func (a *App) buildStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.StoreBackend != "postgres" {
		return store.NewMemory(), nil
	}

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     cfg.DatabasePort,
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	a.closers = append(a.closers, db.Close)
	a.Health = db.Health
	log.Info().Msg("Database connection established")
	return db, nil
}

func (a *App) buildCache(ctx context.Context, cfg *config.Config) *cache.ViewCache {
	if !cfg.RedisEnabled {
		return nil
	}

	rdb, err := cache.Connect(ctx, cfg.RedisAddr(), cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
		return nil
	}

	a.closers = append(a.closers, func() { closeRedis(rdb) })
	log.Info().Str("addr", cfg.RedisAddr()).Msg("Redis cache connected")
	return cache.NewViewCache(rdb, cfg.CacheTTLView)
}

func closeRedis(rdb *redis.Client) {
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close Redis client")
	}
}
