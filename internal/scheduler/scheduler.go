package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nfl_dashboard/aggregator/internal/metrics"
	"nfl_dashboard/aggregator/internal/models"
	"nfl_dashboard/aggregator/internal/pipeline"

	"github.com/benbjohnson/clock"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// LastWeek is the final regular-season week
const LastWeek = 18

// Refresher runs refreshes
type Refresher interface {
	Refresh(ctx context.Context, week, season int) models.RefreshResult
	CurrentWeek(ctx context.Context) (season, week int)
}

// Config controls when refreshes run
type Config struct {
	// NightlyCron refreshes the current and the next week
	NightlyCron string
	// PollInterval refreshes the current week while running
	PollInterval time.Duration
	// Season and Week pin the refreshed week when non-zero
	Season int
	Week   int
}

// Scheduler manages recurring refreshes:
// - Nightly refresh of the current and next week
// - Polling refresh of the current week
type Scheduler struct {
	refresher Refresher
	cfg       Config
	cron      *cron.Cron
	clock     clock.Clock
	ticker    *clock.Ticker
	stopChan  chan struct{}
	stopOnce  sync.Once

	// running serializes refreshes; a tick that finds one in flight is skipped
	running sync.Mutex
}

// NewScheduler creates a new scheduler instance
func NewScheduler(refresher Refresher, cfg Config, clk clock.Clock) *Scheduler {
	if clk == nil {
		clk = clock.New()
	}
	return &Scheduler{
		refresher: refresher,
		cfg:       cfg,
		cron:      cron.New(),
		clock:     clk,
		stopChan:  make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if s.cfg.NightlyCron != "" {
		if _, err := s.cron.AddFunc(s.cfg.NightlyCron, func() {
			log.Info().Msg("Running nightly refresh...")
			s.Nightly(ctx)
		}); err != nil {
			return fmt.Errorf("failed to schedule nightly refresh: %w", err)
		}

		s.cron.Start()
		log.Info().
			Str("schedule", s.cfg.NightlyCron).
			Msg("Nightly refresh scheduled")
	}

	if s.cfg.PollInterval > 0 {
		s.ticker = s.clock.Ticker(s.cfg.PollInterval)
		log.Info().
			Dur("interval", s.cfg.PollInterval).
			Msg("Polling refresh started")

		go s.poll(ctx)
	}

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		log.Info().Msg("Stopping scheduler...")

		<-s.cron.Stop().Done()

		if s.ticker != nil {
			s.ticker.Stop()
		}

		close(s.stopChan)
		log.Info().Msg("Scheduler stopped")
	})
}

func (s *Scheduler) poll(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Context cancelled, stopping polling refresh")
			return
		case <-s.stopChan:
			log.Info().Msg("Stop signal received, stopping polling refresh")
			return
		case <-s.ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one polling refresh of the current week. It reports false when
// a refresh was already running and the tick was skipped.
func (s *Scheduler) Tick(ctx context.Context) (models.RefreshResult, bool) {
	if !s.running.TryLock() {
		log.Debug().Msg("Refresh already running, skipping tick")
		return models.RefreshResult{}, false
	}
	defer s.running.Unlock()

	metrics.RecordSchedulerTick("poll")
	season, week := s.week(ctx)
	return s.refresher.Refresh(pipeline.WithTrigger(ctx, "poll"), week, season), true
}

// Nightly refreshes the current week and, before the final week, the next one
func (s *Scheduler) Nightly(ctx context.Context) []models.RefreshResult {
	s.running.Lock()
	defer s.running.Unlock()

	metrics.RecordSchedulerTick("nightly")
	season, week := s.week(ctx)
	ctx = pipeline.WithTrigger(ctx, "nightly")

	results := []models.RefreshResult{s.refresher.Refresh(ctx, week, season)}
	if week < LastWeek && ctx.Err() == nil {
		results = append(results, s.refresher.Refresh(ctx, week+1, season))
	}

	log.Info().
		Int("season", season).
		Int("week", week).
		Int("refreshes", len(results)).
		Msg("Nightly refresh complete")

	return results
}

func (s *Scheduler) week(ctx context.Context) (season, week int) {
	if s.cfg.Season > 0 && s.cfg.Week > 0 {
		return s.cfg.Season, s.cfg.Week
	}
	season, week = s.refresher.CurrentWeek(ctx)
	if s.cfg.Season > 0 {
		season = s.cfg.Season
	}
	if s.cfg.Week > 0 {
		week = s.cfg.Week
	}
	return season, week
}
