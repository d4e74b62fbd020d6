// Package pipeline composes schedule, stats, odds, predictions and advice
// into the stored per-week view.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nfl_dashboard/aggregator/internal/advice"
	"nfl_dashboard/aggregator/internal/cache"
	"nfl_dashboard/aggregator/internal/metrics"
	"nfl_dashboard/aggregator/internal/models"
	"nfl_dashboard/aggregator/internal/prediction"
	"nfl_dashboard/aggregator/internal/sources"
	"nfl_dashboard/aggregator/internal/store"
	"nfl_dashboard/aggregator/internal/teams"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog/log"
)

// Default stage budgets
const (
	DefaultOddsStageTimeout       = 20 * time.Second
	DefaultPredictionStageTimeout = 90 * time.Second
)

// Deps are the collaborators of a pipeline
type Deps struct {
	Store    store.Store
	Registry *teams.Registry
	Schedule *sources.ScheduleSource
	Stats    *sources.StatsSource
	Odds     *sources.OddsSource
	Engine   *prediction.Engine
	Advice   *advice.Aggregator

	// Cache is optional
	Cache *cache.ViewCache
	Clock clock.Clock
}

// Options tunes a pipeline
type Options struct {
	OddsStageTimeout       time.Duration
	PredictionStageTimeout time.Duration
}

// Pipeline runs refreshes and serves the composed view
type Pipeline struct {
	store    store.Store
	registry *teams.Registry
	schedule *sources.ScheduleSource
	stats    *sources.StatsSource
	odds     *sources.OddsSource
	engine   *prediction.Engine
	advice   *advice.Aggregator
	cache    *cache.ViewCache
	clock    clock.Clock
	opts     Options
}

// New creates a pipeline
func New(deps Deps, opts Options) *Pipeline {
	if opts.OddsStageTimeout <= 0 {
		opts.OddsStageTimeout = DefaultOddsStageTimeout
	}
	if opts.PredictionStageTimeout <= 0 {
		opts.PredictionStageTimeout = DefaultPredictionStageTimeout
	}
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	return &Pipeline{
		store:    deps.Store,
		registry: deps.Registry,
		schedule: deps.Schedule,
		stats:    deps.Stats,
		odds:     deps.Odds,
		engine:   deps.Engine,
		advice:   deps.Advice,
		cache:    deps.Cache,
		clock:    deps.Clock,
		opts:     opts,
	}
}

type triggerKey struct{}

// WithTrigger labels the refreshes run under ctx for metrics
func WithTrigger(ctx context.Context, trigger string) context.Context {
	return context.WithValue(ctx, triggerKey{}, trigger)
}

func triggerFrom(ctx context.Context) string {
	if t, ok := ctx.Value(triggerKey{}).(string); ok && t != "" {
		return t
	}
	return "manual"
}

// SeedTeams writes every registry team into the store
func (p *Pipeline) SeedTeams(ctx context.Context) error {
	for _, team := range p.registry.All() {
		if err := p.store.UpsertTeam(ctx, team); err != nil {
			return fmt.Errorf("failed to seed team %s: %w", team.ID, err)
		}
	}
	return nil
}

// CurrentWeek resolves the (season, week) to refresh
func (p *Pipeline) CurrentWeek(ctx context.Context) (season, week int) {
	return p.schedule.CurrentWeek(ctx)
}

// refreshState carries what one stage hands to the next
type refreshState struct {
	week, season int
	games        []models.Game
	previousOdds map[string]*models.Odds
}

// Refresh runs one best-effort pass over a (week, season). Stages run in
// order and each one is isolated: a failing or panicking stage is logged
// and the next stage still runs.
func (p *Pipeline) Refresh(ctx context.Context, week, season int) models.RefreshResult {
	start := p.clock.Now()
	trigger := triggerFrom(ctx)
	result := models.RefreshResult{Week: week, Season: season}
	st := &refreshState{week: week, season: season, previousOdds: make(map[string]*models.Odds)}

	log.Info().
		Int("week", week).
		Int("season", season).
		Str("trigger", trigger).
		Msg("Refresh starting")

	p.stage("schedule", func() int {
		st.games = p.schedule.FetchWeekGames(ctx, week, season)
		for _, g := range st.games {
			if g.IsSynthetic() {
				result.Synthetic = true
				break
			}
		}
		return len(st.games)
	})
	p.stage("teams", func() int { return p.ensureTeams(ctx, st.games) })
	p.stage("games", func() int {
		result.GamesUpdated = p.persistGames(ctx, st)
		return result.GamesUpdated
	})
	p.stage("stats", func() int { return p.refreshStats(ctx, st) })
	p.stage("odds", func() int {
		result.OddsUpdated = p.refreshOdds(ctx, st)
		return result.OddsUpdated
	})
	p.stage("predictions", func() int {
		result.PredictionsGenerated = p.refreshPredictions(ctx, st)
		return result.PredictionsGenerated
	})
	p.stage("advice", func() int {
		result.AdviceGenerated = p.refreshAdvice(ctx, st)
		return result.AdviceGenerated
	})
	p.stage("counts", func() int {
		counts, err := p.store.Counts(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to read store counts")
			return 0
		}
		metrics.UpdateStoreStats(counts.Teams, counts.Games, counts.TeamStats, counts.Odds, counts.Predictions, counts.Advice)
		return counts.Games
	})

	if err := p.cache.InvalidateWeek(ctx, week, season); err != nil {
		log.Warn().Err(err).Int("week", week).Int("season", season).Msg("Failed to invalidate view cache")
	}

	result.Duration = p.clock.Since(start)
	metrics.RecordRefresh(trigger, result.Synthetic, result.Duration.Seconds())

	log.Info().
		Int("week", week).
		Int("season", season).
		Int("games", result.GamesUpdated).
		Int("odds", result.OddsUpdated).
		Int("predictions", result.PredictionsGenerated).
		Int("advice", result.AdviceGenerated).
		Bool("synthetic", result.Synthetic).
		Dur("duration", result.Duration).
		Msg("Refresh complete")

	return result
}

// stage runs fn, converting a panic into a logged zero-item stage
func (p *Pipeline) stage(name string, fn func() int) {
	start := p.clock.Now()
	items := 0
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("stage", name).
				Interface("panic", r).
				Msg("Refresh stage panicked")
			metrics.RecordError("pipeline", "panic")
		}
		metrics.RecordStage(name, items, p.clock.Since(start).Seconds())
	}()
	items = fn()
}

// ensureTeams makes every referenced team resolvable, writing a registry
// entry or a placeholder for each id the store does not know yet.
func (p *Pipeline) ensureTeams(ctx context.Context, games []models.Game) int {
	created := 0
	seen := make(map[string]bool)
	for _, g := range games {
		for _, id := range []string{g.HomeTeamID, g.AwayTeamID} {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true

			_, err := p.store.GetTeam(ctx, id)
			if err == nil {
				continue
			}
			if !errors.Is(err, store.ErrNotFound) {
				log.Warn().Err(err).Str("team_id", id).Msg("Failed to look up team")
				continue
			}

			team, ok := p.registry.Get(id)
			if !ok {
				team = models.PlaceholderTeam(id)
				log.Info().Str("team_id", team.ID).Str("conference", team.Conference).Msg("Creating placeholder team")
			}
			if err := p.store.UpsertTeam(ctx, team); err != nil {
				log.Warn().Err(err).Str("team_id", id).Msg("Failed to save team")
				continue
			}
			created++
		}
	}
	return created
}

// persistGames upserts the schedule and prunes synthetic games of the
// week that the latest schedule no longer contains.
func (p *Pipeline) persistGames(ctx context.Context, st *refreshState) int {
	current := make(map[string]bool, len(st.games))
	saved := make([]models.Game, 0, len(st.games))
	for _, g := range st.games {
		if err := p.store.UpsertGame(ctx, g); err != nil {
			log.Warn().Err(err).Str("game_id", g.ID).Msg("Failed to save game")
			continue
		}
		current[g.ID] = true
		saved = append(saved, g)
	}
	st.games = saved

	existing, err := p.store.ListGames(ctx, st.week, st.season)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to list games for pruning")
		return len(saved)
	}
	for _, g := range existing {
		if current[g.ID] || !g.IsSynthetic() {
			continue
		}
		if err := p.store.DeleteGame(ctx, g.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Warn().Err(err).Str("game_id", g.ID).Msg("Failed to prune synthetic game")
			continue
		}
		log.Debug().Str("game_id", g.ID).Msg("Pruned stale synthetic game")
	}

	return len(saved)
}

func (p *Pipeline) refreshStats(ctx context.Context, st *refreshState) int {
	var ids []string
	seen := make(map[string]bool)
	for _, g := range st.games {
		for _, id := range []string{g.HomeTeamID, g.AwayTeamID} {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return 0
	}

	saved := 0
	for _, s := range p.stats.FetchSeasonStats(ctx, st.season, st.week, ids) {
		if err := p.store.UpsertTeamStats(ctx, s); err != nil {
			log.Warn().Err(err).Str("team_id", s.TeamID).Msg("Failed to save team stats")
			continue
		}
		saved++
	}
	return saved
}

func (p *Pipeline) refreshOdds(ctx context.Context, st *refreshState) int {
	reqs := make([]sources.OddsRequest, 0, len(st.games))
	for _, g := range st.games {
		if prev, err := p.store.GetOdds(ctx, g.ID); err == nil {
			st.previousOdds[g.ID] = prev
		}
		reqs = append(reqs, sources.OddsRequest{
			GameID:   g.ID,
			HomeTeam: g.HomeTeamID,
			AwayTeam: g.AwayTeamID,
			Season:   g.Season,
			Week:     g.Week,
			Kickoff:  g.Kickoff,
		})
	}

	stageCtx, cancel := context.WithTimeout(ctx, p.opts.OddsStageTimeout)
	defer cancel()
	lines := p.odds.FetchBatchOdds(stageCtx, reqs)

	saved := 0
	for _, o := range lines {
		if err := p.store.UpsertOdds(ctx, o); err != nil {
			log.Warn().Err(err).Str("game_id", o.GameID).Msg("Failed to save odds")
			continue
		}
		saved++
	}
	return saved
}

func (p *Pipeline) refreshPredictions(ctx context.Context, st *refreshState) int {
	inputs := make([]prediction.PredictInput, 0, len(st.games))
	for _, g := range st.games {
		in, err := p.predictInput(ctx, g)
		if err != nil {
			log.Warn().Err(err).Str("game_id", g.ID).Msg("Skipping prediction for unresolved game")
			continue
		}
		in.PreviousOdds = st.previousOdds[g.ID]
		inputs = append(inputs, in)
	}

	stageCtx, cancel := context.WithTimeout(ctx, p.opts.PredictionStageTimeout)
	defer cancel()
	preds := p.engine.PredictBatch(stageCtx, inputs)

	saved := 0
	for _, pred := range preds {
		if err := p.store.UpsertPrediction(ctx, pred); err != nil {
			log.Warn().Err(err).Str("game_id", pred.GameID).Msg("Failed to save prediction")
			continue
		}
		saved++
	}
	return saved
}

// predictInput joins what the store knows about g
func (p *Pipeline) predictInput(ctx context.Context, g models.Game) (prediction.PredictInput, error) {
	home, err := p.store.GetTeam(ctx, g.HomeTeamID)
	if err != nil {
		return prediction.PredictInput{}, err
	}
	away, err := p.store.GetTeam(ctx, g.AwayTeamID)
	if err != nil {
		return prediction.PredictInput{}, err
	}

	in := prediction.PredictInput{Game: g, HomeTeam: *home, AwayTeam: *away}
	if s, err := p.store.GetTeamStats(ctx, g.HomeTeamID, g.Season); err == nil {
		in.HomeStats = s
	}
	if s, err := p.store.GetTeamStats(ctx, g.AwayTeamID, g.Season); err == nil {
		in.AwayStats = s
	}
	if o, err := p.store.GetOdds(ctx, g.ID); err == nil {
		in.Odds = o
	}
	return in, nil
}

func (p *Pipeline) refreshAdvice(ctx context.Context, st *refreshState) int {
	reqs := make([]advice.AdviceRequest, 0, len(st.games))
	for _, g := range st.games {
		home, err := p.store.GetTeam(ctx, g.HomeTeamID)
		if err != nil {
			continue
		}
		away, err := p.store.GetTeam(ctx, g.AwayTeamID)
		if err != nil {
			continue
		}
		reqs = append(reqs, advice.AdviceRequest{
			GameID:   g.ID,
			HomeTeam: home.Name,
			AwayTeam: away.Name,
			Season:   g.Season,
			Week:     g.Week,
		})
	}

	byGame := make(map[string][]models.Advice)
	for _, a := range p.advice.BatchGenerateAdvice(ctx, reqs) {
		byGame[a.GameID] = append(byGame[a.GameID], a)
	}

	saved := 0
	for _, req := range reqs {
		list, ok := byGame[req.GameID]
		if !ok {
			continue
		}
		if err := p.store.ReplaceAdvice(ctx, req.GameID, list); err != nil {
			log.Warn().Err(err).Str("game_id", req.GameID).Msg("Failed to save advice")
			continue
		}
		saved += len(list)
	}
	return saved
}
