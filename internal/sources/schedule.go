// Package sources turns upstream feeds into domain entities, substituting
// synthetic data whenever an upstream fails.
package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nfl_dashboard/aggregator/internal/client"
	"nfl_dashboard/aggregator/internal/metrics"
	"nfl_dashboard/aggregator/internal/models"
	"nfl_dashboard/aggregator/internal/random"
	"nfl_dashboard/aggregator/internal/teams"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog/log"
)

// ScheduleFetcher is the upstream scoreboard
type ScheduleFetcher interface {
	FetchScoreboard(ctx context.Context, week, season int) (*client.Scoreboard, error)
}

// ScheduleSource produces the games of a (week, season)
type ScheduleSource struct {
	fetcher  ScheduleFetcher
	registry *teams.Registry
	rand     *random.Source
	clock    clock.Clock
}

// NewScheduleSource creates a schedule source. A nil fetcher always synthesizes.
func NewScheduleSource(fetcher ScheduleFetcher, registry *teams.Registry, rnd *random.Source, clk clock.Clock) *ScheduleSource {
	if clk == nil {
		clk = clock.New()
	}
	return &ScheduleSource{fetcher: fetcher, registry: registry, rand: rnd, clock: clk}
}

// FetchWeekGames returns the week's games. It never fails: an upstream error
// yields 4-6 synthetic games, while an upstream that answers with no events
// yields an empty week.
func (s *ScheduleSource) FetchWeekGames(ctx context.Context, week, season int) []models.Game {
	if s.fetcher == nil {
		return s.synthesize(week, season, "not_configured")
	}

	board, err := s.fetcher.FetchScoreboard(ctx, week, season)
	if err != nil {
		log.Warn().
			Err(err).
			Int("week", week).
			Int("season", season).
			Msg("Schedule provider failed, synthesizing games")
		return s.synthesize(week, season, client.Reason(err))
	}

	now := s.clock.Now().UTC()
	games := make([]models.Game, 0, len(board.Events))
	for _, ev := range board.Events {
		games = append(games, s.fromEvent(ev, week, season, now))
	}

	log.Debug().
		Int("week", week).
		Int("season", season).
		Int("games", len(games)).
		Msg("Fetched schedule")

	return games
}

// CurrentWeek asks the scoreboard for the current (season, week), falling
// back to a calendar estimate.
func (s *ScheduleSource) CurrentWeek(ctx context.Context) (season, week int) {
	if s.fetcher != nil {
		board, err := s.fetcher.FetchScoreboard(ctx, 0, 0)
		if err == nil && board.Season > 0 && board.Week >= FirstWeek && board.Week <= LastWeek {
			return board.Season, board.Week
		}
		if err != nil {
			log.Warn().Err(err).Msg("Could not resolve current week from scoreboard, estimating")
		}
	}
	return EstimateWeek(s.clock.Now())
}

func (s *ScheduleSource) resolve(abbr, name string) string {
	if id, ok := s.registry.Resolve(abbr); ok {
		return id
	}
	if id, ok := s.registry.Resolve(name); ok {
		return id
	}
	return strings.ToUpper(strings.TrimSpace(abbr))
}

func (s *ScheduleSource) fromEvent(ev client.ScheduleEvent, week, season int, now time.Time) models.Game {
	home := s.resolve(ev.HomeAbbr, ev.HomeName)
	away := s.resolve(ev.AwayAbbr, ev.AwayName)
	status := models.ParseGameStatus(ev.State)
	if ev.Completed {
		status = models.StatusCompleted
	}

	return models.Game{
		ID:                     ev.ID,
		Week:                   week,
		Season:                 season,
		HomeTeamID:             home,
		AwayTeamID:             away,
		Kickoff:                ev.Kickoff,
		HomeScore:              ev.HomeScore,
		AwayScore:              ev.AwayScore,
		Status:                 status,
		IsCompleted:            ev.Completed,
		IsPrimeTime:            models.IsPrimeTimeKickoff(ev.Kickoff),
		IsDivisional:           s.registry.SameDivision(home, away),
		HasPlayoffImplications: models.PlayoffImplications(week),
		UpdatedAt:              now,
	}
}

// SyntheticGameID builds the id of a synthesized matchup
func SyntheticGameID(season, week int, away, home string) string {
	return fmt.Sprintf("%s%d-w%d-%s-at-%s", models.SyntheticIDPrefix, season, week, strings.ToLower(away), strings.ToLower(home))
}

func (s *ScheduleSource) synthesize(week, season int, reason string) []models.Game {
	metrics.RecordFallback("schedule", reason)

	rng := s.rand.For(season, week, "schedule")
	ids := s.registry.IDs()
	n := 4 + rng.IntN(3)
	if n*2 > len(ids) {
		n = len(ids) / 2
	}

	perm := rng.Perm(len(ids))
	slots := slotsFor(n)
	now := s.clock.Now().UTC()

	games := make([]models.Game, 0, n)
	for i := 0; i < n; i++ {
		home := ids[perm[2*i]]
		away := ids[perm[2*i+1]]
		kickoff := slots[i].at(season, week).UTC()

		games = append(games, models.Game{
			ID:                     SyntheticGameID(season, week, away, home),
			Week:                   week,
			Season:                 season,
			HomeTeamID:             home,
			AwayTeamID:             away,
			Kickoff:                kickoff,
			Status:                 models.StatusScheduled,
			IsPrimeTime:            models.IsPrimeTimeKickoff(kickoff),
			IsDivisional:           s.registry.SameDivision(home, away),
			HasPlayoffImplications: models.PlayoffImplications(week),
			Synthetic:              true,
			UpdatedAt:              now,
		})
	}

	log.Info().
		Int("week", week).
		Int("season", season).
		Int("games", len(games)).
		Str("reason", reason).
		Msg("Generated synthetic schedule")

	return games
}
