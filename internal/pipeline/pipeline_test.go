package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nfl_dashboard/aggregator/internal/advice"
	"nfl_dashboard/aggregator/internal/cache"
	"nfl_dashboard/aggregator/internal/client"
	"nfl_dashboard/aggregator/internal/models"
	"nfl_dashboard/aggregator/internal/prediction"
	"nfl_dashboard/aggregator/internal/random"
	"nfl_dashboard/aggregator/internal/sources"
	"nfl_dashboard/aggregator/internal/store"
	"nfl_dashboard/aggregator/internal/teams"

	"github.com/alicebob/miniredis/v2"
	"github.com/benbjohnson/clock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSchedule struct {
	board *client.Scoreboard
	err   error
}

func (f *fakeSchedule) FetchScoreboard(_ context.Context, _, _ int) (*client.Scoreboard, error) {
	return f.board, f.err
}

// blockingOdds never answers before the stage deadline
type blockingOdds struct{}

func (blockingOdds) FetchNFLOdds(ctx context.Context) ([]client.OddsEvent, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type blockingReasoner struct{}

func (blockingReasoner) Configured() bool { return true }

func (blockingReasoner) Complete(ctx context.Context, _, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// panickingStore fails the odds stage loudly
type panickingStore struct {
	*store.Memory
}

func (panickingStore) UpsertOdds(context.Context, models.Odds) error {
	panic("odds table on fire")
}

// hidingStore pretends one team does not exist
type hidingStore struct {
	*store.Memory
	hidden string
}

func (s hidingStore) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	if id == s.hidden {
		return nil, store.ErrNotFound
	}
	return s.Memory.GetTeam(ctx, id)
}

type testEnv struct {
	store    store.Store
	schedule sources.ScheduleFetcher
	odds     sources.OddsFetcher
	reasoner prediction.Reasoner
	cache    *cache.ViewCache
	opts     Options
}

func mockClock() *clock.Mock {
	c := clock.NewMock()
	c.Set(time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC))
	return c
}

// unreachable returns the URL of a server that is no longer listening
func unreachable(t *testing.T) string {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()
	return url
}

func newPipeline(t *testing.T, env testEnv) *Pipeline {
	t.Helper()

	registry := teams.NewRegistry()
	clk := mockClock()
	rnd := random.NewSource(random.New(7), false)
	opts := client.Options{Timeout: time.Second, MaxRetries: 0, RetryDelay: time.Millisecond}
	down := unreachable(t)

	if env.store == nil {
		env.store = store.NewMemory()
	}
	if env.schedule == nil {
		env.schedule = client.NewESPNClient(down, down, opts)
	}
	if env.odds == nil {
		env.odds = client.NewOddsAPIClient(down, "test-key", opts)
	}
	if env.reasoner == nil {
		env.reasoner = client.NewReasoningClient(down, "test-key", "test-model", opts)
	}

	p := New(Deps{
		Store:    env.store,
		Registry: registry,
		Schedule: sources.NewScheduleSource(env.schedule, registry, rnd, clk),
		Stats:    sources.NewStatsSource(client.NewESPNClient(down, down, opts), registry, rnd, clk),
		Odds:     sources.NewOddsSource(env.odds, registry, rnd, clk),
		Engine:   prediction.NewEngine(env.reasoner, nil, prediction.Options{Timeout: time.Second}, clk),
		Advice:   advice.NewAggregator(rnd, advice.DefaultBatchSize, clk),
		Cache:    env.cache,
		Clock:    clk,
	}, env.opts)
	require.NoError(t, p.SeedTeams(context.Background()))
	return p
}

func TestRefresh_AllUpstreamsUnreachable(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t, testEnv{})

	result := p.Refresh(ctx, 5, 2024)

	assert.True(t, result.Synthetic)
	assert.Equal(t, 5, result.Week)
	assert.GreaterOrEqual(t, result.GamesUpdated, 4)
	assert.LessOrEqual(t, result.GamesUpdated, 6)
	assert.Equal(t, result.GamesUpdated, result.OddsUpdated, "Every synthetic game gets synthetic lines")
	assert.Equal(t, result.GamesUpdated, result.PredictionsGenerated, "Every game falls back to the heuristic")
	assert.GreaterOrEqual(t, result.AdviceGenerated, 6*result.GamesUpdated)
	assert.LessOrEqual(t, result.AdviceGenerated, 12*result.GamesUpdated)

	games, err := p.GetGamesWithDetails(ctx, 5, 2024, models.Filters{})
	require.NoError(t, err)
	require.Len(t, games, result.GamesUpdated)

	for _, g := range games {
		assert.Contains(t, g.ID, models.SyntheticIDPrefix)
		require.NotNil(t, g.Odds)
		assert.True(t, g.Odds.Synthetic)
		assert.GreaterOrEqual(t, *g.Odds.HomeSpread, sources.MinSyntheticSpread)
		assert.LessOrEqual(t, *g.Odds.HomeSpread, sources.MaxSyntheticSpread)
		assert.GreaterOrEqual(t, *g.Odds.TotalPoints, sources.MinSyntheticTotal)
		assert.LessOrEqual(t, *g.Odds.TotalPoints, sources.MaxSyntheticTotal)

		require.NotNil(t, g.Prediction)
		assert.Equal(t, models.MethodFallback, g.Prediction.Method)
		assert.GreaterOrEqual(t, g.Prediction.Confidence, prediction.FallbackMinConfidence)
		assert.LessOrEqual(t, g.Prediction.Confidence, prediction.FallbackMaxConfidence)

		require.NotNil(t, g.HomeStats)
		require.NotNil(t, g.AwayStats)
		assert.NotEmpty(t, g.Advice)
	}
}

func TestRefresh_PrunesStaleSyntheticGames(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	p := newPipeline(t, testEnv{store: st})

	p.Refresh(ctx, 5, 2024)
	second := p.Refresh(ctx, 5, 2024)

	games, err := st.ListGames(ctx, 5, 2024)
	require.NoError(t, err)
	assert.Len(t, games, second.GamesUpdated, "Only the latest synthetic schedule survives")
}

func TestRefresh_PlaceholderTeams(t *testing.T) {
	ctx := context.Background()
	kickoff := time.Date(2024, 10, 6, 17, 0, 0, 0, time.UTC)
	schedule := &fakeSchedule{board: &client.Scoreboard{Season: 2024, Week: 5, Events: []client.ScheduleEvent{
		{ID: "401", Kickoff: kickoff, HomeAbbr: "XFL", HomeName: "Expansion Team", AwayAbbr: "DAL", State: "pre"},
		{ID: "402", Kickoff: kickoff, HomeAbbr: "KC", AwayAbbr: "LV", State: "pre"},
	}}}
	p := newPipeline(t, testEnv{schedule: schedule})

	result := p.Refresh(ctx, 5, 2024)
	assert.False(t, result.Synthetic)
	assert.Equal(t, 2, result.GamesUpdated)
	assert.Equal(t, 2, result.PredictionsGenerated)

	all, err := p.GetAllTeams(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 33, "Registry teams plus one placeholder")

	var placeholder models.Team
	for _, team := range all {
		if team.ID == "XFL" {
			placeholder = team
		}
	}
	assert.True(t, placeholder.Placeholder)
	assert.Equal(t, "XFL", placeholder.City)
	assert.Equal(t, "NFC", placeholder.Conference)
	assert.Equal(t, "Unknown", placeholder.Division)

	games, err := p.GetGamesWithDetails(ctx, 5, 2024, models.Filters{})
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "401", games[0].ID, "Equal kickoffs order by id")
	assert.True(t, games[1].IsDivisional)
}

func TestRefresh_StagePanicIsIsolated(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t, testEnv{store: panickingStore{store.NewMemory()}})

	result := p.Refresh(ctx, 5, 2024)

	assert.Positive(t, result.GamesUpdated)
	assert.Zero(t, result.OddsUpdated)
	assert.Equal(t, result.GamesUpdated, result.PredictionsGenerated, "Later stages run after a panic")
	assert.Positive(t, result.AdviceGenerated)
}

func TestRefresh_PredictionStageTimeout(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t, testEnv{
		reasoner: blockingReasoner{},
		opts:     Options{PredictionStageTimeout: 50 * time.Millisecond},
	})

	start := time.Now()
	result := p.Refresh(ctx, 5, 2024)

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, result.GamesUpdated, result.PredictionsGenerated, "Timed-out games use the fallback")
}

func TestRefresh_OddsStageTimeout(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t, testEnv{
		odds: blockingOdds{},
		opts: Options{OddsStageTimeout: 50 * time.Millisecond},
	})

	start := time.Now()
	result := p.Refresh(ctx, 5, 2024)

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Positive(t, result.GamesUpdated)
	assert.Equal(t, result.GamesUpdated, result.OddsUpdated, "Timed-out games get synthetic lines")

	games, err := p.GetGamesWithDetails(ctx, 5, 2024, models.Filters{})
	require.NoError(t, err)
	require.Len(t, games, result.GamesUpdated)
	for _, g := range games {
		require.NotNil(t, g.Odds)
		assert.True(t, g.Odds.Synthetic)
		assert.Equal(t, sources.SyntheticBookmaker, g.Odds.Bookmaker)
	}
}

func TestRefresh_InvalidatesCachedViews(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	p := newPipeline(t, testEnv{cache: cache.NewViewCache(rdb, time.Minute)})

	before, err := p.GetGamesWithDetails(ctx, 5, 2024, models.Filters{})
	require.NoError(t, err)
	assert.Empty(t, before)

	result := p.Refresh(ctx, 5, 2024)

	after, err := p.GetGamesWithDetails(ctx, 5, 2024, models.Filters{})
	require.NoError(t, err)
	assert.Len(t, after, result.GamesUpdated, "Refresh drops the cached empty week")
}

func seedWeek(t *testing.T, st *store.Memory, confidences []int, divisional []bool) []models.Game {
	t.Helper()
	ctx := context.Background()
	kickoff := time.Date(2024, 10, 6, 17, 0, 0, 0, time.UTC)
	matchups := [][2]string{{"KC", "LV"}, {"BUF", "DAL"}, {"DEN", "LAC"}, {"NYG", "PHI"}}

	var games []models.Game
	for i, c := range confidences {
		g := models.Game{
			ID:           string(rune('A' + i)),
			Week:         5,
			Season:       2024,
			HomeTeamID:   matchups[i][0],
			AwayTeamID:   matchups[i][1],
			Kickoff:      kickoff.Add(time.Duration(i) * time.Hour),
			Status:       models.StatusScheduled,
			IsDivisional: divisional[i],
		}
		require.NoError(t, st.UpsertGame(ctx, g))
		if c > 0 {
			require.NoError(t, st.UpsertPrediction(ctx, models.Prediction{
				GameID:          g.ID,
				PredictedWinner: g.HomeTeamID,
				Confidence:      c,
				Method:          models.MethodFallback,
			}))
		}
		games = append(games, g)
	}
	return games
}

func TestGetGamesWithDetails_FilterConjunction(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	p := newPipeline(t, testEnv{store: st})
	seedWeek(t, st, []int{75, 75, 60}, []bool{true, false, true})

	games, err := p.GetGamesWithDetails(ctx, 5, 2024, models.Filters{HighProbability: true, Divisional: true})
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "A", games[0].ID)

	all, err := p.GetGamesWithDetails(ctx, 5, 2024, models.Filters{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, "Kansas City Chiefs", all[0].HomeTeam.Name)
	assert.NotNil(t, all[0].Advice, "Advice is an empty list, never null")
	assert.Nil(t, all[0].Odds)
}

func TestGetGamesWithDetails_SkipsUnresolvedTeams(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	p := newPipeline(t, testEnv{store: hidingStore{Memory: mem, hidden: "DAL"}})
	seedWeek(t, mem, []int{75, 75, 60}, []bool{true, false, true})

	games, err := p.GetGamesWithDetails(ctx, 5, 2024, models.Filters{})
	require.NoError(t, err)
	require.Len(t, games, 2)
	for _, g := range games {
		assert.NotEqual(t, "DAL", g.AwayTeamID)
	}
}

func TestGetWeekSummary(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	p := newPipeline(t, testEnv{store: st})
	seedWeek(t, st, []int{85, 72, 58, 0}, []bool{false, false, false, false})

	summary, err := p.GetWeekSummary(ctx, 5, 2024)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.TotalGames)
	assert.Equal(t, 3, summary.AnalyzedGames)
	assert.Equal(t, 2, summary.HighConfidence)
	assert.Equal(t, 1, summary.UpsetAlerts)
	assert.InDelta(t, 71.67, summary.AvgConfidence, 0.001)

	empty, err := p.GetWeekSummary(ctx, 6, 2024)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalGames)
	assert.Zero(t, empty.AvgConfidence)
}

func TestGetAccuracy(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	p := newPipeline(t, testEnv{store: st})
	games := seedWeek(t, st, []int{80, 70, 65, 60}, []bool{false, false, false, false})

	scores := [][2]int{{27, 20}, {10, 24}, {21, 17}, {20, 20}}
	for i, g := range games {
		g.IsCompleted = true
		g.Status = models.StatusCompleted
		g.HomeScore = models.Int(scores[i][0])
		g.AwayScore = models.Int(scores[i][1])
		require.NoError(t, st.UpsertGame(ctx, g))
	}

	acc, err := p.GetAccuracy(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, 3, acc.CompletedGames, "Ties are not scored")
	assert.Equal(t, 2, acc.Correct)
	assert.InDelta(t, 0.67, acc.Accuracy, 0.001)
}
