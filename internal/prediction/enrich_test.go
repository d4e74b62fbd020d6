package prediction

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"nfl_dashboard/aggregator/internal/client"
	"nfl_dashboard/aggregator/internal/models"
	"nfl_dashboard/aggregator/internal/store"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingProvider struct{}

func (failingProvider) Name() string { return "failing" }

func (failingProvider) Gather(context.Context, PredictInput) (Signal, error) {
	return nil, errors.New("upstream down")
}

type panickingProvider struct{}

func (panickingProvider) Name() string { return "panicking" }

func (panickingProvider) Gather(context.Context, PredictInput) (Signal, error) {
	panic("provider bug")
}

type fakePosts struct {
	calls atomic.Int32
	posts map[string][]client.RedditPost
	err   error
}

func (f *fakePosts) FetchHot(_ context.Context, sub string, _ int) ([]client.RedditPost, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.posts[sub], nil
}

func TestEnricher_FailingProvidersStayNeutral(t *testing.T) {
	in := input(t, "g1", "KC", "BUF")
	e := NewEnricher(time.Second, failingProvider{}, panickingProvider{}, MomentumProvider{})

	s := e.Gather(context.Background(), in)
	assert.True(t, s.Momentum.Available)
	assert.False(t, s.Sentiment.Available)
	assert.Equal(t, 0.5, s.Sentiment.Confidence)
	assert.Equal(t, "none", s.Market.SharpSide)
	assert.Equal(t, "clear", s.Weather.Conditions)
}

func TestEnricher_NilIsNeutral(t *testing.T) {
	var e *Enricher
	assert.Equal(t, NeutralSignals(), e.Gather(context.Background(), input(t, "g1", "KC", "BUF")))
}

func TestHeadToHeadProvider(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory(registry.All()...)

	final := func(id string, season int, home, away string, hs, as int) models.Game {
		return models.Game{
			ID: id, Week: 3, Season: season, HomeTeamID: home, AwayTeamID: away,
			Kickoff:     time.Date(season, 9, 20, 17, 0, 0, 0, time.UTC),
			HomeScore:   models.Int(hs),
			AwayScore:   models.Int(as),
			Status:      models.StatusCompleted,
			IsCompleted: true,
		}
	}
	for _, g := range []models.Game{
		final("a", 2022, "KC", "BUF", 24, 20),
		final("b", 2023, "BUF", "KC", 31, 17),
		final("c", 2024, "KC", "BUF", 27, 24),
		final("d", 2024, "KC", "DEN", 30, 10),
		final("e", 2020, "KC", "BUF", 10, 3),
	} {
		require.NoError(t, mem.UpsertGame(ctx, g))
	}

	sig, err := NewHeadToHeadProvider(mem, 3).Gather(ctx, input(t, "g1", "KC", "BUF"))
	require.NoError(t, err)
	h2h := sig.(HeadToHead)
	assert.True(t, h2h.Available)
	assert.Equal(t, 3, h2h.Games)
	assert.Equal(t, 2, h2h.HomeWins)
	assert.Equal(t, 1, h2h.AwayWins)
}

func TestMarketProvider(t *testing.T) {
	in := input(t, "g1", "KC", "BUF")

	_, err := MarketProvider{}.Gather(context.Background(), in)
	assert.ErrorIs(t, err, ErrNoSignal)

	in.Odds = &models.Odds{HomeSpread: models.Float(-3.5), HomeMoneyline: models.Int(-150), AwayMoneyline: models.Int(130), Synthetic: true}
	_, err = MarketProvider{}.Gather(context.Background(), in)
	assert.ErrorIs(t, err, ErrNoSignal)

	in.Odds.Synthetic = false
	in.PreviousOdds = &models.Odds{HomeSpread: models.Float(-2.5)}
	sig, err := MarketProvider{}.Gather(context.Background(), in)
	require.NoError(t, err)

	m := sig.(MarketIntel)
	assert.True(t, m.Available)
	assert.Equal(t, "home", m.SharpSide)
	assert.InDelta(t, -1.0, m.LineMovement, 1e-9)
	assert.Greater(t, m.PublicHomePct, 50.0)

	in.Odds.HomeSpread = models.Float(-2.5)
	in.PreviousOdds = &models.Odds{HomeSpread: models.Float(6.5), Synthetic: true}
	sig, err = MarketProvider{}.Gather(context.Background(), in)
	require.NoError(t, err)

	m = sig.(MarketIntel)
	assert.Zero(t, m.LineMovement, "Generated lines carry no movement")
	assert.Equal(t, "none", m.SharpSide)
}

func TestImpliedProbability(t *testing.T) {
	assert.InDelta(t, 0.5238, ImpliedProbability(-110), 1e-4)
	assert.InDelta(t, 0.4, ImpliedProbability(150), 1e-9)
	assert.Zero(t, ImpliedProbability(0))
}

func TestAnalyzeSentiment(t *testing.T) {
	home, away := team(t, "KC"), team(t, "BUF")
	posts := []client.RedditPost{
		{Title: "My lock of the week: Chiefs cover", Score: 120},
		{Title: "Bills upset pick", Score: 40},
		{Title: "Chiefs game thread", Score: 900}, // no pick keyword
		{Title: "Best bet: chiefs ML", Score: -5},
	}

	s := AnalyzeSentiment(posts, home, away)
	assert.True(t, s.Available)
	assert.Equal(t, "KC", s.Favorite)
	assert.Equal(t, 3, s.Mentions)
	assert.InDelta(t, 121.0/161.0, s.Confidence, 0.01)

	even := AnalyzeSentiment(nil, home, away)
	assert.False(t, even.Available)
	assert.Equal(t, "", even.Favorite)
	assert.Equal(t, 0.5, even.Confidence)
}

func TestSentimentProvider_CachesPosts(t *testing.T) {
	clk := clock.NewMock()
	fetcher := &fakePosts{posts: map[string][]client.RedditPost{
		"nfl":     {{Title: "Chiefs are my pick", Score: 10}},
		"NFLbets": {{Title: "Bills bet", Score: 3}},
	}}
	p := NewSentimentProvider(fetcher, []string{"nfl", "NFLbets"}, clk)
	in := input(t, "g1", "KC", "BUF")

	for i := 0; i < 3; i++ {
		sig, err := p.Gather(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, "KC", sig.(Sentiment).Favorite)
	}
	assert.Equal(t, int32(2), fetcher.calls.Load())

	clk.Add(11 * time.Minute)
	_, err := p.Gather(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, int32(4), fetcher.calls.Load())
}

func TestSentimentProvider_AllSubredditsFail(t *testing.T) {
	p := NewSentimentProvider(&fakePosts{err: client.ErrUnavailable}, []string{"nfl"}, clock.NewMock())
	_, err := p.Gather(context.Background(), input(t, "g1", "KC", "BUF"))
	assert.ErrorIs(t, err, client.ErrUnavailable)
}

func TestComputeConfidenceFactors(t *testing.T) {
	in := input(t, "g1", "KC", "BUF")
	in.Odds = &models.Odds{HomeSpread: models.Float(-7), HomeMoneyline: models.Int(-300), AwayMoneyline: models.Int(250)}

	neutral := ComputeConfidenceFactors(in, NeutralSignals())
	assert.Equal(t, 0.13, neutral.DataQuality)
	assert.Equal(t, 0.5, neutral.ModelConsensus)
	assert.Equal(t, 1.0, neutral.MarketAlignment)
	assert.Equal(t, 0.5, neutral.HistoricalAccuracy)

	s := NeutralSignals()
	s.Momentum = Momentum{Home: 0.3, Away: -0.2, Available: true}
	s.Sentiment = Sentiment{Favorite: "BUF", Confidence: 0.7, Mentions: 4, Available: true}
	s.HeadToHead = HeadToHead{Games: 4, HomeWins: 3, AwayWins: 1, Available: true}

	cf := ComputeConfidenceFactors(in, s)
	assert.Equal(t, 0.5, cf.DataQuality)
	assert.Equal(t, 0.67, cf.ModelConsensus)
	assert.Equal(t, 0.75, cf.HistoricalAccuracy)

	for _, v := range []float64{cf.DataQuality, cf.ModelConsensus, cf.MarketAlignment, cf.HistoricalAccuracy} {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}

	in.Odds = &models.Odds{HomeSpread: models.Float(3.5)}
	assert.Equal(t, 0.25, ComputeConfidenceFactors(in, s).MarketAlignment)
}

func TestEngine_EnrichedAttachesConfidenceFactors(t *testing.T) {
	r := &fakeReasoner{configured: true, respond: answer(validResponse)}
	engine := NewEngine(r, NewEnricher(time.Second, MomentumProvider{}), Options{Enriched: true}, clock.NewMock())

	p := engine.Predict(context.Background(), input(t, "g1", "KC", "BUF"))
	// no winProbability in the response, so the enriched decode rejects it
	assert.Equal(t, models.MethodFallback, p.Method)
	require.NotNil(t, p.ConfidenceFactors)
	assert.Greater(t, p.ConfidenceFactors.DataQuality, 0.0)
}

func TestSentimentScore(t *testing.T) {
	assert.Nil(t, SentimentScore(Sentiment{}, "KC"))

	home := SentimentScore(Sentiment{Favorite: "KC", Confidence: 0.75, Available: true}, "KC")
	require.NotNil(t, home)
	assert.Equal(t, 0.5, *home)

	away := SentimentScore(Sentiment{Favorite: "BUF", Confidence: 0.75, Available: true}, "KC")
	require.NotNil(t, away)
	assert.Equal(t, -0.5, *away)

	even := SentimentScore(Sentiment{Confidence: 0.5, Available: true}, "KC")
	require.NotNil(t, even)
	assert.Zero(t, *even)
}

func TestEngine_EnrichedRecordsSentimentScore(t *testing.T) {
	fetcher := &fakePosts{posts: map[string][]client.RedditPost{
		"nfl": {{Title: "Chiefs are my lock this week", Score: 30}, {Title: "Bills upset pick", Score: 10}},
	}}
	engine := NewEngine(nil, NewEnricher(time.Second, NewSentimentProvider(fetcher, []string{"nfl"}, clock.NewMock())), Options{Enriched: true}, clock.NewMock())

	p := engine.Predict(context.Background(), input(t, "g1", "KC", "BUF"))
	require.NotNil(t, p.SentimentScore)
	assert.Greater(t, *p.SentimentScore, 0.0, "Fans lean toward the home team")
	require.NotNil(t, p.PredictedSpread)
}
