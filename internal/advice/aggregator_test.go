package advice

import (
	"context"
	"testing"
	"time"
	"unicode/utf8"

	"nfl_dashboard/aggregator/internal/models"
	"nfl_dashboard/aggregator/internal/random"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAggregator(perKey bool) (*Aggregator, *clock.Mock) {
	clk := clock.NewMock()
	clk.Set(time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC))
	return NewAggregator(random.NewSource(random.New(7), perKey), 3, clk), clk
}

func TestGenerateAdvice_RosterCoverage(t *testing.T) {
	agg, clk := newTestAggregator(false)

	for i := 0; i < 50; i++ {
		list, err := agg.GenerateAdvice("g1", "Kansas City Chiefs", "Buffalo Bills")
		require.NoError(t, err)

		perSource := map[string]int{}
		for _, a := range list {
			perSource[a.Source]++
			assert.Equal(t, "g1", a.GameID)
			assert.NotEmpty(t, a.ID)
			assert.Contains(t, a.Content, "Kansas City Chiefs")
			assert.Contains(t, a.Content, "Buffalo Bills")
			assert.LessOrEqual(t, utf8.RuneCountInString(a.Content), models.MaxAdviceContentRunes)
			assert.False(t, a.CapturedAt.After(clk.Now()))
		}

		require.Len(t, perSource, len(Sources()))
		for src, n := range perSource {
			assert.GreaterOrEqual(t, n, 1, src)
			assert.LessOrEqual(t, n, 2, src)
		}
	}
}

func TestGenerateAdvice_InvalidRequest(t *testing.T) {
	agg, _ := newTestAggregator(false)

	_, err := agg.GenerateAdvice("", "A", "B")
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = agg.GenerateAdvice("g1", " ", "B")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestGenerateAdvice_PerKeySeeding(t *testing.T) {
	a1, _ := newTestAggregator(true)
	a2, _ := newTestAggregator(true)

	req := AdviceRequest{GameID: "g1", HomeTeam: "Home", AwayTeam: "Away", Season: 2024, Week: 6}
	l1, err := a1.generate(req)
	require.NoError(t, err)
	l2, err := a2.generate(req)
	require.NoError(t, err)

	require.Equal(t, len(l1), len(l2))
	for i := range l1 {
		assert.Equal(t, l1[i].Source, l2[i].Source)
		assert.Equal(t, l1[i].Content, l2[i].Content)
		assert.Equal(t, l1[i].Recommendation, l2[i].Recommendation)
	}
}

func TestBatchGenerateAdvice_IsolatesInvalidGames(t *testing.T) {
	agg, _ := newTestAggregator(false)

	reqs := []AdviceRequest{
		{GameID: "g1", HomeTeam: "Chiefs", AwayTeam: "Bills"},
		{GameID: "g2", HomeTeam: "", AwayTeam: "Jets"},
		{GameID: "g3", HomeTeam: "Eagles", AwayTeam: "Cowboys"},
		{GameID: "g4", HomeTeam: "Rams", AwayTeam: "49ers"},
		{GameID: "g5", HomeTeam: "Lions", AwayTeam: "Bears"},
	}

	list := agg.BatchGenerateAdvice(context.Background(), reqs)

	games := map[string]int{}
	for _, a := range list {
		games[a.GameID]++
	}
	assert.Len(t, games, 4)
	assert.NotContains(t, games, "g2")
	for id, n := range games {
		assert.GreaterOrEqual(t, n, len(roster), id)
		assert.LessOrEqual(t, n, 2*len(roster), id)
	}
}

func TestBatchGenerateAdvice_CancelledContext(t *testing.T) {
	agg, _ := newTestAggregator(false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Empty(t, agg.BatchGenerateAdvice(ctx, []AdviceRequest{{GameID: "g1", HomeTeam: "A", AwayTeam: "B"}}))
}
