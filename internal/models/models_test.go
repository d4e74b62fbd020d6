package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGameStatus(t *testing.T) {
	tests := []struct {
		in   string
		want GameStatus
	}{
		{"pre", StatusScheduled},
		{"in", StatusInProgress},
		{"post", StatusCompleted},
		{"STATUS_FINAL", StatusCompleted},
		{"", StatusScheduled},
		{"postponed?", StatusScheduled},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseGameStatus(tt.in), "status %q", tt.in)
	}
}

func TestTeamStats_WinPct(t *testing.T) {
	assert.Equal(t, 0.5, TeamStats{}.WinPct(), "No games played should be a coin flip")
	assert.InDelta(t, 0.75, TeamStats{Wins: 9, Losses: 3}.WinPct(), 1e-9)
	assert.Equal(t, 0.0, TeamStats{Losses: 4}.WinPct())
	assert.Equal(t, "9-3", TeamStats{Wins: 9, Losses: 3}.Record())
}

func TestPlaceholderTeam(t *testing.T) {
	afc := PlaceholderTeam("lv2")
	assert.Equal(t, "LV2", afc.ID)
	assert.Equal(t, "LV2", afc.Name)
	assert.Equal(t, "LV2", afc.City)
	assert.Equal(t, "AFC", afc.Conference)
	assert.Equal(t, "Unknown", afc.Division)
	assert.True(t, afc.Placeholder)

	assert.Equal(t, "NFC", PlaceholderTeam("ZZZ").Conference)
	assert.Equal(t, "AFC", PlaceholderTeam("MMM").Conference)
	assert.Equal(t, "NFC", PlaceholderTeam("NNN").Conference)
}

func TestTeam_Nickname(t *testing.T) {
	team := Team{Name: "Kansas City Chiefs", City: "Kansas City"}
	assert.Equal(t, "Chiefs", team.Nickname())
	assert.Equal(t, "XYZ", Team{Name: "XYZ", City: "XYZ"}.Nickname())
}

func TestPrediction_Clamp(t *testing.T) {
	p := &Prediction{Confidence: 140, WinProbability: Float(0.2)}
	p.Clamp()
	assert.Equal(t, 100, p.Confidence)
	assert.Equal(t, 0.5, *p.WinProbability)

	p = &Prediction{Confidence: 12}
	p.Clamp()
	assert.Equal(t, 50, p.Confidence)
	assert.Nil(t, p.WinProbability)
}

func TestNewAdvice_TruncatesContent(t *testing.T) {
	long := strings.Repeat("é", 600)
	adv := NewAdvice("g1", "ESPN Analytics", long, nil, time.Now())

	assert.NotEmpty(t, adv.ID)
	assert.Equal(t, MaxAdviceContentRunes, len([]rune(adv.Content)))

	short := NewAdvice("g1", "ESPN Analytics", "Take the points.", nil, time.Now())
	assert.Equal(t, "Take the points.", short.Content)
	assert.NotEqual(t, adv.ID, short.ID)
}

func TestIsPrimeTimeKickoff(t *testing.T) {
	et := Eastern()

	assert.True(t, IsPrimeTimeKickoff(time.Date(2024, 9, 12, 20, 15, 0, 0, et)), "Thursday night")
	assert.True(t, IsPrimeTimeKickoff(time.Date(2024, 9, 15, 20, 20, 0, 0, et)), "Sunday night")
	assert.True(t, IsPrimeTimeKickoff(time.Date(2024, 9, 16, 20, 15, 0, 0, et)), "Monday night")
	assert.False(t, IsPrimeTimeKickoff(time.Date(2024, 9, 15, 13, 0, 0, 0, et)), "Sunday early")
	assert.False(t, IsPrimeTimeKickoff(time.Date(2024, 9, 14, 20, 0, 0, 0, et)), "Saturday night")

	// 00:20 UTC Monday is 20:20 Sunday in New York
	assert.True(t, IsPrimeTimeKickoff(time.Date(2024, 9, 16, 0, 20, 0, 0, time.UTC)))
}

func TestGame_Winner(t *testing.T) {
	g := Game{HomeTeamID: "KC", AwayTeamID: "BAL", IsCompleted: true, HomeScore: Int(27), AwayScore: Int(20)}
	assert.Equal(t, "KC", g.Winner())

	g.HomeScore = Int(20)
	assert.Equal(t, "", g.Winner(), "Tie has no winner")

	g.IsCompleted = false
	g.AwayScore = Int(3)
	assert.Equal(t, "", g.Winner())
}

func TestFilters_Match(t *testing.T) {
	game := GameWithDetails{
		Game:       Game{IsDivisional: true, IsPrimeTime: false},
		Prediction: &Prediction{Confidence: 75},
	}

	require.True(t, Filters{}.Match(game))
	assert.True(t, Filters{HighProbability: true, Divisional: true}.Match(game))
	assert.False(t, Filters{HighProbability: true, PrimeTime: true}.Match(game))

	game.Prediction = nil
	assert.False(t, Filters{HighProbability: true}.Match(game), "No prediction fails the high-probability filter")
}

func TestOdds_FavoriteIsHome(t *testing.T) {
	home, known := Odds{HomeSpread: Float(-3.5)}.FavoriteIsHome()
	assert.True(t, known)
	assert.True(t, home)

	home, known = Odds{HomeSpread: Float(0), HomeMoneyline: Int(120), AwayMoneyline: Int(-140)}.FavoriteIsHome()
	assert.True(t, known)
	assert.False(t, home)

	_, known = Odds{}.FavoriteIsHome()
	assert.False(t, known)
}
