package prediction

import (
	"fmt"
	"math"

	"nfl_dashboard/aggregator/internal/models"
)

// Fallback heuristic constants
const (
	HomeFieldEdge         = 0.03
	FallbackMinConfidence = 50
	FallbackMaxConfidence = 95
	fallbackBase          = 55

	// Points per unit of strength gap, and the baseline team score
	pointsPerStrength = 20.0
	baselineScore     = 22.0
	minScore          = 10
)

// Fallback predicts from season records alone:
//
//	homeStrength = homeWinPct + 0.03
//	winner       = home if homeStrength > awayWinPct, else away
//	confidence   = clamp(50, 95, |homeStrength - awayWinPct|*100 + 55)
//	spread       = -(homeStrength - awayWinPct)*20, on half points
//
// Scores split the spread around a 22-point baseline. A team without games
// played counts as 0.500.
func Fallback(in PredictInput) models.Prediction {
	homePct := winPct(in.HomeStats)
	awayPct := winPct(in.AwayStats)
	homeStrength := homePct + HomeFieldEdge

	winner, loser := in.HomeTeam, in.AwayTeam
	winnerStats, loserStats := in.HomeStats, in.AwayStats
	homeFavored := homeStrength > awayPct
	if !homeFavored {
		winner, loser = in.AwayTeam, in.HomeTeam
		winnerStats, loserStats = in.AwayStats, in.HomeStats
	}

	spread := FallbackSpread(homeStrength, awayPct)
	homeScore, awayScore := fallbackScores(spread)

	return models.Prediction{
		GameID:             in.Game.ID,
		PredictedWinner:    winner.ID,
		Confidence:         FallbackConfidence(homeStrength, awayPct),
		Analysis:           fallbackAnalysis(winner, loser, winnerStats, loserStats, homeFavored),
		RecommendedBet:     fallbackBet(winner, in.Odds, homeFavored),
		KeyFactors:         fallbackFactors(in),
		PredictedSpread:    models.Float(spread),
		PredictedHomeScore: models.Int(homeScore),
		PredictedAwayScore: models.Int(awayScore),
		Method:             models.MethodFallback,
	}
}

// FallbackSpread converts the strength gap into a home line on half points
func FallbackSpread(homeStrength, awayPct float64) float64 {
	s := math.Round(-(homeStrength-awayPct)*pointsPerStrength*2) / 2
	if s == 0 {
		return 0
	}
	return s
}

func fallbackScores(spread float64) (home, away int) {
	home = int(math.Round(baselineScore - spread/2))
	away = int(math.Round(baselineScore + spread/2))
	return max(home, minScore), max(away, minScore)
}

// FallbackConfidence maps the strength gap to a confidence in [50,95]
func FallbackConfidence(homeStrength, awayPct float64) int {
	c := math.Abs(homeStrength-awayPct)*100 + fallbackBase
	c = math.Max(FallbackMinConfidence, math.Min(FallbackMaxConfidence, c))
	return int(math.Round(c))
}

func winPct(s *models.TeamStats) float64 {
	if s == nil {
		return 0.5
	}
	return s.WinPct()
}

func record(s *models.TeamStats) string {
	if s == nil {
		return "0-0"
	}
	return s.Record()
}

func displayName(t models.Team) string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

func fallbackAnalysis(winner, loser models.Team, winnerStats, loserStats *models.TeamStats, homeFavored bool) string {
	if homeFavored {
		return fmt.Sprintf("%s (%s) holds the edge over %s (%s) on season form plus home field.",
			displayName(winner), record(winnerStats), displayName(loser), record(loserStats))
	}
	return fmt.Sprintf("%s (%s) has the stronger season record and should overcome %s (%s) on the road.",
		displayName(winner), record(winnerStats), displayName(loser), record(loserStats))
}

func fallbackBet(winner models.Team, odds *models.Odds, homeFavored bool) string {
	if odds != nil {
		spread := odds.AwaySpread
		if homeFavored {
			spread = odds.HomeSpread
		}
		if spread != nil && *spread != 0 {
			return fmt.Sprintf("%s %+.1f", displayName(winner), *spread)
		}
	}
	return displayName(winner) + " moneyline"
}

func fallbackFactors(in PredictInput) []string {
	return []string{
		fmt.Sprintf("%s season record %s", displayName(in.HomeTeam), record(in.HomeStats)),
		fmt.Sprintf("%s season record %s", displayName(in.AwayTeam), record(in.AwayStats)),
		fmt.Sprintf("Home field advantage for %s", displayName(in.HomeTeam)),
	}
}
