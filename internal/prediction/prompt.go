package prediction

import (
	"fmt"
	"strings"

	"nfl_dashboard/aggregator/internal/models"
)

const systemInstruction = `You are an NFL analyst. Respond with a single JSON object and nothing else:
{"predictedWinner": "<team abbreviation>", "confidence": <integer 50-100>, "analysis": "<2-3 sentences>",
"recommendedBet": "<one bet>", "keyFactors": ["<2 to 5 short factors>"], "predictedSpread": <home line in points, optional>}`

const enrichedSystemInstruction = `You are an NFL analyst with access to auxiliary signals. Respond with a single JSON object and nothing else:
{"predictedWinner": "<team abbreviation>", "confidence": <integer 50-100>, "winProbability": <number 0.5-1.0>,
"analysis": "<2-3 sentences>", "recommendedBet": "<one bet>", "keyFactors": ["<2 to 5 short factors>"],
"predictedSpread": <home line in points, optional>, "riskFactors": ["<short risks>"], "sentimentImpact": "<text>", "weatherImpact": "<text>",
"coachingEdge": "<text>", "valuePlay": "<text>"}`

// BuildPrompt describes the matchup for the reasoning service. Signals are
// appended when present.
func BuildPrompt(in PredictInput, signals *Signals) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s at %s\n", displayName(in.AwayTeam), displayName(in.HomeTeam))
	fmt.Fprintf(&b, "Season %d, week %d. Kickoff %s ET.\n\n",
		in.Game.Season, in.Game.Week, in.Game.Kickoff.In(models.Eastern()).Format("Mon Jan 2 3:04 PM"))

	b.WriteString("## Teams\n")
	writeTeam(&b, "Home", in.HomeTeam, in.HomeStats)
	writeTeam(&b, "Away", in.AwayTeam, in.AwayStats)

	b.WriteString("\n## Lines\n")
	writeOdds(&b, in.Odds)

	b.WriteString("\n## Situation\n")
	fmt.Fprintf(&b, "- Divisional: %t\n", in.Game.IsDivisional)
	fmt.Fprintf(&b, "- Prime time: %t\n", in.Game.IsPrimeTime)
	fmt.Fprintf(&b, "- Playoff implications: %t\n", in.Game.HasPlayoffImplications)

	if signals != nil {
		b.WriteString("\n## Signals\n")
		writeSignals(&b, in, *signals)
	}

	fmt.Fprintf(&b, "\nPick the winner using %s or %s as predictedWinner.", in.HomeTeam.ID, in.AwayTeam.ID)
	return b.String()
}

func writeTeam(b *strings.Builder, role string, t models.Team, s *models.TeamStats) {
	if s == nil || s.GamesPlayed() == 0 {
		fmt.Fprintf(b, "- %s: %s (%s), no games played\n", role, displayName(t), t.ID)
		return
	}
	played := float64(s.GamesPlayed())
	fmt.Fprintf(b, "- %s: %s (%s), record %s, %.1f points scored and %.1f allowed per game\n",
		role, displayName(t), t.ID, s.Record(), float64(s.PointsFor)/played, float64(s.PointsAgainst)/played)
}

func writeOdds(b *strings.Builder, o *models.Odds) {
	if o == nil || !o.HasLines() {
		b.WriteString("- No lines available\n")
		return
	}
	if o.HomeSpread != nil {
		fmt.Fprintf(b, "- Home spread: %+.1f\n", *o.HomeSpread)
	}
	if o.TotalPoints != nil {
		fmt.Fprintf(b, "- Total: %.1f\n", *o.TotalPoints)
	}
	if o.HomeMoneyline != nil && o.AwayMoneyline != nil {
		fmt.Fprintf(b, "- Moneyline: home %+d, away %+d\n", *o.HomeMoneyline, *o.AwayMoneyline)
	}
}

func writeSignals(b *strings.Builder, in PredictInput, s Signals) {
	if s.HeadToHead.Available {
		fmt.Fprintf(b, "- Head to head (last %d): %s %d, %s %d\n", s.HeadToHead.Games,
			in.HomeTeam.ID, s.HeadToHead.HomeWins, in.AwayTeam.ID, s.HeadToHead.AwayWins)
	}
	fmt.Fprintf(b, "- Weather: %s, %dF, wind %d mph\n", s.Weather.Conditions, s.Weather.TemperatureF, s.Weather.WindMPH)
	if s.Momentum.Available {
		fmt.Fprintf(b, "- Momentum (-1..1): home %.2f, away %.2f\n", s.Momentum.Home, s.Momentum.Away)
	}
	if s.Injuries.Available {
		fmt.Fprintf(b, "- Injury impact (0..1): home %.2f, away %.2f\n", s.Injuries.HomeImpact, s.Injuries.AwayImpact)
	}
	if s.Sentiment.Available {
		fmt.Fprintf(b, "- Fan sentiment: favorite %s (%.0f%%), %d mentions\n",
			s.Sentiment.Favorite, s.Sentiment.Confidence*100, s.Sentiment.Mentions)
	}
	if s.Market.Available {
		fmt.Fprintf(b, "- Market: public on home %.0f%%, sharp side %s, line movement %+.1f\n",
			s.Market.PublicHomePct, s.Market.SharpSide, s.Market.LineMovement)
	}
	if s.Coaching.Available {
		fmt.Fprintf(b, "- Coaching: %s\n", s.Coaching.Edge)
	}
}
