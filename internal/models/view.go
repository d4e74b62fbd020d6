package models

import "time"

// HighConfidenceThreshold is the minimum confidence of a high-probability pick
const HighConfidenceThreshold = 70

// UpsetAlertThreshold is the confidence under which a pick is an upset alert
const UpsetAlertThreshold = 60

// GameWithDetails is the denormalized view of one game
type GameWithDetails struct {
	Game
	HomeTeam   Team        `json:"homeTeam"`
	AwayTeam   Team        `json:"awayTeam"`
	HomeStats  *TeamStats  `json:"homeStats,omitempty"`
	AwayStats  *TeamStats  `json:"awayStats,omitempty"`
	Odds       *Odds       `json:"odds,omitempty"`
	Prediction *Prediction `json:"prediction,omitempty"`
	Advice     []Advice    `json:"advice"`
}

// Filters narrows GetGamesWithDetails. Active filters are combined with AND.
type Filters struct {
	HighProbability     bool `json:"highProbability"`
	Divisional          bool `json:"divisional"`
	PrimeTime           bool `json:"primeTime"`
	PlayoffImplications bool `json:"playoffImplications"`
}

// Match reports whether the game satisfies every active filter
func (f Filters) Match(g GameWithDetails) bool {
	if f.HighProbability && (g.Prediction == nil || g.Prediction.Confidence < HighConfidenceThreshold) {
		return false
	}
	if f.Divisional && !g.IsDivisional {
		return false
	}
	if f.PrimeTime && !g.IsPrimeTime {
		return false
	}
	if f.PlayoffImplications && !g.HasPlayoffImplications {
		return false
	}
	return true
}

// WeekSummary aggregates prediction coverage for a (week, season)
type WeekSummary struct {
	Week           int     `json:"week"`
	Season         int     `json:"season"`
	TotalGames     int     `json:"totalGames"`
	AnalyzedGames  int     `json:"analyzedGames"`
	HighConfidence int     `json:"highConfidence"`
	UpsetAlerts    int     `json:"upsetAlerts"`
	AvgConfidence  float64 `json:"avgConfidence"`
}

// RefreshResult reports per-stage counts of one refresh
type RefreshResult struct {
	Week                 int           `json:"week"`
	Season               int           `json:"season"`
	GamesUpdated         int           `json:"gamesUpdated"`
	OddsUpdated          int           `json:"oddsUpdated"`
	PredictionsGenerated int           `json:"predictionsGenerated"`
	AdviceGenerated      int           `json:"adviceGenerated"`
	Synthetic            bool          `json:"synthetic"`
	Duration             time.Duration `json:"duration"`
}

// Accuracy is the share of completed games whose prediction named the winner
type Accuracy struct {
	Season         int     `json:"season"`
	CompletedGames int     `json:"completedGames"`
	Correct        int     `json:"correct"`
	Accuracy       float64 `json:"accuracy"`
}
