package models

import (
	"strings"
	"time"
	_ "time/tzdata"
)

// SyntheticIDPrefix marks games generated while the schedule provider was unavailable
const SyntheticIDPrefix = "synthetic-"

// GameStatus is the closed set of game states
type GameStatus string

const (
	StatusScheduled  GameStatus = "scheduled"
	StatusInProgress GameStatus = "in_progress"
	StatusCompleted  GameStatus = "completed"
)

// ParseGameStatus maps provider state tags onto GameStatus.
// Unknown values are treated as scheduled.
func ParseGameStatus(s string) GameStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in", "in_progress", "in-progress", "inprogress", "live", "status_in_progress", "halftime":
		return StatusInProgress
	case "post", "final", "completed", "complete", "status_final":
		return StatusCompleted
	default:
		return StatusScheduled
	}
}

// Game represents a single NFL matchup for a (week, season)
type Game struct {
	ID         string     `json:"id" db:"id"`
	Week       int        `json:"week" db:"week"`
	Season     int        `json:"season" db:"season"`
	HomeTeamID string     `json:"homeTeamId" db:"home_team_id"`
	AwayTeamID string     `json:"awayTeamId" db:"away_team_id"`
	Kickoff    time.Time  `json:"kickoff" db:"kickoff"`
	HomeScore  *int       `json:"homeScore,omitempty" db:"home_score"`
	AwayScore  *int       `json:"awayScore,omitempty" db:"away_score"`
	Status     GameStatus `json:"status" db:"status"`

	IsCompleted            bool `json:"isCompleted" db:"is_completed"`
	IsPrimeTime            bool `json:"isPrimeTime" db:"is_prime_time"`
	IsDivisional           bool `json:"isDivisional" db:"is_divisional"`
	HasPlayoffImplications bool `json:"hasPlayoffImplications" db:"has_playoff_implications"`

	Synthetic bool      `json:"synthetic" db:"synthetic"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// IsSynthetic reports whether the game came from the degraded schedule path
func (g Game) IsSynthetic() bool {
	return g.Synthetic || strings.HasPrefix(g.ID, SyntheticIDPrefix)
}

// Winner returns the winning team id of a completed game, "" for ties or
// games without a final score.
func (g Game) Winner() string {
	if !g.IsCompleted || g.HomeScore == nil || g.AwayScore == nil {
		return ""
	}
	switch {
	case *g.HomeScore > *g.AwayScore:
		return g.HomeTeamID
	case *g.AwayScore > *g.HomeScore:
		return g.AwayTeamID
	default:
		return ""
	}
}

// PlayoffImplications is the week-number heuristic for late-season games
func PlayoffImplications(week int) bool {
	return week >= 15
}

var eastern = loadEastern()

func loadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("EST", -5*60*60)
	}
	return loc
}

// Eastern returns the America/New_York location used for slot rules
func Eastern() *time.Location {
	return eastern
}

// IsPrimeTimeKickoff reports a Thursday, Sunday or Monday kickoff at or after 20:00 ET
func IsPrimeTimeKickoff(kickoff time.Time) bool {
	local := kickoff.In(eastern)
	switch local.Weekday() {
	case time.Thursday, time.Sunday, time.Monday:
		return local.Hour() >= 20
	default:
		return false
	}
}
