package models

import (
	"fmt"
	"time"
)

// TeamStats represents a team's season record, one per (team, season)
type TeamStats struct {
	TeamID        string    `json:"teamId" db:"team_id"`
	Season        int       `json:"season" db:"season"`
	Wins          int       `json:"wins" db:"wins"`
	Losses        int       `json:"losses" db:"losses"`
	PointsFor     int       `json:"pointsFor" db:"points_for"`
	PointsAgainst int       `json:"pointsAgainst" db:"points_against"`
	Synthetic     bool      `json:"synthetic" db:"synthetic"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// GamesPlayed returns wins plus losses
func (s TeamStats) GamesPlayed() int {
	return s.Wins + s.Losses
}

// WinPct returns W/(W+L), or 0.5 when no games have been played
func (s TeamStats) WinPct() float64 {
	played := s.GamesPlayed()
	if played <= 0 {
		return 0.5
	}
	return float64(s.Wins) / float64(played)
}

// PointDifferential returns points for minus points against
func (s TeamStats) PointDifferential() int {
	return s.PointsFor - s.PointsAgainst
}

// Record formats the record as "W-L"
func (s TeamStats) Record() string {
	return fmt.Sprintf("%d-%d", s.Wins, s.Losses)
}

// Normalize clamps negative counters to zero
func (s *TeamStats) Normalize() {
	if s.Wins < 0 {
		s.Wins = 0
	}
	if s.Losses < 0 {
		s.Losses = 0
	}
	if s.PointsFor < 0 {
		s.PointsFor = 0
	}
	if s.PointsAgainst < 0 {
		s.PointsAgainst = 0
	}
}
