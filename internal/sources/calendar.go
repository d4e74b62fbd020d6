package sources

import (
	"time"

	"nfl_dashboard/aggregator/internal/models"
)

// Regular season bounds
const (
	FirstWeek = 1
	LastWeek  = 18
)

type slot struct {
	dayOffset    int // days after the week's Thursday
	hour, minute int
}

var (
	thursdayNight = slot{0, 20, 15}
	sundayEarly   = slot{3, 13, 0}
	sundayLate    = slot{3, 16, 25}
	sundayNight   = slot{3, 20, 20}
	mondayNight   = slot{4, 20, 15}
)

// slotsFor spreads n synthetic games over the conventional windows of a week
func slotsFor(n int) []slot {
	switch {
	case n <= 4:
		return []slot{thursdayNight, sundayEarly, sundayLate, mondayNight}[:max(n, 0)]
	case n == 5:
		return []slot{thursdayNight, sundayEarly, sundayLate, sundayNight, mondayNight}
	default:
		return []slot{thursdayNight, sundayEarly, sundayEarly, sundayLate, sundayNight, mondayNight}
	}
}

// WeekOneThursday returns the Thursday after Labor Day, at midnight ET
func WeekOneThursday(season int) time.Time {
	et := models.Eastern()
	d := time.Date(season, time.September, 1, 0, 0, 0, 0, et)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return d.AddDate(0, 0, 3)
}

// WeekThursday returns the Thursday that opens a week, at midnight ET
func WeekThursday(season, week int) time.Time {
	return WeekOneThursday(season).AddDate(0, 0, 7*(week-1))
}

func (s slot) at(season, week int) time.Time {
	thu := WeekThursday(season, week)
	return time.Date(thu.Year(), thu.Month(), thu.Day()+s.dayOffset, s.hour, s.minute, 0, 0, models.Eastern())
}

// EstimateWeek derives (season, week) from a wall-clock time. A week runs
// from the Tuesday before its Thursday game. Off-season dates clamp to week 1
// of the upcoming season or week 18 of the finished one.
func EstimateWeek(now time.Time) (season, week int) {
	now = now.In(models.Eastern())
	season = now.Year()
	if now.Month() < time.March {
		season--
	}

	start := WeekOneThursday(season).AddDate(0, 0, -2)
	if now.Before(start) {
		return season, FirstWeek
	}

	week = int(now.Sub(start).Hours()/(24*7)) + 1
	if week > LastWeek {
		week = LastWeek
	}
	return season, week
}
