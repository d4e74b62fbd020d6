package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ESPN season type for the regular season
const espnRegularSeason = "2"

// ESPNClient reads the public ESPN scoreboard and standings feeds
type ESPNClient struct {
	*baseClient
	standingsURL string
}

// NewESPNClient creates an ESPN client. standingsURL is the full standings endpoint.
func NewESPNClient(baseURL, standingsURL string, opts Options) *ESPNClient {
	return &ESPNClient{
		baseClient:   newBaseClient("espn", baseURL, opts),
		standingsURL: standingsURL,
	}
}

// Scoreboard wire format

type espnScoreboard struct {
	Season struct {
		Year int `json:"year"`
		Type int `json:"type"`
	} `json:"season"`
	Week struct {
		Number int `json:"number"`
	} `json:"week"`
	Events []espnEvent `json:"events"`
}

type espnEvent struct {
	ID           string            `json:"id"`
	Date         string            `json:"date"`
	Name         string            `json:"name"`
	Competitions []espnCompetition `json:"competitions"`
	Status       espnStatus        `json:"status"`
}

type espnCompetition struct {
	Date        string           `json:"date"`
	Competitors []espnCompetitor `json:"competitors"`
	Status      *espnStatus      `json:"status"`
}

type espnCompetitor struct {
	HomeAway string   `json:"homeAway"`
	Score    string   `json:"score"`
	Team     espnTeam `json:"team"`
}

type espnTeam struct {
	Abbreviation string `json:"abbreviation"`
	DisplayName  string `json:"displayName"`
}

type espnStatus struct {
	Type struct {
		Name      string `json:"name"`
		State     string `json:"state"`
		Completed bool   `json:"completed"`
	} `json:"type"`
}

// ScheduleEvent is one scoreboard event reduced to what the pipeline consumes
type ScheduleEvent struct {
	ID        string
	Kickoff   time.Time
	HomeAbbr  string
	HomeName  string
	AwayAbbr  string
	AwayName  string
	HomeScore *int
	AwayScore *int
	State     string
	Completed bool
}

// Scoreboard is a decoded week of events
type Scoreboard struct {
	Season int
	Week   int
	Events []ScheduleEvent
}

// FetchScoreboard returns the regular-season events of a week.
// A zero week or season asks ESPN for the current one.
func (c *ESPNClient) FetchScoreboard(ctx context.Context, week, season int) (*Scoreboard, error) {
	params := url.Values{}
	params.Set("seasontype", espnRegularSeason)
	if season > 0 {
		params.Set("dates", strconv.Itoa(season))
	}
	if week > 0 {
		params.Set("week", strconv.Itoa(week))
	}

	var raw espnScoreboard
	if err := c.getJSON(ctx, "/scoreboard", params, nil, &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch scoreboard week %d season %d: %w", week, season, err)
	}

	board := &Scoreboard{
		Season: raw.Season.Year,
		Week:   raw.Week.Number,
		Events: make([]ScheduleEvent, 0, len(raw.Events)),
	}

	for _, ev := range raw.Events {
		event, ok := convertEvent(ev)
		if !ok {
			log.Debug().Str("event_id", ev.ID).Str("name", ev.Name).Msg("Skipping scoreboard event without home/away pair")
			continue
		}
		board.Events = append(board.Events, event)
	}

	return board, nil
}

func convertEvent(ev espnEvent) (ScheduleEvent, bool) {
	if ev.ID == "" || len(ev.Competitions) == 0 {
		return ScheduleEvent{}, false
	}
	comp := ev.Competitions[0]

	var home, away *espnCompetitor
	for i := range comp.Competitors {
		switch strings.ToLower(comp.Competitors[i].HomeAway) {
		case "home":
			home = &comp.Competitors[i]
		case "away":
			away = &comp.Competitors[i]
		}
	}
	if home == nil || away == nil || home.Team.Abbreviation == "" || away.Team.Abbreviation == "" {
		return ScheduleEvent{}, false
	}
	if strings.EqualFold(home.Team.Abbreviation, away.Team.Abbreviation) {
		return ScheduleEvent{}, false
	}

	status := ev.Status
	if comp.Status != nil && comp.Status.Type.State != "" {
		status = *comp.Status
	}

	date := ev.Date
	if date == "" {
		date = comp.Date
	}
	kickoff, err := ParseESPNTime(date)
	if err != nil {
		return ScheduleEvent{}, false
	}

	event := ScheduleEvent{
		ID:        ev.ID,
		Kickoff:   kickoff,
		HomeAbbr:  strings.ToUpper(home.Team.Abbreviation),
		HomeName:  home.Team.DisplayName,
		AwayAbbr:  strings.ToUpper(away.Team.Abbreviation),
		AwayName:  away.Team.DisplayName,
		State:     status.Type.State,
		Completed: status.Type.Completed,
	}
	if status.Type.State != "pre" {
		event.HomeScore = parseScore(home.Score)
		event.AwayScore = parseScore(away.Score)
	}

	return event, true
}

// ParseESPNTime accepts ESPN's minute-precision timestamps ("2024-09-06T00:20Z") and RFC3339
func ParseESPNTime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04Z07:00", time.RFC3339, "2006-01-02T15:04:05Z0700"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised ESPN timestamp %q", ErrMalformed, s)
}

func parseScore(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

// Standings wire format

type espnStandingsNode struct {
	Name      string              `json:"name"`
	Children  []espnStandingsNode `json:"children"`
	Standings *struct {
		Entries []espnStandingsEntry `json:"entries"`
	} `json:"standings"`
}

type espnStandingsEntry struct {
	Team  espnTeam `json:"team"`
	Stats []struct {
		Name  string  `json:"name"`
		Value float64 `json:"value"`
	} `json:"stats"`
}

// StandingsEntry is one team's season record
type StandingsEntry struct {
	Abbreviation  string
	DisplayName   string
	Wins          int
	Losses        int
	PointsFor     int
	PointsAgainst int
}

// FetchStandings returns the regular-season record of every team
func (c *ESPNClient) FetchStandings(ctx context.Context, season int) ([]StandingsEntry, error) {
	params := url.Values{}
	params.Set("seasontype", espnRegularSeason)
	if season > 0 {
		params.Set("season", strconv.Itoa(season))
	}

	body, err := c.do(ctx, request{method: http.MethodGet, rawURL: c.standingsURL, params: params})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch standings season %d: %w", season, err)
	}

	var root espnStandingsNode
	if err := decode(c.name, body, &root); err != nil {
		return nil, err
	}

	var out []StandingsEntry
	seen := make(map[string]bool)
	var walk func(n espnStandingsNode)
	walk = func(n espnStandingsNode) {
		if n.Standings != nil {
			for _, e := range n.Standings.Entries {
				abbr := strings.ToUpper(e.Team.Abbreviation)
				if abbr == "" || seen[abbr] {
					continue
				}
				seen[abbr] = true
				out = append(out, convertStandings(abbr, e))
			}
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(root)

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: standings season %d contained no teams", ErrMalformed, season)
	}
	return out, nil
}

func convertStandings(abbr string, e espnStandingsEntry) StandingsEntry {
	entry := StandingsEntry{Abbreviation: abbr, DisplayName: e.Team.DisplayName}
	for _, s := range e.Stats {
		v := int(s.Value)
		if v < 0 {
			v = 0
		}
		switch s.Name {
		case "wins":
			entry.Wins = v
		case "losses":
			entry.Losses = v
		case "pointsFor":
			entry.PointsFor = v
		case "pointsAgainst":
			entry.PointsAgainst = v
		}
	}
	return entry
}
