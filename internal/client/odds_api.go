package client

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

const oddsAPISport = "americanfootball_nfl"

// Market keys of The Odds API
const (
	MarketMoneyline = "h2h"
	MarketSpreads   = "spreads"
	MarketTotals    = "totals"
)

// OddsAPIClient reads The Odds API v4
type OddsAPIClient struct {
	*baseClient
	apiKey string
}

// NewOddsAPIClient creates an Odds API client. An empty key leaves it unconfigured.
func NewOddsAPIClient(baseURL, apiKey string, opts Options) *OddsAPIClient {
	return &OddsAPIClient{
		baseClient: newBaseClient("odds_api", baseURL, opts),
		apiKey:     apiKey,
	}
}

// OddsEvent is one game on the odds board
type OddsEvent struct {
	ID           string      `json:"id"`
	CommenceTime time.Time   `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

// Bookmaker is one sportsbook's quote set
type Bookmaker struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Markets []Market `json:"markets"`
}

// Market is one market (h2h, spreads, totals) of a bookmaker
type Market struct {
	Key      string    `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

// Outcome is a single priced side. Name is a team name, or Over/Under for totals.
type Outcome struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Point *float64 `json:"point"`
}

// Configured reports whether an API key is set
func (c *OddsAPIClient) Configured() bool {
	return c.apiKey != ""
}

// FetchNFLOdds returns the current NFL board with moneyline, spread and total markets
func (c *OddsAPIClient) FetchNFLOdds(ctx context.Context) ([]OddsEvent, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("regions", "us")
	params.Set("markets", MarketMoneyline+","+MarketSpreads+","+MarketTotals)
	params.Set("oddsFormat", "american")
	params.Set("dateFormat", "iso")

	var events []OddsEvent
	if err := c.getJSON(ctx, "/sports/"+oddsAPISport+"/odds", params, nil, &events); err != nil {
		return nil, fmt.Errorf("failed to fetch NFL odds: %w", err)
	}

	log.Debug().Int("events", len(events)).Msg("Fetched NFL odds board")
	return events, nil
}
