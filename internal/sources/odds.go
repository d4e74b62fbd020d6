package sources

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"
	"unicode"

	"nfl_dashboard/aggregator/internal/client"
	"nfl_dashboard/aggregator/internal/metrics"
	"nfl_dashboard/aggregator/internal/models"
	"nfl_dashboard/aggregator/internal/random"
	"nfl_dashboard/aggregator/internal/teams"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog/log"
)

// SyntheticBookmaker labels generated lines
const SyntheticBookmaker = "synthetic"

// Synthetic line bounds
const (
	MinSyntheticSpread = -7.0
	MaxSyntheticSpread = 7.0
	MinSyntheticTotal  = 40.0
	MaxSyntheticTotal  = 60.0
)

// KickoffWindow bounds how far a board event's commence time may sit from
// the requested kickoff and still count as the same game
const KickoffWindow = 36 * time.Hour

// ErrInvalidOddsRequest is the only error the odds source returns
var ErrInvalidOddsRequest = errors.New("invalid odds request")

// OddsFetcher is the upstream odds board
type OddsFetcher interface {
	FetchNFLOdds(ctx context.Context) ([]client.OddsEvent, error)
}

// OddsRequest identifies one game by its internal team ids. A zero Kickoff
// matches on team names alone.
type OddsRequest struct {
	GameID   string
	HomeTeam string
	AwayTeam string
	Season   int
	Week     int
	Kickoff  time.Time
}

// OddsSource produces betting lines per game
type OddsSource struct {
	fetcher  OddsFetcher
	registry *teams.Registry
	rand     *random.Source
	clock    clock.Clock
}

// NewOddsSource creates an odds source. A nil fetcher always synthesizes.
func NewOddsSource(fetcher OddsFetcher, registry *teams.Registry, rnd *random.Source, clk clock.Clock) *OddsSource {
	if clk == nil {
		clk = clock.New()
	}
	return &OddsSource{fetcher: fetcher, registry: registry, rand: rnd, clock: clk}
}

// FetchOdds returns the lines of one game. Upstream failure, missing key,
// or no matching event all yield synthetic odds; only a malformed request errors.
func (s *OddsSource) FetchOdds(ctx context.Context, home, away, gameID string) (models.Odds, error) {
	req := OddsRequest{GameID: gameID, HomeTeam: home, AwayTeam: away}
	if err := validateOddsRequest(req); err != nil {
		return models.Odds{}, err
	}

	board, reason := s.board(ctx)
	return s.resolve(req, board, reason), nil
}

// FetchBatchOdds fetches the board once and matches every game independently.
// Invalid requests are dropped.
func (s *OddsSource) FetchBatchOdds(ctx context.Context, reqs []OddsRequest) []models.Odds {
	if len(reqs) == 0 {
		return nil
	}

	board, reason := s.board(ctx)
	out := make([]models.Odds, 0, len(reqs))
	for _, req := range reqs {
		if err := validateOddsRequest(req); err != nil {
			log.Warn().Err(err).Str("game_id", req.GameID).Msg("Dropping odds request")
			continue
		}
		out = append(out, s.resolve(req, board, reason))
	}
	return out
}

func validateOddsRequest(req OddsRequest) error {
	switch {
	case req.GameID == "":
		return fmt.Errorf("%w: empty game id", ErrInvalidOddsRequest)
	case !validTeamID(req.HomeTeam) || !validTeamID(req.AwayTeam):
		return fmt.Errorf("%w: game %s has malformed team ids %q/%q", ErrInvalidOddsRequest, req.GameID, req.HomeTeam, req.AwayTeam)
	case strings.EqualFold(req.HomeTeam, req.AwayTeam):
		return fmt.Errorf("%w: game %s has identical teams", ErrInvalidOddsRequest, req.GameID)
	}
	return nil
}

func validTeamID(id string) bool {
	if id == "" || len(id) > 8 {
		return false
	}
	for _, r := range id {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func (s *OddsSource) board(ctx context.Context) ([]client.OddsEvent, string) {
	if s.fetcher == nil {
		return nil, "not_configured"
	}
	events, err := s.fetcher.FetchNFLOdds(ctx)
	if err != nil {
		if !errors.Is(err, client.ErrNotConfigured) {
			log.Warn().Err(err).Msg("Odds provider failed, synthesizing odds")
		}
		return nil, client.Reason(err)
	}
	return events, ""
}

func (s *OddsSource) resolve(req OddsRequest, board []client.OddsEvent, reason string) models.Odds {
	if reason == "" {
		event, flipped, ok := s.match(req, board)
		if !ok {
			reason = "no_match"
		} else if odds, ok := extractOdds(req.GameID, event, flipped, s.registry); ok {
			odds.FetchedAt = s.clock.Now().UTC()
			return odds
		} else {
			reason = "no_bookmakers"
		}
	}

	metrics.RecordFallback("odds", reason)
	return s.Synthesize(req)
}

// match finds the board event for the request, also accepting the event with
// home and away swapped (neutral-site listings). Events outside the kickoff
// window are a different meeting of the same teams.
func (s *OddsSource) match(req OddsRequest, board []client.OddsEvent) (client.OddsEvent, bool, bool) {
	for _, ev := range board {
		if sameSlot(req.Kickoff, ev.CommenceTime) &&
			s.registry.Matches(ev.HomeTeam, req.HomeTeam) && s.registry.Matches(ev.AwayTeam, req.AwayTeam) {
			return ev, false, true
		}
	}
	for _, ev := range board {
		if sameSlot(req.Kickoff, ev.CommenceTime) &&
			s.registry.Matches(ev.HomeTeam, req.AwayTeam) && s.registry.Matches(ev.AwayTeam, req.HomeTeam) {
			return ev, true, true
		}
	}
	return client.OddsEvent{}, false, false
}

func sameSlot(kickoff, commence time.Time) bool {
	if kickoff.IsZero() || commence.IsZero() {
		return true
	}
	d := kickoff.Sub(commence)
	return d <= KickoffWindow && d >= -KickoffWindow
}

// extractOdds reads the first bookmaker that carries any usable market
func extractOdds(gameID string, ev client.OddsEvent, flipped bool, registry *teams.Registry) (models.Odds, bool) {
	homeName, awayName := ev.HomeTeam, ev.AwayTeam
	if flipped {
		homeName, awayName = awayName, homeName
	}

	for _, bm := range ev.Bookmakers {
		odds := models.Odds{GameID: gameID, Bookmaker: bm.Key}
		for _, m := range bm.Markets {
			switch m.Key {
			case client.MarketSpreads:
				for _, o := range m.Outcomes {
					if o.Point == nil {
						continue
					}
					switch {
					case sameTeam(registry, o.Name, homeName):
						odds.HomeSpread = models.Float(*o.Point)
						odds.SpreadPrice = models.Int(int(o.Price))
					case sameTeam(registry, o.Name, awayName):
						odds.AwaySpread = models.Float(*o.Point)
					}
				}
				if odds.HomeSpread != nil && odds.AwaySpread == nil {
					odds.AwaySpread = models.Float(negate(*odds.HomeSpread))
				}
				if odds.AwaySpread != nil && odds.HomeSpread == nil {
					odds.HomeSpread = models.Float(negate(*odds.AwaySpread))
				}
			case client.MarketTotals:
				for _, o := range m.Outcomes {
					if strings.EqualFold(o.Name, "over") && o.Point != nil {
						odds.TotalPoints = models.Float(*o.Point)
						odds.TotalPrice = models.Int(int(o.Price))
					}
				}
			case client.MarketMoneyline:
				for _, o := range m.Outcomes {
					switch {
					case sameTeam(registry, o.Name, homeName):
						odds.HomeMoneyline = models.Int(int(o.Price))
					case sameTeam(registry, o.Name, awayName):
						odds.AwayMoneyline = models.Int(int(o.Price))
					}
				}
			}
		}
		if odds.HasLines() {
			return odds, true
		}
	}
	return models.Odds{}, false
}

func sameTeam(registry *teams.Registry, a, b string) bool {
	if teams.NormalizeName(a) == teams.NormalizeName(b) {
		return true
	}
	ida, okA := registry.Resolve(a)
	idb, okB := registry.Resolve(b)
	return okA && okB && ida == idb
}

// Synthesize draws plausible lines: spread in [-7,7] and total in [40,60],
// both on half points, standard -110 prices and moneylines whose sign follows
// the spread.
func (s *OddsSource) Synthesize(req OddsRequest) models.Odds {
	rng := s.rand.For(req.Season, req.Week, "odds-"+req.GameID)
	return synthesizeOdds(req.GameID, rng, s.clock.Now().UTC())
}

func synthesizeOdds(gameID string, rng *rand.Rand, now time.Time) models.Odds {
	spread := roundHalf(MinSyntheticSpread + rng.Float64()*(MaxSyntheticSpread-MinSyntheticSpread))
	total := roundHalf(MinSyntheticTotal + rng.Float64()*(MaxSyntheticTotal-MinSyntheticTotal))

	homeML, awayML := models.StandardPrice, models.StandardPrice
	if spread != 0 {
		abs := math.Abs(spread)
		favorite := -(110 + int(math.Round(20*abs)) + rng.IntN(20))
		underdog := 100 + int(math.Round(18*abs)) + rng.IntN(20)
		if spread < 0 {
			homeML, awayML = favorite, underdog
		} else {
			homeML, awayML = underdog, favorite
		}
	}

	return models.Odds{
		GameID:        gameID,
		HomeSpread:    models.Float(spread),
		AwaySpread:    models.Float(negate(spread)),
		SpreadPrice:   models.Int(models.StandardPrice),
		TotalPoints:   models.Float(total),
		TotalPrice:    models.Int(models.StandardPrice),
		HomeMoneyline: models.Int(homeML),
		AwayMoneyline: models.Int(awayML),
		Bookmaker:     SyntheticBookmaker,
		Synthetic:     true,
		FetchedAt:     now,
	}
}

func roundHalf(v float64) float64 {
	r := math.Round(v*2) / 2
	if r == 0 {
		return 0
	}
	return r
}

func negate(v float64) float64 {
	if v == 0 {
		return 0
	}
	return -v
}
