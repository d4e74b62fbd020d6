package prediction

import (
	"context"
	"math"
	"time"

	"nfl_dashboard/aggregator/internal/client"
	"nfl_dashboard/aggregator/internal/metrics"
	"nfl_dashboard/aggregator/internal/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultEnrichTimeout bounds one Gather call
const DefaultEnrichTimeout = 10 * time.Second

// Signals are the auxiliary inputs of an enriched prediction. A signal that
// could not be gathered keeps its neutral value with Available unset.
type Signals struct {
	HeadToHead HeadToHead
	Weather    Weather
	Momentum   Momentum
	Injuries   Injuries
	Sentiment  Sentiment
	Market     MarketIntel
	Coaching   Coaching
}

// HeadToHead is the recent record between the two teams
type HeadToHead struct {
	Games     int
	HomeWins  int
	AwayWins  int
	Available bool
}

// Weather at kickoff
type Weather struct {
	Conditions   string
	TemperatureF int
	WindMPH      int
	Available    bool
}

// Momentum is recent form per side, in [-1,1]
type Momentum struct {
	Home      float64
	Away      float64
	Available bool
}

// Injuries is the impact of missing players per side, in [0,1]
type Injuries struct {
	HomeImpact float64
	AwayImpact float64
	Available  bool
}

// Sentiment is the fan lean between the two teams
type Sentiment struct {
	Favorite   string // team id, or "" when even
	Confidence float64
	Mentions   int
	Available  bool
}

// MarketIntel summarizes betting-market behavior
type MarketIntel struct {
	PublicHomePct float64 // 0-100
	SharpSide     string  // "home", "away" or "none"
	LineMovement  float64 // new home spread minus previous home spread
	Available     bool
}

// Coaching is the head coach matchup edge
type Coaching struct {
	Edge      string
	Available bool
}

// NeutralSignals returns the defaults used when nothing could be gathered
func NeutralSignals() Signals {
	return Signals{
		Weather:   Weather{Conditions: "clear", TemperatureF: 65, WindMPH: 5},
		Momentum:  Momentum{},
		Sentiment: Sentiment{Confidence: 0.5},
		Market:    MarketIntel{PublicHomePct: 50, SharpSide: "none"},
		Coaching:  Coaching{Edge: "even"},
	}
}

// Signal is one provider's result, merged into Signals
type Signal interface {
	apply(s *Signals)
}

func (h HeadToHead) apply(s *Signals)  { s.HeadToHead = h }
func (w Weather) apply(s *Signals)     { s.Weather = w }
func (m Momentum) apply(s *Signals)    { s.Momentum = m }
func (i Injuries) apply(s *Signals)    { s.Injuries = i }
func (st Sentiment) apply(s *Signals)  { s.Sentiment = st }
func (m MarketIntel) apply(s *Signals) { s.Market = m }
func (c Coaching) apply(s *Signals)    { s.Coaching = c }

// Provider gathers one kind of signal
type Provider interface {
	Name() string
	Gather(ctx context.Context, in PredictInput) (Signal, error)
}

// Enricher runs every provider concurrently
type Enricher struct {
	providers []Provider
	timeout   time.Duration
}

// NewEnricher creates an enricher over providers
func NewEnricher(timeout time.Duration, providers ...Provider) *Enricher {
	if timeout <= 0 {
		timeout = DefaultEnrichTimeout
	}
	return &Enricher{providers: providers, timeout: timeout}
}

// Gather collects all signals for a game. A failing provider leaves its
// signal neutral and never affects the others.
func (e *Enricher) Gather(ctx context.Context, in PredictInput) Signals {
	signals := NeutralSignals()
	if e == nil || len(e.providers) == 0 {
		return signals
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	results := make([]Signal, len(e.providers))
	var g errgroup.Group
	for i, p := range e.providers {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					log.Error().Str("provider", p.Name()).Interface("panic", r).Msg("Signal provider panicked")
				}
			}()
			sig, err := p.Gather(ctx, in)
			if err != nil {
				log.Debug().
					Err(err).
					Str("provider", p.Name()).
					Str("game_id", in.Game.ID).
					Msg("Signal unavailable, using neutral default")
				metrics.RecordFallback("signal_"+p.Name(), client.Reason(err))
				return nil
			}
			results[i] = sig
			return nil
		})
	}
	_ = g.Wait()

	for _, sig := range results {
		if sig != nil {
			sig.apply(&signals)
		}
	}
	return signals
}

func (s Signals) available() int {
	n := 0
	for _, ok := range []bool{
		s.HeadToHead.Available,
		s.Weather.Available,
		s.Momentum.Available,
		s.Injuries.Available,
		s.Sentiment.Available,
		s.Market.Available,
		s.Coaching.Available,
	} {
		if ok {
			n++
		}
	}
	return n
}

const signalCount = 7

// ComputeConfidenceFactors scores how well the gathered signals support the
// record-based favorite. It depends only on the input and the signals.
func ComputeConfidenceFactors(in PredictInput, s Signals) models.ConfidenceFactors {
	homeFavored := winPct(in.HomeStats)+HomeFieldEdge > winPct(in.AwayStats)

	dataQuality := float64(s.available()) / signalCount
	if in.HomeStats != nil && in.AwayStats != nil && !in.HomeStats.Synthetic && !in.AwayStats.Synthetic {
		dataQuality = (dataQuality*signalCount + 1) / (signalCount + 1)
	}

	// Directional signals either agree with the favorite or not
	agree, votes := 0, 0
	vote := func(home bool) {
		votes++
		if home == homeFavored {
			agree++
		}
	}
	if s.Momentum.Available && s.Momentum.Home != s.Momentum.Away {
		vote(s.Momentum.Home > s.Momentum.Away)
	}
	if s.Sentiment.Available && s.Sentiment.Favorite != "" {
		vote(s.Sentiment.Favorite == in.HomeTeam.ID)
	}
	if s.Market.Available && s.Market.SharpSide != "none" && s.Market.SharpSide != "" {
		vote(s.Market.SharpSide == "home")
	}
	if s.HeadToHead.Available && s.HeadToHead.HomeWins != s.HeadToHead.AwayWins {
		vote(s.HeadToHead.HomeWins > s.HeadToHead.AwayWins)
	}
	consensus := 0.5
	if votes > 0 {
		consensus = float64(agree) / float64(votes)
	}

	alignment := 0.5
	if in.Odds != nil {
		if oddsHome, known := in.Odds.FavoriteIsHome(); known {
			weight := 0.25
			if in.Odds.HomeSpread != nil {
				weight = 0.5 * math.Min(math.Abs(*in.Odds.HomeSpread)/MaxSpreadForAlignment, 1)
			}
			if oddsHome == homeFavored {
				alignment = 0.5 + weight
			} else {
				alignment = 0.5 - weight
			}
		}
	}

	historical := 0.5
	if s.HeadToHead.Available && s.HeadToHead.Games > 0 {
		best := max(s.HeadToHead.HomeWins, s.HeadToHead.AwayWins)
		historical = float64(best) / float64(s.HeadToHead.Games)
	}

	return models.ConfidenceFactors{
		DataQuality:        round2(dataQuality),
		ModelConsensus:     round2(consensus),
		MarketAlignment:    round2(alignment),
		HistoricalAccuracy: round2(historical),
	}
}

// MaxSpreadForAlignment is the spread at which market alignment saturates
const MaxSpreadForAlignment = 7.0

// SentimentScore maps fan lean onto [-1,1], positive toward the home team.
// Unavailable sentiment has no score.
func SentimentScore(s Sentiment, homeID string) *float64 {
	if !s.Available {
		return nil
	}
	lean := 0.0
	switch s.Favorite {
	case "":
	case homeID:
		lean = 2*s.Confidence - 1
	default:
		lean = 1 - 2*s.Confidence
	}
	v := math.Round(math.Max(-1, math.Min(1, lean))*100) / 100
	if v == 0 {
		v = 0 // no negative zero
	}
	return &v
}

func round2(v float64) float64 {
	v = math.Max(0, math.Min(1, v))
	return math.Round(v*100) / 100
}
