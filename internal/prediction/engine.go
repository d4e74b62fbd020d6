// Package prediction produces a winner, confidence and rationale per game,
// asking an external reasoning service first and falling back to a
// deterministic record-based heuristic.
package prediction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nfl_dashboard/aggregator/internal/client"
	"nfl_dashboard/aggregator/internal/metrics"
	"nfl_dashboard/aggregator/internal/models"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds a single reasoning request
const DefaultTimeout = 30 * time.Second

// ErrInvalidInput is returned for inputs that cannot be predicted at all
var ErrInvalidInput = errors.New("invalid prediction input")

// Reasoner is the external reasoning service
type Reasoner interface {
	Configured() bool
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// PredictInput is everything known about one game when predicting it
type PredictInput struct {
	Game      models.Game
	HomeTeam  models.Team
	AwayTeam  models.Team
	HomeStats *models.TeamStats
	AwayStats *models.TeamStats
	Odds      *models.Odds

	// PreviousOdds are the lines stored before this refresh, used for
	// line movement in enriched mode.
	PreviousOdds *models.Odds
}

// Validate checks that the input names a game and two distinct teams
func (in PredictInput) Validate() error {
	switch {
	case in.Game.ID == "":
		return fmt.Errorf("%w: empty game id", ErrInvalidInput)
	case in.HomeTeam.ID == "" || in.AwayTeam.ID == "":
		return fmt.Errorf("%w: game %s is missing a team", ErrInvalidInput, in.Game.ID)
	case in.HomeTeam.ID == in.AwayTeam.ID:
		return fmt.Errorf("%w: game %s has identical teams", ErrInvalidInput, in.Game.ID)
	}
	return nil
}

// Options tunes the engine
type Options struct {
	Timeout     time.Duration
	Concurrency int
	Enriched    bool
}

// Engine predicts games
type Engine struct {
	reasoner Reasoner
	enricher *Enricher
	opts     Options
	clock    clock.Clock
}

// NewEngine creates an engine. A nil or unconfigured reasoner makes every
// prediction use the fallback heuristic. The enricher is only consulted
// when opts.Enriched is set.
func NewEngine(reasoner Reasoner, enricher *Enricher, opts Options, clk clock.Clock) *Engine {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Engine{reasoner: reasoner, enricher: enricher, opts: opts, clock: clk}
}

// Predict returns a prediction for one game. Any reasoning failure, timeout
// or unusable response yields the fallback prediction instead.
func (e *Engine) Predict(ctx context.Context, in PredictInput) models.Prediction {
	now := e.clock.Now().UTC()

	var signals *Signals
	enriched := e.opts.Enriched && e.enricher != nil
	if enriched {
		s := e.enricher.Gather(ctx, in)
		signals = &s
	}

	pred, err := e.reason(ctx, in, signals)
	if err != nil {
		reason := client.Reason(err)
		if !errors.Is(err, client.ErrNotConfigured) {
			log.Warn().
				Err(err).
				Str("game_id", in.Game.ID).
				Str("reason", reason).
				Msg("Reasoning prediction failed, using fallback")
		}
		metrics.RecordFallback("prediction", reason)
		pred = Fallback(in)
	}

	pred.GameID = in.Game.ID
	pred.CreatedAt = now
	if signals != nil {
		cf := ComputeConfidenceFactors(in, *signals)
		pred.ConfidenceFactors = &cf
		pred.SentimentScore = SentimentScore(signals.Sentiment, in.HomeTeam.ID)
	}
	pred.Clamp()
	return pred
}

func (e *Engine) reason(ctx context.Context, in PredictInput, signals *Signals) (models.Prediction, error) {
	if e.reasoner == nil || !e.reasoner.Configured() {
		return models.Prediction{}, client.ErrNotConfigured
	}

	reqCtx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	system := systemInstruction
	if signals != nil {
		system = enrichedSystemInstruction
	}

	content, err := e.reasoner.Complete(reqCtx, system, BuildPrompt(in, signals))
	if err != nil {
		if reqCtx.Err() != nil && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", err, reqCtx.Err())
		}
		return models.Prediction{}, err
	}

	pred, err := DecodeResponse(content, in, signals != nil)
	if err != nil {
		return models.Prediction{}, fmt.Errorf("%w: %w", client.ErrMalformed, err)
	}
	return pred, nil
}

// PredictBatch predicts all valid inputs concurrently. Invalid inputs are
// dropped; every other game gets a prediction, falling back individually.
func (e *Engine) PredictBatch(ctx context.Context, inputs []PredictInput) []models.Prediction {
	valid := make([]PredictInput, 0, len(inputs))
	for _, in := range inputs {
		if err := in.Validate(); err != nil {
			log.Warn().Err(err).Msg("Skipping prediction")
			continue
		}
		valid = append(valid, in)
	}

	out := make([]models.Prediction, len(valid))
	var g errgroup.Group
	g.SetLimit(e.opts.Concurrency)

	for i, in := range valid {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Str("game_id", in.Game.ID).
						Interface("panic", r).
						Msg("Prediction panicked, using fallback")
					p := Fallback(in)
					p.GameID = in.Game.ID
					p.CreatedAt = e.clock.Now().UTC()
					out[i] = p
				}
			}()
			out[i] = e.Predict(ctx, in)
			return nil
		})
	}
	_ = g.Wait()

	return out
}
