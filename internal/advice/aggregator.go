// Package advice generates per-game commentary records from a fixed roster
// of named sources.
package advice

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"nfl_dashboard/aggregator/internal/models"
	"nfl_dashboard/aggregator/internal/random"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchSize is the number of games generated concurrently
const DefaultBatchSize = 3

// ErrInvalidRequest is returned for a request without a game or team names
var ErrInvalidRequest = errors.New("invalid advice request")

// AdviceRequest identifies one game by its team display names
type AdviceRequest struct {
	GameID   string
	HomeTeam string
	AwayTeam string
	Season   int
	Week     int
}

// Aggregator produces advice from the source roster
type Aggregator struct {
	rand      *random.Source
	clock     clock.Clock
	batchSize int
}

// NewAggregator creates an aggregator
func NewAggregator(rnd *random.Source, batchSize int, clk clock.Clock) *Aggregator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Aggregator{rand: rnd, clock: clk, batchSize: batchSize}
}

// Sources lists the roster names
func Sources() []string {
	names := make([]string, len(roster))
	for i, s := range roster {
		names[i] = s.name
	}
	return names
}

// GenerateAdvice returns one or two records per roster source for a game
func (a *Aggregator) GenerateAdvice(gameID, home, away string) ([]models.Advice, error) {
	return a.generate(AdviceRequest{GameID: gameID, HomeTeam: home, AwayTeam: away})
}

func (a *Aggregator) generate(req AdviceRequest) ([]models.Advice, error) {
	home, away := strings.TrimSpace(req.HomeTeam), strings.TrimSpace(req.AwayTeam)
	if req.GameID == "" || home == "" || away == "" {
		return nil, fmt.Errorf("%w: game %q teams %q/%q", ErrInvalidRequest, req.GameID, req.HomeTeam, req.AwayTeam)
	}

	rng := a.rand.For(req.Season, req.Week, "advice-"+req.GameID)
	fill := strings.NewReplacer("{home}", home, "{away}", away)
	now := a.clock.Now().UTC()

	out := make([]models.Advice, 0, 2*len(roster))
	for _, src := range roster {
		n := 1 + rng.IntN(2)
		for i := 0; i < n; i++ {
			content := fill.Replace(pick(rng, src.content))

			var rec *string
			if rng.IntN(5) > 0 {
				r := fill.Replace(pick(rng, src.recommendations))
				rec = &r
			}

			capturedAt := now.Add(-time.Duration(rng.IntN(180)) * time.Minute)
			out = append(out, models.NewAdvice(req.GameID, src.name, content, rec, capturedAt))
		}
	}
	return out, nil
}

func pick(rng *rand.Rand, pool []string) string {
	return pool[rng.IntN(len(pool))]
}

// BatchGenerateAdvice generates advice for every request, batchSize games
// at a time. A failing game is logged and skipped. Batches not yet started
// when ctx ends are skipped.
func (a *Aggregator) BatchGenerateAdvice(ctx context.Context, reqs []AdviceRequest) []models.Advice {
	var out []models.Advice

	for start := 0; start < len(reqs); start += a.batchSize {
		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Int("remaining", len(reqs)-start).Msg("Advice generation stopped")
			break
		}

		end := min(start+a.batchSize, len(reqs))
		batch := reqs[start:end]
		results := make([][]models.Advice, len(batch))

		var g errgroup.Group
		for i, req := range batch {
			g.Go(func() error {
				defer func() {
					if r := recover(); r != nil {
						log.Error().Str("game_id", req.GameID).Interface("panic", r).Msg("Advice generation panicked")
					}
				}()
				advice, err := a.generate(req)
				if err != nil {
					log.Warn().Err(err).Msg("Skipping advice")
					return nil
				}
				results[i] = advice
				return nil
			})
		}
		_ = g.Wait()

		for _, r := range results {
			out = append(out, r...)
		}
	}

	return out
}
