// Command refresh runs one refresh of a week against the configured store and
// prints the per-stage counts with the resulting week summary.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nfl_dashboard/aggregator/internal/app"
	"nfl_dashboard/aggregator/internal/config"
	"nfl_dashboard/aggregator/internal/pipeline"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	week := flag.Int("week", 0, "week to refresh (1-18, default current)")
	season := flag.Int("season", 0, "season to refresh (default current)")
	next := flag.Bool("next", false, "also refresh the following week")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := config.MustLoad()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize pipeline")
	}
	defer a.Close()

	// 1. Resolve the week
	if *week == 0 || *season == 0 {
		curSeason, curWeek := a.Pipeline.CurrentWeek(ctx)
		if *week == 0 {
			*week = curWeek
		}
		if *season == 0 {
			*season = curSeason
		}
	}
	if *week < 1 || *week > 18 {
		log.Fatal().Int("week", *week).Msg("Week must be between 1 and 18")
	}

	weeks := []int{*week}
	if *next && *week < 18 {
		weeks = append(weeks, *week+1)
	}

	// 2. Refresh, then report
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	ctx = pipeline.WithTrigger(ctx, "cli")

	for _, w := range weeks {
		result := a.Pipeline.Refresh(ctx, w, *season)

		summary, err := a.Pipeline.GetWeekSummary(ctx, w, *season)
		if err != nil {
			log.Error().Err(err).Int("week", w).Msg("Failed to compute week summary")
		}

		if err := enc.Encode(map[string]interface{}{
			"refresh": result,
			"summary": summary,
		}); err != nil {
			log.Fatal().Err(err).Msg("Failed to write result")
		}
	}
}
