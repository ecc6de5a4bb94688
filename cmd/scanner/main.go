package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"nba-ev-scanner/internal/adjust"
	"nba-ev-scanner/internal/alerts"
	"nba-ev-scanner/internal/config"
	"nba-ev-scanner/internal/feed"
	"nba-ev-scanner/internal/parlay"
	"nba-ev-scanner/internal/scan"
	"nba-ev-scanner/internal/store"
)

func main() {
	presetName := flag.String("preset", "pretip", "betting window preset (morning, pretip, plus_odds)")
	presetsPath := flag.String("presets", "presets.yaml", "optional preset overrides file")
	parlayLegs := flag.Int("parlays", 0, "also print parlay slips with this many legs (2-4)")
	debug := flag.Bool("debug", false, "verbose logging")
	pretty := flag.Bool("pretty", true, "human-readable log output")
	flag.Parse()

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	var log zerolog.Logger
	if *pretty {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	} else {
		log = zerolog.New(os.Stderr)
	}
	log = log.Level(level).With().Timestamp().Logger()

	cfg := config.Load()
	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	presets, err := config.LoadPresets(*presetsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading presets")
	}
	preset := config.Preset(presets, *presetName)

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("opening tick store")
	}
	defer db.Close()

	weights, err := store.LoadBookWeights(cfg.WeightsPath)
	if err != nil {
		log.Warn().Err(err).Msg("book weights unavailable, using flat weights")
		weights = store.BookWeights{}
	}

	books := append([]string{config.ReferenceBook}, config.CompetitorBooks...)
	oddsFeed := feed.NewOddsClient(cfg.OddsAPIKey, cfg.Sport, cfg.Regions, books,
		config.DefaultHTTPTimeout, config.DefaultMaxRetries, log)
	stats := feed.NewStatsClient(cfg.StatsAPIKey, config.DefaultHTTPTimeout, config.DefaultMaxRetries, log)
	injuries := feed.NewInjuryClient(cfg.InjuryAPIKey, config.DefaultHTTPTimeout, config.DefaultMaxRetries, log)

	injuryAdj := adjust.NewInjuryAdjuster(injuries)
	minutesAdj := adjust.NewMinutesAdjuster(stats)
	steamAdj := adjust.NewSteamAdjuster(db)
	pressureAdj := adjust.NewPressureAdjuster(injuries, minutesAdj)

	evaluator := scan.NewEvaluator(cfg, preset, weights, stats,
		injuryAdj, minutesAdj, steamAdj, pressureAdj, log)
	scanner := scan.NewScanner(cfg, preset, oddsFeed, evaluator, db, pressureAdj, nil, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := scanner.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("scan failed")
	}

	printPicks(result)

	if *parlayLegs >= 2 && *parlayLegs <= 4 {
		printParlays(parlay.DailySlips(result.Picks, *parlayLegs, 5), *parlayLegs)
	}

	notifier := alerts.NewNotifier(log, 30*time.Minute)
	notifier.NotifyPicks(result.Picks)
}

func printPicks(res *scan.Result) {
	if len(res.Picks) == 0 {
		fmt.Println("\nNo plays cleared the gates.")
		return
	}
	fmt.Printf("\n%s  (%d events, %d candidates)\n", res.Preset, res.Events, res.Evaluated)
	fmt.Println(strings.Repeat("-", 100))
	for i, p := range res.Picks {
		subject := p.Subject
		if p.Player != "" {
			subject = p.Player
		}
		fmt.Printf("%2d. [%s] %-28s %-9s %-5s %5.1f  %+4d  EV %+6.2f%%  conf %3d  stake %4.2f%%  %s\n",
			i+1, p.Badge, subject, p.Label, p.Side, p.Line, p.Price,
			p.EVPct, p.Confidence, p.StakePct, strings.Join(p.Reasons, " "))
	}
}

func printParlays(slips []parlay.Parlay, legs int) {
	if len(slips) == 0 {
		return
	}
	fmt.Printf("\n%d-leg parlays\n", legs)
	fmt.Println(strings.Repeat("-", 100))
	for i, s := range slips {
		fmt.Printf("%2d. %+5d  hit %5.1f%%  EV %+6.2f%%\n", i+1, s.American, s.HitProb*100, s.EVPct)
		for _, l := range s.Legs {
			subject := l.Subject
			if l.Player != "" {
				subject = l.Player
			}
			fmt.Printf("      %-28s %-9s %-5s %5.1f  %+4d\n", subject, l.Label, l.Side, l.Line, l.Price)
		}
	}
}
