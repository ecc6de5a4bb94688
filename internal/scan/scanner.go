package scan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"nba-ev-scanner/internal/config"
	"nba-ev-scanner/internal/feed"
	"nba-ev-scanner/internal/quotes"
	"nba-ev-scanner/internal/store"
)

// OddsSource is the slice of the odds feed the scanner needs.
type OddsSource interface {
	ListEvents(ctx context.Context) ([]feed.Event, error)
	EventOdds(ctx context.Context, eventID string, markets []string) (*feed.EventOdds, error)
}

// TickStore is the persistence surface the scanner writes through.
type TickStore interface {
	AppendTicks(ticks []store.Tick) error
	AppendBets(bets []store.BetRecord) error
}

// ScopeSetter lets the scanner narrow team-level adjusters to the slate.
type ScopeSetter interface {
	SetScope(teams []string)
}

// Result is one completed scan: the ranked picks plus run bookkeeping.
type Result struct {
	RunID     string
	Preset    string
	StartedAt time.Time
	Duration  time.Duration
	Events    int
	Evaluated int
	Picks     []Candidate
}

// Scanner fans event evaluation out over a worker pool and assembles the
// final ranked, capped, stake-sized pick list.
type Scanner struct {
	cfg       config.Config
	preset    config.WindowPreset
	oddsFeed  OddsSource
	evaluator *Evaluator
	ticks     TickStore
	scope     ScopeSetter
	markets   []string
	log       zerolog.Logger
	now       func() time.Time

	// OnProgress, when set, is invoked after each event finishes scoring.
	OnProgress func(done, total int)
}

// NewScanner assembles a scanner. ticks and scope may be nil; markets
// defaults to every market the board understands.
func NewScanner(cfg config.Config, preset config.WindowPreset, oddsFeed OddsSource,
	evaluator *Evaluator, ticks TickStore, scope ScopeSetter, markets []string, log zerolog.Logger) *Scanner {
	if len(markets) == 0 {
		markets = feed.AllMarkets
	}
	return &Scanner{
		cfg:       cfg,
		preset:    preset,
		oddsFeed:  oddsFeed,
		evaluator: evaluator,
		ticks:     ticks,
		scope:     scope,
		markets:   markets,
		log:       log,
		now:       time.Now,
	}
}

// Run executes one full scan of the slate.
func (s *Scanner) Run(ctx context.Context) (*Result, error) {
	started := s.now()
	res := &Result{
		RunID:     uuid.NewString(),
		Preset:    s.preset.Label,
		StartedAt: started,
	}
	log := s.log.With().Str("run_id", res.RunID).Logger()

	events, err := s.oddsFeed.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	res.Events = len(events)
	if len(events) == 0 {
		log.Info().Msg("no events on the slate")
		return res, nil
	}

	if s.scope != nil {
		teams := make([]string, 0, len(events)*2)
		for _, ev := range events {
			teams = append(teams, ev.HomeTeam, ev.AwayTeam)
		}
		s.scope.SetScope(teams)
	}

	log.Info().Int("events", len(events)).Str("preset", s.preset.Label).Msg("scan started")

	jobs := make(chan feed.Event)
	results := make(chan []Candidate)

	var wg sync.WaitGroup
	for w := 0; w < s.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ev := range jobs {
				results <- s.scanEvent(ctx, log, res.RunID, ev)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, ev := range events {
			select {
			case jobs <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var picks []Candidate
	done := 0
	for batch := range results {
		done++
		res.Evaluated += len(batch)
		picks = append(picks, batch...)
		if s.OnProgress != nil {
			s.OnProgress(done, len(events))
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	SortPicks(picks, s.preset.Sort)
	ApplyCorrelation(picks)
	picks = ApplyCaps(picks, s.cfg.MaxPerGame, s.cfg.MaxPerPlayer)
	if len(picks) > s.cfg.TopN {
		picks = picks[:s.cfg.TopN]
	}
	SizePicks(picks, s.cfg)
	res.Picks = picks
	res.Duration = s.now().Sub(started)

	s.persistBets(log, res)

	log.Info().
		Int("evaluated", res.Evaluated).
		Int("picks", len(picks)).
		Dur("took", res.Duration).
		Msg("scan finished")
	return res, nil
}

func (s *Scanner) scanEvent(ctx context.Context, log zerolog.Logger, runID string, ev feed.Event) []Candidate {
	if ctx.Err() != nil {
		return nil
	}
	payload, err := s.oddsFeed.EventOdds(ctx, ev.ID, s.markets)
	if err != nil {
		log.Warn().Str("event", ev.Matchup()).Err(err).Msg("odds fetch failed, skipping event")
		return nil
	}

	board := quotes.BuildBoard(ev, payload)
	if s.ticks != nil {
		ticks := board.Ticks(runID, s.now())
		if err := s.ticks.AppendTicks(ticks); err != nil {
			log.Warn().Str("event", ev.Matchup()).Err(err).Msg("tick write failed, dropping batch")
		} else {
			log.Debug().Str("event", ev.Matchup()).Int("ticks", len(ticks)).Msg("ticks recorded")
		}
	}

	return s.evaluator.EvaluateBoard(board)
}

func (s *Scanner) persistBets(log zerolog.Logger, res *Result) {
	if s.ticks == nil || len(res.Picks) == 0 {
		return
	}
	bets := make([]store.BetRecord, 0, len(res.Picks))
	for _, p := range res.Picks {
		bets = append(bets, store.BetRecord{
			RunID:      res.RunID,
			EventID:    p.EventID,
			Matchup:    p.Matchup,
			Subject:    p.Subject,
			Market:     p.Market,
			Line:       p.Line,
			Side:       p.Side,
			Book:       p.Book,
			Price:      p.Price,
			MarketProb: p.MarketProb,
			TrueProb:   p.TrueProb,
			EVPct:      p.EVPct,
			Confidence: p.Confidence,
			Badge:      p.Badge,
			StakePct:   p.StakePct,
			At:         s.now(),
		})
	}
	if err := s.ticks.AppendBets(bets); err != nil {
		log.Warn().Err(err).Msg("bet snapshot write failed, dropping batch")
	}
}
