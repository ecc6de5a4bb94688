package scan

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"nba-ev-scanner/internal/adjust"
	"nba-ev-scanner/internal/config"
	"nba-ev-scanner/internal/feed"
	"nba-ev-scanner/internal/mathutil"
	"nba-ev-scanner/internal/model"
	"nba-ev-scanner/internal/odds"
	"nba-ev-scanner/internal/quotes"
	"nba-ev-scanner/internal/store"
)

const logWindow = 30

// Evaluator scores every proposition on an event board against the
// reference book. It is safe for concurrent use across events.
type Evaluator struct {
	cfg    config.Config
	preset config.WindowPreset

	weights  store.BookWeights
	stats    adjust.GameLogSource
	injury   *adjust.InjuryAdjuster
	minutes  *adjust.MinutesAdjuster
	steam    *adjust.SteamAdjuster
	pressure *adjust.PressureAdjuster
	log      zerolog.Logger

	mu       sync.Mutex
	logCache map[string][]feed.GameLog
}

// NewEvaluator builds an evaluator. Any adjuster may be nil, in which case
// its contribution is zero; stats may be nil to disable the blend model.
func NewEvaluator(cfg config.Config, preset config.WindowPreset, weights store.BookWeights,
	stats adjust.GameLogSource, injury *adjust.InjuryAdjuster, minutes *adjust.MinutesAdjuster,
	steam *adjust.SteamAdjuster, pressure *adjust.PressureAdjuster, log zerolog.Logger) *Evaluator {
	return &Evaluator{
		cfg:      cfg,
		preset:   preset,
		weights:  weights,
		stats:    stats,
		injury:   injury,
		minutes:  minutes,
		steam:    steam,
		pressure: pressure,
		log:      log,
		logCache: make(map[string][]feed.GameLog),
	}
}

// EvaluateBoard scores every side of every proposition on the board.
func (e *Evaluator) EvaluateBoard(b *quotes.Board) []Candidate {
	var out []Candidate
	for _, key := range b.Keys() {
		for _, side := range e.sidesFor(b, key) {
			if c, ok := e.evaluate(b, key, side); ok {
				out = append(out, c)
			}
		}
	}
	return out
}

func (e *Evaluator) sidesFor(b *quotes.Board, key quotes.Key) []string {
	switch key.Market {
	case feed.MarketMoneyline:
		return []string{b.HomeTeam, b.AwayTeam}
	case feed.MarketSpreads:
		return []string{quotes.SideCover}
	default:
		return []string{quotes.SideOver, quotes.SideUnder}
	}
}

// oppositeSide returns the side that completes the two-way pair, and for
// spreads the mirrored opponent key the pair lives under.
func (e *Evaluator) oppositeSide(b *quotes.Board, key quotes.Key, side string) (string, quotes.Key, bool) {
	switch key.Market {
	case feed.MarketMoneyline:
		if side == b.HomeTeam {
			return b.AwayTeam, key, true
		}
		return b.HomeTeam, key, true
	case feed.MarketSpreads:
		opponent := b.HomeTeam
		if key.Subject == b.HomeTeam {
			opponent = b.AwayTeam
		}
		mirror, ok := b.OpponentSpread(key, opponent)
		return quotes.SideCover, mirror, ok
	default:
		if side == quotes.SideOver {
			return quotes.SideUnder, key, true
		}
		return quotes.SideOver, key, true
	}
}

// marketSample is the per-book vig-free view of one side.
type marketSample struct {
	probs      []float64
	weights    []float64
	compPrices []int
}

func (e *Evaluator) sampleCompetitors(b *quotes.Board, key quotes.Key, side, otherSide string, otherKey quotes.Key) marketSample {
	var s marketSample
	for _, book := range config.CompetitorBooks {
		priceA, ok := b.Price(key, book, side)
		if !ok {
			continue
		}
		priceB, ok := b.Price(otherKey, book, otherSide)
		if !ok {
			continue
		}
		fairA, _, ok := odds.FairPairFromAmerican(priceA, priceB)
		if !ok {
			continue
		}
		s.probs = append(s.probs, fairA)
		s.weights = append(s.weights, e.weights.Weight(book))
		s.compPrices = append(s.compPrices, priceA)
	}
	return s
}

// minBooksFor applies the preset's delta to the configured book floor.
// Moneylines keep a hard floor of two contributors on top of that; a lone
// competitor cannot anchor a two-sided consensus.
func (e *Evaluator) minBooksFor(market string) int {
	n := e.cfg.MinBooks + e.preset.MinBooksDelta
	if n < 1 {
		n = 1
	}
	if market == feed.MarketMoneyline && n < 2 {
		n = 2
	}
	return n
}

func (e *Evaluator) playerLogs(player string) []feed.GameLog {
	if e.stats == nil {
		return nil
	}
	key := feed.NormalizeName(player)
	e.mu.Lock()
	if logs, ok := e.logCache[key]; ok {
		e.mu.Unlock()
		return logs
	}
	e.mu.Unlock()

	var logs []feed.GameLog
	id, err := e.stats.FindPlayerID(player)
	if err == nil {
		logs, err = e.stats.RecentGameLogs(id, logWindow)
	}
	if err != nil {
		e.log.Debug().Str("player", player).Err(err).Msg("game logs unavailable")
		logs = nil
	}

	e.mu.Lock()
	e.logCache[key] = logs
	e.mu.Unlock()
	return logs
}

func sampleEnvelope(probs []float64) (min, max, median float64) {
	min, max = probs[0], probs[0]
	for _, p := range probs[1:] {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	return min, max, mathutil.Median(probs)
}

func (e *Evaluator) evaluate(b *quotes.Board, key quotes.Key, side string) (Candidate, bool) {
	refPrice, ok := b.Price(key, config.ReferenceBook, side)
	if !ok {
		return Candidate{}, false
	}
	if e.preset.HasOddsBounds() && (refPrice < e.preset.RefOddsMin || refPrice > e.preset.RefOddsMax) {
		return Candidate{}, false
	}

	otherSide, otherKey, ok := e.oppositeSide(b, key, side)
	if !ok {
		return Candidate{}, false
	}
	sample := e.sampleCompetitors(b, key, side, otherSide, otherKey)
	if len(sample.probs) < e.minBooksFor(key.Market) {
		return Candidate{}, false
	}

	shop := quotes.ShopLine(refPrice, sample.compPrices)
	if e.preset.RequireGap {
		// The average-gap floor is a soft-market filter; only presets that
		// opt in (the morning window) enforce it on top of the best gap.
		minAvg := 0
		if e.preset.RequireAvgGap {
			minAvg = e.preset.MinAvgGapCents
		}
		if !shop.Passes(e.preset.MinGapCents, minAvg) {
			return Candidate{}, false
		}
	}

	consensus, ok := odds.Consensus(sample.probs, sample.weights, e.preset.Trim, odds.DefaultConsensusParams())
	if !ok {
		return Candidate{}, false
	}
	dispersion := odds.Dispersion(sample.probs)
	sMin, sMax, sMed := sampleEnvelope(sample.probs)

	c := Candidate{
		EventID:      b.EventID,
		Matchup:      b.Matchup,
		TipOff:       b.TipOff,
		Subject:      key.Subject,
		Market:       key.Market,
		Label:        feed.MarketLabel(key.Market),
		Line:         key.Line,
		Side:         side,
		Book:         config.ReferenceBook,
		Price:        refPrice,
		MarketProb:   consensus,
		Alpha:        1.0,
		Dispersion:   dispersion,
		Books:        len(sample.probs),
		BestGapCents: shop.BestGapCents,
		AvgGapCents:  shop.AvgGapCents,
	}

	trueProb := consensus
	var injPts, minPts, steamPts float64

	if feed.IsPropMarket(key.Market) {
		c.Player = key.Subject
		statKey, _ := feed.StatKey(key.Market)
		res := model.BlendTrueProb(model.BlendInput{
			MarketProb:   consensus,
			MarketMin:    sMin,
			MarketMax:    sMax,
			MarketMedian: sMed,
			Dispersion:   dispersion,
			Line:         key.Line,
			Side:         side,
			StatKey:      statKey,
			Logs:         e.playerLogs(key.Subject),
		})
		trueProb = res.TrueProb
		c.Alpha = res.Alpha
		if res.HighVariance {
			c.Reasons = append(c.Reasons, "HighVar")
		}

		if e.injury != nil {
			adj := e.injury.PlayerAdjustment(key.Subject, b.HomeTeam, b.AwayTeam)
			injPts = adj.Points
			if adj.Tag != "" {
				c.Reasons = append(c.Reasons, adj.Tag)
			}
		}
		if e.minutes != nil {
			adj, _ := e.minutes.PlayerAdjustment(key.Subject)
			minPts = adj.Points
			if adj.Tag != "" {
				c.Reasons = append(c.Reasons, adj.Tag)
			}
		}
	} else if key.Market == feed.MarketMoneyline || key.Market == feed.MarketSpreads {
		team := side
		opponent := b.AwayTeam
		scale := e.preset.MLBumpScale
		if key.Market == feed.MarketSpreads {
			team = key.Subject
			scale = e.preset.SpreadBumpScale
		}
		if team == b.AwayTeam {
			opponent = b.HomeTeam
		}
		if e.pressure != nil {
			bump, adj := e.pressure.Bump(team, opponent, scale)
			if bump != 0 {
				trueProb = mathutil.Clamp(trueProb+bump, 0.01, 0.99)
				c.Reasons = append(c.Reasons, adj.Tag)
			}
		}
	}

	if e.steam != nil && e.preset.SteamWindowSec > 0 {
		window := time.Duration(e.preset.SteamWindowSec) * time.Second
		adj := e.steam.Adjustment(b.EventID, key.Subject, key.Market, key.Line, side, window)
		steamPts = adj.Points
		if adj.Tag != "" {
			c.Reasons = append(c.Reasons, adj.Tag)
		}
	}

	c.TrueProb = trueProb
	c.FairPrice = odds.ImpliedToAmerican(trueProb)
	c.EVPct = EVPercent(trueProb, refPrice)

	if e.preset.Mode == "plus_odds" {
		c.Confidence = PlusOddsScore(trueProb, shop.BestGapCents, len(sample.probs), refPrice, injPts, minPts)
		c.Badge = BadgeFor(c.Confidence, plusOddsBadges)
	} else {
		c.Confidence = ConfidenceScore(trueProb, injPts+minPts+steamPts)
		c.Badge = BadgeFor(c.Confidence, e.cfg.Badges)
	}

	if trueProb*100 < e.preset.MinTrueProbPct {
		return Candidate{}, false
	}
	if e.preset.RequireEV && c.EVPct < e.cfg.MinEVPct {
		return Candidate{}, false
	}
	if float64(c.Confidence) < e.preset.MinTrueProbPct {
		return Candidate{}, false
	}
	if shop.BestGapCents > 0 {
		c.Reasons = append(c.Reasons, fmt.Sprintf("Gap+%dc", shop.BestGapCents))
	}
	return c, true
}
