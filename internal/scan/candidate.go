package scan

import (
	"math"
	"time"

	"nba-ev-scanner/internal/config"
	"nba-ev-scanner/internal/mathutil"
	"nba-ev-scanner/internal/odds"
)

// Badge tiers.
const (
	BadgeHigh = "HIGH"
	BadgeMed  = "MED"
	BadgeLow  = "LOW"
	BadgePass = "PASS"
)

// Candidate is one scored betting opportunity at the reference book.
type Candidate struct {
	EventID string
	Matchup string
	TipOff  time.Time

	Subject string // player name, team name, or the totals sentinel
	Player  string // set only for player prop markets
	Market  string
	Label   string
	Line    float64
	Side    string

	Book      string
	Price     int
	FairPrice int

	MarketProb float64
	TrueProb   float64
	Alpha      float64
	Dispersion float64
	Books      int

	BestGapCents int
	AvgGapCents  float64

	EVPct      float64
	Confidence int
	Badge      string

	KellyPct           float64
	StakePct           float64
	CorrelationPenalty float64
	CorrelationFlag    string

	Reasons []string
}

// EVPercent returns expected value per unit staked, in percent, for a bet
// with probability trueProb paid at the American price.
func EVPercent(trueProb float64, price int) float64 {
	dec := odds.AmericanToDecimal(price)
	return (trueProb*dec - 1) * 100
}

// KellyFraction returns the fractional-Kelly stake (as a fraction of
// bankroll) before correlation haircuts, never negative.
func KellyFraction(trueProb float64, price int, mult float64) float64 {
	b := odds.AmericanToDecimal(price) - 1
	if b <= 0 {
		return 0
	}
	q := 1 - trueProb
	k := (b*trueProb - q) / b
	if k <= 0 {
		return 0
	}
	return k * mult
}

// correlationHaircut shrinks a stake for correlation penalty points. Even a
// heavily correlated pick keeps half its stake; the penalty already cost it
// confidence.
func correlationHaircut(penaltyPoints float64) float64 {
	return mathutil.Clamp(1-penaltyPoints/100, 0.5, 1.0)
}

// StakePercent converts a pick's Kelly fraction into a bankroll percentage,
// after the correlation haircut and the per-bet cap.
func StakePercent(kelly, penaltyPoints, capPct float64) float64 {
	stake := kelly * correlationHaircut(penaltyPoints) * 100
	return math.Min(capPct, stake)
}

// ConfidenceScore folds adjustment points into the blended probability and
// scales to 0..100.
func ConfidenceScore(trueProb, adjustmentPoints float64) int {
	p := mathutil.Clamp(trueProb+adjustmentPoints*0.01, 0, 1)
	return int(math.Round(p * 100))
}

// BadgeFor maps a confidence score to its display tier.
func BadgeFor(confidence int, t config.BadgeThresholds) string {
	switch {
	case confidence >= t.High:
		return BadgeHigh
	case confidence >= t.Med:
		return BadgeMed
	case confidence >= t.Low:
		return BadgeLow
	default:
		return BadgePass
	}
}

// plusOddsBadges are the looser tiers used when hunting underdog prices,
// where raw probabilities run lower by construction.
var plusOddsBadges = config.BadgeThresholds{High: 55, Med: 48, Low: 42}

// PlusOddsScore rates an underdog pick. The base probability is topped up by
// price-shopping edge and book depth, and drained for long-shot prices.
func PlusOddsScore(trueProb float64, bestGapCents int, books int, price int, injuryPts, minutesPts float64) int {
	score := trueProb * 100
	score += math.Min(15, float64(bestGapCents)/2)
	score += math.Min(10, float64(books-3)*2)
	if price > 250 {
		score -= float64(price-250) / 20
	}
	score += injuryPts * 0.5
	score += minutesPts * 0.7
	return int(math.Round(mathutil.Clamp(score, 0, 100)))
}
