package parlay

import (
	"math"
	"sort"

	"nba-ev-scanner/internal/odds"
	"nba-ev-scanner/internal/scan"
)

// Parlay is a combined slip of single picks with joint pricing.
type Parlay struct {
	Legs     []scan.Candidate
	HitProb  float64
	Decimal  float64
	American int
	EVPct    float64
	Discount float64
	Score    float64
}

// sameGamePenalty is the correlation charge for each pair of legs that share
// an event. Legs from one game do not settle independently.
const sameGamePenalty = 15.0

type dedupeKey struct {
	matchup string
	player  string
	market  string
	side    string
	line    float64
}

// Dedupe removes repeated propositions, keeping the first (highest ranked)
// occurrence. Alternate-book duplicates of one proposition are not two legs.
func Dedupe(picks []scan.Candidate) []scan.Candidate {
	seen := map[dedupeKey]bool{}
	out := make([]scan.Candidate, 0, len(picks))
	for _, p := range picks {
		k := dedupeKey{p.Matchup, p.Player, p.Market, p.Side, p.Line}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return out
}

// correlationDiscount converts shared-game penalty points into a joint
// probability multiplier, floored so a parlay is never priced as impossible.
func correlationDiscount(penaltyPoints float64) float64 {
	return math.Max(0.30, math.Exp(-penaltyPoints/20))
}

func combine(legs []scan.Candidate, discount float64) Parlay {
	p := Parlay{Legs: legs, HitProb: 1, Decimal: 1, Discount: discount}
	for _, l := range legs {
		p.HitProb *= l.TrueProb
		p.Decimal *= odds.AmericanToDecimal(l.Price)
	}
	p.HitProb *= discount
	p.American = decimalToAmerican(p.Decimal)
	p.EVPct = (p.HitProb*p.Decimal - 1) * 100
	return p
}

func gamePenalty(legs []scan.Candidate) float64 {
	pts := 0.0
	for i := range legs {
		for j := i + 1; j < len(legs); j++ {
			if legs[i].EventID == legs[j].EventID {
				pts += sameGamePenalty
			}
		}
	}
	return pts
}

// BuildPairs assembles two-leg parlays from ranked picks. A player never
// appears twice in one slip. Pairs rank by joint hit probability first,
// expected value second.
func BuildPairs(picks []scan.Candidate, limit int) []Parlay {
	picks = Dedupe(picks)
	var out []Parlay
	for i := range picks {
		for j := i + 1; j < len(picks); j++ {
			if picks[i].Player != "" && picks[i].Player == picks[j].Player {
				continue
			}
			legs := []scan.Candidate{picks[i], picks[j]}
			out = append(out, combine(legs, correlationDiscount(gamePenalty(legs))))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].HitProb != out[j].HitProb {
			return out[i].HitProb > out[j].HitProb
		}
		return out[i].EVPct > out[j].EVPct
	})
	return truncate(out, limit)
}

// BuildTriples assembles three-leg parlays across three distinct players,
// ranked by expected value first, hit probability second.
func BuildTriples(picks []scan.Candidate, limit int) []Parlay {
	picks = Dedupe(picks)
	var out []Parlay
	for i := range picks {
		for j := i + 1; j < len(picks); j++ {
			for k := j + 1; k < len(picks); k++ {
				legs := []scan.Candidate{picks[i], picks[j], picks[k]}
				if !distinctPlayers(legs) {
					continue
				}
				out = append(out, combine(legs, correlationDiscount(gamePenalty(legs))))
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EVPct != out[j].EVPct {
			return out[i].EVPct > out[j].EVPct
		}
		return out[i].HitProb > out[j].HitProb
	})
	return truncate(out, limit)
}

// DailySlips builds slips of the requested leg count from a shortlist of the
// top picks, using a flat per-leg correlation discount and ranking by the
// product of leg confidences. This is the quick daily-card path; the pair
// and triple builders do the finer correlation accounting.
func DailySlips(picks []scan.Candidate, legCount, limit int) []Parlay {
	if legCount < 2 || legCount > 4 {
		return nil
	}
	picks = Dedupe(picks)
	pool := map[int]int{2: 8, 3: 10, 4: 12}[legCount]
	if len(picks) > pool {
		picks = picks[:pool]
	}

	discount := math.Pow(0.85, float64(legCount-1))
	var out []Parlay
	var build func(start int, legs []scan.Candidate)
	build = func(start int, legs []scan.Candidate) {
		if len(legs) == legCount {
			if !distinctPlayers(legs) {
				return
			}
			p := combine(append([]scan.Candidate(nil), legs...), discount)
			score := 1.0
			for _, l := range legs {
				score *= float64(l.Confidence) / 100
			}
			p.Score = score
			out = append(out, p)
			return
		}
		for i := start; i < len(picks); i++ {
			build(i+1, append(legs, picks[i]))
		}
	}
	build(0, nil)

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].EVPct > out[j].EVPct
	})
	return truncate(out, limit)
}

func distinctPlayers(legs []scan.Candidate) bool {
	seen := map[string]bool{}
	for _, l := range legs {
		if l.Player == "" {
			continue
		}
		if seen[l.Player] {
			return false
		}
		seen[l.Player] = true
	}
	return true
}

func truncate(parlays []Parlay, limit int) []Parlay {
	if limit > 0 && len(parlays) > limit {
		return parlays[:limit]
	}
	return parlays
}

func decimalToAmerican(dec float64) int {
	if dec <= 1 {
		return 0
	}
	if dec >= 2 {
		return int(math.Round((dec - 1) * 100))
	}
	return int(math.Round(-100 / (dec - 1)))
}
