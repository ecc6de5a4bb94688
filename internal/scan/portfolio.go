package scan

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"nba-ev-scanner/internal/config"
)

// SortPicks orders candidates by the preset's sort mode: "EV" ranks by
// expected value, anything else by confidence. Ties fall through to the
// other metric, then to stable proposition identity.
func SortPicks(picks []Candidate, mode string) {
	sort.Slice(picks, func(i, j int) bool {
		a, b := picks[i], picks[j]
		if mode == "EV" {
			if a.EVPct != b.EVPct {
				return a.EVPct > b.EVPct
			}
			if a.Confidence != b.Confidence {
				return a.Confidence > b.Confidence
			}
		} else {
			if a.Confidence != b.Confidence {
				return a.Confidence > b.Confidence
			}
			if a.EVPct != b.EVPct {
				return a.EVPct > b.EVPct
			}
		}
		if a.Matchup != b.Matchup {
			return a.Matchup < b.Matchup
		}
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		if a.Market != b.Market {
			return a.Market < b.Market
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Side < b.Side
	})
}

// ApplyCorrelation assigns correlation penalty points and flags in place.
// Picks must already be in final rank order; within a stack, rank decides
// which picks carry the heavier penalty.
//
// Stacking one player costs 5 points per prior pick of them (capped at 20),
// halved when the stack spans different markets, which settle on different
// stats. Every pick of a stacked player is flagged P<n>. Loading three or
// more picks into one game charges each of them the same concentration
// penalty, eased by how diverse the game's picks are; the game flag G<n>
// never overwrites a player flag.
func ApplyCorrelation(picks []Candidate) {
	byPlayer := map[string][]int{}
	byGame := map[string][]int{}
	for i := range picks {
		picks[i].CorrelationPenalty = 0
		picks[i].CorrelationFlag = "OK"
		if picks[i].Player != "" {
			byPlayer[picks[i].Player] = append(byPlayer[picks[i].Player], i)
		}
		byGame[picks[i].EventID] = append(byGame[picks[i].EventID], i)
	}

	for _, idxs := range byPlayer {
		if len(idxs) < 2 {
			continue
		}
		markets := map[string]bool{}
		for _, i := range idxs {
			markets[picks[i].Market] = true
		}
		mult := 1.0
		if len(markets) > 1 {
			mult = 0.5
		}
		for rank, i := range idxs {
			picks[i].CorrelationPenalty += math.Min(20, float64(rank)*5) * mult
			picks[i].CorrelationFlag = fmt.Sprintf("P%d", len(idxs))
		}
	}

	for _, idxs := range byGame {
		if len(idxs) <= 2 {
			continue
		}
		players := map[string]bool{}
		markets := map[string]bool{}
		for _, i := range idxs {
			if picks[i].Player != "" {
				players[picks[i].Player] = true
			}
			markets[picks[i].Market] = true
		}
		n := float64(len(idxs))
		diversity := math.Min(1, float64(len(players)+len(markets))/(2*n))
		penalty := math.Max(0, (n-2)*3*(1-diversity*0.5))
		for _, i := range idxs {
			picks[i].CorrelationPenalty += penalty
			if !strings.HasPrefix(picks[i].CorrelationFlag, "P") {
				picks[i].CorrelationFlag = fmt.Sprintf("G%d", len(idxs))
			}
		}
	}
}

// ApplyCaps enforces per-game and per-player exposure limits over ranked
// picks, keeping the first picks to claim each slot.
func ApplyCaps(picks []Candidate, maxPerGame, maxPerPlayer int) []Candidate {
	perGame := map[string]int{}
	perPlayer := map[string]int{}

	kept := picks[:0]
	for _, p := range picks {
		if maxPerGame > 0 && perGame[p.EventID] >= maxPerGame {
			continue
		}
		if p.Player != "" && maxPerPlayer > 0 && perPlayer[p.Player] >= maxPerPlayer {
			continue
		}
		perGame[p.EventID]++
		if p.Player != "" {
			perPlayer[p.Player]++
		}
		kept = append(kept, p)
	}
	return kept
}

// SizePicks assigns final stakes from fractional Kelly, correlation haircuts,
// and the per-bet cap.
func SizePicks(picks []Candidate, cfg config.Config) {
	for i := range picks {
		p := &picks[i]
		p.KellyPct = KellyFraction(p.TrueProb, p.Price, cfg.KellyMult) * 100
		p.StakePct = StakePercent(p.KellyPct/100, p.CorrelationPenalty, cfg.KellyCapPct)
	}
}
