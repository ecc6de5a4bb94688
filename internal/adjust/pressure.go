package adjust

import (
	"math"
	"sync"
	"time"

	"nba-ev-scanner/internal/mathutil"
)

const pressureCacheTTL = 2 * time.Minute

// PressureAdjuster converts roster injury load into a probability bump for
// game-level sides. A team missing heavy-minute players is weaker than its
// price; the opposing side's probability is nudged up.
type PressureAdjuster struct {
	injuries InjuryReporter
	minutes  *MinutesAdjuster
	now      func() time.Time

	mu        sync.Mutex
	scores    map[string]int // tricode -> pressure score
	scope     map[string]bool
	fetchedAt time.Time
}

// NewPressureAdjuster creates a pressure scorer over the injury report,
// weighting each designation by the player's usual minutes.
func NewPressureAdjuster(injuries InjuryReporter, minutes *MinutesAdjuster) *PressureAdjuster {
	return &PressureAdjuster{
		injuries: injuries,
		minutes:  minutes,
		now:      time.Now,
		scores:   map[string]int{},
	}
}

// SetScope restricts scoring to the teams on today's slate, so the report's
// long tail of irrelevant designations is never profiled.
func (a *PressureAdjuster) SetScope(teams []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scope = map[string]bool{}
	for _, t := range teams {
		if code := TeamCode(t); code != "" {
			a.scope[code] = true
		}
	}
	a.fetchedAt = time.Time{} // force rescore under the new scope
}

func statusBucket(status string) int {
	switch NormalizeStatus(status) {
	case StatusOut:
		return 2
	case StatusDoubtful:
		return 1
	}
	return 0
}

func minutesMultiplier(median float64) float64 {
	switch {
	case median >= 32:
		return 2.0
	case median >= 28:
		return 1.6
	case median >= 24:
		return 1.3
	case median >= 18:
		return 1.0
	case median > 0:
		return 0.7
	default:
		return 0.8 // unknown minutes, assume a rotation player
	}
}

func (a *PressureAdjuster) teamScores() map[string]int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.now().Sub(a.fetchedAt) < pressureCacheTTL {
		return a.scores
	}

	rows, err := a.injuries.Report()
	if err != nil {
		return a.scores
	}

	scores := map[string]int{}
	for _, row := range rows {
		code := TeamCode(row.Team)
		if code == "" || (a.scope != nil && !a.scope[code]) {
			continue
		}
		bucket := statusBucket(row.Status)
		if bucket == 0 {
			continue
		}
		var median float64
		if a.minutes != nil {
			median = a.minutes.Profile(row.Player).Median
		}
		score := int(math.Round(float64(bucket) * minutesMultiplier(median)))
		if score < 1 {
			score = 1
		}
		scores[code] += score
	}
	a.scores = scores
	a.fetchedAt = a.now()
	return a.scores
}

// Bump returns the probability adjustment for betting on team against
// opponent, scaled by the preset's bump scale for the market. Positive when
// the opponent is more injury-burdened.
func (a *PressureAdjuster) Bump(team, opponent string, scale float64) (float64, Adjustment) {
	if scale == 0 {
		return 0, Adjustment{}
	}
	scores := a.teamScores()
	t := scores[TeamCode(team)]
	o := scores[TeamCode(opponent)]
	if t == 0 && o == 0 {
		return 0, Adjustment{}
	}

	diff := float64(o - t)
	denom := math.Max(1, math.Max(float64(t), float64(o)))
	bump := math.Tanh(diff/denom) * 0.04
	bump = mathutil.Clamp(bump, -0.05, 0.05) * scale
	if bump == 0 {
		return 0, Adjustment{}
	}
	tag := "InjEdge"
	if bump < 0 {
		tag = "InjBurden"
	}
	return bump, Adjustment{Tag: tag, OK: true}
}
