package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"nba-ev-scanner/internal/config"
)

func TestEVPercent(t *testing.T) {
	// A 60% shot at -150 is priced exactly fair.
	assert.InDelta(t, 0.0, EVPercent(0.60, -150), 1e-9)

	// A 55% shot at even money returns 10%.
	assert.InDelta(t, 10.0, EVPercent(0.55, 100), 1e-9)

	// A 40% shot at -110 is badly negative.
	assert.Less(t, EVPercent(0.40, -110), 0.0)
}

func TestKellyFraction(t *testing.T) {
	// Even money, 55%: full Kelly is 10%, half Kelly 5%.
	assert.InDelta(t, 0.05, KellyFraction(0.55, 100, 0.5), 1e-9)

	// No edge, no bet.
	assert.Zero(t, KellyFraction(0.50, 100, 0.5))
	assert.Zero(t, KellyFraction(0.40, -110, 0.5))
}

func TestStakePercentCapAndHaircut(t *testing.T) {
	// A huge Kelly fraction is capped at the per-bet limit.
	assert.Equal(t, 2.5, StakePercent(0.20, 0, 2.5))

	// Correlation points shave the stake.
	clean := StakePercent(0.01, 0, 2.5)
	correlated := StakePercent(0.01, 20, 2.5)
	assert.InDelta(t, clean*0.8, correlated, 1e-9)

	// The haircut never takes more than half.
	floored := StakePercent(0.01, 90, 2.5)
	assert.InDelta(t, clean*0.5, floored, 1e-9)
}

func TestConfidenceScore(t *testing.T) {
	assert.Equal(t, 60, ConfidenceScore(0.60, 0))
	assert.Equal(t, 63, ConfidenceScore(0.60, 3))
	assert.Equal(t, 10, ConfidenceScore(0.60, -50))
	assert.Equal(t, 100, ConfidenceScore(0.99, 50), "confidence is clamped at 100")
	assert.Equal(t, 0, ConfidenceScore(0.10, -80), "confidence bottoms out at 0")
}

func TestBadgeFor(t *testing.T) {
	th := config.BadgeThresholds{High: 70, Med: 60, Low: 55}
	assert.Equal(t, BadgeHigh, BadgeFor(75, th))
	assert.Equal(t, BadgeHigh, BadgeFor(70, th))
	assert.Equal(t, BadgeMed, BadgeFor(65, th))
	assert.Equal(t, BadgeLow, BadgeFor(55, th))
	assert.Equal(t, BadgePass, BadgeFor(54, th))
}

func TestPlusOddsScore(t *testing.T) {
	base := PlusOddsScore(0.45, 0, 3, 150, 0, 0)
	assert.Equal(t, 45, base)

	// Shopping edge and book depth raise the score.
	shopped := PlusOddsScore(0.45, 20, 7, 150, 0, 0)
	assert.Greater(t, shopped, base)

	// Long-shot prices drain it.
	longshot := PlusOddsScore(0.45, 0, 3, 400, 0, 0)
	assert.Less(t, longshot, base)

	// The gap top-up saturates at 15 points.
	saturated := PlusOddsScore(0.45, 200, 3, 150, 0, 0)
	assert.Equal(t, 60, saturated)
}
