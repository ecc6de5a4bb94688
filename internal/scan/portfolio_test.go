package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nba-ev-scanner/internal/config"
	"nba-ev-scanner/internal/feed"
)

func pick(event, player, market string, conf int, ev float64) Candidate {
	return Candidate{
		EventID:    event,
		Matchup:    event,
		Subject:    player,
		Player:     player,
		Market:     market,
		Confidence: conf,
		EVPct:      ev,
		TrueProb:   0.55,
		Price:      -110,
	}
}

func TestSortPicks(t *testing.T) {
	picks := []Candidate{
		pick("g1", "A", feed.MarketPlayerPoints, 60, 5),
		pick("g2", "B", feed.MarketPlayerPoints, 70, 3),
		pick("g3", "C", feed.MarketPlayerPoints, 65, 8),
	}

	SortPicks(picks, "EV")
	assert.Equal(t, []string{"C", "A", "B"}, []string{picks[0].Player, picks[1].Player, picks[2].Player})

	SortPicks(picks, "CONF")
	assert.Equal(t, []string{"B", "C", "A"}, []string{picks[0].Player, picks[1].Player, picks[2].Player})
}

func TestSortPicksDeterministicTies(t *testing.T) {
	a := pick("g1", "A", feed.MarketPlayerPoints, 60, 5)
	b := pick("g1", "B", feed.MarketPlayerPoints, 60, 5)
	picks := []Candidate{b, a}
	SortPicks(picks, "CONF")
	assert.Equal(t, "A", picks[0].Player, "ties break on proposition identity")
}

func TestApplyCorrelationSamePlayerProgressive(t *testing.T) {
	picks := []Candidate{
		pick("g1", "A", feed.MarketPlayerPoints, 70, 5),
		pick("g2", "A", feed.MarketPlayerPoints, 65, 4),
		pick("g3", "A", feed.MarketPlayerPoints, 60, 3),
	}
	ApplyCorrelation(picks)

	// The top pick pays no points but still carries the stack flag; the
	// flag counts the whole stack, not the pick's position in it.
	assert.Zero(t, picks[0].CorrelationPenalty)
	assert.Equal(t, "P3", picks[0].CorrelationFlag)
	assert.Equal(t, 5.0, picks[1].CorrelationPenalty)
	assert.Equal(t, "P3", picks[1].CorrelationFlag)
	assert.Equal(t, 10.0, picks[2].CorrelationPenalty)
	assert.Equal(t, "P3", picks[2].CorrelationFlag)
}

func TestApplyCorrelationDifferentMarketsHalved(t *testing.T) {
	sameMarket := []Candidate{
		pick("g1", "A", feed.MarketPlayerPoints, 70, 5),
		pick("g2", "A", feed.MarketPlayerPoints, 65, 4),
	}
	crossMarket := []Candidate{
		pick("g1", "A", feed.MarketPlayerPoints, 70, 5),
		pick("g2", "A", feed.MarketPlayerRebounds, 65, 4),
	}
	ApplyCorrelation(sameMarket)
	ApplyCorrelation(crossMarket)

	assert.Less(t, crossMarket[1].CorrelationPenalty, sameMarket[1].CorrelationPenalty,
		"stacking one player across different stats is less correlated than doubling one stat")
	assert.Equal(t, sameMarket[1].CorrelationPenalty*0.5, crossMarket[1].CorrelationPenalty)
}

func TestApplyCorrelationSameGamePenalty(t *testing.T) {
	picks := []Candidate{
		pick("g1", "A", feed.MarketPlayerPoints, 70, 5),
		pick("g1", "B", feed.MarketPlayerRebounds, 65, 4),
		pick("g1", "C", feed.MarketPlayerAssists, 60, 3),
	}
	ApplyCorrelation(picks)

	// Three picks in one game: every one of them shares the concentration
	// charge. Fully diverse (three players, three markets), so each pays
	// (3-2)*3*(1-0.5) = 1.5 and carries the game flag.
	for i := range picks {
		assert.Equal(t, 1.5, picks[i].CorrelationPenalty)
		assert.Equal(t, "G3", picks[i].CorrelationFlag)
	}
}

func TestApplyCorrelationDiversityEasesGamePenalty(t *testing.T) {
	diverse := []Candidate{
		pick("g1", "A", feed.MarketPlayerPoints, 70, 5),
		pick("g1", "B", feed.MarketPlayerRebounds, 65, 4),
		pick("g1", "C", feed.MarketPlayerAssists, 60, 3),
	}
	concentrated := []Candidate{
		pick("g1", "A", feed.MarketPlayerPoints, 70, 5),
		pick("g1", "A", feed.MarketPlayerPoints, 65, 4),
		pick("g1", "A", feed.MarketPlayerPoints, 60, 3),
	}
	ApplyCorrelation(diverse)
	ApplyCorrelation(concentrated)

	// The concentrated stack's game penalty alone (beyond its player penalty)
	// must be at least the diverse group's.
	concGame := concentrated[2].CorrelationPenalty - 10 // strip the P3 player penalty
	assert.GreaterOrEqual(t, concGame, diverse[2].CorrelationPenalty)
}

func TestApplyCaps(t *testing.T) {
	picks := []Candidate{
		pick("g1", "A", feed.MarketPlayerPoints, 70, 5),
		pick("g1", "B", feed.MarketPlayerPoints, 65, 4),
		pick("g1", "C", feed.MarketPlayerPoints, 60, 3),
		pick("g2", "A", feed.MarketPlayerRebounds, 58, 2),
		pick("g2", "D", feed.MarketPlayerPoints, 56, 1),
	}

	kept := ApplyCaps(picks, 2, 1)
	require.Len(t, kept, 3)
	assert.Equal(t, "A", kept[0].Player)
	assert.Equal(t, "B", kept[1].Player)
	// C bounced by the per-game cap, the second A by the per-player cap.
	assert.Equal(t, "D", kept[2].Player)
}

func TestSizePicks(t *testing.T) {
	cfg := config.Config{KellyMult: 0.5, KellyCapPct: 2.5}
	picks := []Candidate{
		{TrueProb: 0.55, Price: 100},
		{TrueProb: 0.50, Price: 100},
	}
	SizePicks(picks, cfg)

	assert.InDelta(t, 5.0, picks[0].KellyPct, 1e-9)
	assert.Equal(t, 2.5, picks[0].StakePct, "stake is capped per bet")
	assert.Zero(t, picks[1].StakePct, "no edge, no stake")
}
