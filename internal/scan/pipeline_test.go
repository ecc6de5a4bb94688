package scan

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nba-ev-scanner/internal/config"
	"nba-ev-scanner/internal/feed"
	"nba-ev-scanner/internal/quotes"
	"nba-ev-scanner/internal/store"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func testConfig() config.Config {
	return config.Config{
		MinBooks:     3,
		MinEVPct:     2.0,
		KellyMult:    0.5,
		KellyCapPct:  2.5,
		MaxPerGame:   2,
		MaxPerPlayer: 1,
		TopN:         10,
		Workers:      2,
		Badges:       config.BadgeThresholds{High: 70, Med: 60, Low: 55},
	}
}

func openPreset() config.WindowPreset {
	return config.WindowPreset{
		Label: "test",
		Sort:  "EV",
		Trim:  0.15,
	}
}

func propOutcomes(player string, line float64, over, under int) []feed.Outcome {
	return []feed.Outcome{
		{Name: "Over", Description: player, Price: intp(over), Point: floatp(line)},
		{Name: "Under", Description: player, Price: intp(under), Point: floatp(line)},
	}
}

func propBoard(refOver, refUnder int) *quotes.Board {
	payload := &feed.EventOdds{Bookmakers: []feed.Bookmaker{
		{Key: "fanduel", Markets: []feed.BookMarket{
			{Key: feed.MarketPlayerPoints, Outcomes: propOutcomes("Jayson Tatum", 27.5, refOver, refUnder)},
		}},
		{Key: "draftkings", Markets: []feed.BookMarket{
			{Key: feed.MarketPlayerPoints, Outcomes: propOutcomes("Jayson Tatum", 27.5, -110, -110)},
		}},
		{Key: "betmgm", Markets: []feed.BookMarket{
			{Key: feed.MarketPlayerPoints, Outcomes: propOutcomes("Jayson Tatum", 27.5, -112, -108)},
		}},
		{Key: "caesars", Markets: []feed.BookMarket{
			{Key: feed.MarketPlayerPoints, Outcomes: propOutcomes("Jayson Tatum", 27.5, -108, -112)},
		}},
	}}
	ev := feed.Event{
		ID:       "ev1",
		HomeTeam: "Boston Celtics",
		AwayTeam: "Miami Heat",
		TipOff:   time.Date(2026, 3, 1, 19, 30, 0, 0, time.UTC),
	}
	return quotes.BuildBoard(ev, payload)
}

func newTestEvaluator(cfg config.Config, preset config.WindowPreset) *Evaluator {
	return NewEvaluator(cfg, preset, store.BookWeights{}, nil, nil, nil, nil, nil, zerolog.Nop())
}

func TestEvaluateBoardScoresBothSides(t *testing.T) {
	e := newTestEvaluator(testConfig(), openPreset())
	cands := e.EvaluateBoard(propBoard(105, -125))

	require.Len(t, cands, 2)
	sides := map[string]Candidate{}
	for _, c := range cands {
		sides[c.Side] = c
	}

	over := sides[quotes.SideOver]
	assert.Equal(t, "Jayson Tatum", over.Player)
	assert.Equal(t, 105, over.Price)
	assert.Equal(t, 3, over.Books)
	// Near-coin-flip consensus against a plus price: solidly positive EV.
	assert.InDelta(t, 0.5, over.TrueProb, 0.02)
	assert.Greater(t, over.EVPct, 0.0)

	under := sides[quotes.SideUnder]
	assert.Less(t, under.EVPct, 0.0, "the juiced side shops negative")
	assert.InDelta(t, 1.0, over.TrueProb+under.TrueProb, 0.05)
}

func TestEvaluateBoardMinBooksGate(t *testing.T) {
	cfg := testConfig()
	cfg.MinBooks = 5
	e := newTestEvaluator(cfg, openPreset())

	assert.Empty(t, e.EvaluateBoard(propBoard(105, -125)),
		"three contributing books cannot satisfy a five-book floor")
}

func TestEvaluateBoardOddsBounds(t *testing.T) {
	preset := openPreset()
	preset.RefOddsMin = 100
	preset.RefOddsMax = 400
	e := newTestEvaluator(testConfig(), preset)

	cands := e.EvaluateBoard(propBoard(105, -125))
	require.Len(t, cands, 1, "only the plus-priced side sits inside the band")
	assert.Equal(t, quotes.SideOver, cands[0].Side)
}

func TestEvaluateBoardEVGate(t *testing.T) {
	preset := openPreset()
	preset.RequireEV = true
	e := newTestEvaluator(testConfig(), preset)

	cands := e.EvaluateBoard(propBoard(105, -125))
	for _, c := range cands {
		assert.GreaterOrEqual(t, c.EVPct, testConfig().MinEVPct)
	}
}

func TestEvaluateBoardMinTrueProbGate(t *testing.T) {
	preset := openPreset()
	preset.MinTrueProbPct = 90
	e := newTestEvaluator(testConfig(), preset)

	assert.Empty(t, e.EvaluateBoard(propBoard(105, -125)),
		"a coin flip cannot clear a 90%% probability floor")
}

func TestEvaluateBoardGapGate(t *testing.T) {
	preset := openPreset()
	preset.RequireGap = true
	preset.MinGapCents = 5
	preset.MinAvgGapCents = 5
	e := newTestEvaluator(testConfig(), preset)

	// Ref at +105 beats -108/-110/-112 by a cross-sign mile on the Over;
	// the Under at -125 beats nobody.
	cands := e.EvaluateBoard(propBoard(105, -125))
	require.Len(t, cands, 1)
	assert.Equal(t, quotes.SideOver, cands[0].Side)
	assert.Greater(t, cands[0].BestGapCents, 0)
}

func TestEvaluateBoardAvgGapOnlyWhenPresetDemandsIt(t *testing.T) {
	preset := openPreset()
	preset.RequireGap = true
	preset.MinGapCents = 5
	preset.MinAvgGapCents = 500

	e := newTestEvaluator(testConfig(), preset)
	cands := e.EvaluateBoard(propBoard(105, -125))
	require.NotEmpty(t, cands,
		"an unreachable average-gap floor is ignored unless the preset opts in")

	preset.RequireAvgGap = true
	e = newTestEvaluator(testConfig(), preset)
	assert.Empty(t, e.EvaluateBoard(propBoard(105, -125)),
		"opting in enforces the average gap on top of the best gap")
}

func mlPayload(fdHome, fdAway, dkHome, dkAway, mgmHome, mgmAway int) *feed.EventOdds {
	ml := func(home, away int) []feed.BookMarket {
		return []feed.BookMarket{{
			Key: feed.MarketMoneyline,
			Outcomes: []feed.Outcome{
				{Name: "Boston Celtics", Price: intp(home)},
				{Name: "Miami Heat", Price: intp(away)},
			},
		}}
	}
	return &feed.EventOdds{Bookmakers: []feed.Bookmaker{
		{Key: "fanduel", Markets: ml(fdHome, fdAway)},
		{Key: "draftkings", Markets: ml(dkHome, dkAway)},
		{Key: "betmgm", Markets: ml(mgmHome, mgmAway)},
	}}
}

func TestEvaluateBoardMoneylineDeltaLowersFloor(t *testing.T) {
	ev := feed.Event{ID: "ev1", HomeTeam: "Boston Celtics", AwayTeam: "Miami Heat"}
	board := quotes.BuildBoard(ev, mlPayload(-180, 150, -175, 145, -178, 148))

	cfg := testConfig()
	cfg.MinBooks = 4
	preset := openPreset()
	preset.MinBooksDelta = -2
	e := newTestEvaluator(cfg, preset)

	// Delta applies before the moneyline floor: max(2, 4-2) = 2, satisfied
	// by the two competitor books.
	cands := e.EvaluateBoard(board)
	assert.Len(t, cands, 2)
}

func TestEvaluateBoardMoneylineNeedsTwoBooks(t *testing.T) {
	payload := &feed.EventOdds{Bookmakers: []feed.Bookmaker{
		{Key: "fanduel", Markets: []feed.BookMarket{{
			Key: feed.MarketMoneyline,
			Outcomes: []feed.Outcome{
				{Name: "Boston Celtics", Price: intp(-180)},
				{Name: "Miami Heat", Price: intp(150)},
			},
		}}},
		{Key: "draftkings", Markets: []feed.BookMarket{{
			Key: feed.MarketMoneyline,
			Outcomes: []feed.Outcome{
				{Name: "Boston Celtics", Price: intp(-175)},
				{Name: "Miami Heat", Price: intp(145)},
			},
		}}},
	}}
	ev := feed.Event{ID: "ev1", HomeTeam: "Boston Celtics", AwayTeam: "Miami Heat"}
	board := quotes.BuildBoard(ev, payload)

	cfg := testConfig()
	cfg.MinBooks = 1
	e := newTestEvaluator(cfg, openPreset())

	assert.Empty(t, e.EvaluateBoard(board),
		"moneylines keep a two-book floor even when the config floor is lower")
}
