package quotes

import (
	"math"
	"sort"
	"time"

	"nba-ev-scanner/internal/feed"
	"nba-ev-scanner/internal/odds"
	"nba-ev-scanner/internal/store"
)

// Sentinel subjects for game-level markets. Player markets use the player
// name as subject.
const (
	SubjectTotal     = "TOTAL"
	SubjectMoneyline = "ML"
)

// Side labels. Two-way stat markets use Over/Under; moneylines use the team
// name as the side; spreads carry one side per keyed team line.
const (
	SideOver  = "Over"
	SideUnder = "Under"
	SideCover = "Cover"
)

// Key identifies one quotable proposition within an event.
type Key struct {
	Subject string
	Market  string
	Line    float64
}

// SidePrices maps a side label to its American price.
type SidePrices map[string]int

// BookQuotes maps a bookmaker key to its priced sides.
type BookQuotes map[string]SidePrices

// Board is the normalized quote surface for one event: every priced side of
// every market key, grouped by proposition then book.
type Board struct {
	EventID  string
	Matchup  string
	HomeTeam string
	AwayTeam string
	TipOff   time.Time
	Entries  map[Key]BookQuotes
}

// BuildBoard flattens a raw odds payload into keyed quotes. Outcomes missing
// a price, or missing a point on a line market, are dropped.
func BuildBoard(ev feed.Event, payload *feed.EventOdds) *Board {
	b := &Board{
		EventID:  ev.ID,
		Matchup:  ev.Matchup(),
		HomeTeam: ev.HomeTeam,
		AwayTeam: ev.AwayTeam,
		TipOff:   ev.TipOff,
		Entries:  make(map[Key]BookQuotes),
	}
	if payload == nil {
		return b
	}

	for _, bk := range payload.Bookmakers {
		for _, m := range bk.Markets {
			for _, o := range m.Outcomes {
				if o.Price == nil {
					continue
				}
				key, side, ok := classify(m.Key, o)
				if !ok {
					continue
				}
				b.add(key, bk.Key, side, *o.Price)
			}
		}
	}
	return b
}

func classify(market string, o feed.Outcome) (Key, string, bool) {
	switch {
	case feed.IsPropMarket(market):
		if o.Point == nil || o.Description == "" {
			return Key{}, "", false
		}
		return Key{Subject: o.Description, Market: market, Line: *o.Point}, o.Name, true
	case market == feed.MarketMoneyline:
		return Key{Subject: SubjectMoneyline, Market: market}, o.Name, true
	case market == feed.MarketSpreads:
		if o.Point == nil {
			return Key{}, "", false
		}
		return Key{Subject: o.Name, Market: market, Line: *o.Point}, SideCover, true
	case market == feed.MarketTotals:
		if o.Point == nil {
			return Key{}, "", false
		}
		return Key{Subject: SubjectTotal, Market: market, Line: *o.Point}, o.Name, true
	}
	return Key{}, "", false
}

func (b *Board) add(key Key, book, side string, price int) {
	books, ok := b.Entries[key]
	if !ok {
		books = make(BookQuotes)
		b.Entries[key] = books
	}
	sides, ok := books[book]
	if !ok {
		sides = make(SidePrices)
		books[book] = sides
	}
	sides[side] = price
}

// Keys returns every proposition on the board in a deterministic order.
func (b *Board) Keys() []Key {
	keys := make([]Key, 0, len(b.Entries))
	for k := range b.Entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Subject != keys[j].Subject {
			return keys[i].Subject < keys[j].Subject
		}
		if keys[i].Market != keys[j].Market {
			return keys[i].Market < keys[j].Market
		}
		return keys[i].Line < keys[j].Line
	})
	return keys
}

// Price returns the price one book posted for one side of key.
func (b *Board) Price(key Key, book, side string) (int, bool) {
	sides, ok := b.Entries[key][book]
	if !ok {
		return 0, false
	}
	p, ok := sides[side]
	return p, ok
}

// LineVariants returns the distinct lines quoted for (subject, market),
// ascending. Books frequently hang alternate lines on the same proposition.
func (b *Board) LineVariants(subject, market string) []float64 {
	seen := map[float64]bool{}
	for k := range b.Entries {
		if k.Subject == subject && k.Market == market {
			seen[k.Line] = true
		}
	}
	lines := make([]float64, 0, len(seen))
	for l := range seen {
		lines = append(lines, l)
	}
	sort.Float64s(lines)
	return lines
}

// NearestKey finds the key for (subject, market) whose line is closest to
// want, within tol. Exact matches win; ties break toward the lower line.
func (b *Board) NearestKey(subject, market string, want, tol float64) (Key, bool) {
	var best Key
	bestDiff := math.Inf(1)
	for _, line := range b.LineVariants(subject, market) {
		diff := math.Abs(line - want)
		if diff < bestDiff {
			bestDiff = diff
			best = Key{Subject: subject, Market: market, Line: line}
		}
	}
	if bestDiff > tol {
		return Key{}, false
	}
	return best, true
}

// OpponentSpread finds the opposing team's spread key at the mirrored line,
// falling back to the nearest mirrored line within half a point.
func (b *Board) OpponentSpread(key Key, opponent string) (Key, bool) {
	mirror := Key{Subject: opponent, Market: feed.MarketSpreads, Line: -key.Line}
	if _, ok := b.Entries[mirror]; ok {
		return mirror, true
	}
	return b.NearestKey(opponent, feed.MarketSpreads, -key.Line, 0.5)
}

// Ticks flattens every accepted quote on the board into persistable ticks.
func (b *Board) Ticks(runID string, at time.Time) []store.Tick {
	var ticks []store.Tick
	for _, key := range b.Keys() {
		books := b.Entries[key]
		bookKeys := make([]string, 0, len(books))
		for bk := range books {
			bookKeys = append(bookKeys, bk)
		}
		sort.Strings(bookKeys)
		for _, bk := range bookKeys {
			sides := books[bk]
			sideKeys := make([]string, 0, len(sides))
			for s := range sides {
				sideKeys = append(sideKeys, s)
			}
			sort.Strings(sideKeys)
			for _, side := range sideKeys {
				price := sides[side]
				ticks = append(ticks, store.Tick{
					RunID:   runID,
					EventID: b.EventID,
					Matchup: b.Matchup,
					Subject: key.Subject,
					Market:  key.Market,
					Line:    key.Line,
					Side:    side,
					Book:    bk,
					Price:   price,
					Implied: odds.AmericanToImplied(price),
					At:      at,
				})
			}
		}
	}
	return ticks
}
