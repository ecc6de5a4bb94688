package feed

import "time"

// Market keys as the odds feed names them.
const (
	MarketPlayerPoints   = "player_points"
	MarketPlayerRebounds = "player_rebounds"
	MarketPlayerAssists  = "player_assists"
	MarketPlayerThrees   = "player_threes"
	MarketMoneyline      = "h2h"
	MarketSpreads        = "spreads"
	MarketTotals         = "totals"
)

// PropMarkets lists the player statistical markets.
var PropMarkets = []string{
	MarketPlayerPoints, MarketPlayerRebounds, MarketPlayerAssists, MarketPlayerThrees,
}

// AllMarkets lists every market the scanner understands.
var AllMarkets = []string{
	MarketPlayerPoints, MarketPlayerRebounds, MarketPlayerAssists, MarketPlayerThrees,
	MarketMoneyline, MarketSpreads, MarketTotals,
}

// IsPropMarket reports whether key names a player statistical market.
func IsPropMarket(key string) bool {
	switch key {
	case MarketPlayerPoints, MarketPlayerRebounds, MarketPlayerAssists, MarketPlayerThrees:
		return true
	}
	return false
}

// StatKey maps a prop market to its game-log stat field.
func StatKey(market string) (string, bool) {
	switch market {
	case MarketPlayerPoints:
		return "pts", true
	case MarketPlayerRebounds:
		return "reb", true
	case MarketPlayerAssists:
		return "ast", true
	case MarketPlayerThrees:
		return "fg3m", true
	}
	return "", false
}

// MarketLabel maps a market key to its display name.
func MarketLabel(key string) string {
	switch key {
	case MarketPlayerPoints:
		return "Points"
	case MarketPlayerRebounds:
		return "Rebounds"
	case MarketPlayerAssists:
		return "Assists"
	case MarketPlayerThrees:
		return "3PM"
	case MarketMoneyline:
		return "Moneyline"
	case MarketSpreads:
		return "Spread"
	case MarketTotals:
		return "Total"
	}
	return key
}

// Event is one scheduled game as the odds feed reports it.
type Event struct {
	ID       string    `json:"id"`
	HomeTeam string    `json:"home_team"`
	AwayTeam string    `json:"away_team"`
	TipOff   time.Time `json:"commence_time"`
}

// Matchup renders the conventional away-at-home label.
func (e Event) Matchup() string {
	return e.AwayTeam + " @ " + e.HomeTeam
}

// Outcome is one priced side within a bookmaker market.
type Outcome struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *int     `json:"price"`
	Point       *float64 `json:"point"`
}

// BookMarket is one market as offered by one bookmaker.
type BookMarket struct {
	Key      string    `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

// Bookmaker is one book's slice of an event's odds payload.
type Bookmaker struct {
	Key     string       `json:"key"`
	Markets []BookMarket `json:"markets"`
}

// EventOdds is the full per-event odds payload.
type EventOdds struct {
	ID         string      `json:"id"`
	Bookmakers []Bookmaker `json:"bookmakers"`
}

// GameLog is one game's stat line for one player.
type GameLog struct {
	Date     string
	Points   float64
	Rebounds float64
	Assists  float64
	Threes   float64
	Minutes  float64
}

// Stat returns the value of the named stat field.
func (g GameLog) Stat(key string) float64 {
	switch key {
	case "pts":
		return g.Points
	case "reb":
		return g.Rebounds
	case "ast":
		return g.Assists
	case "fg3m":
		return g.Threes
	}
	return 0
}

// InjuryReportRow is one player's entry on the daily injury report.
type InjuryReportRow struct {
	Player string `json:"player"`
	Team   string `json:"team"`
	Status string `json:"status"`
	Reason string `json:"reason"`
}
