package feed

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const statsAPIBase = "https://api.balldontlie.io/v1"

// StatsClient fetches player identifiers and recent game logs. Lookups run
// deep inside adjuster caches, so requests carry their own deadline instead
// of a caller context.
type StatsClient struct {
	http   *FeedClient
	apiKey string

	mu      sync.Mutex
	idCache map[string]int
}

// NewStatsClient creates a player statistics client.
func NewStatsClient(apiKey string, timeout time.Duration, maxRetries int, log zerolog.Logger) *StatsClient {
	return &StatsClient{
		http:    NewFeedClient("stats", 60, timeout, maxRetries, log),
		apiKey:  apiKey,
		idCache: make(map[string]int),
	}
}

func (c *StatsClient) headers() map[string]string {
	if c.apiKey == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + c.apiKey}
}

// NormalizeName lowercases and strips punctuation for fuzzy name comparison.
func NormalizeName(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, "-", " ")
	return strings.Join(strings.Fields(s), " ")
}

type playerRecord struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// FindPlayerID resolves a free-text player name to a feed id using token
// overlap against candidates sharing the first name. Results are cached for
// the life of the client.
func (c *StatsClient) FindPlayerID(playerName string) (int, error) {
	key := NormalizeName(playerName)
	c.mu.Lock()
	if id, ok := c.idCache[key]; ok {
		c.mu.Unlock()
		return id, nil
	}
	c.mu.Unlock()

	parts := strings.Fields(playerName)
	if len(parts) == 0 {
		return 0, fmt.Errorf("empty player name")
	}

	q := url.Values{}
	q.Set("first_name", parts[0])
	q.Set("per_page", "100")
	var payload struct {
		Data []playerRecord `json:"data"`
	}
	if err := c.http.GetJSON(context.Background(), statsAPIBase+"/players?"+q.Encode(), c.headers(), &payload); err != nil {
		return 0, fmt.Errorf("searching player %q: %w", playerName, err)
	}

	target := tokenSet(key)
	var best *playerRecord
	bestScore := 0
	for i := range payload.Data {
		name := NormalizeName(payload.Data[i].FirstName + " " + payload.Data[i].LastName)
		score := tokenOverlap(target, tokenSet(name))
		if score > bestScore {
			best, bestScore = &payload.Data[i], score
		}
	}
	if best == nil {
		return 0, fmt.Errorf("no player match for %q", playerName)
	}

	c.mu.Lock()
	c.idCache[key] = best.ID
	c.mu.Unlock()
	return best.ID, nil
}

type statRow struct {
	Pts  float64 `json:"pts"`
	Reb  float64 `json:"reb"`
	Ast  float64 `json:"ast"`
	Fg3m float64 `json:"fg3m"`
	Min  string  `json:"min"`
	Game struct {
		Date string `json:"date"`
	} `json:"game"`
}

// RecentGameLogs returns the player's most recent game logs, newest first,
// capped at limit.
func (c *StatsClient) RecentGameLogs(playerID int, limit int) ([]GameLog, error) {
	q := url.Values{}
	q.Set("player_ids[]", strconv.Itoa(playerID))
	q.Set("per_page", "100")
	var payload struct {
		Data []statRow `json:"data"`
	}
	if err := c.http.GetJSON(context.Background(), statsAPIBase+"/stats?"+q.Encode(), c.headers(), &payload); err != nil {
		return nil, fmt.Errorf("fetching game logs for player %d: %w", playerID, err)
	}

	sort.Slice(payload.Data, func(i, j int) bool {
		return payload.Data[i].Game.Date > payload.Data[j].Game.Date
	})

	logs := make([]GameLog, 0, limit)
	for _, row := range payload.Data {
		logs = append(logs, GameLog{
			Date:     row.Game.Date,
			Points:   row.Pts,
			Rebounds: row.Reb,
			Assists:  row.Ast,
			Threes:   row.Fg3m,
			Minutes:  ParseMinutes(row.Min),
		})
		if len(logs) >= limit {
			break
		}
	}
	return logs, nil
}

// ParseMinutes converts a "MM:SS" or plain-number minutes string to a float.
// Malformed input yields 0.
func ParseMinutes(s string) float64 {
	if s == "" {
		return 0
	}
	if strings.Contains(s, ":") {
		parts := strings.SplitN(s, ":", 2)
		mm, err1 := strconv.Atoi(parts[0])
		ss, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			return 0
		}
		return float64(mm) + float64(ss)/60.0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range strings.Fields(s) {
		set[t] = true
	}
	return set
}

func tokenOverlap(a, b map[string]bool) int {
	n := 0
	for t := range a {
		if b[t] {
			n++
		}
	}
	return n
}
