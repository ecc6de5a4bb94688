package feed

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const oddsAPIBase = "https://api.the-odds-api.com/v4"

// OddsClient fetches events and per-event bookmaker odds.
type OddsClient struct {
	http    *FeedClient
	apiKey  string
	sport   string
	regions string
	books   []string
}

// NewOddsClient creates an odds feed client scoped to one sport.
// books is the full set of bookmaker keys to request (reference + competitors).
func NewOddsClient(apiKey, sport, regions string, books []string, timeout time.Duration, maxRetries int, log zerolog.Logger) *OddsClient {
	return &OddsClient{
		http:    NewFeedClient("odds", 300, timeout, maxRetries, log),
		apiKey:  apiKey,
		sport:   sport,
		regions: regions,
		books:   books,
	}
}

// ListEvents returns today's scheduled events for the configured sport.
func (c *OddsClient) ListEvents(ctx context.Context) ([]Event, error) {
	q := url.Values{}
	q.Set("regions", c.regions)
	q.Set("oddsFormat", "american")
	q.Set("markets", MarketMoneyline)
	q.Set("apiKey", c.apiKey)

	u := fmt.Sprintf("%s/sports/%s/odds?%s", oddsAPIBase, c.sport, q.Encode())
	var events []Event
	if err := c.http.GetJSON(ctx, u, nil, &events); err != nil {
		return nil, fmt.Errorf("fetching events: %w", err)
	}
	return events, nil
}

// EventOdds returns the per-bookmaker outcome lists for one event and the
// requested market keys.
func (c *OddsClient) EventOdds(ctx context.Context, eventID string, markets []string) (*EventOdds, error) {
	q := url.Values{}
	q.Set("regions", c.regions)
	q.Set("oddsFormat", "american")
	q.Set("bookmakers", strings.Join(c.books, ","))
	q.Set("markets", strings.Join(markets, ","))
	q.Set("apiKey", c.apiKey)

	u := fmt.Sprintf("%s/sports/%s/events/%s/odds?%s", oddsAPIBase, c.sport, eventID, q.Encode())
	var odds EventOdds
	if err := c.http.GetJSON(ctx, u, nil, &odds); err != nil {
		return nil, fmt.Errorf("fetching odds for event %s: %w", eventID, err)
	}
	return &odds, nil
}
