package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

const injuryAPIBase = "https://api.balldontlie.io/v1"

// InjuryClient fetches the league injury report.
type InjuryClient struct {
	http   *FeedClient
	apiKey string
}

// NewInjuryClient creates an injury report client.
func NewInjuryClient(apiKey string, timeout time.Duration, maxRetries int, log zerolog.Logger) *InjuryClient {
	return &InjuryClient{
		http:   NewFeedClient("injuries", 60, timeout, maxRetries, log),
		apiKey: apiKey,
	}
}

type injuryRow struct {
	Status string `json:"status"`
	Reason string `json:"description"`
	Player struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Team      struct {
			FullName string `json:"full_name"`
		} `json:"team"`
	} `json:"player"`
}

// Report returns the current injury report rows. Pagination is followed via
// the feed's cursor until exhausted.
func (c *InjuryClient) Report() ([]InjuryReportRow, error) {
	headers := map[string]string{}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}

	var rows []InjuryReportRow
	cursor := ""
	for {
		q := url.Values{}
		q.Set("per_page", "100")
		if cursor != "" {
			q.Set("cursor", cursor)
		}
		var payload struct {
			Data []injuryRow `json:"data"`
			Meta struct {
				NextCursor json.Number `json:"next_cursor"`
			} `json:"meta"`
		}
		if err := c.http.GetJSON(context.Background(), injuryAPIBase+"/player_injuries?"+q.Encode(), headers, &payload); err != nil {
			return nil, fmt.Errorf("fetching injury report: %w", err)
		}

		for _, r := range payload.Data {
			rows = append(rows, InjuryReportRow{
				Player: r.Player.FirstName + " " + r.Player.LastName,
				Team:   r.Player.Team.FullName,
				Status: r.Status,
				Reason: r.Reason,
			})
		}

		next := payload.Meta.NextCursor.String()
		if next == "" || next == "0" || len(payload.Data) == 0 {
			break
		}
		cursor = next
	}
	return rows, nil
}
