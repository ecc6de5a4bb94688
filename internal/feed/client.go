package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// FeedClient is the shared HTTP layer under the odds, stats, and injury
// feeds: paced requests, bounded retries on transient failures, and JSON
// decoding. The name tags retry warnings so a slow upstream is attributable
// in the scan logs.
type FeedClient struct {
	name       string
	http       *http.Client
	pace       *pacer
	maxRetries int
	log        zerolog.Logger
}

// pacer spaces requests to a minimum interval. Scan workers fan out over
// events concurrently; without pacing they would stampede the upstream API
// the moment a slate loads.
type pacer struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

func (p *pacer) wait(ctx context.Context) error {
	p.mu.Lock()
	at := p.next
	if now := time.Now(); at.Before(now) {
		at = now
	}
	p.next = at.Add(p.interval)
	p.mu.Unlock()

	return sleepCtx(ctx, time.Until(at))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NewFeedClient builds the shared layer for one upstream feed, paced to
// requestsPerMinute.
func NewFeedClient(name string, requestsPerMinute int, timeout time.Duration, maxRetries int, log zerolog.Logger) *FeedClient {
	return &FeedClient{
		name:       name,
		http:       &http.Client{Timeout: timeout},
		pace:       &pacer{interval: time.Minute / time.Duration(requestsPerMinute)},
		maxRetries: maxRetries,
		log:        log.With().Str("feed", name).Logger(),
	}
}

// retryAfter honors the upstream's Retry-After header on throttle responses,
// falling back to the caller's backoff when absent or unparseable.
func retryAfter(resp *http.Response, fallback time.Duration) time.Duration {
	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}

// GetJSON fetches url and decodes the response body into out. Network
// errors, 429s, and 5xx responses are retried with exponential backoff;
// other non-200 statuses and decode failures are terminal.
func (c *FeedClient) GetJSON(ctx context.Context, url string, headers map[string]string, out any) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.log.Warn().Int("attempt", attempt).Err(lastErr).Msg("retrying feed request")
		}
		if err := c.pace.wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("building %s request: %w", c.name, err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if err := sleepCtx(ctx, time.Duration(1<<attempt)*100*time.Millisecond); err != nil {
				return err
			}
			continue
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			resp.Body.Close()
			lastErr = fmt.Errorf("%s throttled the request (429)", c.name)
			if err := sleepCtx(ctx, retryAfter(resp, time.Duration(1<<attempt)*time.Second)); err != nil {
				return err
			}
			continue
		case resp.StatusCode >= 500:
			resp.Body.Close()
			lastErr = fmt.Errorf("%s server error: %d", c.name, resp.StatusCode)
			if err := sleepCtx(ctx, time.Duration(1<<attempt)*100*time.Millisecond); err != nil {
				return err
			}
			continue
		case resp.StatusCode != http.StatusOK:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return fmt.Errorf("%s returned %d: %s", c.name, resp.StatusCode, body)
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decoding %s response: %w", c.name, err)
		}
		return nil
	}
	return fmt.Errorf("%s unavailable after %d attempts: %w", c.name, c.maxRetries+1, lastErr)
}
