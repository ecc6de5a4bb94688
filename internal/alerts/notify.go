package alerts

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"nba-ev-scanner/internal/scan"
)

// Notifier surfaces high-tier picks, suppressing repeats of the same
// proposition inside a cooldown window so a pick that survives several scans
// does not spam the operator.
type Notifier struct {
	log      zerolog.Logger
	cooldown time.Duration
	now      func() time.Time

	mu       sync.Mutex
	lastSent map[string]time.Time
}

// NewNotifier creates a notifier with the given repeat-suppression window.
func NewNotifier(log zerolog.Logger, cooldown time.Duration) *Notifier {
	return &Notifier{
		log:      log,
		cooldown: cooldown,
		now:      time.Now,
		lastSent: make(map[string]time.Time),
	}
}

func pickKey(p scan.Candidate) string {
	return fmt.Sprintf("%s|%s|%s|%s|%.1f", p.Matchup, p.Subject, p.Market, p.Side, p.Line)
}

// NotifyPicks emits one alert per new high-tier pick and returns how many
// were sent.
func (n *Notifier) NotifyPicks(picks []scan.Candidate) int {
	sent := 0
	for _, p := range picks {
		if p.Badge != scan.BadgeHigh {
			continue
		}
		if !n.shouldSend(pickKey(p)) {
			continue
		}
		n.log.Info().
			Str("matchup", p.Matchup).
			Str("subject", p.Subject).
			Str("market", p.Label).
			Str("side", p.Side).
			Float64("line", p.Line).
			Int("price", p.Price).
			Float64("ev_pct", p.EVPct).
			Int("confidence", p.Confidence).
			Float64("stake_pct", p.StakePct).
			Msg("alert: high-confidence pick")
		sent++
	}
	return sent
}

func (n *Notifier) shouldSend(key string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if t, ok := n.lastSent[key]; ok && n.now().Sub(t) < n.cooldown {
		return false
	}
	n.lastSent[key] = n.now()
	return true
}
