package adjust

import (
	"strings"
	"sync"
	"time"

	"nba-ev-scanner/internal/feed"
)

// Canonical injury statuses after normalization.
const (
	StatusOut      = "Out"
	StatusDoubtful = "Doubtful"
	StatusGTD      = "Q/GTD"
	StatusProbable = "Probable"
)

// Adjustment is one adjuster's contribution to a pick's confidence, in
// confidence points, with a short tag for the pick's reasons column. OK
// distinguishes a data-backed zero from no data at all.
type Adjustment struct {
	Points float64
	Tag    string
	OK     bool
}

// NormalizeStatus maps the report's free-text status to a canonical tier.
// Rest and load-management designations count as game-time decisions. An
// empty result means no concern.
func NormalizeStatus(raw string) string {
	s := strings.ToLower(raw)
	switch {
	case strings.Contains(s, "out"):
		return StatusOut
	case strings.Contains(s, "doubt"):
		return StatusDoubtful
	case strings.Contains(s, "question"), strings.Contains(s, "gtd"),
		strings.Contains(s, "rest"), strings.Contains(s, "load"),
		strings.Contains(s, "management"):
		return StatusGTD
	case strings.Contains(s, "probable"):
		return StatusProbable
	case strings.Contains(s, "available"):
		return ""
	}
	return ""
}

// InjuryReporter is the slice of the injury feed this adjuster needs.
type InjuryReporter interface {
	Report() ([]feed.InjuryReportRow, error)
}

const injuryCacheTTL = 5 * time.Minute

// InjuryAdjuster scores injury designations for and against a pick's subject.
// The report is cached briefly; injury news does not move minute to minute.
type InjuryAdjuster struct {
	source InjuryReporter
	now    func() time.Time

	mu        sync.Mutex
	cached    []feed.InjuryReportRow
	fetchedAt time.Time
}

// NewInjuryAdjuster wraps an injury feed in a caching adjuster.
func NewInjuryAdjuster(source InjuryReporter) *InjuryAdjuster {
	return &InjuryAdjuster{source: source, now: time.Now}
}

func (a *InjuryAdjuster) report() []feed.InjuryReportRow {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cached != nil && a.now().Sub(a.fetchedAt) < injuryCacheTTL {
		return a.cached
	}
	rows, err := a.source.Report()
	if err != nil {
		// Stale data beats no data; a pick without injury context still scores.
		return a.cached
	}
	a.cached = rows
	a.fetchedAt = a.now()
	return rows
}

// matchPlayer finds the report row whose name shares the most tokens with
// player. Exact normalized matches win outright.
func matchPlayer(rows []feed.InjuryReportRow, player string) (feed.InjuryReportRow, bool) {
	target := feed.NormalizeName(player)
	targetTokens := nameTokens(target)

	var best feed.InjuryReportRow
	bestScore := 0
	for _, row := range rows {
		name := feed.NormalizeName(row.Player)
		if name == target {
			return row, true
		}
		score := overlap(targetTokens, nameTokens(name))
		if score >= 2 && score > bestScore {
			best, bestScore = row, score
		}
	}
	return best, bestScore > 0
}

// PlayerAdjustment scores the subject's own designation, and designations on
// the opposing roster, into confidence points. The player's team is read off
// the report itself, so the opponent is whichever side of the matchup the
// player is not on.
//
// The subject's own status dominates: a listed-out player kills the pick. An
// opposing player in street clothes is a mild positive for the subject.
func (a *InjuryAdjuster) PlayerAdjustment(player, homeTeam, awayTeam string) Adjustment {
	rows := a.report()
	if len(rows) == 0 {
		return Adjustment{}
	}

	adj := Adjustment{OK: true}
	opponentTeam := ""
	if row, ok := matchPlayer(rows, player); ok {
		switch {
		case SameTeam(row.Team, homeTeam):
			opponentTeam = awayTeam
		case SameTeam(row.Team, awayTeam):
			opponentTeam = homeTeam
		}
		status := NormalizeStatus(row.Status)
		switch status {
		case StatusOut:
			adj.Points -= 50
		case StatusDoubtful:
			adj.Points -= 30
		case StatusGTD:
			adj.Points -= 15
		case StatusProbable:
			adj.Points -= 5
		}
		if status != "" {
			adj.Tag = status
		}
	}

	for _, row := range rows {
		if !SameTeam(row.Team, opponentTeam) {
			continue
		}
		status := NormalizeStatus(row.Status)
		var bump float64
		switch status {
		case StatusOut:
			bump = 5
		case StatusDoubtful:
			bump = 3
		case StatusGTD:
			bump = 2
		default:
			continue
		}
		adj.Points += bump
		if adj.Tag != "" {
			adj.Tag += ","
		}
		adj.Tag += "Opp-" + status
	}
	return adj
}

func nameTokens(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range strings.Fields(s) {
		set[t] = true
	}
	return set
}

func overlap(a, b map[string]bool) int {
	n := 0
	for t := range a {
		if b[t] {
			n++
		}
	}
	return n
}
