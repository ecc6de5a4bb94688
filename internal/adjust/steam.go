package adjust

import (
	"math"
	"time"

	"nba-ev-scanner/internal/config"
	"nba-ev-scanner/internal/store"
)

const (
	steamNoiseFloor = 0.02 // implied-prob moves below this are line noise
	steamMaxPoints  = 2.0
)

// TickHistory is the slice of the tick store steam detection needs.
type TickHistory interface {
	TicksSince(eventID, subject, market string, line float64, side string, since time.Time) ([]store.Tick, error)
}

// SteamAdjuster detects sharp-book moves toward a side from stored ticks.
type SteamAdjuster struct {
	history TickHistory
	now     func() time.Time
}

// NewSteamAdjuster creates a steam detector over a tick history.
func NewSteamAdjuster(history TickHistory) *SteamAdjuster {
	return &SteamAdjuster{history: history, now: time.Now}
}

// Adjustment scores recent sharp-book movement toward the bet side.
//
// For each sharp book with at least two observations inside the window, the
// move is the latest implied probability minus the earliest. Only moves
// toward the side count; books drifting away contribute nothing rather than
// canceling real steam elsewhere.
func (a *SteamAdjuster) Adjustment(eventID, subject, market string, line float64, side string, window time.Duration) Adjustment {
	since := a.now().Add(-window)
	ticks, err := a.history.TicksSince(eventID, subject, market, line, side, since)
	if err != nil || len(ticks) == 0 {
		return Adjustment{}
	}

	type span struct {
		first, last float64
		seen        int
	}
	byBook := map[string]*span{}
	for _, t := range ticks {
		if !config.SharpBooks[t.Book] {
			continue
		}
		s, ok := byBook[t.Book]
		if !ok {
			s = &span{first: t.Implied}
			byBook[t.Book] = s
		}
		s.last = t.Implied
		s.seen++
	}

	var sum float64
	moves := 0
	for _, s := range byBook {
		if s.seen < 2 {
			continue
		}
		delta := s.last - s.first
		if delta > 0 {
			sum += delta
			moves++
		}
	}
	if moves == 0 {
		return Adjustment{}
	}

	avg := sum / float64(moves)
	if avg < steamNoiseFloor {
		return Adjustment{OK: true}
	}
	points := math.Min(steamMaxPoints, (avg-steamNoiseFloor)*100*1.2)
	return Adjustment{Points: points, Tag: "Steam", OK: true}
}
