package adjust

import (
	"math"
	"sync"
	"time"

	"nba-ev-scanner/internal/feed"
	"nba-ev-scanner/internal/mathutil"
)

// GameLogSource is the slice of the stats feed the minutes adjuster needs.
type GameLogSource interface {
	FindPlayerID(player string) (int, error)
	RecentGameLogs(playerID int, limit int) ([]feed.GameLog, error)
}

const (
	minutesCacheTTL  = 2 * time.Hour
	minutesFloor     = 15.0 // games below this read as injury or blowout exits
	minutesLogWindow = 20
)

// MinutesProfile summarizes a player's recent playing-time reliability.
type MinutesProfile struct {
	Median       float64
	IQR          float64
	Games        int
	HighVariance bool
}

type minutesEntry struct {
	profile   MinutesProfile
	fetchedAt time.Time
}

// MinutesAdjuster scores playing-time reliability into confidence points.
// Profiles are cached for hours; rotations do not change within one slate.
type MinutesAdjuster struct {
	source GameLogSource
	now    func() time.Time

	mu    sync.Mutex
	cache map[string]minutesEntry
}

// NewMinutesAdjuster wraps a stats feed in a caching minutes adjuster.
func NewMinutesAdjuster(source GameLogSource) *MinutesAdjuster {
	return &MinutesAdjuster{
		source: source,
		now:    time.Now,
		cache:  make(map[string]minutesEntry),
	}
}

// Profile returns the cached minutes reliability profile for player,
// fetching on miss or expiry.
func (a *MinutesAdjuster) Profile(player string) MinutesProfile {
	key := feed.NormalizeName(player)
	a.mu.Lock()
	if e, ok := a.cache[key]; ok && a.now().Sub(e.fetchedAt) < minutesCacheTTL {
		a.mu.Unlock()
		return e.profile
	}
	a.mu.Unlock()

	profile := a.fetchProfile(player)

	a.mu.Lock()
	a.cache[key] = minutesEntry{profile: profile, fetchedAt: a.now()}
	a.mu.Unlock()
	return profile
}

func (a *MinutesAdjuster) fetchProfile(player string) MinutesProfile {
	id, err := a.source.FindPlayerID(player)
	if err != nil {
		return MinutesProfile{}
	}
	logs, err := a.source.RecentGameLogs(id, minutesLogWindow)
	if err != nil {
		return MinutesProfile{}
	}
	return BuildMinutesProfile(logs)
}

// BuildMinutesProfile computes the reliability profile from raw game logs.
// Sub-rotation games are excluded from the sample but widen the spread, since
// each one is evidence the role can vanish on a given night.
func BuildMinutesProfile(logs []feed.GameLog) MinutesProfile {
	var minutes []float64
	shortGames := 0
	for _, g := range logs {
		if g.Minutes >= minutesFloor {
			minutes = append(minutes, g.Minutes)
		} else if g.Minutes > 0 {
			shortGames++
		}
	}

	p := MinutesProfile{Games: len(minutes)}
	if len(minutes) == 0 {
		p.HighVariance = true
		return p
	}
	p.Median = mathutil.Median(minutes)
	p.IQR = mathutil.IQR(minutes)
	p.IQR *= 1 + math.Min(0.6, float64(shortGames)*0.2)

	p.HighVariance = p.Games < 5 || p.IQR/math.Max(1, p.Median) > 0.4
	return p
}

// PlayerAdjustment converts the profile into confidence points. Thin samples
// are penalized hard; locked-in heavy-minute roles earn a bonus that grows
// with sample size.
func (a *MinutesAdjuster) PlayerAdjustment(player string) (Adjustment, MinutesProfile) {
	p := a.Profile(player)
	return scoreMinutes(p), p
}

func scoreMinutes(p MinutesProfile) Adjustment {
	ok := p.Games > 0
	if p.Games < 5 {
		return Adjustment{Points: -5.0, Tag: "ThinSample", OK: ok}
	}

	med, iqr := p.Median, p.IQR
	if p.Games <= 6 {
		switch {
		case med >= 32 && iqr <= 3:
			return Adjustment{Points: 2, Tag: "SteadyMin", OK: true}
		case med >= 28 && iqr <= 4:
			return Adjustment{Points: 1, Tag: "SteadyMin", OK: true}
		case med < 18 || iqr >= 10:
			return Adjustment{Points: -4, Tag: "VolatileMin", OK: true}
		default:
			return Adjustment{Points: -1, Tag: "ShortSample", OK: true}
		}
	}

	switch {
	case med >= 32 && iqr <= 4:
		return Adjustment{Points: 3, Tag: "SteadyMin", OK: true}
	case med >= 28 && iqr <= 5:
		return Adjustment{Points: 2, Tag: "SteadyMin", OK: true}
	case med >= 24 && iqr <= 6:
		return Adjustment{Points: 1, Tag: "SteadyMin", OK: true}
	case med < 16 || iqr >= 12:
		return Adjustment{Points: -3, Tag: "VolatileMin", OK: true}
	case med < 20 || iqr >= 9:
		return Adjustment{Points: -2, Tag: "VolatileMin", OK: true}
	default:
		return Adjustment{OK: true}
	}
}
