package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for configuration values.
const (
	DefaultMinBooks      = 3
	DefaultMinEVPct      = 2.0
	DefaultBankroll      = 1000.0
	DefaultTopN          = 10
	DefaultKellyMult     = 0.5
	DefaultKellyCapPct   = 2.5
	DefaultMaxPerGame    = 2
	DefaultMaxPerPlayer  = 1
	DefaultWorkerCount   = 8
	DefaultDBPath        = "market_ticks.sqlite"
	DefaultWeightsPath   = "weights.json"
	DefaultHTTPTimeout   = 20 * time.Second
	DefaultMaxRetries    = 2
	DefaultRequestsPerMin = 300
)

// ReferenceBook is the book whose prices are evaluated against the consensus.
// It is always excluded from its own consensus computation.
const ReferenceBook = "fanduel"

// CompetitorBooks are the books eligible to contribute consensus samples.
var CompetitorBooks = []string{
	"draftkings", "betmgm", "caesars", "pointsbetus", "betrivers", "espnbet", "wynnbet",
}

// SharpBooks are the subset of competitors whose movement counts as steam.
var SharpBooks = map[string]bool{
	"draftkings": true,
	"betmgm":     true,
	"caesars":    true,
}

// BadgeThresholds maps confidence cutoffs to badge tiers.
type BadgeThresholds struct {
	High int
	Med  int
	Low  int
}

// Config holds all application configuration.
type Config struct {
	OddsAPIKey   string
	StatsAPIKey  string
	InjuryAPIKey string

	Sport   string
	Regions string

	MinBooks     int
	MinEVPct     float64
	Bankroll     float64
	TopN         int
	KellyMult    float64
	KellyCapPct  float64
	MaxPerGame   int
	MaxPerPlayer int
	Workers      int

	DBPath      string
	WeightsPath string

	Badges BadgeThresholds
}

// Load reads configuration from environment variables (and .env file if present).
func Load() Config {
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	cfg := Config{
		OddsAPIKey:   os.Getenv("ODDS_API_KEY"),
		StatsAPIKey:  os.Getenv("STATS_API_KEY"),
		InjuryAPIKey: os.Getenv("INJURY_API_KEY"),

		Sport:   "basketball_nba",
		Regions: "us",

		MinBooks:     DefaultMinBooks,
		MinEVPct:     DefaultMinEVPct,
		Bankroll:     DefaultBankroll,
		TopN:         DefaultTopN,
		KellyMult:    DefaultKellyMult,
		KellyCapPct:  DefaultKellyCapPct,
		MaxPerGame:   DefaultMaxPerGame,
		MaxPerPlayer: DefaultMaxPerPlayer,
		Workers:      DefaultWorkerCount,

		DBPath:      DefaultDBPath,
		WeightsPath: DefaultWeightsPath,

		Badges: BadgeThresholds{High: 70, Med: 60, Low: 55},
	}

	if v := os.Getenv("MIN_BOOKS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MinBooks = n
		}
	}

	if v := os.Getenv("MIN_EV_PCT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.MinEVPct = f
		}
	}

	if v := os.Getenv("BANKROLL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Bankroll = f
		}
	}

	if v := os.Getenv("TOP_N"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TopN = n
		}
	}

	if v := os.Getenv("KELLY_MULT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.KellyMult = f
		}
	}

	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}

	if v := os.Getenv("WEIGHTS_PATH"); v != "" {
		cfg.WeightsPath = v
	}

	if v := os.Getenv("SCAN_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}

	return cfg
}

// Validate checks that configuration values are within acceptable ranges.
// These are the fatal, surfaced-before-any-scan failures.
func Validate(cfg Config) error {
	if cfg.OddsAPIKey == "" {
		return fmt.Errorf("ODDS_API_KEY is required")
	}
	if cfg.Bankroll <= 0 {
		return fmt.Errorf("BANKROLL must be positive, got %f", cfg.Bankroll)
	}
	if cfg.MinEVPct < 0 || cfg.MinEVPct > 100 {
		return fmt.Errorf("MIN_EV_PCT must be between 0 and 100, got %f", cfg.MinEVPct)
	}
	if cfg.KellyMult <= 0 || cfg.KellyMult > 1 {
		return fmt.Errorf("KELLY_MULT must be between 0 and 1, got %f", cfg.KellyMult)
	}
	if cfg.MinBooks < 1 {
		return fmt.Errorf("MIN_BOOKS must be at least 1, got %d", cfg.MinBooks)
	}
	if cfg.TopN < 1 {
		return fmt.Errorf("TOP_N must be at least 1, got %d", cfg.TopN)
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("SCAN_WORKERS must be at least 1, got %d", cfg.Workers)
	}
	return nil
}
