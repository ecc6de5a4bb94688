package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WindowPreset bundles the tuning knobs for one betting window. Presets are
// immutable once loaded; a scan reads its preset at start and never mid-flight.
type WindowPreset struct {
	Label            string  `yaml:"label"`
	Sort             string  `yaml:"sort"` // "EV" or "CONF"
	MinBooksDelta    int     `yaml:"min_books_delta"`
	Trim             float64 `yaml:"trim"`
	MLBumpScale      float64 `yaml:"ml_bump_scale"`
	SpreadBumpScale  float64 `yaml:"spread_bump_scale"`
	RequireEV        bool    `yaml:"require_ev"`
	RequireGap       bool    `yaml:"require_gap"`
	RequireAvgGap    bool    `yaml:"require_avg_gap"`
	MinGapCents      int     `yaml:"min_gap_cents"`
	MinAvgGapCents   int     `yaml:"min_avg_gap_cents"`
	MinTrueProbPct   float64 `yaml:"min_true_prob_pct"`
	SteamWindowSec   int     `yaml:"steam_window_sec"`
	RefOddsMin       int     `yaml:"ref_odds_min"`
	RefOddsMax       int     `yaml:"ref_odds_max"`
	Mode             string  `yaml:"mode"` // "", "confidence", "plus_odds"
}

// HasOddsBounds reports whether the preset restricts reference prices to a band.
func (p WindowPreset) HasOddsBounds() bool {
	return p.RefOddsMin != 0 || p.RefOddsMax != 0
}

// defaultPresetsYAML is the shipped preset catalog. An operator can override it
// with a presets.yaml next to the binary.
const defaultPresetsYAML = `
morning:
  label: "Morning (soft)"
  sort: EV
  min_books_delta: -1
  trim: 0.20
  ml_bump_scale: 0.5
  spread_bump_scale: 0.4
  require_ev: true
  require_gap: true
  require_avg_gap: true
  min_gap_cents: 5
  min_avg_gap_cents: 5
  min_true_prob_pct: 52
  steam_window_sec: 14400
pretip:
  label: "Pre-tip (high-confidence)"
  sort: CONF
  min_books_delta: -2
  trim: 0.15
  ml_bump_scale: 1.0
  spread_bump_scale: 0.6
  require_ev: false
  require_gap: false
  min_gap_cents: 0
  min_avg_gap_cents: 0
  min_true_prob_pct: 55
  steam_window_sec: 1800
  ref_odds_min: -240
  ref_odds_max: -140
  mode: confidence
plus_odds:
  label: "Plus Odds Hunter"
  sort: EV
  min_books_delta: 0
  trim: 0.18
  ml_bump_scale: 0.7
  spread_bump_scale: 0.5
  require_ev: true
  require_gap: true
  min_gap_cents: 8
  min_avg_gap_cents: 6
  min_true_prob_pct: 45
  steam_window_sec: 7200
  ref_odds_min: 100
  ref_odds_max: 400
  mode: plus_odds
`

// LoadPresets returns the preset catalog, merged with overrides from path when
// the file exists. A missing file is not an error; a malformed one is.
func LoadPresets(path string) (map[string]WindowPreset, error) {
	presets := map[string]WindowPreset{}
	if err := yaml.Unmarshal([]byte(defaultPresetsYAML), &presets); err != nil {
		return nil, fmt.Errorf("parsing built-in presets: %w", err)
	}

	if path == "" {
		return presets, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return presets, nil
		}
		return nil, fmt.Errorf("reading presets file: %w", err)
	}

	overrides := map[string]WindowPreset{}
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parsing presets file %s: %w", path, err)
	}
	for name, p := range overrides {
		presets[name] = p
	}
	return presets, nil
}

// Preset resolves a preset by name, falling back to pretip for unknown names.
func Preset(presets map[string]WindowPreset, name string) WindowPreset {
	if p, ok := presets[name]; ok {
		return p
	}
	return presets["pretip"]
}
