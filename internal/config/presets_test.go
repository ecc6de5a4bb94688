package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPresetsBuiltins(t *testing.T) {
	presets, err := LoadPresets("")
	require.NoError(t, err)

	for _, name := range []string{"morning", "pretip", "plus_odds"} {
		assert.Contains(t, presets, name)
	}

	morning := presets["morning"]
	assert.Equal(t, "EV", morning.Sort)
	assert.True(t, morning.RequireEV)
	assert.False(t, morning.HasOddsBounds())

	pretip := presets["pretip"]
	assert.Equal(t, "CONF", pretip.Sort)
	assert.False(t, pretip.RequireEV)
	assert.True(t, pretip.HasOddsBounds())
	assert.Equal(t, -240, pretip.RefOddsMin)
	assert.Equal(t, -140, pretip.RefOddsMax)

	plus := presets["plus_odds"]
	assert.Equal(t, "plus_odds", plus.Mode)
	assert.Equal(t, 100, plus.RefOddsMin)
}

func TestLoadPresetsMissingFileIsFine(t *testing.T) {
	presets, err := LoadPresets(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Contains(t, presets, "pretip")
}

func TestLoadPresetsFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	override := `
morning:
  label: "Custom"
  sort: CONF
  min_true_prob_pct: 60
late_night:
  label: "Late"
  sort: EV
`
	require.NoError(t, os.WriteFile(path, []byte(override), 0o644))

	presets, err := LoadPresets(path)
	require.NoError(t, err)

	assert.Equal(t, "Custom", presets["morning"].Label)
	assert.Equal(t, 60.0, presets["morning"].MinTrueProbPct)
	assert.Contains(t, presets, "late_night")
	assert.Contains(t, presets, "pretip", "untouched builtins survive")
}

func TestLoadPresetsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("morning: [not a preset"), 0o644))

	_, err := LoadPresets(path)
	assert.Error(t, err)
}

func TestPresetFallback(t *testing.T) {
	presets, err := LoadPresets("")
	require.NoError(t, err)

	got := Preset(presets, "no-such-window")
	assert.Equal(t, presets["pretip"].Label, got.Label)

	morning := Preset(presets, "morning")
	assert.Equal(t, presets["morning"].Label, morning.Label)
}
