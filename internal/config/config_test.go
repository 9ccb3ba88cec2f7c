package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"world-conquest/internal/game"
	"world-conquest/pkg/maps"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_EmbeddedDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":30000", cfg.Server.Addr)
	assert.Equal(t, game.DefaultRules(), cfg.Rules)
	assert.Equal(t, maps.DefaultMapID, cfg.Map.ID)
	assert.Len(t, cfg.Scenario.Countries, 2)

	opts, err := cfg.Map.Options()
	require.NoError(t, err)
	assert.Equal(t, maps.DefaultOptions(), opts)
	assert.Equal(t, 500, cfg.Map.Trace().MaxPoints)
}

func TestLoad_CustomOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
rules:
  max_move_depth: 5
map:
  water_ranges:
    - min: [0, 0, 150]
      max: [60, 60, 255]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Rules.MaxMoveDepth)
	assert.Equal(t, 5, cfg.Rules.MovesPerRound, "unset fields keep their defaults")
	assert.Equal(t, "info", cfg.Log.Level)

	opts, err := cfg.Map.Options()
	require.NoError(t, err)
	require.Len(t, opts.WaterRanges, 1)
	assert.Equal(t, maps.RGB{R: 60, G: 60, B: 255}, opts.WaterRanges[0].Max)
}

func TestLoad_ZeroToleranceIsExact(t *testing.T) {
	path := writeConfig(t, "map:\n  tolerance: 0\n  opacity_threshold: 0\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	opts, err := cfg.Map.Options()
	require.NoError(t, err)
	assert.Equal(t, uint8(0), opts.Tolerance)
	assert.Equal(t, uint8(0), opts.OpacityThreshold)

	var unset MapConfig
	opts, err = unset.Options()
	require.NoError(t, err)
	assert.Equal(t, maps.DefaultOptions(), opts, "unset fields keep the segmentation defaults")
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "rules: [not, a, map"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "rules:\n  max_move_depth: 0\n"))
	assert.ErrorIs(t, err, ErrBadRules)

	_, err = Load(writeConfig(t, "map:\n  water_ranges:\n    - min: [0, 0]\n      max: [1, 1, 1]\n"))
	assert.ErrorIs(t, err, ErrBadRange)

	_, err = Load(writeConfig(t, "map:\n  water_ranges:\n    - min: [0, 0, 0]\n      max: [1, 300, 1]\n"))
	assert.ErrorIs(t, err, ErrBadRange)
}

func TestDefaultScenarioFitsEmbeddedMap(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	opts, err := cfg.Map.Options()
	require.NoError(t, err)

	w, err := maps.LoadEmbedded(cfg.Map.ID, opts)
	require.NoError(t, err)

	g := game.NewGame("g", "Test", w.ID, cfg.Rules)
	require.NoError(t, cfg.Scenario.Apply(g, w))
	assert.Len(t, g.Armies, 2)
	assert.Len(t, g.Ownership, 6)

	for _, c := range g.Countries {
		_, ok := maps.ParseHexColor(c.Color)
		assert.True(t, ok, "colour of %s", c.ID)
	}
}
