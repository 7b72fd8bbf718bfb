package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "shelter.db", cfg.Store.Path)
	assert.Len(t, cfg.Overpass.Endpoints, 3)
	assert.Equal(t, "https://overpass-api.de/api/interpreter", cfg.Overpass.Endpoints[0])
	assert.Equal(t, 30, cfg.Overpass.TimeoutSecs)
	assert.Equal(t, 30*time.Second, cfg.Overpass.Timeout())
	assert.Equal(t, []string{"hospital", "pharmacy", "fire_station", "police"}, cfg.Overpass.Amenities)
	assert.InDelta(t, 44.70, cfg.Overpass.BBox.South, 0.001)
	assert.InDelta(t, 20.65, cfg.Overpass.BBox.East, 0.001)
	assert.Equal(t, 24, cfg.Cache.FreshnessWindowHours)
	assert.Equal(t, 24*time.Hour, cfg.Cache.FreshnessWindow())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Knowledge.TopK)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/shelters
overpass:
  timeout_secs: 10
  endpoints:
    - https://mirror-a.example.com/api/interpreter
    - https://mirror-b.example.com/api/interpreter
cache:
  freshness_window_hours: 6
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/shelters", cfg.Store.DatabaseURL)
	assert.Equal(t, 10, cfg.Overpass.TimeoutSecs)
	assert.Len(t, cfg.Overpass.Endpoints, 2)
	assert.Equal(t, 6*time.Hour, cfg.Cache.FreshnessWindow())
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "not-a-level", Format: "json"})
	require.Error(t, err)
}
