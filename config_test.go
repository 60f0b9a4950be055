package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "pollution", cfg.Objective)
	assert.Equal(t, 10, cfg.Search.Deviations)
	assert.Equal(t, 1000, cfg.Search.SyncInterval)
	assert.Equal(t, 12, cfg.BeaconSlots)
	require.Len(t, cfg.Demand, 8)
	assert.Equal(t, Target{Name: "rocket-part", Quantity: 5}, cfg.Demand[0])
	assert.Equal(t, Target{Name: "satellite", Quantity: 0.05}, cfg.Demand[1])
	for _, d := range cfg.Demand[2:] {
		assert.Equal(t, 50.0, d.Quantity, d.Name)
	}
	assert.True(t, cfg.Joint.Enabled)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
objective: footprint
search:
  iterations: 5000
  workers: 2
demand:
  - name: plastic-bar
    quantity: 120
joint:
  yields:
    c2: 60
log:
  format: json
store:
  kind: sqlite
  path: /tmp/runs.db
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "footprint", cfg.Objective)
	assert.Equal(t, 5000, cfg.Search.Iterations)
	assert.Equal(t, 2, cfg.Search.Workers)
	assert.Equal(t, 10, cfg.Search.Deviations, "unset fields keep defaults")
	assert.Equal(t, []Target{{Name: "plastic-bar", Quantity: 120}}, cfg.Demand)
	assert.Equal(t, 60.0, cfg.Joint.Yields.C2)
	assert.Equal(t, 45.0, cfg.Joint.Yields.C3)
	assert.Equal(t, "advanced-oil-processing", cfg.Joint.Refinery)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, StoreConfig{Kind: "sqlite", Path: "/tmp/runs.db"}, cfg.Store)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search: [1, 2"), 0o644))
	_, err = LoadConfig(path)
	assert.ErrorContains(t, err, "parse "+path)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Objective = "speed"
	cfg.Search.Iterations = -1
	cfg.Search.Deviations = -2
	cfg.Search.Workers = -3
	cfg.Search.SyncInterval = 0
	cfg.BeaconSlots = -1
	cfg.Demand = []Target{{Name: "", Quantity: 1}, {Name: "gear", Quantity: 0}}
	cfg.Log = LogConfig{Level: "loud", Format: "xml"}
	cfg.Store.Kind = "redis"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		`unknown objective "speed"`,
		"search.iterations must be >= 0",
		"search.deviations must be >= 0",
		"search.workers must be >= 0",
		"search.sync_interval must be > 0",
		"beacon_slots must be >= 0",
		"demand[0]: empty name",
		"demand[1] gear: quantity must be > 0",
		`unknown log level "loud"`,
		`log.format must be text or json, got "xml"`,
		"unsupported store backend: redis",
	} {
		assert.ErrorContains(t, err, want)
	}
}
