package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecdb/distance"
	"github.com/hupe1980/vecdb/index"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	indexes, err := cfg.IndexConfigs()
	require.NoError(t, err)
	require.Len(t, indexes, 2)

	assert.Equal(t, index.TypeFlat, indexes[0].Type)
	assert.Equal(t, index.TypeGraph, indexes[1].Type)
	for _, ic := range indexes {
		assert.Equal(t, 1, ic.Dimension)
		assert.Equal(t, distance.Euclidean, ic.Metric)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vecdb.yaml")
	data := `
server:
  addr: ":9000"
  read_timeout: 2s
log:
  format: json
  level: debug
indexes:
  - type: HNSW
    dimension: 4
    metric: ip
    m: 8
    seed: 42
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(NewViper(), path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, Default().Server.WriteTimeout, cfg.Server.WriteTimeout)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "debug", cfg.Log.Level)

	require.Len(t, cfg.Indexes, 1)
	ic, err := cfg.Indexes[0].Resolve()
	require.NoError(t, err)
	assert.Equal(t, index.Config{
		Type:      index.TypeGraph,
		Dimension: 4,
		Metric:    distance.InnerProduct,
		M:         8,
		Seed:      42,
	}, ic)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("VECDB_SERVER_ADDR", ":7070")
	t.Setenv("VECDB_LIMITS_MAX_IN_FLIGHT", "3")
	t.Setenv("VECDB_SERVER_SHUTDOWN_TIMEOUT", "1s")

	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, int64(3), cfg.Limits.MaxInFlight)
	assert.Equal(t, time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vecdb.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9000\"\n"), 0o600))
	t.Setenv("VECDB_SERVER_ADDR", ":7070")

	cfg, err := Load(NewViper(), path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(NewViper(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"negative body limit", func(c *Config) { c.Server.MaxBodyBytes = -1 }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"disk store without dir", func(c *Config) { c.Storage.InMemory = false }},
		{"negative limit", func(c *Config) { c.Limits.Burst = -1 }},
		{"unknown index type", func(c *Config) { c.Indexes[0].Type = "TREE" }},
		{"reserved index type", func(c *Config) { c.Indexes[0].Type = "FILTER" }},
		{"zero dimension", func(c *Config) { c.Indexes[0].Dimension = 0 }},
		{"bad metric", func(c *Config) { c.Indexes[1].Metric = "manhattan" }},
		{"duplicate type", func(c *Config) { c.Indexes[1].Type = "FLAT" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestResolveDefaultsMetric(t *testing.T) {
	ic, err := IndexConfig{Type: "flat", Dimension: 3}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, index.TypeFlat, ic.Type)
	assert.Equal(t, distance.Euclidean, ic.Metric)
}
