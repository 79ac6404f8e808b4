package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "dfs", cfg.Traversal.Order)
	assert.Equal(t, "node-global", cfg.Traversal.Uniqueness)
	assert.Equal(t, -1, cfg.Traversal.MaxDepth)
	assert.Equal(t, 100000, cfg.Traversal.DepthGuard)
	assert.Equal(t, 100, cfg.Telemetry.BatchSize)
}

func TestLoadOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("traversal.order", "bfs")
	viper.Set("server.port", 9090)
	t.Setenv("GRAPHWALK_DB_DRIVER", "badger")
	t.Setenv("GRAPHWALK_DB_URI", "/tmp/graph")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "bfs", cfg.Traversal.Order)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "badger", cfg.Database.Driver)
	assert.Equal(t, "/tmp/graph", cfg.Database.URI)
}

func TestValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, Default().Validate())
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := Default()
		cfg.Database.Driver = "oracle"
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown order", func(t *testing.T) {
		cfg := Default()
		cfg.Traversal.Order = "random"
		assert.Error(t, cfg.Validate())
	})

	t.Run("trip ratio out of range", func(t *testing.T) {
		cfg := Default()
		cfg.CircuitBreaker.ReadyToTripRatio = 1.5
		assert.Error(t, cfg.Validate())
	})
}
