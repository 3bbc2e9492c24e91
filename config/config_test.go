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
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "payoff-engine", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.App.LogLevel)

	assert.Equal(t, "0.0.0.0", cfg.API.Host)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, 10*time.Second, cfg.API.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.API.WriteTimeout)
	assert.Equal(t, 30*time.Second, cfg.API.ShutdownTimeout)

	// The engine defaults feed the grid on every request that does not
	// override them; they must survive unmarshaling intact.
	assert.Equal(t, 0.6, cfg.Engine.GridLowFactor)
	assert.Equal(t, 1.4, cfg.Engine.GridHighFactor)
	assert.Equal(t, 250, cfg.Engine.GridSamples)
	assert.Equal(t, []float64{0.1, 0.3, 0.5, 0.8}, cfg.Engine.DecayCheckpoints)
	assert.Equal(t, 0.02, cfg.Engine.RiskFreeRate)

	assert.False(t, cfg.Stream.Enabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Stream.Brokers)
	assert.Equal(t, "payoff.evaluations", cfg.Stream.Topic)
	assert.Equal(t, 5*time.Second, cfg.Stream.WriteTimeout)

	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PAYOFF_ENGINE_GRID_SAMPLES", "100")
	t.Setenv("PAYOFF_APP_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Engine.GridSamples)
	assert.Equal(t, "debug", cfg.App.LogLevel)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("engine:\n  grid_samples: 99\n  grid_low_factor: 0.5\napi:\n  port: 9090\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 99, cfg.Engine.GridSamples)
	assert.Equal(t, 0.5, cfg.Engine.GridLowFactor)
	assert.Equal(t, 9090, cfg.API.Port)
	// Untouched keys keep their defaults.
	assert.Equal(t, 1.4, cfg.Engine.GridHighFactor)
}
