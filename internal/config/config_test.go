package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 30*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "random", cfg.Search.DefaultDriver)
	assert.Equal(t, 200, cfg.Search.DefaultIterations)
	assert.Equal(t, 1, cfg.Search.WorkerCount)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SEARCH_DEFAULT_DRIVER", "mayfly")
	t.Setenv("SEARCH_WORKER_COUNT", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "mayfly", cfg.Search.DefaultDriver)
	assert.Equal(t, 8, cfg.Search.WorkerCount)
}

func TestLoadClampsSearchValues(t *testing.T) {
	t.Setenv("SEARCH_WORKER_COUNT", "0")
	t.Setenv("SEARCH_DEFAULT_ITERATIONS", "-3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Search.WorkerCount)
	assert.Equal(t, 200, cfg.Search.DefaultIterations)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("HTTP_PORT", "not-a-port")

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
}
