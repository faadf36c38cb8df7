package initializer

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/amirasaad/branchledger/infra/cache"
	"github.com/amirasaad/branchledger/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreDefaultLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func TestNewLogger_JSON(t *testing.T) {
	restoreDefaultLogger(t)
	var buf bytes.Buffer
	logger := newLogger(&buf, &config.Log{Format: "json", Prefix: "[test]"})

	logger.Info("Branch created", "branch_id", "b-1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "Branch created", line["msg"])
	assert.Equal(t, "b-1", line["branch_id"])
	assert.Equal(t, "[test]", line["prefix"])
	assert.Same(t, logger, slog.Default())
}

func TestNewLogger_LevelFilters(t *testing.T) {
	restoreDefaultLogger(t)
	var buf bytes.Buffer
	logger := newLogger(&buf, &config.Log{Format: "text", Level: 8})

	logger.Info("hidden")
	assert.Empty(t, buf.String())
	logger.Error("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewStorage_DefaultsToMemory(t *testing.T) {
	storage, err := newStorage(&config.Redis{}, slog.Default())
	require.NoError(t, err)
	require.IsType(t, &cache.MemoryStorage{}, storage)

	require.NoError(t, storage.Set("key", []byte("value"), time.Minute))
	got, err := storage.Get("key")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)
}

func TestNewStorage_InvalidRedisURL(t *testing.T) {
	_, err := newStorage(&config.Redis{URL: "://not-a-url"}, slog.Default())
	assert.ErrorContains(t, err, "invalid redis url")
}
