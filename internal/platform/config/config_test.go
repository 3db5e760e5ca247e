package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("SIGNUP_ADDR", "")
	t.Setenv("LOOKUP_TIMEOUT", "")
	t.Setenv("SINK", "")
	t.Setenv("REDIS_URL", "")

	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "https://viacep.com.br", cfg.Lookup.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Lookup.Timeout)
	assert.Equal(t, SinkMemory, cfg.Sink.Kind)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SIGNUP_ADDR", ":9090")
	t.Setenv("LOOKUP_TIMEOUT", "750ms")
	t.Setenv("SESSION_TTL", "10m")
	t.Setenv("SINK", "KAFKA")
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REDIS_POOL_SIZE", "25")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 750*time.Millisecond, cfg.Lookup.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.Session.TTL)
	assert.Equal(t, SinkKafka, cfg.Sink.Kind)
	assert.Equal(t, "localhost:9092", cfg.Sink.KafkaBrokers)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 25, cfg.Redis.PoolSize)
}

func TestFromEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("LOOKUP_TIMEOUT", "soon")
	t.Setenv("REDIS_POOL_SIZE", "-3")
	t.Setenv("LOG_LEVEL", "loud")

	cfg := FromEnv()

	assert.Equal(t, 5*time.Second, cfg.Lookup.Timeout)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadDotEnvKeepsExistingValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SIGNUP_ADDR=:9191\nSINK=log\n"), 0o600))

	// register cleanup, then clear so the file can supply it
	t.Setenv("SIGNUP_ADDR", "")
	require.NoError(t, os.Unsetenv("SIGNUP_ADDR"))
	t.Setenv("SINK", "memory")

	LoadDotEnv(path)
	cfg := FromEnv()

	assert.Equal(t, ":9191", cfg.Addr)
	assert.Equal(t, SinkMemory, cfg.Sink.Kind)
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	assert.NotPanics(t, func() { LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")) })
}
