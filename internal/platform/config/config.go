package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures process level configuration for the registration service.
type Server struct {
	Addr        string
	Environment string
	LogLevel    slog.Level

	Lookup  LookupConfig
	Session SessionConfig
	Redis   RedisConfig
	Sink    SinkConfig
}

// LookupConfig configures the postal-code lookup upstream.
type LookupConfig struct {
	BaseURL          string
	Timeout          time.Duration
	Wait             time.Duration // how long a field patch waits for a triggered lookup
	CacheTTL         time.Duration
	FailureThreshold int
	Cooldown         time.Duration
}

// SessionConfig configures registration session lifetime.
type SessionConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

// RedisConfig configures the optional Redis connection. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// SinkConfig selects where completed registrations are handed off.
type SinkConfig struct {
	Kind         string // memory, log or kafka
	KafkaBrokers string
	Topic        string
}

const (
	SinkMemory = "memory"
	SinkLog    = "log"
	SinkKafka  = "kafka"
)

// LoadDotEnv copies variables from the given files (default ".env") into the
// process environment. Variables already set win. Missing files are ignored.
func LoadDotEnv(paths ...string) {
	for _, p := range paths {
		_ = godotenv.Load(p)
	}
	if len(paths) == 0 {
		_ = godotenv.Load()
	}
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:        envString("SIGNUP_ADDR", ":8080"),
		Environment: envString("ENVIRONMENT", "development"),
		LogLevel:    envLevel("LOG_LEVEL", slog.LevelInfo),
		Lookup: LookupConfig{
			BaseURL:          envString("VIACEP_BASE_URL", "https://viacep.com.br"),
			Timeout:          envDuration("LOOKUP_TIMEOUT", 5*time.Second),
			Wait:             envDuration("LOOKUP_WAIT", 3*time.Second),
			CacheTTL:         envDuration("POSTAL_CODE_CACHE_TTL", 24*time.Hour),
			FailureThreshold: envInt("LOOKUP_FAILURE_THRESHOLD", 5),
			Cooldown:         envDuration("LOOKUP_COOLDOWN", 30*time.Second),
		},
		Session: SessionConfig{
			TTL:             envDuration("SESSION_TTL", 30*time.Minute),
			CleanupInterval: envDuration("SESSION_CLEANUP_INTERVAL", time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Sink: SinkConfig{
			Kind:         strings.ToLower(envString("SINK", SinkMemory)),
			KafkaBrokers: os.Getenv("KAFKA_BROKERS"),
			Topic:        envString("REGISTRATION_TOPIC", "registrations.completed"),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return fallback
	}
	return level
}
