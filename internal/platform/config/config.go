package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures process-level configuration. Values come from the
// environment so main stays lean.
type Config struct {
	Addr        string
	MetricsAddr string

	PostgresURL string
	Redis       RedisConfig

	JWTSigningKey string
	JWTIssuer     string

	ShutdownTimeout time.Duration
}

// RedisConfig holds Redis connection tuning.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:            envOr("TIMECLOCK_ADDR", ":8080"),
		MetricsAddr:     envOr("TIMECLOCK_METRICS_ADDR", ":9090"),
		PostgresURL:     os.Getenv("TIMECLOCK_POSTGRES_URL"),
		JWTSigningKey:   envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:       envOr("JWT_ISSUER", "timeclock"),
		ShutdownTimeout: envDurationOr("TIMECLOCK_SHUTDOWN_TIMEOUT", 10*time.Second),
		Redis: RedisConfig{
			URL:          os.Getenv("TIMECLOCK_REDIS_URL"),
			PoolSize:     envIntOr("TIMECLOCK_REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("TIMECLOCK_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDurationOr("TIMECLOCK_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("TIMECLOCK_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("TIMECLOCK_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return fallback
}
