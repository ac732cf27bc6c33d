package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	DatabaseURL string

	SessionBackend string // "memory" or "redis"
	RedisURL       string
	SessionTTL     time.Duration

	FetchTimeout     time.Duration
	FetchConcurrency int

	IndexWorkers      int
	IndexJobLease     time.Duration
	IndexPollInterval time.Duration

	BodyLimit string
	LogEnv    string // "production" or "development"
}

func New() (*Config, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       databaseURL,
		SessionBackend:    getEnv("SESSION_BACKEND", "memory"),
		RedisURL:          os.Getenv("REDIS_URL"),
		BodyLimit:         getEnv("BODY_LIMIT", "10M"),
		LogEnv:            getEnv("LOG_ENV", "production"),
		FetchConcurrency:  1,
		IndexWorkers:      2,
		SessionTTL:        10 * time.Minute,
		FetchTimeout:      5 * time.Second,
		IndexJobLease:     60 * time.Second,
		IndexPollInterval: 500 * time.Millisecond,
	}

	var err error
	if cfg.FetchConcurrency, err = getEnvAsInt("FETCH_CONCURRENCY", cfg.FetchConcurrency); err != nil {
		return nil, err
	}
	if cfg.IndexWorkers, err = getEnvAsInt("INDEX_WORKERS", cfg.IndexWorkers); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getEnvAsSeconds("SESSION_TTL_SECONDS", cfg.SessionTTL); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = getEnvAsSeconds("FETCH_TIMEOUT_SECONDS", cfg.FetchTimeout); err != nil {
		return nil, err
	}
	if cfg.IndexJobLease, err = getEnvAsSeconds("INDEX_JOB_LEASE_SECONDS", cfg.IndexJobLease); err != nil {
		return nil, err
	}

	if cfg.SessionBackend == "redis" && cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required when SESSION_BACKEND=redis")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return value, nil
}

func getEnvAsSeconds(key string, defaultValue time.Duration) (time.Duration, error) {
	seconds, err := getEnvAsInt(key, int(defaultValue/time.Second))
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds) * time.Second, nil
}
