// Package config loads process-wide configuration from the environment.
// Everything here is read once at startup and treated as read-only afterwards.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Cache bounds for card responses, in seconds. The default can be raised
// through CACHE_SECONDS but never below the minimum or above the maximum.
const (
	DefaultCacheSeconds = 14400 // 4 hours
	MinCacheSeconds     = 14400 // 4 hours
	MaxCacheSeconds     = 86400 // 24 hours
)

type Config struct {
	Env          string        `env:"APP_ENV" env-default:"local"`
	Address      string        `env:"HTTP_ADDRESS" env-default:":8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"5s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`

	// CacheSeconds is the default Cache-Control duration for successful
	// card responses. Clamped into [MinCacheSeconds, MaxCacheSeconds].
	CacheSeconds int `env:"CACHE_SECONDS" env-default:"14400"`

	// FetchTimeout bounds a single outbound GitHub API attempt.
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" env-default:"10s"`

	// Tokens holds the GitHub personal access tokens found as PAT_1..PAT_N.
	// The retrier rotates through them in order when rate limited.
	Tokens []string
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from environment: %w", err)
	}

	cfg.CacheSeconds = Clamp(cfg.CacheSeconds, MinCacheSeconds, MaxCacheSeconds)
	cfg.Tokens = collectTokens()

	return &cfg, nil
}

// MustLoad panics if the configuration can not be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	return cfg
}

// collectTokens scans the environment for PAT_1, PAT_2, ... and returns
// them in order. The scan stops at the first gap so the rotation order
// stays deterministic.
func collectTokens() []string {
	var tokens []string
	for i := 1; ; i++ {
		token := os.Getenv(fmt.Sprintf("PAT_%d", i))
		if token == "" {
			break
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// Clamp bounds v into [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
