// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

// Package config loads and validates the Convive service configuration.
//
// Configuration is layered with koanf: struct defaults first, then an
// optional YAML file, then CONVIVE_-prefixed environment variables, with
// later layers overriding earlier ones.
package config

import (
	"fmt"
	"time"

	"github.com/afrantzeskakis/convive/internal/backup"
	"github.com/afrantzeskakis/convive/internal/matching"
)

// Config is the root service configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Storage   StorageConfig   `koanf:"storage"`
	Matching  matching.Config `koanf:"matching"`
	Scoring   ScoringConfig   `koanf:"scoring"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Backup    backup.Config   `koanf:"backup"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Host and Port are the listen address.
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// Timeout bounds request read/write and graceful shutdown.
	Timeout time.Duration `koanf:"timeout"`

	// CORSOrigins lists allowed origins; empty disables CORS headers.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitPerMinute is the per-IP request budget on API routes.
	RateLimitPerMinute int `koanf:"rate_limit_per_minute"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// StorageConfig configures the embedded BadgerDB.
type StorageConfig struct {
	// Path is the data directory. Empty selects an in-memory database,
	// which loses everything on restart; fine for tests and demos only.
	Path string `koanf:"path"`
}

// ScoringConfig configures the compatibility provider decorators.
type ScoringConfig struct {
	// PersistScores enables the cross-run pair score cache.
	PersistScores bool `koanf:"persist_scores"`

	// RateLimitPerSecond bounds score computations; 0 disables the
	// limiter.
	RateLimitPerSecond float64 `koanf:"rate_limit_per_second"`
	RateLimitBurst     int     `koanf:"rate_limit_burst"`

	// BreakerEnabled wraps the provider in a circuit breaker.
	BreakerEnabled bool `koanf:"breaker_enabled"`
}

// SchedulerConfig configures periodic batch matching over the registered
// user pool.
type SchedulerConfig struct {
	// Enabled turns the scheduled matcher on.
	Enabled bool `koanf:"enabled"`

	// Interval is the time between batch runs.
	Interval time.Duration `koanf:"interval"`

	// MinCandidates skips a tick when the pool is smaller than this.
	MinCandidates int `koanf:"min_candidates"`

	// RestaurantID and CreatorUserID fill the session template for
	// scheduled runs. An empty RestaurantID forces dry runs.
	RestaurantID  string `koanf:"restaurant_id"`
	CreatorUserID string `koanf:"creator_user_id"`
}

// Default returns the built-in configuration defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               8094,
			Timeout:            30 * time.Second,
			CORSOrigins:        nil,
			RateLimitPerMinute: 120,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Storage: StorageConfig{
			Path: "/data/convive",
		},
		Matching: matching.DefaultConfig(),
		Scoring: ScoringConfig{
			PersistScores:      true,
			RateLimitPerSecond: 0,
			RateLimitBurst:     1,
			BreakerEnabled:     true,
		},
		Scheduler: SchedulerConfig{
			Enabled:       false,
			Interval:      24 * time.Hour,
			MinCandidates: matching.DefaultMinGroupSize,
		},
		Backup: backup.DefaultConfig(),
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Server.RateLimitPerMinute < 1 {
		return fmt.Errorf("rate limit must be positive, got %d", c.Server.RateLimitPerMinute)
	}
	if err := c.Matching.Validate(); err != nil {
		return fmt.Errorf("matching: %w", err)
	}
	if c.Scoring.RateLimitPerSecond < 0 {
		return fmt.Errorf("scoring rate limit must be non-negative, got %f", c.Scoring.RateLimitPerSecond)
	}
	if c.Scoring.RateLimitPerSecond > 0 && c.Scoring.RateLimitBurst < 1 {
		return fmt.Errorf("scoring rate limit burst must be positive, got %d", c.Scoring.RateLimitBurst)
	}
	if c.Scheduler.Enabled {
		if c.Scheduler.Interval < time.Minute {
			return fmt.Errorf("scheduler interval below 1m: %s", c.Scheduler.Interval)
		}
		if c.Scheduler.MinCandidates < 1 {
			return fmt.Errorf("scheduler min candidates must be positive, got %d", c.Scheduler.MinCandidates)
		}
	}
	if err := c.Backup.Validate(); err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	return nil
}

// ListenAddr returns the host:port the HTTP server binds.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
