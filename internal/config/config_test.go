// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

package config

import (
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	t.Parallel()

	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestListenAddr(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if got := cfg.ListenAddr(); got != "0.0.0.0:8094" {
		t.Errorf("ListenAddr = %q, want 0.0.0.0:8094", got)
	}

	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 9000
	if got := cfg.ListenAddr(); got != "127.0.0.1:9000" {
		t.Errorf("ListenAddr = %q, want 127.0.0.1:9000", got)
	}
}

func TestValidateRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"zero timeout", func(c *Config) { c.Server.Timeout = 0 }},
		{"zero rate limit", func(c *Config) { c.Server.RateLimitPerMinute = 0 }},
		{"bad matching sizes", func(c *Config) { c.Matching.Sizes.Min = 0 }},
		{"negative scoring rate", func(c *Config) { c.Scoring.RateLimitPerSecond = -1 }},
		{"rate without burst", func(c *Config) {
			c.Scoring.RateLimitPerSecond = 10
			c.Scoring.RateLimitBurst = 0
		}},
		{"scheduler interval too short", func(c *Config) {
			c.Scheduler.Enabled = true
			c.Scheduler.Interval = time.Second
		}},
		{"scheduler zero candidates", func(c *Config) {
			c.Scheduler.Enabled = true
			c.Scheduler.MinCandidates = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestSchedulerSettingsIgnoredWhenDisabled(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Scheduler.Enabled = false
	cfg.Scheduler.Interval = 0
	cfg.Scheduler.MinCandidates = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil for disabled scheduler", err)
	}
}

func TestEnvTransform(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env  string
		want string
	}{
		{"CONVIVE_SERVER_PORT", "server.port"},
		{"CONVIVE_SERVER_RATE_LIMIT_PER_MINUTE", "server.rate_limit_per_minute"},
		{"CONVIVE_LOGGING_LEVEL", "logging.level"},
		{"CONVIVE_STORAGE_PATH", "storage.path"},
		{"CONVIVE_MATCHING_SIZES_MIN", "matching.sizes.min"},
		{"CONVIVE_MATCHING_SIZES_STANDARD_MAX", "matching.sizes.standard_max"},
		{"CONVIVE_MATCHING_SKIP_OPTIMIZATION", "matching.skip_optimization"},
		{"CONVIVE_SCORING_PERSIST_SCORES", "scoring.persist_scores"},
		{"CONVIVE_SCHEDULER_INTERVAL", "scheduler.interval"},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Parallel()

			if got := envTransform(tt.env); got != tt.want {
				t.Errorf("envTransform(%s) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CONVIVE_SERVER_PORT", "9100")
	t.Setenv("CONVIVE_LOGGING_LEVEL", "debug")
	t.Setenv("CONVIVE_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv(ConfigPathEnvVar, "/nonexistent/convive.yaml")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("Port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logging.Level)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[0] != want[0] || cfg.Server.CORSOrigins[1] != want[1] {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
	// Untouched keys keep their defaults.
	if cfg.Server.Timeout != 30*time.Second {
		t.Errorf("Timeout = %s, want default 30s", cfg.Server.Timeout)
	}
}

func TestLoadRejectsInvalidEnvironment(t *testing.T) {
	t.Setenv("CONVIVE_SERVER_PORT", "0")
	t.Setenv(ConfigPathEnvVar, "/nonexistent/convive.yaml")

	if _, err := Load(); err == nil {
		t.Error("Load() = nil error, want validation failure")
	}
}
