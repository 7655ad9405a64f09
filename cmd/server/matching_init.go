// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

package main

import (
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/afrantzeskakis/convive/internal/config"
	"github.com/afrantzeskakis/convive/internal/matching"
	"github.com/afrantzeskakis/convive/internal/matching/scoring"
	"github.com/afrantzeskakis/convive/internal/store"
)

// MatchingComponents holds the storage and matching stack.
type MatchingComponents struct {
	DB       *badger.DB
	Users    *store.UserStore
	Sessions *store.SessionStore
	Runs     *store.RunStore
	Provider matching.ScoreProvider
	Engine   *matching.Engine
}

// Close releases the underlying store.
func (c *MatchingComponents) Close() error {
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}

// initMatching opens the store and assembles the score provider chain
// and the matching engine.
//
// The provider chain, innermost first:
//
//	questionnaire -> persistent cache -> circuit breaker -> rate limiter -> memoizer
//
// The memoizer sits outermost so each run pays at most one walk through
// the chain per pair.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initMatching(cfg *config.Config, logger zerolog.Logger) (*MatchingComponents, error) {
	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	users := store.NewUserStore(db)
	sessions := store.NewSessionStore(db)
	runs := store.NewRunStore(db)

	var provider matching.ScoreProvider = scoring.NewQuestionnaireProvider(users)

	if cfg.Scoring.PersistScores {
		provider = scoring.NewPersistentProvider(provider, store.NewScoreStore(db), logger)
		logger.Info().Msg("Persistent pair score cache enabled")
	}
	if cfg.Scoring.BreakerEnabled {
		provider = scoring.NewBreakerProvider(provider, scoring.DefaultBreakerConfig(), logger)
	}
	if cfg.Scoring.RateLimitPerSecond > 0 {
		provider = scoring.NewRateLimitedProvider(provider, cfg.Scoring.RateLimitPerSecond, cfg.Scoring.RateLimitBurst)
		logger.Info().
			Float64("per_second", cfg.Scoring.RateLimitPerSecond).
			Int("burst", cfg.Scoring.RateLimitBurst).
			Msg("Score computation rate limit enabled")
	}
	provider = scoring.NewMemoizingProvider(provider)

	engine, err := matching.NewEngine(cfg.Matching, provider, users, sessions, logger)
	if err != nil {
		closeErr := db.Close()
		if closeErr != nil {
			logger.Error().Err(closeErr).Msg("Error closing store after engine init failure")
		}
		return nil, fmt.Errorf("create engine: %w", err)
	}

	return &MatchingComponents{
		DB:       db,
		Users:    users,
		Sessions: sessions,
		Runs:     runs,
		Provider: provider,
		Engine:   engine,
	}, nil
}
