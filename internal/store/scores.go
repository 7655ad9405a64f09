// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"

	"github.com/afrantzeskakis/convive/internal/matching"
	"github.com/afrantzeskakis/convive/internal/matching/scoring"
)

const scoreKeyPrefix = "score:"

// ScoreStore persists pair compatibility scores across runs. Scores are
// keyed by the lexicographically ordered pair so both orderings hit the
// same entry.
type ScoreStore struct {
	db *badger.DB
}

var _ scoring.PairScoreCache = (*ScoreStore)(nil)

// NewScoreStore creates a score store on the shared DB.
func NewScoreStore(db *badger.DB) *ScoreStore {
	return &ScoreStore{db: db}
}

func scoreKey(a, b matching.UserID) []byte {
	if b < a {
		a, b = b, a
	}
	return []byte(scoreKeyPrefix + string(a) + ":" + string(b))
}

// GetScore returns the stored score for a pair, with found=false on a
// miss.
func (s *ScoreStore) GetScore(_ context.Context, a, b matching.UserID) (float64, bool, error) {
	var score float64
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(scoreKey(a, b))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			score, err = strconv.ParseFloat(string(val), 64)
			return err
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("store: get score: %w", err)
	}
	return score, true, nil
}

// PutScore stores the score for a pair.
func (s *ScoreStore) PutScore(_ context.Context, a, b matching.UserID, score float64) error {
	val := strconv.FormatFloat(score, 'f', -1, 64)
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(scoreKey(a, b), []byte(val))
	})
	if err != nil {
		return fmt.Errorf("store: put score: %w", err)
	}
	return nil
}
