// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/afrantzeskakis/convive/internal/matching"
)

const runKeyPrefix = "run:"

// ErrRunNotFound is returned when a run ID does not resolve.
var ErrRunNotFound = errors.New("store: run not found")

// RunStore keeps the results of recent group formation runs so the API
// can serve them after the batch finishes.
type RunStore struct {
	db *badger.DB
}

// NewRunStore creates a run store on the shared DB.
func NewRunStore(db *badger.DB) *RunStore {
	return &RunStore{db: db}
}

// Put stores a run result under its run ID.
func (s *RunStore) Put(_ context.Context, result *matching.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("store: marshal run: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(runKeyPrefix+result.RunID), data)
	})
}

// Get retrieves a run result by ID.
func (s *RunStore) Get(_ context.Context, runID string) (*matching.Result, error) {
	var result matching.Result
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(runKeyPrefix + runID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrRunNotFound
		}
		if err != nil {
			return fmt.Errorf("store: get run: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &result)
		})
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// List returns all stored runs, newest data last (badger iterates keys
// in byte order, and run IDs are random, so callers sort by CompletedAt
// if order matters).
func (s *RunStore) List(_ context.Context) ([]*matching.Result, error) {
	var results []*matching.Result
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(runKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var result matching.Result
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &result)
			})
			if err != nil {
				return err
			}
			results = append(results, &result)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	return results, nil
}
