// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

// Package store persists Convive's durable state in an embedded BadgerDB:
// user accounts and dining profiles, cross-run pair scores, dining
// sessions with their participants, and recent run records. All stores
// share one DB instance and namespace their keys by prefix.
package store

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Open opens (or creates) the BadgerDB at path. An empty path opens an
// in-memory database, which tests use to avoid filesystem fixtures.
func Open(path string) (*badger.DB, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
		opts.SyncWrites = true
		opts.ValueLogFileSize = 64 << 20 // 64MB, plenty for profile/session payloads
	}
	opts.Logger = nil // badger's own logs are noise next to zerolog

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: open badger at %q: %w", path, err)
	}
	return db, nil
}
