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
	"github.com/afrantzeskakis/convive/internal/matching/scoring"
)

// Key prefixes for BadgerDB storage.
const (
	userKeyPrefix    = "user:"
	profileKeyPrefix = "profile:"
)

// userRecord is the stored form of a user account plus questionnaire.
type userRecord struct {
	ID          string          `json:"id"`
	DisplayName string          `json:"display_name"`
	Profile     scoring.Profile `json:"profile"`
}

// UserStore persists user accounts and their dining profiles. It backs
// both the engine's user directory and the questionnaire provider's
// profile source.
type UserStore struct {
	db *badger.DB
}

var (
	_ matching.UserDirectory = (*UserStore)(nil)
	_ scoring.ProfileSource  = (*UserStore)(nil)
)

// NewUserStore creates a user store on the shared DB.
func NewUserStore(db *badger.DB) *UserStore {
	return &UserStore{db: db}
}

// Put stores a user and profile under the user's ID.
func (s *UserStore) Put(_ context.Context, user matching.User, profile scoring.Profile) error {
	profile.UserID = user.ID
	data, err := json.Marshal(userRecord{
		ID:          string(user.ID),
		DisplayName: user.DisplayName,
		Profile:     profile,
	})
	if err != nil {
		return fmt.Errorf("store: marshal user: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(userKeyPrefix+string(user.ID)), data)
	})
}

// GetUser resolves a user ID. The boolean is false for unknown IDs; only
// storage failures return an error.
func (s *UserStore) GetUser(_ context.Context, id matching.UserID) (matching.User, bool, error) {
	rec, found, err := s.get(id)
	if err != nil || !found {
		return matching.User{}, false, err
	}
	return matching.User{ID: matching.UserID(rec.ID), DisplayName: rec.DisplayName}, true, nil
}

// GetProfile returns the dining profile for a user.
func (s *UserStore) GetProfile(_ context.Context, id matching.UserID) (scoring.Profile, bool, error) {
	rec, found, err := s.get(id)
	if err != nil || !found {
		return scoring.Profile{}, false, err
	}
	return rec.Profile, true, nil
}

// List returns all stored user IDs. Used by the scheduled matcher to
// build its candidate pool.
func (s *UserStore) List(_ context.Context) ([]matching.UserID, error) {
	var ids []matching.UserID
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(userKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().Key()
			ids = append(ids, matching.UserID(key[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: list users: %w", err)
	}
	return ids, nil
}

// Delete removes a user.
func (s *UserStore) Delete(_ context.Context, id matching.UserID) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(userKeyPrefix + string(id)))
	})
}

func (s *UserStore) get(id matching.UserID) (userRecord, bool, error) {
	var rec userRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userKeyPrefix + string(id)))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return userRecord{}, false, nil
	}
	if err != nil {
		return userRecord{}, false, fmt.Errorf("store: get user %s: %w", id, err)
	}
	return rec, true, nil
}
