// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/afrantzeskakis/convive/internal/matching"
)

// Key prefixes for BadgerDB storage.
const (
	dinnerKeyPrefix      = "dinner:"
	participantKeyPrefix = "participant:"
)

// ErrSessionNotFound is returned when a session ID does not resolve.
var ErrSessionNotFound = errors.New("store: session not found")

// Session is a persisted dining session created from one finalized
// group.
type Session struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Date            time.Time `json:"date"`
	RestaurantID    string    `json:"restaurant_id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	MaxParticipants int       `json:"max_participants"`
	CreatorUserID   string    `json:"creator_user_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// Participant is one user's confirmed seat at a session.
type Participant struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	JoinedAt  time.Time `json:"joined_at"`
}

// SessionStore persists dining sessions and their participants. It is
// the engine's session writer.
type SessionStore struct {
	db *badger.DB
}

var _ matching.SessionWriter = (*SessionStore)(nil)

// NewSessionStore creates a session store on the shared DB.
func NewSessionStore(db *badger.DB) *SessionStore {
	return &SessionStore{db: db}
}

// CreateSession persists a new session and returns its ID.
func (s *SessionStore) CreateSession(_ context.Context, spec matching.SessionSpec, maxParticipants int) (string, error) {
	session := Session{
		ID:              uuid.New().String(),
		Title:           spec.Title,
		Date:            spec.Date,
		RestaurantID:    spec.RestaurantID,
		StartTime:       spec.StartTime,
		EndTime:         spec.EndTime,
		MaxParticipants: maxParticipants,
		CreatorUserID:   string(spec.CreatorUserID),
		CreatedAt:       time.Now(),
	}

	data, err := json.Marshal(session)
	if err != nil {
		return "", fmt.Errorf("store: marshal session: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(dinnerKeyPrefix+session.ID), data)
	})
	if err != nil {
		return "", fmt.Errorf("store: create session: %w", err)
	}
	return session.ID, nil
}

// AddParticipant registers a user on an existing session.
func (s *SessionStore) AddParticipant(_ context.Context, sessionID string, userID matching.UserID, status string) error {
	participant := Participant{
		SessionID: sessionID,
		UserID:    string(userID),
		Status:    status,
		JoinedAt:  time.Now(),
	}
	data, err := json.Marshal(participant)
	if err != nil {
		return fmt.Errorf("store: marshal participant: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(dinnerKeyPrefix + sessionID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("store: check session: %w", err)
		}

		key := []byte(participantKeyPrefix + sessionID + ":" + string(userID))
		return txn.Set(key, data)
	})
}

// GetSession retrieves a session by ID.
func (s *SessionStore) GetSession(_ context.Context, id string) (*Session, error) {
	var session Session
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(dinnerKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("store: get session: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &session)
		})
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Participants lists all participants of a session.
func (s *SessionStore) Participants(_ context.Context, sessionID string) ([]Participant, error) {
	var participants []Participant
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(participantKeyPrefix + sessionID + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var p Participant
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			})
			if err != nil {
				return err
			}
			participants = append(participants, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: list participants: %w", err)
	}
	return participants, nil
}
