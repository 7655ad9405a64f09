// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/afrantzeskakis/convive/internal/backup"
)

// Snapshotter writes one database snapshot and prunes old ones.
// Satisfied by *backup.Manager.
type Snapshotter interface {
	Run() (backup.Snapshot, error)
	ApplyRetention() (int, error)
}

// BackupService snapshots the database on a fixed interval. A failed
// snapshot is logged and the next tick proceeds.
type BackupService struct {
	snapshots Snapshotter
	interval  time.Duration
	logger    zerolog.Logger
	name      string
}

// NewBackupService creates the scheduled snapshot service.
func NewBackupService(snapshots Snapshotter, interval time.Duration, logger zerolog.Logger) *BackupService {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &BackupService{
		snapshots: snapshots,
		interval:  interval,
		logger:    logger.With().Str("component", "backup").Logger(),
		name:      "db-backup",
	}
}

// Serve implements suture.Service.
func (s *BackupService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("Snapshot service started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Snapshot service stopping")
			return ctx.Err()
		case <-ticker.C:
			s.runOnce()
		}
	}
}

func (s *BackupService) runOnce() {
	snap, err := s.snapshots.Run()
	if err != nil {
		s.logger.Error().Err(err).Msg("Snapshot failed")
		return
	}
	s.logger.Info().
		Str("path", snap.Path).
		Int64("size_bytes", snap.SizeBytes).
		Msg("Snapshot complete")

	deleted, err := s.snapshots.ApplyRetention()
	if err != nil {
		s.logger.Error().Err(err).Msg("Snapshot retention failed")
		return
	}
	if deleted > 0 {
		s.logger.Info().Int("deleted", deleted).Msg("Old snapshots pruned")
	}
}

// String names the service in supervisor logs.
func (s *BackupService) String() string {
	return s.name
}
