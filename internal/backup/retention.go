// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

package backup

import (
	"fmt"
	"os"
)

// ApplyRetention deletes snapshots beyond MaxCount and older than
// MaxAge. The newest snapshot always survives. Returns the number of
// snapshots deleted.
func (m *Manager) ApplyRetention() (int, error) {
	snapshots, err := m.List()
	if err != nil {
		return 0, err
	}
	if len(snapshots) <= 1 {
		return 0, nil
	}

	now := m.now().UTC()
	deleted := 0
	// snapshots are newest-first; index 0 is never a candidate.
	for i, snap := range snapshots[1:] {
		rank := i + 2 // 1-based position including the newest
		expired := m.cfg.MaxAge > 0 && now.Sub(snap.CreatedAt) > m.cfg.MaxAge
		excess := m.cfg.MaxCount > 0 && rank > m.cfg.MaxCount
		if !expired && !excess {
			continue
		}
		if err := os.Remove(snap.Path); err != nil {
			return deleted, fmt.Errorf("backup: delete snapshot %s: %w", snap.Path, err)
		}
		m.logger.Info().
			Str("path", snap.Path).
			Bool("expired", expired).
			Bool("excess", excess).
			Msg("Snapshot pruned")
		deleted++
	}
	return deleted, nil
}
