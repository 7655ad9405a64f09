// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

// Package backup snapshots the embedded BadgerDB to compressed archive
// files and prunes old snapshots by count and age. Snapshots are full
// database dumps; restoring one replays it into an empty database.
package backup

import (
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// snapshot file naming: convive-20060102T150405.bak.gz
const (
	snapshotPrefix  = "convive-"
	snapshotSuffix  = ".bak.gz"
	snapshotTimeFmt = "20060102T150405"
)

// Config controls the snapshot manager.
type Config struct {
	// Enabled turns scheduled snapshots on.
	Enabled bool `koanf:"enabled"`

	// Dir is where snapshot archives are written.
	Dir string `koanf:"dir"`

	// Interval is the time between scheduled snapshots.
	Interval time.Duration `koanf:"interval"`

	// MaxCount caps retained snapshots; 0 means unlimited.
	MaxCount int `koanf:"max_count"`

	// MaxAge expires snapshots older than this; 0 means no age limit.
	// The newest snapshot is always kept regardless of age.
	MaxAge time.Duration `koanf:"max_age"`
}

// DefaultConfig returns production snapshot settings.
func DefaultConfig() Config {
	return Config{
		Enabled:  false,
		Dir:      "/data/convive-backups",
		Interval: 24 * time.Hour,
		MaxCount: 14,
		MaxAge:   90 * 24 * time.Hour,
	}
}

// Validate checks the snapshot settings. Only enabled managers are
// validated; a disabled config is never consulted.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Dir == "" {
		return fmt.Errorf("backup dir must be set")
	}
	if c.Interval < time.Minute {
		return fmt.Errorf("backup interval below 1m: %s", c.Interval)
	}
	if c.MaxCount < 0 {
		return fmt.Errorf("backup max count must be non-negative, got %d", c.MaxCount)
	}
	if c.MaxAge < 0 {
		return fmt.Errorf("backup max age must be non-negative, got %s", c.MaxAge)
	}
	return nil
}

// Snapshot describes one archive on disk.
type Snapshot struct {
	Path      string
	CreatedAt time.Time
	SizeBytes int64
}

// Manager writes and prunes snapshots of one BadgerDB.
type Manager struct {
	db     *badger.DB
	cfg    Config
	logger zerolog.Logger

	// now is swapped in tests to pin retention decisions.
	now func() time.Time
}

// NewManager creates a snapshot manager for the given database.
func NewManager(db *badger.DB, cfg Config, logger zerolog.Logger) (*Manager, error) {
	if db == nil {
		return nil, fmt.Errorf("backup: nil database")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("backup: %w", err)
	}
	return &Manager{db: db, cfg: cfg, logger: logger, now: time.Now}, nil
}

// Run writes one full snapshot and returns its metadata. A failed write
// removes the partial file.
func (m *Manager) Run() (Snapshot, error) {
	if err := os.MkdirAll(m.cfg.Dir, 0o750); err != nil {
		return Snapshot{}, fmt.Errorf("backup: create dir: %w", err)
	}

	createdAt := m.now().UTC()
	name := snapshotPrefix + createdAt.Format(snapshotTimeFmt) + snapshotSuffix
	path := filepath.Join(m.cfg.Dir, name)

	if err := m.writeSnapshot(path); err != nil {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			m.logger.Warn().Err(rmErr).Str("path", path).Msg("Failed to remove partial snapshot")
		}
		return Snapshot{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("backup: stat snapshot: %w", err)
	}

	m.logger.Info().
		Str("path", path).
		Int64("size_bytes", info.Size()).
		Msg("Snapshot written")
	return Snapshot{Path: path, CreatedAt: createdAt, SizeBytes: info.Size()}, nil
}

func (m *Manager) writeSnapshot(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("backup: create snapshot file: %w", err)
	}

	gz := gzip.NewWriter(f)
	if _, err := m.db.Backup(gz, 0); err != nil {
		gz.Close()
		f.Close()
		return fmt.Errorf("backup: dump database: %w", err)
	}
	if err := gz.Close(); err != nil {
		f.Close()
		return fmt.Errorf("backup: flush compressor: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("backup: close snapshot file: %w", err)
	}
	return nil
}

// List returns all snapshots in the backup dir, newest first. Files not
// matching the snapshot naming scheme are ignored.
func (m *Manager) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(m.cfg.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("backup: read dir: %w", err)
	}

	var snapshots []Snapshot
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		createdAt, ok := parseSnapshotName(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		snapshots = append(snapshots, Snapshot{
			Path:      filepath.Join(m.cfg.Dir, entry.Name()),
			CreatedAt: createdAt,
			SizeBytes: info.Size(),
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
	})
	return snapshots, nil
}

func parseSnapshotName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, snapshotSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, snapshotPrefix), snapshotSuffix)
	t, err := time.Parse(snapshotTimeFmt, stamp)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// Restore replays a snapshot archive into the database. The target
// should be empty; existing keys are overwritten by snapshot contents.
func Restore(db *badger.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("backup: open snapshot: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("backup: open compressor: %w", err)
	}
	defer gz.Close()

	if err := db.Load(gz, 16); err != nil {
		return fmt.Errorf("backup: load snapshot: %w", err)
	}
	return nil
}
