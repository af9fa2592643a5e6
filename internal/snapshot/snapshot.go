// package snapshot persists catalog snapshots and change logs as JSON files.
//
// The snapshot file is overwritten atomically on every run; change logs are
// append-only, one timestamped file per run.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/anidex/internal/models"
	"github.com/desertthunder/anidex/internal/shared"
)

// Store implements [tasks.SnapshotStore] on the local filesystem.
type Store struct {
	snapshotPath string
	logDir       string
	logger       *log.Logger
}

// NewStore creates a Store from the snapshot configuration section.
func NewStore(cfg shared.SnapshotConfig, logger *log.Logger) *Store {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if cfg.Path == "" {
		cfg.Path = "anime.json"
	}
	if cfg.LogDir == "" {
		cfg.LogDir = "data_change_logs"
	}
	return &Store{snapshotPath: cfg.Path, logDir: cfg.LogDir, logger: logger}
}

// SnapshotPath returns the configured snapshot file location.
func (s *Store) SnapshotPath() string {
	return s.snapshotPath
}

// LoadPrevious reads the previous snapshot from disk.
//
// A missing snapshot file is a first run, not an error: it yields an empty
// slice so the whole catalog diffs as added.
func (s *Store) LoadPrevious() ([]models.EnrichedItem, error) {
	data, err := os.ReadFile(s.snapshotPath)
	if os.IsNotExist(err) {
		s.logger.Debugf("no previous snapshot at %s", s.snapshotPath)
		return []models.EnrichedItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var items []models.EnrichedItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: snapshot is not valid JSON: %v", shared.ErrInvalidInput, err)
	}
	return items, nil
}

// WriteSnapshot replaces the snapshot file with the given items.
//
// Writes go through a temp file and rename so a crash mid-write never leaves
// a truncated snapshot behind.
func (s *Store) WriteSnapshot(items []models.EnrichedItem) (string, error) {
	if items == nil {
		items = []models.EnrichedItem{}
	}

	data, err := shared.MarshalJSON(items, true)
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	dir := filepath.Dir(s.snapshotPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return "", fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to close snapshot: %w", err)
	}

	if err := os.Rename(tmpName, s.snapshotPath); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to replace snapshot: %w", err)
	}

	s.logger.Debugf("wrote %d entries to %s", len(items), s.snapshotPath)
	return s.snapshotPath, nil
}

// WriteChangeLog persists one change log document named after the run timestamp.
func (s *Store) WriteChangeLog(changeLog models.ChangeLog, ts time.Time) (string, error) {
	if err := os.MkdirAll(s.logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create change log directory: %w", err)
	}

	data, err := shared.MarshalJSON(changeLog, true)
	if err != nil {
		return "", fmt.Errorf("failed to marshal change log: %w", err)
	}

	path := filepath.Join(s.logDir, shared.ChangeLogName(ts))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write change log: %w", err)
	}

	s.logger.Debugf("wrote change log to %s", path)
	return path, nil
}

// ListChangeLogs returns the change log filenames on disk, oldest first.
func (s *Store) ListChangeLogs() ([]string, error) {
	entries, err := os.ReadDir(s.logDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read change log directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if name := entry.Name(); filepath.Ext(name) == ".json" {
			names = append(names, name)
		}
	}
	return names, nil
}
