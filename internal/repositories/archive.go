package repositories

import (
	"fmt"

	"github.com/desertthunder/anidex/internal/models"
	"github.com/desertthunder/anidex/internal/tasks"
)

// RunArchiveAdapter implements [tasks.RunArchiver] using RunRepository.
//
// Persists one row per completed pipeline run plus its status transitions so
// run history survives change log rotation.
type RunArchiveAdapter struct {
	repo *RunRepository
}

// NewRunArchiveAdapter creates a new RunArchiveAdapter with the given repository
func NewRunArchiveAdapter(repo *RunRepository) *RunArchiveAdapter {
	return &RunArchiveAdapter{repo: repo}
}

// ArchiveRun persists a completed run and its status changes.
func (a *RunArchiveAdapter) ArchiveRun(result *tasks.SyncResult) error {
	record := models.NewRunRecord(0, result.StartedAt)
	record.SetID(result.RunID)
	record.SetCounters(
		result.Report.TotalOld,
		result.Report.TotalNew,
		len(result.Report.Added),
		len(result.Report.Removed),
		len(result.Report.Changed),
		result.Stats.Matched,
		result.Stats.Unmatched,
	)
	if !result.FinishedAt.IsZero() {
		finished := result.FinishedAt
		record.SetFinishedAt(&finished)
	}

	if err := a.repo.Create(record); err != nil {
		return fmt.Errorf("failed to archive run: %w", err)
	}

	if err := a.repo.AddStatusChanges(record.ID(), result.Report.Changed); err != nil {
		return fmt.Errorf("failed to archive status changes: %w", err)
	}

	return nil
}
