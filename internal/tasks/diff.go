package tasks

import (
	"time"

	"github.com/desertthunder/anidex/internal/models"
)

// indexByID builds an identity-keyed map; later duplicates overwrite earlier
// ones, matching the uniqueness invariant on snapshot ids.
func indexByID(items []models.EnrichedItem) map[string]models.EnrichedItem {
	index := make(map[string]models.EnrichedItem, len(items))
	for _, item := range items {
		index[item.ID] = item
	}
	return index
}

// Diff compares two catalog snapshots by stable identity.
//
// Added and Removed keep the input order of the snapshot they came from.
// A status change is reported only when both sides carry a non-empty status
// and they differ: an item gaining or losing its enrichment entirely is not a
// change. TotalOld and TotalNew are the raw input lengths. Pure function;
// neither input is mutated.
func Diff(old, current []models.EnrichedItem) models.DiffReport {
	oldByID := indexByID(old)
	currentByID := indexByID(current)

	report := models.DiffReport{
		TotalOld: len(old),
		TotalNew: len(current),
	}

	for _, item := range current {
		if _, kept := oldByID[item.ID]; !kept {
			report.Added = append(report.Added, item)
		}
	}

	for _, item := range old {
		if _, kept := currentByID[item.ID]; !kept {
			report.Removed = append(report.Removed, item)
		}
	}

	for _, item := range current {
		oldItem, kept := oldByID[item.ID]
		if !kept {
			continue
		}

		oldStatus := oldItem.Status()
		newStatus := item.Status()
		if oldStatus != "" && newStatus != "" && oldStatus != newStatus {
			report.Changed = append(report.Changed, models.StatusChange{
				ID:        item.ID,
				Title:     item.Title,
				OldStatus: oldStatus,
				NewStatus: newStatus,
			})
		}
	}

	return report
}

// BuildChangeLog assembles the persisted audit record for a diff.
//
// Listings carry only {id, title} per item; status changes are kept in full.
// Slices are always non-nil so the persisted JSON uses [] rather than null.
func BuildChangeLog(report models.DiffReport, ts time.Time) models.ChangeLog {
	added := make([]models.ItemRef, 0, len(report.Added))
	for _, item := range report.Added {
		added = append(added, models.ItemRef{ID: item.ID, Title: item.Title})
	}

	removed := make([]models.ItemRef, 0, len(report.Removed))
	for _, item := range report.Removed {
		removed = append(removed, models.ItemRef{ID: item.ID, Title: item.Title})
	}

	changes := report.Changed
	if changes == nil {
		changes = []models.StatusChange{}
	}

	return models.ChangeLog{
		Timestamp: ts.Format(time.RFC3339),
		Summary: models.ChangeSummary{
			TotalOld:           report.TotalOld,
			TotalNew:           report.TotalNew,
			AddedCount:         len(report.Added),
			RemovedCount:       len(report.Removed),
			StatusChangesCount: len(report.Changed),
		},
		Added:         added,
		Removed:       removed,
		StatusChanges: changes,
	}
}
