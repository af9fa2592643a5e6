// Snapshot diff and change log record types.
package models

// StatusChange represents a status transition detected on a kept item.
type StatusChange struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// DiffReport partitions two catalog snapshots into added, removed, and
// changed sets, keyed by item identity.
//
// TotalOld and TotalNew are the raw input lengths, not deduplicated counts.
type DiffReport struct {
	Added    []EnrichedItem
	Removed  []EnrichedItem
	Changed  []StatusChange
	TotalOld int
	TotalNew int
}

// ItemRef is the minimal {id, title} listing persisted in change logs.
type ItemRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ChangeSummary carries the per-run change counters.
type ChangeSummary struct {
	TotalOld           int `json:"total_old"`
	TotalNew           int `json:"total_new"`
	AddedCount         int `json:"added_count"`
	RemovedCount       int `json:"removed_count"`
	StatusChangesCount int `json:"status_changes_count"`
}

// ChangeLog is the persisted, timestamped audit record for one pipeline run.
type ChangeLog struct {
	Timestamp     string         `json:"timestamp"`
	Summary       ChangeSummary  `json:"summary"`
	Added         []ItemRef      `json:"added"`
	Removed       []ItemRef      `json:"removed"`
	StatusChanges []StatusChange `json:"status_changes"`
}
