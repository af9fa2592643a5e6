package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	LoadPrevious Phase = iota
	AuthCatalog
	FetchCatalog
	LookupBatch
	MergeResults
	DiffSnapshots
	WriteSnapshot
	WriteChangeLog
	ArchiveRun
)

func (p Phase) String() string {
	switch p {
	case LoadPrevious:
		return "load_previous"
	case AuthCatalog:
		return "auth_catalog"
	case FetchCatalog:
		return "fetch_catalog"
	case LookupBatch:
		return "lookup_batch"
	case MergeResults:
		return "merge_results"
	case DiffSnapshots:
		return "diff_snapshots"
	case WriteSnapshot:
		return "write_snapshot"
	case WriteChangeLog:
		return "write_change_log"
	case ArchiveRun:
		return "archive_run"
	default:
		return ""
	}
}

func loadPreviousUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadPrevious,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Loaded %d previous entries", count),
	}
}

func authCatalogUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AuthCatalog,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Authenticating with %s...", name),
	}
}

func fetchCatalogUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchCatalog,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetched %d series", count),
	}
}

func lookupBatchUpdate(batch, totalBatches, size int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LookupBatch,
		Step:    batch,
		Total:   totalBatches,
		Message: fmt.Sprintf("Batch %d/%d (%d titles)...", batch, totalBatches, size),
	}
}

func lookupRetryUpdate(batch, totalBatches, attempt int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LookupBatch,
		Step:    batch,
		Total:   totalBatches,
		Message: fmt.Sprintf("Rate limited on batch %d/%d, retry %d...", batch, totalBatches, attempt),
	}
}

func mergeResultsUpdate(matched, unmatched int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MergeResults,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Enriched %d series (%d not found)", matched, unmatched),
	}
}

func diffSnapshotsUpdate(added, removed, changed int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DiffSnapshots,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Diff: %d added, %d removed, %d status changes", added, removed, changed),
	}
}

func writeSnapshotUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteSnapshot,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Snapshot written to %s", path),
	}
}

func writeChangeLogUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteChangeLog,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Change log written to %s", path),
	}
}
