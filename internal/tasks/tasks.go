// package tasks implements the catalog reconciliation pipeline.
//
// The core abstraction is SyncEngine, which orchestrates catalog refreshes: fetch, batched enrichment, snapshot diffing, and change log persistence.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/anidex/internal/models"
	"github.com/desertthunder/anidex/internal/services"
	"github.com/desertthunder/anidex/internal/shared"
)

// SyncResult contains all data from a full pipeline run.
type SyncResult struct {
	RunID         string            // Unique identifier for this run
	StartedAt     time.Time         // When the run began
	FinishedAt    time.Time         // When the run completed
	Report        models.DiffReport // Diff against the previous snapshot
	ChangeLog     models.ChangeLog  // Assembled audit record
	Items         []models.EnrichedItem
	Stats         MergeStats // Matched/unmatched enrichment counts
	SnapshotPath  string
	ChangeLogPath string
}

// Counters returns the run's machine-readable counters as ordered key-value pairs.
func (r *SyncResult) Counters() []Counter {
	return []Counter{
		{"added", len(r.Report.Added)},
		{"removed", len(r.Report.Removed)},
		{"status_changes", len(r.Report.Changed)},
		{"enriched", r.Stats.Matched},
		{"not_found", r.Stats.Unmatched},
	}
}

// Counter is one machine-readable run output.
type Counter struct {
	Key   string
	Value int
}

// SnapshotStore defines the persistence boundary for catalog snapshots and change logs.
//
// This abstraction allows for easier testing and decoupling from concrete implementation.
type SnapshotStore interface {
	// LoadPrevious reads the previous snapshot; a missing snapshot yields an empty slice, not an error.
	LoadPrevious() ([]models.EnrichedItem, error)

	// WriteSnapshot overwrites the current snapshot with the enriched items.
	WriteSnapshot(items []models.EnrichedItem) (path string, err error)

	// WriteChangeLog persists one timestamped change log document, append-only across runs.
	WriteChangeLog(changeLog models.ChangeLog, ts time.Time) (path string, err error)
}

// RunArchiver defines the optional run-history layer.
type RunArchiver interface {
	// ArchiveRun persists a completed run and its status changes.
	ArchiveRun(result *SyncResult) error
}

// SyncEngine defines operations for reconciling catalog snapshots.
type SyncEngine interface {
	// Run performs a full refresh: load previous snapshot, fetch catalog, enrich, diff, persist.
	Run(ctx context.Context, progress chan<- ProgressUpdate) (*SyncResult, error)

	// Enrich performs batched lookups and merging over already-fetched items without touching disk.
	Enrich(ctx context.Context, items []models.CatalogItem, progress chan<- ProgressUpdate) ([]models.EnrichedItem, MergeStats, error)

	// Compare diffs two snapshots without any I/O.
	Compare(old, current []models.EnrichedItem) models.DiffReport
}

// PipelineEngine implements SyncEngine.
// Contains dependencies on the catalog and lookup providers plus persistence collaborators.
type PipelineEngine struct {
	catalog  services.CatalogSource
	lookup   services.LookupService
	store    SnapshotStore
	archiver RunArchiver
	logger   *log.Logger

	batchSize  int
	batchPause time.Duration
	cooldown   time.Duration
	maxRetries int
	strategy   JoinStrategy

	now func() time.Time
}

// PipelineOpts contains configuration options for creating a PipelineEngine.
type PipelineOpts struct {
	Catalog    services.CatalogSource
	Lookup     services.LookupService
	Store      SnapshotStore
	Archiver   RunArchiver
	Logger     *log.Logger
	Enrichment shared.EnrichmentConfig
}

// NewPipelineEngine creates a new PipelineEngine with the provided collaborators.
func NewPipelineEngine(opts PipelineOpts) *PipelineEngine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	cfg := opts.Enrichment
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.BatchPauseMS <= 0 {
		cfg.BatchPauseMS = 1500
	}
	if cfg.CooldownMS <= 0 {
		cfg.CooldownMS = 60000
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	strategy, err := ParseJoinStrategy(cfg.JoinStrategy)
	if err != nil {
		opts.Logger.Warnf("unknown join strategy %q, using title", cfg.JoinStrategy)
		strategy = JoinByTitle
	}

	return &PipelineEngine{
		catalog:    opts.Catalog,
		lookup:     opts.Lookup,
		store:      opts.Store,
		archiver:   opts.Archiver,
		logger:     opts.Logger,
		batchSize:  cfg.BatchSize,
		batchPause: cfg.BatchPause(),
		cooldown:   cfg.Cooldown(),
		maxRetries: cfg.MaxRetries,
		strategy:   strategy,
		now:        time.Now,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PipelineEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Run performs a full catalog refresh.
//
// Fatal errors (auth, schema drift, persistence) abort before the snapshot is
// overwritten; per-batch lookup failures only degrade enrichment coverage.
func (e *PipelineEngine) Run(ctx context.Context, progress chan<- ProgressUpdate) (*SyncResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog source not initialized", shared.ErrServiceUnavailable)
	}
	if e.lookup == nil {
		return nil, fmt.Errorf("%w: lookup service not initialized", shared.ErrServiceUnavailable)
	}
	if e.store == nil {
		return nil, fmt.Errorf("%w: snapshot store not initialized", shared.ErrServiceUnavailable)
	}

	result := &SyncResult{
		RunID:     shared.GenerateID(),
		StartedAt: e.now(),
	}

	previous, err := e.store.LoadPrevious()
	if err != nil {
		return nil, fmt.Errorf("failed to load previous snapshot: %w", err)
	}
	e.sendProgress(progress, loadPreviousUpdate(len(previous)))

	e.sendProgress(progress, authCatalogUpdate(e.catalog.Name()))
	if err := e.catalog.Authenticate(ctx); err != nil {
		return nil, fmt.Errorf("catalog authentication: %w", err)
	}

	items, err := e.catalog.FetchCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog fetch: %w", err)
	}
	e.sendProgress(progress, fetchCatalogUpdate(len(items)))

	enriched, stats, err := e.Enrich(ctx, items, progress)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, mergeResultsUpdate(stats.Matched, stats.Unmatched))

	report := e.Compare(previous, enriched)
	e.sendProgress(progress, diffSnapshotsUpdate(len(report.Added), len(report.Removed), len(report.Changed)))

	ts := e.now()
	changeLog := BuildChangeLog(report, ts)

	logPath, err := e.store.WriteChangeLog(changeLog, ts)
	if err != nil {
		return nil, fmt.Errorf("failed to write change log: %w", err)
	}
	e.sendProgress(progress, writeChangeLogUpdate(logPath))

	snapPath, err := e.store.WriteSnapshot(enriched)
	if err != nil {
		return nil, fmt.Errorf("failed to write snapshot: %w", err)
	}
	e.sendProgress(progress, writeSnapshotUpdate(snapPath))

	result.Report = report
	result.ChangeLog = changeLog
	result.Items = enriched
	result.Stats = stats
	result.SnapshotPath = snapPath
	result.ChangeLogPath = logPath
	result.FinishedAt = e.now()

	if e.archiver != nil {
		e.sendProgress(progress, ProgressUpdate{Phase: ArchiveRun, Step: 1, Total: 1, Message: "Archiving run..."})
		if err := e.archiver.ArchiveRun(result); err != nil {
			// Run history is best-effort; the snapshot and change log are already on disk.
			e.logger.Warnf("failed to archive run: %v", err)
		}
	}

	return result, nil
}

// Enrich performs batched lookups for every item title and merges the results.
func (e *PipelineEngine) Enrich(ctx context.Context, items []models.CatalogItem, progress chan<- ProgressUpdate) ([]models.EnrichedItem, MergeStats, error) {
	if e.lookup == nil {
		return nil, MergeStats{}, fmt.Errorf("%w: lookup service not initialized", shared.ErrServiceUnavailable)
	}

	titles := make([]string, len(items))
	for i, item := range items {
		titles[i] = item.Title
	}

	results := e.LookupAll(ctx, titles, progress)
	if e.strategy == JoinByID {
		results = rekeyByID(items, results)
	}

	enriched, stats := Merge(items, results, e.strategy)
	return enriched, stats, nil
}

// Compare diffs two snapshots by stable identity.
func (e *PipelineEngine) Compare(old, current []models.EnrichedItem) models.DiffReport {
	return Diff(old, current)
}
