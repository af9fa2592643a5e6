// Package tasks orchestrates the catalog reconciliation pipeline with real-time progress reporting.
//
// # Core Operations
//
// The [SyncEngine] interface defines the pipeline operations:
//
//  1. [SyncEngine.Run] : Full snapshot refresh
//     - Loads the previous snapshot from disk
//     - Fetches the raw catalog from the upstream provider
//     - Enriches every title through batched fuzzy lookups
//     - Diffs against the previous snapshot and writes the change log
//
//  2. [SyncEngine.Enrich] : Enrichment over an already-fetched item list
//     - Batches titles against the lookup provider
//     - Merges match results onto items without touching disk
//
//  3. [SyncEngine.Compare] : Pure diff of two snapshots
//
// # Batching and Rate Limits
//
// Lookups run in fixed-size batches, strictly sequentially. Inter-batch
// pacing uses a [rate.Limiter]; a rate-limit response triggers a bounded
// cooldown-and-retry of the same batch with exponential backoff, after which
// the batch fails open (every title maps to no match) and the run continues.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Run Archiving
//
// The optional [RunArchiver] interface enables persistence of run records and
// their status changes. Archiving failures are logged, never fatal.
//
// # Implementation
//
// [PipelineEngine] implements [SyncEngine] with dependencies on:
//   - [services.CatalogSource] : upstream catalog client
//   - [services.LookupService] : batched metadata lookup client
//   - [SnapshotStore] : snapshot and change log persistence
//   - [RunArchiver] : optional run history layer (repositories.RunArchiveAdapter)
package tasks
