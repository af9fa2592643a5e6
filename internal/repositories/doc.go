// Package repositories implements SQLite persistence for run history.
//
// [RunRepository] handles CRUD operations for completed pipeline runs with
// atomic sequence generation for human-readable ordering. Status changes are
// stored per run so transitions can be queried long after the change log
// files rotate out.
//
// Sequence numbers provide stable, human-readable ordering (e.g., run #42)
// independent of UUIDs and timestamps. The [NextSequence] function atomically
// increments per-table sequence counters in dedicated sequence tables.
package repositories
