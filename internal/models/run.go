package models

import (
	"fmt"
	"time"
)

// RunRecord is the persistent entity for one completed pipeline run.
//
// Implements [Model]. Counters mirror the run's machine-readable outputs:
// added/removed/changed from the diff, enriched/not-found from the merge.
type RunRecord struct {
	id         string
	sequence   int
	startedAt  time.Time
	finishedAt *time.Time
	totalOld   int
	totalNew   int
	added      int
	removed    int
	changed    int
	enriched   int
	notFound   int
	createdAt  time.Time
	updatedAt  time.Time
}

// NewRunRecord creates a RunRecord for a run that started at the given time.
func NewRunRecord(sequence int, startedAt time.Time) *RunRecord {
	now := time.Now()
	return &RunRecord{
		sequence:  sequence,
		startedAt: startedAt,
		createdAt: now,
		updatedAt: now,
	}
}

func (r *RunRecord) ID() string           { return r.id }
func (r *RunRecord) Sequence() int        { return r.sequence }
func (r *RunRecord) StartedAt() time.Time { return r.startedAt }
func (r *RunRecord) FinishedAt() *time.Time { return r.finishedAt }
func (r *RunRecord) TotalOld() int        { return r.totalOld }
func (r *RunRecord) TotalNew() int        { return r.totalNew }
func (r *RunRecord) Added() int           { return r.added }
func (r *RunRecord) Removed() int         { return r.removed }
func (r *RunRecord) Changed() int         { return r.changed }
func (r *RunRecord) Enriched() int        { return r.enriched }
func (r *RunRecord) NotFound() int        { return r.notFound }
func (r *RunRecord) CreatedAt() time.Time { return r.createdAt }
func (r *RunRecord) UpdatedAt() time.Time { return r.updatedAt }

func (r *RunRecord) SetID(id string)             { r.id = id }
func (r *RunRecord) SetUpdatedAt(t time.Time)    { r.updatedAt = t }
func (r *RunRecord) SetCreatedAt(t time.Time)    { r.createdAt = t }
func (r *RunRecord) SetFinishedAt(t *time.Time)  { r.finishedAt = t }

// SetCounters records the run's change and enrichment counters.
func (r *RunRecord) SetCounters(totalOld, totalNew, added, removed, changed, enriched, notFound int) {
	r.totalOld = totalOld
	r.totalNew = totalNew
	r.added = added
	r.removed = removed
	r.changed = changed
	r.enriched = enriched
	r.notFound = notFound
}

// Validate checks the record's data before persistence.
func (r *RunRecord) Validate() error {
	if r.startedAt.IsZero() {
		return fmt.Errorf("run record missing start time")
	}
	for _, c := range []int{r.totalOld, r.totalNew, r.added, r.removed, r.changed, r.enriched, r.notFound} {
		if c < 0 {
			return fmt.Errorf("run record has negative counter")
		}
	}
	return nil
}
