package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/anidex/internal/models"
	"github.com/desertthunder/anidex/internal/shared"
)

// RunRepository implements [models.Repository] for [models.RunRecord] persistence.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new [RunRepository] with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run into the database with generated ID and sequence.
// If the record already carries an ID it is kept.
func (r *RunRepository) Create(run *models.RunRecord) error {
	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	if run.ID() == "" {
		run.SetID(shared.GenerateID())
	}

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO runs (id, sequence, started_at, finished_at, total_old, total_new,
			added_count, removed_count, changed_count, enriched_count, not_found_count,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, run.ID(), sequence, run.StartedAt(), nullableTime(run.FinishedAt()),
		run.TotalOld(), run.TotalNew(), run.Added(), run.Removed(), run.Changed(),
		run.Enriched(), run.NotFound(), run.CreatedAt(), run.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID
func (r *RunRepository) Get(id string) (*models.RunRecord, error) {
	query := `
		SELECT id, sequence, started_at, finished_at, total_old, total_new,
			added_count, removed_count, changed_count, enriched_count, not_found_count,
			created_at, updated_at
		FROM runs
		WHERE id = ?
	`

	run, err := scanRun(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	return run, nil
}

// Update modifies an existing run in the database
func (r *RunRepository) Update(run *models.RunRecord) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE runs
		SET finished_at = ?, total_old = ?, total_new = ?, added_count = ?,
			removed_count = ?, changed_count = ?, enriched_count = ?, not_found_count = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, nullableTime(run.FinishedAt()), run.TotalOld(), run.TotalNew(),
		run.Added(), run.Removed(), run.Changed(), run.Enriched(), run.NotFound(), now, run.ID())
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found: %s", run.ID())
	}

	return nil
}

// Delete removes a run and its status changes by ID
func (r *RunRepository) Delete(id string) error {
	if _, err := r.db.Exec("DELETE FROM status_changes WHERE run_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete status changes: %w", err)
	}

	result, err := r.db.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found: %s", id)
	}

	return nil
}

// List retrieves runs matching the given criteria, most recent first.
//
// Supported criteria: "limit" (int) caps the number of rows returned.
func (r *RunRepository) List(criteria map[string]any) ([]*models.RunRecord, error) {
	query := `
		SELECT id, sequence, started_at, finished_at, total_old, total_new,
			added_count, removed_count, changed_count, enriched_count, not_found_count,
			created_at, updated_at
		FROM runs
		ORDER BY sequence DESC
	`

	args := []any{}
	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// StatusChanges retrieves the status transitions recorded for a run, in insertion order.
func (r *RunRepository) StatusChanges(runID string) ([]models.StatusChange, error) {
	query := `
		SELECT series_id, title, old_status, new_status
		FROM status_changes
		WHERE run_id = ?
		ORDER BY id ASC
	`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query status changes: %w", err)
	}
	defer rows.Close()

	var changes []models.StatusChange
	for rows.Next() {
		var change models.StatusChange
		if err := rows.Scan(&change.ID, &change.Title, &change.OldStatus, &change.NewStatus); err != nil {
			return nil, fmt.Errorf("failed to scan status change: %w", err)
		}
		changes = append(changes, change)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return changes, nil
}

// AddStatusChanges records a run's status transitions in one transaction.
func (r *RunRepository) AddStatusChanges(runID string, changes []models.StatusChange) error {
	if len(changes) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO status_changes (run_id, series_id, title, old_status, new_status)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, change := range changes {
		if _, err := stmt.Exec(runID, change.ID, change.Title, change.OldStatus, change.NewStatus); err != nil {
			return fmt.Errorf("failed to insert status change: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit status changes: %w", err)
	}

	return nil
}

// scanner abstracts sql.Row and sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*models.RunRecord, error) {
	var (
		id         string
		sequence   int
		startedAt  time.Time
		finishedAt sql.NullTime
		totalOld   int
		totalNew   int
		added      int
		removed    int
		changed    int
		enriched   int
		notFound   int
		createdAt  time.Time
		updatedAt  time.Time
	)

	err := row.Scan(&id, &sequence, &startedAt, &finishedAt, &totalOld, &totalNew,
		&added, &removed, &changed, &enriched, &notFound, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	run := models.NewRunRecord(sequence, startedAt)
	run.SetID(id)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)
	run.SetCounters(totalOld, totalNew, added, removed, changed, enriched, notFound)
	if finishedAt.Valid {
		run.SetFinishedAt(&finishedAt.Time)
	}

	return run, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
