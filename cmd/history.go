package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/anidex/internal/models"
	"github.com/desertthunder/anidex/internal/repositories"
	"github.com/desertthunder/anidex/internal/shared"
	"github.com/urfave/cli/v3"
)

// openHistory opens the run-history database read side.
func (r *Runner) openHistory() (*repositories.RunRepository, func(), error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repositories.NewRunRepository(db), func() { db.Close() }, nil
}

// runListing is the JSON projection of an archived run.
type runListing struct {
	ID         string     `json:"id"`
	Sequence   int        `json:"sequence"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	TotalOld   int        `json:"total_old"`
	TotalNew   int        `json:"total_new"`
	Added      int        `json:"added"`
	Removed    int        `json:"removed"`
	Changed    int        `json:"status_changes"`
	Enriched   int        `json:"enriched"`
	NotFound   int        `json:"not_found"`
}

func toListing(run *models.RunRecord) runListing {
	return runListing{
		ID:         run.ID(),
		Sequence:   run.Sequence(),
		StartedAt:  run.StartedAt(),
		FinishedAt: run.FinishedAt(),
		TotalOld:   run.TotalOld(),
		TotalNew:   run.TotalNew(),
		Added:      run.Added(),
		Removed:    run.Removed(),
		Changed:    run.Changed(),
		Enriched:   run.Enriched(),
		NotFound:   run.NotFound(),
	}
}

// HistoryList lists archived runs, most recent first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	r.loadConfig(cmd)

	repo, cleanup, err := r.openHistory()
	if err != nil {
		return err
	}
	defer cleanup()

	runs, err := repo.List(map[string]any{"limit": int(cmd.Int("limit"))})
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if cmd.Bool("json") {
		listings := make([]runListing, len(runs))
		for i, run := range runs {
			listings[i] = toListing(run)
		}
		return r.writeJSON(listings, true)
	}

	if len(runs) == 0 {
		r.writePlain("No archived runs\n")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Run history (%d runs)", len(runs)))
	for _, run := range runs {
		r.writePlain("#%d %s  %s  +%d -%d ~%d (%d enriched, %d not found)\n",
			run.Sequence(), run.ID(), run.StartedAt().Format(time.RFC3339),
			run.Added(), run.Removed(), run.Changed(), run.Enriched(), run.NotFound())
	}
	return nil
}

// HistoryShow shows one run and its recorded status changes.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	r.loadConfig(cmd)

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: run id required", shared.ErrMissingArgument)
	}

	repo, cleanup, err := r.openHistory()
	if err != nil {
		return err
	}
	defer cleanup()

	run, err := repo.Get(id)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("run not found: %s", id)
		}
		return err
	}

	changes, err := repo.StatusChanges(id)
	if err != nil {
		return fmt.Errorf("failed to load status changes: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(struct {
			Run     runListing            `json:"run"`
			Changes []models.StatusChange `json:"status_changes"`
		}{toListing(run), changes}, true)
	}

	r.writePlainHeader(fmt.Sprintf("Run #%d", run.Sequence()))
	r.writePlain("ID: %s\n", run.ID())
	r.writePlain("Started: %s\n", run.StartedAt().Format(time.RFC3339))
	if finished := run.FinishedAt(); finished != nil {
		r.writePlain("Finished: %s\n", finished.Format(time.RFC3339))
	}
	r.writePlain("Entries: %d -> %d\n", run.TotalOld(), run.TotalNew())
	r.writePlain("Added: %d, Removed: %d, Status changes: %d\n", run.Added(), run.Removed(), run.Changed())
	r.writePlain("Enriched: %d (%d not found)\n", run.Enriched(), run.NotFound())

	if len(changes) > 0 {
		r.writePlainln("Status changes:")
		for _, change := range changes {
			r.writePlain("  %s: %s -> %s\n", change.Title, change.OldStatus, change.NewStatus)
		}
	}
	return nil
}
