package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/anidex/internal/formatter"
	"github.com/desertthunder/anidex/internal/models"
	"github.com/desertthunder/anidex/internal/repositories"
	"github.com/desertthunder/anidex/internal/shared"
	"github.com/desertthunder/anidex/internal/tasks"
	"github.com/urfave/cli/v3"
)

// loadConfig reloads the runner's config from the command's --config flag when the file exists.
func (r *Runner) loadConfig(cmd *cli.Command) {
	configPath := cmd.String("config")
	if configPath == "" {
		return
	}
	if _, err := os.Stat(configPath); err != nil {
		return
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		r.logger.Warn("failed to load config, using current settings", "path", configPath, "error", err)
		return
	}
	r.config = config
}

// newArchiver opens the run-history database and wraps it in an archiver.
//
// Returns a cleanup func; a nil archiver with nil error means history is
// disabled or unavailable.
func (r *Runner) newArchiver() (tasks.RunArchiver, func(), error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	adapter := repositories.NewRunArchiveAdapter(repositories.NewRunRepository(db))
	return adapter, func() { db.Close() }, nil
}

// Sync performs a full catalog refresh and prints the run summary.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	r.loadConfig(cmd)

	if r.catalog == nil || r.lookup == nil {
		return fmt.Errorf("%w: catalog or lookup service not initialized", shared.ErrServiceUnavailable)
	}

	var archiver tasks.RunArchiver
	if !cmd.Bool("no-archive") {
		adapter, cleanup, err := r.newArchiver()
		if err != nil {
			r.logger.Warn("run history unavailable", "error", err)
		} else {
			archiver = adapter
			defer cleanup()
		}
	}

	engine := r.newEngine(archiver)

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase.String())
		}
	}()

	result, err := engine.Run(ctx, progress)
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	if err := r.writeCounterFile(result); err != nil {
		r.logger.Warn("failed to write counter output", "error", err)
	}

	if exportPath := cmd.String("export"); exportPath != "" {
		if err := r.exportChangeLog(result.ChangeLog, cmd.String("format"), exportPath); err != nil {
			return err
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(result.ChangeLog.Summary, true)
	}

	if !cmd.Bool("quiet") {
		r.writeSummary(result)
	}

	return nil
}

// exportChangeLog renders the run's change log and writes it to path.
func (r *Runner) exportChangeLog(changeLog models.ChangeLog, format, path string) error {
	data, err := formatter.ExportChangeLog(changeLog, format)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	r.logger.Info("change log exported", "path", path, "format", format)
	return nil
}

// writeCounterFile appends key=value counters to $GITHUB_OUTPUT when set.
func (r *Runner) writeCounterFile(result *tasks.SyncResult) error {
	outputPath := os.Getenv("GITHUB_OUTPUT")
	if outputPath == "" {
		return nil
	}

	f, err := os.OpenFile(outputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open counter file: %w", err)
	}
	defer f.Close()

	return formatter.WriteCounters(f, result.Counters())
}

func (r *Runner) writeSummary(result *tasks.SyncResult) {
	r.writePlainHeader("Catalog sync complete")
	r.writePlain("Entries: %d -> %d\n", result.Report.TotalOld, result.Report.TotalNew)
	for _, counter := range result.Counters() {
		r.writePlain("%s: %d\n", counter.Key, counter.Value)
	}
	r.writePlain("Snapshot: %s\n", result.SnapshotPath)
	r.writePlain("Change log: %s\n", result.ChangeLogPath)

	if len(result.Report.Changed) > 0 {
		r.writePlainln("Status changes:")
		for _, change := range result.Report.Changed {
			r.writePlain("  %s: %s -> %s\n", change.Title, change.OldStatus, change.NewStatus)
		}
	}
}
