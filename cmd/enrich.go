package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/anidex/internal/shared"
	"github.com/urfave/cli/v3"
)

// Enrich fetches and enriches the catalog without diffing or writing the snapshot.
//
// Useful for previewing match quality before committing a sync.
func (r *Runner) Enrich(ctx context.Context, cmd *cli.Command) error {
	r.loadConfig(cmd)

	if r.catalog == nil || r.lookup == nil {
		return fmt.Errorf("%w: catalog or lookup service not initialized", shared.ErrServiceUnavailable)
	}

	if err := r.catalog.Authenticate(ctx); err != nil {
		return fmt.Errorf("catalog authentication: %w", err)
	}

	items, err := r.catalog.FetchCatalog(ctx)
	if err != nil {
		return fmt.Errorf("catalog fetch: %w", err)
	}

	engine := r.newEngine(nil)
	enriched, stats, err := engine.Enrich(ctx, items, nil)
	if err != nil {
		return fmt.Errorf("enrichment failed: %w", err)
	}

	r.logger.Info("enrichment complete", "matched", stats.Matched, "not_found", stats.Unmatched)

	outputPath := cmd.String("output")
	if outputPath == "" {
		return r.writeJSON(enriched, cmd.Bool("pretty"))
	}

	data, err := shared.MarshalJSON(enriched, cmd.Bool("pretty"))
	if err != nil {
		return fmt.Errorf("failed to marshal enriched entries: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	r.writePlain("Wrote %d enriched entries to %s (%d matched, %d not found)\n",
		len(enriched), outputPath, stats.Matched, stats.Unmatched)
	return nil
}
