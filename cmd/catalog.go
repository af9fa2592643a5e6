package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/anidex/internal/formatter"
	"github.com/desertthunder/anidex/internal/shared"
	"github.com/desertthunder/anidex/internal/snapshot"
	"github.com/urfave/cli/v3"
)

// CatalogFetch fetches the current catalog from the source and prints it.
func (r *Runner) CatalogFetch(ctx context.Context, cmd *cli.Command) error {
	r.loadConfig(cmd)

	if r.catalog == nil {
		return fmt.Errorf("%w: catalog source not initialized", shared.ErrServiceUnavailable)
	}

	if err := r.catalog.Authenticate(ctx); err != nil {
		return fmt.Errorf("catalog authentication: %w", err)
	}

	items, err := r.catalog.FetchCatalog(ctx)
	if err != nil {
		return fmt.Errorf("catalog fetch: %w", err)
	}

	limit := int(cmd.Int("limit"))
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	if cmd.Bool("json") {
		return r.writeJSON(items, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Catalog (%s)", r.catalog.Name()))
	for i, item := range items {
		r.writePlain("%d. %s (%s)\n", i+1, item.Title, item.ID)
	}
	return nil
}

// CatalogStats shows top genre and tag counts across the enriched snapshot.
func (r *Runner) CatalogStats(ctx context.Context, cmd *cli.Command) error {
	r.loadConfig(cmd)

	store := snapshot.NewStore(r.config.Snapshot, r.logger)
	items, err := store.LoadPrevious()
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	if len(items) == 0 {
		return fmt.Errorf("%w: no snapshot found, run sync first", shared.ErrSnapshotNotFound)
	}

	top := int(cmd.Int("top"))
	genres := formatter.GenreStats(items, top)
	tags := formatter.TagStats(items, top)

	if cmd.Bool("json") {
		return r.writeJSON(map[string][]formatter.StatCount{"genres": genres, "tags": tags}, true)
	}

	r.writePlainHeader(fmt.Sprintf("Snapshot statistics (%d entries)", len(items)))
	r.writePlain("Top genres:\n")
	for i, stat := range genres {
		r.writePlain("%d. %s (%d)\n", i+1, stat.Name, stat.Count)
	}
	r.writePlainln("Top tags:")
	for i, stat := range tags {
		r.writePlain("%d. %s (%d)\n", i+1, stat.Name, stat.Count)
	}
	return nil
}
