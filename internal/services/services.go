// package services defines interfaces for the external catalog and lookup providers
//
// Crunchyroll (catalog source), AniList (metadata lookup)
package services

import (
	"context"

	"github.com/desertthunder/anidex/internal/models"
)

// CatalogSource defines the interface for the upstream catalog provider that
// supplies the raw series snapshot.
type CatalogSource interface {
	// Authenticate acquires whatever credentials the provider requires.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context) error

	// FetchCatalog retrieves the full catalog snapshot.
	// The first record is validated against the expected shape; a mismatch
	// surfaces shared.ErrSchemaDrift.
	FetchCatalog(ctx context.Context) ([]models.CatalogItem, error)

	// Name returns the name of the provider (e.g., "Crunchyroll")
	Name() string
}

// LookupService defines the interface for the secondary metadata provider
// queried in batches during enrichment.
type LookupService interface {
	// SearchBatch issues one combined lookup for the given titles and returns,
	// per title, zero or more candidate records. A rate-limit response
	// surfaces shared.ErrRateLimited, distinct from generic failure.
	SearchBatch(ctx context.Context, titles []string) (map[string][]models.MatchCandidate, error)

	// Name returns the name of the provider (e.g., "AniList")
	Name() string
}
