package tasks

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/desertthunder/anidex/internal/match"
	"github.com/desertthunder/anidex/internal/models"
	"github.com/desertthunder/anidex/internal/shared"
	"golang.org/x/time/rate"
)

// JoinStrategy selects the key used to join lookup results back onto catalog items.
type JoinStrategy int

const (
	// JoinByTitle keys results by item title (historical behavior; lossy on
	// title collisions).
	JoinByTitle JoinStrategy = iota
	// JoinByID keys results by catalog id.
	JoinByID
)

func (s JoinStrategy) String() string {
	switch s {
	case JoinByTitle:
		return "title"
	case JoinByID:
		return "id"
	default:
		return ""
	}
}

// ParseJoinStrategy parses a config string into a JoinStrategy.
func ParseJoinStrategy(s string) (JoinStrategy, error) {
	switch s {
	case "", "title":
		return JoinByTitle, nil
	case "id":
		return JoinByID, nil
	default:
		return JoinByTitle, fmt.Errorf("%w: join strategy %q", shared.ErrInvalidConfig, s)
	}
}

// MergeStats carries enrichment coverage counts; Matched + Unmatched always
// equals the number of merged items.
type MergeStats struct {
	Matched   int
	Unmatched int
}

// batchTitles partitions titles into consecutive batches of at most size.
func batchTitles(titles []string, size int) [][]string {
	if size <= 0 {
		size = 10
	}

	var batches [][]string
	for start := 0; start < len(titles); start += size {
		end := start + size
		if end > len(titles) {
			end = len(titles)
		}
		batches = append(batches, titles[start:end])
	}
	return batches
}

// LookupAll resolves every title to its best match through batched lookups.
//
// Batches run strictly sequentially, paced by a [rate.Limiter] so no pause
// trails the final batch. A rate-limited batch is retried in place with
// exponential backoff up to the configured attempt budget, then fails open.
// Any other lookup failure maps the whole batch to no-match and the run
// continues. The returned map holds exactly one entry per distinct title;
// duplicate titles collapse last-write-wins.
func (e *PipelineEngine) LookupAll(ctx context.Context, titles []string, progress chan<- ProgressUpdate) map[string]*models.MatchResult {
	results := make(map[string]*models.MatchResult, len(titles))
	batches := batchTitles(titles, e.batchSize)
	limiter := rate.NewLimiter(rate.Every(e.batchPause), 1)

	for i, batch := range batches {
		if err := limiter.Wait(ctx); err != nil {
			e.logger.Warnf("lookup pacing interrupted: %v", err)
			for _, title := range batch {
				results[title] = nil
			}
			continue
		}

		e.sendProgress(progress, lookupBatchUpdate(i+1, len(batches), len(batch)))

		found, err := e.searchWithRetry(ctx, batch, i+1, len(batches), progress)
		if err != nil {
			e.logger.Warnf("batch %d/%d failed, marking %d titles unmatched: %v", i+1, len(batches), len(batch), err)
			for _, title := range batch {
				results[title] = nil
			}
			continue
		}

		for _, title := range batch {
			if best := match.Best(title, found[title]); best.Matched() {
				results[title] = &best
			} else {
				results[title] = nil
			}
		}
	}

	return results
}

// searchWithRetry issues one batch lookup, retrying the same batch on
// rate-limit responses with exponentially growing cooldowns.
func (e *PipelineEngine) searchWithRetry(ctx context.Context, batch []string, step, total int, progress chan<- ProgressUpdate) (map[string][]models.MatchCandidate, error) {
	cooldown := e.cooldown

	for attempt := 0; ; attempt++ {
		found, err := e.lookup.SearchBatch(ctx, batch)
		if err == nil {
			return found, nil
		}
		if !errors.Is(err, shared.ErrRateLimited) {
			return nil, err
		}
		if attempt >= e.maxRetries {
			return nil, fmt.Errorf("retries exhausted after %d attempts: %w", attempt, err)
		}

		e.logger.Warnf("rate limited on batch %d/%d, cooling down %s (attempt %d/%d)", step, total, cooldown, attempt+1, e.maxRetries)
		e.sendProgress(progress, lookupRetryUpdate(step, total, attempt+1))

		select {
		case <-time.After(cooldown):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		cooldown *= 2
	}
}

// rekeyByID converts a title-keyed result map into an id-keyed one.
//
// Each item resolves through its own title, so colliding titles share a
// result but keep distinct entries under their stable ids.
func rekeyByID(items []models.CatalogItem, byTitle map[string]*models.MatchResult) map[string]*models.MatchResult {
	byID := make(map[string]*models.MatchResult, len(items))
	for _, item := range items {
		byID[item.ID] = byTitle[item.Title]
	}
	return byID
}

// joinKey returns the map key for an item under the given strategy.
func joinKey(item models.CatalogItem, strategy JoinStrategy) string {
	if strategy == JoinByID {
		return item.ID
	}
	return item.Title
}

// Merge attaches match results onto catalog items, producing the enriched
// snapshot form. The input slice is never mutated.
func Merge(items []models.CatalogItem, results map[string]*models.MatchResult, strategy JoinStrategy) ([]models.EnrichedItem, MergeStats) {
	enriched := make([]models.EnrichedItem, len(items))
	var stats MergeStats

	for i, item := range items {
		enriched[i] = models.EnrichedItem{CatalogItem: item}

		if res := results[joinKey(item, strategy)]; res != nil && res.Candidate != nil {
			enriched[i].Anilist = newEnrichment(res)
			stats.Matched++
		} else {
			stats.Unmatched++
		}
	}

	return enriched, stats
}

// minTagRank is the cutoff below which categorical tags are dropped from the projection.
const minTagRank = 60

// newEnrichment projects a match result's candidate into the persisted payload.
func newEnrichment(res *models.MatchResult) *models.Enrichment {
	c := res.Candidate

	tags := []string{}
	for _, tag := range c.Tags {
		if !tag.IsMediaSpoiler && tag.Rank >= minTagRank {
			tags = append(tags, tag.Name)
		}
	}

	studios := []string{}
	for _, studio := range c.Studios.Nodes {
		if studio.IsAnimationStudio {
			studios = append(studios, studio.Name)
		}
	}

	genres := c.Genres
	if genres == nil {
		genres = []string{}
	}

	return &models.Enrichment{
		AnilistID:    c.ID,
		MalID:        c.IDMal,
		MatchedTitle: res.MatchedTitle,
		MatchScore:   math.Round(res.Score*1000) / 1000,
		StartDate:    c.StartDate,
		EndDate:      c.EndDate,
		Format:       c.Format,
		Status:       c.Status,
		Episodes:     c.Episodes,
		Duration:     c.Duration,
		Genres:       genres,
		Tags:         tags,
		Popularity:   c.Popularity,
		AverageScore: c.AverageScore,
		MeanScore:    c.MeanScore,
		Studios:      studios,
		Season:       c.Season,
		SeasonYear:   c.SeasonYear,
	}
}
