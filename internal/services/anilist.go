// AniList implementation of [LookupService]
//
// Builds one aliased GraphQL document per batch so a whole batch costs a
// single request against the provider's rate limit.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/anidex/internal/models"
	"github.com/desertthunder/anidex/internal/shared"
)

const defaultAnilistURL = "https://graphql.anilist.co"

// mediaSelection is the field set requested for every candidate record.
const mediaSelection = `
      id
      idMal
      title { romaji english native }
      startDate { year month day }
      endDate { year month day }
      format
      status
      episodes
      duration
      genres
      tags { name rank isMediaSpoiler }
      popularity
      averageScore
      meanScore
      studios { nodes { name isAnimationStudio } }
      season
      seasonYear`

var titleEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// AnilistService implements [LookupService] for the AniList GraphQL API.
type AnilistService struct {
	url        string
	httpClient *http.Client
}

// NewAnilistService creates a new lookup service instance.
func NewAnilistService(apiURL string, client *http.Client) *AnilistService {
	if apiURL == "" {
		apiURL = defaultAnilistURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &AnilistService{
		url:        apiURL,
		httpClient: client,
	}
}

// Name returns the provider name.
func (a *AnilistService) Name() string {
	return "AniList"
}

// buildBatchQuery assembles one aliased Page(...) block per title.
//
// Alias anime<i> corresponds to titles[i]; three candidates are requested per
// title, sorted by search relevance.
func buildBatchQuery(titles []string) string {
	var b strings.Builder
	b.WriteString("query {\n")
	for i, title := range titles {
		fmt.Fprintf(&b, "  anime%d: Page(page: 1, perPage: 3) {\n", i)
		fmt.Fprintf(&b, "    media(search: \"%s\", type: ANIME, sort: SEARCH_MATCH) {%s\n    }\n  }\n",
			titleEscaper.Replace(title), mediaSelection)
	}
	b.WriteString("}")
	return b.String()
}

// pageResult holds the decoded media list for one alias.
type pageResult struct {
	Media []models.MatchCandidate `json:"media"`
}

// SearchBatch issues one combined lookup for the given titles.
//
// Returns a map with one entry per distinct title; titles with no candidates
// map to an empty slice. HTTP 429 surfaces as [shared.ErrRateLimited] so the
// orchestrator can cool down and retry the same batch.
func (a *AnilistService) SearchBatch(ctx context.Context, titles []string) (map[string][]models.MatchCandidate, error) {
	if len(titles) == 0 {
		return map[string][]models.MatchCandidate{}, nil
	}

	payload, err := json.Marshal(map[string]string{"query": buildBatchQuery(titles)})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lookup query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: lookup request: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: lookup returned status 429", shared.ErrRateLimited)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: lookup returned status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var envelope struct {
		Data map[string]pageResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: failed to decode lookup response: %v", shared.ErrAPIRequest, err)
	}

	results := make(map[string][]models.MatchCandidate, len(titles))
	for i, title := range titles {
		page := envelope.Data[fmt.Sprintf("anime%d", i)]
		results[title] = page.Media
	}

	return results, nil
}
