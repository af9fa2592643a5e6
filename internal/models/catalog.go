// Catalog DTOs mirroring the upstream browse API response shape.
package models

// Image represents a single poster image variant.
type Image struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Type   string `json:"type"`
}

// ImageSet represents the poster image variants attached to a series.
//
// The upstream API nests each orientation as a list of resolution ladders.
type ImageSet struct {
	PosterTall [][]Image `json:"poster_tall,omitempty"`
	PosterWide [][]Image `json:"poster_wide,omitempty"`
}

// SeriesMetadata represents series-level attributes from the catalog provider.
type SeriesMetadata struct {
	EpisodeCount     int      `json:"episode_count"`
	SeasonCount      int      `json:"season_count"`
	SeriesLaunchYear int      `json:"series_launch_year,omitempty"`
	IsDubbed         bool     `json:"is_dubbed"`
	IsSubbed         bool     `json:"is_subbed"`
	MaturityRatings  []string `json:"maturity_ratings,omitempty"`
}

// Rating represents aggregate user ratings from the catalog provider.
type Rating struct {
	Average string `json:"average,omitempty"`
	Total   int    `json:"total,omitempty"`
}

// CatalogItem represents one series as fetched from the upstream catalog.
//
// ID is the stable identity used to correlate records across snapshots.
// Items are immutable once fetched within a pipeline run.
type CatalogItem struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Type           string          `json:"type"`
	SlugTitle      string          `json:"slug_title,omitempty"`
	Description    string          `json:"description"`
	ChannelID      string          `json:"channel_id,omitempty"`
	Images         *ImageSet       `json:"images,omitempty"`
	SeriesMetadata *SeriesMetadata `json:"series_metadata,omitempty"`
	Rating         *Rating         `json:"rating,omitempty"`
}

// FuzzyDate represents a possibly-partial calendar date from the lookup provider.
type FuzzyDate struct {
	Year  *int `json:"year"`
	Month *int `json:"month"`
	Day   *int `json:"day"`
}

// Enrichment is the structured projection of a matched lookup candidate,
// attached to a catalog item under the "anilist" key.
type Enrichment struct {
	AnilistID    int        `json:"anilist_id"`
	MalID        *int       `json:"mal_id"`
	MatchedTitle string     `json:"matched_title"`
	MatchScore   float64    `json:"match_score"`
	StartDate    *FuzzyDate `json:"start_date"`
	EndDate      *FuzzyDate `json:"end_date"`
	Format       string     `json:"format,omitempty"`
	Status       string     `json:"status,omitempty"`
	Episodes     *int       `json:"episodes"`
	Duration     *int       `json:"duration"`
	Genres       []string   `json:"genres"`
	Tags         []string   `json:"tags"`
	Popularity   *int       `json:"popularity"`
	AverageScore *int       `json:"average_score"`
	MeanScore    *int       `json:"mean_score"`
	Studios      []string   `json:"studios"`
	Season       string     `json:"season,omitempty"`
	SeasonYear   *int       `json:"season_year"`
}

// EnrichedItem is a catalog item with its nullable enrichment payload.
//
// This is the persisted snapshot form; Anilist is null when no lookup
// candidate cleared the match threshold.
type EnrichedItem struct {
	CatalogItem
	Anilist *Enrichment `json:"anilist"`
}

// Status returns the enrichment status string, or "" when unenriched.
func (e EnrichedItem) Status() string {
	if e.Anilist == nil {
		return ""
	}
	return e.Anilist.Status
}
