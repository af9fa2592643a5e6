// Lookup provider DTOs and match results.
package models

// CandidateTitle carries the alternate title forms a candidate exposes.
type CandidateTitle struct {
	Romaji  string `json:"romaji"`
	English string `json:"english"`
	Native  string `json:"native"`
}

// CandidateTag represents a categorical tag with spoiler flag and rank.
type CandidateTag struct {
	Name           string `json:"name"`
	Rank           int    `json:"rank"`
	IsMediaSpoiler bool   `json:"isMediaSpoiler"`
}

// Studio represents a studio entry with its animation-studio flag.
type Studio struct {
	Name              string `json:"name"`
	IsAnimationStudio bool   `json:"isAnimationStudio"`
}

// StudioConnection wraps the studio node list in the provider response.
type StudioConnection struct {
	Nodes []Studio `json:"nodes"`
}

// MatchCandidate represents one media record returned by the lookup provider.
type MatchCandidate struct {
	ID           int              `json:"id"`
	IDMal        *int             `json:"idMal"`
	Title        CandidateTitle   `json:"title"`
	StartDate    *FuzzyDate       `json:"startDate"`
	EndDate      *FuzzyDate       `json:"endDate"`
	Format       string           `json:"format"`
	Status       string           `json:"status"`
	Episodes     *int             `json:"episodes"`
	Duration     *int             `json:"duration"`
	Genres       []string         `json:"genres"`
	Tags         []CandidateTag   `json:"tags"`
	Popularity   *int             `json:"popularity"`
	AverageScore *int             `json:"averageScore"`
	MeanScore    *int             `json:"meanScore"`
	Studios      StudioConnection `json:"studios"`
	Season       string           `json:"season"`
	SeasonYear   *int             `json:"seasonYear"`
}

// AltTitles returns the candidate's non-empty title forms in romaji, english, native order.
func (c MatchCandidate) AltTitles() []string {
	var titles []string
	for _, t := range []string{c.Title.Romaji, c.Title.English, c.Title.Native} {
		if t != "" {
			titles = append(titles, t)
		}
	}
	return titles
}

// PreferredTitle returns the english title when present, otherwise romaji.
func (c MatchCandidate) PreferredTitle() string {
	if c.Title.English != "" {
		return c.Title.English
	}
	return c.Title.Romaji
}

// MatchResult represents the outcome of fuzzy-matching one catalog title.
//
// Candidate is nil when no candidate cleared the confidence threshold;
// Score is only meaningful when Candidate is non-nil.
type MatchResult struct {
	Candidate    *MatchCandidate
	Score        float64
	MatchedTitle string
}

// Matched reports whether a candidate cleared the threshold.
func (m MatchResult) Matched() bool {
	return m.Candidate != nil
}
