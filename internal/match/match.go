// package match implements fuzzy title matching against lookup candidates.
//
// Matching is a pure selection over already-fetched candidate data; batching
// and lookups live in the tasks package.
package match

import (
	"strings"

	"github.com/desertthunder/anidex/internal/models"
)

// Threshold is the confidence score a candidate must strictly exceed to be accepted.
const Threshold = 0.6

// Ratio computes a normalized similarity between two strings in [0, 1].
//
// The score is an alignment ratio: twice the number of matched character
// pairs (the longest common subsequence after case folding) over the total
// length of both strings. It is symmetric, returns 1.0 for strings that are
// equal after case folding, and 1.0 when both strings are empty.
func Ratio(a, b string) float64 {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))

	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}

	matched := lcsLength(ra, rb)
	return 2.0 * float64(matched) / float64(total)
}

// lcsLength returns the length of the longest common subsequence of two rune slices.
//
// Single-row dynamic programming; O(len(a)*len(b)) time, O(len(b)) space.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	row := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prev := 0 // row[j-1] from the previous iteration of i
		for j := 1; j <= len(b); j++ {
			cur := row[j]
			if a[i-1] == b[j-1] {
				row[j] = prev + 1
			} else if row[j-1] > row[j] {
				row[j] = row[j-1]
			}
			prev = cur
		}
	}

	return row[len(b)]
}

// Best selects the candidate whose alternate titles best match the given title.
//
// Each candidate is scored as the maximum [Ratio] over every title form it
// exposes. The winner is the first candidate in input order attaining the
// global maximum; it is accepted only when its score strictly exceeds
// [Threshold]. Otherwise, and for an empty candidate list, the zero
// [models.MatchResult] is returned.
func Best(title string, candidates []models.MatchCandidate) models.MatchResult {
	bestIdx := -1
	bestScore := 0.0

	for i, candidate := range candidates {
		for _, alt := range candidate.AltTitles() {
			if score := Ratio(title, alt); score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
	}

	if bestIdx < 0 || bestScore <= Threshold {
		return models.MatchResult{}
	}

	winner := candidates[bestIdx]
	return models.MatchResult{
		Candidate:    &winner,
		Score:        bestScore,
		MatchedTitle: winner.PreferredTitle(),
	}
}
