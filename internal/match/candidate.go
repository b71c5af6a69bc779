package match

import (
	"fmt"
	"sort"
)

// Candidate is a declared name scored against an unknown one.
type Candidate struct {
	Name string

	// Score is the normalized similarity (0-1, higher is better).
	Score float64
	// Distance is the raw edit distance between the normalized forms.
	Distance int
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

// RankNames scores every declared name against the unknown one.
// Returns candidates sorted by score (descending).
func RankNames(unknown string, declared []string) CandidateList {
	norm := NormalizeIdent(unknown)

	candidates := make(CandidateList, 0, len(declared))
	for _, name := range declared {
		declaredNorm := NormalizeIdent(name)

		candidates = append(candidates, Candidate{
			Name:     name,
			Score:    LevenshteinNormalized(norm, declaredNorm),
			Distance: Levenshtein(norm, declaredNorm),
		})
	}

	sort.Sort(candidates)

	return candidates
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
// Sorts by score descending, then by name for determinism.
func (c CandidateList) Less(i, j int) bool {
	if c[i].Score != c[j].Score {
		return c[i].Score > c[j].Score
	}

	return c[i].Name < c[j].Name
}

// Best returns the best candidate, or nil if no candidates.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// IsAmbiguous returns true if the top two candidates are within the threshold.
func (c CandidateList) IsAmbiguous(threshold float64) bool {
	if len(c) < 2 {
		return false
	}

	return c[0].Score-c[1].Score < threshold
}

// AboveThreshold returns candidates with a score of at least threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var result CandidateList

	for _, cand := range c {
		if cand.Score >= threshold {
			result = append(result, cand)
		}
	}

	return result
}

// Suggestion thresholds.
const (
	// DefaultMinScore is the minimum similarity for a suggestion.
	DefaultMinScore = 0.6
	// DefaultAmbiguityThreshold is the score difference that marks ambiguity.
	DefaultAmbiguityThreshold = 0.05
)

// Suggest returns the declared name closest to unknown, or "" when none is
// close enough or the two best candidates tie.
func Suggest(unknown string, declared []string) string {
	ranked := RankNames(unknown, declared).AboveThreshold(DefaultMinScore)

	best := ranked.Best()
	if best == nil || ranked.IsAmbiguous(DefaultAmbiguityThreshold) {
		return ""
	}

	return best.Name
}

// DidYouMean formats a suggestion suffix such as ` (did you mean "title"?)`,
// or returns "" when Suggest finds nothing.
func DidYouMean(unknown string, declared []string) string {
	s := Suggest(unknown, declared)
	if s == "" {
		return ""
	}

	return fmt.Sprintf(" (did you mean %q?)", s)
}
