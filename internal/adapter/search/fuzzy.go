package search

import "github.com/hbollon/go-edlib"

// fuzzyMatch reports whether term and text are similar enough under
// Jaro-Winkler. Used as the last rung of the ladder when the fuzzy
// feature flag is on, so typos still find their file.
func fuzzyMatch(term, text string, threshold float64) bool {
	if term == text {
		return true
	}
	if term == "" || text == "" {
		return false
	}
	score, err := edlib.StringsSimilarity(term, text, edlib.JaroWinkler)
	if err != nil {
		return false
	}
	return float64(score) >= threshold
}
