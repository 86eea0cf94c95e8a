package services

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Similarity scores how close a query is to a stored term on a 0..1
// scale. Trigram overlap decays steeply with unrelated edits, so a
// single-character typo stays well above the fallback threshold while a
// word three edits away scores near zero. Terms too short to form
// trigrams fall back to an edit-distance check that only tolerates one
// edit.
func Similarity(query, term string) float64 {
	query = strings.ToLower(strings.TrimSpace(query))
	term = strings.ToLower(strings.TrimSpace(term))
	if query == "" || term == "" {
		return 0
	}
	if query == term {
		return 1
	}

	if len([]rune(query)) < 4 || len([]rune(term)) < 4 {
		return shortTokenSimilarity(query, term)
	}
	return trigramJaccard(query, term)
}

func shortTokenSimilarity(query, term string) float64 {
	dist := levenshtein.ComputeDistance(query, term)
	if dist > 1 {
		return 0
	}
	maxLen := len([]rune(query))
	if l := len([]rune(term)); l > maxLen {
		maxLen = l
	}
	return 1 - float64(dist)/float64(maxLen)
}

func trigramJaccard(query, term string) float64 {
	a := trigrams(query)
	b := trigrams(term)
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for gram := range a {
		if _, ok := b[gram]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// trigrams pads the string so leading and trailing characters still
// contribute whole trigrams.
func trigrams(s string) map[string]struct{} {
	padded := "  " + s + " "
	runes := []rune(padded)
	grams := make(map[string]struct{}, len(runes))
	for i := 0; i+3 <= len(runes); i++ {
		grams[string(runes[i:i+3])] = struct{}{}
	}
	return grams
}

// BestSimilarity scores a query against several terms and returns the
// highest score with the term that produced it.
func BestSimilarity(query string, terms []string) (float64, string) {
	best := 0.0
	bestTerm := ""
	for _, term := range terms {
		if score := Similarity(query, term); score > best {
			best = score
			bestTerm = term
		}
	}
	return best, bestTerm
}
