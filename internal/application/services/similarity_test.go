package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity_ExactMatch(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("library", "Library"))
}

func TestSimilarity_SingleTypoPassesThreshold(t *testing.T) {
	score := Similarity("libary", "library")
	assert.Greater(t, score, 0.18)
}

func TestSimilarity_UnrelatedWordFailsThreshold(t *testing.T) {
	assert.Less(t, Similarity("mensa", "library"), 0.18)
	// Shares a suffix but differs in three characters.
	assert.Less(t, Similarity("granary", "library"), 0.18)
}

func TestSimilarity_ShortTokens(t *testing.T) {
	// One edit on a short token is tolerated.
	assert.Greater(t, Similarity("g10", "g16"), 0.18)
	// Two edits on a short token are not.
	assert.Equal(t, 0.0, Similarity("g10", "h29"))
}

func TestSimilarity_EmptyInput(t *testing.T) {
	assert.Equal(t, 0.0, Similarity("", "library"))
	assert.Equal(t, 0.0, Similarity("library", ""))
}

func TestBestSimilarity(t *testing.T) {
	score, term := BestSimilarity("libary", []string{"mensa", "library", "laboratory"})
	assert.Equal(t, "library", term)
	assert.Greater(t, score, 0.18)
}
