package evaluation

// HitAtK reports whether the expected key appears in the top-K retrieved
// results. Golden queries name exactly one correct entity, so recall
// degenerates to a hit test.
func HitAtK(expected string, retrieved []string, k int) bool {
	topK := retrieved
	if k < len(topK) {
		topK = topK[:k]
	}
	for _, r := range topK {
		if r == expected {
			return true
		}
	}
	return false
}

// ReciprocalRankAtK returns 1/rank of the expected key within the top-K
// retrieved results, or 0 when it is absent.
func ReciprocalRankAtK(expected string, retrieved []string, k int) float64 {
	topK := retrieved
	if k < len(topK) {
		topK = topK[:k]
	}
	for i, r := range topK {
		if r == expected {
			return 1.0 / float64(i+1)
		}
	}
	return 0.0
}
