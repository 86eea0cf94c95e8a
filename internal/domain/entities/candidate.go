package entities

// MatchKind identifies which stage of the resolution cascade produced a
// candidate. Lower values mean stronger evidence.
type MatchKind int

const (
	MatchExactID MatchKind = iota
	MatchExactName
	MatchAlias
	MatchFulltextBoosted
	MatchFulltextFuzzy
	MatchContainsFallback
	MatchSemanticFallback
)

var matchKindNames = map[MatchKind]string{
	MatchExactID:          "exact_id",
	MatchExactName:        "exact_name",
	MatchAlias:            "alias",
	MatchFulltextBoosted:  "fulltext_boosted",
	MatchFulltextFuzzy:    "fulltext_fuzzy",
	MatchContainsFallback: "contains_fallback",
	MatchSemanticFallback: "semantic_fallback",
}

func (k MatchKind) String() string {
	if name, ok := matchKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ScoredCandidate is a knowledge graph entity paired with the evidence
// that matched it to a query.
type ScoredCandidate struct {
	Entity    *LocationEntity `json:"entity"`
	Score     float64         `json:"score"`
	MatchKind MatchKind       `json:"match_kind"`
}

// Resolution is the outcome of resolving a free-text mention.
type Resolution struct {
	Entity     *LocationEntity   `json:"entity"`
	MatchKind  MatchKind         `json:"match_kind"`
	Score      float64           `json:"score"`
	Ambiguous  bool               `json:"ambiguous,omitempty"`
	Candidates []*ScoredCandidate `json:"candidates,omitempty"`
}
