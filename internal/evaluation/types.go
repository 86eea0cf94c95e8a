package evaluation

import (
	"time"

	"github.com/imiq-project/Dashbot/internal/domain/entities"
)

// GoldenQuery is a labeled lookup with its expected resolution.
type GoldenQuery struct {
	ID           string   `json:"id"`
	Query        string   `json:"query"`
	ExpectedType string   `json:"expected_type"`
	ExpectedID   string   `json:"expected_id"`
	TypeHints    []string `json:"type_hints,omitempty"`
	Difficulty   string   `json:"difficulty"` // easy, medium, hard
}

// ExpectedKey returns the candidate key the resolver should rank first,
// with the type label canonicalized to match entity keys.
func (q GoldenQuery) ExpectedKey() string {
	if t, ok := entities.ParseEntityType(q.ExpectedType); ok {
		return string(t) + ":" + q.ExpectedID
	}
	return q.ExpectedType + ":" + q.ExpectedID
}

// EvalResult holds the evaluation outcome for a single query.
type EvalResult struct {
	QueryID   string
	Query     string
	TopHit    bool
	MatchKind entities.MatchKind
	HitAt5    bool
	MRRAt5    float64
	Latency   time.Duration
}

// EvalSummary holds aggregate metrics across all golden queries.
type EvalSummary struct {
	TotalQueries int                           `json:"total_queries"`
	TopHitRate   float64                       `json:"top_hit_rate"`
	HitAt5Rate   float64                       `json:"hit_at_5_rate"`
	AvgMRRAt5    float64                       `json:"avg_mrr_at_5"`
	AvgLatency   time.Duration                 `json:"avg_latency_ns"`
	Failures     []string                      `json:"failures,omitempty"`
	ByDifficulty map[string]*DifficultySummary `json:"by_difficulty"`
	ByMatchKind  map[string]int                `json:"by_match_kind"`
}

// DifficultySummary holds metrics grouped by query difficulty.
type DifficultySummary struct {
	Count      int     `json:"count"`
	TopHitRate float64 `json:"top_hit_rate"`
}
