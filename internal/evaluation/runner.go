package evaluation

import (
	"context"
	"time"

	"github.com/imiq-project/Dashbot/internal/domain/entities"
)

// CandidateProvider runs the lookup cascade for a query string.
type CandidateProvider interface {
	Resolve(ctx context.Context, text string, types []entities.EntityType, exhaustive bool) ([]*entities.ScoredCandidate, error)
}

// Runner replays a set of golden queries against the resolver and
// grades the ranked candidates.
type Runner struct {
	resolver CandidateProvider
}

func NewRunner(resolver CandidateProvider) *Runner {
	return &Runner{resolver: resolver}
}

func (r *Runner) Run(ctx context.Context, queries []GoldenQuery) (*EvalSummary, error) {
	summary := &EvalSummary{
		TotalQueries: len(queries),
		ByDifficulty: make(map[string]*DifficultySummary),
		ByMatchKind:  make(map[string]int),
	}

	for _, gq := range queries {
		types := hintedTypes(gq.TypeHints)

		start := time.Now()
		candidates, err := r.resolver.Resolve(ctx, gq.Query, types, true)
		duration := time.Since(start)

		if err != nil {
			candidates = nil
		}

		keys := make([]string, len(candidates))
		for i, c := range candidates {
			keys[i] = c.Entity.Key()
		}

		expected := gq.ExpectedKey()
		result := EvalResult{
			QueryID: gq.ID,
			Query:   gq.Query,
			TopHit:  len(keys) > 0 && keys[0] == expected,
			HitAt5:  HitAtK(expected, keys, 5),
			MRRAt5:  ReciprocalRankAtK(expected, keys, 5),
			Latency: duration,
		}
		if result.TopHit {
			result.MatchKind = candidates[0].MatchKind
		}

		r.updateSummary(summary, result, gq.Difficulty)
	}

	r.finalizeSummary(summary)
	return summary, nil
}

func hintedTypes(hints []string) []entities.EntityType {
	if len(hints) == 0 {
		return entities.AllEntityTypes
	}
	types := make([]entities.EntityType, 0, len(hints))
	for _, h := range hints {
		if t, ok := entities.ParseEntityType(h); ok {
			types = append(types, t)
		}
	}
	if len(types) == 0 {
		return entities.AllEntityTypes
	}
	return types
}

func (r *Runner) updateSummary(s *EvalSummary, res EvalResult, difficulty string) {
	if res.TopHit {
		s.TopHitRate++
		s.ByMatchKind[res.MatchKind.String()]++
	} else {
		s.Failures = append(s.Failures, res.QueryID)
	}
	if res.HitAt5 {
		s.HitAt5Rate++
	}
	s.AvgMRRAt5 += res.MRRAt5
	s.AvgLatency += res.Latency

	if _, ok := s.ByDifficulty[difficulty]; !ok {
		s.ByDifficulty[difficulty] = &DifficultySummary{}
	}
	ds := s.ByDifficulty[difficulty]
	ds.Count++
	if res.TopHit {
		ds.TopHitRate++
	}
}

func (r *Runner) finalizeSummary(s *EvalSummary) {
	if s.TotalQueries > 0 {
		n := float64(s.TotalQueries)
		s.TopHitRate /= n
		s.HitAt5Rate /= n
		s.AvgMRRAt5 /= n
		s.AvgLatency /= time.Duration(s.TotalQueries)
	}

	for _, ds := range s.ByDifficulty {
		if ds.Count > 0 {
			ds.TopHitRate /= float64(ds.Count)
		}
	}
}
