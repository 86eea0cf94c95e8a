package evaluation

import (
	"context"
	"errors"
	"testing"

	"github.com/imiq-project/Dashbot/internal/domain/entities"
)

type stubResolver struct {
	results map[string][]*entities.ScoredCandidate
	err     error
}

func (s *stubResolver) Resolve(ctx context.Context, text string, types []entities.EntityType, exhaustive bool) ([]*entities.ScoredCandidate, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.results[text], nil
}

func candidate(id string, entityType entities.EntityType, kind entities.MatchKind) *entities.ScoredCandidate {
	return &entities.ScoredCandidate{
		Entity:    &entities.LocationEntity{ID: id, Type: entityType, Name: id},
		MatchKind: kind,
	}
}

func TestRunner_TopHitAndMiss(t *testing.T) {
	resolver := &stubResolver{results: map[string][]*entities.ScoredCandidate{
		"the library": {
			candidate("G26", entities.EntityTypeBuilding, entities.MatchAlias),
		},
		"mensa": {
			candidate("G10", entities.EntityTypeBuilding, entities.MatchSemanticFallback),
			candidate("mensa-1", entities.EntityTypePOI, entities.MatchSemanticFallback),
		},
	}}

	queries := []GoldenQuery{
		{ID: "q1", Query: "the library", ExpectedType: "building", ExpectedID: "G26", Difficulty: "easy"},
		{ID: "q2", Query: "mensa", ExpectedType: "poi", ExpectedID: "mensa-1", Difficulty: "hard"},
	}

	summary, err := NewRunner(resolver).Run(context.Background(), queries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !almostEqual(summary.TopHitRate, 0.5) {
		t.Errorf("expected top-hit rate 0.5, got %f", summary.TopHitRate)
	}
	// q2's expected entity is at rank 2, still within the top 5.
	if !almostEqual(summary.HitAt5Rate, 1.0) {
		t.Errorf("expected hit@5 rate 1.0, got %f", summary.HitAt5Rate)
	}
	if !almostEqual(summary.AvgMRRAt5, 0.75) {
		t.Errorf("expected avg MRR 0.75, got %f", summary.AvgMRRAt5)
	}
	if summary.ByMatchKind["alias"] != 1 {
		t.Errorf("expected one alias top hit, got %d", summary.ByMatchKind["alias"])
	}
	if len(summary.Failures) != 1 || summary.Failures[0] != "q2" {
		t.Errorf("expected q2 in failures, got %v", summary.Failures)
	}
	if !almostEqual(summary.ByDifficulty["easy"].TopHitRate, 1.0) {
		t.Errorf("expected easy top-hit rate 1.0")
	}
	if !almostEqual(summary.ByDifficulty["hard"].TopHitRate, 0.0) {
		t.Errorf("expected hard top-hit rate 0.0")
	}
}

func TestRunner_ResolverErrorCountsAsMiss(t *testing.T) {
	resolver := &stubResolver{err: errors.New("graph down")}

	queries := []GoldenQuery{
		{ID: "q1", Query: "library", ExpectedType: "building", ExpectedID: "G26", Difficulty: "easy"},
	}

	summary, err := NewRunner(resolver).Run(context.Background(), queries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(summary.TopHitRate, 0.0) {
		t.Errorf("expected top-hit rate 0.0, got %f", summary.TopHitRate)
	}
	if len(summary.Failures) != 1 {
		t.Errorf("expected one failure, got %v", summary.Failures)
	}
}

func TestGates_Check(t *testing.T) {
	gates := NewGates(GateConfig{MinTopHitRate: 0.8, MinHitAt5Rate: 0.9})

	pass := &EvalSummary{TopHitRate: 0.85, HitAt5Rate: 0.95}
	if violations := gates.Check(pass); len(violations) != 0 {
		t.Errorf("expected no violations, got %v", violations)
	}

	fail := &EvalSummary{TopHitRate: 0.5, HitAt5Rate: 0.95}
	if violations := gates.Check(fail); len(violations) != 1 {
		t.Errorf("expected one violation, got %v", violations)
	}
}
