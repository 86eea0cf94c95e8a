package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/imiq-project/Dashbot/internal/domain/entities"
	"github.com/imiq-project/Dashbot/internal/domain/repositories"
	"github.com/imiq-project/Dashbot/internal/infrastructure/observability"
	apperrors "github.com/imiq-project/Dashbot/pkg/errors"
)

const fulltextLimit = 10

// ResolverService resolves free-text mentions to knowledge graph
// entities through a staged cascade. Each stage runs only when the
// previous one produced nothing; an exhaustive resolve runs the cascade
// per type so the disambiguator can compare evidence across types.
type ResolverService struct {
	repo    repositories.KnowledgeRepository
	indexes repositories.IndexManager
	metrics *observability.Metrics

	semanticThreshold float64
	stageTimeout      time.Duration
}

// NewResolverService creates a new resolver service
func NewResolverService(repo repositories.KnowledgeRepository, indexes repositories.IndexManager, metrics *observability.Metrics, semanticThreshold float64, stageTimeout time.Duration) *ResolverService {
	if semanticThreshold <= 0 {
		semanticThreshold = 0.18
	}
	if stageTimeout <= 0 {
		stageTimeout = 5 * time.Second
	}
	return &ResolverService{
		repo:              repo,
		indexes:           indexes,
		metrics:           metrics,
		semanticThreshold: semanticThreshold,
		stageTimeout:      stageTimeout,
	}
}

// Resolve runs the cascade for the given mention across the requested
// types. With exhaustive=false the cascade stops at the first stage that
// yields a candidate; with exhaustive=true every type gets its own full
// cascade and the best candidate per type is returned. Candidates are
// ordered by score, then by match strength.
func (s *ResolverService) Resolve(ctx context.Context, text string, types []entities.EntityType, exhaustive bool) ([]*entities.ScoredCandidate, error) {
	normalized := NormalizeQuery(text)
	if normalized == "" {
		return nil, apperrors.NewValidationError("empty entity mention")
	}
	if len(types) == 0 {
		types = entities.AllEntityTypes
	}

	// A failed index build degrades stage 3 to the substring fallback; it
	// never fails the request.
	if err := s.indexes.EnsureIndexes(ctx); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Fulltext unavailable, using substring fallback")
	}

	if exhaustive {
		return s.resolveExhaustive(ctx, normalized, types)
	}
	return s.resolveFirstHit(ctx, normalized, types)
}

// resolveFirstHit runs each stage across all types in parallel and stops
// at the first stage with a usable candidate.
func (s *ResolverService) resolveFirstHit(ctx context.Context, normalized string, types []entities.EntityType) ([]*entities.ScoredCandidate, error) {
	for _, stage := range s.stages() {
		candidates, err := s.runStageAcrossTypes(ctx, stage, normalized, types)
		if err != nil {
			observability.LoggerFromContext(ctx).Warn().
				Err(err).
				Str("stage", stage.name).
				Msg("Resolution stage failed, continuing cascade")
			continue
		}
		if len(candidates) > 0 {
			sortCandidates(candidates)
			return candidates, nil
		}
	}
	return nil, apperrors.NewNotFoundError("no entity matched " + normalized)
}

// resolveExhaustive runs the full cascade per type and keeps each type's
// strongest candidate.
func (s *ResolverService) resolveExhaustive(ctx context.Context, normalized string, types []entities.EntityType) ([]*entities.ScoredCandidate, error) {
	var (
		mu         sync.Mutex
		candidates []*entities.ScoredCandidate
	)

	group, groupCtx := errgroup.WithContext(ctx)
	for _, entityType := range types {
		group.Go(func() error {
			for _, stage := range s.stages() {
				candidate, err := s.runStage(groupCtx, stage, normalized, entityType)
				if err != nil || candidate == nil {
					continue
				}
				mu.Lock()
				candidates = append(candidates, candidate)
				mu.Unlock()
				return nil
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		return nil, apperrors.NewNotFoundError("no entity matched " + normalized)
	}
	sortCandidates(candidates)
	return candidates, nil
}

type resolveStage struct {
	name string
	run  func(ctx context.Context, normalized string, entityType entities.EntityType) (*entities.ScoredCandidate, error)
	skip func() bool
}

func (s *ResolverService) stages() []resolveStage {
	return []resolveStage{
		{name: "exact", run: s.stageExact},
		{name: "alias", run: s.stageAlias},
		{name: "fulltext", run: s.stageFulltext, skip: func() bool { return !s.indexes.Available() }},
		{name: "contains", run: s.stageContains, skip: func() bool { return s.indexes.Available() }},
		{name: "semantic", run: s.stageSemantic},
	}
}

func (s *ResolverService) runStageAcrossTypes(ctx context.Context, stage resolveStage, normalized string, types []entities.EntityType) ([]*entities.ScoredCandidate, error) {
	if stage.skip != nil && stage.skip() {
		return nil, nil
	}

	var (
		mu         sync.Mutex
		candidates []*entities.ScoredCandidate
	)
	group, groupCtx := errgroup.WithContext(ctx)
	for _, entityType := range types {
		group.Go(func() error {
			candidate, err := s.runStage(groupCtx, stage, normalized, entityType)
			if err != nil {
				// A failing or timed-out type contributes no candidate;
				// the other types' results must survive.
				observability.LoggerFromContext(ctx).Warn().
					Err(err).
					Str("stage", stage.name).
					Str("entity_type", string(entityType)).
					Msg("Stage query failed for type, treating as no candidate")
				return nil
			}
			if candidate != nil {
				mu.Lock()
				candidates = append(candidates, candidate)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return candidates, nil
}

func (s *ResolverService) runStage(ctx context.Context, stage resolveStage, normalized string, entityType entities.EntityType) (*entities.ScoredCandidate, error) {
	if stage.skip != nil && stage.skip() {
		return nil, nil
	}

	stageCtx, cancel := context.WithTimeout(ctx, s.stageTimeout)
	defer cancel()

	if s.metrics != nil {
		s.metrics.ResolveStageCount.Add(ctx, 1, metric.WithAttributes(
			attribute.String("stage", stage.name),
			attribute.String("entity_type", string(entityType)),
		))
	}
	return stage.run(stageCtx, normalized, entityType)
}

// stageExact matches id or name exactly, case-insensitively. Only name
// and id participate; numeric properties such as coordinates are never
// consulted, so "24" cannot match a latitude that happens to contain it.
func (s *ResolverService) stageExact(ctx context.Context, normalized string, entityType entities.EntityType) (*entities.ScoredCandidate, error) {
	if entity, err := s.repo.GetByID(ctx, entityType, normalized); err == nil {
		return &entities.ScoredCandidate{Entity: entity, Score: 100, MatchKind: entities.MatchExactID}, nil
	}

	names := []string{normalized}
	if IsNumericQuery(normalized) {
		names = NumericVariants(normalized)
	}
	for _, name := range names {
		matches, err := s.repo.GetByExactName(ctx, entityType, name)
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			return &entities.ScoredCandidate{Entity: matches[0], Score: 100, MatchKind: entities.MatchExactName}, nil
		}
	}
	return nil, nil
}

// stageAlias matches any alias exactly, case-insensitively.
func (s *ResolverService) stageAlias(ctx context.Context, normalized string, entityType entities.EntityType) (*entities.ScoredCandidate, error) {
	aliases := []string{normalized}
	if IsNumericQuery(normalized) {
		aliases = NumericVariants(normalized)
	}
	for _, alias := range aliases {
		matches, err := s.repo.GetByAlias(ctx, entityType, alias)
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			return &entities.ScoredCandidate{Entity: matches[0], Score: 90, MatchKind: entities.MatchAlias}, nil
		}
	}
	return nil, nil
}

// stageFulltext queries the per-type index and re-ranks with the name
// boost so rare query words dominate common ones.
func (s *ResolverService) stageFulltext(ctx context.Context, normalized string, entityType entities.EntityType) (*entities.ScoredCandidate, error) {
	query := BuildFulltextQuery(normalized)
	candidates, err := s.repo.SearchFulltext(ctx, entityType, query, fulltextLimit)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	ApplyNameBoost(candidates, query)
	sortCandidates(candidates)
	return candidates[0], nil
}

// stageContains is the substring fallback used when fulltext is
// unavailable: exact phrase beats all-words beats any-word.
func (s *ResolverService) stageContains(ctx context.Context, normalized string, entityType entities.EntityType) (*entities.ScoredCandidate, error) {
	matches, err := s.repo.SearchContains(ctx, entityType, normalized, fulltextLimit)
	if err != nil {
		return nil, err
	}

	words := QueryWords(normalized)
	var best *entities.ScoredCandidate
	for _, entity := range matches {
		score := containsScore(entity, normalized, words)
		if score == 0 {
			continue
		}
		if best == nil || score > best.Score {
			best = &entities.ScoredCandidate{Entity: entity, Score: score, MatchKind: entities.MatchContainsFallback}
		}
	}
	if best != nil {
		return best, nil
	}

	// A multi-word query may still match word by word even when the full
	// fragment does not appear anywhere.
	if len(words) > 1 {
		for _, word := range words {
			wordMatches, err := s.repo.SearchContains(ctx, entityType, word, fulltextLimit)
			if err != nil {
				return nil, err
			}
			for _, entity := range wordMatches {
				score := containsScore(entity, normalized, words)
				if score == 0 {
					score = 1
				}
				if best == nil || score > best.Score {
					best = &entities.ScoredCandidate{Entity: entity, Score: score, MatchKind: entities.MatchContainsFallback}
				}
			}
		}
	}
	return best, nil
}

// stageSemantic is the last resort: string similarity over every text
// field, accepted only above the tuned threshold.
func (s *ResolverService) stageSemantic(ctx context.Context, normalized string, entityType entities.EntityType) (*entities.ScoredCandidate, error) {
	// Numbers never resolve approximately.
	if IsNumericQuery(normalized) {
		return nil, nil
	}

	all, err := s.repo.ListAll(ctx, entityType)
	if err != nil {
		return nil, err
	}

	var best *entities.ScoredCandidate
	for _, entity := range all {
		score, _ := BestSimilarity(normalized, searchableTerms(entity))
		if score < s.semanticThreshold {
			continue
		}
		if best == nil || score > best.Score {
			best = &entities.ScoredCandidate{Entity: entity, Score: score, MatchKind: entities.MatchSemanticFallback}
		}
	}
	return best, nil
}

func searchableTerms(entity *entities.LocationEntity) []string {
	terms := make([]string, 0, len(entity.Aliases)+4)
	terms = append(terms, entity.Name)
	terms = append(terms, entity.Aliases...)
	for _, field := range []string{entity.Description, entity.Category, entity.Address} {
		if field != "" {
			terms = append(terms, field)
		}
	}
	return terms
}

func containsScore(entity *entities.LocationEntity, phrase string, words []string) float64 {
	haystack := strings.ToLower(strings.Join(searchableTerms(entity), " "))
	if strings.Contains(haystack, phrase) {
		return 3
	}

	matched := 0
	for _, word := range words {
		if strings.Contains(haystack, word) {
			matched++
		}
	}
	switch {
	case matched == 0:
		return 0
	case matched == len(words):
		return 2
	default:
		return 1
	}
}

func sortCandidates(candidates []*entities.ScoredCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].MatchKind < candidates[j].MatchKind
	})
}
