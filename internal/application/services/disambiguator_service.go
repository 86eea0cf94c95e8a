package services

import (
	"context"
	"sort"

	"github.com/imiq-project/Dashbot/internal/domain/entities"
	"github.com/imiq-project/Dashbot/internal/infrastructure/observability"
	apperrors "github.com/imiq-project/Dashbot/pkg/errors"
)

// typePriority breaks ties between types with comparable match strength.
var typePriority = map[entities.EntityType]int{
	entities.EntityTypeBuilding: 0,
	entities.EntityTypePOI:      1,
	entities.EntityTypeStop:     2,
	entities.EntityTypeLandmark: 3,
}

// DisambiguatorService picks a single authoritative entity from
// per-type resolver output. The governing rule: an exact or alias match
// of any type outranks a fuzzy or semantic match of any other type, so
// a loosely-related building can never shadow the POI the user meant.
type DisambiguatorService struct {
	resolver *ResolverService
}

// NewDisambiguatorService creates a new disambiguator service
func NewDisambiguatorService(resolver *ResolverService) *DisambiguatorService {
	return &DisambiguatorService{resolver: resolver}
}

// Disambiguate resolves the mention across every requested type and
// chooses one winner. Hints from the upstream intent classifier take
// precedence within a match-strength class; without hints the tie-break
// is Building > POI > Stop > Landmark.
func (s *DisambiguatorService) Disambiguate(ctx context.Context, text string, hints []entities.EntityType) (*entities.Resolution, error) {
	types := entities.AllEntityTypes
	candidates, err := s.resolver.Resolve(ctx, text, types, true)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, apperrors.NewNotFoundError("no entity matched " + text)
	}

	best := pickCandidate(candidates, hints)
	resolution := &entities.Resolution{
		Entity:     best.Entity,
		MatchKind:  best.MatchKind,
		Score:      best.Score,
		Ambiguous:  !isStrongMatch(best.MatchKind),
		Candidates: candidates,
	}

	if resolution.Ambiguous {
		observability.LoggerFromContext(ctx).Debug().
			Str("text", text).
			Str("entity", best.Entity.Name).
			Str("match_kind", best.MatchKind.String()).
			Msg("Low-confidence resolution")
	}
	return resolution, nil
}

// isStrongMatch reports whether the kind carries exact evidence rather
// than fuzzy or approximate evidence.
func isStrongMatch(kind entities.MatchKind) bool {
	switch kind {
	case entities.MatchExactID, entities.MatchExactName, entities.MatchAlias:
		return true
	}
	return false
}

func pickCandidate(candidates []*entities.ScoredCandidate, hints []entities.EntityType) *entities.ScoredCandidate {
	hinted := make(map[entities.EntityType]bool, len(hints))
	for _, hint := range hints {
		hinted[hint] = true
	}

	ranked := make([]*entities.ScoredCandidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		// Exact evidence of any type beats approximate evidence of any other.
		if sa, sb := isStrongMatch(a.MatchKind), isStrongMatch(b.MatchKind); sa != sb {
			return sa
		}
		if len(hints) > 0 && hinted[a.Entity.Type] != hinted[b.Entity.Type] {
			return hinted[a.Entity.Type]
		}
		if a.MatchKind != b.MatchKind {
			return a.MatchKind < b.MatchKind
		}
		if a.Entity.Type != b.Entity.Type {
			return typePriority[a.Entity.Type] < typePriority[b.Entity.Type]
		}
		return a.Score > b.Score
	})
	return ranked[0]
}
