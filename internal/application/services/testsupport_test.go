package services

import (
	"context"
	"strings"

	"github.com/imiq-project/Dashbot/internal/domain/entities"
	"github.com/imiq-project/Dashbot/internal/domain/repositories"
	apperrors "github.com/imiq-project/Dashbot/pkg/errors"
	"github.com/imiq-project/Dashbot/pkg/geo"
)

// fakeKnowledgeRepo is an in-memory KnowledgeRepository backed by plain
// slices, with fulltext approximated by token overlap.
type fakeKnowledgeRepo struct {
	entities     []*entities.LocationEntity
	sensors      []*entities.Sensor
	connectivity map[string]bool
	fulltextErr  error
	// typeErr fails every query for the given type, simulating a
	// slow or broken per-type index.
	typeErr map[entities.EntityType]error
	// linePaths maps "line|fromID|toID" to the ordered stop names of
	// that line segment. Reverse lookups are answered reversed.
	linePaths map[string][]string
}

func (f *fakeKnowledgeRepo) errFor(entityType entities.EntityType) error {
	if f.typeErr == nil {
		return nil
	}
	return f.typeErr[entityType]
}

func (f *fakeKnowledgeRepo) ofType(entityType entities.EntityType) []*entities.LocationEntity {
	var result []*entities.LocationEntity
	for _, e := range f.entities {
		if e.Type == entityType {
			result = append(result, e)
		}
	}
	return result
}

func (f *fakeKnowledgeRepo) GetByID(ctx context.Context, entityType entities.EntityType, id string) (*entities.LocationEntity, error) {
	if err := f.errFor(entityType); err != nil {
		return nil, err
	}
	for _, e := range f.ofType(entityType) {
		if strings.EqualFold(e.ID, id) {
			return e, nil
		}
	}
	return nil, apperrors.NewNotFoundError("not found")
}

func (f *fakeKnowledgeRepo) GetByExactName(ctx context.Context, entityType entities.EntityType, name string) ([]*entities.LocationEntity, error) {
	if err := f.errFor(entityType); err != nil {
		return nil, err
	}
	var result []*entities.LocationEntity
	for _, e := range f.ofType(entityType) {
		if strings.EqualFold(e.Name, name) {
			result = append(result, e)
		}
	}
	return result, nil
}

func (f *fakeKnowledgeRepo) GetByAlias(ctx context.Context, entityType entities.EntityType, alias string) ([]*entities.LocationEntity, error) {
	if err := f.errFor(entityType); err != nil {
		return nil, err
	}
	var result []*entities.LocationEntity
	for _, e := range f.ofType(entityType) {
		for _, a := range e.Aliases {
			if strings.EqualFold(a, alias) {
				result = append(result, e)
				break
			}
		}
	}
	return result, nil
}

func (f *fakeKnowledgeRepo) SearchFulltext(ctx context.Context, entityType entities.EntityType, query repositories.FulltextQuery, limit int) ([]*entities.ScoredCandidate, error) {
	if err := f.errFor(entityType); err != nil {
		return nil, err
	}
	if f.fulltextErr != nil {
		return nil, f.fulltextErr
	}
	var result []*entities.ScoredCandidate
	for _, e := range f.ofType(entityType) {
		score := 0.0
		haystack := strings.ToLower(strings.Join(searchableTerms(e), " "))
		for _, word := range query.Words {
			if strings.Contains(haystack, word) {
				score++
			} else if !query.ExactOnly && fuzzyTokenMatch(haystack, word) {
				score += 0.5
			}
		}
		if score > 0 {
			result = append(result, &entities.ScoredCandidate{
				Entity:    e,
				Score:     score,
				MatchKind: entities.MatchFulltextFuzzy,
			})
		}
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

// fuzzyTokenMatch approximates Lucene edit-distance-1 token matching.
func fuzzyTokenMatch(haystack, word string) bool {
	for _, token := range strings.Fields(haystack) {
		if Similarity(word, token) >= 0.3 {
			return true
		}
	}
	return false
}

func (f *fakeKnowledgeRepo) SearchContains(ctx context.Context, entityType entities.EntityType, fragment string, limit int) ([]*entities.LocationEntity, error) {
	if err := f.errFor(entityType); err != nil {
		return nil, err
	}
	var result []*entities.LocationEntity
	lower := strings.ToLower(fragment)
	for _, e := range f.ofType(entityType) {
		haystack := strings.ToLower(strings.Join(searchableTerms(e), " "))
		if strings.Contains(haystack, lower) {
			result = append(result, e)
		}
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (f *fakeKnowledgeRepo) ListAll(ctx context.Context, entityType entities.EntityType) ([]*entities.LocationEntity, error) {
	if err := f.errFor(entityType); err != nil {
		return nil, err
	}
	return f.ofType(entityType), nil
}

func (f *fakeKnowledgeRepo) ListSensors(ctx context.Context, kind entities.SensorKind) ([]*entities.Sensor, error) {
	var result []*entities.Sensor
	for _, s := range f.sensors {
		if s.Kind == kind {
			result = append(result, s)
		}
	}
	return result, nil
}

func (f *fakeKnowledgeRepo) HasConnectivity(ctx context.Context, from, to *entities.LocationEntity) (bool, error) {
	if f.connectivity == nil {
		return false, nil
	}
	return f.connectivity[from.ID+":"+to.ID], nil
}

func (f *fakeKnowledgeRepo) stopByID(id string) *entities.LocationEntity {
	for _, e := range f.ofType(entities.EntityTypeStop) {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (f *fakeKnowledgeRepo) CommonLines(ctx context.Context, fromStopID, toStopID string) ([]string, error) {
	from, to := f.stopByID(fromStopID), f.stopByID(toStopID)
	if from == nil || to == nil {
		return nil, nil
	}
	var common []string
	for _, line := range from.Lines {
		if containsString(to.Lines, line) {
			common = append(common, line)
		}
	}
	return common, nil
}

func (f *fakeKnowledgeRepo) LineStops(ctx context.Context, fromStopID, toStopID, line string) ([]string, error) {
	if stops, ok := f.linePaths[line+"|"+fromStopID+"|"+toStopID]; ok {
		return stops, nil
	}
	if stops, ok := f.linePaths[line+"|"+toStopID+"|"+fromStopID]; ok {
		reversed := make([]string, len(stops))
		for i, name := range stops {
			reversed[len(stops)-1-i] = name
		}
		return reversed, nil
	}
	return nil, nil
}

func (f *fakeKnowledgeRepo) TransferOptions(ctx context.Context, fromStopID, toStopID string) ([]entities.TransferOption, error) {
	from, to := f.stopByID(fromStopID), f.stopByID(toStopID)
	if from == nil || to == nil {
		return nil, nil
	}
	var options []entities.TransferOption
	for _, l1 := range from.Lines {
		for _, l2 := range to.Lines {
			if l1 == l2 {
				continue
			}
			for _, t := range f.ofType(entities.EntityTypeStop) {
				if t.ID == fromStopID || t.ID == toStopID {
					continue
				}
				if containsString(t.Lines, l1) && containsString(t.Lines, l2) {
					options = append(options, entities.TransferOption{
						FromLine: l1,
						ToLine:   l2,
						StopID:   t.ID,
						StopName: t.Name,
					})
				}
			}
		}
	}
	return options, nil
}

func (f *fakeKnowledgeRepo) NearbyEntities(ctx context.Context, entityType entities.EntityType, center entities.Coordinates, radiusMeters float64, limit int) ([]*entities.LocationEntity, error) {
	var result []*entities.LocationEntity
	for _, e := range f.ofType(entityType) {
		if e.Coordinates.IsZero() {
			continue
		}
		d := geo.HaversineMeters(center.Latitude, center.Longitude, e.Coordinates.Latitude, e.Coordinates.Longitude)
		if d <= radiusMeters {
			result = append(result, e)
		}
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

// fakeIndexManager toggles fulltext availability without a graph.
type fakeIndexManager struct {
	available bool
	ensureErr error
}

func (f *fakeIndexManager) EnsureIndexes(ctx context.Context) error { return f.ensureErr }

func (f *fakeIndexManager) Available() bool { return f.available }

func newTestResolver(repo *fakeKnowledgeRepo, available bool) *ResolverService {
	return NewResolverService(repo, &fakeIndexManager{available: available}, nil, 0.18, 0)
}
