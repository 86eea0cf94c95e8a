package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/imiq-project/Dashbot/internal/api/handlers"
	"github.com/imiq-project/Dashbot/internal/domain/entities"
	"github.com/imiq-project/Dashbot/internal/domain/repositories"
	apperrors "github.com/imiq-project/Dashbot/pkg/errors"
)

type stubKnowledgeRepo struct {
	repositories.KnowledgeRepository

	entity *entities.LocationEntity
	list   []*entities.LocationEntity
	err    error
}

func (s *stubKnowledgeRepo) GetByID(ctx context.Context, entityType entities.EntityType, id string) (*entities.LocationEntity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.entity, nil
}

func (s *stubKnowledgeRepo) ListAll(ctx context.Context, entityType entities.EntityType) ([]*entities.LocationEntity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.list, nil
}

type stubResolver struct {
	candidates []*entities.ScoredCandidate
	err        error

	lastQuery      string
	lastTypes      []entities.EntityType
	lastExhaustive bool
}

func (s *stubResolver) Resolve(ctx context.Context, text string, types []entities.EntityType, exhaustive bool) ([]*entities.ScoredCandidate, error) {
	s.lastQuery = text
	s.lastTypes = types
	s.lastExhaustive = exhaustive
	if s.err != nil {
		return nil, s.err
	}
	return s.candidates, nil
}

func TestEntityHandler_GetEntity(t *testing.T) {
	repo := &stubKnowledgeRepo{
		entity: &entities.LocationEntity{ID: "G26", Type: entities.EntityTypeBuilding, Name: "Library"},
	}
	handler := handlers.NewEntityHandler(repo, &stubResolver{})

	req := httptest.NewRequest("GET", "/api/entities/building/G26", nil)
	req.SetPathValue("type", "building")
	req.SetPathValue("id", "G26")
	w := httptest.NewRecorder()

	handler.HandleGetEntity(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var entity entities.LocationEntity
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&entity))
	assert.Equal(t, "Library", entity.Name)
}

func TestEntityHandler_GetEntity_UnknownType(t *testing.T) {
	handler := handlers.NewEntityHandler(&stubKnowledgeRepo{}, &stubResolver{})

	req := httptest.NewRequest("GET", "/api/entities/spaceship/G26", nil)
	req.SetPathValue("type", "spaceship")
	req.SetPathValue("id", "G26")
	w := httptest.NewRecorder()

	handler.HandleGetEntity(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEntityHandler_GetEntity_NotFound(t *testing.T) {
	repo := &stubKnowledgeRepo{err: apperrors.NewNotFoundError("entity not found")}
	handler := handlers.NewEntityHandler(repo, &stubResolver{})

	req := httptest.NewRequest("GET", "/api/entities/building/nope", nil)
	req.SetPathValue("type", "building")
	req.SetPathValue("id", "nope")
	w := httptest.NewRecorder()

	handler.HandleGetEntity(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEntityHandler_ListEntities(t *testing.T) {
	repo := &stubKnowledgeRepo{
		list: []*entities.LocationEntity{
			{ID: "G26", Type: entities.EntityTypeBuilding, Name: "Library"},
			{ID: "G10", Type: entities.EntityTypeBuilding, Name: "Building 10"},
		},
	}
	handler := handlers.NewEntityHandler(repo, &stubResolver{})

	req := httptest.NewRequest("GET", "/api/entities?type=building", nil)
	w := httptest.NewRecorder()

	handler.HandleListEntities(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Count    int                        `json:"count"`
		Entities []*entities.LocationEntity `json:"entities"`
	}
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, 2, response.Count)
	assert.Len(t, response.Entities, 2)
}

func TestEntityHandler_Resolve(t *testing.T) {
	resolver := &stubResolver{
		candidates: []*entities.ScoredCandidate{
			{
				Entity:    &entities.LocationEntity{ID: "G26", Type: entities.EntityTypeBuilding, Name: "Library"},
				Score:     90,
				MatchKind: entities.MatchAlias,
			},
		},
	}
	handler := handlers.NewEntityHandler(&stubKnowledgeRepo{}, resolver)

	req := httptest.NewRequest("GET", "/api/entities/resolve?q=the+library&type=building&exhaustive=true", nil)
	w := httptest.NewRecorder()

	handler.HandleResolve(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "the library", resolver.lastQuery)
	assert.Equal(t, []entities.EntityType{entities.EntityTypeBuilding}, resolver.lastTypes)
	assert.True(t, resolver.lastExhaustive)
}

func TestEntityHandler_Resolve_DefaultsToAllTypes(t *testing.T) {
	resolver := &stubResolver{candidates: []*entities.ScoredCandidate{}}
	handler := handlers.NewEntityHandler(&stubKnowledgeRepo{}, resolver)

	req := httptest.NewRequest("GET", "/api/entities/resolve?q=mensa", nil)
	w := httptest.NewRecorder()

	handler.HandleResolve(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entities.AllEntityTypes, resolver.lastTypes)
	assert.False(t, resolver.lastExhaustive)
}

func TestEntityHandler_Resolve_MissingQuery(t *testing.T) {
	handler := handlers.NewEntityHandler(&stubKnowledgeRepo{}, &stubResolver{})

	req := httptest.NewRequest("GET", "/api/entities/resolve", nil)
	w := httptest.NewRecorder()

	handler.HandleResolve(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
