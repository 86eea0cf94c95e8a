package handlers

import (
	"context"
	"net/http"

	"github.com/imiq-project/Dashbot/internal/domain/entities"
	"github.com/imiq-project/Dashbot/internal/domain/repositories"
)

// ResolverPort runs the lookup cascade for an ad-hoc query string.
type ResolverPort interface {
	Resolve(ctx context.Context, text string, types []entities.EntityType, exhaustive bool) ([]*entities.ScoredCandidate, error)
}

// EntityHandler handles entity lookup requests
type EntityHandler struct {
	repo     repositories.KnowledgeRepository
	resolver ResolverPort
}

// NewEntityHandler creates a new entity handler
func NewEntityHandler(repo repositories.KnowledgeRepository, resolver ResolverPort) *EntityHandler {
	return &EntityHandler{repo: repo, resolver: resolver}
}

// HandleGetEntity handles GET /api/entities/{type}/{id}
func (h *EntityHandler) HandleGetEntity(w http.ResponseWriter, r *http.Request) {
	entityType, ok := entities.ParseEntityType(r.PathValue("type"))
	if !ok {
		respondWithError(w, http.StatusBadRequest, "unknown entity type")
		return
	}

	entity, err := h.repo.GetByID(r.Context(), entityType, r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, entity)
}

// HandleListEntities handles GET /api/entities?type=building
func (h *EntityHandler) HandleListEntities(w http.ResponseWriter, r *http.Request) {
	entityType, ok := entities.ParseEntityType(r.URL.Query().Get("type"))
	if !ok {
		respondWithError(w, http.StatusBadRequest, "unknown entity type")
		return
	}

	list, err := h.repo.ListAll(r.Context(), entityType)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"type":     entityType,
		"count":    len(list),
		"entities": list,
	})
}

// HandleResolve handles GET /api/entities/resolve?q=library&type=building
func (h *EntityHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	types := entities.AllEntityTypes
	if raw := r.URL.Query().Get("type"); raw != "" {
		entityType, ok := entities.ParseEntityType(raw)
		if !ok {
			respondWithError(w, http.StatusBadRequest, "unknown entity type")
			return
		}
		types = []entities.EntityType{entityType}
	}

	candidates, err := h.resolver.Resolve(r.Context(), query, types, r.URL.Query().Get("exhaustive") == "true")
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"query":      query,
		"candidates": candidates,
	})
}
