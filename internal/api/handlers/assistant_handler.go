package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/imiq-project/Dashbot/internal/api/middleware"
	"github.com/imiq-project/Dashbot/internal/application/services"
)

// AssistantPort is the slice of the assistant the handler needs.
type AssistantPort interface {
	Handle(ctx context.Context, req *services.AssistantRequest) (*services.AssistantResponse, error)
	EndSession(ctx context.Context, sessionID string)
}

// AssistantHandler handles conversational query requests
type AssistantHandler struct {
	assistant AssistantPort
}

// NewAssistantHandler creates a new assistant handler
func NewAssistantHandler(assistant AssistantPort) *AssistantHandler {
	return &AssistantHandler{assistant: assistant}
}

// HandleQuery handles POST /api/query
func (h *AssistantHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	var request services.AssistantRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// The session header wins over a body field so proxies can inject it.
	if sessionID := r.Header.Get(middleware.SessionHeader); sessionID != "" {
		request.SessionID = sessionID
	}
	if request.SessionID == "" {
		respondWithError(w, http.StatusBadRequest, "session id is required")
		return
	}

	response, err := h.assistant.Handle(r.Context(), &request)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, response)
}

// HandleEndSession handles DELETE /api/sessions/{id}
func (h *AssistantHandler) HandleEndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		respondWithError(w, http.StatusBadRequest, "session id is required")
		return
	}
	h.assistant.EndSession(r.Context(), sessionID)
	w.WriteHeader(http.StatusNoContent)
}
