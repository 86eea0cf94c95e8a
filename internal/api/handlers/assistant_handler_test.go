package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/imiq-project/Dashbot/internal/api/handlers"
	"github.com/imiq-project/Dashbot/internal/application/services"
	"github.com/imiq-project/Dashbot/internal/domain/entities"
	apperrors "github.com/imiq-project/Dashbot/pkg/errors"
)

type stubAssistant struct {
	lastRequest *services.AssistantRequest
	response    *services.AssistantResponse
	err         error
	ended       []string
}

func (s *stubAssistant) Handle(ctx context.Context, req *services.AssistantRequest) (*services.AssistantResponse, error) {
	s.lastRequest = req
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

func (s *stubAssistant) EndSession(ctx context.Context, sessionID string) {
	s.ended = append(s.ended, sessionID)
}

func TestAssistantHandler_Query_Success(t *testing.T) {
	assistant := &stubAssistant{
		response: &services.AssistantResponse{
			Entity:    &entities.LocationEntity{ID: "G26", Type: entities.EntityTypeBuilding, Name: "Library"},
			MatchKind: "alias",
		},
	}
	handler := handlers.NewAssistantHandler(assistant)

	body := `{"intent":"locate","mention":"the library"}`
	req := httptest.NewRequest("POST", "/api/query", strings.NewReader(body))
	req.Header.Set("X-Session-ID", "sess-1")
	w := httptest.NewRecorder()

	handler.HandleQuery(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sess-1", assistant.lastRequest.SessionID)

	var response services.AssistantResponse
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "G26", response.Entity.ID)
	assert.Equal(t, "alias", response.MatchKind)
}

func TestAssistantHandler_Query_HeaderOverridesBodySession(t *testing.T) {
	assistant := &stubAssistant{response: &services.AssistantResponse{}}
	handler := handlers.NewAssistantHandler(assistant)

	body := `{"session_id":"body-session","mention":"mensa"}`
	req := httptest.NewRequest("POST", "/api/query", strings.NewReader(body))
	req.Header.Set("X-Session-ID", "header-session")
	w := httptest.NewRecorder()

	handler.HandleQuery(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "header-session", assistant.lastRequest.SessionID)
}

func TestAssistantHandler_Query_MissingSession(t *testing.T) {
	handler := handlers.NewAssistantHandler(&stubAssistant{})

	req := httptest.NewRequest("POST", "/api/query", strings.NewReader(`{"mention":"mensa"}`))
	w := httptest.NewRecorder()

	handler.HandleQuery(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssistantHandler_Query_InvalidBody(t *testing.T) {
	handler := handlers.NewAssistantHandler(&stubAssistant{})

	req := httptest.NewRequest("POST", "/api/query", strings.NewReader("{not json"))
	req.Header.Set("X-Session-ID", "sess-1")
	w := httptest.NewRecorder()

	handler.HandleQuery(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssistantHandler_Query_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not found", apperrors.NewNotFoundError("no such place"), http.StatusNotFound},
		{"validation", apperrors.NewValidationError("unknown intent"), http.StatusBadRequest},
		{"low confidence", apperrors.NewLowConfidenceError("too vague"), http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := handlers.NewAssistantHandler(&stubAssistant{err: tt.err})

			req := httptest.NewRequest("POST", "/api/query", strings.NewReader(`{"mention":"x"}`))
			req.Header.Set("X-Session-ID", "sess-1")
			w := httptest.NewRecorder()

			handler.HandleQuery(w, req)

			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestAssistantHandler_EndSession(t *testing.T) {
	assistant := &stubAssistant{}
	handler := handlers.NewAssistantHandler(assistant)

	req := httptest.NewRequest("DELETE", "/api/sessions/sess-9", nil)
	req.SetPathValue("id", "sess-9")
	w := httptest.NewRecorder()

	handler.HandleEndSession(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"sess-9"}, assistant.ended)
}
