package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/imiq-project/Dashbot/internal/domain/entities"
)

// ProximityPort answers nearest-sensor questions for a point.
type ProximityPort interface {
	NearestSensor(ctx context.Context, kind entities.SensorKind, from entities.Coordinates) (*entities.SensorProximityResult, error)
}

// SensorHandler handles sensor proximity requests
type SensorHandler struct {
	proximity ProximityPort
}

// NewSensorHandler creates a new sensor handler
func NewSensorHandler(proximity ProximityPort) *SensorHandler {
	return &SensorHandler{proximity: proximity}
}

// HandleNearestSensor handles GET /api/sensors/nearest?kind=parking&lat=...&lon=...
func (h *SensorHandler) HandleNearestSensor(w http.ResponseWriter, r *http.Request) {
	kind, ok := entities.ParseSensorKind(r.URL.Query().Get("kind"))
	if !ok {
		respondWithError(w, http.StatusBadRequest, "unknown sensor kind")
		return
	}

	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil {
		respondWithError(w, http.StatusBadRequest, "lat and lon are required")
		return
	}

	result, err := h.proximity.NearestSensor(r.Context(), kind, entities.Coordinates{Latitude: lat, Longitude: lon})
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}
