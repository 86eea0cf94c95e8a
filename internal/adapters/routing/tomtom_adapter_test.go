package routing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imiq-project/Dashbot/internal/domain/entities"
	"github.com/imiq-project/Dashbot/internal/infrastructure/clients/tomtom"
	"github.com/imiq-project/Dashbot/pkg/config"
)

const tomtomRouteBody = `{
  "routes": [{
    "summary": {"lengthInMeters": 2100, "travelTimeInSeconds": 420, "trafficDelayInSeconds": 60},
    "guidance": {"instructions": [
      {"message": "Leave from Universitätsplatz", "street": "Universitätsplatz", "routeOffsetInMeters": 0, "point": {"latitude": 52.1205, "longitude": 11.6276}},
      {"message": "Turn left onto Walther-Rathenau-Straße", "street": "Walther-Rathenau-Straße", "routeOffsetInMeters": 600, "point": {"latitude": 52.1240, "longitude": 11.6300}},
      {"message": "Keep right", "street": "", "routeOffsetInMeters": 1400, "point": {"latitude": 52.1270, "longitude": 11.6330}},
      {"message": "Arrive", "street": "Walther-Rathenau-Straße", "routeOffsetInMeters": 2100, "point": {"latitude": 52.1301, "longitude": 11.6263}}
    ]}
  }]
}`

const tomtomFlowBody = `{
  "flowSegmentData": {"currentSpeed": 30, "freeFlowSpeed": 50, "currentTravelTime": 120, "freeFlowTravelTime": 72, "roadClosure": false}
}`

func newTomTomTestAdapter(t *testing.T, handler http.HandlerFunc) *TomTomAdapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := tomtom.NewClient(&config.TomTomConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Timeout: 2 * time.Second,
	})
	return NewTomTomAdapter(client)
}

func TestTomTomAdapter_GetRoute(t *testing.T) {
	adapter := newTomTomTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Path, "flowSegmentData") {
			w.Write([]byte(tomtomFlowBody))
			return
		}
		assert.Contains(t, r.URL.Path, "/routing/1/calculateRoute/")
		assert.Equal(t, "true", r.URL.Query().Get("traffic"))
		w.Write([]byte(tomtomRouteBody))
	})

	result, err := adapter.GetRoute(context.Background(),
		entities.Coordinates{Latitude: 52.1205, Longitude: 11.6276},
		entities.Coordinates{Latitude: 52.1301, Longitude: 11.6263},
		entities.ModeDriving)
	require.NoError(t, err)

	assert.Equal(t, entities.ModeDriving, result.Mode)
	assert.Equal(t, 2100.0, result.DistanceMeters)
	assert.Equal(t, 420.0, result.DurationSeconds)

	// Street names deduplicated in first-seen order, empties dropped.
	assert.Equal(t, []string{"Universitätsplatz", "Walther-Rathenau-Straße"}, result.StreetNames)

	// Per-step distance is the offset delta.
	require.Len(t, result.Steps, 4)
	assert.Equal(t, 600.0, result.Steps[1].DistanceMeters)
	assert.Equal(t, 800.0, result.Steps[2].DistanceMeters)

	// 30/50 current-to-free-flow ratio lands in the moderate bucket.
	require.NotNil(t, result.Traffic)
	assert.Equal(t, "moderate", result.Traffic.Level)
	assert.Equal(t, 60.0, result.Traffic.DelaySeconds)
}

func TestTomTomAdapter_FlowFailureIsNonFatal(t *testing.T) {
	adapter := newTomTomTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "flowSegmentData") {
			http.Error(w, "no flow data", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(tomtomRouteBody))
	})

	result, err := adapter.GetRoute(context.Background(),
		entities.Coordinates{Latitude: 52.1205, Longitude: 11.6276},
		entities.Coordinates{Latitude: 52.1301, Longitude: 11.6263},
		entities.ModeDriving)
	require.NoError(t, err)
	require.NotNil(t, result.Traffic)
	assert.Equal(t, 60.0, result.Traffic.DelaySeconds)
}

func TestTomTomAdapter_SupportsMode(t *testing.T) {
	adapter := &TomTomAdapter{}
	assert.True(t, adapter.SupportsMode(entities.ModeDriving))
	assert.False(t, adapter.SupportsMode(entities.ModeWalking))
	assert.False(t, adapter.SupportsMode(entities.ModeCycling))
}

func TestCongestionLevel(t *testing.T) {
	assert.Equal(t, "free_flowing", CongestionLevel(0.95))
	assert.Equal(t, "light", CongestionLevel(0.75))
	assert.Equal(t, "moderate", CongestionLevel(0.6))
	assert.Equal(t, "heavy", CongestionLevel(0.4))
	assert.Equal(t, "severe", CongestionLevel(0.2))
}
