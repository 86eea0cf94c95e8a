package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imiq-project/Dashbot/internal/domain/entities"
)

type fakeRouteProvider struct {
	name   string
	modes  map[entities.TransportMode]bool
	result *entities.RouteResult
	err    error
	calls  int
}

func (f *fakeRouteProvider) Name() string { return f.name }

func (f *fakeRouteProvider) SupportsMode(mode entities.TransportMode) bool {
	if f.modes == nil {
		return true
	}
	return f.modes[mode]
}

func (f *fakeRouteProvider) GetRoute(ctx context.Context, origin, dest entities.Coordinates, mode entities.TransportMode) (*entities.RouteResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	result := *f.result
	result.Mode = mode
	return &result, nil
}

func locatedBuilding(id string, lat, lon float64) *entities.LocationEntity {
	return &entities.LocationEntity{
		ID:          id,
		Type:        entities.EntityTypeBuilding,
		Name:        "Building " + id,
		Coordinates: entities.Coordinates{Latitude: lat, Longitude: lon},
	}
}

func TestRoute_DrivingPrefersTrafficProvider(t *testing.T) {
	general := &fakeRouteProvider{name: "general", result: &entities.RouteResult{DistanceMeters: 2000}}
	traffic := &fakeRouteProvider{name: "traffic", result: &entities.RouteResult{
		DistanceMeters: 2100,
		StreetNames:    []string{"Walther-Rathenau-Straße"},
	}}
	svc := NewRoutingService(general, traffic, &fakeKnowledgeRepo{}, nil, nil)

	results, err := svc.Route(context.Background(),
		locatedBuilding("a", 52.1205, 11.6276),
		locatedBuilding("b", 52.1301, 11.6263),
		[]entities.TransportMode{entities.ModeDriving})
	require.NoError(t, err)

	result := results[entities.ModeDriving]
	require.NotNil(t, result)
	assert.Equal(t, 2100.0, result.DistanceMeters)
	assert.False(t, result.Degraded)
	assert.Equal(t, 0, general.calls)
}

func TestRoute_DrivingFallsBackDegraded(t *testing.T) {
	general := &fakeRouteProvider{name: "general", result: &entities.RouteResult{
		DistanceMeters: 2000,
		StreetNames:    []string{"Universitätsplatz", "Pfälzer Straße"},
	}}
	traffic := &fakeRouteProvider{name: "traffic", err: errors.New("unreachable")}
	svc := NewRoutingService(general, traffic, &fakeKnowledgeRepo{}, nil, nil)

	results, err := svc.Route(context.Background(),
		locatedBuilding("a", 52.1205, 11.6276),
		locatedBuilding("b", 52.1301, 11.6263),
		[]entities.TransportMode{entities.ModeDriving})
	require.NoError(t, err)

	result := results[entities.ModeDriving]
	require.NotNil(t, result)
	assert.True(t, result.Degraded)
	assert.NotEmpty(t, result.StreetNames)
	assert.Equal(t, 1, general.calls)
}

func TestRoute_WalkingNeverTouchesTrafficProvider(t *testing.T) {
	general := &fakeRouteProvider{name: "general", result: &entities.RouteResult{DistanceMeters: 900}}
	traffic := &fakeRouteProvider{name: "traffic", result: &entities.RouteResult{DistanceMeters: 1}}
	svc := NewRoutingService(general, traffic, &fakeKnowledgeRepo{}, nil, nil)

	results, err := svc.Route(context.Background(),
		locatedBuilding("a", 52.1205, 11.6276),
		locatedBuilding("b", 52.1301, 11.6263),
		[]entities.TransportMode{entities.ModeWalking})
	require.NoError(t, err)

	assert.Equal(t, 0, traffic.calls)
	assert.Equal(t, 900.0, results[entities.ModeWalking].DistanceMeters)
}

func TestRoute_SyntheticFallbackWhenAllProvidersFail(t *testing.T) {
	general := &fakeRouteProvider{name: "general", err: errors.New("down")}
	svc := NewRoutingService(general, nil, &fakeKnowledgeRepo{}, nil, nil)

	// Roughly 1.3 km apart on a northeast diagonal, no adjacency edge.
	origin := locatedBuilding("a", 52.1205, 11.6276)
	dest := locatedBuilding("b", 52.1288, 11.6410)

	results, err := svc.Route(context.Background(), origin, dest,
		[]entities.TransportMode{entities.ModeWalking})
	require.NoError(t, err)

	result := results[entities.ModeWalking]
	require.NotNil(t, result)
	assert.True(t, result.Synthetic)
	assert.True(t, result.Degraded)
	assert.True(t, result.ConnectivityGap)
	require.Len(t, result.Steps, 1)
	assert.Contains(t, result.Steps[0].Instruction, "northeast")
	assert.InDelta(t, 1300, result.DistanceMeters, 60)

	// Duration follows the fixed walking speed of 80 m/min.
	assert.InDelta(t, result.DistanceMeters/80*60, result.DurationSeconds, 0.01)
}

func TestRoute_ConnectivityGapAnnotatesProviderRoute(t *testing.T) {
	general := &fakeRouteProvider{name: "general", result: &entities.RouteResult{DistanceMeters: 900}}
	repo := &fakeKnowledgeRepo{}
	svc := NewRoutingService(general, nil, repo, nil, nil)

	origin := locatedBuilding("a", 52.1205, 11.6276)
	dest := locatedBuilding("b", 52.1301, 11.6263)

	results, err := svc.Route(context.Background(), origin, dest,
		[]entities.TransportMode{entities.ModeWalking})
	require.NoError(t, err)

	// Without an adjacency path the provider route still wins, but the
	// gap is flagged for the generation layer.
	result := results[entities.ModeWalking]
	require.NotNil(t, result)
	assert.True(t, result.ConnectivityGap)
	assert.False(t, result.Synthetic)
	assert.Equal(t, 900.0, result.DistanceMeters)

	repo.connectivity = map[string]bool{"a:b": true}
	results, err = svc.Route(context.Background(), origin, dest,
		[]entities.TransportMode{entities.ModeWalking})
	require.NoError(t, err)
	assert.False(t, results[entities.ModeWalking].ConnectivityGap)
}

func TestRoute_MultiModeFanOut(t *testing.T) {
	general := &fakeRouteProvider{name: "general", result: &entities.RouteResult{DistanceMeters: 900}}
	traffic := &fakeRouteProvider{name: "traffic", result: &entities.RouteResult{DistanceMeters: 2100}}
	svc := NewRoutingService(general, traffic, &fakeKnowledgeRepo{}, nil, nil)

	results, err := svc.Route(context.Background(),
		locatedBuilding("a", 52.1205, 11.6276),
		locatedBuilding("b", 52.1301, 11.6263),
		[]entities.TransportMode{entities.ModeWalking, entities.ModeCycling, entities.ModeDriving})
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, entities.ModeWalking, results[entities.ModeWalking].Mode)
	assert.Equal(t, entities.ModeCycling, results[entities.ModeCycling].Mode)
	assert.Equal(t, 2100.0, results[entities.ModeDriving].DistanceMeters)
}

func TestRoute_TransitModePlansOverStopGraph(t *testing.T) {
	general := &fakeRouteProvider{name: "general", result: &entities.RouteResult{DistanceMeters: 900}}
	repo := transitCampusRepo()
	repo.connectivity = map[string]bool{"g26:station-office": true}
	svc := NewRoutingService(general, nil, repo, nil, nil)

	origin := transitBuilding("g26", "Library", 52.1401, 11.6438)
	dest := transitBuilding("station-office", "Reisezentrum", 52.1303, 11.6272)

	results, err := svc.Route(context.Background(), origin, dest,
		[]entities.TransportMode{entities.ModeTransit})
	require.NoError(t, err)

	result := results[entities.ModeTransit]
	require.NotNil(t, result)
	assert.Equal(t, entities.ModeTransit, result.Mode)
	require.NotNil(t, result.Transit)
	assert.Equal(t, []string{"2"}, result.Transit.LinesUsed)
	assert.False(t, result.Synthetic)
	require.Len(t, result.Steps, 3)
	assert.Contains(t, result.Steps[1].Instruction, "Take line 2")

	// The stop graph answers transit; providers are never consulted.
	assert.Equal(t, 0, general.calls)
}

func TestRoute_MissingCoordinatesWithoutGeocoder(t *testing.T) {
	svc := NewRoutingService(&fakeRouteProvider{result: &entities.RouteResult{}}, nil, &fakeKnowledgeRepo{}, nil, nil)

	origin := &entities.LocationEntity{ID: "x", Type: entities.EntityTypeBuilding, Name: "Nowhere"}
	_, err := svc.Route(context.Background(), origin,
		locatedBuilding("b", 52.13, 11.63),
		[]entities.TransportMode{entities.ModeWalking})
	require.Error(t, err)
}

type fakeGeocoder struct {
	coords entities.Coordinates
	label  string
	err    error
}

func (f *fakeGeocoder) Geocode(ctx context.Context, query string) (*entities.Coordinates, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	coords := f.coords
	return &coords, f.label, nil
}

func TestRoute_GeocoderFallbackForUnlocatedEntity(t *testing.T) {
	general := &fakeRouteProvider{name: "general", result: &entities.RouteResult{DistanceMeters: 700}}
	geocoder := &fakeGeocoder{coords: entities.Coordinates{Latitude: 52.13, Longitude: 11.62}, label: "Hauptbahnhof"}
	svc := NewRoutingService(general, nil, &fakeKnowledgeRepo{}, geocoder, nil)

	origin := &entities.LocationEntity{ID: "hbf", Type: entities.EntityTypeLandmark, Name: "Hauptbahnhof"}
	results, err := svc.Route(context.Background(), origin,
		locatedBuilding("b", 52.1205, 11.6276),
		[]entities.TransportMode{entities.ModeWalking})
	require.NoError(t, err)
	assert.Equal(t, 700.0, results[entities.ModeWalking].DistanceMeters)
}
