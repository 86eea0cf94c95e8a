package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/imiq-project/Dashbot/internal/domain/entities"
	"github.com/imiq-project/Dashbot/internal/domain/providers"
	"github.com/imiq-project/Dashbot/internal/infrastructure/clients/ors"
	"github.com/imiq-project/Dashbot/internal/infrastructure/observability"
	apperrors "github.com/imiq-project/Dashbot/pkg/errors"
)

// routeCacheTTL bounds how long a provider route answer is reused.
// Routes between fixed campus points change rarely; traffic does not
// flow through this cache.
const routeCacheTTL = 10 * time.Minute

var orsProfiles = map[entities.TransportMode]string{
	entities.ModeWalking:    "foot-walking",
	entities.ModeCycling:    "cycling-regular",
	entities.ModeDriving:    "driving-car",
	entities.ModeWheelchair: "wheelchair",
}

// ORSAdapter implements RouteProvider on OpenRouteService
type ORSAdapter struct {
	client *ors.Client
	cache  providers.CacheProvider

	focusLat float64
	focusLon float64
	city     string
}

// NewORSAdapter creates a new OpenRouteService routing adapter. The focus
// point biases geocoding towards the campus, and the city is appended to
// geocode queries that do not already mention it.
func NewORSAdapter(client *ors.Client, cache providers.CacheProvider, focusLat, focusLon float64, city string) *ORSAdapter {
	return &ORSAdapter{client: client, cache: cache, focusLat: focusLat, focusLon: focusLon, city: city}
}

// Name identifies the provider
func (a *ORSAdapter) Name() string {
	return "openrouteservice"
}

// SupportsMode reports whether the provider can route the given mode
func (a *ORSAdapter) SupportsMode(mode entities.TransportMode) bool {
	_, ok := orsProfiles[mode]
	return ok
}

// GetRoute computes a route and normalizes it into the common shape
func (a *ORSAdapter) GetRoute(ctx context.Context, origin, dest entities.Coordinates, mode entities.TransportMode) (*entities.RouteResult, error) {
	profile, ok := orsProfiles[mode]
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unsupported mode %s", mode))
	}

	cacheKey := fmt.Sprintf("route:ors:%s:%.5f,%.5f:%.5f,%.5f",
		profile, origin.Latitude, origin.Longitude, dest.Latitude, dest.Longitude)
	if cached := a.cachedRoute(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	directions, err := a.client.GetDirections(ctx, profile,
		origin.Longitude, origin.Latitude, dest.Longitude, dest.Latitude)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, apperrors.NewProviderTimeoutError("openrouteservice timed out", err)
		}
		return nil, apperrors.NewProviderUnavailableError("openrouteservice request failed", err)
	}
	if len(directions.Features) == 0 {
		return nil, apperrors.NewProviderUnavailableError("openrouteservice returned no route", nil)
	}

	result := normalizeORSRoute(&directions.Features[0], mode)
	a.storeRoute(ctx, cacheKey, result)
	return result, nil
}

// Geocode resolves free text to coordinates near the campus focus point
func (a *ORSAdapter) Geocode(ctx context.Context, query string) (*entities.Coordinates, string, error) {
	geocoded, err := a.client.Geocode(ctx, a.scopedQuery(query), a.focusLat, a.focusLon)
	if err != nil {
		return nil, "", apperrors.NewProviderUnavailableError("geocoding failed", err)
	}
	if len(geocoded.Features) == 0 {
		return nil, "", apperrors.NewNotFoundError(fmt.Sprintf("no geocode result for %q", query))
	}

	feature := geocoded.Features[0]
	if len(feature.Geometry.Coordinates) < 2 {
		return nil, "", apperrors.NewExternalError("malformed geocode geometry", nil)
	}
	// Point geometry is a bare [lon, lat] pair.
	coords := &entities.Coordinates{
		Longitude: feature.Geometry.Coordinates[0],
		Latitude:  feature.Geometry.Coordinates[1],
	}
	return coords, feature.Properties.Label, nil
}

// scopedQuery keeps geocode lookups inside the configured city. Street
// names like "Breiter Weg" exist in many German towns.
func (a *ORSAdapter) scopedQuery(query string) string {
	if a.city == "" || strings.Contains(strings.ToLower(query), strings.ToLower(a.city)) {
		return query
	}
	return query + ", " + a.city
}

func (a *ORSAdapter) cachedRoute(ctx context.Context, key string) *entities.RouteResult {
	if a.cache == nil {
		return nil
	}
	data, err := a.cache.Get(ctx, key)
	if err != nil || data == nil {
		return nil
	}
	var result entities.RouteResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return &result
}

func (a *ORSAdapter) storeRoute(ctx context.Context, key string, result *entities.RouteResult) {
	if a.cache == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := a.cache.Set(ctx, key, data, routeCacheTTL); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Failed to cache route")
	}
}

func normalizeORSRoute(feature *ors.Feature, mode entities.TransportMode) *entities.RouteResult {
	var steps []entities.RouteStep
	for _, segment := range feature.Properties.Segments {
		for _, step := range segment.Steps {
			steps = append(steps, entities.RouteStep{
				Instruction:    step.Instruction,
				StreetName:     step.Name,
				Coordinates:    stepCoordinates(feature, step),
				DistanceMeters: step.Distance,
			})
		}
	}

	return &entities.RouteResult{
		Mode:            mode,
		DistanceMeters:  feature.Properties.Summary.Distance,
		DurationSeconds: feature.Properties.Summary.Duration,
		StreetNames:     entities.CollectStreetNames(steps),
		Steps:           steps,
	}
}

func stepCoordinates(feature *ors.Feature, step ors.Step) entities.Coordinates {
	if len(step.WayPoints) == 0 {
		return entities.Coordinates{}
	}
	idx := step.WayPoints[0]
	if idx < 0 || idx >= len(feature.Geometry.Coordinates) {
		return entities.Coordinates{}
	}
	point := feature.Geometry.Coordinates[idx]
	if len(point) < 2 {
		return entities.Coordinates{}
	}
	return entities.Coordinates{Longitude: point[0], Latitude: point[1]}
}
