package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"

	"github.com/imiq-project/Dashbot/internal/domain/entities"
	"github.com/imiq-project/Dashbot/internal/domain/providers"
	"github.com/imiq-project/Dashbot/internal/domain/repositories"
	"github.com/imiq-project/Dashbot/internal/infrastructure/observability"
	apperrors "github.com/imiq-project/Dashbot/pkg/errors"
	"github.com/imiq-project/Dashbot/pkg/geo"
)

// fallbackWalkingSpeed is the fixed speed used for synthetic
// straight-line routes, in meters per minute.
const fallbackWalkingSpeed = 80.0

// RoutingService coordinates per-mode provider selection, fan-out and
// normalization. Pedestrian, cycling and wheelchair modes go to the
// general-purpose provider. Driving prefers the traffic-aware provider
// and falls back to the general one, marked degraded. When every
// provider fails the coordinator still answers with a synthetic
// straight-line route rather than an error.
type RoutingService struct {
	general providers.RouteProvider
	traffic providers.RouteProvider

	repo     repositories.KnowledgeRepository
	geocoder providers.Geocoder
	transit  *TransitPlanner
	metrics  *observability.Metrics

	// breaker keeps a flapping traffic provider from dragging every
	// driving request through its timeout.
	breaker *gobreaker.CircuitBreaker
}

// NewRoutingService creates a new routing coordinator
func NewRoutingService(general, traffic providers.RouteProvider, repo repositories.KnowledgeRepository, geocoder providers.Geocoder, metrics *observability.Metrics) *RoutingService {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "traffic-routing",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	service := &RoutingService{
		general:  general,
		traffic:  traffic,
		repo:     repo,
		geocoder: geocoder,
		metrics:  metrics,
		breaker:  breaker,
	}
	if repo != nil {
		service.transit = NewTransitPlanner(repo)
	}
	return service
}

// Route computes a route per requested mode, fanning the provider calls
// out in parallel. Every requested mode gets an answer; provider
// failures degrade to fallbacks instead of failing the request.
func (s *RoutingService) Route(ctx context.Context, origin, dest *entities.LocationEntity, modes []entities.TransportMode) (map[entities.TransportMode]*entities.RouteResult, error) {
	if origin == nil || dest == nil {
		return nil, apperrors.NewValidationError("origin and destination are required")
	}
	if len(modes) == 0 {
		modes = []entities.TransportMode{entities.ModeWalking}
	}

	originCoords, err := s.coordinatesFor(ctx, origin)
	if err != nil {
		return nil, err
	}
	destCoords, err := s.coordinatesFor(ctx, dest)
	if err != nil {
		return nil, err
	}

	gap := s.connectivityGap(ctx, origin, dest)

	var (
		mu      sync.Mutex
		results = make(map[entities.TransportMode]*entities.RouteResult, len(modes))
	)
	group, groupCtx := errgroup.WithContext(ctx)
	for _, mode := range modes {
		group.Go(func() error {
			result := s.routeMode(groupCtx, origin, dest, originCoords, destCoords, mode)
			result.ConnectivityGap = gap
			mu.Lock()
			results[mode] = result
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *RoutingService) routeMode(ctx context.Context, origin, dest *entities.LocationEntity, originCoords, destCoords entities.Coordinates, mode entities.TransportMode) *entities.RouteResult {
	logger := observability.LoggerFromContext(ctx)

	// Transit rides come from the stop graph, never from an external
	// provider.
	if mode == entities.ModeTransit {
		if s.transit == nil {
			return s.syntheticRoute(originCoords, destCoords, mode)
		}
		return s.transitRoute(ctx, origin, dest, originCoords, destCoords)
	}

	if mode == entities.ModeDriving && s.traffic != nil {
		result, err := s.trafficRoute(ctx, originCoords, destCoords)
		if err == nil {
			return result
		}
		logger.Warn().
			Err(err).
			Str("provider", s.traffic.Name()).
			Msg("Traffic-aware provider failed, falling back")
		if s.metrics != nil {
			s.metrics.ProviderFallback.Add(ctx, 1)
		}
		if result := s.generalRoute(ctx, originCoords, destCoords, mode); result != nil {
			result.Degraded = true
			return result
		}
		return s.syntheticRoute(originCoords, destCoords, mode)
	}

	if result := s.generalRoute(ctx, originCoords, destCoords, mode); result != nil {
		return result
	}
	return s.syntheticRoute(originCoords, destCoords, mode)
}

func (s *RoutingService) trafficRoute(ctx context.Context, origin, dest entities.Coordinates) (*entities.RouteResult, error) {
	raw, err := s.breaker.Execute(func() (any, error) {
		return s.traffic.GetRoute(ctx, origin, dest, entities.ModeDriving)
	})
	if err != nil {
		return nil, err
	}
	return raw.(*entities.RouteResult), nil
}

func (s *RoutingService) generalRoute(ctx context.Context, origin, dest entities.Coordinates, mode entities.TransportMode) *entities.RouteResult {
	if s.general == nil || !s.general.SupportsMode(mode) {
		return nil
	}
	result, err := s.general.GetRoute(ctx, origin, dest, mode)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("provider", s.general.Name()).
			Str("mode", string(mode)).
			Msg("Routing provider failed")
		return nil
	}
	return result
}

// transitRoute normalizes a stop-graph itinerary into the common route
// shape, one step per leg.
func (s *RoutingService) transitRoute(ctx context.Context, origin, dest *entities.LocationEntity, originCoords, destCoords entities.Coordinates) *entities.RouteResult {
	plan := s.transit.Plan(ctx, origin, dest, originCoords, destCoords)

	steps := make([]entities.RouteStep, 0, len(plan.Legs))
	for _, leg := range plan.Legs {
		instruction := fmt.Sprintf("Walk from %s to %s", leg.From, leg.To)
		if leg.Kind == entities.TransitLegRide {
			instruction = fmt.Sprintf("Take line %s from %s to %s (%d stops)",
				leg.Line, leg.From, leg.To, leg.StopCount)
		}
		steps = append(steps, entities.RouteStep{
			Instruction:    instruction,
			DistanceMeters: leg.DistanceMeters,
		})
	}

	return &entities.RouteResult{
		Mode: entities.ModeTransit,
		DistanceMeters: geo.HaversineMeters(
			originCoords.Latitude, originCoords.Longitude,
			destCoords.Latitude, destCoords.Longitude),
		DurationSeconds: float64(plan.DurationMinutes) * 60,
		Steps:           steps,
		Transit:         plan,
	}
}

// connectivityGap reports whether the knowledge graph lacks an
// adjacency path between the two entities. A lookup failure counts as
// connected so a graph outage never degrades provider routes.
func (s *RoutingService) connectivityGap(ctx context.Context, origin, dest *entities.LocationEntity) bool {
	if s.repo == nil {
		return false
	}
	connected, err := s.repo.HasConnectivity(ctx, origin, dest)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Msg("Connectivity lookup failed, assuming connected")
		return false
	}
	if !connected {
		gapErr := apperrors.NewConnectivityGapError(fmt.Sprintf(
			"no adjacency path between %s and %s", origin.Name, dest.Name))
		observability.LoggerFromContext(ctx).Debug().
			Err(gapErr).
			Msg("Knowledge graph routing gap, straight-line fallback armed")
	}
	return !connected
}

// syntheticRoute is the last-resort answer: a single straight-line step
// with haversine distance, compass bearing and a fixed-speed duration.
func (s *RoutingService) syntheticRoute(originCoords, destCoords entities.Coordinates, mode entities.TransportMode) *entities.RouteResult {
	distance := geo.HaversineMeters(
		originCoords.Latitude, originCoords.Longitude,
		destCoords.Latitude, destCoords.Longitude)
	direction := geo.CompassDirection(
		originCoords.Latitude, originCoords.Longitude,
		destCoords.Latitude, destCoords.Longitude)
	durationSeconds := distance / fallbackWalkingSpeed * 60

	step := entities.RouteStep{
		Instruction:    fmt.Sprintf("Head %s for %s", direction, geo.FormatDistance(distance)),
		Coordinates:    originCoords,
		DistanceMeters: distance,
	}
	return &entities.RouteResult{
		Mode:            mode,
		DistanceMeters:  distance,
		DurationSeconds: durationSeconds,
		Steps:           []entities.RouteStep{step},
		Degraded:        true,
		Synthetic:       true,
	}
}

// coordinatesFor returns the entity's stored coordinates, geocoding its
// name as a fallback for knowledge base entries without a position.
func (s *RoutingService) coordinatesFor(ctx context.Context, entity *entities.LocationEntity) (entities.Coordinates, error) {
	if !entity.Coordinates.IsZero() {
		return entity.Coordinates, nil
	}
	if s.geocoder == nil {
		return entities.Coordinates{}, apperrors.NewValidationError(
			fmt.Sprintf("%s has no coordinates", entity.Name))
	}

	coords, label, err := s.geocoder.Geocode(ctx, entity.Name)
	if err != nil {
		return entities.Coordinates{}, apperrors.NewProviderUnavailableError(
			fmt.Sprintf("could not geocode %s", entity.Name), err)
	}
	observability.LoggerFromContext(ctx).Debug().
		Str("entity", entity.Name).
		Str("geocoded_as", label).
		Msg("Entity located via geocoder")
	return *coords, nil
}
