package services

import (
	"context"
	"math"

	"github.com/imiq-project/Dashbot/internal/domain/entities"
	"github.com/imiq-project/Dashbot/internal/domain/repositories"
	"github.com/imiq-project/Dashbot/internal/infrastructure/observability"
	"github.com/imiq-project/Dashbot/pkg/geo"
)

// ProximityService answers nearest-sensor and nearby-place questions
// for resolved coordinates.
type ProximityService struct {
	repo repositories.KnowledgeRepository
}

// NewProximityService creates a new proximity service
func NewProximityService(repo repositories.KnowledgeRepository) *ProximityService {
	return &ProximityService{repo: repo}
}

// NearestSensor finds the closest sensor of a kind and grades the
// reading's reliability by distance. No sensor of that kind yields an
// unavailable tier rather than an error.
func (s *ProximityService) NearestSensor(ctx context.Context, kind entities.SensorKind, from entities.Coordinates) (*entities.SensorProximityResult, error) {
	sensors, err := s.repo.ListSensors(ctx, kind)
	if err != nil {
		return nil, err
	}
	if len(sensors) == 0 {
		observability.LoggerFromContext(ctx).Debug().
			Str("kind", string(kind)).
			Msg("No sensors of requested kind")
		return &entities.SensorProximityResult{
			SensorType:     kind,
			ConfidenceTier: entities.TierUnavailable,
		}, nil
	}

	var nearest *entities.Sensor
	minDistance := math.MaxFloat64
	for _, sensor := range sensors {
		distance := geo.HaversineMeters(
			from.Latitude, from.Longitude,
			sensor.Coordinates.Latitude, sensor.Coordinates.Longitude)
		if distance < minDistance {
			minDistance = distance
			nearest = sensor
		}
	}

	return &entities.SensorProximityResult{
		SensorType:        kind,
		Sensor:            nearest,
		SensorCoordinates: nearest.Coordinates,
		DistanceMeters:    minDistance,
		ConfidenceTier:    entities.TierForDistance(minDistance),
	}, nil
}

// NearestStop finds the closest transit stop to a point, with a walking
// estimate.
func (s *ProximityService) NearestStop(ctx context.Context, from entities.Coordinates) (*entities.LocationEntity, float64, string, error) {
	stops, err := s.repo.ListAll(ctx, entities.EntityTypeStop)
	if err != nil {
		return nil, 0, "", err
	}
	if len(stops) == 0 {
		return nil, 0, "", nil
	}

	var nearest *entities.LocationEntity
	minDistance := math.MaxFloat64
	for _, stop := range stops {
		if stop.Coordinates.IsZero() {
			continue
		}
		distance := geo.HaversineMeters(
			from.Latitude, from.Longitude,
			stop.Coordinates.Latitude, stop.Coordinates.Longitude)
		if distance < minDistance {
			minDistance = distance
			nearest = stop
		}
	}
	if nearest == nil {
		return nil, 0, "", nil
	}
	return nearest, minDistance, geo.FormatWalkingEstimate(minDistance), nil
}

// NearbyPOIs lists points of interest within a radius, nearest first.
func (s *ProximityService) NearbyPOIs(ctx context.Context, from entities.Coordinates, radiusMeters float64, limit int) ([]*entities.LocationEntity, error) {
	if radiusMeters <= 0 {
		radiusMeters = 500
	}
	if limit <= 0 {
		limit = 5
	}
	return s.repo.NearbyEntities(ctx, entities.EntityTypePOI, from, radiusMeters, limit)
}
