package routing

import (
	"context"
	"fmt"

	"github.com/imiq-project/Dashbot/internal/domain/entities"
	"github.com/imiq-project/Dashbot/internal/infrastructure/clients/tomtom"
	"github.com/imiq-project/Dashbot/internal/infrastructure/observability"
	apperrors "github.com/imiq-project/Dashbot/pkg/errors"
)

// TomTomAdapter implements RouteProvider on TomTom. Driving only; its
// value over the general-purpose provider is live traffic and street
// names.
type TomTomAdapter struct {
	client *tomtom.Client
}

// NewTomTomAdapter creates a new TomTom routing adapter
func NewTomTomAdapter(client *tomtom.Client) *TomTomAdapter {
	return &TomTomAdapter{client: client}
}

// Name identifies the provider
func (a *TomTomAdapter) Name() string {
	return "tomtom"
}

// SupportsMode reports whether the provider can route the given mode
func (a *TomTomAdapter) SupportsMode(mode entities.TransportMode) bool {
	return mode == entities.ModeDriving
}

// GetRoute computes a traffic-aware driving route
func (a *TomTomAdapter) GetRoute(ctx context.Context, origin, dest entities.Coordinates, mode entities.TransportMode) (*entities.RouteResult, error) {
	if mode != entities.ModeDriving {
		return nil, apperrors.NewValidationError(fmt.Sprintf("tomtom does not support mode %s", mode))
	}

	response, err := a.client.CalculateRoute(ctx,
		origin.Latitude, origin.Longitude, dest.Latitude, dest.Longitude)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, apperrors.NewProviderTimeoutError("tomtom timed out", err)
		}
		return nil, apperrors.NewProviderUnavailableError("tomtom request failed", err)
	}
	if len(response.Routes) == 0 {
		return nil, apperrors.NewProviderUnavailableError("tomtom returned no route", nil)
	}

	route := &response.Routes[0]
	result := &entities.RouteResult{
		Mode:            entities.ModeDriving,
		DistanceMeters:  route.Summary.LengthInMeters,
		DurationSeconds: route.Summary.TravelTimeInSeconds,
		Steps:           normalizeTomTomSteps(route),
	}
	result.StreetNames = entities.CollectStreetNames(result.Steps)
	result.Traffic = a.trafficState(ctx, route, origin)
	return result, nil
}

// trafficState enriches the route with live flow data near the origin.
// Flow lookup failure degrades to the summary delay only.
func (a *TomTomAdapter) trafficState(ctx context.Context, route *tomtom.Route, origin entities.Coordinates) *entities.TrafficState {
	state := &entities.TrafficState{
		Level:        CongestionLevel(1.0),
		DelaySeconds: route.Summary.TrafficDelayInSeconds,
	}

	flow, err := a.client.GetFlowSegment(ctx, origin.Latitude, origin.Longitude)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Traffic flow lookup failed")
		return state
	}

	data := flow.FlowSegmentData
	state.CurrentSpeedKmh = data.CurrentSpeed
	state.FreeFlowSpeedKmh = data.FreeFlowSpeed
	if data.FreeFlowSpeed > 0 {
		state.Level = CongestionLevel(data.CurrentSpeed / data.FreeFlowSpeed)
	}
	return state
}

// CongestionLevel buckets a current-to-free-flow speed ratio into a
// human-readable congestion label.
func CongestionLevel(ratio float64) string {
	switch {
	case ratio >= 0.9:
		return "free_flowing"
	case ratio >= 0.7:
		return "light"
	case ratio >= 0.5:
		return "moderate"
	case ratio >= 0.3:
		return "heavy"
	default:
		return "severe"
	}
}

// normalizeTomTomSteps converts guidance instructions into steps. TomTom
// reports cumulative offsets, so per-step distance is the offset delta.
func normalizeTomTomSteps(route *tomtom.Route) []entities.RouteStep {
	instructions := route.Guidance.Instructions
	steps := make([]entities.RouteStep, 0, len(instructions))
	prevOffset := 0.0
	for _, instruction := range instructions {
		steps = append(steps, entities.RouteStep{
			Instruction:    instruction.Message,
			StreetName:     instruction.Street,
			DistanceMeters: instruction.RouteOffsetInMeters - prevOffset,
			Coordinates: entities.Coordinates{
				Latitude:  instruction.Point.Latitude,
				Longitude: instruction.Point.Longitude,
			},
		})
		prevOffset = instruction.RouteOffsetInMeters
	}
	return steps
}
