package services

import (
	"context"
	"fmt"
	"math"

	"github.com/imiq-project/Dashbot/internal/domain/entities"
	"github.com/imiq-project/Dashbot/internal/domain/repositories"
	"github.com/imiq-project/Dashbot/internal/infrastructure/observability"
	"github.com/imiq-project/Dashbot/pkg/geo"
)

const (
	// transitShortWalkMeters is the distance under which boarding a tram
	// is never worth the wait.
	transitShortWalkMeters = 400
	// minutesPerStop approximates tram travel time per stop hop.
	minutesPerStop = 2
	// transferPenaltyMinutes covers waiting at the transfer stop.
	transferPenaltyMinutes = 3
	// transitComparableMeters bounds the distance under which a slower
	// transit plan gets a walking suggestion attached.
	transitComparableMeters = 1500
)

// TransitPlanner builds walk-ride-walk itineraries over the stop graph:
// walk to the nearest stop, ride a shared line with at most one
// transfer, walk from the alighting stop. A pair with no usable transit
// leg degrades to a walking plan rather than an error.
type TransitPlanner struct {
	repo repositories.KnowledgeRepository
}

// NewTransitPlanner creates a new transit planner
func NewTransitPlanner(repo repositories.KnowledgeRepository) *TransitPlanner {
	return &TransitPlanner{repo: repo}
}

// Plan builds an itinerary between two resolved entities.
func (p *TransitPlanner) Plan(ctx context.Context, origin, dest *entities.LocationEntity, originCoords, destCoords entities.Coordinates) *entities.TransitPlan {
	direct := geo.HaversineMeters(
		originCoords.Latitude, originCoords.Longitude,
		destCoords.Latitude, destCoords.Longitude)
	if direct < transitShortWalkMeters {
		return walkOnlyPlan(origin.Name, dest.Name, direct, "distance is short, walking is faster")
	}

	originStop, originWalk := p.boardingStop(ctx, origin, originCoords)
	destStop, destWalk := p.boardingStop(ctx, dest, destCoords)
	if originStop == nil || destStop == nil {
		return walkOnlyPlan(origin.Name, dest.Name, direct, "no transit stops nearby")
	}
	if originStop.ID == destStop.ID {
		return walkOnlyPlan(origin.Name, dest.Name, direct, "both places are near the same stop")
	}
	if destWalk != nil {
		destWalk.From, destWalk.To = destWalk.To, destWalk.From
	}

	rides := p.rideLegs(ctx, originStop, destStop)
	if len(rides) == 0 {
		return walkOnlyPlan(origin.Name, dest.Name, direct, "no transit route between the nearest stops")
	}

	plan := &entities.TransitPlan{}
	if originWalk != nil {
		plan.Legs = append(plan.Legs, *originWalk)
	}
	plan.Legs = append(plan.Legs, rides...)
	if destWalk != nil {
		plan.Legs = append(plan.Legs, *destWalk)
	}

	rideCount := 0
	for _, leg := range plan.Legs {
		plan.DurationMinutes += leg.DurationMinutes
		if leg.Kind != entities.TransitLegRide {
			continue
		}
		rideCount++
		plan.TotalStops += leg.StopCount
		if !containsString(plan.LinesUsed, leg.Line) {
			plan.LinesUsed = append(plan.LinesUsed, leg.Line)
		}
	}
	if rideCount > 1 {
		plan.Transfers = rideCount - 1
		// The hand-over stop is shared by consecutive ride legs.
		plan.TotalStops -= plan.Transfers
		plan.DurationMinutes += plan.Transfers * transferPenaltyMinutes
	}

	if walkMinutes := walkingMinutes(direct); plan.DurationMinutes > walkMinutes && direct < transitComparableMeters {
		plan.Note = fmt.Sprintf("walking takes about %d min and may be faster", walkMinutes)
	}
	return plan
}

// boardingStop returns the stop to board at, plus the walk leg to reach
// it. Entities that are themselves stops board in place.
func (p *TransitPlanner) boardingStop(ctx context.Context, entity *entities.LocationEntity, coords entities.Coordinates) (*entities.LocationEntity, *entities.TransitLeg) {
	if entity.Type == entities.EntityTypeStop {
		return entity, nil
	}

	stops, err := p.repo.ListAll(ctx, entities.EntityTypeStop)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Msg("Stop lookup failed while planning transit")
		return nil, nil
	}

	var nearest *entities.LocationEntity
	minDistance := math.MaxFloat64
	for _, stop := range stops {
		if stop.Coordinates.IsZero() {
			continue
		}
		distance := geo.HaversineMeters(
			coords.Latitude, coords.Longitude,
			stop.Coordinates.Latitude, stop.Coordinates.Longitude)
		if distance < minDistance {
			minDistance = distance
			nearest = stop
		}
	}
	if nearest == nil {
		return nil, nil
	}

	return nearest, &entities.TransitLeg{
		Kind:            entities.TransitLegWalk,
		From:            entity.Name,
		To:              nearest.Name,
		DistanceMeters:  minDistance,
		DurationMinutes: walkingMinutes(minDistance),
	}
}

// rideLegs finds a direct line serving both stops, falling back to one
// transfer across line pairs.
func (p *TransitPlanner) rideLegs(ctx context.Context, originStop, destStop *entities.LocationEntity) []entities.TransitLeg {
	logger := observability.LoggerFromContext(ctx)

	lines, err := p.repo.CommonLines(ctx, originStop.ID, destStop.ID)
	if err != nil {
		logger.Warn().Err(err).Msg("Common line lookup failed")
	}
	for _, line := range lines {
		stops, err := p.repo.LineStops(ctx, originStop.ID, destStop.ID, line)
		if err != nil {
			logger.Warn().Err(err).Str("line", line).Msg("Line path lookup failed")
			continue
		}
		if len(stops) > 0 {
			return []entities.TransitLeg{rideLeg(line, originStop.Name, destStop.Name, stops)}
		}
	}
	return p.transferLegs(ctx, originStop, destStop)
}

// transferLegs picks the transfer stop yielding the fewest total stops.
func (p *TransitPlanner) transferLegs(ctx context.Context, originStop, destStop *entities.LocationEntity) []entities.TransitLeg {
	options, err := p.repo.TransferOptions(ctx, originStop.ID, destStop.ID)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Msg("Transfer lookup failed")
		return nil
	}

	var best []entities.TransitLeg
	bestStops := math.MaxInt
	for _, option := range options {
		first, err := p.repo.LineStops(ctx, originStop.ID, option.StopID, option.FromLine)
		if err != nil || len(first) == 0 {
			continue
		}
		second, err := p.repo.LineStops(ctx, option.StopID, destStop.ID, option.ToLine)
		if err != nil || len(second) == 0 {
			continue
		}
		// The transfer stop appears in both segments; count it once.
		if total := len(first) + len(second) - 1; total < bestStops {
			bestStops = total
			best = []entities.TransitLeg{
				rideLeg(option.FromLine, originStop.Name, option.StopName, first),
				rideLeg(option.ToLine, option.StopName, destStop.Name, second),
			}
		}
	}
	return best
}

func rideLeg(line, from, to string, stops []string) entities.TransitLeg {
	return entities.TransitLeg{
		Kind:            entities.TransitLegRide,
		Line:            line,
		From:            from,
		To:              to,
		Stops:           stops,
		StopCount:       len(stops),
		DurationMinutes: len(stops) * minutesPerStop,
	}
}

func walkOnlyPlan(from, to string, distanceMeters float64, note string) *entities.TransitPlan {
	minutes := walkingMinutes(distanceMeters)
	return &entities.TransitPlan{
		Legs: []entities.TransitLeg{{
			Kind:            entities.TransitLegWalk,
			From:            from,
			To:              to,
			DistanceMeters:  distanceMeters,
			DurationMinutes: minutes,
		}},
		DurationMinutes: minutes,
		WalkOnly:        true,
		Note:            note,
	}
}

func walkingMinutes(distanceMeters float64) int {
	return int(math.Round(distanceMeters / fallbackWalkingSpeed))
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
