package services

import (
	"context"

	"github.com/imiq-project/Dashbot/internal/domain/entities"
	"github.com/imiq-project/Dashbot/internal/infrastructure/observability"
	apperrors "github.com/imiq-project/Dashbot/pkg/errors"
)

// Intent names the structured question the upstream classifier produced.
type Intent string

const (
	IntentLocate      Intent = "locate"
	IntentRoute       Intent = "route"
	IntentSensor      Intent = "sensor"
	IntentNearby      Intent = "nearby"
	IntentNearestStop Intent = "nearest_stop"
)

// AssistantRequest is a structured query from the intent classifier.
type AssistantRequest struct {
	SessionID string `json:"session_id"`
	Intent    Intent `json:"intent"`

	Mention   string `json:"mention"`
	IsPronoun bool   `json:"is_pronoun"`

	DestinationMention   string `json:"destination_mention,omitempty"`
	DestinationIsPronoun bool   `json:"destination_is_pronoun,omitempty"`

	TypeHints    []entities.EntityType    `json:"type_hints,omitempty"`
	Modes        []entities.TransportMode `json:"modes,omitempty"`
	SensorKind   entities.SensorKind      `json:"sensor_kind,omitempty"`
	RadiusMeters float64                  `json:"radius_meters,omitempty"`
}

// AssistantResponse is the normalized answer handed to the generation
// layer. MatchKind and Degraded flags are transparency signals for the
// generator, never surfaced verbatim to the end user.
type AssistantResponse struct {
	Entity    *entities.LocationEntity `json:"entity"`
	MatchKind string                   `json:"match_kind"`
	Ambiguous bool                     `json:"ambiguous"`

	Destination *entities.LocationEntity                         `json:"destination,omitempty"`
	Routes      map[entities.TransportMode]*entities.RouteResult `json:"routes,omitempty"`
	Sensor      *entities.SensorProximityResult                  `json:"sensor,omitempty"`
	NearbyPOIs  []*entities.LocationEntity                       `json:"nearby_pois,omitempty"`
	NearestStop *entities.LocationEntity                         `json:"nearest_stop,omitempty"`
	StopWalk    string                                           `json:"stop_walk,omitempty"`
}

// AssistantService composes the resolver, cache, proximity and routing
// components into one request handler.
type AssistantService struct {
	disambiguator *DisambiguatorService
	cache         *EntityCacheService
	proximity     *ProximityService
	routing       *RoutingService
}

// NewAssistantService creates a new assistant service
func NewAssistantService(disambiguator *DisambiguatorService, cache *EntityCacheService, proximity *ProximityService, routing *RoutingService) *AssistantService {
	return &AssistantService{
		disambiguator: disambiguator,
		cache:         cache,
		proximity:     proximity,
		routing:       routing,
	}
}

// Handle answers one structured query within a session.
func (s *AssistantService) Handle(ctx context.Context, req *AssistantRequest) (*AssistantResponse, error) {
	if req == nil || req.SessionID == "" {
		return nil, apperrors.NewValidationError("session id is required")
	}

	entity, resolution, err := s.resolveMention(ctx, req.SessionID, req.Mention, req.IsPronoun, req.TypeHints)
	if err != nil {
		return nil, err
	}

	response := &AssistantResponse{Entity: entity}
	if resolution != nil {
		response.MatchKind = resolution.MatchKind.String()
		response.Ambiguous = resolution.Ambiguous
	}

	switch req.Intent {
	case IntentLocate, "":
		// Resolution alone answers a locate question.

	case IntentRoute:
		dest, _, err := s.resolveMention(ctx, req.SessionID, req.DestinationMention, req.DestinationIsPronoun, nil)
		if err != nil {
			return nil, err
		}
		routes, err := s.routing.Route(ctx, entity, dest, req.Modes)
		if err != nil {
			return nil, err
		}
		response.Destination = dest
		response.Routes = routes

	case IntentSensor:
		kind, ok := entities.ParseSensorKind(string(req.SensorKind))
		if !ok {
			return nil, apperrors.NewValidationError("unknown sensor kind")
		}
		sensor, err := s.proximity.NearestSensor(ctx, kind, entity.Coordinates)
		if err != nil {
			return nil, err
		}
		response.Sensor = sensor

	case IntentNearby:
		pois, err := s.proximity.NearbyPOIs(ctx, entity.Coordinates, req.RadiusMeters, 0)
		if err != nil {
			return nil, err
		}
		response.NearbyPOIs = pois

	case IntentNearestStop:
		stop, _, walk, err := s.proximity.NearestStop(ctx, entity.Coordinates)
		if err != nil {
			return nil, err
		}
		response.NearestStop = stop
		response.StopWalk = walk

	default:
		return nil, apperrors.NewValidationError("unknown intent " + string(req.Intent))
	}

	return response, nil
}

// EndSession discards the conversational memory of a session.
func (s *AssistantService) EndSession(ctx context.Context, sessionID string) {
	s.cache.EndSession(ctx, sessionID)
}

// resolveMention maps a mention to an entity. Pronouns only consult the
// session cache; named mentions run the full cascade and, on success,
// are remembered for later coreference. Failed resolutions leave the
// cache untouched.
func (s *AssistantService) resolveMention(ctx context.Context, sessionID, mention string, isPronoun bool, hints []entities.EntityType) (*entities.LocationEntity, *entities.Resolution, error) {
	if isPronoun {
		var hint *entities.EntityType
		if len(hints) == 1 {
			hint = &hints[0]
		}
		if entity := s.cache.Recall(ctx, sessionID, mention, hint); entity != nil {
			return entity, nil, nil
		}
		return nil, nil, apperrors.NewNotFoundError("nothing to refer back to in this conversation")
	}

	resolution, err := s.disambiguator.Disambiguate(ctx, mention, hints)
	if err != nil {
		return nil, nil, err
	}

	s.cache.Remember(ctx, sessionID, resolution.Entity)
	observability.LoggerFromContext(ctx).Debug().
		Str("mention", mention).
		Str("entity", resolution.Entity.Name).
		Str("match_kind", resolution.MatchKind.String()).
		Msg("Mention resolved")
	return resolution.Entity, resolution, nil
}
