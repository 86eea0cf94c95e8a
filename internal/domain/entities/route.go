package entities

import "strings"

// TransportMode identifies a supported routing mode.
type TransportMode string

const (
	ModeWalking    TransportMode = "walking"
	ModeCycling    TransportMode = "cycling"
	ModeDriving    TransportMode = "driving"
	ModeWheelchair TransportMode = "wheelchair"
	ModeTransit    TransportMode = "transit"
)

// ParseTransportMode maps a label to a known transport mode.
func ParseTransportMode(s string) (TransportMode, bool) {
	switch TransportMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeWalking, ModeCycling, ModeDriving, ModeWheelchair, ModeTransit:
		return TransportMode(strings.ToLower(strings.TrimSpace(s))), true
	case "foot", "walk", "pedestrian":
		return ModeWalking, true
	case "bike", "bicycle":
		return ModeCycling, true
	case "car", "drive":
		return ModeDriving, true
	case "tram", "bus", "public_transport":
		return ModeTransit, true
	}
	return "", false
}

// RouteStep is a single turn-by-turn instruction.
type RouteStep struct {
	Instruction    string      `json:"instruction"`
	StreetName     string      `json:"street_name,omitempty"`
	Coordinates    Coordinates `json:"coordinates"`
	DistanceMeters float64     `json:"distance_meters"`
}

// TrafficState summarizes live congestion on a driving route.
type TrafficState struct {
	Level            string  `json:"level"`
	DelaySeconds     float64 `json:"delay_seconds"`
	CurrentSpeedKmh  float64 `json:"current_speed_kmh,omitempty"`
	FreeFlowSpeedKmh float64 `json:"free_flow_speed_kmh,omitempty"`
}

// TransitLeg is one segment of a multimodal transit plan: a walk to or
// from a stop, or a ride along one line.
type TransitLeg struct {
	Kind            string   `json:"kind"`
	Line            string   `json:"line,omitempty"`
	From            string   `json:"from"`
	To              string   `json:"to"`
	Stops           []string `json:"stops,omitempty"`
	StopCount       int      `json:"stop_count,omitempty"`
	DistanceMeters  float64  `json:"distance_meters,omitempty"`
	DurationMinutes int      `json:"duration_minutes"`
}

const (
	TransitLegWalk = "walk"
	TransitLegRide = "ride"
)

// TransitPlan is a walk-ride-walk itinerary over the stop graph.
type TransitPlan struct {
	Legs            []TransitLeg `json:"legs"`
	LinesUsed       []string     `json:"lines_used,omitempty"`
	Transfers       int          `json:"transfers"`
	TotalStops      int          `json:"total_stops"`
	DurationMinutes int          `json:"duration_minutes"`
	// WalkOnly marks a plan with no ride leg, either because the
	// distance is short or because no transit route exists.
	WalkOnly bool   `json:"walk_only"`
	Note     string `json:"note,omitempty"`
}

// TransferOption names a stop where a line serving the origin meets a
// line serving the destination.
type TransferOption struct {
	FromLine string
	ToLine   string
	StopID   string
	StopName string
}

// RouteResult is the provider-independent shape every routing answer is
// normalized into.
type RouteResult struct {
	Mode            TransportMode `json:"mode"`
	DistanceMeters  float64       `json:"distance_meters"`
	DurationSeconds float64       `json:"duration_seconds"`
	StreetNames     []string      `json:"street_names,omitempty"`
	Steps           []RouteStep   `json:"steps,omitempty"`
	Traffic         *TrafficState `json:"traffic,omitempty"`
	Transit         *TransitPlan  `json:"transit,omitempty"`
	Degraded        bool          `json:"degraded"`
	Synthetic       bool          `json:"synthetic"`
	// ConnectivityGap marks that the knowledge graph has no adjacency
	// path between origin and destination, so the graph itself could
	// not have produced this route.
	ConnectivityGap bool `json:"connectivity_gap,omitempty"`
}

// CollectStreetNames walks the steps and returns each non-empty,
// non-placeholder street name once, in first-seen order.
func CollectStreetNames(steps []RouteStep) []string {
	seen := make(map[string]struct{}, len(steps))
	var names []string
	for _, step := range steps {
		name := strings.TrimSpace(step.StreetName)
		if name == "" || name == "-" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
