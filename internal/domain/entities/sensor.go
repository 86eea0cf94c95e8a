package entities

// SensorKind identifies a class of live campus sensor.
type SensorKind string

const (
	SensorParking SensorKind = "parking"
	SensorWeather SensorKind = "weather"
	SensorTraffic SensorKind = "traffic"
)

// ParseSensorKind maps a label to a known sensor kind.
func ParseSensorKind(s string) (SensorKind, bool) {
	switch SensorKind(s) {
	case SensorParking, SensorWeather, SensorTraffic:
		return SensorKind(s), true
	}
	return "", false
}

// ConfidenceTier grades how trustworthy a sensor reading is for a given
// query location, based on distance.
type ConfidenceTier string

const (
	TierUnavailable ConfidenceTier = "unavailable"
	TierFar         ConfidenceTier = "far"
	TierNearby      ConfidenceTier = "nearby"
)

// TierForDistance maps a sensor distance in meters to a confidence tier.
// Anything beyond 500m is reduced-reliability; callers surface that in
// hedged language rather than the raw distance.
func TierForDistance(meters float64) ConfidenceTier {
	if meters <= 500 {
		return TierNearby
	}
	return TierFar
}

// Sensor is a physical sensor node in the knowledge graph.
type Sensor struct {
	ID          string      `json:"id"`
	Kind        SensorKind  `json:"kind"`
	Name        string      `json:"name,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
}

// SensorProximityResult is the outcome of a nearest-sensor lookup.
type SensorProximityResult struct {
	SensorType        SensorKind     `json:"sensor_type"`
	Sensor            *Sensor        `json:"sensor,omitempty"`
	SensorCoordinates Coordinates    `json:"sensor_coordinates"`
	DistanceMeters    float64        `json:"distance_meters"`
	ConfidenceTier    ConfidenceTier `json:"confidence_tier"`
}
