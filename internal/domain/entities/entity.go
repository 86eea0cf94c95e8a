package entities

import "strings"

// EntityType classifies a location entity in the campus knowledge graph.
type EntityType string

const (
	EntityTypeBuilding EntityType = "Building"
	EntityTypeStop     EntityType = "Stop"
	EntityTypePOI      EntityType = "POI"
	EntityTypeLandmark EntityType = "Landmark"
)

// AllEntityTypes lists the closed set of resolvable entity types in
// resolution priority order. Buildings first, landmarks last.
var AllEntityTypes = []EntityType{
	EntityTypeBuilding,
	EntityTypeStop,
	EntityTypePOI,
	EntityTypeLandmark,
}

// ParseEntityType maps a case-insensitive label to a known entity type.
func ParseEntityType(s string) (EntityType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "building":
		return EntityTypeBuilding, true
	case "stop", "tram_stop", "tramstop":
		return EntityTypeStop, true
	case "poi":
		return EntityTypePOI, true
	case "landmark":
		return EntityTypeLandmark, true
	}
	return "", false
}

// Coordinates represents a WGS84 point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// IsZero reports whether no coordinates are set.
func (c Coordinates) IsZero() bool {
	return c.Latitude == 0 && c.Longitude == 0
}

// LocationEntity represents a resolvable place on campus: a building,
// a transit stop, a point of interest, or a landmark.
type LocationEntity struct {
	ID          string      `json:"id"`
	Type        EntityType  `json:"type"`
	Name        string      `json:"name"`
	Aliases     []string    `json:"aliases,omitempty"`
	Lines       []string    `json:"lines,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
	Description string      `json:"description,omitempty"`
	Category    string      `json:"category,omitempty"`
	Address     string      `json:"address,omitempty"`
	Floor       string      `json:"floor,omitempty"`
	OpeningInfo string      `json:"opening_info,omitempty"`
}

// Key returns the canonical cache key for the entity.
func (e *LocationEntity) Key() string {
	return string(e.Type) + ":" + e.ID
}
