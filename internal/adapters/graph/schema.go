package graph

import "github.com/imiq-project/Dashbot/internal/domain/entities"

// schemaVersion is embedded in index names so that changing the indexed
// field set creates fresh indexes instead of silently reusing stale ones.
const schemaVersion = "v2"

// typeSchema describes how one entity type is stored in the graph.
type typeSchema struct {
	Label string
	// TextFields are the properties covered by the fulltext index. Numeric
	// properties (coordinates, ids) are deliberately absent so that a query
	// like "24" can never match a latitude.
	TextFields []string
}

var typeSchemas = map[entities.EntityType]typeSchema{
	entities.EntityTypeBuilding: {
		Label:      "Building",
		TextFields: []string{"name", "aliases", "function", "departments", "note", "address"},
	},
	entities.EntityTypeStop: {
		Label:      "Stop",
		TextFields: []string{"name", "aliases", "lines", "note"},
	},
	entities.EntityTypePOI: {
		Label:      "POI",
		TextFields: []string{"name", "aliases", "category", "cuisine", "description"},
	},
	entities.EntityTypeLandmark: {
		Label:      "Landmark",
		TextFields: []string{"name", "aliases", "description"},
	},
}

// IndexName returns the fulltext index name for an entity type.
func IndexName(entityType entities.EntityType) string {
	schema := typeSchemas[entityType]
	return "ft_" + schemaVersion + "_" + schema.Label
}

// Label returns the graph label for an entity type.
func Label(entityType entities.EntityType) string {
	return typeSchemas[entityType].Label
}

// TextFields returns the fulltext-indexed properties for an entity type.
func TextFields(entityType entities.EntityType) []string {
	return typeSchemas[entityType].TextFields
}
