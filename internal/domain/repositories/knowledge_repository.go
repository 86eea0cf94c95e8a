package repositories

import (
	"context"

	"github.com/imiq-project/Dashbot/internal/domain/entities"
)

// FulltextQuery carries a prepared Lucene query string plus the raw
// normalized text it was built from.
type FulltextQuery struct {
	Lucene string
	Raw    string
	// Words holds the normalized query words used for name-boost re-ranking.
	Words []string
	// ExactOnly disables fuzzy matching (set for numeric queries).
	ExactOnly bool
}

// KnowledgeRepository defines the interface for knowledge graph lookups
type KnowledgeRepository interface {
	// GetByID retrieves an entity by its ID within a type
	GetByID(ctx context.Context, entityType entities.EntityType, id string) (*entities.LocationEntity, error)

	// GetByExactName retrieves entities whose name matches exactly (case-insensitive)
	GetByExactName(ctx context.Context, entityType entities.EntityType, name string) ([]*entities.LocationEntity, error)

	// GetByAlias retrieves entities with a matching alias (case-insensitive)
	GetByAlias(ctx context.Context, entityType entities.EntityType, alias string) ([]*entities.LocationEntity, error)

	// SearchFulltext runs a Lucene query against the per-type fulltext index
	SearchFulltext(ctx context.Context, entityType entities.EntityType, query FulltextQuery, limit int) ([]*entities.ScoredCandidate, error)

	// SearchContains retrieves entities whose name or aliases contain the fragment
	SearchContains(ctx context.Context, entityType entities.EntityType, fragment string, limit int) ([]*entities.LocationEntity, error)

	// ListAll retrieves every entity of a type (bounded campus dataset)
	ListAll(ctx context.Context, entityType entities.EntityType) ([]*entities.LocationEntity, error)

	// ListSensors retrieves every sensor of a kind
	ListSensors(ctx context.Context, kind entities.SensorKind) ([]*entities.Sensor, error)

	// HasConnectivity reports whether an adjacency path exists between two entities
	HasConnectivity(ctx context.Context, from, to *entities.LocationEntity) (bool, error)

	// NearbyEntities retrieves entities of a type within a radius of a point
	NearbyEntities(ctx context.Context, entityType entities.EntityType, center entities.Coordinates, radiusMeters float64, limit int) ([]*entities.LocationEntity, error)

	// CommonLines returns the transit lines serving both stops
	CommonLines(ctx context.Context, fromStopID, toStopID string) ([]string, error)

	// LineStops returns the ordered stop names between two stops riding one
	// line, in travel direction, endpoints included
	LineStops(ctx context.Context, fromStopID, toStopID, line string) ([]string, error)

	// TransferOptions returns stops where a line serving the origin stop
	// meets a different line serving the destination stop
	TransferOptions(ctx context.Context, fromStopID, toStopID string) ([]entities.TransferOption, error)
}

// IndexManager guards the fulltext indexes the resolver depends on.
type IndexManager interface {
	// EnsureIndexes creates the per-type fulltext indexes if missing.
	// Safe to call on every request; the work runs at most once per process.
	EnsureIndexes(ctx context.Context) error

	// Available reports whether fulltext search can be used. False after a
	// failed EnsureIndexes; stays false for the process lifetime.
	Available() bool
}
