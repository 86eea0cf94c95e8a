package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/imiq-project/Dashbot/internal/domain/entities"
	"github.com/imiq-project/Dashbot/internal/domain/repositories"
	neo4jclient "github.com/imiq-project/Dashbot/internal/infrastructure/clients/neo4j"
	apperrors "github.com/imiq-project/Dashbot/pkg/errors"
)

// KnowledgeAdapter implements repositories.KnowledgeRepository on Neo4j
type KnowledgeAdapter struct {
	client *neo4jclient.Client
}

// NewKnowledgeAdapter creates a new Neo4j knowledge adapter
func NewKnowledgeAdapter(client *neo4jclient.Client) *KnowledgeAdapter {
	return &KnowledgeAdapter{client: client}
}

// GetByID retrieves an entity by ID within a type
func (a *KnowledgeAdapter) GetByID(ctx context.Context, entityType entities.EntityType, id string) (*entities.LocationEntity, error) {
	cypher := fmt.Sprintf(`MATCH (n:%s {id: $id}) RETURN n {.*} AS props LIMIT 1`, Label(entityType))
	records, err := a.client.ExecuteRead(ctx, cypher, map[string]any{"id": id})
	if err != nil {
		return nil, apperrors.NewExternalError("knowledge graph query failed", err)
	}
	if len(records) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("%s %s not found", entityType, id))
	}
	return entityFromRecord(records[0], entityType)
}

// GetByExactName retrieves entities whose name matches exactly, case-insensitively
func (a *KnowledgeAdapter) GetByExactName(ctx context.Context, entityType entities.EntityType, name string) ([]*entities.LocationEntity, error) {
	cypher := fmt.Sprintf(`MATCH (n:%s) WHERE toLower(n.name) = toLower($name) RETURN n {.*} AS props`, Label(entityType))
	return a.queryEntities(ctx, cypher, map[string]any{"name": name}, entityType)
}

// GetByAlias retrieves entities with a matching alias, case-insensitively
func (a *KnowledgeAdapter) GetByAlias(ctx context.Context, entityType entities.EntityType, alias string) ([]*entities.LocationEntity, error) {
	cypher := fmt.Sprintf(
		`MATCH (n:%s) WHERE any(a IN coalesce(n.aliases, []) WHERE toLower(a) = toLower($alias)) RETURN n {.*} AS props`,
		Label(entityType))
	return a.queryEntities(ctx, cypher, map[string]any{"alias": alias}, entityType)
}

// SearchFulltext runs a Lucene query against the per-type fulltext index
func (a *KnowledgeAdapter) SearchFulltext(ctx context.Context, entityType entities.EntityType, query repositories.FulltextQuery, limit int) ([]*entities.ScoredCandidate, error) {
	cypher := `CALL db.index.fulltext.queryNodes($index, $query) YIELD node, score
RETURN node {.*} AS props, score
ORDER BY score DESC
LIMIT $limit`
	records, err := a.client.ExecuteRead(ctx, cypher, map[string]any{
		"index": IndexName(entityType),
		"query": query.Lucene,
		"limit": limit,
	})
	if err != nil {
		return nil, apperrors.NewExternalError("fulltext query failed", err)
	}

	candidates := make([]*entities.ScoredCandidate, 0, len(records))
	for _, record := range records {
		entity, err := entityFromRecord(record, entityType)
		if err != nil {
			return nil, err
		}
		score := 0.0
		if raw, ok := record.Get("score"); ok {
			if f, ok := raw.(float64); ok {
				score = f
			}
		}
		candidates = append(candidates, &entities.ScoredCandidate{
			Entity:    entity,
			Score:     score,
			MatchKind: entities.MatchFulltextFuzzy,
		})
	}
	return candidates, nil
}

// SearchContains retrieves entities whose name or aliases contain the fragment
func (a *KnowledgeAdapter) SearchContains(ctx context.Context, entityType entities.EntityType, fragment string, limit int) ([]*entities.LocationEntity, error) {
	cypher := fmt.Sprintf(`MATCH (n:%s)
WHERE toLower(n.name) CONTAINS toLower($fragment)
   OR any(a IN coalesce(n.aliases, []) WHERE toLower(a) CONTAINS toLower($fragment))
RETURN n {.*} AS props
LIMIT $limit`, Label(entityType))
	return a.queryEntities(ctx, cypher, map[string]any{"fragment": fragment, "limit": limit}, entityType)
}

// ListAll retrieves every entity of a type
func (a *KnowledgeAdapter) ListAll(ctx context.Context, entityType entities.EntityType) ([]*entities.LocationEntity, error) {
	cypher := fmt.Sprintf(`MATCH (n:%s) RETURN n {.*} AS props`, Label(entityType))
	return a.queryEntities(ctx, cypher, nil, entityType)
}

// ListSensors retrieves every sensor of a kind
func (a *KnowledgeAdapter) ListSensors(ctx context.Context, kind entities.SensorKind) ([]*entities.Sensor, error) {
	cypher := `MATCH (s:Sensor {kind: $kind}) RETURN s {.*} AS props`
	records, err := a.client.ExecuteRead(ctx, cypher, map[string]any{"kind": string(kind)})
	if err != nil {
		return nil, apperrors.NewExternalError("sensor query failed", err)
	}

	sensors := make([]*entities.Sensor, 0, len(records))
	for _, record := range records {
		props, ok := recordProps(record)
		if !ok {
			continue
		}
		sensors = append(sensors, &entities.Sensor{
			ID:   stringProp(props, "id"),
			Kind: kind,
			Name: stringProp(props, "name"),
			Coordinates: entities.Coordinates{
				Latitude:  floatProp(props, "lat"),
				Longitude: floatProp(props, "lon"),
			},
		})
	}
	return sensors, nil
}

// HasConnectivity reports whether an adjacency path of bounded length
// exists between two entities.
func (a *KnowledgeAdapter) HasConnectivity(ctx context.Context, from, to *entities.LocationEntity) (bool, error) {
	cypher := fmt.Sprintf(`MATCH (a:%s {id: $fromId}), (b:%s {id: $toId})
RETURN EXISTS { MATCH p = shortestPath((a)-[*..6]-(b)) } AS connected`,
		Label(from.Type), Label(to.Type))
	records, err := a.client.ExecuteRead(ctx, cypher, map[string]any{
		"fromId": from.ID,
		"toId":   to.ID,
	})
	if err != nil {
		return false, apperrors.NewExternalError("connectivity query failed", err)
	}
	if len(records) == 0 {
		return false, nil
	}
	raw, ok := records[0].Get("connected")
	if !ok {
		return false, nil
	}
	connected, _ := raw.(bool)
	return connected, nil
}

// NearbyEntities retrieves entities of a type within a radius of a point,
// nearest first.
func (a *KnowledgeAdapter) NearbyEntities(ctx context.Context, entityType entities.EntityType, center entities.Coordinates, radiusMeters float64, limit int) ([]*entities.LocationEntity, error) {
	cypher := fmt.Sprintf(`MATCH (n:%s)
WHERE n.lat IS NOT NULL AND n.lon IS NOT NULL
WITH n, point.distance(point({latitude: n.lat, longitude: n.lon}), point({latitude: $lat, longitude: $lon})) AS dist
WHERE dist <= $radius
RETURN n {.*} AS props
ORDER BY dist
LIMIT $limit`, Label(entityType))
	return a.queryEntities(ctx, cypher, map[string]any{
		"lat":    center.Latitude,
		"lon":    center.Longitude,
		"radius": radiusMeters,
		"limit":  limit,
	}, entityType)
}

// CommonLines intersects the lines properties of two stops.
func (a *KnowledgeAdapter) CommonLines(ctx context.Context, fromStopID, toStopID string) ([]string, error) {
	cypher := `MATCH (a:Stop {id: $fromId}), (b:Stop {id: $toId})
WITH coalesce(a.lines, []) AS la, coalesce(b.lines, []) AS lb
RETURN [line IN la WHERE line IN lb] AS common`
	records, err := a.client.ExecuteRead(ctx, cypher, map[string]any{
		"fromId": fromStopID,
		"toId":   toStopID,
	})
	if err != nil {
		return nil, apperrors.NewExternalError("common lines query failed", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	raw, ok := records[0].Get("common")
	if !ok {
		return nil, nil
	}
	return stringList(raw), nil
}

// LineStops walks the line's NEXT_STOP chain between two stops. Lines
// are stored in one direction only, so a miss forward is retried
// backward and the stop sequence reversed.
func (a *KnowledgeAdapter) LineStops(ctx context.Context, fromStopID, toStopID, line string) ([]string, error) {
	forward := `MATCH p = (a:Stop {id: $fromId})-[r:NEXT_STOP*1..50]->(b:Stop {id: $toId})
WHERE all(rel IN r WHERE rel.line = $line)
WITH [n IN nodes(p) | n.name] AS stops
RETURN stops
ORDER BY size(stops)
LIMIT 1`
	stops, err := a.lineStopsQuery(ctx, forward, fromStopID, toStopID, line)
	if err != nil || len(stops) > 0 {
		return stops, err
	}

	backward := `MATCH p = (b:Stop {id: $toId})-[r:NEXT_STOP*1..50]->(a:Stop {id: $fromId})
WHERE all(rel IN r WHERE rel.line = $line)
WITH [n IN nodes(p) | n.name] AS stops
RETURN stops
ORDER BY size(stops)
LIMIT 1`
	stops, err = a.lineStopsQuery(ctx, backward, fromStopID, toStopID, line)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(stops)-1; i < j; i, j = i+1, j-1 {
		stops[i], stops[j] = stops[j], stops[i]
	}
	return stops, nil
}

func (a *KnowledgeAdapter) lineStopsQuery(ctx context.Context, cypher, fromStopID, toStopID, line string) ([]string, error) {
	records, err := a.client.ExecuteRead(ctx, cypher, map[string]any{
		"fromId": fromStopID,
		"toId":   toStopID,
		"line":   line,
	})
	if err != nil {
		return nil, apperrors.NewExternalError("line path query failed", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	raw, ok := records[0].Get("stops")
	if !ok {
		return nil, nil
	}
	return stringList(raw), nil
}

// TransferOptions pairs each origin line with each destination line and
// finds the stops served by both.
func (a *KnowledgeAdapter) TransferOptions(ctx context.Context, fromStopID, toStopID string) ([]entities.TransferOption, error) {
	cypher := `MATCH (a:Stop {id: $fromId}), (b:Stop {id: $toId})
UNWIND coalesce(a.lines, []) AS l1
UNWIND coalesce(b.lines, []) AS l2
WITH l1, l2 WHERE l1 <> l2
MATCH (t:Stop)
WHERE l1 IN coalesce(t.lines, []) AND l2 IN coalesce(t.lines, [])
  AND t.id <> $fromId AND t.id <> $toId
RETURN l1 AS fromLine, l2 AS toLine, t.id AS stopId, t.name AS stopName
LIMIT 10`
	records, err := a.client.ExecuteRead(ctx, cypher, map[string]any{
		"fromId": fromStopID,
		"toId":   toStopID,
	})
	if err != nil {
		return nil, apperrors.NewExternalError("transfer query failed", err)
	}

	options := make([]entities.TransferOption, 0, len(records))
	for _, record := range records {
		option := entities.TransferOption{}
		if raw, ok := record.Get("fromLine"); ok {
			option.FromLine, _ = raw.(string)
		}
		if raw, ok := record.Get("toLine"); ok {
			option.ToLine, _ = raw.(string)
		}
		if raw, ok := record.Get("stopId"); ok {
			option.StopID, _ = raw.(string)
		}
		if raw, ok := record.Get("stopName"); ok {
			option.StopName, _ = raw.(string)
		}
		options = append(options, option)
	}
	return options, nil
}

func (a *KnowledgeAdapter) queryEntities(ctx context.Context, cypher string, params map[string]any, entityType entities.EntityType) ([]*entities.LocationEntity, error) {
	records, err := a.client.ExecuteRead(ctx, cypher, params)
	if err != nil {
		return nil, apperrors.NewExternalError("knowledge graph query failed", err)
	}

	results := make([]*entities.LocationEntity, 0, len(records))
	for _, record := range records {
		entity, err := entityFromRecord(record, entityType)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, nil
}

type propsRecord interface {
	Get(key string) (any, bool)
}

func recordProps(record propsRecord) (map[string]any, bool) {
	raw, ok := record.Get("props")
	if !ok {
		return nil, false
	}
	props, ok := raw.(map[string]any)
	return props, ok
}

func entityFromRecord(record propsRecord, entityType entities.EntityType) (*entities.LocationEntity, error) {
	props, ok := recordProps(record)
	if !ok {
		return nil, apperrors.NewInternalError("malformed knowledge graph record", nil)
	}

	entity := &entities.LocationEntity{
		ID:          stringProp(props, "id"),
		Type:        entityType,
		Name:        stringProp(props, "name"),
		Aliases:     stringsProp(props, "aliases"),
		Lines:       stringsProp(props, "lines"),
		Description: firstStringProp(props, "description", "function", "note"),
		Category:    firstStringProp(props, "category", "cuisine"),
		Address:     stringProp(props, "address"),
		Floor:       stringProp(props, "floor"),
		OpeningInfo: stringProp(props, "opening_hours"),
		Coordinates: entities.Coordinates{
			Latitude:  floatProp(props, "lat"),
			Longitude: floatProp(props, "lon"),
		},
	}
	if entity.ID == "" {
		entity.ID = strings.ToLower(strings.ReplaceAll(entity.Name, " ", "_"))
	}
	return entity, nil
}

func stringProp(props map[string]any, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

func firstStringProp(props map[string]any, keys ...string) string {
	for _, key := range keys {
		if v := stringProp(props, key); v != "" {
			return v
		}
	}
	return ""
}

func stringsProp(props map[string]any, key string) []string {
	return stringList(props[key])
}

func stringList(raw any) []string {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	values := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			values = append(values, s)
		}
	}
	return values
}

func floatProp(props map[string]any, key string) float64 {
	switch v := props[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}
