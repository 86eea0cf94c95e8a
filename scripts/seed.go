package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/imiq-project/Dashbot/internal/adapters/graph"
	"github.com/imiq-project/Dashbot/internal/domain/entities"
	"github.com/imiq-project/Dashbot/internal/infrastructure/clients/neo4j"
	"github.com/imiq-project/Dashbot/pkg/config"
)

// campusDataset mirrors the JSON layout of the campus fixture file.
type campusDataset struct {
	Entities []seedEntity `json:"entities"`
	Sensors  []seedSensor `json:"sensors"`
	// Adjacency holds pairs of entity keys ("Building:G26") that share a
	// physical connection, used for connectivity checks.
	Adjacency [][2]string `json:"adjacency"`
	// Lines holds each transit line's stop sequence, seeded as a chain
	// of NEXT_STOP relationships for transit routing.
	Lines []seedLine `json:"lines,omitempty"`
}

type seedLine struct {
	Name string `json:"name"`
	// Stops are stop ids in travel order.
	Stops []string `json:"stops"`
}

type seedEntity struct {
	Type    string   `json:"type"`
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	Lat     float64  `json:"lat"`
	Lon     float64  `json:"lon"`

	Function    string   `json:"function,omitempty"`
	Departments []string `json:"departments,omitempty"`
	Note        string   `json:"note,omitempty"`
	Address     string   `json:"address,omitempty"`
	Lines       []string `json:"lines,omitempty"`
	Category    string   `json:"category,omitempty"`
	Cuisine     string   `json:"cuisine,omitempty"`
	Description string   `json:"description,omitempty"`
	Floor       string   `json:"floor,omitempty"`
	OpeningInfo string   `json:"opening_hours,omitempty"`
}

type seedSensor struct {
	Kind string  `json:"kind"`
	ID   string  `json:"id,omitempty"`
	Name string  `json:"name,omitempty"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

func main() {
	var datasetPath string
	flag.StringVar(&datasetPath, "dataset", "config/campus_dataset.json", "path to the campus dataset file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	client, err := neo4j.NewClient(&cfg.Neo4j)
	if err != nil {
		log.Fatalf("Failed to connect to Neo4j: %v", err)
	}
	ctx := context.Background()
	defer client.Close(ctx)

	dataset, err := loadDataset(datasetPath)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}

	if os.Getenv("RESET_GRAPH") == "true" {
		log.Println("RESET_GRAPH=true detected, clearing the graph before seeding")
		if err := client.ExecuteWrite(ctx, `MATCH (n) DETACH DELETE n`, nil); err != nil {
			log.Fatalf("Failed to reset graph: %v", err)
		}
	}

	seeded := 0
	for _, e := range dataset.Entities {
		entityType, ok := entities.ParseEntityType(e.Type)
		if !ok {
			log.Printf("Skipping entity %q: unknown type %q", e.Name, e.Type)
			continue
		}
		if err := upsertEntity(ctx, client, entityType, e); err != nil {
			log.Printf("Failed to seed %s %q: %v", e.Type, e.Name, err)
			continue
		}
		seeded++
	}
	log.Printf("Seeded %d entities", seeded)

	for _, s := range dataset.Sensors {
		kind, ok := entities.ParseSensorKind(s.Kind)
		if !ok {
			log.Printf("Skipping sensor %q: unknown kind %q", s.Name, s.Kind)
			continue
		}
		if s.ID == "" {
			s.ID = uuid.New().String()
		}
		if err := upsertSensor(ctx, client, kind, s); err != nil {
			log.Printf("Failed to seed sensor %q: %v", s.Name, err)
		}
	}
	log.Printf("Seeded %d sensors", len(dataset.Sensors))

	for _, pair := range dataset.Adjacency {
		if err := linkAdjacent(ctx, client, pair[0], pair[1]); err != nil {
			log.Printf("Failed to link %s - %s: %v", pair[0], pair[1], err)
		}
	}
	log.Printf("Linked %d adjacency pairs", len(dataset.Adjacency))

	for _, line := range dataset.Lines {
		if err := linkLineStops(ctx, client, line); err != nil {
			log.Printf("Failed to chain line %q: %v", line.Name, err)
		}
	}
	log.Printf("Chained %d transit lines", len(dataset.Lines))

	indexManager := graph.NewFulltextIndexManager(client)
	if err := indexManager.EnsureIndexes(ctx); err != nil {
		log.Printf("Warning: fulltext index creation failed: %v", err)
	} else {
		log.Println("Fulltext indexes ready")
	}
}

func loadDataset(path string) (*campusDataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var dataset campusDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		return nil, err
	}
	return &dataset, nil
}

func upsertEntity(ctx context.Context, client *neo4j.Client, entityType entities.EntityType, e seedEntity) error {
	props := map[string]any{
		"id":      e.ID,
		"name":    e.Name,
		"aliases": e.Aliases,
		"lat":     e.Lat,
		"lon":     e.Lon,
	}
	setOptional(props, "function", e.Function)
	setOptional(props, "note", e.Note)
	setOptional(props, "address", e.Address)
	setOptional(props, "category", e.Category)
	setOptional(props, "cuisine", e.Cuisine)
	setOptional(props, "description", e.Description)
	setOptional(props, "floor", e.Floor)
	setOptional(props, "opening_hours", e.OpeningInfo)
	if len(e.Departments) > 0 {
		props["departments"] = e.Departments
	}
	if len(e.Lines) > 0 {
		props["lines"] = e.Lines
	}

	cypher := fmt.Sprintf(`MERGE (n:%s {id: $id}) SET n = $props`, graph.Label(entityType))
	return client.ExecuteWrite(ctx, cypher, map[string]any{"id": e.ID, "props": props})
}

func upsertSensor(ctx context.Context, client *neo4j.Client, kind entities.SensorKind, s seedSensor) error {
	cypher := `MERGE (n:Sensor {id: $id}) SET n = {id: $id, kind: $kind, name: $name, lat: $lat, lon: $lon}`
	return client.ExecuteWrite(ctx, cypher, map[string]any{
		"id":   s.ID,
		"kind": string(kind),
		"name": s.Name,
		"lat":  s.Lat,
		"lon":  s.Lon,
	})
}

func linkAdjacent(ctx context.Context, client *neo4j.Client, fromKey, toKey string) error {
	fromLabel, fromID, err := splitKey(fromKey)
	if err != nil {
		return err
	}
	toLabel, toID, err := splitKey(toKey)
	if err != nil {
		return err
	}
	cypher := fmt.Sprintf(
		`MATCH (a:%s {id: $fromId}), (b:%s {id: $toId}) MERGE (a)-[:ADJACENT_TO]->(b)`,
		fromLabel, toLabel)
	return client.ExecuteWrite(ctx, cypher, map[string]any{"fromId": fromID, "toId": toID})
}

func linkLineStops(ctx context.Context, client *neo4j.Client, line seedLine) error {
	cypher := `MATCH (a:Stop {id: $fromId}), (b:Stop {id: $toId})
MERGE (a)-[:NEXT_STOP {line: $line}]->(b)`
	for i := 0; i+1 < len(line.Stops); i++ {
		err := client.ExecuteWrite(ctx, cypher, map[string]any{
			"fromId": line.Stops[i],
			"toId":   line.Stops[i+1],
			"line":   line.Name,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func splitKey(key string) (label, id string, err error) {
	for i, r := range key {
		if r == ':' {
			entityType, ok := entities.ParseEntityType(key[:i])
			if !ok {
				return "", "", fmt.Errorf("unknown entity type in key %q", key)
			}
			return graph.Label(entityType), key[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("malformed entity key %q (want Type:ID)", key)
}

func setOptional(props map[string]any, key, value string) {
	if value != "" {
		props[key] = value
	}
}
