package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/imiq-project/Dashbot/internal/adapters/graph"
	"github.com/imiq-project/Dashbot/internal/application/services"
	"github.com/imiq-project/Dashbot/internal/evaluation"
	"github.com/imiq-project/Dashbot/internal/infrastructure/clients/neo4j"
	"github.com/imiq-project/Dashbot/internal/infrastructure/observability"
	"github.com/imiq-project/Dashbot/pkg/config"
)

func main() {
	var goldenPath string
	var minTopHit, minHitAt5 float64
	flag.StringVar(&goldenPath, "queries", "config/golden_queries.json", "path to the golden query set")
	flag.Float64Var(&minTopHit, "min-top-hit", 0.0, "fail when the top-hit rate drops below this value")
	flag.Float64Var(&minHitAt5, "min-hit-at-5", 0.0, "fail when the hit@5 rate drops below this value")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	queries, err := evaluation.LoadGoldenQueries(goldenPath)
	if err != nil {
		log.Fatalf("Failed to load golden queries: %v", err)
	}
	if err := evaluation.ValidateGoldenQueries(queries); err != nil {
		log.Fatalf("Invalid golden queries: %v", err)
	}

	neo4jClient, err := neo4j.NewClient(&cfg.Neo4j)
	if err != nil {
		log.Fatalf("Failed to connect to Neo4j: %v", err)
	}
	defer neo4jClient.Close(context.Background())

	knowledgeRepo := graph.NewKnowledgeAdapter(neo4jClient)
	indexManager := graph.NewFulltextIndexManager(neo4jClient)

	ctx := context.Background()
	if err := indexManager.EnsureIndexes(ctx); err != nil {
		log.Printf("Warning: fulltext indexes unavailable, evaluating fallback path: %v", err)
	}

	resolver := services.NewResolverService(
		knowledgeRepo,
		indexManager,
		nil,
		cfg.Resolver.SemanticThreshold,
		cfg.Resolver.StageTimeout,
	)

	runner := evaluation.NewRunner(resolver)
	summary, err := runner.Run(ctx, queries)
	if err != nil {
		log.Fatalf("Evaluation failed: %v", err)
	}

	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))

	gates := evaluation.NewGates(evaluation.GateConfig{
		MinTopHitRate: minTopHit,
		MinHitAt5Rate: minHitAt5,
	})
	if violations := gates.Check(summary); len(violations) > 0 {
		for _, v := range violations {
			log.Printf("Gate violation: %s", v)
		}
		os.Exit(1)
	}
}
