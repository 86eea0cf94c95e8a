package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/imiq-project/Dashbot/internal/adapters/graph"
	"github.com/imiq-project/Dashbot/internal/domain/entities"
	"github.com/imiq-project/Dashbot/internal/infrastructure/clients/neo4j"
	"github.com/imiq-project/Dashbot/pkg/config"
)

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "drop existing fulltext indexes before recreating them")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for index maintenance (e.g. 6h, 30m)")
	flag.Parse()

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	var err error
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatalf("Invalid interval %q: %v", intervalValue, err)
		}
		if interval <= 0 {
			log.Fatalf("Interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, reset); err != nil {
			log.Printf("Index maintenance failed: %v", err)
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Printf("Index maintenance complete. Next run in %s.", interval)

		select {
		case <-ctx.Done():
			log.Println("Indexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, reset bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	client, err := neo4j.NewClient(&cfg.Neo4j)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	if reset || os.Getenv("RESET_INDEXES") == "true" {
		log.Println("Dropping existing fulltext indexes")
		for _, entityType := range entities.AllEntityTypes {
			cypher := fmt.Sprintf("DROP INDEX %s IF EXISTS", graph.IndexName(entityType))
			if err := client.ExecuteWrite(ctx, cypher, nil); err != nil {
				log.Printf("Warning: failed to drop index for %s: %v", entityType, err)
			}
		}
	}

	indexManager := graph.NewFulltextIndexManager(client)
	if err := indexManager.EnsureIndexes(ctx); err != nil {
		return err
	}

	log.Println("Fulltext indexes ready")
	return nil
}
