package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/imiq-project/Dashbot/internal/adapters/cache"
	"github.com/imiq-project/Dashbot/internal/adapters/graph"
	"github.com/imiq-project/Dashbot/internal/adapters/routing"
	"github.com/imiq-project/Dashbot/internal/api/handlers"
	"github.com/imiq-project/Dashbot/internal/api/middleware"
	"github.com/imiq-project/Dashbot/internal/api/routes"
	"github.com/imiq-project/Dashbot/internal/application/services"
	"github.com/imiq-project/Dashbot/internal/domain/providers"
	"github.com/imiq-project/Dashbot/internal/infrastructure/clients/neo4j"
	"github.com/imiq-project/Dashbot/internal/infrastructure/clients/ors"
	"github.com/imiq-project/Dashbot/internal/infrastructure/clients/redis"
	"github.com/imiq-project/Dashbot/internal/infrastructure/clients/tomtom"
	"github.com/imiq-project/Dashbot/internal/infrastructure/observability"
	"github.com/imiq-project/Dashbot/pkg/config"
)

func main() {

	// Load configuration

	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize graph client
	neo4jClient, err := neo4j.NewClient(&cfg.Neo4j)
	if err != nil {
		log.Fatalf("Failed to initialize Neo4j client: %v", err)
	}
	defer func() {
		if err := neo4jClient.Close(context.Background()); err != nil {
			log.Printf("Error closing Neo4j client: %v", err)
		}
	}()
	log.Println("Neo4j client initialized successfully")

	// Initialize Redis client
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		// Continue without Redis - the application can work without caching
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Initialize adapters

	knowledgeRepo := graph.NewKnowledgeAdapter(neo4jClient)
	indexManager := graph.NewFulltextIndexManager(neo4jClient)

	// Index creation failure is not fatal: the resolver degrades to
	// substring scans when fulltext is unavailable.
	if err := indexManager.EnsureIndexes(ctx); err != nil {
		log.Printf("Warning: fulltext indexes unavailable: %v", err)
	} else {
		log.Println("Fulltext indexes ready")
	}

	orsClient := ors.NewClient(&cfg.ORS)
	orsAdapter := routing.NewORSAdapter(orsClient, cacheProvider, cfg.Campus.FocusLat, cfg.Campus.FocusLon, cfg.Campus.City)

	var trafficProvider providers.RouteProvider
	if cfg.TomTom.APIKey == "" {
		log.Println("Warning: TOMTOM_API_KEY is not set; driving routes fall back to ORS without live traffic")
	} else {
		trafficProvider = routing.NewTomTomAdapter(tomtom.NewClient(&cfg.TomTom))
	}

	// Initialize services

	resolverService := services.NewResolverService(
		knowledgeRepo,
		indexManager,
		metrics,
		cfg.Resolver.SemanticThreshold,
		cfg.Resolver.StageTimeout,
	)

	disambiguatorService := services.NewDisambiguatorService(resolverService)
	entityCacheService := services.NewEntityCacheService(cfg.Resolver.EntityCacheCapacity, metrics)
	proximityService := services.NewProximityService(knowledgeRepo)
	routingService := services.NewRoutingService(orsAdapter, trafficProvider, knowledgeRepo, orsAdapter, metrics)

	assistantService := services.NewAssistantService(
		disambiguatorService,
		entityCacheService,
		proximityService,
		routingService,
	)

	// Initialize handlers

	assistantHandler := handlers.NewAssistantHandler(assistantService)

	entityHandler := handlers.NewEntityHandler(knowledgeRepo, resolverService)

	sensorHandler := handlers.NewSensorHandler(proximityService)

	// Initialize cache middleware
	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider)
		log.Println("Cache middleware initialized successfully")
	}

	// Set up router

	router := routes.NewRouter(
		assistantHandler,
		entityHandler,
		sensorHandler,
		cacheMiddleware,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	log.Println("Server stopped")
}
