package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Neo4j    Neo4jConfig
	Redis    RedisConfig
	ORS      ORSConfig
	TomTom   TomTomConfig
	Resolver ResolverConfig
	Campus   CampusConfig
	OTEL     OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
	Env  string
}

// Neo4jConfig holds knowledge graph configuration
type Neo4jConfig struct {
	URI      string
	Username string
	Password string
	Database string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ORSConfig holds OpenRouteService (multi-modal routing) configuration
type ORSConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// TomTomConfig holds TomTom (traffic-aware routing) configuration
type TomTomConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// ResolverConfig holds resolution cascade tunables
type ResolverConfig struct {
	// SemanticThreshold is the minimum string similarity accepted by the
	// last-resort fallback stage. 0.18 admits single-character typos while
	// rejecting unrelated words; see the resolver tests before changing it.
	SemanticThreshold float64
	// StageTimeout bounds each parallel per-type index query.
	StageTimeout time.Duration
	// EntityCacheCapacity is the per-session bound on remembered entities.
	EntityCacheCapacity int
}

// CampusConfig anchors geocoding and defines the campus locale.
type CampusConfig struct {
	FocusLat float64
	FocusLon float64
	City     string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
			Env:  getEnv("APP_ENV", "development"),
		},
		Neo4j: Neo4jConfig{
			URI:      getEnv("NEO4J_URI", "bolt://localhost:7687"),
			Username: getEnv("NEO4J_USERNAME", "neo4j"),
			Password: getEnv("NEO4J_PASSWORD", ""),
			Database: getEnv("NEO4J_DATABASE", "neo4j"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		ORS: ORSConfig{
			BaseURL: getEnv("ORS_BASE_URL", "https://api.openrouteservice.org"),
			APIKey:  getEnv("ORS_API_KEY", ""),
			Timeout: getEnvAsDuration("ORS_TIMEOUT", 10*time.Second),
		},
		TomTom: TomTomConfig{
			BaseURL: getEnv("TOMTOM_BASE_URL", "https://api.tomtom.com"),
			APIKey:  getEnv("TOMTOM_API_KEY", ""),
			Timeout: getEnvAsDuration("TOMTOM_TIMEOUT", 10*time.Second),
		},
		Resolver: ResolverConfig{
			SemanticThreshold:   getEnvAsFloat("RESOLVER_SEMANTIC_THRESHOLD", 0.18),
			StageTimeout:        getEnvAsDuration("RESOLVER_STAGE_TIMEOUT", 5*time.Second),
			EntityCacheCapacity: getEnvAsInt("RESOLVER_ENTITY_CACHE_CAPACITY", 16),
		},
		Campus: CampusConfig{
			FocusLat: getEnvAsFloat("CAMPUS_FOCUS_LAT", 52.1205),
			FocusLon: getEnvAsFloat("CAMPUS_FOCUS_LON", 11.6276),
			City:     getEnv("CAMPUS_CITY", "Magdeburg"),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "dashbot-core"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}, nil
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
