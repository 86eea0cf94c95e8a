package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Neo4jConfig(t *testing.T) {
	// Setup environment variables
	os.Setenv("NEO4J_URI", "bolt://test-neo4j:7687")
	os.Setenv("NEO4J_PASSWORD", "test-password")
	defer func() {
		os.Unsetenv("NEO4J_URI")
		os.Unsetenv("NEO4J_PASSWORD")
	}()

	// Load config
	cfg, err := Load()
	assert.NoError(t, err)

	// Verify Neo4j config
	assert.Equal(t, "bolt://test-neo4j:7687", cfg.Neo4j.URI)
	assert.Equal(t, "test-password", cfg.Neo4j.Password)
}

func TestLoad_Defaults(t *testing.T) {
	// Ensure env vars are cleared
	os.Unsetenv("NEO4J_URI")
	os.Unsetenv("RESOLVER_SEMANTIC_THRESHOLD")
	os.Unsetenv("ORS_TIMEOUT")

	cfg, err := Load()
	assert.NoError(t, err)

	// Verify defaults
	assert.Equal(t, "bolt://localhost:7687", cfg.Neo4j.URI)
	assert.Equal(t, 0.18, cfg.Resolver.SemanticThreshold)
	assert.Equal(t, 16, cfg.Resolver.EntityCacheCapacity)
	assert.Equal(t, 10*time.Second, cfg.ORS.Timeout)
}

func TestLoad_ResolverOverrides(t *testing.T) {
	os.Setenv("RESOLVER_SEMANTIC_THRESHOLD", "0.25")
	os.Setenv("RESOLVER_ENTITY_CACHE_CAPACITY", "4")
	os.Setenv("RESOLVER_STAGE_TIMEOUT", "2s")
	defer func() {
		os.Unsetenv("RESOLVER_SEMANTIC_THRESHOLD")
		os.Unsetenv("RESOLVER_ENTITY_CACHE_CAPACITY")
		os.Unsetenv("RESOLVER_STAGE_TIMEOUT")
	}()

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, 0.25, cfg.Resolver.SemanticThreshold)
	assert.Equal(t, 4, cfg.Resolver.EntityCacheCapacity)
	assert.Equal(t, 2*time.Second, cfg.Resolver.StageTimeout)
}

func TestRedisAddr(t *testing.T) {
	rc := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", rc.RedisAddr())
}
