package services

import (
	"context"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/imiq-project/Dashbot/internal/domain/entities"
	"github.com/imiq-project/Dashbot/internal/infrastructure/observability"
)

// EntityCacheService keeps a bounded per-session memory of recently
// resolved entities so pronouns and demonstratives ("there", "it") can
// be resolved without touching the graph. Sessions never share records.
type EntityCacheService struct {
	mu       sync.Mutex
	capacity int
	sessions map[string]*sessionCache
	metrics  *observability.Metrics
}

type sessionCache struct {
	entries *lru.Cache[string, *cachedRecord]
	// aliases maps every normalized name and alias to the owning entry key.
	aliases map[string]string
}

type cachedRecord struct {
	entity *entities.LocationEntity
	keys   []string
}

// NewEntityCacheService creates a new entity cache with the given
// per-session capacity.
func NewEntityCacheService(capacity int, metrics *observability.Metrics) *EntityCacheService {
	if capacity <= 0 {
		capacity = 16
	}
	return &EntityCacheService{
		capacity: capacity,
		sessions: make(map[string]*sessionCache),
		metrics:  metrics,
	}
}

// Remember upserts an entity into the session's cache, keyed by its
// normalized name and every alias. Re-remembering refreshes recency.
func (s *EntityCacheService) Remember(ctx context.Context, sessionID string, entity *entities.LocationEntity) {
	if sessionID == "" || entity == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.session(sessionID)
	record := &cachedRecord{
		entity: entity,
		keys:   recordKeys(entity),
	}
	session.entries.Add(entity.Key(), record)
	for _, key := range record.keys {
		session.aliases[key] = entity.Key()
	}
}

// Recall resolves a reference within a session. A reference matching a
// remembered name or alias returns that entity and bumps its recency.
// Deictic references ("it", "dort") fall through to the most recently
// accessed entity compatible with the type hint; a named reference that
// misses the alias index returns nil so the caller resolves it from the
// graph instead of guessing.
func (s *EntityCacheService) Recall(ctx context.Context, sessionID, referenceText string, typeHint *entities.EntityType) *entities.LocationEntity {
	if sessionID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		s.miss(ctx)
		return nil
	}

	if normalized := NormalizeQuery(referenceText); normalized != "" {
		if entryKey, ok := session.aliases[normalized]; ok {
			if record, ok := session.entries.Get(entryKey); ok {
				if typeHint == nil || record.entity.Type == *typeHint {
					s.hit(ctx)
					return record.entity
				}
			}
		}
		if !isDeicticReference(normalized) {
			s.miss(ctx)
			return nil
		}
	}

	// Keys come back oldest first; walk backwards for the freshest match.
	keys := session.entries.Keys()
	for i := len(keys) - 1; i >= 0; i-- {
		record, ok := session.entries.Peek(keys[i])
		if !ok {
			continue
		}
		if typeHint != nil && record.entity.Type != *typeHint {
			continue
		}
		session.entries.Get(keys[i])
		s.hit(ctx)
		return record.entity
	}

	s.miss(ctx)
	return nil
}

// EndSession drops all records for a session.
func (s *EntityCacheService) EndSession(ctx context.Context, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

func (s *EntityCacheService) session(sessionID string) *sessionCache {
	if session, ok := s.sessions[sessionID]; ok {
		return session
	}

	session := &sessionCache{aliases: make(map[string]string)}
	// The eviction hook keeps the alias index consistent with the LRU.
	entries, _ := lru.NewWithEvict(s.capacity, func(entryKey string, record *cachedRecord) {
		for _, key := range record.keys {
			if session.aliases[key] == entryKey {
				delete(session.aliases, key)
			}
		}
	})
	session.entries = entries
	s.sessions[sessionID] = session
	return session
}

func (s *EntityCacheService) hit(ctx context.Context) {
	if s.metrics != nil {
		s.metrics.CacheHitCount.Add(ctx, 1)
	}
}

func (s *EntityCacheService) miss(ctx context.Context) {
	if s.metrics != nil {
		s.metrics.CacheMissCount.Add(ctx, 1)
	}
}

// deicticReferences are the pronoun and adverb forms, English and
// German, that point back at an earlier mention instead of naming an
// entity.
var deicticReferences = map[string]struct{}{
	"it": {}, "there": {}, "here": {}, "this": {}, "that": {},
	"that place": {}, "this place": {}, "same place": {},
	"es": {}, "da": {}, "dort": {}, "dahin": {}, "dorthin": {},
}

func isDeicticReference(normalized string) bool {
	_, ok := deicticReferences[normalized]
	return ok
}

func recordKeys(entity *entities.LocationEntity) []string {
	keys := make([]string, 0, len(entity.Aliases)+1)
	if name := NormalizeQuery(entity.Name); name != "" {
		keys = append(keys, name)
	}
	for _, alias := range entity.Aliases {
		if normalized := strings.ToLower(strings.TrimSpace(alias)); normalized != "" {
			keys = append(keys, normalized)
		}
	}
	return keys
}
