package graph

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/imiq-project/Dashbot/internal/domain/entities"
	"github.com/imiq-project/Dashbot/internal/infrastructure/observability"
	apperrors "github.com/imiq-project/Dashbot/pkg/errors"
)

// indexCreator abstracts the write path so tests can observe index
// creation without a live graph.
type indexCreator interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) error
}

// FulltextIndexManager creates the per-type fulltext indexes once per
// process. A failed creation is remembered: fulltext stays unavailable
// for the process lifetime and the resolver falls back to substring
// scans instead of retrying per request.
type FulltextIndexManager struct {
	client indexCreator

	once      sync.Once
	available bool
	err       error
}

// NewFulltextIndexManager creates a new index manager
func NewFulltextIndexManager(client indexCreator) *FulltextIndexManager {
	return &FulltextIndexManager{client: client}
}

// EnsureIndexes creates the fulltext indexes if missing. Safe to call on
// every request; the work runs at most once.
func (m *FulltextIndexManager) EnsureIndexes(ctx context.Context) error {
	m.once.Do(func() {
		logger := observability.LoggerFromContext(ctx)
		for _, entityType := range entities.AllEntityTypes {
			cypher := fmt.Sprintf(
				"CREATE FULLTEXT INDEX %s IF NOT EXISTS FOR (n:%s) ON EACH [%s]",
				IndexName(entityType), Label(entityType), fieldList(entityType))
			if err := m.client.ExecuteWrite(ctx, cypher, nil); err != nil {
				logger.Error().
					Err(err).
					Str("index", IndexName(entityType)).
					Msg("Fulltext index creation failed, search degrades to substring scans")
				m.err = apperrors.NewIndexUnavailableError(
					fmt.Sprintf("failed to create index %s", IndexName(entityType)), err)
				return
			}
		}
		m.available = true
		logger.Info().Msg("Fulltext indexes ready")
	})
	return m.err
}

// Available reports whether fulltext search can be used
func (m *FulltextIndexManager) Available() bool {
	return m.available
}

// ResetForTesting clears the once-guard so tests can exercise repeated
// initialization paths.
func (m *FulltextIndexManager) ResetForTesting() {
	m.once = sync.Once{}
	m.available = false
	m.err = nil
}

func fieldList(entityType entities.EntityType) string {
	fields := TextFields(entityType)
	quoted := make([]string, len(fields))
	for i, field := range fields {
		quoted[i] = "n." + field
	}
	return strings.Join(quoted, ", ")
}
