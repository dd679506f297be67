package elasticsearch

import (
	"context"
	"fmt"

	"github.com/evaldesk/eval-analytics/internal/elasticsearch/mappings"
	"github.com/evaldesk/eval-analytics/internal/logger"
)

// IndexAdminClient is the subset of the backend client needed to provision
// indices.
type IndexAdminClient interface {
	IndexExists(ctx context.Context, indexName string) (bool, error)
	CreateIndex(ctx context.Context, indexName string, body map[string]any) error
	UpdateIndexMapping(ctx context.Context, indexName string, mapping map[string]any) error
}

// LifecycleManager provisions indices idempotently. A missing index is created
// with its full body; an existing one gets the current mappings pushed so new
// fields become available without recreating the index.
type LifecycleManager struct {
	client IndexAdminClient
	logger logger.Logger
}

// NewLifecycleManager creates a new lifecycle manager
func NewLifecycleManager(client IndexAdminClient, log logger.Logger) *LifecycleManager {
	return &LifecycleManager{
		client: client,
		logger: log,
	}
}

// EnsureIndex provisions a single index. It reports whether the index was
// newly created.
func (m *LifecycleManager) EnsureIndex(ctx context.Context, def mappings.IndexDefinition) (bool, error) {
	exists, err := m.client.IndexExists(ctx, def.Name)
	if err != nil {
		return false, fmt.Errorf("failed to check index %s: %w", def.Name, err)
	}

	if !exists {
		if createErr := m.client.CreateIndex(ctx, def.Name, def.Body); createErr != nil {
			return false, fmt.Errorf("failed to create index %s: %w", def.Name, createErr)
		}
		m.logger.Info("Index created",
			logger.String("index_name", def.Name),
			logger.String("index_type", def.Type),
			logger.String("mapping_version", mappings.GetMappingVersion(def.Type)),
		)
		return true, nil
	}

	// The backend rejects incompatible changes; additive updates succeed.
	if updateErr := m.client.UpdateIndexMapping(ctx, def.Name, def.Mappings()); updateErr != nil {
		return false, fmt.Errorf("failed to update mapping for index %s: %w", def.Name, updateErr)
	}
	m.logger.Debug("Index mapping refreshed",
		logger.String("index_name", def.Name),
		logger.String("mapping_version", mappings.GetMappingVersion(def.Type)),
	)

	return false, nil
}
