package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/evaldesk/eval-analytics/internal/database"
	"github.com/evaldesk/eval-analytics/internal/elasticsearch/mappings"
	"github.com/evaldesk/eval-analytics/internal/logger"
)

// ErrIndexNotFound is returned when a mapping is requested for an index that
// does not exist.
var ErrIndexNotFound = errors.New("index does not exist")

// IndexProvisioner provisions a single index definition. The concrete
// *elasticsearch.LifecycleManager satisfies this interface.
type IndexProvisioner interface {
	EnsureIndex(ctx context.Context, def mappings.IndexDefinition) (bool, error)
}

// MappingESClient defines the backend operations needed for mapping reads.
type MappingESClient interface {
	IndexExists(ctx context.Context, indexName string) (bool, error)
	GetIndexMapping(ctx context.Context, indexName string) (map[string]any, error)
}

// MetadataStore records index provisioning metadata. The concrete
// *database.Connection satisfies this interface.
type MetadataStore interface {
	SaveIndexMetadata(ctx context.Context, metadata *database.IndexMetadata) error
	ListAllActiveMetadata(ctx context.Context) ([]*database.IndexMetadata, error)
}

// IndexService provisions the analytics indices at startup and exposes
// mapping inspection.
type IndexService struct {
	provisioner IndexProvisioner
	esClient    MappingESClient
	db          MetadataStore
	usageIndex  string
	logger      logger.Logger
}

// NewIndexService creates a new index service
func NewIndexService(
	provisioner IndexProvisioner, esClient MappingESClient,
	db MetadataStore, usageIndex string, log logger.Logger,
) *IndexService {
	return &IndexService{
		provisioner: provisioner,
		esClient:    esClient,
		db:          db,
		usageIndex:  usageIndex,
		logger:      log,
	}
}

// InitIndices provisions every analytics index. A failure on one index is
// logged and the rest are still attempted, so a partially healthy cluster
// serves whatever data it can. Returns the number of indices provisioned.
func (s *IndexService) InitIndices(ctx context.Context) int {
	provisioned := 0
	for _, def := range mappings.Definitions(s.usageIndex) {
		created, err := s.provisioner.EnsureIndex(ctx, def)
		if err != nil {
			s.logger.Warn("Failed to provision index",
				logger.String("index_name", def.Name),
				logger.Error(err),
			)
			continue
		}
		provisioned++

		s.recordMetadata(ctx, def, created)
	}
	return provisioned
}

// recordMetadata persists the provisioning record. Metadata is advisory, so a
// database failure is logged rather than propagated.
func (s *IndexService) recordMetadata(ctx context.Context, def mappings.IndexDefinition, created bool) {
	metadata := &database.IndexMetadata{
		IndexName:      def.Name,
		IndexType:      def.Type,
		MappingVersion: mappings.GetMappingVersion(def.Type),
		Status:         "active",
	}
	if err := s.db.SaveIndexMetadata(ctx, metadata); err != nil {
		s.logger.Warn("Failed to save index metadata",
			logger.String("index_name", def.Name),
			logger.Error(err),
		)
		return
	}

	if created {
		s.logger.Info("Index provisioned",
			logger.String("index_name", def.Name),
			logger.String("mapping_version", metadata.MappingVersion),
		)
	}
}

// GetIndexMapping returns the live mapping of an index.
func (s *IndexService) GetIndexMapping(ctx context.Context, indexName string) (map[string]any, error) {
	exists, err := s.esClient.IndexExists(ctx, indexName)
	if err != nil {
		return nil, fmt.Errorf("failed to check index existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("index %s: %w", indexName, ErrIndexNotFound)
	}

	return s.esClient.GetIndexMapping(ctx, indexName)
}

// ListIndexMetadata returns the provisioning records for all active indices.
func (s *IndexService) ListIndexMetadata(ctx context.Context) ([]*database.IndexMetadata, error) {
	return s.db.ListAllActiveMetadata(ctx)
}
