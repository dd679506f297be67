package bootstrap

import (
	"context"
	"fmt"

	"github.com/evaldesk/eval-analytics/internal/config"
	"github.com/evaldesk/eval-analytics/internal/database"
	"github.com/evaldesk/eval-analytics/internal/elasticsearch"
	"github.com/evaldesk/eval-analytics/internal/elasticsearch/mappings"
	"github.com/evaldesk/eval-analytics/internal/logger"
	"github.com/evaldesk/eval-analytics/internal/service"
)

// SetupOpenSearch creates a client for the search backend.
func SetupOpenSearch(cfg *config.Config) (*elasticsearch.Client, error) {
	esConfig := &elasticsearch.Config{
		Endpoint:        cfg.OpenSearch.Endpoint,
		Username:        cfg.OpenSearch.Username,
		Secret:          cfg.OpenSearch.Secret,
		InsecureSkipTLS: cfg.OpenSearch.InsecureSkipTLS,
		MaxRetries:      cfg.OpenSearch.MaxRetries,
		Timeout:         cfg.OpenSearch.Timeout,
	}

	esClient, err := elasticsearch.NewClient(esConfig)
	if err != nil {
		return nil, fmt.Errorf("search backend client: %w", err)
	}
	return esClient, nil
}

// ProvisionIndices creates or updates every managed index. Provisioning
// failures are logged per index rather than aborting startup, so one bad
// index does not take the whole service down.
func ProvisionIndices(
	esClient *elasticsearch.Client,
	db *database.Connection,
	cfg *config.Config,
	log logger.Logger,
) {
	lifecycle := elasticsearch.NewLifecycleManager(esClient, log)
	indexService := service.NewIndexService(lifecycle, esClient, db, cfg.OpenSearch.UsageIndex, log)

	provisioned := indexService.InitIndices(context.Background())
	log.Info("Index provisioning complete", logger.Int("provisioned", provisioned))
}

// CheckMappingVersionDrift logs warnings for indexes whose recorded mapping
// version is behind the current version constants.
func CheckMappingVersionDrift(db *database.Connection, log logger.Logger) {
	allMetadata, err := db.ListAllActiveMetadata(context.Background())
	if err != nil {
		log.Warn("Failed to check mapping version drift", logger.Error(err))
		return
	}

	for _, meta := range allMetadata {
		currentVersion := mappings.GetMappingVersion(meta.IndexType)
		if meta.MappingVersion != currentVersion {
			log.Warn("Index mapping version drift detected",
				logger.String("index_name", meta.IndexName),
				logger.String("current_version", meta.MappingVersion),
				logger.String("latest_version", currentVersion),
				logger.String("index_type", meta.IndexType),
			)
		}
	}
}
