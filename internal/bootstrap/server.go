package bootstrap

import (
	"github.com/evaldesk/eval-analytics/internal/api"
	"github.com/evaldesk/eval-analytics/internal/config"
	"github.com/evaldesk/eval-analytics/internal/database"
	"github.com/evaldesk/eval-analytics/internal/elasticsearch"
	"github.com/evaldesk/eval-analytics/internal/logger"
	"github.com/evaldesk/eval-analytics/internal/service"
)

// SetupHTTPServer wires the services and creates the HTTP server.
func SetupHTTPServer(
	cfg *config.Config,
	esClient *elasticsearch.Client,
	db *database.Connection,
	log logger.Logger,
) *api.Server {
	usageIndex := cfg.OpenSearch.UsageIndex

	lifecycle := elasticsearch.NewLifecycleManager(esClient, log)
	analyticsService := service.NewAnalyticsService(esClient, log)
	evalStore := service.NewEvalStoreService(esClient, usageIndex, log)
	indexService := service.NewIndexService(lifecycle, esClient, db, usageIndex, log)

	handler := api.NewHandler(analyticsService, evalStore, indexService, usageIndex, esClient, db, log)

	serverConfig := api.ServerConfig{
		Port:  cfg.Service.Port,
		Debug: cfg.Service.Debug,
	}

	return api.NewServer(handler, serverConfig, log)
}
