// Package bootstrap handles application initialization and lifecycle management
// for the eval-analytics service.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evaldesk/eval-analytics/internal/logger"
)

const shutdownTimeout = 10 * time.Second

// Start initializes and runs the eval-analytics application. It blocks until
// the process receives SIGINT or SIGTERM, then drains the HTTP server.
func Start() error {
	// Phase 1: Load config and create logger
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := CreateLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting Eval Analytics Service",
		logger.String("name", cfg.Service.Name),
		logger.String("version", cfg.Service.Version),
		logger.Int("port", cfg.Service.Port),
	)

	// Phase 2: Setup search backend
	esClient, err := SetupOpenSearch(cfg)
	if err != nil {
		return fmt.Errorf("failed to setup search backend: %w", err)
	}
	log.Info("Search backend client initialized")

	// Phase 3: Setup database
	db, err := SetupDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to setup database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("Failed to close database connection", logger.Error(closeErr))
		}
	}()
	log.Info("Database connection established")

	// Phase 4: Provision indexes and warn about mapping drift
	ProvisionIndices(esClient, db, cfg, log)
	CheckMappingVersionDrift(db, log)

	// Phase 5: Setup and run HTTP server
	server := SetupHTTPServer(cfg, esClient, db, log)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			log.Error("Server error", logger.Error(err))
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-sigChan:
		log.Info("Received signal", logger.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if shutdownErr := server.Shutdown(ctx); shutdownErr != nil {
		log.Error("Server shutdown error", logger.Error(shutdownErr))
		return fmt.Errorf("server shutdown: %w", shutdownErr)
	}

	log.Info("Eval Analytics Service stopped")
	return nil
}
