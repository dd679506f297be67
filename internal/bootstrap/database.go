package bootstrap

import (
	"context"
	"fmt"

	"github.com/evaldesk/eval-analytics/internal/config"
	"github.com/evaldesk/eval-analytics/internal/database"
)

// SetupDatabase creates a database connection and ensures the metadata
// schema exists.
func SetupDatabase(cfg *config.Config) (*database.Connection, error) {
	dbConfig := &database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxConnections:  cfg.Database.MaxConnections,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnectionMaxLifetime,
	}

	db, err := database.NewConnection(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("database connection: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return db, nil
}
