package main

import (
	"context"
	"time"

	"github.com/civicline/backend/internal/config"
	"github.com/civicline/backend/internal/db"
	"github.com/civicline/backend/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Opening the store runs the schema migration
	logger.Info("Running store migrations...", map[string]interface{}{"driver": cfg.Store.Driver})
	_, closeStore, err := db.Open(ctx, cfg.Store)
	if err != nil {
		logger.Fatal("Migration failed", map[string]interface{}{"error": err.Error()})
	}
	defer closeStore()

	if cfg.Store.Driver == config.StoreDriverMongo {
		logger.Info("Document store needs no schema migration", nil)
		return
	}
	logger.Info("Store migrations completed successfully", nil)
}
