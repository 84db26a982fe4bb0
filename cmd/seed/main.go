package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/civicline/backend/internal/config"
	"github.com/civicline/backend/internal/db"
	"github.com/civicline/backend/internal/logger"
	"github.com/civicline/backend/internal/models"
	"github.com/civicline/backend/internal/repository"
)

// SeedData represents the structure of the sample incidents file
type SeedData struct {
	Incidents []models.Incident `json:"incidents"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format, nil)

	path := "data/sample-incidents.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	repo, closeStore, err := db.Open(ctx, cfg.Store)
	if err != nil {
		logger.Fatal("Failed to connect to store", map[string]interface{}{"error": err.Error()})
	}
	defer closeStore()

	created, err := seedIncidents(ctx, repo, path)
	if err != nil {
		logger.Error("Error seeding incidents", map[string]interface{}{"error": err.Error()})
		return
	}

	logger.Info("Store seeding completed successfully", map[string]interface{}{
		"file":      path,
		"incidents": created,
	})
}

func seedIncidents(ctx context.Context, repo repository.IncidentRepository, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	var data SeedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return 0, fmt.Errorf("failed to parse seed file: %w", err)
	}

	created := 0
	for _, incident := range data.Incidents {
		// Create always stores a fresh incident as unresolved
		resolved := incident.Resolved
		if err := repo.Create(ctx, &incident); err != nil {
			logger.WithError(err, "seed").Error("Error creating incident")
			continue
		}
		if resolved {
			if _, err := repo.UpdateResolved(ctx, incident.ID, true); err != nil {
				logger.WithIncident(incident.ID, "seed").WithError(err).Warn("Could not mark incident resolved")
			}
		}
		created++
	}
	return created, nil
}
