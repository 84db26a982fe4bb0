package services

import (
	"context"
	"fmt"

	"github.com/civicline/backend/internal/logger"
	"github.com/civicline/backend/internal/models"
	"github.com/civicline/backend/internal/repository"
)

// IngestResult is what a successfully stored webhook call produced.
type IngestResult struct {
	Incident models.Incident
	Dispatch DispatchResult
}

// IngestionService turns webhook payloads into stored incidents and triggers
// the dispatch call for each one.
type IngestionService struct {
	repo     repository.IncidentRepository
	notifier DispatchNotifier
}

func NewIngestionService(repo repository.IncidentRepository, notifier DispatchNotifier) *IngestionService {
	return &IngestionService{
		repo:     repo,
		notifier: notifier,
	}
}

// Ingest stores the incident described by payload and then notifies the
// dispatch service. Only a storage failure is returned as an error; once the
// incident is stored the call succeeds whatever dispatch reports.
func (is *IngestionService) Ingest(ctx context.Context, payload models.WebhookPayload) (*IngestResult, error) {
	incident := payload.ToIncident()

	if err := is.repo.Create(ctx, &incident); err != nil {
		logger.WithError(err, "ingestion").Error("Failed to save incident")
		return nil, fmt.Errorf("failed to save incident: %w", err)
	}

	log := logger.WithIncident(incident.ID, "ingestion")
	log.WithFields(map[string]interface{}{
		"incident_type": incident.IncidentType,
		"date":          incident.Date,
		"time":          incident.Time,
	}).Info("Incident saved")

	dispatch := is.notifier.Notify(ctx, incident)
	if !dispatch.Accepted {
		// The incident is durable; a missed call is reported, not retried.
		log.WithField("reason", dispatch.Reason).Warn("Dispatch result discarded")
	}

	return &IngestResult{Incident: incident, Dispatch: dispatch}, nil
}
