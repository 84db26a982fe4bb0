package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/civicline/backend/internal/logger"
	"github.com/civicline/backend/internal/models"
	"github.com/civicline/backend/internal/repository"
)

// IncidentService covers the thin dashboard operations: listing, stats and
// resolving incidents.
type IncidentService struct {
	repo repository.IncidentRepository
}

func NewIncidentService(repo repository.IncidentRepository) *IncidentService {
	return &IncidentService{repo: repo}
}

// ListAll returns every incident without enrichment
func (s *IncidentService) ListAll(ctx context.Context) ([]models.Incident, error) {
	incidents, err := s.repo.List(ctx, models.IncidentFilter{})
	if err != nil {
		logger.WithError(err, "incident_service").Error("Failed to list incidents")
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	return incidents, nil
}

type statCount struct {
	filter models.IncidentFilter
	dest   *int64
}

// Stats counts issues, suggestions and emergencies
func (s *IncidentService) Stats(ctx context.Context) (*models.IncidentStats, error) {
	solved := true
	stats := &models.IncidentStats{}
	counts := []statCount{
		{models.ByType(models.IncidentTypeIssue, nil), &stats.TotalIssues},
		{models.ByType(models.IncidentTypeIssue, &solved), &stats.SolvedIssues},
		{models.ByType(models.IncidentTypeSuggestion, nil), &stats.TotalSuggestions},
		{models.ByType(models.IncidentTypeSuggestion, &solved), &stats.SolvedSuggestions},
		{models.ByType(models.IncidentTypeEmergency, nil), &stats.EmergencyReported},
	}

	for _, c := range counts {
		n, err := s.repo.Count(ctx, c.filter)
		if err != nil {
			logger.WithError(err, "incident_service").Error("Failed to count incidents")
			return nil, fmt.Errorf("failed to count incidents: %w", err)
		}
		*c.dest = n
	}
	return stats, nil
}

// SetResolved updates the resolved flag. repository.ErrNotFound is passed
// through unwrapped so callers can map it to 404.
func (s *IncidentService) SetResolved(ctx context.Context, id string, resolved bool) (*models.Incident, error) {
	incident, err := s.repo.UpdateResolved(ctx, id, resolved)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		logger.WithError(err, "incident_service").Error("Failed to update incident")
		return nil, fmt.Errorf("failed to update incident: %w", err)
	}

	logger.WithIncident(id, "incident_service").WithField("resolved", resolved).Info("Incident resolution updated")
	return incident, nil
}
