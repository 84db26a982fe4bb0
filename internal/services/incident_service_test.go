package services

import (
	"context"
	"errors"
	"testing"

	"github.com/civicline/backend/internal/models"
	"github.com/civicline/backend/internal/repository"
)

func TestStats(t *testing.T) {
	repo := &memoryRepo{}
	ctx := context.Background()
	for _, kind := range []string{"Issue", "Issue", "Issue", "Suggestion", "Suggestion", "Emergency", "Compliment"} {
		incident := models.Incident{IncidentType: kind}
		if err := repo.Create(ctx, &incident); err != nil {
			t.Fatalf("failed to seed: %v", err)
		}
	}
	repo.incidents[0].Resolved = true
	repo.incidents[3].Resolved = true
	repo.incidents[5].Resolved = true

	stats, err := NewIncidentService(repo).Stats(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := models.IncidentStats{
		TotalIssues:       3,
		SolvedIssues:      1,
		TotalSuggestions:  2,
		SolvedSuggestions: 1,
		EmergencyReported: 1,
	}
	if *stats != expected {
		t.Errorf("Expected %+v, got %+v", expected, *stats)
	}
	if stats.SolvedIssues > stats.TotalIssues || stats.SolvedSuggestions > stats.TotalSuggestions {
		t.Errorf("Solved counts exceed totals: %+v", *stats)
	}
}

func TestStatsStorageFailure(t *testing.T) {
	_, err := NewIncidentService(&memoryRepo{failWith: errStoreDown}).Stats(context.Background())
	if err == nil {
		t.Fatal("Expected an error")
	}
}

func TestSetResolved(t *testing.T) {
	repo := &memoryRepo{}
	seedRepo(t, repo, "A")
	svc := NewIncidentService(repo)

	updated, err := svc.SetResolved(context.Background(), repo.incidents[0].ID, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.Resolved || !repo.incidents[0].Resolved {
		t.Error("Expected incident to be resolved")
	}

	_, err = svc.SetResolved(context.Background(), "missing", true)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestListAll(t *testing.T) {
	repo := &memoryRepo{}
	seedRepo(t, repo, "A", "B")
	repo.incidents[0].Resolved = true

	incidents, err := NewIncidentService(repo).ListAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(incidents) != 2 {
		t.Errorf("Expected resolved and unresolved incidents, got %d", len(incidents))
	}
}
