package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/civicline/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestRepo opens an in-memory SQLite database and migrates incidents
func setupTestRepo(t *testing.T) (*GormRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("could not open test database: %v", err)
	}
	// every pooled connection to :memory: would get its own empty database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("could not get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	repo := NewGormRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	return repo, db
}

func seed(t *testing.T, repo *GormRepository, incidents ...models.Incident) []models.Incident {
	t.Helper()
	saved := make([]models.Incident, 0, len(incidents))
	for _, incident := range incidents {
		incident := incident
		if err := repo.Create(context.Background(), &incident); err != nil {
			t.Fatalf("failed to seed incident: %v", err)
		}
		saved = append(saved, incident)
	}
	return saved
}

func TestCreateAssignsIDAndUnresolved(t *testing.T) {
	repo, db := setupTestRepo(t)

	incident := models.Incident{
		Date:         "2024-01-05",
		Time:         "14:30",
		IncidentType: "Issue",
		Location:     "MG Road",
		Resolved:     true,
	}
	if err := repo.Create(context.Background(), &incident); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if incident.ID == "" {
		t.Fatal("expected an id to be assigned")
	}
	if incident.Resolved {
		t.Error("expected create to force resolved=false")
	}

	var stored models.Incident
	if err := db.First(&stored, "id = ?", incident.ID).Error; err != nil {
		t.Fatalf("failed to load stored incident: %v", err)
	}
	if stored != incident {
		t.Errorf("stored incident differs: got %+v, want %+v", stored, incident)
	}
}

func TestCreateAssignsUniqueIDs(t *testing.T) {
	repo, _ := setupTestRepo(t)
	saved := seed(t, repo, models.Incident{}, models.Incident{})
	if saved[0].ID == saved[1].ID {
		t.Errorf("expected unique ids, both were %s", saved[0].ID)
	}
}

func TestListAndCountFilters(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	saved := seed(t, repo,
		models.Incident{IncidentType: "Issue"},
		models.Incident{IncidentType: "Issue"},
		models.Incident{IncidentType: "Suggestion"},
		models.Incident{IncidentType: "Emergency"},
	)
	if _, err := repo.UpdateResolved(ctx, saved[0].ID, true); err != nil {
		t.Fatalf("failed to resolve: %v", err)
	}

	all, err := repo.List(ctx, models.IncidentFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("Expected 4 incidents, got %d", len(all))
	}

	unresolved, err := repo.List(ctx, models.Unresolved())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(unresolved) != 3 {
		t.Errorf("Expected 3 unresolved incidents, got %d", len(unresolved))
	}
	for _, incident := range unresolved {
		if incident.ID == saved[0].ID {
			t.Error("resolved incident returned by unresolved filter")
		}
	}

	solved := true
	tests := []struct {
		filter   models.IncidentFilter
		expected int64
	}{
		{models.IncidentFilter{}, 4},
		{models.ByType(models.IncidentTypeIssue, nil), 2},
		{models.ByType(models.IncidentTypeIssue, &solved), 1},
		{models.ByType(models.IncidentTypeSuggestion, &solved), 0},
		{models.ByType(models.IncidentTypeEmergency, nil), 1},
	}
	for _, test := range tests {
		count, err := repo.Count(ctx, test.filter)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if count != test.expected {
			t.Errorf("For filter %v, expected %d, got %d", test.filter.Fields(), test.expected, count)
		}
	}
}

func TestListEmptyStoreReturnsEmptySlice(t *testing.T) {
	repo, _ := setupTestRepo(t)
	incidents, err := repo.List(context.Background(), models.IncidentFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if incidents == nil || len(incidents) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", incidents)
	}
}

func TestUpdateResolved(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()
	saved := seed(t, repo, models.Incident{IncidentType: "Issue", Location: "Park Street"})

	updated, err := repo.UpdateResolved(ctx, saved[0].ID, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.Resolved {
		t.Error("Expected incident to be resolved")
	}
	if updated.Location != "Park Street" {
		t.Errorf("Expected other fields untouched, got location %q", updated.Location)
	}

	reopened, err := repo.UpdateResolved(ctx, saved[0].ID, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reopened.Resolved {
		t.Error("Expected incident to be unresolved again")
	}
}

func TestUpdateResolvedUnknownID(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()
	seed(t, repo, models.Incident{IncidentType: "Issue"})

	for _, id := range []string{"6a1f0a8e-6f43-4c55-9e0b-0b3f3c0a9d11", "not-a-uuid", ""} {
		_, err := repo.UpdateResolved(ctx, id, true)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("For id %q, expected ErrNotFound, got %v", id, err)
		}
	}

	count, err := repo.Count(ctx, models.IncidentFilter{Resolved: boolPtr(true)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected no mutation, got %d resolved incidents", count)
	}
}

func TestStorageErrorWrapsStoreFault(t *testing.T) {
	repo, db := setupTestRepo(t)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sqlDB.Close()

	_, err = repo.List(context.Background(), models.IncidentFilter{})
	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("Expected *StorageError, got %v", err)
	}
	if storageErr.Op != "list" {
		t.Errorf("Expected op 'list', got %q", storageErr.Op)
	}

	if err := repo.Ping(context.Background()); err == nil {
		t.Error("Expected ping to fail on a closed database")
	}
}

func boolPtr(b bool) *bool { return &b }
