package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/civicline/backend/internal/models"
)

// ErrNotFound is returned when no incident has the requested id.
var ErrNotFound = errors.New("incident not found")

// StorageError wraps any fault reported by the underlying store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// IncidentRepository is the persistence boundary for incidents. Each call is
// atomic on its own; nothing spans more than one record.
type IncidentRepository interface {
	// Create assigns an id, forces resolved=false and stores the incident.
	Create(ctx context.Context, incident *models.Incident) error
	// List returns matching incidents in store order.
	List(ctx context.Context, filter models.IncidentFilter) ([]models.Incident, error)
	Count(ctx context.Context, filter models.IncidentFilter) (int64, error)
	// UpdateResolved sets the resolved flag and returns the updated incident,
	// or ErrNotFound.
	UpdateResolved(ctx context.Context, id string, resolved bool) (*models.Incident, error)
	Ping(ctx context.Context) error
}
