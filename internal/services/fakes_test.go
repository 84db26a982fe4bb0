package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/civicline/backend/internal/models"
	"github.com/civicline/backend/internal/repository"
)

var errStoreDown = errors.New("store unreachable")

// memoryRepo is an in-memory IncidentRepository that keeps insertion order.
type memoryRepo struct {
	mu        sync.Mutex
	incidents []models.Incident
	nextID    int
	failWith  error
}

func (r *memoryRepo) Create(_ context.Context, incident *models.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return &repository.StorageError{Op: "create", Err: r.failWith}
	}
	r.nextID++
	incident.ID = fmt.Sprintf("id-%d", r.nextID)
	incident.Resolved = false
	r.incidents = append(r.incidents, *incident)
	return nil
}

func matches(incident models.Incident, filter models.IncidentFilter) bool {
	if filter.IncidentType != nil && incident.IncidentType != *filter.IncidentType {
		return false
	}
	if filter.Resolved != nil && incident.Resolved != *filter.Resolved {
		return false
	}
	return true
}

func (r *memoryRepo) List(_ context.Context, filter models.IncidentFilter) ([]models.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, &repository.StorageError{Op: "list", Err: r.failWith}
	}
	out := make([]models.Incident, 0)
	for _, incident := range r.incidents {
		if matches(incident, filter) {
			out = append(out, incident)
		}
	}
	return out, nil
}

func (r *memoryRepo) Count(ctx context.Context, filter models.IncidentFilter) (int64, error) {
	list, err := r.List(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (r *memoryRepo) UpdateResolved(_ context.Context, id string, resolved bool) (*models.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, &repository.StorageError{Op: "update resolved", Err: r.failWith}
	}
	for i := range r.incidents {
		if r.incidents[i].ID == id {
			r.incidents[i].Resolved = resolved
			updated := r.incidents[i]
			return &updated, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memoryRepo) Ping(context.Context) error {
	return r.failWith
}

// scriptedGeocoder answers from a fixed table and records every call in order.
type scriptedGeocoder struct {
	mu      sync.Mutex
	answers map[string]*models.Coordinates
	calls   []string
	events  *[]string
}

func (g *scriptedGeocoder) Lookup(_ context.Context, address string) *models.Coordinates {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, address)
	if g.events != nil {
		*g.events = append(*g.events, "lookup:"+address)
	}
	return g.answers[address]
}

// recordingNotifier returns a fixed result and remembers what it was sent.
type recordingNotifier struct {
	result   DispatchResult
	received []models.Incident
}

func (n *recordingNotifier) Notify(_ context.Context, incident models.Incident) DispatchResult {
	n.received = append(n.received, incident)
	return n.result
}
