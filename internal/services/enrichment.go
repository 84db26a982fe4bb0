package services

import (
	"context"
	"fmt"
	"time"

	"github.com/civicline/backend/internal/logger"
	"github.com/civicline/backend/internal/models"
	"github.com/civicline/backend/internal/repository"
	"go.opentelemetry.io/otel/attribute"
)

// Sleeper waits for d. It is swapped out in tests.
type Sleeper func(ctx context.Context, d time.Duration)

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// EnrichmentService attaches coordinates to stored incidents on read.
// Lookups within one call run strictly one after another with a fixed pause
// between consecutive lookups, to stay inside the geocoder's request quota.
type EnrichmentService struct {
	repo     repository.IncidentRepository
	geocoder Geocoder
	pause    time.Duration
	sleep    Sleeper
}

type EnrichmentOption func(*EnrichmentService)

// WithSleeper replaces the pause implementation
func WithSleeper(s Sleeper) EnrichmentOption {
	return func(es *EnrichmentService) { es.sleep = s }
}

func NewEnrichmentService(repo repository.IncidentRepository, geocoder Geocoder, pause time.Duration, opts ...EnrichmentOption) *EnrichmentService {
	es := &EnrichmentService{
		repo:     repo,
		geocoder: geocoder,
		pause:    pause,
		sleep:    sleep,
	}
	for _, opt := range opts {
		opt(es)
	}
	return es
}

// Enrich lists incidents, unresolved ones only when asked, and geocodes each
// location in list order. The run is detached from ctx cancellation: once
// started it finishes every record even if the client goes away.
func (es *EnrichmentService) Enrich(ctx context.Context, unresolvedOnly bool) ([]models.EnrichedIncident, error) {
	filter := models.IncidentFilter{}
	if unresolvedOnly {
		filter = models.Unresolved()
	}

	incidents, err := es.repo.List(ctx, filter)
	if err != nil {
		logger.WithError(err, "enrichment").Error("Failed to list incidents")
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}

	runCtx, span := tracer.Start(context.WithoutCancel(ctx), "enrichment.run")
	defer span.End()
	span.SetAttributes(attribute.Int("incidents.count", len(incidents)))

	started := time.Now()
	enriched := make([]models.EnrichedIncident, 0, len(incidents))
	resolved := 0
	for i, incident := range incidents {
		if i > 0 {
			es.sleep(runCtx, es.pause)
		}
		coords := es.geocoder.Lookup(runCtx, incident.Location)
		if coords != nil {
			resolved++
		}
		enriched = append(enriched, models.EnrichedIncident{
			Incident:    incident,
			Coordinates: coords,
		})
	}

	logger.WithComponent("enrichment").WithFields(map[string]interface{}{
		"incidents":   len(incidents),
		"geocoded":    resolved,
		"duration_ms": time.Since(started).Milliseconds(),
	}).Info("Enriched incidents")

	return enriched, nil
}
