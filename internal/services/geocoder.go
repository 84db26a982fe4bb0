package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/civicline/backend/internal/config"
	"github.com/civicline/backend/internal/logger"
	"github.com/civicline/backend/internal/models"
	"github.com/civicline/backend/internal/throttle"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/civicline/backend/internal/services")

// Geocoder resolves a free-text address. A nil result means the address
// could not be resolved; lookup failures are logged, never returned.
type Geocoder interface {
	Lookup(ctx context.Context, address string) *models.Coordinates
}

// geocodeProvider performs a single upstream query for an already
// normalized address. found=false with a nil error is a clean miss.
type geocodeProvider interface {
	name() string
	geocode(ctx context.Context, address string) (coords models.Coordinates, found bool, err error)
}

// GeocoderClient applies the shared lookup rules around a provider.
type GeocoderClient struct {
	provider geocodeProvider
	guard    throttle.Guard
}

func newGeocoderClient(provider geocodeProvider, guard throttle.Guard) *GeocoderClient {
	if guard == nil {
		guard = throttle.NewLocalGuard()
	}
	return &GeocoderClient{provider: provider, guard: guard}
}

// NewGeocoder builds the geocoder selected in cfg
func NewGeocoder(cfg config.GeocoderConfig, guard throttle.Guard) (*GeocoderClient, error) {
	switch cfg.Provider {
	case config.GeocoderGoogle:
		return NewGoogleGeocoder(cfg, guard)
	case config.GeocoderLocationIQ, "":
		return newGeocoderClient(newLocationIQProvider(cfg), guard), nil
	default:
		return nil, fmt.Errorf("unsupported geocoder provider %q", cfg.Provider)
	}
}

func (g *GeocoderClient) Lookup(ctx context.Context, raw string) *models.Coordinates {
	address, ok := NormalizeAddress(raw)
	if !ok {
		return nil
	}

	ctx, span := tracer.Start(ctx, "geocoder.lookup")
	defer span.End()
	span.SetAttributes(attribute.String("geocoder.provider", g.provider.name()))

	log := logger.WithComponent("geocoder").WithField("address", address)

	release, err := g.guard.Acquire(ctx)
	if err != nil {
		span.RecordError(err)
		log.WithError(err).Error("Could not acquire geocoder guard")
		return nil
	}
	defer release()

	log.Debug("Geocoding address")
	coords, found, err := g.provider.geocode(ctx, address)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.WithError(err).Error("Error geocoding address")
		return nil
	}
	if !found {
		log.Info("No geocoding result for address")
		return nil
	}
	return &coords
}

// locationIQProvider talks to the LocationIQ forward geocoding endpoint.
type locationIQProvider struct {
	baseURL string
	apiKey  string
	country string
	client  *http.Client
}

func newLocationIQProvider(cfg config.GeocoderConfig) *locationIQProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &locationIQProvider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		country: cfg.Country,
		client:  &http.Client{Timeout: timeout},
	}
}

// NewLocationIQGeocoder returns a LocationIQ backed geocoder
func NewLocationIQGeocoder(cfg config.GeocoderConfig, guard throttle.Guard) *GeocoderClient {
	return newGeocoderClient(newLocationIQProvider(cfg), guard)
}

func (p *locationIQProvider) name() string { return config.GeocoderLocationIQ }

type locationIQPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (p *locationIQProvider) geocode(ctx context.Context, address string) (models.Coordinates, bool, error) {
	query := url.Values{}
	query.Set("key", p.apiKey)
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("countrycodes", p.country)
	query.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1/search.php?"+query.Encode(), nil)
	if err != nil {
		return models.Coordinates{}, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return models.Coordinates{}, false, fmt.Errorf("failed to call geocoder: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Coordinates{}, false, fmt.Errorf("failed to read geocoder response: %w", err)
	}

	// LocationIQ answers 404 {"error":"Unable to geocode"} when nothing matches.
	if resp.StatusCode == http.StatusNotFound {
		return models.Coordinates{}, false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.Coordinates{}, false, fmt.Errorf("geocoder returned status %d: %s", resp.StatusCode, truncate(string(body), 512))
	}

	var places []locationIQPlace
	if err := json.Unmarshal(body, &places); err != nil {
		return models.Coordinates{}, false, fmt.Errorf("failed to parse geocoder response: %w", err)
	}
	if len(places) == 0 {
		return models.Coordinates{}, false, nil
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return models.Coordinates{}, false, fmt.Errorf("invalid latitude %q: %w", places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return models.Coordinates{}, false, fmt.Errorf("invalid longitude %q: %w", places[0].Lon, err)
	}
	return models.Coordinates{Lat: lat, Lon: lon}, true, nil
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
