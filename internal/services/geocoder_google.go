package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/civicline/backend/internal/config"
	"github.com/civicline/backend/internal/models"
	"github.com/civicline/backend/internal/throttle"
	"googlemaps.github.io/maps"
)

// googleProvider geocodes through the Google Maps Geocoding API
type googleProvider struct {
	client  *maps.Client
	country string
}

func newGoogleProvider(cfg config.GeocoderConfig) (*googleProvider, error) {
	opts := []maps.ClientOption{
		maps.WithAPIKey(cfg.APIKey),
		maps.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, maps.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")))
	}

	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating Google Maps client: %w", err)
	}
	return &googleProvider{client: client, country: strings.ToUpper(cfg.Country)}, nil
}

// NewGoogleGeocoder returns a Google Maps backed geocoder
func NewGoogleGeocoder(cfg config.GeocoderConfig, guard throttle.Guard) (*GeocoderClient, error) {
	provider, err := newGoogleProvider(cfg)
	if err != nil {
		return nil, err
	}
	return newGeocoderClient(provider, guard), nil
}

func (p *googleProvider) name() string { return config.GeocoderGoogle }

func (p *googleProvider) geocode(ctx context.Context, address string) (models.Coordinates, bool, error) {
	request := &maps.GeocodingRequest{
		Address: address,
		Components: map[maps.Component]string{
			maps.ComponentCountry: p.country,
		},
	}

	results, err := p.client.Geocode(ctx, request)
	if err != nil {
		return models.Coordinates{}, false, fmt.Errorf("error requesting geocode from google: %w", err)
	}
	if len(results) == 0 {
		return models.Coordinates{}, false, nil
	}

	location := results[0].Geometry.Location
	return models.Coordinates{Lat: location.Lat, Lon: location.Lng}, true, nil
}
