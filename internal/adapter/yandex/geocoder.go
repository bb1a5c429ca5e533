package yandex

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/couchcryptid/weather-ranking/internal/domain"
)

// GeoConfig configures a GeoClient.
type GeoConfig struct {
	URL            string
	APIKey         string
	Language       string
	Timeout        time.Duration
	BreakerTimeout time.Duration
}

// GeoClient implements domain.Geocoder using the Yandex Geocoder API.
type GeoClient struct {
	client
	baseURL  string
	apiKey   string
	language string
}

// NewGeoClient creates a Yandex Geocoder client.
func NewGeoClient(cfg GeoConfig, logger *slog.Logger) *GeoClient {
	return &GeoClient{
		client:   newClient("yandex-geocoder", cfg.Timeout, cfg.BreakerTimeout, logger),
		baseURL:  cfg.URL,
		apiKey:   cfg.APIKey,
		language: cfg.Language,
	}
}

// Geocode looks up candidate positions for a free-text address.
func (c *GeoClient) Geocode(ctx context.Context, address string) (domain.GeoResponse, error) {
	params := url.Values{
		"apikey":  {c.apiKey},
		"geocode": {address},
		"format":  {"json"},
		"lang":    {c.language},
	}
	body, err := c.get(ctx, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.GeoResponse{}, fmt.Errorf("geocode %q: %w", address, err)
	}
	resp, err := domain.ParseGeoResponse(body)
	if err != nil {
		return domain.GeoResponse{}, fmt.Errorf("geocode %q: %w", address, err)
	}
	c.logger.Debug("address geocoded", "address", address, "found", resp.Found)
	return resp, nil
}
