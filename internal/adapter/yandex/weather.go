package yandex

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/weather-ranking/internal/domain"
)

// WeatherConfig configures a WeatherClient.
type WeatherConfig struct {
	URL            string
	APIKey         string
	Language       string
	Days           int
	Timeout        time.Duration
	BreakerTimeout time.Duration
}

// WeatherClient implements domain.ForecastSource using the Yandex Weather v2
// forecast endpoint. Locations given by name only are resolved through the
// directory first.
type WeatherClient struct {
	client
	baseURL   string
	apiKey    string
	language  string
	days      int
	directory domain.LocationDirectory
}

// NewWeatherClient creates a Yandex Weather client.
func NewWeatherClient(cfg WeatherConfig, directory domain.LocationDirectory, logger *slog.Logger) *WeatherClient {
	return &WeatherClient{
		client:    newClient("yandex-weather", cfg.Timeout, cfg.BreakerTimeout, logger),
		baseURL:   cfg.URL,
		apiKey:    cfg.APIKey,
		language:  cfg.Language,
		days:      cfg.Days,
		directory: directory,
	}
}

// Forecast retrieves and validates the forecast document for loc.
func (c *WeatherClient) Forecast(ctx context.Context, loc domain.Location) (domain.RawForecast, error) {
	coords, err := c.resolve(ctx, loc)
	if err != nil {
		return domain.RawForecast{}, err
	}

	var header http.Header
	if c.apiKey != "" {
		header = http.Header{"X-Yandex-API-Key": {c.apiKey}}
	}
	body, err := c.get(ctx, c.forecastURL(coords), header)
	if err != nil {
		return domain.RawForecast{}, fmt.Errorf("forecast %s: %w", loc.Key(), err)
	}
	f, err := domain.ParseForecast(body)
	if err != nil {
		return domain.RawForecast{}, fmt.Errorf("forecast %s: %w", loc.Key(), err)
	}
	return f, nil
}

func (c *WeatherClient) resolve(ctx context.Context, loc domain.Location) (domain.Coordinates, error) {
	if loc.Coords != nil {
		return *loc.Coords, nil
	}
	if loc.Name == "" {
		return domain.Coordinates{}, fmt.Errorf("location has neither name nor coordinates: %w", domain.ErrLocationNotFound)
	}
	if c.directory == nil {
		return domain.Coordinates{}, fmt.Errorf("city %q: %w", loc.Name, domain.ErrLocationNotFound)
	}
	coords, err := c.directory.Lookup(ctx, loc.Name)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("city %q: %w", loc.Name, err)
	}
	return coords, nil
}

func (c *WeatherClient) forecastURL(coords domain.Coordinates) string {
	params := url.Values{
		"lat":   {strconv.FormatFloat(coords.Lat, 'f', -1, 64)},
		"lon":   {strconv.FormatFloat(coords.Lon, 'f', -1, 64)},
		"lang":  {c.language},
		"limit": {strconv.Itoa(c.days)},
	}
	return c.baseURL + "?" + params.Encode()
}
