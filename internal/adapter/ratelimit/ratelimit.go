// Package ratelimit throttles calls to upstream APIs with a token bucket.
package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/weather-ranking/internal/domain"
)

// ForecastSource wraps a domain.ForecastSource with rate limiting.
type ForecastSource struct {
	source  domain.ForecastSource
	limiter *rate.Limiter
}

// NewForecastSource allows rps requests per second (fractional for slower
// rates) with the given burst.
func NewForecastSource(source domain.ForecastSource, rps float64, burst int) *ForecastSource {
	return &ForecastSource{source: source, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Forecast waits for a token, then forwards to the wrapped source.
func (r *ForecastSource) Forecast(ctx context.Context, loc domain.Location) (domain.RawForecast, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return domain.RawForecast{}, &domain.NetworkError{Err: fmt.Errorf("rate limit wait canceled: %w", err)}
	}
	return r.source.Forecast(ctx, loc)
}

// Geocoder wraps a domain.Geocoder with rate limiting.
type Geocoder struct {
	geocoder domain.Geocoder
	limiter  *rate.Limiter
}

// NewGeocoder allows rps requests per second with the given burst.
func NewGeocoder(geocoder domain.Geocoder, rps float64, burst int) *Geocoder {
	return &Geocoder{geocoder: geocoder, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Geocode waits for a token, then forwards to the wrapped geocoder.
func (r *Geocoder) Geocode(ctx context.Context, address string) (domain.GeoResponse, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return domain.GeoResponse{}, &domain.NetworkError{Err: fmt.Errorf("rate limit wait canceled: %w", err)}
	}
	return r.geocoder.Geocode(ctx, address)
}
