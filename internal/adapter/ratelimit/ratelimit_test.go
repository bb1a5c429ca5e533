package ratelimit

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-ranking/internal/domain"
)

type countingSource struct{ calls atomic.Int64 }

func (c *countingSource) Forecast(context.Context, domain.Location) (domain.RawForecast, error) {
	c.calls.Add(1)
	return domain.RawForecast{}, nil
}

type countingGeocoder struct{ calls atomic.Int64 }

func (c *countingGeocoder) Geocode(context.Context, string) (domain.GeoResponse, error) {
	c.calls.Add(1)
	return domain.GeoResponse{Found: 1}, nil
}

func TestForecastSource_ForwardsWithinBurst(t *testing.T) {
	src := &countingSource{}
	limited := NewForecastSource(src, 1, 3)

	for range 3 {
		_, err := limited.Forecast(context.Background(), domain.Location{Name: "moscow"})
		require.NoError(t, err)
	}

	assert.Equal(t, int64(3), src.calls.Load())
}

func TestForecastSource_WaitCanceled(t *testing.T) {
	src := &countingSource{}
	limited := NewForecastSource(src, 0.01, 1)
	_, err := limited.Forecast(context.Background(), domain.Location{Name: "a"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = limited.Forecast(ctx, domain.Location{Name: "b"})

	require.Error(t, err)
	assert.Equal(t, "network", domain.FailureReason(err))
	assert.Equal(t, int64(1), src.calls.Load())
}

func TestGeocoder_Throttles(t *testing.T) {
	geo := &countingGeocoder{}
	limited := NewGeocoder(geo, 50, 1)

	start := time.Now()
	for range 3 {
		resp, err := limited.Geocode(context.Background(), "Moscow")
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Found)
	}

	// Two waits of ~20ms each after the initial token.
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.Equal(t, int64(3), geo.calls.Load())
}
