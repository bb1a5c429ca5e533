package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"time"

	"github.com/couchcryptid/weather-ranking/internal/domain"
	"github.com/couchcryptid/weather-ranking/internal/observability"
)

// FetchStage retrieves forecasts for a batch of locations.
type FetchStage struct {
	source  domain.ForecastSource
	workers int
	timeout time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewFetchStage creates a FetchStage. workers <= 0 uses one worker per CPU;
// timeout == 0 disables the batch bound.
func NewFetchStage(src domain.ForecastSource, workers int, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *FetchStage {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &FetchStage{source: src, workers: workers, timeout: timeout, logger: logger, metrics: metrics}
}

// Run fetches every location concurrently and returns the successes in input
// order. A failed location is logged and left out. If the batch bound elapses
// before every fetch has returned, Run fails with ErrBatchTimeout and returns
// no results.
func (s *FetchStage) Run(ctx context.Context, locations []domain.Location) ([]domain.LocatedForecast, error) {
	if s.timeout <= 0 {
		out := runOrdered(ctx, s.workers, locations, s.fetch)
		return out, ctx.Err()
	}

	batchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan []domain.LocatedForecast, 1)
	go func() {
		done <- runOrdered(batchCtx, s.workers, locations, s.fetch)
	}()

	select {
	case out := <-done:
		if errors.Is(batchCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, domain.ErrBatchTimeout
		}
		return out, ctx.Err()
	case <-batchCtx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Error("forecast batch timed out", "locations", len(locations), "timeout", s.timeout)
		return nil, domain.ErrBatchTimeout
	}
}

func (s *FetchStage) fetch(ctx context.Context, loc domain.Location) (domain.LocatedForecast, bool) {
	start := time.Now()
	f, err := s.source.Forecast(ctx, loc)
	s.metrics.ForecastDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		reason := domain.FailureReason(err)
		s.logger.Warn("forecast fetch failed, skipping location", "location", loc.Key(), "reason", reason, "error", err)
		s.metrics.ForecastRequests.WithLabelValues("error").Inc()
		s.metrics.LocationsDropped.WithLabelValues(stageFetch, reason).Inc()
		return domain.LocatedForecast{}, false
	}
	s.metrics.ForecastRequests.WithLabelValues("success").Inc()
	return domain.LocatedForecast{Location: loc, Forecast: f}, true
}
