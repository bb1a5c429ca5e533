package pipeline_test

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/weather-ranking/internal/domain"
	"github.com/couchcryptid/weather-ranking/internal/observability"
)

// --- fakes ---

type fakeSource struct {
	forecasts map[string]domain.RawForecast
	errs      map[string]error
	delay     map[string]time.Duration

	mu       sync.Mutex
	seen     []domain.Location
	inFlight atomic.Int64
	maxSeen  atomic.Int64
}

func (f *fakeSource) Forecast(ctx context.Context, loc domain.Location) (domain.RawForecast, error) {
	f.mu.Lock()
	f.seen = append(f.seen, loc)
	f.mu.Unlock()
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}

	if d := f.delay[loc.Label()]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return domain.RawForecast{}, &domain.NetworkError{Err: ctx.Err()}
		}
	}
	if err := f.errs[loc.Label()]; err != nil {
		return domain.RawForecast{}, err
	}
	return f.forecasts[loc.Label()], nil
}

func (f *fakeSource) locations() []domain.Location {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.seen)
}

type fakeGeocoder struct {
	responses map[string]domain.GeoResponse
	errs      map[string]error
}

func (f *fakeGeocoder) Geocode(_ context.Context, address string) (domain.GeoResponse, error) {
	if err := f.errs[address]; err != nil {
		return domain.GeoResponse{}, err
	}
	return f.responses[address], nil
}

type recordingSink struct {
	mu     sync.Mutex
	err    error
	runs   []domain.RunInfo
	tables []domain.ReportTable
}

func (s *recordingSink) WriteReport(_ context.Context, run domain.RunInfo, table domain.ReportTable) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	s.tables = append(s.tables, table)
	return s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMetrics() *observability.Metrics {
	// Use unregistered collectors to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

// forecast builds a single-day forecast with the given temperature over the
// daytime window whose first comfortable hours are clear.
func forecast(date string, temp float64, comfortable int) domain.RawForecast {
	return forecastDays(map[string][2]float64{date: {temp, float64(comfortable)}})
}

func forecastDays(days map[string][2]float64) domain.RawForecast {
	var f domain.RawForecast
	for _, date := range slices.Sorted(maps.Keys(days)) {
		v := days[date]
		day := domain.ForecastDay{Date: date}
		for h := 9; h <= 19; h++ {
			cond := "rain"
			if h-9 < int(v[1]) {
				cond = "clear"
			}
			day.Hours = append(day.Hours, domain.ForecastHour{Hour: h, Temp: v[0], Condition: cond})
		}
		f.Days = append(f.Days, day)
	}
	return f
}

func named(names ...string) []domain.Location {
	out := make([]domain.Location, len(names))
	for i, n := range names {
		out[i] = domain.Location{Name: n}
	}
	return out
}
