package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weather_rank"

// Metrics holds the Prometheus counters, histograms, and gauges for the ranking pipeline.
type Metrics struct {
	Runs            *prometheus.CounterVec // labels: outcome={success,timeout,sink_error,canceled}
	RunDuration     prometheus.Histogram
	LocationsRanked prometheus.Gauge

	// Stage metrics.
	LocationsDropped *prometheus.CounterVec   // labels: stage={geocode,fetch,calculate}, reason
	StageDuration    *prometheus.HistogramVec // labels: stage

	// Upstream API metrics.
	ForecastRequests *prometheus.CounterVec // labels: outcome={success,error}
	GeocodeRequests  *prometheus.CounterVec // labels: outcome={success,error,empty}
	ForecastDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete run from geocoding to report delivery.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 60},
		}),
		LocationsRanked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "locations_ranked",
			Help:      "Number of locations in the most recent ranking.",
		}),
		LocationsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locations_dropped_total",
			Help:      "Locations dropped from a run by stage and reason.",
		}, []string{"stage", "reason"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 25},
		}, []string{"stage"}),
		ForecastRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_requests_total",
			Help:      "Forecast retrievals by outcome.",
		}, []string{"outcome"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding requests by outcome.",
		}, []string{"outcome"}),
		ForecastDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "forecast_request_duration_seconds",
			Help:      "Duration of a single forecast retrieval.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}

	prometheus.MustRegister(
		m.Runs,
		m.RunDuration,
		m.LocationsRanked,
		m.LocationsDropped,
		m.StageDuration,
		m.ForecastRequests,
		m.GeocodeRequests,
		m.ForecastDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		Runs:             prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "runs_total"}, []string{"outcome"}),
		RunDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "run_duration_seconds"}),
		LocationsRanked:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "locations_ranked"}),
		LocationsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "locations_dropped_total"}, []string{"stage", "reason"}),
		StageDuration:    prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "stage_duration_seconds"}, []string{"stage"}),
		ForecastRequests: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "forecast_requests_total"}, []string{"outcome"}),
		GeocodeRequests:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "geocode_requests_total"}, []string{"outcome"}),
		ForecastDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "forecast_request_duration_seconds"}),
	}
}
