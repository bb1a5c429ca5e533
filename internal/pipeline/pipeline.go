package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/weather-ranking/internal/domain"
	"github.com/couchcryptid/weather-ranking/internal/observability"
)

// Request lists what one run should rank. Addresses are geocoded and appended
// after Locations.
type Request struct {
	Locations []domain.Location
	Addresses []string
}

// Options tunes the stages of a Pipeline.
type Options struct {
	Rules        domain.CalcRules
	FetchWorkers int           // <= 0: one per CPU
	FetchTimeout time.Duration // 0: unbounded
}

// Pipeline orchestrates the geocode-fetch-calculate-rank-report pass.
type Pipeline struct {
	geocode *GeocodeStage
	fetch   *FetchStage
	rules   domain.CalcRules
	sinks   []domain.ReportSink
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
}

// New creates a Pipeline. A nil geocoder disables address resolution.
func New(src domain.ForecastSource, geocoder domain.Geocoder, sinks []domain.ReportSink, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	p := &Pipeline{
		fetch:   NewFetchStage(src, opts.FetchWorkers, opts.FetchTimeout, logger, metrics),
		rules:   opts.Rules,
		sinks:   sinks,
		logger:  logger,
		metrics: metrics,
	}
	if geocoder != nil {
		p.geocode = NewGeocodeStage(geocoder, 0, logger, metrics)
	}
	return p
}

// CheckReadiness returns nil once the pipeline has completed a run, or an
// error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a run yet")
	}
	return nil
}

// Run executes one pass and delivers the report to every sink. It fails
// before reporting only when the fetch batch times out or ctx is done. Sink
// failures are joined into the returned error after all sinks were tried;
// the report is returned either way.
func (p *Pipeline) Run(ctx context.Context, req Request) (domain.RunInfo, domain.ReportTable, error) {
	run := domain.NewRunInfo()
	start := time.Now()
	logger := p.logger.With("run_id", run.ID)
	logger.Info("run started", "locations", len(req.Locations), "addresses", len(req.Addresses))

	table, err := p.rank(ctx, req, logger)
	if err != nil {
		outcome := "canceled"
		if errors.Is(err, domain.ErrBatchTimeout) {
			outcome = "timeout"
		}
		p.metrics.Runs.WithLabelValues(outcome).Inc()
		logger.Error("run failed", "error", err)
		return run, domain.ReportTable{}, err
	}

	var sinkErrs []error
	for _, sink := range p.sinks {
		if err := sink.WriteReport(ctx, run, table); err != nil {
			logger.Error("report delivery failed", "sink", fmt.Sprintf("%T", sink), "error", err)
			sinkErrs = append(sinkErrs, err)
		}
	}

	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	if err := errors.Join(sinkErrs...); err != nil {
		p.metrics.Runs.WithLabelValues("sink_error").Inc()
		return run, table, fmt.Errorf("deliver report: %w", err)
	}
	p.metrics.Runs.WithLabelValues("success").Inc()
	p.ready.Store(true)
	logger.Info("run complete", "rows", len(table.Rows), "duration", time.Since(start))
	return run, table, nil
}

func (p *Pipeline) rank(ctx context.Context, req Request, logger *slog.Logger) (domain.ReportTable, error) {
	locations := req.Locations
	if len(req.Addresses) > 0 {
		if p.geocode == nil {
			logger.Warn("no geocoder configured, ignoring addresses", "addresses", len(req.Addresses))
		} else {
			resolved := timed(p, stageGeocode, func() []domain.Location {
				return p.geocode.Run(ctx, req.Addresses)
			})
			locations = append(locations[:len(locations):len(locations)], resolved...)
		}
	}
	if err := ctx.Err(); err != nil {
		return domain.ReportTable{}, err
	}

	var fetchErr error
	forecasts := timed(p, stageFetch, func() []domain.LocatedForecast {
		var out []domain.LocatedForecast
		out, fetchErr = p.fetch.Run(ctx, locations)
		return out
	})
	if fetchErr != nil {
		return domain.ReportTable{}, fetchErr
	}
	logger.Info("forecasts fetched", "requested", len(locations), "fetched", len(forecasts))

	summaries := timed(p, stageCalculate, func() []domain.LocationSummary {
		return Calculate(ctx, forecasts, p.rules, 0, logger, p.metrics)
	})
	ranked := timed(p, stageRank, func() []domain.LocationSummary {
		return RankAndLog(summaries, logger)
	})
	p.metrics.LocationsRanked.Set(float64(len(ranked)))

	table := timed(p, stageReport, func() domain.ReportTable {
		return BuildReport(ctx, ranked, 0)
	})
	// A stage interrupted by cancellation may have skipped items.
	if err := ctx.Err(); err != nil {
		return domain.ReportTable{}, err
	}
	return table, nil
}

func timed[R any](p *Pipeline, stage string, fn func() R) R {
	start := time.Now()
	defer func() { p.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds()) }()
	return fn()
}
