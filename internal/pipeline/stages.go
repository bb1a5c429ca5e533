package pipeline

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/couchcryptid/weather-ranking/internal/domain"
	"github.com/couchcryptid/weather-ranking/internal/observability"
)

const (
	stageGeocode   = "geocode"
	stageFetch     = "fetch"
	stageCalculate = "calculate"
	stageRank      = "rank"
	stageReport    = "report"
)

// Calculate reduces each forecast to a LocationSummary in parallel. Locations
// with no qualifying day are left out. Output order follows input order.
func Calculate(ctx context.Context, forecasts []domain.LocatedForecast, rules domain.CalcRules, workers int, logger *slog.Logger, metrics *observability.Metrics) []domain.LocationSummary {
	return runOrdered(ctx, workers, forecasts, func(_ context.Context, lf domain.LocatedForecast) (domain.LocationSummary, bool) {
		s, ok := domain.Summarize(lf, rules)
		if !ok {
			logger.Debug("no forecast hours in target window, skipping location", "location", lf.Location.Key(), "days", len(lf.Forecast.Days))
			metrics.LocationsDropped.WithLabelValues(stageCalculate, "no_days").Inc()
		}
		return s, ok
	})
}

// RankAndLog ranks the summaries and logs one line per location in rank order.
func RankAndLog(summaries []domain.LocationSummary, logger *slog.Logger) []domain.LocationSummary {
	ranked := domain.Rank(summaries)
	for _, s := range ranked {
		logger.Info("location ranked",
			"rank", s.Rank,
			"label", s.Label,
			"avg_temp", strconv.FormatFloat(s.AvgTemp, 'f', 2, 64),
			"avg_comfortable_hours", strconv.FormatFloat(s.AvgComfortableHours, 'f', 2, 64),
		)
	}
	return ranked
}

// BuildReport materializes the report of ranked summaries. Row pairs are built
// in parallel and assembled in rank order.
func BuildReport(ctx context.Context, ranked []domain.LocationSummary, workers int) domain.ReportTable {
	dates := domain.ReportDates(ranked)
	pairs := runOrdered(ctx, workers, ranked, func(_ context.Context, s domain.LocationSummary) ([2][]string, bool) {
		return domain.LocationRows(s, dates), true
	})

	rows := make([][]string, 0, 2*len(pairs))
	for _, p := range pairs {
		rows = append(rows, p[0], p[1])
	}
	return domain.ReportTable{Header: domain.ReportHeader(dates), Rows: rows}
}
