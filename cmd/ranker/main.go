// Command ranker fetches forecasts for every configured city, ranks the cities
// by how pleasant the coming days look and delivers the report to the
// configured sinks. With REPORT_SCHEDULE set it stays up, serving the HTTP
// surface, runs once at start and then on schedule; otherwise it runs once
// and exits.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/weather-ranking/internal/adapter/directory"
	"github.com/couchcryptid/weather-ranking/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/weather-ranking/internal/adapter/kafka"
	"github.com/couchcryptid/weather-ranking/internal/adapter/ratelimit"
	"github.com/couchcryptid/weather-ranking/internal/adapter/spreadsheet"
	"github.com/couchcryptid/weather-ranking/internal/adapter/yandex"
	"github.com/couchcryptid/weather-ranking/internal/config"
	"github.com/couchcryptid/weather-ranking/internal/domain"
	"github.com/couchcryptid/weather-ranking/internal/observability"
	"github.com/couchcryptid/weather-ranking/internal/pipeline"
	"github.com/couchcryptid/weather-ranking/internal/scheduler"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	os.Exit(run(cfg))
}

func run(cfg *config.Config) int {

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dir, closeDir, err := openDirectory(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open location directory", "error", err)
		return 1
	}
	defer closeDir()

	var source domain.ForecastSource = yandex.NewWeatherClient(yandex.WeatherConfig{
		URL:            cfg.WeatherAPIURL,
		APIKey:         cfg.WeatherAPIKey,
		Language:       cfg.WeatherLanguage,
		Days:           cfg.ForecastDays,
		Timeout:        cfg.HTTPClientTimeout,
		BreakerTimeout: cfg.BreakerTimeout,
	}, dir, logger)

	var geocoder domain.Geocoder
	if cfg.GeoAPIKey != "" {
		geocoder = yandex.NewGeoClient(yandex.GeoConfig{
			URL:            cfg.GeoAPIURL,
			APIKey:         cfg.GeoAPIKey,
			Language:       cfg.GeoLanguage,
			Timeout:        cfg.HTTPClientTimeout,
			BreakerTimeout: cfg.BreakerTimeout,
		}, logger)
		logger.Info("yandex geocoding enabled", "addresses", len(cfg.GeocodeAddresses))
	}

	if cfg.RateLimitRPS > 0 {
		source = ratelimit.NewForecastSource(source, cfg.RateLimitRPS, cfg.RateLimitBurst)
		if geocoder != nil {
			geocoder = ratelimit.NewGeocoder(geocoder, cfg.RateLimitRPS, cfg.RateLimitBurst)
		}
		logger.Info("provider rate limit enabled", "rps", cfg.RateLimitRPS, "burst", cfg.RateLimitBurst)
	}

	var sinks []domain.ReportSink
	if cfg.ReportFile != "" {
		sinks = append(sinks, spreadsheet.NewFileSink(cfg.ReportFile, logger))
	}
	var writer *kafkaadapter.Writer
	if len(cfg.KafkaBrokers) > 0 {
		writer = kafkaadapter.NewWriter(cfg, logger)
		sinks = append(sinks, writer)
	}

	p := pipeline.New(source, geocoder, sinks, pipeline.Options{
		Rules:        cfg.CalcRules(),
		FetchWorkers: cfg.FetchWorkers,
		FetchTimeout: cfg.FetchBatchTimeout,
	}, logger, metrics)
	job := pipeline.NewJob(p, dir, cfg.GeocodeAddresses)

	var code int
	if cfg.ReportSchedule == "" {
		code = runOnce(ctx, job, logger)
	} else {
		code = serve(ctx, cfg, job, logger)
	}

	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	logger.Info("shutdown complete")
	return code
}

func runOnce(ctx context.Context, job *pipeline.Job, logger *slog.Logger) int {
	run, table, err := job.RunReport(ctx)
	if err != nil {
		logger.Error("run failed", "run_id", run.ID, "error", err)
		return 1
	}
	logger.Info("run completed", "run_id", run.ID, "locations", len(table.Rows)/2)
	return 0
}

func serve(ctx context.Context, cfg *config.Config, job *pipeline.Job, logger *slog.Logger) int {
	sched, err := scheduler.New(cfg.ReportSchedule, job, logger)
	if err != nil {
		logger.Error("failed to create scheduler", "error", err)
		return 1
	}
	srv := httpadapter.NewServer(cfg.HTTPAddr, job, job, cfg.FetchBatchTimeout, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()
	sched.Start()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		logger.Error("scheduler shutdown error", "error", err)
	}
	return 0
}

// openDirectory builds the location directory selected by DIRECTORY_SOURCE.
func openDirectory(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.LocationDirectory, func(), error) {
	noop := func() {}
	switch cfg.DirectorySource {
	case config.DirectoryEnv:
		logger.Info("using location list from environment", "locations", len(cfg.Locations))
		return directory.NewMemory(cfg.Locations), noop, nil
	case config.DirectorySQLite:
		store, err := directory.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		if err := seedSQLite(ctx, store, cfg.CitiesFile(), logger); err != nil {
			_ = store.Close()
			return nil, noop, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Error("sqlite directory close error", "error", err)
			}
		}, nil
	default:
		mem, err := directory.LoadCSV(cfg.CitiesFile())
		if err != nil {
			return nil, noop, err
		}
		logger.Info("loaded city file", "path", cfg.CitiesFile())
		return mem, noop, nil
	}
}

// seedSQLite fills an empty store from the city file when that file exists.
func seedSQLite(ctx context.Context, store *directory.SQLite, citiesFile string, logger *slog.Logger) error {
	seed, err := directory.LoadCSV(citiesFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed sqlite directory: %w", err)
	}
	n, err := store.SeedIfEmpty(ctx, seed)
	if err != nil {
		return fmt.Errorf("seed sqlite directory: %w", err)
	}
	if n > 0 {
		logger.Info("seeded sqlite directory", "path", citiesFile, "cities", n)
	}
	return nil
}
