package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/couchcryptid/weather-ranking/internal/domain"
)

// Location directory backends.
const (
	DirectoryCSV    = "csv"
	DirectorySQLite = "sqlite"
	DirectoryEnv    = "env"
)

// Kafka report encodings.
const (
	EncodingJSON    = "json"
	EncodingMsgpack = "msgpack"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Yandex Weather forecast API.
	WeatherAPIURL   string
	WeatherAPIKey   string
	WeatherLanguage string
	ForecastDays    int

	// Yandex Geocoder API.
	GeoAPIURL   string
	GeoAPIKey   string
	GeoLanguage string

	HTTPClientTimeout time.Duration
	RateLimitRPS      float64
	RateLimitBurst    int
	BreakerTimeout    time.Duration

	FetchWorkers      int
	FetchBatchTimeout time.Duration

	TargetHours        []int
	PleasantConditions []string

	// Location directory.
	DirectorySource string
	DataRoot        string
	Debug           bool
	SQLitePath      string
	Locations       []domain.Location

	GeocodeAddresses []string

	// Report sinks.
	ReportFile       string
	KafkaBrokers     []string
	KafkaReportTopic string
	KafkaEncoding    string

	ReportSchedule string
}

// LoadDotEnv loads a .env file from the working directory into the process
// environment. Variables already set win. A missing file is not an error.
func LoadDotEnv() error {
	err := godotenv.Load()
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	clientTimeout, err := parseDuration("HTTP_CLIENT_TIMEOUT", "10s", false)
	if err != nil {
		return nil, err
	}
	batchTimeout, err := parseDuration("FETCH_BATCH_TIMEOUT", "25s", true)
	if err != nil {
		return nil, err
	}
	breakerTimeout, err := parseDuration("BREAKER_TIMEOUT", "30s", false)
	if err != nil {
		return nil, err
	}

	forecastDays, err := parseInt("FORECAST_DAYS", "7", 1)
	if err != nil {
		return nil, err
	}
	workers, err := parseInt("FETCH_WORKERS", "0", 0)
	if err != nil {
		return nil, err
	}
	burst, err := parseInt("RATE_LIMIT_BURST", "1", 1)
	if err != nil {
		return nil, err
	}
	rps, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("RATE_LIMIT_RPS", "0"), 64)
	if err != nil || rps < 0 {
		return nil, errors.New("invalid RATE_LIMIT_RPS")
	}

	hours, err := ParseHours(sharedcfg.EnvOrDefault("FORECAST_TARGET_HOURS", "9-19"))
	if err != nil {
		return nil, fmt.Errorf("invalid FORECAST_TARGET_HOURS: %w", err)
	}

	debug, err := strconv.ParseBool(sharedcfg.EnvOrDefault("DEBUG", "false"))
	if err != nil {
		return nil, errors.New("invalid DEBUG")
	}

	locations, err := ParseLocations(os.Getenv("LOCATIONS"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOCATIONS: %w", err)
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		WeatherAPIURL:   sharedcfg.EnvOrDefault("YANDEX_WEATHER_API_URL", "https://api.weather.yandex.ru/v2/forecast"),
		WeatherAPIKey:   os.Getenv("YANDEX_WEATHER_API_KEY"),
		WeatherLanguage: sharedcfg.EnvOrDefault("YANDEX_WEATHER_API_LANGUAGE", "ru_RU"),
		ForecastDays:    forecastDays,

		GeoAPIURL:   sharedcfg.EnvOrDefault("YANDEX_GEO_API_URL", "https://geocode-maps.yandex.ru/1.x/"),
		GeoAPIKey:   os.Getenv("YANDEX_GEO_API_KEY"),
		GeoLanguage: sharedcfg.EnvOrDefault("YANDEX_GEO_API_LANGUAGE", "ru_RU"),

		HTTPClientTimeout: clientTimeout,
		RateLimitRPS:      rps,
		RateLimitBurst:    burst,
		BreakerTimeout:    breakerTimeout,

		FetchWorkers:      workers,
		FetchBatchTimeout: batchTimeout,

		TargetHours:        hours,
		PleasantConditions: splitList(sharedcfg.EnvOrDefault("PLEASANT_CONDITIONS", "clear,partly-cloudy,cloudy,overcast"), ","),

		DirectorySource: strings.ToLower(sharedcfg.EnvOrDefault("DIRECTORY_SOURCE", DirectoryCSV)),
		DataRoot:        sharedcfg.EnvOrDefault("DATA_ROOT", "./data"),
		Debug:           debug,
		SQLitePath:      sharedcfg.EnvOrDefault("SQLITE_PATH", "./data/cities.db"),
		Locations:       locations,

		GeocodeAddresses: splitList(os.Getenv("GEOCODE_ADDRESSES"), ";"),

		ReportFile:       sharedcfg.EnvOrDefault("REPORT_FILE", "forecasts.xlsx"),
		KafkaReportTopic: sharedcfg.EnvOrDefault("KAFKA_REPORT_TOPIC", "weather-reports"),
		KafkaEncoding:    strings.ToLower(sharedcfg.EnvOrDefault("KAFKA_ENCODING", EncodingJSON)),

		ReportSchedule: os.Getenv("REPORT_SCHEDULE"),
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(brokers)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DirectorySource {
	case DirectoryCSV, DirectorySQLite:
	case DirectoryEnv:
		if len(c.Locations) == 0 {
			return errors.New("LOCATIONS is required when DIRECTORY_SOURCE is env")
		}
	default:
		return fmt.Errorf("invalid DIRECTORY_SOURCE %q: want csv, sqlite or env", c.DirectorySource)
	}
	switch c.KafkaEncoding {
	case EncodingJSON, EncodingMsgpack:
	default:
		return fmt.Errorf("invalid KAFKA_ENCODING %q: want json or msgpack", c.KafkaEncoding)
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaReportTopic == "" {
		return errors.New("KAFKA_REPORT_TOPIC is required when KAFKA_BROKERS is set")
	}
	if len(c.PleasantConditions) == 0 {
		return errors.New("PLEASANT_CONDITIONS must not be empty")
	}
	if len(c.GeocodeAddresses) > 0 && c.GeoAPIKey == "" {
		return errors.New("YANDEX_GEO_API_KEY is required when GEOCODE_ADDRESSES is set")
	}
	if c.ReportSchedule != "" {
		if _, err := cron.ParseStandard(c.ReportSchedule); err != nil {
			return fmt.Errorf("invalid REPORT_SCHEDULE: %w", err)
		}
	}
	return nil
}

// CitiesFile is the CSV location directory under DATA_ROOT. DEBUG selects the
// short debug list.
func (c *Config) CitiesFile() string {
	name := "cities_data.csv"
	if c.Debug {
		name = "cities_data_debug.csv"
	}
	return filepath.Join(c.DataRoot, name)
}

// CalcRules returns the comfort rules for the configured window and conditions.
func (c *Config) CalcRules() domain.CalcRules {
	return domain.NewCalcRules(c.TargetHours, c.PleasantConditions)
}

// ParseHours parses a comma-separated list of hours and inclusive ranges,
// e.g. "9-19" or "6,7,12-14". Hours must be within 0–23.
func ParseHours(s string) ([]int, error) {
	var out []int
	seen := make(map[int]bool)
	for _, part := range splitList(s, ",") {
		from, to := part, part
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			from, to = lo, hi
		}
		a, err := parseHour(from)
		if err != nil {
			return nil, err
		}
		b, err := parseHour(to)
		if err != nil {
			return nil, err
		}
		if b < a {
			return nil, fmt.Errorf("range %q is reversed", part)
		}
		for _, h := range domain.HourRange(a, b) {
			if !seen[h] {
				seen[h] = true
				out = append(out, h)
			}
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no hours")
	}
	return out, nil
}

func parseHour(s string) (int, error) {
	h, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("hour %q out of range 0-23", s)
	}
	return h, nil
}

// ParseLocations parses "name=lat,lon" entries separated by semicolons.
func ParseLocations(s string) ([]domain.Location, error) {
	var out []domain.Location
	for _, entry := range splitList(s, ";") {
		name, coords, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("entry %q: want name=lat,lon", entry)
		}
		latStr, lonStr, ok := strings.Cut(coords, ",")
		if !ok {
			return nil, fmt.Errorf("entry %q: want name=lat,lon", entry)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
		if err != nil {
			return nil, fmt.Errorf("entry %q latitude: %w", entry, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
		if err != nil {
			return nil, fmt.Errorf("entry %q longitude: %w", entry, err)
		}
		loc := domain.Location{Name: strings.TrimSpace(name)}.WithCoords(domain.Coordinates{Lat: lat, Lon: lon})
		out = append(out, loc)
	}
	return out, nil
}

func parseDuration(key, def string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key, def string, minValue int) (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault(key, def))
	if err != nil || n < minValue {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
