// Command checkapi is a smoke check against the live Yandex Weather API. It
// resolves one city from the configured city file, fetches its forecast and
// verifies the response decodes into at least one day that can be summarized.
//
// Usage:
//
//	go run ./cmd/checkapi -city MOSCOW
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/weather-ranking/internal/adapter/directory"
	"github.com/couchcryptid/weather-ranking/internal/adapter/yandex"
	"github.com/couchcryptid/weather-ranking/internal/config"
	"github.com/couchcryptid/weather-ranking/internal/domain"
)

// phase tracks pass/fail for one check.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	city := flag.String("city", "MOSCOW", "city name to look up in the city file")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(run(context.Background(), cfg, *city))
}

func run(ctx context.Context, cfg *config.Config, city string) int {
	var phases []*phase

	lookup := &phase{name: "city lookup"}
	phases = append(phases, lookup)
	dir, err := directory.LoadCSV(cfg.CitiesFile())
	if err != nil {
		lookup.errorf("%v", err)
		return report(phases)
	}
	if _, err := dir.Lookup(ctx, city); err != nil {
		lookup.errorf("%s: %v", city, err)
		return report(phases)
	}

	fetch := &phase{name: "forecast fetch"}
	phases = append(phases, fetch)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := yandex.NewWeatherClient(yandex.WeatherConfig{
		URL:            cfg.WeatherAPIURL,
		APIKey:         cfg.WeatherAPIKey,
		Language:       cfg.WeatherLanguage,
		Days:           cfg.ForecastDays,
		Timeout:        cfg.HTTPClientTimeout,
		BreakerTimeout: cfg.BreakerTimeout,
	}, dir, logger)
	raw, err := client.Forecast(ctx, domain.Location{Name: city})
	if err != nil {
		fetch.errorf("%s: %s: %v", city, domain.FailureReason(err), err)
		return report(phases)
	}
	if len(raw.Days) == 0 {
		fetch.errorf("%s: response has no forecast days", city)
	}

	summary := &phase{name: "forecast summary"}
	phases = append(phases, summary)
	s, ok := domain.Summarize(domain.LocatedForecast{Location: domain.Location{Name: city}, Forecast: raw}, cfg.CalcRules())
	if !ok {
		summary.errorf("%s: no day has hours inside the target window", city)
	} else {
		fmt.Printf("%s: %d days, avg temp %.1f, avg comfortable hours %.1f\n",
			s.Label, len(s.Days), s.AvgTemp, s.AvgComfortableHours)
	}

	return report(phases)
}

func report(phases []*phase) int {
	code := 0
	for _, p := range phases {
		if p.passed() {
			fmt.Printf("PASS  %s\n", p.name)
			continue
		}
		code = 1
		fmt.Printf("FAIL  %s\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("      %s\n", e)
		}
	}
	return code
}
