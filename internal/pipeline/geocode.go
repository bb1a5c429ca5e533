package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/weather-ranking/internal/domain"
	"github.com/couchcryptid/weather-ranking/internal/observability"
)

// GeocodeStage resolves free-text addresses into located places.
type GeocodeStage struct {
	geocoder domain.Geocoder
	workers  int
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewGeocodeStage creates a GeocodeStage. workers <= 0 selects the default pool size.
func NewGeocodeStage(g domain.Geocoder, workers int, logger *slog.Logger, metrics *observability.Metrics) *GeocodeStage {
	return &GeocodeStage{geocoder: g, workers: workers, logger: logger, metrics: metrics}
}

// Run geocodes every address concurrently. Addresses that fail or have no
// match are logged and dropped; the rest keep their input order.
func (s *GeocodeStage) Run(ctx context.Context, addresses []string) []domain.Location {
	return runOrdered(ctx, s.workers, addresses, s.resolve)
}

func (s *GeocodeStage) resolve(ctx context.Context, address string) (domain.Location, bool) {
	resp, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		return s.drop(address, err)
	}
	coords, found, err := resp.FirstCandidate()
	if err != nil {
		return s.drop(address, err)
	}
	if found > 1 {
		s.logger.Warn("address is ambiguous, using first match",
			"address", address,
			"found", found,
			"lat", coords.Lat,
			"lon", coords.Lon,
		)
	}
	s.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	return domain.Location{Name: address}.WithCoords(coords), true
}

func (s *GeocodeStage) drop(address string, err error) (domain.Location, bool) {
	reason := domain.FailureReason(err)
	outcome := "error"
	if reason == "no_match" {
		outcome = "empty"
	}
	s.logger.Warn("geocoding failed, skipping address", "address", address, "reason", reason, "error", err)
	s.metrics.GeocodeRequests.WithLabelValues(outcome).Inc()
	s.metrics.LocationsDropped.WithLabelValues(stageGeocode, reason).Inc()
	return domain.Location{}, false
}
