package domain

import "context"

// ForecastSource retrieves the raw hourly forecast for one location.
type ForecastSource interface {
	Forecast(ctx context.Context, loc Location) (RawForecast, error)
}

// Geocoder resolves a free-text address into candidate positions.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (GeoResponse, error)
}

// LocationDirectory is the catalogue of known locations.
type LocationDirectory interface {
	// Locations lists every known location in catalogue order.
	Locations(ctx context.Context) ([]Location, error)

	// Lookup resolves a name to coordinates, or returns ErrLocationNotFound.
	Lookup(ctx context.Context, name string) (Coordinates, error)
}

// ReportSink receives the finished report of a run.
type ReportSink interface {
	WriteReport(ctx context.Context, run RunInfo, table ReportTable) error
}
