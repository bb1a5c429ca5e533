package domain

import (
	"fmt"
	"strconv"
)

// Coordinates represents a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// String formats the pair as "lat,lon" with four decimals.
func (c Coordinates) String() string {
	return strconv.FormatFloat(c.Lat, 'f', 4, 64) + "," + strconv.FormatFloat(c.Lon, 'f', 4, 64)
}

// Location identifies a place to forecast. Either the name or the coordinates
// are enough to query a ForecastSource.
type Location struct {
	Name   string       `json:"name,omitempty"`
	Coords *Coordinates `json:"coords,omitempty"`
}

// NewCoordLocation builds a Location from a bare coordinate pair.
func NewCoordLocation(lat, lon float64) Location {
	return Location{Coords: &Coordinates{Lat: lat, Lon: lon}}
}

// WithCoords returns a copy of the location resolved to the given coordinates.
func (l Location) WithCoords(c Coordinates) Location {
	l.Coords = &c
	return l
}

// Label is the display name: the location name, or the coordinates when the
// location has no name.
func (l Location) Label() string {
	if l.Name != "" {
		return l.Name
	}
	if l.Coords != nil {
		return l.Coords.String()
	}
	return ""
}

// Key identifies the location in logs and metrics.
func (l Location) Key() string {
	switch {
	case l.Name != "" && l.Coords != nil:
		return fmt.Sprintf("%s (%s)", l.Name, l.Coords)
	default:
		return l.Label()
	}
}

// LocatedForecast is a raw forecast tagged with the location it was fetched for.
type LocatedForecast struct {
	Location Location
	Forecast RawForecast
}
