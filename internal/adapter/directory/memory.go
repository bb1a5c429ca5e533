// Package directory provides LocationDirectory implementations backed by a
// CSV file, a SQLite database, or a fixed in-memory list.
package directory

import (
	"context"
	"slices"
	"strings"

	"github.com/couchcryptid/weather-ranking/internal/domain"
)

// Memory is a fixed, read-only directory.
type Memory struct {
	locations []domain.Location
}

// NewMemory creates a directory over a copy of locs.
func NewMemory(locs []domain.Location) *Memory {
	return &Memory{locations: slices.Clone(locs)}
}

// Locations returns the catalogue in insertion order.
func (m *Memory) Locations(_ context.Context) ([]domain.Location, error) {
	return slices.Clone(m.locations), nil
}

// Lookup finds a location by case-insensitive name.
func (m *Memory) Lookup(_ context.Context, name string) (domain.Coordinates, error) {
	return lookup(m.locations, name)
}

func lookup(locs []domain.Location, name string) (domain.Coordinates, error) {
	for _, l := range locs {
		if l.Coords != nil && strings.EqualFold(l.Name, name) {
			return *l.Coords, nil
		}
	}
	return domain.Coordinates{}, domain.ErrLocationNotFound
}
