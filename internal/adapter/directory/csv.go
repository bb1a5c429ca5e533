package directory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/weather-ranking/internal/domain"
)

// City file columns. coords holds "[lon,lat]".
const (
	colCity   = "city"
	colCoords = "coords"
)

// LoadCSV reads a city file with a "city,source,coords" header into an
// in-memory directory.
func LoadCSV(path string) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open city file: %w", err)
	}
	defer f.Close()

	locs, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read city file %s: %w", path, err)
	}
	return NewMemory(locs), nil
}

// ReadCSV parses city rows. The source column is optional and ignored.
func ReadCSV(r io.Reader) ([]domain.Location, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("missing header")
		}
		return nil, err
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	cityCol, ok := idx[colCity]
	if !ok {
		return nil, fmt.Errorf("missing %q column", colCity)
	}
	coordsCol, ok := idx[colCoords]
	if !ok {
		return nil, fmt.Errorf("missing %q column", colCoords)
	}

	var locs []domain.Location
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		name := strings.TrimSpace(rec[cityCol])
		if name == "" {
			return nil, fmt.Errorf("line %d: empty city", line)
		}
		coords, err := parseCoords(rec[coordsCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		locs = append(locs, domain.Location{Name: name}.WithCoords(coords))
	}
	return locs, nil
}

// parseCoords parses "[lon,lat]".
func parseCoords(s string) (domain.Coordinates, error) {
	lonStr, latStr, ok := strings.Cut(strings.Trim(strings.TrimSpace(s), "[]"), ",")
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("coords %q: want [lon,lat]", s)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("coords %q longitude: %w", s, err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("coords %q latitude: %w", s, err)
	}
	return domain.Coordinates{Lat: lat, Lon: lon}, nil
}
