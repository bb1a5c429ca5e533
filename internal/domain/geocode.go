package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// GeoResponse is the flattened part of a geocoder document: the declared
// candidate count and each candidate's "lon lat" position, in provider order.
type GeoResponse struct {
	Found     int
	Positions []string
}

type geoDoc struct {
	Response struct {
		Collection struct {
			Meta struct {
				Geocoder struct {
					Found *flexInt `json:"found" validate:"required,min=0"`
				} `json:"GeocoderResponseMetaData"`
			} `json:"metaDataProperty"`
			Members []struct {
				Object struct {
					Point struct {
						Pos string `json:"pos" validate:"required"`
					} `json:"Point"`
				} `json:"GeoObject"`
			} `json:"featureMember" validate:"dive"`
		} `json:"GeoObjectCollection"`
	} `json:"response"`
}

// ParseGeoResponse decodes a geocoder document. A missing found-count or a
// member without a position is a *FormatError.
func ParseGeoResponse(data []byte) (GeoResponse, error) {
	var doc geoDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return GeoResponse{}, &FormatError{Err: fmt.Errorf("decode geocoder response: %w", err)}
	}
	if err := validate.Struct(doc); err != nil {
		return GeoResponse{}, &FormatError{Err: fmt.Errorf("validate geocoder response: %w", err)}
	}

	c := doc.Response.Collection
	out := GeoResponse{
		Found:     int(*c.Meta.Geocoder.Found),
		Positions: make([]string, 0, len(c.Members)),
	}
	for _, m := range c.Members {
		out.Positions = append(out.Positions, m.Object.Point.Pos)
	}
	return out, nil
}

// FirstCandidate returns the coordinates of the first candidate together with
// the declared candidate count. Zero candidates is ErrNoMatch.
func (g GeoResponse) FirstCandidate() (Coordinates, int, error) {
	if g.Found == 0 {
		return Coordinates{}, 0, ErrNoMatch
	}
	if len(g.Positions) == 0 {
		return Coordinates{}, g.Found, &FormatError{Err: fmt.Errorf("found %d candidates but none listed", g.Found)}
	}
	c, err := ParsePos(g.Positions[0])
	if err != nil {
		return Coordinates{}, g.Found, err
	}
	return c, g.Found, nil
}

// ParsePos parses a geocoder position, which lists longitude first: "37.61 55.75".
func ParsePos(pos string) (Coordinates, error) {
	parts := strings.Fields(pos)
	if len(parts) != 2 {
		return Coordinates{}, &FormatError{Err: fmt.Errorf("position %q: want \"lon lat\"", pos)}
	}
	lon, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Coordinates{}, &FormatError{Err: fmt.Errorf("position %q longitude: %w", pos, err)}
	}
	lat, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Coordinates{}, &FormatError{Err: fmt.Errorf("position %q latitude: %w", pos, err)}
	}
	if err := validate.Var(lat, "latitude"); err != nil {
		return Coordinates{}, &FormatError{Err: fmt.Errorf("position %q latitude out of range", pos)}
	}
	if err := validate.Var(lon, "longitude"); err != nil {
		return Coordinates{}, &FormatError{Err: fmt.Errorf("position %q longitude out of range", pos)}
	}
	return Coordinates{Lat: lat, Lon: lon}, nil
}
