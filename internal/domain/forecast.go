package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared across goroutines; validator caches struct metadata and is safe for concurrent use.
var validate = validator.New()

// RawForecast is the part of a provider forecast document the pipeline reads.
type RawForecast struct {
	Days []ForecastDay `json:"forecasts"`
}

// ForecastDay is one calendar day of hourly forecast points.
type ForecastDay struct {
	Date  string         `json:"date"` // YYYY-MM-DD
	Hours []ForecastHour `json:"hours"`
}

// ForecastHour is a single hourly forecast point.
type ForecastHour struct {
	Hour      int     `json:"hour"`
	Temp      float64 `json:"temp"`
	Condition string  `json:"condition"`
}

// Wire types keep pointer fields so that a missing value can be told apart
// from a zero value during validation.

type forecastDoc struct {
	Forecasts []forecastDayDoc `json:"forecasts" validate:"required,unique=Date,dive"`
}

type forecastDayDoc struct {
	Date  string            `json:"date" validate:"required,datetime=2006-01-02"`
	Hours []forecastHourDoc `json:"hours" validate:"dive"`
}

type forecastHourDoc struct {
	Hour      *flexInt `json:"hour" validate:"required,min=0,max=23"`
	Temp      *float64 `json:"temp" validate:"required"`
	Condition string   `json:"condition" validate:"required"`
}

// flexInt accepts both 9 and "9". Yandex sends integers in the quoted form.
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	v, err := strconv.Atoi(strings.Trim(string(b), `"`))
	if err != nil {
		return fmt.Errorf("integer %s: %w", b, err)
	}
	*n = flexInt(v)
	return nil
}

// ParseForecast decodes and validates a provider forecast document.
// Any decoding or validation failure, including a date listed twice, is
// returned as a *FormatError.
func ParseForecast(data []byte) (RawForecast, error) {
	var doc forecastDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return RawForecast{}, &FormatError{Err: fmt.Errorf("decode forecast: %w", err)}
	}
	if err := validate.Struct(doc); err != nil {
		return RawForecast{}, &FormatError{Err: fmt.Errorf("validate forecast: %w", err)}
	}

	out := RawForecast{Days: make([]ForecastDay, 0, len(doc.Forecasts))}
	for _, d := range doc.Forecasts {
		day := ForecastDay{Date: d.Date, Hours: make([]ForecastHour, 0, len(d.Hours))}
		for _, h := range d.Hours {
			day.Hours = append(day.Hours, ForecastHour{
				Hour:      int(*h.Hour),
				Temp:      *h.Temp,
				Condition: h.Condition,
			})
		}
		out.Days = append(out.Days, day)
	}
	return out, nil
}
