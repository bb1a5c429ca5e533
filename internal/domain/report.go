package domain

import (
	"slices"
	"strconv"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Fixed report labels.
const (
	HeaderLabel        = "City/day"
	HeaderAverage      = "Average"
	HeaderRank         = "Rank"
	RowTemperature     = "temperature"
	RowComfortableHour = "comfortable hours"
)

// ReportTable is the materialized report: one header row, then two body rows
// per ranked location.
type ReportTable struct {
	Header []string   `json:"header" msgpack:"header"`
	Rows   [][]string `json:"rows" msgpack:"rows"`
}

// ReportDates returns the sorted union of the dates of all summaries.
func ReportDates(summaries []LocationSummary) []string {
	seen := make(map[string]struct{})
	var dates []string
	for _, s := range summaries {
		for _, d := range s.Days {
			if _, ok := seen[d.Date]; ok {
				continue
			}
			seen[d.Date] = struct{}{}
			dates = append(dates, d.Date)
		}
	}
	// ISO dates sort lexically.
	slices.Sort(dates)
	return dates
}

// ReportHeader builds the header row for the given date columns.
func ReportHeader(dates []string) []string {
	h := make([]string, 0, len(dates)+4)
	h = append(h, HeaderLabel, "")
	for _, d := range dates {
		h = append(h, displayDate(d))
	}
	return append(h, HeaderAverage, HeaderRank)
}

// displayDate renders an ISO date as day-month. Unparseable dates pass through.
func displayDate(iso string) string {
	t, err := time.Parse(time.DateOnly, iso)
	if err != nil {
		return iso
	}
	return t.Format("02-01")
}

// LocationRows builds the temperature row and the comfortable-hours row of a
// ranked summary. A date the location has no metrics for is an empty cell.
func LocationRows(s LocationSummary, dates []string) [2][]string {
	temp := make([]string, 0, len(dates)+4)
	comfort := make([]string, 0, len(dates)+4)

	// cases.Caser is stateful, so each call gets its own.
	temp = append(temp, cases.Title(language.Und).String(s.Label), RowTemperature)
	comfort = append(comfort, "", RowComfortableHour)

	for _, date := range dates {
		d, ok := s.Day(date)
		if !ok {
			temp = append(temp, "")
			comfort = append(comfort, "")
			continue
		}
		temp = append(temp, oneDecimal(d.AvgTemp))
		comfort = append(comfort, oneDecimal(float64(d.ComfortableHours)))
	}

	temp = append(temp, oneDecimal(s.AvgTemp), strconv.Itoa(s.Rank))
	comfort = append(comfort, oneDecimal(s.AvgComfortableHours), "")
	return [2][]string{temp, comfort}
}

func oneDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
