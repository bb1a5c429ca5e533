package domain

import "gonum.org/v1/gonum/stat"

// CalcRules selects which forecast hours count and which conditions are pleasant.
type CalcRules struct {
	TargetHours        map[int]struct{}
	PleasantConditions map[string]struct{}
}

// DefaultCalcRules is the 09:00–19:00 window with the four dry-sky conditions.
func DefaultCalcRules() CalcRules {
	return NewCalcRules(HourRange(9, 19), []string{"clear", "partly-cloudy", "cloudy", "overcast"})
}

// NewCalcRules builds rules from a list of hours and condition labels.
func NewCalcRules(hours []int, pleasant []string) CalcRules {
	r := CalcRules{
		TargetHours:        make(map[int]struct{}, len(hours)),
		PleasantConditions: make(map[string]struct{}, len(pleasant)),
	}
	for _, h := range hours {
		r.TargetHours[h] = struct{}{}
	}
	for _, c := range pleasant {
		r.PleasantConditions[c] = struct{}{}
	}
	return r
}

// HourRange returns the hours from..to inclusive.
func HourRange(from, to int) []int {
	if to < from {
		return nil
	}
	out := make([]int, 0, to-from+1)
	for h := from; h <= to; h++ {
		out = append(out, h)
	}
	return out
}

func (r CalcRules) inWindow(hour int) bool {
	_, ok := r.TargetHours[hour]
	return ok
}

func (r CalcRules) pleasant(condition string) bool {
	_, ok := r.PleasantConditions[condition]
	return ok
}

// DayMetrics is the reduction of one forecast day to the target window.
type DayMetrics struct {
	Date             string  `json:"date"`
	AvgTemp          float64 `json:"avg_temp"`
	ComfortableHours int     `json:"comfortable_hours"`
}

// LocationSummary is the per-location result of the calculation. Days is
// never empty. Rank is zero until the summary has been ranked.
type LocationSummary struct {
	Label               string       `json:"label"`
	Location            Location     `json:"location"`
	Days                []DayMetrics `json:"days"`
	AvgTemp             float64      `json:"avg_temp"`
	AvgComfortableHours float64      `json:"avg_comfortable_hours"`
	Rank                int          `json:"rank,omitempty"`
}

// Day returns the metrics for date, if the location retained that day.
func (s LocationSummary) Day(date string) (DayMetrics, bool) {
	for _, d := range s.Days {
		if d.Date == date {
			return d, true
		}
	}
	return DayMetrics{}, false
}

// SummarizeDay reduces one day to its window hours. It reports false when no
// hour of the day falls inside the window.
func SummarizeDay(day ForecastDay, rules CalcRules) (DayMetrics, bool) {
	temps := make([]float64, 0, len(day.Hours))
	comfortable := 0
	for _, h := range day.Hours {
		if !rules.inWindow(h.Hour) {
			continue
		}
		temps = append(temps, h.Temp)
		if rules.pleasant(h.Condition) {
			comfortable++
		}
	}
	if len(temps) == 0 {
		return DayMetrics{}, false
	}
	return DayMetrics{
		Date:             day.Date,
		AvgTemp:          stat.Mean(temps, nil),
		ComfortableHours: comfortable,
	}, true
}

// Summarize reduces a located forecast to a LocationSummary. It reports false
// when no day of the forecast has any window hour; such a location has no
// averages and must be left out.
func Summarize(lf LocatedForecast, rules CalcRules) (LocationSummary, bool) {
	days := make([]DayMetrics, 0, len(lf.Forecast.Days))
	for _, d := range lf.Forecast.Days {
		if m, ok := SummarizeDay(d, rules); ok {
			days = append(days, m)
		}
	}
	if len(days) == 0 {
		return LocationSummary{}, false
	}

	temps := make([]float64, len(days))
	hours := make([]float64, len(days))
	for i, d := range days {
		temps[i] = d.AvgTemp
		hours[i] = float64(d.ComfortableHours)
	}
	return LocationSummary{
		Label:               lf.Location.Label(),
		Location:            lf.Location,
		Days:                days,
		AvgTemp:             stat.Mean(temps, nil),
		AvgComfortableHours: stat.Mean(hours, nil),
	}, true
}
