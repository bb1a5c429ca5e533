package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hours(from, to int, temp float64, condition string) []ForecastHour {
	var out []ForecastHour
	for h := from; h <= to; h++ {
		out = append(out, ForecastHour{Hour: h, Temp: temp, Condition: condition})
	}
	return out
}

func TestDefaultCalcRules(t *testing.T) {
	r := DefaultCalcRules()

	assert.Len(t, r.TargetHours, 11)
	for h := 9; h <= 19; h++ {
		assert.True(t, r.inWindow(h), "hour %d", h)
	}
	assert.False(t, r.inWindow(8))
	assert.False(t, r.inWindow(20))
	for _, c := range []string{"clear", "partly-cloudy", "cloudy", "overcast"} {
		assert.True(t, r.pleasant(c), c)
	}
	assert.False(t, r.pleasant("rain"))
	assert.False(t, r.pleasant("Clear"))
}

func TestHourRange(t *testing.T) {
	assert.Equal(t, []int{9, 10, 11}, HourRange(9, 11))
	assert.Equal(t, []int{5}, HourRange(5, 5))
	assert.Nil(t, HourRange(10, 9))
}

func TestSummarizeDay(t *testing.T) {
	rules := DefaultCalcRules()

	t.Run("window filter and pleasant count", func(t *testing.T) {
		day := ForecastDay{Date: "2024-05-26", Hours: []ForecastHour{
			{Hour: 8, Temp: 100, Condition: "clear"}, // outside window
			{Hour: 9, Temp: 10, Condition: "clear"},
			{Hour: 12, Temp: 20, Condition: "rain"},
			{Hour: 19, Temp: 30, Condition: "overcast"},
			{Hour: 20, Temp: -50, Condition: "clear"}, // outside window
		}}

		m, ok := SummarizeDay(day, rules)

		require.True(t, ok)
		assert.Equal(t, DayMetrics{Date: "2024-05-26", AvgTemp: 20, ComfortableHours: 2}, m)
	})

	t.Run("no window hours", func(t *testing.T) {
		day := ForecastDay{Date: "2024-05-26", Hours: hours(0, 8, 15, "clear")}

		_, ok := SummarizeDay(day, rules)

		assert.False(t, ok)
	})

	t.Run("condition match is exact", func(t *testing.T) {
		day := ForecastDay{Date: "2024-05-26", Hours: []ForecastHour{
			{Hour: 10, Temp: 1, Condition: "partly-cloudy-and-light-rain"},
			{Hour: 11, Temp: 1, Condition: "CLEAR"},
		}}

		m, ok := SummarizeDay(day, rules)

		require.True(t, ok)
		assert.Equal(t, 0, m.ComfortableHours)
	})
}

func TestSummarize(t *testing.T) {
	rules := DefaultCalcRules()
	loc := Location{Name: "moscow", Coords: &Coordinates{Lat: 55.75, Lon: 37.62}}

	t.Run("averages of retained days", func(t *testing.T) {
		lf := LocatedForecast{Location: loc, Forecast: RawForecast{Days: []ForecastDay{
			{Date: "2024-05-26", Hours: hours(9, 19, 10, "clear")},   // 11 comfortable
			{Date: "2024-05-27", Hours: hours(0, 8, 99, "clear")},    // dropped
			{Date: "2024-05-28", Hours: hours(14, 18, 20, "drizzle")}, // 0 comfortable
		}}}

		s, ok := Summarize(lf, rules)

		require.True(t, ok)
		assert.Equal(t, "moscow", s.Label)
		assert.Equal(t, loc, s.Location)
		assert.Equal(t, []DayMetrics{
			{Date: "2024-05-26", AvgTemp: 10, ComfortableHours: 11},
			{Date: "2024-05-28", AvgTemp: 20, ComfortableHours: 0},
		}, s.Days)
		assert.InDelta(t, 15.0, s.AvgTemp, 1e-9)
		assert.InDelta(t, 5.5, s.AvgComfortableHours, 1e-9)
		assert.Zero(t, s.Rank)
	})

	t.Run("no qualifying days excluded", func(t *testing.T) {
		lf := LocatedForecast{Location: loc, Forecast: RawForecast{Days: []ForecastDay{
			{Date: "2024-05-26", Hours: hours(20, 23, 5, "clear")},
			{Date: "2024-05-27"},
		}}}

		_, ok := Summarize(lf, rules)

		assert.False(t, ok)
	})

	t.Run("empty forecast excluded", func(t *testing.T) {
		_, ok := Summarize(LocatedForecast{Location: loc}, rules)

		assert.False(t, ok)
	})

	t.Run("coordinate label", func(t *testing.T) {
		lf := LocatedForecast{
			Location: NewCoordLocation(55.7558, 37.6173),
			Forecast: RawForecast{Days: []ForecastDay{{Date: "2024-05-26", Hours: hours(9, 9, 1, "clear")}}},
		}

		s, ok := Summarize(lf, rules)

		require.True(t, ok)
		assert.Equal(t, "55.7558,37.6173", s.Label)
	})
}

func TestLocationSummary_Day(t *testing.T) {
	s := LocationSummary{Days: []DayMetrics{{Date: "2024-05-26", AvgTemp: 3}}}

	d, ok := s.Day("2024-05-26")
	assert.True(t, ok)
	assert.Equal(t, 3.0, d.AvgTemp)

	_, ok = s.Day("2024-05-27")
	assert.False(t, ok)
}
