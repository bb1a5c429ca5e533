package domain

import (
	"cmp"
	"slices"
)

// Rank orders summaries by average temperature, then average comfortable
// hours, both descending, and assigns 1-based ranks in that order. Ties keep
// their input order and still get consecutive ranks. The input is not modified.
func Rank(summaries []LocationSummary) []LocationSummary {
	out := slices.Clone(summaries)
	slices.SortStableFunc(out, func(a, b LocationSummary) int {
		if c := cmp.Compare(b.AvgTemp, a.AvgTemp); c != 0 {
			return c
		}
		return cmp.Compare(b.AvgComfortableHours, a.AvgComfortableHours)
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
