package domain

import (
	"cmp"
	"fmt"
	"slices"
)

// QueryResult is the filtered view of one metrics table. Current is the
// latest row of Trend.
type QueryResult struct {
	Granularity Granularity  `json:"granularity"`
	Current     MetricsRow   `json:"current"`
	Trend       []MetricsRow `json:"trend"`
}

// Filter selects the rows of granularity g for one period and feeder, sorted
// by sub-period. Matching is exact and case-sensitive. It returns
// ErrNoMatchingData when nothing matches.
func (t Tables) Filter(g Granularity, period, feeder string) (QueryResult, error) {
	if !g.Valid() {
		return QueryResult{}, fmt.Errorf("%w: %q", ErrUnknownGranularity, string(g))
	}

	var trend []MetricsRow
	for _, row := range t.Table(g) {
		if row.PeriodLabel == period && row.FeederName == feeder {
			trend = append(trend, row)
		}
	}
	if len(trend) == 0 {
		return QueryResult{}, ErrNoMatchingData
	}

	slices.SortStableFunc(trend, func(a, b MetricsRow) int {
		if g == Monthly {
			return cmp.Compare(a.PeriodLabel, b.PeriodLabel)
		}
		return cmp.Compare(a.SubPeriod, b.SubPeriod)
	})

	return QueryResult{
		Granularity: g,
		Current:     trend[len(trend)-1],
		Trend:       trend,
	}, nil
}

// PeriodLabels returns the distinct period labels in sorted order.
func (d Dataset) PeriodLabels() []string {
	labels := make([]string, 0)
	for _, r := range d.Records {
		labels = append(labels, r.PeriodLabel)
	}
	return sortedUnique(labels)
}

// FeederNames returns the distinct feeders recorded in period, sorted.
func (d Dataset) FeederNames(period string) []string {
	names := make([]string, 0)
	for _, r := range d.Records {
		if r.PeriodLabel == period {
			names = append(names, r.FeederName)
		}
	}
	return sortedUnique(names)
}

func sortedUnique(s []string) []string {
	slices.Sort(s)
	return slices.Compact(s)
}
