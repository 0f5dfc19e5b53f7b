package domain

import (
	"slices"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Tables holds the metrics of one dataset at each granularity.
type Tables struct {
	Daily   []MetricsRow `json:"daily"`
	Weekly  []MetricsRow `json:"weekly"`
	Monthly []MetricsRow `json:"monthly"`
}

// BuildTables aggregates the dataset at the three fixed granularities.
func BuildTables(ds Dataset) Tables {
	return Tables{
		Daily:   ComputeMetrics(ds, Daily.GroupFields()...),
		Weekly:  ComputeMetrics(ds, Weekly.GroupFields()...),
		Monthly: ComputeMetrics(ds, Monthly.GroupFields()...),
	}
}

// Table returns the metrics table for g.
func (t Tables) Table(g Granularity) []MetricsRow {
	switch g {
	case Daily:
		return t.Daily
	case Weekly:
		return t.Weekly
	default:
		return t.Monthly
	}
}

type group struct {
	values    []string
	durations []float64
	customers []float64
}

// ComputeMetrics returns one row per distinct combination of the given key
// fields, ordered by those fields in the order they are listed.
func ComputeMetrics(ds Dataset, keys ...GroupField) []MetricsRow {
	groups := make(map[string]*group)
	order := make([]*group, 0)

	for i := range ds.Records {
		rec := &ds.Records[i]
		values := make([]string, len(keys))
		for j, k := range keys {
			values[j] = fieldValue(rec, k)
		}
		id := strings.Join(values, "\x00")

		g, ok := groups[id]
		if !ok {
			g = &group{values: values}
			groups[id] = g
			order = append(order, g)
		}
		g.durations = append(g.durations, *rec.DurationHr)
		g.customers = append(g.customers, *rec.CustomerCount)
	}

	slices.SortFunc(order, func(a, b *group) int {
		return slices.Compare(a.values, b.values)
	})

	rows := make([]MetricsRow, 0, len(order))
	for _, g := range order {
		row := MetricsRow{Interruptions: len(g.customers)}
		for j, k := range keys {
			switch k {
			case FieldFeeder:
				row.FeederName = g.values[j]
			case FieldPeriod:
				row.PeriodLabel = g.values[j]
			case FieldDate, FieldWeek:
				row.SubPeriod = g.values[j]
			}
		}
		row.Customers = floats.Sum(g.customers)
		row.SAIDI, row.SAIFI, row.CAIDI = indices(g.durations, g.customers, row.Customers)
		rows = append(rows, row)
	}
	return rows
}

// indices computes SAIDI, SAIFI and CAIDI for one group with customer total c.
func indices(durations, customers []float64, c float64) (saidi, saifi, caidi float64) {
	if c <= 0 {
		return 0, 0, 0
	}
	saidi = stat.Mean(durations, customers)
	saifi = c / c
	caidi = saidi / saifi
	return saidi, saifi, caidi
}

func fieldValue(rec *OutageRecord, f GroupField) string {
	switch f {
	case FieldFeeder:
		return rec.FeederName
	case FieldPeriod:
		return rec.PeriodLabel
	case FieldDate:
		return rec.Date
	case FieldWeek:
		return rec.WeekLabel
	default:
		return ""
	}
}
