package domain

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// RejectReason names why a raw row was excluded during ingestion.
type RejectReason string

const (
	RejectMissingCustomerCount RejectReason = "missing_customer_count"
	RejectMissingDuration      RejectReason = "missing_duration"
	RejectMissingFaultCategory RejectReason = "missing_fault_category"
	RejectMissingFeederName    RejectReason = "missing_feeder_name"
)

// IngestStats counts the outcome of ingesting one period.
type IngestStats struct {
	Period   string
	Total    int
	Accepted int
	Rejected map[RejectReason]int
}

// RejectedTotal sums rejections across all reasons.
func (s IngestStats) RejectedTotal() int {
	n := 0
	for _, c := range s.Rejected {
		n += c
	}
	return n
}

// IngestPeriod cleans the raw rows of one period. Malformed cells never fail
// the period; the row is dropped and counted in the returned stats. An empty
// period yields an empty table.
func IngestPeriod(period RawPeriod) (PeriodTable, IngestStats) {
	stats := IngestStats{
		Period:   period.Label,
		Total:    len(period.Records),
		Rejected: make(map[RejectReason]int),
	}
	table := PeriodTable{Label: period.Label}
	if len(period.Records) == 0 {
		return table, stats
	}

	table.Records = make([]OutageRecord, 0, len(period.Records))
	for _, raw := range period.Records {
		rec, reason, ok := ingestRecord(trimColumns(raw), period.Label)
		if !ok {
			stats.Rejected[reason]++
			continue
		}
		table.Records = append(table.Records, rec)
	}
	stats.Accepted = len(table.Records)
	return table, stats
}

func ingestRecord(row RawRecord, label string) (OutageRecord, RejectReason, bool) {
	rec := OutageRecord{
		PeriodLabel:      label,
		FeederName:       NormalizeFeederName(row[ColFeederName]),
		InterruptionTime: parseTimestamp(row[ColInterruptionTime]),
		RestorationTime:  parseTimestamp(row[ColRestorationTime]),
		CustomerCount:    parseNumeric(row[ColCustomerNo]),
		FaultCategory:    parseCategory(row, ColFaultCategory),
	}

	if rec.InterruptionTime != nil && rec.RestorationTime != nil {
		d := rec.RestorationTime.Sub(*rec.InterruptionTime).Hours()
		rec.DurationHr = &d
	}
	if rec.InterruptionTime != nil {
		rec.Date = rec.InterruptionTime.Format(DateLayout)
		rec.WeekLabel = weekLabel(*rec.InterruptionTime)
	}

	switch {
	case rec.CustomerCount == nil:
		return rec, RejectMissingCustomerCount, false
	case rec.DurationHr == nil:
		return rec, RejectMissingDuration, false
	case rec.FaultCategory == nil:
		return rec, RejectMissingFaultCategory, false
	case rec.FeederName == "":
		return rec, RejectMissingFeederName, false
	}
	return rec, "", true
}

// trimColumns returns a copy of row with whitespace stripped from every key.
// Values are untouched. When two keys trim to the same name, a key that was
// already trimmed wins, otherwise the first in sorted order.
func trimColumns(row RawRecord) RawRecord {
	out := make(RawRecord, len(row))
	padded := make([]string, 0)
	for k, v := range row {
		if strings.TrimSpace(k) == k {
			out[k] = v
			continue
		}
		padded = append(padded, k)
	}

	slices.Sort(padded)
	for _, k := range padded {
		name := strings.TrimSpace(k)
		if _, ok := out[name]; ok {
			continue
		}
		out[name] = row[k]
	}
	return out
}

// parseNumeric coerces a cell to a finite float. Anything non-numeric is nil.
func parseNumeric(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// parseCategory returns the fault category, or nil when the column is absent
// or the cell is null. Blank strings are a value, not a null.
func parseCategory(row RawRecord, col string) *string {
	v, ok := row[col]
	if !ok || v == nil {
		return nil
	}
	s := stringify(v)
	return &s
}
