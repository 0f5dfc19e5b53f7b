package domain

import (
	"fmt"
	"strings"
	"time"
)

// Source column names.
const (
	ColFeederName       = "Feeder Name"
	ColInterruptionTime = "Interruption Time"
	ColRestorationTime  = "Restoration Time"
	ColCustomerNo       = "Customer No"
	ColFaultCategory    = "Fault Category"
)

// DateLayout is the format of Date sub-periods.
const DateLayout = "2006-01-02"

// RawRecord is one worksheet row keyed by column header. Values are whatever
// the source produced: strings, numbers or nil for empty cells.
type RawRecord map[string]any

// RawPeriod is the raw content of one worksheet.
type RawPeriod struct {
	Label   string
	Records []RawRecord
}

// OutageRecord is a cleaned interruption. Pointer fields are nil when the
// source value could not be parsed; ingestion guarantees CustomerCount,
// DurationHr and FaultCategory are set on every record it returns.
type OutageRecord struct {
	FeederName       string     `json:"feeder_name"`
	PeriodLabel      string     `json:"period_label"`
	InterruptionTime *time.Time `json:"interruption_time,omitempty"`
	RestorationTime  *time.Time `json:"restoration_time,omitempty"`
	DurationHr       *float64   `json:"duration_hr"`
	CustomerCount    *float64   `json:"customer_count"`
	FaultCategory    *string    `json:"fault_category"`
	Date             string     `json:"date,omitempty"`
	WeekLabel        string     `json:"week_label,omitempty"`
}

// PeriodTable holds the cleaned records of one period.
type PeriodTable struct {
	Label   string
	Records []OutageRecord
}

// Dataset is the union of every non-empty period table.
type Dataset struct {
	Records []OutageRecord
}

// Len returns the number of records.
func (d Dataset) Len() int { return len(d.Records) }

// Granularity selects one of the three metrics tables.
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// Granularities lists the supported granularities in display order.
var Granularities = []Granularity{Daily, Weekly, Monthly}

// ParseGranularity accepts "daily", "weekly" or "monthly" in any case.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case Daily, Weekly, Monthly:
		return g, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownGranularity, s)
	}
}

// Valid reports whether g is one of the supported granularities.
func (g Granularity) Valid() bool {
	return g == Daily || g == Weekly || g == Monthly
}

// GroupField is a grouping key column of the aggregator.
type GroupField int

const (
	FieldFeeder GroupField = iota
	FieldPeriod
	FieldDate
	FieldWeek
)

func (f GroupField) String() string {
	switch f {
	case FieldFeeder:
		return "feeder_name"
	case FieldPeriod:
		return "period_label"
	case FieldDate:
		return "date"
	case FieldWeek:
		return "week_label"
	default:
		return fmt.Sprintf("GroupField(%d)", int(f))
	}
}

// GroupFields returns the grouping key for a granularity.
func (g Granularity) GroupFields() []GroupField {
	switch g {
	case Daily:
		return []GroupField{FieldFeeder, FieldPeriod, FieldDate}
	case Weekly:
		return []GroupField{FieldFeeder, FieldPeriod, FieldWeek}
	default:
		return []GroupField{FieldFeeder, FieldPeriod}
	}
}

// MetricsRow is the aggregate of one group. SubPeriod holds the date or week
// label and is empty when the grouping has neither.
type MetricsRow struct {
	FeederName    string  `json:"feeder_name"`
	PeriodLabel   string  `json:"period_label"`
	SubPeriod     string  `json:"sub_period,omitempty"`
	SAIDI         float64 `json:"saidi"`
	SAIFI         float64 `json:"saifi"`
	CAIDI         float64 `json:"caidi"`
	Customers     float64 `json:"customers"`
	Interruptions int     `json:"interruptions"`
}
