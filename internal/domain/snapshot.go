package domain

import "time"

// RunStats summarizes the ingestion side of one computation pass.
type RunStats struct {
	Periods      []IngestStats `json:"-"`
	EmptyPeriods []string      `json:"empty_periods"`
	Accepted     int           `json:"accepted"`
	Rejected     int           `json:"rejected"`
}

// Add records the outcome of ingesting one period.
func (s *RunStats) Add(ps IngestStats) {
	s.Periods = append(s.Periods, ps)
	s.Accepted += ps.Accepted
	s.Rejected += ps.RejectedTotal()
	if ps.Accepted == 0 {
		s.EmptyPeriods = append(s.EmptyPeriods, ps.Period)
	}
}

// Snapshot is the immutable result of one computation pass. It is replaced
// wholesale when the source data changes.
type Snapshot struct {
	Dataset    Dataset   `json:"-"`
	Tables     Tables    `json:"-"`
	Stats      RunStats  `json:"stats"`
	ComputedAt time.Time `json:"computed_at"`
}

// NewSnapshot aggregates ds at every granularity and stamps the result.
func NewSnapshot(ds Dataset, stats RunStats) *Snapshot {
	return &Snapshot{
		Dataset:    ds,
		Tables:     BuildTables(ds),
		Stats:      stats,
		ComputedAt: clock.Now().UTC(),
	}
}
