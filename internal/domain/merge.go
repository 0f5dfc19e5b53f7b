package domain

// Merge concatenates the period tables in order, skipping empty ones. It
// returns ErrNoPeriodsAvailable when every table is empty.
func Merge(tables ...PeriodTable) (Dataset, error) {
	n := 0
	for _, t := range tables {
		n += len(t.Records)
	}
	if n == 0 {
		return Dataset{}, ErrNoPeriodsAvailable
	}

	ds := Dataset{Records: make([]OutageRecord, 0, n)}
	for _, t := range tables {
		ds.Records = append(ds.Records, t.Records...)
	}
	return ds, nil
}
