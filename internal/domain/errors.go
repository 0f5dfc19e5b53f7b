package domain

import "errors"

var (
	// ErrNoPeriodsAvailable means no period produced a valid record, so there
	// is nothing to compute.
	ErrNoPeriodsAvailable = errors.New("no periods with valid outage records")

	// ErrNoMatchingData means a filter selection matched no metrics rows.
	ErrNoMatchingData = errors.New("no metrics available for this selection")

	// ErrUnknownGranularity is returned for anything but daily, weekly or monthly.
	ErrUnknownGranularity = errors.New("unknown granularity")
)
