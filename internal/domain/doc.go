// Package domain computes distribution-grid reliability indices from outage
// records.
//
// # Data Source
//
// Outage logs are kept as one worksheet per period (usually a calendar month).
// Each worksheet row is one interruption with at least these columns:
//
//	Feeder Name        free text, often with stray or non-breaking spaces
//	Interruption Time  day-first timestamp, e.g. "02/01/2024 14:30" = 2 Jan 2024
//	Restoration Time   same format as Interruption Time
//	Customer No        number of customers affected
//	Fault Category     free text classification
//
// Column headers frequently carry surrounding whitespace ("Feeder Name ") and
// are trimmed before lookup.
//
// # Cleaning
//
// Feeder names are normalized (see [NormalizeFeederName]) so the same feeder
// typed with different spacing groups together. Casing is kept because feeder
// names contain acronyms. Rows missing a customer count, a computable duration
// or a fault category are dropped, never repaired. Negative durations
// (restoration before interruption) are kept as-is.
//
// # Time Buckets
//
//	Date:  civil date of the interruption, "2006-01-02".
//	Week:  "<year>-W<week>", week of year counted from the first Sunday
//	       (days before it fall in week 00), zero-padded: "2024-W07".
//
// # Indices
//
// For a group with customer total C and customer-hours W:
//
//	SAIDI = W / C
//	SAIFI = C / C
//	CAIDI = SAIDI / SAIFI
//
// All three are 0 when C is not positive. SAIFI as computed here is 1 for
// every group with customers and CAIDI therefore equals SAIDI; this matches
// the dashboard the indices are reported on and is kept until the formula is
// revisited with the operators.
package domain
