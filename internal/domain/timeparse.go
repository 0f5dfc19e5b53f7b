package domain

import (
	"fmt"
	"strings"
	"time"
)

// timestampLayouts are tried in order. Slash, dash and dot separated dates are
// day-first; ISO dates are unambiguous and accepted as well.
var timestampLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"02/01/2006 3:04:05 PM",
	"02/01/2006 3:04 PM",
	"2/1/2006 3:04:05 PM",
	"2/1/2006 3:04 PM",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006 15:04:05",
	"02-01-2006 15:04",
	"02-01-2006",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseTimestamp parses a day-first timestamp cell. It returns nil for empty or
// unparseable input instead of failing. Naive values are UTC; values carrying
// an offset keep it so the civil date is the one written in the cell.
func parseTimestamp(v any) *time.Time {
	switch x := v.(type) {
	case nil:
		return nil
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return &x
	case *time.Time:
		return parseTimestamp(deref(x))
	}

	// Upper-casing lets "pm" match the PM layouts; it does not affect the others.
	s := strings.ToUpper(strings.Join(strings.Fields(fmt.Sprint(v)), " "))
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return &t
		}
	}
	return nil
}

func deref(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// weekLabel formats t as "<year>-W<week>" with weeks starting on Sunday. Days
// before the first Sunday of the year are in week 00.
func weekLabel(t time.Time) string {
	week := (t.YearDay() - 1 + 7 - int(t.Weekday())) / 7
	return fmt.Sprintf("%04d-W%02d", t.Year(), week)
}
