package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected time.Time
	}{
		{"day first with minutes", "02/01/2024 14:30", time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)},
		{"day first with seconds", "02/01/2024 14:30:15", time.Date(2024, 1, 2, 14, 30, 15, 0, time.UTC)},
		{"day above twelve", "13/01/2024 08:00", time.Date(2024, 1, 13, 8, 0, 0, 0, time.UTC)},
		{"single digit parts", "2/1/2024 9:05", time.Date(2024, 1, 2, 9, 5, 0, 0, time.UTC)},
		{"date only", "01/02/2024", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"dashes", "01-02-2024 10:00", time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)},
		{"dots", "01.02.2024 10:00", time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)},
		{"iso", "2024-02-01 10:00:00", time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)},
		{"rfc3339", "2024-02-01T10:00:00Z", time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)},
		{"twelve hour pm", "02/01/2024 2:30 PM", time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)},
		{"twelve hour lowercase with seconds", "2/1/2024 9:05:10 am", time.Date(2024, 1, 2, 9, 5, 10, 0, time.UTC)},
		{"twelve hour noon", "02/01/2024 12:00 PM", time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)},
		{"iso without seconds", "2024-02-01T10:00", time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)},
		{"surrounding whitespace", "  02/01/2024   14:30 ", time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)},
		{"time value", time.Date(2024, 3, 4, 5, 6, 0, 0, time.UTC), time.Date(2024, 3, 4, 5, 6, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTimestamp(tt.input)
			require.NotNil(t, got)
			assert.Equal(t, tt.expected, *got)
		})
	}
}

func TestParseTimestamp_KeepsOffset(t *testing.T) {
	got := parseTimestamp("2024-01-02T02:00+05:00")
	require.NotNil(t, got)

	assert.True(t, got.Equal(time.Date(2024, 1, 1, 21, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-01-02", got.Format(DateLayout))
	_, offset := got.Zone()
	assert.Equal(t, 5*3600, offset)
}

func TestParseTimestamp_Unparseable(t *testing.T) {
	for _, in := range []any{nil, "", "   ", "not a date", "32/01/2024 10:00", "01/13/2024 10:00", "02/01/2024 14:30 PM", time.Time{}} {
		assert.Nil(t, parseTimestamp(in), "input %v", in)
	}
}

func TestWeekLabel(t *testing.T) {
	tests := []struct {
		date     time.Time
		expected string
	}{
		// 2024-01-01 is a Monday: days before the first Sunday are week 00.
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "2024-W00"},
		{time.Date(2024, 1, 6, 23, 59, 0, 0, time.UTC), "2024-W00"},
		{time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), "2024-W01"},
		{time.Date(2024, 2, 17, 0, 0, 0, 0, time.UTC), "2024-W06"},
		{time.Date(2024, 2, 18, 0, 0, 0, 0, time.UTC), "2024-W07"},
		// 2023-01-01 is a Sunday and starts week 01.
		{time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), "2023-W01"},
		{time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), "2024-W52"},
	}

	for _, tt := range tests {
		t.Run(tt.date.Format(DateLayout), func(t *testing.T) {
			assert.Equal(t, tt.expected, weekLabel(tt.date))
		})
	}
}
