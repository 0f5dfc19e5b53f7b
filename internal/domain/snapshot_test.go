package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSnapshot(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2024, time.March, 1, 6, 0, 0, 0, time.UTC))
	SetClock(fakeClock)
	t.Cleanup(func() { SetClock(nil) })

	var stats RunStats
	var tables []PeriodTable
	for _, p := range []RawPeriod{
		januaryExample(),
		{Label: "Feb"},
		{Label: "Mar", Records: []RawRecord{row("F1", "bad", "bad", 1, "Tree")}},
	} {
		table, ps := IngestPeriod(p)
		stats.Add(ps)
		tables = append(tables, table)
	}
	ds, err := Merge(tables...)
	require.NoError(t, err)

	snap := NewSnapshot(ds, stats)

	assert.Equal(t, fakeClock.Now(), snap.ComputedAt)
	assert.Equal(t, 2, snap.Dataset.Len())
	assert.Equal(t, []string{"Feb", "Mar"}, snap.Stats.EmptyPeriods)
	assert.Equal(t, 2, snap.Stats.Accepted)
	assert.Equal(t, 1, snap.Stats.Rejected)
	assert.Len(t, snap.Stats.Periods, 3)
	assert.Len(t, snap.Tables.Daily, 2)
	assert.Len(t, snap.Tables.Weekly, 1)
	assert.Len(t, snap.Tables.Monthly, 1)
}
