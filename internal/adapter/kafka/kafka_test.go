package kafka

import (
	"testing"
	"time"

	"github.com/couchcryptid/grid-reliability-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 2, 1, 6, 0, 0, 0, time.UTC)
	row := domain.MetricsRow{
		FeederName:    "Feeder A",
		PeriodLabel:   "Jan",
		SubPeriod:     "2024-W00",
		SAIDI:         1.5,
		SAIFI:         1,
		CAIDI:         1.5,
		Customers:     150,
		Interruptions: 2,
	}

	msg, err := serializeToMessage(domain.Weekly, row, now)
	require.NoError(t, err)

	assert.Equal(t, []byte("weekly|Feeder A|Jan|2024-W00"), msg.Key)
	assert.JSONEq(t, `{
		"granularity": "weekly",
		"feeder_name": "Feeder A",
		"period_label": "Jan",
		"sub_period": "2024-W00",
		"saidi": 1.5,
		"saifi": 1,
		"caidi": 1.5,
		"customers": 150,
		"interruptions": 2,
		"computed_at": "2024-02-01T06:00:00Z"
	}`, string(msg.Value))
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "granularity", msg.Headers[0].Key)
	assert.Equal(t, []byte("weekly"), msg.Headers[0].Value)
	assert.Equal(t, "computed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestSnapshotMessages(t *testing.T) {
	snap := &domain.Snapshot{
		Tables: domain.Tables{
			Daily: []domain.MetricsRow{
				{FeederName: "F1", PeriodLabel: "Jan", SubPeriod: "2024-01-01"},
				{FeederName: "F1", PeriodLabel: "Jan", SubPeriod: "2024-01-02"},
			},
			Weekly:  []domain.MetricsRow{{FeederName: "F1", PeriodLabel: "Jan", SubPeriod: "2024-W00"}},
			Monthly: []domain.MetricsRow{{FeederName: "F1", PeriodLabel: "Jan"}},
		},
	}

	msgs, err := snapshotMessages(snap)
	require.NoError(t, err)

	require.Len(t, msgs, 4)
	assert.Equal(t, "daily|F1|Jan|2024-01-01", string(msgs[0].Key))
	assert.Equal(t, "weekly|F1|Jan|2024-W00", string(msgs[2].Key))
	assert.Equal(t, "monthly|F1|Jan|", string(msgs[3].Key))
}
