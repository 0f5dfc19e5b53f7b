package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/grid-reliability-etl/internal/domain"
	"github.com/couchcryptid/grid-reliability-etl/internal/observability"
	"github.com/couchcryptid/grid-reliability-etl/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockSource struct {
	periods []domain.RawPeriod
	errs    []error // returned by successive calls before periods
	calls   int
}

func (m *mockSource) ReadPeriods(_ context.Context) ([]domain.RawPeriod, error) {
	m.calls++
	if m.calls <= len(m.errs) {
		return nil, m.errs[m.calls-1]
	}
	return m.periods, nil
}

type mockPublisher struct {
	published []*domain.Snapshot
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, snap *domain.Snapshot) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, snap)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func record(feeder, interruption, restoration string, customers any) domain.RawRecord {
	return domain.RawRecord{
		domain.ColFeederName:       feeder,
		domain.ColInterruptionTime: interruption,
		domain.ColRestorationTime:  restoration,
		domain.ColCustomerNo:       customers,
		domain.ColFaultCategory:    "Tree",
	}
}

func samplePeriods() []domain.RawPeriod {
	return []domain.RawPeriod{
		{Label: "Jan", Records: []domain.RawRecord{
			record("Feeder A ", "01/01/2024 00:00", "01/01/2024 02:00", 100),
			record("Feeder A", "02/01/2024 00:00", "02/01/2024 01:00", 50),
			record("Feeder B", "02/01/2024 00:00", "02/01/2024 01:00", "n/a"),
		}},
		{Label: "Feb"},
	}
}

// --- tests ---

func TestPipeline_Refresh_HappyPath(t *testing.T) {
	src := &mockSource{periods: samplePeriods()}
	pub := &mockPublisher{}
	metrics := observability.NewMetricsForTesting()

	p := pipeline.New(src, discardLogger(), metrics, pipeline.WithPublisher(pub))
	require.Error(t, p.CheckReadiness(context.Background()))
	assert.Nil(t, p.Snapshot())

	snap, err := p.Refresh(context.Background())
	require.NoError(t, err)

	assert.Same(t, snap, p.Snapshot())
	require.NoError(t, p.CheckReadiness(context.Background()))
	assert.Equal(t, 2, snap.Dataset.Len())
	assert.Equal(t, []string{"Feb"}, snap.Stats.EmptyPeriods)
	assert.Equal(t, 1, snap.Stats.Rejected)

	res, err := snap.Tables.Filter(domain.Monthly, "Jan", "Feeder A")
	require.NoError(t, err)
	assert.InDelta(t, 250.0/150.0, res.Current.SAIDI, 1e-9)

	require.Len(t, pub.published, 1)
	assert.Same(t, snap, pub.published[0])

	assert.InDelta(t, 2, testutil.ToFloat64(metrics.PeriodsRead), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.PeriodsEmpty), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.RowsAccepted), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.RowsRejected.WithLabelValues(string(domain.RejectMissingCustomerCount))), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Refreshes.WithLabelValues("success")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.MetricsRows.WithLabelValues("daily")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.SnapshotReady), 0)
	assert.InDelta(t, 4, testutil.ToFloat64(metrics.RowsPublished), 0)
}

func TestPipeline_Refresh_NoPeriodsAvailable(t *testing.T) {
	src := &mockSource{periods: []domain.RawPeriod{
		{Label: "Jan"},
		{Label: "Feb", Records: []domain.RawRecord{record("F1", "bad", "bad", 1)}},
	}}
	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(src, discardLogger(), metrics)

	snap, err := p.Refresh(context.Background())

	require.ErrorIs(t, err, domain.ErrNoPeriodsAvailable)
	assert.Nil(t, snap)
	assert.Nil(t, p.Snapshot())
	require.Error(t, p.CheckReadiness(context.Background()))
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Refreshes.WithLabelValues("no_data")), 0)
}

func TestPipeline_Refresh_RetriesSource(t *testing.T) {
	src := &mockSource{
		periods: samplePeriods(),
		errs:    []error{errors.New("quota exceeded"), errors.New("timeout")},
	}
	p := pipeline.New(src, discardLogger(), observability.NewMetricsForTesting(),
		pipeline.WithRetry(3, time.Millisecond, 2*time.Millisecond))

	_, err := p.Refresh(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, src.calls)
}

func TestPipeline_Refresh_SourceFailure(t *testing.T) {
	sourceErr := errors.New("spreadsheet not found")
	src := &mockSource{errs: []error{sourceErr, sourceErr}}
	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(src, discardLogger(), metrics, pipeline.WithRetry(2, time.Millisecond, time.Millisecond))

	_, err := p.Refresh(context.Background())

	require.ErrorIs(t, err, sourceErr)
	assert.Equal(t, 2, src.calls)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Refreshes.WithLabelValues("source_error")), 0)
}

func TestPipeline_Refresh_KeepsPreviousSnapshotOnFailure(t *testing.T) {
	src := &mockSource{periods: samplePeriods()}
	p := pipeline.New(src, discardLogger(), observability.NewMetricsForTesting(),
		pipeline.WithRetry(1, 0, 0))

	first, err := p.Refresh(context.Background())
	require.NoError(t, err)

	src.periods = []domain.RawPeriod{{Label: "Mar"}}
	_, err = p.Refresh(context.Background())
	require.ErrorIs(t, err, domain.ErrNoPeriodsAvailable)

	assert.Same(t, first, p.Snapshot())
}

func TestPipeline_Refresh_PublishFailureStillServes(t *testing.T) {
	src := &mockSource{periods: samplePeriods()}
	pub := &mockPublisher{err: errors.New("broker down")}
	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(src, discardLogger(), metrics, pipeline.WithPublisher(pub))

	snap, err := p.Refresh(context.Background())

	require.NoError(t, err)
	assert.Same(t, snap, p.Snapshot())
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.PublishErrors), 0)
	assert.Zero(t, testutil.ToFloat64(metrics.RowsPublished))
}

func TestPipeline_Refresh_ContextCancelled(t *testing.T) {
	src := &mockSource{errs: []error{errors.New("unreachable")}}
	p := pipeline.New(src, discardLogger(), observability.NewMetricsForTesting())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Refresh(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, src.calls)
}
