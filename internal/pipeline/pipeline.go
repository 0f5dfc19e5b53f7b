package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/grid-reliability-etl/internal/domain"
	"github.com/couchcryptid/grid-reliability-etl/internal/observability"
)

// PeriodSource reads every period (worksheet) of raw outage records.
type PeriodSource interface {
	ReadPeriods(ctx context.Context) ([]domain.RawPeriod, error)
}

// Publisher writes a computed snapshot to a downstream sink.
type Publisher interface {
	Publish(ctx context.Context, snap *domain.Snapshot) error
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPublisher sends every new snapshot to pub.
func WithPublisher(pub Publisher) Option {
	return func(p *Pipeline) { p.publisher = pub }
}

// WithRetry sets how often a failed source read is attempted and the
// backoff between attempts.
func WithRetry(attempts int, initial, maxBackoff time.Duration) Option {
	return func(p *Pipeline) {
		if attempts > 0 {
			p.attempts = attempts
		}
		p.initialBackoff = initial
		p.maxBackoff = maxBackoff
	}
}

// Pipeline reads, cleans and aggregates outage records into a snapshot. A
// refresh runs synchronously; readers get the last good snapshot.
type Pipeline struct {
	source    PeriodSource
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics

	attempts       int
	initialBackoff time.Duration
	maxBackoff     time.Duration

	mu      sync.Mutex // serializes refreshes
	current atomic.Pointer[domain.Snapshot]
}

// New creates a Pipeline reading from source.
func New(source PeriodSource, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:         source,
		logger:         logger,
		metrics:        metrics,
		attempts:       3,
		initialBackoff: 200 * time.Millisecond,
		maxBackoff:     5 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Snapshot returns the last computed snapshot, or nil if none succeeded yet.
func (p *Pipeline) Snapshot() *domain.Snapshot {
	return p.current.Load()
}

// CheckReadiness returns nil once a snapshot is available.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.current.Load() == nil {
		return errors.New("no reliability snapshot computed yet")
	}
	return nil
}

// Refresh reads all periods and recomputes the metrics tables from scratch.
// On failure the previous snapshot stays in place. A merge with no valid
// periods returns an error wrapping domain.ErrNoPeriodsAvailable.
func (p *Pipeline) Refresh(ctx context.Context) (*domain.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()

	periods, err := p.readPeriods(ctx)
	if err != nil {
		p.metrics.Refreshes.WithLabelValues("source_error").Inc()
		return nil, fmt.Errorf("read periods: %w", err)
	}
	p.metrics.PeriodsRead.Add(float64(len(periods)))

	var stats domain.RunStats
	tables := make([]domain.PeriodTable, 0, len(periods))
	for _, period := range periods {
		table, ps := domain.IngestPeriod(period)
		stats.Add(ps)
		p.observeIngest(ps)
		if len(table.Records) == 0 {
			continue
		}
		tables = append(tables, table)
	}

	ds, err := domain.Merge(tables...)
	if err != nil {
		p.metrics.Refreshes.WithLabelValues("no_data").Inc()
		return nil, fmt.Errorf("merge %d periods: %w", len(periods), err)
	}

	snap := domain.NewSnapshot(ds, stats)
	for _, g := range domain.Granularities {
		p.metrics.MetricsRows.WithLabelValues(string(g)).Set(float64(len(snap.Tables.Table(g))))
	}

	p.publish(ctx, snap)

	p.current.Store(snap)
	p.metrics.SnapshotReady.Set(1)
	p.metrics.Refreshes.WithLabelValues("success").Inc()
	p.metrics.RefreshDuration.Observe(time.Since(start).Seconds())

	p.logger.Info("snapshot refreshed",
		"periods", len(periods),
		"empty_periods", len(stats.EmptyPeriods),
		"records", ds.Len(),
		"rejected", stats.Rejected,
		"daily_rows", len(snap.Tables.Daily),
		"weekly_rows", len(snap.Tables.Weekly),
		"monthly_rows", len(snap.Tables.Monthly),
		"duration", time.Since(start),
	)
	return snap, nil
}

// readPeriods calls the source, retrying failures with exponential backoff.
func (p *Pipeline) readPeriods(ctx context.Context) ([]domain.RawPeriod, error) {
	backoff := p.initialBackoff
	var lastErr error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		periods, err := p.source.ReadPeriods(ctx)
		if err == nil {
			return periods, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p.logger.Warn("read periods failed", "attempt", attempt, "max_attempts", p.attempts, "error", err)
		if attempt == p.attempts {
			break
		}
		if !sleepWithContext(ctx, backoff) {
			return nil, ctx.Err()
		}
		backoff = nextBackoff(backoff, p.maxBackoff)
	}
	return nil, lastErr
}

func (p *Pipeline) observeIngest(ps domain.IngestStats) {
	p.metrics.RowsAccepted.Add(float64(ps.Accepted))
	for reason, n := range ps.Rejected {
		p.metrics.RowsRejected.WithLabelValues(string(reason)).Add(float64(n))
	}

	if rejected := ps.RejectedTotal(); rejected > 0 {
		p.logger.Warn("rows rejected",
			"period", ps.Period,
			"rejected", rejected,
			"accepted", ps.Accepted,
			"reasons", ps.Rejected,
		)
	}
	if ps.Accepted == 0 {
		p.metrics.PeriodsEmpty.Inc()
		p.logger.Info("period has no valid rows, skipping", "period", ps.Period, "rows", ps.Total)
	}
}

// publish hands the snapshot to the publisher. Failures are logged and
// counted; the snapshot is still served.
func (p *Pipeline) publish(ctx context.Context, snap *domain.Snapshot) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, snap); err != nil {
		p.metrics.PublishErrors.Inc()
		p.logger.Error("publish snapshot failed", "error", err)
		return
	}
	n := len(snap.Tables.Daily) + len(snap.Tables.Weekly) + len(snap.Tables.Monthly)
	p.metrics.RowsPublished.Add(float64(n))
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
