package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "grid_reliability"

// Metrics holds the Prometheus counters, histograms, and gauges for the pipeline.
type Metrics struct {
	PeriodsRead   prometheus.Counter
	PeriodsEmpty  prometheus.Counter
	RowsAccepted  prometheus.Counter
	RowsRejected  *prometheus.CounterVec // labels: reason
	SnapshotReady prometheus.Gauge

	// Refresh metrics.
	Refreshes       *prometheus.CounterVec // labels: outcome={success,source_error,no_data}
	RefreshDuration prometheus.Histogram
	MetricsRows     *prometheus.GaugeVec // labels: granularity

	// Output metrics.
	Queries       *prometheus.CounterVec // labels: granularity, outcome={hit,no_data,invalid}
	RowsPublished prometheus.Counter
	PublishErrors prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.PeriodsRead,
		m.PeriodsEmpty,
		m.RowsAccepted,
		m.RowsRejected,
		m.SnapshotReady,
		m.Refreshes,
		m.RefreshDuration,
		m.MetricsRows,
		m.Queries,
		m.RowsPublished,
		m.PublishErrors,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		PeriodsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "periods_read_total",
			Help:      "Total periods (worksheets) read from the data source.",
		}),
		PeriodsEmpty: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "periods_empty_total",
			Help:      "Total periods skipped because they had no valid rows.",
		}),
		RowsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_accepted_total",
			Help:      "Total outage rows that passed cleaning.",
		}),
		RowsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_rejected_total",
			Help:      "Outage rows dropped during cleaning, by reason.",
		}, []string{"reason"}),
		SnapshotReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_ready",
			Help:      "1 once a metrics snapshot has been computed, 0 before.",
		}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Snapshot refreshes by outcome.",
		}, []string{"outcome"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete read-ingest-aggregate pass.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		MetricsRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "metrics_rows",
			Help:      "Rows in the current metrics table, by granularity.",
		}, []string{"granularity"}),
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Metrics filter queries by granularity and outcome.",
		}, []string{"granularity", "outcome"}),
		RowsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_published_total",
			Help:      "Total metrics rows written to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Total failed attempts to publish a snapshot.",
		}),
	}
}
