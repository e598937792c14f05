package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the ETL service.
type Metrics struct {
	// Sync run metrics
	SyncRuns     *prometheus.CounterVec
	SyncDuration *prometheus.HistogramVec
	LastSuccess  *prometheus.GaugeVec

	// Row metrics
	RowsUpserted *prometheus.CounterVec
	RowsSkipped  *prometheus.CounterVec

	// Feed metrics
	FeedRequests *prometheus.CounterVec
	FeedErrors   *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		SyncRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_runs_total",
				Help:      "Total sync runs by mode and outcome",
			},
			[]string{"mode", "status"},
		),
		SyncDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sync_duration_seconds",
				Help:      "Duration of sync runs in seconds",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"mode"},
		),
		LastSuccess: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful sync run",
			},
			[]string{"mode"},
		),
		RowsUpserted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_upserted_total",
				Help:      "Rows upserted by target table",
			},
			[]string{"table"},
		),
		RowsSkipped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_skipped_total",
				Help:      "Rows skipped during reconciliation",
			},
			[]string{"table", "reason"},
		),
		FeedRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "feed_requests_total",
				Help:      "Upstream feed fetches by feed name",
			},
			[]string{"feed"},
		),
		FeedErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "feed_errors_total",
				Help:      "Upstream feed failures by feed name",
			},
			[]string{"feed"},
		),
	}
}

// RecordRun records the outcome and duration of one sync run.
func (m *Metrics) RecordRun(mode, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.SyncRuns.WithLabelValues(mode, status).Inc()
	m.SyncDuration.WithLabelValues(mode).Observe(d.Seconds())
	if status == "ok" {
		m.LastSuccess.WithLabelValues(mode).SetToCurrentTime()
	}
}

// RecordRowsUpserted adds to the upserted-row counter for a table.
func (m *Metrics) RecordRowsUpserted(table string, n int) {
	if m == nil {
		return
	}
	m.RowsUpserted.WithLabelValues(table).Add(float64(n))
}

// RecordRowSkipped counts one skipped row.
func (m *Metrics) RecordRowSkipped(table, reason string) {
	if m == nil {
		return
	}
	m.RowsSkipped.WithLabelValues(table, reason).Inc()
}

// RecordFeedRequest counts one upstream fetch.
func (m *Metrics) RecordFeedRequest(feed string) {
	if m == nil {
		return
	}
	m.FeedRequests.WithLabelValues(feed).Inc()
}

// RecordFeedError counts one upstream failure.
func (m *Metrics) RecordFeedError(feed string) {
	if m == nil {
		return
	}
	m.FeedErrors.WithLabelValues(feed).Inc()
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
