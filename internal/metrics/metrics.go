package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "surveyhub"

// Metrics holds the service collectors. A nil *Metrics is a valid no-op recorder.
type Metrics struct {
	syncRuns      *prometheus.CounterVec
	syncDuration  prometheus.Histogram
	documents     prometheus.Counter
	fetchDuration *prometheus.HistogramVec
	fetchFailures *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
}

// New registers the collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		syncRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "Sync runs by outcome.",
		}, []string{"status"}),
		syncDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Duration of sync runs that fetched and reconciled data.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		documents: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_reconciled_total",
			Help:      "Respondent documents produced by reconciliation.",
		}),
		fetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_fetch_duration_seconds",
			Help:      "Duration of source feed fetches.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		fetchFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_fetch_failures_total",
			Help:      "Failed source feed fetches.",
		}, []string{"source"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
	}
}

func (m *Metrics) SyncRun(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.syncRuns.WithLabelValues(status).Inc()
	if elapsed > 0 {
		m.syncDuration.Observe(elapsed.Seconds())
	}
}

func (m *Metrics) DocumentsReconciled(n int) {
	if m == nil {
		return
	}
	m.documents.Add(float64(n))
}

// SourceFetch records one feed fetch; err marks it failed
func (m *Metrics) SourceFetch(source string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.fetchDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	if err != nil {
		m.fetchFailures.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) HTTPRequest(route, method string, code int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
}
