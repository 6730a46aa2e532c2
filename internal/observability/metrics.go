package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// verification pipeline.
type Metrics struct {
	RunsTotal         *prometheus.CounterVec // labels: outcome={success,schema_error,empty_registry}
	RunDuration       prometheus.Histogram
	RecordsNormalized prometheus.Counter
	RecordsDropped    *prometheus.CounterVec // labels: reason={header_echo,no_consent}
	Classifications   *prometheus.CounterVec // labels: status
	RegistrySites     prometheus.Gauge

	// Workbook export metrics.
	WorkbookBytes prometheus.Histogram

	// Kafka sink metrics.
	SinkPublished prometheus.Counter
	SinkErrors    prometheus.Counter
	SinkEnabled   prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.RecordsNormalized,
		m.RecordsDropped,
		m.Classifications,
		m.RegistrySites,
		m.WorkbookBytes,
		m.SinkPublished,
		m.SinkErrors,
		m.SinkEnabled,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geofence",
			Name:      "runs_total",
			Help:      "Verification runs by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "geofence",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete normalize-classify-aggregate run.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}),
		RecordsNormalized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "geofence",
			Name:      "records_normalized_total",
			Help:      "Attendance rows that survived normalization.",
		}),
		RecordsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geofence",
			Name:      "records_dropped_total",
			Help:      "Attendance rows dropped during normalization, by reason.",
		}, []string{"reason"}),
		Classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geofence",
			Name:      "classifications_total",
			Help:      "Classified records by verification status.",
		}, []string{"status"}),
		RegistrySites: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "geofence",
			Name:      "registry_sites",
			Help:      "Site count in the most recently built registry.",
		}),
		WorkbookBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "geofence",
			Name:      "workbook_bytes",
			Help:      "Size of exported workbooks in bytes.",
			Buckets:   prometheus.ExponentialBuckets(4096, 4, 8),
		}),
		SinkPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "geofence",
			Name:      "sink_published_total",
			Help:      "Classified records published to the Kafka sink.",
		}),
		SinkErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "geofence",
			Name:      "sink_errors_total",
			Help:      "Failed publishes to the Kafka sink.",
		}),
		SinkEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "geofence",
			Name:      "sink_enabled",
			Help:      "1 when the Kafka sink is enabled, 0 otherwise.",
		}),
	}
}
