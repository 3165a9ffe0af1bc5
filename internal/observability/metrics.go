package observability

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the ingestion counters.
type Metrics struct {
	FilesSeen        *prometheus.CounterVec // labels: kind={text,image,unrecognized}
	FilesSkipped     prometheus.Counter
	BulletinsDecoded *prometheus.CounterVec // labels: report_type
	Unsupported      prometheus.Counter
	DecodeFailures   *prometheus.CounterVec // labels: stage={bulletin,decode,store,action}
	RecoveredGroups  *prometheus.CounterVec // labels: report_type
	DecodeDuration   prometheus.Histogram
	WatcherRunning   prometheus.Gauge
}

const namespace = "emwin"

func newMetrics() *Metrics {
	return &Metrics{
		FilesSeen: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_seen_total",
			Help:      "Input files picked up by the watcher, by kind.",
		}, []string{"kind"}),
		FilesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_skipped_total",
			Help:      "Input files skipped because the ledger already holds them.",
		}),
		BulletinsDecoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulletins_decoded_total",
			Help:      "Bulletins decoded into a report, by report type.",
		}, []string{"report_type"}),
		Unsupported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulletins_unsupported_total",
			Help:      "Bulletins with no decoder for their designator.",
		}),
		DecodeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Processing failures by stage.",
		}, []string{"stage"}),
		RecoveredGroups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recovered_groups_total",
			Help:      "Groups or items skipped by recovery, by report type.",
		}, []string{"report_type"}),
		DecodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "decode_duration_seconds",
			Help:      "Time from reading a file to storing its report.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		WatcherRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "watcher_running",
			Help:      "1 while the directory watcher is active.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.FilesSeen,
		m.FilesSkipped,
		m.BulletinsDecoded,
		m.Unsupported,
		m.DecodeFailures,
		m.RecoveredGroups,
		m.DecodeDuration,
		m.WatcherRunning,
	}
}

// NewMetrics creates the metrics and registers them with the default registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting registers the metrics with a fresh registry so tests
// can create them repeatedly.
func NewMetricsForTesting() (*Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	m := newMetrics()
	reg.MustRegister(m.collectors()...)
	return m, reg
}
