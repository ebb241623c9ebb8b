// Package metrics defines the Prometheus instrumentation of index builds.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Build results
const (
	ResultOK    = "ok"
	ResultError = "error"
	ResultEmpty = "empty"
)

// Metrics holds build metrics for direct instrumentation in the service layer.
type Metrics struct {
	Builds        *prometheus.CounterVec
	BuildErrors   *prometheus.CounterVec
	BuildDuration prometheus.Histogram
	FilesIndexed  prometheus.Histogram
	Episodes      prometheus.Histogram
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter
}

// New creates and registers build metrics with the given registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "torrentmap",
			Subsystem: "index",
			Name:      "builds_total",
			Help:      "Index builds by result.",
		}, []string{"result"}),
		BuildErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "torrentmap",
			Subsystem: "index",
			Name:      "build_errors_total",
			Help:      "Failed index builds by reason.",
		}, []string{"reason"}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "torrentmap",
			Subsystem: "index",
			Name:      "build_duration_seconds",
			Help:      "Duration of decode, extract and map of one torrent.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		FilesIndexed: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "torrentmap",
			Subsystem: "index",
			Name:      "files",
			Help:      "Files per indexed torrent after filtering.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		Episodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "torrentmap",
			Subsystem: "index",
			Name:      "episodes",
			Help:      "Episode keys per indexed torrent.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "torrentmap",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Record lookups served from memory.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "torrentmap",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Record lookups that went to the store.",
		}),
	}

	reg.MustRegister(
		m.Builds,
		m.BuildErrors,
		m.BuildDuration,
		m.FilesIndexed,
		m.Episodes,
		m.CacheHits,
		m.CacheMisses,
	)

	return m
}
