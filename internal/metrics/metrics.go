// Package metrics exposes word count runs as Prometheus metrics. pmk is a
// short-lived CLI, so instead of serving /metrics the registry is written to
// a file for node_exporter's textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/conneroisu/prosemark/internal/errors"
	"github.com/conneroisu/prosemark/internal/wordcount"
)

// Namespace is the Prometheus namespace for all pmk metrics.
const Namespace = "pmk"

// Outcome labels for pmk_wordcount_runs_total.
const (
	OutcomeSuccess   = "success"
	OutcomeInvalidID = "invalid_id"
	OutcomeNotFound  = "not_found"
	OutcomeError     = "error"
)

// CacheStatsSource reports word counter cache effectiveness.
type CacheStatsSource interface {
	Stats() wordcount.CacheStats
}

// WordCountMetrics holds the metrics for word count runs on its own
// registry, so tests and the textfile output see nothing else.
type WordCountMetrics struct {
	Registry *prometheus.Registry

	Runs     *prometheus.CounterVec
	Duration prometheus.Histogram
	Words    prometheus.Gauge
	Nodes    prometheus.Gauge
	Skipped  prometheus.Gauge
}

// NewWordCountMetrics creates and registers word count metrics.
func NewWordCountMetrics() *WordCountMetrics {
	m := &WordCountMetrics{
		Registry: prometheus.NewRegistry(),

		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "wordcount",
			Name:      "runs_total",
			Help:      "Word count runs by outcome.",
		}, []string{"outcome"}),

		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "wordcount",
			Name:      "duration_seconds",
			Help:      "Time spent compiling and counting a subtree.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),

		Words: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "wordcount",
			Name:      "words",
			Help:      "Word count of the last successful run.",
		}),

		Nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "wordcount",
			Name:      "nodes",
			Help:      "Nodes that contributed text to the last successful run.",
		}),

		Skipped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "wordcount",
			Name:      "skipped_empty_nodes",
			Help:      "Empty nodes skipped in the last successful run.",
		}),
	}

	for _, outcome := range []string{OutcomeSuccess, OutcomeInvalidID, OutcomeNotFound, OutcomeError} {
		m.Runs.WithLabelValues(outcome)
	}

	m.Registry.MustRegister(m.Runs, m.Duration, m.Words, m.Nodes, m.Skipped)
	return m
}

// RegisterCache exports the hit and miss counters of a caching counter.
func (m *WordCountMetrics) RegisterCache(src CacheStatsSource) error {
	hits := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "wordcount",
		Name:      "cache_hits_total",
		Help:      "Word counter cache hits.",
	}, func() float64 { return float64(src.Stats().Hits) })

	misses := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "wordcount",
		Name:      "cache_misses_total",
		Help:      "Word counter cache misses.",
	}, func() float64 { return float64(src.Stats().Misses) })

	for _, c := range []prometheus.Collector{hits, misses} {
		if err := m.Registry.Register(c); err != nil {
			return errors.NewInternalError(errors.ErrCodeInternalError, "register cache metrics", err)
		}
	}
	return nil
}

// ObserveSuccess records a successful run.
func (m *WordCountMetrics) ObserveSuccess(words, nodes, skipped int, elapsed time.Duration) {
	m.Runs.WithLabelValues(OutcomeSuccess).Inc()
	m.Duration.Observe(elapsed.Seconds())
	m.Words.Set(float64(words))
	m.Nodes.Set(float64(nodes))
	m.Skipped.Set(float64(skipped))
}

// ObserveFailure records a failed run. The gauges keep their last good values.
func (m *WordCountMetrics) ObserveFailure(outcome string, elapsed time.Duration) {
	m.Runs.WithLabelValues(outcome).Inc()
	m.Duration.Observe(elapsed.Seconds())
}

// WriteTextfile writes every metric to path in the Prometheus text format.
// The file is replaced atomically.
func (m *WordCountMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return errors.WrapIO(err, errors.ErrCodeFileWrite, "write metrics file", path)
	}
	return nil
}

// Gather collects the current metric families.
func (m *WordCountMetrics) Gather() ([]*dto.MetricFamily, error) {
	return m.Registry.Gather()
}
