package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements Collector backed by Prometheus.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	iterations      prometheus.Gauge
	distinctDraws   prometheus.Gauge
	topCount        prometheus.Gauge
	selectLatency   prometheus.Histogram
	checkpointSaves prometheus.Counter
	writerErrors    *prometheus.CounterVec
}

// Compile-time assertion that PrometheusCollector implements Collector.
var _ Collector = (*PrometheusCollector)(nil)

// NewPrometheus creates a Prometheus-backed collector.
// A nil registerer uses prometheus.DefaultRegisterer; an empty namespace uses "drawspectra".
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "drawspectra"
	}
	p := &PrometheusCollector{reg: reg, namespace: namespace}
	p.ensureRegistered()
	return p
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.iterations = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "simulation",
			Name:      "iterations",
			Help:      "Current value of the simulation iteration counter.",
		})
		p.distinctDraws = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "simulation",
			Name:      "distinct_draws",
			Help:      "Number of distinct draws in the frequency table.",
		})
		p.topCount = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "topk",
			Name:      "max_count",
			Help:      "Occurrence count of the most frequent draw.",
		})
		p.selectLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "topk",
			Name:      "selection_seconds",
			Help:      "Latency of one top-k recomputation in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14), // 100us .. ~1.6s
		})
		p.checkpointSaves = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "checkpoint",
			Name:      "saves_total",
			Help:      "Total successful checkpoint writes.",
		})
		p.writerErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "history",
			Name:      "write_errors_total",
			Help:      "Total failed history writes by writer type.",
		}, []string{"writer"})

		p.reg.MustRegister(
			p.iterations,
			p.distinctDraws,
			p.topCount,
			p.selectLatency,
			p.checkpointSaves,
			p.writerErrors,
		)
	})
}

func (p *PrometheusCollector) ObserveProgress(iteration uint64, distinct int) {
	p.iterations.Set(float64(iteration))
	p.distinctDraws.Set(float64(distinct))
}

func (p *PrometheusCollector) ObserveSelection(d time.Duration) {
	p.selectLatency.Observe(d.Seconds())
}

func (p *PrometheusCollector) ObserveTopCount(count uint64) {
	p.topCount.Set(float64(count))
}

func (p *PrometheusCollector) IncCheckpointSaves() {
	p.checkpointSaves.Inc()
}

func (p *PrometheusCollector) IncWriterErrors(writer string) {
	p.writerErrors.WithLabelValues(writer).Inc()
}
