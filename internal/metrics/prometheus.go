package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/seiche/crossfold/types"
)

// PrometheusCollector implements types.MetricsCollector backed by
// Prometheus.
//
// Metric families are registered lazily on first use so that constructing
// the collector never panics on duplicate registration in tests that
// share a registry but never record.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	foldAssignments  *prometheus.CounterVec
	splitErrors      prometheus.Counter
	trainingDuration *prometheus.HistogramVec
	foldMetric       *prometheus.GaugeVec
	evalDuration     prometheus.Histogram
}

var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer (prometheus.DefaultRegisterer if nil)
//   - namespace: Metrics namespace ("crossfold" if empty)
//
// Returns:
//   - *PrometheusCollector: Collector ready to be passed to WithMetrics
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "crossfold"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.foldAssignments = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "split",
			Name:      "fold_assignments_total",
			Help:      "Total records assigned per fold.",
		}, []string{"fold"})

		p.splitErrors = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "split",
			Name:      "errors_total",
			Help:      "Total failed fold assignments.",
		})

		p.trainingDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "training",
			Name:      "fold_duration_seconds",
			Help:      "Wall time of one fold training by method and fold.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2.5, 12), // 10ms .. ~10m
		}, []string{"method", "fold"})

		p.foldMetric = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "training",
			Name:      "fold_metric",
			Help:      "Holdout metric of the last evaluation by method and fold.",
		}, []string{"method", "fold"})

		p.evalDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "evaluation",
			Name:      "duration_seconds",
			Help:      "Wall time of full cross-validation runs.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2.5, 12),
		})

		p.reg.MustRegister(p.foldAssignments)
		p.reg.MustRegister(p.splitErrors)
		p.reg.MustRegister(p.trainingDuration)
		p.reg.MustRegister(p.foldMetric)
		p.reg.MustRegister(p.evalDuration)
	})
}

// RecordFoldAssignment increments the assignment counter of the fold.
func (p *PrometheusCollector) RecordFoldAssignment(fold int) {
	p.ensureRegistered()
	p.foldAssignments.WithLabelValues(strconv.Itoa(fold)).Inc()
}

// RecordSplitError increments the failed-assignment counter.
func (p *PrometheusCollector) RecordSplitError() {
	p.ensureRegistered()
	p.splitErrors.Inc()
}

// RecordFoldTrainingDuration observes one fold training duration.
func (p *PrometheusCollector) RecordFoldTrainingDuration(method string, fold int, seconds float64) {
	p.ensureRegistered()
	p.trainingDuration.WithLabelValues(method, strconv.Itoa(fold)).Observe(seconds)
}

// RecordFoldMetric sets the holdout metric gauge of the fold.
func (p *PrometheusCollector) RecordFoldMetric(method string, fold int, value float64) {
	p.ensureRegistered()
	p.foldMetric.WithLabelValues(method, strconv.Itoa(fold)).Set(value)
}

// RecordEvaluationDuration observes one full Evaluate duration.
func (p *PrometheusCollector) RecordEvaluationDuration(seconds float64) {
	p.ensureRegistered()
	p.evalDuration.Observe(seconds)
}
