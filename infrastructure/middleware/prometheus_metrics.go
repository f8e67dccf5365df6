// Package middleware provides cross-cutting concerns for the ranking
// methods: Prometheus metrics and OpenTelemetry tracing.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-mcdm/internal/ports"
)

// Metric names understood by PrometheusMetrics.
const (
	MetricExecutions       = "method_executions_total"
	MetricExecuteLatency   = "method_execute"
	MetricAlternatives     = "alternatives"
	MetricCriteria         = "criteria"
	MetricScore            = "score"
	MetricConsistencyRatio = "consistency_ratio"
)

// PrometheusMetrics implements the MetricsCollector interface using Prometheus.
// It tracks method execution counts and latency, the size of the matrices
// being ranked, and the distribution of scores and consistency ratios.
type PrometheusMetrics struct {
	executions       *prometheus.CounterVec
	executionLatency *prometheus.HistogramVec
	operationCounter *prometheus.CounterVec
	systemGauges     *prometheus.GaugeVec
	scores           *prometheus.HistogramVec
	consistency      *prometheus.HistogramVec
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance and registers
// all required metrics with reg. A nil reg registers with the default
// Prometheus registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		executions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mcdm_method_executions_total",
				Help: "Total number of ranking method executions by outcome.",
			},
			[]string{"method", "status"},
		),
		executionLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mcdm_method_duration_seconds",
				Help:    "Execution time of ranking method operations.",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"operation", "method"},
		),
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mcdm_operations_total",
				Help: "Total number of auxiliary operations such as comparisons and problem loads.",
			},
			[]string{"operation", "method"},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mcdm_matrix_state",
				Help: "Dimensions of the most recently ranked decision matrix.",
			},
			[]string{"metric", "method"},
		),
		scores: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mcdm_method_score",
				Help:    "Distribution of the scores produced by ranking methods.",
				Buckets: prometheus.LinearBuckets(-1, 0.25, 9),
			},
			[]string{"method"},
		),
		consistency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mcdm_consistency_ratio",
				Help:    "Consistency ratios of pairwise comparison matrices.",
				Buckets: []float64{0.01, 0.025, 0.05, 0.075, 0.1, 0.2, 0.5, 1},
			},
			[]string{"method"},
		),
	}
}

// methodLabel returns the method label, defaulting to "unknown".
func methodLabel(labels map[string]string) string {
	if m, ok := labels["method"]; ok && m != "" {
		return m
	}
	return "unknown"
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	pm.executionLatency.WithLabelValues(operation, methodLabel(labels)).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	method := methodLabel(labels)

	switch metric {
	case MetricExecutions:
		status := labels["status"]
		if status == "" {
			status = "success"
		}
		pm.executions.WithLabelValues(method, status).Add(value)
	default:
		pm.operationCounter.WithLabelValues(metric, method).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	pm.systemGauges.WithLabelValues(metric, methodLabel(labels)).Set(value)
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in a Prometheus histogram. Unknown metrics are routed to the
// latency histogram under their own operation name.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	method := methodLabel(labels)

	switch metric {
	case MetricScore:
		pm.scores.WithLabelValues(method).Observe(value)
	case MetricConsistencyRatio:
		pm.consistency.WithLabelValues(method).Observe(value)
	default:
		pm.executionLatency.WithLabelValues(metric, method).Observe(value)
	}
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
