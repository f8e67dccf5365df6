package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/ahrav/go-mcdm/internal/domain"
	"github.com/ahrav/go-mcdm/internal/ports"
)

// Middleware wraps a ports.Method with additional behavior.
type Middleware func(next ports.Method) ports.Method

// Chain applies middlewares to m so that the first middleware is the
// outermost wrapper.
func Chain(m ports.Method, middlewares ...Middleware) ports.Method {
	for i := len(middlewares) - 1; i >= 0; i-- {
		m = middlewares[i](m)
	}
	return m
}

// Execution status label values.
const (
	StatusSuccess     = "success"
	StatusValidation  = "validation_error"
	StatusConsistency = "consistency_error"
	StatusExecution   = "execution_error"
	StatusCanceled    = "canceled"
	StatusError       = "error"
)

// Status classifies the outcome of a method execution for metrics and
// logging.
func Status(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return StatusCanceled
	case domain.IsValidationError(err):
		return StatusValidation
	case domain.IsConsistencyError(err):
		return StatusConsistency
	case domain.IsExecutionError(err):
		return StatusExecution
	default:
		return StatusError
	}
}

// metricsMethod records execution metrics around a method.
type metricsMethod struct {
	next      ports.Method
	collector ports.MetricsCollector
}

// MetricsMiddleware creates middleware that records execution counts,
// latency, matrix dimensions, and score distributions.
func MetricsMiddleware(collector ports.MetricsCollector) Middleware {
	return func(next ports.Method) ports.Method {
		return &metricsMethod{
			next:      next,
			collector: collector,
		}
	}
}

func (m *metricsMethod) Name() string    { return m.next.Name() }
func (m *metricsMethod) Validate() error { return m.next.Validate() }

// Execute runs the wrapped method and records its metrics.
func (m *metricsMethod) Execute(ctx context.Context, dm *domain.DecisionMatrix) (*domain.Result, error) {
	start := time.Now()
	result, err := m.next.Execute(ctx, dm)

	if m.collector == nil {
		return result, err
	}

	labels := map[string]string{
		"method": m.next.Name(),
		"status": Status(err),
	}
	m.collector.RecordLatency(MetricExecuteLatency, time.Since(start), labels)
	m.collector.RecordCounter(MetricExecutions, 1, labels)

	if err != nil {
		var ce *domain.ConsistencyError
		if errors.As(err, &ce) {
			m.collector.RecordHistogram(MetricConsistencyRatio, ce.Ratio, labels)
		}
		return result, err
	}

	m.collector.RecordGauge(MetricAlternatives, float64(dm.NumAlternatives()), labels)
	m.collector.RecordGauge(MetricCriteria, float64(dm.NumCriteria()), labels)
	for _, s := range result.Scores() {
		m.collector.RecordHistogram(MetricScore, s, labels)
	}
	if cr, ok := domain.Get(result.Diagnostics(), domain.KeyConsistencyRatio); ok {
		m.collector.RecordHistogram(MetricConsistencyRatio, cr, labels)
	}
	return result, nil
}
