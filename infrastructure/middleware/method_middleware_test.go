package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-mcdm/infrastructure/methods"
	"github.com/ahrav/go-mcdm/internal/domain"
	"github.com/ahrav/go-mcdm/internal/ports"
)

// mockMetricsCollector records every call for assertions.
type mockMetricsCollector struct {
	mu         sync.Mutex
	latencies  map[string][]time.Duration
	counters   map[string]float64
	gauges     map[string]float64
	histograms map[string][]float64
	statuses   []string
}

func newMockMetricsCollector() *mockMetricsCollector {
	return &mockMetricsCollector{
		latencies:  make(map[string][]time.Duration),
		counters:   make(map[string]float64),
		gauges:     make(map[string]float64),
		histograms: make(map[string][]float64),
	}
}

func (m *mockMetricsCollector) RecordLatency(op string, d time.Duration, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencies[op] = append(m.latencies[op], d)
}

func (m *mockMetricsCollector) RecordCounter(metric string, v float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[metric] += v
	m.statuses = append(m.statuses, labels["status"])
}

func (m *mockMetricsCollector) RecordGauge(metric string, v float64, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[metric] = v
}

func (m *mockMetricsCollector) RecordHistogram(metric string, v float64, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histograms[metric] = append(m.histograms[metric], v)
}

func testMatrix(t *testing.T) *domain.DecisionMatrix {
	t.Helper()
	m, err := domain.NewDecisionMatrix(
		[]domain.Alternative{{Name: "north"}, {Name: "south"}, {Name: "east"}},
		[]domain.Criterion{
			domain.MustCriterion("capacity", domain.Benefit, ""),
			domain.MustCriterion("cost", domain.Cost, ""),
		},
		[][]float64{{100, 10}, {200, 5}, {150, 20}},
		[]float64{1, 1},
	)
	require.NoError(t, err)
	return m
}

func newTOPSIS(t *testing.T) ports.Method {
	t.Helper()
	m, err := methods.NewTOPSIS(methods.NameTOPSIS, methods.DefaultTOPSISConfig())
	require.NoError(t, err)
	return m
}

func newAHP(t *testing.T) ports.Method {
	t.Helper()
	m, err := methods.NewAHP(methods.NameAHP, methods.DefaultAHPConfig())
	require.NoError(t, err)
	return m
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: StatusSuccess},
		{name: "canceled", err: context.Canceled, want: StatusCanceled},
		{name: "validation", err: domain.NewValidationError("m"), want: StatusValidation},
		{
			name: "consistency",
			err:  domain.NewMethodExecutionError("AHP", &domain.ConsistencyError{Matrix: "criteria"}),
			want: StatusConsistency,
		},
		{name: "execution", err: domain.NewMethodExecutionError("X", errors.New("boom")), want: StatusExecution},
		{name: "other", err: errors.New("boom"), want: StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestMetricsMiddleware_Success(t *testing.T) {
	collector := newMockMetricsCollector()
	method := MetricsMiddleware(collector)(newTOPSIS(t))

	assert.Equal(t, methods.NameTOPSIS, method.Name())
	assert.NoError(t, method.Validate())

	result, err := method.Execute(context.Background(), testMatrix(t))
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Len(t, collector.latencies[MetricExecuteLatency], 1)
	assert.Equal(t, 1.0, collector.counters[MetricExecutions])
	assert.Equal(t, []string{StatusSuccess}, collector.statuses)
	assert.Equal(t, 3.0, collector.gauges[MetricAlternatives])
	assert.Equal(t, 2.0, collector.gauges[MetricCriteria])
	assert.Equal(t, result.Scores(), collector.histograms[MetricScore])
}

func TestMetricsMiddleware_Failure(t *testing.T) {
	collector := newMockMetricsCollector()
	method := MetricsMiddleware(collector)(newAHP(t))

	_, err := method.Execute(context.Background(), testMatrix(t))
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err), "errors pass through unchanged")

	assert.Equal(t, []string{StatusValidation}, collector.statuses)
	assert.Empty(t, collector.histograms[MetricScore])
}

func TestMetricsMiddleware_ConsistencyRatio(t *testing.T) {
	collector := newMockMetricsCollector()
	method := MetricsMiddleware(collector)(newAHP(t))

	m := testMatrix(t)
	m = domain.WithInput(m, domain.KeyPairwiseCriteria, [][]float64{{1, 3}, {1.0 / 3, 1}})
	m = domain.WithInput(m, domain.KeyPairwiseAlternatives, [][][]float64{
		{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}},
		{{1, 2, 4}, {0.5, 1, 2}, {0.25, 0.5, 1}},
	})

	_, err := method.Execute(context.Background(), m)
	require.NoError(t, err)
	require.Len(t, collector.histograms[MetricConsistencyRatio], 1)
	assert.InDelta(t, 0.0, collector.histograms[MetricConsistencyRatio][0], 1e-9)
}

func TestMetricsMiddleware_NilCollector(t *testing.T) {
	method := MetricsMiddleware(nil)(newTOPSIS(t))
	_, err := method.Execute(context.Background(), testMatrix(t))
	assert.NoError(t, err)
}

func TestChain_Order(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next ports.Method) ports.Method {
			order = append(order, name)
			return next
		}
	}

	method := Chain(newTOPSIS(t), tag("outer"), tag("inner"))
	assert.Equal(t, methods.NameTOPSIS, method.Name())
	assert.Equal(t, []string{"inner", "outer"}, order, "inner wraps first so outer is outermost")
}
