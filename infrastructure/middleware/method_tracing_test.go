package middleware

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/ahrav/go-mcdm/internal/domain"
)

// recordingTracer captures spans in memory.
type recordingTracer struct {
	embedded.Tracer

	mu    sync.Mutex
	spans []*recordingSpan
}

func (r *recordingTracer) Start(
	ctx context.Context, name string, opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	span := &recordingSpan{name: name, attrs: map[attribute.Key]attribute.Value{}}
	for _, kv := range cfg.Attributes() {
		span.attrs[kv.Key] = kv.Value
	}
	r.mu.Lock()
	r.spans = append(r.spans, span)
	r.mu.Unlock()
	return trace.ContextWithSpan(ctx, span), span
}

// recordingSpan implements trace.Span by storing what it is told.
type recordingSpan struct {
	embedded.Span

	name   string
	attrs  map[attribute.Key]attribute.Value
	events []string
	errs   []error
	code   codes.Code
	ended  bool
}

func (s *recordingSpan) End(...trace.SpanEndOption) { s.ended = true }

func (s *recordingSpan) AddEvent(name string, _ ...trace.EventOption) {
	s.events = append(s.events, name)
}

func (s *recordingSpan) AddLink(trace.Link) {}

func (s *recordingSpan) IsRecording() bool { return !s.ended }

func (s *recordingSpan) RecordError(err error, _ ...trace.EventOption) {
	s.errs = append(s.errs, err)
}

func (s *recordingSpan) SpanContext() trace.SpanContext { return trace.SpanContext{} }

func (s *recordingSpan) SetStatus(code codes.Code, _ string) { s.code = code }

func (s *recordingSpan) SetName(name string) { s.name = name }

func (s *recordingSpan) TracerProvider() trace.TracerProvider { return noop.NewTracerProvider() }

func (s *recordingSpan) SetAttributes(kv ...attribute.KeyValue) {
	for _, a := range kv {
		s.attrs[a.Key] = a.Value
	}
}

func TestTracingMiddleware_Success(t *testing.T) {
	tracer := &recordingTracer{}
	method := TracingMiddleware(tracer)(newTOPSIS(t))

	result, err := method.Execute(context.Background(), testMatrix(t))
	require.NoError(t, err)

	require.Len(t, tracer.spans, 1)
	span := tracer.spans[0]
	assert.Equal(t, "mcdm.Method.Execute", span.name)
	assert.True(t, span.ended)
	assert.Equal(t, codes.Ok, span.code)
	assert.Equal(t, "TOPSIS", span.attrs["mcdm.method"].AsString())
	assert.Equal(t, int64(3), span.attrs["mcdm.alternatives"].AsInt64())
	assert.Equal(t, int64(2), span.attrs["mcdm.criteria"].AsInt64())
	assert.Equal(t, result.Best().Alternative.Name, span.attrs["mcdm.best"].AsString())
	assert.Equal(t, StatusSuccess, span.attrs["mcdm.status"].AsString())
}

func TestTracingMiddleware_ConsistencyFailure(t *testing.T) {
	tracer := &recordingTracer{}
	method := TracingMiddleware(tracer)(newAHP(t))

	m := testMatrix(t)
	m = domain.WithInput(m, domain.KeyPairwiseCriteria, [][]float64{{1, 1}, {1, 1}})
	m = domain.WithInput(m, domain.KeyPairwiseAlternatives, [][][]float64{
		{{1, 9, 1.0 / 9}, {1.0 / 9, 1, 9}, {9, 1.0 / 9, 1}},
		{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}},
	})

	_, err := method.Execute(context.Background(), m)
	require.Error(t, err)

	require.Len(t, tracer.spans, 1)
	span := tracer.spans[0]
	assert.Equal(t, codes.Error, span.code)
	assert.Equal(t, []string{"consistency.exceeded"}, span.events)
	require.Len(t, span.errs, 1)
	assert.Equal(t, StatusConsistency, span.attrs["mcdm.status"].AsString())
}

func TestTracingMiddleware_DefaultTracer(t *testing.T) {
	method := TracingMiddleware(nil)(newTOPSIS(t))

	result, err := method.Execute(context.Background(), testMatrix(t))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 3}, result.Rankings())
}
