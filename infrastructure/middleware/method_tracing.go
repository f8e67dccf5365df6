package middleware

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-mcdm/internal/domain"
	"github.com/ahrav/go-mcdm/internal/ports"
)

// TracerName is the instrumentation name used when no tracer is supplied.
const TracerName = "github.com/ahrav/go-mcdm/methods"

// tracedMethod runs a method inside an OpenTelemetry span.
type tracedMethod struct {
	next   ports.Method
	tracer trace.Tracer
}

// TracingMiddleware creates middleware that wraps every execution in a
// span carrying the method name, matrix dimensions and best alternative.
// A nil tracer uses the global tracer provider.
func TracingMiddleware(tracer trace.Tracer) Middleware {
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	return func(next ports.Method) ports.Method {
		return &tracedMethod{
			next:   next,
			tracer: tracer,
		}
	}
}

func (t *tracedMethod) Name() string    { return t.next.Name() }
func (t *tracedMethod) Validate() error { return t.next.Validate() }

// Execute runs the wrapped method within a span.
func (t *tracedMethod) Execute(ctx context.Context, dm *domain.DecisionMatrix) (*domain.Result, error) {
	attrs := []attribute.KeyValue{attribute.String("mcdm.method", t.next.Name())}
	if dm != nil {
		attrs = append(attrs,
			attribute.Int("mcdm.alternatives", dm.NumAlternatives()),
			attribute.Int("mcdm.criteria", dm.NumCriteria()),
		)
	}
	ctx, span := t.tracer.Start(ctx, "mcdm.Method.Execute", trace.WithAttributes(attrs...))
	defer span.End()

	result, err := t.next.Execute(ctx, dm)
	if err != nil {
		span.RecordError(err)
		var ce *domain.ConsistencyError
		if errors.As(err, &ce) {
			span.AddEvent("consistency.exceeded", trace.WithAttributes(
				attribute.String("matrix", ce.Matrix),
				attribute.Float64("ratio", ce.Ratio),
				attribute.Float64("threshold", ce.Threshold),
			))
		}
		span.SetAttributes(attribute.String("mcdm.status", Status(err)))
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}

	best := result.Best()
	span.SetAttributes(
		attribute.String("mcdm.status", StatusSuccess),
		attribute.String("mcdm.best", best.Alternative.Name),
		attribute.Float64("mcdm.best.score", best.Score),
	)
	span.SetStatus(codes.Ok, "")
	return result, nil
}
