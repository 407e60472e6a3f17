// Package observability provides optional tracing and metrics hooks. Nothing is global: the
// host wires a Tracer and Metrics in, and the defaults do nothing.
package observability

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// InstrumentationName identifies this library's spans
const InstrumentationName = "github.com/damon-houk/currency-quote"

// Span is one timed unit of work. End must be called exactly once.
type Span interface {
	SetAttribute(key string, value interface{})
	End(err error)
}

// Tracer starts spans and propagates the active span in outbound request headers
type Tracer interface {
	Start(ctx context.Context, name string) (context.Context, Span)
	Inject(ctx context.Context, header http.Header)
}

// NopTracer discards everything
type NopTracer struct{}

// Start returns ctx unchanged and a span that records nothing
func (NopTracer) Start(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, nopSpan{}
}

// Inject writes nothing
func (NopTracer) Inject(context.Context, http.Header) {}

type nopSpan struct{}

func (nopSpan) SetAttribute(string, interface{}) {}
func (nopSpan) End(error)                        {}

// OtelTracer records spans through an OpenTelemetry tracer provider and propagates them with
// the W3C trace context headers
type OtelTracer struct {
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

// NewOtelTracer creates a tracer on provider. A nil provider records nothing but still
// propagates any span context already present in ctx.
func NewOtelTracer(provider trace.TracerProvider) *OtelTracer {
	if provider == nil {
		provider = noop.NewTracerProvider()
	}
	return &OtelTracer{
		tracer:     provider.Tracer(InstrumentationName),
		propagator: propagation.TraceContext{},
	}
}

// Start opens a child span of the active span, or a new trace when there is none
func (t *OtelTracer) Start(ctx context.Context, name string) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name)
	return ctx, &otelSpan{span: span}
}

// Inject writes the active span as a traceparent header
func (t *OtelTracer) Inject(ctx context.Context, header http.Header) {
	t.propagator.Inject(ctx, propagation.HeaderCarrier(header))
}

type otelSpan struct {
	span trace.Span
}

func (s *otelSpan) SetAttribute(key string, value interface{}) {
	s.span.SetAttributes(toAttribute(key, value))
}

func (s *otelSpan) End(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	}
	s.span.End()
}

func toAttribute(key string, value interface{}) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case float64:
		return attribute.Float64(key, v)
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}
