package tracer

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "signup"

// OTelTracer adapts an OpenTelemetry tracer to Tracer. Spans whose name starts
// with a client prefix (outbound calls such as postal-code lookups) are
// started with SpanKindClient, the rest as internal spans.
type OTelTracer struct {
	tracer         trace.Tracer
	clientPrefixes []string
}

type OTelOption func(*OTelTracer)

// WithOTelTracer injects a preconfigured OpenTelemetry tracer.
func WithOTelTracer(t trace.Tracer) OTelOption {
	return func(o *OTelTracer) {
		o.tracer = t
	}
}

// WithClientSpans marks span names with any of the prefixes as outbound calls.
func WithClientSpans(prefixes ...string) OTelOption {
	return func(o *OTelTracer) {
		o.clientPrefixes = append(o.clientPrefixes, prefixes...)
	}
}

// NewOTel uses the global tracer provider unless WithOTelTracer is given.
// Postal-code lookups are client spans by default.
func NewOTel(opts ...OTelOption) *OTelTracer {
	t := &OTelTracer{clientPrefixes: []string{"postalcode."}}
	for _, opt := range opts {
		opt(t)
	}
	if t.tracer == nil {
		t.tracer = otel.Tracer(instrumentationName)
	}
	return t
}

func (t *OTelTracer) Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name,
		trace.WithSpanKind(t.kindOf(name)),
		trace.WithAttributes(keyValues(attrs)...),
	)
	return ctx, otelSpan{span: span}
}

func (t *OTelTracer) kindOf(name string) trace.SpanKind {
	for _, p := range t.clientPrefixes {
		if strings.HasPrefix(name, p) {
			return trace.SpanKindClient
		}
	}
	return trace.SpanKindInternal
}

type otelSpan struct {
	span trace.Span
}

func (s otelSpan) End(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}

func (s otelSpan) SetAttributes(attrs ...Attribute) {
	s.span.SetAttributes(keyValues(attrs)...)
}

func (s otelSpan) AddEvent(name string, attrs ...Attribute) {
	s.span.AddEvent(name, trace.WithAttributes(keyValues(attrs)...))
}

func keyValues(attrs []Attribute) []attribute.KeyValue {
	if len(attrs) == 0 {
		return nil
	}
	kvs := make([]attribute.KeyValue, 0, len(attrs))
	for _, a := range attrs {
		if kv, ok := a.keyValue(); ok {
			kvs = append(kvs, kv)
		}
	}
	return kvs
}

// keyValue converts a to its OpenTelemetry form; unsupported value types are dropped.
func (a Attribute) keyValue() (attribute.KeyValue, bool) {
	key := attribute.Key(a.Key)
	switch v := a.Value.(type) {
	case string:
		return key.String(v), true
	case bool:
		return key.Bool(v), true
	case int:
		return key.Int(v), true
	case int64:
		return key.Int64(v), true
	case float64:
		return key.Float64(v), true
	case []string:
		return key.StringSlice(v), true
	}
	return attribute.KeyValue{}, false
}

var (
	_ Tracer = (*OTelTracer)(nil)
	_ Span   = otelSpan{}
)
