// Package tracer is a narrow tracing abstraction so lookup code can emit spans
// without importing OpenTelemetry everywhere.
//
// Implementations:
//   - NoopTracer: tests and local runs
//   - OTelTracer: OpenTelemetry adapter
package tracer

import (
	"context"
	"time"
)

// Span is an active trace span. End must be called exactly once.
type Span interface {
	// End completes the span; a non-nil err marks it failed.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration records value in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names.
const (
	SpanPostalCodeLookup   = "postalcode.lookup"
	SpanRegistrationSubmit = "registration.submit"
)

// Attribute keys.
const (
	AttrPostalCode   = "postal_code"
	AttrLookupStatus = "lookup.status"
	AttrCacheHit     = "cache.hit"
	AttrOutcome      = "registration.outcome"
)
