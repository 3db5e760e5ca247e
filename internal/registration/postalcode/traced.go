package postalcode

import (
	"context"

	"signup/internal/platform/tracer"
)

// Traced emits one span per lookup.
type Traced struct {
	next   Client
	tracer tracer.Tracer
}

func NewTraced(next Client, t tracer.Tracer) *Traced {
	if t == nil {
		t = tracer.NewNoop()
	}
	return &Traced{next: next, tracer: t}
}

func (t *Traced) Lookup(ctx context.Context, postalCode string) Result {
	ctx, span := t.tracer.Start(ctx, tracer.SpanPostalCodeLookup, tracer.String(tracer.AttrPostalCode, postalCode))
	res := t.next.Lookup(ctx, postalCode)
	span.SetAttributes(
		tracer.String(tracer.AttrLookupStatus, string(res.Status)),
		tracer.Bool(tracer.AttrCacheHit, res.Cached),
	)
	span.End(res.Err)
	return res
}
