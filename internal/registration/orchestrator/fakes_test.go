package orchestrator_test

import (
	"context"
	"sync/atomic"
	"time"

	"signup/internal/registration/postalcode"
)

// gatedLookups holds every call until the test replies to it.
type gatedLookups struct {
	calls chan *gatedCall
}

type gatedCall struct {
	code  string
	ctx   context.Context
	reply chan postalcode.Result
}

func newGatedLookups() *gatedLookups {
	return &gatedLookups{calls: make(chan *gatedCall, 16)}
}

func (g *gatedLookups) Lookup(ctx context.Context, code string) postalcode.Result {
	call := &gatedCall{code: code, ctx: ctx, reply: make(chan postalcode.Result, 1)}
	g.calls <- call
	select {
	case res := <-call.reply:
		return res
	case <-ctx.Done():
		return postalcode.TransportFailure(ctx.Err())
	}
}

// next returns the next issued call, or nil after a short wait.
func (g *gatedLookups) next() *gatedCall {
	select {
	case c := <-g.calls:
		return c
	case <-time.After(time.Second):
		return nil
	}
}

func (g *gatedLookups) pending() int {
	return len(g.calls)
}

// countingLookups answers every call immediately with the same result.
type countingLookups struct {
	result postalcode.Result
	calls  atomic.Int32
	codes  chan string
}

func newCountingLookups(res postalcode.Result) *countingLookups {
	return &countingLookups{result: res, codes: make(chan string, 16)}
}

func (c *countingLookups) Lookup(_ context.Context, code string) postalcode.Result {
	c.calls.Add(1)
	c.codes <- code
	return c.result
}
