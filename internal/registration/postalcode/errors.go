package postalcode

import "errors"

// Causes carried by TransportError results.
var (
	ErrCircuitOpen       = errors.New("postal code lookup circuit open")
	ErrTimeout           = errors.New("postal code lookup timed out")
	ErrUpstreamStatus    = errors.New("unexpected upstream status")
	ErrMalformedResponse = errors.New("malformed upstream response")
)
