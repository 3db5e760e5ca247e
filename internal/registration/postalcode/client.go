// Package postalcode resolves Brazilian postal codes (CEP) to address data.
//
// Clients never return an error past their boundary: every call yields a
// Result whose Status is Found, NotFound or TransportError.
package postalcode

import (
	"context"

	"signup/internal/registration/models"
	s "signup/pkg/string"
)

//go:generate mockgen -source=client.go -destination=mocks/client_mock.go -package=mocks

// Status classifies a lookup outcome.
type Status string

const (
	StatusFound          Status = "found"
	StatusNotFound       Status = "not_found"
	StatusTransportError Status = "transport_error"
)

// Result is the outcome of one lookup. Address is set only for StatusFound,
// Err only for StatusTransportError. Cached marks results served from cache.
type Result struct {
	Status  Status
	Address models.AddressRecord
	Err     error
	Cached  bool
}

func Found(addr models.AddressRecord) Result {
	return Result{Status: StatusFound, Address: addr}
}

func NotFound() Result {
	return Result{Status: StatusNotFound}
}

func TransportFailure(err error) Result {
	return Result{Status: StatusTransportError, Err: err}
}

// Client looks up the address for an 8-digit postal code. Callers check
// eligibility; implementations do not.
type Client interface {
	Lookup(ctx context.Context, postalCode string) Result
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, postalCode string) Result

func (f ClientFunc) Lookup(ctx context.Context, postalCode string) Result {
	return f(ctx, postalCode)
}

// Normalize strips everything but digits.
func Normalize(raw string) string {
	return s.DigitsOnly(raw)
}

// Eligible reports whether raw carries exactly eight digits once normalized.
func Eligible(raw string) bool {
	return len(Normalize(raw)) == 8
}
