package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and adapters return these
// (optionally wrapped) so services can translate them into domain errors once.
//
//   - ErrNotFound: entity does not exist in store
//   - ErrExpired: entity outlived its TTL
//   - ErrInvalidState: entity in wrong state for requested operation
//   - ErrUnavailable: dependency temporarily unavailable
var (
	ErrNotFound     = errors.New("not found")
	ErrExpired      = errors.New("expired")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
