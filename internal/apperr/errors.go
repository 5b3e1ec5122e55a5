package apperr

import "errors"

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrConflict indicates a uniqueness or state conflict (HTTP 409).
var ErrConflict = errors.New("conflict")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyAssigned is returned when a claim loses to another driver's
// active assignment.
var ErrAlreadyAssigned = errors.New("already assigned to another driver")

// ErrOutOfRange is returned when the destination is beyond the delivery radius.
var ErrOutOfRange = errors.New("destination out of delivery range")

// ErrNoRateConfigured is returned when no active rate covers the distance.
var ErrNoRateConfigured = errors.New("no shipping rate configured for distance")

// ErrBelowMinimum is returned when the subtotal is under the checkout minimum.
var ErrBelowMinimum = errors.New("subtotal below minimum order amount")

// ErrStaleEvent marks a replayed or out-of-order gateway event. It is logged
// and dropped, never surfaced to the gateway.
var ErrStaleEvent = errors.New("stale payment event")

// ErrUpstreamTimeout indicates that an external collaborator did not answer
// within its deadline.
var ErrUpstreamTimeout = errors.New("upstream timeout")
