package order

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidQuantity = errors.New("quantity must be at least 2 kilograms")
	ErrInvalidMaterial = errors.New("unknown material type")
	ErrUnknownStatus   = errors.New("unknown order status")
	ErrConflict        = errors.New("order was modified concurrently, retry")
)

// InvalidTransitionError reports an illegal state change together with the
// set of transitions that would have been legal.
type InvalidTransitionError struct {
	From    Status
	To      Status
	Allowed []Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s (allowed: %v)", e.From, e.To, e.Allowed)
}

func newInvalidTransition(from, to Status) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to, Allowed: AllowedNext(from)}
}
