package orders

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingOrder is returned when the request carries no order (absent, null or falsy).
	ErrMissingOrder = errors.New("missing order")
	// ErrMalformedOrder is returned when the order is present but is not a JSON object.
	ErrMalformedOrder = errors.New("malformed order")
)

// ValidationError reports a violated precondition on the inbound order.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }
