package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFlightNotFound    = errors.New("flight not found")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrSeatsUnavailable  = errors.New("not enough available seats")
	ErrNotCancellable    = errors.New("booking cannot be cancelled")
	ErrFlightNotBookable = errors.New("flight is not open for booking")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every offending field from input validation so the
// caller can fix all of them in one round trip.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type PaymentDeclinedError struct {
	Reason string
}

func (e *PaymentDeclinedError) Error() string {
	return fmt.Sprintf("payment declined: %s", e.Reason)
}
