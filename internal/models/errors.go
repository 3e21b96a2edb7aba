package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by repositories when no row matches
	ErrNotFound = errors.New("record not found")

	// ErrDataUnavailable marks an estimator or lookup with no data behind it.
	// It is never fatal: callers record a nil field and lower confidence.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrInvalidProbability is returned for probabilities outside (0,1)
	ErrInvalidProbability = errors.New("probability must be strictly between 0 and 1")

	// ErrNoLegs is returned when a parlay is built from an empty slip
	ErrNoLegs = errors.New("parlay requires at least one leg")
)

// InvalidOddsError reports a malformed or impossible price.
// It is fatal to the leg that carries the price, never to sibling legs.
type InvalidOddsError struct {
	Price  string
	Format OddsFormat
	Reason string
}

func (e *InvalidOddsError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("invalid odds %q: %s", e.Price, e.Reason)
	}
	return fmt.Sprintf("invalid %s odds %q: %s", e.Format, e.Price, e.Reason)
}

// NewInvalidOddsError builds an InvalidOddsError
func NewInvalidOddsError(price string, format OddsFormat, reason string) *InvalidOddsError {
	return &InvalidOddsError{Price: price, Format: format, Reason: reason}
}

// IsInvalidOdds reports whether err carries an InvalidOddsError
func IsInvalidOdds(err error) bool {
	var target *InvalidOddsError
	return errors.As(err, &target)
}

// LookupFailure wraps a data-provider error or timeout.
// Callers treat it exactly like ErrDataUnavailable once it has been logged.
type LookupFailure struct {
	Op  string
	Err error
}

func (e *LookupFailure) Error() string {
	return fmt.Sprintf("lookup %s failed: %v", e.Op, e.Err)
}

func (e *LookupFailure) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrDataUnavailable) hold for lookup failures
func (e *LookupFailure) Is(target error) bool {
	return target == ErrDataUnavailable
}

// NewLookupFailure wraps err for the named provider operation
func NewLookupFailure(op string, err error) *LookupFailure {
	return &LookupFailure{Op: op, Err: err}
}

// ValidProbability reports whether p lies strictly inside (0,1)
func ValidProbability(p float64) bool {
	return p > 0 && p < 1
}
