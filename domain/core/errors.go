package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound     = errors.New("resource not found")
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// Validation errors
	ErrInvalidRange   = errors.New("range end precedes range start")
	ErrRangeTooLong   = fmt.Errorf("%w: span is not representable", ErrInvalidRange)
	ErrDuplicate      = errors.New("resource already exists")
	ErrDuplicateUser  = fmt.Errorf("%w: username", ErrDuplicate)
	ErrDuplicateEmail = fmt.Errorf("%w: email", ErrDuplicate)
)

// Error constructors with context
func NewRangeError(startMs, endMs int64) error {
	return fmt.Errorf("%w: start=%d end=%d", ErrInvalidRange, startMs, endMs)
}

func NewSpanError(startMs, endMs int64) error {
	return fmt.Errorf("%w: start=%d end=%d", ErrRangeTooLong, startMs, endMs)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
