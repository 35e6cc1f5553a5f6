package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying every failure the domain can report.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state transition")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUpstream     = errors.New("upstream failure")
)

// DomainError wraps a sentinel error with a human-readable message and,
// for upstream failures, the raw provider details.
type DomainError struct {
	Err     error
	Message string
	Details string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Err, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Err, e.Message)
}

// Unwrap exposes the sentinel for errors.Is matching.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewNotFoundError reports a missing resource.
func NewNotFoundError(resource, id string) *DomainError {
	return &DomainError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s %s not found", resource, id),
	}
}

// NewInvalidStateError reports an attempted transition from a status that
// does not permit it.
func NewInvalidStateError(from, to string) *DomainError {
	return &DomainError{
		Err:     ErrInvalidState,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// NewConflictError reports a concurrent-modification conflict.
func NewConflictError(message string) *DomainError {
	return &DomainError{Err: ErrConflict, Message: message}
}

// NewValidationError reports invalid caller input.
func NewValidationError(message string) *DomainError {
	return &DomainError{Err: ErrValidation, Message: message}
}

// NewForbiddenError reports an action the caller is authenticated for but
// not allowed to perform.
func NewForbiddenError(message string) *DomainError {
	return &DomainError{Err: ErrForbidden, Message: message}
}

// NewUpstreamError reports a payment-gateway failure with provider details.
func NewUpstreamError(message, details string) *DomainError {
	return &DomainError{Err: ErrUpstream, Message: message, Details: details}
}
