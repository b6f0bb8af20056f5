package services

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned for every rejected token, whatever the reason.
var ErrUnauthorized = errors.New("unauthorized")

// ValidationError reports input that the caller can correct. Message is safe
// to return verbatim.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// InfrastructureError wraps a store or broker failure. Its detail is meant
// for server-side logs only.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error {
	return e.Err
}

func infraError(op string, err error) error {
	return &InfrastructureError{Op: op, Err: err}
}
