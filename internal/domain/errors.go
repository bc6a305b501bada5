package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
)

// ValidationError rejects user input, naming the offending field. Operations
// returning it must leave no partial state change behind.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RemoteUnavailableError wraps a collaborator failure (catalog fetch, order
// write, status sync). Callers decide per operation whether to surface it,
// degrade, or swallow it after an optimistic local update.
type RemoteUnavailableError struct {
	Op  string
	Err error
}

func NewRemoteUnavailable(op string, err error) *RemoteUnavailableError {
	return &RemoteUnavailableError{Op: op, Err: err}
}

func (e *RemoteUnavailableError) Error() string {
	return fmt.Sprintf("remote store unavailable during %s: %v", e.Op, e.Err)
}

func (e *RemoteUnavailableError) Unwrap() error {
	return e.Err
}
