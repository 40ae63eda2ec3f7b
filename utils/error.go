package utils

import (
	"errors"
	"fmt"
)

var (
	ErrorRecordNotFound = errors.New("record not found")

	// ErrInFlight is returned when an account already has a mutation awaiting the store.
	ErrInFlight = errors.New("another operation is in progress for this record")

	// ErrDuplicateScan is returned by a scanning session for a suppressed repeat read.
	ErrDuplicateScan = errors.New("duplicate scan suppressed")
)

// ValidationError is a malformed or non-positive input, rejected before any store request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func NewValidationError(field string, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// TransportError means the store was unreachable or answered with a non-success status.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: store responded %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func NewTransportError(op string, statusCode int, err error) error {
	return &TransportError{Op: op, StatusCode: statusCode, Err: err}
}

// NotFoundError means the referenced account or item does not exist in the store.
type NotFoundError struct {
	Resource string
	Id       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Id)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrorRecordNotFound }

func NewNotFoundError(resource string, id string) error {
	return &NotFoundError{Resource: resource, Id: id}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

func IsNotFoundError(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

// IsRecoverable reports whether err should be surfaced to the user as a dismissible notification.
func IsRecoverable(err error) bool {
	return IsTransportError(err) || IsNotFoundError(err)
}
