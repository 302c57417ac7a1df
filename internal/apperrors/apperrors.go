package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("invalid input")
	ErrUnauthorized = errors.New("operation not permitted")
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("conflicting state")
	ErrPersistence  = errors.New("storage operation failed")
)

// ValidationError names the offending field so the caller can surface a
// specific message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

type AuthorizationError struct{ Reason string }

func (e *AuthorizationError) Error() string        { return e.Reason }
func (e *AuthorizationError) Is(target error) bool { return target == ErrUnauthorized }

type NotFoundError struct{ Resource string }

func (e *NotFoundError) Error() string        { return fmt.Sprintf("%s not found", e.Resource) }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

type ConflictError struct{ Reason string }

func (e *ConflictError) Error() string        { return e.Reason }
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// PersistenceError wraps a failed repository call. The underlying error is
// preserved for logs but never leaks to API responses.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
func (e *PersistenceError) Unwrap() error        { return e.Err }
