// Package apperr defines the error kinds surfaced by the service layer.
//
// Services return *Error values built with the constructors below. The HTTP
// layer maps a Kind to a status code; nothing else inspects the message.
package apperr

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

type Kind string

const (
	KindValidation     Kind = "validation_error"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindAuthentication Kind = "authentication_error"
	KindAuthorization  Kind = "authorization_error"
	KindInternal       Kind = "internal_error"
)

// Error is a classified failure with an optional per-field breakdown.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// ValidationField is shorthand for a single-field validation failure.
func ValidationField(field, message string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: fmt.Sprintf("%s: %s", field, message),
		Fields:  map[string]string{field: message},
	}
}

// NotFound builds "<resource> not found".
func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func Unauthenticated(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

// Internal wraps an unexpected failure. The message is not shown to clients.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// FromDB translates store errors into classified errors. resource names the
// entity for NotFound messages. Unrecognized errors are wrapped as Internal.
func FromDB(err error, resource string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound(resource)
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return &Error{Kind: KindConflict, Message: resource + " already exists", Err: err}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &Error{Kind: KindConflict, Message: resource + " references a missing record", Err: err}
	}
	return Internal("database error", err)
}

// isUniqueViolation catches driver errors that were not translated into
// gorm.ErrDuplicatedKey (raw SQL paths, older drivers).
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
