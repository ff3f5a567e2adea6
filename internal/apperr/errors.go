// Package apperr defines the application error taxonomy. Every error that
// crosses a service boundary is one of these kinds; the HTTP layer maps
// kinds to status codes and never inspects raw driver errors.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
)

// PermissionDeniedMessage is the stable message returned on every 403
const PermissionDeniedMessage = "You do not have permission to perform this action."

// FieldError points at a single offending input field
type FieldError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error is a classified application error, optionally carrying
// field-level detail for validation failures
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	wrapped error
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.wrapped)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.wrapped
}

// Validation creates a 400-class error with field details
func Validation(fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

// Validationf creates a 400-class error with a single message
func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Unauthenticated creates a 401-class error
func Unauthenticated(message string) *Error {
	if message == "" {
		message = "Authentication credentials were not provided."
	}
	return &Error{Kind: KindUnauthenticated, Message: message}
}

// Forbidden creates a 403-class error with the stable denial message
func Forbidden() *Error {
	return &Error{Kind: KindForbidden, Message: PermissionDeniedMessage}
}

// NotFound creates a 404-class error
func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

// Conflict creates a conflict error; upsert paths resolve these
// internally and never surface them to the caller
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Internalf wraps an infrastructure error
func Internalf(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...), wrapped: err}
}

// KindOf extracts the kind from an error chain; unclassified errors
// are treated as internal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As unwraps err into *Error when possible
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
