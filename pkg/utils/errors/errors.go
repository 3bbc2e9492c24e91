// Package errors provides the typed error taxonomy used across the engine.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType classifies an AppError.
type ErrorType uint

const (
	// ErrorTypeUnknown represents an unclassified error
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeInvalidParameter represents a rejected input value
	ErrorTypeInvalidParameter
	// ErrorTypeNotFound represents a missing resource
	ErrorTypeNotFound
	// ErrorTypeAlreadyExists represents a conflicting resource
	ErrorTypeAlreadyExists
	// ErrorTypeInternal represents an internal error
	ErrorTypeInternal
)

// AppError is the application error type.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error returns the error message.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new unclassified error.
func New(message string) error {
	return &AppError{Type: ErrorTypeUnknown, Message: message}
}

// Newf creates a new unclassified error from a format string.
func Newf(format string, args ...interface{}) error {
	return &AppError{Type: ErrorTypeUnknown, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a message, preserving its type if it is an
// AppError.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	errType := ErrorTypeUnknown
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		errType = appErr.Type
	}
	return &AppError{Type: errType, Message: message, Err: err}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown for errors
// outside the taxonomy.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeUnknown
}

// Is reports whether err or any error in its chain is target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// InvalidParameter creates a new InvalidParameter error.
func InvalidParameter(message string) error {
	return &AppError{Type: ErrorTypeInvalidParameter, Message: message}
}

// InvalidParameterf creates a new InvalidParameter error from a format
// string.
func InvalidParameterf(format string, args ...interface{}) error {
	return &AppError{Type: ErrorTypeInvalidParameter, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a new NotFound error.
func NotFound(message string) error {
	return &AppError{Type: ErrorTypeNotFound, Message: message}
}

// AlreadyExists creates a new AlreadyExists error.
func AlreadyExists(message string) error {
	return &AppError{Type: ErrorTypeAlreadyExists, Message: message}
}

// Internal creates a new Internal error.
func Internal(message string) error {
	return &AppError{Type: ErrorTypeInternal, Message: message}
}

// IsInvalidParameter reports whether err is an InvalidParameter error.
func IsInvalidParameter(err error) bool {
	return TypeOf(err) == ErrorTypeInvalidParameter
}

// IsNotFound reports whether err is a NotFound error.
func IsNotFound(err error) bool {
	return TypeOf(err) == ErrorTypeNotFound
}
