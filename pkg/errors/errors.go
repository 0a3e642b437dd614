// Package errors defines common error types for the application.
package errors

import (
	"errors"
	"fmt"
)

// Error codes for the application.
const (
	CodeUnknown       = "UNKNOWN_ERROR"
	CodeEmptyClass    = "EMPTY_CLASS"
	CodeUnextractable = "UNEXTRACTABLE"
	CodeInvalidConfig = "INVALID_CONFIG"
	CodeIO            = "IO_ERROR"
)

// AppError represents an application error with a code and message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code string, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError.
func Wrap(code string, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error instances.
var (
	// ErrEmptyClass marks a class reachable from the root that has no
	// member e-nodes at all: it can never be assigned, so no complete
	// extraction is possible.
	ErrEmptyClass = New(CodeEmptyClass, "class has no member nodes")
	// ErrUnextractable marks an extraction attempt that ran out of search
	// budget (or a rollout budget) without ever reaching a complete,
	// acyclic assignment.
	ErrUnextractable = New(CodeUnextractable, "no complete assignment found")
	// ErrInvalidConfig marks a MctsConfig value that failed validation
	// (e.g. a non-positive playouts_per_round).
	ErrInvalidConfig = New(CodeInvalidConfig, "invalid configuration")
	// ErrIO marks a failure reading or writing an e-graph file.
	ErrIO = New(CodeIO, "i/o error")
)

// IsEmptyClassError checks if the error is an empty-class error.
func IsEmptyClassError(err error) bool {
	return errors.Is(err, ErrEmptyClass)
}

// IsUnextractableError checks if the error is an unextractable error.
func IsUnextractableError(err error) bool {
	return errors.Is(err, ErrUnextractable)
}

// IsInvalidConfigError checks if the error is an invalid-configuration error.
func IsInvalidConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

// IsIOError checks if the error is an I/O error.
func IsIOError(err error) bool {
	return errors.Is(err, ErrIO)
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetErrorMessage extracts the error message from an error.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
