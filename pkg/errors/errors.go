// Package errors provides structured error types for ioschema.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and HTTP server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Input problems (MALFORMED_INPUT, CAPACITY_EXCEEDED, NO_MODULES) abort a
// generation request before any page is produced. Catalog and template gaps
// (UNKNOWN_MODULE, MISSING_TEMPLATE_PAGE, OVERVIEW_SLOTS_EXHAUSTED) are
// reported as [Warning] values and the request continues with a partial
// diagram. ALLOCATION_INVARIANT marks an internal consistency fault.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMalformedInput, "record %d: missing point name", i)
//	if errors.Is(err, errors.ErrCodeMalformedInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInternal, origErr, "open catalog %s", path)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeMalformedInput   Code = "MALFORMED_INPUT"
	ErrCodeCapacityExceeded Code = "CAPACITY_EXCEEDED"
	ErrCodeNoModules        Code = "NO_MODULES"
	ErrCodeInvalidTemplate  Code = "INVALID_TEMPLATE"
	ErrCodeInvalidPath      Code = "INVALID_PATH"

	// Degraded-output conditions, reported as warnings
	ErrCodeUnknownModule       Code = "UNKNOWN_MODULE"
	ErrCodeMissingTemplatePage Code = "MISSING_TEMPLATE_PAGE"
	ErrCodeOverviewSlots       Code = "OVERVIEW_SLOTS_EXHAUSTED"
	ErrCodeSurplusController   Code = "SURPLUS_CONTROLLER"

	// Resource not found errors
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeTemplateNotFound Code = "TEMPLATE_NOT_FOUND"
	ErrCodeCatalogNotFound  Code = "CATALOG_NOT_FOUND"

	// Internal errors
	ErrCodeAllocationInvariant Code = "ALLOCATION_INVARIANT"
	ErrCodeInternal            Code = "INTERNAL_ERROR"
	ErrCodeUnsupported         Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// coder is implemented by typed errors that carry their own code.
type coder interface {
	Code() Code
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error or a typed error with a matching code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error carries no code.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error to the status code the server answers with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeMalformedInput, ErrCodeCapacityExceeded,
		ErrCodeNoModules, ErrCodeInvalidTemplate, ErrCodeInvalidPath:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeTemplateNotFound, ErrCodeCatalogNotFound:
		return http.StatusNotFound
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// CapacityExceededError reports that the selected modules cannot host all
// points of one signal type.
type CapacityExceededError struct {
	SignalType string
	Demanded   int
	Available  int
}

// Error implements the error interface.
func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("%s: %s points requested (%d) exceed available %s inputs/outputs (%d)",
		ErrCodeCapacityExceeded, e.SignalType, e.Demanded, e.SignalType, e.Available)
}

// Code returns the error code for this error type.
func (e *CapacityExceededError) Code() Code {
	return ErrCodeCapacityExceeded
}

// Shortfall returns how many points could not be placed.
func (e *CapacityExceededError) Shortfall() int {
	return e.Demanded - e.Available
}
