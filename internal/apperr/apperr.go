// Package apperr defines the error taxonomy shared by services and the HTTP
// boundary. Errors are raised where a rule fails and translated to a status
// code exactly once, by the handler layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeNotFound          Code = "NOT_FOUND"
	CodeBusinessRule      Code = "BUSINESS_RULE_VIOLATION"
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	CodeOutOfRange        Code = "OUT_OF_RANGE"
	CodeValidation        Code = "VALIDATION_ERROR"
	CodeUnexpected        Code = "UNEXPECTED"
)

// HTTPStatus maps a code to the status returned to callers.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeBusinessRule, CodeInvalidTransition, CodeOutOfRange, CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Title is the short human label used in the error envelope.
func (c Code) Title() string {
	switch c {
	case CodeNotFound:
		return "Entity Not Found"
	case CodeBusinessRule, CodeInvalidTransition, CodeOutOfRange:
		return "Business Rule Violation"
	case CodeValidation:
		return "Validation Error"
	default:
		return "Internal Server Error"
	}
}

// IsBusinessRule reports whether the code is one of the domain-rule failures.
func (c Code) IsBusinessRule() bool {
	return c == CodeBusinessRule || c == CodeInvalidTransition || c == CodeOutOfRange
}

// Error is a classified domain error.
type Error struct {
	Code    Code
	Message string
	// Fields holds per-field messages for CodeValidation.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func BusinessRule(format string, args ...any) *Error {
	return &Error{Code: CodeBusinessRule, Message: fmt.Sprintf(format, args...)}
}

func InvalidTransition(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

func OutOfRange(format string, args ...any) *Error {
	return &Error{Code: CodeOutOfRange, Message: fmt.Sprintf(format, args...)}
}

// Validation builds a field-level error; fields maps field name to message.
func Validation(message string, fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: message, Fields: fields}
}

// Unexpected wraps an internal failure. The message is never shown to callers.
func Unexpected(err error, message string) *Error {
	return &Error{Code: CodeUnexpected, Message: message, Err: err}
}

// CodeOf returns the code carried by err, or CodeUnexpected for anything
// unclassified.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnexpected
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
