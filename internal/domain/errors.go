package domain

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeNotFound    Code = "not_found"
	CodeValidation  Code = "validation"
	CodeUnavailable Code = "unavailable"
	CodeCorrupt     Code = "corrupt"
)

// Error is a coded domain error. Two errors match under errors.Is when
// their codes are equal.
type Error struct {
	Code    Code
	Message string
	Details map[string]string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinels for errors.Is checks.
var (
	ErrNotFound    = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation  = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrUnavailable = &Error{Code: CodeUnavailable, Message: "repository unavailable"}
	ErrCorrupt     = &Error{Code: CodeCorrupt, Message: "stored data is corrupt"}
)

// NotFound creates a not-found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// Validation creates a validation error with per-field details.
func Validation(msg string, details map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Unavailable wraps a storage or network failure.
func Unavailable(op string, cause error) *Error {
	return &Error{Code: CodeUnavailable, Message: op, cause: cause}
}

// Corrupt wraps a decode failure of persisted data.
func Corrupt(op string, cause error) *Error {
	return &Error{Code: CodeCorrupt, Message: op, cause: cause}
}
