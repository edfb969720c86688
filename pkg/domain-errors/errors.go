// Package domainerrors defines the coded error vocabulary shared by services
// and transport adapters. Services translate store facts (pkg/platform/sentinel)
// and model invariant failures into these codes; adapters map codes to responses.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code identifies a class of failure independent of transport.
type Code string

const (
	CodeBadRequest             Code = "bad_request"
	CodeInvalidArgument        Code = "invalid_argument"
	CodeInvariantViolation     Code = "invariant_violation"
	CodeInvalidTransition      Code = "invalid_status_transition"
	CodeDuplicate              Code = "duplicate_membership"
	CodeConcurrentModification Code = "concurrent_modification"
	CodeInvalidGeography       Code = "invalid_geography_reference"
	CodeUnavailable            Code = "external_dependency_unavailable"
	CodeNotFound               Code = "not_found"
	CodeUnauthorized           Code = "unauthorized"
	CodeForbidden              Code = "forbidden"
	CodeTimeout                Code = "timeout"
	CodeInternal               Code = "internal_error"
)

// Error carries a Code, a caller-safe message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message != "" {
		return e.Message + ": " + e.Err.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying cause. A nil cause yields nil.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the outermost code in the chain, or CodeInternal when the
// chain carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether any error in the chain carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// Is is an alias of HasCode kept for handler readability.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// Message returns the caller-safe message of the outermost coded error.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}

// IsRetryable reports whether the failure is transient and the operation may be
// retried after reloading state.
func IsRetryable(err error) bool {
	switch CodeOf(err) {
	case CodeConcurrentModification, CodeUnavailable, CodeTimeout:
		return true
	default:
		return false
	}
}

// ToHTTPStatus maps a code onto an HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeInvalidArgument, CodeInvariantViolation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidTransition, CodeDuplicate, CodeConcurrentModification:
		return http.StatusConflict
	case CodeInvalidGeography:
		return http.StatusUnprocessableEntity
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
