// Package domainerrors defines the coded error type services return to callers.
//
// Stores return sentinel errors (pkg/platform/sentinel); services translate them
// into coded errors so the transport layer can map codes to status codes without
// knowing about storage.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code is a stable, machine-readable error identifier surfaced to API clients.
type Code string

const (
	CodeNotFound           Code = "not_found"
	CodeForbidden          Code = "forbidden"
	CodeUnauthorized       Code = "unauthorized"
	CodeConflict           Code = "conflict"
	CodeAlreadyApproved    Code = "already_approved"
	CodeAlreadyCheckedIn   Code = "already_checked_in"
	CodeCapacityExceeded   Code = "capacity_exceeded"
	CodeInvalidState       Code = "invalid_state"
	CodeNoOpenSession      Code = "no_open_session"
	CodeEventNotEnded      Code = "event_not_ended"
	CodeValidation         Code = "validation_error"
	CodeInvalidInput       Code = "invalid_input"
	CodeBadRequest         Code = "bad_request"
	CodeInvariantViolation Code = "invariant_violation"
	CodeTimeout            Code = "timeout"
	CodeInternal           Code = "internal_error"
)

// Error carries a Code, a client-safe message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error without an underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf returns the code of the outermost coded error in the chain, or
// CodeInternal when the chain carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether the outermost coded error in err's chain has code.
func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	var de *Error
	if !errors.As(err, &de) {
		return false
	}
	return de.Code == code
}

// ToHTTPStatus maps a code to the HTTP status the transport layer responds with.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeConflict, CodeAlreadyApproved, CodeAlreadyCheckedIn, CodeCapacityExceeded:
		return http.StatusConflict
	case CodeInvalidState, CodeNoOpenSession, CodeEventNotEnded:
		return http.StatusUnprocessableEntity
	case CodeValidation, CodeInvalidInput, CodeBadRequest:
		return http.StatusBadRequest
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
