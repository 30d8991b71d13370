package api

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind categorizes transport failures
type ErrorKind string

const (
	// ErrKindNetwork indicates the request never produced an HTTP response
	ErrKindNetwork ErrorKind = "network"

	// ErrKindServer indicates a non-success HTTP status from the service
	ErrKindServer ErrorKind = "server"

	// ErrKindDecode indicates a response body that could not be decoded
	ErrKindDecode ErrorKind = "decode"

	// ErrKindValidation indicates invalid input rejected before any request
	ErrKindValidation ErrorKind = "validation"

	// ErrKindInternal indicates a client-side failure building the request
	ErrKindInternal ErrorKind = "internal"
)

// Error is the structured failure returned by every Client operation
type Error struct {
	// Kind categorizes the error
	Kind ErrorKind `json:"kind"`

	// Message is a human-readable description. When ServerProvided is true
	// it is the text the service sent in its {"error": "..."} body.
	Message string `json:"message"`

	// ServerProvided reports whether Message came from the service
	ServerProvided bool `json:"server_provided"`

	// Operation names the client call that failed
	Operation string `json:"operation,omitempty"`

	// StatusCode for HTTP-related errors
	StatusCode int `json:"status_code,omitempty"`

	// Cause is the underlying error
	Cause error `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	var parts []string

	if e.Operation != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Operation))
	}

	parts = append(parts, fmt.Sprintf("kind=%s", e.Kind))

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}

	parts = append(parts, e.Message)

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%s", e.Cause.Error()))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on Kind so callers can write errors.Is(err, &api.Error{Kind: api.ErrKindNetwork})
func (e *Error) Is(target error) bool {
	if te, ok := target.(*Error); ok {
		return e.Kind == te.Kind
	}
	return false
}

// NewError creates a new transport error
func NewError(kind ErrorKind, op, message string) *Error {
	return &Error{
		Kind:      kind,
		Operation: op,
		Message:   message,
	}
}

// NewErrorWithCause creates a new transport error wrapping cause
func NewErrorWithCause(kind ErrorKind, op, message string, cause error) *Error {
	return &Error{
		Kind:      kind,
		Operation: op,
		Message:   message,
		Cause:     cause,
	}
}

// NewServerError creates an error for a non-success response. serverMessage
// is the optional text decoded from the response body.
func NewServerError(op string, status int, serverMessage string) *Error {
	if serverMessage != "" {
		return &Error{
			Kind:           ErrKindServer,
			Operation:      op,
			StatusCode:     status,
			Message:        serverMessage,
			ServerProvided: true,
		}
	}
	return &Error{
		Kind:       ErrKindServer,
		Operation:  op,
		StatusCode: status,
		Message:    fmt.Sprintf("request failed with status %d", status),
	}
}

// ServerMessage extracts the service-provided message from err, if any
func ServerMessage(err error) (string, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.ServerProvided && apiErr.Message != "" {
		return apiErr.Message, true
	}
	return "", false
}

// IsNetworkError reports whether err is a connectivity failure
func IsNetworkError(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind == ErrKindNetwork
	}
	return false
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
