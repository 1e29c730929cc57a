package httpclient

import (
	"errors"
	"fmt"
)

// ErrorCode classifies HTTP client errors.
type ErrorCode int

const (
	// ErrCodeConfig indicates missing or inconsistent configuration.
	ErrCodeConfig ErrorCode = iota
	// ErrCodeRequest indicates a malformed method or URL.
	ErrCodeRequest
	// ErrCodeConnection indicates a connection failure (refused, DNS, TLS, proxy).
	ErrCodeConnection
	// ErrCodeTimeout indicates the read timeout or context deadline was exceeded.
	ErrCodeTimeout
)

// String returns the error code name.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeConfig:
		return "config"
	case ErrCodeRequest:
		return "request"
	case ErrCodeConnection:
		return "connection"
	case ErrCodeTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error is a structured HTTP client error with classification.
type Error struct {
	// Code classifies the error.
	Code ErrorCode
	// Message describes the error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("httpclient: %s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("httpclient: %s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewConfigError creates a configuration error. err may be nil.
func NewConfigError(msg string, err error) *Error {
	return &Error{Code: ErrCodeConfig, Message: msg, Err: err}
}

// NewRequestError creates a request error. err may be nil.
func NewRequestError(msg string, err error) *Error {
	return &Error{Code: ErrCodeRequest, Message: msg, Err: err}
}

// NewConnectionError creates a connection error.
func NewConnectionError(err error) *Error {
	return &Error{Code: ErrCodeConnection, Message: err.Error(), Err: err}
}

// NewTimeoutError creates a timeout error.
func NewTimeoutError(err error) *Error {
	return &Error{Code: ErrCodeTimeout, Message: err.Error(), Err: err}
}

// IsConfig checks if an error is a configuration error.
func IsConfig(err error) bool {
	return hasCode(err, ErrCodeConfig)
}

// IsRequest checks if an error is a malformed-request error.
func IsRequest(err error) bool {
	return hasCode(err, ErrCodeRequest)
}

// IsConnection checks if an error is a connection error.
func IsConnection(err error) bool {
	return hasCode(err, ErrCodeConnection)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	return hasCode(err, ErrCodeTimeout)
}

// IsTransport checks if an error happened while talking to the server.
func IsTransport(err error) bool {
	return IsConnection(err) || IsTimeout(err)
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
