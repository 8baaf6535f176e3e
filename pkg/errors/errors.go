package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error represents a typed error with HTTP awareness. It is the only error
// shape that crosses from services into handlers.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same code so callers can use errors.Is
// against the predefined values even after Clone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

var (
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrForbidden    = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrNoChanges    = New("NO_CHANGES", http.StatusBadRequest, "no changes to save")
	ErrUpstream     = New("UPSTREAM_ERROR", http.StatusBadGateway, "Internal server error")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss    = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromUpstream converts a non-2xx backend response into an *Error. The
// backend's status and message are kept verbatim; fallback is used when the
// backend did not send a message.
func FromUpstream(status int, message, fallback string) *Error {
	message = strings.TrimSpace(message)
	if message == "" {
		message = fallback
	}
	if message == "" {
		message = ErrUpstream.Message
	}
	if status < 400 {
		status = ErrUpstream.Status
	}
	code := ErrUpstream.Code
	switch status {
	case http.StatusUnauthorized:
		code = ErrUnauthorized.Code
	case http.StatusForbidden:
		code = ErrForbidden.Code
	case http.StatusNotFound:
		code = ErrNotFound.Code
	default:
		if status < 500 {
			code = ErrValidation.Code
		}
	}
	return &Error{Code: code, Status: status, Message: message}
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
