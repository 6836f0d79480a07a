// Package errors defines the API error envelope and the JSON error
// responder used by every endpoint.
package errors

import (
	"fmt"
	"time"
)

// Envelope is a coded application error. It carries everything the
// responder needs to build the HTTP error body.
type Envelope struct {
	Code          string
	Message       string
	Details       map[string]any
	CorrelationID string

	// RetryAfter, when set, becomes the Retry-After response header.
	RetryAfter time.Duration

	wrapped error
}

// Error implements the error interface.
func (e *Envelope) Error() string {
	if e == nil {
		return ""
	}
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/As.
func (e *Envelope) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.wrapped
}

// New creates an envelope with a code and message.
func New(code, message string) *Envelope {
	return &Envelope{Code: code, Message: message}
}

// WithDetail attaches one API-safe detail entry.
func (e *Envelope) WithDetail(key string, value any) *Envelope {
	if e == nil {
		return nil
	}
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCorrelationID sets the correlation ID.
func (e *Envelope) WithCorrelationID(id string) *Envelope {
	if e == nil {
		return nil
	}
	e.CorrelationID = id
	return e
}

// WithRetryAfter sets the retry hint.
func (e *Envelope) WithRetryAfter(d time.Duration) *Envelope {
	if e == nil {
		return nil
	}
	e.RetryAfter = d
	return e
}

// User errors (400-level)

func NewInvalidInputError(message string) *Envelope {
	return New("INVALID_INPUT", message)
}

func NewNotFoundError(message string) *Envelope {
	return New("NOT_FOUND", message)
}

func NewUnauthorizedError(message string) *Envelope {
	return New("UNAUTHORIZED", message)
}

func NewForbiddenError(message string) *Envelope {
	return New("FORBIDDEN", message)
}

func NewMethodNotAllowedError(message string) *Envelope {
	return New("METHOD_NOT_ALLOWED", message)
}

func NewConflictError(message string) *Envelope {
	return New("CONFLICT", message)
}

// NewRateLimitedError builds the throttle error with its retry hint.
func NewRateLimitedError(message string, retryAfter time.Duration) *Envelope {
	return New("RATE_LIMITED", message).WithRetryAfter(retryAfter)
}

// Server errors (500-level)

func NewInternalError(message string) *Envelope {
	return New("INTERNAL_ERROR", message)
}

func NewExternalServiceError(message string) *Envelope {
	return New("EXTERNAL_SERVICE_ERROR", message)
}

func NewTimeoutError(message string) *Envelope {
	return New("TIMEOUT", message)
}

func NewServiceUnavailableError(message string) *Envelope {
	return New("SERVICE_UNAVAILABLE", message)
}

func NewConfigInvalidError(message string) *Envelope {
	return New("CONFIG_INVALID", message)
}

// Wrap helpers for existing errors.

func wrap(code, message string, err error) *Envelope {
	envelope := New(code, message)
	envelope.wrapped = err
	return envelope
}

func WrapInvalidInput(err error, message string) *Envelope {
	return wrap("INVALID_INPUT", message, err)
}

func WrapInternal(err error, message string) *Envelope {
	return wrap("INTERNAL_ERROR", message, err)
}

func WrapDatabaseError(err error, message string) *Envelope {
	return wrap("DATABASE_ERROR", message, err)
}

func WrapExternalService(err error, message string) *Envelope {
	return wrap("EXTERNAL_SERVICE_ERROR", message, err)
}

func WrapConfigInvalid(err error, message string) *Envelope {
	return wrap("CONFIG_INVALID", message, err)
}
