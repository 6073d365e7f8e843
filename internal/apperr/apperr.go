// Package apperr defines the abstract error kinds shared by every layer of
// the coordination engine, from domain validation through the HTTP
// boundary, so a single switch maps any failure to a status code.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error independently of the layer that produced it.
type Kind string

const (
	KindUnauthorized      Kind = "unauthorized"
	KindPermissionDenied  Kind = "permission_denied"
	KindRateLimitExceeded Kind = "rate_limit_exceeded"
	KindBadRequest        Kind = "bad_request"
	KindInvalidTransition Kind = "invalid_state_transition"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindExternalService   Kind = "external_service_error"
	KindInternal          Kind = "internal_server_error"
)

// Error is the concrete error type returned by domain, repository, and
// pipeline code. Callers compare by Kind, not by string matching.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is allows errors.Is(err, apperr.NotFound("")) style kind comparisons by
// matching on Kind alone, ignoring Message and Cause.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func Unauthorized(msg string) *Error      { return New(KindUnauthorized, msg) }
func PermissionDenied(msg string) *Error  { return New(KindPermissionDenied, msg) }
func RateLimitExceeded(msg string) *Error { return New(KindRateLimitExceeded, msg) }
func BadRequest(msg string) *Error        { return New(KindBadRequest, msg) }
func InvalidTransition(msg string) *Error { return New(KindInvalidTransition, msg) }
func NotFound(msg string) *Error          { return New(KindNotFound, msg) }
func Conflict(msg string) *Error          { return New(KindConflict, msg) }
func ExternalService(msg string, cause error) *Error {
	return Wrap(KindExternalService, msg, cause)
}
func Internal(msg string, cause error) *Error { return Wrap(KindInternal, msg, cause) }

// KindOf extracts the Kind of err, defaulting to KindInternal when err is
// not an *Error (e.g. it escaped from a third-party library unwrapped).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps a Kind to the status code prescribed for it.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindBadRequest, KindInvalidTransition:
		return 400
	case KindUnauthorized:
		return 401
	case KindPermissionDenied:
		return 403
	case KindNotFound:
		return 404
	case KindConflict:
		return 409
	case KindRateLimitExceeded:
		return 429
	case KindExternalService, KindInternal:
		return 500
	default:
		return 500
	}
}
