package ondot_errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrInvalidInput         = errors.New("invalid input")
	ErrRateLimited          = errors.New("rate limited")
	ErrAlreadyExists        = errors.New("already exists")
	ErrRelationshipInactive = errors.New("relationship is not active")
	ErrServiceUnavailable   = errors.New("service unavailable")
)

// Machine-checkable kinds surfaced to clients.
const (
	KindUnauthorized         = "UNAUTHORIZED"
	KindForbidden            = "FORBIDDEN"
	KindNotFound             = "NOT_FOUND"
	KindInvalidTransition    = "INVALID_TRANSITION"
	KindInvalidInput         = "INVALID_INPUT"
	KindRateLimited          = "RATE_LIMITED"
	KindConflict             = "CONFLICT"
	KindRelationshipInactive = "RELATIONSHIP_INACTIVE"
	KindUnavailable          = "SERVICE_UNAVAILABLE"
	KindInternal             = "INTERNAL_ERROR"
)

// DeliveryError wraps a push provider failure. It is logged by the caller
// and never returned from a notify call.
type DeliveryError struct {
	Provider string
	Err      error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("push delivery via %s failed: %v", e.Provider, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Kind maps an error to its machine-checkable kind.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidTransition):
		return KindInvalidTransition
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrRelationshipInactive):
		return KindRelationshipInactive
	case errors.Is(err, ErrServiceUnavailable):
		return KindUnavailable
	default:
		return KindInternal
	}
}

func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict),
		errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrRelationshipInactive):
		return http.StatusConflict
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text that is safe to show to a client. Internal
// failures are not leaked.
func Message(err error) string {
	if Kind(err) == KindInternal {
		return "internal error"
	}
	return err.Error()
}
