package errors

import (
	"errors"
	"fmt"
)

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	ErrValidation   = fmt.Errorf("validation failed")
	ErrUnauthorized = fmt.Errorf("not authorized")
	ErrNotFound     = fmt.Errorf("not found")
	ErrPersistence  = fmt.Errorf("persistence failure")

	ErrSinkFull     = fmt.Errorf("connection buffer full")
	ErrSinkClosed   = fmt.Errorf("connection closed")
	ErrNotJoined    = fmt.Errorf("connection has not joined")
	ErrUnknownEvent = fmt.Errorf("unknown event")
	ErrInvalidToken = fmt.Errorf("invalid token")
)

// Kind is the client-facing classification of a failure.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
	KindNotFound      Kind = "not_found"
	KindPersistence   Kind = "persistence"
	KindInternal      Kind = "internal"
)

// KindOf classifies err by the sentinel it wraps.
// Transport level failures caused by the client are reported as validation errors.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrNotJoined),
		errors.Is(err, ErrUnknownEvent):
		return KindValidation
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidToken):
		return KindAuthorization
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrPersistence):
		return KindPersistence
	default:
		return KindInternal
	}
}

// PublicMessage hides storage details from clients.
func PublicMessage(err error) string {
	switch KindOf(err) {
	case KindPersistence, KindInternal:
		return "operation failed, please retry"
	default:
		return err.Error()
	}
}
