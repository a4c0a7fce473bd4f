// Package apperr defines the application error taxonomy and its mapping to
// user-facing HTTP responses. Internal causes are never exposed to clients.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindBadRequest Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindRateLimited
	KindInternal
)

type Error struct {
	Kind    Kind
	Message string
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

func BadRequest(message string) *Error {
	return &Error{Kind: KindBadRequest, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func RateLimited() *Error {
	return &Error{Kind: KindRateLimited, Message: "rate limit exceeded"}
}

func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, cause: cause}
}

// Code returns the wire code for an error kind.
func (k Kind) Code() string {
	switch k {
	case KindBadRequest:
		return "BAD_REQUEST"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindForbidden:
		return "FORBIDDEN"
	case KindNotFound:
		return "NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	case KindRateLimited:
		return "TOO_MANY_REQUESTS"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}

// HTTP translates any error into a status/code/message triple for the REST
// boundary. Unknown errors and internal kinds get a generic message; the
// specific cause stays server-side.
func HTTP(err error) (int, string, string) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, KindInternal.Code(), "internal server error"
	}

	switch appErr.Kind {
	case KindBadRequest:
		return http.StatusBadRequest, appErr.Kind.Code(), appErr.Message
	case KindUnauthorized:
		return http.StatusUnauthorized, appErr.Kind.Code(), appErr.Message
	case KindForbidden:
		return http.StatusForbidden, appErr.Kind.Code(), appErr.Message
	case KindNotFound:
		return http.StatusNotFound, appErr.Kind.Code(), appErr.Message
	case KindConflict:
		return http.StatusConflict, appErr.Kind.Code(), appErr.Message
	case KindRateLimited:
		return http.StatusTooManyRequests, appErr.Kind.Code(), appErr.Message
	default:
		return http.StatusInternalServerError, KindInternal.Code(), "internal server error"
	}
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
