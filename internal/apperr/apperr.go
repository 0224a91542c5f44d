// Package apperr carries the error taxonomy surfaced to API callers.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindInvalidRequest  Kind = "invalid_request"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindInternal        Kind = "internal"
)

var statusByKind = map[Kind]int{
	KindUnauthenticated: http.StatusUnauthorized,
	KindForbidden:       http.StatusForbidden,
	KindInvalidRequest:  http.StatusBadRequest,
	KindNotFound:        http.StatusNotFound,
	KindConflict:        http.StatusConflict,
	KindInternal:        http.StatusInternalServerError,
}

// Error is a classified failure. Message is safe to show to the caller; Err
// holds the cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status is the HTTP status code for the error kind.
func (e *Error) Status() int {
	if s, ok := statusByKind[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func newErr(k Kind, msg string, cause error) *Error {
	return &Error{Kind: k, Message: msg, Err: cause}
}

func Unauthenticated(msg string) *Error { return newErr(KindUnauthenticated, msg, nil) }
func Forbidden(msg string) *Error       { return newErr(KindForbidden, msg, nil) }
func InvalidRequest(msg string) *Error  { return newErr(KindInvalidRequest, msg, nil) }
func NotFound(msg string) *Error        { return newErr(KindNotFound, msg, nil) }
func Conflict(msg string) *Error        { return newErr(KindConflict, msg, nil) }

// Internal hides cause behind the generic message.
func Internal(cause error) *Error {
	return newErr(KindInternal, "Internal server error", cause)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries an *Error of kind k.
func Is(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
