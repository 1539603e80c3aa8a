// Package apperror is the closed set of failures the service surfaces to
// clients. Every business-rule failure is raised as an *Error carrying an
// HTTP status and a user-safe message, and rendered exactly once at the
// boundary by the echo error handler.
package apperror

import (
	"errors"
	"net/http"
)

type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func BadRequest(msg string) *Error   { return &Error{Status: http.StatusBadRequest, Message: msg} }
func Conflict(msg string) *Error     { return &Error{Status: http.StatusConflict, Message: msg} }
func Unauthorized(msg string) *Error { return &Error{Status: http.StatusUnauthorized, Message: msg} }
func Forbidden(msg string) *Error    { return &Error{Status: http.StatusForbidden, Message: msg} }
func NotFound(msg string) *Error     { return &Error{Status: http.StatusNotFound, Message: msg} }

// Internal hides the underlying cause from the client; the boundary logs it.
func Internal() *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "internal server error"}
}

func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
