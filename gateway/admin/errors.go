// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package admin

import "github.com/zeebo/errs"

// Error is default error class for admin package.
var Error = errs.Class("admin")

// ErrorResponse is an API error that also implements the error interface.
type ErrorResponse struct {
	StatusCode int
	Message    string
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

var (
	// ErrBadRequest is returned when the request is malformed.
	ErrBadRequest = &ErrorResponse{StatusCode: 400, Message: "bad request"}

	// ErrForbidden is returned when the request carries no valid token.
	ErrForbidden = &ErrorResponse{StatusCode: 403, Message: "required a valid authorization token"}

	// ErrAuthorizationNotEnabled is returned when no token is configured.
	ErrAuthorizationNotEnabled = &ErrorResponse{StatusCode: 403, Message: "Authorization not enabled."}

	// ErrUnavailable is returned when the bit store cannot be reached.
	ErrUnavailable = &ErrorResponse{StatusCode: 503, Message: "filter store unavailable"}

	// ErrInternalError is returned when an internal error occurs.
	ErrInternalError = &ErrorResponse{StatusCode: 500, Message: "internal error"}
)
