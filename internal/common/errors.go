// Package common defines sentinel errors, constants and small helpers shared
// by the client agent and the backend service. Match errors with errors.Is.
package common

import "errors"

var (
	// repository specific errors
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// service specific errors
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// remote store switched off in backend config
	ErrorRemoteDisabled = errors.New("remote store is disabled")
	// remote store configured but not answering
	ErrorRemoteUnavailable = errors.New("remote store is unavailable")

	// token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
