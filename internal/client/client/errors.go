package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrDecode       = errors.New("malformed response")
)

// ProtocolError is a non-2xx answer from the backend. Message is the server's
// own message when the body carried one, otherwise "Error: <status text>".
type ProtocolError struct {
	Status  int
	Message string
}

func (e *ProtocolError) Error() string {
	return e.Message
}

// Unwrap lets callers match ProtocolError against the sentinels.
func (e *ProtocolError) Unwrap() error {
	return mapStatus(e.Status)
}

func newProtocolError(status int, serverMessage string) *ProtocolError {
	msg := serverMessage
	if msg == "" {
		msg = fmt.Sprintf("Error: %s", http.StatusText(status))
	}
	return &ProtocolError{Status: status, Message: msg}
}

func mapStatus(status int) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return ErrUnavailable
	default:
		return nil
	}
}
