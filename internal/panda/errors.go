package panda

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrMissingCredential = errors.New("panda token is missing or too short")
	ErrInvalidInput      = errors.New("video id not found")
	ErrTransport         = errors.New("panda request failed")

	ErrBadRequest       = errors.New("bad request, check the provided parameters")
	ErrUnauthorized     = errors.New("unauthorized, authentication failed or not provided")
	ErrNotFound         = errors.New("not found, videos or the API were not found")
	ErrRemoteServer     = errors.New("internal server error, please try again later")
	ErrUnexpectedStatus = errors.New("unexpected error")
)

// StatusError is returned for any non-200 response. It unwraps to the
// sentinel matching its status code, so callers can use errors.Is.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("panda error %d: %v", e.Code, e.Unwrap())
}

func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusInternalServerError:
		return ErrRemoteServer
	default:
		return ErrUnexpectedStatus
	}
}
