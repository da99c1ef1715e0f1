package gateway

import (
	"errors"
	"fmt"
)

// ErrSessionExpired is returned when a 401 could not be cured by a refresh.
var ErrSessionExpired = errors.New("gateway: session expired, please log in again")

// ServerError is a response the server produced: a non-2xx status or an
// envelope with success=false.
type ServerError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.Status)
	}
	return fmt.Sprintf("server returned status %d: %s", e.Status, e.Message)
}

// NetworkError means the request went out but no response came back.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: no response: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RequestError means the request could not be built or its response decoded.
type RequestError struct {
	Op  string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// StatusCode extracts the HTTP status from a *ServerError, or 0.
func StatusCode(err error) int {
	var se *ServerError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}
