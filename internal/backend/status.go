package backend

import (
	"errors"
	"fmt"
)

// StatusError is a non-2xx backend response. Message is the plain-text body
// the backend wrote with http.Error.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("status %d", e.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

// MessageOf returns the backend's own error text carried by err, if any.
func MessageOf(err error) (string, bool) {
	var serr *StatusError
	if errors.As(err, &serr) && serr.Message != "" {
		return serr.Message, true
	}
	return "", false
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var serr *StatusError
	if errors.As(err, &serr) {
		return serr.StatusCode
	}
	return 0
}
