package resource

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is wrapped by a TransportError when the store answers 404.
	ErrNotFound = errors.New("resource not found")

	// ErrUnexpectedStatus is wrapped by a TransportError for any other
	// status the operation does not accept.
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrNotInMirror is returned by mirror-first operations (ToggleDone)
	// when the id has not been loaded into the mirror.
	ErrNotInMirror = errors.New("record not in local mirror")
)

// TransportError reports a failed call to the remote resource store:
// either the request never produced a response (StatusCode == 0) or the
// response status was not accepted by the operation.
type TransportError struct {
	Err        error
	Op         string
	Method     string
	URL        string
	StatusCode int
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s %s: %v", e.Op, e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("%s: %s %s: http %d: %v", e.Op, e.Method, e.URL, e.StatusCode, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func statusError(op, method, url string, status int) *TransportError {
	err := ErrUnexpectedStatus
	if status == http.StatusNotFound {
		err = ErrNotFound
	}
	return &TransportError{Op: op, Method: method, URL: url, StatusCode: status, Err: err}
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
