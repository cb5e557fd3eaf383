package core

import (
	"net/http"

	"github.com/pkg/errors"
)

var (
	// ErrNoToken is returned before any request is issued when no auth token is stored.
	ErrNoToken = errors.New("no token")

	// ErrBusy is returned when a submission is already pending.
	ErrBusy = errors.New("request already in progress")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// RequestError is a failed backend call. Message is the backend's `message` or the fallback.
type RequestError struct {
	StatusCode int
	Message    string
}

func (err *RequestError) Error() string {
	return err.Message
}

// IsUnauthorized reports whether err means the user has to log in (again).
func IsUnauthorized(err error) bool {
	switch e := errors.Cause(err).(type) {
	case *RequestError:
		return e.StatusCode == http.StatusUnauthorized
	default:
		return e == ErrNoToken
	}
}

// ErrorMessage returns the human-readable message shown for a failed action.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	switch e := errors.Cause(err).(type) {
	case *RequestError:
		if e.Message != "" {
			return e.Message
		}
	case *ValidationError:
		if msg := e.Error(); msg != "" {
			return msg
		}
	default:
		if e == ErrNoToken || e == ErrBusy {
			return e.Error()
		}
	}
	return fallback
}
