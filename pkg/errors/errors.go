package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the different failure classes of a scrape run
type ErrorType string

const (
	ErrorTypeRender     ErrorType = "render"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeHTTPStatus ErrorType = "http_status"
	ErrorTypeFilesystem ErrorType = "filesystem"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Error represents a classified error with an optional HTTP status code
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error: %s", e.Type, e.Message)
	if e.Code != 0 {
		msg = fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error wrapping err
func New(errorType ErrorType, message string, err error) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Err:     err,
	}
}

// NewHTTPStatus creates an error for a non-success HTTP response
func NewHTTPStatus(code int, url string) *Error {
	return &Error{
		Type:    ErrorTypeHTTPStatus,
		Message: fmt.Sprintf("unexpected status from %s", url),
		Code:    code,
	}
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown if err is not classified
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsType reports whether err is a classified error of the given type
func IsType(err error, errorType ErrorType) bool {
	return err != nil && TypeOf(err) == errorType
}

// IsSuccessStatusCode checks if an HTTP status code counts as a successful download
func IsSuccessStatusCode(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
