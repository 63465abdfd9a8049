package ytcomments

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	EINTERNAL = "internal"
	EINVALID  = "invalid"
	ENOTFOUND = "not_found"

	// ETRANSIENT marks a single failed request attempt: a connection error
	// or any non-200 status. It is retried and never reaches the caller of
	// a crawl.
	ETRANSIENT = "transient_request_failure"

	// EMALFORMED marks a 200 response whose body is not the expected payload.
	EMALFORMED = "malformed_response"

	// EEXHAUSTED marks a request that failed on every allowed attempt.
	EEXHAUSTED = "exhausted_retries"

	// ETOKEN marks an initial page that lacks a session token marker.
	ETOKEN = "token_not_found"
)

// Error represents an application-specific error.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("ytcomments error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
