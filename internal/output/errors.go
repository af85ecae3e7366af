package output

import (
	"errors"
	"fmt"
)

// Error carries everything the writer needs to report a failure: a
// taxonomy code for the exit status, a user-facing message, and an
// optional hint with the next thing to try.
type Error struct {
	Code       string
	Message    string
	Hint       string
	HTTPStatus int
	Retryable  bool
	Cause      error
}

func (e *Error) Error() string {
	if e.Hint == "" {
		return e.Message
	}
	return e.Message + ": " + e.Hint
}

func (e *Error) Unwrap() error { return e.Cause }

// ExitCode maps the error's taxonomy code to a process exit code.
func (e *Error) ExitCode() int {
	return ExitCodeFor(e.Code)
}

// AsError coerces any error into the taxonomy. Errors that did not
// originate here are treated as API failures with a generic code.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Code: CodeAPI, Message: err.Error(), Cause: err}
}

// ErrUsage marks bad invocations: unknown flags, malformed dates,
// missing arguments.
func ErrUsage(msg string) *Error {
	return &Error{Code: CodeUsage, Message: msg}
}

// ErrUsageHint is ErrUsage with a suggested correction.
func ErrUsageHint(msg, hint string) *Error {
	return &Error{Code: CodeUsage, Message: msg, Hint: hint}
}

func ErrNotFound(resource, identifier string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, identifier),
	}
}

// ErrAuth covers missing, expired, and rejected tokens.
func ErrAuth(msg string) *Error {
	return &Error{
		Code:       CodeAuth,
		Message:    msg,
		Hint:       "Run: dayplan auth login",
		HTTPStatus: 401,
	}
}

// ErrRateLimit is retryable; the client's backoff honors the
// Retry-After value when the server sent one.
func ErrRateLimit(retryAfter int) *Error {
	hint := "Try again later"
	if retryAfter > 0 {
		hint = fmt.Sprintf("Try again in %d seconds", retryAfter)
	}
	return &Error{
		Code:       CodeRateLimit,
		Message:    "Rate limited",
		Hint:       hint,
		HTTPStatus: 429,
		Retryable:  true,
	}
}

// ErrNetwork wraps transport failures (DNS, refused connections,
// timeouts). Retryable, since the request never reached the server.
func ErrNetwork(cause error) *Error {
	return &Error{
		Code:      CodeNetwork,
		Message:   "Network error",
		Hint:      cause.Error(),
		Retryable: true,
		Cause:     cause,
	}
}

// ErrAPI reports a server-side failure with its HTTP status.
func ErrAPI(status int, msg string) *Error {
	return &Error{
		Code:       CodeAPI,
		Message:    msg,
		HTTPStatus: status,
	}
}
