// Package errs defines the error kinds shared by the domain, application and
// HTTP layers. Callers classify with errors.Is against the sentinel kinds.
package errs

import "errors"

var (
	ErrValidation      = errors.New("validation error")
	ErrUnauthenticated = errors.New("authentication error")
	ErrForbidden       = errors.New("authorization error")
	ErrNotFound        = errors.New("not found")
	ErrExternal        = errors.New("external service error")
	ErrStore           = errors.New("store error")
)

// Error carries a kind, a client-safe message and an optional cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func newError(kind error, msg string, cause error) error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

func Validation(msg string) error      { return newError(ErrValidation, msg, nil) }
func Unauthenticated(msg string) error { return newError(ErrUnauthenticated, msg, nil) }
func Forbidden(msg string) error       { return newError(ErrForbidden, msg, nil) }
func NotFound(msg string) error        { return newError(ErrNotFound, msg, nil) }

func External(msg string, cause error) error { return newError(ErrExternal, msg, cause) }
func Store(msg string, cause error) error    { return newError(ErrStore, msg, cause) }

// Message returns the client-safe message of the outermost *Error, or "" if err
// carries none.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}
