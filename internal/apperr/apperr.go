package apperr

import "errors"

var (
	// ErrNotFound marks failures where the entity is absent or not owned by
	// the requesting customer.
	ErrNotFound = errors.New("not found")

	// ErrInvalid marks failures caused by the client's input, including
	// rejected verification codes.
	ErrInvalid = errors.New("invalid request")
)

// Error is a service failure carrying a message that is safe to show to
// clients. It unwraps to its kind so callers can branch with errors.Is.
type Error struct {
	kind    error
	Message string
}

// New builds a service error of the given kind.
func New(kind error, message string) *Error {
	return &Error{kind: kind, Message: message}
}

// NotFound is shorthand for an ErrNotFound service error.
func NotFound(message string) *Error {
	return New(ErrNotFound, message)
}

// Invalid is shorthand for an ErrInvalid service error.
func Invalid(message string) *Error {
	return New(ErrInvalid, message)
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.kind
}

// Message returns the client-facing message of the first service error in
// err's chain.
func Message(err error) (string, bool) {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Message, true
	}
	return "", false
}
