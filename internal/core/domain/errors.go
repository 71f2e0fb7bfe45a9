package domain

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is the root of every authentication failure. Callers only
// ever see this generic form; the wrapped variants exist for logging.
var ErrUnauthorized = errors.New("unauthorized")

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", ErrUnauthorized)
	ErrInvalidToken       = fmt.Errorf("%w: invalid token", ErrUnauthorized)
	ErrTokenExpired       = fmt.Errorf("%w: token expired", ErrUnauthorized)
	ErrTokenMalformed     = fmt.Errorf("%w: malformed token", ErrUnauthorized)
)

var ErrInvalidInput = errors.New("invalid input")
var ErrUserExists = errors.New("username already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrTaskNotFound = errors.New("task not found")

// ValidationError reports the first constraint a client payload violated.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// RejectionReason classifies a token verification failure for logs and
// metrics. It is never shown to clients.
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenMalformed):
		return "malformed"
	default:
		return "invalid"
	}
}
