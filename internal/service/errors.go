package service

import (
	"errors"
	"strings"
)

var (
	// ErrAuthRequired is returned when an operation needs a signed-in user.
	ErrAuthRequired = errors.New("authentication required")
	// ErrForbidden is returned when the user is neither the author nor an admin.
	ErrForbidden = errors.New("only the author can modify this recipe")
	// ErrNotFound is returned for ids that are not in the collection.
	ErrNotFound = errors.New("recipe not found")
	// ErrPersistence wraps store write failures. The in-memory state is
	// unchanged when it is returned.
	ErrPersistence = errors.New("failed to persist changes")
)

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

// FieldError is one failing field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// orNil returns nil when nothing was recorded so callers can return it directly.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Has reports whether field failed.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// AuthError is an identity failure. Error returns only the user-safe message;
// the underlying cause is available through Unwrap for logging.
type AuthError struct {
	Op       string
	Message  string
	Conflict bool
	Err      error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

const (
	msgBadCredentials = "incorrect email or password"
	msgAccountExists  = "could not create account"
	msgGoogleFailed   = "could not sign in with Google"
)

func authError(op, message string, err error) *AuthError {
	return &AuthError{Op: op, Message: message, Err: err}
}
