package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was hit.
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnauthorized indicates the caller is not signed in or the token was rejected.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidInput indicates the request failed validation before reaching the backend.
	ErrInvalidInput = errors.New("invalid input")
)

type inputError struct{ msg string }

func (e inputError) Error() string { return e.msg }

func (e inputError) Is(target error) bool { return target == ErrInvalidInput }

// Invalid returns a validation error that reads as msg and matches ErrInvalidInput.
func Invalid(msg string) error {
	return inputError{msg: msg}
}
