// Package errors defines the error kinds shared by every layer. Use cases return
// errors wrapping one of these sentinels and the HTTP layer picks a status code
// from the sentinel alone, never from the message.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrIntegrity marks sealed data that failed authentication: tampered, truncated
	// or sealed under another key. Retrying with the same inputs cannot succeed.
	ErrIntegrity = errors.New("integrity check failed")

	// ErrConfiguration marks settings the process cannot start with.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrUpstream marks a failed or unexpected answer from the remote ERPNext instance.
	ErrUpstream = errors.New("upstream request failed")
)

// Wrap prefixes err with message, keeping err matchable with Is. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a formatted prefix.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// Is reports whether err wraps target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
