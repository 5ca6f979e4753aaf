package common

import (
	"errors"
	"strings"
)

var (
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("validation error")
	// ErrConflict marks duplicates and invalid state transitions.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized marks a missing or invalid credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden marks a valid credential with an insufficient role.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound marks a referenced record that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUpstream marks a failed third-party dependency.
	ErrUpstream = errors.New("upstream unavailable")
	// ErrInternal marks unexpected store failures.
	ErrInternal = errors.New("internal error")
)

// Message strips the sentinel prefix from a wrapped error so the detail can be
// shown to a client, e.g. "validation error: weight must be positive" -> "weight must be positive".
func Message(err error) string {
	for _, sentinel := range []error{ErrValidation, ErrConflict, ErrUnauthorized, ErrForbidden, ErrNotFound, ErrUpstream, ErrInternal} {
		if errors.Is(err, sentinel) {
			return strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
		}
	}
	return err.Error()
}
