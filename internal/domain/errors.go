package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a row or stored object does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique key is already taken.
	ErrConflict = errors.New("already exists")
	// ErrAccountExists is the ErrConflict of sign-up.
	ErrAccountExists = fmt.Errorf("account %w", ErrConflict)
	// ErrInvalidCredentials is returned by sign-in for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid login credentials")
	// ErrSignUpDisabled is returned by sign-up when registration is closed.
	ErrSignUpDisabled = errors.New("sign up is disabled")
)

// ValidationError is raised before any gateway call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// GatewayError wraps a failure of the auth, storage or row-store backends.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// PathResolutionError means a file URL does not belong to the configured object store.
type PathResolutionError struct {
	URL string
}

func (e *PathResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve storage path from %q", e.URL)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// UserMessage renders err for a transient notification.
func UserMessage(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	var perr *PathResolutionError
	if errors.As(err, &perr) {
		return "That file does not belong to this site's storage."
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "That item no longer exists."
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid login credentials."
	case errors.Is(err, ErrAccountExists):
		return "An account with that email already exists."
	case errors.Is(err, ErrConflict):
		return "A file with that name already exists. Please try again."
	case errors.Is(err, ErrSignUpDisabled):
		return "Sign up is disabled."
	}
	var gerr *GatewayError
	if errors.As(err, &gerr) {
		return fmt.Sprintf("Something went wrong: %v", gerr.Err)
	}
	return "Something went wrong. Please try again."
}
