package sdk

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuthInvalid is returned when the Member backend rejects the credential or token.
	ErrAuthInvalid = errors.New("authentication rejected")

	// ErrAuthTransient is returned when an auth check could not complete (network, timeout, 5xx).
	ErrAuthTransient = errors.New("authentication unavailable")

	// ErrDataUnavailable is returned when a backend payload could not be fetched or decoded.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrValidation is returned when caller-supplied input is malformed.
	ErrValidation = errors.New("validation failed")

	// ErrAccessDenied is returned when a gated read is attempted without the capability.
	ErrAccessDenied = errors.New("access denied")

	// ErrNotInitialized is returned when the session is used before Initialize.
	ErrNotInitialized = errors.New("session not initialized")
)

// ValidationError describes a single malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// StatusError is a non-2xx response from one of the backends.
type StatusError struct {
	Backend    BackendKind
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s backend %s returned %d %s", e.Backend, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// Unauthorized reports whether the backend rejected the bearer token.
func (e *StatusError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// AccessError is returned by gated reads when the gate does not allow the principal.
type AccessError struct {
	Capability Capability
	Decision   Decision
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("%s requires membership (%s)", e.Capability, e.Decision)
}

func (e *AccessError) Unwrap() error { return ErrAccessDenied }

// isUnauthorized reports whether err carries a 401-class backend response.
func isUnauthorized(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Unauthorized()
}

// classifyAuthError maps a Member backend failure onto the auth taxonomy.
func classifyAuthError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDataUnavailable) {
		return err
	}
	if isUnauthorized(err) {
		return fmt.Errorf("%w: %v", ErrAuthInvalid, err)
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode < http.StatusInternalServerError &&
		statusErr.StatusCode != http.StatusTooManyRequests && statusErr.StatusCode != http.StatusRequestTimeout {
		return fmt.Errorf("%w: %v", ErrAuthInvalid, err)
	}

	// Timeouts, transport errors and 5xx: the credential may still be good.
	return fmt.Errorf("%w: %v", ErrAuthTransient, err)
}
