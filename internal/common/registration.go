package common

import (
	"errors"
	"fmt"
)

// MaxPublicMessageLength caps the message shown to API clients.
const MaxPublicMessageLength = 200

// Messages used when a failure kind carries no rule-specific text.
const (
	EmailAlreadyExistsMessage = "El correo ya está registrado"
	InternalErrorMessage      = "Error interno del servidor"
	UnknownErrorMessage       = "Error desconocido"
)

// RegistrationError is the single failure type returned by the registration
// pipeline. Kind is one of the registration sentinels above, Message is the
// user-facing text and Err keeps the underlying cause for diagnostics.
type RegistrationError struct {
	Kind    error
	Message string
	Err     error
}

func NewRegistrationError(kind error, message string, cause error) *RegistrationError {
	return &RegistrationError{Kind: kind, Message: message, Err: cause}
}

func (e *RegistrationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *RegistrationError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Code returns a stable reason code for the failure kind.
func (e *RegistrationError) Code() string {
	switch e.Kind {
	case ErrInvalidEmailFormat:
		return "INVALID_EMAIL_FORMAT"
	case ErrInvalidPasswordFormat:
		return "INVALID_PASSWORD_FORMAT"
	case ErrEmailAlreadyExists:
		return "EMAIL_ALREADY_EXISTS"
	case ErrPersistence:
		return "PERSISTENCE_FAILURE"
	case ErrTokenIssuance:
		return "TOKEN_ISSUANCE_FAILURE"
	default:
		return "INTERNAL_ERROR"
	}
}

// Internal reports whether the failure is an opaque server-side one.
func (e *RegistrationError) Internal() bool {
	return !errors.Is(e.Kind, ErrInvalidEmailFormat) &&
		!errors.Is(e.Kind, ErrInvalidPasswordFormat) &&
		!errors.Is(e.Kind, ErrEmailAlreadyExists)
}

// PublicMessage returns the text that may be shown to a client. Internal
// failures never leak their cause.
func (e *RegistrationError) PublicMessage() string {
	if e.Internal() {
		return Truncate(InternalErrorMessage, MaxPublicMessageLength)
	}
	return Truncate(e.Message, MaxPublicMessageLength)
}

// Truncate shortens message to at most maxLength runes, marking the cut
// with "...".
func Truncate(message string, maxLength int) string {
	if message == "" {
		return UnknownErrorMessage
	}
	r := []rune(message)
	if len(r) <= maxLength {
		return message
	}
	if maxLength <= 3 {
		return string(r[:maxLength])
	}
	return string(r[:maxLength-3]) + "..."
}
