package domain

import (
	"errors"
	"fmt"
)

var ErrConfigurationInvalid = errors.New("identity provider configuration invalid")
var ErrAuthentication = errors.New("authentication failed")
var ErrPartialRegistration = errors.New("account created but profile update failed")
var ErrStorageCorrupt = errors.New("stored identity record is corrupt")
var ErrSessionNotReady = errors.New("session not initialized")
var ErrEmptyPrompt = errors.New("prompt is empty")

// AuthError carries a user-displayable message for rejected credentials.
// It matches ErrAuthentication with errors.Is.
type AuthError struct {
	Message string
	Cause   error
}

// NewAuthError builds an AuthError with the given display message.
func NewAuthError(message string, cause error) *AuthError {
	return &AuthError{Message: message, Cause: cause}
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return ErrAuthentication.Error()
	}
	return e.Message
}

func (e *AuthError) Is(target error) bool { return target == ErrAuthentication }

func (e *AuthError) Unwrap() error { return e.Cause }

// PartialRegistrationError reports an account that exists without its display
// name. The account is not rolled back; callers may retry the profile update.
type PartialRegistrationError struct {
	Identity *UserIdentity
	Cause    error
}

func (e *PartialRegistrationError) Error() string {
	return fmt.Sprintf("%s: %v", ErrPartialRegistration, e.Cause)
}

func (e *PartialRegistrationError) Is(target error) bool { return target == ErrPartialRegistration }

func (e *PartialRegistrationError) Unwrap() error { return e.Cause }

// DisplayMessage returns the text a login form should render for err.
func DisplayMessage(err error) string {
	var authErr *AuthError
	switch {
	case errors.As(err, &authErr):
		return authErr.Error()
	case errors.Is(err, ErrPartialRegistration):
		return "Your account was created, but we could not save your name. Please try again."
	case errors.Is(err, ErrSessionNotReady):
		return "Authentication is still starting up. Please try again."
	default:
		return "Failed to authenticate."
	}
}
