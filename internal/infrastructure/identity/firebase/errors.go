package firebase

import (
	"fmt"
	"strings"
)

// APIError is the error payload returned by the Identity Toolkit API.
type APIError struct {
	Status  int
	Code    string
	Detail  string
	Message string
}

type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// user-caused failures and what the login form shows for them.
var rejectionMessages = map[string]string{
	"EMAIL_NOT_FOUND":             "Invalid email or password.",
	"INVALID_PASSWORD":            "Invalid email or password.",
	"INVALID_LOGIN_CREDENTIALS":   "Invalid email or password.",
	"INVALID_EMAIL":               "Please enter a valid email address.",
	"MISSING_PASSWORD":            "Please enter your email and password.",
	"MISSING_EMAIL":               "Please enter your email and password.",
	"EMAIL_EXISTS":                "An account with this email already exists.",
	"WEAK_PASSWORD":               "Password should be at least 6 characters.",
	"USER_DISABLED":               "This account has been disabled.",
	"TOO_MANY_ATTEMPTS_TRY_LATER": "Too many attempts. Please try again later.",
}

func newAPIError(status int, env errorEnvelope) *APIError {
	code, detail, _ := strings.Cut(env.Error.Message, ":")
	return &APIError{
		Status:  status,
		Code:    strings.TrimSpace(code),
		Detail:  strings.TrimSpace(detail),
		Message: env.Error.Message,
	}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("identity toolkit: %d %s", e.Status, e.Message)
}

// CredentialRejected reports whether the failure was caused by the submitted
// credentials rather than the service.
func (e *APIError) CredentialRejected() bool {
	_, ok := rejectionMessages[e.Code]
	return ok
}

func (e *APIError) UserMessage() string {
	if msg, ok := rejectionMessages[e.Code]; ok {
		return msg
	}
	return "Failed to authenticate."
}
