package authkit

import "fmt"

// Error codes for structured validation failures
const (
	ErrCodeMissingField = "missing_field"
	ErrCodeInvalidEmail = "invalid_email"
	ErrCodeEmailExists  = "email_exists"
	ErrCodeParseError   = "parse_error"
)

// AuthError is a structured, field-level validation failure. It is reported
// to the client as a 400 response and never triggers a failure redirect.
type AuthError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// NewAuthError creates a new AuthError
func NewAuthError(code, message, field string) *AuthError {
	return &AuthError{Code: code, Message: message, Field: field}
}

func (e *AuthError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AuthorizationError signals that credential verification failed: bad
// credentials, no matching user, or an external provider rejection. The
// Authenticator recovers it into a failure redirect plus a session error
// message. The message is optional and must never distinguish an unknown
// email from a wrong password.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	if e.Message == "" {
		return "authorization failed"
	}
	return e.Message
}

// ConfigurationError is a fatal misconfiguration: a missing environment
// secret or an unregistered strategy name. It is never recovered into a
// user-facing failure; the process must not serve traffic with one pending.
type ConfigurationError struct {
	msg string
}

func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{msg: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string { return e.msg }
