package authkit

import (
	"fmt"
	"net/http"
	"net/url"
)

// PasswordStrategy verifies email/password form credentials against the
// user store. Registered as "user-pass".
type PasswordStrategy struct {
	Store  UserStore
	Hasher *PasswordHasher

	// Form field names, defaulting to "email" and "password"
	EmailField    string
	PasswordField string
}

func (s *PasswordStrategy) Name() string       { return "user-pass" }
func (s *PasswordStrategy) SessionKey() string { return SessionKeyUser }
func (s *PasswordStrategy) ErrorKey() string   { return SessionErrorKey }

// Authenticate looks the user up by exact email match and verifies the
// password against the stored hash. An unknown email and a wrong password
// fail identically: a bare AuthorizationError with no message, so nothing
// leaks about which one it was.
func (s *PasswordStrategy) Authenticate(w http.ResponseWriter, r *http.Request, opts *Options) (*Outcome, error) {
	form, err := requestForm(r, opts)
	if err != nil {
		return nil, err
	}

	email := form.Get(s.emailField())
	password := form.Get(s.passwordField())
	if email == "" {
		return nil, NewAuthError(ErrCodeMissingField, "Invalid Request", s.emailField())
	}
	if password == "" {
		return nil, NewAuthError(ErrCodeMissingField, "Invalid Request", s.passwordField())
	}

	user, err := s.Store.GetUserByEmail(r.Context(), email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, &AuthorizationError{}
	}
	if err := s.Hasher.Verify(user.Password, password); err != nil {
		return nil, &AuthorizationError{}
	}

	return &Outcome{Principal: user.Sanitized(), Subject: user.ID}, nil
}

func (s *PasswordStrategy) emailField() string {
	if s.EmailField != "" {
		return s.EmailField
	}
	return "email"
}

func (s *PasswordStrategy) passwordField() string {
	if s.PasswordField != "" {
		return s.PasswordField
	}
	return "password"
}

// requestForm returns the pre-parsed form when the caller supplied one, so
// a single-read request body is never consumed twice.
func requestForm(r *http.Request, opts *Options) (url.Values, error) {
	if opts != nil && opts.Form != nil {
		return opts.Form, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, NewAuthError(ErrCodeParseError, "Error parsing form", "")
	}
	return r.Form, nil
}
