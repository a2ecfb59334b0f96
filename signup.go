package authkit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// msgEmailAlreadyRegistered is the field-level message shown on the signup
// form when the email is taken.
const msgEmailAlreadyRegistered = "メールアドレスは既に登録済みです"

// SignupInput is the raw registration payload. All fields are required.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Provider string
}

// FieldError is a form-field error rendered next to the offending field.
type FieldError struct {
	Message string `json:"message"`
}

// SignupResult is the outcome of a registration attempt. A duplicate email
// is modeled as data — Error set, no Go error — because the caller needs to
// render a field-specific message without aborting the whole request. The
// password never appears here in any form.
type SignupResult struct {
	ID    string      `json:"id,omitempty"`
	Email string      `json:"email,omitempty"`
	Name  string      `json:"name,omitempty"`
	Error *FieldError `json:"error,omitempty"`
}

// SignupService creates local accounts from name/email/password input.
type SignupService struct {
	Store  UserStore
	Hasher *PasswordHasher
}

// CreateUser registers a new account. Missing input is a structured
// validation failure; an already-registered email yields a result carrying
// the duplicate message. Losing a concurrent-create race for the same email
// lands on the same duplicate result, courtesy of the store's uniqueness
// constraint.
func (s *SignupService) CreateUser(ctx context.Context, in SignupInput) (*SignupResult, error) {
	switch {
	case in.Name == "":
		return nil, NewAuthError(ErrCodeMissingField, "Invalid input", "name")
	case in.Email == "":
		return nil, NewAuthError(ErrCodeMissingField, "Invalid input", "email")
	case in.Password == "":
		return nil, NewAuthError(ErrCodeMissingField, "Invalid input", "password")
	case in.Provider == "":
		return nil, NewAuthError(ErrCodeMissingField, "Invalid input", "provider")
	}

	existing, err := s.Store.GetUserByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		return &SignupResult{Error: &FieldError{Message: msgEmailAlreadyRegistered}}, nil
	}

	hashed, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:       uuid.NewString(),
		Name:     in.Name,
		Email:    in.Email,
		Password: hashed,
		Image:    "",
		Provider: in.Provider,
	}
	if err := s.Store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return &SignupResult{Error: &FieldError{Message: msgEmailAlreadyRegistered}}, nil
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user created", "user_id", user.ID, "provider", user.Provider)
	return &SignupResult{ID: user.ID, Email: user.Email, Name: user.Name}, nil
}
