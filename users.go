package authkit

import (
	"context"
	"errors"
)

// Provider tags recorded on user rows
const (
	ProviderLocal    = "local"
	ProviderGoogle   = "google"
	ProviderSupabase = "supabase"
)

// ErrDuplicateEmail is returned by UserStore.CreateUser when the email is
// already taken. Stores back it with an atomic uniqueness constraint so a
// race between two concurrent signups is settled by the store rejecting the
// second writer, not by application-level locking.
var ErrDuplicateEmail = errors.New("email already registered")

// User is a single account row. Password holds the bcrypt hash and is empty
// for accounts created through an external provider.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"-"`
	Image    string `json:"image"`
	Provider string `json:"provider"`
}

// Sanitized returns a copy with the password hash stripped. Everything that
// leaves the store layer (session payloads, signup results) goes through
// this first.
func (u *User) Sanitized() *User {
	out := *u
	out.Password = ""
	return &out
}

// UserStore persists user records. Email is the lookup key and is unique
// across all provider types, exactly as stored (case-sensitive).
type UserStore interface {
	// GetUserByEmail returns (nil, nil) when no user matches.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// CreateUser inserts a new row. Returns ErrDuplicateEmail when the
	// email is already registered.
	CreateUser(ctx context.Context, user *User) error

	// SaveUser updates an existing row (upsert).
	SaveUser(ctx context.Context, user *User) error
}
