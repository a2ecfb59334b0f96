// Package stores provides a file-based UserStore implementation, suitable
// for development and tests. Production deployments use the gorm store.
package stores

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	authkit "github.com/icchy-san/authkit"
)

// fsUser is the on-disk record shape.
type fsUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Image     string    `json:"image"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FSUserStore stores users as JSON files keyed by email. Create uses an
// exclusive file create, so two concurrent signups for the same email
// resolve with the second writer getting ErrDuplicateEmail.
type FSUserStore struct {
	StoragePath string
}

func NewFSUserStore(storagePath string) *FSUserStore {
	return &FSUserStore{StoragePath: storagePath}
}

// userPath hashes the email into the file name; emails are matched exactly
// as stored, case included.
func (s *FSUserStore) userPath(email string) string {
	sum := sha256.Sum256([]byte(email))
	return filepath.Join(s.StoragePath, "users", hex.EncodeToString(sum[:])+".json")
}

func (s *FSUserStore) GetUserByEmail(ctx context.Context, email string) (*authkit.User, error) {
	data, err := os.ReadFile(s.userPath(email))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var rec fsUser
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("corrupt user record: %w", err)
	}
	return rec.toUser(), nil
}

func (s *FSUserStore) CreateUser(ctx context.Context, user *authkit.User) error {
	path := s.userPath(user.Email)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	now := time.Now()
	data, err := json.MarshalIndent(fromUser(user, now, now), "", "  ")
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return authkit.ErrDuplicateEmail
		}
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func (s *FSUserStore) SaveUser(ctx context.Context, user *authkit.User) error {
	path := s.userPath(user.Email)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	createdAt := time.Now()
	if data, err := os.ReadFile(path); err == nil {
		var existing fsUser
		if json.Unmarshal(data, &existing) == nil && !existing.CreatedAt.IsZero() {
			createdAt = existing.CreatedAt
		}
	}

	data, err := json.MarshalIndent(fromUser(user, createdAt, time.Now()), "", "  ")
	if err != nil {
		return err
	}
	return writeAtomicFile(path, data)
}

func (r *fsUser) toUser() *authkit.User {
	return &authkit.User{
		ID:       r.ID,
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		Image:    r.Image,
		Provider: r.Provider,
	}
}

func fromUser(u *authkit.User, createdAt, updatedAt time.Time) *fsUser {
	return &fsUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Password:  u.Password,
		Image:     u.Image,
		Provider:  u.Provider,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}
