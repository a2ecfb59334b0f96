package gorm

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	authkit "github.com/icchy-san/authkit"
)

// AutoMigrate runs database migrations for the auth tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserModel{})
}

// UserStore implements authkit.UserStore using GORM. Open the DB with
// gorm.Config{TranslateError: true} so unique violations surface as
// gorm.ErrDuplicatedKey.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*authkit.User, error) {
	var model UserModel
	err := s.db.WithContext(ctx).First(&model, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return model.ToUser(), nil
}

func (s *UserStore) CreateUser(ctx context.Context, user *authkit.User) error {
	err := s.db.WithContext(ctx).Create(UserToModel(user)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return authkit.ErrDuplicateEmail
	}
	return err
}

func (s *UserStore) SaveUser(ctx context.Context, user *authkit.User) error {
	return s.db.WithContext(ctx).Save(UserToModel(user)).Error
}
