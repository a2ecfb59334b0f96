// Package gorm implements the UserStore on a relational database through
// GORM. The unique index on email is what settles concurrent signup races:
// the second writer's insert fails and surfaces as ErrDuplicateEmail.
package gorm

import (
	"time"

	authkit "github.com/icchy-san/authkit"
)

// UserModel is the GORM model for users
type UserModel struct {
	ID        string    `gorm:"primaryKey;size:64"`
	Name      string    `gorm:"size:255"`
	Email     string    `gorm:"size:255;uniqueIndex"`
	Password  string    `gorm:"size:255"`
	Image     string    `gorm:"size:1024"`
	Provider  string    `gorm:"size:32"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string {
	return "users"
}

func (m *UserModel) ToUser() *authkit.User {
	return &authkit.User{
		ID:       m.ID,
		Name:     m.Name,
		Email:    m.Email,
		Password: m.Password,
		Image:    m.Image,
		Provider: m.Provider,
	}
}

func UserToModel(u *authkit.User) *UserModel {
	return &UserModel{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Password: u.Password,
		Image:    u.Image,
		Provider: u.Provider,
	}
}
