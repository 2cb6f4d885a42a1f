package domain

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type UserIdentifier string

type UserRole string

const (
	UserRoleSuperAdmin UserRole = "super_admin"
	UserRoleAdmin      UserRole = "admin"
	UserRoleStudent    UserRole = "student"
)

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleSuperAdmin, UserRoleAdmin, UserRoleStudent:
		return true
	}
	return false
}

// User is a platform account. Super admins manage the whole platform,
// admins get access to the oversight console, students only own sessions.
type User struct {
	BaseModel

	Identifier UserIdentifier `gorm:"primaryKey;column:identifier"`
	Username   string         `gorm:"uniqueIndex;column:username"`
	Email      string         `gorm:"index;column:email"`
	Role       UserRole       `gorm:"column:role;index:idx_usr_role"`

	Firstname string
	Lastname  string
	Notes     string

	Password PrivateString `gorm:"column:password"` // bcrypt hash

	Disabled       *time.Time `gorm:"index;column:disabled"` // if set, the user is disabled and cannot log in
	DisabledReason string
}

// IsDisabled returns true if the user is disabled. Disabled users cannot log in,
// their active sessions get terminated.
func (u *User) IsDisabled() bool {
	return u.Disabled != nil
}

func (u *User) DisplayName() string {
	if u.Firstname == "" && u.Lastname == "" {
		return u.Username
	}
	return fmt.Sprintf("%s %s", u.Firstname, u.Lastname)
}

func (u *User) CheckPassword(password string) error {
	if u.IsDisabled() {
		return errors.New("user disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return errors.New("wrong password")
	}

	return nil
}

func (u *User) HashPassword() error {
	if u.Password == "" {
		return nil // nothing to hash
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	u.Password = PrivateString(hash)
	return nil
}

func (u *User) Validate() error {
	if u.Identifier == "" {
		return fmt.Errorf("missing user identifier: %w", ErrInvalidData)
	}
	if u.Username == "" {
		return fmt.Errorf("missing username: %w", ErrInvalidData)
	}
	if !u.Role.IsValid() {
		return fmt.Errorf("invalid role %s: %w", u.Role, ErrInvalidData)
	}
	return nil
}
