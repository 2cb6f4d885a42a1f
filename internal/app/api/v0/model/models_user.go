package model

import (
	"time"

	"github.com/adralidus/lgl-portal/internal/domain"
)

type User struct {
	Identifier string `json:"Identifier"`
	Username   string `json:"Username" binding:"required"`
	Email      string `json:"Email" binding:"omitempty,email"`
	Role       string `json:"Role" binding:"required,oneof=super_admin admin student"`

	Firstname string `json:"Firstname"`
	Lastname  string `json:"Lastname"`
	Notes     string `json:"Notes"`

	// Password is write-only, it is never included in responses.
	Password string `json:"Password,omitempty"`

	Disabled       bool   `json:"Disabled"`
	DisabledReason string `json:"DisabledReason,omitempty"`
}

func NewUser(src *domain.User) *User {
	return &User{
		Identifier:     string(src.Identifier),
		Username:       src.Username,
		Email:          src.Email,
		Role:           string(src.Role),
		Firstname:      src.Firstname,
		Lastname:       src.Lastname,
		Notes:          src.Notes,
		Password:       "", // sanitize
		Disabled:       src.IsDisabled(),
		DisabledReason: src.DisabledReason,
	}
}

func NewUsers(src []domain.User) []User {
	results := make([]User, len(src))
	for i := range src {
		results[i] = *NewUser(&src[i])
	}
	return results
}

func NewDomainUser(src *User) *domain.User {
	now := time.Now()
	user := &domain.User{
		Identifier:     domain.UserIdentifier(src.Identifier),
		Username:       src.Username,
		Email:          src.Email,
		Role:           domain.UserRole(src.Role),
		Firstname:      src.Firstname,
		Lastname:       src.Lastname,
		Notes:          src.Notes,
		Password:       domain.PrivateString(src.Password),
		DisabledReason: src.DisabledReason,
	}

	if src.Disabled {
		user.Disabled = &now
		if user.DisabledReason == "" {
			user.DisabledReason = domain.DisabledReasonAdminEdit
		}
	}

	return user
}
