package users

import (
	"context"

	"github.com/adralidus/lgl-portal/internal/domain"
)

type DatabaseRepo interface {
	// GetUser returns the user with the given id.
	// If no user is found, an error domain.ErrNotFound is returned.
	GetUser(ctx context.Context, id domain.UserIdentifier) (*domain.User, error)
	// GetUserByUsername returns the user with the given username.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	// GetUserByEmail returns the user with the given email address.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	// GetAllUsers returns all users.
	GetAllUsers(ctx context.Context) ([]domain.User, error)
	// FindUsers searches users by identifier, name or email.
	FindUsers(ctx context.Context, search string) ([]domain.User, error)
	// SaveUser updates or creates the user with the given id.
	SaveUser(ctx context.Context, id domain.UserIdentifier,
		updateFunc func(u *domain.User) (*domain.User, error)) error
	// DeleteUser deletes the user with the given id.
	DeleteUser(ctx context.Context, id domain.UserIdentifier) error
}

type SessionTerminator interface {
	// TerminateUserSessions deactivates all active sessions of the given user.
	TerminateUserSessions(ctx context.Context, id domain.UserIdentifier) (int, error)
}

type AuditRecorder interface {
	// Record appends one audit entry for an administrative action.
	Record(ctx context.Context, severity domain.AuditSeverityLevel, action, entityType, entityId string,
		details map[string]any) error
}
