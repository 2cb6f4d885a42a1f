package auth

import (
	"context"

	"github.com/adralidus/lgl-portal/internal/domain"
)

type UserDatabaseRepo interface {
	// GetUser returns the user with the given id.
	GetUser(ctx context.Context, id domain.UserIdentifier) (*domain.User, error)
	// GetUserByUsername returns the user with the given username.
	// If no user is found, an error domain.ErrNotFound is returned.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

type SessionDatabaseRepo interface {
	// GetSession returns the session with the given id.
	GetSession(ctx context.Context, id domain.SessionIdentifier) (*domain.Session, error)
	// SaveSession updates or creates the session with the given id.
	SaveSession(ctx context.Context, id domain.SessionIdentifier,
		updateFunc func(s *domain.Session) (*domain.Session, error)) error
}
