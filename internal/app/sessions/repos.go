package sessions

import (
	"context"

	"github.com/adralidus/lgl-portal/internal/domain"
)

type DatabaseRepo interface {
	// GetSession returns the session with the given id.
	// If no session is found, an error domain.ErrNotFound is returned.
	GetSession(ctx context.Context, id domain.SessionIdentifier) (*domain.Session, error)
	// GetAllSessions returns all sessions, newest first.
	GetAllSessions(ctx context.Context) ([]domain.Session, error)
	// GetUserSessions returns all sessions of the given user, newest first.
	GetUserSessions(ctx context.Context, id domain.UserIdentifier) ([]domain.Session, error)
	// SaveSession updates or creates the session with the given id.
	SaveSession(ctx context.Context, id domain.SessionIdentifier,
		updateFunc func(s *domain.Session) (*domain.Session, error)) error
	// TerminateAllSessions deactivates every active session, all or nothing.
	// It returns the number of sessions that were actually deactivated.
	TerminateAllSessions(ctx context.Context) (int, error)
	// TerminateUserSessions deactivates all active sessions of the given user.
	TerminateUserSessions(ctx context.Context, id domain.UserIdentifier) (int, error)
}

type AuditRecorder interface {
	// Record appends one audit entry for an administrative action.
	Record(ctx context.Context, severity domain.AuditSeverityLevel, action, entityType, entityId string,
		details map[string]any) error
}
