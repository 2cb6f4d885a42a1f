package domain

import (
	"time"
)

type SessionIdentifier string

type SessionStatus string

const (
	SessionStatusTerminated SessionStatus = "Terminated"
	SessionStatusExpired    SessionStatus = "Expired"
	SessionStatusIdle       SessionStatus = "Idle"
	SessionStatusActive     SessionStatus = "Active"
)

// DefaultSessionIdleTimeout is the inactivity window after which an otherwise
// valid session is reported as Idle.
const DefaultSessionIdleTimeout = 30 * time.Minute

// Session is a raw platform login session. Its operational status is never
// stored, it is derived from the stored timestamps, see Status.
type Session struct {
	BaseModel

	Identifier     SessionIdentifier `gorm:"primaryKey;column:identifier"`
	UserIdentifier UserIdentifier    `gorm:"index;column:user_identifier"`

	LastActivity time.Time `gorm:"column:last_activity"`
	ExpiresAt    time.Time `gorm:"column:expires_at"`

	IsActive bool   `gorm:"column:is_active;index:idx_ses_active"`
	ClientIP string `gorm:"column:client_ip"`
}

// Status derives the operational session status. Precedence matters:
// the terminal flag dominates, then absolute expiry, then the idle window.
func (s *Session) Status(now time.Time, idleTimeout time.Duration) SessionStatus {
	if idleTimeout <= 0 {
		idleTimeout = DefaultSessionIdleTimeout
	}

	switch {
	case !s.IsActive:
		return SessionStatusTerminated
	case now.After(s.ExpiresAt):
		return SessionStatusExpired
	case now.Sub(s.LastActivity) > idleTimeout:
		return SessionStatusIdle
	default:
		return SessionStatusActive
	}
}

// Elapsed returns the session lifetime up to the given point in time.
func (s *Session) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.CreatedAt)
}

// MonitoredSession combines a raw session with its derived status for display.
type MonitoredSession struct {
	Session
	Status SessionStatus
}
