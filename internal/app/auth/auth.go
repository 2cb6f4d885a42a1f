package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	evbus "github.com/vardius/message-bus"

	"github.com/adralidus/lgl-portal/internal/app"
	"github.com/adralidus/lgl-portal/internal/config"
	"github.com/adralidus/lgl-portal/internal/domain"
)

type Authenticator struct {
	cfg      *config.Config
	bus      evbus.MessageBus
	users    UserDatabaseRepo
	sessions SessionDatabaseRepo
}

func NewAuthenticator(
	cfg *config.Config,
	bus evbus.MessageBus,
	users UserDatabaseRepo,
	sessions SessionDatabaseRepo,
) (*Authenticator, error) {
	a := &Authenticator{
		cfg:      cfg,
		bus:      bus,
		users:    users,
		sessions: sessions,
	}

	return a, nil
}

func (a *Authenticator) sessionLifetime() time.Duration {
	if a.cfg.Sessions.Lifetime > 0 {
		return a.cfg.Sessions.Lifetime
	}
	return 8 * time.Hour
}

// PlainLogin checks the given credentials and opens a new platform session.
// All failure modes look identical to the caller.
func (a *Authenticator) PlainLogin(ctx context.Context, username, password, clientIP string) (
	*domain.User, *domain.Session, error,
) {
	// the login endpoint is the only place where a missing user context is fine
	ctx = domain.SetUserInfo(ctx, domain.SystemAdminContextUserInfo())

	if username == "" || password == "" {
		return nil, nil, fmt.Errorf("invalid credentials")
	}

	user, err := a.users.GetUserByUsername(ctx, username)
	if err != nil {
		slog.Debug("failed to load user for login", "username", username, "error", err)
		return nil, nil, fmt.Errorf("invalid credentials")
	}

	if err := user.CheckPassword(password); err != nil {
		slog.Debug("password check failed", "username", username, "error", err)
		return nil, nil, fmt.Errorf("invalid credentials")
	}

	now := time.Now()
	sessionId := domain.SessionIdentifier(uuid.New().String())

	err = a.sessions.SaveSession(ctx, sessionId, func(s *domain.Session) (*domain.Session, error) {
		s.UserIdentifier = user.Identifier
		s.LastActivity = now
		s.ExpiresAt = now.Add(a.sessionLifetime())
		s.IsActive = true
		s.ClientIP = clientIP
		return s, nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open session: %w", err)
	}

	session, err := a.sessions.GetSession(ctx, sessionId)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load session: %w", err)
	}

	slog.Info("user logged in", "username", username, "session", sessionId, "ip", clientIP)
	a.bus.Publish(app.TopicAuthLogin, user.Identifier)

	return user, session, nil
}

// Logout closes the given platform session. Logging out of an unknown or
// already closed session is a no-op.
func (a *Authenticator) Logout(ctx context.Context, sessionId domain.SessionIdentifier) error {
	session, err := a.sessions.GetSession(ctx, sessionId)
	if err != nil {
		return nil
	}
	if !session.IsActive {
		return nil
	}

	err = a.sessions.SaveSession(ctx, sessionId, func(s *domain.Session) (*domain.Session, error) {
		s.IsActive = false
		return s, nil
	})
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}

	slog.Info("user logged out", "user", session.UserIdentifier, "session", sessionId)
	a.bus.Publish(app.TopicAuthLogout, session.UserIdentifier)

	return nil
}

// Touch records activity on the session so that it does not turn idle.
// It also reports whether the session is still usable for requests.
func (a *Authenticator) Touch(ctx context.Context, sessionId domain.SessionIdentifier) (bool, error) {
	session, err := a.sessions.GetSession(ctx, sessionId)
	if err != nil {
		return false, nil
	}

	now := time.Now()
	if session.Status(now, a.cfg.Sessions.IdleTimeout) != domain.SessionStatusActive &&
		session.Status(now, a.cfg.Sessions.IdleTimeout) != domain.SessionStatusIdle {
		return false, nil
	}

	err = a.sessions.SaveSession(ctx, sessionId, func(s *domain.Session) (*domain.Session, error) {
		s.LastActivity = now
		return s, nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to update session activity: %w", err)
	}

	return true, nil
}

// IsUserValid reports whether the user may still use the platform.
func (a *Authenticator) IsUserValid(ctx context.Context, id domain.UserIdentifier) bool {
	// avoid permission checks, this is used by the authentication middleware
	ctx = domain.SetUserInfo(ctx, domain.SystemAdminContextUserInfo())

	user, err := a.users.GetUser(ctx, id)
	if err != nil {
		return false
	}

	return !user.IsDisabled()
}
