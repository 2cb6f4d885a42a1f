package sessions

import (
	"context"
	"fmt"
	"time"

	evbus "github.com/vardius/message-bus"

	"github.com/adralidus/lgl-portal/internal/app"
	"github.com/adralidus/lgl-portal/internal/app/triage"
	"github.com/adralidus/lgl-portal/internal/config"
	"github.com/adralidus/lgl-portal/internal/domain"
)

type Manager struct {
	cfg     *config.Config
	bus     evbus.MessageBus
	db      DatabaseRepo
	auditor AuditRecorder

	col *triage.Collection[domain.MonitoredSession]
}

func NewManager(cfg *config.Config, bus evbus.MessageBus, db DatabaseRepo, auditor AuditRecorder) (*Manager, error) {
	m := &Manager{
		cfg:     cfg,
		bus:     bus,
		db:      db,
		auditor: auditor,

		col: triage.NewCollection(descriptor()),
	}

	return m, nil
}

func descriptor() triage.Descriptor[domain.MonitoredSession] {
	return triage.Descriptor[domain.MonitoredSession]{
		ID: func(s domain.MonitoredSession) string {
			return string(s.Identifier)
		},
		SearchText: func(s domain.MonitoredSession) []string {
			return []string{string(s.UserIdentifier), s.ClientIP}
		},
		Timestamp: func(s domain.MonitoredSession) time.Time {
			return s.LastActivity
		},
		MatchesStatus: func(s domain.MonitoredSession, status string) bool {
			return string(s.Status) == status
		},
		SeverityRank: func(s domain.MonitoredSession) int {
			// the more stale a session, the higher it sorts under severity
			switch s.Status {
			case domain.SessionStatusTerminated:
				return 4
			case domain.SessionStatusExpired:
				return 3
			case domain.SessionStatusIdle:
				return 2
			default:
				return 1
			}
		},
		Category: func(s domain.MonitoredSession) string {
			return string(s.Status)
		},
	}
}

func (m *Manager) idleTimeout() time.Duration {
	if m.cfg.Sessions.IdleTimeout > 0 {
		return m.cfg.Sessions.IdleTimeout
	}
	return domain.DefaultSessionIdleTimeout
}

// region monitoring

func (m *Manager) GetAll(ctx context.Context) ([]domain.MonitoredSession, error) {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return nil, err
	}

	raw, err := m.db.GetAllSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load sessions: %w", err)
	}

	return m.monitorAll(raw, time.Now()), nil
}

func (m *Manager) Get(ctx context.Context, id domain.SessionIdentifier) (*domain.MonitoredSession, error) {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return nil, err
	}

	raw, err := m.db.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("unable to load session %s: %w", id, err)
	}

	now := time.Now()
	return &domain.MonitoredSession{
		Session: *raw,
		Status:  raw.Status(now, m.idleTimeout()),
	}, nil
}

func (m *Manager) GetUserSessions(ctx context.Context, id domain.UserIdentifier) ([]domain.MonitoredSession, error) {
	if err := domain.ValidateUserAccessRights(ctx, id); err != nil {
		return nil, err
	}

	raw, err := m.db.GetUserSessions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("unable to load sessions for %s: %w", id, err)
	}

	return m.monitorAll(raw, time.Now()), nil
}

// Refresh loads the current session set into the triage view. A refresh that
// is overtaken by a newer refresh or by a local mutation is discarded.
func (m *Manager) Refresh(ctx context.Context) error {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return err
	}

	seq := m.col.BeginFetch()

	raw, err := m.db.GetAllSessions(ctx)
	if err != nil {
		return fmt.Errorf("unable to load sessions: %w", err)
	}

	m.col.CompleteFetch(seq, m.monitorAll(raw, time.Now()))
	return nil
}

func (m *Manager) UpdateView(ctx context.Context, view triage.View) error {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return err
	}

	m.col.UpdateView(view)
	return nil
}

func (m *Manager) Visible(ctx context.Context) ([]domain.MonitoredSession, error) {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return nil, err
	}

	return m.col.Visible(), nil
}

// endregion monitoring

// region termination

// Terminate deactivates a single session. Terminating an already inactive
// session is a no-op success; a missing session is a failure.
func (m *Manager) Terminate(ctx context.Context, id domain.SessionIdentifier) error {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return err
	}

	session, err := m.db.GetSession(ctx, id)
	if err != nil {
		return fmt.Errorf("unable to load session %s: %w", id, err)
	}
	if !session.IsActive {
		return nil
	}

	err = m.db.SaveSession(ctx, id, func(s *domain.Session) (*domain.Session, error) {
		s.IsActive = false
		return s, nil
	})
	if err != nil {
		return fmt.Errorf("termination failure: %w", err)
	}

	// reflect the new status immediately, without waiting for a refresh
	m.col.Patch(string(id), func(s *domain.MonitoredSession) {
		s.IsActive = false
		s.Status = domain.SessionStatusTerminated
	})

	if err := m.auditor.Record(ctx, domain.AuditSeverityLevelHigh, "terminate", "session",
		string(id), map[string]any{
			"user":     string(session.UserIdentifier),
			"duration": session.Elapsed(time.Now()).Round(time.Second).String(),
		}); err != nil {
		return err
	}

	m.bus.Publish(app.TopicSessionTerminated, session.UserIdentifier)

	return nil
}

// TerminateAll deactivates every active session in one transaction and writes
// exactly one audit entry carrying the number of affected sessions.
func (m *Manager) TerminateAll(ctx context.Context) (int, error) {
	if err := domain.ValidateSuperAdminAccessRights(ctx); err != nil {
		return 0, err
	}

	count, err := m.db.TerminateAllSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("termination failure: %w", err)
	}

	for _, s := range m.col.Records() {
		if !s.IsActive {
			continue
		}
		m.col.Patch(string(s.Identifier), func(s *domain.MonitoredSession) {
			s.IsActive = false
			s.Status = domain.SessionStatusTerminated
		})
	}

	if err := m.auditor.Record(ctx, domain.AuditSeverityLevelHigh, "terminate_all", "session", "",
		map[string]any{"terminated_count": count}); err != nil {
		return 0, err
	}

	return count, nil
}

// TerminateUserSessions deactivates all active sessions of one user. It is
// used when a user account gets disabled or removed.
func (m *Manager) TerminateUserSessions(ctx context.Context, id domain.UserIdentifier) (int, error) {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return 0, err
	}

	count, err := m.db.TerminateUserSessions(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("termination failure: %w", err)
	}

	for _, s := range m.col.Records() {
		if s.UserIdentifier != id || !s.IsActive {
			continue
		}
		m.col.Patch(string(s.Identifier), func(s *domain.MonitoredSession) {
			s.IsActive = false
			s.Status = domain.SessionStatusTerminated
		})
	}

	if count > 0 {
		if err := m.auditor.Record(ctx, domain.AuditSeverityLevelHigh, "terminate_user_sessions", "user",
			string(id), map[string]any{"terminated_count": count}); err != nil {
			return 0, err
		}
	}

	return count, nil
}

// endregion termination

func (m *Manager) monitorAll(raw []domain.Session, now time.Time) []domain.MonitoredSession {
	idleTimeout := m.idleTimeout()
	monitored := make([]domain.MonitoredSession, 0, len(raw))
	for _, s := range raw {
		monitored = append(monitored, domain.MonitoredSession{
			Session: s,
			Status:  s.Status(now, idleTimeout),
		})
	}
	return monitored
}
