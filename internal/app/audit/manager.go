package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	evbus "github.com/vardius/message-bus"

	"github.com/adralidus/lgl-portal/internal/app"
	"github.com/adralidus/lgl-portal/internal/domain"
)

// Manager writes and reads the immutable audit trail. Record is called
// synchronously from every mutating administrative operation, a failed write
// fails the calling operation. In addition, the manager subscribes to
// authentication events on the message bus and traces them.
type Manager struct {
	bus evbus.MessageBus

	db DatabaseRepo
}

func NewManager(bus evbus.MessageBus, db DatabaseRepo) (*Manager, error) {
	m := &Manager{
		bus: bus,
		db:  db,
	}

	if err := m.connectToMessageBus(); err != nil {
		return nil, fmt.Errorf("failed to setup message bus: %w", err)
	}

	return m, nil
}

func (m *Manager) connectToMessageBus() error {
	if err := m.bus.Subscribe(app.TopicAuthLogin, m.handleAuthEvent("login")); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", app.TopicAuthLogin, err)
	}
	if err := m.bus.Subscribe(app.TopicAuthLogout, m.handleAuthEvent("logout")); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", app.TopicAuthLogout, err)
	}

	return nil
}

func (m *Manager) handleAuthEvent(action string) func(domain.UserIdentifier) {
	return func(userIdentifier domain.UserIdentifier) {
		err := m.db.SaveAuditEntry(context.Background(), &domain.AuditEntry{
			CreatedAt:   time.Now(),
			Severity:    domain.AuditSeverityLevelLow,
			ContextUser: string(userIdentifier),
			Action:      action,
			EntityType:  "user",
			EntityId:    string(userIdentifier),
			Details:     "{}",
		})
		if err != nil {
			slog.Error("failed to create audit entry for auth event", "action", action, "error", err)
		}
	}
}

// Record appends one audit entry for an administrative action. The acting
// user is taken from the context. Errors are returned to the caller, never
// swallowed, so that the triggering action is reported as failed overall.
func (m *Manager) Record(
	ctx context.Context,
	severity domain.AuditSeverityLevel,
	action, entityType, entityId string,
	details map[string]any,
) error {
	userInfo := domain.GetUserInfo(ctx)

	err := m.db.SaveAuditEntry(ctx, &domain.AuditEntry{
		CreatedAt:       time.Now(),
		Severity:        severity,
		ContextUser:     userInfo.UserId(),
		ContextUserRole: string(userInfo.Role),
		Action:          action,
		EntityType:      entityType,
		EntityId:        entityId,
		Details:         domain.AuditDetails(details),
	})
	if err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}

	return nil
}

// GetAll returns all audit entries, newest first. Only admins may read the trail.
func (m *Manager) GetAll(ctx context.Context) ([]domain.AuditEntry, error) {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return nil, err
	}

	entries, err := m.db.GetAllAuditEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}

	return entries, nil
}

// Query returns audit entries, newest first, restricted to the given time
// window (0 means no restriction) and action verb (empty means all verbs).
func (m *Manager) Query(ctx context.Context, window time.Duration, action string) ([]domain.AuditEntry, error) {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return nil, err
	}

	var since time.Time
	if window > 0 {
		since = time.Now().Add(-window)
	}

	entries, err := m.db.FindAuditEntries(ctx, since, action)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}

	return entries, nil
}
