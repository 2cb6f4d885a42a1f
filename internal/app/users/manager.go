package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	evbus "github.com/vardius/message-bus"

	"github.com/adralidus/lgl-portal/internal/app"
	"github.com/adralidus/lgl-portal/internal/config"
	"github.com/adralidus/lgl-portal/internal/domain"
)

type Manager struct {
	cfg      *config.Config
	bus      evbus.MessageBus
	db       DatabaseRepo
	sessions SessionTerminator
	auditor  AuditRecorder
}

func NewManager(
	cfg *config.Config,
	bus evbus.MessageBus,
	db DatabaseRepo,
	sessions SessionTerminator,
	auditor AuditRecorder,
) (*Manager, error) {
	m := &Manager{
		cfg:      cfg,
		bus:      bus,
		db:       db,
		sessions: sessions,
		auditor:  auditor,
	}

	return m, nil
}

// StartupCheck ensures that the configured admin account exists. It is meant
// to be called once during application boot with a system admin context.
func (m *Manager) StartupCheck(ctx context.Context) error {
	if m.cfg.Core.AdminUser == "" {
		return nil
	}

	_, err := m.db.GetUserByUsername(ctx, m.cfg.Core.AdminUser)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("startup check failure: %w", err)
	}

	slog.Info("creating default super admin account", "username", m.cfg.Core.AdminUser)

	now := time.Now()
	admin := &domain.User{
		BaseModel: domain.BaseModel{
			CreatedBy: domain.CtxSystemAdminId,
			UpdatedBy: domain.CtxSystemAdminId,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Identifier: domain.UserIdentifier(m.cfg.Core.AdminUser),
		Username:   m.cfg.Core.AdminUser,
		Email:      m.cfg.Core.AdminEmail,
		Role:       domain.UserRoleSuperAdmin,
		Password:   domain.PrivateString(m.cfg.Core.AdminPassword),
	}

	if _, err := m.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create default super admin: %w", err)
	}

	return nil
}

// region crud

func (m *Manager) GetAll(ctx context.Context) ([]domain.User, error) {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return nil, err
	}

	users, err := m.db.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load users: %w", err)
	}
	return users, nil
}

func (m *Manager) Get(ctx context.Context, id domain.UserIdentifier) (*domain.User, error) {
	if err := domain.ValidateUserAccessRights(ctx, id); err != nil {
		return nil, err
	}

	user, err := m.db.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("unable to load user %s: %w", id, err)
	}
	return user, nil
}

func (m *Manager) Find(ctx context.Context, search string) ([]domain.User, error) {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return nil, err
	}

	users, err := m.db.FindUsers(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("user search failure: %w", err)
	}
	return users, nil
}

func (m *Manager) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := domain.ValidateSuperAdminAccessRights(ctx); err != nil {
		return nil, err
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	if err := m.checkUnique(ctx, user); err != nil {
		return nil, err
	}

	if err := user.HashPassword(); err != nil {
		return nil, err
	}

	err := m.db.SaveUser(ctx, user.Identifier, func(u *domain.User) (*domain.User, error) {
		u.Username = user.Username
		u.Email = user.Email
		u.Role = user.Role
		u.Firstname = user.Firstname
		u.Lastname = user.Lastname
		u.Notes = user.Notes
		u.Password = user.Password
		u.Disabled = user.Disabled
		u.DisabledReason = user.DisabledReason
		return u, nil
	})
	if err != nil {
		return nil, fmt.Errorf("creation failure: %w", err)
	}

	if err := m.auditor.Record(ctx, domain.AuditSeverityLevelHigh, "create", "user",
		string(user.Identifier), map[string]any{
			"username": user.Username,
			"role":     string(user.Role),
		}); err != nil {
		return nil, err
	}

	m.bus.Publish(app.TopicUserCreated, user.Identifier)

	return user, nil
}

func (m *Manager) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := domain.ValidateSuperAdminAccessRights(ctx); err != nil {
		return nil, err
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	existing, err := m.db.GetUser(ctx, user.Identifier)
	if err != nil {
		return nil, fmt.Errorf("unable to load user %s: %w", user.Identifier, err)
	}

	if user.Password != "" && user.Password != existing.Password {
		if err := user.HashPassword(); err != nil {
			return nil, err
		}
	} else {
		user.Password = existing.Password
	}

	err = m.db.SaveUser(ctx, user.Identifier, func(u *domain.User) (*domain.User, error) {
		u.Username = user.Username
		u.Email = user.Email
		u.Role = user.Role
		u.Firstname = user.Firstname
		u.Lastname = user.Lastname
		u.Notes = user.Notes
		u.Password = user.Password
		u.Disabled = user.Disabled
		u.DisabledReason = user.DisabledReason
		return u, nil
	})
	if err != nil {
		return nil, fmt.Errorf("update failure: %w", err)
	}

	if err := m.auditor.Record(ctx, domain.AuditSeverityLevelMedium, "update", "user",
		string(user.Identifier), map[string]any{"username": user.Username}); err != nil {
		return nil, err
	}

	// disabling a user kicks it out of all active sessions
	if user.IsDisabled() && !existing.IsDisabled() {
		if _, err := m.sessions.TerminateUserSessions(ctx, user.Identifier); err != nil {
			return nil, fmt.Errorf("failed to terminate sessions of %s: %w", user.Identifier, err)
		}
		m.bus.Publish(app.TopicUserDisabled, user.Identifier)
	}

	return user, nil
}

func (m *Manager) Delete(ctx context.Context, id domain.UserIdentifier) error {
	if err := domain.ValidateSuperAdminAccessRights(ctx); err != nil {
		return err
	}

	user, err := m.db.GetUser(ctx, id)
	if err != nil {
		return fmt.Errorf("unable to load user %s: %w", id, err)
	}

	if _, err := m.sessions.TerminateUserSessions(ctx, id); err != nil {
		return fmt.Errorf("failed to terminate sessions of %s: %w", id, err)
	}

	if err := m.db.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("deletion failure: %w", err)
	}

	if err := m.auditor.Record(ctx, domain.AuditSeverityLevelHigh, "delete", "user",
		string(id), map[string]any{"username": user.Username}); err != nil {
		return err
	}

	m.bus.Publish(app.TopicUserDeleted, id)

	return nil
}

// endregion crud

func (m *Manager) checkUnique(ctx context.Context, user *domain.User) error {
	if _, err := m.db.GetUser(ctx, user.Identifier); err == nil {
		return fmt.Errorf("user %s already exists: %w", user.Identifier, domain.ErrDuplicateEntry)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	if _, err := m.db.GetUserByUsername(ctx, user.Username); err == nil {
		return fmt.Errorf("username %s already taken: %w", user.Username, domain.ErrDuplicateEntry)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	if user.Email != "" {
		if _, err := m.db.GetUserByEmail(ctx, user.Email); err == nil {
			return fmt.Errorf("email %s already taken: %w", user.Email, domain.ErrDuplicateEntry)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
	}

	return nil
}
