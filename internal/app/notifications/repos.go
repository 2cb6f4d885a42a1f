package notifications

import (
	"context"
	"time"

	"github.com/adralidus/lgl-portal/internal/domain"
)

type DatabaseRepo interface {
	// GetNotification returns the notification with the given id.
	// If no notification is found, an error domain.ErrNotFound is returned.
	GetNotification(ctx context.Context, id domain.NotificationIdentifier) (*domain.Notification, error)
	// GetAllNotifications returns all notifications, newest first.
	GetAllNotifications(ctx context.Context) ([]domain.Notification, error)
	// FindNotifications returns notifications matching the pushed-down
	// predicates: a creation time window and an exact type.
	FindNotifications(ctx context.Context, since time.Time, notificationType domain.NotificationType) (
		[]domain.Notification, error)
	// SaveNotification updates or creates the notification with the given id.
	SaveNotification(ctx context.Context, id domain.NotificationIdentifier,
		updateFunc func(n *domain.Notification) (*domain.Notification, error)) error
	// DeleteNotification deletes the notification with the given id.
	DeleteNotification(ctx context.Context, id domain.NotificationIdentifier) error
	// SetNotificationsRead marks all given notifications as read, all or nothing.
	SetNotificationsRead(ctx context.Context, ids []domain.NotificationIdentifier) error
	// DeleteNotifications deletes all given notifications, all or nothing.
	DeleteNotifications(ctx context.Context, ids []domain.NotificationIdentifier) error
}

type AuditRecorder interface {
	// Record appends one audit entry for an administrative action.
	Record(ctx context.Context, severity domain.AuditSeverityLevel, action, entityType, entityId string,
		details map[string]any) error
}

type EmailSender interface {
	// Send sends a plain text mail.
	Send(ctx context.Context, subject, body string, to []string) error
}
