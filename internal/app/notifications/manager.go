package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	evbus "github.com/vardius/message-bus"

	"github.com/adralidus/lgl-portal/internal/app"
	"github.com/adralidus/lgl-portal/internal/app/export"
	"github.com/adralidus/lgl-portal/internal/app/triage"
	"github.com/adralidus/lgl-portal/internal/config"
	"github.com/adralidus/lgl-portal/internal/domain"
)

// Status filter values understood by the notification triage view.
const (
	StatusUnread    = "unread"
	StatusRead      = "read"
	StatusInquiries = "inquiries"
	StatusSystem    = "system"
	StatusCritical  = "critical"
)

type Manager struct {
	cfg     *config.Config
	bus     evbus.MessageBus
	db      DatabaseRepo
	auditor AuditRecorder
	mailer  EmailSender

	col *triage.Collection[domain.EnrichedNotification]
}

func NewManager(
	cfg *config.Config,
	bus evbus.MessageBus,
	db DatabaseRepo,
	auditor AuditRecorder,
	mailer EmailSender,
) (*Manager, error) {
	m := &Manager{
		cfg:     cfg,
		bus:     bus,
		db:      db,
		auditor: auditor,
		mailer:  mailer,

		col: triage.NewCollection(descriptor()),
	}

	m.connectToMessageBus()

	return m, nil
}

func descriptor() triage.Descriptor[domain.EnrichedNotification] {
	return triage.Descriptor[domain.EnrichedNotification]{
		ID: func(n domain.EnrichedNotification) string {
			return string(n.Identifier)
		},
		SearchText: func(n domain.EnrichedNotification) []string {
			return []string{n.Title, n.Message, n.Component}
		},
		Timestamp: func(n domain.EnrichedNotification) time.Time {
			return n.CreatedAt
		},
		MatchesStatus: func(n domain.EnrichedNotification, status string) bool {
			switch status {
			case StatusUnread:
				return !n.IsRead
			case StatusRead:
				return n.IsRead
			case StatusInquiries:
				return n.Component == domain.ComponentContact
			case StatusSystem:
				return n.Target.Mode == domain.NotificationTargetSystem
			case StatusCritical:
				return n.Priority == domain.NotificationPriorityCritical
			default:
				return false
			}
		},
		SeverityRank: func(n domain.EnrichedNotification) int {
			return n.Priority.Rank()
		},
		Category: func(n domain.EnrichedNotification) string {
			return string(n.Type)
		},
	}
}

func (m *Manager) connectToMessageBus() {
	_ = m.bus.Subscribe(app.TopicNotificationCreated, m.handleNotificationCreated)
}

func (m *Manager) handleNotificationCreated(n domain.EnrichedNotification) {
	if !m.cfg.Notifications.ForwardCritical {
		return
	}
	if n.Priority != domain.NotificationPriorityCritical {
		return
	}
	if m.mailer == nil || m.cfg.Notifications.ForwardAddress == "" {
		return
	}

	subject := fmt.Sprintf("Critical notification: %s", n.Title)
	body := fmt.Sprintf("%s\n\nComponent: %s\nAction items:\n - %s\n",
		n.Message, n.Component, strings.Join(n.ActionItems, "\n - "))

	if err := m.mailer.Send(context.Background(), subject, body,
		[]string{m.cfg.Notifications.ForwardAddress}); err != nil {
		slog.Error("failed to forward critical notification",
			"notification", n.Identifier,
			"error", err)
	}
}

// region crud

func (m *Manager) GetAll(ctx context.Context) ([]domain.EnrichedNotification, error) {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return nil, err
	}

	raw, err := m.db.GetAllNotifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load notifications: %w", err)
	}

	return enrichAll(raw, time.Now()), nil
}

func (m *Manager) Get(ctx context.Context, id domain.NotificationIdentifier) (*domain.EnrichedNotification, error) {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return nil, err
	}

	raw, err := m.db.GetNotification(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("unable to load notification %s: %w", id, err)
	}

	enriched := raw.Enriched(time.Now())
	return &enriched, nil
}

func (m *Manager) Create(ctx context.Context, n *domain.Notification) (*domain.EnrichedNotification, error) {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return nil, err
	}

	if n.Identifier == "" {
		n.Identifier = domain.NotificationIdentifier(uuid.New().String())
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}

	err := m.db.SaveNotification(ctx, n.Identifier, func(existing *domain.Notification) (*domain.Notification, error) {
		existing.Title = n.Title
		existing.Message = n.Message
		existing.Type = n.Type
		existing.Target = n.Target
		existing.IsRead = false
		existing.ExpiresAt = n.ExpiresAt
		return existing, nil
	})
	if err != nil {
		return nil, fmt.Errorf("creation failure: %w", err)
	}

	enriched := n.Enriched(time.Now())

	if err := m.auditor.Record(ctx, domain.AuditSeverityLevelMedium, "create", "notification",
		string(n.Identifier), map[string]any{
			"title":    n.Title,
			"type":     string(n.Type),
			"priority": string(enriched.Priority),
		}); err != nil {
		return nil, err
	}

	m.bus.Publish(app.TopicNotificationCreated, enriched)

	return &enriched, nil
}

func (m *Manager) Update(ctx context.Context, n *domain.Notification) (*domain.EnrichedNotification, error) {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return nil, err
	}

	if err := n.Validate(); err != nil {
		return nil, err
	}

	if _, err := m.db.GetNotification(ctx, n.Identifier); err != nil {
		return nil, fmt.Errorf("unable to load notification %s: %w", n.Identifier, err)
	}

	err := m.db.SaveNotification(ctx, n.Identifier, func(existing *domain.Notification) (*domain.Notification, error) {
		existing.Title = n.Title
		existing.Message = n.Message
		existing.Type = n.Type
		existing.Target = n.Target
		existing.ExpiresAt = n.ExpiresAt
		return existing, nil
	})
	if err != nil {
		return nil, fmt.Errorf("update failure: %w", err)
	}

	enriched := n.Enriched(time.Now())
	m.col.Patch(string(n.Identifier), func(r *domain.EnrichedNotification) {
		*r = enriched
	})

	if err := m.auditor.Record(ctx, domain.AuditSeverityLevelMedium, "update", "notification",
		string(n.Identifier), map[string]any{"title": n.Title}); err != nil {
		return nil, err
	}

	return &enriched, nil
}

func (m *Manager) Delete(ctx context.Context, id domain.NotificationIdentifier) error {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return err
	}

	n, err := m.db.GetNotification(ctx, id)
	if err != nil {
		return fmt.Errorf("unable to load notification %s: %w", id, err)
	}

	if err := m.db.DeleteNotification(ctx, id); err != nil {
		return fmt.Errorf("deletion failure: %w", err)
	}

	m.col.Remove(string(id))

	if err := m.auditor.Record(ctx, domain.AuditSeverityLevelMedium, "delete", "notification",
		string(id), map[string]any{"title": n.Title}); err != nil {
		return err
	}

	return nil
}

// MarkRead marks a single notification as read. Marking an already read or
// missing notification is a no-op success, so the operation can be retried
// freely.
func (m *Manager) MarkRead(ctx context.Context, id domain.NotificationIdentifier) error {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return err
	}

	n, err := m.db.GetNotification(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("unable to load notification %s: %w", id, err)
	}
	if n.IsRead {
		return nil
	}

	err = m.db.SaveNotification(ctx, id, func(existing *domain.Notification) (*domain.Notification, error) {
		existing.IsRead = true
		return existing, nil
	})
	if err != nil {
		return fmt.Errorf("update failure: %w", err)
	}

	m.col.Patch(string(id), func(r *domain.EnrichedNotification) {
		r.IsRead = true
	})

	if err := m.auditor.Record(ctx, domain.AuditSeverityLevelLow, "mark_read", "notification",
		string(id), nil); err != nil {
		return err
	}

	return nil
}

// endregion crud

// region batch

// MarkReadBatch marks all given notifications as read in a single transaction
// and writes exactly one audit entry for the whole batch.
func (m *Manager) MarkReadBatch(ctx context.Context, ids []domain.NotificationIdentifier) error {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("empty batch: %w", domain.ErrInvalidData)
	}

	if err := m.db.SetNotificationsRead(ctx, ids); err != nil {
		return fmt.Errorf("batch update failure: %w", err)
	}

	for _, id := range ids {
		m.col.Patch(string(id), func(r *domain.EnrichedNotification) {
			r.IsRead = true
		})
	}
	m.col.Deselect(identifierStrings(ids)...)

	if err := m.auditor.Record(ctx, domain.AuditSeverityLevelLow, "batch_mark_read", "notification", "",
		map[string]any{
			"count": len(ids),
			"ids":   identifierStrings(ids),
		}); err != nil {
		return err
	}

	return nil
}

// DeleteBatch deletes all given notifications in a single transaction and
// writes exactly one audit entry for the whole batch.
func (m *Manager) DeleteBatch(ctx context.Context, ids []domain.NotificationIdentifier) error {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("empty batch: %w", domain.ErrInvalidData)
	}

	if err := m.db.DeleteNotifications(ctx, ids); err != nil {
		return fmt.Errorf("batch deletion failure: %w", err)
	}

	m.col.Remove(identifierStrings(ids)...)

	if err := m.auditor.Record(ctx, domain.AuditSeverityLevelMedium, "batch_delete", "notification", "",
		map[string]any{
			"count": len(ids),
			"ids":   identifierStrings(ids),
		}); err != nil {
		return err
	}

	return nil
}

// endregion batch

// region triage-view

// Refresh loads the current notification set into the triage view. A refresh
// that is overtaken by a newer refresh or by a local mutation is discarded.
func (m *Manager) Refresh(ctx context.Context) error {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return err
	}

	seq := m.col.BeginFetch()

	raw, err := m.db.GetAllNotifications(ctx)
	if err != nil {
		return fmt.Errorf("unable to load notifications: %w", err)
	}

	m.col.CompleteFetch(seq, enrichAll(raw, time.Now()))
	return nil
}

func (m *Manager) UpdateView(ctx context.Context, view triage.View) error {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return err
	}

	m.col.UpdateView(view)
	return nil
}

func (m *Manager) Visible(ctx context.Context) ([]domain.EnrichedNotification, error) {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return nil, err
	}

	return m.col.Visible(), nil
}

func (m *Manager) ToggleSelect(ctx context.Context, id domain.NotificationIdentifier) (bool, error) {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return false, err
	}

	return m.col.ToggleSelect(string(id)), nil
}

func (m *Manager) SelectAll(ctx context.Context) error {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return err
	}

	m.col.SelectAll()
	return nil
}

func (m *Manager) Selected(ctx context.Context) ([]domain.NotificationIdentifier, error) {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return nil, err
	}

	ids := m.col.Selected()
	out := make([]domain.NotificationIdentifier, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.NotificationIdentifier(id))
	}
	return out, nil
}

// OpenDetail opens the detail view for a visible notification. Opening an
// unread notification marks it as read.
func (m *Manager) OpenDetail(ctx context.Context, id domain.NotificationIdentifier) (
	*domain.EnrichedNotification, error,
) {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return nil, err
	}

	record, ok := m.col.Open(string(id))
	if !ok {
		return nil, fmt.Errorf("notification %s is not visible: %w", id, domain.ErrNotFound)
	}

	if err := m.MarkRead(ctx, id); err != nil {
		return nil, err
	}

	record.IsRead = true
	return &record, nil
}

func (m *Manager) CloseDetail(ctx context.Context) error {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return err
	}

	m.col.Close()
	return nil
}

// Export renders the given notifications as a JSON document. An empty id list
// exports the whole visible set.
func (m *Manager) Export(ctx context.Context, ids []domain.NotificationIdentifier) ([]byte, error) {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return nil, err
	}

	var records []domain.EnrichedNotification
	if len(ids) == 0 {
		records = m.col.Visible()
	} else {
		wanted := make(map[domain.NotificationIdentifier]struct{}, len(ids))
		for _, id := range ids {
			wanted[id] = struct{}{}
		}
		for _, n := range m.col.Records() {
			if _, ok := wanted[n.Identifier]; ok {
				records = append(records, n)
			}
		}
	}

	data, err := export.NotificationsJSON(records)
	if err != nil {
		return nil, err
	}

	if err := m.auditor.Record(ctx, domain.AuditSeverityLevelLow, "export", "notification", "",
		map[string]any{"count": len(records)}); err != nil {
		return nil, err
	}

	return data, nil
}

// endregion triage-view

func enrichAll(raw []domain.Notification, now time.Time) []domain.EnrichedNotification {
	enriched := make([]domain.EnrichedNotification, 0, len(raw))
	for _, n := range raw {
		enriched = append(enriched, n.Enriched(now))
	}
	return enriched
}

func identifierStrings(ids []domain.NotificationIdentifier) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return out
}
