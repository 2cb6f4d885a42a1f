package domain

import (
	"fmt"
	"strings"
	"time"
)

type NotificationIdentifier string

type NotificationType string

const (
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeWarning NotificationType = "warning"
	NotificationTypeError   NotificationType = "error"
	NotificationTypeSuccess NotificationType = "success"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationTypeInfo, NotificationTypeWarning, NotificationTypeError, NotificationTypeSuccess:
		return true
	}
	return false
}

type NotificationPriority string

const (
	NotificationPriorityCritical NotificationPriority = "critical"
	NotificationPriorityHigh     NotificationPriority = "high"
	NotificationPriorityMedium   NotificationPriority = "medium"
	NotificationPriorityLow      NotificationPriority = "low"
)

// Rank returns the numeric severity of the priority, higher values are more severe.
func (p NotificationPriority) Rank() int {
	switch p {
	case NotificationPriorityCritical:
		return 4
	case NotificationPriorityHigh:
		return 3
	case NotificationPriorityMedium:
		return 2
	case NotificationPriorityLow:
		return 1
	}
	return 0
}

type NotificationTargetMode string

const (
	NotificationTargetSystem NotificationTargetMode = "system"
	NotificationTargetRole   NotificationTargetMode = "role"
	NotificationTargetUser   NotificationTargetMode = "user"
)

// NotificationTarget is a tagged union, only the arm selected by Mode may be populated.
type NotificationTarget struct {
	Mode NotificationTargetMode `gorm:"column:target_mode"`
	Role UserRole               `gorm:"column:target_role"`
	User UserIdentifier         `gorm:"column:target_user"`
}

func SystemTarget() NotificationTarget {
	return NotificationTarget{Mode: NotificationTargetSystem}
}

func RoleTarget(role UserRole) NotificationTarget {
	return NotificationTarget{Mode: NotificationTargetRole, Role: role}
}

func UserTarget(id UserIdentifier) NotificationTarget {
	return NotificationTarget{Mode: NotificationTargetUser, User: id}
}

func (t NotificationTarget) Validate() error {
	switch t.Mode {
	case NotificationTargetSystem:
		if t.Role != "" || t.User != "" {
			return fmt.Errorf("system-wide target must not carry a role or user: %w", ErrInvalidData)
		}
	case NotificationTargetRole:
		if !t.Role.IsValid() || t.User != "" {
			return fmt.Errorf("role target needs exactly one valid role: %w", ErrInvalidData)
		}
	case NotificationTargetUser:
		if t.User == "" || t.Role != "" {
			return fmt.Errorf("user target needs exactly one user id: %w", ErrInvalidData)
		}
	default:
		return fmt.Errorf("unknown target mode %s: %w", t.Mode, ErrInvalidData)
	}
	return nil
}

// Notification is a raw stored notification record. Priority, component and
// action items are never stored, they are derived on read, see Enrich.
type Notification struct {
	BaseModel

	Identifier NotificationIdentifier `gorm:"primaryKey;column:identifier"`
	Title      string                 `gorm:"column:title"`
	Message    string                 `gorm:"column:message"`
	Type       NotificationType       `gorm:"column:notification_type;index:idx_ntf_type"`

	Target NotificationTarget `gorm:"embedded"`

	IsRead    bool       `gorm:"column:is_read;index:idx_ntf_read"`
	ExpiresAt *time.Time `gorm:"column:expires_at"`
}

func (n *Notification) Validate() error {
	if n.Identifier == "" {
		return fmt.Errorf("missing notification identifier: %w", ErrInvalidData)
	}
	if n.Title == "" {
		return fmt.Errorf("missing notification title: %w", ErrInvalidData)
	}
	if !n.Type.IsValid() {
		return fmt.Errorf("invalid notification type %s: %w", n.Type, ErrInvalidData)
	}
	return n.Target.Validate()
}

func (n *Notification) IsExpired(now time.Time) bool {
	return n.ExpiresAt != nil && now.After(*n.ExpiresAt)
}

// Component labels assigned by the keyword heuristics.
const (
	ComponentUserManagement = "User Management"
	ComponentExamination    = "Examination System"
	ComponentSecurity       = "Security"
	ComponentDatabase       = "Database"
	ComponentBackup         = "Backup System"
	ComponentContact        = "Contact System"
)

// inquiryPrefix reclassifies contact form submissions, it trumps all other rules.
const inquiryPrefix = "New Inquiry:"

// Enrichment is the derived, read-time view of a notification. It is never
// persisted and always recomputed from the raw record.
type Enrichment struct {
	Priority    NotificationPriority
	Component   string
	ActionItems []string
}

// EnrichedNotification combines a raw notification with its derived enrichment.
type EnrichedNotification struct {
	Notification
	Enrichment
}

// Enriched returns the notification together with its derived attributes.
func (n *Notification) Enriched(now time.Time) EnrichedNotification {
	return EnrichedNotification{Notification: *n, Enrichment: n.Enrich(now)}
}

// componentRules map keyword hits to a component label and a starter action.
// The slice order is the classification precedence, the first matching rule wins.
var componentRules = []struct {
	keywords  []string
	component string
	action    string
	forceHigh bool
}{
	{[]string{"security", "access"}, ComponentSecurity, "Review security settings", true},
	{[]string{"database", "sql"}, ComponentDatabase, "Check database status", false},
	{[]string{"backup"}, ComponentBackup, "Verify backup integrity", false},
	{[]string{"exam", "examination"}, ComponentExamination, "Check examination system", false},
	{[]string{"user", "account", "student"}, ComponentUserManagement, "Review user accounts", false},
	{[]string{"contact", "inquiry"}, ComponentContact, "Review inquiry", false},
}

var criticalKeywords = []string{"critical", "urgent", "emergency"}
var highKeywords = []string{"important", "attention"}

// Enrich derives priority, component and action items from the raw record.
// The result is deterministic for a given record and point in time. The
// keyword heuristics are intentionally naive, unrelated text containing one
// of the trigger words escalates the record. Precedence:
//  1. the notification type seeds the priority
//  2. escalation keywords may raise the priority, never lower it
//  3. the first matching component rule assigns label and starter action
//  4. the "New Inquiry:" title prefix overrides everything
func (n *Notification) Enrich(now time.Time) Enrichment {
	if strings.HasPrefix(n.Title, inquiryPrefix) {
		return Enrichment{
			Priority:    NotificationPriorityHigh,
			Component:   ComponentContact,
			ActionItems: []string{"Review inquiry", "Respond to sender"},
		}
	}

	e := Enrichment{Priority: n.seedPriority()}

	text := strings.ToLower(n.Title + " " + n.Message)

	if containsAny(text, criticalKeywords) {
		e.escalate(NotificationPriorityCritical)
	} else if containsAny(text, highKeywords) {
		e.escalate(NotificationPriorityHigh)
	}

	for _, rule := range componentRules {
		if !containsAny(text, rule.keywords) {
			continue
		}
		e.Component = rule.component
		e.ActionItems = append(e.ActionItems, rule.action)
		if rule.forceHigh {
			e.escalate(NotificationPriorityHigh)
		}
		break
	}

	return e
}

func (n *Notification) seedPriority() NotificationPriority {
	switch n.Type {
	case NotificationTypeError:
		return NotificationPriorityCritical
	case NotificationTypeWarning:
		return NotificationPriorityHigh
	case NotificationTypeSuccess:
		return NotificationPriorityLow
	default:
		return NotificationPriorityMedium
	}
}

// escalate raises the priority to at least the given level, it never lowers it.
func (e *Enrichment) escalate(p NotificationPriority) {
	if p.Rank() > e.Priority.Rank() {
		e.Priority = p
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
