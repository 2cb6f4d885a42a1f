package model

import (
	"time"

	"github.com/adralidus/lgl-portal/internal/domain"
)

type Notification struct {
	Identifier string `json:"Identifier"`
	Title      string `json:"Title" binding:"required"`
	Message    string `json:"Message" binding:"required"`
	Type       string `json:"Type" binding:"required,oneof=info warning error success"`

	TargetMode string `json:"TargetMode" binding:"required,oneof=system role user"`
	TargetRole string `json:"TargetRole,omitempty"`
	TargetUser string `json:"TargetUser,omitempty"`

	IsRead    bool       `json:"IsRead"`
	ExpiresAt *time.Time `json:"ExpiresAt,omitempty"`
	CreatedAt time.Time  `json:"CreatedAt"`

	// derived display attributes, never accepted as input
	Priority    string   `json:"Priority"`
	Component   string   `json:"Component"`
	ActionItems []string `json:"ActionItems"`
	IsExpired   bool     `json:"IsExpired"`
}

func NewNotification(src *domain.EnrichedNotification) *Notification {
	return &Notification{
		Identifier:  string(src.Identifier),
		Title:       src.Title,
		Message:     src.Message,
		Type:        string(src.Type),
		TargetMode:  string(src.Target.Mode),
		TargetRole:  string(src.Target.Role),
		TargetUser:  string(src.Target.User),
		IsRead:      src.IsRead,
		ExpiresAt:   src.ExpiresAt,
		CreatedAt:   src.CreatedAt,
		Priority:    string(src.Priority),
		Component:   src.Component,
		ActionItems: src.ActionItems,
		IsExpired:   src.IsExpired(time.Now()),
	}
}

func NewNotifications(src []domain.EnrichedNotification) []Notification {
	results := make([]Notification, len(src))
	for i := range src {
		results[i] = *NewNotification(&src[i])
	}
	return results
}

func NewDomainNotification(src *Notification) *domain.Notification {
	return &domain.Notification{
		Identifier: domain.NotificationIdentifier(src.Identifier),
		Title:      src.Title,
		Message:    src.Message,
		Type:       domain.NotificationType(src.Type),
		Target: domain.NotificationTarget{
			Mode: domain.NotificationTargetMode(src.TargetMode),
			Role: domain.UserRole(src.TargetRole),
			User: domain.UserIdentifier(src.TargetUser),
		},
		IsRead:    src.IsRead,
		ExpiresAt: src.ExpiresAt,
	}
}
